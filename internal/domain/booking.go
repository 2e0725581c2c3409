package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Room         string    `bun:"room,notnull"`
	Date         string    `bun:"date,notnull"`
	StartMinutes TimeOfDay `bun:"start_minutes,notnull"`
	EndMinutes   TimeOfDay `bun:"end_minutes,notnull"`
	Requester    string    `bun:"requester,notnull"`
	Unit         string    `bun:"unit,notnull"`
	Agenda       string    `bun:"agenda,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}
