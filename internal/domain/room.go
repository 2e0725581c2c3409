package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Room struct {
	bun.BaseModel `bun:"table:rooms"`

	ID       uuid.UUID `bun:"id,pk,type:uuid"`
	Name     string    `bun:"name,notnull"`
	Capacity string    `bun:"capacity,notnull"`
	ImageURL string    `bun:"image_url"`
	IsActive bool      `bun:"is_active,notnull"`
}

func (r *Room) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && r.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		r.ID = id
	}
	return nil
}
