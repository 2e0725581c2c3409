package store

import (
	"context"

	"github.com/google/uuid"

	"roomly/backend/internal/domain"
)

// BookingRepository is the durable record of committed bookings. Mutations
// run under a per-(room, date) lock so the non-overlap invariant holds under
// concurrent submissions.
type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	Update(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	Delete(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)

	GetByID(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	ListByRoomDate(ctx context.Context, room, date string) ([]domain.Booking, error)
	ListByRequester(ctx context.Context, requester string) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
}

type RoomRepository interface {
	List(ctx context.Context) ([]domain.Room, error)
	GetByName(ctx context.Context, name string) (domain.Room, error)
	GetByID(ctx context.Context, roomID uuid.UUID) (domain.Room, error)
	SetActive(ctx context.Context, roomID uuid.UUID, active bool) (domain.Room, error)
}
