package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"roomly/backend/internal/domain"
	"roomly/backend/internal/store"
)

type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func (r *BookingRepo) Create(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	var out domain.Booking
	err := r.inRoomDateTransaction(ctx, booking.Room, booking.Date, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureNoOverlap(ctx, tx, booking, uuid.Nil); err != nil {
			return err
		}

		m := booking
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			return mapConstraintError(err)
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (r *BookingRepo) Update(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	var out domain.Booking
	err := r.inRoomDateTransaction(ctx, booking.Room, booking.Date, func(ctx context.Context, tx bun.Tx) error {
		var current domain.Booking
		err := tx.NewSelect().
			Model(&current).
			Where("id = ?", booking.ID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}

		// The booking may be moving to another room or day; the lock above
		// covers the target key, so the overlap check excludes only itself.
		if err := ensureNoOverlap(ctx, tx, booking, booking.ID); err != nil {
			return err
		}

		m := booking
		m.CreatedAt = current.CreatedAt
		if _, err := tx.NewUpdate().
			Model(&m).
			WherePK().
			Exec(ctx); err != nil {
			return mapConstraintError(err)
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (r *BookingRepo) Delete(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	var out domain.Booking
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&out).
			Where("id = ?", bookingID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := lockRoomDate(ctx, tx, out.Room, out.Date); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*domain.Booking)(nil)).
			Where("id = ?", bookingID).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (r *BookingRepo) GetByID(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	var row domain.Booking
	err := r.db.NewSelect().
		Model(&row).
		Where("id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}
	return row, nil
}

func (r *BookingRepo) ListByRoomDate(ctx context.Context, room, date string) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("room = ?", room).
		Where("date = ?", date).
		OrderExpr("start_minutes ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) ListByRequester(ctx context.Context, requester string) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("requester = ?", requester).
		OrderExpr("date DESC, start_minutes ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) ListAll(ctx context.Context) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("date ASC, room ASC, start_minutes ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// inRoomDateTransaction serializes writes on one (room, date) key. The check
// inside and the write after it form a single logical transaction; without the
// lock a concurrent submission could pass the overlap check and break the
// non-overlap invariant.
func (r *BookingRepo) inRoomDateTransaction(ctx context.Context, room, date string, fn func(ctx context.Context, tx bun.Tx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockRoomDate(ctx, tx, room, date); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
}

func lockRoomDate(ctx context.Context, tx bun.Tx, room, date string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", room+"|"+date).Exec(ctx)
	return err
}

// ensureNoOverlap runs the half-open intersection test against committed
// bookings for the same room and date, skipping excludeID so an update does
// not conflict with its own prior slot.
func ensureNoOverlap(ctx context.Context, tx bun.Tx, booking domain.Booking, excludeID uuid.UUID) error {
	var existing domain.Booking
	q := tx.NewSelect().
		Model(&existing).
		Where("room = ?", booking.Room).
		Where("date = ?", booking.Date).
		Where("start_minutes < ?", int(booking.EndMinutes)).
		Where("end_minutes > ?", int(booking.StartMinutes)).
		Limit(1)
	if excludeID != uuid.Nil {
		q = q.Where("id != ?", excludeID)
	}

	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return &store.ConflictError{Existing: existing}
}

// mapConstraintError translates the bookings_no_overlap exclusion constraint
// into the store's conflict error. The constraint is the database-level
// backstop behind the advisory lock.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap" {
		return store.ErrConflict
	}
	return err
}
