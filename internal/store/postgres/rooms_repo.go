package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"roomly/backend/internal/domain"
	"roomly/backend/internal/store"
)

type RoomRepo struct {
	db *bun.DB
}

func NewRoomRepo(db *bun.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

func (r *RoomRepo) List(ctx context.Context) ([]domain.Room, error) {
	var rows []domain.Room
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *RoomRepo) GetByName(ctx context.Context, name string) (domain.Room, error) {
	var row domain.Room
	err := r.db.NewSelect().
		Model(&row).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	return row, nil
}

func (r *RoomRepo) GetByID(ctx context.Context, roomID uuid.UUID) (domain.Room, error) {
	var row domain.Room
	err := r.db.NewSelect().
		Model(&row).
		Where("id = ?", roomID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	return row, nil
}

func (r *RoomRepo) SetActive(ctx context.Context, roomID uuid.UUID, active bool) (domain.Room, error) {
	var out domain.Room
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*domain.Room)(nil)).
			Set("is_active = ?", active).
			Where("id = ?", roomID).
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

		return tx.NewSelect().
			Model(&out).
			Where("id = ?", roomID).
			Limit(1).
			Scan(ctx)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return out, nil
}
