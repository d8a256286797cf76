package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Eursukkul/table-booking/internal/models"
)

// ReservationsKey is the fixed key the sequence is stored under.
const ReservationsKey = "reservations"

type kvRepository struct {
	db  *sql.DB
	key string
}

// NewKVRepository stores the sequence as a single JSON array in the kv table
// created by database.NewSQLiteDB.
func NewKVRepository(db *sql.DB) ReservationRepository {
	return &kvRepository{db: db, key: ReservationsKey}
}

func (r *kvRepository) Load(ctx context.Context) ([]models.Reservation, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", r.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.Reservation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.key, err)
	}

	var reservations []models.Reservation
	if err := json.Unmarshal([]byte(value), &reservations); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	if reservations == nil {
		reservations = []models.Reservation{}
	}
	return reservations, nil
}

func (r *kvRepository) Save(ctx context.Context, reservations []models.Reservation) error {
	if reservations == nil {
		reservations = []models.Reservation{}
	}
	value, err := json.Marshal(reservations)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		r.key, string(value),
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", r.key, err)
	}
	return nil
}
