package repository

import (
	"context"
	"fmt"

	"github.com/Eursukkul/table-booking/internal/models"
	"gorm.io/gorm"
)

// ReservationRepository persists the full ordered reservation sequence.
// Save replaces whatever was stored before, atomically.
type ReservationRepository interface {
	Load(ctx context.Context) ([]models.Reservation, error)
	Save(ctx context.Context, reservations []models.Reservation) error
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Load(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	return reservations, nil
}

func (r *reservationRepository) Save(ctx context.Context, reservations []models.Reservation) error {
	rows := make([]models.Reservation, len(reservations))
	for i, res := range reservations {
		res.Position = i
		rows[i] = res
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Reservation{}).Error; err != nil {
			return fmt.Errorf("clear reservations: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert reservations: %w", err)
		}
		return nil
	})
}
