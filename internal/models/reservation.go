package models

import "time"

type ReservationStatus string

const (
	StatusCheckedIn  ReservationStatus = "Checked In"
	StatusCheckedOut ReservationStatus = "Checked Out"
)

func (s ReservationStatus) Valid() bool {
	return s == StatusCheckedIn || s == StatusCheckedOut
}

// Reservation is one party on the front-desk ledger. The JSON shape is the
// persisted array-of-objects format; Position is storage-only ordering.
type Reservation struct {
	ID          string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Position    int               `gorm:"not null;index" json:"-"`
	Name        string            `gorm:"not null" json:"name"`
	Phone       string            `gorm:"type:varchar(10);not null" json:"phone"`
	GuestCount  int               `gorm:"not null" json:"guestCount"`
	CheckInTime time.Time         `gorm:"not null" json:"checkInTime"`
	Status      ReservationStatus `gorm:"type:varchar(20);not null;default:'Checked In'" json:"status"`
}

func (r Reservation) CheckedIn() bool {
	return r.Status == StatusCheckedIn
}
