package dto

import (
	"time"

	"github.com/Eursukkul/table-booking/internal/ledger"
	"github.com/Eursukkul/table-booking/internal/models"
)

type ReservationResponse struct {
	Index       int                      `json:"index"`
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Phone       string                   `json:"phone"`
	GuestCount  int                      `json:"guestCount"`
	CheckInTime time.Time                `json:"checkInTime"`
	Status      models.ReservationStatus `json:"status"`
}

type LedgerResponse struct {
	Capacity     int                   `json:"capacity"`
	SeatsLeft    int                   `json:"seatsLeft"`
	Editing      *int                  `json:"editing"`
	Reservations []ReservationResponse `json:"reservations"`
}

type MutationResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Ledger      LedgerResponse      `json:"ledger"`
}

type EditFormResponse struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	GuestCount string `json:"guestCount"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
}

func ToReservationResponse(index int, r models.Reservation) ReservationResponse {
	return ReservationResponse{
		Index:       index,
		ID:          r.ID,
		Name:        r.Name,
		Phone:       r.Phone,
		GuestCount:  r.GuestCount,
		CheckInTime: r.CheckInTime,
		Status:      r.Status,
	}
}

func ToLedgerResponse(s ledger.State) LedgerResponse {
	resp := LedgerResponse{
		Capacity:     s.Capacity,
		SeatsLeft:    s.SeatsLeft,
		Reservations: make([]ReservationResponse, len(s.Reservations)),
	}
	if target, ok := s.EditTarget(); ok {
		resp.Editing = &target
	}
	for i, r := range s.Reservations {
		resp.Reservations[i] = ToReservationResponse(i, r)
	}
	return resp
}

// ToMutationResponse pairs the affected reservation with the resulting ledger.
// A removed reservation has no index in the new ledger and reports -1.
func ToMutationResponse(s ledger.State, r models.Reservation) MutationResponse {
	index, ok := s.IndexOf(r.ID)
	if !ok {
		index = -1
	}
	return MutationResponse{
		Reservation: ToReservationResponse(index, r),
		Ledger:      ToLedgerResponse(s),
	}
}
