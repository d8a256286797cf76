// Package ledger holds the seat-accounting state machine for the front desk.
//
// A State is a value: every transition copies it and returns the successor,
// leaving the receiver untouched, so a caller can commit the new state to
// storage before making it current. The invariant kept by every transition is
//
//	SeatsLeft + sum(GuestCount of checked-in reservations) == Capacity
package ledger

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Eursukkul/table-booking/internal/models"
)

const DefaultCapacity = 15

type State struct {
	Capacity     int
	Reservations []models.Reservation
	SeatsLeft    int
	// Editing is the index of the pending edit target, nil when no edit is open.
	Editing *int
}

// EditForm pre-populates the operator's edit form.
type EditForm struct {
	Name       string
	Phone      string
	GuestCount string
}

// Load builds the state from a persisted sequence. Checked-out entries have
// already released their seats and are not counted.
func Load(capacity int, reservations []models.Reservation) State {
	s := State{
		Capacity:     capacity,
		Reservations: append([]models.Reservation(nil), reservations...),
	}
	s.SeatsLeft = capacity - seatsHeld(s.Reservations)
	return s
}

func seatsHeld(reservations []models.Reservation) int {
	held := 0
	for _, r := range reservations {
		if r.CheckedIn() {
			held += r.GuestCount
		}
	}
	return held
}

// Clone returns a copy whose reservation slice is not shared with s.
func (s State) Clone() State {
	out := s
	out.Reservations = append([]models.Reservation(nil), s.Reservations...)
	return out
}

func (s State) reservation(index int) (models.Reservation, error) {
	if index < 0 || index >= len(s.Reservations) {
		return models.Reservation{}, fmt.Errorf("%w: index %d", ErrReservationNotFound, index)
	}
	return s.Reservations[index], nil
}

// EditTarget reports the index currently open for editing.
func (s State) EditTarget() (int, bool) {
	if s.Editing == nil {
		return 0, false
	}
	return *s.Editing, true
}

// IndexOf resolves a reservation id to its current position.
func (s State) IndexOf(id string) (int, bool) {
	for i, r := range s.Reservations {
		if r.ID == id {
			return i, true
		}
	}
	return 0, false
}

// Add appends a checked-in reservation stamped with now.
func (s State) Add(in Input, now time.Time) (State, models.Reservation, error) {
	guestCount, err := Validate(in.Name, in.Phone, in.GuestCount, s.SeatsLeft)
	if err != nil {
		return s, models.Reservation{}, err
	}

	r := models.Reservation{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Phone:       in.Phone,
		GuestCount:  guestCount,
		CheckInTime: now,
		Status:      models.StatusCheckedIn,
	}

	next := s.Clone()
	next.Reservations = append(next.Reservations, r)
	next.SeatsLeft -= guestCount
	return next, r, nil
}

// BeginEdit marks index as the pending edit target and returns its values.
func (s State) BeginEdit(index int) (State, EditForm, error) {
	r, err := s.reservation(index)
	if err != nil {
		return s, EditForm{}, err
	}

	next := s.Clone()
	next.Editing = &index
	return next, EditForm{
		Name:       r.Name,
		Phone:      r.Phone,
		GuestCount: strconv.Itoa(r.GuestCount),
	}, nil
}

func (s State) CancelEdit() State {
	next := s.Clone()
	next.Editing = nil
	return next
}

// Update replaces name, phone and guest count of the entry under edit. The id,
// check-in time and status are kept. Seats move only while the entry is still
// checked in; a checked-out entry holds none.
func (s State) Update(index int, in Input) (State, models.Reservation, error) {
	prev, err := s.reservation(index)
	if err != nil {
		return s, models.Reservation{}, err
	}
	if target, ok := s.EditTarget(); !ok || target != index {
		return s, models.Reservation{}, fmt.Errorf("%w: index %d", ErrNotEditing, index)
	}

	available := s.Capacity
	if prev.CheckedIn() {
		available = s.SeatsLeft + prev.GuestCount
	}
	guestCount, err := Validate(in.Name, in.Phone, in.GuestCount, available)
	if err != nil {
		return s, models.Reservation{}, err
	}

	updated := prev
	updated.Name = in.Name
	updated.Phone = in.Phone
	updated.GuestCount = guestCount

	next := s.Clone()
	next.Reservations[index] = updated
	if prev.CheckedIn() {
		next.SeatsLeft += prev.GuestCount - guestCount
	}
	next.Editing = nil
	return next, updated, nil
}

// CheckOut releases the seats held by the entry. A second checkout is rejected.
func (s State) CheckOut(index int) (State, models.Reservation, error) {
	r, err := s.reservation(index)
	if err != nil {
		return s, models.Reservation{}, err
	}
	if !r.CheckedIn() {
		return s, models.Reservation{}, ErrAlreadyCheckedOut
	}

	r.Status = models.StatusCheckedOut
	next := s.Clone()
	next.Reservations[index] = r
	next.SeatsLeft += r.GuestCount
	return next, r, nil
}

// Remove deletes the entry, releasing its seats if it was still checked in.
func (s State) Remove(index int) (State, models.Reservation, error) {
	r, err := s.reservation(index)
	if err != nil {
		return s, models.Reservation{}, err
	}

	next := s.Clone()
	next.Reservations = append(next.Reservations[:index], next.Reservations[index+1:]...)
	if r.CheckedIn() {
		next.SeatsLeft += r.GuestCount
	}

	if target, ok := s.EditTarget(); ok {
		switch {
		case target == index:
			next.Editing = nil
		case target > index:
			shifted := target - 1
			next.Editing = &shifted
		}
	}
	return next, r, nil
}

// FromImport builds a state from an externally supplied sequence, checking
// every record the way an operator's input would be checked. Missing ids and
// check-in times are filled in.
func FromImport(capacity int, reservations []models.Reservation, now time.Time) (State, error) {
	rows := make([]models.Reservation, len(reservations))
	seen := make(map[string]bool, len(reservations))
	for i, r := range reservations {
		if _, err := Validate(r.Name, r.Phone, strconv.Itoa(r.GuestCount), capacity); err != nil {
			return State{}, fmt.Errorf("reservation %d: %w", i, err)
		}
		if !r.Status.Valid() {
			return State{}, fmt.Errorf("reservation %d: %w", i, invalid(RuleStatus, "Unknown status %q.", r.Status))
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if seen[r.ID] {
			return State{}, fmt.Errorf("reservation %d: %w", i, invalid(RuleDuplicateID, "Duplicate id %q.", r.ID))
		}
		seen[r.ID] = true
		if r.CheckInTime.IsZero() {
			r.CheckInTime = now
		}
		r.Position = 0
		rows[i] = r
	}

	s := Load(capacity, rows)
	if s.SeatsLeft < 0 {
		return State{}, invalid(RuleGuestCountSeats, "Checked-in guests exceed capacity of %d.", capacity)
	}
	return s, nil
}

// CheckInvariant verifies the seat accounting of s.
func (s State) CheckInvariant() error {
	held := seatsHeld(s.Reservations)
	if s.SeatsLeft+held != s.Capacity {
		return fmt.Errorf("seats left %d plus held %d does not equal capacity %d", s.SeatsLeft, held, s.Capacity)
	}
	if s.SeatsLeft < 0 || s.SeatsLeft > s.Capacity {
		return fmt.Errorf("seats left %d outside [0, %d]", s.SeatsLeft, s.Capacity)
	}
	return nil
}
