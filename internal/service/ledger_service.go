package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Eursukkul/table-booking/internal/clock"
	"github.com/Eursukkul/table-booking/internal/ledger"
	"github.com/Eursukkul/table-booking/internal/metrics"
	"github.com/Eursukkul/table-booking/internal/models"
	"github.com/Eursukkul/table-booking/internal/repository"
)

var (
	ErrValidation          = ledger.ErrValidation
	ErrAlreadyCheckedOut   = ledger.ErrAlreadyCheckedOut
	ErrReservationNotFound = ledger.ErrReservationNotFound
	ErrNotEditing          = ledger.ErrNotEditing
	ErrPersist             = errors.New("failed to persist reservations")
)

const (
	OpAdd        = "add"
	OpUpdate     = "update"
	OpCheckOut   = "checkout"
	OpRemove     = "remove"
	OpImport     = "import"
	OpBeginEdit  = "begin_edit"
	OpCancelEdit = "cancel_edit"
)

type LedgerService interface {
	Snapshot(ctx context.Context) ledger.State
	Add(ctx context.Context, in ledger.Input) (ledger.State, models.Reservation, error)
	BeginEdit(ctx context.Context, index int) (ledger.State, ledger.EditForm, error)
	CancelEdit(ctx context.Context) ledger.State
	Update(ctx context.Context, index int, in ledger.Input) (ledger.State, models.Reservation, error)
	CheckOut(ctx context.Context, index int) (ledger.State, models.Reservation, error)
	Remove(ctx context.Context, index int) (ledger.State, models.Reservation, error)
	Replace(ctx context.Context, reservations []models.Reservation) (ledger.State, error)
}

// ledgerService is the single writer for the ledger. Every mutation runs the
// transition, commits the resulting sequence, and only then makes it current.
type ledgerService struct {
	mu        sync.Mutex
	state     ledger.State
	repo      repository.ReservationRepository
	clock     clock.Clock
	publisher EventPublisher
	metrics   *metrics.Ledger
}

type Option func(*ledgerService)

func WithClock(c clock.Clock) Option {
	return func(s *ledgerService) {
		s.clock = c
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(s *ledgerService) {
		s.publisher = p
	}
}

func WithMetrics(m *metrics.Ledger) Option {
	return func(s *ledgerService) {
		s.metrics = m
	}
}

// NewLedgerService loads the persisted sequence and recomputes seats left.
func NewLedgerService(ctx context.Context, repo repository.ReservationRepository, capacity int, opts ...Option) (LedgerService, error) {
	reservations, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	s := &ledgerService{
		state: ledger.Load(capacity, reservations),
		repo:  repo,
		clock: clock.NewSystem(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.state.CheckInvariant(); err != nil {
		slog.Warn("Persisted reservations exceed capacity", "capacity", capacity, "error", err)
	}
	s.metrics.Observe(s.state)
	slog.Info("Ledger loaded",
		"reservations", len(s.state.Reservations),
		"capacity", s.state.Capacity,
		"seats_left", s.state.SeatsLeft,
	)
	return s, nil
}

func (s *ledgerService) Snapshot(ctx context.Context) ledger.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *ledgerService) Add(ctx context.Context, in ledger.Input) (ledger.State, models.Reservation, error) {
	now := s.clock.Now()
	return s.mutate(ctx, OpAdd, func(st ledger.State) (ledger.State, ReservationEvent, error) {
		next, r, err := st.Add(in, now)
		return next, ReservationEvent{Index: len(next.Reservations) - 1, Reservation: r}, err
	})
}

func (s *ledgerService) Update(ctx context.Context, index int, in ledger.Input) (ledger.State, models.Reservation, error) {
	return s.mutate(ctx, OpUpdate, func(st ledger.State) (ledger.State, ReservationEvent, error) {
		next, r, err := st.Update(index, in)
		return next, ReservationEvent{Index: index, Reservation: r}, err
	})
}

func (s *ledgerService) CheckOut(ctx context.Context, index int) (ledger.State, models.Reservation, error) {
	return s.mutate(ctx, OpCheckOut, func(st ledger.State) (ledger.State, ReservationEvent, error) {
		next, r, err := st.CheckOut(index)
		return next, ReservationEvent{Index: index, Reservation: r}, err
	})
}

func (s *ledgerService) Remove(ctx context.Context, index int) (ledger.State, models.Reservation, error) {
	return s.mutate(ctx, OpRemove, func(st ledger.State) (ledger.State, ReservationEvent, error) {
		next, r, err := st.Remove(index)
		return next, ReservationEvent{Index: index, Reservation: r}, err
	})
}

// Replace swaps the whole sequence for an imported one. The edit target is
// dropped since indices no longer refer to the same entries.
func (s *ledgerService) Replace(ctx context.Context, reservations []models.Reservation) (ledger.State, error) {
	now := s.clock.Now()
	next, _, err := s.mutate(ctx, OpImport, func(st ledger.State) (ledger.State, ReservationEvent, error) {
		next, err := ledger.FromImport(st.Capacity, reservations, now)
		if err != nil {
			return st, ReservationEvent{}, err
		}
		return next, ReservationEvent{Index: -1}, nil
	})
	return next, err
}

// BeginEdit and CancelEdit only move the edit target, so nothing is persisted.
func (s *ledgerService) BeginEdit(ctx context.Context, index int) (ledger.State, ledger.EditForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, form, err := s.state.BeginEdit(index)
	s.metrics.Operation(OpBeginEdit, err)
	if err != nil {
		return s.state.Clone(), ledger.EditForm{}, err
	}
	s.state = next
	return next.Clone(), form, nil
}

func (s *ledgerService) CancelEdit(ctx context.Context) ledger.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.CancelEdit()
	s.metrics.Operation(OpCancelEdit, nil)
	return s.state.Clone()
}

type transition func(ledger.State) (ledger.State, ReservationEvent, error)

func (s *ledgerService) mutate(ctx context.Context, op string, fn transition) (ledger.State, models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, event, err := fn(s.state)
	if err != nil {
		s.metrics.Operation(op, err)
		slog.Debug("Ledger operation rejected", "operation", op, "error", err)
		return s.state.Clone(), models.Reservation{}, err
	}

	if err := s.repo.Save(ctx, next.Reservations); err != nil {
		s.metrics.Operation(op, err)
		slog.Error("Failed to persist reservations", "operation", op, "error", err)
		return s.state.Clone(), models.Reservation{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	s.state = next
	s.metrics.Operation(op, nil)
	s.metrics.Observe(next)

	event.Action = eventAction(op)
	event.SeatsLeft = next.SeatsLeft
	s.publish(ctx, event)

	slog.Info("Ledger updated",
		"operation", op,
		"index", event.Index,
		"guest_count", event.Reservation.GuestCount,
		"seats_left", next.SeatsLeft,
	)
	return next.Clone(), event.Reservation, nil
}
