// Package draft owns the in-progress booking state for each session and
// mirrors it to the persistence adapter field by field.
package draft

import (
	"context"
	"sync"

	"github.com/Domenick1991/bookingflow/internal/domain"
	"github.com/Domenick1991/bookingflow/internal/persist"
	"github.com/Domenick1991/bookingflow/internal/pricing"
)

// Store holds one session's BookingDraft. It is the only writer of the
// draft; pages and handlers read through Get and submit intents through the
// setters. Each setter snapshots the fields it touched before returning, so
// a crash cannot fall between mutate and snapshot.
//
// The store is logically single-threaded per session but the HTTP host
// interleaves handlers, hence the mutex.
type Store struct {
	mu        sync.Mutex
	sessionID string
	persist   persist.Store
	draft     domain.BookingDraft

	// generation increments on every Reset. Async results captured under an
	// older generation are discarded instead of being applied to a draft
	// that has since been cleared.
	generation uint64
}

func newStore(sessionID string, p persist.Store) *Store {
	return &Store{sessionID: sessionID, persist: p}
}

func (s *Store) SessionID() string { return s.sessionID }

// Get returns a copy of the current draft. Slices and nested records are
// cloned so callers cannot mutate store state through the view.
func (s *Store) Get() domain.BookingDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDraft(&s.draft)
}

// Generation returns the current reset generation. Capture it before a
// network call and pass it back to ApplyBooking.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// SetFlight replaces the selected flight.
func (s *Store) SetFlight(ctx context.Context, flight domain.FlightSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SelectedFlight = &flight
	return s.persist.Snapshot(ctx, s.key(persist.FieldSelectedFlight), &flight)
}

// SetSeats replaces the seat selection. The seat price is derived here from
// the shared pricing rule; there is no caller-supplied price to drift from
// it. An empty selection is the valid skip path and prices at zero.
func (s *Store) SetSeats(ctx context.Context, seats []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.draft.Passengers) > 0 && len(seats) > len(s.draft.Passengers) {
		return domain.ValidationError("more seats than passengers")
	}
	s.draft.SelectedSeats = append([]string(nil), seats...)
	s.draft.SeatPrice = pricing.TotalSeatPrice(seats)
	if err := s.persist.Snapshot(ctx, s.key(persist.FieldSelectedSeats), s.draft.SelectedSeats); err != nil {
		return err
	}
	return s.persist.Snapshot(ctx, s.key(persist.FieldSeatPrice), s.draft.SeatPrice)
}

// SetPassengers replaces the passenger list.
func (s *Store) SetPassengers(ctx context.Context, passengers []domain.Passenger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(passengers) < len(s.draft.SelectedSeats) {
		return domain.ValidationError("fewer passengers than selected seats")
	}
	s.draft.Passengers = append([]domain.Passenger(nil), passengers...)
	return s.persist.Snapshot(ctx, s.key(persist.FieldPassengers), s.draft.Passengers)
}

// SetExtraServices replaces the ancillary service selection.
func (s *Store) SetExtraServices(ctx context.Context, extras domain.ExtraServices) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.ExtraServices = &extras
	return s.persist.Snapshot(ctx, s.key(persist.FieldExtraServices), &extras)
}

// ApplyBooking stores a server booking record if the store is still on the
// generation the caller captured before its request went out. It reports
// whether the record was applied; a false return means the draft was reset
// while the request was in flight and the response must be ignored.
func (s *Store) ApplyBooking(ctx context.Context, booking *domain.Booking, generation uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false, nil
	}
	s.draft.CurrentBooking = booking
	if err := s.persist.Snapshot(ctx, s.key(persist.FieldCurrentBooking), booking); err != nil {
		return true, err
	}
	return true, s.persist.Snapshot(ctx, s.key(persist.FieldBookingID), booking.ID)
}

// beginOp sets a transient in-flight flag, rejecting duplicate submission.
func (s *Store) beginOp(flag *bool, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *flag {
		return domain.ConflictError(msg)
	}
	*flag = true
	return nil
}

func (s *Store) endOp(flag *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*flag = false
}

// BeginCreate marks a create-booking request in flight. A second call before
// EndCreate fails locally with a Conflict; nothing is queued or raced.
func (s *Store) BeginCreate() error {
	return s.beginOp(&s.draft.Loading, "a booking request is already in progress")
}

func (s *Store) EndCreate() { s.endOp(&s.draft.Loading) }

// BeginPayment marks a payment request in flight.
func (s *Store) BeginPayment() error {
	return s.beginOp(&s.draft.ProcessingPayment, "a payment request is already in progress")
}

func (s *Store) EndPayment() { s.endOp(&s.draft.ProcessingPayment) }

// Reset clears every field and deletes every persisted snapshot for the
// draft. Idempotent. Bumps the generation so in-flight responses no-op.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = domain.BookingDraft{}
	s.generation++
	return s.persist.Clear(ctx, persist.DraftKeys(s.sessionID)...)
}

// restore loads whatever fields survived a restart. Partial restores are
// expected: the flow resumes at whichever step the populated fields allow.
func (s *Store) restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var flight domain.FlightSegment
	if ok, err := s.persist.Restore(ctx, s.key(persist.FieldSelectedFlight), &flight); err != nil {
		return err
	} else if ok {
		s.draft.SelectedFlight = &flight
	}

	var seats []string
	if ok, err := s.persist.Restore(ctx, s.key(persist.FieldSelectedSeats), &seats); err != nil {
		return err
	} else if ok {
		s.draft.SelectedSeats = seats
		// Recomputed rather than trusted, so a stale or tampered price
		// snapshot cannot diverge from the pricing rule.
		s.draft.SeatPrice = pricing.TotalSeatPrice(seats)
	}

	var passengers []domain.Passenger
	if ok, err := s.persist.Restore(ctx, s.key(persist.FieldPassengers), &passengers); err != nil {
		return err
	} else if ok {
		s.draft.Passengers = passengers
	}

	var extras domain.ExtraServices
	if ok, err := s.persist.Restore(ctx, s.key(persist.FieldExtraServices), &extras); err != nil {
		return err
	} else if ok {
		s.draft.ExtraServices = &extras
	}

	var booking domain.Booking
	if ok, err := s.persist.Restore(ctx, s.key(persist.FieldCurrentBooking), &booking); err != nil {
		return err
	} else if ok {
		s.draft.CurrentBooking = &booking
	}

	return nil
}

func (s *Store) key(field string) string {
	return persist.FieldKey(s.sessionID, field)
}

func cloneDraft(d *domain.BookingDraft) domain.BookingDraft {
	out := *d
	if d.SelectedFlight != nil {
		flight := *d.SelectedFlight
		out.SelectedFlight = &flight
	}
	out.SelectedSeats = append([]string(nil), d.SelectedSeats...)
	out.Passengers = append([]domain.Passenger(nil), d.Passengers...)
	if d.ExtraServices != nil {
		extras := *d.ExtraServices
		out.ExtraServices = &extras
	}
	if d.CurrentBooking != nil {
		booking := *d.CurrentBooking
		booking.FlightSegments = append([]domain.FlightSegment(nil), d.CurrentBooking.FlightSegments...)
		booking.Passengers = append([]domain.Passenger(nil), d.CurrentBooking.Passengers...)
		out.CurrentBooking = &booking
	}
	return out
}
