// Package flow is the booking-flow sequencer: it owns the ordered steps,
// the guards between them, and the commit points where the upstream backend
// gets called. It is the only writer of draft state.
package flow

import (
	"context"
	"time"

	"github.com/Domenick1991/bookingflow/internal/backend"
	"github.com/Domenick1991/bookingflow/internal/domain"
	"github.com/Domenick1991/bookingflow/internal/draft"
	"github.com/Domenick1991/bookingflow/internal/kafka"
	"github.com/Domenick1991/bookingflow/internal/pricing"
	"github.com/sirupsen/logrus"
)

// BackendAPI is what the sequencer needs from the upstream client.
type BackendAPI interface {
	Login(ctx context.Context, input backend.LoginInput) (string, error)
	Register(ctx context.Context, input backend.RegisterInput) (*backend.User, error)
	SearchFlights(ctx context.Context, token string, params domain.FlightSearchParams) (*domain.FlightPage, error)
	CreateBooking(ctx context.Context, token string, input backend.CreateBookingInput) (*domain.Booking, error)
	CreatePayment(ctx context.Context, token string, input backend.CreatePaymentInput) (*domain.Payment, error)
	GetBooking(ctx context.Context, token, id string) (*domain.Booking, error)
	BookedSeats(ctx context.Context, token, flightNumber string) ([]string, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Service struct {
	drafts   *draft.Manager
	backend  BackendAPI
	producer Producer

	flowTopic      string
	notifyTopic    string
	currency       string
	successURLBase string
	cancelURLBase  string
	log            *logrus.Logger
}

type ServiceOption func(*Service)

func WithNotificationsTopic(topic string) ServiceOption {
	return func(s *Service) { s.notifyTopic = topic }
}

func WithRedirectURLs(successBase, cancelBase string) ServiceOption {
	return func(s *Service) {
		s.successURLBase = successBase
		s.cancelURLBase = cancelBase
	}
}

func NewService(
	drafts *draft.Manager,
	api BackendAPI,
	producer Producer,
	flowTopic string,
	currency string,
	log *logrus.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		drafts:    drafts,
		backend:   api,
		producer:  producer,
		flowTopic: flowTopic,
		currency:  currency,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession opens a fresh draft and returns its session id.
func (s *Service) StartSession(ctx context.Context) (string, error) {
	store, err := s.drafts.Create(ctx)
	if err != nil {
		return "", err
	}
	return store.SessionID(), nil
}

// Session returns the draft and the step it resumes at.
func (s *Service) Session(ctx context.Context, sessionID string) (domain.BookingDraft, Step, error) {
	store, err := s.drafts.Open(ctx, sessionID)
	if err != nil {
		return domain.BookingDraft{}, "", err
	}
	d := store.Get()
	return d, ResumeStep(&d), nil
}

// Login authenticates against the backend and stores the credential under
// the session's token scope.
func (s *Service) Login(ctx context.Context, sessionID, email, password string) error {
	if email == "" || password == "" {
		return domain.ValidationError("email and password are required")
	}
	token, err := s.backend.Login(ctx, backend.LoginInput{Email: email, Password: password})
	if err != nil {
		return err
	}
	return s.drafts.SaveToken(ctx, sessionID, token)
}

// Register creates an account; it does not log the session in.
func (s *Service) Register(ctx context.Context, input backend.RegisterInput) (*backend.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, domain.ValidationError("email and password are required")
	}
	return s.backend.Register(ctx, input)
}

// SearchFlights proxies the upstream search, attaching the session's
// credential when one is stored.
func (s *Service) SearchFlights(ctx context.Context, sessionID string, params domain.FlightSearchParams) (*domain.FlightPage, error) {
	if params.Origin == "" || params.Destination == "" || params.DepartureDate == "" {
		return nil, domain.ValidationError("origin, destination and departure date are required")
	}
	token, _, err := s.drafts.Token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	page, err := s.backend.SearchFlights(ctx, token, params)
	if err != nil {
		return nil, s.backendFailure(ctx, sessionID, err)
	}
	return page, nil
}

// BookedSeats lists taken seats for the draft's selected flight.
func (s *Service) BookedSeats(ctx context.Context, sessionID string) ([]string, error) {
	store, err := s.drafts.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d := store.Get()
	if d.SelectedFlight == nil {
		return nil, guardFailure(&d, "select a flight first")
	}
	token, _, err := s.drafts.Token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	seats, err := s.backend.BookedSeats(ctx, token, d.SelectedFlight.FlightNumber)
	if err != nil {
		return nil, s.backendFailure(ctx, sessionID, err)
	}
	return seats, nil
}

// SelectFlight sets the draft's flight snapshot. A draft that already
// produced a booking must be reset before another attempt.
func (s *Service) SelectFlight(ctx context.Context, sessionID string, flight domain.FlightSegment) error {
	if flight.FlightNumber == "" || flight.Origin == "" || flight.Destination == "" {
		return domain.ValidationError("flight number, origin and destination are required")
	}
	store, err := s.drafts.Open(ctx, sessionID)
	if err != nil {
		return err
	}
	d := store.Get()
	if d.CurrentBooking != nil {
		return domain.ConflictError("a booking already exists for this session, reset it first")
	}
	if flight.Currency == "" {
		flight.Currency = s.currency
	}
	return store.SetFlight(ctx, flight)
}

// SelectSeats sets the seat selection. An empty selection is the valid
// skip-seats path.
func (s *Service) SelectSeats(ctx context.Context, sessionID string, seats []string) error {
	store, err := s.drafts.Open(ctx, sessionID)
	if err != nil {
		return err
	}
	d := store.Get()
	if d.SelectedFlight == nil {
		return guardFailure(&d, "select a flight before choosing seats")
	}
	if d.CurrentBooking != nil {
		return domain.ConflictError("a booking already exists for this session, reset it first")
	}
	return store.SetSeats(ctx, seats)
}

// SetTravellers sets the passenger list.
func (s *Service) SetTravellers(ctx context.Context, sessionID string, passengers []domain.Passenger) error {
	store, err := s.drafts.Open(ctx, sessionID)
	if err != nil {
		return err
	}
	d := store.Get()
	if d.SelectedFlight == nil {
		return guardFailure(&d, "select a flight before entering traveller details")
	}
	if len(passengers) == 0 {
		return domain.ValidationError("at least one passenger is required")
	}
	for _, p := range passengers {
		if p.FullName == "" || p.DocumentNumber == "" {
			return domain.ValidationError("every passenger needs a full name and a document number")
		}
	}
	return store.SetPassengers(ctx, passengers)
}

// SetExtraServices sets the ancillary selection.
func (s *Service) SetExtraServices(ctx context.Context, sessionID string, extras domain.ExtraServices) error {
	store, err := s.drafts.Open(ctx, sessionID)
	if err != nil {
		return err
	}
	d := store.Get()
	if len(d.Passengers) == 0 {
		return guardFailure(&d, "enter traveller details before choosing extra services")
	}
	if extras.SupportPackage != domain.SupportStandard && extras.SupportPackage != domain.SupportPlatinum {
		return domain.ValidationError("support package must be STANDARD or PLATINUM")
	}
	return store.SetExtraServices(ctx, extras)
}

// Quote returns the amount to pay. Before a booking exists it is the draft
// total from the shared pricing rule; after, the server's total is
// authoritative.
func (s *Service) Quote(ctx context.Context, sessionID string) (float64, string, error) {
	store, err := s.drafts.Open(ctx, sessionID)
	if err != nil {
		return 0, "", err
	}
	d := store.Get()
	if d.CurrentBooking != nil {
		return d.CurrentBooking.TotalAmount, d.CurrentBooking.Currency, nil
	}
	currency := s.currency
	if d.SelectedFlight != nil && d.SelectedFlight.Currency != "" {
		currency = d.SelectedFlight.Currency
	}
	return pricing.TotalDraftPrice(&d), currency, nil
}

// CreateBooking is the first commit point: it submits the draft to the
// backend and stores the returned record. On any failure the draft is left
// untouched so the session can retry without re-entering data.
func (s *Service) CreateBooking(ctx context.Context, sessionID string) (*domain.Booking, error) {
	store, err := s.drafts.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d := store.Get()
	if d.SelectedFlight == nil || len(d.Passengers) == 0 {
		// Caller error, resolved locally; nothing is sent to the network.
		return nil, guardFailure(&d, "a flight and at least one passenger are required before booking")
	}
	if d.CurrentBooking != nil {
		return nil, domain.ConflictError("a booking already exists for this session, reset it first")
	}

	token, err := s.requireToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := store.BeginCreate(); err != nil {
		return nil, err
	}
	defer store.EndCreate()

	generation := store.Generation()

	input := backend.CreateBookingInput{
		Currency:       d.SelectedFlight.Currency,
		FlightSegments: []domain.FlightSegment{*d.SelectedFlight},
		Passengers:     d.Passengers,
	}
	for _, seat := range d.SelectedSeats {
		input.SeatSelections = append(input.SeatSelections, backend.SeatSelection{
			SeatNumber: seat,
			Price:      pricing.SeatPrice(seat),
		})
	}

	booking, err := s.backend.CreateBooking(ctx, token, input)
	if err != nil {
		return nil, s.backendFailure(ctx, sessionID, err)
	}

	applied, err := store.ApplyBooking(ctx, booking, generation)
	if err != nil {
		return nil, err
	}
	if !applied {
		// The draft was reset while the request was in flight; the response
		// is discarded rather than resurrecting a cleared draft.
		s.log.WithField("session_id", sessionID).Warn("discarding booking response for reset draft")
		return nil, domain.ConflictError("the draft was reset while the booking request was in flight")
	}

	s.publish(ctx, kafka.FlowEvent{
		Type:        kafka.EventBookingCreated,
		SessionID:   sessionID,
		BookingID:   booking.ID,
		BookingCode: booking.BookingCode,
		Status:      string(booking.Status),
		Amount:      booking.TotalAmount,
		Currency:    booking.Currency,
	})
	return booking, nil
}

// CreatePayment is the second commit point. Payment against a booking the
// session already knows to be terminal fails locally with a Conflict and no
// request is issued.
func (s *Service) CreatePayment(ctx context.Context, sessionID, method string) (*domain.Payment, error) {
	store, err := s.drafts.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d := store.Get()
	if d.CurrentBooking == nil {
		return nil, guardFailure(&d, "create a booking before paying")
	}
	if d.CurrentBooking.Status.Terminal() {
		return nil, domain.ConflictError("booking " + d.CurrentBooking.BookingCode + " is already " + string(d.CurrentBooking.Status))
	}
	if method == "" {
		return nil, domain.ValidationError("payment method is required")
	}

	token, err := s.requireToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := store.BeginPayment(); err != nil {
		return nil, err
	}
	defer store.EndPayment()

	input := backend.CreatePaymentInput{
		BookingID:     d.CurrentBooking.ID,
		PaymentMethod: method,
	}
	if s.successURLBase != "" {
		input.SuccessURL = s.successURLBase + "?booking_id=" + d.CurrentBooking.ID
	}
	if s.cancelURLBase != "" {
		input.CancelURL = s.cancelURLBase + "?booking_id=" + d.CurrentBooking.ID
	}

	payment, err := s.backend.CreatePayment(ctx, token, input)
	if err != nil {
		return nil, s.backendFailure(ctx, sessionID, err)
	}

	s.publish(ctx, kafka.FlowEvent{
		Type:        kafka.EventPaymentCreated,
		SessionID:   sessionID,
		BookingID:   d.CurrentBooking.ID,
		BookingCode: d.CurrentBooking.BookingCode,
		Status:      string(payment.Status),
		Amount:      d.CurrentBooking.TotalAmount,
		Currency:    d.CurrentBooking.Currency,
	})
	return payment, nil
}

// RefreshBooking re-reads the booking from the backend, as after returning
// from an external checkout. A NotFound from upstream propagates by kind;
// it is an expected outcome, not a transport failure.
func (s *Service) RefreshBooking(ctx context.Context, sessionID string) (*domain.Booking, error) {
	store, err := s.drafts.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d := store.Get()
	if d.CurrentBooking == nil {
		return nil, guardFailure(&d, "no booking to refresh")
	}

	token, err := s.requireToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	generation := store.Generation()
	previous := d.CurrentBooking.Status

	booking, err := s.backend.GetBooking(ctx, token, d.CurrentBooking.ID)
	if err != nil {
		return nil, s.backendFailure(ctx, sessionID, err)
	}

	applied, err := store.ApplyBooking(ctx, booking, generation)
	if err != nil {
		return nil, err
	}
	if applied && booking.Status != previous {
		s.publish(ctx, kafka.FlowEvent{
			Type:        kafka.EventStatusChanged,
			SessionID:   sessionID,
			BookingID:   booking.ID,
			BookingCode: booking.BookingCode,
			Status:      string(booking.Status),
			Amount:      booking.TotalAmount,
			Currency:    booking.Currency,
		})
	}
	return booking, nil
}

// Reset abandons the draft: every field cleared, every snapshot deleted.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	store, err := s.drafts.Open(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := store.Reset(ctx); err != nil {
		return err
	}
	s.publish(ctx, kafka.FlowEvent{Type: kafka.EventDraftReset, SessionID: sessionID})
	return nil
}

// RefreshPendingSessions sweeps every active session and refreshes bookings
// still in PENDING_PAYMENT whose hold expiry has passed. Run periodically by
// the worker; individual failures are logged, not fatal.
func (s *Service) RefreshPendingSessions(ctx context.Context) (int, error) {
	ids, err := s.drafts.Sessions(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	now := time.Now()
	for _, id := range ids {
		store, err := s.drafts.Open(ctx, id)
		if err != nil {
			s.log.WithFields(logrus.Fields{"session_id": id, "error": err}).Warn("sweep: open session failed")
			continue
		}
		d := store.Get()
		if d.CurrentBooking == nil || d.CurrentBooking.Status != domain.BookingStatusPendingPayment {
			continue
		}
		if !d.CurrentBooking.HoldExpiry.IsZero() && d.CurrentBooking.HoldExpiry.After(now) {
			continue
		}
		if _, err := s.RefreshBooking(ctx, id); err != nil {
			s.log.WithFields(logrus.Fields{"session_id": id, "error": err}).Warn("sweep: refresh failed")
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// EndSession abandons the session entirely: draft snapshots, credential, and
// the index entry are all removed.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	if err := s.drafts.End(ctx, sessionID); err != nil {
		return err
	}
	s.publish(ctx, kafka.FlowEvent{Type: kafka.EventDraftReset, SessionID: sessionID})
	return nil
}

// backendFailure is the single exit path for upstream errors. A rejected
// credential is dropped here so no later operation re-sends it.
func (s *Service) backendFailure(ctx context.Context, sessionID string, err error) error {
	if domain.IsKind(err, domain.KindUnauthenticated) {
		_ = s.drafts.ClearToken(ctx, sessionID)
	}
	return err
}

// requireToken resolves the session's credential, treating a missing or
// expired token as Unauthenticated before any request goes out.
func (s *Service) requireToken(ctx context.Context, sessionID string) (string, error) {
	token, ok, err := s.drafts.Token(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if !ok || token == "" {
		return "", domain.NewError(domain.KindUnauthenticated, "sign in to continue")
	}
	if backend.TokenExpired(token) {
		_ = s.drafts.ClearToken(ctx, sessionID)
		return "", domain.NewError(domain.KindUnauthenticated, "session expired, please sign in again")
	}
	return token, nil
}

func (s *Service) publish(ctx context.Context, event kafka.FlowEvent) {
	if s.producer == nil || s.flowTopic == "" {
		return
	}
	event.At = time.Now()
	if err := s.producer.Publish(ctx, s.flowTopic, event.SessionID, event); err != nil {
		s.log.WithFields(logrus.Fields{"type": event.Type, "error": err}).Warn("failed to publish flow event")
	}
	if s.notifyTopic != "" {
		if err := s.producer.Publish(ctx, s.notifyTopic, event.SessionID, event); err != nil {
			s.log.WithFields(logrus.Fields{"type": event.Type, "error": err}).Warn("failed to publish notification event")
		}
	}
}
