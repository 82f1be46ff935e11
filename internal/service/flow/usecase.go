package flow

import (
	"context"

	"github.com/Domenick1991/bookingflow/internal/backend"
	"github.com/Domenick1991/bookingflow/internal/domain"
)

// UseCase is the sequencer surface the HTTP facade depends on.
type UseCase interface {
	StartSession(ctx context.Context) (string, error)
	Session(ctx context.Context, sessionID string) (domain.BookingDraft, Step, error)

	Login(ctx context.Context, sessionID, email, password string) error
	Register(ctx context.Context, input backend.RegisterInput) (*backend.User, error)

	SearchFlights(ctx context.Context, sessionID string, params domain.FlightSearchParams) (*domain.FlightPage, error)
	BookedSeats(ctx context.Context, sessionID string) ([]string, error)

	SelectFlight(ctx context.Context, sessionID string, flight domain.FlightSegment) error
	SelectSeats(ctx context.Context, sessionID string, seats []string) error
	SetTravellers(ctx context.Context, sessionID string, passengers []domain.Passenger) error
	SetExtraServices(ctx context.Context, sessionID string, extras domain.ExtraServices) error
	Quote(ctx context.Context, sessionID string) (float64, string, error)

	CreateBooking(ctx context.Context, sessionID string) (*domain.Booking, error)
	CreatePayment(ctx context.Context, sessionID, method string) (*domain.Payment, error)
	RefreshBooking(ctx context.Context, sessionID string) (*domain.Booking, error)
	Reset(ctx context.Context, sessionID string) error
	EndSession(ctx context.Context, sessionID string) error
}

var _ UseCase = (*Service)(nil)
