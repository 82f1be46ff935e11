package flow

import (
	"github.com/Domenick1991/bookingflow/internal/domain"
)

// Step is one stage of the booking flow, in order.
type Step string

const (
	StepFlightSelection Step = "FLIGHT_SELECTION"
	StepSeatSelection   Step = "SEAT_SELECTION"
	StepTravellerInfo   Step = "TRAVELLER_INFO"
	StepExtraServices   Step = "EXTRA_SERVICES"
	StepPayment         Step = "PAYMENT"
	StepConfirmation    Step = "CONFIRMATION"
)

// ResumeStep returns the furthest step a draft is allowed to stand on. A
// guard failure never redirects forward, so this is also the redirect target
// when a step's preconditions are not met.
func ResumeStep(d *domain.BookingDraft) Step {
	switch {
	case d.CurrentBooking != nil && d.CurrentBooking.Status != domain.BookingStatusPendingPayment:
		return StepConfirmation
	case d.CurrentBooking != nil:
		return StepPayment
	case len(d.Passengers) > 0:
		return StepExtraServices
	case d.SelectedFlight != nil:
		// Seats are optional; with a flight selected the session may go
		// straight to traveller info.
		return StepTravellerInfo
	default:
		return StepFlightSelection
	}
}

// StepError is a guard failure: the operation was rejected and the session
// belongs on Step, the nearest valid prior step.
type StepError struct {
	Step Step
	Err  *domain.Error
}

func (e *StepError) Error() string { return e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }

func guardFailure(d *domain.BookingDraft, message string) *StepError {
	return &StepError{
		Step: ResumeStep(d),
		Err:  domain.ValidationError(message),
	}
}
