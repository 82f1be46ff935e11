package flow

import (
	"errors"
	"testing"

	"github.com/Domenick1991/bookingflow/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestResumeStep(t *testing.T) {
	flight := &domain.FlightSegment{FlightNumber: "VJ123"}
	passengers := []domain.Passenger{{FullName: "Ann Tran"}}

	testCases := []struct {
		name     string
		draft    domain.BookingDraft
		expected Step
	}{
		{
			name:     "empty draft",
			draft:    domain.BookingDraft{},
			expected: StepFlightSelection,
		},
		{
			name:     "flight selected",
			draft:    domain.BookingDraft{SelectedFlight: flight},
			expected: StepTravellerInfo,
		},
		{
			name: "seats without passengers",
			draft: domain.BookingDraft{
				SelectedFlight: flight,
				SelectedSeats:  []string{"12A"},
			},
			expected: StepTravellerInfo,
		},
		{
			name: "passengers entered",
			draft: domain.BookingDraft{
				SelectedFlight: flight,
				Passengers:     passengers,
			},
			expected: StepExtraServices,
		},
		{
			name: "booking pending payment",
			draft: domain.BookingDraft{
				SelectedFlight: flight,
				Passengers:     passengers,
				CurrentBooking: &domain.Booking{ID: "b-1", Status: domain.BookingStatusPendingPayment},
			},
			expected: StepPayment,
		},
		{
			name: "booking confirmed",
			draft: domain.BookingDraft{
				CurrentBooking: &domain.Booking{ID: "b-1", Status: domain.BookingStatusConfirmed},
			},
			expected: StepConfirmation,
		},
		{
			name: "booking cancelled",
			draft: domain.BookingDraft{
				CurrentBooking: &domain.Booking{ID: "b-1", Status: domain.BookingStatusCancelled},
			},
			expected: StepConfirmation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ResumeStep(&tc.draft))
		})
	}
}

func TestStepError_UnwrapsToTaxonomy(t *testing.T) {
	err := guardFailure(&domain.BookingDraft{}, "select a flight first")

	assert.Equal(t, StepFlightSelection, err.Step)
	assert.Contains(t, err.Error(), "select a flight first")

	var domErr *domain.Error
	assert.True(t, errors.As(err, &domErr))
	assert.Equal(t, domain.KindValidationFailed, domErr.Kind)
}
