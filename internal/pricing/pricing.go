// Package pricing holds the seat-tier and ancillary fee rules. Every call
// site that needs a seat price or a draft total goes through this package;
// the rules live in exactly one place.
package pricing

import (
	"strconv"

	"github.com/Domenick1991/bookingflow/internal/domain"
)

// Seat tier boundaries and prices. Product configuration, not algorithm.
const (
	FrontRowsMax = 10
	ExitRowMin   = 12
	ExitRowMax   = 15

	FrontSeatPrice    = 500000
	ExitRowSeatPrice  = 300000
	StandardSeatPrice = 100000
)

// Ancillary service fees.
const (
	SupportStandardFee = 56.93
	SupportPlatinumFee = 58.49
	MedicalCoverFee    = 70.86
	CollapseCoverFee   = 18.86
)

// SeatPrice returns the price for a single seat label ("12A"). The tier is a
// function of the leading row number alone; labels without one take the
// standard fee.
func SeatPrice(label string) float64 {
	row, ok := seatRow(label)
	if !ok {
		return StandardSeatPrice
	}
	if row <= FrontRowsMax {
		return FrontSeatPrice
	}
	if row >= ExitRowMin && row <= ExitRowMax {
		return ExitRowSeatPrice
	}
	return StandardSeatPrice
}

// TotalSeatPrice sums SeatPrice over the selection.
func TotalSeatPrice(seats []string) float64 {
	var total float64
	for _, s := range seats {
		total += SeatPrice(s)
	}
	return total
}

// ExtraServicesPrice returns the combined ancillary fees for the selection.
func ExtraServicesPrice(extras *domain.ExtraServices) float64 {
	if extras == nil {
		return 0
	}
	var total float64
	switch extras.SupportPackage {
	case domain.SupportStandard:
		total += SupportStandardFee
	case domain.SupportPlatinum:
		total += SupportPlatinumFee
	}
	if extras.MedicalCover {
		total += MedicalCoverFee
	}
	if extras.CollapseCover {
		total += CollapseCoverFee
	}
	return total
}

// TotalDraftPrice is the amount to pay for a draft before a booking exists.
// After booking creation the server's totalAmount is authoritative and this
// function must not be used for display.
func TotalDraftPrice(draft *domain.BookingDraft) float64 {
	if draft == nil || draft.SelectedFlight == nil {
		return 0
	}
	pax := float64(len(draft.Passengers))
	flight := draft.SelectedFlight
	return flight.BaseFare*pax + flight.Taxes*pax + draft.SeatPrice + ExtraServicesPrice(draft.ExtraServices)
}

func seatRow(label string) (int, bool) {
	i := 0
	for i < len(label) && label[i] >= '0' && label[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	row, err := strconv.Atoi(label[:i])
	if err != nil {
		return 0, false
	}
	return row, true
}
