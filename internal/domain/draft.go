package domain

// BookingDraft is the client-held, not-yet-finalized booking state. Fields
// populate monotonically as a session moves through the flow; the whole draft
// is cleared on completion or explicit reset.
//
// SeatPrice is cached alongside SelectedSeats and is always recomputed from
// them through the shared pricing rule, never edited independently.
type BookingDraft struct {
	SelectedFlight *FlightSegment `json:"selectedFlight,omitempty"`
	SelectedSeats  []string       `json:"selectedSeats,omitempty"`
	SeatPrice      float64        `json:"seatPrice"`
	Passengers     []Passenger    `json:"passengers,omitempty"`
	ExtraServices  *ExtraServices `json:"extraServices,omitempty"`
	CurrentBooking *Booking       `json:"currentBooking,omitempty"`

	// Transient flags, never persisted.
	Loading           bool `json:"-"`
	ProcessingPayment bool `json:"-"`
}

// Empty reports whether the draft holds no state at all.
func (d *BookingDraft) Empty() bool {
	return d.SelectedFlight == nil &&
		len(d.SelectedSeats) == 0 &&
		d.SeatPrice == 0 &&
		len(d.Passengers) == 0 &&
		d.ExtraServices == nil &&
		d.CurrentBooking == nil
}
