package domain

import "time"

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "PENDING_PAYMENT"
	BookingStatusConfirmed      BookingStatus = "CONFIRMED"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
	BookingStatusExpired        BookingStatus = "EXPIRED"
)

// Terminal reports whether no further payment action is valid for a booking
// in this status.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCancelled, BookingStatusExpired:
		return true
	}
	return false
}

// Booking is the server-authoritative record. Once a draft produced one, the
// draft's own price fields stop being the source of truth.
type Booking struct {
	ID             string          `json:"id"`
	BookingCode    string          `json:"bookingCode"`
	Status         BookingStatus   `json:"status"`
	TotalAmount    float64         `json:"totalAmount"`
	Currency       string          `json:"currency"`
	HoldExpiry     time.Time       `json:"holdExpiry,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	FlightSegments []FlightSegment `json:"flightSegments"`
	Passengers     []Passenger     `json:"passengers"`
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment is the backend's answer to a payment-intent request: either a
// redirect target for an external checkout or a pending record awaiting
// asynchronous approval.
type Payment struct {
	PaymentID   string        `json:"paymentId"`
	BookingID   string        `json:"bookingId"`
	Status      PaymentStatus `json:"status"`
	CheckoutURL string        `json:"checkoutUrl,omitempty"`
}
