package backend

import "github.com/Domenick1991/bookingflow/internal/domain"

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	AccessToken string `json:"accessToken"`
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// User is the backend's user record; the password never appears in it.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

type SeatSelection struct {
	SeatNumber string  `json:"seatNumber"`
	Price      float64 `json:"price"`
}

// CreateBookingInput is the POST /bookings body. The credential conveys the
// user's identity; there is no user id in the body.
type CreateBookingInput struct {
	Currency       string                 `json:"currency"`
	FlightSegments []domain.FlightSegment `json:"flightSegments"`
	Passengers     []domain.Passenger     `json:"passengers"`
	SeatSelections []SeatSelection        `json:"seatSelections,omitempty"`
}

type CreatePaymentInput struct {
	BookingID     string `json:"bookingId"`
	PaymentMethod string `json:"paymentMethod"`
	SuccessURL    string `json:"successUrl,omitempty"`
	CancelURL     string `json:"cancelUrl,omitempty"`
}
