// Package backend is the typed client for the upstream flight-booking REST
// API. It maps HTTP-level outcomes onto the error taxonomy; callers never
// see raw status codes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Domenick1991/bookingflow/internal/domain"
	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"
)

type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *logrus.Logger) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, input LoginInput) (string, error) {
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", input, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", domain.NewError(domain.KindServerError, "login response carried no access token")
	}
	return out.AccessToken, nil
}

// Register creates a user account.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchFlights queries the paginated flight search.
func (c *Client) SearchFlights(ctx context.Context, token string, params domain.FlightSearchParams) (*domain.FlightPage, error) {
	q := url.Values{}
	q.Set("origin", params.Origin)
	q.Set("destination", params.Destination)
	q.Set("departureDate", params.DepartureDate)
	if params.Passengers > 0 {
		q.Set("passengers", strconv.Itoa(params.Passengers))
	}
	if params.CabinClass != "" {
		q.Set("cabinClass", params.CabinClass)
	}
	q.Set("page", strconv.Itoa(params.Page))
	if params.Size > 0 {
		q.Set("size", strconv.Itoa(params.Size))
	}

	var out domain.FlightPage
	if err := c.do(ctx, http.MethodGet, "/flights/search?"+q.Encode(), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBooking submits a booking. The caller validates preconditions (at
// least one segment and one passenger) before this is reached; nothing is
// created locally until the backend answers.
func (c *Client) CreateBooking(ctx context.Context, token string, input CreateBookingInput) (*domain.Booking, error) {
	var out domain.Booking
	if err := c.do(ctx, http.MethodPost, "/bookings", token, input, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, domain.NewError(domain.KindServerError, "booking response carried no id")
	}
	return &out, nil
}

// CreatePayment submits a payment intent for an existing booking.
func (c *Client) CreatePayment(ctx context.Context, token string, input CreatePaymentInput) (*domain.Payment, error) {
	var out domain.Payment
	if err := c.do(ctx, http.MethodPost, "/payments/create", token, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBooking fetches current server state for a booking. A NotFound here is
// a normal outcome (stale id, booking not created yet) and callers must
// distinguish it from transport failure by kind.
func (c *Client) GetBooking(ctx context.Context, token, id string) (*domain.Booking, error) {
	var out domain.Booking
	if err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BookedSeats lists the already-taken seat labels for a flight.
func (c *Client) BookedSeats(ctx context.Context, token, flightNumber string) ([]string, error) {
	var out []struct {
		SeatNumber string `json:"seatNumber"`
	}
	if err := c.do(ctx, http.MethodGet, "/seat-selections/flight/"+url.PathEscape(flightNumber), token, nil, &out); err != nil {
		return nil, err
	}
	seats := make([]string, 0, len(out))
	for _, s := range out {
		seats = append(seats, s.SeatNumber)
	}
	return seats, nil
}

// TokenExpired reads the exp claim without verifying the signature; the
// backend verifies on every request, this only avoids sending requests that
// are certain to come back 401.
func TokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	return !claims.VerifyExpiresAt(time.Now().Unix(), false)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, dest interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The request never reached the server (or the response never came
		// back); this is the one kind that is not the backend speaking.
		return domain.NewError(domain.KindNetworkUnavailable, "could not reach the booking backend")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		c.log.WithFields(logrus.Fields{"path": path, "error": err}).Warn("undecodable backend response")
		return domain.NewError(domain.KindServerError, "unexpected response from the booking backend")
	}
	return nil
}

// errorBody is the backend's error payload. Validation failures arrive as a
// flat map of field messages with a VALIDATION_ERROR marker; everything else
// carries a single message.
type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *Client) mapError(resp *http.Response) error {
	var raw map[string]json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&raw)

	var body errorBody
	if m, ok := raw["message"]; ok {
		_ = json.Unmarshal(m, &body.Message)
	}
	if s, ok := raw["status"]; ok {
		_ = json.Unmarshal(s, &body.Status)
	}

	msg := func(fallback string) string {
		if body.Message != "" {
			return body.Message
		}
		return fallback
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.NewError(domain.KindUnauthenticated, msg("session expired, please sign in again"))
	case resp.StatusCode == http.StatusForbidden:
		return domain.NewError(domain.KindForbidden, msg("you do not have access to this resource"))
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewError(domain.KindNotFound, msg("not found"))
	case resp.StatusCode == http.StatusConflict:
		return domain.NewError(domain.KindConflict, msg("already exists"))
	case resp.StatusCode == http.StatusBadRequest:
		e := domain.NewError(domain.KindValidationFailed, msg("invalid request"))
		if body.Status == "VALIDATION_ERROR" {
			e.Fields = make(map[string]string, len(raw))
			for field, v := range raw {
				if field == "status" {
					continue
				}
				var fieldMsg string
				if json.Unmarshal(v, &fieldMsg) == nil {
					e.Fields[field] = fieldMsg
					if e.Message == "invalid request" {
						e.Message = fieldMsg
					}
				}
			}
		}
		return e
	default:
		return domain.NewError(domain.KindServerError, msg("the booking backend failed, please try again later"))
	}
}
