package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/bookingflow/internal/backend"
	"github.com/Domenick1991/bookingflow/internal/domain"
	"github.com/Domenick1991/bookingflow/internal/service/flow"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockFlowUseCase is a mock implementation of flow.UseCase
type MockFlowUseCase struct {
	mock.Mock
}

func (m *MockFlowUseCase) StartSession(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockFlowUseCase) Session(ctx context.Context, sessionID string) (domain.BookingDraft, flow.Step, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.BookingDraft), args.Get(1).(flow.Step), args.Error(2)
}

func (m *MockFlowUseCase) Login(ctx context.Context, sessionID, email, password string) error {
	args := m.Called(ctx, sessionID, email, password)
	return args.Error(0)
}

func (m *MockFlowUseCase) Register(ctx context.Context, input backend.RegisterInput) (*backend.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.User), args.Error(1)
}

func (m *MockFlowUseCase) SearchFlights(ctx context.Context, sessionID string, params domain.FlightSearchParams) (*domain.FlightPage, error) {
	args := m.Called(ctx, sessionID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightPage), args.Error(1)
}

func (m *MockFlowUseCase) BookedSeats(ctx context.Context, sessionID string) ([]string, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFlowUseCase) SelectFlight(ctx context.Context, sessionID string, flight domain.FlightSegment) error {
	args := m.Called(ctx, sessionID, flight)
	return args.Error(0)
}

func (m *MockFlowUseCase) SelectSeats(ctx context.Context, sessionID string, seats []string) error {
	args := m.Called(ctx, sessionID, seats)
	return args.Error(0)
}

func (m *MockFlowUseCase) SetTravellers(ctx context.Context, sessionID string, passengers []domain.Passenger) error {
	args := m.Called(ctx, sessionID, passengers)
	return args.Error(0)
}

func (m *MockFlowUseCase) SetExtraServices(ctx context.Context, sessionID string, extras domain.ExtraServices) error {
	args := m.Called(ctx, sessionID, extras)
	return args.Error(0)
}

func (m *MockFlowUseCase) Quote(ctx context.Context, sessionID string) (float64, string, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(float64), args.String(1), args.Error(2)
}

func (m *MockFlowUseCase) CreateBooking(ctx context.Context, sessionID string) (*domain.Booking, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockFlowUseCase) CreatePayment(ctx context.Context, sessionID, method string) (*domain.Payment, error) {
	args := m.Called(ctx, sessionID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockFlowUseCase) RefreshBooking(ctx context.Context, sessionID string) (*domain.Booking, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockFlowUseCase) Reset(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockFlowUseCase) EndSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func testContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		assert.NoError(t, err)
	}
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	return c, w
}

func TestSessionHandler_start(t *testing.T) {
	mockService := &MockFlowUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := testContext(t, "POST", "/sessions/", nil)
	mockService.On("StartSession", c.Request.Context()).Return("sess-1", nil)

	handler.start(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "sess-1", response["sessionId"])
	assert.Equal(t, string(flow.StepFlightSelection), response["step"])

	mockService.AssertExpectations(t)
}

func TestSessionHandler_get(t *testing.T) {
	mockService := &MockFlowUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := testContext(t, "GET", "/sessions/sess-1", nil)

	draft := domain.BookingDraft{
		SelectedFlight: &domain.FlightSegment{FlightNumber: "VJ123"},
		SelectedSeats:  []string{"12A"},
		SeatPrice:      300000,
	}
	mockService.On("Session", c.Request.Context(), "sess-1").Return(draft, flow.StepTravellerInfo, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response sessionResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "sess-1", response.SessionID)
	assert.Equal(t, flow.StepTravellerInfo, response.Step)
	assert.Equal(t, "VJ123", response.Draft.SelectedFlight.FlightNumber)

	mockService.AssertExpectations(t)
}

func TestSessionHandler_end(t *testing.T) {
	mockService := &MockFlowUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := testContext(t, "DELETE", "/sessions/sess-1", nil)
	mockService.On("EndSession", c.Request.Context(), "sess-1").Return(nil)

	handler.end(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]bool
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["ended"])

	mockService.AssertExpectations(t)
}

func TestSessionHandler_selectSeats(t *testing.T) {
	mockService := &MockFlowUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := testContext(t, "POST", "/sessions/sess-1/seats", selectSeatsRequest{Seats: []string{"12A", "12B"}})
	mockService.On("SelectSeats", c.Request.Context(), "sess-1", []string{"12A", "12B"}).Return(nil)

	handler.selectSeats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

// A guard failure carries the step the client should navigate back to.
func TestSessionHandler_selectSeats_guardRedirect(t *testing.T) {
	mockService := &MockFlowUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := testContext(t, "POST", "/sessions/sess-1/seats", selectSeatsRequest{Seats: []string{"12A"}})

	stepErr := &flow.StepError{
		Step: flow.StepFlightSelection,
		Err:  domain.ValidationError("select a flight before choosing seats"),
	}
	mockService.On("SelectSeats", c.Request.Context(), "sess-1", []string{"12A"}).Return(stepErr)

	handler.selectSeats(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, string(flow.StepFlightSelection), response["redirect"])
	assert.Contains(t, response["error"], "select a flight")
}

func TestSessionHandler_createBooking(t *testing.T) {
	mockService := &MockFlowUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := testContext(t, "POST", "/sessions/sess-1/booking", nil)

	booking := &domain.Booking{
		ID:          "b-1",
		BookingCode: "VJ-2026-0001",
		Status:      domain.BookingStatusPendingPayment,
		TotalAmount: 3000000,
		Currency:    "VND",
	}
	mockService.On("CreateBooking", c.Request.Context(), "sess-1").Return(booking, nil)

	handler.createBooking(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response domain.Booking
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "VJ-2026-0001", response.BookingCode)
	assert.Equal(t, domain.BookingStatusPendingPayment, response.Status)

	mockService.AssertExpectations(t)
}

func TestSessionHandler_createPayment_terminalConflict(t *testing.T) {
	mockService := &MockFlowUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := testContext(t, "POST", "/sessions/sess-1/payment", createPaymentRequest{PaymentMethod: "CARD"})
	mockService.On("CreatePayment", c.Request.Context(), "sess-1", "CARD").
		Return(nil, domain.ConflictError("booking VJ-2026-0001 is already CANCELLED"))

	handler.createPayment(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "already CANCELLED")
}

func TestSessionHandler_createBooking_networkUnavailable(t *testing.T) {
	mockService := &MockFlowUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := testContext(t, "POST", "/sessions/sess-1/booking", nil)
	mockService.On("CreateBooking", c.Request.Context(), "sess-1").
		Return(nil, domain.NewError(domain.KindNetworkUnavailable, "could not reach the booking backend"))

	handler.createBooking(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSessionHandler_createBooking_validationFields(t *testing.T) {
	mockService := &MockFlowUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := testContext(t, "POST", "/sessions/sess-1/booking", nil)

	err := domain.ValidationError("must not be blank")
	err.Fields = map[string]string{"fullName": "must not be blank"}
	mockService.On("CreateBooking", c.Request.Context(), "sess-1").Return(nil, err)

	handler.createBooking(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "must not be blank", response.Fields["fullName"])
}

func TestSessionHandler_quote(t *testing.T) {
	mockService := &MockFlowUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := testContext(t, "GET", "/sessions/sess-1/quote", nil)
	mockService.On("Quote", c.Request.Context(), "sess-1").Return(float64(3000000), "VND", nil)

	handler.quote(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.InDelta(t, 3000000, response.Amount, 0.001)
	assert.Equal(t, "VND", response.Currency)
}

func TestSessionHandler_reset(t *testing.T) {
	mockService := &MockFlowUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := testContext(t, "POST", "/sessions/sess-1/reset", nil)
	mockService.On("Reset", c.Request.Context(), "sess-1").Return(nil)

	handler.reset(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, string(flow.StepFlightSelection), response["step"])

	mockService.AssertExpectations(t)
}

func TestSessionHandler_searchFlights(t *testing.T) {
	mockService := &MockFlowUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := testContext(t, "GET", "/sessions/sess-1/flights/search?origin=SGN&destination=HAN&departureDate=2026-09-01&passengers=2", nil)

	expected := domain.FlightSearchParams{
		Origin:        "SGN",
		Destination:   "HAN",
		DepartureDate: "2026-09-01",
		Passengers:    2,
		Page:          0,
		Size:          10,
	}
	mockService.On("SearchFlights", c.Request.Context(), "sess-1", expected).
		Return(&domain.FlightPage{TotalElements: 3}, nil)

	handler.searchFlights(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
