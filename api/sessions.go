package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/bookingflow/internal/domain"
	"github.com/Domenick1991/bookingflow/internal/service/flow"
	"github.com/gin-gonic/gin"
)

// SessionHandler exposes the booking flow: one route per step plus the
// session lifecycle.
type SessionHandler struct {
	service flow.UseCase
}

func NewSessionHandler(service flow.UseCase) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.start)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.end)
	router.POST("/:id/flight", h.selectFlight)
	router.POST("/:id/seats", h.selectSeats)
	router.GET("/:id/seats/booked", h.bookedSeats)
	router.POST("/:id/travellers", h.setTravellers)
	router.POST("/:id/extras", h.setExtras)
	router.GET("/:id/quote", h.quote)
	router.POST("/:id/booking", h.createBooking)
	router.POST("/:id/booking/refresh", h.refreshBooking)
	router.POST("/:id/payment", h.createPayment)
	router.POST("/:id/reset", h.reset)
	router.GET("/:id/flights/search", h.searchFlights)
}

type sessionResponse struct {
	SessionID string              `json:"sessionId"`
	Step      flow.Step           `json:"step"`
	Draft     domain.BookingDraft `json:"draft"`
}

func (h *SessionHandler) start(c *gin.Context) {
	id, err := h.service.StartSession(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sessionId": id, "step": flow.StepFlightSelection})
}

func (h *SessionHandler) get(c *gin.Context) {
	id := c.Param("id")
	draft, step, err := h.service.Session(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{SessionID: id, Step: step, Draft: draft})
}

func (h *SessionHandler) end(c *gin.Context) {
	if err := h.service.EndSession(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ended": true})
}

func (h *SessionHandler) selectFlight(c *gin.Context) {
	var req domain.FlightSegment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.SelectFlight(c.Request.Context(), c.Param("id"), req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"step": flow.StepSeatSelection})
}

type selectSeatsRequest struct {
	Seats []string `json:"seats"`
}

func (h *SessionHandler) selectSeats(c *gin.Context) {
	var req selectSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.SelectSeats(c.Request.Context(), c.Param("id"), req.Seats); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"step": flow.StepTravellerInfo})
}

func (h *SessionHandler) bookedSeats(c *gin.Context) {
	seats, err := h.service.BookedSeats(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookedSeats": seats})
}

type travellersRequest struct {
	Passengers []domain.Passenger `json:"passengers"`
}

func (h *SessionHandler) setTravellers(c *gin.Context) {
	var req travellersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.SetTravellers(c.Request.Context(), c.Param("id"), req.Passengers); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"step": flow.StepExtraServices})
}

func (h *SessionHandler) setExtras(c *gin.Context) {
	var req domain.ExtraServices
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.SetExtraServices(c.Request.Context(), c.Param("id"), req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"step": flow.StepPayment})
}

func (h *SessionHandler) quote(c *gin.Context) {
	amount, currency, err := h.service.Quote(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amount, "currency": currency})
}

func (h *SessionHandler) createBooking(c *gin.Context) {
	booking, err := h.service.CreateBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *SessionHandler) refreshBooking(c *gin.Context) {
	booking, err := h.service.RefreshBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

type createPaymentRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

func (h *SessionHandler) createPayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payment, err := h.service.CreatePayment(c.Request.Context(), c.Param("id"), req.PaymentMethod)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *SessionHandler) reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"step": flow.StepFlightSelection})
}

func (h *SessionHandler) searchFlights(c *gin.Context) {
	params := domain.FlightSearchParams{
		Origin:        c.Query("origin"),
		Destination:   c.Query("destination"),
		DepartureDate: c.Query("departureDate"),
		CabinClass:    c.Query("cabinClass"),
	}
	params.Passengers = intQuery(c, "passengers", 1)
	params.Page = intQuery(c, "page", 0)
	params.Size = intQuery(c, "size", 10)

	page, err := h.service.SearchFlights(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
