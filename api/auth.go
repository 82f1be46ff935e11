package api

import (
	"net/http"

	"github.com/Domenick1991/bookingflow/internal/backend"
	"github.com/Domenick1991/bookingflow/internal/service/flow"
	"github.com/gin-gonic/gin"
)

// AuthHandler proxies authentication to the upstream backend and binds the
// resulting credential to a flow session.
type AuthHandler struct {
	service flow.UseCase
}

func NewAuthHandler(service flow.UseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/sessions/:id/login", h.login)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Login(c.Request.Context(), c.Param("id"), req.Email, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

func (h *AuthHandler) register(c *gin.Context) {
	var req backend.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
