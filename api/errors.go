package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/bookingflow/internal/domain"
	"github.com/Domenick1991/bookingflow/internal/service/flow"
	"github.com/gin-gonic/gin"
)

// writeError maps the error taxonomy onto HTTP statuses. Guard failures
// additionally carry the step the session should go back to.
func writeError(c *gin.Context, err error) {
	var stepErr *flow.StepError
	if errors.As(err, &stepErr) {
		c.JSON(statusFor(stepErr.Err.Kind), gin.H{
			"error":    stepErr.Err.Message,
			"redirect": stepErr.Step,
		})
		return
	}

	var domErr *domain.Error
	if errors.As(err, &domErr) {
		body := gin.H{"error": domErr.Message}
		if len(domErr.Fields) > 0 {
			body["fields"] = domErr.Fields
		}
		c.JSON(statusFor(domErr.Kind), body)
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidationFailed:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNetworkUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindServerError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
