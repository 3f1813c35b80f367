package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/vitalpath/vitalpath/internal/catalog/domain"
	checkoutdomain "github.com/vitalpath/vitalpath/internal/checkout/domain"
	confirmationdomain "github.com/vitalpath/vitalpath/internal/confirmation/domain"
	guestsessiondomain "github.com/vitalpath/vitalpath/internal/guestsession/domain"
	paymentdomain "github.com/vitalpath/vitalpath/internal/payment/domain"
	purchasedomain "github.com/vitalpath/vitalpath/internal/purchase/domain"
	reconciledomain "github.com/vitalpath/vitalpath/internal/reconcile/domain"
	userdomain "github.com/vitalpath/vitalpath/internal/user/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
	ErrRateLimited        = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, confirmationdomain.ErrAlreadyPurchased),
		errors.Is(err, purchasedomain.ErrDuplicateTransaction):
		return http.StatusConflict, errorPayload{
			Type:    "already_purchased",
			Message: "item already purchased",
		}
	case errors.Is(err, confirmationdomain.ErrPaymentIncomplete):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "payment_incomplete",
			Message: "payment not completed",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, paymentdomain.ErrGatewayFailure):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, catalogdomain.ErrInvalidType),
		errors.Is(err, catalogdomain.ErrInvalidTitle),
		errors.Is(err, catalogdomain.ErrInvalidPrice),
		errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, checkoutdomain.ErrProductUnavailable),
		errors.Is(err, confirmationdomain.ErrMissingReference),
		errors.Is(err, confirmationdomain.ErrMalformedSession),
		errors.Is(err, confirmationdomain.ErrMissingUser),
		errors.Is(err, guestsessiondomain.ErrInvalidVisitor),
		errors.Is(err, guestsessiondomain.ErrInvalidProduct),
		errors.Is(err, purchasedomain.ErrInvalidUser),
		errors.Is(err, purchasedomain.ErrInvalidItem),
		errors.Is(err, purchasedomain.ErrInvalidTransaction),
		errors.Is(err, reconciledomain.ErrInvalidUser),
		errors.Is(err, reconciledomain.ErrInvalidVisitor),
		errors.Is(err, userdomain.ErrInvalidUser):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, purchasedomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrSessionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
