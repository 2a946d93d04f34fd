package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/agrimarket/internal/auth"
	"github.com/smallbiznis/agrimarket/internal/authorization"
	bookingdomain "github.com/smallbiznis/agrimarket/internal/booking/domain"
	bulkdomain "github.com/smallbiznis/agrimarket/internal/bulkpurchase/domain"
	farmerdomain "github.com/smallbiznis/agrimarket/internal/farmer/domain"
	"github.com/smallbiznis/agrimarket/internal/identity"
	listingdomain "github.com/smallbiznis/agrimarket/internal/listing/domain"
	panchayatdomain "github.com/smallbiznis/agrimarket/internal/panchayat/domain"
	paymentdomain "github.com/smallbiznis/agrimarket/internal/payment/domain"
	"github.com/smallbiznis/agrimarket/internal/ratelimit"
	"github.com/smallbiznis/agrimarket/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
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

		var limitErr *ratelimit.LimitError
		if errors.As(lastErr.Err, &limitErr) && limitErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(limitErr.RetryAfter.Seconds()+0.999)))
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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if code, ok := validationCode(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, identity.ErrNoCaller),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ratelimit.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, farmerdomain.ErrPayoutSealerUnavailable):
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

// classifyErrorForLog feeds the request logger with the mapped error type and code.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// validationSentinels lists every domain error reported as a 400. The code
// sent to clients is the sentinel's own text, never the wrapped message.
var validationSentinels = []error{
	ErrInvalidRequest,
	pagination.ErrInvalidPageToken,

	panchayatdomain.ErrInvalidName,
	panchayatdomain.ErrInvalidID,

	farmerdomain.ErrInvalidName,
	farmerdomain.ErrInvalidPhone,
	farmerdomain.ErrInvalidPanchayat,
	farmerdomain.ErrInvalidPayoutAccount,

	listingdomain.ErrInvalidID,
	listingdomain.ErrInvalidCropType,
	listingdomain.ErrInvalidQuantity,
	listingdomain.ErrInvalidPrice,
	listingdomain.ErrInvalidStatus,
	listingdomain.ErrInvalidPanchayat,

	bulkdomain.ErrNoListings,
	bulkdomain.ErrDuplicateListing,
	bulkdomain.ErrInvalidListingID,
	bulkdomain.ErrInvalidNegotiatedPrice,
	bulkdomain.ErrInvalidQuantity,
	bulkdomain.ErrInvalidPrice,
	bulkdomain.ErrInvalidID,
	bulkdomain.ErrMixedPanchayat,

	paymentdomain.ErrInvalidID,
	paymentdomain.ErrInvalidStatus,

	bookingdomain.ErrInvalidMachineType,
	bookingdomain.ErrInvalidPricingMode,
	bookingdomain.ErrInvalidDuration,
	bookingdomain.ErrInvalidBookingDate,
	bookingdomain.ErrInvalidNotes,
	bookingdomain.ErrInvalidStatus,
	bookingdomain.ErrInvalidID,
}

func validationCode(err error) (string, bool) {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}
	return "", false
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, listingdomain.ErrInvalidStatusTransition),
		errors.Is(err, paymentdomain.ErrInvalidTransition),
		errors.Is(err, bookingdomain.ErrInvalidTransition),
		errors.Is(err, bulkdomain.ErrListingUnavailable),
		errors.Is(err, bulkdomain.ErrQuantityMismatch),
		errors.Is(err, panchayatdomain.ErrDuplicate),
		errors.Is(err, farmerdomain.ErrAlreadyRegistered),
		errors.Is(err, listingdomain.ErrFarmerProfileRequired),
		errors.Is(err, bookingdomain.ErrFarmerProfileRequired),
		errors.Is(err, gorm.ErrDuplicatedKey):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, panchayatdomain.ErrNotFound),
		errors.Is(err, farmerdomain.ErrProfileNotFound),
		errors.Is(err, listingdomain.ErrNotFound),
		errors.Is(err, bulkdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, bookingdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "invalid_page_token":
		return "page_token"
	case "listing_ids_required", "duplicate_listing", "mixed_panchayat":
		return "listing_ids"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "invalid_duration":
		return "duration is outside the allowed range for the pricing mode"
	case "mixed_panchayat":
		return "all listings must belong to the same panchayat"
	default:
		return "invalid value"
	}
}
