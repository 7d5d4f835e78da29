package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	authdomain "github.com/vivendahq/vivenda/internal/auth/domain"
	billingdomain "github.com/vivendahq/vivenda/internal/billing/domain"
	categorydomain "github.com/vivendahq/vivenda/internal/category/domain"
	chatdomain "github.com/vivendahq/vivenda/internal/chat/domain"
	contractdomain "github.com/vivendahq/vivenda/internal/contract/domain"
	propertydomain "github.com/vivendahq/vivenda/internal/property/domain"
	saledomain "github.com/vivendahq/vivenda/internal/sale/domain"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
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
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
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
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, propertydomain.ErrNotOwner),
		errors.Is(err, chatdomain.ErrNotMember):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrEmailTaken),
		errors.Is(err, categorydomain.ErrNameTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isAuthValidationError(err),
		isCategoryValidationError(err),
		isPropertyValidationError(err),
		isContractValidationError(err),
		isSaleValidationError(err),
		isBillingValidationError(err),
		isChatValidationError(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, propertydomain.ErrNotFound),
		errors.Is(err, propertydomain.ErrImageNotFound),
		errors.Is(err, contractdomain.ErrNotFound),
		errors.Is(err, saledomain.ErrNotFound),
		errors.Is(err, billingdomain.ErrBillNotFound),
		errors.Is(err, billingdomain.ErrBillableNotFound),
		errors.Is(err, chatdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func isAuthValidationError(err error) bool {
	switch err {
	case authdomain.ErrInvalidName,
		authdomain.ErrInvalidEmail,
		authdomain.ErrInvalidPassword,
		authdomain.ErrInvalidRole:
		return true
	default:
		return false
	}
}

func isCategoryValidationError(err error) bool {
	switch err {
	case categorydomain.ErrInvalidName:
		return true
	default:
		return false
	}
}

func isPropertyValidationError(err error) bool {
	switch err {
	case propertydomain.ErrInvalidID,
		propertydomain.ErrInvalidAddress,
		propertydomain.ErrInvalidCity,
		propertydomain.ErrInvalidCategory,
		propertydomain.ErrInvalidPrice,
		propertydomain.ErrInvalidTransactionType,
		propertydomain.ErrInvalidListingStatus,
		propertydomain.ErrInvalidImageURL:
		return true
	default:
		return false
	}
}

func isContractValidationError(err error) bool {
	switch err {
	case contractdomain.ErrInvalidID,
		contractdomain.ErrInvalidProperty,
		contractdomain.ErrInvalidTenant,
		contractdomain.ErrInvalidDates,
		contractdomain.ErrInvalidRent,
		contractdomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}

func isSaleValidationError(err error) bool {
	switch err {
	case saledomain.ErrInvalidID,
		saledomain.ErrInvalidProperty,
		saledomain.ErrInvalidBuyer,
		saledomain.ErrInvalidAmount,
		saledomain.ErrInvalidSaleType,
		saledomain.ErrInvalidInstallments,
		saledomain.ErrInvalidInstallmentAmount,
		saledomain.ErrInvalidSaleDate:
		return true
	default:
		return false
	}
}

func isBillingValidationError(err error) bool {
	switch err {
	case billingdomain.ErrInvalidBillID,
		billingdomain.ErrInvalidBillable,
		billingdomain.ErrInvalidDueDate,
		billingdomain.ErrInvalidAmount,
		billingdomain.ErrInvalidStatus,
		billingdomain.ErrInvalidPayment,
		billingdomain.ErrInvalidPaymentDate:
		return true
	default:
		return false
	}
}

func isChatValidationError(err error) bool {
	switch err {
	case chatdomain.ErrInvalidID,
		chatdomain.ErrInvalidCounterpart,
		chatdomain.ErrInvalidBody:
		return true
	default:
		return false
	}
}
