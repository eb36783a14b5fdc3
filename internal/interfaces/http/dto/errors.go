package dto

import "net/http"

// Error codes produced by the HTTP layer itself
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	ErrCodePlanLimit    = "PLAN_LIMIT_REACHED"
)

// domainErrorStatus maps domain error codes to HTTP status codes. Codes not
// listed here fall back to 500 so that a forgotten mapping is loud in
// monitoring rather than silently user-attributed.
var domainErrorStatus = map[string]int{
	"NOT_FOUND":          http.StatusNotFound,
	"NO_ACTIVE_BUSINESS": http.StatusBadRequest,

	"UNAUTHORIZED":        http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"INVALID_TOKEN":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,

	"FORBIDDEN":         http.StatusForbidden,
	"PERMISSION_DENIED": http.StatusForbidden,

	"EMAIL_TAKEN":           http.StatusConflict,
	"ALREADY_EXISTS":        http.StatusConflict,
	"DUPLICATE_TEAM_MEMBER": http.StatusConflict,
	"DUPLICATE_INVITATION":  http.StatusConflict,

	"SELF_MODIFICATION":  http.StatusUnprocessableEntity,
	"SELF_INVITE":        http.StatusUnprocessableEntity,
	"NOT_A_MEMBER":       http.StatusUnprocessableEntity,
	"INVITATION_USED":    http.StatusUnprocessableEntity,
	"INVALID_STATUS":     http.StatusUnprocessableEntity,
	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,

	"INVALID_INPUT":       http.StatusBadRequest,
	"INVALID_NAME":        http.StatusBadRequest,
	"INVALID_EMAIL":       http.StatusBadRequest,
	"INVALID_PASSWORD":    http.StatusBadRequest,
	"INVALID_ROLE":        http.StatusBadRequest,
	"INVALID_AMOUNT":      http.StatusBadRequest,
	"INVALID_QUANTITY":    http.StatusBadRequest,
	"INVALID_PRICE":       http.StatusBadRequest,
	"INVALID_TARGET":      http.StatusBadRequest,
	"INVALID_LOCATION":    http.StatusBadRequest,
	"INVALID_BUSINESS":    http.StatusBadRequest,
	"INVALID_CLIENT":      http.StatusBadRequest,
	"INVALID_CATEGORY":    http.StatusBadRequest,
	"INVALID_THEME":       http.StatusBadRequest,
	"INVALID_DATES":       http.StatusBadRequest,
	"INVALID_ITEM":        http.StatusBadRequest,
	"INVALID_NUMBER":      http.StatusBadRequest,
	"INVALID_TAX":         http.StatusBadRequest,
	"INVALID_KIND":        http.StatusBadRequest,
	"INVALID_TYPE":        http.StatusBadRequest,
	"INVALID_METHOD":      http.StatusBadRequest,
	"INVALID_FILE_TYPE":   http.StatusBadRequest,
	"INVALID_FILE_SIZE":   http.StatusBadRequest,
	"INVALID_DESCRIPTION": http.StatusBadRequest,
	"BAD_REQUEST":         http.StatusBadRequest,

	ErrCodePlanLimit:   http.StatusForbidden,
	ErrCodeRateLimited: http.StatusTooManyRequests,
	ErrCodeInternal:    http.StatusInternalServerError,
}

// StatusForCode returns the HTTP status for a domain error code
func StatusForCode(code string) int {
	if status, ok := domainErrorStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
