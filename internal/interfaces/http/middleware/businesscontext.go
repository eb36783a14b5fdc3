package middleware

import (
	"errors"
	"net/http"

	identityapp "github.com/fakturly/backend/internal/application/identity"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Business context keys
const (
	BusinessContextKey = "business_context"
	BusinessHeaderKey  = "X-Business-ID"
	BusinessQueryKey   = "business_id"
)

// BusinessContext resolves the active business for the authenticated user
// and stores the resolved context for handlers. It must run after JWTAuth.
// The business is taken from the X-Business-ID header, falling back to the
// business_id query parameter.
func BusinessContext(resolver *identityapp.ContextResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetJWTUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Authentication required",
				},
			})
			return
		}

		raw := c.GetHeader(BusinessHeaderKey)
		if raw == "" {
			raw = c.Query(BusinessQueryKey)
		}
		if raw == "" {
			abortBusinessError(c, shared.ErrNoActiveBusiness)
			return
		}

		businessID, err := uuid.Parse(raw)
		if err != nil {
			abortBusinessError(c, shared.NewDomainError("INVALID_BUSINESS", "Business ID must be a valid UUID"))
			return
		}

		rc, err := resolver.Resolve(c.Request.Context(), userID, businessID)
		if err != nil {
			abortBusinessError(c, err)
			return
		}

		c.Set(BusinessContextKey, rc)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithBusinessID(ctx, log, businessID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortBusinessError(c *gin.Context, err error) {
	code := "INTERNAL_ERROR"
	message := "An unexpected error occurred"
	status := http.StatusInternalServerError

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		message = domainErr.Message
		switch code {
		case "NOT_FOUND":
			status = http.StatusNotFound
		case "NO_ACTIVE_BUSINESS", "INVALID_BUSINESS":
			status = http.StatusBadRequest
		default:
			status = http.StatusForbidden
		}
	}

	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// GetBusinessContext retrieves the resolved business context from gin.Context
func GetBusinessContext(c *gin.Context) *identityapp.ResolvedContext {
	if rc, exists := c.Get(BusinessContextKey); exists {
		if resolved, ok := rc.(*identityapp.ResolvedContext); ok {
			return resolved
		}
	}
	return nil
}
