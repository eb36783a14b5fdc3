package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fakturly/backend/internal/application/billing"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func handleErrorResponse(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h := &BaseHandler{}
	h.HandleError(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestBaseHandler_HandleError(t *testing.T) {
	t.Run("not found maps to 404", func(t *testing.T) {
		w, body := handleErrorResponse(t, shared.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, w.Code)
		errInfo := body["error"].(map[string]interface{})
		assert.Equal(t, "NOT_FOUND", errInfo["code"])
	})

	t.Run("permission denial maps to 403", func(t *testing.T) {
		w, body := handleErrorResponse(t, shared.NewDomainError("PERMISSION_DENIED", "Operation not permitted for this role"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		errInfo := body["error"].(map[string]interface{})
		assert.Equal(t, "PERMISSION_DENIED", errInfo["code"])
	})

	t.Run("self modification maps to 422", func(t *testing.T) {
		w, _ := handleErrorResponse(t, shared.ErrSelfModification)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("duplicate member maps to 409", func(t *testing.T) {
		w, _ := handleErrorResponse(t, shared.ErrDuplicateTeamMember)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("plan limit carries quota numbers and upgrade flag", func(t *testing.T) {
		w, body := handleErrorResponse(t, &billing.PlanLimitError{
			Resource: billing.ResourceInvoices,
			Limit:    5,
			Current:  5,
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
		errInfo := body["error"].(map[string]interface{})
		assert.Equal(t, "PLAN_LIMIT_REACHED", errInfo["code"])
		assert.Equal(t, float64(5), errInfo["limit"])
		assert.Equal(t, float64(5), errInfo["current"])
		assert.Equal(t, true, errInfo["upgrade_required"])
	})

	t.Run("unknown errors map to 500 without leaking detail", func(t *testing.T) {
		w, body := handleErrorResponse(t, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		errInfo := body["error"].(map[string]interface{})
		assert.Equal(t, "INTERNAL_ERROR", errInfo["code"])
		assert.NotContains(t, errInfo["message"], "pq:")
	})

	t.Run("unmapped domain codes fall back to 500", func(t *testing.T) {
		w, _ := handleErrorResponse(t, shared.NewDomainError("SOMETHING_NEW", "oops"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
