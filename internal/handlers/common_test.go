package handlers

import (
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/sorted-fund/sponsor-api/internal/logger"
	"github.com/sorted-fund/sponsor-api/internal/services"
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

func TestSendErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"validation", services.NewValidationError("INVALID_SELECTOR", "bad selector"), http.StatusBadRequest, "INVALID_SELECTOR"},
		{"not found", services.NewNotFoundError("PROJECT_NOT_FOUND", "project not found"), http.StatusNotFound, "PROJECT_NOT_FOUND"},
		{"policy", services.NewPolicyError("TARGET_NOT_ALLOWED", "not allowlisted"), http.StatusForbidden, "TARGET_NOT_ALLOWED"},
		{"resource", services.NewResourceError("INSUFFICIENT_FUNDS", "top up required"), http.StatusPaymentRequired, "INSUFFICIENT_FUNDS"},
		{"infrastructure", services.NewInfrastructureError("STORE_UNAVAILABLE", "store down", errors.New("conn refused")), http.StatusInternalServerError, "STORE_UNAVAILABLE"},
		{"untyped", errors.New("something broke"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			sendError(c, tc.err)

			require.Equal(t, tc.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tc.wantBody)
			// Wrapped causes stay internal.
			require.NotContains(t, w.Body.String(), "conn refused")
		})
	}
}

func TestRequireProjectID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := requireProjectID(c)
	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set(projectIDHeader, "proj-1")

	projectID, ok := requireProjectID(c)
	require.True(t, ok)
	require.Equal(t, "proj-1", projectID)
}

func TestNumericDecimalString(t *testing.T) {
	tests := []struct {
		name string
		in   pgtype.Numeric
		want string
	}{
		{"null", pgtype.Numeric{}, ""},
		{"integer", pgtype.Numeric{Int: big.NewInt(98), Valid: true}, "98"},
		{"two decimal places", pgtype.Numeric{Int: big.NewInt(9850), Exp: -2, Valid: true}, "98.50"},
		{"leading zero", pgtype.Numeric{Int: big.NewInt(5), Exp: -2, Valid: true}, "0.05"},
		{"negative", pgtype.Numeric{Int: big.NewInt(-125), Exp: -1, Valid: true}, "-12.5"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, numericDecimalString(tc.in))
		})
	}
}
