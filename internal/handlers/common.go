package handlers

import (
	"math/big"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/logger"
	"github.com/sorted-fund/sponsor-api/internal/services"
)

// projectIDHeader carries the project identity resolved by the upstream
// authentication gateway. Handlers trust it and never authenticate callers.
const projectIDHeader = "X-Project-ID"

// CommonServices bundles the service dependencies shared by all handlers.
type CommonServices struct {
	Authorization  *services.AuthorizationService
	Reconciliation *services.ReconciliationService
	Projects       *services.ProjectService
}

// ErrorResponse is the uniform error body: a stable machine-readable code and
// a human message. Internal details never leave the process.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// sendError maps a service error kind to its transport status.
func sendError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "internal server error"

	if svcErr, ok := services.AsServiceError(err); ok {
		code = svcErr.Code
		message = svcErr.Message
		switch svcErr.Kind {
		case services.ErrorKindValidation:
			status = http.StatusBadRequest
		case services.ErrorKindNotFound:
			status = http.StatusNotFound
		case services.ErrorKindPolicy:
			status = http.StatusForbidden
		case services.ErrorKindResource:
			status = http.StatusPaymentRequired
		case services.ErrorKindInfrastructure:
			status = http.StatusInternalServerError
		}
	}

	if status == http.StatusInternalServerError {
		logger.Log.Error("Request failed", zap.Error(err), zap.String("path", c.FullPath()))
	}

	c.JSON(status, ErrorResponse{Code: code, Error: message})
}

// numericString renders an integer NUMERIC column for JSON.
func numericString(n pgtype.Numeric) string {
	return db.NumericToBig(n).String()
}

// numericDecimalString renders a NUMERIC column that may carry a fractional
// scale, such as the accuracy percentage.
func numericDecimalString(n pgtype.Numeric) string {
	if !n.Valid || n.Int == nil {
		return ""
	}
	if n.Exp >= 0 {
		return db.NumericToBig(n).String()
	}

	exp := int(-n.Exp)
	digits := new(big.Int).Abs(n.Int).String()
	if len(digits) <= exp {
		digits = strings.Repeat("0", exp-len(digits)+1) + digits
	}
	out := digits[:len(digits)-exp] + "." + digits[len(digits)-exp:]
	if n.Int.Sign() < 0 {
		out = "-" + out
	}
	return out
}

// requireProjectID reads the trusted project identity header. A missing
// header means the request bypassed the gateway.
func requireProjectID(c *gin.Context) (string, bool) {
	projectID := c.GetHeader(projectIDHeader)
	if projectID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:  "MISSING_PROJECT_ID",
			Error: "project identity header is required",
		})
		return "", false
	}
	return projectID, true
}
