package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sorted-fund/sponsor-api/internal/services"
)

// ProjectHandler serves gas tank funding and audit endpoints.
type ProjectHandler struct {
	common *CommonServices
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(common *CommonServices) *ProjectHandler {
	return &ProjectHandler{common: common}
}

// CreditGasTankRequest is the request body for a gas tank top-up.
type CreditGasTankRequest struct {
	ChainID int64  `json:"chainId" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
	TxHash  string `json:"txHash,omitempty"`
}

// CreditGasTankResponse reports the applied credit.
type CreditGasTankResponse struct {
	LedgerEntryID int64  `json:"ledgerEntryId"`
	Amount        string `json:"amount"`
}

// CreditGasTank godoc
// @Summary Credit a project's gas tank
// @Description Applies an external deposit as a ledger credit, idempotent per deposit transaction hash
// @Tags projects
// @Accept json
// @Produce json
// @Param X-Project-ID header string true "Project ID resolved by the gateway"
// @Param request body CreditGasTankRequest true "Credit request"
// @Success 200 {object} CreditGasTankResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /projects/gas-tank/credit [post]
func (h *ProjectHandler) CreditGasTank(c *gin.Context) {
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	var req CreditGasTankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_REQUEST", Error: "invalid request body: " + err.Error()})
		return
	}

	entry, err := h.common.Projects.CreditGasTank(c.Request.Context(), services.CreditGasTankRequest{
		ProjectID: projectID,
		ChainID:   req.ChainID,
		Amount:    req.Amount,
		TxHash:    req.TxHash,
	})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, CreditGasTankResponse{
		LedgerEntryID: entry.ID,
		Amount:        numericString(entry.Amount),
	})
}

// GasTankStatusResponse is the read-only gas tank snapshot.
type GasTankStatusResponse struct {
	ProjectID    string `json:"projectId"`
	Status       string `json:"status"`
	Balance      string `json:"balance"`
	DailyCap     string `json:"dailyCap"`
	DailySpent   string `json:"dailySpent"`
	DailyResetAt string `json:"dailyResetAt"`
}

// GetGasTankStatus godoc
// @Summary Get a project's gas tank status
// @Description Returns the cached balance and daily spending window
// @Tags projects
// @Produce json
// @Param X-Project-ID header string true "Project ID resolved by the gateway"
// @Success 200 {object} GasTankStatusResponse
// @Failure 404 {object} ErrorResponse
// @Router /projects/gas-tank [get]
func (h *ProjectHandler) GetGasTankStatus(c *gin.Context) {
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	status, err := h.common.Projects.GetGasTankStatus(c.Request.Context(), projectID)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, GasTankStatusResponse{
		ProjectID:    status.ProjectID,
		Status:       string(status.Status),
		Balance:      status.Balance.String(),
		DailyCap:     status.DailyCap.String(),
		DailySpent:   status.DailySpent.String(),
		DailyResetAt: status.DailyResetAt,
	})
}

// FundsParityResponse reports the cached versus ledger-derived balance.
type FundsParityResponse struct {
	ProjectID     string `json:"projectId"`
	CachedBalance string `json:"cachedBalance"`
	LedgerBalance string `json:"ledgerBalance"`
	Delta         string `json:"delta"`
	InParity      bool   `json:"inParity"`
}

// CheckFundsParity godoc
// @Summary Audit gas tank balance against the ledger
// @Description Recomputes the balance from the append-only ledger and compares it to the cached value
// @Tags projects
// @Produce json
// @Param X-Project-ID header string true "Project ID resolved by the gateway"
// @Success 200 {object} FundsParityResponse
// @Failure 404 {object} ErrorResponse
// @Router /projects/gas-tank/parity [get]
func (h *ProjectHandler) CheckFundsParity(c *gin.Context) {
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	report, err := h.common.Projects.CheckFundsParity(c.Request.Context(), projectID)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, FundsParityResponse{
		ProjectID:     report.ProjectID,
		CachedBalance: report.CachedBalance.String(),
		LedgerBalance: report.LedgerBalance.String(),
		Delta:         report.Delta.String(),
		InParity:      report.InParity,
	})
}

// LedgerEntryResponse is one ledger entry in the listing.
type LedgerEntryResponse struct {
	ID             int64  `json:"id"`
	EntryType      string `json:"entryType"`
	Amount         string `json:"amount"`
	AssetSymbol    string `json:"assetSymbol"`
	ReferenceType  string `json:"referenceType,omitempty"`
	ReferenceID    string `json:"referenceId,omitempty"`
	IdempotencyKey string `json:"idempotencyKey"`
	CreatedAt      string `json:"createdAt"`
}

// ListLedgerEntries godoc
// @Summary List a project's fund ledger entries
// @Description Pages through the append-only ledger, newest first
// @Tags projects
// @Produce json
// @Param X-Project-ID header string true "Project ID resolved by the gateway"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} LedgerEntryResponse
// @Failure 500 {object} ErrorResponse
// @Router /projects/gas-tank/ledger [get]
func (h *ProjectHandler) ListLedgerEntries(c *gin.Context) {
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	limit := int32(50)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = int32(parsed)
		}
	}
	offset := int32(0)
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = int32(parsed)
		}
	}

	entries, err := h.common.Projects.ListLedgerEntries(c.Request.Context(), projectID, limit, offset)
	if err != nil {
		sendError(c, err)
		return
	}

	response := make([]LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		item := LedgerEntryResponse{
			ID:             entry.ID,
			EntryType:      string(entry.EntryType),
			Amount:         numericString(entry.Amount),
			AssetSymbol:    entry.AssetSymbol,
			IdempotencyKey: entry.IdempotencyKey,
			CreatedAt:      entry.CreatedAt.Time.UTC().Format(time.RFC3339),
		}
		if entry.ReferenceType.Valid {
			item.ReferenceType = entry.ReferenceType.String
		}
		if entry.ReferenceID.Valid {
			item.ReferenceID = entry.ReferenceID.String
		}
		response = append(response, item)
	}

	c.JSON(http.StatusOK, response)
}
