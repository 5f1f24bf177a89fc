package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"

	"github.com/sorted-fund/sponsor-api/internal/services"
)

// SponsorHandler serves the sponsorship authorization and reconciliation
// endpoints.
type SponsorHandler struct {
	common *CommonServices
}

// NewSponsorHandler creates a new sponsor handler.
func NewSponsorHandler(common *CommonServices) *SponsorHandler {
	return &SponsorHandler{common: common}
}

// AuthorizeSponsorshipRequest is the request body for sponsorship
// authorization. Integer fields are decimal or 0x-hex strings.
type AuthorizeSponsorshipRequest struct {
	ChainID      int64  `json:"chainId" binding:"required"`
	User         string `json:"user" binding:"required"`
	Target       string `json:"target" binding:"required"`
	Selector     string `json:"selector" binding:"required"`
	EstimatedGas string `json:"estimatedGas" binding:"required"`
	ClientNonce  string `json:"clientNonce" binding:"required"`
}

// AuthorizeSponsorshipResponse is the signed authorization payload.
type AuthorizeSponsorshipResponse struct {
	PaymasterAndData string `json:"paymasterAndData"`
	ExpiresAt        string `json:"expiresAt"`
	MaxCost          string `json:"maxCost"`
	PolicyHash       string `json:"policyHash"`
	LinkingSignature string `json:"linkingSignature"`
}

// AuthorizeSponsorship godoc
// @Summary Authorize gas sponsorship for a user operation
// @Description Validates the request against the project's policy and funds, reserves the worst-case cost and returns a signed paymaster authorization
// @Tags sponsor
// @Accept json
// @Produce json
// @Param X-Project-ID header string true "Project ID resolved by the gateway"
// @Param request body AuthorizeSponsorshipRequest true "Sponsorship request"
// @Success 200 {object} AuthorizeSponsorshipResponse
// @Failure 400 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sponsor/authorize [post]
func (h *SponsorHandler) AuthorizeSponsorship(c *gin.Context) {
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	var req AuthorizeSponsorshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_REQUEST", Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.common.Authorization.Authorize(c.Request.Context(), services.AuthorizeRequest{
		ProjectID:    projectID,
		ChainID:      req.ChainID,
		Sender:       req.User,
		Target:       req.Target,
		Selector:     req.Selector,
		EstimatedGas: req.EstimatedGas,
		ClientNonce:  req.ClientNonce,
	})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthorizeSponsorshipResponse{
		PaymasterAndData: result.PaymasterAndData,
		ExpiresAt:        result.ExpiresAt.UTC().Format(time.RFC3339),
		MaxCost:          hexutil.EncodeBig(result.MaxCost),
		PolicyHash:       result.PolicyHash.Hex(),
		LinkingSignature: result.LinkingSignature,
	})
}

// LinkUserOperationRequest associates an on-chain user operation hash with a
// previously issued authorization.
type LinkUserOperationRequest struct {
	LinkingSignature string `json:"linkingSignature" binding:"required"`
	UserOpHash       string `json:"userOpHash" binding:"required"`
}

// LinkUserOperation godoc
// @Summary Link a user operation hash to an authorization
// @Description Attaches the submitted operation hash so the reconciler can settle it later
// @Tags sponsor
// @Accept json
// @Produce json
// @Param X-Project-ID header string true "Project ID resolved by the gateway"
// @Param request body LinkUserOperationRequest true "Linking request"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sponsor/user-operation [post]
func (h *SponsorHandler) LinkUserOperation(c *gin.Context) {
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	var req LinkUserOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_REQUEST", Error: "invalid request body: " + err.Error()})
		return
	}

	if err := h.common.Authorization.LinkUserOperation(c.Request.Context(), projectID, req.LinkingSignature, req.UserOpHash); err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"linked": true})
}

// ReconcileSponsorshipRequest reports the observed outcome of a sponsored
// operation.
type ReconcileSponsorshipRequest struct {
	UserOpHash   string `json:"userOpHash" binding:"required"`
	ActualGas    string `json:"actualGas" binding:"required"`
	Status       string `json:"status" binding:"required"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// ReconcileSponsorship godoc
// @Summary Reconcile a sponsored operation's actual cost
// @Description Settles the reservation against the actual gas used, refunds the unused amount and finalizes the event
// @Tags sponsor
// @Accept json
// @Produce json
// @Param X-Project-ID header string true "Project ID resolved by the gateway"
// @Param request body ReconcileSponsorshipRequest true "Reconciliation request"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sponsor/reconcile [post]
func (h *SponsorHandler) ReconcileSponsorship(c *gin.Context) {
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	var req ReconcileSponsorshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_REQUEST", Error: "invalid request body: " + err.Error()})
		return
	}

	err := h.common.Reconciliation.Reconcile(c.Request.Context(), services.ReconcileRequest{
		ProjectID:    projectID,
		UserOpHash:   req.UserOpHash,
		ActualGas:    req.ActualGas,
		Status:       req.Status,
		ErrorMessage: req.ErrorMessage,
	})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reconciled": true})
}

// GasStatsResponse summarizes estimation accuracy for a project.
type GasStatsResponse struct {
	AvgEstimatedGas     string          `json:"avgEstimatedGas"`
	AvgActualGas        string          `json:"avgActualGas"`
	TotalEvents         int64           `json:"totalEvents"`
	OverestimatedCount  int64           `json:"overestimatedCount"`
	UnderestimatedCount int64           `json:"underestimatedCount"`
	RecentEvents        []GasStatsEvent `json:"recentEvents"`
}

// GasStatsEvent is one settled event in the stats listing.
type GasStatsEvent struct {
	UserOpHash      string `json:"userOpHash,omitempty"`
	Sender          string `json:"sender"`
	Target          string `json:"target"`
	Selector        string `json:"selector"`
	EstimatedGas    string `json:"estimatedGas"`
	ActualGas       string `json:"actualGas"`
	Status          string `json:"status"`
	AccuracyPercent string `json:"accuracyPercent,omitempty"`
	CompletedAt     string `json:"completedAt,omitempty"`
}

// GetGasStats godoc
// @Summary Gas estimation accuracy statistics
// @Description Returns average estimated vs actual gas and the most recently settled events
// @Tags sponsor
// @Produce json
// @Param X-Project-ID header string true "Project ID resolved by the gateway"
// @Param limit query int false "Max recent events to return" default(20)
// @Success 200 {object} GasStatsResponse
// @Failure 500 {object} ErrorResponse
// @Router /sponsor/gas-stats [get]
func (h *SponsorHandler) GetGasStats(c *gin.Context) {
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	stats, err := h.common.Reconciliation.GetEstimationStats(ctx, projectID)
	if err != nil {
		sendError(c, err)
		return
	}

	limit := int32(20)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = int32(parsed)
		}
	}

	recent, err := h.common.Reconciliation.ListRecentCompletedEvents(ctx, projectID, limit)
	if err != nil {
		sendError(c, err)
		return
	}

	response := GasStatsResponse{
		AvgEstimatedGas:     stats.AvgEstimatedGas.String(),
		AvgActualGas:        stats.AvgActualGas.String(),
		TotalEvents:         stats.TotalEvents,
		OverestimatedCount:  stats.OverestimatedCount,
		UnderestimatedCount: stats.UnderestimatedCount,
		RecentEvents:        make([]GasStatsEvent, 0, len(recent)),
	}
	for _, row := range recent {
		event := GasStatsEvent{
			Sender:       row.Sender,
			Target:       row.Target,
			Selector:     row.Selector,
			EstimatedGas: numericString(row.EstimatedGas),
			ActualGas:    numericString(row.ActualGas),
			Status:       string(row.Status),
		}
		if row.UserOpHash.Valid {
			event.UserOpHash = row.UserOpHash.String
		}
		if row.AccuracyPercent.Valid {
			event.AccuracyPercent = numericDecimalString(row.AccuracyPercent)
		}
		if row.CompletedAt.Valid {
			event.CompletedAt = row.CompletedAt.Time.UTC().Format(time.RFC3339)
		}
		response.RecentEvents = append(response.RecentEvents, event)
	}

	c.JSON(http.StatusOK, response)
}
