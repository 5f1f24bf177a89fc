package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/logger"
)

// discrepancyThresholdPercent is the estimation error above which a
// reconciliation emits a monitoring observation.
const discrepancyThresholdPercent = 20

// ReconciliationService settles authorized sponsorship events once the real
// on-chain cost is known: records the settled cost, refunds the unused
// reservation and moves the event to a terminal state exactly once.
type ReconciliationService struct {
	store     db.Store
	ledger    *FundLedgerService
	gasPrices *GasPriceService
	logger    *zap.Logger
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(store db.Store, ledger *FundLedgerService, gasPrices *GasPriceService) *ReconciliationService {
	return &ReconciliationService{
		store:     store,
		ledger:    ledger,
		gasPrices: gasPrices,
		logger:    logger.Log,
	}
}

// ReconcileRequest carries the observed outcome of a sponsored operation.
type ReconcileRequest struct {
	ProjectID    string
	UserOpHash   string
	ActualGas    string
	Status       string // success, failed or reverted
	ErrorMessage string
}

// Reconcile settles the event in one transaction under the event row lock.
// Redelivery after completion is a no-op; retries after a mid-flight failure
// are safe because every ledger write is idempotent by key.
func (s *ReconciliationService) Reconcile(ctx context.Context, req ReconcileRequest) error {
	if !userOpHashPattern.MatchString(req.UserOpHash) {
		return NewValidationError("INVALID_USER_OP_HASH", "userOpHash must be a 32-byte hex string")
	}
	actualGas, ok := parseBigAmount(req.ActualGas)
	if !ok {
		return NewValidationError("INVALID_ACTUAL_GAS", "actualGas must be a non-negative integer")
	}
	outcome, err := terminalStatus(req.Status)
	if err != nil {
		return err
	}

	userOpHash := NormalizeHex(req.UserOpHash)

	err = s.store.ExecTx(ctx, func(q db.Querier) error {
		event, txErr := q.GetSponsorshipEventForUpdate(ctx, db.GetSponsorshipEventForUpdateParams{
			ProjectID:  req.ProjectID,
			UserOpHash: userOpHash,
		})
		if txErr != nil {
			if errors.Is(txErr, pgx.ErrNoRows) {
				return NewNotFoundError("EVENT_NOT_FOUND", "no sponsorship event matches the user operation")
			}
			return fmt.Errorf("failed to lock sponsorship event: %w", txErr)
		}

		// Redelivered after completion.
		if event.CompletedAt.Valid {
			s.logger.Info("Reconciliation already completed",
				zap.Int64("event_id", event.ID),
				zap.String("user_op_hash", userOpHash),
			)
			return nil
		}

		reservedMaxCost := db.NumericToBig(event.MaxCost)

		// The fee lookup is bounded by its own timeout and degrades to the
		// fallback price, so holding the row lock across it is acceptable.
		gasPrice := s.gasPrices.EffectiveGasPrice(ctx, event.ChainID)
		rawCost := new(big.Int).Mul(actualGas, gasPrice)

		// Settlement can never exceed the reservation, even if fees spiked
		// between authorization and execution.
		settledCost := rawCost
		if settledCost.Cmp(reservedMaxCost) > 0 {
			settledCost = reservedMaxCost
		}

		settlementEntry, txErr := s.ledger.RecordSettlementTx(ctx, q, SettlementParams{
			ProjectID:      req.ProjectID,
			ChainID:        event.ChainID,
			Amount:         settledCost,
			IdempotencyKey: fmt.Sprintf("settlement:%s:%s", req.ProjectID, userOpHash),
			Refs: LedgerRefs{
				ReferenceType: "sponsorship_settlement",
				ReferenceID:   userOpHash,
				Metadata: map[string]string{
					"actual_gas":    actualGas.String(),
					"gas_price_wei": gasPrice.String(),
				},
			},
		})
		if txErr != nil {
			return txErr
		}
		if txErr := q.SetSettledLedgerEntry(ctx, db.SetSettledLedgerEntryParams{
			ID:                   event.ID,
			SettledLedgerEntryID: pgtype.Int8{Int64: settlementEntry.ID, Valid: true},
		}); txErr != nil {
			return fmt.Errorf("failed to link settlement entry: %w", txErr)
		}

		refund := new(big.Int).Sub(reservedMaxCost, settledCost)
		if refund.Sign() > 0 {
			releaseEntry, txErr := s.ledger.ReleaseTx(ctx, q, ReleaseParams{
				ProjectID:      req.ProjectID,
				ChainID:        event.ChainID,
				Amount:         refund,
				IdempotencyKey: fmt.Sprintf("release:%s:%s", req.ProjectID, userOpHash),
				Refs: LedgerRefs{
					ReferenceType: "sponsorship_refund",
					ReferenceID:   userOpHash,
				},
			})
			if txErr != nil {
				return txErr
			}
			if txErr := q.SetReleasedLedgerEntry(ctx, db.SetReleasedLedgerEntryParams{
				ID:                    event.ID,
				ReleasedLedgerEntryID: pgtype.Int8{Int64: releaseEntry.ID, Valid: true},
			}); txErr != nil {
				return fmt.Errorf("failed to link release entry: %w", txErr)
			}
		}

		var errorMessage pgtype.Text
		if req.ErrorMessage != "" {
			errorMessage = pgtype.Text{String: req.ErrorMessage, Valid: true}
		}
		if txErr := q.CompleteSponsorshipEvent(ctx, db.CompleteSponsorshipEventParams{
			ID:           event.ID,
			ActualGas:    db.NumericFromBig(actualGas),
			Status:       outcome,
			ErrorMessage: errorMessage,
		}); txErr != nil {
			return fmt.Errorf("failed to complete sponsorship event: %w", txErr)
		}

		s.observeDiscrepancy(event, actualGas)

		s.logger.Info("Reconciled sponsorship",
			zap.Int64("event_id", event.ID),
			zap.String("project_id", req.ProjectID),
			zap.String("user_op_hash", userOpHash),
			zap.String("status", string(outcome)),
			zap.String("settled_cost_wei", settledCost.String()),
			zap.String("refund_wei", refund.String()),
		)
		return nil
	})
	if err != nil {
		if _, ok := AsServiceError(err); ok {
			return err
		}
		return NewInfrastructureError("RECONCILIATION_FAILED", "failed to reconcile sponsorship event", err)
	}
	return nil
}

// observeDiscrepancy logs when the gas estimate missed by more than the
// threshold. Monitoring signal only, never an error.
func (s *ReconciliationService) observeDiscrepancy(event db.SponsorshipEvent, actualGas *big.Int) {
	estimatedGas := db.NumericToBig(event.EstimatedGas)
	if estimatedGas.Sign() <= 0 {
		return
	}

	delta := new(big.Int).Sub(actualGas, estimatedGas)
	delta.Abs(delta)
	// |actual - estimated| * 100 > estimated * threshold, integer-only.
	lhs := new(big.Int).Mul(delta, big.NewInt(100))
	rhs := new(big.Int).Mul(estimatedGas, big.NewInt(discrepancyThresholdPercent))
	if lhs.Cmp(rhs) > 0 {
		s.logger.Warn("Gas estimation discrepancy",
			zap.Int64("event_id", event.ID),
			zap.String("project_id", event.ProjectID),
			zap.String("estimated_gas", estimatedGas.String()),
			zap.String("actual_gas", actualGas.String()),
		)
	}
}

// SweepExpiredAuthorizations reclaims reservations whose authorization
// expired without an on-chain operation ever being linked. Returns the number
// of events swept.
func (s *ReconciliationService) SweepExpiredAuthorizations(ctx context.Context, limit int32) (int, error) {
	expired, err := s.store.ListExpiredAuthorizedEvents(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired authorizations: %w", err)
	}

	swept := 0
	for _, event := range expired {
		err := s.store.ExecTx(ctx, func(q db.Querier) error {
			releaseEntry, txErr := s.ledger.ReleaseTx(ctx, q, ReleaseParams{
				ProjectID:      event.ProjectID,
				ChainID:        event.ChainID,
				Amount:         db.NumericToBig(event.MaxCost),
				IdempotencyKey: fmt.Sprintf("release:expired:%d", event.ID),
				Refs: LedgerRefs{
					ReferenceType: "authorization_expiry",
					ReferenceID:   fmt.Sprintf("%d", event.ID),
				},
			})
			if txErr != nil {
				return txErr
			}
			if txErr := q.SetReleasedLedgerEntry(ctx, db.SetReleasedLedgerEntryParams{
				ID:                    event.ID,
				ReleasedLedgerEntryID: pgtype.Int8{Int64: releaseEntry.ID, Valid: true},
			}); txErr != nil {
				return fmt.Errorf("failed to link release entry: %w", txErr)
			}
			return q.ExpireSponsorshipEvent(ctx, db.ExpireSponsorshipEventParams{
				ID:           event.ID,
				ErrorMessage: pgtype.Text{String: "authorization expired before use", Valid: true},
			})
		})
		if err != nil {
			s.logger.Error("Failed to sweep expired authorization",
				zap.Int64("event_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		swept++
	}

	if swept > 0 {
		s.logger.Info("Swept expired authorizations", zap.Int("count", swept))
	}
	return swept, nil
}

// EstimationStats reports how estimated gas tracked actual gas across a
// project's completed events.
type EstimationStats struct {
	AvgEstimatedGas     *big.Int
	AvgActualGas        *big.Int
	TotalEvents         int64
	OverestimatedCount  int64
	UnderestimatedCount int64
}

// GetEstimationStats summarizes estimation accuracy for the project.
func (s *ReconciliationService) GetEstimationStats(ctx context.Context, projectID string) (*EstimationStats, error) {
	row, err := s.store.GetEstimationStats(ctx, projectID)
	if err != nil {
		return nil, NewInfrastructureError("STORE_UNAVAILABLE", "failed to load estimation stats", err)
	}
	return &EstimationStats{
		AvgEstimatedGas:     db.NumericToBig(row.AvgEstimated),
		AvgActualGas:        db.NumericToBig(row.AvgActual),
		TotalEvents:         row.TotalEvents,
		OverestimatedCount:  row.OverestimatedCount,
		UnderestimatedCount: row.UnderestimatedCount,
	}, nil
}

// ListRecentCompletedEvents returns the most recently settled events with
// their estimation accuracy.
func (s *ReconciliationService) ListRecentCompletedEvents(ctx context.Context, projectID string, limit int32) ([]db.ListRecentCompletedEventsRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.store.ListRecentCompletedEvents(ctx, db.ListRecentCompletedEventsParams{
		ProjectID: projectID,
		Limit:     limit,
	})
	if err != nil {
		return nil, NewInfrastructureError("STORE_UNAVAILABLE", "failed to load recent events", err)
	}
	return rows, nil
}

func terminalStatus(status string) (db.SponsorshipStatus, error) {
	switch db.SponsorshipStatus(status) {
	case db.SponsorshipStatusSuccess, db.SponsorshipStatusFailed, db.SponsorshipStatusReverted:
		return db.SponsorshipStatus(status), nil
	default:
		return "", NewValidationError("INVALID_STATUS", "status must be success, failed or reverted")
	}
}
