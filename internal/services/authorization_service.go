package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/sorted-fund/sponsor-api/internal/config"
	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/logger"
)

// dailySpendWindow is the rolling window the daily cap applies to.
const dailySpendWindow = 24 * time.Hour

var (
	selectorPattern   = regexp.MustCompile(`^0x[0-9a-fA-F]{8}$`)
	userOpHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
)

// AuthorizationService orchestrates the authorize workflow: policy check, fee
// estimate, fund reservation, signing and the durable sponsorship event.
type AuthorizationService struct {
	store     db.Store
	policies  *PolicyService
	ledger    *FundLedgerService
	gasPrices *GasPriceService
	signer    *SigningService
	chainID   int64
	paymaster common.Address
	ttl       time.Duration
	logger    *zap.Logger
}

// NewAuthorizationService creates a new authorization service.
func NewAuthorizationService(store db.Store, policies *PolicyService, ledger *FundLedgerService, gasPrices *GasPriceService, signer *SigningService, cfg *config.Config) *AuthorizationService {
	return &AuthorizationService{
		store:     store,
		policies:  policies,
		ledger:    ledger,
		gasPrices: gasPrices,
		signer:    signer,
		chainID:   cfg.ChainID,
		paymaster: cfg.PaymasterAddress,
		ttl:       cfg.AuthorizationTTL,
		logger:    logger.Log,
	}
}

// AuthorizeRequest carries the caller-supplied sponsorship request. Amount
// fields are decimal or 0x-hex strings so uint256 values survive JSON intact.
type AuthorizeRequest struct {
	ProjectID    string
	ChainID      int64
	Sender       string
	Target       string
	Selector     string
	EstimatedGas string
	ClientNonce  string
}

// AuthorizeResult is everything the client needs to submit the sponsored
// operation and later link it back.
type AuthorizeResult struct {
	EventID          int64
	PaymasterAndData string
	ExpiresAt        time.Time
	MaxCost          *big.Int
	PolicyHash       common.Hash
	LinkingSignature string
}

// Authorize runs the full sponsorship decision. On success the worst-case
// cost is reserved, the authorization is signed and a sponsorship event is
// durable before the result is returned.
func (s *AuthorizationService) Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error) {
	if req.ChainID != s.chainID {
		return nil, NewValidationError("CHAIN_MISMATCH", fmt.Sprintf("chain %d is not supported, expected %d", req.ChainID, s.chainID))
	}

	estimatedGas, clientNonce, err := validateAuthorizeRequest(&req)
	if err != nil {
		return nil, err
	}

	project, err := s.store.GetProject(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("PROJECT_NOT_FOUND", "project not found")
		}
		return nil, NewInfrastructureError("STORE_UNAVAILABLE", "failed to load project", err)
	}
	switch project.Status {
	case db.ProjectStatusKilled:
		return nil, NewPolicyError("PROJECT_KILLED", "project has been killed")
	case db.ProjectStatusSuspended:
		return nil, NewPolicyError("PROJECT_SUSPENDED", "project is suspended")
	}

	allowed, err := s.policies.IsAllowed(ctx, req.ProjectID, req.Target, req.Selector)
	if err != nil {
		return nil, NewInfrastructureError("STORE_UNAVAILABLE", "failed to check allowlist", err)
	}
	if !allowed {
		return nil, NewPolicyError("TARGET_NOT_ALLOWED", "target contract or function is not allowlisted for sponsorship")
	}

	gasPrice := s.gasPrices.EffectiveGasPrice(ctx, req.ChainID)

	// 20% buffer over the estimate, integer arithmetic only.
	gasWithBuffer := new(big.Int).Div(new(big.Int).Mul(estimatedGas, big.NewInt(12)), big.NewInt(10))
	maxCost := new(big.Int).Mul(gasWithBuffer, gasPrice)

	if maxCost.Cmp(db.NumericToBig(project.GasTankBalance)) > 0 {
		return nil, NewResourceError("INSUFFICIENT_FUNDS", "gas tank balance cannot cover the worst-case cost")
	}

	reservationKey := fmt.Sprintf("authorize:%s:%s", req.ProjectID, req.ClientNonce)
	var reservation *ReserveResult
	err = s.store.ExecTx(ctx, func(q db.Querier) error {
		locked, txErr := q.GetProjectForUpdate(ctx, req.ProjectID)
		if txErr != nil {
			return fmt.Errorf("failed to lock project: %w", txErr)
		}

		spent := db.NumericToBig(locked.DailySpent)
		if time.Since(locked.DailyResetAt.Time) >= dailySpendWindow {
			if txErr := q.ResetDailyWindow(ctx, req.ProjectID); txErr != nil {
				return fmt.Errorf("failed to reset daily window: %w", txErr)
			}
			spent = new(big.Int)
		}

		// A zero cap is an explicit stop on all spending, not "unlimited".
		dailyCap := db.NumericToBig(locked.DailyCap)
		if new(big.Int).Add(spent, maxCost).Cmp(dailyCap) > 0 {
			return NewResourceError("DAILY_CAP_EXCEEDED", "daily spending cap would be exceeded")
		}

		reservation, txErr = s.ledger.ReserveTx(ctx, q, locked, ReserveParams{
			ProjectID:      req.ProjectID,
			ChainID:        req.ChainID,
			Amount:         maxCost,
			IdempotencyKey: reservationKey,
			Refs: LedgerRefs{
				ReferenceType: "sponsorship_authorization",
				ReferenceID:   req.ClientNonce,
				Metadata: map[string]string{
					"sender":   req.Sender,
					"target":   NormalizeHex(req.Target),
					"selector": NormalizeHex(req.Selector),
				},
			},
		})
		if txErr != nil {
			return txErr
		}
		if !reservation.Reserved {
			return NewResourceError("INSUFFICIENT_FUNDS", "gas tank balance cannot cover the worst-case cost")
		}

		if !reservation.Duplicate {
			if txErr := q.IncrementDailySpent(ctx, db.IncrementDailySpentParams{
				ID:     req.ProjectID,
				Amount: db.NumericFromBig(maxCost),
			}); txErr != nil {
				return fmt.Errorf("failed to record daily spend: %w", txErr)
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := AsServiceError(err); ok {
			return nil, err
		}
		return nil, NewInfrastructureError("RESERVATION_FAILED", "failed to reserve funds", err)
	}

	if reservation.Duplicate {
		if result, found, err := s.replayAuthorization(ctx, req.ProjectID, reservation.Entry.ID); err != nil {
			return nil, err
		} else if found {
			return result, nil
		}
		// Reservation exists but the event was never persisted (crash in the
		// compensation window). Re-issue against the reserved amount.
		maxCost = db.NumericToBig(reservation.Entry.Amount)
	}

	policyHash, err := s.policies.PolicyFingerprint(ctx, req.ProjectID)
	if err != nil {
		return nil, NewInfrastructureError("STORE_UNAVAILABLE", "failed to compute policy fingerprint", err)
	}

	expiry := time.Now().Add(s.ttl).Truncate(time.Second)
	signature, err := s.signer.SignAuthorization(AuthorizationMessage{
		Sender:      common.HexToAddress(req.Sender),
		ClientNonce: clientNonce,
		Expiry:      uint64(expiry.Unix()),
		MaxCost:     maxCost,
		PolicyHash:  policyHash,
		ProjectID:   req.ProjectID,
		ChainID:     s.chainID,
		Paymaster:   s.paymaster,
	})
	if err != nil {
		s.releaseOrphanedReservation(ctx, req, maxCost)
		return nil, NewInfrastructureError("SIGNING_FAILED", "failed to sign authorization", err)
	}
	signatureHex := hexutil.Encode(signature)

	paymasterAndData, err := EncodePaymasterAndData(s.paymaster, uint64(expiry.Unix()), maxCost, policyHash, crypto.Keccak256Hash([]byte(req.ProjectID)), signature)
	if err != nil {
		s.releaseOrphanedReservation(ctx, req, maxCost)
		return nil, NewInfrastructureError("ENCODING_FAILED", "failed to encode paymaster data", err)
	}

	var event db.SponsorshipEvent
	err = s.store.ExecTx(ctx, func(q db.Querier) error {
		var txErr error
		event, txErr = q.CreateSponsorshipEvent(ctx, db.CreateSponsorshipEventParams{
			ProjectID:             req.ProjectID,
			ChainID:               req.ChainID,
			Sender:                NormalizeHex(req.Sender),
			Target:                NormalizeHex(req.Target),
			Selector:              NormalizeHex(req.Selector),
			EstimatedGas:          db.NumericFromBig(estimatedGas),
			MaxCost:               db.NumericFromBig(maxCost),
			Status:                db.SponsorshipStatusAuthorized,
			PaymasterSignature:    signatureHex,
			PolicyHash:            policyHash.Hex(),
			Expiry:                pgtype.Timestamptz{Time: expiry, Valid: true},
			ReservedLedgerEntryID: pgtype.Int8{Int64: reservation.Entry.ID, Valid: true},
		})
		return txErr
	})
	if err != nil {
		s.releaseOrphanedReservation(ctx, req, maxCost)
		return nil, NewInfrastructureError("EVENT_PERSIST_FAILED", "failed to record sponsorship event", err)
	}

	s.logger.Info("Authorized sponsorship",
		zap.Int64("event_id", event.ID),
		zap.String("project_id", req.ProjectID),
		zap.String("sender", NormalizeHex(req.Sender)),
		zap.String("target", NormalizeHex(req.Target)),
		zap.String("max_cost_wei", maxCost.String()),
		zap.Time("expires_at", expiry),
	)

	return &AuthorizeResult{
		EventID:          event.ID,
		PaymasterAndData: paymasterAndData,
		ExpiresAt:        expiry,
		MaxCost:          maxCost,
		PolicyHash:       policyHash,
		LinkingSignature: signatureHex,
	}, nil
}

// replayAuthorization rebuilds the original response for a replayed client
// nonce from the persisted sponsorship event.
func (s *AuthorizationService) replayAuthorization(ctx context.Context, projectID string, reservedEntryID int64) (*AuthorizeResult, bool, error) {
	event, err := s.store.GetSponsorshipEventByReservedEntry(ctx, reservedEntryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, NewInfrastructureError("STORE_UNAVAILABLE", "failed to load prior authorization", err)
	}

	signature, err := hexutil.Decode(event.PaymasterSignature)
	if err != nil {
		return nil, false, NewInfrastructureError("ENCODING_FAILED", "stored signature is malformed", err)
	}

	maxCost := db.NumericToBig(event.MaxCost)
	policyHash := common.HexToHash(event.PolicyHash)
	expiry := event.Expiry.Time

	paymasterAndData, err := EncodePaymasterAndData(s.paymaster, uint64(expiry.Unix()), maxCost, policyHash, crypto.Keccak256Hash([]byte(projectID)), signature)
	if err != nil {
		return nil, false, NewInfrastructureError("ENCODING_FAILED", "failed to encode paymaster data", err)
	}

	s.logger.Info("Replayed authorization",
		zap.Int64("event_id", event.ID),
		zap.String("project_id", projectID),
	)

	return &AuthorizeResult{
		EventID:          event.ID,
		PaymasterAndData: paymasterAndData,
		ExpiresAt:        expiry,
		MaxCost:          maxCost,
		PolicyHash:       policyHash,
		LinkingSignature: event.PaymasterSignature,
	}, true, nil
}

// releaseOrphanedReservation compensates when the sponsorship event cannot be
// made durable after funds were already reserved. A failed release here is an
// audit alarm; the expiry sweep will eventually reclaim the funds.
func (s *AuthorizationService) releaseOrphanedReservation(ctx context.Context, req AuthorizeRequest, amount *big.Int) {
	releaseKey := fmt.Sprintf("release:authorize:%s:%s", req.ProjectID, req.ClientNonce)
	_, err := s.ledger.Release(ctx, ReleaseParams{
		ProjectID:      req.ProjectID,
		ChainID:        req.ChainID,
		Amount:         amount,
		IdempotencyKey: releaseKey,
		Refs: LedgerRefs{
			ReferenceType: "authorization_compensation",
			ReferenceID:   req.ClientNonce,
		},
	})
	if err != nil {
		s.logger.Error("Failed to release orphaned reservation",
			zap.String("project_id", req.ProjectID),
			zap.String("client_nonce", req.ClientNonce),
			zap.String("amount_wei", amount.String()),
			zap.Error(err),
		)
	}
}

// LinkUserOperation attaches the on-chain user operation hash to a previously
// authorized event, moving it to the pending state. Re-linking the same hash
// is an idempotent no-op.
func (s *AuthorizationService) LinkUserOperation(ctx context.Context, projectID, linkingSignature, userOpHash string) error {
	if !userOpHashPattern.MatchString(userOpHash) {
		return NewValidationError("INVALID_USER_OP_HASH", "userOpHash must be a 32-byte hex string")
	}
	if linkingSignature == "" {
		return NewValidationError("MISSING_LINKING_SIGNATURE", "linkingSignature is required")
	}

	event, err := s.store.GetSponsorshipEventBySignature(ctx, db.GetSponsorshipEventBySignatureParams{
		ProjectID:          projectID,
		PaymasterSignature: linkingSignature,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NewNotFoundError("AUTHORIZATION_NOT_FOUND", "no authorization matches the linking signature")
		}
		return NewInfrastructureError("STORE_UNAVAILABLE", "failed to load authorization", err)
	}

	normalized := NormalizeHex(userOpHash)
	rows, err := s.store.LinkUserOperation(ctx, db.LinkUserOperationParams{
		ID:         event.ID,
		UserOpHash: normalized,
	})
	if err != nil {
		return NewInfrastructureError("STORE_UNAVAILABLE", "failed to link user operation", err)
	}
	if rows == 0 {
		if event.UserOpHash.Valid && event.UserOpHash.String == normalized {
			return nil
		}
		return NewValidationError("ALREADY_LINKED", "authorization is already linked to a different user operation")
	}

	s.logger.Info("Linked user operation",
		zap.Int64("event_id", event.ID),
		zap.String("project_id", projectID),
		zap.String("user_op_hash", normalized),
	)
	return nil
}

func validateAuthorizeRequest(req *AuthorizeRequest) (*big.Int, *big.Int, error) {
	if req.ProjectID == "" {
		return nil, nil, NewValidationError("MISSING_PROJECT_ID", "projectId is required")
	}
	if !common.IsHexAddress(req.Sender) {
		return nil, nil, NewValidationError("INVALID_SENDER", "user must be a 20-byte hex address")
	}
	if !common.IsHexAddress(req.Target) {
		return nil, nil, NewValidationError("INVALID_TARGET", "target must be a 20-byte hex address")
	}
	if !selectorPattern.MatchString(req.Selector) {
		return nil, nil, NewValidationError("INVALID_SELECTOR", "selector must be a 4-byte hex string")
	}

	estimatedGas, ok := parseBigAmount(req.EstimatedGas)
	if !ok || estimatedGas.Sign() <= 0 {
		return nil, nil, NewValidationError("INVALID_ESTIMATED_GAS", "estimatedGas must be a positive integer")
	}

	clientNonce, ok := parseBigAmount(req.ClientNonce)
	if !ok || clientNonce.BitLen() > 256 {
		return nil, nil, NewValidationError("INVALID_CLIENT_NONCE", "clientNonce must be an unsigned 256-bit integer")
	}

	return estimatedGas, clientNonce, nil
}

// parseBigAmount accepts decimal or 0x-prefixed hex unsigned integers.
func parseBigAmount(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	base := 10
	digits := s
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		base = 16
		digits = s[2:]
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok || v.Sign() < 0 {
		return nil, false
	}
	return v, true
}
