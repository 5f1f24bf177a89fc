package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/logger"
)

// defaultAssetSymbol is the native token the gas tank is denominated in.
const defaultAssetSymbol = "S"

// FundLedgerService exclusively owns gas tank balance mutation. Every balance
// change commits atomically with its append-only ledger entry, and every
// operation is idempotent by (project, idempotency key).
type FundLedgerService struct {
	store  db.Store
	logger *zap.Logger
}

// NewFundLedgerService creates a new fund ledger service.
func NewFundLedgerService(store db.Store) *FundLedgerService {
	return &FundLedgerService{
		store:  store,
		logger: logger.Log,
	}
}

// LedgerRefs describes what caused a ledger entry.
type LedgerRefs struct {
	ReferenceType string
	ReferenceID   string
	Metadata      map[string]string
}

// ReserveParams are the inputs for a fund reservation.
type ReserveParams struct {
	ProjectID      string
	ChainID        int64
	Amount         *big.Int
	IdempotencyKey string
	Refs           LedgerRefs
}

// ReserveResult reports the outcome of a reservation attempt. Reserved=false
// means insufficient funds, which is a normal outcome rather than an error.
// Duplicate marks an idempotent replay that returned the original entry.
type ReserveResult struct {
	Reserved  bool
	Duplicate bool
	Entry     db.FundLedgerEntry
}

// Reserve holds Amount against the project's balance in a single transaction.
func (s *FundLedgerService) Reserve(ctx context.Context, params ReserveParams) (*ReserveResult, error) {
	if err := validateAmount(params.Amount); err != nil {
		return nil, err
	}

	var result *ReserveResult
	err := s.store.ExecTx(ctx, func(q db.Querier) error {
		project, txErr := q.GetProjectForUpdate(ctx, params.ProjectID)
		if txErr != nil {
			if errors.Is(txErr, pgx.ErrNoRows) {
				return NewNotFoundError("PROJECT_NOT_FOUND", "project not found")
			}
			return fmt.Errorf("failed to lock project: %w", txErr)
		}
		result, txErr = s.ReserveTx(ctx, q, project, params)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReserveTx performs the reservation against an already-open transaction.
// The caller supplies the project row it has already locked with
// GetProjectForUpdate so composed flows take the lock exactly once.
func (s *FundLedgerService) ReserveTx(ctx context.Context, q db.Querier, project db.Project, params ReserveParams) (*ReserveResult, error) {
	if err := validateAmount(params.Amount); err != nil {
		return nil, err
	}

	// Idempotent replay: return the original entry untouched.
	existing, err := q.GetLedgerEntryByIdempotencyKey(ctx, db.GetLedgerEntryByIdempotencyKeyParams{
		ProjectID:      params.ProjectID,
		IdempotencyKey: params.IdempotencyKey,
	})
	if err == nil {
		return &ReserveResult{Reserved: true, Duplicate: true, Entry: existing}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	balance := db.NumericToBig(project.GasTankBalance)
	if params.Amount.Cmp(balance) > 0 {
		return &ReserveResult{Reserved: false}, nil
	}

	newBalance := new(big.Int).Sub(balance, params.Amount)
	if err := q.UpdateProjectBalance(ctx, db.UpdateProjectBalanceParams{
		ID:             params.ProjectID,
		GasTankBalance: db.NumericFromBig(newBalance),
	}); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	entry, err := s.insertEntry(ctx, q, params.ProjectID, params.ChainID, db.LedgerEntryTypeReserve, params.Amount, params.IdempotencyKey, params.Refs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reserved funds",
		zap.String("project_id", params.ProjectID),
		zap.String("amount_wei", params.Amount.String()),
		zap.Int64("ledger_entry_id", entry.ID),
	)

	return &ReserveResult{Reserved: true, Entry: entry}, nil
}

// ReleaseParams are the inputs for returning reserved funds.
type ReleaseParams struct {
	ProjectID      string
	ChainID        int64
	Amount         *big.Int
	IdempotencyKey string
	Refs           LedgerRefs
}

// Release returns Amount to the project's balance in a single transaction.
func (s *FundLedgerService) Release(ctx context.Context, params ReleaseParams) (db.FundLedgerEntry, error) {
	var entry db.FundLedgerEntry
	err := s.store.ExecTx(ctx, func(q db.Querier) error {
		var txErr error
		entry, txErr = s.ReleaseTx(ctx, q, params)
		return txErr
	})
	return entry, err
}

// ReleaseTx performs the release against an already-open transaction.
func (s *FundLedgerService) ReleaseTx(ctx context.Context, q db.Querier, params ReleaseParams) (db.FundLedgerEntry, error) {
	if err := validateAmount(params.Amount); err != nil {
		return db.FundLedgerEntry{}, err
	}

	existing, err := q.GetLedgerEntryByIdempotencyKey(ctx, db.GetLedgerEntryByIdempotencyKeyParams{
		ProjectID:      params.ProjectID,
		IdempotencyKey: params.IdempotencyKey,
	})
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return db.FundLedgerEntry{}, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	project, err := q.GetProjectForUpdate(ctx, params.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.FundLedgerEntry{}, NewNotFoundError("PROJECT_NOT_FOUND", "project not found")
		}
		return db.FundLedgerEntry{}, fmt.Errorf("failed to lock project: %w", err)
	}

	newBalance := new(big.Int).Add(db.NumericToBig(project.GasTankBalance), params.Amount)
	if err := q.UpdateProjectBalance(ctx, db.UpdateProjectBalanceParams{
		ID:             params.ProjectID,
		GasTankBalance: db.NumericFromBig(newBalance),
	}); err != nil {
		return db.FundLedgerEntry{}, fmt.Errorf("failed to update balance: %w", err)
	}

	entry, err := s.insertEntry(ctx, q, params.ProjectID, params.ChainID, db.LedgerEntryTypeRelease, params.Amount, params.IdempotencyKey, params.Refs)
	if err != nil {
		return db.FundLedgerEntry{}, err
	}

	s.logger.Info("Released funds",
		zap.String("project_id", params.ProjectID),
		zap.String("amount_wei", params.Amount.String()),
		zap.Int64("ledger_entry_id", entry.ID),
	)

	return entry, nil
}

// CreditParams are the inputs for an external top-up.
type CreditParams struct {
	ProjectID      string
	ChainID        int64
	Amount         *big.Int
	IdempotencyKey string // optional; generated when empty
	Refs           LedgerRefs
}

// Credit unconditionally adds funds to the project's balance. Top-ups only add
// money so no reservation check applies.
func (s *FundLedgerService) Credit(ctx context.Context, params CreditParams) (db.FundLedgerEntry, error) {
	if err := validateAmount(params.Amount); err != nil {
		return db.FundLedgerEntry{}, err
	}

	if params.IdempotencyKey == "" {
		params.IdempotencyKey = fmt.Sprintf("credit:%s:%s", params.ProjectID, uuid.NewString())
	}

	var entry db.FundLedgerEntry
	err := s.store.ExecTx(ctx, func(q db.Querier) error {
		existing, err := q.GetLedgerEntryByIdempotencyKey(ctx, db.GetLedgerEntryByIdempotencyKeyParams{
			ProjectID:      params.ProjectID,
			IdempotencyKey: params.IdempotencyKey,
		})
		if err == nil {
			entry = existing
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to check idempotency key: %w", err)
		}

		project, err := q.GetProjectForUpdate(ctx, params.ProjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return NewNotFoundError("PROJECT_NOT_FOUND", "project not found")
			}
			return fmt.Errorf("failed to lock project: %w", err)
		}

		newBalance := new(big.Int).Add(db.NumericToBig(project.GasTankBalance), params.Amount)
		if err := q.UpdateProjectBalance(ctx, db.UpdateProjectBalanceParams{
			ID:             params.ProjectID,
			GasTankBalance: db.NumericFromBig(newBalance),
		}); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		entry, err = s.insertEntry(ctx, q, params.ProjectID, params.ChainID, db.LedgerEntryTypeCredit, params.Amount, params.IdempotencyKey, params.Refs)
		return err
	})
	if err != nil {
		return db.FundLedgerEntry{}, err
	}

	s.logger.Info("Credited gas tank",
		zap.String("project_id", params.ProjectID),
		zap.String("amount_wei", params.Amount.String()),
		zap.Int64("ledger_entry_id", entry.ID),
	)

	return entry, nil
}

// SettlementParams are the inputs for an audit-only settlement record.
type SettlementParams struct {
	ProjectID      string
	ChainID        int64
	Amount         *big.Int
	IdempotencyKey string
	Refs           LedgerRefs
}

// RecordSettlement inserts an audit-only settlement entry. The settled cost
// was already removed from the balance at reservation time, so the cached
// balance is untouched.
func (s *FundLedgerService) RecordSettlement(ctx context.Context, params SettlementParams) (db.FundLedgerEntry, error) {
	var entry db.FundLedgerEntry
	err := s.store.ExecTx(ctx, func(q db.Querier) error {
		var txErr error
		entry, txErr = s.RecordSettlementTx(ctx, q, params)
		return txErr
	})
	return entry, err
}

// RecordSettlementTx performs the settlement insert against an already-open
// transaction.
func (s *FundLedgerService) RecordSettlementTx(ctx context.Context, q db.Querier, params SettlementParams) (db.FundLedgerEntry, error) {
	if err := validateAmount(params.Amount); err != nil {
		return db.FundLedgerEntry{}, err
	}

	existing, err := q.GetLedgerEntryByIdempotencyKey(ctx, db.GetLedgerEntryByIdempotencyKeyParams{
		ProjectID:      params.ProjectID,
		IdempotencyKey: params.IdempotencyKey,
	})
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return db.FundLedgerEntry{}, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	return s.insertEntry(ctx, q, params.ProjectID, params.ChainID, db.LedgerEntryTypeSettlement, params.Amount, params.IdempotencyKey, params.Refs)
}

// BalanceFromLedger recomputes the project balance from the full ledger. Used
// by the parity check; any delta against the cached balance is an alarm.
func (s *FundLedgerService) BalanceFromLedger(ctx context.Context, projectID string) (*big.Int, error) {
	sum, err := s.store.SumLedgerBalance(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger balance: %w", err)
	}
	return db.NumericToBig(sum), nil
}

// CurrentBalance reads the cached gas tank balance.
func (s *FundLedgerService) CurrentBalance(ctx context.Context, projectID string) (*big.Int, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("PROJECT_NOT_FOUND", "project not found")
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return db.NumericToBig(project.GasTankBalance), nil
}

func (s *FundLedgerService) insertEntry(ctx context.Context, q db.Querier, projectID string, chainID int64, entryType db.LedgerEntryType, amount *big.Int, idempotencyKey string, refs LedgerRefs) (db.FundLedgerEntry, error) {
	var metadata []byte
	if len(refs.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(refs.Metadata)
		if err != nil {
			return db.FundLedgerEntry{}, fmt.Errorf("failed to marshal entry metadata: %w", err)
		}
	}

	params := db.CreateLedgerEntryParams{
		ProjectID:      projectID,
		ChainID:        chainID,
		EntryType:      entryType,
		Amount:         db.NumericFromBig(amount),
		AssetSymbol:    defaultAssetSymbol,
		IdempotencyKey: idempotencyKey,
		Metadata:       metadata,
	}
	if refs.ReferenceType != "" {
		params.ReferenceType = pgtype.Text{String: refs.ReferenceType, Valid: true}
	}
	if refs.ReferenceID != "" {
		params.ReferenceID = pgtype.Text{String: refs.ReferenceID, Valid: true}
	}

	entry, err := q.CreateLedgerEntry(ctx, params)
	if err != nil {
		return db.FundLedgerEntry{}, fmt.Errorf("failed to insert %s ledger entry: %w", entryType, err)
	}
	return entry, nil
}

func validateAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return NewValidationError("INVALID_AMOUNT", "ledger amounts must be non-negative")
	}
	return nil
}
