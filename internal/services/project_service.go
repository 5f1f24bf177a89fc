package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/logger"
)

// ProjectService exposes project-facing gas tank operations: top-ups, balance
// reads and the ledger parity audit.
type ProjectService struct {
	store  db.Store
	ledger *FundLedgerService
	logger *zap.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(store db.Store, ledger *FundLedgerService) *ProjectService {
	return &ProjectService{
		store:  store,
		ledger: ledger,
		logger: logger.Log,
	}
}

// CreditGasTankRequest carries an external top-up, typically forwarded by the
// deposit collaborator once funds land on-chain.
type CreditGasTankRequest struct {
	ProjectID string
	ChainID   int64
	Amount    string
	TxHash    string // on-chain deposit transaction, used as the idempotency anchor
}

// CreditGasTank adds funds to the project's gas tank. Credits keyed by the
// same deposit transaction are applied at most once.
func (s *ProjectService) CreditGasTank(ctx context.Context, req CreditGasTankRequest) (db.FundLedgerEntry, error) {
	amount, ok := parseBigAmount(req.Amount)
	if !ok || amount.Sign() <= 0 {
		return db.FundLedgerEntry{}, NewValidationError("INVALID_AMOUNT", "amount must be a positive integer")
	}

	var idempotencyKey string
	if req.TxHash != "" {
		idempotencyKey = fmt.Sprintf("credit:%s:%s", req.ProjectID, NormalizeHex(req.TxHash))
	}

	return s.ledger.Credit(ctx, CreditParams{
		ProjectID:      req.ProjectID,
		ChainID:        req.ChainID,
		Amount:         amount,
		IdempotencyKey: idempotencyKey,
		Refs: LedgerRefs{
			ReferenceType: "deposit",
			ReferenceID:   NormalizeHex(req.TxHash),
		},
	})
}

// GasTankStatus is a read-only snapshot of a project's spending state.
type GasTankStatus struct {
	ProjectID    string
	Status       db.ProjectStatus
	Balance      *big.Int
	DailyCap     *big.Int
	DailySpent   *big.Int
	DailyResetAt string
}

// GetGasTankStatus reads the cached balance and daily window for a project.
func (s *ProjectService) GetGasTankStatus(ctx context.Context, projectID string) (*GasTankStatus, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("PROJECT_NOT_FOUND", "project not found")
		}
		return nil, NewInfrastructureError("STORE_UNAVAILABLE", "failed to load project", err)
	}

	return &GasTankStatus{
		ProjectID:    project.ID,
		Status:       project.Status,
		Balance:      db.NumericToBig(project.GasTankBalance),
		DailyCap:     db.NumericToBig(project.DailyCap),
		DailySpent:   db.NumericToBig(project.DailySpent),
		DailyResetAt: project.DailyResetAt.Time.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// ParityReport compares the cached balance against the ledger-derived one.
// A non-zero delta is a correctness alarm, never a normal condition.
type ParityReport struct {
	ProjectID     string
	CachedBalance *big.Int
	LedgerBalance *big.Int
	Delta         *big.Int
	InParity      bool
}

// CheckFundsParity recomputes the project balance from the ledger and
// compares it to the cached value.
func (s *ProjectService) CheckFundsParity(ctx context.Context, projectID string) (*ParityReport, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("PROJECT_NOT_FOUND", "project not found")
		}
		return nil, NewInfrastructureError("STORE_UNAVAILABLE", "failed to load project", err)
	}

	ledgerBalance, err := s.ledger.BalanceFromLedger(ctx, projectID)
	if err != nil {
		return nil, NewInfrastructureError("STORE_UNAVAILABLE", "failed to recompute ledger balance", err)
	}

	cached := db.NumericToBig(project.GasTankBalance)
	delta := new(big.Int).Sub(cached, ledgerBalance)
	report := &ParityReport{
		ProjectID:     projectID,
		CachedBalance: cached,
		LedgerBalance: ledgerBalance,
		Delta:         delta,
		InParity:      delta.Sign() == 0,
	}

	if !report.InParity {
		s.logger.Error("Gas tank balance out of parity with ledger",
			zap.String("project_id", projectID),
			zap.String("cached_wei", cached.String()),
			zap.String("ledger_wei", ledgerBalance.String()),
			zap.String("delta_wei", delta.String()),
		)
	}
	return report, nil
}

// CheckAllFundsParity audits every project and returns the reports for those
// out of parity.
func (s *ProjectService) CheckAllFundsParity(ctx context.Context) ([]*ParityReport, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, NewInfrastructureError("STORE_UNAVAILABLE", "failed to list projects", err)
	}

	var mismatched []*ParityReport
	for _, project := range projects {
		report, err := s.CheckFundsParity(ctx, project.ID)
		if err != nil {
			return nil, err
		}
		if !report.InParity {
			mismatched = append(mismatched, report)
		}
	}
	return mismatched, nil
}

// ListLedgerEntries pages through a project's ledger, newest first.
func (s *ProjectService) ListLedgerEntries(ctx context.Context, projectID string, limit, offset int32) ([]db.FundLedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.store.ListLedgerEntries(ctx, db.ListLedgerEntriesParams{
		ProjectID: projectID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, NewInfrastructureError("STORE_UNAVAILABLE", "failed to list ledger entries", err)
	}
	return entries, nil
}
