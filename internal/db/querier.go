package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the query interface implemented by Queries and mocked in tests.
type Querier interface {
	// Projects
	GetProject(ctx context.Context, id string) (Project, error)
	GetProjectForUpdate(ctx context.Context, id string) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	UpdateProjectBalance(ctx context.Context, arg UpdateProjectBalanceParams) error
	ResetDailyWindow(ctx context.Context, id string) error
	IncrementDailySpent(ctx context.Context, arg IncrementDailySpentParams) error

	// Allowlists
	GetEnabledAllowlistEntry(ctx context.Context, arg GetEnabledAllowlistEntryParams) (Allowlist, error)
	ListEnabledAllowlistEntries(ctx context.Context, projectID string) ([]ListEnabledAllowlistEntriesRow, error)

	// Fund ledger
	CreateLedgerEntry(ctx context.Context, arg CreateLedgerEntryParams) (FundLedgerEntry, error)
	GetLedgerEntryByIdempotencyKey(ctx context.Context, arg GetLedgerEntryByIdempotencyKeyParams) (FundLedgerEntry, error)
	SumLedgerBalance(ctx context.Context, projectID string) (pgtype.Numeric, error)
	ListLedgerEntries(ctx context.Context, arg ListLedgerEntriesParams) ([]FundLedgerEntry, error)

	// Sponsorship events
	CreateSponsorshipEvent(ctx context.Context, arg CreateSponsorshipEventParams) (SponsorshipEvent, error)
	GetSponsorshipEventForUpdate(ctx context.Context, arg GetSponsorshipEventForUpdateParams) (SponsorshipEvent, error)
	GetSponsorshipEventBySignature(ctx context.Context, arg GetSponsorshipEventBySignatureParams) (SponsorshipEvent, error)
	GetSponsorshipEventByReservedEntry(ctx context.Context, reservedLedgerEntryID int64) (SponsorshipEvent, error)
	LinkUserOperation(ctx context.Context, arg LinkUserOperationParams) (int64, error)
	CompleteSponsorshipEvent(ctx context.Context, arg CompleteSponsorshipEventParams) error
	SetSettledLedgerEntry(ctx context.Context, arg SetSettledLedgerEntryParams) error
	SetReleasedLedgerEntry(ctx context.Context, arg SetReleasedLedgerEntryParams) error
	GetEstimationStats(ctx context.Context, projectID string) (GetEstimationStatsRow, error)
	ListRecentCompletedEvents(ctx context.Context, arg ListRecentCompletedEventsParams) ([]ListRecentCompletedEventsRow, error)
	ListExpiredAuthorizedEvents(ctx context.Context, limit int32) ([]SponsorshipEvent, error)
	ExpireSponsorshipEvent(ctx context.Context, arg ExpireSponsorshipEventParams) error
}

var _ Querier = (*Queries)(nil)
