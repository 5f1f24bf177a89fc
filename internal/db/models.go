package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// ProjectStatus enumerates project lifecycle states.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusSuspended ProjectStatus = "suspended"
	ProjectStatusKilled    ProjectStatus = "killed"
)

// LedgerEntryType enumerates fund ledger entry types. Settlement entries are
// audit-only and excluded from the balance formula.
type LedgerEntryType string

const (
	LedgerEntryTypeCredit     LedgerEntryType = "credit"
	LedgerEntryTypeReserve    LedgerEntryType = "reserve"
	LedgerEntryTypeRelease    LedgerEntryType = "release"
	LedgerEntryTypeDebit      LedgerEntryType = "debit"
	LedgerEntryTypeSettlement LedgerEntryType = "settlement"
)

// SponsorshipStatus enumerates sponsorship event lifecycle states.
type SponsorshipStatus string

const (
	SponsorshipStatusAuthorized SponsorshipStatus = "authorized"
	SponsorshipStatusPending    SponsorshipStatus = "pending"
	SponsorshipStatusSuccess    SponsorshipStatus = "success"
	SponsorshipStatusFailed     SponsorshipStatus = "failed"
	SponsorshipStatusReverted   SponsorshipStatus = "reverted"
)

// Project holds a gas tank and spending policy for one registered application.
// gas_tank_balance is the cached wei balance; the fund ledger is the source of
// truth and only ledger operations may mutate it.
type Project struct {
	ID             string
	Name           string
	OwnerAddress   string
	Status         ProjectStatus
	GasTankBalance pgtype.Numeric
	DailyCap       pgtype.Numeric
	DailySpent     pgtype.Numeric
	DailyResetAt   pgtype.Timestamptz
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

// FundLedgerEntry is an immutable, append-only balance event. Entries are
// unique per (project_id, idempotency_key) and never updated or deleted.
type FundLedgerEntry struct {
	ID             int64
	ProjectID      string
	ChainID        int64
	EntryType      LedgerEntryType
	Amount         pgtype.Numeric
	AssetSymbol    string
	ReferenceType  pgtype.Text
	ReferenceID    pgtype.Text
	IdempotencyKey string
	Metadata       []byte
	CreatedAt      pgtype.Timestamptz
}

// Allowlist is one enabled (target contract, function selector) pair a project
// has approved for sponsorship. Addresses and selectors are stored lower-cased.
type Allowlist struct {
	ID               int64
	ProjectID        string
	TargetContract   string
	FunctionSelector string
	Enabled          bool
	CreatedAt        pgtype.Timestamptz
}

// SponsorshipEvent records one authorize call and its settlement lifecycle.
// completed_at being set is the reconciliation idempotency guard.
type SponsorshipEvent struct {
	ID                    int64
	ProjectID             string
	ChainID               int64
	UserOpHash            pgtype.Text
	Sender                string
	Target                string
	Selector              string
	EstimatedGas          pgtype.Numeric
	ActualGas             pgtype.Numeric
	MaxCost               pgtype.Numeric
	Status                SponsorshipStatus
	PaymasterSignature    string
	PolicyHash            string
	Expiry                pgtype.Timestamptz
	CreatedAt             pgtype.Timestamptz
	CompletedAt           pgtype.Timestamptz
	ErrorMessage          pgtype.Text
	ReservedLedgerEntryID pgtype.Int8
	SettledLedgerEntryID  pgtype.Int8
	ReleasedLedgerEntryID pgtype.Int8
}
