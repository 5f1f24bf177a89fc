package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const sponsorshipEventColumns = `id, project_id, chain_id, user_op_hash, sender, target, selector, estimated_gas, actual_gas, max_cost, status, paymaster_signature, policy_hash, expiry, created_at, completed_at, error_message, reserved_ledger_entry_id, settled_ledger_entry_id, released_ledger_entry_id`

func scanSponsorshipEvent(row interface{ Scan(...interface{}) error }) (SponsorshipEvent, error) {
	var i SponsorshipEvent
	err := row.Scan(
		&i.ID,
		&i.ProjectID,
		&i.ChainID,
		&i.UserOpHash,
		&i.Sender,
		&i.Target,
		&i.Selector,
		&i.EstimatedGas,
		&i.ActualGas,
		&i.MaxCost,
		&i.Status,
		&i.PaymasterSignature,
		&i.PolicyHash,
		&i.Expiry,
		&i.CreatedAt,
		&i.CompletedAt,
		&i.ErrorMessage,
		&i.ReservedLedgerEntryID,
		&i.SettledLedgerEntryID,
		&i.ReleasedLedgerEntryID,
	)
	return i, err
}

const createSponsorshipEvent = `-- name: CreateSponsorshipEvent :one
INSERT INTO sponsorship_events
  (project_id, chain_id, sender, target, selector, estimated_gas, max_cost, status, paymaster_signature, policy_hash, expiry, reserved_ledger_entry_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + sponsorshipEventColumns

type CreateSponsorshipEventParams struct {
	ProjectID             string
	ChainID               int64
	Sender                string
	Target                string
	Selector              string
	EstimatedGas          pgtype.Numeric
	MaxCost               pgtype.Numeric
	Status                SponsorshipStatus
	PaymasterSignature    string
	PolicyHash            string
	Expiry                pgtype.Timestamptz
	ReservedLedgerEntryID pgtype.Int8
}

func (q *Queries) CreateSponsorshipEvent(ctx context.Context, arg CreateSponsorshipEventParams) (SponsorshipEvent, error) {
	row := q.db.QueryRow(ctx, createSponsorshipEvent,
		arg.ProjectID,
		arg.ChainID,
		arg.Sender,
		arg.Target,
		arg.Selector,
		arg.EstimatedGas,
		arg.MaxCost,
		arg.Status,
		arg.PaymasterSignature,
		arg.PolicyHash,
		arg.Expiry,
		arg.ReservedLedgerEntryID,
	)
	return scanSponsorshipEvent(row)
}

const getSponsorshipEventForUpdate = `-- name: GetSponsorshipEventForUpdate :one
SELECT ` + sponsorshipEventColumns + `
FROM sponsorship_events
WHERE project_id = $1 AND user_op_hash = $2
FOR UPDATE
`

type GetSponsorshipEventForUpdateParams struct {
	ProjectID  string
	UserOpHash string
}

// GetSponsorshipEventForUpdate locks the event row; concurrent reconciliations
// of the same user operation serialize here.
func (q *Queries) GetSponsorshipEventForUpdate(ctx context.Context, arg GetSponsorshipEventForUpdateParams) (SponsorshipEvent, error) {
	row := q.db.QueryRow(ctx, getSponsorshipEventForUpdate, arg.ProjectID, arg.UserOpHash)
	return scanSponsorshipEvent(row)
}

const getSponsorshipEventBySignature = `-- name: GetSponsorshipEventBySignature :one
SELECT ` + sponsorshipEventColumns + `
FROM sponsorship_events
WHERE project_id = $1 AND paymaster_signature = $2
`

type GetSponsorshipEventBySignatureParams struct {
	ProjectID          string
	PaymasterSignature string
}

func (q *Queries) GetSponsorshipEventBySignature(ctx context.Context, arg GetSponsorshipEventBySignatureParams) (SponsorshipEvent, error) {
	row := q.db.QueryRow(ctx, getSponsorshipEventBySignature, arg.ProjectID, arg.PaymasterSignature)
	return scanSponsorshipEvent(row)
}

const getSponsorshipEventByReservedEntry = `-- name: GetSponsorshipEventByReservedEntry :one
SELECT ` + sponsorshipEventColumns + `
FROM sponsorship_events
WHERE reserved_ledger_entry_id = $1
`

// GetSponsorshipEventByReservedEntry finds the event a reservation produced.
// Used when a replayed client nonce hits the ledger idempotency short-circuit.
func (q *Queries) GetSponsorshipEventByReservedEntry(ctx context.Context, reservedLedgerEntryID int64) (SponsorshipEvent, error) {
	row := q.db.QueryRow(ctx, getSponsorshipEventByReservedEntry, reservedLedgerEntryID)
	return scanSponsorshipEvent(row)
}

const linkUserOperation = `-- name: LinkUserOperation :execrows
UPDATE sponsorship_events
SET user_op_hash = $2, status = 'pending'
WHERE id = $1 AND user_op_hash IS NULL AND status = 'authorized'
`

type LinkUserOperationParams struct {
	ID         int64
	UserOpHash string
}

// LinkUserOperation attaches the on-chain operation hash to an authorized
// event. Returns the number of rows updated; zero means the event was already
// linked or has left the authorized state.
func (q *Queries) LinkUserOperation(ctx context.Context, arg LinkUserOperationParams) (int64, error) {
	result, err := q.db.Exec(ctx, linkUserOperation, arg.ID, arg.UserOpHash)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const completeSponsorshipEvent = `-- name: CompleteSponsorshipEvent :exec
UPDATE sponsorship_events
SET actual_gas = $2, status = $3, completed_at = NOW(), error_message = $4
WHERE id = $1
`

type CompleteSponsorshipEventParams struct {
	ID           int64
	ActualGas    pgtype.Numeric
	Status       SponsorshipStatus
	ErrorMessage pgtype.Text
}

func (q *Queries) CompleteSponsorshipEvent(ctx context.Context, arg CompleteSponsorshipEventParams) error {
	_, err := q.db.Exec(ctx, completeSponsorshipEvent, arg.ID, arg.ActualGas, arg.Status, arg.ErrorMessage)
	return err
}

const setSettledLedgerEntry = `-- name: SetSettledLedgerEntry :exec
UPDATE sponsorship_events
SET settled_ledger_entry_id = COALESCE(settled_ledger_entry_id, $2)
WHERE id = $1
`

type SetSettledLedgerEntryParams struct {
	ID                   int64
	SettledLedgerEntryID pgtype.Int8
}

// SetSettledLedgerEntry links the settlement ledger entry, set-once: an
// existing link is never overwritten on retry.
func (q *Queries) SetSettledLedgerEntry(ctx context.Context, arg SetSettledLedgerEntryParams) error {
	_, err := q.db.Exec(ctx, setSettledLedgerEntry, arg.ID, arg.SettledLedgerEntryID)
	return err
}

const setReleasedLedgerEntry = `-- name: SetReleasedLedgerEntry :exec
UPDATE sponsorship_events
SET released_ledger_entry_id = COALESCE(released_ledger_entry_id, $2)
WHERE id = $1
`

type SetReleasedLedgerEntryParams struct {
	ID                    int64
	ReleasedLedgerEntryID pgtype.Int8
}

func (q *Queries) SetReleasedLedgerEntry(ctx context.Context, arg SetReleasedLedgerEntryParams) error {
	_, err := q.db.Exec(ctx, setReleasedLedgerEntry, arg.ID, arg.ReleasedLedgerEntryID)
	return err
}

const getEstimationStats = `-- name: GetEstimationStats :one
SELECT
  COALESCE(AVG(estimated_gas), 0)::numeric AS avg_estimated,
  COALESCE(AVG(actual_gas), 0)::numeric AS avg_actual,
  COUNT(*) AS total_events,
  COALESCE(SUM(CASE WHEN estimated_gas > actual_gas THEN 1 ELSE 0 END), 0)::bigint AS overestimated_count,
  COALESCE(SUM(CASE WHEN estimated_gas < actual_gas THEN 1 ELSE 0 END), 0)::bigint AS underestimated_count
FROM sponsorship_events
WHERE project_id = $1 AND actual_gas IS NOT NULL
`

type GetEstimationStatsRow struct {
	AvgEstimated        pgtype.Numeric
	AvgActual           pgtype.Numeric
	TotalEvents         int64
	OverestimatedCount  int64
	UnderestimatedCount int64
}

func (q *Queries) GetEstimationStats(ctx context.Context, projectID string) (GetEstimationStatsRow, error) {
	row := q.db.QueryRow(ctx, getEstimationStats, projectID)
	var i GetEstimationStatsRow
	err := row.Scan(
		&i.AvgEstimated,
		&i.AvgActual,
		&i.TotalEvents,
		&i.OverestimatedCount,
		&i.UnderestimatedCount,
	)
	return i, err
}

const listRecentCompletedEvents = `-- name: ListRecentCompletedEvents :many
SELECT
  id,
  user_op_hash,
  sender,
  target,
  selector,
  estimated_gas,
  actual_gas,
  status,
  created_at,
  completed_at,
  CASE
    WHEN actual_gas IS NOT NULL AND estimated_gas > 0
    THEN ROUND((actual_gas::numeric / estimated_gas::numeric) * 100, 2)
    ELSE NULL
  END AS accuracy_percent
FROM sponsorship_events
WHERE project_id = $1 AND actual_gas IS NOT NULL
ORDER BY completed_at DESC
LIMIT $2
`

type ListRecentCompletedEventsParams struct {
	ProjectID string
	Limit     int32
}

type ListRecentCompletedEventsRow struct {
	ID              int64
	UserOpHash      pgtype.Text
	Sender          string
	Target          string
	Selector        string
	EstimatedGas    pgtype.Numeric
	ActualGas       pgtype.Numeric
	Status          SponsorshipStatus
	CreatedAt       pgtype.Timestamptz
	CompletedAt     pgtype.Timestamptz
	AccuracyPercent pgtype.Numeric
}

func (q *Queries) ListRecentCompletedEvents(ctx context.Context, arg ListRecentCompletedEventsParams) ([]ListRecentCompletedEventsRow, error) {
	rows, err := q.db.Query(ctx, listRecentCompletedEvents, arg.ProjectID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListRecentCompletedEventsRow
	for rows.Next() {
		var i ListRecentCompletedEventsRow
		if err := rows.Scan(
			&i.ID,
			&i.UserOpHash,
			&i.Sender,
			&i.Target,
			&i.Selector,
			&i.EstimatedGas,
			&i.ActualGas,
			&i.Status,
			&i.CreatedAt,
			&i.CompletedAt,
			&i.AccuracyPercent,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listExpiredAuthorizedEvents = `-- name: ListExpiredAuthorizedEvents :many
SELECT ` + sponsorshipEventColumns + `
FROM sponsorship_events
WHERE status = 'authorized' AND user_op_hash IS NULL AND expiry < NOW()
ORDER BY expiry
LIMIT $1
`

// ListExpiredAuthorizedEvents returns authorized events whose expiry passed
// without an on-chain operation ever being linked. Their reservations are
// orphaned and must be swept back into the gas tank.
func (q *Queries) ListExpiredAuthorizedEvents(ctx context.Context, limit int32) ([]SponsorshipEvent, error) {
	rows, err := q.db.Query(ctx, listExpiredAuthorizedEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SponsorshipEvent
	for rows.Next() {
		i, err := scanSponsorshipEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const expireSponsorshipEvent = `-- name: ExpireSponsorshipEvent :exec
UPDATE sponsorship_events
SET status = 'failed', completed_at = NOW(), error_message = $2
WHERE id = $1 AND completed_at IS NULL
`

type ExpireSponsorshipEventParams struct {
	ID           int64
	ErrorMessage pgtype.Text
}

func (q *Queries) ExpireSponsorshipEvent(ctx context.Context, arg ExpireSponsorshipEventParams) error {
	_, err := q.db.Exec(ctx, expireSponsorshipEvent, arg.ID, arg.ErrorMessage)
	return err
}
