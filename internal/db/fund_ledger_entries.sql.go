package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createLedgerEntry = `-- name: CreateLedgerEntry :one
INSERT INTO fund_ledger_entries
  (project_id, chain_id, entry_type, amount, asset_symbol, reference_type, reference_id, idempotency_key, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, project_id, chain_id, entry_type, amount, asset_symbol, reference_type, reference_id, idempotency_key, metadata, created_at
`

type CreateLedgerEntryParams struct {
	ProjectID      string
	ChainID        int64
	EntryType      LedgerEntryType
	Amount         pgtype.Numeric
	AssetSymbol    string
	ReferenceType  pgtype.Text
	ReferenceID    pgtype.Text
	IdempotencyKey string
	Metadata       []byte
}

func (q *Queries) CreateLedgerEntry(ctx context.Context, arg CreateLedgerEntryParams) (FundLedgerEntry, error) {
	row := q.db.QueryRow(ctx, createLedgerEntry,
		arg.ProjectID,
		arg.ChainID,
		arg.EntryType,
		arg.Amount,
		arg.AssetSymbol,
		arg.ReferenceType,
		arg.ReferenceID,
		arg.IdempotencyKey,
		arg.Metadata,
	)
	var i FundLedgerEntry
	err := row.Scan(
		&i.ID,
		&i.ProjectID,
		&i.ChainID,
		&i.EntryType,
		&i.Amount,
		&i.AssetSymbol,
		&i.ReferenceType,
		&i.ReferenceID,
		&i.IdempotencyKey,
		&i.Metadata,
		&i.CreatedAt,
	)
	return i, err
}

const getLedgerEntryByIdempotencyKey = `-- name: GetLedgerEntryByIdempotencyKey :one
SELECT id, project_id, chain_id, entry_type, amount, asset_symbol, reference_type, reference_id, idempotency_key, metadata, created_at
FROM fund_ledger_entries
WHERE project_id = $1 AND idempotency_key = $2
`

type GetLedgerEntryByIdempotencyKeyParams struct {
	ProjectID      string
	IdempotencyKey string
}

func (q *Queries) GetLedgerEntryByIdempotencyKey(ctx context.Context, arg GetLedgerEntryByIdempotencyKeyParams) (FundLedgerEntry, error) {
	row := q.db.QueryRow(ctx, getLedgerEntryByIdempotencyKey, arg.ProjectID, arg.IdempotencyKey)
	var i FundLedgerEntry
	err := row.Scan(
		&i.ID,
		&i.ProjectID,
		&i.ChainID,
		&i.EntryType,
		&i.Amount,
		&i.AssetSymbol,
		&i.ReferenceType,
		&i.ReferenceID,
		&i.IdempotencyKey,
		&i.Metadata,
		&i.CreatedAt,
	)
	return i, err
}

const sumLedgerBalance = `-- name: SumLedgerBalance :one
SELECT COALESCE(SUM(
  CASE
    WHEN entry_type IN ('credit', 'release') THEN amount
    WHEN entry_type IN ('reserve', 'debit') THEN -amount
    ELSE 0
  END
), 0)::numeric AS balance
FROM fund_ledger_entries
WHERE project_id = $1
`

// SumLedgerBalance recomputes the project balance from the append-only ledger.
// Settlement entries are audit-only and contribute zero.
func (q *Queries) SumLedgerBalance(ctx context.Context, projectID string) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumLedgerBalance, projectID)
	var balance pgtype.Numeric
	err := row.Scan(&balance)
	return balance, err
}

const listLedgerEntries = `-- name: ListLedgerEntries :many
SELECT id, project_id, chain_id, entry_type, amount, asset_symbol, reference_type, reference_id, idempotency_key, metadata, created_at
FROM fund_ledger_entries
WHERE project_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListLedgerEntriesParams struct {
	ProjectID string
	Limit     int32
	Offset    int32
}

func (q *Queries) ListLedgerEntries(ctx context.Context, arg ListLedgerEntriesParams) ([]FundLedgerEntry, error) {
	rows, err := q.db.Query(ctx, listLedgerEntries, arg.ProjectID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FundLedgerEntry
	for rows.Next() {
		var i FundLedgerEntry
		if err := rows.Scan(
			&i.ID,
			&i.ProjectID,
			&i.ChainID,
			&i.EntryType,
			&i.Amount,
			&i.AssetSymbol,
			&i.ReferenceType,
			&i.ReferenceID,
			&i.IdempotencyKey,
			&i.Metadata,
			&i.CreatedAt,
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
