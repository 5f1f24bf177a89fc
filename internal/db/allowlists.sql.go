package db

import (
	"context"
)

const getEnabledAllowlistEntry = `-- name: GetEnabledAllowlistEntry :one
SELECT id, project_id, target_contract, function_selector, enabled, created_at
FROM allowlists
WHERE project_id = $1
  AND target_contract = $2
  AND function_selector = $3
  AND enabled = true
`

type GetEnabledAllowlistEntryParams struct {
	ProjectID        string
	TargetContract   string
	FunctionSelector string
}

func (q *Queries) GetEnabledAllowlistEntry(ctx context.Context, arg GetEnabledAllowlistEntryParams) (Allowlist, error) {
	row := q.db.QueryRow(ctx, getEnabledAllowlistEntry, arg.ProjectID, arg.TargetContract, arg.FunctionSelector)
	var i Allowlist
	err := row.Scan(
		&i.ID,
		&i.ProjectID,
		&i.TargetContract,
		&i.FunctionSelector,
		&i.Enabled,
		&i.CreatedAt,
	)
	return i, err
}

const listEnabledAllowlistEntries = `-- name: ListEnabledAllowlistEntries :many
SELECT target_contract, function_selector
FROM allowlists
WHERE project_id = $1 AND enabled = true
ORDER BY target_contract, function_selector
`

type ListEnabledAllowlistEntriesRow struct {
	TargetContract   string
	FunctionSelector string
}

// ListEnabledAllowlistEntries returns enabled pairs in the fixed sort order the
// policy fingerprint is computed over.
func (q *Queries) ListEnabledAllowlistEntries(ctx context.Context, projectID string) ([]ListEnabledAllowlistEntriesRow, error) {
	rows, err := q.db.Query(ctx, listEnabledAllowlistEntries, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListEnabledAllowlistEntriesRow
	for rows.Next() {
		var i ListEnabledAllowlistEntriesRow
		if err := rows.Scan(&i.TargetContract, &i.FunctionSelector); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
