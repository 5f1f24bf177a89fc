package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getProject = `-- name: GetProject :one
SELECT id, name, owner_address, status, gas_tank_balance, daily_cap, daily_spent, daily_reset_at, created_at, updated_at
FROM projects
WHERE id = $1
`

func (q *Queries) GetProject(ctx context.Context, id string) (Project, error) {
	row := q.db.QueryRow(ctx, getProject, id)
	var i Project
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.OwnerAddress,
		&i.Status,
		&i.GasTankBalance,
		&i.DailyCap,
		&i.DailySpent,
		&i.DailyResetAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getProjectForUpdate = `-- name: GetProjectForUpdate :one
SELECT id, name, owner_address, status, gas_tank_balance, daily_cap, daily_spent, daily_reset_at, created_at, updated_at
FROM projects
WHERE id = $1
FOR UPDATE
`

// GetProjectForUpdate locks the project row for the duration of the enclosing
// transaction. All balance mutations serialize on this lock.
func (q *Queries) GetProjectForUpdate(ctx context.Context, id string) (Project, error) {
	row := q.db.QueryRow(ctx, getProjectForUpdate, id)
	var i Project
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.OwnerAddress,
		&i.Status,
		&i.GasTankBalance,
		&i.DailyCap,
		&i.DailySpent,
		&i.DailyResetAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listProjects = `-- name: ListProjects :many
SELECT id, name, owner_address, status, gas_tank_balance, daily_cap, daily_spent, daily_reset_at, created_at, updated_at
FROM projects
ORDER BY id
`

func (q *Queries) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := q.db.Query(ctx, listProjects)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Project
	for rows.Next() {
		var i Project
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.OwnerAddress,
			&i.Status,
			&i.GasTankBalance,
			&i.DailyCap,
			&i.DailySpent,
			&i.DailyResetAt,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const updateProjectBalance = `-- name: UpdateProjectBalance :exec
UPDATE projects
SET gas_tank_balance = $2, updated_at = NOW()
WHERE id = $1
`

type UpdateProjectBalanceParams struct {
	ID             string
	GasTankBalance pgtype.Numeric
}

func (q *Queries) UpdateProjectBalance(ctx context.Context, arg UpdateProjectBalanceParams) error {
	_, err := q.db.Exec(ctx, updateProjectBalance, arg.ID, arg.GasTankBalance)
	return err
}

const resetDailyWindow = `-- name: ResetDailyWindow :exec
UPDATE projects
SET daily_spent = 0, daily_reset_at = NOW(), updated_at = NOW()
WHERE id = $1
`

func (q *Queries) ResetDailyWindow(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, resetDailyWindow, id)
	return err
}

const incrementDailySpent = `-- name: IncrementDailySpent :exec
UPDATE projects
SET daily_spent = daily_spent + $2, updated_at = NOW()
WHERE id = $1
`

type IncrementDailySpentParams struct {
	ID     string
	Amount pgtype.Numeric
}

func (q *Queries) IncrementDailySpent(ctx context.Context, arg IncrementDailySpentParams) error {
	_, err := q.db.Exec(ctx, incrementDailySpent, arg.ID, arg.Amount)
	return err
}
