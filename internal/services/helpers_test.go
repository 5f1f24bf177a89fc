package services_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/mock/gomock"

	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/logger"
	"github.com/sorted-fund/sponsor-api/internal/mocks"
	"github.com/sorted-fund/sponsor-api/internal/testutil"
)

func init() {
	logger.InitLogger("test")
}

const testProjectID = "proj-1"

func newStoreFixture(t *testing.T) (*testutil.MockStore, *mocks.MockQuerier) {
	t.Helper()
	ctrl := gomock.NewController(t)
	querier := mocks.NewMockQuerier(ctrl)
	return testutil.NewMockStore(querier), querier
}

func numeric(v int64) pgtype.Numeric {
	return db.NumericFromBig(big.NewInt(v))
}

type projectOpts struct {
	balance    int64
	dailyCap   int64
	dailySpent int64
	resetAt    time.Time
	status     db.ProjectStatus
}

func makeProject(opts projectOpts) db.Project {
	if opts.status == "" {
		opts.status = db.ProjectStatusActive
	}
	if opts.resetAt.IsZero() {
		opts.resetAt = time.Now()
	}
	return db.Project{
		ID:             testProjectID,
		Name:           "Test Project",
		OwnerAddress:   "0x1111111111111111111111111111111111111111",
		Status:         opts.status,
		GasTankBalance: numeric(opts.balance),
		DailyCap:       numeric(opts.dailyCap),
		DailySpent:     numeric(opts.dailySpent),
		DailyResetAt:   pgtype.Timestamptz{Time: opts.resetAt, Valid: true},
	}
}
