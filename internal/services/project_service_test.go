package services_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/mocks"
	"github.com/sorted-fund/sponsor-api/internal/services"
)

func newProjectFixture(t *testing.T) (*services.ProjectService, *mocks.MockQuerier) {
	t.Helper()
	store, querier := newStoreFixture(t)
	return services.NewProjectService(store, services.NewFundLedgerService(store)), querier
}

func TestCreditGasTankKeyedByDeposit(t *testing.T) {
	svc, querier := newProjectFixture(t)

	querier.EXPECT().
		GetLedgerEntryByIdempotencyKey(gomock.Any(), db.GetLedgerEntryByIdempotencyKeyParams{
			ProjectID:      testProjectID,
			IdempotencyKey: "credit:proj-1:0xdeadbeef",
		}).
		Return(db.FundLedgerEntry{}, pgx.ErrNoRows)
	querier.EXPECT().
		GetProjectForUpdate(gomock.Any(), testProjectID).
		Return(makeProject(projectOpts{balance: 500}), nil)
	querier.EXPECT().
		UpdateProjectBalance(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.UpdateProjectBalanceParams) error {
			require.Equal(t, "1500", db.NumericToBig(arg.GasTankBalance).String())
			return nil
		})
	querier.EXPECT().
		CreateLedgerEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.CreateLedgerEntryParams) (db.FundLedgerEntry, error) {
			require.Equal(t, db.LedgerEntryTypeCredit, arg.EntryType)
			require.Equal(t, "deposit", arg.ReferenceType.String)
			return db.FundLedgerEntry{ID: 2, EntryType: arg.EntryType, Amount: arg.Amount}, nil
		})

	entry, err := svc.CreditGasTank(context.Background(), services.CreditGasTankRequest{
		ProjectID: testProjectID,
		ChainID:   14601,
		Amount:    "1000",
		TxHash:    "0xDEADBEEF",
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), entry.ID)
}

func TestCreditGasTankRejectsZeroAmount(t *testing.T) {
	svc, _ := newProjectFixture(t)

	_, err := svc.CreditGasTank(context.Background(), services.CreditGasTankRequest{
		ProjectID: testProjectID,
		Amount:    "0",
	})
	require.Equal(t, services.ErrorKindValidation, services.KindOf(err))
}

func TestCheckFundsParity(t *testing.T) {
	tests := []struct {
		name          string
		cachedBalance int64
		ledgerBalance int64
		wantParity    bool
		wantDelta     string
	}{
		{"in parity", 840_000, 840_000, true, "0"},
		{"cached ahead of ledger", 840_000, 839_000, false, "1000"},
		{"ledger ahead of cached", 839_000, 840_000, false, "-1000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, querier := newProjectFixture(t)

			querier.EXPECT().
				GetProject(gomock.Any(), testProjectID).
				Return(makeProject(projectOpts{balance: tc.cachedBalance}), nil)
			querier.EXPECT().
				SumLedgerBalance(gomock.Any(), testProjectID).
				Return(numeric(tc.ledgerBalance), nil)

			report, err := svc.CheckFundsParity(context.Background(), testProjectID)
			require.NoError(t, err)
			require.Equal(t, tc.wantParity, report.InParity)
			require.Equal(t, tc.wantDelta, report.Delta.String())
		})
	}
}

func TestCheckAllFundsParityReturnsMismatchesOnly(t *testing.T) {
	svc, querier := newProjectFixture(t)

	good := makeProject(projectOpts{balance: 100})
	bad := makeProject(projectOpts{balance: 200})
	bad.ID = "proj-2"

	querier.EXPECT().ListProjects(gomock.Any()).Return([]db.Project{good, bad}, nil)
	querier.EXPECT().GetProject(gomock.Any(), testProjectID).Return(good, nil)
	querier.EXPECT().SumLedgerBalance(gomock.Any(), testProjectID).Return(numeric(100), nil)
	querier.EXPECT().GetProject(gomock.Any(), "proj-2").Return(bad, nil)
	querier.EXPECT().SumLedgerBalance(gomock.Any(), "proj-2").Return(numeric(150), nil)

	mismatched, err := svc.CheckAllFundsParity(context.Background())
	require.NoError(t, err)
	require.Len(t, mismatched, 1)
	require.Equal(t, "proj-2", mismatched[0].ProjectID)
}

func TestGetGasTankStatus(t *testing.T) {
	svc, querier := newProjectFixture(t)

	querier.EXPECT().
		GetProject(gomock.Any(), testProjectID).
		Return(makeProject(projectOpts{balance: 760_000, dailyCap: 1_000_000, dailySpent: 240_000}), nil)

	status, err := svc.GetGasTankStatus(context.Background(), testProjectID)
	require.NoError(t, err)
	require.Equal(t, "760000", status.Balance.String())
	require.Equal(t, "1000000", status.DailyCap.String())
	require.Equal(t, "240000", status.DailySpent.String())
	require.Equal(t, db.ProjectStatusActive, status.Status)
}
