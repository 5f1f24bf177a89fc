package services_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/mocks"
	"github.com/sorted-fund/sponsor-api/internal/services"
)

func newReconFixture(t *testing.T) (*services.ReconciliationService, *mocks.MockQuerier) {
	t.Helper()
	store, querier := newStoreFixture(t)
	ledger := services.NewFundLedgerService(store)
	gasPrices := services.NewGasPriceServiceWithReaders(nil, big.NewInt(2))
	return services.NewReconciliationService(store, ledger, gasPrices), querier
}

func authorizedEvent(userOpHash string) db.SponsorshipEvent {
	return db.SponsorshipEvent{
		ID:           5,
		ProjectID:    testProjectID,
		ChainID:      14601,
		UserOpHash:   pgtype.Text{String: userOpHash, Valid: true},
		EstimatedGas: numeric(100_000),
		MaxCost:      numeric(240_000),
		Status:       db.SponsorshipStatusPending,
	}
}

func TestReconcileSettlesAndRefunds(t *testing.T) {
	svc, querier := newReconFixture(t)
	userOpHash := "0x" + commonHex(32)

	querier.EXPECT().
		GetSponsorshipEventForUpdate(gomock.Any(), db.GetSponsorshipEventForUpdateParams{
			ProjectID:  testProjectID,
			UserOpHash: userOpHash,
		}).
		Return(authorizedEvent(userOpHash), nil)

	// Settlement: actualGas 80000 * gasPrice 2 = 160000, under the 240000 cap.
	querier.EXPECT().
		GetLedgerEntryByIdempotencyKey(gomock.Any(), db.GetLedgerEntryByIdempotencyKeyParams{
			ProjectID:      testProjectID,
			IdempotencyKey: "settlement:" + testProjectID + ":" + userOpHash,
		}).
		Return(db.FundLedgerEntry{}, pgx.ErrNoRows)
	querier.EXPECT().
		CreateLedgerEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.CreateLedgerEntryParams) (db.FundLedgerEntry, error) {
			require.Equal(t, db.LedgerEntryTypeSettlement, arg.EntryType)
			require.Equal(t, "160000", db.NumericToBig(arg.Amount).String())
			return db.FundLedgerEntry{ID: 21, EntryType: arg.EntryType, Amount: arg.Amount}, nil
		})
	querier.EXPECT().
		SetSettledLedgerEntry(gomock.Any(), db.SetSettledLedgerEntryParams{
			ID:                   5,
			SettledLedgerEntryID: pgtype.Int8{Int64: 21, Valid: true},
		}).
		Return(nil)

	// Refund: 240000 - 160000 = 80000 back into the gas tank.
	querier.EXPECT().
		GetLedgerEntryByIdempotencyKey(gomock.Any(), db.GetLedgerEntryByIdempotencyKeyParams{
			ProjectID:      testProjectID,
			IdempotencyKey: "release:" + testProjectID + ":" + userOpHash,
		}).
		Return(db.FundLedgerEntry{}, pgx.ErrNoRows)
	querier.EXPECT().
		GetProjectForUpdate(gomock.Any(), testProjectID).
		Return(makeProject(projectOpts{balance: 760_000}), nil)
	querier.EXPECT().
		UpdateProjectBalance(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.UpdateProjectBalanceParams) error {
			require.Equal(t, "840000", db.NumericToBig(arg.GasTankBalance).String())
			return nil
		})
	querier.EXPECT().
		CreateLedgerEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.CreateLedgerEntryParams) (db.FundLedgerEntry, error) {
			require.Equal(t, db.LedgerEntryTypeRelease, arg.EntryType)
			require.Equal(t, "80000", db.NumericToBig(arg.Amount).String())
			return db.FundLedgerEntry{ID: 22, EntryType: arg.EntryType, Amount: arg.Amount}, nil
		})
	querier.EXPECT().
		SetReleasedLedgerEntry(gomock.Any(), db.SetReleasedLedgerEntryParams{
			ID:                    5,
			ReleasedLedgerEntryID: pgtype.Int8{Int64: 22, Valid: true},
		}).
		Return(nil)

	querier.EXPECT().
		CompleteSponsorshipEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.CompleteSponsorshipEventParams) error {
			require.Equal(t, int64(5), arg.ID)
			require.Equal(t, db.SponsorshipStatusSuccess, arg.Status)
			require.Equal(t, "80000", db.NumericToBig(arg.ActualGas).String())
			return nil
		})

	err := svc.Reconcile(context.Background(), services.ReconcileRequest{
		ProjectID:  testProjectID,
		UserOpHash: userOpHash,
		ActualGas:  "80000",
		Status:     "success",
	})
	require.NoError(t, err)
}

func TestReconcileCapsSettlementAtReservation(t *testing.T) {
	svc, querier := newReconFixture(t)
	userOpHash := "0x" + commonHex(32)

	querier.EXPECT().
		GetSponsorshipEventForUpdate(gomock.Any(), gomock.Any()).
		Return(authorizedEvent(userOpHash), nil)
	querier.EXPECT().
		GetLedgerEntryByIdempotencyKey(gomock.Any(), gomock.Any()).
		Return(db.FundLedgerEntry{}, pgx.ErrNoRows)
	// actualGas 200000 * 2 = 400000 raw, capped at the reserved 240000 and
	// therefore zero refund: no release expectations are registered.
	querier.EXPECT().
		CreateLedgerEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.CreateLedgerEntryParams) (db.FundLedgerEntry, error) {
			require.Equal(t, db.LedgerEntryTypeSettlement, arg.EntryType)
			require.Equal(t, "240000", db.NumericToBig(arg.Amount).String())
			return db.FundLedgerEntry{ID: 21, EntryType: arg.EntryType, Amount: arg.Amount}, nil
		})
	querier.EXPECT().SetSettledLedgerEntry(gomock.Any(), gomock.Any()).Return(nil)
	querier.EXPECT().
		CompleteSponsorshipEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.CompleteSponsorshipEventParams) error {
			require.Equal(t, db.SponsorshipStatusReverted, arg.Status)
			return nil
		})

	err := svc.Reconcile(context.Background(), services.ReconcileRequest{
		ProjectID:  testProjectID,
		UserOpHash: userOpHash,
		ActualGas:  "200000",
		Status:     "reverted",
	})
	require.NoError(t, err)
}

func TestReconcileRedeliveryIsNoOp(t *testing.T) {
	svc, querier := newReconFixture(t)
	userOpHash := "0x" + commonHex(32)

	completed := authorizedEvent(userOpHash)
	completed.Status = db.SponsorshipStatusSuccess
	completed.CompletedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}

	querier.EXPECT().
		GetSponsorshipEventForUpdate(gomock.Any(), gomock.Any()).
		Return(completed, nil)
	// No further expectations: the completed-at guard stops everything.

	err := svc.Reconcile(context.Background(), services.ReconcileRequest{
		ProjectID:  testProjectID,
		UserOpHash: userOpHash,
		ActualGas:  "80000",
		Status:     "success",
	})
	require.NoError(t, err)
}

func TestReconcileEventNotFound(t *testing.T) {
	svc, querier := newReconFixture(t)

	querier.EXPECT().
		GetSponsorshipEventForUpdate(gomock.Any(), gomock.Any()).
		Return(db.SponsorshipEvent{}, pgx.ErrNoRows)

	err := svc.Reconcile(context.Background(), services.ReconcileRequest{
		ProjectID:  testProjectID,
		UserOpHash: "0x" + commonHex(32),
		ActualGas:  "80000",
		Status:     "success",
	})
	require.Equal(t, services.ErrorKindNotFound, services.KindOf(err))
}

func TestReconcileValidation(t *testing.T) {
	svc, _ := newReconFixture(t)

	tests := []struct {
		name string
		req  services.ReconcileRequest
	}{
		{"bad hash", services.ReconcileRequest{ProjectID: testProjectID, UserOpHash: "0x12", ActualGas: "1", Status: "success"}},
		{"bad gas", services.ReconcileRequest{ProjectID: testProjectID, UserOpHash: "0x" + commonHex(32), ActualGas: "-5", Status: "success"}},
		{"bad status", services.ReconcileRequest{ProjectID: testProjectID, UserOpHash: "0x" + commonHex(32), ActualGas: "1", Status: "maybe"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Reconcile(context.Background(), tc.req)
			require.Equal(t, services.ErrorKindValidation, services.KindOf(err))
		})
	}
}

func TestSweepExpiredAuthorizations(t *testing.T) {
	svc, querier := newReconFixture(t)

	expired := db.SponsorshipEvent{
		ID:        9,
		ProjectID: testProjectID,
		ChainID:   14601,
		MaxCost:   numeric(500),
		Status:    db.SponsorshipStatusAuthorized,
	}
	querier.EXPECT().
		ListExpiredAuthorizedEvents(gomock.Any(), int32(100)).
		Return([]db.SponsorshipEvent{expired}, nil)
	querier.EXPECT().
		GetLedgerEntryByIdempotencyKey(gomock.Any(), db.GetLedgerEntryByIdempotencyKeyParams{
			ProjectID:      testProjectID,
			IdempotencyKey: "release:expired:9",
		}).
		Return(db.FundLedgerEntry{}, pgx.ErrNoRows)
	querier.EXPECT().
		GetProjectForUpdate(gomock.Any(), testProjectID).
		Return(makeProject(projectOpts{balance: 1000}), nil)
	querier.EXPECT().
		UpdateProjectBalance(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.UpdateProjectBalanceParams) error {
			require.Equal(t, "1500", db.NumericToBig(arg.GasTankBalance).String())
			return nil
		})
	querier.EXPECT().
		CreateLedgerEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.CreateLedgerEntryParams) (db.FundLedgerEntry, error) {
			require.Equal(t, db.LedgerEntryTypeRelease, arg.EntryType)
			return db.FundLedgerEntry{ID: 31, EntryType: arg.EntryType, Amount: arg.Amount}, nil
		})
	querier.EXPECT().
		SetReleasedLedgerEntry(gomock.Any(), db.SetReleasedLedgerEntryParams{
			ID:                    9,
			ReleasedLedgerEntryID: pgtype.Int8{Int64: 31, Valid: true},
		}).
		Return(nil)
	querier.EXPECT().
		ExpireSponsorshipEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.ExpireSponsorshipEventParams) error {
			require.Equal(t, int64(9), arg.ID)
			return nil
		})

	swept, err := svc.SweepExpiredAuthorizations(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, 1, swept)
}
