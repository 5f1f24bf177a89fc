package services_test

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/services"
)

func TestReserveSuccess(t *testing.T) {
	store, querier := newStoreFixture(t)
	svc := services.NewFundLedgerService(store)

	querier.EXPECT().
		GetLedgerEntryByIdempotencyKey(gomock.Any(), db.GetLedgerEntryByIdempotencyKeyParams{
			ProjectID:      testProjectID,
			IdempotencyKey: "authorize:proj-1:1",
		}).
		Return(db.FundLedgerEntry{}, pgx.ErrNoRows)
	querier.EXPECT().
		GetProjectForUpdate(gomock.Any(), testProjectID).
		Return(makeProject(projectOpts{balance: 1_000_000}), nil)
	querier.EXPECT().
		UpdateProjectBalance(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.UpdateProjectBalanceParams) error {
			require.Equal(t, "760000", db.NumericToBig(arg.GasTankBalance).String())
			return nil
		})
	querier.EXPECT().
		CreateLedgerEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.CreateLedgerEntryParams) (db.FundLedgerEntry, error) {
			require.Equal(t, db.LedgerEntryTypeReserve, arg.EntryType)
			require.Equal(t, "240000", db.NumericToBig(arg.Amount).String())
			return db.FundLedgerEntry{ID: 11, ProjectID: testProjectID, EntryType: arg.EntryType, Amount: arg.Amount}, nil
		})

	result, err := svc.Reserve(context.Background(), services.ReserveParams{
		ProjectID:      testProjectID,
		ChainID:        14601,
		Amount:         big.NewInt(240_000),
		IdempotencyKey: "authorize:proj-1:1",
	})
	require.NoError(t, err)
	require.True(t, result.Reserved)
	require.False(t, result.Duplicate)
	require.Equal(t, int64(11), result.Entry.ID)
}

func TestReserveInsufficientFunds(t *testing.T) {
	store, querier := newStoreFixture(t)
	svc := services.NewFundLedgerService(store)

	querier.EXPECT().
		GetLedgerEntryByIdempotencyKey(gomock.Any(), gomock.Any()).
		Return(db.FundLedgerEntry{}, pgx.ErrNoRows)
	querier.EXPECT().
		GetProjectForUpdate(gomock.Any(), testProjectID).
		Return(makeProject(projectOpts{balance: 100}), nil)

	result, err := svc.Reserve(context.Background(), services.ReserveParams{
		ProjectID:      testProjectID,
		Amount:         big.NewInt(500),
		IdempotencyKey: "authorize:proj-1:2",
	})
	require.NoError(t, err)
	require.False(t, result.Reserved)
}

func TestReserveIdempotentReplay(t *testing.T) {
	store, querier := newStoreFixture(t)
	svc := services.NewFundLedgerService(store)

	existing := db.FundLedgerEntry{ID: 42, ProjectID: testProjectID, EntryType: db.LedgerEntryTypeReserve, Amount: numeric(240_000)}
	querier.EXPECT().
		GetProjectForUpdate(gomock.Any(), testProjectID).
		Return(makeProject(projectOpts{balance: 760_000}), nil)
	querier.EXPECT().
		GetLedgerEntryByIdempotencyKey(gomock.Any(), gomock.Any()).
		Return(existing, nil)
	// No balance mutation expectations: the replay must leave the ledger alone.

	result, err := svc.Reserve(context.Background(), services.ReserveParams{
		ProjectID:      testProjectID,
		Amount:         big.NewInt(240_000),
		IdempotencyKey: "authorize:proj-1:1",
	})
	require.NoError(t, err)
	require.True(t, result.Reserved)
	require.True(t, result.Duplicate)
	require.Equal(t, int64(42), result.Entry.ID)
}

func TestReserveRejectsNegativeAmount(t *testing.T) {
	store, _ := newStoreFixture(t)
	svc := services.NewFundLedgerService(store)

	_, err := svc.Reserve(context.Background(), services.ReserveParams{
		ProjectID:      testProjectID,
		Amount:         big.NewInt(-1),
		IdempotencyKey: "k",
	})
	require.Error(t, err)
	require.Equal(t, services.ErrorKindValidation, services.KindOf(err))
}

func TestReleaseRestoresBalance(t *testing.T) {
	store, querier := newStoreFixture(t)
	svc := services.NewFundLedgerService(store)

	querier.EXPECT().
		GetLedgerEntryByIdempotencyKey(gomock.Any(), gomock.Any()).
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
			return db.FundLedgerEntry{ID: 12, EntryType: arg.EntryType, Amount: arg.Amount}, nil
		})

	entry, err := svc.Release(context.Background(), services.ReleaseParams{
		ProjectID:      testProjectID,
		Amount:         big.NewInt(80_000),
		IdempotencyKey: "release:proj-1:0xabc",
	})
	require.NoError(t, err)
	require.Equal(t, int64(12), entry.ID)
}

func TestRecordSettlementIdempotent(t *testing.T) {
	store, querier := newStoreFixture(t)
	svc := services.NewFundLedgerService(store)

	existing := db.FundLedgerEntry{ID: 21, EntryType: db.LedgerEntryTypeSettlement, Amount: numeric(160_000)}
	querier.EXPECT().
		GetLedgerEntryByIdempotencyKey(gomock.Any(), gomock.Any()).
		Return(existing, nil).
		Times(2)

	params := services.SettlementParams{
		ProjectID:      testProjectID,
		Amount:         big.NewInt(160_000),
		IdempotencyKey: "settlement:proj-1:0xabc",
	}
	first, err := svc.RecordSettlement(context.Background(), params)
	require.NoError(t, err)
	second, err := svc.RecordSettlement(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestRecordSettlementDoesNotTouchBalance(t *testing.T) {
	store, querier := newStoreFixture(t)
	svc := services.NewFundLedgerService(store)

	querier.EXPECT().
		GetLedgerEntryByIdempotencyKey(gomock.Any(), gomock.Any()).
		Return(db.FundLedgerEntry{}, pgx.ErrNoRows)
	// No GetProjectForUpdate or UpdateProjectBalance expectations: settlement
	// entries are audit-only.
	querier.EXPECT().
		CreateLedgerEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.CreateLedgerEntryParams) (db.FundLedgerEntry, error) {
			require.Equal(t, db.LedgerEntryTypeSettlement, arg.EntryType)
			return db.FundLedgerEntry{ID: 33, EntryType: arg.EntryType, Amount: arg.Amount}, nil
		})

	entry, err := svc.RecordSettlement(context.Background(), services.SettlementParams{
		ProjectID:      testProjectID,
		Amount:         big.NewInt(160_000),
		IdempotencyKey: "settlement:proj-1:0xdef",
	})
	require.NoError(t, err)
	require.Equal(t, int64(33), entry.ID)
}

func TestCreditGeneratesIdempotencyKey(t *testing.T) {
	store, querier := newStoreFixture(t)
	svc := services.NewFundLedgerService(store)

	querier.EXPECT().
		GetLedgerEntryByIdempotencyKey(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.GetLedgerEntryByIdempotencyKeyParams) (db.FundLedgerEntry, error) {
			require.True(t, strings.HasPrefix(arg.IdempotencyKey, "credit:proj-1:"))
			return db.FundLedgerEntry{}, pgx.ErrNoRows
		})
	querier.EXPECT().
		GetProjectForUpdate(gomock.Any(), testProjectID).
		Return(makeProject(projectOpts{balance: 0}), nil)
	querier.EXPECT().
		UpdateProjectBalance(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.UpdateProjectBalanceParams) error {
			require.Equal(t, "1000", db.NumericToBig(arg.GasTankBalance).String())
			return nil
		})
	querier.EXPECT().
		CreateLedgerEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.CreateLedgerEntryParams) (db.FundLedgerEntry, error) {
			require.Equal(t, db.LedgerEntryTypeCredit, arg.EntryType)
			return db.FundLedgerEntry{ID: 1, EntryType: arg.EntryType, Amount: arg.Amount}, nil
		})

	_, err := svc.Credit(context.Background(), services.CreditParams{
		ProjectID: testProjectID,
		Amount:    big.NewInt(1000),
	})
	require.NoError(t, err)
}

func TestBalanceFromLedger(t *testing.T) {
	store, querier := newStoreFixture(t)
	svc := services.NewFundLedgerService(store)

	querier.EXPECT().
		SumLedgerBalance(gomock.Any(), testProjectID).
		Return(numeric(840_000), nil)

	balance, err := svc.BalanceFromLedger(context.Background(), testProjectID)
	require.NoError(t, err)
	require.Equal(t, "840000", balance.String())
}
