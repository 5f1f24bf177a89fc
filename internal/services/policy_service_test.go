package services_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/services"
)

func TestIsAllowedNormalizesCase(t *testing.T) {
	store, querier := newStoreFixture(t)
	svc := services.NewPolicyService(store)

	querier.EXPECT().
		GetEnabledAllowlistEntry(gomock.Any(), db.GetEnabledAllowlistEntryParams{
			ProjectID:        testProjectID,
			TargetContract:   "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			FunctionSelector: "0xabcdef01",
		}).
		Return(db.Allowlist{ID: 1}, nil)

	allowed, err := svc.IsAllowed(context.Background(), testProjectID, "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", "0xABCDEF01")
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestIsAllowedMissingEntry(t *testing.T) {
	store, querier := newStoreFixture(t)
	svc := services.NewPolicyService(store)

	querier.EXPECT().
		GetEnabledAllowlistEntry(gomock.Any(), gomock.Any()).
		Return(db.Allowlist{}, pgx.ErrNoRows)

	allowed, err := svc.IsAllowed(context.Background(), testProjectID, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "0x12345678")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestPolicyFingerprintEmptyAllowlist(t *testing.T) {
	store, querier := newStoreFixture(t)
	svc := services.NewPolicyService(store)

	querier.EXPECT().
		ListEnabledAllowlistEntries(gomock.Any(), testProjectID).
		Return(nil, nil).
		Times(2)

	first, err := svc.PolicyFingerprint(context.Background(), testProjectID)
	require.NoError(t, err)
	second, err := svc.PolicyFingerprint(context.Background(), testProjectID)
	require.NoError(t, err)

	require.Equal(t, crypto.Keccak256Hash([]byte("empty")), first)
	require.Equal(t, first, second)
}

func TestPolicyFingerprintConcatenatesSortedPairs(t *testing.T) {
	store, querier := newStoreFixture(t)
	svc := services.NewPolicyService(store)

	// The query returns entries already ordered by target then selector.
	entries := []db.ListEnabledAllowlistEntriesRow{
		{TargetContract: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", FunctionSelector: "0x11111111"},
		{TargetContract: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", FunctionSelector: "0x22222222"},
		{TargetContract: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", FunctionSelector: "0x11111111"},
	}
	querier.EXPECT().
		ListEnabledAllowlistEntries(gomock.Any(), testProjectID).
		Return(entries, nil)

	hash, err := svc.PolicyFingerprint(context.Background(), testProjectID)
	require.NoError(t, err)

	expected := crypto.Keccak256Hash([]byte(
		"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa0x11111111" +
			"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa0x22222222" +
			"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb0x11111111",
	))
	require.Equal(t, expected, hash)
}
