package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/logger"
)

// emptyPolicySentinel is hashed when a project has no enabled allowlist
// entries, so the fingerprint is always well-defined. The on-chain verifier
// uses the same sentinel.
const emptyPolicySentinel = "empty"

// PolicyService answers allowlist membership queries and computes the policy
// fingerprint embedded in signed authorizations.
type PolicyService struct {
	store  db.Store
	logger *zap.Logger
}

// NewPolicyService creates a new policy service.
func NewPolicyService(store db.Store) *PolicyService {
	return &PolicyService{
		store:  store,
		logger: logger.Log,
	}
}

// NormalizeHex lower-cases a hex string so stored and queried values compare
// byte-for-byte regardless of caller checksum casing.
func NormalizeHex(s string) string {
	return strings.ToLower(s)
}

// IsAllowed reports whether the (target, selector) pair is enabled for the
// project. Comparison is case-normalized.
func (s *PolicyService) IsAllowed(ctx context.Context, projectID, target, selector string) (bool, error) {
	_, err := s.store.GetEnabledAllowlistEntry(ctx, db.GetEnabledAllowlistEntryParams{
		ProjectID:        projectID,
		TargetContract:   NormalizeHex(target),
		FunctionSelector: NormalizeHex(selector),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query allowlist: %w", err)
	}
	return true, nil
}

// PolicyFingerprint computes the keccak256 fingerprint of the project's
// currently enabled allowlist: all (target, selector) pairs concatenated in
// lexicographic order by target then selector. An empty allowlist hashes the
// fixed sentinel string instead of hashing nothing.
func (s *PolicyService) PolicyFingerprint(ctx context.Context, projectID string) (common.Hash, error) {
	entries, err := s.store.ListEnabledAllowlistEntries(ctx, projectID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to list allowlist entries: %w", err)
	}

	var combined strings.Builder
	for _, entry := range entries {
		combined.WriteString(entry.TargetContract)
		combined.WriteString(entry.FunctionSelector)
	}

	preimage := combined.String()
	if preimage == "" {
		preimage = emptyPolicySentinel
	}

	return crypto.Keccak256Hash([]byte(preimage)), nil
}
