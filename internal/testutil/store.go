package testutil

import (
	"context"

	"github.com/sorted-fund/sponsor-api/internal/db"
)

// MockStore adapts a Querier (typically a gomock MockQuerier) into a db.Store
// whose transactions run directly against the same querier, so tests can set
// expectations without a live database.
type MockStore struct {
	db.Querier
}

// NewMockStore wraps the querier.
func NewMockStore(q db.Querier) *MockStore {
	return &MockStore{Querier: q}
}

// ExecTx runs fn against the wrapped querier. Rollback semantics are not
// simulated; tests assert on the calls instead.
func (s *MockStore) ExecTx(ctx context.Context, fn func(db.Querier) error) error {
	return fn(s.Querier)
}
