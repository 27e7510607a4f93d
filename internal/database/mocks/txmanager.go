// Package mocks provides test doubles for the database package.
package mocks

import (
	"context"
)

// MockTxManager is a TxManager that runs the transactional function directly,
// without a database. Repository mocks observe the same context the real
// implementation would pass, minus the carried *sql.Tx.
type MockTxManager struct{}

// NewMockTxManager creates a new pass-through transaction manager.
func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

// WithTx executes fn with the given context.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
