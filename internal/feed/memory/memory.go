// Package memory provides an in-memory implementation of the dashboard
// feed ports, used in tests and local runs without an external data
// service.
package memory

import (
	"context"
	"sync"

	"premi/internal/stats"
)

type Store struct {
	mu  sync.Mutex
	tx  []stats.TransactionRow
	bud []stats.BudgetRow
}

func New(tx []stats.TransactionRow, bud []stats.BudgetRow) *Store {
	return &Store{tx: tx, bud: bud}
}

// SetTransactions replaces the transaction rows.
func (s *Store) SetTransactions(rows []stats.TransactionRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tx = append([]stats.TransactionRow(nil), rows...)
}

// RecentTransactions returns up to limit of the newest rows.
func (s *Store) RecentTransactions(_ context.Context, limit int) ([]stats.TransactionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := append([]stats.TransactionRow(nil), s.tx...)
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows, nil
}

// Budgets returns all budget rows.
func (s *Store) Budgets(_ context.Context) ([]stats.BudgetRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stats.BudgetRow(nil), s.bud...), nil
}
