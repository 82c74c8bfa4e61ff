// Package feed fetches externally materialized dashboard data
// (transaction and budget rows). The engine never issues these queries
// itself; this package only transforms and delivers results it is given,
// and a ledger mutation is never blocked by a fetch in flight.
package feed

import (
	"context"

	"premi/internal/stats"
)

// Ports for the external data service.
type (
	TransactionReader interface {
		// RecentTransactions returns the most recent rows, newest last.
		RecentTransactions(ctx context.Context, limit int) ([]stats.TransactionRow, error)
	}

	BudgetReader interface {
		Budgets(ctx context.Context) ([]stats.BudgetRow, error)
	}
)

// Dashboard is one consistent snapshot of externally supplied rows.
type Dashboard struct {
	Transactions []stats.TransactionRow
	Budgets      []stats.BudgetRow
}
