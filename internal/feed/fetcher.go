package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Fetcher loads dashboard snapshots asynchronously with last-request-wins
// semantics: every Refresh is tagged with a sequence number, and a
// response is discarded if a newer request was issued after it. A slow
// network response can therefore never overwrite fresher data.
type Fetcher struct {
	tx    TransactionReader
	bd    BudgetReader
	limit int

	mu        sync.Mutex
	issued    uint64 // sequence of the most recent request
	applied   uint64 // sequence of the snapshot currently held
	latest    Dashboard
	fetchedAt time.Time
}

// NewFetcher builds a fetcher over the external data service ports.
// limit caps the number of transaction rows requested per refresh.
func NewFetcher(tx TransactionReader, bd BudgetReader, limit int) *Fetcher {
	return &Fetcher{tx: tx, bd: bd, limit: limit}
}

// Refresh issues a new asynchronous load. It returns immediately; the
// result becomes visible through Latest unless a newer refresh overtakes
// it first. Errors are logged, not returned: the previous snapshot simply
// stays current, and the engine remains correct if the load never
// completes.
func (f *Fetcher) Refresh(ctx context.Context) {
	seq := f.nextSeq()
	go func() {
		d, err := f.load(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Dashboard feed refresh failed", "seq", seq, "error", err)
			return
		}
		if !f.apply(seq, d) {
			slog.DebugContext(ctx, "Discarded stale dashboard feed response", "seq", seq)
		}
	}()
}

// Latest returns the freshest applied snapshot, its fetch time, and
// whether any snapshot has been applied yet.
func (f *Fetcher) Latest() (Dashboard, time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.fetchedAt, f.applied > 0
}

func (f *Fetcher) nextSeq() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued++
	return f.issued
}

// load fetches both sections in parallel.
func (f *Fetcher) load(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := f.tx.RecentTransactions(ctx, f.limit)
		if err != nil {
			return err
		}
		d.Transactions = rows
		return nil
	})
	g.Go(func() error {
		rows, err := f.bd.Budgets(ctx)
		if err != nil {
			return err
		}
		d.Budgets = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// apply installs a snapshot unless a newer request was issued after seq:
// the response of an overtaken request is stale by definition, whether or
// not the newer one has landed yet.
func (f *Fetcher) apply(seq uint64, d Dashboard) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seq < f.issued || seq <= f.applied {
		return false
	}
	f.applied = seq
	f.latest = d
	f.fetchedAt = time.Now()
	return true
}
