package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"dailymoney/internal/core"
	"dailymoney/internal/repository"
	"dailymoney/internal/storage"
)

// recordingPublisher captures published change events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	fail   bool
}

type recordedEvent struct {
	Entity   string
	Op       string
	ID       int64
	LedgerID int64
}

func (p *recordingPublisher) PublishEntityChange(ctx context.Context, entity, op string, id, ledgerID int64) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Entity: entity, Op: op, ID: id, LedgerID: ledgerID})
	return nil
}

func (p *recordingPublisher) recorded() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

type testEnv struct {
	store        *storage.Store
	ledgers      *repository.LedgerRepository
	categories   *repository.CategoryRepository
	transactions *repository.TransactionRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &testEnv{
		store:        store,
		ledgers:      repository.NewLedgerRepository(store),
		categories:   repository.NewCategoryRepository(store),
		transactions: repository.NewTransactionRepository(store),
	}
}

func (e *testEnv) seedLedger(t *testing.T, name string) int64 {
	t.Helper()
	id, err := e.ledgers.Upsert(context.Background(), core.Ledger{
		Name:                 name,
		CreatedAtEpochMillis: core.NowEpochMillis(),
	})
	if err != nil {
		t.Fatalf("seed ledger %q: %v", name, err)
	}
	return id
}

func (e *testEnv) seedCategory(t *testing.T, ledgerID int64, name string, typ core.CategoryType) int64 {
	t.Helper()
	id, err := e.categories.Upsert(context.Background(), core.Category{
		LedgerID: ledgerID,
		Name:     name,
		Type:     typ,
	})
	if err != nil {
		t.Fatalf("seed category %q: %v", name, err)
	}
	return id
}

func (e *testEnv) seedTransaction(t *testing.T, tx core.Transaction) int64 {
	t.Helper()
	if tx.CreatedAtEpochMillis == 0 {
		tx.CreatedAtEpochMillis = core.NowEpochMillis()
	}
	id, err := e.transactions.Upsert(context.Background(), tx)
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return id
}

func (e *testEnv) countRows(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := e.store.DB().QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}
