// Package http exposes the ledger core to external callers as a JSON API.
// It performs the entry-workflow validation the repositories deliberately do
// not (amount sign vs. category type), shapes errors into status codes and
// fronts the statistics endpoints with a small non-authoritative cache.
package http

import (
	"net/http"

	"golang.org/x/sync/singleflight"

	"dailymoney/internal/cache"
	"dailymoney/internal/config"
	"dailymoney/internal/middleware/trace"
	"dailymoney/internal/repository"
	"dailymoney/internal/services"
	"dailymoney/internal/storage"
)

type Server struct {
	*http.Server

	ledgers      *repository.LedgerRepository
	categories   *repository.CategoryRepository
	transactions *repository.TransactionRepository

	ledgerService      *services.LedgerService
	categoryService    *services.CategoryService
	transactionService *services.TransactionService
	stats              *services.StatisticsService
	transfer           *services.TransferService

	cfg *config.Config

	statsCache  *cache.LRUCache[[]byte]
	statsGroup  singleflight.Group
	stopPurging func()
}

// NewServer wires handlers and middleware. The notifier drives stats cache
// invalidation: any write purges cached summaries.
func NewServer(
	addr string,
	cfg *config.Config,
	store *storage.Store,
	ledgers *repository.LedgerRepository,
	categories *repository.CategoryRepository,
	transactions *repository.TransactionRepository,
	ledgerService *services.LedgerService,
	categoryService *services.CategoryService,
	transactionService *services.TransactionService,
	stats *services.StatisticsService,
	transfer *services.TransferService,
) *Server {
	s := &Server{
		ledgers:            ledgers,
		categories:         categories,
		transactions:       transactions,
		ledgerService:      ledgerService,
		categoryService:    categoryService,
		transactionService: transactionService,
		stats:              stats,
		transfer:           transfer,
		cfg:                cfg,
		statsCache:         cache.NewLRUCache[[]byte](cfg.StatsCacheSize, cfg.StatsCacheTTL),
	}
	s.startCachePurger(store.Notifier())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("GET /api/ledgers", s.handleListLedgers)
	mux.HandleFunc("POST /api/ledgers", s.handleUpsertLedger)
	mux.HandleFunc("GET /api/ledgers/{id}", s.handleGetLedger)
	mux.HandleFunc("DELETE /api/ledgers/{id}", s.handleDeleteLedger)

	mux.HandleFunc("GET /api/ledgers/{id}/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleUpsertCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/ledgers/{id}/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleUpsertTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/ledgers/{id}/stats/monthly", s.handleMonthlyStats)
	mux.HandleFunc("GET /api/ledgers/{id}/stats/yearly", s.handleYearlyStats)
	mux.HandleFunc("GET /api/ledgers/{id}/expense", s.handleExpenseTotal)

	mux.HandleFunc("GET /api/ledgers/{id}/export", s.handleExportLedger)
	mux.HandleFunc("POST /api/ledgers/import", s.handleImportLedger)

	traceMw := trace.NewMiddleware()
	s.Server = &http.Server{
		Addr:    addr,
		Handler: traceMw.Middleware(mux),
	}
	return s
}

// startCachePurger drops cached stats whenever any table changes. The cache
// only ever serves slightly stale summaries within its TTL; this keeps even
// that window short after writes.
func (s *Server) startCachePurger(notifier *storage.Notifier) {
	signal, cancel := notifier.Subscribe(
		storage.TableLedgers,
		storage.TableCategories,
		storage.TableTransactions,
	)
	done := make(chan struct{})
	s.stopPurging = func() {
		cancel()
		close(done)
	}
	go func() {
		for {
			select {
			case <-done:
				return
			case <-signal:
				s.statsCache.Purge()
			}
		}
	}()
}

// Stop releases the cache purger. Shutdown of the embedded http.Server is
// the caller's responsibility.
func (s *Server) Stop() {
	if s.stopPurging != nil {
		s.stopPurging()
		s.stopPurging = nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
