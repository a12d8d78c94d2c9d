// Package services coordinates multi-step operations over the repositories:
// cascading ledger deletion, statistics reduction and the export/import
// pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"dailymoney/internal/amqp"
	"dailymoney/internal/core"
	"dailymoney/internal/repository"
)

// EventPublisher announces committed writes to external consumers.
// *amqp.Client satisfies it; tests substitute their own.
type EventPublisher interface {
	PublishEntityChange(ctx context.Context, entity, op string, id, ledgerID int64) error
}

// publishChange emits a change event for a committed write. The write
// already happened; event delivery is best effort and a nil publisher is a
// no-op.
func publishChange(ctx context.Context, events EventPublisher, entity, op string, id, ledgerID int64) {
	if events == nil {
		return
	}
	if err := events.PublishEntityChange(ctx, entity, op, id, ledgerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"entity", entity, "op", op, "id", id, "error", err)
	}
}

// LedgerService owns ledger writes and the cascading delete. Successful
// writes additionally publish change events when a broker is configured.
type LedgerService struct {
	ledgers      *repository.LedgerRepository
	transactions *repository.TransactionRepository
	events       EventPublisher
}

// NewLedgerService creates the service. events may be nil.
func NewLedgerService(ledgers *repository.LedgerRepository, transactions *repository.TransactionRepository, events EventPublisher) *LedgerService {
	return &LedgerService{
		ledgers:      ledgers,
		transactions: transactions,
		events:       events,
	}
}

// Upsert persists the ledger and returns its id.
func (s *LedgerService) Upsert(ctx context.Context, l core.Ledger) (int64, error) {
	if l.CreatedAtEpochMillis == 0 {
		l.CreatedAtEpochMillis = core.NowEpochMillis()
	}
	id, err := s.ledgers.Upsert(ctx, l)
	if err != nil {
		return 0, fmt.Errorf("upsert ledger: %w", err)
	}
	publishChange(ctx, s.events, "ledger", amqp.OpUpsert, id, id)
	return id, nil
}

// Delete removes the ledger and everything it owns. Two steps: the ledger's
// transactions first, then the ledger row; categories cascade with the row.
// If the process dies between the steps, what remains is an empty ledger,
// not corruption.
func (s *LedgerService) Delete(ctx context.Context, ledgerID int64) error {
	if err := s.transactions.DeleteByLedger(ctx, ledgerID); err != nil {
		return fmt.Errorf("delete ledger transactions: %w", err)
	}
	if err := s.ledgers.Delete(ctx, ledgerID); err != nil {
		return fmt.Errorf("delete ledger: %w", err)
	}

	slog.InfoContext(ctx, "Ledger deleted with cascade", "ledger_id", ledgerID)
	publishChange(ctx, s.events, "ledger", amqp.OpDelete, ledgerID, ledgerID)
	return nil
}
