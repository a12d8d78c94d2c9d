package services

import (
	"context"
	"errors"
	"fmt"

	"dailymoney/internal/amqp"
	"dailymoney/internal/apperrors"
	"dailymoney/internal/core"
	"dailymoney/internal/repository"
)

// TransactionService owns single-transaction writes and publishes change
// events for them.
type TransactionService struct {
	transactions *repository.TransactionRepository
	events       EventPublisher
}

// NewTransactionService creates the service. events may be nil.
func NewTransactionService(transactions *repository.TransactionRepository, events EventPublisher) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		events:       events,
	}
}

// Upsert persists the transaction and returns its id. A zero created-at is
// stamped with the current time; edits keep the original value so tie-break
// ordering stays stable.
func (s *TransactionService) Upsert(ctx context.Context, t core.Transaction) (int64, error) {
	if t.CreatedAtEpochMillis == 0 {
		t.CreatedAtEpochMillis = core.NowEpochMillis()
	}
	id, err := s.transactions.Upsert(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("upsert transaction: %w", err)
	}
	publishChange(ctx, s.events, "transaction", amqp.OpUpsert, id, t.LedgerID)
	return id, nil
}

// Delete removes a single transaction. Idempotent; deleting an absent
// transaction publishes nothing.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	// Resolve the owning ledger before the row disappears.
	transaction, err := s.transactions.Get(ctx, id)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := s.transactions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if transaction != nil {
		publishChange(ctx, s.events, "transaction", amqp.OpDelete, id, transaction.LedgerID)
	}
	return nil
}
