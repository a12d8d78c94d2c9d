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

// CategoryService owns category writes and publishes change events for them.
type CategoryService struct {
	categories *repository.CategoryRepository
	events     EventPublisher
}

// NewCategoryService creates the service. events may be nil.
func NewCategoryService(categories *repository.CategoryRepository, events EventPublisher) *CategoryService {
	return &CategoryService{
		categories: categories,
		events:     events,
	}
}

// Upsert persists the category and returns its id.
func (s *CategoryService) Upsert(ctx context.Context, c core.Category) (int64, error) {
	id, err := s.categories.Upsert(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("upsert category: %w", err)
	}
	publishChange(ctx, s.events, "category", amqp.OpUpsert, id, c.LedgerID)
	return id, nil
}

// Delete removes the category, detaching referencing transactions.
// Idempotent; deleting an absent category publishes nothing.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	// The row is gone after the delete; resolve the owning ledger first so
	// the event can carry it.
	category, err := s.categories.Get(ctx, id)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if category != nil {
		publishChange(ctx, s.events, "category", amqp.OpDelete, id, category.LedgerID)
	}
	return nil
}
