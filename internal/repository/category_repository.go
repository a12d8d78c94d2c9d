package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"dailymoney/internal/apperrors"
	"dailymoney/internal/core"
	"dailymoney/internal/storage"
)

type CategoryRepository struct {
	db       *sql.DB
	notifier *storage.Notifier
}

func NewCategoryRepository(store *storage.Store) *CategoryRepository {
	return &CategoryRepository{
		db:       store.DB(),
		notifier: store.Notifier(),
	}
}

const categoryColumns = "id, ledger_id, name, type, color_hex, icon_name, is_default"

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var (
		c        core.Category
		typ      string
		colorHex sql.NullString
		iconName sql.NullString
	)
	if err := row.Scan(&c.ID, &c.LedgerID, &c.Name, &typ, &colorHex, &iconName, &c.IsDefault); err != nil {
		return core.Category{}, err
	}
	parsed, err := core.ParseCategoryType(typ)
	if err != nil {
		return core.Category{}, err
	}
	c.Type = parsed
	if colorHex.Valid {
		c.ColorHex = &colorHex.String
	}
	if iconName.Valid {
		c.IconName = &iconName.String
	}
	return c, nil
}

// GetByLedger returns the ledger's categories, defaults first, then by name.
func (r *CategoryRepository) GetByLedger(ctx context.Context, ledgerID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE ledger_id = ?
		ORDER BY is_default DESC, name ASC`, ledgerID)
	if err != nil {
		return nil, storage.WrapError("list categories", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, storage.WrapError("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.WrapError("list categories", err)
	}
	return categories, nil
}

// Get returns the category with the given id, or ErrNotFound.
func (r *CategoryRepository) Get(ctx context.Context, id int64) (*core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, storage.WrapError("get category", err)
	}
	return &c, nil
}

// ObserveByLedger streams the ledger's category list.
func (r *CategoryRepository) ObserveByLedger(ctx context.Context, ledgerID int64) *Subscription[[]core.Category] {
	return observe(ctx, r.notifier, func(ctx context.Context) ([]core.Category, error) {
		return r.GetByLedger(ctx, ledgerID)
	}, storage.TableCategories)
}

// ObserveOne streams a single category; nil while it does not exist.
func (r *CategoryRepository) ObserveOne(ctx context.Context, id int64) *Subscription[*core.Category] {
	return observe(ctx, r.notifier, func(ctx context.Context) (*core.Category, error) {
		c, err := r.Get(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return c, err
	}, storage.TableCategories)
}

// Upsert inserts or replaces the category and returns the persisted id.
// A duplicate (ledger_id, name) pair surfaces as ErrConstraint.
func (r *CategoryRepository) Upsert(ctx context.Context, c core.Category) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, ledger_id, name, type, color_hex, icon_name, is_default)
		VALUES (nullif(?, 0), ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ledger_id = excluded.ledger_id,
			name = excluded.name,
			type = excluded.type,
			color_hex = excluded.color_hex,
			icon_name = excluded.icon_name,
			is_default = excluded.is_default
		RETURNING id`,
		c.ID, c.LedgerID, c.Name, string(c.Type), c.ColorHex, c.IconName, c.IsDefault,
	).Scan(&id)
	if err != nil {
		return 0, storage.WrapError("upsert category", err)
	}

	slog.DebugContext(ctx, "Category upserted", "id", id, "ledger_id", c.LedgerID, "name", c.Name)
	r.notifier.Notify(storage.TableCategories)
	return id, nil
}

// Delete removes the category. Referencing transactions are detached
// (category_id set to null), not deleted. Idempotent.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return storage.WrapError("delete category", err)
	}

	slog.DebugContext(ctx, "Category deleted", "id", id)
	// SET NULL rewrites transaction rows as well.
	r.notifier.Notify(storage.TableCategories)
	r.notifier.Notify(storage.TableTransactions)
	return nil
}
