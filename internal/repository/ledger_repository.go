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

type LedgerRepository struct {
	db       *sql.DB
	notifier *storage.Notifier
}

func NewLedgerRepository(store *storage.Store) *LedgerRepository {
	return &LedgerRepository{
		db:       store.DB(),
		notifier: store.Notifier(),
	}
}

const ledgerColumns = "id, name, description, created_at_epoch_millis"

func scanLedger(row interface{ Scan(...any) error }) (core.Ledger, error) {
	var l core.Ledger
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.CreatedAtEpochMillis)
	return l, err
}

// GetAll returns every ledger, newest first.
func (r *LedgerRepository) GetAll(ctx context.Context) ([]core.Ledger, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledgers
		ORDER BY created_at_epoch_millis DESC`)
	if err != nil {
		return nil, storage.WrapError("list ledgers", err)
	}
	defer rows.Close()

	var ledgers []core.Ledger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, storage.WrapError("scan ledger", err)
		}
		ledgers = append(ledgers, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.WrapError("list ledgers", err)
	}
	return ledgers, nil
}

// Get returns the ledger with the given id, or ErrNotFound.
func (r *LedgerRepository) Get(ctx context.Context, id int64) (*core.Ledger, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledgers
		WHERE id = ?`, id)
	l, err := scanLedger(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, storage.WrapError("get ledger", err)
	}
	return &l, nil
}

// ObserveAll streams the full ledger list, newest first.
func (r *LedgerRepository) ObserveAll(ctx context.Context) *Subscription[[]core.Ledger] {
	return observe(ctx, r.notifier, r.GetAll, storage.TableLedgers)
}

// ObserveOne streams a single ledger; the snapshot is nil while the ledger
// does not exist.
func (r *LedgerRepository) ObserveOne(ctx context.Context, id int64) *Subscription[*core.Ledger] {
	return observe(ctx, r.notifier, func(ctx context.Context) (*core.Ledger, error) {
		l, err := r.Get(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return l, err
	}, storage.TableLedgers)
}

// Upsert inserts the ledger, assigning a fresh id when l.ID is zero, or
// replaces all columns of the existing row. It returns the persisted id.
func (r *LedgerRepository) Upsert(ctx context.Context, l core.Ledger) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO ledgers (id, name, description, created_at_epoch_millis)
		VALUES (nullif(?, 0), ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			created_at_epoch_millis = excluded.created_at_epoch_millis
		RETURNING id`,
		l.ID, l.Name, l.Description, l.CreatedAtEpochMillis,
	).Scan(&id)
	if err != nil {
		return 0, storage.WrapError("upsert ledger", err)
	}

	slog.DebugContext(ctx, "Ledger upserted", "id", id, "name", l.Name)
	r.notifier.Notify(storage.TableLedgers)
	return id, nil
}

// Delete removes the ledger row. Categories and transactions cascade via
// foreign keys. Deleting a nonexistent id is not an error.
func (r *LedgerRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ledgers WHERE id = ?`, id); err != nil {
		return storage.WrapError("delete ledger", err)
	}

	slog.DebugContext(ctx, "Ledger deleted", "id", id)
	// Cascade touches the child tables too.
	r.notifier.Notify(storage.TableLedgers)
	r.notifier.Notify(storage.TableCategories)
	r.notifier.Notify(storage.TableTransactions)
	return nil
}
