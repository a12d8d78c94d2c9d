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

type TransactionRepository struct {
	db       *sql.DB
	notifier *storage.Notifier
}

func NewTransactionRepository(store *storage.Store) *TransactionRepository {
	return &TransactionRepository{
		db:       store.DB(),
		notifier: store.Notifier(),
	}
}

const transactionColumns = "id, ledger_id, category_id, amount_in_cents, occurred_on, note, created_at_epoch_millis"

// Newest first, ties broken by insertion recency. The trailing id makes the
// order total, so pagination never duplicates or drops rows that share both
// keys. Lexicographic order on occurred_on is correct because dates are
// stored zero-padded.
const transactionOrder = "ORDER BY occurred_on DESC, created_at_epoch_millis DESC, id DESC"

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t          core.Transaction
		categoryID sql.NullInt64
		occurredOn string
		note       sql.NullString
	)
	if err := row.Scan(&t.ID, &t.LedgerID, &categoryID, &t.AmountInCents, &occurredOn, &note, &t.CreatedAtEpochMillis); err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(occurredOn)
	if err != nil {
		return core.Transaction{}, err
	}
	t.OccurredOn = date
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	if note.Valid {
		t.Note = &note.String
	}
	return t, nil
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.WrapError("list transactions", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, storage.WrapError("scan transaction", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.WrapError("list transactions", err)
	}
	return transactions, nil
}

// GetPage returns one page of the ledger's transactions.
func (r *TransactionRepository) GetPage(ctx context.Context, ledgerID int64, limit, offset int) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE ledger_id = ?
		`+transactionOrder+`
		LIMIT ? OFFSET ?`, ledgerID, limit, offset)
}

// GetAll returns every transaction of the ledger, unpaginated.
func (r *TransactionRepository) GetAll(ctx context.Context, ledgerID int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE ledger_id = ?
		`+transactionOrder, ledgerID)
}

// GetForDate returns the ledger's transactions on an exact date.
func (r *TransactionRepository) GetForDate(ctx context.Context, ledgerID int64, date core.Date) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE ledger_id = ? AND occurred_on = ?
		ORDER BY created_at_epoch_millis DESC, id DESC`, ledgerID, date.String())
}

// Get returns the transaction with the given id, or ErrNotFound.
func (r *TransactionRepository) Get(ctx context.Context, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, storage.WrapError("get transaction", err)
	}
	return &t, nil
}

// ObserveByLedger streams the full transaction list of the ledger.
func (r *TransactionRepository) ObserveByLedger(ctx context.Context, ledgerID int64) *Subscription[[]core.Transaction] {
	return observe(ctx, r.notifier, func(ctx context.Context) ([]core.Transaction, error) {
		return r.GetAll(ctx, ledgerID)
	}, storage.TableTransactions)
}

// ObserveForDate streams the ledger's transactions on an exact date.
func (r *TransactionRepository) ObserveForDate(ctx context.Context, ledgerID int64, date core.Date) *Subscription[[]core.Transaction] {
	return observe(ctx, r.notifier, func(ctx context.Context) ([]core.Transaction, error) {
		return r.GetForDate(ctx, ledgerID, date)
	}, storage.TableTransactions)
}

// GetMonthlyStats groups the ledger's transactions by calendar month,
// newest month first, partitioning sums by the sign of the amount.
func (r *TransactionRepository) GetMonthlyStats(ctx context.Context, ledgerID int64) ([]core.MonthlyStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			ledger_id,
			substr(occurred_on, 1, 7) AS year_month,
			SUM(CASE WHEN amount_in_cents >= 0 THEN amount_in_cents ELSE 0 END) AS income_in_cents,
			SUM(CASE WHEN amount_in_cents < 0 THEN amount_in_cents ELSE 0 END) AS expense_in_cents
		FROM transactions
		WHERE ledger_id = ?
		GROUP BY ledger_id, substr(occurred_on, 1, 7)
		ORDER BY year_month DESC`, ledgerID)
	if err != nil {
		return nil, storage.WrapError("monthly stats", err)
	}
	defer rows.Close()

	var stats []core.MonthlyStats
	for rows.Next() {
		var s core.MonthlyStats
		if err := rows.Scan(&s.LedgerID, &s.YearMonth, &s.IncomeInCents, &s.ExpenseInCents); err != nil {
			return nil, storage.WrapError("scan monthly stats", err)
		}
		s.NetInCents = s.IncomeInCents + s.ExpenseInCents
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.WrapError("monthly stats", err)
	}
	return stats, nil
}

// ObserveMonthlyStats streams the per-month summaries of the ledger.
func (r *TransactionRepository) ObserveMonthlyStats(ctx context.Context, ledgerID int64) *Subscription[[]core.MonthlyStats] {
	return observe(ctx, r.notifier, func(ctx context.Context) ([]core.MonthlyStats, error) {
		return r.GetMonthlyStats(ctx, ledgerID)
	}, storage.TableTransactions)
}

// GetYearExpense returns the ledger's total expense for a calendar year as a
// positive number of cents. Only negative amounts count.
func (r *TransactionRepository) GetYearExpense(ctx context.Context, ledgerID int64, year int) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN amount_in_cents < 0 THEN -amount_in_cents ELSE 0 END), 0)
		FROM transactions
		WHERE ledger_id = ? AND substr(occurred_on, 1, 4) = ?`,
		ledgerID, fmt.Sprintf("%04d", year),
	).Scan(&total)
	if err != nil {
		return 0, storage.WrapError("year expense", err)
	}
	return total, nil
}

// GetMonthExpense returns the ledger's total expense for a calendar month as
// a positive number of cents.
func (r *TransactionRepository) GetMonthExpense(ctx context.Context, ledgerID int64, year, month int) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN amount_in_cents < 0 THEN -amount_in_cents ELSE 0 END), 0)
		FROM transactions
		WHERE ledger_id = ? AND substr(occurred_on, 1, 7) = ?`,
		ledgerID, fmt.Sprintf("%04d-%02d", year, month),
	).Scan(&total)
	if err != nil {
		return 0, storage.WrapError("month expense", err)
	}
	return total, nil
}

// Upsert inserts or replaces the transaction and returns the persisted id.
// Writing against a missing ledger surfaces as ErrConstraint.
func (r *TransactionRepository) Upsert(ctx context.Context, t core.Transaction) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO transactions (id, ledger_id, category_id, amount_in_cents, occurred_on, note, created_at_epoch_millis)
		VALUES (nullif(?, 0), ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ledger_id = excluded.ledger_id,
			category_id = excluded.category_id,
			amount_in_cents = excluded.amount_in_cents,
			occurred_on = excluded.occurred_on,
			note = excluded.note,
			created_at_epoch_millis = excluded.created_at_epoch_millis
		RETURNING id`,
		t.ID, t.LedgerID, t.CategoryID, t.AmountInCents, t.OccurredOn.String(), t.Note, t.CreatedAtEpochMillis,
	).Scan(&id)
	if err != nil {
		return 0, storage.WrapError("upsert transaction", err)
	}

	slog.DebugContext(ctx, "Transaction upserted",
		"id", id,
		"ledger_id", t.LedgerID,
		"amount_in_cents", t.AmountInCents,
		"occurred_on", t.OccurredOn.String())
	r.notifier.Notify(storage.TableTransactions)
	return id, nil
}

// Delete removes a single transaction. Idempotent.
func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return storage.WrapError("delete transaction", err)
	}
	r.notifier.Notify(storage.TableTransactions)
	return nil
}

// DeleteByLedger removes every transaction of the ledger.
func (r *TransactionRepository) DeleteByLedger(ctx context.Context, ledgerID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE ledger_id = ?`, ledgerID); err != nil {
		return storage.WrapError("delete transactions by ledger", err)
	}
	slog.DebugContext(ctx, "Transactions deleted by ledger", "ledger_id", ledgerID)
	r.notifier.Notify(storage.TableTransactions)
	return nil
}

// DeleteByLedgerAndDate removes the ledger's transactions on an exact date.
func (r *TransactionRepository) DeleteByLedgerAndDate(ctx context.Context, ledgerID int64, date core.Date) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE ledger_id = ? AND occurred_on = ?`, ledgerID, date.String()); err != nil {
		return storage.WrapError("delete transactions by date", err)
	}
	r.notifier.Notify(storage.TableTransactions)
	return nil
}
