package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// Expense categories classify transactions with negative amounts.
	Expense CategoryType = "EXPENSE"
	// Income categories classify transactions with non-negative amounts.
	Income CategoryType = "INCOME"
)

type (
	// CategoryType is the fixed direction of a category. It is a closed
	// variant: only Expense and Income are valid.
	CategoryType string

	// Ledger is a named, independent container of categories and
	// transactions. A zero ID means the ledger has not been persisted yet;
	// storage assigns the ID on first write.
	Ledger struct {
		ID                   int64
		Name                 string
		Description          string
		CreatedAtEpochMillis int64
	}

	// Category is a user-defined label with a fixed direction. (LedgerID,
	// Name) is unique within storage. Deleting a category detaches
	// referencing transactions instead of deleting them.
	Category struct {
		ID        int64
		LedgerID  int64
		Name      string
		Type      CategoryType
		ColorHex  *string
		IconName  *string
		IsDefault bool
	}

	// Transaction is a single dated monetary movement. The sign of
	// AmountInCents carries the direction: negative is expense,
	// non-negative is income. Cents are the canonical unit; no floating
	// point anywhere near money.
	Transaction struct {
		ID                   int64
		LedgerID             int64
		CategoryID           *int64
		AmountInCents        int64
		OccurredOn           Date
		Note                 *string
		CreatedAtEpochMillis int64
	}
)

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrEmptyName           = errors.New("empty name")
	ErrNameTooLong         = errors.New("name too long (max 100 characters)")
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrInvalidLedgerRef    = errors.New("missing ledger reference")
)

// ParseCategoryType converts a stored or wire string into a CategoryType.
func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(s) {
	case Expense, Income:
		return CategoryType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategoryType, s)
	}
}

// NowEpochMillis returns the current wall clock as epoch milliseconds, the
// unit used for all created-at timestamps.
func NowEpochMillis() int64 {
	return time.Now().UnixMilli()
}

func (t CategoryType) Validate() error {
	switch t {
	case Expense, Income:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCategoryType, string(t))
	}
}

func (l Ledger) Validate() error {
	name := strings.TrimSpace(l.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 100 {
		return ErrNameTooLong
	}
	return nil
}

func (c Category) Validate() error {
	if c.LedgerID <= 0 {
		return ErrInvalidLedgerRef
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return ErrNameTooLong
	}
	return c.Type.Validate()
}

// Validate checks structural fields only. The sign-vs-category-type rule is
// an entry-workflow concern; storage stays permissive.
func (t Transaction) Validate() error {
	if t.LedgerID <= 0 {
		return ErrInvalidLedgerRef
	}
	return t.OccurredOn.Validate()
}
