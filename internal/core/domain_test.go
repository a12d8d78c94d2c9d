package core

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCategoryType(t *testing.T) {
	if got, err := ParseCategoryType("EXPENSE"); err != nil || got != Expense {
		t.Errorf("ParseCategoryType(EXPENSE) = %v, %v", got, err)
	}
	if got, err := ParseCategoryType("INCOME"); err != nil || got != Income {
		t.Errorf("ParseCategoryType(INCOME) = %v, %v", got, err)
	}
	for _, bad := range []string{"", "expense", "REFUND"} {
		if _, err := ParseCategoryType(bad); !errors.Is(err, ErrInvalidCategoryType) {
			t.Errorf("ParseCategoryType(%q) = %v, want ErrInvalidCategoryType", bad, err)
		}
	}
}

func TestLedgerValidate(t *testing.T) {
	if err := (Ledger{Name: "Trips"}).Validate(); err != nil {
		t.Errorf("valid ledger failed validation: %v", err)
	}
	if err := (Ledger{Name: "   "}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("blank name = %v, want ErrEmptyName", err)
	}
	if err := (Ledger{Name: strings.Repeat("x", 101)}).Validate(); !errors.Is(err, ErrNameTooLong) {
		t.Errorf("long name = %v, want ErrNameTooLong", err)
	}
}

func TestCategoryValidate(t *testing.T) {
	valid := Category{LedgerID: 1, Name: "Food", Type: Expense}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid category failed validation: %v", err)
	}

	t.Run("missing ledger", func(t *testing.T) {
		c := valid
		c.LedgerID = 0
		if err := c.Validate(); !errors.Is(err, ErrInvalidLedgerRef) {
			t.Errorf("got %v, want ErrInvalidLedgerRef", err)
		}
	})
	t.Run("empty name", func(t *testing.T) {
		c := valid
		c.Name = ""
		if err := c.Validate(); !errors.Is(err, ErrEmptyName) {
			t.Errorf("got %v, want ErrEmptyName", err)
		}
	})
	t.Run("bad type", func(t *testing.T) {
		c := valid
		c.Type = "OTHER"
		if err := c.Validate(); !errors.Is(err, ErrInvalidCategoryType) {
			t.Errorf("got %v, want ErrInvalidCategoryType", err)
		}
	})
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{LedgerID: 1, AmountInCents: -2550, OccurredOn: NewDate(2024, 3, 1)}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid transaction failed validation: %v", err)
	}

	t.Run("missing ledger", func(t *testing.T) {
		tx := valid
		tx.LedgerID = 0
		if err := tx.Validate(); !errors.Is(err, ErrInvalidLedgerRef) {
			t.Errorf("got %v, want ErrInvalidLedgerRef", err)
		}
	})
	t.Run("zero date", func(t *testing.T) {
		tx := valid
		tx.OccurredOn = Date{}
		if err := tx.Validate(); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("got %v, want ErrInvalidDate", err)
		}
	})
	t.Run("sign is not validated here", func(t *testing.T) {
		// Storage and core stay permissive about the sign; the entry
		// workflow owns that rule.
		tx := valid
		tx.AmountInCents = 100
		if err := tx.Validate(); err != nil {
			t.Errorf("positive amount rejected: %v", err)
		}
	})
}
