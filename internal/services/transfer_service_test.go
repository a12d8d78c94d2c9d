package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"dailymoney/internal/apperrors"
	"dailymoney/internal/core"
)

func TestExportLedgerNotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTransferService(env.ledgers, env.categories, env.transactions)

	_, err := svc.ExportLedger(context.Background(), 777)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestExportDocumentShape(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTransferService(env.ledgers, env.categories, env.transactions)
	ctx := context.Background()

	ledgerID := env.seedLedger(t, "Trips")
	catID := env.seedCategory(t, ledgerID, "Food", core.Expense)
	note := "lunch"
	env.seedTransaction(t, core.Transaction{
		LedgerID: ledgerID, CategoryID: &catID, AmountInCents: -1200,
		OccurredOn: core.NewDate(2024, 3, 5), Note: &note,
	})

	data, err := svc.ExportLedger(ctx, ledgerID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	for _, key := range []string{"version", "ledger", "categories", "transactions"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing %q", key)
		}
	}

	var version int
	if err := json.Unmarshal(doc["version"], &version); err != nil || version != DocumentVersion {
		t.Errorf("version = %d (%v), want %d", version, err, DocumentVersion)
	}

	var txs []map[string]any
	if err := json.Unmarshal(doc["transactions"], &txs); err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if got := txs[0]["occurredOn"]; got != "2024-03-05" {
		t.Errorf("occurredOn = %v, want zero-padded 2024-03-05", got)
	}
	if got := txs[0]["amountInCents"]; got != float64(-1200) {
		t.Errorf("amountInCents = %v, want -1200", got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTransferService(env.ledgers, env.categories, env.transactions)
	ctx := context.Background()

	ledgerID := env.seedLedger(t, "Trips")
	foodID := env.seedCategory(t, ledgerID, "Food", core.Expense)
	salaryID := env.seedCategory(t, ledgerID, "Salary", core.Income)

	note := "march lunch"
	env.seedTransaction(t, core.Transaction{LedgerID: ledgerID, CategoryID: &foodID, AmountInCents: -1200, OccurredOn: core.NewDate(2024, 3, 5), Note: &note})
	env.seedTransaction(t, core.Transaction{LedgerID: ledgerID, CategoryID: &salaryID, AmountInCents: 500000, OccurredOn: core.NewDate(2024, 3, 1)})
	env.seedTransaction(t, core.Transaction{LedgerID: ledgerID, AmountInCents: -1350, OccurredOn: core.NewDate(2024, 3, 20)})

	data, err := svc.ExportLedger(ctx, ledgerID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	newID, err := svc.ImportLedger(ctx, data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if newID == ledgerID {
		t.Fatalf("import reused the original ledger id %d", ledgerID)
	}

	orig, err := env.ledgers.Get(ctx, ledgerID)
	if err != nil {
		t.Fatalf("original ledger: %v", err)
	}
	imported, err := env.ledgers.Get(ctx, newID)
	if err != nil {
		t.Fatalf("imported ledger: %v", err)
	}
	if imported.Name != orig.Name || imported.Description != orig.Description {
		t.Errorf("imported ledger differs: %+v vs %+v", imported, orig)
	}

	origCats, _ := env.categories.GetByLedger(ctx, ledgerID)
	newCats, err := env.categories.GetByLedger(ctx, newID)
	if err != nil {
		t.Fatalf("imported categories: %v", err)
	}
	if len(newCats) != len(origCats) {
		t.Fatalf("imported %d categories, want %d", len(newCats), len(origCats))
	}
	for i := range origCats {
		if newCats[i].Name != origCats[i].Name || newCats[i].Type != origCats[i].Type {
			t.Errorf("category %d differs: %+v vs %+v", i, newCats[i], origCats[i])
		}
		if newCats[i].ID == origCats[i].ID {
			t.Errorf("category %q kept its original id %d", newCats[i].Name, newCats[i].ID)
		}
		if newCats[i].LedgerID != newID {
			t.Errorf("category %q points at ledger %d, want %d", newCats[i].Name, newCats[i].LedgerID, newID)
		}
	}

	origTxs, _ := env.transactions.GetAll(ctx, ledgerID)
	newTxs, err := env.transactions.GetAll(ctx, newID)
	if err != nil {
		t.Fatalf("imported transactions: %v", err)
	}
	if len(newTxs) != len(origTxs) {
		t.Fatalf("imported %d transactions, want %d", len(newTxs), len(origTxs))
	}

	// Map new category ids back to names to check remapping.
	catName := make(map[int64]string)
	for _, c := range newCats {
		catName[c.ID] = c.Name
	}
	origCatName := make(map[int64]string)
	for _, c := range origCats {
		origCatName[c.ID] = c.Name
	}
	for i := range origTxs {
		o, n := origTxs[i], newTxs[i]
		if n.AmountInCents != o.AmountInCents || n.OccurredOn != o.OccurredOn {
			t.Errorf("transaction %d differs: %+v vs %+v", i, n, o)
		}
		switch {
		case o.CategoryID == nil && n.CategoryID != nil:
			t.Errorf("transaction %d gained a category", i)
		case o.CategoryID != nil && n.CategoryID == nil:
			t.Errorf("transaction %d lost its category", i)
		case o.CategoryID != nil:
			if catName[*n.CategoryID] != origCatName[*o.CategoryID] {
				t.Errorf("transaction %d remapped to category %q, want %q",
					i, catName[*n.CategoryID], origCatName[*o.CategoryID])
			}
		}
		if o.Note == nil != (n.Note == nil) || (o.Note != nil && *n.Note != *o.Note) {
			t.Errorf("transaction %d note differs", i)
		}
	}
}

func TestImportRejectsBadDocuments(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTransferService(env.ledgers, env.categories, env.transactions)
	ctx := context.Background()

	cases := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{{{`, apperrors.ErrMalformedData},
		{"missing version", `{"ledger":{"name":"x","description":""}}`, apperrors.ErrMalformedData},
		{"future version", `{"version":2,"ledger":{"name":"x","description":""}}`, apperrors.ErrUnsupportedVersion},
		{"missing ledger", `{"version":1}`, apperrors.ErrMalformedData},
		{"ledger missing name", `{"version":1,"ledger":{"description":""}}`, apperrors.ErrMalformedData},
		{"category missing type", `{"version":1,"ledger":{"name":"x","description":""},"categories":[{"id":1,"name":"Food"}]}`, apperrors.ErrMalformedData},
		{"transaction missing amount", `{"version":1,"ledger":{"name":"x","description":""},"transactions":[{"occurredOn":"2024-03-05"}]}`, apperrors.ErrMalformedData},
		{"transaction bad date", `{"version":1,"ledger":{"name":"x","description":""},"transactions":[{"amountInCents":-100,"occurredOn":"2024-3-5"}]}`, apperrors.ErrMalformedData},
		{"category bad type", `{"version":1,"ledger":{"name":"x","description":""},"categories":[{"id":1,"name":"Food","type":"OTHER"}]}`, apperrors.ErrMalformedData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ImportLedger(ctx, []byte(tc.data))
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestImportDetachesUnknownCategories(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTransferService(env.ledgers, env.categories, env.transactions)
	ctx := context.Background()

	doc := fmt.Sprintf(`{
		"version": %d,
		"ledger": {"name": "Imported", "description": ""},
		"categories": [{"id": 10, "name": "Food", "type": "EXPENSE"}],
		"transactions": [
			{"categoryId": 10, "amountInCents": -100, "occurredOn": "2024-03-01"},
			{"categoryId": 99, "amountInCents": -200, "occurredOn": "2024-03-02"},
			{"categoryId": -3, "amountInCents": -300, "occurredOn": "2024-03-03"},
			{"amountInCents": -400, "occurredOn": "2024-03-04"}
		]
	}`, DocumentVersion)

	newID, err := svc.ImportLedger(ctx, []byte(doc))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	txs, err := env.transactions.GetAll(ctx, newID)
	if err != nil {
		t.Fatalf("get transactions: %v", err)
	}
	if len(txs) != 4 {
		t.Fatalf("got %d transactions, want 4", len(txs))
	}

	// Newest first: -400, -300, -200, -100. Only the last one keeps its
	// category; unknown and non-positive ids detach silently.
	for _, tx := range txs {
		switch tx.AmountInCents {
		case -100:
			if tx.CategoryID == nil {
				t.Error("known category was detached")
			}
		default:
			if tx.CategoryID != nil {
				t.Errorf("transaction %d kept unknown category %d", tx.AmountInCents, *tx.CategoryID)
			}
		}
	}
}

func TestImportIntoPopulatedDatabaseIsDisjoint(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTransferService(env.ledgers, env.categories, env.transactions)
	ctx := context.Background()

	existing := env.seedLedger(t, "Existing")
	env.seedCategory(t, existing, "Food", core.Expense)
	env.seedTransaction(t, core.Transaction{LedgerID: existing, AmountInCents: -500, OccurredOn: core.NewDate(2024, 1, 1)})

	doc := fmt.Sprintf(`{
		"version": %d,
		"ledger": {"name": "Existing", "description": "imported copy"},
		"categories": [{"id": 1, "name": "Food", "type": "EXPENSE"}],
		"transactions": [{"categoryId": 1, "amountInCents": -700, "occurredOn": "2024-02-01"}]
	}`, DocumentVersion)

	newID, err := svc.ImportLedger(ctx, []byte(doc))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if newID == existing {
		t.Fatal("import merged into the existing ledger")
	}

	// The original graph is untouched.
	origTxs, err := env.transactions.GetAll(ctx, existing)
	if err != nil {
		t.Fatalf("original transactions: %v", err)
	}
	if len(origTxs) != 1 || origTxs[0].AmountInCents != -500 {
		t.Errorf("original graph modified: %+v", origTxs)
	}
}
