package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"dailymoney/internal/apperrors"
	"dailymoney/internal/core"
	"dailymoney/internal/repository"
)

// DocumentVersion is the only export document version this build reads and
// writes.
const DocumentVersion = 1

// ExportDocument is the portable representation of one ledger's full entity
// graph. Original ids are included for traceability but are never reused on
// import.
type ExportDocument struct {
	Version      int                   `json:"version"`
	Ledger       LedgerDocument        `json:"ledger"`
	Categories   []CategoryDocument    `json:"categories"`
	Transactions []TransactionDocument `json:"transactions"`
}

type LedgerDocument struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	CreatedAtEpochMillis int64  `json:"createdAtEpochMillis"`
}

type CategoryDocument struct {
	ID        int64   `json:"id"`
	LedgerID  int64   `json:"ledgerId"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	ColorHex  *string `json:"colorHex"`
	IconName  *string `json:"iconName"`
	IsDefault bool    `json:"isDefault"`
}

type TransactionDocument struct {
	ID                   int64   `json:"id"`
	LedgerID             int64   `json:"ledgerId"`
	CategoryID           *int64  `json:"categoryId"`
	AmountInCents        int64   `json:"amountInCents"`
	OccurredOn           string  `json:"occurredOn"`
	Note                 *string `json:"note"`
	CreatedAtEpochMillis int64   `json:"createdAtEpochMillis"`
}

// TransferService moves whole ledgers in and out of the database as
// versioned JSON documents.
type TransferService struct {
	ledgers      *repository.LedgerRepository
	categories   *repository.CategoryRepository
	transactions *repository.TransactionRepository
}

func NewTransferService(ledgers *repository.LedgerRepository, categories *repository.CategoryRepository, transactions *repository.TransactionRepository) *TransferService {
	return &TransferService{
		ledgers:      ledgers,
		categories:   categories,
		transactions: transactions,
	}
}

// ExportLedger serializes the ledger's full entity graph. It fails with
// ErrNotFound when the ledger does not exist.
func (s *TransferService) ExportLedger(ctx context.Context, ledgerID int64) ([]byte, error) {
	ledger, err := s.ledgers.Get(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("export ledger: %w", err)
	}
	categories, err := s.categories.GetByLedger(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("export categories: %w", err)
	}
	// Full scan on purpose: the export must contain every transaction.
	transactions, err := s.transactions.GetAll(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("export transactions: %w", err)
	}

	doc := ExportDocument{
		Version: DocumentVersion,
		Ledger: LedgerDocument{
			ID:                   ledger.ID,
			Name:                 ledger.Name,
			Description:          ledger.Description,
			CreatedAtEpochMillis: ledger.CreatedAtEpochMillis,
		},
		Categories:   make([]CategoryDocument, 0, len(categories)),
		Transactions: make([]TransactionDocument, 0, len(transactions)),
	}
	for _, c := range categories {
		doc.Categories = append(doc.Categories, CategoryDocument{
			ID:        c.ID,
			LedgerID:  c.LedgerID,
			Name:      c.Name,
			Type:      string(c.Type),
			ColorHex:  c.ColorHex,
			IconName:  c.IconName,
			IsDefault: c.IsDefault,
		})
	}
	for _, t := range transactions {
		doc.Transactions = append(doc.Transactions, TransactionDocument{
			ID:                   t.ID,
			LedgerID:             t.LedgerID,
			CategoryID:           t.CategoryID,
			AmountInCents:        t.AmountInCents,
			OccurredOn:           t.OccurredOn.String(),
			Note:                 t.Note,
			CreatedAtEpochMillis: t.CreatedAtEpochMillis,
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export document: %w", err)
	}

	slog.InfoContext(ctx, "Ledger exported",
		"ledger_id", ledgerID,
		"categories", len(doc.Categories),
		"transactions", len(doc.Transactions))
	return out, nil
}

// rawDocument mirrors ExportDocument with pointers so missing required
// fields are distinguishable from zero values.
type rawDocument struct {
	Version      *int             `json:"version"`
	Ledger       *rawLedger       `json:"ledger"`
	Categories   []rawCategory    `json:"categories"`
	Transactions []rawTransaction `json:"transactions"`
}

type rawLedger struct {
	Name                 *string `json:"name"`
	Description          *string `json:"description"`
	CreatedAtEpochMillis *int64  `json:"createdAtEpochMillis"`
}

type rawCategory struct {
	ID        *int64  `json:"id"`
	Name      *string `json:"name"`
	Type      *string `json:"type"`
	ColorHex  *string `json:"colorHex"`
	IconName  *string `json:"iconName"`
	IsDefault *bool   `json:"isDefault"`
}

type rawTransaction struct {
	CategoryID           *int64  `json:"categoryId"`
	AmountInCents        *int64  `json:"amountInCents"`
	OccurredOn           *string `json:"occurredOn"`
	Note                 *string `json:"note"`
	CreatedAtEpochMillis *int64  `json:"createdAtEpochMillis"`
}

// ImportLedger reconstructs a disjoint entity graph from an export document
// and returns the id of the newly created ledger.
//
// There is no rollback: a failure partway through leaves the ledger and any
// rows written so far persisted. Callers treating the error as "possibly
// partial" can clean up with LedgerService.Delete.
func (s *TransferService) ImportLedger(ctx context.Context, data []byte) (int64, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return 0, err
	}

	newLedgerID, err := s.ledgers.Upsert(ctx, core.Ledger{
		ID:                   0, // storage assigns a fresh id
		Name:                 *doc.Ledger.Name,
		Description:          *doc.Ledger.Description,
		CreatedAtEpochMillis: epochOrNow(doc.Ledger.CreatedAtEpochMillis),
	})
	if err != nil {
		return 0, fmt.Errorf("import ledger: %w", err)
	}

	// Old category id -> newly assigned id, for remapping transactions.
	categoryIDMap := make(map[int64]int64, len(doc.Categories))
	for i, rc := range doc.Categories {
		catType, err := core.ParseCategoryType(*rc.Type)
		if err != nil {
			return 0, fmt.Errorf("import category %d: %w: %v", i, apperrors.ErrMalformedData, err)
		}
		newCategoryID, err := s.categories.Upsert(ctx, core.Category{
			ID:        0,
			LedgerID:  newLedgerID,
			Name:      *rc.Name,
			Type:      catType,
			ColorHex:  rc.ColorHex,
			IconName:  rc.IconName,
			IsDefault: rc.IsDefault != nil && *rc.IsDefault,
		})
		if err != nil {
			return 0, fmt.Errorf("import category %q: %w", *rc.Name, err)
		}
		categoryIDMap[*rc.ID] = newCategoryID
	}

	for i, rt := range doc.Transactions {
		occurredOn, err := core.ParseDate(*rt.OccurredOn)
		if err != nil {
			return 0, fmt.Errorf("import transaction %d: %w: %v", i, apperrors.ErrMalformedData, err)
		}
		// A missing, non-positive or unknown original category detaches
		// silently rather than failing the import.
		var categoryID *int64
		if rt.CategoryID != nil && *rt.CategoryID > 0 {
			if newID, ok := categoryIDMap[*rt.CategoryID]; ok {
				categoryID = &newID
			}
		}
		if _, err := s.transactions.Upsert(ctx, core.Transaction{
			ID:                   0,
			LedgerID:             newLedgerID,
			CategoryID:           categoryID,
			AmountInCents:        *rt.AmountInCents,
			OccurredOn:           occurredOn,
			Note:                 rt.Note,
			CreatedAtEpochMillis: epochOrNow(rt.CreatedAtEpochMillis),
		}); err != nil {
			return 0, fmt.Errorf("import transaction %d: %w", i, err)
		}
	}

	slog.InfoContext(ctx, "Ledger imported",
		"ledger_id", newLedgerID,
		"categories", len(doc.Categories),
		"transactions", len(doc.Transactions))
	return newLedgerID, nil
}

func parseDocument(data []byte) (*rawDocument, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w: %v", apperrors.ErrMalformedData, err)
	}
	if doc.Version == nil {
		return nil, fmt.Errorf("document has no version: %w", apperrors.ErrMalformedData)
	}
	if *doc.Version != DocumentVersion {
		return nil, fmt.Errorf("document version %d: %w", *doc.Version, apperrors.ErrUnsupportedVersion)
	}
	if doc.Ledger == nil || doc.Ledger.Name == nil || doc.Ledger.Description == nil {
		return nil, fmt.Errorf("document ledger incomplete: %w", apperrors.ErrMalformedData)
	}
	for i, rc := range doc.Categories {
		if rc.ID == nil || rc.Name == nil || rc.Type == nil {
			return nil, fmt.Errorf("category %d incomplete: %w", i, apperrors.ErrMalformedData)
		}
	}
	for i, rt := range doc.Transactions {
		if rt.AmountInCents == nil || rt.OccurredOn == nil {
			return nil, fmt.Errorf("transaction %d incomplete: %w", i, apperrors.ErrMalformedData)
		}
	}
	return &doc, nil
}

func epochOrNow(v *int64) int64 {
	if v != nil && *v != 0 {
		return *v
	}
	return core.NowEpochMillis()
}
