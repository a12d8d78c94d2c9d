package http

import (
	"errors"
	"net/http"

	"dailymoney/internal/apperrors"
	"dailymoney/internal/core"
)

type transactionRequest struct {
	ID            int64   `json:"id"`
	LedgerID      int64   `json:"ledgerId"`
	CategoryID    *int64  `json:"categoryId"`
	AmountInCents int64   `json:"amountInCents"`
	OccurredOn    string  `json:"occurredOn"`
	Note          *string `json:"note"`
	// Zero means "stamp with the current time". Clients editing an existing
	// transaction pass the original value to keep tie-break ordering stable.
	CreatedAtEpochMillis int64 `json:"createdAtEpochMillis"`
}

type transactionResponse struct {
	ID                   int64   `json:"id"`
	LedgerID             int64   `json:"ledgerId"`
	CategoryID           *int64  `json:"categoryId"`
	AmountInCents        int64   `json:"amountInCents"`
	OccurredOn           string  `json:"occurredOn"`
	Note                 *string `json:"note"`
	CreatedAtEpochMillis int64   `json:"createdAtEpochMillis"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:                   t.ID,
		LedgerID:             t.LedgerID,
		CategoryID:           t.CategoryID,
		AmountInCents:        t.AmountInCents,
		OccurredOn:           t.OccurredOn.String(),
		Note:                 t.Note,
		CreatedAtEpochMillis: t.CreatedAtEpochMillis,
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ledgerID, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid ledger id")
		return
	}

	limit := queryInt(r, "limit", s.cfg.DefaultPageSize)
	if limit < 1 || limit > s.cfg.MaxPageSize {
		limit = s.cfg.DefaultPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	transactions, err := s.transactions.GetPage(r.Context(), ledgerID, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpsertTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	occurredOn, err := parseDate(req.OccurredOn)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	transaction := core.Transaction{
		ID:            req.ID,
		LedgerID:      req.LedgerID,
		CategoryID:    req.CategoryID,
		AmountInCents: req.AmountInCents,
		OccurredOn:    occurredOn,
		Note:          req.Note,
	}
	if err := transaction.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	// Entry-workflow rule: a categorized transaction's sign must match the
	// category direction. Storage stays permissive; this is the only layer
	// that rejects the mismatch.
	if req.CategoryID != nil {
		category, err := s.categories.Get(r.Context(), *req.CategoryID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				writeBadRequest(w, "category does not exist")
				return
			}
			writeError(w, r, err)
			return
		}
		if category.Type == core.Expense && req.AmountInCents >= 0 {
			writeBadRequest(w, "expense category requires a negative amount")
			return
		}
		if category.Type == core.Income && req.AmountInCents < 0 {
			writeBadRequest(w, "income category requires a non-negative amount")
			return
		}
	}

	transaction.CreatedAtEpochMillis = req.CreatedAtEpochMillis
	id, err := s.transactionService.Upsert(r.Context(), transaction)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid transaction id")
		return
	}
	if err := s.transactionService.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
