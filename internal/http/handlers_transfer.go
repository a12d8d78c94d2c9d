package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxImportBytes caps import bodies. Personal-finance exports are small;
// anything larger is a mistake or abuse.
const maxImportBytes = 16 << 20

func (s *Server) handleExportLedger(w http.ResponseWriter, r *http.Request) {
	ledgerID, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid ledger id")
		return
	}

	doc, err := s.transfer.ExportLedger(r.Context(), ledgerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"ledger_%d_%s.json\"", ledgerID, time.Now().Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) handleImportLedger(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeBadRequest(w, "read request body: "+err.Error())
		return
	}

	newLedgerID, err := s.transfer.ImportLedger(r.Context(), body)
	if err != nil {
		// No rollback: the client may need to delete a partial ledger.
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Ledger import completed", "ledger_id", newLedgerID)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": newLedgerID})
}
