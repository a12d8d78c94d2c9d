package http

import (
	"log/slog"
	"net/http"

	"dailymoney/internal/core"
)

type ledgerRequest struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ledgerResponse struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	CreatedAtEpochMillis int64  `json:"createdAtEpochMillis"`
}

func toLedgerResponse(l core.Ledger) ledgerResponse {
	return ledgerResponse{
		ID:                   l.ID,
		Name:                 l.Name,
		Description:          l.Description,
		CreatedAtEpochMillis: l.CreatedAtEpochMillis,
	}
}

func (s *Server) handleListLedgers(w http.ResponseWriter, r *http.Request) {
	ledgers, err := s.ledgers.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]ledgerResponse, 0, len(ledgers))
	for _, l := range ledgers {
		out = append(out, toLedgerResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid ledger id")
		return
	}
	ledger, err := s.ledgers.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerResponse(*ledger))
}

func (s *Server) handleUpsertLedger(w http.ResponseWriter, r *http.Request) {
	var req ledgerRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	ledger := core.Ledger{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := ledger.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	id, err := s.ledgerService.Upsert(r.Context(), ledger)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Ledger saved", "ledger_id", id, "name", ledger.Name)
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *Server) handleDeleteLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid ledger id")
		return
	}
	if err := s.ledgerService.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
