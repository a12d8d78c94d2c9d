package http

import (
	"net/http"

	"dailymoney/internal/core"
)

type categoryRequest struct {
	ID        int64   `json:"id"`
	LedgerID  int64   `json:"ledgerId"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	ColorHex  *string `json:"colorHex"`
	IconName  *string `json:"iconName"`
	IsDefault bool    `json:"isDefault"`
}

type categoryResponse struct {
	ID        int64   `json:"id"`
	LedgerID  int64   `json:"ledgerId"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	ColorHex  *string `json:"colorHex"`
	IconName  *string `json:"iconName"`
	IsDefault bool    `json:"isDefault"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		LedgerID:  c.LedgerID,
		Name:      c.Name,
		Type:      string(c.Type),
		ColorHex:  c.ColorHex,
		IconName:  c.IconName,
		IsDefault: c.IsDefault,
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ledgerID, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid ledger id")
		return
	}
	categories, err := s.categories.GetByLedger(r.Context(), ledgerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpsertCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	catType, err := core.ParseCategoryType(req.Type)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	category := core.Category{
		ID:        req.ID,
		LedgerID:  req.LedgerID,
		Name:      req.Name,
		Type:      catType,
		ColorHex:  req.ColorHex,
		IconName:  req.IconName,
		IsDefault: req.IsDefault,
	}
	if err := category.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	id, err := s.categoryService.Upsert(r.Context(), category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid category id")
		return
	}
	// Detaches referencing transactions; never deletes them.
	if err := s.categoryService.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
