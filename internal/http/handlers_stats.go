package http

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type monthlyStatsResponse struct {
	LedgerID       int64  `json:"ledgerId"`
	YearMonth      string `json:"yearMonth"`
	IncomeInCents  int64  `json:"incomeInCents"`
	ExpenseInCents int64  `json:"expenseInCents"`
	NetInCents     int64  `json:"netInCents"`
}

type yearlyStatsResponse struct {
	LedgerID       int64 `json:"ledgerId"`
	Year           int   `json:"year"`
	IncomeInCents  int64 `json:"incomeInCents"`
	ExpenseInCents int64 `json:"expenseInCents"`
	NetInCents     int64 `json:"netInCents"`
}

// cachedStats serves a stats payload through the LRU cache, deduplicating
// concurrent recomputation of the same key with singleflight.
func (s *Server) cachedStats(key string, compute func() ([]byte, error)) ([]byte, error) {
	if body, ok := s.statsCache.Get(key); ok {
		return body, nil
	}
	v, err, _ := s.statsGroup.Do(key, func() (any, error) {
		body, err := compute()
		if err != nil {
			return nil, err
		}
		s.statsCache.Set(key, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func writeCachedJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	ledgerID, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid ledger id")
		return
	}

	body, err := s.cachedStats(fmt.Sprintf("monthly:%d", ledgerID), func() ([]byte, error) {
		stats, err := s.stats.MonthlyStats(r.Context(), ledgerID)
		if err != nil {
			return nil, err
		}
		out := make([]monthlyStatsResponse, 0, len(stats))
		for _, m := range stats {
			out = append(out, monthlyStatsResponse(m))
		}
		return json.Marshal(out)
	})
	if err != nil {
		// The monthly summary fronts the primary screen, so a statistics
		// failure degrades to an empty summary instead of failing the view.
		// Nothing was cached; the next request recomputes.
		out := make([]monthlyStatsResponse, 0)
		for _, m := range s.stats.MonthlyStatsOrEmpty(r.Context(), ledgerID) {
			out = append(out, monthlyStatsResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}
	writeCachedJSON(w, body)
}

func (s *Server) handleYearlyStats(w http.ResponseWriter, r *http.Request) {
	ledgerID, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid ledger id")
		return
	}

	body, err := s.cachedStats(fmt.Sprintf("yearly:%d", ledgerID), func() ([]byte, error) {
		stats, err := s.stats.YearlyStats(r.Context(), ledgerID)
		if err != nil {
			return nil, err
		}
		out := make([]yearlyStatsResponse, 0, len(stats))
		for _, y := range stats {
			out = append(out, yearlyStatsResponse(y))
		}
		return json.Marshal(out)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCachedJSON(w, body)
}

// handleExpenseTotal returns the positive expense total of a year
// (?year=2024) or of a single month (?year=2024&month=3).
func (s *Server) handleExpenseTotal(w http.ResponseWriter, r *http.Request) {
	ledgerID, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid ledger id")
		return
	}

	year := queryInt(r, "year", 0)
	if year < 1 || year > 9999 {
		writeBadRequest(w, "invalid or missing year")
		return
	}

	var (
		total int64
		err   error
	)
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		month := queryInt(r, "month", 0)
		if month < 1 || month > 12 {
			writeBadRequest(w, "invalid month")
			return
		}
		total, err = s.stats.MonthExpense(r.Context(), ledgerID, year, month)
	} else {
		total, err = s.stats.YearExpense(r.Context(), ledgerID, year)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"expenseInCents": total})
}
