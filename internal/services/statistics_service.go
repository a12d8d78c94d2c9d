package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"dailymoney/internal/core"
	"dailymoney/internal/repository"
)

// StatisticsService computes ledger summaries. Monthly stats come straight
// from the grouped storage query; yearly stats are reduced in memory over
// the full transaction set, which stays cheap at personal-finance sizes.
type StatisticsService struct {
	transactions *repository.TransactionRepository
}

func NewStatisticsService(transactions *repository.TransactionRepository) *StatisticsService {
	return &StatisticsService{transactions: transactions}
}

// MonthlyStats returns the per-month summaries, newest month first.
func (s *StatisticsService) MonthlyStats(ctx context.Context, ledgerID int64) ([]core.MonthlyStats, error) {
	stats, err := s.transactions.GetMonthlyStats(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("monthly stats: %w", err)
	}
	return stats, nil
}

// YearlyStats returns one summary per calendar year present in the data,
// newest year first. Years without transactions are absent.
func (s *StatisticsService) YearlyStats(ctx context.Context, ledgerID int64) ([]core.YearlyStats, error) {
	transactions, err := s.transactions.GetAll(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("yearly stats: %w", err)
	}

	byYear := make(map[int]*core.YearlyStats)
	for _, t := range transactions {
		year := t.OccurredOn.Year()
		ys, ok := byYear[year]
		if !ok {
			ys = &core.YearlyStats{LedgerID: ledgerID, Year: year}
			byYear[year] = ys
		}
		if t.AmountInCents >= 0 {
			ys.IncomeInCents += t.AmountInCents
		} else {
			ys.ExpenseInCents += t.AmountInCents
		}
	}

	stats := make([]core.YearlyStats, 0, len(byYear))
	for _, ys := range byYear {
		ys.NetInCents = ys.IncomeInCents + ys.ExpenseInCents
		stats = append(stats, *ys)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Year > stats[j].Year })
	return stats, nil
}

// MonthExpense returns the positive total expense of a calendar month.
func (s *StatisticsService) MonthExpense(ctx context.Context, ledgerID int64, year, month int) (int64, error) {
	return s.transactions.GetMonthExpense(ctx, ledgerID, year, month)
}

// YearExpense returns the positive total expense of a calendar year.
func (s *StatisticsService) YearExpense(ctx context.Context, ledgerID int64, year int) (int64, error) {
	return s.transactions.GetYearExpense(ctx, ledgerID, year)
}

// MonthlyStatsOrEmpty is the non-fatal variant used by views: a failure
// degrades to an empty summary instead of blocking the primary screen.
func (s *StatisticsService) MonthlyStatsOrEmpty(ctx context.Context, ledgerID int64) []core.MonthlyStats {
	stats, err := s.MonthlyStats(ctx, ledgerID)
	if err != nil {
		slog.WarnContext(ctx, "Monthly stats failed, degrading to empty",
			"ledger_id", ledgerID, "error", err)
		return nil
	}
	return stats
}
