package services

import (
	"context"
	"testing"

	"dailymoney/internal/core"
)

func TestYearlyStatsReduction(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStatisticsService(env.transactions)
	ctx := context.Background()

	ledgerID := env.seedLedger(t, "Trips")
	env.seedTransaction(t, core.Transaction{LedgerID: ledgerID, AmountInCents: 500000, OccurredOn: core.NewDate(2024, 3, 1)})
	env.seedTransaction(t, core.Transaction{LedgerID: ledgerID, AmountInCents: -2550, OccurredOn: core.NewDate(2024, 3, 5)})
	env.seedTransaction(t, core.Transaction{LedgerID: ledgerID, AmountInCents: -4000, OccurredOn: core.NewDate(2024, 11, 10)})
	env.seedTransaction(t, core.Transaction{LedgerID: ledgerID, AmountInCents: 100000, OccurredOn: core.NewDate(2023, 6, 15)})
	env.seedTransaction(t, core.Transaction{LedgerID: ledgerID, AmountInCents: -7000, OccurredOn: core.NewDate(2023, 12, 31)})

	stats, err := svc.YearlyStats(ctx, ledgerID)
	if err != nil {
		t.Fatalf("yearly stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d year rows, want 2", len(stats))
	}

	if stats[0].Year != 2024 || stats[1].Year != 2023 {
		t.Fatalf("years not newest first: %d, %d", stats[0].Year, stats[1].Year)
	}

	y2024 := stats[0]
	if y2024.IncomeInCents != 500000 || y2024.ExpenseInCents != -6550 || y2024.NetInCents != 493450 {
		t.Errorf("2024 = %+v", y2024)
	}
	y2023 := stats[1]
	if y2023.IncomeInCents != 100000 || y2023.ExpenseInCents != -7000 || y2023.NetInCents != 93000 {
		t.Errorf("2023 = %+v", y2023)
	}
}

func TestYearlyStatsEmptyLedger(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStatisticsService(env.transactions)

	ledgerID := env.seedLedger(t, "Empty")
	stats, err := svc.YearlyStats(context.Background(), ledgerID)
	if err != nil {
		t.Fatalf("yearly stats: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("empty ledger produced %d year rows", len(stats))
	}
}

func TestMonthlyStatsPassthrough(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStatisticsService(env.transactions)
	ctx := context.Background()

	ledgerID := env.seedLedger(t, "Trips")
	env.seedTransaction(t, core.Transaction{LedgerID: ledgerID, AmountInCents: 500000, OccurredOn: core.NewDate(2024, 3, 1)})
	env.seedTransaction(t, core.Transaction{LedgerID: ledgerID, AmountInCents: -1200, OccurredOn: core.NewDate(2024, 3, 5)})
	env.seedTransaction(t, core.Transaction{LedgerID: ledgerID, AmountInCents: -1350, OccurredOn: core.NewDate(2024, 3, 20)})

	stats, err := svc.MonthlyStats(ctx, ledgerID)
	if err != nil {
		t.Fatalf("monthly stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d month rows, want 1", len(stats))
	}
	s := stats[0]
	if s.YearMonth != "2024-03" || s.IncomeInCents != 500000 || s.ExpenseInCents != -2550 || s.NetInCents != 497450 {
		t.Errorf("march row = %+v", s)
	}

	expense, err := svc.MonthExpense(ctx, ledgerID, 2024, 3)
	if err != nil {
		t.Fatalf("month expense: %v", err)
	}
	if expense != 2550 {
		t.Errorf("month expense = %d, want 2550", expense)
	}
}

func TestMonthlyStatsOrEmptyDegrades(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStatisticsService(env.transactions)

	env.store.Close()

	stats := svc.MonthlyStatsOrEmpty(context.Background(), 1)
	if stats != nil {
		t.Errorf("got %+v after store failure, want nil", stats)
	}
}
