package core

// MonthlyStats is the derived income/expense/net summary for one ledger and
// one calendar month. Months without transactions are absent, never
// zero-filled. ExpenseInCents retains its negative sign, so
// Net = Income + Expense.
type MonthlyStats struct {
	LedgerID       int64
	YearMonth      string // "YYYY-MM"
	IncomeInCents  int64
	ExpenseInCents int64
	NetInCents     int64
}

// YearlyStats is the equivalent summary grouped by calendar year. It is
// reduced in memory over the full transaction set of a ledger.
type YearlyStats struct {
	LedgerID       int64
	Year           int
	IncomeInCents  int64
	ExpenseInCents int64
	NetInCents     int64
}
