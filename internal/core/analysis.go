package core

// Server-computed analytics projections. The client never mutates these; it
// only re-fetches them after any transaction write.

// CategoryShare is one slice of the category breakdown.
type CategoryShare struct {
	Category   string  `json:"category"`
	Amount     Money   `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// MonthlyFlow is one point of the monthly income/expense trend series.
type MonthlyFlow struct {
	Month    string `json:"month"` // YYYY-MM
	Income   Money  `json:"income"`
	Expenses Money  `json:"expenses"`
	Net      Money  `json:"net"`
}

// SpendingAnalysis aggregates a user's recent transactions.
type SpendingAnalysis struct {
	TotalIncome      Money           `json:"total_income"`
	TotalExpenses    Money           `json:"total_expenses"`
	SavingsRate      float64         `json:"savings_rate"`
	TopCategories    []CategoryShare `json:"top_categories"`
	MonthlyTrends    []MonthlyFlow   `json:"monthly_trends"`
	TransactionCount int             `json:"transaction_count"`
}

// BudgetAlert reports current-month spending against one budget.
// PercentageUsed is 0-100; AlertThreshold is the 0-1 fraction the budget was
// configured with.
type BudgetAlert struct {
	Category       string  `json:"category"`
	BudgetLimit    Money   `json:"budget_limit"`
	CurrentSpend   Money   `json:"current_spending"`
	PercentageUsed float64 `json:"percentage_used"`
	Remaining      Money   `json:"remaining"`
	AlertThreshold float64 `json:"alert_threshold"`
	IsOverBudget   bool    `json:"is_over_budget"`
	IsNearLimit    bool    `json:"is_near_limit"`
	DaysRemaining  int     `json:"days_remaining_in_month"`
}

// Level collapses the alert flags into a display severity.
func (a BudgetAlert) Level() string {
	switch {
	case a.IsOverBudget:
		return "critical"
	case a.IsNearLimit:
		return "warning"
	default:
		return "ok"
	}
}

// HealthScore is the backend's 0-100 financial health rating.
type HealthScore struct {
	Score           int      `json:"score"`
	Category        string   `json:"category"`
	Recommendations []string `json:"recommendations"`
	SavingsRate     float64  `json:"savings_rate"`
	BudgetAdherence float64  `json:"budget_adherence"`
}
