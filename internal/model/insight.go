package model

// InsightType identifies which rule produced an insight.
type InsightType string

const (
	// InsightOverspending warns that a budgeted category is burning faster
	// than the month is passing.
	InsightOverspending InsightType = "overspending"
	// InsightSpendingTrend flags the category with the largest
	// month-over-month spending increase.
	InsightSpendingTrend InsightType = "trend"
	// InsightBudgetAchievement celebrates a category kept under budget two
	// months running.
	InsightBudgetAchievement InsightType = "achievement"
	// InsightIncomeBoost notes a significant income increase over last month.
	InsightIncomeBoost InsightType = "income-boost"
)

// Insight is one human-readable financial observation. Lower priority values
// are shown first. ID is stable for a given (type, category) so consumers can
// deduplicate insights the user has already acknowledged.
type Insight struct {
	ID           string
	Type         InsightType
	CategoryName string
	Message      string
	Priority     int
}
