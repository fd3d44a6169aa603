// Package insights derives prioritized financial observations from a
// snapshot of the ledger. Everything in this package is pure: identical
// snapshots always produce identical output, and nothing here touches
// storage.
package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/calyptra/centsible/internal/model"
)

// Rule priorities; lower values are shown first.
const (
	priorityOverspending = 1
	priorityIncomeBoost  = 3
	priorityTrend        = 5
	priorityAchievement  = 8
)

// Rule thresholds.
var (
	overspendFloor   = decimal.RequireFromString("75")  // minimum spent% before the rule can fire
	overspendLead    = decimal.RequireFromString("20")  // spent% must lead time% by this much
	trendFactor      = decimal.RequireFromString("1.3") // 30% month-over-month increase
	incomeBoostRatio = decimal.RequireFromString("1.5") // 50% income increase
	hundred          = decimal.RequireFromString("100")
)

// Snapshot is everything the engine looks at: the full ledger, the category
// set, the current month's budget plans, and the evaluation date.
type Snapshot struct {
	Today        time.Time
	Transactions []model.Transaction
	Categories   []model.Category
	Budget       []model.BudgetEntry
}

// Generate evaluates every insight rule against the snapshot and returns the
// firing insights sorted ascending by priority.
func Generate(snap Snapshot) []model.Insight {
	sums := summarize(snap)

	var out []model.Insight
	out = append(out, overspendingInsights(snap, sums)...)
	if insight, ok := incomeBoostInsight(sums); ok {
		out = append(out, insight)
	}
	if insight, ok := trendInsight(snap, sums); ok {
		out = append(out, insight)
	}
	if insight, ok := achievementInsight(snap, sums); ok {
		out = append(out, insight)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// monthSums holds per-category expense totals and income totals for the
// current and previous calendar months. The "seen" maps distinguish a zero
// total from no data at all.
type monthSums struct {
	thisSpend map[int]decimal.Decimal
	lastSpend map[int]decimal.Decimal
	thisSeen  map[int]bool
	lastSeen  map[int]bool

	thisIncome decimal.Decimal
	lastIncome decimal.Decimal
}

func summarize(snap Snapshot) monthSums {
	thisYear, thisMonth := snap.Today.Year(), snap.Today.Month()
	lastYear, lastMonth := previousMonth(thisYear, thisMonth)

	sums := monthSums{
		thisSpend: make(map[int]decimal.Decimal),
		lastSpend: make(map[int]decimal.Decimal),
		thisSeen:  make(map[int]bool),
		lastSeen:  make(map[int]bool),
	}

	for i := range snap.Transactions {
		txn := &snap.Transactions[i]
		var current bool
		switch {
		case inMonth(txn.Date, thisYear, thisMonth):
			current = true
		case inMonth(txn.Date, lastYear, lastMonth):
			current = false
		default:
			continue
		}

		switch txn.Type {
		case model.TypeIncome:
			if current {
				sums.thisIncome = sums.thisIncome.Add(txn.Amount)
			} else {
				sums.lastIncome = sums.lastIncome.Add(txn.Amount)
			}
		case model.TypeExpense:
			if txn.CategoryID == nil {
				continue
			}
			id := *txn.CategoryID
			if current {
				sums.thisSpend[id] = sums.thisSpend[id].Add(txn.Amount)
				sums.thisSeen[id] = true
			} else {
				sums.lastSpend[id] = sums.lastSpend[id].Add(txn.Amount)
				sums.lastSeen[id] = true
			}
		case model.TypeTransfer:
			// Transfers move money between own accounts; they are neither
			// income nor spending.
		}
	}

	return sums
}

// overspendingInsights warns for each budgeted category whose spend
// percentage is at least 75 and runs more than 20 points ahead of how far
// through the month we are.
func overspendingInsights(snap Snapshot, sums monthSums) []model.Insight {
	day := snap.Today.Day()
	totalDays := daysInMonth(snap.Today.Year(), snap.Today.Month())
	timePct := decimal.NewFromInt(int64(day)).Div(decimal.NewFromInt(int64(totalDays))).Mul(hundred)

	var out []model.Insight
	for _, entry := range snap.Budget {
		if !entry.Planned.IsPositive() {
			continue
		}

		spent := sums.thisSpend[entry.Category.ID]
		spentPct := spent.Div(entry.Planned).Mul(hundred)

		if spentPct.GreaterThanOrEqual(overspendFloor) && spentPct.GreaterThan(timePct.Add(overspendLead)) {
			out = append(out, model.Insight{
				ID:           insightID(model.InsightOverspending, entry.Category.Name),
				Type:         model.InsightOverspending,
				Priority:     priorityOverspending,
				CategoryName: entry.Category.Name,
				Message: fmt.Sprintf("You've used %s%% of your %s budget with %d days left in the month.",
					spentPct.Round(0), entry.Category.Name, totalDays-day),
			})
		}
	}
	return out
}

// trendInsight fires at most once, for the expense category with the single
// largest month-over-month percentage increase above 30%.
func trendInsight(snap Snapshot, sums monthSums) (model.Insight, bool) {
	var best *model.Category
	var bestIncrease decimal.Decimal

	for i := range snap.Categories {
		cat := &snap.Categories[i]
		if cat.Type != model.CategoryTypeExpense {
			continue
		}

		last := sums.lastSpend[cat.ID]
		this := sums.thisSpend[cat.ID]
		if !last.IsPositive() || !this.GreaterThan(last.Mul(trendFactor)) {
			continue
		}

		increase := this.Sub(last).Div(last).Mul(hundred)
		if best == nil || increase.GreaterThan(bestIncrease) {
			best = cat
			bestIncrease = increase
		}
	}

	if best == nil {
		return model.Insight{}, false
	}
	return model.Insight{
		ID:           insightID(model.InsightSpendingTrend, best.Name),
		Type:         model.InsightSpendingTrend,
		Priority:     priorityTrend,
		CategoryName: best.Name,
		Message: fmt.Sprintf("Your %s spending is up %s%% compared to last month.",
			best.Name, bestIncrease.Round(0)),
	}, true
}

// achievementInsight fires for the first budgeted category with spending
// recorded in both months and both totals strictly under plan. Only one
// achievement is ever produced per evaluation; the scan stops at the first
// qualifying category.
func achievementInsight(snap Snapshot, sums monthSums) (model.Insight, bool) {
	for _, entry := range snap.Budget {
		if !entry.Planned.IsPositive() {
			continue
		}
		id := entry.Category.ID
		if !sums.thisSeen[id] || !sums.lastSeen[id] {
			continue
		}
		if sums.thisSpend[id].LessThan(entry.Planned) && sums.lastSpend[id].LessThan(entry.Planned) {
			return model.Insight{
				ID:           insightID(model.InsightBudgetAchievement, entry.Category.Name),
				Type:         model.InsightBudgetAchievement,
				Priority:     priorityAchievement,
				CategoryName: entry.Category.Name,
				Message: fmt.Sprintf("Two months running under your %s budget. Keep it up!",
					entry.Category.Name),
			}, true
		}
	}
	return model.Insight{}, false
}

// incomeBoostInsight fires when this month's income beats last month's by
// more than half.
func incomeBoostInsight(sums monthSums) (model.Insight, bool) {
	if !sums.lastIncome.IsPositive() || !sums.thisIncome.GreaterThan(sums.lastIncome.Mul(incomeBoostRatio)) {
		return model.Insight{}, false
	}

	increase := sums.thisIncome.Sub(sums.lastIncome).Div(sums.lastIncome).Mul(hundred)
	return model.Insight{
		ID:       insightID(model.InsightIncomeBoost, ""),
		Type:     model.InsightIncomeBoost,
		Priority: priorityIncomeBoost,
		Message: fmt.Sprintf("Your income this month is up %s%% over last month.",
			increase.Round(0)),
	}, true
}

// insightID derives the stable identifier consumers use to remember which
// insights the user has already acknowledged.
func insightID(insightType model.InsightType, categoryName string) string {
	if categoryName == "" {
		return string(insightType)
	}
	slug := strings.ToLower(strings.ReplaceAll(categoryName, " ", "-"))
	return string(insightType) + ":" + slug
}

func inMonth(t time.Time, year int, month time.Month) bool {
	return t.Year() == year && t.Month() == month
}

func previousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
