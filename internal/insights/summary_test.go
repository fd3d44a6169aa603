package insights

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/centsible/internal/model"
)

func TestSummarize(t *testing.T) {
	t.Run("totals and net", func(t *testing.T) {
		snap := Snapshot{
			Today:      today,
			Categories: testCategories(),
			Transactions: []model.Transaction{
				incomeOn(2026, time.March, 1, "2000"),
				expenseOn(2026, time.March, 5, catGroceries, "300.50"),
				expenseOn(2026, time.March, 8, catDining, "99.50"),
				// Previous month activity is excluded from the summary.
				expenseOn(2026, time.February, 5, catGroceries, "1000"),
			},
		}

		summary := Summarize(snap)
		assert.Equal(t, 2026, summary.Year)
		assert.Equal(t, time.March, summary.Month)
		assert.Equal(t, "2000", summary.TotalIncome.String())
		assert.Equal(t, "400", summary.TotalExpenses.String())
		assert.Equal(t, "1600", summary.Net.String())
	})

	t.Run("categories sort by amount then name", func(t *testing.T) {
		snap := Snapshot{
			Today:      today,
			Categories: testCategories(),
			Transactions: []model.Transaction{
				expenseOn(2026, time.March, 5, catGroceries, "100"),
				expenseOn(2026, time.March, 6, catUtilities, "100"),
				expenseOn(2026, time.March, 7, catDining, "250"),
			},
		}

		summary := Summarize(snap)
		require.Len(t, summary.ByCategory, 3)
		assert.Equal(t, "Dining", summary.ByCategory[0].CategoryName)
		assert.Equal(t, "Groceries", summary.ByCategory[1].CategoryName)
		assert.Equal(t, "Utilities", summary.ByCategory[2].CategoryName)
	})

	t.Run("budgeted but unspent categories still appear", func(t *testing.T) {
		snap := Snapshot{
			Today:      today,
			Categories: testCategories(),
			Budget:     []model.BudgetEntry{budgetEntry(catUtilities, "Utilities", "120")},
		}

		summary := Summarize(snap)
		require.Len(t, summary.ByCategory, 1)
		row := summary.ByCategory[0]
		assert.Equal(t, "Utilities", row.CategoryName)
		assert.True(t, row.Amount.IsZero())
		require.NotNil(t, row.Planned)
		assert.Equal(t, "120", row.Planned.String())
	})

	t.Run("planned amounts attach to spending rows", func(t *testing.T) {
		snap := Snapshot{
			Today:      today,
			Categories: testCategories(),
			Budget:     []model.BudgetEntry{budgetEntry(catGroceries, "Groceries", "400")},
			Transactions: []model.Transaction{
				expenseOn(2026, time.March, 5, catGroceries, "150"),
				expenseOn(2026, time.March, 6, catDining, "80"),
			},
		}

		summary := Summarize(snap)
		require.Len(t, summary.ByCategory, 2)
		assert.Equal(t, "Groceries", summary.ByCategory[0].CategoryName)
		require.NotNil(t, summary.ByCategory[0].Planned)
		assert.Equal(t, "400", summary.ByCategory[0].Planned.String())
		assert.Nil(t, summary.ByCategory[1].Planned, "unbudgeted spending has no plan")
	})

	t.Run("transfers do not move the totals", func(t *testing.T) {
		dest := "acc2"
		snap := Snapshot{
			Today:      today,
			Categories: testCategories(),
			Transactions: []model.Transaction{{
				ID:          model.NewID(),
				Description: "transfer",
				Amount:      decimal.RequireFromString("500"),
				Type:        model.TypeTransfer,
				Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
				AccountID:   "acc1",
				ToAccountID: &dest,
			}},
		}

		summary := Summarize(snap)
		assert.True(t, summary.TotalIncome.IsZero())
		assert.True(t, summary.TotalExpenses.IsZero())
		assert.True(t, summary.Net.IsZero())
	})

	t.Run("pure over identical snapshots", func(t *testing.T) {
		snap := Snapshot{
			Today:      today,
			Categories: testCategories(),
			Transactions: []model.Transaction{
				expenseOn(2026, time.March, 5, catGroceries, "100"),
			},
		}
		first := Summarize(snap)
		second := Summarize(snap)
		assert.Equal(t, first, second)
	})
}
