package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/calyptra/centsible/internal/cli"
	"github.com/calyptra/centsible/internal/insights"
	"github.com/calyptra/centsible/internal/model"
	"github.com/calyptra/centsible/internal/storage"
)

// loadSnapshot gathers everything the insight engine looks at.
func loadSnapshot(ctx context.Context, store *storage.SQLiteStorage, today time.Time) (insights.Snapshot, error) {
	txns, err := store.ListTransactions(ctx, serviceFilterAll())
	if err != nil {
		return insights.Snapshot{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	categories, err := store.GetCategories(ctx)
	if err != nil {
		return insights.Snapshot{}, fmt.Errorf("failed to load categories: %w", err)
	}

	budget, err := store.GetBudgetEntries(ctx, int(today.Month()), today.Year())
	if err != nil {
		return insights.Snapshot{}, fmt.Errorf("failed to load budget: %w", err)
	}

	return insights.Snapshot{
		Today:        today,
		Transactions: txns,
		Categories:   categories,
		Budget:       budget,
	}, nil
}

func insightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show prioritized observations about your finances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snap, err := loadSnapshot(ctx, store, time.Now())
			if err != nil {
				return err
			}

			results := insights.Generate(snap)
			if len(results) == 0 {
				fmt.Println(cli.InfoStyle.Render("Nothing notable this month. Carry on."))
				return nil
			}

			fmt.Println(cli.FormatTitle("Insights"))
			for _, insight := range results {
				var style = cli.InfoStyle
				switch insight.Type {
				case model.InsightOverspending:
					style = cli.WarningStyle
				case model.InsightBudgetAchievement:
					style = cli.SuccessStyle
				case model.InsightIncomeBoost:
					style = cli.SuccessStyle
				case model.InsightSpendingTrend:
					style = cli.WarningStyle
				}
				fmt.Println("  " + style.Render(insight.Message))
			}

			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Monthly dashboard: income, spending, and category breakdown",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			today := time.Now()
			if month != "" {
				parsed, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid month %q, expected YYYY-MM", month)
				}
				// Evaluate at the end of a past month.
				today = parsed.AddDate(0, 1, -1)
			}

			snap, err := loadSnapshot(ctx, store, today)
			if err != nil {
				return err
			}

			summary := insights.Summarize(snap)

			fmt.Println(cli.FormatTitle(fmt.Sprintf("%s %d", summary.Month, summary.Year)))

			net := formatAmount(summary.Net)
			if summary.Net.IsNegative() {
				net = cli.AmountNegativeStyle.Render(net)
			} else {
				net = cli.AmountPositiveStyle.Render(net)
			}
			fmt.Printf("Income: %s   Expenses: %s   Net: %s\n\n",
				formatAmount(summary.TotalIncome), formatAmount(summary.TotalExpenses), net)

			if len(summary.ByCategory) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categorized spending this month."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "Category\tSpent\tPlanned\n")
			for _, row := range summary.ByCategory {
				planned := cli.SubtleStyle.Render("-")
				if row.Planned != nil {
					planned = formatAmount(*row.Planned)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", row.CategoryName, formatAmount(row.Amount), planned)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "report month (YYYY-MM, default current)")

	return cmd
}
