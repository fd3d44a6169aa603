package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/calyptra/centsible/internal/cli"
	"github.com/calyptra/centsible/internal/insights"
	"github.com/calyptra/centsible/internal/model"
	"github.com/calyptra/centsible/internal/service"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Plan and track monthly budgets",
	}

	cmd.AddCommand(setBudgetCmd())
	cmd.AddCommand(listBudgetCmd())
	cmd.AddCommand(budgetStatusCmd())

	return cmd
}

// parseMonthFlag turns a YYYY-MM flag into month and year, defaulting to the
// current month.
func parseMonthFlag(month string) (int, int, error) {
	if month == "" {
		now := time.Now()
		return int(now.Month()), now.Year(), nil
	}
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	return int(t.Month()), t.Year(), nil
}

func setBudgetCmd() *cobra.Command {
	var (
		month    string
		reminder bool
	)

	cmd := &cobra.Command{
		Use:   "set <category> <amount>",
		Short: "Set a category's planned amount for a month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			m, y, err := parseMonthFlag(month)
			if err != nil {
				return err
			}

			cat, err := resolveCategory(ctx, store, args[0])
			if err != nil {
				return err
			}

			planned, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			budget, err := store.GetOrCreateBudget(ctx, m, y)
			if err != nil {
				return fmt.Errorf("failed to load budget: %w", err)
			}

			entry := &model.BudgetCategory{
				BudgetID:        budget.ID,
				CategoryID:      cat.ID,
				Planned:         planned,
				ReminderEnabled: reminder,
			}
			if err := store.SetBudgetCategory(ctx, entry); err != nil {
				return fmt.Errorf("failed to set budget: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("budgeted %s for %s in %04d-%02d",
				formatAmount(planned), cat.Name, y, m)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "budget month (YYYY-MM, default current)")
	cmd.Flags().BoolVar(&reminder, "reminder", false, "enable overspend reminders for this category")

	return cmd
}

func listBudgetCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show a month's planned amounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			m, y, err := parseMonthFlag(month)
			if err != nil {
				return err
			}

			entries, err := store.GetBudgetEntries(ctx, m, y)
			if err != nil {
				return fmt.Errorf("failed to load budget: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println(cli.InfoStyle.Render(fmt.Sprintf("No budget for %04d-%02d.", y, m)))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "Category\tPlanned\n")
			fmt.Fprintf(w, "%s\t%s\n", strings.Repeat("-", 20), strings.Repeat("-", 12))
			for _, entry := range entries {
				fmt.Fprintf(w, "%s\t%s\n", entry.Category.Name, formatAmount(entry.Planned))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "budget month (YYYY-MM, default current)")

	return cmd
}

func budgetStatusCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compare a month's plan against actual spending",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			m, y, err := parseMonthFlag(month)
			if err != nil {
				return err
			}

			entries, err := store.GetBudgetEntries(ctx, m, y)
			if err != nil {
				return fmt.Errorf("failed to load budget: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println(cli.InfoStyle.Render(fmt.Sprintf("No budget for %04d-%02d.", y, m)))
				return nil
			}

			start := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.Local)
			end := start.AddDate(0, 1, 0)
			expense := model.TypeExpense

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "Category\tPlanned\tSpent\tRemaining\n")
			for _, entry := range entries {
				catID := entry.Category.ID
				txns, err := store.ListTransactions(ctx, service.TransactionFilter{
					StartDate:  &start,
					EndDate:    &end,
					CategoryID: &catID,
					Type:       &expense,
				})
				if err != nil {
					return fmt.Errorf("failed to load spending: %w", err)
				}

				snap := insights.Snapshot{Today: start, Transactions: txns}
				spent := insights.Summarize(snap).TotalExpenses
				remaining := entry.Planned.Sub(spent)

				rendered := formatAmount(remaining)
				if remaining.IsNegative() {
					rendered = cli.AmountNegativeStyle.Render(rendered)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					entry.Category.Name, formatAmount(entry.Planned), formatAmount(spent), rendered)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "budget month (YYYY-MM, default current)")

	return cmd
}
