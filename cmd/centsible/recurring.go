package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/calyptra/centsible/internal/cli"
	"github.com/calyptra/centsible/internal/config"
	"github.com/calyptra/centsible/internal/model"
	"github.com/calyptra/centsible/internal/recurring"
	"github.com/calyptra/centsible/internal/tui"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recurring",
		Aliases: []string{"bills"},
		Short:   "Manage recurring bills and subscriptions",
	}

	cmd.AddCommand(addRecurringCmd())
	cmd.AddCommand(listRecurringCmd())
	cmd.AddCommand(payRecurringCmd())
	cmd.AddCommand(setRecurringActiveCmd("pause", false))
	cmd.AddCommand(setRecurringActiveCmd("resume", true))
	cmd.AddCommand(reviewRecurringCmd())

	return cmd
}

func addRecurringCmd() *cobra.Command {
	var (
		amount       string
		account      string
		category     string
		frequency    string
		firstDue     string
		income       bool
		subscription bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a recurring bill or subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			parsedAmount, err := parseAmount(amount)
			if err != nil {
				return err
			}

			parsedFrequency, err := model.ParseFrequency(strings.ToUpper(frequency))
			if err != nil {
				return err
			}

			due, err := time.Parse("2006-01-02", firstDue)
			if err != nil {
				return fmt.Errorf("invalid due date %q, expected YYYY-MM-DD", firstDue)
			}

			cat, err := resolveCategory(ctx, store, category)
			if err != nil {
				return err
			}

			obligationType := model.TypeExpense
			if income {
				obligationType = model.TypeIncome
			}

			obligation := &model.RecurringTransaction{
				Name:           args[0],
				Amount:         parsedAmount,
				Type:           obligationType,
				AccountID:      account,
				CategoryID:     cat.ID,
				NextDueDate:    due,
				Frequency:      parsedFrequency,
				Active:         true,
				IsSubscription: subscription,
			}

			if err := store.CreateRecurring(ctx, obligation); err != nil {
				return fmt.Errorf("failed to create recurring transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("added %q, first due %s (%s)",
				obligation.Name, due.Format("2006-01-02"), shortID(obligation.ID))))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount per occurrence")
	cmd.Flags().StringVarP(&account, "account", "a", "", "account the money moves through")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().StringVarP(&frequency, "frequency", "f", "monthly", "frequency (weekly, monthly, quarterly, yearly)")
	cmd.Flags().StringVar(&firstDue, "due", "", "first due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&income, "income", false, "recurring income instead of a bill")
	cmd.Flags().BoolVar(&subscription, "subscription", false, "mark as a subscription rather than a bill")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}

func listRecurringCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recurring obligations by due date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			obligations, err := store.ListRecurring(ctx, !all)
			if err != nil {
				return fmt.Errorf("failed to list recurring transactions: %w", err)
			}

			if len(obligations) == 0 {
				fmt.Println(cli.InfoStyle.Render("No recurring bills or subscriptions."))
				return nil
			}

			now := time.Now()
			dueSoonDays := config.DueSoonDays()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "ID\tName\tAmount\tFrequency\tNext due\tStatus\n")
			for i := range obligations {
				o := &obligations[i]
				status := "upcoming"
				switch {
				case !o.Active:
					status = cli.SubtleStyle.Render("paused")
				case recurring.IsOverdue(o, now):
					status = cli.ErrorStyle.Render("overdue")
				case recurring.IsDueWithin(o, now, dueSoonDays):
					status = cli.WarningStyle.Render("due soon")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					shortID(o.ID), o.Name, formatAmount(o.Amount), o.Frequency,
					o.NextDueDate.Format("2006-01-02"), status)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include paused obligations")

	return cmd
}

func payRecurringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <id>",
		Short: "Record an obligation as paid and advance its schedule",
		Long: `Insert a ledger transaction dated at the obligation's current due date,
update the account balance, and move the due date forward one period. Running
this twice records two payments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			obligation, err := store.GetRecurring(ctx, args[0])
			if err != nil {
				return err
			}

			txn, err := recurring.NewProcessor(store).MarkAsProcessed(ctx, obligation)
			if err != nil {
				return fmt.Errorf("failed to process %q: %w", obligation.Name, err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("recorded %s of %s (%s), next due %s",
				obligation.Name, formatAmount(txn.Amount), shortID(txn.ID),
				obligation.NextDueDate.Format("2006-01-02"))))
			return nil
		},
	}
}

func setRecurringActiveCmd(verb string, active bool) *cobra.Command {
	short := "Pause an obligation without deleting it"
	if active {
		short = "Resume a paused obligation"
	}

	return &cobra.Command{
		Use:   verb + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetRecurringActive(ctx, args[0], active); err != nil {
				return fmt.Errorf("failed to %s: %w", verb, err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%sd %s", verb, shortID(args[0]))))
			return nil
		},
	}
}

func reviewRecurringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Interactively review and pay due obligations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			obligations, err := store.ListRecurring(ctx, false)
			if err != nil {
				return fmt.Errorf("failed to list recurring transactions: %w", err)
			}
			if len(obligations) == 0 {
				fmt.Println(cli.InfoStyle.Render("Nothing to review."))
				return nil
			}

			m := tui.NewReviewModel(ctx, store, obligations, config.DueSoonDays())
			_, err = tea.NewProgram(m).Run()
			return err
		},
	}
}
