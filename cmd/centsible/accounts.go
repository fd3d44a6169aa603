package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/calyptra/centsible/internal/cli"
	"github.com/calyptra/centsible/internal/ledger"
	"github.com/calyptra/centsible/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
		Long:  `List, add, and repair the accounts your money lives in.`,
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(setBalanceCmd())
	cmd.AddCommand(recalculateCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts with balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.ListAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			if len(accounts) == 0 {
				fmt.Println(cli.InfoStyle.Render("No accounts yet. Use 'centsible accounts add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "ID\tName\tType\tBalance\n")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 8), strings.Repeat("-", 20), strings.Repeat("-", 12), strings.Repeat("-", 12))

			for _, account := range accounts {
				balance := formatAmount(account.Balance)
				if account.Balance.IsNegative() {
					balance = cli.AmountNegativeStyle.Render(balance)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID(account.ID), account.Name, account.Type, balance)
			}

			return nil
		},
	}
}

func addAccountCmd() *cobra.Command {
	var (
		accountType string
		balance     string
		creditLimit string
		icon        string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			opening, err := parseAmountSigned(balance)
			if err != nil {
				return err
			}

			account := &model.Account{
				Name:    args[0],
				Type:    accountType,
				Balance: opening,
				Icon:    icon,
			}
			if creditLimit != "" {
				limit, err := parseAmount(creditLimit)
				if err != nil {
					return err
				}
				account.CreditLimit = &limit
			}

			if err := store.CreateAccount(ctx, account); err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("created account %q (%s)", account.Name, shortID(account.ID))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountType, "type", "t", "checking", "account type (checking, savings, credit-card, cash, ...)")
	cmd.Flags().StringVarP(&balance, "balance", "b", "0", "opening balance")
	cmd.Flags().StringVar(&creditLimit, "credit-limit", "", "credit limit for credit accounts")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name")

	return cmd
}

func setBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-balance <account-id> <balance>",
		Short: "Overwrite an account's stored balance",
		Long: `Force an account's balance to a specific value without touching the
ledger. Use this to correct the opening balance; for drift against recorded
transactions, prefer 'accounts recalculate'.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			balance, err := parseAmountSigned(args[1])
			if err != nil {
				return err
			}

			if err := store.SetAccountBalance(ctx, args[0], balance); err != nil {
				return fmt.Errorf("failed to set balance: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("set balance of %s to %s", shortID(args[0]), formatAmount(balance))))
			return nil
		},
	}
}

func recalculateCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "recalculate [account-id]",
		Short: "Rebuild account balances from the ledger",
		Long: `Recompute an account's balance as the sum of every transaction that
references it. Balances are normally maintained incrementally; use this after
restoring a backup or importing statements.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			syncer := ledger.NewSyncer(store)

			if !all {
				if len(args) != 1 {
					return fmt.Errorf("provide an account ID or use --all")
				}
				balance, err := syncer.Recalculate(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to recalculate balance: %w", err)
				}
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("balance recalculated: %s", formatAmount(balance))))
				return nil
			}

			accounts, err := store.ListAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			bar := progressbar.Default(int64(len(accounts)), "recalculating")
			for _, account := range accounts {
				if _, err := syncer.Recalculate(ctx, account.ID); err != nil {
					return fmt.Errorf("failed to recalculate %s: %w", account.Name, err)
				}
				_ = bar.Add(1)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("recalculated %d accounts", len(accounts))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "recalculate every account")

	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
