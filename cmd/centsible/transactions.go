package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/calyptra/centsible/internal/cli"
	"github.com/calyptra/centsible/internal/ledger"
	"github.com/calyptra/centsible/internal/model"
	"github.com/calyptra/centsible/internal/service"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Record and browse ledger transactions",
		Long: `Every mutation here flows through the balance synchronizer, so account
balances always reflect the ledger.`,
	}

	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(listTxCmd())
	cmd.AddCommand(editTxCmd())
	cmd.AddCommand(deleteTxCmd())

	return cmd
}

func addTxCmd() *cobra.Command {
	var (
		txType    string
		account   string
		toAccount string
		category  string
		date      string
	)

	cmd := &cobra.Command{
		Use:   "add <description> <amount>",
		Short: "Record a transaction",
		Long: `Record an income, expense, or transfer. Transfers need --to and no
category; income and expenses need --category.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			parsedType, err := model.ParseTransactionType(strings.ToUpper(txType))
			if err != nil {
				return err
			}

			when := time.Now()
			if date != "" {
				when, err = time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
				}
			}

			txn := &model.Transaction{
				Description: args[0],
				Amount:      amount,
				Type:        parsedType,
				Date:        when,
				AccountID:   account,
			}

			if parsedType == model.TypeTransfer {
				if toAccount == "" {
					return fmt.Errorf("transfers require --to")
				}
				txn.ToAccountID = &toAccount
			} else {
				if category == "" {
					return fmt.Errorf("income and expenses require --category")
				}
				cat, err := resolveCategory(ctx, store, category)
				if err != nil {
					return err
				}
				txn.CategoryID = &cat.ID
			}

			if err := ledger.NewSyncer(store).Record(ctx, txn); err != nil {
				return fmt.Errorf("failed to record transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("recorded %s of %s (%s)",
				strings.ToLower(string(parsedType)), formatAmount(amount), shortID(txn.ID))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&txType, "type", "t", "expense", "transaction type (income, expense, transfer)")
	cmd.Flags().StringVarP(&account, "account", "a", "", "source account ID")
	cmd.Flags().StringVar(&toAccount, "to", "", "destination account ID (transfers only)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().StringVarP(&date, "date", "d", "", "transaction date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func listTxCmd() *cobra.Command {
	var (
		account string
		month   string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			filter := service.TransactionFilter{
				InvolvingAccount: account,
				Limit:            limit,
			}
			if month != "" {
				start, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid month %q, expected YYYY-MM", month)
				}
				end := start.AddDate(0, 1, 0)
				filter.StartDate = &start
				filter.EndDate = &end
			}

			txns, err := store.ListTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			if len(txns) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions found."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "ID\tDate\tDescription\tType\tAmount\n")
			for i := range txns {
				txn := &txns[i]
				amount := formatAmount(txn.Amount)
				if txn.Type == model.TypeExpense {
					amount = cli.AmountNegativeStyle.Render("-" + amount)
				} else if txn.Type == model.TypeIncome {
					amount = cli.AmountPositiveStyle.Render("+" + amount)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					shortID(txn.ID),
					txn.Date.Format("2006-01-02"),
					txn.Description,
					txn.Type,
					amount)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "only transactions involving this account")
	cmd.Flags().StringVarP(&month, "month", "m", "", "only transactions in this month (YYYY-MM)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of rows")

	return cmd
}

func editTxCmd() *cobra.Command {
	var (
		description string
		amount      string
		date        string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a transaction",
		Long: `Change a transaction's description, amount, or date. The old balance
effect is undone and the new one applied in the same commit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := store.GetTransaction(ctx, args[0])
			if err != nil {
				return err
			}

			if description != "" {
				txn.Description = description
			}
			if amount != "" {
				newAmount, err := parseAmount(amount)
				if err != nil {
					return err
				}
				txn.Amount = newAmount
			}
			if date != "" {
				when, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
				}
				txn.Date = when
			}

			if err := ledger.NewSyncer(store).Update(ctx, txn); err != nil {
				return fmt.Errorf("failed to update transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("updated transaction %s", shortID(txn.ID))))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&date, "date", "", "new date (YYYY-MM-DD)")

	return cmd
}

func deleteTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Long:  `Remove a transaction and undo its effect on account balances.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := ledger.NewSyncer(store).Remove(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("deleted transaction %s", shortID(args[0]))))
			return nil
		},
	}
}
