package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/calyptra/centsible/internal/cli"
	"github.com/calyptra/centsible/internal/ledger"
	"github.com/calyptra/centsible/internal/model"
	"github.com/calyptra/centsible/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from bank statements",
	}

	cmd.AddCommand(importOFXCmd())

	return cmd
}

func importOFXCmd() *cobra.Command {
	var (
		account  string
		category string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "ofx [files...]",
		Short: "Import OFX/QFX statement files",
		Long: `Import transactions from OFX or QFX files exported from your bank.
Each entry is recorded through the balance synchronizer against the given
account; debits become expenses and credits become income.

Examples:
  centsible import ofx --account acc1 --category Uncategorized ~/Downloads/january.qfx
  centsible import ofx --account acc1 --category Uncategorized ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			// Fail before parsing anything if the target account is missing.
			if _, err := store.GetAccount(ctx, account); err != nil {
				return err
			}

			cat, err := resolveCategory(ctx, store, category)
			if err != nil {
				return err
			}

			var files []string
			for _, pattern := range args {
				matches, err := filepath.Glob(pattern)
				if err != nil {
					return fmt.Errorf("invalid pattern %s: %w", pattern, err)
				}
				if len(matches) == 0 {
					if _, err := os.Stat(pattern); err != nil {
						return fmt.Errorf("no files match %s", pattern)
					}
					matches = []string{pattern}
				}
				files = append(files, matches...)
			}

			parser := ofx.NewParser()
			var entries []ofx.StatementEntry
			for _, path := range files {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", path, err)
				}
				parsed, err := parser.ParseFile(ctx, f)
				_ = f.Close()
				if err != nil {
					return fmt.Errorf("failed to parse %s: %w", path, err)
				}
				entries = append(entries, parsed...)
			}

			if len(entries) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions found in the given files."))
				return nil
			}

			if dryRun {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("dry run: %d transactions would be imported", len(entries))))
				return nil
			}

			syncer := ledger.NewSyncer(store)
			bar := progressbar.Default(int64(len(entries)), "importing")
			for _, entry := range entries {
				categoryID := cat.ID
				txn := &model.Transaction{
					Description: entry.Description,
					Amount:      entry.Amount,
					Type:        entry.Type,
					Date:        entry.Date,
					AccountID:   account,
					CategoryID:  &categoryID,
				}
				if err := syncer.Record(ctx, txn); err != nil {
					return fmt.Errorf("failed to record %q: %w", entry.Description, err)
				}
				_ = bar.Add(1)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("imported %d transactions into %s", len(entries), shortID(account))))
			fmt.Println(cli.SubtleStyle.Render("Tip: run 'centsible accounts recalculate " + account + "' if the statement overlaps existing data."))
			return nil
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "account to import into")
	cmd.Flags().StringVarP(&category, "category", "c", "Uncategorized", "category for imported entries")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "parse and count without saving")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}
