package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkovalch/hroshi/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	var (
		incomeCategory  int64
		expenseCategory int64
	)

	cmd := &cobra.Command{
		Use:   "import-ofx <file>...",
		Short: "Import bank statement files (OFX/QFX) as transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			parser := ofx.NewParser()
			importer := ofx.NewImporter(store)

			total := 0
			for _, path := range args {
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", path, err)
				}

				entries, err := parser.ParseFile(ctx, file)
				_ = file.Close()
				if err != nil {
					return fmt.Errorf("failed to parse %s: %w", path, err)
				}

				imported, err := importer.Import(ctx, entries, incomeCategory, expenseCategory)
				if err != nil {
					return fmt.Errorf("failed to import %s: %w", path, err)
				}

				fmt.Printf("%s: imported %d transactions\n", path, imported)
				total += imported
			}

			if len(args) > 1 {
				fmt.Printf("Imported %d transactions total\n", total)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&incomeCategory, "income-category", 0, "category id for deposits (required)")
	cmd.Flags().Int64Var(&expenseCategory, "expense-category", 0, "category id for withdrawals (required)")
	_ = cmd.MarkFlagRequired("income-category")
	_ = cmd.MarkFlagRequired("expense-category")

	return cmd
}
