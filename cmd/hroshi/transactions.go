package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkovalch/hroshi/internal/cli"
	"github.com/mkovalch/hroshi/internal/model"
	"github.com/mkovalch/hroshi/internal/report"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Record and list income and expense transactions",
	}

	cmd.AddCommand(transactionsAddCmd())
	cmd.AddCommand(transactionsListCmd())
	cmd.AddCommand(transactionsDeleteCmd())

	return cmd
}

func transactionsAddCmd() *cobra.Command {
	var (
		amount     float64
		categoryID int64
		typeFlag   string
		dateFlag   string
		note       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			txType := model.TransactionType(typeFlag)
			if txType == model.TransactionTypeCreditPayment {
				return fmt.Errorf("credit payments are recorded through 'credits pay', not directly")
			}
			if !txType.Valid() {
				return fmt.Errorf("invalid transaction type %q (INCOME, EXPENSE)", typeFlag)
			}

			date, err := parseDate(dateFlag)
			if err != nil {
				return err
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := store.CreateTransaction(ctx, &model.Transaction{
				Amount:     amount,
				Date:       date,
				CategoryID: categoryID,
				Type:       txType,
				Note:       note,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Recorded %s %s (#%d)\n", txType, cli.Amount(amount), id)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "transaction amount (required)")
	cmd.Flags().Int64VarP(&categoryID, "category", "c", 0, "category id (required)")
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "EXPENSE", "transaction type (INCOME, EXPENSE)")
	cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "transaction date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "optional note")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func transactionsListCmd() *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one month's transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			year, month, err := parseMonth(monthFlag)
			if err != nil {
				return err
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			views := report.New(store, nil)
			transactions, err := views.MonthTransactions(ctx, year, month, time.Local)
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Transactions for %04d-%02d", year, month)))
			if len(transactions) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No transactions this month."))
				return nil
			}

			for _, txn := range transactions {
				amount := cli.ExpenseStyle.Render("-" + cli.Amount(txn.Amount))
				if txn.Type == model.TransactionTypeIncome {
					amount = cli.IncomeStyle.Render("+" + cli.Amount(txn.Amount))
				}
				line := fmt.Sprintf("%s  %s  %10s",
					cli.SubtleStyle.Render(fmt.Sprintf("#%-4d", txn.ID)),
					formatDate(txn.Date),
					amount)
				if txn.Note != "" {
					line += "  " + txn.Note
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&monthFlag, "month", "m", "", "month to list (YYYY-MM, default current)")

	return cmd
}

func transactionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			removed, err := store.GetTransactionByID(ctx, id)
			if err != nil {
				return err
			}
			if removed == nil {
				return fmt.Errorf("transaction #%d not found", id)
			}

			if err := store.DeleteTransaction(ctx, id); err != nil {
				return err
			}

			fmt.Printf("Deleted transaction #%d\n", id)

			// Echo the row so it can be re-entered; restoring creates a
			// fresh transaction.
			restore := fmt.Sprintf("transactions add --amount %.2f --category %d --type %s --date %s",
				removed.Amount, removed.CategoryID, removed.Type, formatDate(removed.Date))
			if removed.Note != "" {
				restore += fmt.Sprintf(" --note %q", removed.Note)
			}
			fmt.Println(cli.SubtleStyle.Render("Restore with: hroshi " + restore))
			return nil
		},
	}
}
