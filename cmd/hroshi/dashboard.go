package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkovalch/hroshi/internal/cli"
	"github.com/mkovalch/hroshi/internal/reminder"
	"github.com/mkovalch/hroshi/internal/report"
)

func dashboardCmd() *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the month summary, outstanding debt and upcoming payments",
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

			summary, err := views.MonthSummary(ctx, year, month, time.Local)
			if err != nil {
				return err
			}
			debt, err := views.DebtSummary(ctx)
			if err != nil {
				return err
			}
			due, err := views.DueCredits(ctx, time.Now().Add(reminder.DefaultHorizon))
			if err != nil {
				return err
			}

			monthBlock := fmt.Sprintf("%s\nincome:  %s\nspent:   %s\nnet:     %s",
				fmt.Sprintf("%04d-%02d", year, month),
				cli.IncomeStyle.Render(cli.Amount(summary.Income)),
				cli.ExpenseStyle.Render(cli.Amount(summary.Spent)),
				cli.Amount(summary.Net()))
			debtBlock := fmt.Sprintf("Debt\nremaining: %s\naccounts:  %d",
				cli.DebtStyle.Render(cli.Amount(debt.TotalRemaining)),
				debt.ActiveAccounts)

			fmt.Println(cli.TitleStyle.Render("Dashboard"))
			fmt.Println(cli.BoxStyle.Render(monthBlock))
			fmt.Println(cli.BoxStyle.Render(debtBlock))

			if len(due) > 0 {
				fmt.Println(cli.WarnStyle.Render("Payments due soon:"))
				for _, account := range due {
					fmt.Printf("  %s due %s (%s remaining)\n",
						account.Name,
						formatDate(*account.PaymentDueDate),
						cli.Amount(account.RemainingAmount))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&monthFlag, "month", "m", "", "month to summarize (YYYY-MM, default current)")

	return cmd
}
