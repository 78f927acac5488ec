package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkovalch/hroshi/internal/category"
	"github.com/mkovalch/hroshi/internal/cli"
	"github.com/mkovalch/hroshi/internal/ledger"
	"github.com/mkovalch/hroshi/internal/model"
)

func creditsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Manage credit accounts and their payments",
	}

	cmd.AddCommand(creditsAddCmd())
	cmd.AddCommand(creditsListCmd())
	cmd.AddCommand(creditsShowCmd())
	cmd.AddCommand(creditsPayCmd())
	cmd.AddCommand(creditsInstallmentCmd())
	cmd.AddCommand(creditsUndoCmd())
	cmd.AddCommand(creditsDeleteCmd())

	return cmd
}

func creditsAddCmd() *cobra.Command {
	var (
		name         string
		typeFlag     string
		total        float64
		startFlag    string
		endFlag      string
		dueFlag      string
		monthly      float64
		rate         float64
		installments int
		initialPaid  float64
		note         string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a credit account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, err := parseDate(startFlag)
			if err != nil {
				return err
			}

			params := ledger.CreateAccountParams{
				Name:        name,
				Type:        model.CreditType(typeFlag),
				TotalAmount: total,
				StartDate:   start,
				Note:        note,
			}

			if endFlag != "" {
				end, err := parseDate(endFlag)
				if err != nil {
					return err
				}
				params.EndDate = &end
			}
			if dueFlag != "" {
				due, err := parseDate(dueFlag)
				if err != nil {
					return err
				}
				params.PaymentDueDate = &due
			}
			if cmd.Flags().Changed("monthly") {
				params.MonthlyPayment = &monthly
			}
			if cmd.Flags().Changed("rate") {
				params.InterestRate = &rate
			}
			if cmd.Flags().Changed("installments") {
				params.InstallmentCount = &installments
			}
			if cmd.Flags().Changed("initial-paid") {
				params.InitialPaidAmount = &initialPaid
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := ledger.New(store, category.NewManager(store))
			account, err := engine.CreateAccount(ctx, params)
			if err != nil {
				return err
			}

			fmt.Printf("Created credit account %s (#%d), remaining %s\n",
				account.Name, account.ID, cli.DebtStyle.Render(cli.Amount(account.RemainingAmount)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "account name (required)")
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "credit type (INSTALLMENT, PAY_IN_PARTS, CREDIT_LIMIT, LOAN)")
	cmd.Flags().Float64Var(&total, "total", 0, "total amount owed (required)")
	cmd.Flags().StringVar(&startFlag, "start", "", "start date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&endFlag, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dueFlag, "due", "", "first payment due date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&monthly, "monthly", 0, "monthly payment (LOAN accounts)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "interest rate percent")
	cmd.Flags().IntVar(&installments, "installments", 0, "installment count (INSTALLMENT, PAY_IN_PARTS)")
	cmd.Flags().Float64Var(&initialPaid, "initial-paid", 0, "already-used amount (CREDIT_LIMIT)")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("total")

	return cmd
}

func creditsListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List credit accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var accounts []model.CreditAccount
			if all {
				accounts, err = store.GetCreditAccounts(ctx)
			} else {
				accounts, err = store.GetActiveCreditAccounts(ctx)
			}
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render("Credit accounts"))
			if len(accounts) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No credit accounts."))
				return nil
			}

			for _, account := range accounts {
				fmt.Println(renderCreditLine(account))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include settled accounts")

	return cmd
}

func creditsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one credit account with its payment history",
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

			account, err := store.GetCreditAccountByID(ctx, id)
			if err != nil {
				return err
			}
			if account == nil {
				return fmt.Errorf("credit account #%d not found", id)
			}

			payments, err := store.GetCreditPayments(ctx, id)
			if err != nil {
				return err
			}

			fmt.Println(cli.BoxStyle.Render(renderCreditDetail(*account)))
			fmt.Println(cli.TitleStyle.Render("Payments"))
			if len(payments) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No payments recorded."))
				return nil
			}
			for _, payment := range payments {
				fmt.Printf("%s  %s  %s\n",
					cli.SubtleStyle.Render(fmt.Sprintf("#%-4d", payment.ID)),
					formatDate(payment.PaymentDate),
					cli.Amount(payment.Amount))
			}
			return nil
		},
	}
}

func creditsPayCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "pay <id> <amount>",
		Short: "Record a payment against a credit account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
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

			engine := ledger.New(store, category.NewManager(store))
			if err := engine.AddPayment(ctx, id, amount, date); err != nil {
				return err
			}

			account, err := store.GetCreditAccountByID(ctx, id)
			if err != nil {
				return err
			}
			if account == nil {
				return fmt.Errorf("credit account #%d not found", id)
			}

			fmt.Printf("Recorded payment of %s; remaining %s\n",
				cli.Amount(amount), cli.DebtStyle.Render(cli.Amount(account.RemainingAmount)))
			if account.Settled() {
				fmt.Println(cli.IncomeStyle.Render("Account fully repaid."))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "payment date (YYYY-MM-DD, default today)")

	return cmd
}

func creditsInstallmentCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "installment <id>",
		Short: "Mark the next scheduled installment as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
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

			engine := ledger.New(store, category.NewManager(store))
			if err := engine.MarkNextInstallmentAsPaid(ctx, id, date); err != nil {
				return err
			}

			account, err := store.GetCreditAccountByID(ctx, id)
			if err != nil {
				return err
			}
			if account == nil {
				return fmt.Errorf("credit account #%d not found", id)
			}
			if !account.IsInstallment() {
				return fmt.Errorf("credit account #%d is not an installment account", id)
			}

			total := 0
			if account.InstallmentCount != nil {
				total = *account.InstallmentCount
			}
			fmt.Printf("Installments paid: %d/%d, remaining %s\n",
				account.PaidInstallments, total,
				cli.DebtStyle.Render(cli.Amount(account.RemainingAmount)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "payment date (YYYY-MM-DD, default today)")

	return cmd
}

func creditsUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <id>",
		Short: "Undo the most recent payment on a credit account",
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

			engine := ledger.New(store, category.NewManager(store))
			undone, err := engine.UndoLastPayment(ctx, id)
			if err != nil {
				return err
			}
			if !undone {
				fmt.Println(cli.WarnStyle.Render("Nothing to undo."))
				return nil
			}

			account, err := store.GetCreditAccountByID(ctx, id)
			if err != nil {
				return err
			}
			if account != nil {
				fmt.Printf("Reversed last payment; remaining %s\n",
					cli.DebtStyle.Render(cli.Amount(account.RemainingAmount)))
			}
			return nil
		},
	}
}

func creditsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a credit account and its payment history",
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

			if err := store.DeleteCreditAccount(ctx, id); err != nil {
				return err
			}

			fmt.Printf("Deleted credit account #%d\n", id)
			return nil
		},
	}
}

func renderCreditLine(account model.CreditAccount) string {
	status := cli.DebtStyle.Render(cli.Amount(account.RemainingAmount))
	if account.Settled() {
		status = cli.IncomeStyle.Render("settled")
	}
	line := fmt.Sprintf("%s  %-20s  %-12s  %s / %s",
		cli.SubtleStyle.Render(fmt.Sprintf("#%-4d", account.ID)),
		account.Name,
		account.Type,
		status,
		cli.Amount(account.TotalAmount))
	if account.PaymentDueDate != nil {
		due := formatDate(*account.PaymentDueDate)
		if account.PaymentDueDate.Before(time.Now()) {
			due = cli.WarnStyle.Render(due + " (overdue)")
		}
		line += "  due " + due
	}
	return line
}

func renderCreditDetail(account model.CreditAccount) string {
	detail := fmt.Sprintf("%s (#%d)\ntype: %s\ntotal: %s\nremaining: %s\nstarted: %s",
		account.Name, account.ID, account.Type,
		cli.Amount(account.TotalAmount),
		cli.DebtStyle.Render(cli.Amount(account.RemainingAmount)),
		formatDate(account.StartDate))
	if account.InstallmentCount != nil {
		detail += fmt.Sprintf("\ninstallments: %d/%d of %s",
			account.PaidInstallments, *account.InstallmentCount,
			cli.Amount(account.InstallmentAmount()))
	}
	if account.PaymentDueDate != nil {
		detail += "\nnext due: " + formatDate(*account.PaymentDueDate)
	}
	if account.InterestRate != nil {
		detail += fmt.Sprintf("\nrate: %.2f%%", *account.InterestRate)
	}
	if account.Note != "" {
		detail += "\nnote: " + account.Note
	}
	return detail
}
