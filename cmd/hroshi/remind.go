package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkovalch/hroshi/internal/cli"
	"github.com/mkovalch/hroshi/internal/model"
	"github.com/mkovalch/hroshi/internal/reminder"
)

// consoleNotifier prints due-payment reminders to the terminal. It honors
// the notifications.enabled config toggle.
type consoleNotifier struct{}

func (consoleNotifier) Enabled(_ context.Context) bool {
	if !viper.IsSet("notifications.enabled") {
		return true
	}
	return viper.GetBool("notifications.enabled")
}

func (consoleNotifier) NotifyDue(_ context.Context, account model.CreditAccount) error {
	due := "now"
	if account.PaymentDueDate != nil {
		due = formatDate(*account.PaymentDueDate)
	}
	fmt.Println(cli.WarnStyle.Render(fmt.Sprintf("Payment due for %s by %s (%s remaining)",
		account.Name, due, cli.Amount(account.RemainingAmount))))
	return nil
}

func remindCmd() *cobra.Command {
	var (
		watch        bool
		horizonHours int
	)

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Scan for upcoming credit payments",
		Long: `Scan for credit accounts whose payment is due within the horizon and
print a reminder for each. With --watch the scan repeats every 24 hours
until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			scheduler := reminder.NewScheduler(store, consoleNotifier{}).
				WithHorizon(time.Duration(horizonHours) * time.Hour)

			if watch {
				err := scheduler.Run(ctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}

			due, err := scheduler.RunOnce(ctx)
			if err != nil {
				return err
			}
			if len(due) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No payments due soon."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep scanning on an interval")
	cmd.Flags().IntVar(&horizonHours, "horizon", int(reminder.DefaultHorizon/time.Hour), "look-ahead window in hours")

	return cmd
}
