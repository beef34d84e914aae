package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/quiztube/internal/bot"
	"github.com/example/quiztube/internal/scheduler"
)

var notifyUser int64

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Run one notification batch now",
	Long: `Run one notification batch immediately.
With --user only that user is processed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var telegram *bot.Bot
		if a.cfg.TelegramToken != "" {
			if telegram, err = bot.New(a.cfg.TelegramToken, a.service, a.store, a.log); err != nil {
				return err
			}
		}
		s := scheduler.New(a.store, a.service, newNotifier(a, telegram), a.log, schedulerOptions(a))

		if notifyUser != 0 {
			outcome, err := s.RunForUser(ctx, notifyUser)
			if err != nil {
				return err
			}
			fmt.Printf("User %d: %s", outcome.UserID, outcome.Status)
			if outcome.Reason != "" {
				fmt.Printf(" (%s)", outcome.Reason)
			}
			fmt.Println()
			return nil
		}

		result, err := s.RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("📬 Processed %d users: %d sent, %d skipped, %d failed\n",
			result.Processed, result.Sent, result.Skipped, result.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.Flags().Int64Var(&notifyUser, "user", 0, "Process only this user ID")
}
