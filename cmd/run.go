package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/quiztube/internal/bot"
	"github.com/example/quiztube/internal/notifier"
	"github.com/example/quiztube/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the notification scheduler until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var telegram *bot.Bot
		if a.cfg.TelegramToken != "" {
			telegram, err = bot.New(a.cfg.TelegramToken, a.service, a.store, a.log)
			if err != nil {
				return err
			}
			go func() {
				if err := telegram.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					a.log.Error("bot error", "error", err)
				}
			}()
			defer telegram.Stop()
		} else {
			a.log.Warn("TELEGRAM_BOT_TOKEN is not set, prompts will only be logged")
		}

		s := scheduler.New(a.store, a.service, newNotifier(a, telegram), a.log, schedulerOptions(a))
		if err := s.Start(); err != nil {
			return err
		}
		defer s.Stop()

		a.log.Info("quiztube started, press Ctrl+C to stop")
		<-ctx.Done()
		a.log.Info("shutting down")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func newNotifier(a *app, telegram *bot.Bot) scheduler.Notifier {
	fallback := notifier.NewLog(a.log)
	if telegram == nil {
		return notifier.NewRouter(nil, fallback)
	}
	return notifier.NewRouter(telegram, fallback)
}

func schedulerOptions(a *app) scheduler.Options {
	return scheduler.Options{
		Interval:    a.cfg.NotifyInterval,
		Concurrency: a.cfg.NotifyConcurrency,
		UserTimeout: a.cfg.NotifyUserTimeout,
		JobTimeout:  a.cfg.NotifyJobTimeout,
	}
}
