package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/quiztube/internal/config"
	"github.com/example/quiztube/internal/database"
	"github.com/example/quiztube/internal/learning"
	"github.com/example/quiztube/internal/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "quiztube",
	Short: "Spaced repetition reviews for video lessons",
	Long: `QuizTube schedules reviews of the topics you learned from videos
using the SM-2 algorithm and sends review prompts at good times.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an optional .env file")
}

// app holds the wired dependencies shared by the commands
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *database.Store
	service *learning.Service
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := database.NewStore(db)

	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		service: learning.NewService(store, log, learning.WithPromptCandidates(cfg.PromptCandidates)),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close database", "error", err)
	}
	a.log.Sync()
}
