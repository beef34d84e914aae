package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/quiztube/pkg/models"
)

var statsUser int64

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a learner's progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.store.Users.GetByID(cmd.Context(), statsUser); err != nil {
			return err
		}
		stats, err := a.store.Stats.GetUserStatistics(cmd.Context(), statsUser, time.Now())
		if err != nil {
			return err
		}

		fmt.Println("📊 Progress")
		fmt.Printf("Topics:   %d (%d due)\n", stats.TotalTopics, stats.DueTopics)
		fmt.Printf("Reviews:  %d\n", stats.TotalReviews)
		fmt.Printf("Answers:  %d (%.0f%% correct)\n", stats.AnsweredQuestions, stats.Accuracy()*100)
		fmt.Printf("Prompts:  %d sent, %d replied\n", stats.PromptsSent, stats.PromptsReplied)
		for _, level := range []models.MasteryLevel{models.MasteryIntroduced, models.MasteryDeveloping, models.MasteryFamiliar, models.MasteryMastered} {
			fmt.Printf("  %-10s %d\n", level, stats.ByMastery[level])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Int64Var(&statsUser, "user", 0, "User ID")
	_ = statsCmd.MarkFlagRequired("user")
}
