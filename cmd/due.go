package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	dueUser  int64
	dueLimit int
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show a user's topics ranked by review urgency",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		topics, err := a.service.GetPrioritizedTopics(cmd.Context(), dueUser, dueLimit)
		if err != nil {
			return err
		}
		if len(topics) == 0 {
			fmt.Println("✅ No topics yet.")
			return nil
		}

		fmt.Println("🔥 Topics by priority:")
		for _, t := range topics {
			fmt.Printf("- [%d] %s | priority:%.2f | %s | next:%s | %s\n",
				t.Topic.ID, t.Topic.Name, t.Priority, t.Topic.MasteryLevel,
				t.Topic.NextReviewDate.Local().Format("2006-01-02"), t.RecommendedAction)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dueCmd)
	dueCmd.Flags().Int64Var(&dueUser, "user", 0, "User ID")
	dueCmd.Flags().IntVar(&dueLimit, "limit", 0, "Maximum topics to show (default: the user's daily review cap)")
	_ = dueCmd.MarkFlagRequired("user")
}
