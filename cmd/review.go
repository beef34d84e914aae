package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review TOPIC_ID QUALITY",
	Short: "Record a review of a topic",
	Long: `Record a review of a topic with a recall quality
from 0 (blackout) to 5 (perfect) and show the next review date.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		topicID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid topic ID %q", args[0])
		}
		quality, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quality %q", args[1])
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		state, err := a.service.ScheduleReview(cmd.Context(), topicID, quality)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Updated! Ease %.2f, mastery %s. Next review in %d days (%s).\n",
			state.EaseFactor, state.MasteryLevel, state.ReviewIntervalDays,
			state.NextReviewDate.Local().Format("2006-01-02"))
		return nil
	},
}

var (
	replyCorrect  bool
	replyResponse string
)

var replyCmd = &cobra.Command{
	Use:   "reply PROMPT_ID",
	Short: "Record a learner's reply to a sent prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		promptID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid prompt ID %q", args[0])
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.service.RecordPromptReply(cmd.Context(), promptID, replyResponse, replyCorrect)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Reply recorded for topic %d. Next review in %d days.\n",
			result.TopicID, result.State.ReviewIntervalDays)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(replyCmd)
	replyCmd.Flags().BoolVar(&replyCorrect, "correct", false, "The reply was correct")
	replyCmd.Flags().StringVar(&replyResponse, "response", "", "The learner's answer")
}
