package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/quiztube/internal/excel"
)

var (
	importUser  int64
	importSheet string
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import lessons, topics and questions from an .xlsx or .csv file",
	Long: `Import lessons, topics and questions for a user.
Columns: lesson | topic | question | correct answer | explanation.
An empty lesson cell repeats the lesson of the previous row.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		cfg := excel.DefaultImportConfig()
		cfg.FilePath = args[0]
		cfg.UserID = importUser
		cfg.SheetName = importSheet

		result, err := excel.ImportTopics(cmd.Context(), a.store, cfg)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Processed %d rows: %d lessons, %d topics, %d questions created, %d skipped\n",
			result.TotalProcessed, result.LessonsCreated, result.TopicsCreated, result.QuestionsCreated, result.Skipped)
		for _, e := range result.Errors {
			fmt.Println("⚠️", e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Int64Var(&importUser, "user", 0, "Owner user ID")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "Sheet name (default: first sheet)")
	_ = importCmd.MarkFlagRequired("user")
}
