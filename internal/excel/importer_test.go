package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/quiztube/internal/database"
	"github.com/example/quiztube/pkg/models"
)

func newStore(t *testing.T) (*database.Store, *models.User) {
	t.Helper()
	db, err := database.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.InitSchema(context.Background(), db))
	t.Cleanup(func() { db.Close() })

	store := database.NewStore(db)
	user := &models.User{Email: "learner@example.com"}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return store, user
}

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "topics.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportTopicsFromExcel(t *testing.T) {
	store, user := newStore(t)
	ctx := context.Background()
	path := writeWorkbook(t, [][]interface{}{
		{"Lesson", "Topic", "Question", "Answer", "Explanation"},
		{"Go concurrency", "Goroutines", "What starts a goroutine?", "the go keyword", ""},
		{"", "Goroutines", "Are goroutines OS threads?", "no", "they are multiplexed"},
		{"", "Channels", "What does close do?", "signals no more values"},
		{"Go errors", "Wrapping", "", ""},
		{},
		{"", "", "orphan question", "x"},
	})

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.UserID = user.ID

	result, err := ImportTopics(ctx, store, cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalProcessed)
	assert.Equal(t, 2, result.LessonsCreated)
	assert.Equal(t, 3, result.TopicsCreated)
	assert.Equal(t, 3, result.QuestionsCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 7")

	topics, err := store.GetTopicsForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, topics, 3)
	for _, topic := range topics {
		assert.Equal(t, models.DefaultEaseFactor, topic.EaseFactor)
		assert.Equal(t, 1, topic.ReviewIntervalDays)
		assert.Equal(t, 0, topic.ReviewCount)
		assert.Equal(t, models.MasteryIntroduced, topic.MasteryLevel)
	}

	lesson, err := store.Lessons.GetByTitle(ctx, user.ID, "Go concurrency")
	require.NoError(t, err)
	goroutines, err := store.Topics.GetByLessonAndName(ctx, lesson.ID, "Goroutines")
	require.NoError(t, err)
	questions, err := store.Questions.GetByTopic(ctx, goroutines.ID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "they are multiplexed", questions[1].Explanation)

	// importing the same file again only skips
	again, err := ImportTopics(ctx, store, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, again.LessonsCreated)
	assert.Equal(t, 0, again.TopicsCreated)
	assert.Equal(t, 0, again.QuestionsCreated)
	assert.Equal(t, 3, again.Skipped)
}

func TestImportTopicsFromCSV(t *testing.T) {
	store, user := newStore(t)
	path := filepath.Join(t.TempDir(), "topics.csv")
	content := "lesson,topic,question,answer\n" +
		"Intro to SQL,Joins,What does LEFT JOIN keep?,all rows of the left table\n" +
		",Indexes,\"Why add an index?\",faster lookups\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.UserID = user.ID

	result, err := ImportTopics(context.Background(), store, cfg)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.LessonsCreated)
	assert.Equal(t, 2, result.TopicsCreated)
	assert.Equal(t, 2, result.QuestionsCreated)
}

func TestImportTopicNamesAreCaseSensitive(t *testing.T) {
	store, user := newStore(t)
	ctx := context.Background()
	path := writeWorkbook(t, [][]interface{}{
		{"Lesson", "Topic", "Question", "Answer"},
		{"Go concurrency", "Goroutines", "What starts a goroutine?", "the go keyword"},
		{"", "goroutines", "Are goroutines OS threads?", "no"},
	})

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.UserID = user.ID

	first, err := ImportTopics(ctx, store, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, first.TopicsCreated)

	second, err := ImportTopics(ctx, store, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, second.TopicsCreated)
	assert.Equal(t, 0, second.QuestionsCreated)

	topics, err := store.GetTopicsForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, topics, 2)
}

func TestImportTopicsUnknownUser(t *testing.T) {
	store, _ := newStore(t)
	cfg := DefaultImportConfig()
	cfg.FilePath = "missing.xlsx"
	cfg.UserID = 999

	_, err := ImportTopics(context.Background(), store, cfg)
	assert.Error(t, err)
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 3, columnToIndex("d"))
	assert.Equal(t, 26, columnToIndex("AA"))
}
