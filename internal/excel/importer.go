package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/quiztube/internal/apperr"
	"github.com/example/quiztube/internal/database"
	"github.com/example/quiztube/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	UserID            int64  // Owner of the imported lessons
	LessonColumn      string // Column with the lesson title; empty cells repeat the previous lesson
	TopicColumn       string // Column with the topic name
	QuestionColumn    string // Column with the question text
	AnswerColumn      string // Column with the correct answer
	ExplanationColumn string // Column with an optional explanation
	SheetName         string // Sheet to import, the first sheet when empty
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		LessonColumn:      "A",
		TopicColumn:       "B",
		QuestionColumn:    "C",
		AnswerColumn:      "D",
		ExplanationColumn: "E",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed   int
	LessonsCreated   int
	TopicsCreated    int
	QuestionsCreated int
	Skipped          int
	Errors           []string
}

// ImportTopics imports lessons, topics and questions from an Excel or CSV file
func ImportTopics(ctx context.Context, store *database.Store, config ImportConfig) (*ImportResult, error) {
	if config.UserID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if _, err := store.Users.GetByID(ctx, config.UserID); err != nil {
		return nil, err
	}

	var (
		rows [][]string
		err  error
	)
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	imp := &importer{
		store:   store,
		config:  config,
		result:  &ImportResult{Errors: make([]string, 0)},
		lessons: make(map[string]int64),
		topics:  make(map[topicKey]int64),
	}
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		if isBlank(row) {
			continue
		}

		imp.result.TotalProcessed++
		if err := imp.processRow(ctx, row); err != nil {
			imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return imp.result, nil
}

// readExcel returns all rows of a sheet
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV returns all records of a CSV file
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type topicKey struct {
	lessonID int64
	name     string
}

type importer struct {
	store         *database.Store
	config        ImportConfig
	result        *ImportResult
	currentLesson string
	lessons       map[string]int64
	topics        map[topicKey]int64
}

func (imp *importer) processRow(ctx context.Context, row []string) error {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	if lesson := cell(imp.config.LessonColumn); lesson != "" {
		imp.currentLesson = lesson
	}
	if imp.currentLesson == "" {
		return fmt.Errorf("lesson cannot be empty")
	}
	topicName := cell(imp.config.TopicColumn)
	if topicName == "" {
		return fmt.Errorf("topic cannot be empty")
	}

	lessonID, err := imp.getOrCreateLesson(ctx, imp.currentLesson)
	if err != nil {
		return err
	}
	topicID, err := imp.getOrCreateTopic(ctx, lessonID, topicName)
	if err != nil {
		return err
	}

	questionText := cell(imp.config.QuestionColumn)
	if questionText == "" {
		return nil
	}
	return imp.addQuestion(ctx, topicID, questionText, cell(imp.config.AnswerColumn), cell(imp.config.ExplanationColumn))
}

// getOrCreateLesson gets a lesson by title or creates a new one if it doesn't exist
func (imp *importer) getOrCreateLesson(ctx context.Context, title string) (int64, error) {
	if id, ok := imp.lessons[title]; ok {
		return id, nil
	}

	lesson, err := imp.store.Lessons.GetByTitle(ctx, imp.config.UserID, title)
	switch {
	case err == nil:
		imp.lessons[title] = lesson.ID
		return lesson.ID, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return 0, err
	}

	newLesson := &models.Lesson{UserID: imp.config.UserID, Title: title}
	if err := imp.store.Lessons.Create(ctx, newLesson); err != nil {
		return 0, err
	}
	imp.result.LessonsCreated++
	imp.lessons[title] = newLesson.ID
	return newLesson.ID, nil
}

// getOrCreateTopic gets a topic by name within a lesson or creates a new, immediately due one.
// Names are case-sensitive, matching the lessons/topics unique keys.
func (imp *importer) getOrCreateTopic(ctx context.Context, lessonID int64, name string) (int64, error) {
	key := topicKey{lessonID: lessonID, name: name}
	if id, ok := imp.topics[key]; ok {
		return id, nil
	}

	topic, err := imp.store.Topics.GetByLessonAndName(ctx, lessonID, name)
	switch {
	case err == nil:
		imp.topics[key] = topic.ID
		return topic.ID, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return 0, err
	}

	newTopic := &models.Topic{UserID: imp.config.UserID, LessonID: lessonID, Name: name}
	if err := imp.store.Topics.Create(ctx, newTopic); err != nil {
		return 0, err
	}
	imp.result.TopicsCreated++
	imp.topics[key] = newTopic.ID
	return newTopic.ID, nil
}

// addQuestion adds a question unless the topic already has one with the same text
func (imp *importer) addQuestion(ctx context.Context, topicID int64, text, answer, explanation string) error {
	existing, err := imp.store.Questions.GetByTopic(ctx, topicID)
	if err != nil {
		return err
	}
	for _, q := range existing {
		if strings.EqualFold(q.QuestionText, text) {
			imp.result.Skipped++
			return nil
		}
	}

	q := &models.Question{TopicID: topicID, QuestionText: text, CorrectAnswer: answer, Explanation: explanation}
	if err := imp.store.Questions.Create(ctx, q); err != nil {
		return err
	}
	imp.result.QuestionsCreated++
	return nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
