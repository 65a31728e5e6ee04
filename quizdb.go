package dailyquiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the sqlite-backed Store
type DB struct {
	db *sql.DB
}

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			category TEXT,
			sub_category TEXT,
			question TEXT,
			options TEXT,
			correct_option TEXT,
			explanation TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_date ON questions(date)`,
		// question_id is a soft reference: regeneration deletes questions
		// but never their answers.
		`CREATE TABLE IF NOT EXISTS user_answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_id INTEGER,
			choice TEXT,
			correct INTEGER,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_answers_question ON user_answers(question_id)`,
	}

	for _, query := range queries {
		if _, err := db.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// GetQuestions retrieves the batch for a date, in insertion order
func (db *DB) GetQuestions(ctx context.Context, date string) ([]Question, error) {
	rows, err := db.db.QueryContext(ctx,
		"SELECT id, category, sub_category, question, options, correct_option, explanation FROM questions WHERE date = ? ORDER BY id",
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	questions := []Question{}
	for rows.Next() {
		var q Question
		var optionsJSON string
		if err := rows.Scan(&q.ID, &q.Category, &q.SubCategory, &q.Prompt, &optionsJSON, &q.CorrectOption, &q.Explanation); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if q.Options, err = JSONToOptions(optionsJSON); err != nil {
			return nil, fmt.Errorf("question %d: %w", q.ID, err)
		}
		questions = append(questions, q)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return questions, nil
}

// SaveQuestions stores a batch for a date. The optional delete and the
// inserts share one transaction, so a failed save leaves the previous batch
// in place.
func (db *DB) SaveQuestions(ctx context.Context, date string, questions []Question, overwrite bool) ([]Question, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if overwrite {
		if _, err := tx.ExecContext(ctx, "DELETE FROM questions WHERE date = ?", date); err != nil {
			return nil, fmt.Errorf("failed to delete questions for %s: %w", date, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO questions (date, category, sub_category, question, options, correct_option, explanation) VALUES (?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	stored := make([]Question, len(questions))
	for i, q := range questions {
		optionsJSON, err := OptionsToJSON(q.Options)
		if err != nil {
			return nil, err
		}

		res, err := stmt.ExecContext(ctx, date, q.Category, q.SubCategory, q.Prompt, optionsJSON, q.CorrectOption, q.Explanation)
		if err != nil {
			return nil, fmt.Errorf("failed to create question: %w", err)
		}
		if q.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("failed to read question id: %w", err)
		}
		stored[i] = q
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit questions for %s: %w", date, err)
	}
	return stored, nil
}

// RecordAnswer appends an answer to the log
func (db *DB) RecordAnswer(ctx context.Context, questionID int64, choice string, correct bool) (*AnswerRecord, error) {
	answeredAt := time.Now().UTC().Truncate(time.Second)
	res, err := db.db.ExecContext(ctx,
		"INSERT INTO user_answers (question_id, choice, correct, timestamp) VALUES (?, ?, ?, ?)",
		questionID, choice, correct, answeredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read answer id: %w", err)
	}

	return &AnswerRecord{
		ID:         id,
		QuestionID: questionID,
		Choice:     choice,
		Correct:    correct,
		AnsweredAt: answeredAt,
	}, nil
}

// GetAnswers retrieves all answers for a question
func (db *DB) GetAnswers(ctx context.Context, questionID int64) ([]AnswerRecord, error) {
	rows, err := db.db.QueryContext(ctx,
		"SELECT id, question_id, choice, correct, timestamp FROM user_answers WHERE question_id = ? ORDER BY id",
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	defer rows.Close()

	var answers []AnswerRecord
	for rows.Next() {
		var a AnswerRecord
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Choice, &a.Correct, &a.AnsweredAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answers: %w", err)
	}

	return answers, nil
}

// OptionsToJSON serializes options for storage
func OptionsToJSON(options Options) (string, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to marshal options: %w", err)
	}
	return string(data), nil
}

// JSONToOptions parses stored options
func JSONToOptions(optionsJSON string) (Options, error) {
	var options Options
	if err := json.Unmarshal([]byte(optionsJSON), &options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	if options == nil {
		options = Options{}
	}
	return options, nil
}
