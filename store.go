package dailyquiz

import (
	"context"
	"fmt"
)

// Store is the daily question cache plus the answer log
type Store interface {
	// GetQuestions returns the batch saved for date, or an empty slice
	GetQuestions(ctx context.Context, date string) ([]Question, error)
	// SaveQuestions stores questions under date, first removing that date's
	// existing rows when overwrite is set. It returns the stored questions
	// carrying their store-assigned ids.
	SaveQuestions(ctx context.Context, date string, questions []Question, overwrite bool) ([]Question, error)
	// RecordAnswer appends one answer. The question id is not checked.
	RecordAnswer(ctx context.Context, questionID int64, choice string, correct bool) (*AnswerRecord, error)
	// GetAnswers returns every answer recorded for questionID, oldest first
	GetAnswers(ctx context.Context, questionID int64) ([]AnswerRecord, error)
	Close() error
}

// OpenStore opens the backend named by cfg.Driver
func OpenStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		db, err := OpenDB(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := db.CreateTables(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	case "redis":
		return OpenRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}
