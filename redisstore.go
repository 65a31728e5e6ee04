package dailyquiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisQuestionSeq = "dailyquiz:question_seq"
	redisAnswerSeq   = "dailyquiz:answer_seq"
)

func redisQuestionsKey(date string) string {
	return "dailyquiz:questions:" + date
}

func redisAnswersKey(questionID int64) string {
	return "dailyquiz:answers:" + strconv.FormatInt(questionID, 10)
}

// RedisStore keeps each day's batch as a list of JSON questions and each
// question's answers as a list of JSON records
type RedisStore struct {
	client *redis.Client
}

// OpenRedisStore connects to redis and checks the connection
func OpenRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.Info("Connected to redis", zap.String("addr", addr))
	return &RedisStore{client: client}, nil
}

// Close closes the redis client
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// GetQuestions reads the batch for a date
func (r *RedisStore) GetQuestions(ctx context.Context, date string) ([]Question, error) {
	items, err := r.client.LRange(ctx, redisQuestionsKey(date), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	questions := make([]Question, 0, len(items))
	for _, item := range items {
		var q Question
		if err := json.Unmarshal([]byte(item), &q); err != nil {
			return nil, fmt.Errorf("failed to decode question: %w", err)
		}
		if q.Options == nil {
			q.Options = Options{}
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// SaveQuestions stores a batch for a date. Ids come from a shared sequence;
// the delete and the pushes run in one MULTI/EXEC.
func (r *RedisStore) SaveQuestions(ctx context.Context, date string, questions []Question, overwrite bool) ([]Question, error) {
	stored := make([]Question, len(questions))
	copy(stored, questions)

	if len(stored) > 0 {
		last, err := r.client.IncrBy(ctx, redisQuestionSeq, int64(len(stored))).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to allocate question ids: %w", err)
		}
		first := last - int64(len(stored)) + 1
		for i := range stored {
			stored[i].ID = first + int64(i)
		}
	}

	items := make([]interface{}, len(stored))
	for i, q := range stored {
		data, err := json.Marshal(q)
		if err != nil {
			return nil, fmt.Errorf("failed to encode question: %w", err)
		}
		items[i] = data
	}

	key := redisQuestionsKey(date)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if overwrite {
			pipe.Del(ctx, key)
		}
		if len(items) > 0 {
			pipe.RPush(ctx, key, items...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save questions for %s: %w", date, err)
	}
	return stored, nil
}

// RecordAnswer appends an answer to the question's answer list
func (r *RedisStore) RecordAnswer(ctx context.Context, questionID int64, choice string, correct bool) (*AnswerRecord, error) {
	id, err := r.client.Incr(ctx, redisAnswerSeq).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate answer id: %w", err)
	}

	record := &AnswerRecord{
		ID:         id,
		QuestionID: questionID,
		Choice:     choice,
		Correct:    correct,
		AnsweredAt: time.Now().UTC().Truncate(time.Second),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answer: %w", err)
	}

	if err := r.client.RPush(ctx, redisAnswersKey(questionID), data).Err(); err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}
	return record, nil
}

// GetAnswers reads every answer for a question
func (r *RedisStore) GetAnswers(ctx context.Context, questionID int64) ([]AnswerRecord, error) {
	items, err := r.client.LRange(ctx, redisAnswersKey(questionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}

	var answers []AnswerRecord
	for _, item := range items {
		var a AnswerRecord
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			return nil, fmt.Errorf("failed to decode answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, nil
}
