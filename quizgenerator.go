package dailyquiz

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Batch sources, as reported in logs and metrics
const (
	SourceCache    = "cache"
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// QuizService ties the pipeline together: cache lookup, generation,
// normalization, validation, fallback and persistence
type QuizService struct {
	store      Store
	maker      Generator
	normalizer *Normalizer
	checker    *QuestionChecker
	fallback   func() []RawQuestion
}

// NewQuizService creates a service over store. maker may be nil, in which
// case every new batch comes from the fallback bank.
func NewQuizService(store Store, maker Generator) *QuizService {
	return &QuizService{
		store:      store,
		maker:      maker,
		normalizer: NewNormalizer(),
		checker:    NewQuestionChecker(),
		fallback:   SampleQuestions,
	}
}

// Today formats t as the ISO date used to key batches
func Today(t time.Time) string {
	return t.Format(time.DateOnly)
}

// GetOrGenerateBatch returns the batch cached for date, building and saving
// a new one when there is none
func (s *QuizService) GetOrGenerateBatch(ctx context.Context, date string) ([]Question, error) {
	cached, err := s.store.GetQuestions(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		VerboseLog("Serving %d cached questions for %s", len(cached), date)
		batchesServed.WithLabelValues(SourceCache).Inc()
		return cached, nil
	}

	return s.Regenerate(ctx, date)
}

// Regenerate builds a fresh batch and overwrites whatever is saved for date.
// If nothing usable comes out the saved batch is left untouched.
func (s *QuizService) Regenerate(ctx context.Context, date string) ([]Question, error) {
	questions, source := s.buildBatch(ctx)
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	stored, err := s.store.SaveQuestions(ctx, date, AssignIDs(questions), true)
	if err != nil {
		return nil, err
	}

	logger.Info("Saved daily batch",
		zap.String("date", date),
		zap.String("source", source),
		zap.Int("count", len(stored)),
	)
	batchesServed.WithLabelValues(source).Inc()
	return stored, nil
}

func (s *QuizService) buildBatch(ctx context.Context) ([]RawQuestion, string) {
	if s.maker != nil {
		raw, err := s.maker.GenerateQuestions(ctx)
		if err == nil {
			valid := s.checker.Validate(s.normalizer.Shuffle(raw))
			if len(valid) > 0 {
				return valid, SourceRemote
			}
			logger.Warn("No generated question passed validation", zap.Int("generated", len(raw)))
		}
	}

	logger.Info("Using fallback questions")
	return s.checker.Validate(s.fallback()), SourceFallback
}

// SubmitAnswer grades choice against q and appends the answer to the store
func (s *QuizService) SubmitAnswer(ctx context.Context, q Question, choice string) (*AnswerRecord, error) {
	if _, ok := q.Options.Text(choice); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}

	correct := choice == q.CorrectOption
	record, err := s.store.RecordAnswer(ctx, q.ID, choice, correct)
	if err != nil {
		return nil, err
	}

	answersTotal.WithLabelValues(strconv.FormatBool(correct)).Inc()
	VerboseLog("Question %d answered %s (correct=%v)", q.ID, choice, correct)
	return record, nil
}

// Submit answers the session's current question and moves it to the
// submitted state
func (s *QuizService) Submit(ctx context.Context, sess *Session, batch []Question, choice string) (*AnswerRecord, error) {
	q, err := sess.Current(batch)
	if err != nil {
		return nil, err
	}
	if sess.State != StateAwaitingAnswer {
		return nil, fmt.Errorf("%w: submit in %s", ErrSessionState, sess.State)
	}

	record, err := s.SubmitAnswer(ctx, *q, choice)
	if err != nil {
		return nil, err
	}

	sess.Answers = append(sess.Answers, SessionAnswer{
		QuestionID: record.QuestionID,
		Choice:     record.Choice,
		Correct:    record.Correct,
	})
	sess.State = StateSubmitted
	return record, nil
}
