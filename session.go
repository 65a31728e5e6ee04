package dailyquiz

import "fmt"

// SessionState is the position of a session in the quiz walk
type SessionState string

const (
	StateAwaitingAnswer SessionState = "awaiting_answer"
	StateSubmitted      SessionState = "submitted"
	StateComplete       SessionState = "complete"
)

// SessionAnswer is what a session remembers about one submitted answer
type SessionAnswer struct {
	QuestionID int64
	Choice     string
	Correct    bool
}

// Session walks one user through a day's batch:
// awaiting_answer -> submitted -> awaiting_answer (next) ... -> complete.
// It holds no questions itself so it stays small enough for a cookie.
type Session struct {
	Date        string
	Total       int
	Index       int
	State       SessionState
	Answers     []SessionAnswer
	QuestionIDs []int64
}

// NewSession starts a session at the first question of a batch of total
func NewSession(date string, total int) *Session {
	s := &Session{Date: date, Total: total, State: StateAwaitingAnswer}
	if total == 0 {
		s.State = StateComplete
	}
	return s
}

// StartSession starts a session bound to the ids of batch
func StartSession(date string, batch []Question) *Session {
	s := NewSession(date, len(batch))
	s.QuestionIDs = make([]int64, len(batch))
	for i, q := range batch {
		s.QuestionIDs[i] = q.ID
	}
	return s
}

// Matches reports whether the session was started on batch for date. A
// batch regenerated with the same size carries new ids and does not match.
func (s *Session) Matches(date string, batch []Question) bool {
	if s.Date != date || s.Total != len(batch) || len(s.QuestionIDs) != len(batch) {
		return false
	}
	for i, q := range batch {
		if s.QuestionIDs[i] != q.ID {
			return false
		}
	}
	return true
}

// Current returns the question the session is on
func (s *Session) Current(batch []Question) (*Question, error) {
	if s.State == StateComplete {
		return nil, fmt.Errorf("%w: quiz is complete", ErrSessionState)
	}
	if len(batch) != s.Total || s.Index >= len(batch) {
		return nil, fmt.Errorf("%w: batch has %d questions, session expects %d", ErrSessionState, len(batch), s.Total)
	}
	return &batch[s.Index], nil
}

// LastAnswer returns the most recently submitted answer
func (s *Session) LastAnswer() (SessionAnswer, bool) {
	if len(s.Answers) == 0 {
		return SessionAnswer{}, false
	}
	return s.Answers[len(s.Answers)-1], true
}

// Next moves past a submitted question
func (s *Session) Next() error {
	if s.State != StateSubmitted {
		return fmt.Errorf("%w: next in %s", ErrSessionState, s.State)
	}
	s.Index++
	if s.Index >= s.Total {
		s.State = StateComplete
	} else {
		s.State = StateAwaitingAnswer
	}
	return nil
}

// Progress is the answered fraction, counting a just-submitted question
func (s *Session) Progress() float64 {
	if s.Total == 0 {
		return 1
	}
	answered := s.Index
	if s.State == StateSubmitted {
		answered++
	}
	if answered > s.Total {
		answered = s.Total
	}
	return float64(answered) / float64(s.Total)
}

// SummaryItem is one answered question in the end-of-quiz report
type SummaryItem struct {
	Question Question
	Choice   string
	Correct  bool
}

// Summary is the end-of-quiz report
type Summary struct {
	Score int
	Total int
	Items []SummaryItem
}

// Summarize scores answers against batch. Answers whose question is not in
// the batch are ignored.
func Summarize(batch []Question, answers []SessionAnswer) Summary {
	byID := make(map[int64]Question, len(batch))
	for _, q := range batch {
		byID[q.ID] = q
	}

	summary := Summary{Total: len(batch)}
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		if a.Correct {
			summary.Score++
		}
		summary.Items = append(summary.Items, SummaryItem{Question: q, Choice: a.Choice, Correct: a.Correct})
	}
	return summary
}
