package dailyquiz

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// ExtractJSONArray pulls the outermost [...] out of free-form model output,
// after dropping a surrounding code fence if there is one.
func ExtractJSONArray(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
	}

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: output length %d", ErrNoJSONArray, len(text))
	}
	return trimmed[start : end+1], nil
}

// ParseQuestions extracts and decodes the question array in text
func ParseQuestions(text string) ([]RawQuestion, error) {
	array, err := ExtractJSONArray(text)
	if err != nil {
		return nil, err
	}

	var questions []RawQuestion
	if err := json.Unmarshal([]byte(array), &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return questions, nil
}

// Normalizer re-randomizes option order so the model's placement of the
// correct answer carries no signal.
type Normalizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewNormalizer creates a normalizer seeded from the clock
func NewNormalizer() *Normalizer {
	return NewSeededNormalizer(time.Now().UnixNano())
}

// NewSeededNormalizer creates a normalizer with a fixed seed
func NewSeededNormalizer(seed int64) *Normalizer {
	return &Normalizer{rng: rand.New(rand.NewSource(seed))}
}

// Shuffle returns a copy of questions with every question's options in a
// fresh uniformly random order. Keys stay attached to their texts; the
// answer key is moved to whichever key now holds the pre-shuffle correct text,
// and left as is when no key does.
func (n *Normalizer) Shuffle(questions []RawQuestion) []RawQuestion {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]RawQuestion, len(questions))
	for i, q := range questions {
		out[i] = n.shuffleOne(q)
	}
	return out
}

func (n *Normalizer) shuffleOne(q RawQuestion) RawQuestion {
	if q.Options == nil {
		return q
	}

	var correctText string
	var hasCorrect bool
	if q.Answer != nil {
		correctText, hasCorrect = q.Options.Text(*q.Answer)
	}

	shuffled := make(Options, len(q.Options))
	copy(shuffled, q.Options)
	n.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	q.Options = shuffled

	if hasCorrect {
		for _, opt := range shuffled {
			if opt.Text == correctText {
				key := opt.Key
				q.Answer = &key
				break
			}
		}
	}
	return q
}

// AssignIDs turns raw records into questions with positional ids starting at
// 1, filling absent fields with defaults.
func AssignIDs(raw []RawQuestion) []Question {
	questions := make([]Question, len(raw))
	for i, r := range raw {
		options := r.Options
		if options == nil {
			options = Options{}
		}
		questions[i] = Question{
			ID:            int64(i + 1),
			Category:      valueOr(r.Type, "unknown"),
			SubCategory:   valueOr(r.SubCategory, "General"),
			Prompt:        valueOr(r.Question, ""),
			Options:       options,
			CorrectOption: valueOr(r.Answer, ""),
			Explanation:   valueOr(r.Explanation, ""),
		}
	}
	return questions
}

func valueOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
