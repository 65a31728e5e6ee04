package dailyquiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Question categories produced by the generator and the fallback bank
const (
	CategoryAptitude  = "aptitude"
	CategoryTechnical = "technical"
)

// Option is one answer choice, referenced by its key (A, B, C, D)
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Options is an ordered set of answer choices. It encodes to and decodes from
// a JSON object, keeping the member order for display.
type Options []Option

// Text returns the text stored under key
func (o Options) Text(key string) (string, bool) {
	for _, opt := range o {
		if opt.Key == key {
			return opt.Text, true
		}
	}
	return "", false
}

// Keys returns the option keys in display order
func (o Options) Keys() []string {
	keys := make([]string, len(o))
	for i, opt := range o {
		keys[i] = opt.Key
	}
	return keys
}

// MarshalJSON writes the options as a JSON object in display order
func (o Options) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, opt := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(opt.Key)
		if err != nil {
			return nil, err
		}
		text, err := json.Marshal(opt.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(text)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object into options, preserving member order.
// Non-string values are kept as their literal JSON text.
func (o *Options) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read options: %w", err)
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("options must be a JSON object, got %v", tok)
	}

	opts := Options{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read option key: %w", err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to read option %q: %w", key, err)
		}

		text := strings.TrimSpace(string(raw))
		if strings.HasPrefix(text, `"`) {
			if err := json.Unmarshal(raw, &text); err != nil {
				return fmt.Errorf("failed to read option %q: %w", key, err)
			}
		}
		opts = append(opts, Option{Key: key, Text: text})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to read options: %w", err)
	}

	*o = opts
	return nil
}

// RawQuestion is a question as the LLM (or the fallback bank) describes it.
// Every field is optional so that missing keys can be told apart from empty ones.
type RawQuestion struct {
	Type        *string `json:"type" validate:"required"`
	SubCategory *string `json:"sub_category" validate:"required"`
	Question    *string `json:"question" validate:"required"`
	Options     Options `json:"options" validate:"required"`
	Answer      *string `json:"answer" validate:"required"`
	Explanation *string `json:"explanation" validate:"required"`
}

// Question is a quiz item as stored in the daily cache and shown to the user
type Question struct {
	ID            int64   `json:"id"`
	Category      string  `json:"category"`
	SubCategory   string  `json:"sub_category"`
	Prompt        string  `json:"prompt"`
	Options       Options `json:"options"`
	CorrectOption string  `json:"correct_option"`
	Explanation   string  `json:"explanation"`
}

// CorrectText returns the text of the correct option
func (q Question) CorrectText() string {
	text, _ := q.Options.Text(q.CorrectOption)
	return text
}

// AnswerRecord is one submitted answer. Records are append-only.
type AnswerRecord struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"question_id"`
	Choice     string    `json:"choice"`
	Correct    bool      `json:"correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

// TitleCase upper-cases the first letter of every word, for display of
// categories and topics
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
