package dailyquiz

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// QuestionChecker filters out records that cannot be stored or displayed
type QuestionChecker struct {
	validate *validator.Validate
}

// NewQuestionChecker creates a checker for RawQuestion records
func NewQuestionChecker() *QuestionChecker {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(checkOptions, RawQuestion{})

	return &QuestionChecker{validate: v}
}

// checkOptions rejects option sets where the answer cannot be located
// unambiguously: repeated keys, repeated texts, or an answer key that is not
// among the options.
func checkOptions(sl validator.StructLevel) {
	q := sl.Current().Interface().(RawQuestion)
	if q.Options == nil {
		return
	}

	keys := make(map[string]bool, len(q.Options))
	texts := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		if keys[opt.Key] {
			sl.ReportError(q.Options, "options", "Options", "unique_keys", opt.Key)
			return
		}
		if texts[opt.Text] {
			sl.ReportError(q.Options, "options", "Options", "unique_texts", opt.Text)
			return
		}
		keys[opt.Key] = true
		texts[opt.Text] = true
	}

	if q.Answer != nil && !keys[*q.Answer] {
		sl.ReportError(q.Answer, "answer", "Answer", "in_options", *q.Answer)
	}
}

// Check returns the names of missing fields and of fields that failed some
// other rule. Both are empty for a valid record.
func (qc *QuestionChecker) Check(q RawQuestion) (missing, invalid []string) {
	err := qc.validate.Struct(q)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, []string{err.Error()}
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field()+":"+fe.Tag())
		}
	}
	return missing, invalid
}

// Validate keeps, in order, the questions that pass Check. Dropped questions
// are logged and counted; the batch as a whole never fails.
func (qc *QuestionChecker) Validate(questions []RawQuestion) []RawQuestion {
	valid := make([]RawQuestion, 0, len(questions))
	for i, q := range questions {
		missing, invalid := qc.Check(q)
		if len(missing) == 0 && len(invalid) == 0 {
			valid = append(valid, q)
			continue
		}

		logger.Warn("Skipping malformed question",
			zap.Int("index", i),
			zap.Strings("missing", missing),
			zap.Strings("invalid", invalid),
		)
		questionsDropped.Inc()
	}

	VerboseLog("Validated %d of %d questions", len(valid), len(questions))
	return valid
}
