package dailyquiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleQuestionsAreStable(t *testing.T) {
	first := SampleQuestions()
	assert.Len(t, first, 4)
	assert.Equal(t, first, SampleQuestions())

	// callers get their own copy
	*first[0].Question = "changed"
	first[0].Options[0].Text = "changed"
	assert.NotEqual(t, "changed", *SampleQuestions()[0].Question)
	assert.NotEqual(t, "changed", SampleQuestions()[0].Options[0].Text)
}

func TestSampleQuestionsPassValidation(t *testing.T) {
	questions := SampleQuestions()
	assert.Len(t, NewQuestionChecker().Validate(questions), len(questions))

	counts := map[string]int{}
	answers := make([]string, len(questions))
	for i, q := range questions {
		counts[*q.Type]++
		answers[i] = *q.Answer
	}
	assert.Equal(t, map[string]int{CategoryAptitude: 2, CategoryTechnical: 2}, counts)
	assert.Equal(t, []string{"C", "B", "B", "B"}, answers)
}
