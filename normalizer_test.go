package dailyquiz

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare array", input: `[{"a":1}]`, want: `[{"a":1}]`},
		{name: "json fence", input: "```json\n[{\"a\":1}]\n```", want: `[{"a":1}]`},
		{name: "plain fence", input: "```\n[1, 2]\n```", want: `[1, 2]`},
		{name: "surrounding prose", input: "Sure! Here it is: [1, [2]] Hope it helps.", want: `[1, [2]]`},
		{name: "object wrapper", input: `{"questions": [{"a": 1}]}`, want: `[{"a": 1}]`},
		{name: "no brackets", input: "I cannot help with that.", wantErr: true},
		{name: "reversed brackets", input: "] then [", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONArray(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrNoJSONArray), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuestions(t *testing.T) {
	questions, err := ParseQuestions(fencedReply)
	require.NoError(t, err)
	require.Len(t, questions, 4)

	assert.Equal(t, "P(heads)?", *questions[0].Question)
	assert.Equal(t, []string{"A", "B", "C", "D"}, questions[0].Options.Keys())
	assert.Nil(t, questions[3].Explanation)

	_, err = ParseQuestions(`[{"type": "aptitude",]`)
	assert.True(t, errors.Is(err, ErrMalformedOutput), "got %v", err)

	_, err = ParseQuestions("no array here")
	assert.True(t, errors.Is(err, ErrNoJSONArray), "got %v", err)
}

func optionPairs(opts Options) []string {
	pairs := make([]string, len(opts))
	for i, opt := range opts {
		pairs[i] = opt.Key + "=" + opt.Text
	}
	sort.Strings(pairs)
	return pairs
}

func TestShufflePreservesContent(t *testing.T) {
	n := NewSeededNormalizer(1)
	input := SampleQuestions()

	for run := 0; run < 200; run++ {
		out := n.Shuffle(input)
		require.Len(t, out, len(input))

		for i := range input {
			in, got := input[i], out[i]
			assert.Equal(t, in.Type, got.Type)
			assert.Equal(t, in.SubCategory, got.SubCategory)
			assert.Equal(t, in.Question, got.Question)
			assert.Equal(t, in.Explanation, got.Explanation)
			assert.Equal(t, optionPairs(in.Options), optionPairs(got.Options))

			wantText, _ := in.Options.Text(*in.Answer)
			gotText, ok := got.Options.Text(*got.Answer)
			require.True(t, ok)
			assert.Equal(t, wantText, gotText)
		}
	}
}

func TestShuffleReachesEveryOrdering(t *testing.T) {
	n := NewSeededNormalizer(42)
	q := rawQuestion(CategoryAptitude, "Pick one", "A", abcd("w", "x", "y", "z"))

	seen := map[string]int{}
	for run := 0; run < 5000; run++ {
		out := n.Shuffle([]RawQuestion{q})
		seen[strings.Join(out[0].Options.Keys(), "")]++
	}

	assert.Len(t, seen, 24)
	for order, count := range seen {
		assert.Greater(t, count, 100, "ordering %s is underrepresented", order)
	}
}

func TestShuffleKeepsUnknownAnswer(t *testing.T) {
	n := NewSeededNormalizer(7)
	q := rawQuestion(CategoryTechnical, "Pick one", "E", abcd("w", "x", "y", "z"))

	out := n.Shuffle([]RawQuestion{q})
	require.NotNil(t, out[0].Answer)
	assert.Equal(t, "E", *out[0].Answer)
}

func TestShuffleHandlesMissingFields(t *testing.T) {
	n := NewSeededNormalizer(7)
	input := []RawQuestion{
		{Question: strPtr("no options")},
		{Options: abcd("1", "2", "3", "4")},
	}

	out := n.Shuffle(input)
	require.Len(t, out, 2)
	assert.Nil(t, out[0].Options)
	assert.Nil(t, out[1].Answer)
	assert.Equal(t, optionPairs(input[1].Options), optionPairs(out[1].Options))
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	n := NewSeededNormalizer(3)
	input := SampleQuestions()
	before := SampleQuestions()

	for run := 0; run < 20; run++ {
		n.Shuffle(input)
	}
	assert.Equal(t, before, input)
}

func TestAssignIDs(t *testing.T) {
	raw := []RawQuestion{
		rawQuestion(CategoryAptitude, "First", "B", abcd("1", "2", "3", "4")),
		{},
	}

	questions := AssignIDs(raw)
	require.Len(t, questions, 2)

	assert.Equal(t, Question{
		ID:            1,
		Category:      CategoryAptitude,
		SubCategory:   "Topic",
		Prompt:        "First",
		Options:       abcd("1", "2", "3", "4"),
		CorrectOption: "B",
		Explanation:   "Because.",
	}, questions[0])

	assert.Equal(t, Question{
		ID:          2,
		Category:    "unknown",
		SubCategory: "General",
		Options:     Options{},
	}, questions[1])
}
