package dailyquiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsKeepObjectOrder(t *testing.T) {
	var opts Options
	require.NoError(t, json.Unmarshal([]byte(`{"C": "32", "A": "20", "D": 48, "B": "24"}`), &opts))

	assert.Equal(t, []string{"C", "A", "D", "B"}, opts.Keys())

	text, ok := opts.Text("D")
	assert.True(t, ok)
	assert.Equal(t, "48", text)

	_, ok = opts.Text("E")
	assert.False(t, ok)

	out, err := json.Marshal(opts)
	require.NoError(t, err)
	assert.Equal(t, `{"C":"32","A":"20","D":"48","B":"24"}`, string(out))
}

func TestOptionsPresence(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantNil bool
		wantLen int
	}{
		{name: "absent", input: `{}`, wantNil: true},
		{name: "null", input: `{"options": null}`, wantNil: true},
		{name: "empty object", input: `{"options": {}}`, wantNil: false, wantLen: 0},
		{name: "two options", input: `{"options": {"A": "x", "B": "y"}}`, wantNil: false, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q RawQuestion
			require.NoError(t, json.Unmarshal([]byte(tt.input), &q))
			if tt.wantNil {
				assert.Nil(t, q.Options)
				return
			}
			require.NotNil(t, q.Options)
			assert.Len(t, q.Options, tt.wantLen)
		})
	}
}

func TestOptionsRejectNonObject(t *testing.T) {
	var q RawQuestion
	err := json.Unmarshal([]byte(`{"options": ["A", "B"]}`), &q)
	assert.Error(t, err)
}

func TestQuestionCorrectText(t *testing.T) {
	q := Question{Options: abcd("1", "2", "3", "4"), CorrectOption: "C"}
	assert.Equal(t, "3", q.CorrectText())

	q.CorrectOption = "Z"
	assert.Equal(t, "", q.CorrectText())
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Sequences & Series", TitleCase("sequences & series"))
	assert.Equal(t, "Aptitude", TitleCase("aptitude"))
	assert.Equal(t, "Élan Vital", TitleCase("élan vital"))
	assert.Equal(t, "", TitleCase(""))
}
