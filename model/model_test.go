package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		want       LineRange
	}{
		{name: "reversed selection is swapped", start: 5, end: 2, want: LineRange{Start: 2, End: 5}},
		{name: "ordered selection is unchanged", start: 2, end: 5, want: LineRange{Start: 2, End: 5}},
		{name: "single line", start: 7, end: 7, want: LineRange{Start: 7, End: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRange(tt.start, tt.end))
			assert.Equal(t, tt.want, Selection{StartLine: tt.start, EndLine: tt.end}.Range())
		})
	}
}

func TestReviewState_Build_DisjointSets(t *testing.T) {
	state := ReviewState{
		Reviewed: NewLineSet(0, 3),
		Modified: NewLineSet(1),
		Ignored:  NewLineSet(4, 5),
	}

	h := state.Build(6)

	assert.Equal(t, []int{0, 3}, h.Reviewed)
	assert.Equal(t, []int{1}, h.Modified)
	assert.Equal(t, []int{4, 5}, h.Ignored)

	seen := map[int]int{}
	for _, c := range []LineClass{ClassReviewed, ClassModified, ClassIgnored} {
		for _, l := range h.Lines(c) {
			seen[l]++
		}
	}
	for line, n := range seen {
		assert.Equalf(t, 1, n, "line %d highlighted more than once", line)
	}
	_, hasTwo := seen[2]
	assert.False(t, hasTwo, "unlisted line must not be highlighted")
}

func TestReviewState_Build_Precedence(t *testing.T) {
	state := ReviewState{
		Reviewed: NewLineSet(1),
		Modified: NewLineSet(1, 2),
		Ignored:  NewLineSet(1, 2, 3),
	}

	h := state.Build(4)

	assert.Equal(t, []int{1}, h.Reviewed)
	assert.Equal(t, []int{2}, h.Modified)
	assert.Equal(t, []int{3}, h.Ignored)
	assert.Equal(t, ClassNone, state.Classify(0))
}

func TestReviewState_Build_IgnoresLinesPastBuffer(t *testing.T) {
	state := ReviewState{Reviewed: NewLineSet(0, 10)}

	h := state.Build(3)

	assert.Equal(t, []int{0}, h.Reviewed)
	assert.Empty(t, h.Modified)
}

func TestReviewState_UnmarshalJSON(t *testing.T) {
	var state ReviewState
	err := json.Unmarshal([]byte(`{"reviewed":[2,1],"modified":null}`), &state)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, state.Reviewed.Sorted())
	assert.Empty(t, state.Modified)
	assert.Empty(t, state.Ignored)
	assert.False(t, state.Ignored.Has(0))
}

func TestParseReviewAction(t *testing.T) {
	for _, a := range Actions {
		got, err := ParseReviewAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	_, err := ParseReviewAction("reviewed")
	assert.Error(t, err)
}

func TestUpdateRequest_JSON(t *testing.T) {
	body, err := json.Marshal(UpdateRequest{
		FileName:    "/src/main.go",
		StartLine:   2,
		EndLine:     5,
		ReviewState: ActionIgnored,
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"file_name":"/src/main.go","start_line":2,"end_line":5,"review_state":"Ignored"}`, string(body))
}

func TestSummarize(t *testing.T) {
	state := ReviewState{
		Reviewed: NewLineSet(0, 1, 9),
		Modified: NewLineSet(1),
		Ignored:  NewLineSet(2),
	}

	got := Summarize("a.go", state, 5)
	assert.Equal(t, Summary{Path: "a.go", Reviewed: 2, Modified: 0, Ignored: 1}, got)

	raw := Summarize("a.go", state, -1)
	assert.Equal(t, 3, raw.Reviewed)
	assert.Equal(t, 1, raw.Modified)
}
