package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ReviewAction is the state transition requested for a line range.
type ReviewAction string

const (
	ActionReviewed ReviewAction = "Reviewed"
	ActionModified ReviewAction = "Modified"
	ActionIgnored  ReviewAction = "Ignored"
	ActionCleared  ReviewAction = "Cleared"
)

// Actions lists every review action in command order.
var Actions = []ReviewAction{ActionReviewed, ActionModified, ActionIgnored, ActionCleared}

// ParseReviewAction converts the wire form of an action.
func ParseReviewAction(s string) (ReviewAction, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown review action %q", s)
}

func (a ReviewAction) String() string { return string(a) }

// LineSet is a set of zero-based line indices.
type LineSet map[int]struct{}

// NewLineSet builds a set from a list of line indices.
func NewLineSet(lines ...int) LineSet {
	s := make(LineSet, len(lines))
	for _, l := range lines {
		s[l] = struct{}{}
	}
	return s
}

// Has reports whether line is in the set. A nil set contains nothing.
func (s LineSet) Has(line int) bool {
	_, ok := s[line]
	return ok
}

// Sorted returns the members in ascending order.
func (s LineSet) Sorted() []int {
	lines := make([]int, 0, len(s))
	for l := range s {
		lines = append(lines, l)
	}
	sort.Ints(lines)
	return lines
}

func (s LineSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON accepts a JSON array of integers. null decodes as empty.
func (s *LineSet) UnmarshalJSON(data []byte) error {
	var lines []int
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*s = NewLineSet(lines...)
	return nil
}

// ReviewState is the service's classification of a file's lines.
type ReviewState struct {
	Reviewed LineSet `json:"reviewed"`
	Modified LineSet `json:"modified"`
	Ignored  LineSet `json:"ignored"`
}

// LineClass is the highlight class a single line renders with.
type LineClass int

const (
	ClassNone LineClass = iota
	ClassReviewed
	ClassModified
	ClassIgnored
)

func (c LineClass) String() string {
	switch c {
	case ClassReviewed:
		return "reviewed"
	case ClassModified:
		return "modified"
	case ClassIgnored:
		return "ignored"
	default:
		return "none"
	}
}

// Classify returns the class of line. Reviewed wins over modified, which
// wins over ignored.
func (s ReviewState) Classify(line int) LineClass {
	switch {
	case s.Reviewed.Has(line):
		return ClassReviewed
	case s.Modified.Has(line):
		return ClassModified
	case s.Ignored.Has(line):
		return ClassIgnored
	default:
		return ClassNone
	}
}

// Highlights is the output of one render pass over a buffer.
type Highlights struct {
	Reviewed []int
	Modified []int
	Ignored  []int
}

// Lines returns the lines of the given class.
func (h Highlights) Lines(c LineClass) []int {
	switch c {
	case ClassReviewed:
		return h.Reviewed
	case ClassModified:
		return h.Modified
	case ClassIgnored:
		return h.Ignored
	default:
		return nil
	}
}

// Build classifies every line of a buffer with lineCount lines.
func (s ReviewState) Build(lineCount int) Highlights {
	h := Highlights{Reviewed: []int{}, Modified: []int{}, Ignored: []int{}}
	for i := 0; i < lineCount; i++ {
		switch s.Classify(i) {
		case ClassReviewed:
			h.Reviewed = append(h.Reviewed, i)
		case ClassModified:
			h.Modified = append(h.Modified, i)
		case ClassIgnored:
			h.Ignored = append(h.Ignored, i)
		}
	}
	return h
}

// Styles names the visual style used for each highlight class. Hosts map
// these to their own theme tokens.
type Styles struct {
	Reviewed string
	Modified string
	Ignored  string
}

// For returns the style identifier for c, or "" for ClassNone.
func (s Styles) For(c LineClass) string {
	switch c {
	case ClassReviewed:
		return s.Reviewed
	case ClassModified:
		return s.Modified
	case ClassIgnored:
		return s.Ignored
	default:
		return ""
	}
}

// DefaultStyles are the highlight group names declared by the Neovim host.
var DefaultStyles = Styles{
	Reviewed: "LineReviewReviewed",
	Modified: "LineReviewModified",
	Ignored:  "LineReviewIgnored",
}

// Selection is a line selection as reported by the host, possibly reversed.
type Selection struct {
	StartLine int
	EndLine   int
}

// LineRange is an inclusive, ordered range of zero-based lines.
type LineRange struct {
	Start int
	End   int
}

// NormalizeRange orders a selection so that Start <= End.
func NormalizeRange(start, end int) LineRange {
	if end < start {
		start, end = end, start
	}
	return LineRange{Start: start, End: end}
}

// Range normalizes the selection.
func (s Selection) Range() LineRange {
	return NormalizeRange(s.StartLine, s.EndLine)
}

func (r LineRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// BufferInfo describes the focused buffer of a host.
type BufferInfo struct {
	Path      string
	LineCount int
}

// UpdateRequest is the body of a review-state update.
type UpdateRequest struct {
	FileName    string       `json:"file_name"`
	StartLine   int          `json:"start_line"`
	EndLine     int          `json:"end_line"`
	ReviewState ReviewAction `json:"review_state"`
}

// Summary holds per-file review counts for status output.
type Summary struct {
	Path     string
	Reviewed int
	Modified int
	Ignored  int
	Err      error
}

// Summarize counts the lines of each class in a buffer of lineCount lines.
// A lineCount below zero counts the raw set sizes instead.
func Summarize(path string, state ReviewState, lineCount int) Summary {
	if lineCount < 0 {
		return Summary{
			Path:     path,
			Reviewed: len(state.Reviewed),
			Modified: len(state.Modified),
			Ignored:  len(state.Ignored),
		}
	}
	h := state.Build(lineCount)
	return Summary{
		Path:     path,
		Reviewed: len(h.Reviewed),
		Modified: len(h.Modified),
		Ignored:  len(h.Ignored),
	}
}
