package checklist

import (
	"math"

	"github.com/rotisserie/eris"
)

// CompletionMode selects how hidden required fields are treated when
// computing the completion percentage.
type CompletionMode string

const (
	// CompletionCountHidden counts every required field, visible or not.
	// Stored completion percentages were computed this way.
	CompletionCountHidden CompletionMode = "count_hidden"
	// CompletionVisibleOnly skips required fields hidden by their own or
	// their section's conditional.
	CompletionVisibleOnly CompletionMode = "visible_only"
)

// DefaultCompletionMode is the mode used by CalculateCompletionPercentage.
const DefaultCompletionMode = CompletionCountHidden

// ParseCompletionMode validates a configured mode name.
func ParseCompletionMode(s string) (CompletionMode, error) {
	switch m := CompletionMode(s); m {
	case CompletionCountHidden, CompletionVisibleOnly:
		return m, nil
	case "":
		return DefaultCompletionMode, nil
	}
	return "", eris.Errorf("checklist: unknown completion mode %q", s)
}

// CalculateCompletionPercentage returns the share of required fields that
// hold a non-blank value, rounded to an integer in [0, 100]. Templates
// without required fields are 100% complete. Visibility is ignored.
func CalculateCompletionPercentage(t *Template, data Data) int {
	return CalculateCompletion(DefaultCompletionMode, t, data)
}

// CalculateCompletion is CalculateCompletionPercentage with an explicit mode.
func CalculateCompletion(mode CompletionMode, t *Template, data Data) int {
	total, done := 0, 0
	for si := range t.Sections {
		sec := &t.Sections[si]
		for fi := range sec.Fields {
			f := &sec.Fields[fi]
			if !countsTowardCompletion(mode, sec, f, data) {
				continue
			}
			total++
			if !data.Get(f.Name).IsBlank() {
				done++
			}
		}
	}
	return percent(done, total)
}

// Completion computes the completion percentage using the indexed template.
func (idx *Index) Completion(mode CompletionMode, data Data) int {
	total, done := 0, 0
	for i, f := range idx.fields {
		if !countsTowardCompletion(mode, idx.sectionOf(i), f, data) {
			continue
		}
		total++
		if !data.Get(f.Name).IsBlank() {
			done++
		}
	}
	return percent(done, total)
}

func countsTowardCompletion(mode CompletionMode, sec *Section, f *FieldSchema, data Data) bool {
	if !f.IsRequired() {
		return false
	}
	if mode == CompletionVisibleOnly {
		return IsSectionVisible(sec, data) && IsFieldVisible(f, data)
	}
	return true
}

func percent(done, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Floor(float64(done)/float64(total)*100 + 0.5))
}
