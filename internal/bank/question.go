package bank

// Question is a single multiple-choice item. Questions are immutable once
// loaded; callers receive copies.
type Question struct {
	// ID is the record key in the bank, e.g. "cfd-003".
	ID string

	// Prompt is the question text.
	Prompt string

	// Options are the answer choices in display order. Unique.
	Options []string

	// CorrectOption is the index of the correct entry in Options.
	CorrectOption int

	// Explanation is shown after answering (train mode) or in the report.
	Explanation string

	Domain Domain
}

// IsCorrect reports whether selected is the correct option index.
// A negative selection (no answer) is never correct.
func (q Question) IsCorrect(selected int) bool {
	return selected >= 0 && selected == q.CorrectOption
}

// CorrectText returns the text of the correct option.
func (q Question) CorrectText() string {
	if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectOption]
}

// OptionText returns the text of option i, or "" when i is out of range.
func (q Question) OptionText(i int) string {
	if i < 0 || i >= len(q.Options) {
		return ""
	}
	return q.Options[i]
}

// QuestionSet is an ordered sequence of questions for one session.
type QuestionSet struct {
	Domain    Domain
	Questions []Question

	// Fallback is true when the requested domain matched nothing and the
	// unfiltered bank was returned instead.
	Fallback bool
}

// Len returns the number of questions in the set.
func (s QuestionSet) Len() int {
	return len(s.Questions)
}
