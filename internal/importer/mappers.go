package importer

import (
	"strings"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/sheet"
)

var (
	textCandidates = []string{"Question", "Text", "Q", "Prompt"}

	optionCandidates = [4][]string{
		{"Option A", "A", "option1", "Option 1", "Choice A"},
		{"Option B", "B", "option2", "Option 2", "Choice B"},
		{"Option C", "C", "option3", "Option 3", "Choice C"},
		{"Option D", "D", "option4", "Option 4", "Choice D"},
	}

	answerCandidates     = []string{"Correct Answer", "Answer", "correct", "Ans", "Key"}
	subjectCandidates    = []string{"Subject", "Topic", "Category"}
	difficultyCandidates = []string{"Difficulty", "Level"}

	explanationCandidates = []string{
		"Explanation", "explain", "Reason", "Note", "Rationale",
		"Feedback", "Context", "Description", "Details", "Info",
	}
)

type subjectRule struct {
	terms []string
	tag   domain.Subject
}

// Evaluated in order; the first match wins, so "General Science" is science.
var subjectRules = []subjectRule{
	{terms: []string{"geo"}, tag: domain.SubjectGeography},
	{terms: []string{"sci"}, tag: domain.SubjectScience},
	{terms: []string{"nut", "food"}, tag: domain.SubjectNutrition},
	{terms: []string{"tech", "comp"}, tag: domain.SubjectTechnology},
	{terms: []string{"math"}, tag: domain.SubjectMath},
	{terms: []string{"gen"}, tag: domain.SubjectGeneral},
}

// CanonicalSubject maps a free-text subject label onto a subject tag.
func CanonicalSubject(raw string) (domain.Subject, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	for _, rule := range subjectRules {
		for _, term := range rule.terms {
			if strings.Contains(s, term) {
				return rule.tag, true
			}
		}
	}
	return "", false
}

type difficultyRule struct {
	values []string
	tag    domain.Difficulty
}

var difficultyRules = []difficultyRule{
	{values: []string{"easy", "1"}, tag: domain.DifficultyEasy},
	{values: []string{"medium", "med", "2"}, tag: domain.DifficultyMedium},
	{values: []string{"hard", "3"}, tag: domain.DifficultyHard},
}

// CanonicalDifficulty maps a free-text difficulty label onto Easy, Medium or Hard.
func CanonicalDifficulty(raw string) (domain.Difficulty, bool) {
	d := strings.ToLower(strings.TrimSpace(raw))
	for _, rule := range difficultyRules {
		for _, v := range rule.values {
			if d == v {
				return rule.tag, true
			}
		}
	}
	return "", false
}

// resolveAnswer turns a single A-D letter into the text of that option when the
// option exists. An out-of-range letter is kept as is.
func resolveAnswer(raw string, options []string) string {
	if len(raw) != 1 {
		return raw
	}
	letter := strings.ToUpper(raw)[0]
	if letter < 'A' || letter > 'D' {
		return raw
	}
	idx := int(letter - 'A')
	if idx < len(options) {
		return options[idx]
	}
	return raw
}

// mappedRow is what a single row yields before validation.
type mappedRow struct {
	text          string
	options       []string
	correctAnswer string
	explanation   string
	subject       domain.Subject
	difficulty    domain.Difficulty
}

func mapRow(row sheet.Row, explanationColumn string) mappedRow {
	var m mappedRow

	m.text, _ = Resolve(row, textCandidates, true)

	m.options = make([]string, 0, len(optionCandidates))
	for _, candidates := range optionCandidates {
		if v, ok := Resolve(row, candidates, false); ok {
			m.options = append(m.options, v)
		}
	}

	if raw, ok := Resolve(row, answerCandidates, false); ok {
		m.correctAnswer = resolveAnswer(raw, m.options)
	}

	if raw, ok := Resolve(row, subjectCandidates, true); ok {
		m.subject, _ = CanonicalSubject(raw)
	}
	if raw, ok := Resolve(row, difficultyCandidates, true); ok {
		m.difficulty, _ = CanonicalDifficulty(raw)
	}

	if v, ok := Resolve(row, explanationCandidates, true); ok {
		m.explanation = v
	} else if explanationColumn != "" {
		if v, ok := row.Get(explanationColumn); ok {
			m.explanation = strings.TrimSpace(v)
		}
	}
	return m
}
