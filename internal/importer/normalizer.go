// Package importer normalizes uploaded question files into quiz questions.
package importer

import (
	"io"
	"strconv"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/sheet"
)

const (
	DefaultSampleRows    = 10
	DefaultMinTextLength = 15
)

// Options tunes the explanation column heuristic.
type Options struct {
	// SampleRows is how many leading rows are scanned for long free text.
	// Zero or less scans DefaultSampleRows.
	SampleRows int
	// MinTextLength is the length a value must exceed to count as free text.
	// Zero counts any non-empty value.
	MinTextLength int
}

// DefaultOptions is the tuning used when nothing is configured.
func DefaultOptions() Options {
	return Options{SampleRows: DefaultSampleRows, MinTextLength: DefaultMinTextLength}
}

func (o Options) withDefaults() Options {
	if o.SampleRows <= 0 {
		o.SampleRows = DefaultSampleRows
	}
	if o.MinTextLength < 0 {
		o.MinTextLength = 0
	}
	return o
}

// Normalizer parses question files. It holds no state between calls.
type Normalizer struct {
	opts Options
}

func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts.withDefaults()}
}

// Parse decodes an uploaded file and normalizes its rows.
// It fails with domain.ErrDecode or domain.ErrNoValidQuestions and never
// returns a partial list.
func (n *Normalizer) Parse(r io.Reader, filename string) ([]domain.Question, error) {
	rows, err := sheet.Decode(r, filename)
	if err != nil {
		return nil, err
	}
	return n.Normalize(rows)
}

// Normalize turns decoded rows into questions. Rows without question text, at
// least two options and an answer are dropped silently. Question ids are
// "file-<row index>", so dropped rows leave gaps in the id sequence.
func (n *Normalizer) Normalize(rows []sheet.Row) ([]domain.Question, error) {
	explanationColumn, _ := DetectExplanationColumn(rows, n.opts)

	questions := make([]domain.Question, 0, len(rows))
	for i, row := range rows {
		m := mapRow(row, explanationColumn)
		if m.text == "" || len(m.options) < 2 || m.correctAnswer == "" {
			continue
		}
		questions = append(questions, domain.Question{
			ID:            "file-" + strconv.Itoa(i),
			Text:          m.text,
			Options:       m.options,
			CorrectAnswer: m.correctAnswer,
			Explanation:   m.explanation,
			Subject:       m.subject,
			Difficulty:    m.difficulty,
		})
	}

	if len(questions) == 0 {
		return nil, domain.ErrNoValidQuestions
	}
	return questions, nil
}
