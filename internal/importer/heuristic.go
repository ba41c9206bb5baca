package importer

import (
	"strings"
	"unicode/utf8"

	"trivia-quiz-service/internal/sheet"
)

// Headers that hold known fields and are never taken for an explanation column.
var bannedExactHeaders = map[string]bool{
	"q": true, "a": true, "b": true, "c": true, "d": true, "ans": true,
}

var bannedHeaderTerms = []string{
	"question", "text", "option", "answer", "subject", "difficulty", "level",
}

// isFieldHeader reports whether the header is one the row mappers read a field from.
func isFieldHeader(h string) bool {
	lists := [][]string{textCandidates, answerCandidates, subjectCandidates, difficultyCandidates}
	for _, options := range optionCandidates {
		lists = append(lists, options)
	}
	for _, list := range lists {
		for _, candidate := range list {
			if h == strings.ToLower(candidate) {
				return true
			}
		}
	}
	return false
}

func isBannedHeader(header string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	if bannedExactHeaders[h] || isFieldHeader(h) {
		return true
	}
	for _, term := range bannedHeaderTerms {
		if strings.Contains(h, term) {
			return true
		}
	}
	return false
}

// hasExplanationHeader reports whether any row carries a header the explanation
// candidates would pick up, exactly or by containment.
func hasExplanationHeader(rows []sheet.Row) bool {
	for _, row := range rows {
		for _, cell := range row {
			header := strings.ToLower(strings.TrimSpace(cell.Header))
			for _, candidate := range explanationCandidates {
				if strings.Contains(header, strings.ToLower(candidate)) {
					return true
				}
			}
		}
	}
	return false
}

// DetectExplanationColumn guesses which header holds free-text explanations when
// no row has an explanation-like header. It counts, over the first
// opts.SampleRows rows, how often each non-field header holds a value longer
// than opts.MinTextLength characters. The header with the most hits wins; on a
// tie the header seen first wins.
func DetectExplanationColumn(rows []sheet.Row, opts Options) (string, bool) {
	opts = opts.withDefaults()
	if hasExplanationHeader(rows) {
		return "", false
	}

	sample := rows
	if len(sample) > opts.SampleRows {
		sample = sample[:opts.SampleRows]
	}

	hits := make(map[string]int)
	order := make([]string, 0)
	for _, row := range sample {
		for _, cell := range row {
			if isBannedHeader(cell.Header) {
				continue
			}
			if utf8.RuneCountInString(cell.Value) <= opts.MinTextLength {
				continue
			}
			if _, seen := hits[cell.Header]; !seen {
				order = append(order, cell.Header)
			}
			hits[cell.Header]++
		}
	}

	best, bestHits := "", 0
	for _, header := range order {
		if hits[header] > bestHits {
			best, bestHits = header, hits[header]
		}
	}
	if bestHits == 0 {
		return "", false
	}
	return best, true
}
