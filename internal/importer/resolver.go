package importer

import (
	"strings"

	"trivia-quiz-service/internal/sheet"
)

// Resolve finds the value for a field whose column may go by several names.
//
// Every candidate is first compared to every header exactly (trimmed, case
// insensitive). Only when that whole pass finds nothing, and fuzzy is set, is a
// header accepted because it contains one of the candidates. Single-letter
// candidates take part in the exact pass only. Empty cells never count as a hit.
func Resolve(row sheet.Row, candidates []string, fuzzy bool) (string, bool) {
	for _, candidate := range candidates {
		want := strings.ToLower(strings.TrimSpace(candidate))
		for _, cell := range row {
			if strings.ToLower(strings.TrimSpace(cell.Header)) != want {
				continue
			}
			if v := strings.TrimSpace(cell.Value); v != "" {
				return v, true
			}
		}
	}

	if !fuzzy {
		return "", false
	}

	for _, cell := range row {
		header := strings.ToLower(cell.Header)
		for _, candidate := range candidates {
			term := strings.ToLower(strings.TrimSpace(candidate))
			if len(term) < 2 || !strings.Contains(header, term) {
				continue
			}
			if v := strings.TrimSpace(cell.Value); v != "" {
				return v, true
			}
		}
	}
	return "", false
}
