// Package sheet turns the published store sheet (CSV text) into store records:
// it tokenizes lines, normalizes headers, binds columns to record fields and
// infers the retail chain when the sheet leaves it blank.
package sheet

import (
	"strings"
)

// Tokenize splits CSV text into rows of trimmed cells.
//
// The sheet export is handled line by line: quotes never span lines, blank
// lines are skipped and a trailing "\r" is removed. Malformed lines still
// yield cells; an unterminated quote simply runs to the end of its line.
func Tokenize(text string) [][]string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, ParseLine(line))
	}
	return rows
}

// ParseLine splits one CSV line on commas outside double quotes.
// A doubled quote inside a quoted run is a literal quote character.
func ParseLine(line string) []string {
	var (
		cells   []string
		current strings.Builder
		inQuote bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' && inQuote && i+1 < len(runes) && runes[i+1] == '"':
			current.WriteRune('"')
			i++
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	cells = append(cells, strings.TrimSpace(current.String()))
	return cells
}
