package bot

import (
	"errors"
	"strings"
	"unicode"
)

var errUnbalancedQuotes = errors.New("unbalanced quotes")

// splitArgs splits s on whitespace, keeping double-quoted runs together.
// Quotes are removed; a quoted empty string yields an empty argument.
func splitArgs(s string) ([]string, error) {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errUnbalancedQuotes
	}
	if started {
		out = append(out, cur.String())
	}
	return out, nil
}
