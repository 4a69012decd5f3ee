package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
)

// directivePattern matches a directive delimited by a non-word character or
// end of text. The delimiter is not part of the match.
var directivePattern = buildDirectivePattern()

func buildDirectivePattern() *regexp.Regexp {
	kinds := make([]string, len(domain.Directives))
	for i, d := range domain.Directives {
		kinds[i] = regexp.QuoteMeta(strings.TrimPrefix(string(d), "%%"))
	}
	return regexp.MustCompile(`%%(?:` + strings.Join(kinds, "|") + `)\b`)
}

func countDirectives(text string) int {
	return len(directivePattern.FindAllStringIndex(text, -1))
}

// scan is the second pass: it replaces every directive in text with either
// the inline literal of its value (Direct) or a Placeholder token (Prepare).
func (c *Compiler) scan(text string, values []any, mode domain.Mode) ([]domain.Token, error) {
	matches := directivePattern.FindAllStringIndex(text, -1)
	if len(matches) != len(values) {
		return nil, fmt.Errorf("%w: %d directives, %d values", ErrDirectiveArity, len(matches), len(values))
	}

	var tokens []domain.Token
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, domain.LiteralToken(lit.String()))
			lit.Reset()
		}
	}

	last := 0
	for i, m := range matches {
		lit.WriteString(text[last:m[0]])
		d := domain.Directive(text[m[0]:m[1]])

		switch mode {
		case domain.Direct:
			s, err := literal(c.dialect, d, values[i])
			if err != nil {
				return nil, fmt.Errorf("value %d: %w", i+1, err)
			}
			lit.WriteString(s)
		case domain.Prepare:
			flush()
			tokens = append(tokens, domain.PlaceholderToken(i+1, d))
		default:
			return nil, fmt.Errorf("unknown compilation mode %d", mode)
		}

		last = m[1]
	}
	lit.WriteString(text[last:])
	flush()

	return tokens, nil
}
