package domain

import "strings"

// Mode selects how dynamic values are compiled.
type Mode int

const (
	// Direct renders every value inline as literal SQL.
	Direct Mode = iota
	// Prepare renders every value as a placeholder.
	Prepare
)

func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case Prepare:
		return "prepare"
	default:
		return "unknown"
	}
}

// Directive is the textual marker for a dynamic value before substitution.
type Directive string

// Directive vocabulary, one kind per supported value type.
const (
	DirectiveString    Directive = "%%s"
	DirectiveInteger   Directive = "%%i"
	DirectiveFloat     Directive = "%%f"
	DirectiveBool      Directive = "%%b"
	DirectiveTimestamp Directive = "%%t"
	DirectiveNull      Directive = "%%n"
)

// Directives lists the vocabulary.
var Directives = []Directive{
	DirectiveString,
	DirectiveInteger,
	DirectiveFloat,
	DirectiveBool,
	DirectiveTimestamp,
	DirectiveNull,
}

// TokenKind tags a Token.
type TokenKind int

const (
	// Literal is SQL text.
	Literal TokenKind = iota
	// Placeholder is a positional bind marker.
	Placeholder
)

// Token is either Literal(Text) or Placeholder(Ordinal). Ordinals start at 1.
type Token struct {
	Kind      TokenKind
	Text      string
	Ordinal   int
	Directive Directive
}

// LiteralToken creates a Literal token.
func LiteralToken(text string) Token {
	return Token{Kind: Literal, Text: text}
}

// PlaceholderToken creates a Placeholder token.
func PlaceholderToken(ordinal int, d Directive) Token {
	return Token{Kind: Placeholder, Ordinal: ordinal, Directive: d}
}

// CompiledQuery is the immutable token sequence compiled from one query in
// one mode.
type CompiledQuery struct {
	mode   Mode
	tokens []Token
	values []any
}

// NewCompiledQuery creates a compiled query. tokens and values are copied.
func NewCompiledQuery(mode Mode, tokens []Token, values []any) *CompiledQuery {
	return &CompiledQuery{
		mode:   mode,
		tokens: append([]Token(nil), tokens...),
		values: append([]any(nil), values...),
	}
}

// Mode returns the compilation mode.
func (c *CompiledQuery) Mode() Mode {
	return c.mode
}

// Tokens returns a copy of the token sequence.
func (c *CompiledQuery) Tokens() []Token {
	return append([]Token(nil), c.tokens...)
}

// Values returns a copy of the values collected while rendering, in
// directive order.
func (c *CompiledQuery) Values() []any {
	return append([]any(nil), c.values...)
}

// Placeholders returns the number of Placeholder tokens.
func (c *CompiledQuery) Placeholders() int {
	n := 0
	for _, t := range c.tokens {
		if t.Kind == Placeholder {
			n++
		}
	}
	return n
}

// Render joins the tokens, writing placeholder(ordinal) for each
// Placeholder token.
func (c *CompiledQuery) Render(placeholder func(ordinal int) string) string {
	var b strings.Builder
	for _, t := range c.tokens {
		if t.Kind == Placeholder {
			b.WriteString(placeholder(t.Ordinal))
			continue
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

// String renders the tokens with "?" placeholders.
func (c *CompiledQuery) String() string {
	return c.Render(func(int) string { return "?" })
}
