package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/winopts/pkg/lexer"
)

// ErrSyntax matches every *SyntaxError via errors.Is.
var ErrSyntax = errors.New("options parse error")

// ErrImmediateEvaluation is returned when the tree builder meets an
// identifier or query expression in a position that would need immediate
// evaluation, such as inside an index: a[b].
var ErrImmediateEvaluation = errors.New("identifier expression requires immediate evaluation")

// SyntaxError represents a grammar violation in an options record.
type SyntaxError struct {
	Source   string            `json:"source"`   // The whole options record
	Lexeme   string            `json:"lexeme"`   // Text of the offending token
	Token    lexer.TokenType   `json:"token"`    // Type of the offending token
	Expected []lexer.TokenType `json:"expected"` // Acceptable token types, if known
	Offset   int               `json:"offset"`   // UTF-16 offset of the offending token
}

// Kind names the error for callers that report several error families.
func (e *SyntaxError) Kind() string { return "OptionsParseError" }

// Message returns the diagnostic without the source text.
func (e *SyntaxError) Message() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("unexpected token '%s' at offset %d", e.Lexeme, e.Offset)
	}
	kinds := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		kinds[i] = string(k)
	}
	return fmt.Sprintf("unexpected token '%s', expected %s, at offset %d",
		e.Lexeme, strings.Join(kinds, ", "), e.Offset)
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid options record: '%s', %s", e.Source, e.Message())
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Expects reports whether typ is among the expected token types.
func (e *SyntaxError) Expects(typ lexer.TokenType) bool {
	for _, k := range e.Expected {
		if k == typ {
			return true
		}
	}
	return false
}
