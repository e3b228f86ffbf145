package parser

import (
	"fmt"
	"unicode/utf16"

	"github.com/chazu/winopts/pkg/lexer"
	"github.com/chazu/winopts/pkg/value"
)

// =============================================================================
// Grammar shared by both interpreters
// =============================================================================
//
//	Value                 := null | true | false | Number | String
//	                       | ArrayLiteral | ObjectLiteral
//	                       | IdentifierExpression | ObjectQueryExpression
//	ArrayLiteral          := '[' (Value? ',')* Value? ']'
//	ObjectLiteral         := '{' (Property (',' Property)* ','?)? '}'
//	Property              := (Identifier | ReservedWord | String | Number) ':' Value
//	IdentifierExpression  := ('this' | Identifier) AccessExpression*
//	AccessExpression      := '.' (Identifier | ReservedWord) | '[' Value ']'
//	ObjectQueryExpression := Identifier '(' String ')' AccessExpression*
//
// The reader owns the token cursor and walks literals. What an identifier
// or query expression turns into is decided by the hooks each interpreter
// passes in.

// hooks supply the productions on which the interpreters differ.
type hooks struct {
	identifier func() (any, error) // 'this' | Identifier, at the current token
	query      func() (any, error) // Identifier '(' ..., at the current token
}

// valueStart lists the token types that can begin a Value.
var valueStart = []lexer.TokenType{
	lexer.NULL, lexer.TRUE, lexer.FALSE, lexer.NUMBER, lexer.STRING,
	lexer.LBRACKET, lexer.LBRACE, lexer.THIS, lexer.IDENTIFIER,
}

// reader holds the token cursor for one parse.
type reader struct {
	tokens  []lexer.Token
	source  string
	units   []uint16 // source as UTF-16, for lexemes
	pos     int
	current lexer.Token
	open    []lexer.TokenType // closers of the literals being read
}

func newReader(tokens []lexer.Token, source string) reader {
	units := utf16.Encode([]rune(source))
	if n := len(tokens); n == 0 || tokens[n-1].Type != lexer.EOF {
		tokens = append(tokens[:n:n], lexer.Token{Type: lexer.EOF, Offset: len(units)})
	}
	return reader{
		tokens:  tokens,
		source:  source,
		units:   units,
		current: tokens[0],
	}
}

// =============================================================================
// Token consumption
// =============================================================================

// read consumes the current token. When expected types are given, the
// token must be one of them. Reading at EOF leaves the cursor in place.
func (r *reader) read(expected ...lexer.TokenType) (lexer.Token, error) {
	tok := r.current
	if len(expected) > 0 && !isOneOf(tok.Type, expected) {
		return tok, r.unexpected(expected...)
	}
	if tok.Type == lexer.ERROR {
		return tok, r.unexpected()
	}
	if tok.Type != lexer.EOF && r.pos < len(r.tokens)-1 {
		r.pos++
		r.current = r.tokens[r.pos]
	}
	return tok, nil
}

// peek returns the token after the current one. When types are given, ok
// reports whether it is one of them.
func (r *reader) peek(types ...lexer.TokenType) (lexer.Token, bool) {
	next := r.tokens[len(r.tokens)-1]
	if r.pos+1 < len(r.tokens) {
		next = r.tokens[r.pos+1]
	}
	if len(types) == 0 {
		return next, true
	}
	return next, isOneOf(next.Type, types)
}

func isOneOf(typ lexer.TokenType, types []lexer.TokenType) bool {
	for _, t := range types {
		if typ == t {
			return true
		}
	}
	return false
}

// =============================================================================
// Diagnostics
// =============================================================================

// lexeme returns the source text of tok.
func (r *reader) lexeme(tok lexer.Token) string {
	if tok.Length == 0 || tok.End() > len(r.units) {
		return string(tok.Type)
	}
	return string(utf16.Decode(r.units[tok.Offset:tok.End()]))
}

// unexpected builds the error for the current token. At the end of input
// the closer of the innermost unfinished literal is expected as well, so a
// truncated record says what it is missing.
func (r *reader) unexpected(expected ...lexer.TokenType) error {
	tok := r.current
	if tok.Type == lexer.EOF && len(r.open) > 0 {
		closer := r.open[len(r.open)-1]
		if !isOneOf(closer, expected) {
			expected = append(expected[:len(expected):len(expected)], closer)
		}
	}
	return &SyntaxError{
		Source:   r.source,
		Lexeme:   r.lexeme(tok),
		Token:    tok.Type,
		Expected: expected,
		Offset:   tok.Offset,
	}
}

// =============================================================================
// Names
// =============================================================================

// readIdentifierName reads the name after a dot. Reserved words and the
// keyword literals are allowed: x.new, x.true.
func (r *reader) readIdentifierName() (string, error) {
	if !r.current.IsIdentifierName() {
		return "", r.unexpected(lexer.IDENTIFIER, lexer.RESERVED)
	}
	tok, err := r.read()
	if err != nil {
		return "", err
	}
	return tok.Name(), nil
}

// readPropertyName reads an object literal key.
func (r *reader) readPropertyName() (string, error) {
	switch r.current.Type {
	case lexer.STRING:
		tok, err := r.read()
		if err != nil {
			return "", err
		}
		return tok.Value.(string), nil
	case lexer.NUMBER:
		tok, err := r.read()
		if err != nil {
			return "", err
		}
		return value.FormatNumber(tok.Value.(float64)), nil
	}
	if r.current.IsIdentifierName() {
		return r.readIdentifierName()
	}
	return "", r.unexpected(lexer.IDENTIFIER, lexer.RESERVED, lexer.STRING, lexer.NUMBER)
}

// =============================================================================
// Values
// =============================================================================

// readValue reads one Value. Literals are produced here; identifier and
// query expressions are delegated to h.
func (r *reader) readValue(h hooks) (any, error) {
	switch r.current.Type {
	case lexer.NULL:
		_, err := r.read()
		return nil, err
	case lexer.TRUE, lexer.FALSE, lexer.NUMBER, lexer.STRING:
		tok, err := r.read()
		return tok.Value, err
	case lexer.LBRACKET:
		return r.readArrayLiteral(h)
	case lexer.LBRACE:
		return r.readObjectLiteral(h)
	case lexer.THIS:
		return h.identifier()
	case lexer.IDENTIFIER:
		if _, ok := r.peek(lexer.LPAREN); ok {
			return h.query()
		}
		return h.identifier()
	}
	return nil, r.unexpected(valueStart...)
}

// readArrayLiteral reads '[' ... ']'. A comma with no value before it is an
// elided slot holding Undefined; one trailing comma is dropped.
func (r *reader) readArrayLiteral(h hooks) (any, error) {
	if _, err := r.read(lexer.LBRACKET); err != nil {
		return nil, err
	}
	r.open = append(r.open, lexer.RBRACKET)
	defer func() { r.open = r.open[:len(r.open)-1] }()

	arr := []any{}
	for {
		switch r.current.Type {
		case lexer.RBRACKET:
			_, err := r.read()
			return arr, err
		case lexer.COMMA:
			if _, err := r.read(); err != nil {
				return nil, err
			}
			arr = append(arr, value.Undefined)
			continue
		}

		v, err := r.readValue(h)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)

		switch r.current.Type {
		case lexer.COMMA:
			if _, err := r.read(); err != nil {
				return nil, err
			}
		case lexer.RBRACKET:
		default:
			return nil, r.unexpected(lexer.COMMA, lexer.RBRACKET)
		}
	}
}

// readObjectLiteral reads '{' ... '}'. Later duplicate keys overwrite
// earlier values.
func (r *reader) readObjectLiteral(h hooks) (any, error) {
	if _, err := r.read(lexer.LBRACE); err != nil {
		return nil, err
	}
	r.open = append(r.open, lexer.RBRACE)
	defer func() { r.open = r.open[:len(r.open)-1] }()

	obj := value.NewObject()
	for {
		if r.current.Type == lexer.RBRACE {
			_, err := r.read()
			return obj, err
		}

		name, err := r.readPropertyName()
		if err != nil {
			return nil, err
		}
		if _, err := r.read(lexer.COLON); err != nil {
			return nil, err
		}
		v, err := r.readValue(h)
		if err != nil {
			return nil, err
		}
		obj.Set(name, v)

		switch r.current.Type {
		case lexer.COMMA:
			if _, err := r.read(); err != nil {
				return nil, err
			}
		case lexer.RBRACE:
		default:
			return nil, r.unexpected(lexer.COMMA, lexer.RBRACE)
		}
	}
}

// readAccessExpressions reads AccessExpression* after an identifier or
// query. index evaluates the Value inside brackets; step receives each
// property name or index in order.
func (r *reader) readAccessExpressions(index func() (any, error), step func(key any) error) error {
	for {
		switch r.current.Type {
		case lexer.DOT:
			if _, err := r.read(); err != nil {
				return err
			}
			name, err := r.readIdentifierName()
			if err != nil {
				return err
			}
			if err := step(name); err != nil {
				return err
			}
		case lexer.LBRACKET:
			if _, err := r.read(); err != nil {
				return err
			}
			r.open = append(r.open, lexer.RBRACKET)
			key, err := index()
			if err == nil {
				_, err = r.read(lexer.RBRACKET)
			}
			r.open = r.open[:len(r.open)-1]
			if err != nil {
				return err
			}
			if err := step(key); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// readQuery reads Identifier '(' String ')' and returns the target name and
// argument.
func (r *reader) readQuery() (target, arg string, err error) {
	fn, err := r.read(lexer.IDENTIFIER)
	if err != nil {
		return "", "", err
	}
	if _, err := r.read(lexer.LPAREN); err != nil {
		return "", "", err
	}
	r.open = append(r.open, lexer.RPAREN)
	defer func() { r.open = r.open[:len(r.open)-1] }()
	s, err := r.read(lexer.STRING)
	if err != nil {
		return "", "", err
	}
	if _, err := r.read(lexer.RPAREN); err != nil {
		return "", "", err
	}
	return fn.Value.(string), s.Value.(string), nil
}

// finish requires the whole record to have been consumed.
func (r *reader) finish() error {
	_, err := r.read(lexer.EOF)
	return err
}

func (r *reader) String() string {
	return fmt.Sprintf("reader{pos=%d, current=%s}", r.pos, r.current.Type)
}
