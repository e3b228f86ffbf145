// Package lexer provides tokenization for declarative options records.
package lexer

// TokenType represents the type of a token.
type TokenType string

// Token types of the options grammar. The string values are the kind names
// used in parse diagnostics.
const (
	// Punctuation
	LBRACE    TokenType = "leftBrace"        // {
	RBRACE    TokenType = "rightBrace"       // }
	LBRACKET  TokenType = "leftBracket"      // [
	RBRACKET  TokenType = "rightBracket"     // ]
	LPAREN    TokenType = "leftParentheses"  // (
	RPAREN    TokenType = "rightParentheses" // )
	COLON     TokenType = "colon"            // :
	SEMICOLON TokenType = "semicolon"        // ;
	COMMA     TokenType = "comma"            // ,
	DOT       TokenType = "dot"              // .

	// Whitespace and line terminators. Recognized while scanning but never
	// emitted.
	SEPARATOR TokenType = "separator"

	// Literals
	NULL   TokenType = "nullLiteral"   // null
	TRUE   TokenType = "trueLiteral"   // true
	FALSE  TokenType = "falseLiteral"  // false
	NUMBER TokenType = "numberLiteral" // 42, -1.5, .5, 0x1F, 1e3
	STRING TokenType = "stringLiteral" // 'a', "b"

	// Names
	IDENTIFIER TokenType = "identifier"   // foo, $bar, _baz, café
	RESERVED   TokenType = "reservedWord" // new, class, typeof, ...
	THIS       TokenType = "thisKeyword"  // this

	// Special tokens
	ERROR TokenType = "error" // Unrecognized character or bare sign
	EOF   TokenType = "eof"   // End of input
)

// Token represents a single token from the lexer.
//
// Length and Offset are measured in UTF-16 code units of the source text so
// offsets match what an author sees in the attribute value.
type Token struct {
	Type    TokenType `json:"type"`
	Length  int       `json:"length"`
	Offset  int       `json:"offset"`
	Value   any       `json:"value,omitempty"`
	Keyword bool      `json:"keyword,omitempty"`
}

// Fixed-length tokens. Scanning copies these and stamps the offset.
var (
	lbraceToken    = Token{Type: LBRACE, Length: 1}
	rbraceToken    = Token{Type: RBRACE, Length: 1}
	lbracketToken  = Token{Type: LBRACKET, Length: 1}
	rbracketToken  = Token{Type: RBRACKET, Length: 1}
	lparenToken    = Token{Type: LPAREN, Length: 1}
	rparenToken    = Token{Type: RPAREN, Length: 1}
	colonToken     = Token{Type: COLON, Length: 1}
	semicolonToken = Token{Type: SEMICOLON, Length: 1}
	commaToken     = Token{Type: COMMA, Length: 1}
	dotToken       = Token{Type: DOT, Length: 1}
	eofToken       = Token{Type: EOF, Length: 0}

	nullToken  = Token{Type: NULL, Length: 4, Value: nil, Keyword: true}
	trueToken  = Token{Type: TRUE, Length: 4, Value: true, Keyword: true}
	falseToken = Token{Type: FALSE, Length: 5, Value: false, Keyword: true}
	thisToken  = Token{Type: THIS, Length: 4, Value: "this", Keyword: true}
)

// at returns a copy of t positioned at offset.
func (t Token) at(offset int) Token {
	t.Offset = offset
	return t
}

// End returns the offset just past the token.
func (t Token) End() int {
	return t.Offset + t.Length
}

// IsIdentifierName returns true if the token can be used as a property name
// after a dot: plain identifiers and every keyword.
func (t Token) IsIdentifierName() bool {
	return t.Type == IDENTIFIER || t.Keyword
}

// IsLiteral returns true if the token represents a literal value.
func (t Token) IsLiteral() bool {
	switch t.Type {
	case NULL, TRUE, FALSE, NUMBER, STRING:
		return true
	}
	return false
}

// Name returns the identifier text of a name token. Keyword literals report
// their spelling rather than their value.
func (t Token) Name() string {
	switch t.Type {
	case NULL:
		return "null"
	case TRUE:
		return "true"
	case FALSE:
		return "false"
	}
	if s, ok := t.Value.(string); ok {
		return s
	}
	return ""
}

// reservedWords maps every keyword of the grammar to its token. The literal
// keywords produce their literal tokens; all others are reserved words that
// only ever appear in error messages or as property names.
var reservedWords = map[string]Token{
	"null":  nullToken,
	"true":  trueToken,
	"false": falseToken,
	"this":  thisToken,
}

func init() {
	for _, w := range []string{
		"break", "case", "catch", "class", "const", "continue", "debugger",
		"default", "delete", "do", "else", "enum", "export", "extends",
		"finally", "for", "function", "if", "import", "in", "instanceof",
		"new", "return", "super", "switch", "throw", "try", "typeof", "var",
		"void", "while", "with",
	} {
		reservedWords[w] = Token{Type: RESERVED, Length: len(w), Value: w, Keyword: true}
	}
}
