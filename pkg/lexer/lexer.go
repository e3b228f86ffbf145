// Package lexer provides tokenization for declarative options records.
//
// The scanner walks the source one UTF-16 code unit at a time and
// classifies characters by numeric range. Whitespace runs are skipped, and
// anything the grammar cannot use becomes an ERROR token; the lexer itself
// never fails.
//
// Token Types:
//
//	leftBrace .. dot   - Fixed punctuation: { } [ ] ( ) : ; , .
//	nullLiteral        - null
//	trueLiteral        - true
//	falseLiteral       - false
//	numberLiteral      - 42, -1, +.5, 0x1F, 6.02e23
//	stringLiteral      - 'single' or "double" quoted
//	identifier         - foo, $bar, _baz, café
//	reservedWord       - ECMAScript reserved words (new, class, ...)
//	thisKeyword        - this
//	error              - Unrecognized character or a bare + or -
//	eof                - End of input, always the last token
package lexer

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"unicode/utf16"
)

// Lexer tokenizes an options record.
type Lexer struct {
	input  string   // The source text being tokenized
	units  []uint16 // input as UTF-16 code units
	pos    int      // Current position in units
	tokens []Token
}

// New creates a new Lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{
		input:  input,
		units:  utf16.Encode([]rune(input)),
		pos:    0,
		tokens: make([]Token, 0),
	}
}

// Lex tokenizes text. The result always ends with a single EOF token.
func Lex(text string) []Token {
	return New(text).Tokenize()
}

// Tokenize processes the entire input and returns all tokens.
func (l *Lexer) Tokenize() []Token {
	for !l.isAtEnd() {
		tok, ok := l.scanToken()
		if ok {
			l.tokens = append(l.tokens, tok)
		}
		l.pos += tok.Length
	}
	l.tokens = append(l.tokens, eofToken.at(len(l.units)))
	return l.tokens
}

// Helper methods for character access

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.units)
}

func (l *Lexer) peekAhead(n int) uint16 {
	if l.pos+n >= len(l.units) {
		return 0
	}
	return l.units[l.pos+n]
}

func (l *Lexer) slice(from, to int) string {
	return string(utf16.Decode(l.units[from:to]))
}

func isDecimalDigit(c uint16) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c uint16) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isLineTerminator(c uint16) bool {
	switch c {
	case 0x000A, 0x000D, 0x2028, 0x2029:
		return true
	}
	return false
}

// isWhitespace reports the Zs category plus the ECMAScript extras
// (tab, vertical tab, form feed, BOM).
func isWhitespace(c uint16) bool {
	switch {
	case c == 0x0009, c == 0x000B, c == 0x000C, c == 0x0020, c == 0x00A0, c == 0xFEFF:
		return true
	case c == 0x1680, c == 0x180E:
		return true
	case c >= 0x2000 && c <= 0x200A:
		return true
	case c == 0x202F, c == 0x205F, c == 0x3000:
		return true
	}
	return false
}

func isSeparator(c uint16) bool {
	return isWhitespace(c) || isLineTerminator(c)
}

// scanToken scans a single token starting at the current position. The
// returned token's Length is always consumed; ok is false for separators.
func (l *Lexer) scanToken() (Token, bool) {
	char := l.units[l.pos]
	next := l.peekAhead(1)
	offset := l.pos

	if isSeparator(char) {
		return l.scanSeparator(), false
	}

	switch char {
	case '"', '\'':
		return l.scanString(char), true

	case '(':
		return lparenToken.at(offset), true
	case ')':
		return rparenToken.at(offset), true
	case ',':
		return commaToken.at(offset), true
	case ':':
		return colonToken.at(offset), true
	case ';':
		return semicolonToken.at(offset), true
	case '[':
		return lbracketToken.at(offset), true
	case ']':
		return rbracketToken.at(offset), true
	case '{':
		return lbraceToken.at(offset), true
	case '}':
		return rbraceToken.at(offset), true

	case '.':
		if isDecimalDigit(next) {
			return l.scanDecimal(l.pos), true
		}
		return dotToken.at(offset), true

	// Signed number, or a bare sign the grammar has no use for
	case '+', '-':
		if isDecimalDigit(next) || (next == '.' && isDecimalDigit(l.peekAhead(2))) {
			return l.scanDecimal(l.pos + 1), true
		}
		return l.errorToken(1), true

	case '0':
		if next == 'x' || next == 'X' {
			return l.scanHex(), true
		}
		return l.scanDecimal(l.pos), true

	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return l.scanDecimal(l.pos), true
	}

	if l.identifierCharLength(l.pos, true) > 0 {
		return l.scanIdentifier(), true
	}
	return l.errorToken(1), true
}

func (l *Lexer) errorToken(length int) Token {
	return Token{
		Type:   ERROR,
		Length: length,
		Offset: l.pos,
		Value:  l.slice(l.pos, l.pos+length),
	}
}

// scanSeparator consumes a maximal run of whitespace and line terminators.
func (l *Lexer) scanSeparator() Token {
	end := l.pos
	for end < len(l.units) && isSeparator(l.units[end]) {
		end++
	}
	return Token{Type: SEPARATOR, Length: end - l.pos, Offset: l.pos}
}

// scanString handles 'single' and "double" quoted strings. A string cut off
// by a line terminator or the end of input is still returned as a literal
// holding whatever was read; the parser decides whether that matters.
func (l *Lexer) scanString(quote uint16) Token {
	start := l.pos
	i := start + 1
	hasEscape := false
	terminated := false

	for i < len(l.units) {
		c := l.units[i]
		if c == quote {
			terminated = true
			break
		}
		if isLineTerminator(c) {
			break
		}
		if c == '\\' {
			hasEscape = true
			i++
			// \r\n is one escaped line terminator
			if i+1 < len(l.units) && l.units[i] == '\r' && l.units[i+1] == '\n' {
				i += 2
				continue
			}
			if i < len(l.units) {
				i++
			}
			continue
		}
		i++
	}

	inner := l.units[start+1 : i]
	length := i - start
	if terminated {
		length++
	}

	var value string
	if hasEscape {
		value = decodeEscapes(inner)
	} else {
		value = string(utf16.Decode(inner))
	}
	return Token{Type: STRING, Length: length, Offset: start, Value: value}
}

// decodeEscapes interprets the backslash escapes of a string literal body.
func decodeEscapes(units []uint16) string {
	out := make([]uint16, 0, len(units))
	for i := 0; i < len(units); i++ {
		c := units[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(units) {
			break
		}
		c = units[i]
		switch c {
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'v':
			out = append(out, '\v')
		case '0':
			out = append(out, 0)
		case 'x':
			if v, ok := hexValue(units, i+1, 2); ok {
				out = append(out, v)
				i += 2
			} else {
				out = append(out, c)
			}
		case 'u':
			if v, ok := hexValue(units, i+1, 4); ok {
				out = append(out, v)
				i += 4
			} else {
				out = append(out, c)
			}
		case '\r':
			// Line continuation; \r\n counts once
			if i+1 < len(units) && units[i+1] == '\n' {
				i++
			}
		case '\n', 0x2028, 0x2029:
			// Line continuation
		default:
			out = append(out, c)
		}
	}
	return string(utf16.Decode(out))
}

// hexValue reads n hex digits starting at from.
func hexValue(units []uint16, from, n int) (uint16, bool) {
	if from+n > len(units) {
		return 0, false
	}
	var v uint16
	for _, c := range units[from : from+n] {
		switch {
		case c >= '0' && c <= '9':
			v = v<<4 | (c - '0')
		case c >= 'a' && c <= 'f':
			v = v<<4 | (c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			v = v<<4 | (c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return v, true
}

// scanHex handles 0x and 0X integer literals.
func (l *Lexer) scanHex() Token {
	start := l.pos
	end := start + 2
	for end < len(l.units) && isHexDigit(l.units[end]) {
		end++
	}
	digits := l.slice(start+2, end)
	return Token{Type: NUMBER, Length: end - start, Offset: start, Value: parseHex(digits)}
}

func parseHex(digits string) float64 {
	if digits == "" {
		return math.NaN()
	}
	if n, err := strconv.ParseUint(digits, 16, 64); err == nil {
		return float64(n)
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

// scanDecimal handles decimal literals. from is where the digits begin,
// just past an optional sign. The value comes from converting the whole
// consumed slice so rounding matches standard float parsing.
func (l *Lexer) scanDecimal(from int) Token {
	start := l.pos
	end := from
	for end < len(l.units) && isDecimalDigit(l.units[end]) {
		end++
	}
	if end < len(l.units) && l.units[end] == '.' {
		end++
		for end < len(l.units) && isDecimalDigit(l.units[end]) {
			end++
		}
	}
	if end < len(l.units) && (l.units[end] == 'e' || l.units[end] == 'E') {
		exp := end + 1
		if exp < len(l.units) && (l.units[exp] == '+' || l.units[exp] == '-') {
			exp++
		}
		if exp < len(l.units) && isDecimalDigit(l.units[exp]) {
			end = exp
			for end < len(l.units) && isDecimalDigit(l.units[end]) {
				end++
			}
		}
	}
	return Token{Type: NUMBER, Length: end - start, Offset: start, Value: parseDecimal(l.slice(start, end))}
}

func parseDecimal(text string) float64 {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// identifierCharLength returns how many code units the identifier character
// at i occupies, or 0 if there is none. A \uXXXX escape spans six units.
func (l *Lexer) identifierCharLength(i int, start bool) int {
	if i >= len(l.units) {
		return 0
	}
	c := l.units[i]
	switch {
	case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		return 1
	case c == '$' || c == '_':
		return 1
	case !start && isDecimalDigit(c):
		return 1
	case c > 0x7F:
		if isSeparator(c) {
			return 0
		}
		return 1
	case c == '\\':
		if i+1 < len(l.units) && l.units[i+1] == 'u' {
			if _, ok := hexValue(l.units, i+2, 4); ok {
				return 6
			}
		}
	}
	return 0
}

// scanIdentifier handles identifiers and keywords.
func (l *Lexer) scanIdentifier() Token {
	start := l.pos
	end := start
	hasEscape := false
	first := true
	for {
		n := l.identifierCharLength(end, first)
		if n == 0 {
			break
		}
		if n > 1 {
			hasEscape = true
		}
		end += n
		first = false
	}

	raw := l.slice(start, end)
	name := raw
	if hasEscape {
		var decoded string
		if err := json.Unmarshal([]byte(`"`+raw+`"`), &decoded); err == nil {
			name = decoded
		}
	}

	if kw, ok := reservedWords[name]; ok {
		kw.Offset = start
		kw.Length = end - start
		return kw
	}
	return Token{Type: IDENTIFIER, Length: end - start, Offset: start, Value: name}
}

// String returns a string representation of the lexer state (for debugging).
func (l *Lexer) String() string {
	return fmt.Sprintf("Lexer{input=%q, pos=%d, units=%d, tokens=%d}", l.input, l.pos, len(l.units), len(l.tokens))
}
