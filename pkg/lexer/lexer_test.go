package lexer

import (
	"math"
	"reflect"
	"testing"
	"unicode/utf16"
)

// stripOffsets returns the tokens without EOF and with offsets cleared so
// table entries only spell out type, length and value.
func stripOffsets(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type == EOF {
			continue
		}
		tok.Offset = 0
		out = append(out, tok)
	}
	return out
}

func TestLex_Punctuation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:     "empty input",
			input:    "",
			expected: []Token{},
		},
		{
			name:  "braces",
			input: "{}",
			expected: []Token{
				{Type: LBRACE, Length: 1},
				{Type: RBRACE, Length: 1},
			},
		},
		{
			name:  "brackets and parens",
			input: "[]()",
			expected: []Token{
				{Type: LBRACKET, Length: 1},
				{Type: RBRACKET, Length: 1},
				{Type: LPAREN, Length: 1},
				{Type: RPAREN, Length: 1},
			},
		},
		{
			name:  "separators",
			input: ",:;.",
			expected: []Token{
				{Type: COMMA, Length: 1},
				{Type: COLON, Length: 1},
				{Type: SEMICOLON, Length: 1},
				{Type: DOT, Length: 1},
			},
		},
		{
			name:  "whitespace is skipped",
			input: " \t{  \r\n}　",
			expected: []Token{
				{Type: LBRACE, Length: 1},
				{Type: RBRACE, Length: 1},
			},
		},
		{
			name:  "unknown character",
			input: "#",
			expected: []Token{
				{Type: ERROR, Length: 1, Value: "#"},
			},
		},
		{
			name:  "bare minus",
			input: "-a",
			expected: []Token{
				{Type: ERROR, Length: 1, Value: "-"},
				{Type: IDENTIFIER, Length: 1, Value: "a"},
			},
		},
		{
			name:  "bare plus before dot",
			input: "+.",
			expected: []Token{
				{Type: ERROR, Length: 1, Value: "+"},
				{Type: DOT, Length: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripOffsets(Lex(tt.input))
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lex(%q)\n got  %+v\n want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLex_Numbers(t *testing.T) {
	tests := []struct {
		input  string
		length int
		value  float64
	}{
		{"0", 1, 0},
		{"42", 2, 42},
		{"3.25", 4, 3.25},
		{".5", 2, 0.5},
		{"1.", 2, 1},
		{"-1", 2, -1},
		{"+7", 2, 7},
		{"-.5", 3, -0.5},
		{"6.02e23", 7, 6.02e23},
		{"1E-3", 4, 0.001},
		{"1e+2", 4, 100},
		{"0x1F", 4, 31},
		{"0XfF", 4, 255},
		{"007", 3, 7},
		{"0.1", 3, 0.1},
		{"1e400", 5, math.Inf(1)},
		{"0x10000000000000000", 19, 18446744073709551616},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := Lex(tt.input)
			if len(tokens) != 2 {
				t.Fatalf("Lex(%q) produced %d tokens, want 2: %+v", tt.input, len(tokens), tokens)
			}
			tok := tokens[0]
			if tok.Type != NUMBER {
				t.Fatalf("Type = %s, want %s", tok.Type, NUMBER)
			}
			if tok.Length != tt.length {
				t.Errorf("Length = %d, want %d", tok.Length, tt.length)
			}
			if got := tok.Value.(float64); got != tt.value {
				t.Errorf("Value = %v, want %v", got, tt.value)
			}
		})
	}
}

func TestLex_NumberEdgeCases(t *testing.T) {
	t.Run("hex prefix without digits is NaN", func(t *testing.T) {
		tok := Lex("0x")[0]
		if tok.Type != NUMBER || tok.Length != 2 || !math.IsNaN(tok.Value.(float64)) {
			t.Errorf("got %+v, want NaN number of length 2", tok)
		}
	})

	t.Run("exponent without digits stops before e", func(t *testing.T) {
		tokens := Lex("1e")
		if tokens[0].Type != NUMBER || tokens[0].Length != 1 {
			t.Fatalf("first token = %+v", tokens[0])
		}
		if tokens[1].Type != IDENTIFIER || tokens[1].Value != "e" {
			t.Errorf("second token = %+v, want identifier e", tokens[1])
		}
	})

	t.Run("dot followed by digit is a number", func(t *testing.T) {
		tokens := Lex("a.5")
		if tokens[1].Type != NUMBER {
			t.Errorf("got %+v, want number", tokens[1])
		}
	})

	t.Run("decimal parse matches strconv", func(t *testing.T) {
		tok := Lex("0.30000000000000004")[0]
		if tok.Value.(float64) != 0.30000000000000004 {
			t.Errorf("Value = %v", tok.Value)
		}
	})
}

func TestLex_Strings(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		length int
		value  string
	}{
		{"single quoted", `'hello'`, 7, "hello"},
		{"double quoted", `"hello"`, 7, "hello"},
		{"empty", `''`, 2, ""},
		{"other quote inside", `"it's"`, 6, "it's"},
		{"escaped quote", `'it\'s'`, 7, "it's"},
		{"escaped backslash", `'a\\b'`, 6, `a\b`},
		{"newline escape", `'a\nb'`, 6, "a\nb"},
		{"control escapes", `'\t\r\b\f\v\0'`, 14, "\t\r\b\f\v\x00"},
		{"hex escape", `'\x41'`, 6, "A"},
		{"unicode escape", `'\u00e9'`, 8, "é"},
		{"unknown escape is literal", `'\q'`, 4, "q"},
		{"line continuation", "'a\\\nb'", 6, "ab"},
		{"crlf continuation", "'a\\\r\nb'", 7, "ab"},
		{"paragraph separator continuation", "'a\\\u2029b'", 6, "ab"},
		{"unterminated at end", `'abc`, 4, "abc"},
		{"unterminated at newline", "'abc\n", 4, "abc"},
		{"unterminated with escape", `'a\tb`, 5, "a\tb"},
		{"non-ascii", `'日本'`, 4, "日本"},
		{"astral", `'😀'`, 4, "😀"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := Lex(tt.input)[0]
			if tok.Type != STRING {
				t.Fatalf("Type = %s, want %s", tok.Type, STRING)
			}
			if tok.Length != tt.length {
				t.Errorf("Length = %d, want %d", tok.Length, tt.length)
			}
			if tok.Value != tt.value {
				t.Errorf("Value = %q, want %q", tok.Value, tt.value)
			}
		})
	}
}

func TestLex_Identifiers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Token
	}{
		{"simple", "foo", Token{Type: IDENTIFIER, Length: 3, Value: "foo"}},
		{"dollar and underscore", "$_a1", Token{Type: IDENTIFIER, Length: 4, Value: "$_a1"}},
		{"non-ascii", "café", Token{Type: IDENTIFIER, Length: 4, Value: "café"}},
		{"unicode escape", `\u0061b`, Token{Type: IDENTIFIER, Length: 7, Value: "ab"}},
		{"escaped keyword", `\u006eew`, Token{Type: RESERVED, Length: 8, Value: "new", Keyword: true}},
		{"null", "null", Token{Type: NULL, Length: 4, Keyword: true}},
		{"true", "true", Token{Type: TRUE, Length: 4, Value: true, Keyword: true}},
		{"false", "false", Token{Type: FALSE, Length: 5, Value: false, Keyword: true}},
		{"this", "this", Token{Type: THIS, Length: 4, Value: "this", Keyword: true}},
		{"reserved", "typeof", Token{Type: RESERVED, Length: 6, Value: "typeof", Keyword: true}},
		{"keyword prefix", "newer", Token{Type: IDENTIFIER, Length: 5, Value: "newer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := Lex(tt.input)[0]
			tok.Offset = 0
			if !reflect.DeepEqual(tok, tt.expected) {
				t.Errorf("got %+v, want %+v", tok, tt.expected)
			}
		})
	}
}

func TestLex_InvalidEscapeIsError(t *testing.T) {
	tokens := Lex(`\x`)
	if tokens[0].Type != ERROR || tokens[0].Value != `\` {
		t.Errorf("got %+v, want error token for backslash", tokens[0])
	}
}

func TestLex_EndsWithSingleEOF(t *testing.T) {
	inputs := []string{"", " ", "{ a: 1 }", "'open", "#$%", "x.y[0]"}
	for _, input := range inputs {
		tokens := Lex(input)
		eofs := 0
		for _, tok := range tokens {
			if tok.Type == EOF {
				eofs++
			}
		}
		if eofs != 1 || tokens[len(tokens)-1].Type != EOF {
			t.Errorf("Lex(%q): want exactly one trailing EOF, got %+v", input, tokens)
		}
		if tokens[len(tokens)-1].Length != 0 {
			t.Errorf("Lex(%q): EOF length = %d", input, tokens[len(tokens)-1].Length)
		}
	}
}

func TestLex_LengthsCoverInput(t *testing.T) {
	inputs := []string{
		"{ option1: 42, handler: onchange('foo'), nested: this.bar[0] }",
		"  [1,,3]\n",
		" select( \"#x\" ).length ",
		"'😀' + -",
	}
	for _, input := range inputs {
		units := len(utf16.Encode([]rune(input)))
		tokens := Lex(input)

		covered := 0
		prevEnd := 0
		for _, tok := range tokens {
			if tok.Offset < prevEnd {
				t.Fatalf("Lex(%q): token %+v overlaps previous token", input, tok)
			}
			// The gap between tokens is a skipped separator run.
			covered += tok.Offset - prevEnd
			covered += tok.Length
			prevEnd = tok.End()
		}
		if covered != units {
			t.Errorf("Lex(%q): lengths plus separators = %d, want %d", input, covered, units)
		}
		if eof := tokens[len(tokens)-1]; eof.Offset != units {
			t.Errorf("Lex(%q): EOF offset = %d, want %d", input, eof.Offset, units)
		}
	}
}

func TestLex_Idempotent(t *testing.T) {
	input := "{ a: 1, b: 'x', c: [true, false, null], d: q('#id').n }"
	first := Lex(input)
	second := Lex(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Lex is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestToken_Name(t *testing.T) {
	tests := []struct {
		input string
		name  string
	}{
		{"foo", "foo"},
		{"null", "null"},
		{"true", "true"},
		{"false", "false"},
		{"this", "this"},
		{"class", "class"},
		{"42", ""},
	}
	for _, tt := range tests {
		if got := Lex(tt.input)[0].Name(); got != tt.name {
			t.Errorf("Lex(%q)[0].Name() = %q, want %q", tt.input, got, tt.name)
		}
	}
}

func TestLexer_String(t *testing.T) {
	l := New("a.é")
	l.Tokenize()
	want := `Lexer{input="a.é", pos=3, units=3, tokens=4}`
	if got := l.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
