package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"winopts"}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Modes(t *testing.T) {
	dir := t.TempDir()
	varsPath := filepath.Join(dir, "vars.json")
	if err := os.WriteFile(varsPath, []byte(`{"app": {"items": ["a", "b"]}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  []string
	}{
		{
			name: "eval literal",
			args: []string{"{ b: 1, a: [true, null] }"},
			want: []string{"{\n  \"b\": 1,\n  \"a\": [\n    true,\n    null\n  ]\n}\n"},
		},
		{
			name: "eval with vars",
			args: []string{"-v", varsPath, "app.items[1]"},
			want: []string{"\"b\"\n"},
		},
		{
			name:  "eval from stdin",
			stdin: "[1, 2]\n",
			want:  []string{"[\n  1,\n  2\n]\n"},
		},
		{
			name: "tokens",
			args: []string{"-m", "tokens", "a.b"},
			want: []string{"identifier", "dot", "eof", `"a"`},
		},
		{
			name: "tree",
			args: []string{"-m", "tree", "select('#x').y"},
			want: []string{`"type": "IdentifierExpression"`, `"target": "select"`},
		},
		{
			name: "gen",
			args: []string{"-m", "gen", "-p", "binding", "-n", "Bind", "a.b"},
			want: []string{"package binding", "func Bind(", `value.Path(vars, gate, "a", "b")`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.stdin, tt.args...)
			if code != 0 {
				t.Fatalf("exit code = %d, stderr = %s", code, stderr)
			}
			for _, w := range tt.want {
				if !strings.Contains(stdout, w) {
					t.Errorf("stdout lacks %q:\n%s", w, stdout)
				}
			}
		})
	}
}

func TestRun_EnvQuery(t *testing.T) {
	t.Setenv("WINOPTS_TEST_VALUE", "from env")
	code, stdout, stderr := runCLI(t, "", "env('WINOPTS_TEST_VALUE')")
	if code != 0 || stdout != "\"from env\"\n" {
		t.Errorf("code = %d, stdout = %q, stderr = %q", code, stdout, stderr)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		want []string
	}{
		{"syntax error", []string{"{ a: 1"}, 1, []string{"OptionsParseError", "expected comma, rightBrace, at offset 6", "  { a: 1\n", "        ^"}},
		{"unknown mode", []string{"-m", "nope", "1"}, 1, []string{"unknown mode"}},
		{"missing vars file", []string{"-v", "/nonexistent/vars.json", "a"}, 1, []string{"reading vars"}},
		{"no input", nil, 1, []string{"no input provided"}},
		{"bad flag", []string{"-x"}, 2, []string{"Usage"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, "", tt.args...)
			if code != tt.code {
				t.Errorf("exit code = %d, want %d", code, tt.code)
			}
			for _, w := range tt.want {
				if !strings.Contains(stderr, w) {
					t.Errorf("stderr lacks %q:\n%s", w, stderr)
				}
			}
		})
	}
}

func TestCaretPosition(t *testing.T) {
	tests := []struct {
		text   string
		offset int
		line   string
		col    int
	}{
		{"abc", 1, "abc", 1},
		{"abc", 3, "abc", 3},
		{"a\nbcd\ne", 4, "bcd", 2},
		{"'😀' x", 5, "'😀' x", 4},
	}
	for _, tt := range tests {
		line, col := caretPosition(tt.text, tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("caretPosition(%q, %d) = %q, %d; want %q, %d", tt.text, tt.offset, line, col, tt.line, tt.col)
		}
	}
}
