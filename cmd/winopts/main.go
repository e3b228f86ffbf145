// winopts - evaluate declarative options records from the command line
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf16"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"

	"github.com/chazu/winopts/pkg/codegen"
	"github.com/chazu/winopts/pkg/lexer"
	"github.com/chazu/winopts/pkg/parser"
	"github.com/chazu/winopts/pkg/value"
)

const versionStr = "0.1.0"

type config struct {
	mode     string
	varsFile string
	pkgName  string
	funcName string
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "winopts - declarative options evaluator\n\n")
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  winopts [options] '<record>'\n")
	fmt.Fprintf(w, "  echo '<record>' | winopts [options]\n\n")
	fmt.Fprintf(w, "Options:\n")
	fmt.Fprintf(w, "  -m mode   tokens, eval, tree or gen (default eval)\n")
	fmt.Fprintf(w, "  -v file   JSON file with the variable context for eval\n")
	fmt.Fprintf(w, "  -p name   package name for gen (default options)\n")
	fmt.Fprintf(w, "  -n name   function name for gen (default Options)\n")
	fmt.Fprintf(w, "  -V        print version and exit\n")
	fmt.Fprintf(w, "  -h        show this help\n")
}

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, optind, err := getopt.Getopts(args, "hVm:v:p:n:")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		usage(stderr)
		return 2
	}

	cfg := config{mode: "eval", pkgName: "options", funcName: "Options"}
	for _, opt := range opts {
		switch opt.Option {
		case 'h':
			usage(stdout)
			return 0
		case 'V':
			fmt.Fprintf(stdout, "winopts version %s\n", versionStr)
			return 0
		case 'm':
			cfg.mode = opt.Value
		case 'v':
			cfg.varsFile = opt.Value
		case 'p':
			cfg.pkgName = opt.Value
		case 'n':
			cfg.funcName = opt.Value
		}
	}

	text := strings.Join(args[optind:], " ")
	if optind >= len(args) {
		input, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading input: %v\n", err)
			return 1
		}
		text = strings.TrimRight(string(input), "\r\n")
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintf(stderr, "Error: no input provided\n")
		usage(stderr)
		return 1
	}

	out, err := execute(cfg, text, stderr)
	if err != nil {
		report(stderr, text, err)
		return 1
	}
	fmt.Fprint(stdout, out)
	return 0
}

// execute runs one mode and returns what to print.
func execute(cfg config, text string, stderr io.Writer) (string, error) {
	switch cfg.mode {
	case "tokens":
		var sb strings.Builder
		for _, tok := range lexer.Lex(text) {
			fmt.Fprintf(&sb, "%4d %3d %-16s %s\n", tok.Offset, tok.Length, tok.Type, tokenValue(tok))
		}
		return sb.String(), nil

	case "eval":
		vars, err := loadVars(cfg.varsFile)
		if err != nil {
			return "", err
		}
		v, err := parser.Parse(text, vars, builtins())
		if err != nil {
			return "", err
		}
		return encode(v)

	case "tree":
		tree, err := parser.ParseToTree(text)
		if err != nil {
			return "", err
		}
		return encode(tree)

	case "gen":
		result, err := codegen.GenerateSource(cfg.pkgName, cfg.funcName, text)
		if err != nil {
			return "", err
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(stderr, "Warning: %s\n", w)
		}
		return result.Code, nil
	}
	return "", fmt.Errorf("unknown mode %q (use tokens, eval, tree or gen)", cfg.mode)
}

func tokenValue(tok lexer.Token) string {
	if tok.Value == nil {
		return ""
	}
	data, err := value.Encode(tok.Value)
	if err != nil {
		return fmt.Sprint(tok.Value)
	}
	return string(data)
}

func loadVars(path string) (any, error) {
	if path == "" {
		return value.NewObject(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vars: %w", err)
	}
	vars, err := value.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decoding vars %s: %w", path, err)
	}
	return vars, nil
}

// builtins is the query function context for eval. env('NAME') reads an
// environment variable.
func builtins() *value.Object {
	return value.NewObject().
		With("env", value.MarkSupportedForProcessing(func(name string) (any, error) {
			v, ok := os.LookupEnv(name)
			if !ok {
				return value.Undefined, nil
			}
			return v, nil
		}))
}

func encode(v any) (string, error) {
	data, err := value.Encode(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return "", err
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// report prints err, with a caret under the offending token for syntax
// errors.
func report(w io.Writer, text string, err error) {
	red := color.New(color.FgRed, color.Bold)

	var se *parser.SyntaxError
	if !errors.As(err, &se) {
		red.Fprintf(w, "Error: ")
		fmt.Fprintf(w, "%v\n", err)
		return
	}

	red.Fprintf(w, "%s: ", se.Kind())
	fmt.Fprintf(w, "%s\n", se.Message())
	line, col := caretPosition(text, se.Offset)
	fmt.Fprintf(w, "  %s\n", line)
	color.New(color.FgGreen).Fprintf(w, "  %s^\n", strings.Repeat(" ", col))
}

// caretPosition maps a UTF-16 offset into text to the line containing it and
// the rune column within that line.
func caretPosition(text string, offset int) (string, int) {
	units := utf16.Encode([]rune(text))
	if offset > len(units) {
		offset = len(units)
	}
	prefix := utf16.Decode(units[:offset])
	start := 0
	for i, r := range prefix {
		if r == '\n' {
			start = i + 1
		}
	}
	rest := []rune(text)[start:]
	end := len(rest)
	for i, r := range rest {
		if r == '\n' || r == '\r' {
			end = i
			break
		}
	}
	return string(rest[:end]), len(prefix) - start
}
