package codegen_test

import (
	"go/parser"
	"go/token"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/winopts/pkg/ast"
	"github.com/chazu/winopts/pkg/codegen"
	"github.com/chazu/winopts/pkg/value"
)

func TestCodegenAcceptance(t *testing.T) {
	// Find all test cases in testdata
	testdataDir := "../../testdata"
	entries, err := os.ReadDir(testdataDir)
	if err != nil {
		t.Fatalf("Failed to read testdata directory: %v", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		testName := entry.Name()
		t.Run(testName, func(t *testing.T) {
			testDir := filepath.Join(testdataDir, testName)

			inputData, err := os.ReadFile(filepath.Join(testDir, "input.txt"))
			if err != nil {
				t.Fatalf("Failed to read input.txt: %v", err)
			}

			result, err := codegen.GenerateSource("options", "Options", strings.TrimSpace(string(inputData)))
			if err != nil {
				t.Fatalf("GenerateSource() error = %v", err)
			}
			mustParse(t, result.Code)

			expectedData, err := os.ReadFile(filepath.Join(testDir, "expected.txt"))
			if err != nil {
				t.Fatalf("Failed to read expected.txt: %v", err)
			}

			// Each expected line must appear in the generated code
			for _, line := range strings.Split(string(expectedData), "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if !strings.Contains(result.Code, line) {
					t.Errorf("generated code lacks %q\n\n=== ACTUAL ===\n%s", line, result.Code)
				}
			}

			if len(result.Warnings) > 0 {
				t.Logf("Warnings: %v", result.Warnings)
			}
		})
	}
}

func mustParse(t *testing.T, code string) {
	t.Helper()
	if _, err := parser.ParseFile(token.NewFileSet(), "gen.go", code, 0); err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, code)
	}
}

func TestGenerate_ConstantWarns(t *testing.T) {
	result := codegen.Generate("opts", "Build", []any{1.0, "x"})
	mustParse(t, result.Code)
	if result.Deferred != 0 {
		t.Errorf("Deferred = %d, want 0", result.Deferred)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "constant") {
		t.Errorf("Warnings = %v", result.Warnings)
	}
	if strings.Contains(result.Code, "RequireSupportedForProcessing") {
		t.Errorf("constant function should not touch its arguments:\n%s", result.Code)
	}
}

func TestGenerate_SpecialNumbers(t *testing.T) {
	result := codegen.Generate("opts", "Build", []any{math.NaN(), math.Inf(1), math.Inf(-1), math.Copysign(0, -1), 1e21})
	mustParse(t, result.Code)
	for _, want := range []string{"math.NaN()", "math.Inf(1)", "math.Inf(-1)", "math.Copysign(0, -1)", "float64(1e+21)"} {
		if !strings.Contains(result.Code, want) {
			t.Errorf("generated code lacks %s:\n%s", want, result.Code)
		}
	}
}

func TestGenerate_HandBuiltTree(t *testing.T) {
	tree := value.NewObject().
		With("a", &ast.IdentifierExpression{Parts: []any{"x"}}).
		With("b", &ast.CallExpression{Target: "q", Arg0Value: "y"}).
		With("c", map[string]any{"z": 1.0, "y": struct{}{}})

	result := codegen.Generate("opts", "Build", tree)
	mustParse(t, result.Code)
	if result.Deferred != 2 {
		t.Errorf("Deferred = %d, want 2", result.Deferred)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "unsupported value") {
		t.Errorf("Warnings = %v", result.Warnings)
	}
	for _, want := range []string{
		`value.Path(vars, gate, "x")`,
		`value.Invoke(funcs, "q", "y", gate)`,
		`value.NewObject().With("y", nil).With("z", float64(1))`,
	} {
		if !strings.Contains(result.Code, want) {
			t.Errorf("generated code lacks %s:\n%s", want, result.Code)
		}
	}
}

func TestGenerateSource_SyntaxError(t *testing.T) {
	if _, err := codegen.GenerateSource("opts", "Build", "{ a: "); err == nil {
		t.Error("GenerateSource() error = nil, want syntax error")
	}
	if _, err := codegen.GenerateSource("opts", "Build", "a[b]"); err == nil {
		t.Error("GenerateSource() error = nil, want immediate evaluation error")
	}
}

func TestGenerate_ThisRoot(t *testing.T) {
	tests := []struct {
		input     string
		gatesVars bool
	}{
		{"this", true},
		{"this[0]", true},
		{"this.a", false},
		{"a", false},
	}
	for _, tt := range tests {
		result, err := codegen.GenerateSource("opts", "Build", tt.input)
		if err != nil {
			t.Fatalf("GenerateSource(%q) error = %v", tt.input, err)
		}
		if got := strings.Contains(result.Code, "gate(vars)"); got != tt.gatesVars {
			t.Errorf("GenerateSource(%q) checks vars = %v, want %v\n%s", tt.input, got, tt.gatesVars, result.Code)
		}
	}
}
