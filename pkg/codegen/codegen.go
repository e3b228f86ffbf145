// Package codegen generates Go functions from options trees.
//
// A tree from parser.ParseToTree becomes one function that rebuilds the
// record at run time. Literals are emitted as Go literals; identifier and
// query expressions are resolved through package value with the same gate
// checks the interpreter applies.
package codegen

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/winopts/pkg/ast"
	"github.com/chazu/winopts/pkg/parser"
	"github.com/chazu/winopts/pkg/value"
)

const valuePkg = "github.com/chazu/winopts/pkg/value"

// Result contains the generated code and any warnings.
type Result struct {
	Code     string
	Warnings []string
	Deferred int // identifier and query expressions resolved at run time
}

// Generate produces a Go file in package pkgName declaring
//
//	func <funcName>(vars, funcs interface{}, gate value.Gate) (interface{}, error)
//
// which evaluates tree. A nil gate at run time means
// value.RequireSupportedForProcessing; nil contexts are empty objects.
//
// Trees do not record a leading this, so this.a and a generate the same
// code: a property read on vars without checking vars itself. The
// interpreter checks vars for this.a, which only differs under a gate that
// rejects the context object. A bare this, or this followed by an index
// such as this[0], does check vars.
func Generate(pkgName, funcName string, tree any) *Result {
	return generate(pkgName, funcName, "", tree)
}

// GenerateSource parses text with parser.ParseToTree and generates code for
// it. The source is kept in the function's doc comment.
func GenerateSource(pkgName, funcName, text string) (*Result, error) {
	tree, err := parser.ParseToTree(text)
	if err != nil {
		return nil, err
	}
	return generate(pkgName, funcName, text, tree), nil
}

type generator struct {
	stmts    []jen.Code
	temps    int
	deferred int
	warnings []string
}

func generate(pkgName, funcName, source string, tree any) *Result {
	g := &generator{warnings: []string{}}
	result := g.expr(tree)

	f := jen.NewFile(pkgName)
	f.HeaderComment("Code generated by winopts. DO NOT EDIT.")

	if source != "" {
		f.Commentf("%s evaluates the options record %s", funcName, source)
	} else {
		f.Commentf("%s evaluates an options record.", funcName)
	}

	var body []jen.Code
	if g.deferred > 0 {
		body = append(body,
			jen.If(jen.Id("vars").Op("==").Nil()).Block(
				jen.Id("vars").Op("=").Qual(valuePkg, "NewObject").Call(),
			),
			jen.If(jen.Id("funcs").Op("==").Nil()).Block(
				jen.Id("funcs").Op("=").Qual(valuePkg, "NewObject").Call(),
			),
			jen.If(jen.Id("gate").Op("==").Nil()).Block(
				jen.Id("gate").Op("=").Qual(valuePkg, "RequireSupportedForProcessing"),
			),
		)
		body = append(body, g.stmts...)
	} else {
		g.warn("no identifier or query expressions; %s returns a constant", funcName)
	}
	body = append(body, jen.Return(result, jen.Nil()))

	f.Func().Id(funcName).Params(
		jen.Id("vars"), jen.Id("funcs").Interface(),
		jen.Id("gate").Qual(valuePkg, "Gate"),
	).Params(jen.Interface(), jen.Error()).Block(body...)

	buf := &bytes.Buffer{}
	if err := f.Render(buf); err != nil {
		g.warn("render: %v", err)
		return &Result{
			Code:     fmt.Sprintf("// Error rendering: %v", err),
			Warnings: g.warnings,
			Deferred: g.deferred,
		}
	}
	return &Result{Code: buf.String(), Warnings: g.warnings, Deferred: g.deferred}
}

func (g *generator) warn(format string, args ...any) {
	g.warnings = append(g.warnings, fmt.Sprintf(format, args...))
}

// =============================================================================
// Expressions
// =============================================================================

// expr returns the Go expression for v. Deferred nodes are hoisted into
// temporaries in evaluation order so each lookup can return its error.
func (g *generator) expr(v any) jen.Code {
	switch x := v.(type) {
	case nil:
		return jen.Nil()
	case value.UndefinedType:
		return jen.Qual(valuePkg, "Undefined")
	case bool:
		return jen.Lit(x)
	case float64:
		return number(x)
	case string:
		return jen.Lit(x)
	case []any:
		elems := make([]jen.Code, len(x))
		for i, e := range x {
			elems[i] = g.expr(e)
		}
		return jen.Index().Interface().Values(elems...)
	case *value.Object:
		obj := jen.Qual(valuePkg, "NewObject").Call()
		for _, k := range x.Keys() {
			e, _ := x.Get(k)
			obj = obj.Dot("With").Call(jen.Lit(k), g.expr(e))
		}
		return obj
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := jen.Qual(valuePkg, "NewObject").Call()
		for _, k := range keys {
			obj = obj.Dot("With").Call(jen.Lit(k), g.expr(x[k]))
		}
		return obj
	case *ast.CallExpression:
		return g.call(x)
	case *ast.IdentifierExpression:
		return g.identifier(x)
	}
	g.warn("unsupported value of type %T replaced by nil", v)
	return jen.Nil()
}

// number renders f as a float64 expression.
func number(f float64) jen.Code {
	switch {
	case math.IsNaN(f):
		return jen.Qual("math", "NaN").Call()
	case math.IsInf(f, 1):
		return jen.Qual("math", "Inf").Call(jen.Lit(1))
	case math.IsInf(f, -1):
		return jen.Qual("math", "Inf").Call(jen.Lit(-1))
	case f == 0 && math.Signbit(f):
		return jen.Qual("math", "Copysign").Call(jen.Lit(0), jen.Lit(-1))
	}
	return jen.Float64().Call(jen.Op(strconv.FormatFloat(f, 'g', -1, 64)))
}

func (g *generator) temp() string {
	g.temps++
	return "v" + strconv.Itoa(g.temps)
}

// assign emits name, err := call followed by an error return.
func (g *generator) assign(call jen.Code) jen.Code {
	name := g.temp()
	g.stmts = append(g.stmts,
		jen.List(jen.Id(name), jen.Err()).Op(":=").Add(call),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
	)
	return jen.Id(name)
}

func (g *generator) call(c *ast.CallExpression) jen.Code {
	g.deferred++
	return g.assign(jen.Qual(valuePkg, "Invoke").Call(
		jen.Id("funcs"), jen.Lit(c.Target), jen.Lit(c.Arg0Value), jen.Id("gate"),
	))
}

// identifier resolves an access chain. A named root is a property read on
// vars; a this root checks vars itself against the gate.
func (g *generator) identifier(e *ast.IdentifierExpression) jen.Code {
	call, parts := e.Root()
	var base jen.Code
	switch {
	case call != nil:
		base = g.call(call)
	case len(parts) > 0 && isString(parts[0]):
		g.deferred++
		base = jen.Id("vars")
	default:
		g.deferred++
		g.stmts = append(g.stmts,
			jen.If(jen.Err().Op(":=").Id("gate").Call(jen.Id("vars")), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Err()),
			),
		)
		if len(parts) == 0 {
			return jen.Id("vars")
		}
		base = jen.Id("vars")
	}
	if len(parts) == 0 {
		return base
	}

	args := []jen.Code{base, jen.Id("gate")}
	for _, p := range parts {
		args = append(args, g.expr(p))
	}
	return g.assign(jen.Qual(valuePkg, "Path").Call(args...))
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}
