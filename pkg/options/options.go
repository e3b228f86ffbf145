// Package options parses declarative options records the way markup
// activation does: many records, often repeating the same text, each
// evaluated against its own variable context.
package options

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/chazu/winopts/pkg/parser"
	"github.com/chazu/winopts/pkg/value"
)

// Parser evaluates options records with shared query functions and a
// shared token cache. It is safe for concurrent use when Funcs is. The zero
// value is usable and lexes every record.
type Parser struct {
	Cache *Cache     // nil means no caching
	Funcs any        // query function context; nil means none
	Gate  value.Gate // nil means value.RequireSupportedForProcessing
}

// NewParser returns a parser with an empty cache.
func NewParser(funcs any) *Parser {
	return &Parser{Cache: NewCache(), Funcs: funcs}
}

// Record is one options text to evaluate.
type Record struct {
	Name string // identifies the record in errors, such as an element id
	Text string
	Vars any
}

// Result is the outcome of one record.
type Result struct {
	Record Record
	Value  any
	Err    error
}

// Parse evaluates text against vars.
func (p *Parser) Parse(text string, vars any) (any, error) {
	return parser.NewInterpreter(p.Cache.Tokens(text), text, vars, p.Funcs, p.Gate).Run()
}

// ParseToTree builds the deferred tree for text.
func (p *Parser) ParseToTree(text string) (any, error) {
	return parser.NewTreeBuilder(p.Cache.Tokens(text), text).Run()
}

// ParseAll evaluates every record in order. A failing record does not stop
// the others; its error is kept in its Result and also collected into the
// returned error, prefixed with the record name.
func (p *Parser) ParseAll(records []Record) ([]Result, error) {
	var errs *multierror.Error
	results := make([]Result, len(records))
	for i, r := range records {
		v, err := p.Parse(r.Text, r.Vars)
		results[i] = Result{Record: r, Value: v, Err: err}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", r.Name, err))
		}
	}
	return results, errs.ErrorOrNil()
}

// ParseAll evaluates records with a fresh Parser over funcs.
func ParseAll(records []Record, funcs any) ([]Result, error) {
	return NewParser(funcs).ParseAll(records)
}
