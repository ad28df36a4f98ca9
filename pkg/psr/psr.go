// Package psr compiles PSR source, TypeScript/JSX plus component
// declarations and signal primitives, into plain TypeScript driving the
// runtime registry.
//
// The pipeline runs leaves first: lexer, parser, analysis, then emission
// with component detection, reactivity classification and IR lowering
// folded in. Parse errors abort the unit before any later phase sees it.
package psr

import (
	"errors"
	"time"

	"github.com/psr-lang/psr/pkg/psr/analysis"
	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/diag"
	"github.com/psr-lang/psr/pkg/psr/emit"
	"github.com/psr-lang/psr/pkg/psr/ir"
	"github.com/psr-lang/psr/pkg/psr/lexer"
	"github.com/psr-lang/psr/pkg/psr/parser"
)

// Config holds per-transform settings. The zero value is a working
// default.
type Config struct {
	// Indent is the output indentation unit, two spaces when empty.
	Indent string
	// MaxDepth bounds render-tree lowering, ir.DefaultMaxDepth when zero.
	// AST nesting is always checked against ast.DefaultMaxDepth.
	MaxDepth int
	// Strict stops at the first error instead of collecting and
	// resynchronizing.
	Strict bool
	// Debug adds info-level phase diagnostics to the result.
	Debug bool
}

// Option mutates a Config.
type Option func(*Config)

func WithIndent(indent string) Option {
	return func(c *Config) { c.Indent = indent }
}

func WithMaxDepth(depth int) Option {
	return func(c *Config) { c.MaxDepth = depth }
}

func WithStrict() Option {
	return func(c *Config) { c.Strict = true }
}

func WithDebug() Option {
	return func(c *Config) { c.Debug = true }
}

// Metrics summarizes one transform.
type Metrics struct {
	Tokens     int
	Statements int
	Components int
	Duration   time.Duration
}

// Result is the outcome of one transform. Code is empty whenever
// Diagnostics carries at least one error.
type Result struct {
	Code        string
	Diagnostics diag.List
	Components  []*ir.Component
	Metrics     Metrics
}

// Ok reports whether the transform produced usable output.
func (r Result) Ok() bool {
	return !r.Diagnostics.HasErrors()
}

// Transform compiles one source unit.
func Transform(source string, opts ...Option) Result {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	start := time.Now()
	res := transform(source, cfg)
	res.Metrics.Duration = time.Since(start)
	if res.Diagnostics.HasErrors() {
		res.Code = ""
	}
	return res
}

func transform(source string, cfg Config) Result {
	var res Result

	recovery := lexer.Collect
	if cfg.Strict {
		recovery = lexer.Strict
	}
	lx := lexer.New(source, lexer.Options{Recovery: recovery})
	tokens, lexDiags := lx.Tokenize()
	res.Diagnostics = append(res.Diagnostics, lexDiags...)
	res.Metrics.Tokens = len(tokens)
	if lexDiags.HasErrors() {
		return res
	}
	if cfg.Debug {
		res.Diagnostics = append(res.Diagnostics,
			diag.Infof(diag.PhaseLexer, "lexed %d tokens", len(tokens)))
	}

	p := parser.New(source, tokens, parser.Options{CollectErrors: !cfg.Strict})
	prog, parseDiags := p.ParseProgram()
	res.Diagnostics = append(res.Diagnostics, parseDiags...)
	if prog != nil {
		res.Metrics.Statements = len(prog.Statements)
	}
	if prog == nil || parseDiags.HasErrors() {
		return res
	}
	if cfg.Debug {
		res.Diagnostics = append(res.Diagnostics,
			diag.Infof(diag.PhaseParser, "parsed %d top-level statements", len(prog.Statements)))
	}

	info, err := analysis.Collect(prog)
	if err != nil {
		var de *ast.DepthError
		if errors.As(err, &de) {
			res.Diagnostics = append(res.Diagnostics,
				diag.Errorf(diag.PhaseAnalysis, de.At.Line, de.At.Column,
					"tree nesting exceeds the maximum depth of %d", de.Depth))
		} else {
			res.Diagnostics = append(res.Diagnostics,
				diag.Errorf(diag.PhaseAnalysis, 0, 0, "%s", err))
		}
		return res
	}

	em := emit.New(source, info, emit.Options{Indent: cfg.Indent, MaxDepth: cfg.MaxDepth})
	res.Code = em.EmitProgram(prog)
	res.Diagnostics = append(res.Diagnostics, em.Diagnostics()...)
	res.Components = em.Components
	res.Metrics.Components = len(em.Components)
	if cfg.Debug {
		res.Diagnostics = append(res.Diagnostics,
			diag.Infof(diag.PhaseEmitter, "emitted %d components", len(em.Components)))
	}
	return res
}
