// Package parser builds the PSR syntax tree from a token stream.
//
// The parser is recursive descent with one token of lookahead. Backtracking
// is used only where a short bounded scan disambiguates, such as deciding
// whether a parenthesized region is a grouping expression or an arrow
// function's parameter list. Expressions use precedence climbing; JSX is a
// primary-expression alternative wherever an expression is expected.
package parser

import (
	"fmt"

	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/diag"
	"github.com/psr-lang/psr/pkg/psr/lexer"
	"github.com/psr-lang/psr/pkg/psr/token"
)

// Options configures a Parser.
type Options struct {
	// CollectErrors makes the parser record an error and resynchronize at
	// the next statement boundary instead of stopping at the first error.
	// A unit with any parse error still must not reach later phases.
	CollectErrors bool
	// MaxErrors caps recorded errors in CollectErrors mode. Zero means 20.
	MaxErrors int
}

// ParseError is a positioned syntax error.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser holds the token cursor for one compilation unit.
type Parser struct {
	src    string
	tokens []token.Token
	pos    int
	opts   Options
	diags  diag.List
}

// New builds a parser over an already tokenized unit. src must be the text
// the tokens were produced from; it is used to slice raw type-annotation
// text.
func New(src string, tokens []token.Token, opts Options) *Parser {
	if opts.MaxErrors == 0 {
		opts.MaxErrors = 20
	}
	return &Parser{src: src, tokens: tokens, opts: opts}
}

// Parse tokenizes and parses source in one step with default options.
func Parse(source string) (*ast.Program, diag.List) {
	tokens, lexDiags := lexer.Tokenize(source)
	if lexDiags.HasErrors() {
		return nil, lexDiags
	}
	p := New(source, tokens, Options{})
	prog, parseDiags := p.ParseProgram()
	return prog, append(lexDiags, parseDiags...)
}

// bail is the panic payload used for syntax-error recovery.
type bail struct{ err *ParseError }

// ParseProgram parses the whole unit. The returned diagnostics list is
// non-empty iff parsing failed somewhere; callers must treat any error
// entry as a hard failure for the unit and never hand the tree to later
// phases.
func (p *Parser) ParseProgram() (*ast.Program, diag.List) {
	prog := &ast.Program{Span: ast.SpanBetween(p.cur().Start, p.cur().Start)}
	for !p.at(token.EOF) {
		stmt := p.parseTopLevel()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if len(p.diags.Errors()) >= p.opts.MaxErrors {
			break
		}
		if !p.opts.CollectErrors && p.diags.HasErrors() {
			break
		}
	}
	if len(p.tokens) > 0 {
		prog.To = p.tokens[len(p.tokens)-1].End
	}
	return prog, p.diags
}

// parseTopLevel parses one statement, recovering at statement boundaries
// in CollectErrors mode.
func (p *Parser) parseTopLevel() (stmt ast.Statement) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bail)
			if !ok {
				panic(r)
			}
			p.diags = append(p.diags, diag.Errorf(diag.PhaseParser, b.err.Line, b.err.Column, "%s", b.err.Message))
			stmt = nil
			if p.opts.CollectErrors {
				p.synchronize()
			} else {
				p.pos = len(p.tokens) - 1 // park on EOF
			}
		}
	}()
	return p.parseStatement()
}

// synchronize skips to the next plausible statement start.
func (p *Parser) synchronize() {
	for !p.at(token.EOF) {
		if p.at(token.SEMICOLON) {
			p.next()
			return
		}
		switch p.cur().Kind {
		case token.COMPONENT, token.IMPORT, token.EXPORT, token.CONST,
			token.LET, token.VAR, token.FUNCTION, token.IF, token.FOR,
			token.WHILE, token.RETURN, token.TRY, token.THROW, token.CLASS,
			token.INTERFACE, token.ENUM, token.NAMESPACE, token.SWITCH,
			token.RBRACE:
			return
		}
		p.next()
	}
}

// --- cursor ---

func (p *Parser) cur() token.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return token.Token{Kind: token.EOF}
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return token.Token{Kind: token.EOF}
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return token.Token{Kind: token.EOF}
}

func (p *Parser) at(kinds ...token.Kind) bool {
	return p.cur().Is(kinds...)
}

func (p *Parser) next() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

// accept consumes the current token when it has the given kind.
func (p *Parser) accept(kind token.Kind) bool {
	if p.at(kind) {
		p.next()
		return true
	}
	return false
}

// expect consumes a token of the given kind or raises a syntax error.
func (p *Parser) expect(kind token.Kind) token.Token {
	if p.at(kind) {
		return p.next()
	}
	p.fail("expected %q, found %q", kind, p.cur().Text)
	return token.Token{}
}

func (p *Parser) fail(format string, args ...any) {
	t := p.cur()
	panic(bail{&ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    t.Start.Line,
		Column:  t.Start.Column,
	}})
}

func (p *Parser) warn(pos token.Position, format string, args ...any) {
	p.diags = append(p.diags, diag.Warnf(diag.PhaseParser, pos.Line, pos.Column, format, args...))
}

// semicolon consumes an optional statement terminator and reports where
// it ended, so statement spans can cover it.
func (p *Parser) semicolon() (token.Position, bool) {
	if p.at(token.SEMICOLON) {
		return p.next().End, true
	}
	return token.Position{}, false
}

// rawBetween slices the original source text between two offsets.
func (p *Parser) rawBetween(from, to token.Position) string {
	if from.Offset < 0 || to.Offset > len(p.src) || from.Offset > to.Offset {
		return ""
	}
	return p.src[from.Offset:to.Offset]
}
