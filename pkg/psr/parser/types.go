package parser

import (
	"strings"

	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/token"
)

// Type annotations are carried through syntactically, never verified. The
// parser captures their raw source text, balancing the bracket kinds that
// can occur inside a type, and stops at the first terminator from stops
// seen at depth zero.

// parseTypeAnnotation consumes a leading `:` and the annotation text.
func (p *Parser) parseTypeAnnotation(stops ...token.Kind) *ast.TypeRef {
	p.expect(token.COLON)
	return p.parseTypeText(stops...)
}

// parseTypeText consumes type tokens until a stop token at depth zero.
func (p *Parser) parseTypeText(stops ...token.Kind) *ast.TypeRef {
	start := p.cur().Start
	depth := 0
	end := start
	for !p.at(token.EOF) {
		k := p.cur().Kind
		if depth == 0 {
			stopped := false
			for _, s := range stops {
				if k == s {
					stopped = true
					break
				}
			}
			if stopped {
				break
			}
			// A closing bracket we did not open always terminates the type.
			if k == token.RPAREN || k == token.RBRACE || k == token.RBRACKET || k == token.GENERICCLOSE {
				break
			}
		}
		switch k {
		case token.LPAREN, token.LBRACE, token.LBRACKET, token.GENERICOPEN:
			depth++
		case token.RPAREN, token.RBRACE, token.RBRACKET, token.GENERICCLOSE:
			depth--
		}
		end = p.next().End
	}
	text := strings.TrimSpace(p.rawBetween(start, end))
	if text == "" {
		p.fail("expected type annotation, found %q", p.cur().Text)
	}
	return &ast.TypeRef{Span: ast.SpanBetween(start, end), Text: text}
}

// parseOptionalTypeParams captures a `<T, ...>` list as raw text when
// present.
func (p *Parser) parseOptionalTypeParams() string {
	if !p.at(token.GENERICOPEN) {
		return ""
	}
	return p.parseTypeArgsRaw()
}

// parseTypeArgsRaw consumes a balanced GENERICOPEN..GENERICCLOSE region and
// returns its raw source text including the angle brackets.
func (p *Parser) parseTypeArgsRaw() string {
	start := p.expect(token.GENERICOPEN).Start
	depth := 1
	end := start
	for depth > 0 && !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.GENERICOPEN:
			depth++
		case token.GENERICCLOSE:
			depth--
		}
		end = p.next().End
	}
	return p.rawBetween(start, end)
}
