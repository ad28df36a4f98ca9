package parser

import (
	"strings"

	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/token"
)

// parseJSX parses an element or fragment starting at a JSXOPEN token.
func (p *Parser) parseJSX() ast.Expression {
	start := p.expect(token.JSXOPEN).Start

	// fragment: <>children</>
	if p.at(token.JSXCLOSE) {
		p.next()
		frag := &ast.JSXFragment{}
		frag.Children = p.parseJSXChildren()
		p.expect(token.JSXOPEN)
		p.expect(token.JSXSLASH)
		end := p.expect(token.JSXCLOSE).End
		frag.Span = ast.SpanBetween(start, end)
		return frag
	}

	if p.at(token.JSXSLASH) {
		p.fail("unexpected closing tag")
	}

	name, tagExpr := p.parseJSXTagName()
	el := &ast.JSXElement{TagName: name, TagExpr: tagExpr}

	// attributes
	for !p.at(token.JSXSLASH, token.JSXCLOSE, token.EOF) {
		el.Attributes = append(el.Attributes, p.parseJSXAttribute())
	}

	if p.accept(token.JSXSLASH) {
		end := p.expect(token.JSXCLOSE).End
		el.SelfClosing = true
		el.Span = ast.SpanBetween(start, end)
		return el
	}

	p.expect(token.JSXCLOSE)
	el.Children = p.parseJSXChildren()

	p.expect(token.JSXOPEN)
	p.expect(token.JSXSLASH)
	closeName, _ := p.parseJSXTagName()
	if closeName != name {
		p.fail("mismatched tags: <%s> and </%s>", name, closeName)
	}
	end := p.expect(token.JSXCLOSE).End
	el.Span = ast.SpanBetween(start, end)
	return el
}

// parseJSXTagName parses `div`, `Counter` or `Context.Provider` and builds
// the tag's expression form.
func (p *Parser) parseJSXTagName() (string, ast.Expression) {
	first := p.cur()
	if first.Kind != token.IDENT {
		p.fail("expected tag name, found %q", first.Text)
	}
	p.next()
	name := first.Text
	var expr ast.Expression = &ast.Identifier{Span: ast.SpanBetween(first.Start, first.End), Name: first.Text}
	for p.accept(token.DOT) {
		prop := p.expect(token.IDENT)
		name += "." + prop.Text
		expr = &ast.MemberExpression{
			Span:     ast.SpanBetween(first.Start, prop.End),
			Object:   expr,
			Property: &ast.Identifier{Span: ast.SpanBetween(prop.Start, prop.End), Name: prop.Text},
		}
	}
	return name, expr
}

func (p *Parser) parseJSXAttribute() ast.JSXAttribute {
	attr := ast.JSXAttribute{}
	start := p.cur().Start

	// {...props} spread
	if p.at(token.LBRACE) {
		p.next()
		p.expect(token.ELLIPSIS)
		attr.Spread = p.parseAssignment()
		end := p.expect(token.RBRACE).End
		attr.Span = ast.SpanBetween(start, end)
		return attr
	}

	nameTok := p.cur()
	if nameTok.Kind != token.IDENT && !nameTok.IsKeyword() {
		p.fail("expected attribute name, found %q", nameTok.Text)
	}
	p.next()
	attr.Name = nameTok.Text
	end := nameTok.End

	if p.accept(token.ASSIGN) {
		switch p.cur().Kind {
		case token.STRING:
			t := p.next()
			attr.Value = &ast.StringLiteral{Span: ast.SpanBetween(t.Start, t.End), Raw: t.Text, Value: stringValue(t.Text)}
			end = t.End
		case token.LBRACE:
			p.next()
			attr.Value = p.parseAssignment()
			end = p.expect(token.RBRACE).End
		default:
			p.fail("expected attribute value, found %q", p.cur().Text)
		}
	}
	attr.Span = ast.SpanBetween(start, end)
	return attr
}

// parseJSXChildren parses text, expression containers and nested elements
// until the enclosing closing tag. HTML entities in text are decoded here,
// not in the lexer.
func (p *Parser) parseJSXChildren() []ast.JSXChild {
	var children []ast.JSXChild
	for {
		switch p.cur().Kind {
		case token.JSXTEXT:
			t := p.next()
			value := ast.DecodeEntities(collapseJSXWhitespace(t.Text))
			children = append(children, &ast.JSXText{
				Span:  ast.SpanBetween(t.Start, t.End),
				Raw:   t.Text,
				Value: value,
			})
		case token.LBRACE:
			start := p.next().Start
			if p.at(token.RBRACE) {
				// empty container, e.g. a stripped comment
				p.next()
				continue
			}
			expr := p.parseExpression()
			end := p.expect(token.RBRACE).End
			children = append(children, &ast.JSXExpression{
				Span: ast.SpanBetween(start, end),
				Expr: expr,
			})
		case token.JSXOPEN:
			if p.peek().Kind == token.JSXSLASH {
				return children
			}
			child := p.parseJSX()
			children = append(children, child.(ast.JSXChild))
		default:
			return children
		}
	}
}

// collapseJSXWhitespace folds runs of whitespace in JSX text into single
// spaces, matching how the emitted text nodes behave in the DOM.
func collapseJSXWhitespace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	out := strings.Join(fields, " ")
	if s[0] == ' ' || s[0] == '\t' {
		out = " " + out
	}
	last := s[len(s)-1]
	if last == ' ' || last == '\t' || last == '\n' {
		out = out + " "
	}
	return out
}
