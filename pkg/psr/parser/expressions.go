package parser

import (
	"strings"

	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/lexer"
	"github.com/psr-lang/psr/pkg/psr/token"
)

// binding powers for precedence climbing, loosest first
const (
	precLowest = iota
	precCoalesce
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
)

func binaryPrec(k token.Kind) int {
	switch k {
	case token.COALESCE:
		return precCoalesce
	case token.OR:
		return precLogicalOr
	case token.AND:
		return precLogicalAnd
	case token.BITOR:
		return precBitOr
	case token.BITXOR:
		return precBitXor
	case token.BITAND:
		return precBitAnd
	case token.EQ, token.NEQ, token.STRICTEQ, token.STRICTNEQ:
		return precEquality
	case token.LT, token.GT, token.LTE, token.GTE, token.IN, token.INSTANCEOF:
		return precRelational
	case token.SHL, token.SHR, token.USHR:
		return precShift
	case token.PLUS, token.MINUS:
		return precAdditive
	case token.STAR, token.SLASH, token.PERCENT:
		return precMultiplicative
	case token.POWER:
		return precExponent
	}
	return precLowest
}

func isLogical(k token.Kind) bool {
	return k == token.AND || k == token.OR || k == token.COALESCE
}

// parseExpression parses a full expression including comma sequences.
func (p *Parser) parseExpression() ast.Expression {
	first := p.parseAssignment()
	if !p.at(token.COMMA) {
		return first
	}
	seq := &ast.SequenceExpression{Expressions: []ast.Expression{first}}
	for p.accept(token.COMMA) {
		seq.Expressions = append(seq.Expressions, p.parseAssignment())
	}
	last := seq.Expressions[len(seq.Expressions)-1]
	seq.Span = ast.SpanBetween(first.Pos(), last.End())
	return seq
}

// parseAssignment parses assignment-level expressions, which is also where
// arrow functions and yield live.
func (p *Parser) parseAssignment() ast.Expression {
	if p.at(token.YIELD) {
		return p.parseYield()
	}
	if p.arrowAhead() {
		return p.parseArrowFunction()
	}
	left := p.parseConditional()
	if p.cur().IsAssignment() {
		op := p.next()
		right := p.parseAssignment()
		return &ast.AssignmentExpression{
			Span:  ast.SpanBetween(left.Pos(), right.End()),
			Op:    op.Kind,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *Parser) parseYield() ast.Expression {
	t := p.expect(token.YIELD)
	expr := &ast.YieldExpression{Span: ast.SpanBetween(t.Start, t.End)}
	if p.accept(token.STAR) {
		expr.Delegate = true
	}
	if !p.at(token.SEMICOLON, token.RPAREN, token.RBRACE, token.RBRACKET, token.COMMA, token.EOF) {
		expr.Argument = p.parseAssignment()
		expr.To = expr.Argument.End()
	}
	return expr
}

func (p *Parser) parseConditional() ast.Expression {
	test := p.parseBinary(precLowest + 1)
	if !p.at(token.QUESTION) {
		return test
	}
	p.next()
	consequent := p.parseAssignment()
	p.expect(token.COLON)
	alternate := p.parseAssignment()
	return &ast.ConditionalExpression{
		Span:       ast.SpanBetween(test.Pos(), alternate.End()),
		Test:       test,
		Consequent: consequent,
		Alternate:  alternate,
	}
}

func (p *Parser) parseBinary(minPrec int) ast.Expression {
	left := p.parseUnary()
	for {
		op := p.cur().Kind
		prec := binaryPrec(op)
		if prec < minPrec {
			return left
		}
		p.next()
		// ** is right-associative, everything else left
		nextMin := prec + 1
		if op == token.POWER {
			nextMin = prec
		}
		right := p.parseBinary(nextMin)
		span := ast.SpanBetween(left.Pos(), right.End())
		if isLogical(op) {
			left = &ast.LogicalExpression{Span: span, Op: op, Left: left, Right: right}
		} else {
			left = &ast.BinaryExpression{Span: span, Op: op, Left: left, Right: right}
		}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.cur().Kind {
	case token.NOT, token.MINUS, token.PLUS, token.BITNOT, token.TYPEOF, token.VOID, token.DELETE:
		op := p.next()
		operand := p.parseUnary()
		return &ast.UnaryExpression{Span: ast.SpanBetween(op.Start, operand.End()), Op: op.Kind, Operand: operand}
	case token.AWAIT:
		t := p.next()
		operand := p.parseUnary()
		return &ast.AwaitExpression{Span: ast.SpanBetween(t.Start, operand.End()), Argument: operand}
	case token.PLUSPLUS, token.MINUSMINUS:
		op := p.next()
		operand := p.parseUnary()
		return &ast.UpdateExpression{Span: ast.SpanBetween(op.Start, operand.End()), Op: op.Kind, Operand: operand, Prefix: true}
	}
	return p.parsePostfix(p.parsePrimary())
}

// parsePostfix parses member access, calls, postfix update, `as` casts and
// non-null assertions onto an already parsed operand.
func (p *Parser) parsePostfix(expr ast.Expression) ast.Expression {
	for {
		switch p.cur().Kind {
		case token.DOT, token.QUESTDOT:
			optional := p.cur().Kind == token.QUESTDOT
			p.next()
			if optional && p.at(token.LPAREN) {
				// foo?.(args)
				expr = p.parseCall(expr, "", true)
				continue
			}
			prop := p.cur()
			if prop.Kind != token.IDENT && !prop.IsKeyword() {
				p.fail("expected property name, found %q", prop.Text)
			}
			p.next()
			expr = &ast.MemberExpression{
				Span:     ast.SpanBetween(expr.Pos(), prop.End),
				Object:   expr,
				Property: &ast.Identifier{Span: ast.SpanBetween(prop.Start, prop.End), Name: prop.Text},
				Optional: optional,
			}
		case token.LBRACKET:
			p.next()
			index := p.parseExpression()
			end := p.expect(token.RBRACKET).End
			expr = &ast.MemberExpression{
				Span:     ast.SpanBetween(expr.Pos(), end),
				Object:   expr,
				Property: index,
				Computed: true,
			}
		case token.LPAREN:
			expr = p.parseCall(expr, "", false)
		case token.GENERICOPEN:
			typeArgs := p.parseTypeArgsRaw()
			expr = p.parseCall(expr, typeArgs, false)
		case token.PLUSPLUS, token.MINUSMINUS:
			if p.cur().Start.Line != expr.End().Line {
				return expr
			}
			op := p.next()
			expr = &ast.UpdateExpression{Span: ast.SpanBetween(expr.Pos(), op.End), Op: op.Kind, Operand: expr}
		case token.AS:
			p.next()
			ref := p.parseTypeText(token.SEMICOLON, token.COMMA, token.RPAREN, token.RBRACKET, token.RBRACE, token.COLON, token.QUESTION)
			expr = &ast.AsExpression{Span: ast.SpanBetween(expr.Pos(), ref.End()), Expr: expr, Type: ref}
		case token.NOT:
			// a `!` directly after an operand is a non-null assertion
			t := p.next()
			expr = &ast.AsExpression{Span: ast.SpanBetween(expr.Pos(), t.End), Expr: expr, NonNull: true}
		default:
			return expr
		}
	}
}

// parseCall consumes an argument list, including its opening paren.
func (p *Parser) parseCall(callee ast.Expression, typeArgs string, optional bool) ast.Expression {
	p.expect(token.LPAREN)
	call := &ast.CallExpression{Callee: callee, TypeArgs: typeArgs, Optional: optional}
	for !p.at(token.RPAREN, token.EOF) {
		if p.at(token.ELLIPSIS) {
			start := p.next().Start
			arg := p.parseAssignment()
			call.Args = append(call.Args, &ast.SpreadElement{Span: ast.SpanBetween(start, arg.End()), Argument: arg})
		} else {
			call.Args = append(call.Args, p.parseAssignment())
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	end := p.expect(token.RPAREN).End
	call.Span = ast.SpanBetween(callee.Pos(), end)
	return call
}

func (p *Parser) parsePrimary() ast.Expression {
	t := p.cur()
	switch t.Kind {
	case token.IDENT:
		p.next()
		return &ast.Identifier{Span: ast.SpanBetween(t.Start, t.End), Name: t.Text}
	case token.NUMBER:
		p.next()
		return &ast.NumberLiteral{Span: ast.SpanBetween(t.Start, t.End), Raw: t.Text}
	case token.STRING:
		p.next()
		return &ast.StringLiteral{Span: ast.SpanBetween(t.Start, t.End), Raw: t.Text, Value: stringValue(t.Text)}
	case token.TEMPLATE:
		return p.parseTemplateLiteral()
	case token.REGEX:
		p.next()
		return &ast.RegexLiteral{Span: ast.SpanBetween(t.Start, t.End), Raw: t.Text}
	case token.TRUE, token.FALSE:
		p.next()
		return &ast.BooleanLiteral{Span: ast.SpanBetween(t.Start, t.End), Value: t.Kind == token.TRUE}
	case token.NULL:
		p.next()
		return &ast.NullLiteral{Span: ast.SpanBetween(t.Start, t.End)}
	case token.UNDEFINED:
		p.next()
		return &ast.UndefinedLiteral{Span: ast.SpanBetween(t.Start, t.End)}
	case token.THIS:
		p.next()
		return &ast.ThisExpression{Span: ast.SpanBetween(t.Start, t.End)}
	case token.SUPER:
		p.next()
		return &ast.Identifier{Span: ast.SpanBetween(t.Start, t.End), Name: "super"}
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.LPAREN:
		p.next()
		inner := p.parseExpression()
		end := p.expect(token.RPAREN).End
		return &ast.ParenExpression{Span: ast.SpanBetween(t.Start, end), Expr: inner}
	case token.FUNCTION:
		return p.parseFunctionExpression(false)
	case token.ASYNC:
		if p.peek().Kind == token.FUNCTION {
			p.next()
			return p.parseFunctionExpression(true)
		}
		// `async` used as a plain identifier
		p.next()
		return &ast.Identifier{Span: ast.SpanBetween(t.Start, t.End), Name: t.Text}
	case token.NEW:
		return p.parseNewExpression()
	case token.JSXOPEN:
		return p.parseJSX()
	}
	p.fail("unexpected token %q", t.Text)
	return nil
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	start := p.expect(token.LBRACKET).Start
	lit := &ast.ArrayLiteral{}
	for !p.at(token.RBRACKET, token.EOF) {
		if p.at(token.ELLIPSIS) {
			s := p.next().Start
			arg := p.parseAssignment()
			lit.Elements = append(lit.Elements, &ast.SpreadElement{Span: ast.SpanBetween(s, arg.End()), Argument: arg})
		} else {
			lit.Elements = append(lit.Elements, p.parseAssignment())
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	end := p.expect(token.RBRACKET).End
	lit.Span = ast.SpanBetween(start, end)
	return lit
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	start := p.expect(token.LBRACE).Start
	lit := &ast.ObjectLiteral{}
	for !p.at(token.RBRACE, token.EOF) {
		prop := &ast.ObjectProperty{}
		pstart := p.cur().Start
		switch {
		case p.at(token.ELLIPSIS):
			p.next()
			prop.Spread = true
			prop.Value = p.parseAssignment()
		case p.at(token.LBRACKET):
			p.next()
			prop.Computed = true
			prop.Key = p.parseAssignment()
			p.expect(token.RBRACKET)
			p.expect(token.COLON)
			prop.Value = p.parseAssignment()
		default:
			keyTok := p.cur()
			if keyTok.Kind != token.IDENT && keyTok.Kind != token.STRING &&
				keyTok.Kind != token.NUMBER && !keyTok.IsKeyword() {
				p.fail("expected object key, found %q", keyTok.Text)
			}
			p.next()
			key := &ast.Identifier{Span: ast.SpanBetween(keyTok.Start, keyTok.End), Name: keyTok.Text}
			prop.Key = key
			switch {
			case p.accept(token.COLON):
				prop.Value = p.parseAssignment()
			case p.at(token.LPAREN):
				// shorthand method
				p.next()
				params := p.parseParams()
				var ret *ast.TypeRef
				if p.at(token.COLON) {
					ret = p.parseTypeAnnotation(token.LBRACE)
				}
				body := p.parseBlockStatement().(*ast.BlockStatement)
				prop.Value = &ast.FunctionExpression{
					Span:       ast.SpanBetween(keyTok.Start, body.End()),
					Name:       keyTok.Text,
					Params:     params,
					ReturnType: ret,
					Body:       body,
				}
			default:
				prop.Shorthand = true
				prop.Value = &ast.Identifier{Span: key.Span, Name: keyTok.Text}
			}
		}
		prop.Span = ast.SpanBetween(pstart, prop.Value.End())
		lit.Properties = append(lit.Properties, prop)
		if !p.accept(token.COMMA) {
			break
		}
	}
	end := p.expect(token.RBRACE).End
	lit.Span = ast.SpanBetween(start, end)
	return lit
}

func (p *Parser) parseFunctionExpression(async bool) ast.Expression {
	start := p.expect(token.FUNCTION).Start
	generator := p.accept(token.STAR)
	name := ""
	if p.at(token.IDENT) {
		name = p.next().Text
	}
	p.parseOptionalTypeParams()
	p.expect(token.LPAREN)
	params := p.parseParams()
	var ret *ast.TypeRef
	if p.at(token.COLON) {
		ret = p.parseTypeAnnotation(token.LBRACE)
	}
	body := p.parseBlockStatement().(*ast.BlockStatement)
	return &ast.FunctionExpression{
		Span:       ast.SpanBetween(start, body.End()),
		Name:       name,
		Params:     params,
		ReturnType: ret,
		Body:       body,
		Async:      async,
		Generator:  generator,
	}
}

func (p *Parser) parseNewExpression() ast.Expression {
	start := p.expect(token.NEW).Start
	callee := p.parsePrimary()
	// member access binds tighter than the call in `new a.b()`
	for p.at(token.DOT) {
		p.next()
		prop := p.expect(token.IDENT)
		callee = &ast.MemberExpression{
			Span:     ast.SpanBetween(callee.Pos(), prop.End),
			Object:   callee,
			Property: &ast.Identifier{Span: ast.SpanBetween(prop.Start, prop.End), Name: prop.Text},
		}
	}
	expr := &ast.NewExpression{Callee: callee}
	end := callee.End()
	if p.at(token.GENERICOPEN) {
		expr.TypeArgs = p.parseTypeArgsRaw()
	}
	if p.accept(token.LPAREN) {
		for !p.at(token.RPAREN, token.EOF) {
			expr.Args = append(expr.Args, p.parseAssignment())
			if !p.accept(token.COMMA) {
				break
			}
		}
		end = p.expect(token.RPAREN).End
	}
	expr.Span = ast.SpanBetween(start, end)
	return expr
}

// --- arrow functions ---

// arrowAhead decides with a bounded token scan whether the cursor sits on
// an arrow function. This is the parser's only use of backtracking-style
// lookahead.
func (p *Parser) arrowAhead() bool {
	switch p.cur().Kind {
	case token.IDENT:
		return p.peek().Kind == token.ARROW
	case token.ASYNC:
		if p.peek().Kind == token.IDENT && p.peekAt(2).Kind == token.ARROW {
			return true
		}
		if p.peek().Kind == token.LPAREN {
			return p.parenArrowAhead(p.pos + 1)
		}
		return false
	case token.LPAREN:
		return p.parenArrowAhead(p.pos)
	}
	return false
}

// parenArrowAhead scans from a LPAREN at index start to its matching close
// and reports whether an `=>` follows, optionally behind a return-type
// annotation.
func (p *Parser) parenArrowAhead(start int) bool {
	depth := 0
	i := start
	for ; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				goto closed
			}
		case token.EOF:
			return false
		}
	}
	return false
closed:
	i++
	if i >= len(p.tokens) {
		return false
	}
	if p.tokens[i].Kind == token.ARROW {
		return true
	}
	if p.tokens[i].Kind != token.COLON {
		return false
	}
	// return type annotation: scan a bounded window for the arrow at
	// bracket depth zero
	depth = 0
	for j := i + 1; j < len(p.tokens) && j < i+40; j++ {
		switch p.tokens[j].Kind {
		case token.LPAREN, token.LBRACE, token.LBRACKET, token.GENERICOPEN:
			depth++
		case token.RPAREN, token.RBRACE, token.RBRACKET, token.GENERICCLOSE:
			depth--
		case token.ARROW:
			if depth == 0 {
				return true
			}
		case token.SEMICOLON, token.EOF:
			return false
		}
	}
	return false
}

func (p *Parser) parseArrowFunction() ast.Expression {
	start := p.cur().Start
	arrow := &ast.ArrowFunction{}
	if p.at(token.ASYNC) {
		arrow.Async = true
		p.next()
	}
	if p.at(token.IDENT) {
		t := p.next()
		arrow.Params = []ast.Param{{
			Span: ast.SpanBetween(t.Start, t.End),
			Name: t.Text,
		}}
	} else {
		p.expect(token.LPAREN)
		arrow.Params = p.parseParams()
		if p.at(token.COLON) {
			arrow.ReturnType = p.parseTypeAnnotation(token.ARROW)
		}
	}
	p.expect(token.ARROW)
	if p.at(token.LBRACE) {
		arrow.Body = p.parseBlockStatement()
	} else {
		arrow.Body = p.parseAssignment()
	}
	arrow.Span = ast.SpanBetween(start, arrow.Body.End())
	return arrow
}

// --- template literals ---

// parseTemplateLiteral splits the raw template token into quasis and
// interpolated expressions; each interpolation is parsed with a fresh
// sub-parser over its source slice.
func (p *Parser) parseTemplateLiteral() ast.Expression {
	t := p.expect(token.TEMPLATE)
	lit := &ast.TemplateLiteral{Span: ast.SpanBetween(t.Start, t.End), Raw: t.Text}
	body := strings.TrimSuffix(strings.TrimPrefix(t.Text, "`"), "`")

	var quasi strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			quasi.WriteByte(body[i])
			quasi.WriteByte(body[i+1])
			i++
			continue
		}
		if body[i] == '$' && i+1 < len(body) && body[i+1] == '{' {
			depth := 1
			j := i + 2
			for ; j < len(body) && depth > 0; j++ {
				switch body[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
			}
			exprSrc := body[i+2 : j-1]
			lit.Quasis = append(lit.Quasis, quasi.String())
			quasi.Reset()
			lit.Expressions = append(lit.Expressions, p.parseSubExpression(exprSrc, t.Start))
			i = j - 1
			continue
		}
		quasi.WriteByte(body[i])
	}
	lit.Quasis = append(lit.Quasis, quasi.String())
	return lit
}

// parseSubExpression parses an expression from a source fragment, as used
// for template interpolations. Positions in the result are relative to the
// fragment; at is used for error attribution.
func (p *Parser) parseSubExpression(src string, at token.Position) ast.Expression {
	tokens, lexDiags := lexer.Tokenize(src)
	if lexDiags.HasErrors() {
		p.fail("invalid template interpolation near %d:%d", at.Line, at.Column)
	}
	sub := New(src, tokens, Options{})
	expr := sub.parseAssignment()
	p.diags = append(p.diags, sub.diags...)
	if sub.diags.HasErrors() {
		p.fail("invalid template interpolation near %d:%d", at.Line, at.Column)
	}
	return expr
}

// stringValue decodes a quoted string literal's escapes.
func stringValue(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' || i+1 >= len(body) {
			b.WriteByte(body[i])
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
