package parser

import (
	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Kind {
	case token.COMPONENT:
		return p.parseComponentDeclaration()
	case token.IMPORT:
		return p.parseImportDeclaration()
	case token.EXPORT:
		return p.parseExportDeclaration()
	case token.CONST, token.LET, token.VAR:
		// `const enum` is an enum declaration, not a variable.
		if p.at(token.CONST) && p.peek().Kind == token.ENUM {
			return p.parseEnumDeclaration()
		}
		decl := p.parseVariableDeclaration()
		if end, ok := p.semicolon(); ok {
			decl.To = end
		}
		return decl
	case token.FUNCTION:
		return p.parseFunctionDeclaration(false, nil)
	case token.ASYNC:
		if p.peek().Kind == token.FUNCTION {
			p.next()
			return p.parseFunctionDeclaration(true, nil)
		}
		return p.parseExpressionStatement()
	case token.AT:
		return p.parseDecoratedDeclaration()
	case token.CLASS:
		return p.parseClassDeclaration(nil)
	case token.INTERFACE:
		return p.parseInterfaceDeclaration()
	case token.ENUM:
		return p.parseEnumDeclaration()
	case token.NAMESPACE:
		return p.parseNamespaceDeclaration()
	case token.TYPE:
		// `type` is contextual; only a declaration when followed by a name
		// and `=` or type parameters.
		if p.peek().Kind == token.IDENT {
			return p.parseTypeAliasDeclaration()
		}
		return p.parseExpressionStatement()
	case token.DECLARE:
		// ambient declarations are parsed and carried, minus the keyword
		p.next()
		return p.parseStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.SEMICOLON:
		t := p.next()
		return &ast.EmptyStatement{Span: ast.SpanBetween(t.Start, t.End)}
	case token.IDENT:
		// labeled statement: IDENT ':' stmt
		if p.peek().Kind == token.COLON {
			return p.parseLabeledStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	expr := p.parseExpression()
	stmt := &ast.ExpressionStatement{Span: ast.SpanBetween(expr.Pos(), expr.End()), Expr: expr}
	if end, ok := p.semicolon(); ok {
		stmt.To = end
	}
	return stmt
}

// --- declarations ---

func (p *Parser) parseComponentDeclaration() ast.Statement {
	start := p.expect(token.COMPONENT).Start
	name := p.expect(token.IDENT)
	p.expect(token.LPAREN)
	params := p.parseParams()
	body := p.parseBlockStatement().(*ast.BlockStatement)
	return &ast.ComponentDeclaration{
		Span:   ast.SpanBetween(start, body.End()),
		Name:   name.Text,
		Params: params,
		Body:   body,
	}
}

func (p *Parser) parseImportDeclaration() ast.Statement {
	start := p.expect(token.IMPORT).Start
	decl := &ast.ImportDeclaration{}

	// side-effect import: import './styles.css'
	if p.at(token.STRING) {
		src := p.next()
		decl.Source = stringValue(src.Text)
		decl.Span = ast.SpanBetween(start, src.End)
		p.semicolon()
		return decl
	}

	if p.at(token.TYPE) && p.peek().Kind != token.COMMA && p.peek().Kind != token.FROM {
		decl.TypeOnly = true
		p.next()
	}

	parsedBindings := false
	if p.at(token.IDENT) {
		decl.Default = p.next().Text
		parsedBindings = true
		if !p.accept(token.COMMA) {
			goto from
		}
	}
	if p.at(token.STAR) {
		p.next()
		p.expect(token.AS)
		decl.Namespace = p.expect(token.IDENT).Text
		parsedBindings = true
	} else if p.at(token.LBRACE) {
		p.next()
		for !p.at(token.RBRACE, token.EOF) {
			spec := ast.ImportSpecifier{}
			if p.at(token.TYPE) && p.peek().Kind == token.IDENT {
				spec.TypeOnly = true
				p.next()
			}
			spec.Name = p.parseModuleExportName()
			if p.accept(token.AS) {
				spec.Alias = p.expect(token.IDENT).Text
			}
			decl.Named = append(decl.Named, spec)
			if !p.accept(token.COMMA) {
				break
			}
		}
		p.expect(token.RBRACE)
		parsedBindings = true
	}
	if !parsedBindings {
		p.fail("expected import bindings, found %q", p.cur().Text)
	}

from:
	p.expect(token.FROM)
	src := p.expect(token.STRING)
	decl.Source = stringValue(src.Text)
	decl.Span = ast.SpanBetween(start, src.End)
	p.semicolon()
	return decl
}

// parseModuleExportName allows keyword-spelled export names like `default`.
func (p *Parser) parseModuleExportName() string {
	t := p.cur()
	if t.Kind == token.IDENT || t.IsKeyword() {
		p.next()
		return t.Text
	}
	p.fail("expected import name, found %q", t.Text)
	return ""
}

func (p *Parser) parseExportDeclaration() ast.Statement {
	start := p.expect(token.EXPORT).Start
	decl := &ast.ExportDeclaration{}

	if p.accept(token.DEFAULT) {
		decl.Default = true
		inner := p.parseStatement()
		decl.Declaration = inner
		decl.Span = ast.SpanBetween(start, inner.End())
		return decl
	}

	// export { a, b as c } [from 'mod']
	if p.at(token.LBRACE) {
		p.next()
		for !p.at(token.RBRACE, token.EOF) {
			spec := ast.ExportSpecifier{Name: p.parseModuleExportName()}
			if p.accept(token.AS) {
				spec.Alias = p.parseModuleExportName()
			}
			decl.Named = append(decl.Named, spec)
			if !p.accept(token.COMMA) {
				break
			}
		}
		end := p.expect(token.RBRACE).End
		if p.accept(token.FROM) {
			src := p.expect(token.STRING)
			decl.Source = stringValue(src.Text)
			end = src.End
		}
		decl.Span = ast.SpanBetween(start, end)
		p.semicolon()
		return decl
	}

	// export * from 'mod'
	if p.at(token.STAR) {
		p.next()
		p.expect(token.FROM)
		src := p.expect(token.STRING)
		decl.Source = stringValue(src.Text)
		decl.Named = []ast.ExportSpecifier{{Name: "*"}}
		decl.Span = ast.SpanBetween(start, src.End)
		p.semicolon()
		return decl
	}

	inner := p.parseStatement()
	decl.Declaration = inner
	decl.Span = ast.SpanBetween(start, inner.End())
	return decl
}

func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	kind := p.next() // const/let/var
	decl := &ast.VariableDeclaration{Kind: kind.Kind}
	end := kind.End
	for {
		d := p.parseVariableDeclarator()
		decl.Declarators = append(decl.Declarators, d)
		end = d.End()
		if !p.accept(token.COMMA) {
			break
		}
	}
	decl.Span = ast.SpanBetween(kind.Start, end)
	return decl
}

func (p *Parser) parseVariableDeclarator() *ast.VariableDeclarator {
	d := &ast.VariableDeclarator{}
	start := p.cur().Start
	switch p.cur().Kind {
	case token.LBRACE, token.LBRACKET:
		d.Pattern = p.parsePrimary()
	default:
		d.Name = p.expect(token.IDENT).Text
	}
	end := p.tokens[p.pos-1].End
	if p.at(token.COLON) {
		d.Type = p.parseTypeAnnotation(token.ASSIGN, token.COMMA, token.SEMICOLON)
		end = d.Type.End()
	}
	if p.accept(token.ASSIGN) {
		d.Init = p.parseAssignment()
		end = d.Init.End()
	}
	d.Span = ast.SpanBetween(start, end)
	return d
}

func (p *Parser) parseFunctionDeclaration(async bool, decorators []ast.Decorator) ast.Statement {
	start := p.expect(token.FUNCTION).Start
	generator := p.accept(token.STAR)
	name := p.expect(token.IDENT)
	typeParams := p.parseOptionalTypeParams()
	p.expect(token.LPAREN)
	params := p.parseParams()
	var ret *ast.TypeRef
	if p.at(token.COLON) {
		ret = p.parseTypeAnnotation(token.LBRACE)
	}
	body := p.parseBlockStatement().(*ast.BlockStatement)
	return &ast.FunctionDeclaration{
		Span:       ast.SpanBetween(start, body.End()),
		Name:       name.Text,
		TypeParams: typeParams,
		Params:     params,
		ReturnType: ret,
		Body:       body,
		Async:      async,
		Generator:  generator,
		Decorators: decorators,
	}
}

func (p *Parser) parseDecoratedDeclaration() ast.Statement {
	var decorators []ast.Decorator
	for p.at(token.AT) {
		start := p.next().Start
		expr := p.parsePostfix(p.parsePrimary())
		decorators = append(decorators, ast.Decorator{
			Span: ast.SpanBetween(start, expr.End()),
			Expr: expr,
		})
	}
	switch p.cur().Kind {
	case token.CLASS:
		return p.parseClassDeclaration(decorators)
	case token.FUNCTION:
		return p.parseFunctionDeclaration(false, decorators)
	case token.ASYNC:
		p.next()
		return p.parseFunctionDeclaration(true, decorators)
	case token.EXPORT:
		// decorators before export: attach to the inner declaration
		stmt := p.parseExportDeclaration()
		if exp, ok := stmt.(*ast.ExportDeclaration); ok {
			if cls, ok := exp.Declaration.(*ast.ClassDeclaration); ok {
				cls.Decorators = append(decorators, cls.Decorators...)
			}
		}
		return stmt
	default:
		p.fail("decorators must precede a class or function declaration, found %q", p.cur().Text)
		return nil
	}
}

func (p *Parser) parseClassDeclaration(decorators []ast.Decorator) ast.Statement {
	start := p.expect(token.CLASS).Start
	name := p.expect(token.IDENT)
	decl := &ast.ClassDeclaration{Name: name.Text, Decorators: decorators}
	p.parseOptionalTypeParams()
	if p.accept(token.EXTENDS) {
		decl.SuperClass = p.parsePostfix(p.parsePrimary())
	}
	if p.accept(token.IMPLEMENTS) {
		for {
			decl.Implements = append(decl.Implements, p.expect(token.IDENT).Text)
			p.parseOptionalTypeParams()
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.LBRACE)
	for !p.at(token.RBRACE, token.EOF) {
		decl.Members = append(decl.Members, p.parseClassMember())
	}
	end := p.expect(token.RBRACE).End
	decl.Span = ast.SpanBetween(start, end)
	return decl
}

func (p *Parser) parseClassMember() *ast.ClassMember {
	m := &ast.ClassMember{}
	start := p.cur().Start
	for p.at(token.AT) {
		dstart := p.next().Start
		expr := p.parsePostfix(p.parsePrimary())
		m.Decorators = append(m.Decorators, ast.Decorator{Span: ast.SpanBetween(dstart, expr.End()), Expr: expr})
	}
	// modifiers, best-effort
	for p.at(token.PUBLIC, token.PRIVATE, token.PROTECTED, token.READONLY, token.STATIC, token.ASYNC, token.DECLARE) {
		if p.at(token.STATIC) {
			m.Static = true
		}
		p.next()
	}
	name := p.cur()
	if name.Kind != token.IDENT && !name.IsKeyword() {
		p.fail("expected class member name, found %q", name.Text)
	}
	p.next()
	m.Name = name.Text
	switch {
	case p.at(token.LPAREN), p.at(token.GENERICOPEN):
		m.Kind = "method"
		if m.Name == "constructor" {
			m.Kind = "constructor"
		}
		p.parseOptionalTypeParams()
		p.expect(token.LPAREN)
		m.Params = p.parseParams()
		if p.at(token.COLON) {
			m.ReturnType = p.parseTypeAnnotation(token.LBRACE)
		}
		m.Body = p.parseBlockStatement().(*ast.BlockStatement)
		m.Span = ast.SpanBetween(start, m.Body.End())
	default:
		m.Kind = "property"
		p.accept(token.QUESTION)
		end := name.End
		if p.at(token.COLON) {
			m.Type = p.parseTypeAnnotation(token.ASSIGN, token.SEMICOLON)
			end = m.Type.End()
		}
		if p.accept(token.ASSIGN) {
			m.Init = p.parseAssignment()
			end = m.Init.End()
		}
		p.semicolon()
		m.Span = ast.SpanBetween(start, end)
	}
	return m
}

func (p *Parser) parseInterfaceDeclaration() ast.Statement {
	start := p.expect(token.INTERFACE).Start
	name := p.expect(token.IDENT)
	decl := &ast.InterfaceDeclaration{Name: name.Text}
	decl.TypeParams = p.parseOptionalTypeParams()
	if p.accept(token.EXTENDS) {
		for {
			decl.Extends = append(decl.Extends, p.expect(token.IDENT).Text)
			p.parseOptionalTypeParams()
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.LBRACE)
	for !p.at(token.RBRACE, token.EOF) {
		member := ast.InterfaceMember{}
		nameTok := p.cur()
		if nameTok.Kind != token.IDENT && !nameTok.IsKeyword() && nameTok.Kind != token.STRING {
			p.fail("expected interface member name, found %q", nameTok.Text)
		}
		p.next()
		member.Name = nameTok.Text
		member.Optional = p.accept(token.QUESTION)
		if p.at(token.COLON) {
			ref := p.parseTypeAnnotation(token.SEMICOLON, token.COMMA, token.RBRACE)
			member.Type = ref.Text
		} else if p.at(token.LPAREN, token.GENERICOPEN) {
			// method signature, carried as raw text
			sigStart := p.cur().Start
			p.parseOptionalTypeParams()
			p.expect(token.LPAREN)
			p.skipBalanced(token.LPAREN, token.RPAREN)
			if p.at(token.COLON) {
				p.parseTypeAnnotation(token.SEMICOLON, token.COMMA, token.RBRACE)
			}
			member.Type = p.rawBetween(sigStart, p.tokens[p.pos-1].End)
		}
		decl.Members = append(decl.Members, member)
		if !p.accept(token.SEMICOLON) {
			p.accept(token.COMMA)
		}
	}
	end := p.expect(token.RBRACE).End
	decl.Span = ast.SpanBetween(start, end)
	return decl
}

func (p *Parser) parseEnumDeclaration() ast.Statement {
	start := p.cur().Start
	isConst := p.accept(token.CONST)
	p.expect(token.ENUM)
	name := p.expect(token.IDENT)
	decl := &ast.EnumDeclaration{Name: name.Text, Const: isConst}
	p.expect(token.LBRACE)
	for !p.at(token.RBRACE, token.EOF) {
		m := ast.EnumMember{}
		t := p.cur()
		if t.Kind != token.IDENT && t.Kind != token.STRING && !t.IsKeyword() {
			p.fail("expected enum member name, found %q", t.Text)
		}
		p.next()
		m.Name = t.Text
		if p.accept(token.ASSIGN) {
			m.Init = p.parseAssignment()
		}
		decl.Members = append(decl.Members, m)
		if !p.accept(token.COMMA) {
			break
		}
	}
	end := p.expect(token.RBRACE).End
	decl.Span = ast.SpanBetween(start, end)
	return decl
}

func (p *Parser) parseNamespaceDeclaration() ast.Statement {
	start := p.expect(token.NAMESPACE).Start
	name := p.expect(token.IDENT)
	body := p.parseBlockStatement().(*ast.BlockStatement)
	return &ast.NamespaceDeclaration{
		Span: ast.SpanBetween(start, body.End()),
		Name: name.Text,
		Body: body,
	}
}

func (p *Parser) parseTypeAliasDeclaration() ast.Statement {
	start := p.expect(token.TYPE).Start
	name := p.expect(token.IDENT)
	typeParams := p.parseOptionalTypeParams()
	p.expect(token.ASSIGN)
	ref := p.parseTypeText(token.SEMICOLON)
	p.semicolon()
	return &ast.TypeAliasDeclaration{
		Span:       ast.SpanBetween(start, ref.End()),
		Name:       name.Text,
		TypeParams: typeParams,
		Type:       ref,
	}
}

// --- statements ---

func (p *Parser) parseBlockStatement() ast.Statement {
	start := p.expect(token.LBRACE).Start
	block := &ast.BlockStatement{}
	for !p.at(token.RBRACE, token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	end := p.expect(token.RBRACE).End
	block.Span = ast.SpanBetween(start, end)
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	start := p.expect(token.IF).Start
	p.expect(token.LPAREN)
	test := p.parseExpression()
	p.expect(token.RPAREN)
	consequent := p.parseStatement()
	stmt := &ast.IfStatement{Test: test, Consequent: consequent}
	end := consequent.End()
	if p.accept(token.ELSE) {
		stmt.Alternate = p.parseStatement()
		end = stmt.Alternate.End()
	}
	stmt.Span = ast.SpanBetween(start, end)
	return stmt
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	start := p.expect(token.SWITCH).Start
	p.expect(token.LPAREN)
	disc := p.parseExpression()
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)
	stmt := &ast.SwitchStatement{Discriminant: disc}
	for p.at(token.CASE, token.DEFAULT) {
		c := &ast.SwitchCase{}
		cstart := p.cur().Start
		if p.accept(token.CASE) {
			c.Test = p.parseExpression()
		} else {
			p.expect(token.DEFAULT)
		}
		p.expect(token.COLON)
		for !p.at(token.CASE, token.DEFAULT, token.RBRACE, token.EOF) {
			c.Body = append(c.Body, p.parseStatement())
		}
		cend := p.cur().Start
		c.Span = ast.SpanBetween(cstart, cend)
		stmt.Cases = append(stmt.Cases, c)
	}
	end := p.expect(token.RBRACE).End
	stmt.Span = ast.SpanBetween(start, end)
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	start := p.expect(token.FOR).Start
	p.expect(token.LPAREN)

	// for-in / for-of need a bounded scan: `for (const x of xs)`.
	var declKind token.Kind = token.ILLEGAL
	if p.at(token.CONST, token.LET, token.VAR) {
		if p.peek().Kind == token.IDENT && (p.peekAt(2).Kind == token.OF || p.peekAt(2).Kind == token.IN) {
			declKind = p.next().Kind
		}
	}
	if declKind != token.ILLEGAL || (p.at(token.IDENT) && (p.peek().Kind == token.OF || p.peek().Kind == token.IN)) {
		nameTok := p.expect(token.IDENT)
		left := &ast.Identifier{Span: ast.SpanBetween(nameTok.Start, nameTok.End), Name: nameTok.Text}
		of := p.at(token.OF)
		p.next() // of / in
		right := p.parseExpression()
		p.expect(token.RPAREN)
		body := p.parseStatement()
		return &ast.ForInStatement{
			Span:  ast.SpanBetween(start, body.End()),
			Kind:  declKind,
			Left:  left,
			Right: right,
			Of:    of,
			Body:  body,
		}
	}

	stmt := &ast.ForStatement{}
	if !p.at(token.SEMICOLON) {
		if p.at(token.CONST, token.LET, token.VAR) {
			stmt.Init = p.parseVariableDeclaration()
		} else {
			expr := p.parseExpression()
			stmt.Init = &ast.ExpressionStatement{Span: ast.SpanBetween(expr.Pos(), expr.End()), Expr: expr}
		}
	}
	p.expect(token.SEMICOLON)
	if !p.at(token.SEMICOLON) {
		stmt.Test = p.parseExpression()
	}
	p.expect(token.SEMICOLON)
	if !p.at(token.RPAREN) {
		stmt.Update = p.parseExpression()
	}
	p.expect(token.RPAREN)
	stmt.Body = p.parseStatement()
	stmt.Span = ast.SpanBetween(start, stmt.Body.End())
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	start := p.expect(token.WHILE).Start
	p.expect(token.LPAREN)
	test := p.parseExpression()
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return &ast.WhileStatement{Span: ast.SpanBetween(start, body.End()), Test: test, Body: body}
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	start := p.expect(token.DO).Start
	body := p.parseStatement()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	test := p.parseExpression()
	end := p.expect(token.RPAREN).End
	if s, ok := p.semicolon(); ok {
		end = s
	}
	return &ast.DoWhileStatement{Span: ast.SpanBetween(start, end), Body: body, Test: test}
}

func (p *Parser) parseBreakStatement() ast.Statement {
	t := p.expect(token.BREAK)
	stmt := &ast.BreakStatement{Span: ast.SpanBetween(t.Start, t.End)}
	if p.at(token.IDENT) && p.cur().Start.Line == t.Start.Line {
		label := p.next()
		stmt.Label = label.Text
		stmt.To = label.End
	}
	if end, ok := p.semicolon(); ok {
		stmt.To = end
	}
	return stmt
}

func (p *Parser) parseContinueStatement() ast.Statement {
	t := p.expect(token.CONTINUE)
	stmt := &ast.ContinueStatement{Span: ast.SpanBetween(t.Start, t.End)}
	if p.at(token.IDENT) && p.cur().Start.Line == t.Start.Line {
		label := p.next()
		stmt.Label = label.Text
		stmt.To = label.End
	}
	if end, ok := p.semicolon(); ok {
		stmt.To = end
	}
	return stmt
}

func (p *Parser) parseLabeledStatement() ast.Statement {
	label := p.expect(token.IDENT)
	p.expect(token.COLON)
	body := p.parseStatement()
	return &ast.LabeledStatement{
		Span:  ast.SpanBetween(label.Start, body.End()),
		Label: label.Text,
		Body:  body,
	}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	t := p.expect(token.RETURN)
	stmt := &ast.ReturnStatement{Span: ast.SpanBetween(t.Start, t.End)}
	if !p.at(token.SEMICOLON, token.RBRACE, token.EOF) && p.cur().Start.Line == t.Start.Line {
		stmt.Value = p.parseExpression()
		stmt.To = stmt.Value.End()
	}
	if end, ok := p.semicolon(); ok {
		stmt.To = end
	}
	return stmt
}

func (p *Parser) parseTryStatement() ast.Statement {
	start := p.expect(token.TRY).Start
	stmt := &ast.TryStatement{}
	stmt.Block = p.parseBlockStatement().(*ast.BlockStatement)
	end := stmt.Block.End()
	if p.accept(token.CATCH) {
		if p.accept(token.LPAREN) {
			stmt.CatchParam = p.expect(token.IDENT).Text
			if p.at(token.COLON) {
				p.parseTypeAnnotation(token.RPAREN)
			}
			p.expect(token.RPAREN)
		}
		stmt.Catch = p.parseBlockStatement().(*ast.BlockStatement)
		end = stmt.Catch.End()
	}
	if p.accept(token.FINALLY) {
		stmt.Finally = p.parseBlockStatement().(*ast.BlockStatement)
		end = stmt.Finally.End()
	}
	if stmt.Catch == nil && stmt.Finally == nil {
		p.fail("try statement requires a catch or finally clause")
	}
	stmt.Span = ast.SpanBetween(start, end)
	return stmt
}

func (p *Parser) parseThrowStatement() ast.Statement {
	t := p.expect(token.THROW)
	value := p.parseExpression()
	stmt := &ast.ThrowStatement{Span: ast.SpanBetween(t.Start, value.End()), Value: value}
	if end, ok := p.semicolon(); ok {
		stmt.To = end
	}
	return stmt
}

// --- parameters ---

// parseParams parses a parameter list after its opening paren, consuming
// the closing paren.
func (p *Parser) parseParams() []ast.Param {
	var params []ast.Param
	for !p.at(token.RPAREN, token.EOF) {
		param := ast.Param{}
		start := p.cur().Start
		if p.accept(token.ELLIPSIS) {
			param.Rest = true
		}
		switch p.cur().Kind {
		case token.LBRACE, token.LBRACKET:
			param.Pattern = p.parsePrimary()
		case token.THIS:
			// `this` parameter annotations are dropped
			p.next()
			if p.at(token.COLON) {
				p.parseTypeAnnotation(token.COMMA, token.RPAREN)
			}
			p.accept(token.COMMA)
			continue
		default:
			param.Name = p.expect(token.IDENT).Text
		}
		p.accept(token.QUESTION)
		end := p.tokens[p.pos-1].End
		if p.at(token.COLON) {
			param.Type = p.parseTypeAnnotation(token.COMMA, token.RPAREN, token.ASSIGN)
			end = param.Type.End()
		}
		if p.accept(token.ASSIGN) {
			param.Default = p.parseAssignment()
			end = param.Default.End()
		}
		param.Span = ast.SpanBetween(start, end)
		params = append(params, param)
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

// skipBalanced consumes tokens until the matching close for one already
// consumed open token.
func (p *Parser) skipBalanced(open, close token.Kind) {
	depth := 1
	for depth > 0 && !p.at(token.EOF) {
		switch p.cur().Kind {
		case open:
			depth++
		case close:
			depth--
		}
		if depth > 0 {
			p.next()
		}
	}
	p.expect(close)
}
