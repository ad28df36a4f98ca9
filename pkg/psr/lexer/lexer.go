// Package lexer turns PSR source text into a token stream.
//
// The scanner is hand-written because the grammar is context sensitive in a
// way table-driven lexers handle badly: a `<` can open a JSX element, a
// generic type-argument list, or be the less-than operator. The lexer keeps
// an explicit mode stack (normal, generic, JSX tag, JSX text, JSX
// expression) and resolves each `<` against the mode on top plus the
// previously emitted token. Template literals are scanned as one token
// with interpolation depth tracked inline.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/psr-lang/psr/pkg/psr/diag"
	"github.com/psr-lang/psr/pkg/psr/token"
)

// RecoveryMode controls what happens on a lexical error.
type RecoveryMode uint8

const (
	// Strict stops at the first lexical error.
	Strict RecoveryMode = iota
	// Collect records the error, emits an ILLEGAL token and keeps scanning.
	Collect
)

// Options configures a Lexer.
type Options struct {
	Recovery RecoveryMode
	// MaxErrors caps the number of reported lexical errors in Collect mode.
	// Zero means the default of 50.
	MaxErrors int
}

// Error is a positioned lexical error.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

type mode uint8

const (
	modeNormal mode = iota
	modeGeneric
	modeJSXTag
	modeJSXText
	modeJSXExpr
)

// frame is one entry of the scanning context stack.
type frame struct {
	mode mode
	// depth is the signed angle-bracket depth for modeGeneric and the
	// brace depth for modeJSXExpr frames.
	depth int
}

// Lexer scans one compilation unit. It owns no state beyond the cursor,
// the context stack and the previously produced token.
type Lexer struct {
	src  string
	pos  int
	line int
	col  int

	opts   Options
	stack  []frame
	prev   token.Kind
	tokens []token.Token
	diags  diag.List

	recoveries int
}

// New returns a lexer over src.
func New(src string, opts Options) *Lexer {
	if opts.MaxErrors == 0 {
		opts.MaxErrors = 50
	}
	return &Lexer{
		src:   src,
		line:  1,
		col:   1,
		opts:  opts,
		stack: []frame{{mode: modeNormal}},
		prev:  token.ILLEGAL,
	}
}

// Tokenize scans src with default (strict) options.
func Tokenize(src string) ([]token.Token, diag.List) {
	return New(src, Options{}).Tokenize()
}

// Tokenize scans the whole input and returns the token stream plus any
// diagnostics. In Strict mode scanning stops at the first error.
func (l *Lexer) Tokenize() ([]token.Token, diag.List) {
	for l.pos < len(l.src) {
		switch l.top().mode {
		case modeJSXText:
			l.scanJSXText()
		case modeJSXTag:
			l.scanJSXTag()
		default:
			l.scanNormal()
		}
		if l.opts.Recovery == Strict && l.diags.HasErrors() {
			break
		}
		if len(l.diags.Errors()) >= l.opts.MaxErrors || l.recoveries > 4*l.opts.MaxErrors {
			l.diags = append(l.diags, diag.Errorf(diag.PhaseLexer, l.line, l.col,
				"too many lexical errors, giving up"))
			break
		}
	}
	l.emit(token.EOF, "", l.position())
	return l.tokens, l.diags
}

// --- cursor helpers ---

func (l *Lexer) top() *frame { return &l.stack[len(l.stack)-1] }

func (l *Lexer) push(m mode) { l.stack = append(l.stack, frame{mode: m}) }

func (l *Lexer) pop() {
	if len(l.stack) > 1 {
		l.stack = l.stack[:len(l.stack)-1]
	}
}

func (l *Lexer) position() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) peek() byte {
	if l.pos < len(l.src) {
		return l.src[l.pos]
	}
	return 0
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *Lexer) advance() byte {
	ch := l.src[l.pos]
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		l.advance()
	}
}

func (l *Lexer) emit(kind token.Kind, text string, start token.Position) {
	l.tokens = append(l.tokens, token.Token{Kind: kind, Text: text, Start: start, End: l.position()})
	l.prev = kind
}

func (l *Lexer) errorf(start token.Position, format string, args ...any) {
	l.diags = append(l.diags, diag.Errorf(diag.PhaseLexer, start.Line, start.Column, format, args...))
	l.recoveries++
}

// --- normal / generic / expression scanning ---

func (l *Lexer) scanNormal() {
	l.skipTrivia()
	if l.pos >= len(l.src) {
		return
	}
	start := l.position()
	ch := l.peek()

	switch {
	case isIdentStart(rune(ch)):
		l.scanIdentifier(start)
	case ch >= '0' && ch <= '9':
		l.scanNumber(start)
	case ch == '"' || ch == '\'':
		l.scanString(start)
	case ch == '`':
		l.scanTemplate(start)
	case ch == '<':
		l.scanLeftAngle(start)
	case ch == '>':
		l.scanRightAngle(start)
	case ch == '{':
		l.advance()
		if f := l.top(); f.mode == modeJSXExpr {
			f.depth++
		}
		l.emit(token.LBRACE, "{", start)
	case ch == '}':
		l.advance()
		if f := l.top(); f.mode == modeJSXExpr {
			if f.depth == 0 {
				// Matching close of the container brace; back inside JSX
				// children or a tag attribute list.
				l.pop()
				l.emit(token.RBRACE, "}", start)
				l.prev = token.RBRACE
				return
			}
			f.depth--
		}
		l.emit(token.RBRACE, "}", start)
	case ch == '/':
		if l.regexAllowed() && l.peekAt(1) != '/' && l.peekAt(1) != '*' {
			l.scanRegex(start)
			return
		}
		l.scanOperator(start)
	default:
		l.scanOperator(start)
	}
}

// skipTrivia consumes whitespace and comments.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.src) {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peekAt(1) == '*':
			start := l.position()
			l.advanceN(2)
			closed := false
			for l.pos < len(l.src) {
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advanceN(2)
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				l.errorf(start, "unterminated block comment")
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanIdentifier(start token.Position) {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.advanceN(size)
	}
	text := l.src[start.Offset:l.pos]
	l.emit(token.Lookup(text), text, start)
}

func (l *Lexer) scanNumber(start token.Position) {
	digits := "0123456789_"
	if l.peek() == '0' {
		switch l.peekAt(1) {
		case 'x', 'X':
			l.advanceN(2)
			digits = "0123456789abcdefABCDEF_"
		case 'o', 'O':
			l.advanceN(2)
			digits = "01234567_"
		case 'b', 'B':
			l.advanceN(2)
			digits = "01_"
		}
	}
	for l.pos < len(l.src) && strings.IndexByte(digits, l.peek()) >= 0 {
		l.advance()
	}
	if digits[0] == '0' && len(digits) == 11 { // decimal
		if l.peek() == '.' {
			l.advance()
			for l.pos < len(l.src) && (l.peek() >= '0' && l.peek() <= '9' || l.peek() == '_') {
				l.advance()
			}
		}
		if l.peek() == 'e' || l.peek() == 'E' {
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			for l.pos < len(l.src) && l.peek() >= '0' && l.peek() <= '9' {
				l.advance()
			}
		}
	}
	if l.peek() == 'n' { // BigInt suffix
		l.advance()
	}
	l.emit(token.NUMBER, l.src[start.Offset:l.pos], start)
}

func (l *Lexer) scanString(start token.Position) {
	quote := l.advance()
	for l.pos < len(l.src) {
		ch := l.peek()
		if ch == '\\' {
			l.advanceN(2)
			continue
		}
		if ch == quote {
			l.advance()
			l.emit(token.STRING, l.src[start.Offset:l.pos], start)
			return
		}
		if ch == '\n' {
			break
		}
		l.advance()
	}
	l.errorf(start, "unterminated string literal")
	l.emit(token.ILLEGAL, l.src[start.Offset:l.pos], start)
}

// scanTemplate consumes a whole template literal including interpolations.
// Interpolation depth is tracked so nested templates and object literals
// inside ${...} do not end the literal early.
func (l *Lexer) scanTemplate(start token.Position) {
	l.advance() // backtick
	for l.pos < len(l.src) {
		ch := l.peek()
		switch {
		case ch == '\\':
			l.advanceN(2)
		case ch == '`':
			l.advance()
			l.emit(token.TEMPLATE, l.src[start.Offset:l.pos], start)
			return
		case ch == '$' && l.peekAt(1) == '{':
			l.advanceN(2)
			depth := 1
			for l.pos < len(l.src) && depth > 0 {
				c := l.peek()
				switch c {
				case '{':
					depth++
				case '}':
					depth--
				case '`':
					// nested template: consume it recursively as raw text
					l.skipNestedTemplate()
					continue
				case '\\':
					l.advance()
				}
				l.advance()
			}
		default:
			l.advance()
		}
	}
	l.errorf(start, "unterminated template literal")
	l.emit(token.ILLEGAL, l.src[start.Offset:l.pos], start)
}

func (l *Lexer) skipNestedTemplate() {
	l.advance() // backtick
	for l.pos < len(l.src) {
		switch l.peek() {
		case '\\':
			l.advance()
		case '`':
			return
		}
		l.advance()
	}
}

func (l *Lexer) scanRegex(start token.Position) {
	l.advance() // opening slash
	inClass := false
	for l.pos < len(l.src) {
		ch := l.peek()
		if ch == '\\' {
			l.advanceN(2)
			continue
		}
		if ch == '[' {
			inClass = true
		} else if ch == ']' {
			inClass = false
		} else if ch == '/' && !inClass {
			l.advance()
			for l.pos < len(l.src) && isIdentPart(rune(l.peek())) {
				l.advance()
			}
			l.emit(token.REGEX, l.src[start.Offset:l.pos], start)
			return
		} else if ch == '\n' {
			break
		}
		l.advance()
	}
	l.errorf(start, "unterminated regular expression")
	l.emit(token.ILLEGAL, l.src[start.Offset:l.pos], start)
}

// regexAllowed reports whether a `/` at the cursor starts a regex literal
// rather than a division operator, judged from the previous token.
func (l *Lexer) regexAllowed() bool {
	switch l.prev {
	case token.IDENT, token.NUMBER, token.STRING, token.TEMPLATE, token.REGEX,
		token.RPAREN, token.RBRACKET, token.THIS, token.TRUE, token.FALSE,
		token.NULL, token.UNDEFINED, token.PLUSPLUS, token.MINUSMINUS:
		return false
	}
	return true
}

// --- angle bracket disambiguation ---

// scanLeftAngle resolves `<` into JSXOPEN, GENERICOPEN, a comparison or a
// shift, depending on mode and the previous token.
func (l *Lexer) scanLeftAngle(start token.Position) {
	if l.top().mode == modeGeneric {
		l.advance()
		l.top().depth++
		l.emit(token.GENERICOPEN, "<", start)
		return
	}

	// `<<` and `<<=` by maximal munch outside generic context.
	if l.peekAt(1) == '<' {
		if l.peekAt(2) == '=' {
			l.advanceN(3)
			l.emit(token.ASSIGN, "<<=", start)
			return
		}
		l.advanceN(2)
		l.emit(token.SHL, "<<", start)
		return
	}
	if l.peekAt(1) == '=' {
		l.advanceN(2)
		l.emit(token.LTE, "<=", start)
		return
	}

	if l.jsxAllowed() {
		l.advance()
		l.emit(token.JSXOPEN, "<", start)
		l.push(modeJSXTag)
		return
	}

	if exprPos, ok := l.genericPlausible(); ok && l.scanLooksLikeTypeArgs(exprPos) {
		l.advance()
		l.push(modeGeneric)
		l.top().depth = 1
		l.emit(token.GENERICOPEN, "<", start)
		return
	}

	l.advance()
	l.emit(token.LT, "<", start)
}

// scanRightAngle resolves `>` with the single hard rule of this lexer:
// immediately inside a generic context a lone `>` must win over `>>`/`>=`
// maximal munch so that nested closes like Promise<Array<T>> balance.
func (l *Lexer) scanRightAngle(start token.Position) {
	if f := l.top(); f.mode == modeGeneric {
		l.advance()
		f.depth--
		l.emit(token.GENERICCLOSE, ">", start)
		if f.depth == 0 {
			l.pop()
		}
		return
	}

	// Maximal munch everywhere else.
	if l.peekAt(1) == '>' {
		if l.peekAt(2) == '>' {
			l.advanceN(3)
			l.emit(token.USHR, ">>>", start)
			return
		}
		l.advanceN(2)
		l.emit(token.SHR, ">>", start)
		return
	}
	if l.peekAt(1) == '=' {
		l.advanceN(2)
		l.emit(token.GTE, ">=", start)
		return
	}
	l.advance()
	l.emit(token.GT, ">", start)
}

// jsxAllowed reports whether a `<` at the cursor can open a JSX element:
// the previous token must put us in expression-start position and the next
// character must be a tag start (letter, `>` for fragments, or `/`).
func (l *Lexer) jsxAllowed() bool {
	next := l.peekAt(1)
	if !(isIdentStart(rune(next)) || next == '>' || next == '/') {
		return false
	}
	switch l.prev {
	case token.ILLEGAL, // start of file
		token.LPAREN, token.LBRACE, token.LBRACKET, token.COMMA, token.SEMICOLON,
		token.RETURN, token.ARROW, token.ASSIGN, token.COLON, token.QUESTION,
		token.AND, token.OR, token.COALESCE, token.NOT, token.CASE, token.DO,
		token.ELSE, token.TYPEOF, token.AWAIT, token.YIELD, token.EQ, token.NEQ,
		token.STRICTEQ, token.STRICTNEQ:
		return true
	case token.JSXCLOSE:
		// sibling element inside JSX children
		return l.containsJSXFrame()
	}
	return false
}

func (l *Lexer) containsJSXFrame() bool {
	for _, f := range l.stack {
		if f.mode == modeJSXText || f.mode == modeJSXTag {
			return true
		}
	}
	return false
}

// genericPlausible reports whether the previous token can be followed by a
// type-argument list, and whether that position is an expression position
// (where the stricter call rule applies) or a type position.
func (l *Lexer) genericPlausible() (exprPos, ok bool) {
	switch l.prev {
	case token.IDENT, token.RPAREN:
		return true, true
	case token.COLON, token.NEW, token.EXTENDS, token.IMPLEMENTS,
		token.INTERFACE, token.AS, token.FUNCTION:
		return false, true
	}
	return false, false
}

// scanLooksLikeTypeArgs performs a bounded forward scan from the `<` at the
// cursor: the region must balance its angle brackets within the cap and
// contain only characters that occur in type-argument lists. In expression
// position the balancing `>` must additionally be followed by `(` — the rule
// TypeScript itself uses — so `a < b && c > d` stays a pair of comparisons
// while `createSignal<IUser | null>(null)` becomes a generic call.
func (l *Lexer) scanLooksLikeTypeArgs(exprPos bool) bool {
	const maxScan = 400
	depth := 0
	limit := l.pos + maxScan
	if limit > len(l.src) {
		limit = len(l.src)
	}
	for i := l.pos; i < limit; i++ {
		ch := l.src[i]
		switch {
		case ch == '<':
			depth++
		case ch == '>':
			depth--
			if depth == 0 {
				if !exprPos {
					return true
				}
				return i+1 < len(l.src) && l.src[i+1] == '('
			}
		case isIdentPart(rune(ch)) || ch == ',' || ch == ' ' || ch == '\t' ||
			ch == '\n' || ch == '\r' || ch == '.' || ch == '[' || ch == ']' ||
			ch == '|' || ch == '&' || ch == '?' || ch == ':' || ch == '(' ||
			ch == ')' || ch == '\'' || ch == '"' || ch == '{' || ch == '}' ||
			ch == ';' || ch == '=':
			// allowed inside a type-argument list (object/function types,
			// literal types, defaults)
		default:
			return false
		}
	}
	return false
}

// --- JSX scanning ---

// scanJSXTag scans the inside of a tag: name, attributes, and the closing
// `>` or `/>`.
func (l *Lexer) scanJSXTag() {
	l.skipTrivia()
	if l.pos >= len(l.src) {
		l.errorf(l.position(), "unterminated JSX tag")
		l.pop()
		return
	}
	start := l.position()
	ch := l.peek()

	switch {
	case ch == '/':
		l.advance()
		l.emit(token.JSXSLASH, "/", start)
	case ch == '>':
		l.advance()
		l.emit(token.JSXCLOSE, ">", start)
		l.closeTag()
	case ch == '{':
		// attribute spread {...props} or expression value
		l.advance()
		l.emit(token.LBRACE, "{", start)
		l.push(modeJSXExpr)
	case ch == '=':
		l.advance()
		l.emit(token.ASSIGN, "=", start)
	case ch == '"' || ch == '\'':
		l.scanString(start)
	case ch == '.':
		l.advance()
		l.emit(token.DOT, ".", start)
	case isIdentStart(rune(ch)):
		// tag/attribute names admit `-` and `:` (data-*, xlink:href)
		for l.pos < len(l.src) {
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentPart(r) && r != '-' && r != ':' {
				break
			}
			l.advanceN(size)
		}
		l.emit(token.IDENT, l.src[start.Offset:l.pos], start)
	default:
		l.errorf(start, "unexpected character %q in JSX tag", ch)
		l.advance()
		l.emit(token.ILLEGAL, string(ch), start)
	}
}

// closeTag decides what follows a `>` that terminated a tag. A closing or
// self-closing tag pops back to the surrounding context; an opening tag
// switches to raw text scanning between tags.
func (l *Lexer) closeTag() {
	selfClosing := false
	closing := false
	// Walk back over the tag's tokens to find its shape.
	for i := len(l.tokens) - 2; i >= 0; i-- {
		t := l.tokens[i]
		if t.Kind == token.JSXSLASH {
			if i > 0 && l.tokens[i-1].Kind == token.JSXOPEN {
				closing = true
			} else if l.tokens[i+1].Kind == token.JSXCLOSE {
				selfClosing = true
			}
			break
		}
		if t.Kind == token.JSXOPEN {
			break
		}
	}
	l.pop() // leave modeJSXTag
	if closing || selfClosing {
		// If the enclosing frame is JSX text we stay there; otherwise the
		// element is done and normal scanning resumes.
		return
	}
	l.push(modeJSXText)
}

// scanJSXText scans raw text between tags until `<` or `{`. HTML entities
// are carried through verbatim; decoding happens at parse time.
func (l *Lexer) scanJSXText() {
	start := l.position()
	for l.pos < len(l.src) {
		ch := l.peek()
		if ch == '<' || ch == '{' {
			break
		}
		l.advance()
	}
	if l.pos > start.Offset {
		text := l.src[start.Offset:l.pos]
		if strings.TrimSpace(text) != "" {
			l.emit(token.JSXTEXT, text, start)
		}
	}
	if l.pos >= len(l.src) {
		l.errorf(start, "unterminated JSX children")
		l.pop()
		return
	}
	switch l.peek() {
	case '{':
		p := l.position()
		l.advance()
		l.emit(token.LBRACE, "{", p)
		l.push(modeJSXExpr)
	case '<':
		p := l.position()
		l.advance()
		l.emit(token.JSXOPEN, "<", p)
		if l.peek() == '/' {
			// closing tag ends this text region
			l.pop()
		}
		l.push(modeJSXTag)
	}
}

// --- operators ---

// operator table, longest spellings first per group.
var operators = []struct {
	text string
	kind token.Kind
}{
	{"...", token.ELLIPSIS},
	{"===", token.STRICTEQ},
	{"!==", token.STRICTNEQ},
	{"**", token.POWER},
	{"&&=", token.ANDASSIGN},
	{"||=", token.ORASSIGN},
	{"??=", token.COALESCEASSIGN},
	{"&&", token.AND},
	{"||", token.OR},
	{"??", token.COALESCE},
	{"?.", token.QUESTDOT},
	{"==", token.EQ},
	{"!=", token.NEQ},
	{"=>", token.ARROW},
	{"++", token.PLUSPLUS},
	{"--", token.MINUSMINUS},
	{"+=", token.PLUSASSIGN},
	{"-=", token.MINUSASSIGN},
	{"*=", token.STARASSIGN},
	{"/=", token.SLASHASSIGN},
	{"%=", token.PERCENTASSIGN},
	{"&=", token.AMPASSIGN},
	{"|=", token.PIPEASSIGN},
	{"^=", token.CARETASSIGN},
	{"=", token.ASSIGN},
	{"+", token.PLUS},
	{"-", token.MINUS},
	{"*", token.STAR},
	{"/", token.SLASH},
	{"%", token.PERCENT},
	{"!", token.NOT},
	{"&", token.BITAND},
	{"|", token.BITOR},
	{"^", token.BITXOR},
	{"~", token.BITNOT},
	{"(", token.LPAREN},
	{")", token.RPAREN},
	{"[", token.LBRACKET},
	{"]", token.RBRACKET},
	{";", token.SEMICOLON},
	{":", token.COLON},
	{",", token.COMMA},
	{".", token.DOT},
	{"?", token.QUESTION},
	{"@", token.AT},
}

func (l *Lexer) scanOperator(start token.Position) {
	rest := l.src[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			l.advanceN(len(op.text))
			l.emit(op.kind, op.text, start)
			return
		}
	}
	ch := l.advance()
	l.errorf(start, "unsupported character %q", ch)
	l.emit(token.ILLEGAL, string(ch), start)
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
