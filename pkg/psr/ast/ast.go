// Package ast defines the syntax tree for PSR source files: TypeScript
// declarations, statements and expressions, the `component` declaration
// form, and JSX. Nodes are a closed set of structs behind the Node,
// Statement and Expression marker interfaces; ownership is strictly
// parent to child.
package ast

import (
	"github.com/psr-lang/psr/pkg/psr/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() token.Position
	End() token.Position
}

// Statement is implemented by all statement and declaration nodes.
type Statement interface {
	Node
	stmtNode()
}

// Expression is implemented by all expression nodes.
type Expression interface {
	Node
	exprNode()
}

// Span carries a node's source range. Every concrete node embeds one.
type Span struct {
	From token.Position
	To   token.Position
}

func (s Span) Pos() token.Position { return s.From }
func (s Span) End() token.Position { return s.To }

// SpanBetween builds a Span covering two positions.
func SpanBetween(from, to token.Position) Span {
	return Span{From: from, To: to}
}

// TypeRef is a type annotation carried through syntactically. The compiler
// never verifies types; it only inspects the text for component detection
// and nullability estimates.
type TypeRef struct {
	Span
	Text string
}

// Program is the root node of a compilation unit.
type Program struct {
	Span
	Statements []Statement
}

func (*Program) stmtNode() {}

// --- declarations ---

// ImportSpecifier is one named binding of an import declaration.
type ImportSpecifier struct {
	Name     string // exported name in the source module
	Alias    string // local alias, empty when same as Name
	TypeOnly bool
}

// Local returns the name the binding is visible under.
func (s ImportSpecifier) Local() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// ImportDeclaration covers default, named, namespace, type-only and
// side-effect import forms.
type ImportDeclaration struct {
	Span
	Default   string
	Namespace string
	Named     []ImportSpecifier
	Source    string
	TypeOnly  bool
}

func (*ImportDeclaration) stmtNode() {}

// ExportSpecifier is one binding of an `export { ... }` list.
type ExportSpecifier struct {
	Name  string
	Alias string
}

// ExportDeclaration wraps a declaration or a named export list. When
// Declaration is non-nil the other fields are empty.
type ExportDeclaration struct {
	Span
	Declaration Statement
	Default     bool
	Named       []ExportSpecifier
	Source      string // re-export source, empty otherwise
}

func (*ExportDeclaration) stmtNode() {}

// Param is a function, arrow or component parameter. Either Name or
// Pattern is set; Pattern holds destructuring forms.
type Param struct {
	Span
	Name    string
	Pattern Expression
	Type    *TypeRef
	Default Expression
	Rest    bool
}

// ComponentDeclaration is the `component Name(params) { body }` form.
type ComponentDeclaration struct {
	Span
	Name   string
	Params []Param
	Body   *BlockStatement
}

func (*ComponentDeclaration) stmtNode() {}

// FunctionDeclaration is a `function` declaration.
type FunctionDeclaration struct {
	Span
	Name       string
	TypeParams string // raw text of <T, ...>, empty when absent
	Params     []Param
	ReturnType *TypeRef
	Body       *BlockStatement
	Async      bool
	Generator  bool
	Decorators []Decorator
}

func (*FunctionDeclaration) stmtNode() {}

// VariableDeclarator is one `name = init` of a variable declaration.
type VariableDeclarator struct {
	Span
	Name string
	// Pattern is set instead of Name for destructuring declarators.
	Pattern Expression
	Type    *TypeRef
	Init    Expression
}

// VariableDeclaration is a const/let/var statement.
type VariableDeclaration struct {
	Span
	Kind        token.Kind // CONST, LET or VAR
	Declarators []*VariableDeclarator
}

func (*VariableDeclaration) stmtNode() {}

// InterfaceMember is one member of an interface body, carried as raw text.
type InterfaceMember struct {
	Name     string
	Type     string
	Optional bool
}

// InterfaceDeclaration is parsed best-effort; members are kept
// syntactically.
type InterfaceDeclaration struct {
	Span
	Name       string
	TypeParams string
	Extends    []string
	Members    []InterfaceMember
}

func (*InterfaceDeclaration) stmtNode() {}

// EnumMember is one member of an enum declaration.
type EnumMember struct {
	Name string
	Init Expression
}

// EnumDeclaration is an `enum` declaration, optionally `const enum`.
type EnumDeclaration struct {
	Span
	Name    string
	Const   bool
	Members []EnumMember
}

func (*EnumDeclaration) stmtNode() {}

// NamespaceDeclaration is a `namespace N { ... }` declaration.
type NamespaceDeclaration struct {
	Span
	Name string
	Body *BlockStatement
}

func (*NamespaceDeclaration) stmtNode() {}

// TypeAliasDeclaration is a `type T = ...` declaration; the right side is
// carried as raw text.
type TypeAliasDeclaration struct {
	Span
	Name       string
	TypeParams string
	Type       *TypeRef
}

func (*TypeAliasDeclaration) stmtNode() {}

// Decorator is an `@expr` attached to a declaration (best-effort).
type Decorator struct {
	Span
	Expr Expression
}

// ClassMember is one member of a class body.
type ClassMember struct {
	Span
	Name       string
	Kind       string // "method", "property", "constructor", "getter", "setter"
	Static     bool
	Params     []Param
	ReturnType *TypeRef
	Type       *TypeRef // property type
	Init       Expression
	Body       *BlockStatement
	Decorators []Decorator
}

// ClassDeclaration is parsed best-effort.
type ClassDeclaration struct {
	Span
	Name       string
	SuperClass Expression
	Implements []string
	Members    []*ClassMember
	Decorators []Decorator
}

func (*ClassDeclaration) stmtNode() {}

// --- statements ---

// BlockStatement is a `{ ... }` statement list.
type BlockStatement struct {
	Span
	Statements []Statement
}

func (*BlockStatement) stmtNode() {}

// ExpressionStatement wraps an expression used as a statement.
type ExpressionStatement struct {
	Span
	Expr Expression
}

func (*ExpressionStatement) stmtNode() {}

// ReturnStatement is `return [expr];`.
type ReturnStatement struct {
	Span
	Value Expression // nil for bare return
}

func (*ReturnStatement) stmtNode() {}

// IfStatement is `if (...) ... [else ...]`.
type IfStatement struct {
	Span
	Test       Expression
	Consequent Statement
	Alternate  Statement // nil, a BlockStatement, or another IfStatement
}

func (*IfStatement) stmtNode() {}

// SwitchCase is one `case expr:` or `default:` arm.
type SwitchCase struct {
	Span
	Test Expression // nil for default
	Body []Statement
}

// SwitchStatement is `switch (...) { ... }`.
type SwitchStatement struct {
	Span
	Discriminant Expression
	Cases        []*SwitchCase
}

func (*SwitchStatement) stmtNode() {}

// ForStatement is the classic three-clause `for`.
type ForStatement struct {
	Span
	Init   Statement // VariableDeclaration or ExpressionStatement, may be nil
	Test   Expression
	Update Expression
	Body   Statement
}

func (*ForStatement) stmtNode() {}

// ForInStatement covers both `for-in` and `for-of` (Of flag).
type ForInStatement struct {
	Span
	Kind  token.Kind // CONST, LET, VAR or ILLEGAL for plain assignment
	Left  Expression
	Right Expression
	Of    bool
	Body  Statement
}

func (*ForInStatement) stmtNode() {}

// WhileStatement is `while (...) ...`.
type WhileStatement struct {
	Span
	Test Expression
	Body Statement
}

func (*WhileStatement) stmtNode() {}

// DoWhileStatement is `do ... while (...);`.
type DoWhileStatement struct {
	Span
	Body Statement
	Test Expression
}

func (*DoWhileStatement) stmtNode() {}

// BreakStatement is `break [label];`.
type BreakStatement struct {
	Span
	Label string
}

func (*BreakStatement) stmtNode() {}

// ContinueStatement is `continue [label];`.
type ContinueStatement struct {
	Span
	Label string
}

func (*ContinueStatement) stmtNode() {}

// LabeledStatement is `label: stmt`.
type LabeledStatement struct {
	Span
	Label string
	Body  Statement
}

func (*LabeledStatement) stmtNode() {}

// TryStatement is `try { } catch (e) { } finally { }`.
type TryStatement struct {
	Span
	Block      *BlockStatement
	CatchParam string // empty for parameterless catch
	Catch      *BlockStatement
	Finally    *BlockStatement
}

func (*TryStatement) stmtNode() {}

// ThrowStatement is `throw expr;`.
type ThrowStatement struct {
	Span
	Value Expression
}

func (*ThrowStatement) stmtNode() {}

// EmptyStatement is a lone `;`.
type EmptyStatement struct {
	Span
}

func (*EmptyStatement) stmtNode() {}

// --- expressions ---

// Identifier is a name reference.
type Identifier struct {
	Span
	Name string
}

func (*Identifier) exprNode() {}

// NumberLiteral keeps the raw spelling (hex, separators, BigInt suffix).
type NumberLiteral struct {
	Span
	Raw string
}

func (*NumberLiteral) exprNode() {}

// StringLiteral keeps the raw quoted text and the decoded value.
type StringLiteral struct {
	Span
	Raw   string
	Value string
}

func (*StringLiteral) exprNode() {}

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Span
	Value bool
}

func (*BooleanLiteral) exprNode() {}

// NullLiteral is `null`.
type NullLiteral struct {
	Span
}

func (*NullLiteral) exprNode() {}

// UndefinedLiteral is `undefined`.
type UndefinedLiteral struct {
	Span
}

func (*UndefinedLiteral) exprNode() {}

// ThisExpression is `this`.
type ThisExpression struct {
	Span
}

func (*ThisExpression) exprNode() {}

// RegexLiteral keeps the raw /pattern/flags text.
type RegexLiteral struct {
	Span
	Raw string
}

func (*RegexLiteral) exprNode() {}

// TemplateLiteral is a backtick string. Quasis has one more entry than
// Expressions; quasi i precedes expression i.
type TemplateLiteral struct {
	Span
	Raw         string
	Quasis      []string
	Expressions []Expression
}

func (*TemplateLiteral) exprNode() {}

// ArrayLiteral is `[a, b, ...c]`.
type ArrayLiteral struct {
	Span
	Elements []Expression
}

func (*ArrayLiteral) exprNode() {}

// ObjectProperty is one entry of an object literal.
type ObjectProperty struct {
	Span
	Key       Expression
	Value     Expression
	Shorthand bool
	Computed  bool
	Spread    bool // Value holds the spread argument
}

// ObjectLiteral is `{ a: 1, b, ...rest }`.
type ObjectLiteral struct {
	Span
	Properties []*ObjectProperty
}

func (*ObjectLiteral) exprNode() {}

// FunctionExpression is an anonymous or named `function` expression.
type FunctionExpression struct {
	Span
	Name       string
	Params     []Param
	ReturnType *TypeRef
	Body       *BlockStatement
	Async      bool
	Generator  bool
}

func (*FunctionExpression) exprNode() {}

// ArrowFunction is `(params) => body`. Body is a *BlockStatement or, for
// expression-bodied arrows, an Expression.
type ArrowFunction struct {
	Span
	Params     []Param
	ReturnType *TypeRef
	Body       Node
	Async      bool
}

func (*ArrowFunction) exprNode() {}

// BodyExpression returns the body when the arrow is expression-bodied.
func (a *ArrowFunction) BodyExpression() (Expression, bool) {
	e, ok := a.Body.(Expression)
	return e, ok
}

// BodyBlock returns the body when the arrow has a block body.
func (a *ArrowFunction) BodyBlock() (*BlockStatement, bool) {
	b, ok := a.Body.(*BlockStatement)
	return b, ok
}

// CallExpression is `callee(args)`, optionally `callee?.()` or with type
// arguments `callee<T>(args)`.
type CallExpression struct {
	Span
	Callee   Expression
	TypeArgs string // raw text of the generic argument list
	Args     []Expression
	Optional bool
}

func (*CallExpression) exprNode() {}

// NewExpression is `new Callee(args)`.
type NewExpression struct {
	Span
	Callee   Expression
	TypeArgs string
	Args     []Expression
}

func (*NewExpression) exprNode() {}

// MemberExpression is `obj.prop`, `obj?.prop` or `obj[expr]`.
type MemberExpression struct {
	Span
	Object   Expression
	Property Expression
	Computed bool
	Optional bool
}

func (*MemberExpression) exprNode() {}

// BinaryExpression covers arithmetic, comparison and bitwise operators.
type BinaryExpression struct {
	Span
	Op    token.Kind
	Left  Expression
	Right Expression
}

func (*BinaryExpression) exprNode() {}

// LogicalExpression covers `&&`, `||` and `??`.
type LogicalExpression struct {
	Span
	Op    token.Kind
	Left  Expression
	Right Expression
}

func (*LogicalExpression) exprNode() {}

// UnaryExpression is a prefix operator application.
type UnaryExpression struct {
	Span
	Op      token.Kind
	Operand Expression
}

func (*UnaryExpression) exprNode() {}

// UpdateExpression is `++x`, `x++`, `--x` or `x--`.
type UpdateExpression struct {
	Span
	Op      token.Kind
	Operand Expression
	Prefix  bool
}

func (*UpdateExpression) exprNode() {}

// AssignmentExpression is `target op value`.
type AssignmentExpression struct {
	Span
	Op    token.Kind
	Left  Expression
	Right Expression
}

func (*AssignmentExpression) exprNode() {}

// ConditionalExpression is `test ? consequent : alternate`.
type ConditionalExpression struct {
	Span
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

func (*ConditionalExpression) exprNode() {}

// SequenceExpression is `a, b, c`.
type SequenceExpression struct {
	Span
	Expressions []Expression
}

func (*SequenceExpression) exprNode() {}

// SpreadElement is `...expr` in call arguments and literals.
type SpreadElement struct {
	Span
	Argument Expression
}

func (*SpreadElement) exprNode() {}

// AwaitExpression is `await expr`.
type AwaitExpression struct {
	Span
	Argument Expression
}

func (*AwaitExpression) exprNode() {}

// YieldExpression is `yield [expr]` or `yield* expr`.
type YieldExpression struct {
	Span
	Argument Expression
	Delegate bool
}

func (*YieldExpression) exprNode() {}

// AsExpression is `expr as Type` (or `expr!` when Type is nil and NonNull
// is set).
type AsExpression struct {
	Span
	Expr    Expression
	Type    *TypeRef
	NonNull bool
}

func (*AsExpression) exprNode() {}

// ParenExpression preserves explicit grouping for faithful re-emission.
type ParenExpression struct {
	Span
	Expr Expression
}

func (*ParenExpression) exprNode() {}
