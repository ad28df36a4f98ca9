package ast

import (
	"fmt"

	"github.com/psr-lang/psr/pkg/psr/token"
)

// DefaultMaxDepth bounds tree recursion. Component trees nested past this
// point are treated as malformed rather than risking a native stack
// overflow.
const DefaultMaxDepth = 100

// DepthError reports that a traversal exceeded its recursion bound.
type DepthError struct {
	Depth int
	At    token.Position
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("%s: tree nesting exceeds the maximum depth of %d", e.At, e.Depth)
}

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		switch v := c.(type) {
		case nil:
		case *BlockStatement:
			if v != nil {
				out = append(out, v)
			}
		case *TypeRef:
			if v != nil {
				out = append(out, v)
			}
		default:
			if c != nil {
				out = append(out, c)
			}
		}
	}
	addExpr := func(e Expression) {
		if e != nil {
			out = append(out, e)
		}
	}
	addStmt := func(s Statement) {
		if s != nil {
			out = append(out, s)
		}
	}
	addParams := func(params []Param) {
		for i := range params {
			addExpr(params[i].Pattern)
			addExpr(params[i].Default)
		}
	}

	switch v := n.(type) {
	case *Program:
		for _, s := range v.Statements {
			addStmt(s)
		}
	case *ImportDeclaration, *EmptyStatement, *BreakStatement, *ContinueStatement,
		*Identifier, *NumberLiteral, *StringLiteral, *BooleanLiteral,
		*NullLiteral, *UndefinedLiteral, *ThisExpression, *RegexLiteral,
		*JSXText, *TypeRef, *InterfaceDeclaration, *TypeAliasDeclaration:
		// leaves
	case *ExportDeclaration:
		addStmt(v.Declaration)
	case *ComponentDeclaration:
		addParams(v.Params)
		add(v.Body)
	case *FunctionDeclaration:
		for _, d := range v.Decorators {
			addExpr(d.Expr)
		}
		addParams(v.Params)
		add(v.Body)
	case *VariableDeclaration:
		for _, d := range v.Declarators {
			addExpr(d.Pattern)
			addExpr(d.Init)
		}
	case *EnumDeclaration:
		for _, m := range v.Members {
			addExpr(m.Init)
		}
	case *NamespaceDeclaration:
		add(v.Body)
	case *ClassDeclaration:
		for _, d := range v.Decorators {
			addExpr(d.Expr)
		}
		addExpr(v.SuperClass)
		for _, m := range v.Members {
			for _, d := range m.Decorators {
				addExpr(d.Expr)
			}
			addParams(m.Params)
			addExpr(m.Init)
			add(m.Body)
		}
	case *BlockStatement:
		for _, s := range v.Statements {
			addStmt(s)
		}
	case *ExpressionStatement:
		addExpr(v.Expr)
	case *ReturnStatement:
		addExpr(v.Value)
	case *IfStatement:
		addExpr(v.Test)
		addStmt(v.Consequent)
		addStmt(v.Alternate)
	case *SwitchStatement:
		addExpr(v.Discriminant)
		for _, c := range v.Cases {
			addExpr(c.Test)
			for _, s := range c.Body {
				addStmt(s)
			}
		}
	case *ForStatement:
		addStmt(v.Init)
		addExpr(v.Test)
		addExpr(v.Update)
		addStmt(v.Body)
	case *ForInStatement:
		addExpr(v.Left)
		addExpr(v.Right)
		addStmt(v.Body)
	case *WhileStatement:
		addExpr(v.Test)
		addStmt(v.Body)
	case *DoWhileStatement:
		addStmt(v.Body)
		addExpr(v.Test)
	case *LabeledStatement:
		addStmt(v.Body)
	case *TryStatement:
		add(v.Block)
		add(v.Catch)
		add(v.Finally)
	case *ThrowStatement:
		addExpr(v.Value)
	case *TemplateLiteral:
		for _, e := range v.Expressions {
			addExpr(e)
		}
	case *ArrayLiteral:
		for _, e := range v.Elements {
			addExpr(e)
		}
	case *ObjectLiteral:
		for _, p := range v.Properties {
			if p.Computed {
				addExpr(p.Key)
			}
			addExpr(p.Value)
		}
	case *FunctionExpression:
		addParams(v.Params)
		add(v.Body)
	case *ArrowFunction:
		addParams(v.Params)
		add(v.Body)
	case *CallExpression:
		addExpr(v.Callee)
		for _, a := range v.Args {
			addExpr(a)
		}
	case *NewExpression:
		addExpr(v.Callee)
		for _, a := range v.Args {
			addExpr(a)
		}
	case *MemberExpression:
		addExpr(v.Object)
		if v.Computed {
			addExpr(v.Property)
		}
	case *BinaryExpression:
		addExpr(v.Left)
		addExpr(v.Right)
	case *LogicalExpression:
		addExpr(v.Left)
		addExpr(v.Right)
	case *UnaryExpression:
		addExpr(v.Operand)
	case *UpdateExpression:
		addExpr(v.Operand)
	case *AssignmentExpression:
		addExpr(v.Left)
		addExpr(v.Right)
	case *ConditionalExpression:
		addExpr(v.Test)
		addExpr(v.Consequent)
		addExpr(v.Alternate)
	case *SequenceExpression:
		for _, e := range v.Expressions {
			addExpr(e)
		}
	case *SpreadElement:
		addExpr(v.Argument)
	case *AwaitExpression:
		addExpr(v.Argument)
	case *YieldExpression:
		addExpr(v.Argument)
	case *AsExpression:
		addExpr(v.Expr)
	case *ParenExpression:
		addExpr(v.Expr)
	case *JSXElement:
		addExpr(v.TagExpr)
		for _, a := range v.Attributes {
			addExpr(a.Value)
			addExpr(a.Spread)
		}
		for _, c := range v.Children {
			add(c)
		}
	case *JSXFragment:
		for _, c := range v.Children {
			add(c)
		}
	case *JSXExpression:
		addExpr(v.Expr)
	}
	return out
}

// Walk visits n and its subtree in depth-first pre-order. visit returning
// false prunes the node's children. Walk carries an explicit depth counter
// and returns a *DepthError once maxDepth is exceeded; zero selects
// DefaultMaxDepth.
func Walk(n Node, maxDepth int, visit func(Node) bool) error {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return walk(n, 0, maxDepth, visit)
}

func walk(n Node, depth, maxDepth int, visit func(Node) bool) error {
	if n == nil {
		return nil
	}
	if depth > maxDepth {
		return &DepthError{Depth: maxDepth, At: n.Pos()}
	}
	if !visit(n) {
		return nil
	}
	for _, child := range Children(n) {
		if err := walk(child, depth+1, maxDepth, visit); err != nil {
			return err
		}
	}
	return nil
}

// ParentMap is a non-owning child-to-parent lookup for phases that need
// upward context, such as detecting whether a JSX expression sits inside
// an event-handler attribute.
type ParentMap map[Node]Node

// BuildParentMap walks the tree once and records each node's parent.
// Mapping stops at the walker's depth bound; over-deep trees are rejected
// with a diagnostic before any phase asks for parents.
func BuildParentMap(root Node) ParentMap {
	pm := make(ParentMap)
	_ = Walk(root, DefaultMaxDepth, func(n Node) bool {
		for _, child := range Children(n) {
			pm[child] = n
		}
		return true
	})
	return pm
}
