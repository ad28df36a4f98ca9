package ir

import (
	"strings"

	"github.com/psr-lang/psr/pkg/psr/analysis"
	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/reactivity"
)

// DefaultMaxDepth bounds render-tree nesting during lowering. It matches
// the walker bound so a tree that parses is also lowerable.
const DefaultMaxDepth = ast.DefaultMaxDepth

// Builder lowers parsed components into IR.
type Builder struct {
	classifier *reactivity.Classifier
	info       *analysis.Info
	maxDepth   int
}

// NewBuilder wires the builder to the analyzed unit. maxDepth <= 0 selects
// DefaultMaxDepth.
func NewBuilder(info *analysis.Info, maxDepth int) *Builder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Builder{
		classifier: reactivity.NewClassifier(info),
		info:       info,
		maxDepth:   maxDepth,
	}
}

// BuildComponent lowers a component body. The last return statement's
// value becomes the render tree; everything before it is setup code run
// inside the registry scope.
func (b *Builder) BuildComponent(name string, params []ast.Param, body *ast.BlockStatement, span ast.Span) (*Component, error) {
	comp := &Component{Name: name, Params: params, Span: span}
	deps := map[string]bool{}

	var renderExpr ast.Expression
	for _, stmt := range body.Statements {
		if ret, ok := stmt.(*ast.ReturnStatement); ok && ret.Value != nil {
			renderExpr = ret.Value
			break
		}
		comp.Setup = append(comp.Setup, stmt)
	}
	if renderExpr == nil {
		return nil, errf(ErrNoRender, body.Pos(), "component %s has no return value", name)
	}

	root, err := b.lower(renderExpr, deps, 0)
	if err != nil {
		return nil, err
	}
	comp.Root = root
	comp.Dependencies = sortedDeps(deps)
	comp.UsesSignals = len(comp.Dependencies) > 0 || b.setupCreatesSignals(comp.Setup)
	return comp, nil
}

// BuildElement lowers a standalone JSX expression, used for top-level JSX
// outside components.
func (b *Builder) BuildElement(expr ast.Expression) (Node, []string, error) {
	deps := map[string]bool{}
	node, err := b.lower(expr, deps, 0)
	if err != nil {
		return nil, nil, err
	}
	return node, sortedDeps(deps), nil
}

func (b *Builder) lower(expr ast.Expression, deps map[string]bool, depth int) (Node, error) {
	if depth > b.maxDepth {
		return nil, errf(ErrTooDeep, expr.Pos(), "render tree exceeds maximum depth %d", b.maxDepth)
	}
	for {
		paren, ok := expr.(*ast.ParenExpression)
		if !ok {
			break
		}
		expr = paren.Expr
	}
	switch v := expr.(type) {
	case *ast.JSXElement:
		return b.lowerElement(v, deps, depth)
	case *ast.JSXFragment:
		frag := &Fragment{Span: v.Span}
		for _, child := range v.Children {
			node, err := b.lowerChild(child, deps, depth+1)
			if err != nil {
				return nil, err
			}
			if node != nil {
				frag.Children = append(frag.Children, node)
			}
		}
		return frag, nil
	default:
		return b.lowerExpr(expr, deps, ast.SpanBetween(expr.Pos(), expr.End())), nil
	}
}

func (b *Builder) lowerElement(el *ast.JSXElement, deps map[string]bool, depth int) (*Element, error) {
	out := &Element{
		Tag:         el.TagName,
		TagExpr:     el.TagExpr,
		IsComponent: el.IsComponentTag(),
		SelfClosing: el.SelfClosing,
		Span:        el.Span,
	}
	if out.Tag == "" && out.TagExpr == nil {
		return nil, errf(ErrBadTag, el.Pos(), "element has no resolvable tag")
	}

	for _, attr := range el.Attributes {
		if attr.Spread != nil {
			out.Spreads = append(out.Spreads, attr.Spread)
			continue
		}
		if attr.Name == "" {
			return nil, errf(ErrBadProp, el.Pos(), "attribute on <%s> has no name", out.Tag)
		}
		cl := b.classifier.ClassifyAttribute(attr.Name, attr.Value)
		switch cl.Category {
		case reactivity.Event:
			if attr.Value == nil {
				return nil, errf(ErrBadProp, el.Pos(), "event attribute %s on <%s> has no handler", attr.Name, out.Tag)
			}
			out.Events = append(out.Events, EventBinding{
				Event:   eventName(attr.Name),
				Attr:    attr.Name,
				Handler: attr.Value,
			})
		case reactivity.Dynamic, reactivity.Conditional, reactivity.Loop:
			mergeDeps(deps, cl.Dependencies)
			out.Bindings = append(out.Bindings, SignalBinding{
				Prop:         attr.Name,
				Expr:         attr.Value,
				Dependencies: cl.Dependencies,
				Nullable:     cl.Nullable,
			})
		default:
			out.Static = append(out.Static, Attribute{Name: attr.Name, Value: attr.Value})
		}
	}

	for _, child := range el.Children {
		node, err := b.lowerChild(child, deps, depth+1)
		if err != nil {
			return nil, err
		}
		if node != nil {
			out.Children = append(out.Children, node)
		}
	}
	out.IsStatic = elementIsStatic(out)
	return out, nil
}

// elementIsStatic reports whether the element needs no wiring: nested
// elements handle their own reactivity, so only handlers, bindings and
// guarded direct children count.
func elementIsStatic(el *Element) bool {
	if len(el.Events) > 0 || len(el.Bindings) > 0 {
		return false
	}
	for _, child := range el.Children {
		switch c := child.(type) {
		case *Conditional, *Loop:
			return false
		case *Expr:
			if c.Class.IsReactive() {
				return false
			}
		}
	}
	return true
}

func (b *Builder) lowerChild(child ast.JSXChild, deps map[string]bool, depth int) (Node, error) {
	if depth > b.maxDepth {
		return nil, errf(ErrTooDeep, child.Pos(), "render tree exceeds maximum depth %d", b.maxDepth)
	}
	switch v := child.(type) {
	case *ast.JSXText:
		if strings.TrimSpace(v.Value) == "" {
			return nil, nil
		}
		return &Text{Value: v.Value, Span: v.Span}, nil
	case *ast.JSXElement:
		return b.lowerElement(v, deps, depth)
	case *ast.JSXFragment:
		return b.lower(v, deps, depth)
	case *ast.JSXExpression:
		if v.Expr == nil {
			return nil, nil
		}
		return b.lowerExpr(v.Expr, deps, v.Span), nil
	}
	return nil, nil
}

// lowerExpr classifies an interpolated expression and picks the specific
// IR shape for conditionals and list renders.
func (b *Builder) lowerExpr(expr ast.Expression, deps map[string]bool, span ast.Span) Node {
	cl := b.classifier.ClassifyExpression(expr)
	mergeDeps(deps, cl.Dependencies)
	switch cl.Category {
	case reactivity.Loop:
		if call := loopCall(expr); call != nil {
			return &Loop{Call: call, Dependencies: cl.Dependencies, Span: span}
		}
	case reactivity.Conditional:
		return &Conditional{Expr: expr, Dependencies: cl.Dependencies, Nullable: cl.Nullable, Span: span}
	}
	return &Expr{Expr: expr, Class: cl, Span: span}
}

func (b *Builder) setupCreatesSignals(stmts []ast.Statement) bool {
	ctors := b.signalConstructors()
	for _, stmt := range stmts {
		decl, ok := stmt.(*ast.VariableDeclaration)
		if !ok {
			continue
		}
		for _, dtor := range decl.Declarators {
			call, ok := dtor.Init.(*ast.CallExpression)
			if !ok {
				continue
			}
			if id, ok := call.Callee.(*ast.Identifier); ok && ctors[id.Name] {
				return true
			}
		}
	}
	return false
}

func (b *Builder) signalConstructors() map[string]bool {
	if b.info != nil && len(b.info.SignalConstructors) > 0 {
		return b.info.SignalConstructors
	}
	return analysis.DefaultSignalConstructors()
}

// loopCall finds the map/flatMap call inside an expression, unwrapping
// parens.
func loopCall(expr ast.Expression) *ast.CallExpression {
	for {
		paren, ok := expr.(*ast.ParenExpression)
		if !ok {
			break
		}
		expr = paren.Expr
	}
	if call, ok := expr.(*ast.CallExpression); ok {
		return call
	}
	return nil
}

// eventName lowers onClick to click.
func eventName(attr string) string {
	return strings.ToLower(strings.TrimPrefix(attr, "on"))
}
