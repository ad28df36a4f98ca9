// Package ir defines the lowered component model produced after parsing,
// analysis and reactivity classification, and consumed by the emitter.
// Each node carries the classification of its dynamic parts so the
// emitter never re-derives reactivity.
package ir

import (
	"fmt"
	"sort"

	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/reactivity"
	"github.com/psr-lang/psr/pkg/psr/token"
)

// Node is a lowered render-tree node.
type Node interface {
	irNode()
}

// Component is one compiled component: its header, the statements that run
// inside the registry scope, and the lowered render tree.
type Component struct {
	Name string
	// Params are carried through from the source declaration.
	Params []ast.Param
	// Setup holds the body statements preceding the returned render tree.
	Setup []ast.Statement
	// Root is the lowered return value.
	Root Node
	// Dependencies is the sorted union of signal getters read anywhere in
	// the render tree.
	Dependencies []string
	UsesSignals  bool
	Span         ast.Span
}

// RegistryKey is the scope name the runtime registry executes under.
func (c *Component) RegistryKey() string {
	return "component:" + c.Name
}

// Element is a lowered JSX element. Static attributes, event handlers and
// reactive bindings are separated at build time.
type Element struct {
	Tag string
	// TagExpr is set instead of Tag for member tags such as <UI.Button>.
	TagExpr     ast.Expression
	IsComponent bool
	Static      []Attribute
	Events      []EventBinding
	Bindings    []SignalBinding
	Spreads     []ast.Expression
	Children    []Node
	// IsStatic is set when the element carries no handlers, no reactive
	// bindings and no guarded children, so it can emit as a single
	// t_element call.
	IsStatic    bool
	SelfClosing bool
	Span        ast.Span
}

// Attribute is a non-reactive attribute: a literal or an expression with
// no signal reads.
type Attribute struct {
	Name  string
	Value ast.Expression // nil for bare boolean attributes
}

// EventBinding is an onX handler attribute.
type EventBinding struct {
	// Event is the lowercase DOM event name, "click" for onClick.
	Event   string
	Attr    string
	Handler ast.Expression
}

// SignalBinding is a reactive attribute routed through the runtime wire
// call.
type SignalBinding struct {
	Prop         string
	Expr         ast.Expression
	Dependencies []string
	Nullable     bool
}

// Fragment is a lowered <>...</>.
type Fragment struct {
	Children []Node
	Span     ast.Span
}

// Text is literal child text, entity-decoded and whitespace-collapsed.
type Text struct {
	Value string
	Span  ast.Span
}

// Expr is an interpolated child expression together with its
// classification.
type Expr struct {
	Expr  ast.Expression
	Class reactivity.Classification
	Span  ast.Span
}

// Conditional is a child expression that selects between branches.
type Conditional struct {
	Expr         ast.Expression
	Dependencies []string
	Nullable     bool
	Span         ast.Span
}

// Loop is a list render: a map or flatMap call whose callback yields
// elements.
type Loop struct {
	Call         *ast.CallExpression
	Dependencies []string
	Span         ast.Span
}

func (*Element) irNode()     {}
func (*Fragment) irNode()    {}
func (*Text) irNode()        {}
func (*Expr) irNode()        {}
func (*Conditional) irNode() {}
func (*Loop) irNode()        {}

// ErrorKind discriminates builder failures.
type ErrorKind uint8

const (
	ErrBadProp ErrorKind = iota
	ErrBadTag
	ErrTooDeep
	ErrNoRender
)

// BuildError is a structured lowering failure.
type BuildError struct {
	Kind    ErrorKind
	Message string
	Pos     token.Position
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

func errf(kind ErrorKind, pos token.Position, format string, args ...any) *BuildError {
	return &BuildError{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func mergeDeps(dst map[string]bool, deps []string) {
	for _, d := range deps {
		dst[d] = true
	}
}

func sortedDeps(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
