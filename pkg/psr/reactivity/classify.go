// Package reactivity classifies expressions by how their value can change
// at runtime. The classification drives code generation: static content is
// emitted once, dynamic content is routed through the runtime wiring call,
// handlers are attached, and list renders become mapped rebuilds.
//
// Classification is a pure structural recursion over the AST. No state is
// mutated and the same input always yields the same result.
package reactivity

import (
	"sort"
	"strings"

	"github.com/psr-lang/psr/pkg/psr/analysis"
	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/token"
)

// Category names how an expression's value behaves over time.
type Category uint8

const (
	// Static values never change after first render.
	Static Category = iota
	// Dynamic values read at least one signal and must be re-evaluated.
	Dynamic
	// Event marks handler positions such as onClick attributes.
	Event
	// Conditional values select between branches at runtime.
	Conditional
	// Loop values render a collection via map or flatMap.
	Loop
)

func (c Category) String() string {
	switch c {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Event:
		return "event"
	case Conditional:
		return "conditional"
	case Loop:
		return "loop"
	}
	return "unknown"
}

// Strategy names the emission shape the generator should use.
type Strategy string

const (
	StrategyLiteral     Strategy = "literal"
	StrategyWire        Strategy = "wire"
	StrategyHandler     Strategy = "handler"
	StrategyConditional Strategy = "conditional-wire"
	StrategyMap         Strategy = "map"
)

// Classification is the immutable result of classifying one expression.
type Classification struct {
	Category     Category
	Strategy     Strategy
	Dependencies []string // sorted signal getter names read by the expression
	Nullable     bool
	Complexity   int // node count, a rough cost estimate
}

// IsReactive reports whether the value can change after first render.
func (c Classification) IsReactive() bool {
	return c.Category == Dynamic || c.Category == Conditional || c.Category == Loop
}

// Classifier resolves signal accessors against the analyzed symbol table.
type Classifier struct {
	info *analysis.Info
}

func NewClassifier(info *analysis.Info) *Classifier {
	return &Classifier{info: info}
}

// ClassifyAttribute classifies a JSX attribute value. Event-handler names
// take precedence over the value's own shape.
func (c *Classifier) ClassifyAttribute(name string, value ast.Expression) Classification {
	if IsEventAttribute(name) {
		cl := c.ClassifyExpression(value)
		cl.Category = Event
		cl.Strategy = StrategyHandler
		return cl
	}
	return c.ClassifyExpression(value)
}

// ClassifyExpression classifies an arbitrary expression.
func (c *Classifier) ClassifyExpression(expr ast.Expression) Classification {
	if expr == nil {
		return Classification{Category: Static, Strategy: StrategyLiteral}
	}
	scan := c.scan(expr)
	cl := Classification{
		Dependencies: scan.sortedDeps(),
		Nullable:     scan.nullable,
		Complexity:   scan.nodes,
	}
	switch {
	case scan.loop:
		cl.Category = Loop
		cl.Strategy = StrategyMap
	case scan.conditional && (len(cl.Dependencies) > 0 || scan.jsxBranch):
		cl.Category = Conditional
		cl.Strategy = StrategyConditional
	case len(cl.Dependencies) > 0:
		cl.Category = Dynamic
		cl.Strategy = StrategyWire
	default:
		cl.Category = Static
		cl.Strategy = StrategyLiteral
	}
	// Without type information a dynamic value may evaluate to null or
	// false, so assume nullable unless the shape rules it out.
	if cl.IsReactive() && !provablyNonNull(expr) {
		cl.Nullable = true
	}
	return cl
}

func provablyNonNull(expr ast.Expression) bool {
	switch v := expr.(type) {
	case *ast.ParenExpression:
		return provablyNonNull(v.Expr)
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.TemplateLiteral,
		*ast.JSXElement, *ast.JSXFragment:
		return true
	case *ast.BinaryExpression:
		return v.Op == token.PLUS && provablyNonNull(v.Left) && provablyNonNull(v.Right)
	}
	return false
}

// IsEventAttribute reports whether a JSX attribute name is a DOM event
// handler position: onX with an uppercase letter after the prefix.
func IsEventAttribute(name string) bool {
	if !strings.HasPrefix(name, "on") || len(name) < 3 {
		return false
	}
	ch := name[2]
	return ch >= 'A' && ch <= 'Z'
}

// --- structural scan ---

type scanResult struct {
	deps        map[string]bool
	loop        bool
	conditional bool
	jsxBranch   bool
	nullable    bool
	nodes       int
}

func (s *scanResult) sortedDeps() []string {
	if len(s.deps) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.deps))
	for name := range s.deps {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *Classifier) scan(expr ast.Expression) *scanResult {
	res := &scanResult{deps: map[string]bool{}}
	c.walk(expr, res, true)
	return res
}

// walk recurses structurally. top is true only for the root expression and
// its paren wrappers, so only outermost conditionals change the category.
func (c *Classifier) walk(n ast.Node, res *scanResult, top bool) {
	if n == nil {
		return
	}
	res.nodes++
	switch v := n.(type) {
	case *ast.ParenExpression:
		c.walk(v.Expr, res, top)
		return
	case *ast.CallExpression:
		c.noteCall(v, res)
	case *ast.ConditionalExpression:
		if top {
			res.conditional = true
			if isJSXNode(v.Consequent) || isJSXNode(v.Alternate) {
				res.jsxBranch = true
			}
		}
		res.nullable = res.nullable || isNullish(v.Consequent) || isNullish(v.Alternate)
	case *ast.LogicalExpression:
		if top {
			res.conditional = true
			if isJSXNode(v.Right) {
				res.jsxBranch = true
			}
		}
		// a && <jsx/> yields a falsy non-element when the guard fails
		res.nullable = true
	case *ast.MemberExpression:
		if v.Optional {
			res.nullable = true
		}
	case *ast.NullLiteral, *ast.UndefinedLiteral:
		res.nullable = true
	}
	for _, child := range ast.Children(n) {
		c.walk(child, res, false)
	}
}

// noteCall records signal reads and list renders.
func (c *Classifier) noteCall(call *ast.CallExpression, res *scanResult) {
	if id, ok := call.Callee.(*ast.Identifier); ok && len(call.Args) == 0 {
		if c.info != nil && c.info.IsSignalGetter(id.Name) {
			res.deps[id.Name] = true
		}
		return
	}
	if member, ok := call.Callee.(*ast.MemberExpression); ok && !member.Computed {
		if prop, ok := member.Property.(*ast.Identifier); ok {
			if prop.Name == "map" || prop.Name == "flatMap" {
				if len(call.Args) > 0 && callbackYieldsJSX(call.Args[0]) {
					res.loop = true
				}
			}
		}
		if member.Optional {
			res.nullable = true
		}
	}
}

func callbackYieldsJSX(arg ast.Expression) bool {
	switch v := arg.(type) {
	case *ast.ArrowFunction:
		return ast.ContainsJSX(v.Body)
	case *ast.FunctionExpression:
		return v.Body != nil && ast.ContainsJSX(v.Body)
	}
	return false
}

func isJSXNode(expr ast.Expression) bool {
	for {
		paren, ok := expr.(*ast.ParenExpression)
		if !ok {
			break
		}
		expr = paren.Expr
	}
	switch expr.(type) {
	case *ast.JSXElement, *ast.JSXFragment:
		return true
	}
	return false
}

func isNullish(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.NullLiteral, *ast.UndefinedLiteral:
		return true
	}
	return false
}
