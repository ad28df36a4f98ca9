// Package detect decides whether a function-like node is a UI component
// when the `component` keyword was not used.
//
// Detection runs a fixed strategy table in strict priority order; the
// first positive match wins and later strategies are never consulted. The
// suppressing strategy at priority 0 is its own variant rather than a
// positive strategy returning false, so the "cannot be overridden" rule is
// visible in the type.
package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/psr-lang/psr/pkg/psr/analysis"
	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/diag"
)

// Confidence grades a detection result.
type Confidence uint8

const (
	Low Confidence = iota
	Medium
	High
)

func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	}
	return "unknown"
}

// Result is an immutable detection decision.
type Result struct {
	IsComponent   bool
	Confidence    Confidence
	Strategy      string
	Rationale     string
	ComponentName string
}

// Candidate is a function-like node under consideration. Name is the
// binding name where one exists (declaration name or enclosing variable).
type Candidate struct {
	Node    ast.Node
	Name    string
	Parents ast.ParentMap
}

// Strategy is one detection rule. Suppress marks the negative rule that
// forces a non-component decision.
type Strategy struct {
	Name       string
	Priority   int
	Suppress   bool
	Confidence Confidence
	Match      func(d *Detector, c *Candidate) (bool, string)
}

// Detector applies the strategy table against candidates of one unit.
type Detector struct {
	info       *analysis.Info
	strategies []Strategy
	diags      diag.List
}

// New builds a detector with the canonical strategy set.
func New(info *analysis.Info) *Detector {
	d := &Detector{info: info}
	d.strategies = []Strategy{
		{Name: "AnonymousCallback", Priority: 0, Suppress: true, Match: matchAnonymousCallback},
		{Name: "ReturnType", Priority: 1, Confidence: High, Match: matchReturnType},
		{Name: "DirectJsxReturn", Priority: 2, Confidence: High, Match: matchDirectJsxReturn},
		{Name: "VariableJsxReturn", Priority: 2, Confidence: High, Match: matchVariableJsxReturn},
		{Name: "ConditionalJsxReturn", Priority: 2, Confidence: High, Match: matchConditionalJsxReturn},
		{Name: "PascalCase", Priority: 3, Confidence: Medium, Match: matchPascalCase},
		{Name: "HasJsxInBody", Priority: 6, Confidence: Low, Match: matchHasJsxInBody},
	}
	sort.SliceStable(d.strategies, func(i, j int) bool {
		return d.strategies[i].Priority < d.strategies[j].Priority
	})
	return d
}

// Diagnostics returns warnings accumulated across Detect calls, such as
// return-type mismatches.
func (d *Detector) Diagnostics() diag.List {
	return d.diags
}

// Detect resolves the candidate against the strategy table. Ambiguity
// resolves conservatively to "not a component".
func (d *Detector) Detect(c Candidate) Result {
	for _, s := range d.strategies {
		matched, rationale := s.Match(d, &c)
		if !matched {
			continue
		}
		if s.Suppress {
			return Result{
				IsComponent: false,
				Strategy:    s.Name,
				Rationale:   rationale,
			}
		}
		if s.Name == "VariableJsxReturn" {
			d.autoAnnotate(&c)
		}
		return Result{
			IsComponent:   true,
			Confidence:    s.Confidence,
			Strategy:      s.Name,
			Rationale:     rationale,
			ComponentName: c.Name,
		}
	}
	return Result{IsComponent: false, Strategy: "none", Rationale: "no strategy matched"}
}

// --- strategies ---

// matchAnonymousCallback suppresses arrows passed directly as call
// arguments, array elements or constructor arguments: inline callbacks
// like runTest('x', () => <Foo/>) are not components.
func matchAnonymousCallback(d *Detector, c *Candidate) (bool, string) {
	switch c.Node.(type) {
	case *ast.ArrowFunction, *ast.FunctionExpression:
	default:
		return false, ""
	}
	if c.Parents == nil {
		return false, ""
	}
	switch parent := c.Parents[c.Node].(type) {
	case *ast.CallExpression:
		for _, arg := range parent.Args {
			if arg == c.Node {
				return true, "anonymous function passed directly as a call argument"
			}
		}
	case *ast.ArrayLiteral:
		return true, "anonymous function used as an array element"
	case *ast.NewExpression:
		return true, "anonymous function passed directly as a constructor argument"
	}
	return false, ""
}

func matchReturnType(d *Detector, c *Candidate) (bool, string) {
	ref := returnTypeOf(c.Node)
	if ref == nil {
		return false, ""
	}
	if isElementType(ref.Text) {
		return true, fmt.Sprintf("explicit return type %q is a DOM element type", ref.Text)
	}
	return false, ""
}

func matchDirectJsxReturn(d *Detector, c *Candidate) (bool, string) {
	if arrow, ok := c.Node.(*ast.ArrowFunction); ok {
		if body, ok := arrow.BodyExpression(); ok && isJSX(body) {
			return true, "expression-bodied arrow returns JSX"
		}
	}
	for _, ret := range ownReturns(c.Node) {
		if ret.Value != nil && isJSX(ret.Value) {
			return true, "function body returns a JSX literal directly"
		}
	}
	return false, ""
}

// matchVariableJsxReturn recognizes the dominant real-world shape:
// a JSX literal assigned to a local, which is then returned.
func matchVariableJsxReturn(d *Detector, c *Candidate) (bool, string) {
	body := bodyOf(c.Node)
	if body == nil {
		return false, ""
	}
	jsxLocals := map[string]bool{}
	for _, stmt := range body.Statements {
		decl, ok := stmt.(*ast.VariableDeclaration)
		if !ok {
			continue
		}
		for _, dtor := range decl.Declarators {
			if dtor.Name != "" && dtor.Init != nil && isJSX(dtor.Init) {
				jsxLocals[dtor.Name] = true
			}
		}
	}
	if len(jsxLocals) == 0 {
		return false, ""
	}
	for _, ret := range ownReturns(c.Node) {
		if id, ok := ret.Value.(*ast.Identifier); ok && jsxLocals[id.Name] {
			return true, fmt.Sprintf("JSX assigned to %q and returned", id.Name)
		}
	}
	return false, ""
}

func matchConditionalJsxReturn(d *Detector, c *Candidate) (bool, string) {
	for _, ret := range ownReturns(c.Node) {
		switch v := unparen(ret.Value).(type) {
		case *ast.ConditionalExpression:
			if isJSX(v.Consequent) || isJSX(v.Alternate) {
				return true, "conditional return with a JSX branch"
			}
		case *ast.LogicalExpression:
			if isJSX(v.Right) || isJSX(v.Left) {
				return true, "logical return with a JSX operand"
			}
		}
	}
	return false, ""
}

func matchPascalCase(d *Detector, c *Candidate) (bool, string) {
	if c.Name == "" {
		return false, ""
	}
	first := c.Name[0]
	if first >= 'A' && first <= 'Z' {
		return true, fmt.Sprintf("identifier %q is PascalCase", c.Name)
	}
	return false, ""
}

func matchHasJsxInBody(d *Detector, c *Candidate) (bool, string) {
	if body := bodyOf(c.Node); body != nil && ast.ContainsJSX(body) {
		return true, "JSX literal appears in the body without being returned"
	}
	return false, ""
}

// --- auto annotation ---

// autoAnnotate makes the HTMLElement return type explicit on a positive
// VariableJsxReturn match so downstream passes can rely on typing. The
// write is idempotent and never replaces an existing annotation; an
// existing non-element annotation is reported as a warning, not corrected.
func (d *Detector) autoAnnotate(c *Candidate) {
	ref := returnTypeOf(c.Node)
	if ref != nil {
		if !isElementType(ref.Text) {
			pos := ref.Pos()
			d.diags = append(d.diags, diag.Warnf(diag.PhaseDetector, pos.Line, pos.Column,
				"component %q declares return type %q, expected an element type", c.Name, ref.Text))
		}
		return
	}
	ann := &ast.TypeRef{Text: "HTMLElement"}
	switch v := c.Node.(type) {
	case *ast.FunctionDeclaration:
		v.ReturnType = ann
	case *ast.FunctionExpression:
		v.ReturnType = ann
	case *ast.ArrowFunction:
		v.ReturnType = ann
	}
}

// --- helpers ---

func returnTypeOf(n ast.Node) *ast.TypeRef {
	switch v := n.(type) {
	case *ast.FunctionDeclaration:
		return v.ReturnType
	case *ast.FunctionExpression:
		return v.ReturnType
	case *ast.ArrowFunction:
		return v.ReturnType
	}
	return nil
}

func bodyOf(n ast.Node) *ast.BlockStatement {
	switch v := n.(type) {
	case *ast.FunctionDeclaration:
		return v.Body
	case *ast.FunctionExpression:
		return v.Body
	case *ast.ArrowFunction:
		if block, ok := v.BodyBlock(); ok {
			return block
		}
	case *ast.ComponentDeclaration:
		return v.Body
	}
	return nil
}

// ownReturns collects the return statements belonging to the candidate
// itself, without descending into nested function bodies.
func ownReturns(n ast.Node) []*ast.ReturnStatement {
	body := bodyOf(n)
	if body == nil {
		return nil
	}
	var out []*ast.ReturnStatement
	var visit func(node ast.Node)
	visit = func(node ast.Node) {
		switch v := node.(type) {
		case *ast.ReturnStatement:
			out = append(out, v)
			return
		case *ast.ArrowFunction, *ast.FunctionExpression, *ast.FunctionDeclaration:
			return
		}
		for _, child := range ast.Children(node) {
			visit(child)
		}
	}
	visit(body)
	return out
}

func isJSX(expr ast.Expression) bool {
	switch unparen(expr).(type) {
	case *ast.JSXElement, *ast.JSXFragment:
		return true
	}
	return false
}

func unparen(expr ast.Expression) ast.Expression {
	for {
		paren, ok := expr.(*ast.ParenExpression)
		if !ok {
			return expr
		}
		expr = paren.Expr
	}
}

// isElementType matches HTMLElement/Element/Node and their nullable
// variants.
func isElementType(text string) bool {
	for _, part := range strings.Split(text, "|") {
		switch strings.TrimSpace(part) {
		case "HTMLElement", "Element", "Node", "JSX.Element":
			return true
		}
	}
	return false
}
