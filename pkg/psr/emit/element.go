package emit

import (
	"fmt"
	"strings"

	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/diag"
	"github.com/psr-lang/psr/pkg/psr/ir"
)

// edit replaces one absolute source range with generated text. from == to
// is an insertion.
type edit struct {
	from, to int
	text     string
}

// applyEdits slices [from, to) of the source and applies edits, which must
// all fall inside the range and not overlap.
func (e *Emitter) applyEdits(from, to int, edits []edit) string {
	if len(edits) == 0 {
		return e.src[from:to]
	}
	for i := 1; i < len(edits); i++ {
		for j := i; j > 0 && edits[j].from < edits[j-1].from; j-- {
			edits[j], edits[j-1] = edits[j-1], edits[j]
		}
	}
	var b strings.Builder
	cursor := from
	for _, ed := range edits {
		if ed.from < cursor || ed.to > to {
			continue
		}
		b.WriteString(e.src[cursor:ed.from])
		b.WriteString(ed.text)
		cursor = ed.to
	}
	b.WriteString(e.src[cursor:to])
	return b.String()
}

// jsxEdits collects replacement edits for every topmost JSX subtree under
// n, lowering each through the IR builder.
func (e *Emitter) jsxEdits(n ast.Node, depth int) []edit {
	if n == nil {
		return nil
	}
	var out []edit
	if err := ast.Walk(n, ast.DefaultMaxDepth, func(node ast.Node) bool {
		switch node.(type) {
		case *ast.JSXElement, *ast.JSXFragment:
			out = append(out, edit{
				from: node.Pos().Offset,
				to:   node.End().Offset,
				text: e.genJSX(node.(ast.Expression), depth),
			})
			return false
		}
		return true
	}); err != nil {
		e.depthDiag(err)
	}
	return out
}

// spliceNode renders a node from source text with its JSX lowered.
func (e *Emitter) spliceNode(n ast.Node, depth int) string {
	return e.applyEdits(n.Pos().Offset, n.End().Offset, e.jsxEdits(n, depth))
}

// exprText renders an expression, lowering nested JSX.
func (e *Emitter) exprText(expr ast.Expression, depth int) string {
	if expr == nil {
		return "undefined"
	}
	switch expr.(type) {
	case *ast.JSXElement, *ast.JSXFragment:
		return e.genJSX(expr, depth)
	}
	return e.spliceNode(expr, depth)
}

// genJSX lowers one JSX expression to runtime-call text. Lowering
// failures surface as error diagnostics; the original text is carried
// through so later phases still see balanced syntax.
func (e *Emitter) genJSX(expr ast.Expression, depth int) string {
	node, _, err := e.builder.BuildElement(expr)
	if err != nil {
		pos := expr.Pos()
		e.diags = append(e.diags, diag.Errorf(diag.PhaseIR, pos.Line, pos.Column, "%s", err.Error()))
		return e.src[expr.Pos().Offset:expr.End().Offset]
	}
	return e.genNode(node, depth)
}

func (e *Emitter) genNode(n ir.Node, depth int) string {
	switch v := n.(type) {
	case *ir.Element:
		return e.genElement(v, depth)
	case *ir.Fragment:
		parts := make([]string, len(v.Children))
		for i, child := range v.Children {
			parts[i] = e.genNode(child, depth)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ir.Text:
		return quote(v.Value)
	case *ir.Expr:
		return e.exprText(v.Expr, depth)
	case *ir.Conditional:
		return e.exprText(v.Expr, depth)
	case *ir.Loop:
		return e.exprText(v.Call, depth)
	}
	return "undefined"
}

// genElement lowers one element. Components become direct calls with a
// props object. Plain tags become t_element calls; tags with handlers,
// reactive bindings or guarded children are assembled inside an
// immediately-invoked scope so the guard logic stays linear.
func (e *Emitter) genElement(el *ir.Element, depth int) string {
	if el.IsComponent {
		return e.genComponentCall(el, depth)
	}
	e.imports.Runtime("t_element")
	if el.IsStatic {
		return e.genInlineElement(el, depth)
	}
	return e.genScopedElement(el, depth)
}

func (e *Emitter) genInlineElement(el *ir.Element, depth int) string {
	children := make([]string, len(el.Children))
	for i, child := range el.Children {
		children[i] = e.genNode(child, depth)
	}
	return fmt.Sprintf("t_element(%s, %s, [%s])",
		quote(el.Tag), e.attrsObject(el, depth), strings.Join(children, ", "))
}

func (e *Emitter) genScopedElement(el *ir.Element, depth int) string {
	e.imports.Runtime("t_element")
	ind := strings.Repeat(e.opts.Indent, depth)
	inner := ind + e.opts.Indent
	elName := e.fresh("el")

	var b strings.Builder
	b.WriteString("(() => {\n")
	fmt.Fprintf(&b, "%sconst %s = t_element(%s, %s, []);\n", inner, elName, quote(el.Tag), e.attrsObject(el, depth+1))
	for _, ev := range el.Events {
		fmt.Fprintf(&b, "%s%s.addEventListener(%s, %s);\n", inner, elName, quote(ev.Event), e.exprText(ev.Handler, depth+1))
	}
	for _, binding := range el.Bindings {
		e.imports.Runtime("$REGISTRY")
		fmt.Fprintf(&b, "%s$REGISTRY.wire(%s, %s, () => %s);\n", inner, elName, quote(binding.Prop), e.exprText(binding.Expr, depth+1))
	}
	e.writeChildren(&b, el, elName, inner, depth+1)
	fmt.Fprintf(&b, "%sreturn %s;\n", inner, elName)
	fmt.Fprintf(&b, "%s})()", ind)
	return b.String()
}

// writeChildren appends each child in order. Reactive text in a sole-child
// position is wired to textContent; guarded children get null/false or
// array checks before landing in the parent.
func (e *Emitter) writeChildren(b *strings.Builder, el *ir.Element, elName, inner string, depth int) {
	sole := len(el.Children) == 1
	for _, child := range el.Children {
		switch c := child.(type) {
		case *ir.Text:
			fmt.Fprintf(b, "%s%s.append(%s);\n", inner, elName, quote(c.Value))
		case *ir.Element:
			fmt.Fprintf(b, "%s%s.append(%s);\n", inner, elName, e.genNode(child, depth))
		case *ir.Fragment:
			fmt.Fprintf(b, "%s%s.append(...%s);\n", inner, elName, e.genNode(child, depth))
		case *ir.Expr:
			if !c.Class.IsReactive() {
				fmt.Fprintf(b, "%s%s.append(%s);\n", inner, elName, e.exprText(c.Expr, depth))
				continue
			}
			if sole {
				e.imports.Runtime("$REGISTRY")
				fmt.Fprintf(b, "%s$REGISTRY.wire(%s, 'textContent', () => %s);\n", inner, elName, e.exprText(c.Expr, depth))
				continue
			}
			e.writeGuarded(b, elName, inner, e.exprText(c.Expr, depth), c.Class.Nullable)
		case *ir.Conditional:
			e.writeGuarded(b, elName, inner, e.exprText(c.Expr, depth), true)
		case *ir.Loop:
			name := e.fresh("items")
			fmt.Fprintf(b, "%sconst %s = %s;\n", inner, name, e.exprText(c.Call, depth))
			fmt.Fprintf(b, "%sif (Array.isArray(%s)) {\n", inner, name)
			fmt.Fprintf(b, "%s%s%s.forEach((item) => %s.append(item));\n", inner, e.opts.Indent, name, elName)
			fmt.Fprintf(b, "%s} else if (%s != null && %s !== false) {\n", inner, name, name)
			fmt.Fprintf(b, "%s%s%s.append(%s);\n", inner, e.opts.Indent, elName, name)
			fmt.Fprintf(b, "%s}\n", inner)
		}
	}
}

func (e *Emitter) writeGuarded(b *strings.Builder, elName, inner, exprText string, nullable bool) {
	if !nullable {
		fmt.Fprintf(b, "%s%s.append(%s);\n", inner, elName, exprText)
		return
	}
	name := e.fresh("child")
	fmt.Fprintf(b, "%sconst %s = %s;\n", inner, name, exprText)
	fmt.Fprintf(b, "%sif (%s != null && %s !== false) {\n", inner, name, name)
	fmt.Fprintf(b, "%s%s%s.append(%s);\n", inner, e.opts.Indent, elName, name)
	fmt.Fprintf(b, "%s}\n", inner)
}

// attrsObject serializes static attributes and spreads into an object
// literal.
func (e *Emitter) attrsObject(el *ir.Element, depth int) string {
	var parts []string
	for _, spread := range el.Spreads {
		parts = append(parts, "..."+e.exprText(spread, depth))
	}
	for _, attr := range el.Static {
		if attr.Value == nil {
			parts = append(parts, attrKey(attr.Name)+": true")
			continue
		}
		parts = append(parts, attrKey(attr.Name)+": "+e.exprText(attr.Value, depth))
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// genComponentCall emits a capitalized or member tag as a direct call
// with one props object; children fold into a children prop, single value
// when there is exactly one child.
func (e *Emitter) genComponentCall(el *ir.Element, depth int) string {
	callee := el.Tag
	if el.TagExpr != nil {
		callee = e.exprText(el.TagExpr, depth)
	}
	var parts []string
	for _, spread := range el.Spreads {
		parts = append(parts, "..."+e.exprText(spread, depth))
	}
	for _, attr := range el.Static {
		if attr.Value == nil {
			parts = append(parts, attrKey(attr.Name)+": true")
			continue
		}
		parts = append(parts, attrKey(attr.Name)+": "+e.exprText(attr.Value, depth))
	}
	for _, ev := range el.Events {
		parts = append(parts, attrKey(ev.Attr)+": "+e.exprText(ev.Handler, depth))
	}
	for _, binding := range el.Bindings {
		parts = append(parts, attrKey(binding.Prop)+": "+e.exprText(binding.Expr, depth))
	}
	switch len(el.Children) {
	case 0:
	case 1:
		parts = append(parts, "children: "+e.genNode(el.Children[0], depth))
	default:
		children := make([]string, len(el.Children))
		for i, child := range el.Children {
			children[i] = e.genNode(child, depth)
		}
		parts = append(parts, "children: ["+strings.Join(children, ", ")+"]")
	}
	if len(parts) == 0 {
		return callee + "({})"
	}
	return callee + "({ " + strings.Join(parts, ", ") + " })"
}

// attrKey quotes attribute names that are not valid identifiers, such as
// data-* and aria-*.
func attrKey(name string) string {
	for i := 0; i < len(name); i++ {
		ch := name[i]
		ok := ch == '_' || ch == '$' ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(i > 0 && ch >= '0' && ch <= '9')
		if !ok {
			return quote(name)
		}
	}
	return name
}

func (e *Emitter) fresh(prefix string) string {
	e.tmp++
	return fmt.Sprintf("%s%d", prefix, e.tmp)
}
