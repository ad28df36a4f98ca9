// Package emit serializes an analyzed program back to plain TypeScript.
// Component declarations are rewritten into registry-wrapped closures and
// every JSX subtree is lowered into runtime calls; all other source text
// is carried through verbatim by offset splicing, so formatting and
// comments inside untouched statements survive.
package emit

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/psr-lang/psr/pkg/psr/analysis"
	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/detect"
	"github.com/psr-lang/psr/pkg/psr/diag"
	"github.com/psr-lang/psr/pkg/psr/ir"
)

// Options controls output shape.
type Options struct {
	// Indent is the indentation unit, two spaces when empty.
	Indent string
	// MaxDepth bounds render-tree lowering, ir.DefaultMaxDepth when zero.
	MaxDepth int
}

// Emitter drives one compilation unit through lowering and serialization.
type Emitter struct {
	src      string
	info     *analysis.Info
	builder  *ir.Builder
	detector *detect.Detector
	imports  *ImportRegistry
	diags    diag.List
	opts     Options
	tmp      int

	// Components collects the IR of every component lowered in this unit,
	// in source order.
	Components []*ir.Component
}

// New builds an emitter for one source unit.
func New(src string, info *analysis.Info, opts Options) *Emitter {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	return &Emitter{
		src:      src,
		info:     info,
		builder:  ir.NewBuilder(info, opts.MaxDepth),
		detector: detect.New(info),
		imports:  NewImportRegistry(),
		opts:     opts,
	}
}

// Diagnostics returns everything reported during emission, detector
// warnings included.
func (e *Emitter) Diagnostics() diag.List {
	out := append(diag.List{}, e.diags...)
	out = append(out, e.detector.Diagnostics()...)
	return out
}

// Imports exposes the registry, mainly for tests.
func (e *Emitter) Imports() *ImportRegistry {
	return e.imports
}

// EmitProgram serializes the whole unit: import block, blank line, then
// the rewritten statements in source order.
func (e *Emitter) EmitProgram(prog *ast.Program) string {
	parents := ast.BuildParentMap(prog)
	e.registerImports(prog)
	e.registerSignalRuntime(prog)

	var blocks []string
	for _, stmt := range prog.Statements {
		if _, ok := stmt.(*ast.ImportDeclaration); ok {
			continue
		}
		text := e.emitTopLevel(stmt, parents)
		if text != "" {
			blocks = append(blocks, text)
		}
	}

	var b strings.Builder
	if imports := e.imports.GenerateImportStatements(); imports != "" {
		b.WriteString(imports)
		b.WriteByte('\n')
	}
	b.WriteString(strings.Join(blocks, "\n\n"))
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}

func (e *Emitter) emitTopLevel(stmt ast.Statement, parents ast.ParentMap) string {
	switch v := stmt.(type) {
	case *ast.ComponentDeclaration:
		return e.emitComponentDecl(v, "")
	case *ast.ExportDeclaration:
		if comp, ok := v.Declaration.(*ast.ComponentDeclaration); ok {
			if v.Default {
				return e.emitComponentDecl(comp, "") + fmt.Sprintf("\nexport default %s;", comp.Name)
			}
			return e.emitComponentDecl(comp, "export ")
		}
		if fn, ok := v.Declaration.(*ast.FunctionDeclaration); ok {
			if text, ok := e.emitDetected(fn, parents, "export "); ok {
				return text
			}
		}
		if decl, ok := v.Declaration.(*ast.VariableDeclaration); ok {
			if text, ok := e.emitDetectedVar(decl, parents, "export "); ok {
				return text
			}
		}
		return e.spliceNode(stmt, 0)
	case *ast.FunctionDeclaration:
		if text, ok := e.emitDetected(v, parents, ""); ok {
			return text
		}
		return e.spliceNode(stmt, 0)
	case *ast.VariableDeclaration:
		if text, ok := e.emitDetectedVar(v, parents, ""); ok {
			return text
		}
		return e.spliceNode(stmt, 0)
	default:
		return e.spliceNode(stmt, 0)
	}
}

// emitComponentDecl rewrites explicit `component` syntax into the arrow
// form wrapping the body in a registry scope.
func (e *Emitter) emitComponentDecl(comp *ast.ComponentDeclaration, prefix string) string {
	e.recordComponent(comp.Name, comp.Params, comp.Body, comp.Span)
	e.imports.Runtime("$REGISTRY")
	ind := e.opts.Indent

	var b strings.Builder
	fmt.Fprintf(&b, "%sconst %s = (%s): HTMLElement => {\n", prefix, comp.Name, e.paramsText(comp.Params))
	fmt.Fprintf(&b, "%sreturn $REGISTRY.execute(%s, () => {\n", ind, quote("component:"+comp.Name))
	e.writeBody(&b, comp.Body.Statements, 2)
	fmt.Fprintf(&b, "%s});\n", ind)
	b.WriteString("};")
	return b.String()
}

// emitDetected applies the detector to a top-level function declaration
// and, on a high-confidence match, wraps its body in a registry scope
// while preserving the function form. Lower-confidence matches keep their
// original shape; the synthesized return annotation still applies.
func (e *Emitter) emitDetected(fn *ast.FunctionDeclaration, parents ast.ParentMap, prefix string) (string, bool) {
	if fn.Body == nil || fn.Generator {
		return "", false
	}
	res := e.detector.Detect(detect.Candidate{Node: fn, Name: fn.Name, Parents: parents})
	if !res.IsComponent {
		return "", false
	}
	if res.Confidence < detect.High {
		return e.annotatedSplice(fn), true
	}
	e.recordComponent(fn.Name, fn.Params, fn.Body, fn.Span)
	e.imports.Runtime("$REGISTRY")
	ind := e.opts.Indent

	var b strings.Builder
	b.WriteString(prefix)
	if fn.Async {
		b.WriteString("async ")
	}
	fmt.Fprintf(&b, "function %s(%s): %s {\n", fn.Name, e.paramsText(fn.Params), returnAnnotation(fn.ReturnType))
	fmt.Fprintf(&b, "%sreturn $REGISTRY.execute(%s, () => {\n", ind, quote("component:"+fn.Name))
	e.writeBody(&b, fn.Body.Statements, 2)
	fmt.Fprintf(&b, "%s});\n", ind)
	b.WriteString("}")
	return b.String(), true
}

// emitDetectedVar handles `const Name = (props) => <jsx/>` declarations.
func (e *Emitter) emitDetectedVar(decl *ast.VariableDeclaration, parents ast.ParentMap, prefix string) (string, bool) {
	if len(decl.Declarators) != 1 {
		return "", false
	}
	dtor := decl.Declarators[0]
	arrow, ok := dtor.Init.(*ast.ArrowFunction)
	if !ok || dtor.Name == "" {
		return "", false
	}
	res := e.detector.Detect(detect.Candidate{Node: arrow, Name: dtor.Name, Parents: parents})
	if !res.IsComponent {
		return "", false
	}
	if res.Confidence < detect.High {
		return e.annotatedSplice(decl), true
	}
	var body []ast.Statement
	if block, isBlock := arrow.BodyBlock(); isBlock {
		body = block.Statements
	} else if expr, isExpr := arrow.BodyExpression(); isExpr {
		body = []ast.Statement{&ast.ReturnStatement{
			Span:  ast.SpanBetween(expr.Pos(), expr.End()),
			Value: expr,
		}}
	} else {
		return "", false
	}
	e.recordComponent(dtor.Name, arrow.Params, &ast.BlockStatement{
		Span:       decl.Span,
		Statements: body,
	}, decl.Span)
	e.imports.Runtime("$REGISTRY")
	ind := e.opts.Indent

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s %s = (%s): %s => {\n", prefix, decl.Kind.String(), dtor.Name, e.paramsText(arrow.Params), returnAnnotation(arrow.ReturnType))
	fmt.Fprintf(&b, "%sreturn $REGISTRY.execute(%s, () => {\n", ind, quote("component:"+dtor.Name))
	e.writeBody(&b, body, 2)
	fmt.Fprintf(&b, "%s});\n", ind)
	b.WriteString("};")
	return b.String(), true
}

// recordComponent lowers the component through the IR builder for
// dependency metadata. Control-flow-only bodies that never return at the
// top level are skipped; their JSX is still lowered by splicing.
func (e *Emitter) recordComponent(name string, params []ast.Param, body *ast.BlockStatement, span ast.Span) {
	if body == nil {
		return
	}
	comp, err := e.builder.BuildComponent(name, params, body, span)
	if err != nil {
		var be *ir.BuildError
		if asBuildError(err, &be) && be.Kind == ir.ErrNoRender {
			return
		}
		e.diags = append(e.diags, diag.Errorf(diag.PhaseIR, span.From.Line, span.From.Column, "%s", err.Error()))
		return
	}
	e.Components = append(e.Components, comp)
}

func asBuildError(err error, target **ir.BuildError) bool {
	be, ok := err.(*ir.BuildError)
	if ok {
		*target = be
	}
	return ok
}

// writeBody splices each statement at the given indent depth.
func (e *Emitter) writeBody(b *strings.Builder, stmts []ast.Statement, depth int) {
	ind := strings.Repeat(e.opts.Indent, depth)
	for _, stmt := range stmts {
		text := e.spliceNode(stmt, depth)
		for _, line := range strings.Split(text, "\n") {
			if strings.TrimSpace(line) == "" {
				b.WriteByte('\n')
				continue
			}
			b.WriteString(ind)
			b.WriteString(strings.TrimLeft(line, " \t"))
			b.WriteByte('\n')
		}
	}
}

// annotatedSplice carries a statement through verbatim, materializing the
// return annotation the detector synthesized, when it did.
func (e *Emitter) annotatedSplice(n ast.Node) string {
	edits := e.jsxEdits(n, 0)
	edits = append(edits, e.annotationEdits(n)...)
	return e.applyEdits(n.Pos().Offset, n.End().Offset, edits)
}

// annotationEdits turns a synthesized HTMLElement annotation into source
// edits. Synthesized annotations are recognizable by their zero span.
func (e *Emitter) annotationEdits(n ast.Node) []edit {
	var out []edit
	collect := func(node ast.Node) {
		switch fn := node.(type) {
		case *ast.FunctionDeclaration:
			if synthesized(fn.ReturnType) && fn.Body != nil {
				out = append(out, edit{from: fn.Body.Pos().Offset, to: fn.Body.Pos().Offset, text: ": HTMLElement "})
			}
		case *ast.ArrowFunction:
			if synthesized(fn.ReturnType) {
				out = append(out, e.arrowAnnotationEdits(fn)...)
			}
		}
	}
	if err := ast.Walk(n, ast.DefaultMaxDepth, func(child ast.Node) bool {
		collect(child)
		return true
	}); err != nil {
		e.depthDiag(err)
	}
	return out
}

// depthDiag surfaces a traversal bound violation as an emitter error.
func (e *Emitter) depthDiag(err error) {
	var de *ast.DepthError
	if errors.As(err, &de) {
		e.diags = append(e.diags, diag.Errorf(diag.PhaseEmitter, de.At.Line, de.At.Column,
			"tree nesting exceeds the maximum depth of %d", de.Depth))
		return
	}
	e.diags = append(e.diags, diag.Errorf(diag.PhaseEmitter, 0, 0, "%s", err))
}

func synthesized(ref *ast.TypeRef) bool {
	return ref != nil && ref.Span.From.Line == 0
}

// returnAnnotation keeps a declared return type; HTMLElement is supplied
// only when the source carries none.
func returnAnnotation(ref *ast.TypeRef) string {
	if ref != nil && strings.TrimSpace(ref.Text) != "" {
		return ref.Text
	}
	return "HTMLElement"
}

// arrowAnnotationEdits inserts `: HTMLElement` before the arrow token,
// parenthesizing a bare single parameter first.
func (e *Emitter) arrowAnnotationEdits(arrow *ast.ArrowFunction) []edit {
	bodyStart := arrow.Body.Pos().Offset
	head := e.src[arrow.Pos().Offset:bodyStart]
	rel := strings.LastIndex(head, "=>")
	if rel < 0 {
		return nil
	}
	at := arrow.Pos().Offset + rel
	if len(arrow.Params) == 1 && arrow.Params[0].Name != "" {
		pstart := arrow.Params[0].Pos().Offset
		if !strings.Contains(e.src[arrow.Pos().Offset:pstart+1], "(") {
			return []edit{
				{from: pstart, to: pstart, text: "("},
				{from: at, to: at, text: "): HTMLElement "},
			}
		}
	}
	return []edit{{from: at, to: at, text: ": HTMLElement "}}
}

// paramsText reconstructs a parameter list from source spans.
func (e *Emitter) paramsText(params []ast.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = e.applyEdits(p.Pos().Offset, p.End().Offset, e.jsxEdits(&p, 0))
	}
	return strings.Join(parts, ", ")
}

// registerImports folds every source import into the registry so the
// final block is deduplicated and sorted as a whole.
func (e *Emitter) registerImports(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		imp, ok := stmt.(*ast.ImportDeclaration)
		if !ok {
			continue
		}
		if imp.Default == "" && imp.Namespace == "" && len(imp.Named) == 0 {
			e.imports.AddSideEffect(imp.Source)
			continue
		}
		if imp.Default != "" {
			e.imports.AddDefault(imp.Source, imp.Default)
		}
		if imp.Namespace != "" {
			e.imports.AddNamespace(imp.Source, imp.Namespace)
		}
		for _, spec := range imp.Named {
			e.imports.AddNamed(imp.Source, spec.Name, spec.Alias, imp.TypeOnly || spec.TypeOnly)
		}
	}
}

// registerSignalRuntime adds runtime imports for signal constructors the
// unit calls without importing them itself.
func (e *Emitter) registerSignalRuntime(prog *ast.Program) {
	imported := map[string]bool{}
	for _, stmt := range prog.Statements {
		if imp, ok := stmt.(*ast.ImportDeclaration); ok {
			for _, spec := range imp.Named {
				imported[spec.Local()] = true
			}
			if imp.Default != "" {
				imported[imp.Default] = true
			}
		}
	}
	used := map[string]bool{}
	if err := ast.Walk(prog, ast.DefaultMaxDepth, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpression); ok {
			if id, ok := call.Callee.(*ast.Identifier); ok && e.signalConstructor(id.Name) {
				used[id.Name] = true
			}
		}
		return true
	}); err != nil {
		e.depthDiag(err)
	}
	names := make([]string, 0, len(used))
	for name := range used {
		if !imported[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		e.imports.Runtime(name)
	}
}

func (e *Emitter) signalConstructor(name string) bool {
	if e.info != nil && e.info.SignalConstructors != nil {
		return e.info.SignalConstructors[name]
	}
	return analysis.DefaultSignalConstructors()[name]
}
