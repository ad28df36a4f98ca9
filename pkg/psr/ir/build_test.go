package ir

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/psr-lang/psr/pkg/psr/analysis"
	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/parser"
)

// componentUnit parses a single component declaration and returns a builder
// over the analyzed unit together with the declaration itself.
func componentUnit(t *testing.T, src string) (*Builder, *ast.ComponentDeclaration) {
	t.Helper()
	prog, diags := parser.Parse(src)
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags)
	}
	info, err := analysis.Collect(prog)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	for _, stmt := range prog.Statements {
		if comp, ok := stmt.(*ast.ComponentDeclaration); ok {
			return NewBuilder(info, 0), comp
		}
	}
	t.Fatal("no component declaration in source")
	return nil, nil
}

func build(t *testing.T, src string) *Component {
	t.Helper()
	b, decl := componentUnit(t, src)
	comp, err := b.BuildComponent(decl.Name, decl.Params, decl.Body, decl.Span)
	if err != nil {
		t.Fatalf("BuildComponent: %v", err)
	}
	return comp
}

func TestRegistryKey(t *testing.T) {
	comp := build(t, "component Counter() { return <div/>; }")
	if got := comp.RegistryKey(); got != "component:Counter" {
		t.Errorf("registry key = %q, want component:Counter", got)
	}
}

func TestSetupAndRootSplit(t *testing.T) {
	comp := build(t, `component Counter() {
  const [count, setCount] = createSignal(0);
  const step = 2;
  return <div>{count()}</div>;
}`)
	if len(comp.Setup) != 2 {
		t.Fatalf("setup statements = %d, want 2", len(comp.Setup))
	}
	root, ok := comp.Root.(*Element)
	if !ok {
		t.Fatalf("root is %T, want *Element", comp.Root)
	}
	if root.Tag != "div" {
		t.Errorf("root tag = %q, want div", root.Tag)
	}
	if !comp.UsesSignals {
		t.Error("a component creating a signal must report UsesSignals")
	}
	if !reflect.DeepEqual(comp.Dependencies, []string{"count"}) {
		t.Errorf("dependencies = %v, want [count]", comp.Dependencies)
	}
}

func TestDependenciesUnionAcrossTree(t *testing.T) {
	comp := build(t, `component Dash() {
  const [a, setA] = createSignal(0);
  const [b, setB] = createSignal(0);
  return <div title={b()}><span>{a()}</span>{b()}</div>;
}`)
	if !reflect.DeepEqual(comp.Dependencies, []string{"a", "b"}) {
		t.Fatalf("dependencies = %v, want the sorted union [a b]", comp.Dependencies)
	}
}

func TestAttributeSplit(t *testing.T) {
	comp := build(t, `component Row() {
  const [v, setV] = createSignal('');
  return <input class="field" value={v()} onInput={(e) => setV(e.target.value)} {...rest} />;
}`)
	el := comp.Root.(*Element)
	if len(el.Static) != 1 || el.Static[0].Name != "class" {
		t.Fatalf("static attrs = %+v, want only class", el.Static)
	}
	if len(el.Bindings) != 1 || el.Bindings[0].Prop != "value" {
		t.Fatalf("bindings = %+v, want only value", el.Bindings)
	}
	if !reflect.DeepEqual(el.Bindings[0].Dependencies, []string{"v"}) {
		t.Errorf("binding deps = %v, want [v]", el.Bindings[0].Dependencies)
	}
	if len(el.Events) != 1 {
		t.Fatalf("events = %+v, want one", el.Events)
	}
	if el.Events[0].Event != "input" {
		t.Errorf("event name = %q, want the lowercased input", el.Events[0].Event)
	}
	if len(el.Spreads) != 1 {
		t.Errorf("spreads = %d, want 1", len(el.Spreads))
	}
	if !el.SelfClosing {
		t.Error("input must be self-closing")
	}
}

func TestWhitespaceOnlyTextDropped(t *testing.T) {
	comp := build(t, `component Page() {
  return <div>
    <span>a</span>
    <span>b</span>
  </div>;
}`)
	el := comp.Root.(*Element)
	for _, child := range el.Children {
		if text, ok := child.(*Text); ok && strings.TrimSpace(text.Value) == "" {
			t.Fatalf("whitespace-only text child survived: %q", text.Value)
		}
	}
	if len(el.Children) != 2 {
		t.Errorf("children = %d, want the two spans", len(el.Children))
	}
}

func TestLoopChild(t *testing.T) {
	comp := build(t, `component List() {
  const [items, setItems] = createSignal([]);
  return <ul>{items().map((it) => <li>{it}</li>)}</ul>;
}`)
	el := comp.Root.(*Element)
	if len(el.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(el.Children))
	}
	loop, ok := el.Children[0].(*Loop)
	if !ok {
		t.Fatalf("child is %T, want *Loop", el.Children[0])
	}
	if loop.Call == nil {
		t.Fatal("loop must keep the map call")
	}
	if !reflect.DeepEqual(loop.Dependencies, []string{"items"}) {
		t.Errorf("loop deps = %v, want [items]", loop.Dependencies)
	}
}

func TestNoRenderError(t *testing.T) {
	b, decl := componentUnit(t, "component Silent() { const x = 1; }")
	_, err := b.BuildComponent(decl.Name, decl.Params, decl.Body, decl.Span)
	var be *BuildError
	if !errors.As(err, &be) || be.Kind != ErrNoRender {
		t.Fatalf("error = %v, want ErrNoRender", err)
	}
}

func TestBadTagError(t *testing.T) {
	b := NewBuilder(nil, 0)
	_, _, err := b.BuildElement(&ast.JSXElement{})
	var be *BuildError
	if !errors.As(err, &be) || be.Kind != ErrBadTag {
		t.Fatalf("error = %v, want ErrBadTag", err)
	}
}

func TestBadPropError(t *testing.T) {
	b := NewBuilder(nil, 0)
	_, _, err := b.BuildElement(&ast.JSXElement{
		TagName:    "button",
		Attributes: []ast.JSXAttribute{{Name: "onClick"}},
	})
	var be *BuildError
	if !errors.As(err, &be) || be.Kind != ErrBadProp {
		t.Fatalf("error = %v, want ErrBadProp for a handlerless event attribute", err)
	}
}

func TestDepthGuard(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("component Deep() { return ")
	const levels = 30
	for i := 0; i < levels; i++ {
		sb.WriteString("<div>")
	}
	sb.WriteString("x")
	for i := 0; i < levels; i++ {
		sb.WriteString("</div>")
	}
	sb.WriteString("; }")

	b, decl := componentUnit(t, sb.String())
	shallow := NewBuilder(nil, 10)
	_, err := shallow.BuildComponent(decl.Name, decl.Params, decl.Body, decl.Span)
	var be *BuildError
	if !errors.As(err, &be) || be.Kind != ErrTooDeep {
		t.Fatalf("error = %v, want ErrTooDeep with a depth limit of 10", err)
	}

	if _, err := b.BuildComponent(decl.Name, decl.Params, decl.Body, decl.Span); err != nil {
		t.Fatalf("default depth must accept %d levels: %v", levels, err)
	}
}

func TestComponentTagChild(t *testing.T) {
	comp := build(t, `component App() {
  return <div><Header title="hi"/></div>;
}`)
	el := comp.Root.(*Element)
	header, ok := el.Children[0].(*Element)
	if !ok {
		t.Fatalf("child is %T, want *Element", el.Children[0])
	}
	if !header.IsComponent {
		t.Error("a PascalCase tag must lower as a component element")
	}
}

func TestElementStaticFlag(t *testing.T) {
	static := build(t, `component Card() {
  return <div class="card"><span>label</span></div>;
}`).Root.(*Element)
	if !static.IsStatic {
		t.Error("element with only literal content must be static")
	}
	if !static.Children[0].(*Element).IsStatic {
		t.Error("nested literal element must be static")
	}

	handler := build(t, `component Btn() {
  return <button onClick={() => go()}>go</button>;
}`).Root.(*Element)
	if handler.IsStatic {
		t.Error("element with a handler must not be static")
	}

	reactive := build(t, `component Label() {
  const [count, setCount] = createSignal(0);
  return <div><span>{count()}</span></div>;
}`).Root.(*Element)
	if !reactive.IsStatic {
		t.Error("nested elements wire themselves; the parent stays static")
	}
	if reactive.Children[0].(*Element).IsStatic {
		t.Error("element with a reactive text child must not be static")
	}
}
