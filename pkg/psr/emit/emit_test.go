package emit

import (
	"strings"
	"testing"

	"github.com/psr-lang/psr/pkg/psr/analysis"
	"github.com/psr-lang/psr/pkg/psr/parser"
)

func emitSource(t *testing.T, src string) (string, *Emitter) {
	t.Helper()
	prog, diags := parser.Parse(src)
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags)
	}
	info, err := analysis.Collect(prog)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	e := New(src, info, Options{})
	out := e.EmitProgram(prog)
	if e.Diagnostics().HasErrors() {
		t.Fatalf("emit errors: %v", e.Diagnostics())
	}
	return out, e
}

func TestComponentDeclarationRewrite(t *testing.T) {
	out, _ := emitSource(t, `component Greeting(name: string) {
  return <span>hello</span>;
}`)
	for _, want := range []string{
		"const Greeting = (name: string): HTMLElement => {",
		"return $REGISTRY.execute('component:Greeting', () => {",
		"t_element('span'",
		"import { $REGISTRY, t_element } from '@psr/runtime';",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExportedComponentKeepsExport(t *testing.T) {
	out, _ := emitSource(t, `export component App() {
  return <div/>;
}`)
	if !strings.Contains(out, "export const App = ") {
		t.Errorf("export status must survive the rewrite:\n%s", out)
	}
}

func TestSignalWiring(t *testing.T) {
	out, _ := emitSource(t, `component Counter() {
  const [count, setCount] = createSignal(0);
  return <div>
    <button onClick={() => setCount(count() + 1)}>+</button>
    <span>{count()}</span>
  </div>;
}`)
	for _, want := range []string{
		"addEventListener('click'",
		"$REGISTRY.wire(",
		"'textContent', () => count()",
		"createSignal",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "import { $REGISTRY, createSignal, t_element } from '@psr/runtime';") {
		t.Errorf("runtime import line malformed:\n%s", out)
	}
}

func TestExistingRuntimeImportNotDuplicated(t *testing.T) {
	out, _ := emitSource(t, `import { createSignal } from '@psr/runtime';
component C() {
  const [n, setN] = createSignal(0);
  return <p>{n()}</p>;
}`)
	if n := strings.Count(out, "createSignal,"); n > 1 {
		t.Errorf("createSignal imported %d times:\n%s", n, out)
	}
	if n := strings.Count(out, "from '@psr/runtime';"); n != 1 {
		t.Errorf("runtime import lines = %d, want exactly 1:\n%s", n, out)
	}
}

func TestComponentTagBecomesCall(t *testing.T) {
	out, _ := emitSource(t, `component Panel() {
  return <div><Header title="hi"/></div>;
}`)
	if !strings.Contains(out, `Header({ title: "hi" })`) {
		t.Errorf("component tags must compile to direct calls:\n%s", out)
	}
	if strings.Contains(out, "t_element('Header'") {
		t.Errorf("a component tag must never reach t_element:\n%s", out)
	}
}

func TestNonComponentCodePassesThrough(t *testing.T) {
	src := `const limit = 10;
function add(a, b) { return a + b; }`
	out, _ := emitSource(t, src)
	if !strings.Contains(out, "const limit = 10;") {
		t.Errorf("plain statements must splice through verbatim:\n%s", out)
	}
	if strings.Contains(out, "$REGISTRY") {
		t.Errorf("no registry calls expected for plain code:\n%s", out)
	}
}

func TestDetectedFunctionGetsAnnotation(t *testing.T) {
	out, _ := emitSource(t, `function Widget() {
  const view = <section/>;
  return view;
}`)
	if !strings.Contains(out, ": HTMLElement") {
		t.Errorf("variable-return components must gain a return annotation:\n%s", out)
	}
}

func TestImportRegistryDeterminism(t *testing.T) {
	build := func() string {
		r := NewImportRegistry()
		r.AddNamed("./b", "beta", "", false)
		r.AddNamed("./a", "zeta", "", false)
		r.AddNamed("./a", "alpha", "", false)
		r.AddNamed("./a", "alpha", "", false)
		r.AddDefault("./a", "Dft")
		r.AddNamed("./types", "IUser", "", true)
		r.AddSideEffect("./setup")
		r.Runtime("t_element")
		r.Runtime("createSignal")
		return r.GenerateImportStatements()
	}
	first := build()
	second := build()
	if first != second {
		t.Fatalf("import generation must be deterministic:\n%s\n---\n%s", first, second)
	}
	lines := strings.Split(strings.TrimSpace(first), "\n")
	if !strings.Contains(lines[0], "@psr/runtime") {
		t.Errorf("runtime import must come first:\n%s", first)
	}
	if !strings.Contains(first, "import { createSignal, t_element } from '@psr/runtime';") {
		t.Errorf("runtime specifiers must be alphabetized:\n%s", first)
	}
	if !strings.Contains(first, "import Dft, { alpha, zeta } from './a';") {
		t.Errorf("default and named specifiers must merge per module:\n%s", first)
	}
	if !strings.Contains(first, "import type { IUser } from './types';") {
		t.Errorf("type-only imports must keep the type keyword:\n%s", first)
	}
	if !strings.Contains(first, "import './setup';") {
		t.Errorf("side-effect imports must survive:\n%s", first)
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	cases := []string{
		"plain",
		"it's",
		`she said "hi"`,
		"line1\nline2\ttabbed\r",
		`back\slash`,
		"",
	}
	for _, s := range cases {
		if got := Unescape(Escape(s)); got != s {
			t.Errorf("round trip of %q produced %q", s, got)
		}
	}
	if Escape("a'b") != `a\'b` {
		t.Errorf("single quotes must be escaped, got %q", Escape("a'b"))
	}
}

func TestConditionalChildGuard(t *testing.T) {
	out, _ := emitSource(t, `component Gate() {
  const [ok, setOk] = createSignal(false);
  return <div>{ok() && <span>yes</span>}</div>;
}`)
	if !strings.Contains(out, "!= null") || !strings.Contains(out, "!== false") {
		t.Errorf("falsy guard expected around conditional children:\n%s", out)
	}
}

func TestLoopChildFlattening(t *testing.T) {
	out, _ := emitSource(t, `component List() {
  const [items, setItems] = createSignal([]);
  return <ul>{items().map((it) => <li>{it}</li>)}</ul>;
}`)
	if !strings.Contains(out, "Array.isArray(") {
		t.Errorf("loop children must be array-guarded:\n%s", out)
	}
}

func TestDetectedFunctionKeepsDeclaredReturnType(t *testing.T) {
	out, _ := emitSource(t, `function Badge(): Element { return <div/>; }`)
	if !strings.Contains(out, "function Badge(): Element {") {
		t.Errorf("declared annotation must survive the rewrite:\n%s", out)
	}
	if strings.Contains(out, "HTMLElement") {
		t.Errorf("declared annotation replaced:\n%s", out)
	}
	if !strings.Contains(out, "$REGISTRY.execute('component:Badge'") {
		t.Errorf("registry wrapping missing:\n%s", out)
	}
}

func TestDetectedArrowKeepsDeclaredReturnType(t *testing.T) {
	out, _ := emitSource(t, `const Chip = (): JSX.Element => { return <span/>; };`)
	if !strings.Contains(out, "const Chip = (): JSX.Element => {") {
		t.Errorf("declared annotation must survive the rewrite:\n%s", out)
	}
	if strings.Contains(out, "HTMLElement") {
		t.Errorf("declared annotation replaced:\n%s", out)
	}
}

func TestSplicedStatementsKeepTerminators(t *testing.T) {
	out, _ := emitSource(t, `component Box() {
  const label = 'x';
  return <div/>;
}`)
	if !strings.Contains(out, "const label = 'x';") {
		t.Errorf("setup statement lost its terminator:\n%s", out)
	}
	if !strings.Contains(out, "return t_element('div', {}, []);") {
		t.Errorf("return statement lost its terminator:\n%s", out)
	}
}
