package analysis

import (
	"testing"

	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/parser"
)

func collect(t *testing.T, src string) *Info {
	t.Helper()
	prog, diags := parser.Parse(src)
	if diags.HasErrors() {
		t.Fatalf("parse errors for %q: %v", src, diags)
	}
	info, err := Collect(prog)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	return info
}

func TestSignalAccessorDiscovery(t *testing.T) {
	info := collect(t, `const [count, setCount] = createSignal(0);
const [name, setName] = signal('anon');
const [items] = createSignal([]);`)

	for _, getter := range []string{"count", "name", "items"} {
		if !info.IsSignalGetter(getter) {
			t.Errorf("%s must be a signal getter", getter)
		}
	}
	for _, setter := range []string{"setCount", "setName"} {
		if !info.IsSignalSetter(setter) {
			t.Errorf("%s must be a signal setter", setter)
		}
	}
	if info.IsSignalGetter("setCount") {
		t.Error("setCount must not be a getter")
	}

	if got := info.Table["count"].InferredType; got != "number" {
		t.Errorf("count inferred type = %q, want number", got)
	}
	if got := info.Table["name"].InferredType; got != "string" {
		t.Errorf("name inferred type = %q, want string", got)
	}
}

func TestUnrelatedDestructuringIsNotSignal(t *testing.T) {
	info := collect(t, `const [a, b] = getPair();
const [x, setX] = useState(0);`)
	for _, name := range []string{"a", "b", "x", "setX"} {
		if info.IsSignalGetter(name) || info.IsSignalSetter(name) {
			t.Errorf("%s must be a plain variable", name)
		}
		sym := info.Table[name]
		if sym == nil || sym.Kind != SymbolVariable {
			t.Errorf("%s = %+v, want a variable symbol", name, sym)
		}
	}
}

func TestComponentAndFunctionSymbols(t *testing.T) {
	info := collect(t, `component App(title: string) {
  const [n, setN] = createSignal(1);
  return <div>{title}</div>;
}
function helper(): number { return 1; }`)

	app := info.Table["App"]
	if app == nil || app.Kind != SymbolComponent {
		t.Fatalf("App = %+v, want a component symbol", app)
	}
	if app.InferredType != "HTMLElement" {
		t.Errorf("App type = %q, want HTMLElement", app.InferredType)
	}
	if fn := info.Table["helper"]; fn == nil || fn.Kind != SymbolFunction || fn.InferredType != "number" {
		t.Errorf("helper = %+v, want a function returning number", fn)
	}

	// component-local signals still land in the flat table
	if !info.IsSignalGetter("n") || !info.IsSignalSetter("setN") {
		t.Error("component-local signal accessors must be discovered")
	}
	inner := info.Global.Children[0]
	if inner.Kind != ScopeComponent {
		t.Errorf("inner scope kind = %v, want ScopeComponent", inner.Kind)
	}
	if inner.Local("title") == nil {
		t.Error("title must be declared in the component scope")
	}
	if info.Global.Local("title") != nil {
		t.Error("title must not leak into the global scope")
	}
}

func TestScopeShadowing(t *testing.T) {
	info := collect(t, `const v = 1;
function f() {
  const v = 'inner';
  return v;
}`)
	global := info.Global.Local("v")
	if global == nil || global.InferredType != "number" {
		t.Fatalf("global v = %+v, want number", global)
	}
	fnScope := info.Global.Children[0]
	inner := fnScope.Local("v")
	if inner == nil || inner.InferredType != "string" {
		t.Fatalf("inner v = %+v, want string", inner)
	}
	if fnScope.Lookup("v") != inner {
		t.Error("lookup inside the function must resolve the shadowing declaration")
	}
}

func TestImportSymbols(t *testing.T) {
	info := collect(t, `import Default, { helper, other as alias } from './lib';
helper();`)
	for _, name := range []string{"Default", "helper", "alias"} {
		sym := info.Table[name]
		if sym == nil || sym.Kind != SymbolImport {
			t.Errorf("%s = %+v, want an import symbol", name, sym)
		}
	}
	if info.Table["other"] != nil {
		t.Error("aliased imports must bind the local name only")
	}
	if !info.Table["helper"].IsUsed {
		t.Error("helper is referenced and must be marked used")
	}
	if info.Table["Default"].IsUsed {
		t.Error("Default is never referenced")
	}
}

func TestUseMarking(t *testing.T) {
	info := collect(t, `const [count, setCount] = createSignal(0);
const view = <span>{count()}</span>;`)
	if !info.Table["count"].IsUsed {
		t.Error("count is read inside JSX and must be marked used")
	}
	var _ ast.Node = info.Table["count"].Decl
}
