package psr

import (
	"strings"
	"testing"
)

const counterSource = `component Counter() {
  const [count, setCount] = createSignal(0);
  return <div>
    <button onClick={() => setCount(count() + 1)}>increment</button>
    <span>{count()}</span>
  </div>;
}`

func TestTransformCounter(t *testing.T) {
	res := Transform(counterSource)
	if !res.Ok() {
		t.Fatalf("diagnostics: %v", res.Diagnostics)
	}
	for _, want := range []string{
		"const Counter = (): HTMLElement => {",
		"$REGISTRY.execute('component:Counter', () => {",
		"t_element('div'",
		"addEventListener('click'",
		"'textContent', () => count()",
	} {
		if !strings.Contains(res.Code, want) {
			t.Errorf("output missing %q:\n%s", want, res.Code)
		}
	}
	if n := strings.Count(res.Code, "from '@psr/runtime';"); n != 1 {
		t.Errorf("runtime import lines = %d, want 1:\n%s", n, res.Code)
	}
	if res.Metrics.Components != 1 || len(res.Components) != 1 {
		t.Fatalf("components = %d, want 1", len(res.Components))
	}
	comp := res.Components[0]
	if comp.RegistryKey() != "component:Counter" {
		t.Errorf("registry key = %q", comp.RegistryKey())
	}
	if !comp.UsesSignals {
		t.Error("Counter creates a signal and must report it")
	}
}

func TestTransformGreeting(t *testing.T) {
	res := Transform(`export component Greeting(name: string) {
  return <p class="greeting">Hello {name}!</p>;
}`)
	if !res.Ok() {
		t.Fatalf("diagnostics: %v", res.Diagnostics)
	}
	if !strings.Contains(res.Code, "export const Greeting = (name: string): HTMLElement => {") {
		t.Errorf("header malformed:\n%s", res.Code)
	}
	if !strings.Contains(res.Code, "name") {
		t.Errorf("the interpolated parameter must appear in the children:\n%s", res.Code)
	}
	comp := res.Components[0]
	if comp.UsesSignals {
		t.Error("Greeting reads no signals")
	}
}

func TestTransformParseFailure(t *testing.T) {
	res := Transform("component Broken() { return <div></span>; }")
	if res.Ok() {
		t.Fatal("mismatched tags must fail the unit")
	}
	if res.Code != "" {
		t.Errorf("failed transforms must produce no code, got:\n%s", res.Code)
	}
}

func TestTransformLexFailure(t *testing.T) {
	res := Transform("const s = 'unterminated")
	if res.Ok() || res.Code != "" {
		t.Fatalf("unterminated string must fail with empty output, got %+v", res)
	}
}

func TestTransformPlainTypeScript(t *testing.T) {
	src := `export function add(a: number, b: number): number {
  return a + b;
}`
	res := Transform(src)
	if !res.Ok() {
		t.Fatalf("diagnostics: %v", res.Diagnostics)
	}
	if strings.Contains(res.Code, "$REGISTRY") {
		t.Errorf("plain TypeScript must not touch the registry:\n%s", res.Code)
	}
	if !strings.Contains(res.Code, "return a + b;") {
		t.Errorf("body must pass through verbatim:\n%s", res.Code)
	}
	if res.Metrics.Components != 0 {
		t.Errorf("components = %d, want 0", res.Metrics.Components)
	}
}

func TestTransformIdempotentImports(t *testing.T) {
	first := Transform(counterSource)
	second := Transform(counterSource)
	if first.Code != second.Code {
		t.Fatal("transform must be deterministic")
	}
}

func TestTransformOptions(t *testing.T) {
	res := Transform(counterSource, WithIndent("    "))
	if !res.Ok() {
		t.Fatalf("diagnostics: %v", res.Diagnostics)
	}
	if !strings.Contains(res.Code, "    return $REGISTRY.execute(") {
		t.Errorf("indent option must widen the body indent:\n%s", res.Code)
	}

	dbg := Transform(counterSource, WithDebug())
	if len(dbg.Diagnostics) == 0 {
		t.Error("debug mode must add phase diagnostics")
	}

	strict := Transform("const a = ;\nconst b = ;", WithStrict())
	if strict.Ok() {
		t.Fatal("strict mode must fail the unit")
	}
}

func BenchmarkTransformCounter(b *testing.B) {
	for i := 0; i < b.N; i++ {
		res := Transform(counterSource)
		if !res.Ok() {
			b.Fatalf("diagnostics: %v", res.Diagnostics)
		}
	}
}

func TestTransformMetrics(t *testing.T) {
	res := Transform(counterSource)
	if res.Metrics.Tokens == 0 {
		t.Error("token count missing")
	}
	if res.Metrics.Statements != 1 {
		t.Errorf("statements = %d, want 1", res.Metrics.Statements)
	}
	if res.Metrics.Duration <= 0 {
		t.Error("duration missing")
	}
}

func TestTransformDeepNesting(t *testing.T) {
	var b strings.Builder
	b.WriteString("component Deep() {\n")
	b.WriteString("let level = 0;\n")
	for i := 0; i < 150; i++ {
		b.WriteString("if (level >= 0) {\n")
	}
	b.WriteString("level = 1;\n")
	for i := 0; i < 150; i++ {
		b.WriteString("}\n")
	}
	b.WriteString("return <div/>;\n}\n")

	res := Transform(b.String())
	if res.Ok() {
		t.Fatal("deeply nested unit must fail")
	}
	if res.Code != "" {
		t.Errorf("code must be empty on failure, got %q", res.Code)
	}
	var found bool
	for _, d := range res.Diagnostics.Errors() {
		if strings.Contains(d.Message, "nesting") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a nesting depth error, got %v", res.Diagnostics)
	}
}
