package detect

import (
	"testing"

	"github.com/psr-lang/psr/pkg/psr/analysis"
	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/parser"
)

// unit parses src and returns a detector plus the parsed program with its
// parent map, ready to build candidates from.
func unit(t *testing.T, src string) (*Detector, *ast.Program, ast.ParentMap) {
	t.Helper()
	prog, diags := parser.Parse(src)
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags)
	}
	info, err := analysis.Collect(prog)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	return New(info), prog, ast.BuildParentMap(prog)
}

func namedFunction(t *testing.T, prog *ast.Program, name string) *ast.FunctionDeclaration {
	t.Helper()
	var found *ast.FunctionDeclaration
	_ = ast.Walk(prog, 0, func(n ast.Node) bool {
		if fn, ok := n.(*ast.FunctionDeclaration); ok && fn.Name == name {
			found = fn
		}
		return true
	})
	if found == nil {
		t.Fatalf("no function declaration named %q", name)
	}
	return found
}

func firstArrow(t *testing.T, prog *ast.Program) *ast.ArrowFunction {
	t.Helper()
	var found *ast.ArrowFunction
	_ = ast.Walk(prog, 0, func(n ast.Node) bool {
		if arrow, ok := n.(*ast.ArrowFunction); ok && found == nil {
			found = arrow
		}
		return true
	})
	if found == nil {
		t.Fatal("no arrow function in source")
	}
	return found
}

func TestDirectJsxReturnWinsOverPascalCase(t *testing.T) {
	d, prog, pm := unit(t, "function Card() { return <div/>; }")
	res := d.Detect(Candidate{Node: namedFunction(t, prog, "Card"), Name: "Card", Parents: pm})
	if !res.IsComponent {
		t.Fatal("Card must be a component")
	}
	if res.Strategy != "DirectJsxReturn" {
		t.Errorf("strategy = %q, want DirectJsxReturn", res.Strategy)
	}
	if res.Confidence != High {
		t.Errorf("confidence = %v, want High", res.Confidence)
	}
}

func TestAnonymousCallbackSuppression(t *testing.T) {
	d, prog, pm := unit(t, "items.forEach(() => <Item/>);")
	arrow := firstArrow(t, prog)
	res := d.Detect(Candidate{Node: arrow, Parents: pm})
	if res.IsComponent {
		t.Fatal("a callback argument must never be a component, even returning JSX")
	}
	if res.Strategy != "AnonymousCallback" {
		t.Errorf("strategy = %q, want AnonymousCallback", res.Strategy)
	}
}

func TestExplicitReturnType(t *testing.T) {
	d, prog, pm := unit(t, "function make(): HTMLElement { return build(); }")
	res := d.Detect(Candidate{Node: namedFunction(t, prog, "make"), Name: "make", Parents: pm})
	if !res.IsComponent || res.Strategy != "ReturnType" || res.Confidence != High {
		t.Fatalf("result = %+v, want a High ReturnType match", res)
	}

	d2, prog2, pm2 := unit(t, "function pick(): string { return s; }")
	res2 := d2.Detect(Candidate{Node: namedFunction(t, prog2, "pick"), Name: "pick", Parents: pm2})
	if res2.IsComponent {
		t.Error("a string return type must not match")
	}
}

func TestNullableElementReturnType(t *testing.T) {
	d, prog, pm := unit(t, "function maybe(): HTMLElement | null { return build(); }")
	res := d.Detect(Candidate{Node: namedFunction(t, prog, "maybe"), Name: "maybe", Parents: pm})
	if !res.IsComponent || res.Strategy != "ReturnType" {
		t.Fatalf("result = %+v, want a ReturnType match on the nullable variant", res)
	}
}

func TestVariableJsxReturnAutoAnnotates(t *testing.T) {
	d, prog, pm := unit(t, "function panel() { const view = <div/>; return view; }")
	fn := namedFunction(t, prog, "panel")
	res := d.Detect(Candidate{Node: fn, Name: "panel", Parents: pm})
	if !res.IsComponent || res.Strategy != "VariableJsxReturn" {
		t.Fatalf("result = %+v, want a VariableJsxReturn match", res)
	}
	if fn.ReturnType == nil || fn.ReturnType.Text != "HTMLElement" {
		t.Fatalf("return type = %+v, want a synthesized HTMLElement annotation", fn.ReturnType)
	}
	if fn.ReturnType.Pos().Line != 0 {
		t.Error("a synthesized annotation must carry a zero position")
	}

	// a second pass sees the annotation and must not disturb it
	ann := fn.ReturnType
	res2 := d.Detect(Candidate{Node: fn, Name: "panel", Parents: pm})
	if !res2.IsComponent {
		t.Fatal("still a component on the second pass")
	}
	if fn.ReturnType != ann {
		t.Error("annotation must survive repeated detection unchanged")
	}
	if d.Diagnostics().HasErrors() {
		t.Errorf("unexpected diagnostics: %v", d.Diagnostics())
	}
}

func TestExistingAnnotationMismatchWarns(t *testing.T) {
	d, prog, pm := unit(t, "function odd(): string { const view = <div/>; return view; }")
	fn := namedFunction(t, prog, "odd")
	res := d.Detect(Candidate{Node: fn, Name: "odd", Parents: pm})
	if !res.IsComponent || res.Strategy != "VariableJsxReturn" {
		t.Fatalf("result = %+v, want a VariableJsxReturn match", res)
	}
	if fn.ReturnType.Text != "string" {
		t.Errorf("existing annotation was replaced: %q", fn.ReturnType.Text)
	}
	if len(d.Diagnostics()) != 1 {
		t.Fatalf("diagnostics = %v, want one mismatch warning", d.Diagnostics())
	}
}

func TestConditionalJsxReturn(t *testing.T) {
	d, prog, pm := unit(t, "function gate(ok) { return ok ? <div/> : null; }")
	res := d.Detect(Candidate{Node: namedFunction(t, prog, "gate"), Name: "gate", Parents: pm})
	if !res.IsComponent || res.Strategy != "ConditionalJsxReturn" {
		t.Fatalf("result = %+v, want a ConditionalJsxReturn match", res)
	}
}

func TestPascalCaseFallback(t *testing.T) {
	d, prog, pm := unit(t, "function Card(props) { return helper(props); }")
	res := d.Detect(Candidate{Node: namedFunction(t, prog, "Card"), Name: "Card", Parents: pm})
	if !res.IsComponent || res.Strategy != "PascalCase" {
		t.Fatalf("result = %+v, want a PascalCase match", res)
	}
	if res.Confidence != Medium {
		t.Errorf("confidence = %v, want Medium", res.Confidence)
	}
}

func TestJsxInBodyIsLowConfidence(t *testing.T) {
	d, prog, pm := unit(t, "function mount(target) { const x = <div/>; target.append(x); }")
	res := d.Detect(Candidate{Node: namedFunction(t, prog, "mount"), Name: "mount", Parents: pm})
	if !res.IsComponent || res.Strategy != "HasJsxInBody" {
		t.Fatalf("result = %+v, want a HasJsxInBody match", res)
	}
	if res.Confidence != Low {
		t.Errorf("confidence = %v, want Low", res.Confidence)
	}
}

func TestPlainHelperIsNotAComponent(t *testing.T) {
	d, prog, pm := unit(t, "function add(a, b) { return a + b; }")
	res := d.Detect(Candidate{Node: namedFunction(t, prog, "add"), Name: "add", Parents: pm})
	if res.IsComponent {
		t.Fatalf("result = %+v, want no match", res)
	}
}

func TestNestedReturnsAreNotOwned(t *testing.T) {
	d, prog, pm := unit(t, `function outer() {
  const make = () => { return <div/>; };
  return make();
}`)
	res := d.Detect(Candidate{Node: namedFunction(t, prog, "outer"), Name: "outer", Parents: pm})
	if res.Strategy == "DirectJsxReturn" {
		t.Error("a nested function's JSX return must not count as the outer function's")
	}
}
