package reactivity

import (
	"reflect"
	"testing"

	"github.com/psr-lang/psr/pkg/psr/analysis"
	"github.com/psr-lang/psr/pkg/psr/ast"
	"github.com/psr-lang/psr/pkg/psr/parser"
)

// signalUnit parses a unit that declares count/setCount and items/setItems
// signals plus one `const subject = <expr>;` and returns the classifier with
// the subject expression.
func signalUnit(t *testing.T, expr string) (*Classifier, ast.Expression) {
	t.Helper()
	src := `const [count, setCount] = createSignal(0);
const [items, setItems] = createSignal([]);
const plain = 5;
const subject = ` + expr + `;`
	prog, diags := parser.Parse(src)
	if diags.HasErrors() {
		t.Fatalf("parse errors for %q: %v", expr, diags)
	}
	info, err := analysis.Collect(prog)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	last := prog.Statements[len(prog.Statements)-1].(*ast.VariableDeclaration)
	return NewClassifier(info), last.Declarators[0].Init
}

func TestClassifyCategories(t *testing.T) {
	tests := []struct {
		expr     string
		category Category
		strategy Strategy
		deps     []string
	}{
		{"42", Static, StrategyLiteral, nil},
		{"'hello'", Static, StrategyLiteral, nil},
		{"plain + 1", Static, StrategyLiteral, nil},
		{"count()", Dynamic, StrategyWire, []string{"count"}},
		{"count() * 2 + items().length", Dynamic, StrategyWire, []string{"count", "items"}},
		{"count() > 0 ? 'some' : 'none'", Conditional, StrategyConditional, []string{"count"}},
		{"count() && 'positive'", Conditional, StrategyConditional, []string{"count"}},
		{"items().map((it) => <li>{it}</li>)", Loop, StrategyMap, []string{"items"}},
	}
	for _, tc := range tests {
		c, expr := signalUnit(t, tc.expr)
		cl := c.ClassifyExpression(expr)
		if cl.Category != tc.category {
			t.Errorf("%q: category = %v, want %v", tc.expr, cl.Category, tc.category)
		}
		if cl.Strategy != tc.strategy {
			t.Errorf("%q: strategy = %q, want %q", tc.expr, cl.Strategy, tc.strategy)
		}
		if !reflect.DeepEqual(cl.Dependencies, tc.deps) {
			t.Errorf("%q: deps = %v, want %v", tc.expr, cl.Dependencies, tc.deps)
		}
	}
}

func TestDependenciesAreSortedAndDeduplicated(t *testing.T) {
	c, expr := signalUnit(t, "items().length + count() + items().length")
	cl := c.ClassifyExpression(expr)
	want := []string{"count", "items"}
	if !reflect.DeepEqual(cl.Dependencies, want) {
		t.Fatalf("deps = %v, want %v", cl.Dependencies, want)
	}
}

func TestSetterCallIsNotADependency(t *testing.T) {
	c, expr := signalUnit(t, "setCount()")
	cl := c.ClassifyExpression(expr)
	if len(cl.Dependencies) != 0 {
		t.Fatalf("deps = %v, a setter read must not register", cl.Dependencies)
	}
	if cl.IsReactive() {
		t.Error("a bare setter call has no reactive reads")
	}
}

func TestEventAttributeNames(t *testing.T) {
	events := []string{"onClick", "onInput", "onKeyDown", "onDblClick"}
	for _, name := range events {
		if !IsEventAttribute(name) {
			t.Errorf("%q must be an event attribute", name)
		}
	}
	nonEvents := []string{"on", "once", "online", "class", "value", "ontop"}
	for _, name := range nonEvents {
		if IsEventAttribute(name) {
			t.Errorf("%q must not be an event attribute", name)
		}
	}
}

func TestEventAttributeClassification(t *testing.T) {
	c, expr := signalUnit(t, "() => setCount(count() + 1)")
	cl := c.ClassifyAttribute("onClick", expr)
	if cl.Category != Event || cl.Strategy != StrategyHandler {
		t.Fatalf("classification = %+v, want an event handler", cl)
	}

	// the same value under a non-event name classifies by shape
	valueCl := c.ClassifyAttribute("title", expr)
	if valueCl.Category == Event {
		t.Error("a non-event attribute must not classify as a handler")
	}
}

func TestNullability(t *testing.T) {
	tests := []struct {
		expr     string
		nullable bool
	}{
		{"count()", true},                      // unknown signal value
		{"'static text'", false},               // never reactive
		{"count() && <div/>", true},            // guard can yield false
		{"count() > 0 ? <div/> : null", true},  // explicit null branch
		{"`count: ${count()}`", false},         // template always a string
		{"'n=' + count()", true},               // right side unproven
		{"'n: ' + `${count()}`", false},        // both sides provably strings
		{"items().map((it) => <li/>)", true},   // map result shape unknown
	}
	for _, tc := range tests {
		c, expr := signalUnit(t, tc.expr)
		cl := c.ClassifyExpression(expr)
		if cl.Nullable != tc.nullable {
			t.Errorf("%q: nullable = %v, want %v", tc.expr, cl.Nullable, tc.nullable)
		}
	}
}

func TestNestedConditionalStaysDynamic(t *testing.T) {
	c, expr := signalUnit(t, "format(count() > 0 ? 'p' : 'n')")
	cl := c.ClassifyExpression(expr)
	if cl.Category != Dynamic {
		t.Fatalf("category = %v, want Dynamic: only outermost conditionals switch category", cl.Category)
	}
}

func TestComplexityCountsNodes(t *testing.T) {
	c, simple := signalUnit(t, "count()")
	simpleCl := c.ClassifyExpression(simple)
	c2, bigger := signalUnit(t, "count() + items().length * 2")
	biggerCl := c2.ClassifyExpression(bigger)
	if simpleCl.Complexity <= 0 {
		t.Fatal("complexity must be positive for a non-nil expression")
	}
	if biggerCl.Complexity <= simpleCl.Complexity {
		t.Errorf("complexity %d must exceed %d for a larger expression", biggerCl.Complexity, simpleCl.Complexity)
	}
}
