package ast

import (
	"errors"
	"strings"
	"testing"

	"github.com/psr-lang/psr/pkg/psr/token"
)

// nestedUnaries builds an expression of n stacked unary operators so the
// tree depth is controlled exactly without going through the parser.
func nestedUnaries(n int) Expression {
	var expr Expression = &Identifier{Name: "x"}
	for i := 0; i < n; i++ {
		expr = &UnaryExpression{Op: token.NOT, Operand: expr}
	}
	return expr
}

func TestWalkDepthBound(t *testing.T) {
	shallow := nestedUnaries(10)
	if err := Walk(shallow, 50, func(Node) bool { return true }); err != nil {
		t.Fatalf("shallow walk failed: %v", err)
	}

	deep := nestedUnaries(150)
	err := Walk(deep, 0, func(Node) bool { return true })
	if err == nil {
		t.Fatal("expected a depth error for 150 nested expressions")
	}
	var de *DepthError
	if !errors.As(err, &de) {
		t.Fatalf("error is %T, want *DepthError", err)
	}
	if de.Depth != DefaultMaxDepth {
		t.Errorf("reported depth = %d, want %d", de.Depth, DefaultMaxDepth)
	}
	if !strings.Contains(de.Error(), "nesting") {
		t.Errorf("message %q should mention nesting", de.Error())
	}
}

func TestWalkPreOrderAndPrune(t *testing.T) {
	inner := &BinaryExpression{
		Op:    token.PLUS,
		Left:  &Identifier{Name: "a"},
		Right: &Identifier{Name: "b"},
	}
	root := &ParenExpression{Expr: inner}

	var order []string
	err := Walk(root, 0, func(n Node) bool {
		switch v := n.(type) {
		case *ParenExpression:
			order = append(order, "paren")
		case *BinaryExpression:
			order = append(order, "binary")
		case *Identifier:
			order = append(order, v.Name)
		}
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"paren", "binary", "a", "b"}
	if len(order) != len(want) {
		t.Fatalf("visits = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("visits = %v, want %v", order, want)
		}
	}

	var pruned []string
	_ = Walk(root, 0, func(n Node) bool {
		switch v := n.(type) {
		case *BinaryExpression:
			pruned = append(pruned, "binary")
			return false
		case *Identifier:
			pruned = append(pruned, v.Name)
		}
		return true
	})
	for _, name := range pruned {
		if name == "a" || name == "b" {
			t.Fatalf("pruned walk still visited %q", name)
		}
	}
}

func TestBuildParentMap(t *testing.T) {
	left := &Identifier{Name: "a"}
	bin := &BinaryExpression{Op: token.PLUS, Left: left, Right: &NumberLiteral{Raw: "1"}}
	ret := &ReturnStatement{Value: bin}
	block := &BlockStatement{Statements: []Statement{ret}}

	pm := BuildParentMap(block)
	if pm[left] != Node(bin) {
		t.Errorf("parent of identifier = %T, want *BinaryExpression", pm[left])
	}
	if pm[bin] != Node(ret) {
		t.Errorf("parent of binary = %T, want *ReturnStatement", pm[bin])
	}
	if pm[block] != nil {
		t.Errorf("root must have no parent, got %T", pm[block])
	}
}

func TestChildrenSkipNil(t *testing.T) {
	cond := &ConditionalExpression{
		Test:       &Identifier{Name: "ok"},
		Consequent: &Identifier{Name: "yes"},
	}
	kids := Children(cond)
	if len(kids) != 2 {
		t.Fatalf("children = %d, want 2 with a nil alternate", len(kids))
	}
}
