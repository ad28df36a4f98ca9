package ast

import "strings"

// JSXChild is implemented by nodes that may appear between JSX tags.
type JSXChild interface {
	Node
	jsxChildNode()
}

// JSXAttribute is one attribute of a JSX opening tag. Exactly one of the
// value forms applies: Value set (name={expr} / name="str"), Value nil
// (bare boolean attribute), or Spread set ({...expr}).
type JSXAttribute struct {
	Span
	Name   string
	Value  Expression
	Spread Expression
}

// JSXElement is `<tag ...>children</tag>` or `<tag ... />`. TagExpr is the
// tag as an expression (Identifier or MemberExpression for tags like
// Context.Provider); TagName is its source spelling.
type JSXElement struct {
	Span
	TagName     string
	TagExpr     Expression
	Attributes  []JSXAttribute
	Children    []JSXChild
	SelfClosing bool
}

func (*JSXElement) exprNode()     {}
func (*JSXElement) jsxChildNode() {}

// IsComponentTag reports whether the tag refers to a component rather than
// an HTML element: capitalized identifiers and member-expression tags.
func (e *JSXElement) IsComponentTag() bool {
	if strings.Contains(e.TagName, ".") {
		return true
	}
	return e.TagName != "" && e.TagName[0] >= 'A' && e.TagName[0] <= 'Z'
}

// JSXFragment is `<>children</>`.
type JSXFragment struct {
	Span
	Children []JSXChild
}

func (*JSXFragment) exprNode()     {}
func (*JSXFragment) jsxChildNode() {}

// JSXText is raw text between tags. Value has HTML entities decoded; Raw
// is the original source text.
type JSXText struct {
	Span
	Raw   string
	Value string
}

func (*JSXText) jsxChildNode() {}

// JSXExpression is an `{expr}` container in child position.
type JSXExpression struct {
	Span
	Expr Expression
}

func (*JSXExpression) jsxChildNode() {}

// entities is the HTML entity set decoded in JSX text. Decoding happens at
// parse time, not lex time, so the lexer stays byte oriented.
var entities = map[string]string{
	"&amp;":   "&",
	"&lt;":    "<",
	"&gt;":    ">",
	"&quot;":  `"`,
	"&apos;":  "'",
	"&nbsp;":  " ",
	"&copy;":  "©",
	"&mdash;": "—",
	"&ndash;": "–",
	"&hellip;": "…",
}

// DecodeEntities replaces known HTML entities in JSX text.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	for entity, repl := range entities {
		s = strings.ReplaceAll(s, entity, repl)
	}
	return s
}

// ContainsJSX reports whether any JSX element or fragment occurs in the
// subtree rooted at n.
func ContainsJSX(n Node) bool {
	found := false
	_ = Walk(n, DefaultMaxDepth, func(child Node) bool {
		switch child.(type) {
		case *JSXElement, *JSXFragment:
			found = true
			return false
		}
		return !found
	})
	return found
}
