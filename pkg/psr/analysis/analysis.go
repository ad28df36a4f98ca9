// Package analysis builds the scope tree and symbol table for a parsed
// unit and discovers signal accessor bindings. Later phases consult it for
// component detection and reactivity classification; nothing here mutates
// the AST.
package analysis

import (
	"github.com/psr-lang/psr/pkg/psr/ast"
)

// SymbolKind classifies a declared name.
type SymbolKind uint8

const (
	SymbolVariable SymbolKind = iota
	SymbolFunction
	SymbolComponent
	SymbolParam
	SymbolImport
	SymbolType
	SymbolSignalGetter
	SymbolSignalSetter
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolFunction:
		return "function"
	case SymbolComponent:
		return "component"
	case SymbolParam:
		return "param"
	case SymbolImport:
		return "import"
	case SymbolType:
		return "type"
	case SymbolSignalGetter:
		return "signal-getter"
	case SymbolSignalSetter:
		return "signal-setter"
	}
	return "unknown"
}

// Symbol is one declared name. A symbol belongs to exactly one scope.
type Symbol struct {
	Name         string
	Kind         SymbolKind
	InferredType string
	IsUsed       bool
	Decl         ast.Node
}

// ScopeKind names the construct a scope belongs to.
type ScopeKind uint8

const (
	ScopeGlobal ScopeKind = iota
	ScopeFunction
	ScopeComponent
	ScopeBlock
)

// Scope is one lexical scope. Names are unique within a scope; child
// scopes may shadow parent names.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children []*Scope
	symbols  map[string]*Symbol
}

func newScope(kind ScopeKind, parent *Scope) *Scope {
	s := &Scope{Kind: kind, Parent: parent, symbols: make(map[string]*Symbol)}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Declare adds a symbol to the scope, replacing a previous declaration of
// the same name within the same scope.
func (s *Scope) Declare(sym *Symbol) {
	s.symbols[sym.Name] = sym
}

// Lookup resolves a name through the scope chain.
func (s *Scope) Lookup(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// Local resolves a name in this scope only.
func (s *Scope) Local(name string) *Symbol {
	return s.symbols[name]
}

// Info is the analysis result for one unit.
type Info struct {
	Global *Scope
	// Table is a flat name-to-symbol map over every scope, used for quick
	// lookups where lexical position does not matter. Shadowed names keep
	// the innermost declaration.
	Table map[string]*Symbol
	// SignalConstructors are the callee names treated as signal factories.
	SignalConstructors map[string]bool
}

// DefaultSignalConstructors are the factory names recognized without
// configuration.
func DefaultSignalConstructors() map[string]bool {
	return map[string]bool{"signal": true, "createSignal": true}
}

// Collect builds scopes and symbols for the program. A tree nested past
// the walker's depth bound returns an *ast.DepthError.
func Collect(prog *ast.Program) (*Info, error) {
	info := &Info{
		Global:             newScope(ScopeGlobal, nil),
		Table:              make(map[string]*Symbol),
		SignalConstructors: DefaultSignalConstructors(),
	}
	c := &collector{info: info}
	c.statements(info.Global, prog.Statements)
	if err := c.markUses(prog); err != nil {
		return nil, err
	}
	return info, nil
}

// IsSignalGetter reports whether name is bound to a signal read accessor.
func (i *Info) IsSignalGetter(name string) bool {
	sym, ok := i.Table[name]
	return ok && sym.Kind == SymbolSignalGetter
}

// IsSignalSetter reports whether name is bound to a signal write accessor.
func (i *Info) IsSignalSetter(name string) bool {
	sym, ok := i.Table[name]
	return ok && sym.Kind == SymbolSignalSetter
}

type collector struct {
	info *Info
}

func (c *collector) declare(scope *Scope, sym *Symbol) {
	scope.Declare(sym)
	c.info.Table[sym.Name] = sym
}

func (c *collector) statements(scope *Scope, stmts []ast.Statement) {
	for _, stmt := range stmts {
		c.statement(scope, stmt)
	}
}

func (c *collector) statement(scope *Scope, stmt ast.Statement) {
	switch v := stmt.(type) {
	case *ast.ExportDeclaration:
		if v.Declaration != nil {
			c.statement(scope, v.Declaration)
		}
	case *ast.ImportDeclaration:
		if v.Default != "" {
			c.declare(scope, &Symbol{Name: v.Default, Kind: SymbolImport, Decl: v})
		}
		if v.Namespace != "" {
			c.declare(scope, &Symbol{Name: v.Namespace, Kind: SymbolImport, Decl: v})
		}
		for _, spec := range v.Named {
			c.declare(scope, &Symbol{Name: spec.Local(), Kind: SymbolImport, Decl: v})
		}
	case *ast.ComponentDeclaration:
		c.declare(scope, &Symbol{Name: v.Name, Kind: SymbolComponent, InferredType: "HTMLElement", Decl: v})
		inner := newScope(ScopeComponent, scope)
		c.params(inner, v.Params)
		c.statements(inner, v.Body.Statements)
	case *ast.FunctionDeclaration:
		kind := SymbolFunction
		typ := "function"
		if v.ReturnType != nil {
			typ = v.ReturnType.Text
		}
		c.declare(scope, &Symbol{Name: v.Name, Kind: kind, InferredType: typ, Decl: v})
		inner := newScope(ScopeFunction, scope)
		c.params(inner, v.Params)
		c.statements(inner, v.Body.Statements)
	case *ast.VariableDeclaration:
		for _, d := range v.Declarators {
			c.declarator(scope, d)
		}
	case *ast.InterfaceDeclaration:
		c.declare(scope, &Symbol{Name: v.Name, Kind: SymbolType, Decl: v})
	case *ast.TypeAliasDeclaration:
		c.declare(scope, &Symbol{Name: v.Name, Kind: SymbolType, Decl: v})
	case *ast.EnumDeclaration:
		c.declare(scope, &Symbol{Name: v.Name, Kind: SymbolType, Decl: v})
	case *ast.NamespaceDeclaration:
		c.declare(scope, &Symbol{Name: v.Name, Kind: SymbolVariable, Decl: v})
		inner := newScope(ScopeBlock, scope)
		c.statements(inner, v.Body.Statements)
	case *ast.ClassDeclaration:
		c.declare(scope, &Symbol{Name: v.Name, Kind: SymbolType, Decl: v})
	case *ast.BlockStatement:
		inner := newScope(ScopeBlock, scope)
		c.statements(inner, v.Statements)
	case *ast.IfStatement:
		c.statement(scope, v.Consequent)
		if v.Alternate != nil {
			c.statement(scope, v.Alternate)
		}
	case *ast.ForStatement:
		inner := newScope(ScopeBlock, scope)
		if v.Init != nil {
			c.statement(inner, v.Init)
		}
		c.statement(inner, v.Body)
	case *ast.ForInStatement:
		inner := newScope(ScopeBlock, scope)
		if id, ok := v.Left.(*ast.Identifier); ok {
			c.declare(inner, &Symbol{Name: id.Name, Kind: SymbolVariable, Decl: v})
		}
		c.statement(inner, v.Body)
	case *ast.WhileStatement:
		c.statement(scope, v.Body)
	case *ast.DoWhileStatement:
		c.statement(scope, v.Body)
	case *ast.SwitchStatement:
		inner := newScope(ScopeBlock, scope)
		for _, cs := range v.Cases {
			c.statements(inner, cs.Body)
		}
	case *ast.TryStatement:
		c.statement(scope, v.Block)
		if v.Catch != nil {
			inner := newScope(ScopeBlock, scope)
			if v.CatchParam != "" {
				c.declare(inner, &Symbol{Name: v.CatchParam, Kind: SymbolVariable, Decl: v})
			}
			c.statements(inner, v.Catch.Statements)
		}
		if v.Finally != nil {
			c.statement(scope, v.Finally)
		}
	case *ast.LabeledStatement:
		c.statement(scope, v.Body)
	case *ast.ExpressionStatement:
		c.expression(scope, v.Expr)
	}
}

// declarator handles one variable declarator, including the signal
// destructuring pattern `const [count, setCount] = createSignal(0)`.
func (c *collector) declarator(scope *Scope, d *ast.VariableDeclarator) {
	if pattern, ok := d.Pattern.(*ast.ArrayLiteral); ok {
		if call, ok := signalCall(d.Init, c.info.SignalConstructors); ok {
			names := patternNames(pattern)
			if len(names) > 0 {
				c.declare(scope, &Symbol{Name: names[0], Kind: SymbolSignalGetter, InferredType: inferSignalType(call), Decl: d})
			}
			if len(names) > 1 {
				c.declare(scope, &Symbol{Name: names[1], Kind: SymbolSignalSetter, InferredType: "function", Decl: d})
			}
			return
		}
	}
	if d.Name != "" {
		typ := ""
		if d.Type != nil {
			typ = d.Type.Text
		} else {
			typ = inferType(d.Init)
		}
		c.declare(scope, &Symbol{Name: d.Name, Kind: SymbolVariable, InferredType: typ, Decl: d})
	} else if pattern, ok := d.Pattern.(*ast.ArrayLiteral); ok {
		for _, name := range patternNames(pattern) {
			c.declare(scope, &Symbol{Name: name, Kind: SymbolVariable, Decl: d})
		}
	} else if obj, ok := d.Pattern.(*ast.ObjectLiteral); ok {
		for _, prop := range obj.Properties {
			if id, ok := prop.Value.(*ast.Identifier); ok {
				c.declare(scope, &Symbol{Name: id.Name, Kind: SymbolVariable, Decl: d})
			}
		}
	}
	c.expression(scope, d.Init)
}

// expression descends into function-valued expressions so their bodies get
// scopes too.
func (c *collector) expression(scope *Scope, expr ast.Expression) {
	if expr == nil {
		return
	}
	switch v := expr.(type) {
	case *ast.ArrowFunction:
		inner := newScope(ScopeFunction, scope)
		c.params(inner, v.Params)
		if block, ok := v.BodyBlock(); ok {
			c.statements(inner, block.Statements)
		}
	case *ast.FunctionExpression:
		inner := newScope(ScopeFunction, scope)
		c.params(inner, v.Params)
		c.statements(inner, v.Body.Statements)
	default:
		for _, child := range ast.Children(expr) {
			if e, ok := child.(ast.Expression); ok {
				c.expression(scope, e)
			}
		}
	}
}

func (c *collector) params(scope *Scope, params []ast.Param) {
	for i := range params {
		p := params[i]
		if p.Name != "" {
			typ := ""
			if p.Type != nil {
				typ = p.Type.Text
			}
			c.declare(scope, &Symbol{Name: p.Name, Kind: SymbolParam, InferredType: typ})
			continue
		}
		if obj, ok := p.Pattern.(*ast.ObjectLiteral); ok {
			for _, prop := range obj.Properties {
				if id, ok := prop.Value.(*ast.Identifier); ok {
					c.declare(scope, &Symbol{Name: id.Name, Kind: SymbolParam})
				}
			}
		}
	}
}

// markUses flags symbols referenced anywhere in the tree. The bounded
// walk doubles as the unit's depth check.
func (c *collector) markUses(prog *ast.Program) error {
	return ast.Walk(prog, 0, func(n ast.Node) bool {
		if id, ok := n.(*ast.Identifier); ok {
			if sym, ok := c.info.Table[id.Name]; ok {
				sym.IsUsed = true
			}
		}
		return true
	})
}

// signalCall unwraps init down to a call to a signal constructor.
func signalCall(init ast.Expression, constructors map[string]bool) (*ast.CallExpression, bool) {
	call, ok := init.(*ast.CallExpression)
	if !ok {
		return nil, false
	}
	if id, ok := call.Callee.(*ast.Identifier); ok && constructors[id.Name] {
		return call, true
	}
	return nil, false
}

func patternNames(pattern *ast.ArrayLiteral) []string {
	var names []string
	for _, el := range pattern.Elements {
		if id, ok := el.(*ast.Identifier); ok {
			names = append(names, id.Name)
		}
	}
	return names
}

func inferSignalType(call *ast.CallExpression) string {
	if len(call.Args) == 0 {
		return "unknown"
	}
	if t := inferType(call.Args[0]); t != "" {
		return t
	}
	return "unknown"
}

// inferType makes a shallow structural guess at an initializer's type.
func inferType(expr ast.Expression) string {
	switch expr.(type) {
	case *ast.NumberLiteral:
		return "number"
	case *ast.StringLiteral, *ast.TemplateLiteral:
		return "string"
	case *ast.BooleanLiteral:
		return "boolean"
	case *ast.ArrayLiteral:
		return "array"
	case *ast.ObjectLiteral:
		return "object"
	case *ast.ArrowFunction, *ast.FunctionExpression:
		return "function"
	case *ast.JSXElement, *ast.JSXFragment:
		return "HTMLElement"
	case *ast.NullLiteral:
		return "null"
	case nil:
		return ""
	}
	return ""
}
