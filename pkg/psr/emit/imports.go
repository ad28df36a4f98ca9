package emit

import (
	"fmt"
	"sort"
	"strings"
)

// RuntimeModule is the fixed module path every compiled file imports its
// runtime symbols from.
const RuntimeModule = "@psr/runtime"

// ImportRegistry accumulates every import a compiled file needs: the
// imports present in the source plus runtime symbols referenced during
// emission. Specifiers are deduplicated per module, split into value and
// type groups, and serialized in a stable order.
type ImportRegistry struct {
	modules map[string]*moduleImports
}

type moduleImports struct {
	defaultName string
	namespace   string
	values      map[string]string // specifier -> alias ("" when none)
	types       map[string]string
	sideEffect  bool
}

func NewImportRegistry() *ImportRegistry {
	return &ImportRegistry{modules: map[string]*moduleImports{}}
}

func (r *ImportRegistry) module(path string) *moduleImports {
	m, ok := r.modules[path]
	if !ok {
		m = &moduleImports{values: map[string]string{}, types: map[string]string{}}
		r.modules[path] = m
	}
	return m
}

// AddNamed records a named specifier. Re-adding the same module/specifier
// pair is a no-op.
func (r *ImportRegistry) AddNamed(path, name, alias string, typeOnly bool) {
	m := r.module(path)
	if typeOnly {
		m.types[name] = alias
		return
	}
	m.values[name] = alias
}

func (r *ImportRegistry) AddDefault(path, name string) {
	r.module(path).defaultName = name
}

func (r *ImportRegistry) AddNamespace(path, name string) {
	r.module(path).namespace = name
}

func (r *ImportRegistry) AddSideEffect(path string) {
	r.module(path).sideEffect = true
}

// Runtime records a runtime symbol such as $REGISTRY or t_element.
func (r *ImportRegistry) Runtime(symbol string) {
	r.AddNamed(RuntimeModule, symbol, "", false)
}

// GenerateImportStatements serializes the registry. Output is
// deterministic: modules sorted by path with the runtime module first,
// value imports before type imports, specifiers alphabetized. Running it
// twice on the same state yields byte-identical text.
func (r *ImportRegistry) GenerateImportStatements() string {
	paths := make([]string, 0, len(r.modules))
	for path := range r.modules {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		if (paths[i] == RuntimeModule) != (paths[j] == RuntimeModule) {
			return paths[i] == RuntimeModule
		}
		return paths[i] < paths[j]
	})

	var b strings.Builder
	for _, path := range paths {
		m := r.modules[path]
		wrote := false
		if line := importLine(m, path, false); line != "" {
			b.WriteString(line)
			b.WriteByte('\n')
			wrote = true
		}
		if line := importLine(m, path, true); line != "" {
			b.WriteString(line)
			b.WriteByte('\n')
			wrote = true
		}
		if !wrote && m.sideEffect {
			fmt.Fprintf(&b, "import %s;\n", quote(path))
		}
	}
	return b.String()
}

func importLine(m *moduleImports, path string, typeOnly bool) string {
	set := m.values
	if typeOnly {
		set = m.types
	}
	var clauses []string
	if !typeOnly {
		if m.defaultName != "" {
			clauses = append(clauses, m.defaultName)
		}
		if m.namespace != "" {
			clauses = append(clauses, "* as "+m.namespace)
		}
	}
	if len(set) > 0 {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			if alias := set[name]; alias != "" {
				parts[i] = name + " as " + alias
			} else {
				parts[i] = name
			}
		}
		clauses = append(clauses, "{ "+strings.Join(parts, ", ")+" }")
	}
	if len(clauses) == 0 {
		return ""
	}
	kw := "import"
	if typeOnly {
		kw = "import type"
	}
	return fmt.Sprintf("%s %s from %s;", kw, strings.Join(clauses, ", "), quote(path))
}
