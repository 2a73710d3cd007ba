package symbols

import (
	"fmt"

	"crosscheck/internal/core/errors"
)

// ScopeModule is the logical scope identifier for top-level declarations.
const ScopeModule = "module"

type Kind int

const (
	KindImport Kind = iota
	KindFunction
	KindClass
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindImport:
		return "import"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindVariable:
		return "variable"
	}
	return "unknown"
}

type Definition struct {
	Kind  Kind
	Line  int
	Scope string
}

// Table is the structural index for one file version: what a change set
// defines, reads, calls, imports, and annotates. One Table is built per
// task per version and never shared across tasks.
type Table struct {
	// Definitions maps symbol name to its latest declaration. Re-declaration
	// within one parse overwrites (last write wins).
	Definitions map[string]Definition
	// Usages maps symbol name to the source-ordered lines where the name is
	// read as a value, excluding its own declaration site.
	Usages map[string][]int
	// Calls maps callee name to source-ordered call-site lines.
	Calls map[string][]int
	// Signatures maps function name to its declared return-type annotation.
	// Every defined function has an entry; untyped functions carry "".
	Signatures map[string]string
	// Imports maps the locally bound name to the originating module path.
	Imports map[string]string
}

func NewTable() *Table {
	return &Table{
		Definitions: make(map[string]Definition),
		Usages:      make(map[string][]int),
		Calls:       make(map[string][]int),
		Signatures:  make(map[string]string),
		Imports:     make(map[string]string),
	}
}

func (t *Table) AddDefinition(name string, kind Kind, line int, scope string) {
	if name == "" {
		return
	}
	t.Definitions[name] = Definition{Kind: kind, Line: line, Scope: scope}
}

func (t *Table) AddUsage(name string, line int) {
	if name == "" {
		return
	}
	t.Usages[name] = append(t.Usages[name], line)
}

func (t *Table) AddCall(name string, line int) {
	if name == "" {
		return
	}
	t.Calls[name] = append(t.Calls[name], line)
}

// AddImport records an import binding together with its definition so the
// Imports/Definitions invariant holds by construction.
func (t *Table) AddImport(name, module string, line int, scope string) {
	if name == "" {
		return
	}
	t.Imports[name] = module
	t.AddDefinition(name, KindImport, line, scope)
}

// AddFunction records a function definition together with its signature
// entry. returnType is the raw annotation text; "" means untyped.
func (t *Table) AddFunction(name string, line int, scope, returnType string) {
	if name == "" {
		return
	}
	t.AddDefinition(name, KindFunction, line, scope)
	t.Signatures[name] = returnType
}

// HasImport reports whether the table binds name via an import.
func (t *Table) HasImport(name string) bool {
	_, ok := t.Imports[name]
	return ok
}

// DefinesFunction reports whether the table defines a function of that name.
func (t *Table) DefinesFunction(name string) bool {
	def, ok := t.Definitions[name]
	return ok && def.Kind == KindFunction
}

// Validate enforces the cross-map invariants: every signature key must be a
// defined function and every import key a defined import binding. A failure
// is an internal defect, reported with the INVARIANT code.
func (t *Table) Validate() error {
	for name := range t.Signatures {
		def, ok := t.Definitions[name]
		if !ok {
			return errors.AddContext(errors.New(errors.CodeInvariant,
				fmt.Sprintf("signature entry %q has no definition", name)), errors.CtxSymbol, name)
		}
		if def.Kind != KindFunction {
			return errors.AddContext(errors.New(errors.CodeInvariant,
				fmt.Sprintf("signature entry %q is defined as %s, not function", name, def.Kind)), errors.CtxSymbol, name)
		}
	}
	for name := range t.Imports {
		def, ok := t.Definitions[name]
		if !ok {
			return errors.AddContext(errors.New(errors.CodeInvariant,
				fmt.Sprintf("import binding %q has no definition", name)), errors.CtxSymbol, name)
		}
		if def.Kind != KindImport {
			return errors.AddContext(errors.New(errors.CodeInvariant,
				fmt.Sprintf("import binding %q is defined as %s, not import", name, def.Kind)), errors.CtxSymbol, name)
		}
	}
	return nil
}
