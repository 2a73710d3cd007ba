package symbols

import (
	"testing"

	"crosscheck/internal/core/errors"
)

func TestTableLastWriteWins(t *testing.T) {
	table := NewTable()
	table.AddDefinition("x", KindVariable, 3, ScopeModule)
	table.AddDefinition("x", KindVariable, 9, ScopeModule)

	def := table.Definitions["x"]
	if def.Line != 9 {
		t.Errorf("expected re-declaration to win with line 9, got %d", def.Line)
	}
}

func TestTableUsageOrder(t *testing.T) {
	table := NewTable()
	table.AddUsage("foo", 4)
	table.AddUsage("foo", 2)
	table.AddUsage("foo", 7)

	lines := table.Usages["foo"]
	if len(lines) != 3 || lines[0] != 4 || lines[1] != 2 || lines[2] != 7 {
		t.Errorf("usages must preserve insertion order, got %v", lines)
	}
}

func TestAddImportSatisfiesInvariant(t *testing.T) {
	table := NewTable()
	table.AddImport("List", "typing.List", 1, ScopeModule)
	table.AddFunction("get_user", 5, ScopeModule, "User | None")
	table.AddFunction("helper", 10, ScopeModule, "")

	if err := table.Validate(); err != nil {
		t.Fatalf("constructed table should validate: %v", err)
	}
	if !table.HasImport("List") {
		t.Error("expected List to be bound as import")
	}
	if !table.DefinesFunction("get_user") {
		t.Error("expected get_user to be a function definition")
	}
	if sig := table.Signatures["helper"]; sig != "" {
		t.Errorf("untyped function should carry empty signature, got %q", sig)
	}
}

func TestValidateRejectsOrphanSignature(t *testing.T) {
	table := NewTable()
	table.Signatures["ghost"] = "int"

	err := table.Validate()
	if err == nil {
		t.Fatal("expected invariant violation")
	}
	if !errors.IsCode(err, errors.CodeInvariant) {
		t.Errorf("expected INVARIANT code, got %v", err)
	}
}

func TestValidateRejectsKindMismatch(t *testing.T) {
	table := NewTable()
	table.AddDefinition("count", KindVariable, 2, ScopeModule)
	table.Signatures["count"] = "int"

	if err := table.Validate(); !errors.IsCode(err, errors.CodeInvariant) {
		t.Errorf("expected INVARIANT for non-function signature key, got %v", err)
	}

	table2 := NewTable()
	table2.AddDefinition("os", KindVariable, 1, ScopeModule)
	table2.Imports["os"] = "os"
	if err := table2.Validate(); !errors.IsCode(err, errors.CodeInvariant) {
		t.Errorf("expected INVARIANT for non-import binding key, got %v", err)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindImport:   "import",
		KindFunction: "function",
		KindClass:    "class",
		KindVariable: "variable",
	}
	for kind, expected := range cases {
		if kind.String() != expected {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, kind.String(), expected)
		}
	}
}
