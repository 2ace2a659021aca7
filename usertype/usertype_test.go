package usertype

import (
	"strings"
	"testing"

	"github.com/leculver/typegen/symbols"
)

type bufWriter struct {
	lines  []string
	indent int
}

func (b *bufWriter) WriteLine(s string) {
	b.lines = append(b.lines, strings.Repeat("\t", b.indent)+s)
}
func (b *bufWriter) Indent() { b.indent++ }
func (b *bufWriter) Dedent() { b.indent-- }

type nopFactory struct{}

func (nopFactory) Resolve(mod *symbols.Module, typeName string) (UserType, bool) { return nil, false }
func (nopFactory) Transform(typeName string) string                             { return typeName }

func TestEnumWriteCode(t *testing.T) {
	sym := symbols.New("Color", 4, symbols.TagEnum, nil, nil, nil)
	e := NewEnum(sym, "NS", "Color", []symbols.EnumValue{{Name: "Red", Value: 0}, {Name: "Blue", Value: 1}})

	var w bufWriter
	if err := e.WriteCode(&w, nopFactory{}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(w.lines, "\n")
	if !strings.Contains(joined, "Red = 0") || !strings.Contains(joined, "Blue = 1") {
		t.Fatalf("expected enum members in output:\n%s", joined)
	}
}

func TestNamespaceSkippedWhenEmpty(t *testing.T) {
	ns := NewNamespace("Empty", nil)
	var w bufWriter
	if err := ns.WriteCode(&w, nopFactory{}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.lines) != 0 {
		t.Fatalf("expected no output for an empty namespace, got %v", w.lines)
	}
}

func TestNamespaceEmitsChildren(t *testing.T) {
	ns := NewNamespace("Outer", nil)
	sym := symbols.New("Foo", 4, symbols.TagUDT, nil, nil, nil)
	phys := NewPhysical(sym, "Outer", "Foo")
	ns.AddChild(phys)

	var w bufWriter
	if err := ns.WriteCode(&w, nopFactory{}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(w.lines, "\n")
	if !strings.Contains(joined, "namespace Outer") || !strings.Contains(joined, "class Foo") {
		t.Fatalf("expected namespace wrapping Foo in output:\n%s", joined)
	}

	if phys.Base().DeclaredIn != ns {
		t.Fatalf("expected AddChild to set DeclaredIn")
	}
}

func TestTemplateArgumentWriteTypeYieldsPlaceholder(t *testing.T) {
	arg := NewTemplateArgument("T1")
	if got := arg.WriteType(nopFactory{}); got != "T1" {
		t.Fatalf("expected placeholder T1, got %s", got)
	}
}

func TestTemplateSpecializationArityMatchesPrimary(t *testing.T) {
	primary := NewTemplatePrimary("NS", "Vec<>", "Vec", 1)
	sym := symbols.New("Vec<int>", 8, symbols.TagUDT, nil, nil, nil)
	spec := NewTemplateSpecialization(primary, sym, "Vec", []string{"int"})
	primary.SpecializedTypes = append(primary.SpecializedTypes, spec)

	if len(spec.TemplateArguments) != len(primary.TemplateArguments) {
		t.Fatalf("expected specialization arity to match primary")
	}
}
