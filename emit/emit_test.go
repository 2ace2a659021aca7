package emit

import (
	"strings"
	"testing"

	"github.com/leculver/typegen/symbols"
	"github.com/leculver/typegen/usertype"
)

type nopFactory struct{}

func (nopFactory) Resolve(mod *symbols.Module, typeName string) (usertype.UserType, bool) {
	return nil, false
}
func (nopFactory) Transform(typeName string) string { return typeName }

func TestEmitPerFileDeterministicNaming(t *testing.T) {
	a := usertype.NewPhysical(symbols.New("A", 4, symbols.TagUDT, nil, nil, nil), "NS", "A")
	b := usertype.NewPhysical(symbols.New("B", 4, symbols.TagUDT, nil, nil, nil), "NS", "B")

	e := New(nopFactory{}, 0)
	files, err := e.EmitAll([]usertype.UserType{b, a})
	if err != nil {
		t.Fatalf("EmitAll: %v", err)
	}
	if len(files) != 2 || files[0].Name != "A.g.cs" || files[1].Name != "B.g.cs" {
		t.Fatalf("expected deterministic lexicographic ordering, got %+v", files)
	}
}

func TestEmitPerFileCollisionSuffix(t *testing.T) {
	a := usertype.NewPhysical(symbols.New("Widget", 4, symbols.TagUDT, nil, nil, nil), "NS", "Widget")
	b := usertype.NewPhysical(symbols.New("widget", 4, symbols.TagUDT, nil, nil, nil), "NS2", "widget")
	// force identical ConstructorName-derived filenames, and a
	// FullClassName that sorts after a's, so the collision lands on the
	// second file without relying on race order
	b.Base().ConstructorName = "Widget"
	b.Base().FullClassName = "Widget2"

	e := New(nopFactory{}, 0)
	files, err := e.EmitAll([]usertype.UserType{a, b})
	if err != nil {
		t.Fatalf("EmitAll: %v", err)
	}
	if len(files) != 2 || files[1].Name != "Widget_1.g.cs" {
		t.Fatalf("expected collision suffix on second file, got %+v", files)
	}
}

func TestEmitSingleFileConcatenates(t *testing.T) {
	a := usertype.NewEnum(symbols.New("Color", 4, symbols.TagEnum, nil, nil, nil), "NS", "Color", []symbols.EnumValue{{Name: "Red", Value: 0}})

	e := New(nopFactory{}, usertype.FlagSingleFileExport)
	files, err := e.EmitAll([]usertype.UserType{a})
	if err != nil {
		t.Fatalf("EmitAll: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected a single concatenated file, got %d", len(files))
	}
	if !strings.Contains(files[0].Source, "Red = 0") {
		t.Fatalf("expected enum body in single-file output:\n%s", files[0].Source)
	}
}

func TestEmitSkipsTypesDeclaredInNonNamespaceAncestor(t *testing.T) {
	outer := usertype.NewPhysical(symbols.New("Outer", 8, symbols.TagUDT, nil, nil, nil), "NS", "Outer")
	inner := usertype.NewPhysical(symbols.New("Outer::Inner", 4, symbols.TagUDT, nil, nil, nil), "NS", "Inner")
	inner.Base().DeclaredIn = outer

	e := New(nopFactory{}, 0)
	files, err := e.EmitAll([]usertype.UserType{outer, inner})
	if err != nil {
		t.Fatalf("EmitAll: %v", err)
	}
	if len(files) != 1 || files[0].Name != "Outer.g.cs" {
		t.Fatalf("expected only Outer to be emitted as a root file, got %+v", files)
	}
}
