package provider

import (
	"testing"

	"github.com/leculver/typegen/symbols"
)

func TestUnimplementedOpenModuleFails(t *testing.T) {
	_, err := Unimplemented{}.OpenModule(ModuleConfig{Name: "m"})
	if err == nil {
		t.Fatal("expected Unimplemented.OpenModule to fail")
	}
	if _, ok := err.(*ModuleLoadError); !ok {
		t.Fatalf("expected a *ModuleLoadError, got %T", err)
	}
}

func TestUnimplementedWildcardAndAllTypesFail(t *testing.T) {
	if _, err := (Unimplemented{}).FindGlobalTypeWildcard(nil, "N::*"); err == nil {
		t.Fatal("expected FindGlobalTypeWildcard to fail")
	}
	if _, err := (Unimplemented{}).GetAllTypes(nil); err == nil {
		t.Fatal("expected GetAllTypes to fail")
	}
}

func TestFakeOpenModuleDerivesNameFromPathWhenNameEmpty(t *testing.T) {
	f := NewFake()
	mod, err := f.OpenModule(ModuleConfig{Path: "/native/Foo.dll"})
	if err != nil {
		t.Fatalf("OpenModule: %v", err)
	}
	if mod.Name != "Foo" {
		t.Fatalf("expected module name derived from path, got %q", mod.Name)
	}
}

func TestFakeFindGlobalTypeWildcardMatchesPrefix(t *testing.T) {
	f := NewFake().AddSymbol("m", "N::Foo", 8, symbols.TagUDT).AddSymbol("m", "N::Bar", 8, symbols.TagUDT)
	mod, _ := f.OpenModule(ModuleConfig{Name: "m"})

	got, err := f.FindGlobalTypeWildcard(mod, "N::F*")
	if err != nil {
		t.Fatalf("FindGlobalTypeWildcard: %v", err)
	}
	if len(got) != 1 || got[0].Name != "N::Foo" {
		t.Fatalf("expected only N::Foo to match, got %v", got)
	}
}

func TestFakeFindGlobalTypeWildcardExactMatch(t *testing.T) {
	f := NewFake().AddSymbol("m", "N::Foo", 8, symbols.TagUDT)
	mod, _ := f.OpenModule(ModuleConfig{Name: "m"})

	got, err := f.FindGlobalTypeWildcard(mod, "N::Foo")
	if err != nil || len(got) != 1 {
		t.Fatalf("expected an exact match, got %v, %v", got, err)
	}

	none, err := f.FindGlobalTypeWildcard(mod, "N::Fo")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no match for a non-wildcard partial pattern, got %v, %v", none, err)
	}
}

func TestFakeGetAllTypesReturnsEverySeededSymbol(t *testing.T) {
	f := NewFake().AddSymbol("m", "N::Foo", 8, symbols.TagUDT).AddSymbol("m", "N::Bar", 4, symbols.TagEnum)
	mod, _ := f.OpenModule(ModuleConfig{Name: "m"})

	got, err := f.GetAllTypes(mod)
	if err != nil || len(got) != 2 {
		t.Fatalf("expected both seeded symbols, got %v, %v", got, err)
	}
}

func TestFakeOpenModuleFailsWhenConfigured(t *testing.T) {
	boom := &testErr{"disk error"}
	f := NewFake().FailModule("m", boom)

	_, err := f.OpenModule(ModuleConfig{Name: "m"})
	if err == nil {
		t.Fatal("expected OpenModule to fail")
	}
	var loadErr *ModuleLoadError
	if le, ok := err.(*ModuleLoadError); !ok {
		t.Fatalf("expected a *ModuleLoadError, got %T", err)
	} else {
		loadErr = le
	}
	if loadErr.Unwrap() != boom {
		t.Fatal("expected Unwrap to return the underlying failure")
	}
}

func TestFakeFieldsReturnsSeededFields(t *testing.T) {
	fields := []symbols.Field{{Name: "x", TypeName: "int"}}
	f := NewFake().AddSymbolWithFields("m", "N::Foo", 8, symbols.TagUDT, fields)
	mod, _ := f.OpenModule(ModuleConfig{Name: "m"})

	syms, err := f.GetAllTypes(mod)
	if err != nil || len(syms) != 1 {
		t.Fatalf("expected one symbol, got %v, %v", syms, err)
	}

	got, err := syms[0].Fields()
	if err != nil || len(got) != 1 || got[0].Name != "x" {
		t.Fatalf("expected the seeded field to round-trip, got %v, %v", got, err)
	}
}

type testErr struct{ msg string }

func (e *testErr) Error() string { return e.msg }
