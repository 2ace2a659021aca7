package cache

import (
	"testing"

	"github.com/leculver/typegen/symbols"
)

func TestGetSymbolReturnsFirstEntryAsRepresentative(t *testing.T) {
	c := New()
	a := symbols.New("N::Foo", 8, symbols.TagUDT, nil, nil, nil)
	b := symbols.New("N::Foo", 8, symbols.TagUDT, nil, nil, nil)
	c.Update(map[string][]*symbols.Symbol{"N::Foo": {a, b}})

	got, ok := c.GetSymbol("N::Foo")
	if !ok || got != a {
		t.Fatalf("expected the first entry to be returned as representative, got %v, %v", got, ok)
	}
}

func TestGetSymbolUnknownNameMisses(t *testing.T) {
	c := New()
	if _, ok := c.GetSymbol("N::Missing"); ok {
		t.Fatal("expected an unknown name to miss")
	}
}

func TestGetGroupReturnsFullEquivalenceSet(t *testing.T) {
	c := New()
	a := symbols.New("N::Foo", 8, symbols.TagUDT, nil, nil, nil)
	b := symbols.New("N::Foo", 8, symbols.TagUDT, nil, nil, nil)
	c.Update(map[string][]*symbols.Symbol{"N::Foo": {a, b}})

	group, ok := c.GetGroup("N::Foo")
	if !ok || len(group) != 2 {
		t.Fatalf("expected both symbols in the group, got %v, %v", group, ok)
	}
}

func TestUpdateReplacesContentsAtomically(t *testing.T) {
	c := New()
	a := symbols.New("N::Foo", 8, symbols.TagUDT, nil, nil, nil)
	c.Update(map[string][]*symbols.Symbol{"N::Foo": {a}})

	b := symbols.New("N::Bar", 8, symbols.TagUDT, nil, nil, nil)
	c.Update(map[string][]*symbols.Symbol{"N::Bar": {b}})

	if _, ok := c.GetSymbol("N::Foo"); ok {
		t.Fatal("expected the prior table to have been fully replaced")
	}
	if _, ok := c.GetSymbol("N::Bar"); !ok {
		t.Fatal("expected the new table to be visible")
	}
}
