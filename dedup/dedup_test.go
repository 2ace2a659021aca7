package dedup

import (
	"testing"

	"github.com/leculver/typegen/symbols"
)

func TestSameNameSameSize(t *testing.T) {
	m1 := &symbols.Module{Name: "M1", Namespace: "M1NS"}
	m2 := &symbols.Module{Name: "M2", Namespace: "M2NS"}

	foo1 := symbols.New("Foo", 4, symbols.TagUDT, m1, nil, nil)
	foo2 := symbols.New("Foo", 4, symbols.TagUDT, m2, nil, nil)

	res := Deduplicate(Config{CommonNamespace: "Common"}, []*symbols.Symbol{foo1, foo2})

	groups := res.GroupsByName["Foo"]
	if len(groups) != 1 {
		t.Fatalf("expected a single group, got %d", len(groups))
	}
	if groups[0].Representative != foo1 {
		t.Fatalf("expected foo1 to remain representative (insertion order)")
	}
	if len(groups[0].Duplicates) != 1 || groups[0].Duplicates[0] != foo2 {
		t.Fatalf("expected foo2 to be a duplicate of foo1")
	}

	if res.Namespaces[foo1] != "Common" || res.Namespaces[foo2] != "Common" {
		t.Fatalf("expected both symbols in the common namespace")
	}
}

func TestSameNameDifferentSize(t *testing.T) {
	m1 := &symbols.Module{Name: "M1", Namespace: "M1NS"}
	m2 := &symbols.Module{Name: "M2", Namespace: "M2NS"}

	foo1 := symbols.New("Foo", 4, symbols.TagUDT, m1, nil, nil)
	foo2 := symbols.New("Foo", 8, symbols.TagUDT, m2, nil, nil)

	res := Deduplicate(Config{CommonNamespace: "Common"}, []*symbols.Symbol{foo1, foo2})

	groups := res.GroupsByName["Foo"]
	if len(groups) != 2 {
		t.Fatalf("expected two independent groups, got %d", len(groups))
	}

	if res.Namespaces[foo1] != "M1NS" {
		t.Fatalf("expected foo1 in its own module namespace, got %s", res.Namespaces[foo1])
	}
	if res.Namespaces[foo2] != "M2NS" {
		t.Fatalf("expected foo2 in its own module namespace, got %s", res.Namespaces[foo2])
	}
}

func TestForwardDeclPromotedBySizedDefinition(t *testing.T) {
	m1 := &symbols.Module{Name: "M1", Namespace: "M1NS"}
	m2 := &symbols.Module{Name: "M2", Namespace: "M2NS"}

	fwd := symbols.New("Bar", 0, symbols.TagUDT, m1, nil, nil)
	def := symbols.New("Bar", 16, symbols.TagUDT, m2, nil, nil)

	res := Deduplicate(Config{CommonNamespace: "Common"}, []*symbols.Symbol{fwd, def})

	groups := res.GroupsByName["Bar"]
	if len(groups) != 1 {
		t.Fatalf("expected a single group, got %d", len(groups))
	}
	if groups[0].Representative != def {
		t.Fatalf("expected the sized definition to become the representative")
	}
	if len(groups[0].Duplicates) != 1 || groups[0].Duplicates[0] != fwd {
		t.Fatalf("expected the forward declaration to survive as a duplicate")
	}

	if res.Namespaces[def] != "Common" || res.Namespaces[fwd] != "Common" {
		t.Fatalf("expected both symbols in the common namespace")
	}
}

func TestPromotionPreservesPriorDuplicates(t *testing.T) {
	// Open question (b): a size-0 entry that already has duplicates must
	// not lose them when it is displaced by a sized definition.
	m1 := &symbols.Module{Name: "M1", Namespace: "M1NS"}
	m2 := &symbols.Module{Name: "M2", Namespace: "M2NS"}
	m3 := &symbols.Module{Name: "M3", Namespace: "M3NS"}

	fwd1 := symbols.New("Bar", 0, symbols.TagUDT, m1, nil, nil)
	fwd2 := symbols.New("Bar", 0, symbols.TagUDT, m2, nil, nil)
	def := symbols.New("Bar", 16, symbols.TagUDT, m3, nil, nil)

	res := Deduplicate(Config{CommonNamespace: "Common"}, []*symbols.Symbol{fwd1, fwd2, def})

	groups := res.GroupsByName["Bar"]
	if len(groups) != 1 {
		t.Fatalf("expected a single group, got %d", len(groups))
	}
	if groups[0].Representative != def {
		t.Fatalf("expected def to become the representative")
	}
	if len(groups[0].Duplicates) != 2 {
		t.Fatalf("expected both forward declarations to survive as duplicates, got %d", len(groups[0].Duplicates))
	}
}
