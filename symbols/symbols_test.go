package symbols

import "testing"

type fakeSource struct {
	fields   []Field
	bases    []BaseClass
	enumVals []EnumValue
	calls    int
}

func (f *fakeSource) Fields(handle any) ([]Field, error) {
	f.calls++
	return f.fields, nil
}

func (f *fakeSource) BaseClasses(handle any) ([]BaseClass, error) {
	return f.bases, nil
}

func (f *fakeSource) EnumValues(handle any) ([]EnumValue, error) {
	return f.enumVals, nil
}

func TestFieldsFetchesLazilyAndCaches(t *testing.T) {
	src := &fakeSource{fields: []Field{{Name: "x", TypeName: "int"}}}
	sym := New("N::Foo", 4, TagUDT, nil, nil, src)

	if _, err := sym.Fields(); err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if _, err := sym.Fields(); err != nil {
		t.Fatalf("Fields: %v", err)
	}

	if src.calls != 1 {
		t.Fatalf("expected the source to be consulted exactly once, got %d calls", src.calls)
	}
}

func TestFieldsWithNilSourceReturnsEmpty(t *testing.T) {
	sym := New("N::Foo", 4, TagUDT, nil, nil, nil)
	fields, err := sym.Fields()
	if err != nil || fields != nil {
		t.Fatalf("expected a nil-source symbol to return (nil, nil), got %v, %v", fields, err)
	}
}

func TestNamespacesDerivedFromName(t *testing.T) {
	sym := New("A::B::Foo", 4, TagUDT, nil, nil, nil)
	ns := sym.Namespaces()
	if len(ns) != 2 || ns[0] != "A" || ns[1] != "B" {
		t.Fatalf("unexpected namespaces: %v", ns)
	}
}

func TestTagStringNamesEveryTag(t *testing.T) {
	cases := map[Tag]string{
		TagUnknown:  "Unknown",
		TagUDT:      "UDT",
		TagEnum:     "Enum",
		TagBaseType: "BaseType",
		TagPointer:  "Pointer",
		TagArray:    "Array",
		TagFunction: "Function",
	}
	for tag, want := range cases {
		if got := tag.String(); got != want {
			t.Fatalf("Tag(%d).String() = %q, want %q", tag, got, want)
		}
	}
}
