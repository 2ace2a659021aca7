package usertype

import (
	"fmt"

	"github.com/leculver/typegen/symbols"
)

// PhysicalUserType is a struct/class wrapper: it emits one typed
// accessor per field and one compositional accessor per base class, in
// declaration order (spec.md §4.5).
type PhysicalUserType struct {
	base *Base

	// FieldAccessors and BaseAccessors are populated by the factory
	// during construction/link; see factory.UserTypeFactory.AddSymbol.
	FieldAccessors []FieldAccessor
	BaseAccessors  []BaseAccessor

	// Anonymous nested UDTs discovered while walking fields are inlined
	// directly into this type's body instead of becoming a separate
	// UserType.
	AnonymousNested []*PhysicalUserType
}

// FieldAccessor is one emitted field reader.
type FieldAccessor struct {
	AccessorName string
	TypeName     string
	Offset       uint64
	Resolved     UserType // nil if the type name could not be resolved
}

// BaseAccessor is one emitted base-class composition accessor.
type BaseAccessor struct {
	AccessorName string
	TypeName     string
	Offset       uint64
	Resolved     UserType
}

// NewPhysical constructs a PhysicalUserType for sym.
func NewPhysical(sym *symbols.Symbol, namespace, ctorName string) *PhysicalUserType {
	p := &PhysicalUserType{base: NewBase(KindPhysical, sym, namespace, "System")}
	p.base.ConstructorName = ctorName
	p.base.FullClassName = ctorName
	return p
}

// Base implements UserType.
func (p *PhysicalUserType) Base() *Base { return p.base }

// WriteType implements UserType.
func (p *PhysicalUserType) WriteType(f Factory) string { return p.base.ConstructorName }

// WriteCode implements UserType.
func (p *PhysicalUserType) WriteCode(w Writer, f Factory, flags Flags) error {
	w.WriteLine(fmt.Sprintf("public sealed class %s", p.base.ConstructorName))
	w.WriteLine("{")
	w.Indent()
	w.WriteLine("readonly ulong _address;")
	w.WriteLine(fmt.Sprintf("public %s(ulong address) { _address = address; }", p.base.ConstructorName))

	for _, ba := range p.BaseAccessors {
		typeName := ba.TypeName
		if ba.Resolved != nil {
			typeName = ba.Resolved.WriteType(f)
		}
		w.WriteLine(fmt.Sprintf("public %s %s => new %s(_address + %d);", typeName, ba.AccessorName, typeName, ba.Offset))
	}

	for _, fa := range p.FieldAccessors {
		typeName := f.Transform(fa.TypeName)
		if fa.Resolved != nil {
			typeName = fa.Resolved.WriteType(f)
		}
		w.WriteLine(fmt.Sprintf("public %s %s => Memory.Read<%s>(_address + %d);", typeName, fa.AccessorName, typeName, fa.Offset))
	}

	for _, nested := range p.AnonymousNested {
		if err := nested.WriteCode(w, f, flags); err != nil {
			return err
		}
	}

	w.Dedent()
	w.WriteLine("}")
	return nil
}
