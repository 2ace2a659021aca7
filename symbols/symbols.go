// Package symbols provides a thin in-memory façade over a debug-symbol
// provider: Modules and Symbols with lazily-fetched fields and base
// classes, matching spec.md §4.2.
package symbols

import (
	"sync"

	"github.com/leculver/typegen/symbolname"
)

// Tag enumerates the kinds of native type a Symbol can represent.
type Tag int

const (
	TagUnknown Tag = iota
	TagUDT
	TagEnum
	TagBaseType
	TagPointer
	TagArray
	TagFunction
)

func (t Tag) String() string {
	switch t {
	case TagUDT:
		return "UDT"
	case TagEnum:
		return "Enum"
	case TagBaseType:
		return "BaseType"
	case TagPointer:
		return "Pointer"
	case TagArray:
		return "Array"
	case TagFunction:
		return "Function"
	default:
		return "Unknown"
	}
}

// Field is a single member field of a UDT, as reported by the provider.
// TypeName is unresolved until the pipeline's link phase looks it up
// against the GlobalCache.
type Field struct {
	Name     string
	TypeName string
	Offset   uint64
}

// BaseClass is a single base class of a UDT.
type BaseClass struct {
	TypeName string
	Offset   uint64
}

// EnumValue is a single named constant of an Enum symbol.
type EnumValue struct {
	Name  string
	Value int64
}

// FieldSource supplies the lazily-fetched attributes of a Symbol. A
// concrete SymbolProvider (see the provider package) implements this
// per-symbol lookup.
type FieldSource interface {
	Fields(handle any) ([]Field, error)
	BaseClasses(handle any) ([]BaseClass, error)
	EnumValues(handle any) ([]EnumValue, error)
}

// Module is a single opened native module (executable or library) that
// symbols were enumerated from.
type Module struct {
	ID        uint64
	Name      string
	Namespace string

	// GlobalScope is the module's synthetic global-scope symbol, the
	// container for free functions and global variables.
	GlobalScope *Symbol
}

// Symbol is a thin, immutable-after-construction view of a single native
// symbol. Fields, base classes, and enum values are computed on first
// access and cached; namespaces are derived once from Name.
type Symbol struct {
	Name string
	Size uint64
	Tag  Tag
	Mod  *Module

	// Handle is an opaque, provider-defined identity used to fetch lazy
	// attributes; it carries no meaning within this package.
	Handle any
	source FieldSource

	fieldsOnce sync.Once
	fields     []Field
	fieldsErr  error

	basesOnce sync.Once
	bases     []BaseClass
	basesErr  error

	enumOnce sync.Once
	enumVals []EnumValue
	enumErr  error

	nsOnce sync.Once
	ns     []string
}

// New constructs a Symbol backed by the given lazy field source.
func New(name string, size uint64, tag Tag, mod *Module, handle any, source FieldSource) *Symbol {
	return &Symbol{Name: name, Size: size, Tag: tag, Mod: mod, Handle: handle, source: source}
}

// Fields returns the symbol's member fields, fetching them from the
// provider on first call.
func (s *Symbol) Fields() ([]Field, error) {
	s.fieldsOnce.Do(func() {
		if s.source != nil {
			s.fields, s.fieldsErr = s.source.Fields(s.Handle)
		}
	})
	return s.fields, s.fieldsErr
}

// BaseClasses returns the symbol's base classes, fetching them from the
// provider on first call.
func (s *Symbol) BaseClasses() ([]BaseClass, error) {
	s.basesOnce.Do(func() {
		if s.source != nil {
			s.bases, s.basesErr = s.source.BaseClasses(s.Handle)
		}
	})
	return s.bases, s.basesErr
}

// EnumValues returns the symbol's enumerated constants, fetching them
// from the provider on first call. Only meaningful when Tag == TagEnum.
func (s *Symbol) EnumValues() ([]EnumValue, error) {
	s.enumOnce.Do(func() {
		if s.source != nil {
			s.enumVals, s.enumErr = s.source.EnumValues(s.Handle)
		}
	})
	return s.enumVals, s.enumErr
}

// Namespaces returns the enclosing scope path of the symbol's name,
// derived once via symbolname.Parse.
func (s *Symbol) Namespaces() []string {
	s.nsOnce.Do(func() {
		if pn, err := symbolname.Parse(s.Name); err == nil {
			s.ns = pn.Namespaces()
		}
	})
	return s.ns
}
