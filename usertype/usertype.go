// Package usertype implements the UserType hierarchy of spec.md §4.5: the
// variant of {Physical, Enum, Template, TemplateArgument, Namespace,
// Global} wrapper descriptors that the pipeline emits as generated
// source.
package usertype

import (
	"strings"
	"unicode"

	"github.com/leculver/typegen/symbols"
)

// Kind enumerates the UserType variants.
type Kind int

const (
	KindPhysical Kind = iota
	KindEnum
	KindTemplate
	KindTemplateArgument
	KindNamespace
	KindGlobal
)

// Flags mirrors the configuration record's generationFlags bitset
// (spec.md §6).
type Flags uint32

const (
	FlagSingleFileExport Flags = 1 << iota
	FlagCompressedOutput
)

// Has reports whether flag is set.
func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Writer is the external IndentedWriter sink consumed during WriteCode
// (spec.md §6); it is defined here as a narrow interface so usertype has
// no dependency on the emit package's concrete buffer implementation.
type Writer interface {
	WriteLine(s string)
	Indent()
	Dedent()
}

// Factory is the narrow view of the factory package's UserTypeFactory
// that a UserType needs while writing its own body: resolving a
// referenced type name to another UserType and applying configured
// textual transformations. Defined here (rather than imported from
// factory) to avoid an import cycle, since factory.UserTypeFactory
// constructs and holds UserTypes.
type Factory interface {
	Resolve(mod *symbols.Module, typeName string) (UserType, bool)
	Transform(typeName string) string
}

// UserType is the common interface implemented by every wrapper variant.
type UserType interface {
	// Base returns the shared bookkeeping state common to every variant.
	Base() *Base

	// WriteCode emits this type's wrapper source.
	WriteCode(w Writer, f Factory, flags Flags) error

	// WriteType returns the type name that should be emitted when this
	// UserType is referenced as a field or base-class type -- the
	// constructor name for every variant except TemplateArgumentUserType,
	// which yields its bound placeholder (spec.md's ResolvedType notion,
	// see DESIGN.md).
	WriteType(f Factory) string
}

// Base holds the fields and invariants shared across all UserType
// variants (spec.md's data model table).
type Base struct {
	Kind Kind

	// Symbol is nil for NamespaceUserType.
	Symbol *symbols.Symbol

	Namespace       string
	ConstructorName string
	FullClassName   string

	// DeclaredIn is the parent in the declared-in tree; nil at the root.
	DeclaredIn UserType

	// Usings is seeded with a project-wide default plus any namespace
	// appearing in a field or base-class type name.
	Usings map[string]struct{}
}

// NewBase constructs a Base with an initialized Usings set seeded with
// the given defaults.
func NewBase(kind Kind, sym *symbols.Symbol, namespace string, defaultUsings ...string) *Base {
	b := &Base{
		Kind:      kind,
		Symbol:    sym,
		Namespace: namespace,
		Usings:    make(map[string]struct{}, len(defaultUsings)),
	}
	for _, u := range defaultUsings {
		b.Usings[u] = struct{}{}
	}
	return b
}

// AddUsing records ns as a namespace this type's emitted body references.
func (b *Base) AddUsing(ns string) {
	if ns == "" {
		return
	}
	b.Usings[ns] = struct{}{}
}

// computeFullClassName walks the DeclaredIn chain and joins constructor
// names with ".", matching spec.md §4.5's "walking declaredInType chain".
func computeFullClassName(ctorName string, declaredIn UserType) string {
	if declaredIn == nil {
		return ctorName
	}
	parent := declaredIn.Base().FullClassName
	if parent == "" {
		return ctorName
	}
	return parent + "." + ctorName
}

// UpdateFullClassName recomputes u's FullClassName from its current
// ConstructorName and DeclaredIn parent. Called by the pipeline's
// post-processing step once the declared-in tree is fully wired.
func UpdateFullClassName(u UserType) {
	b := u.Base()
	b.FullClassName = computeFullClassName(b.ConstructorName, b.DeclaredIn)
}

// sanitizeArgValues returns a suffix appended to a template
// specialization's constructor name so that distinct specializations of
// the same family don't collide in emitted identifiers, e.g. "_int" for
// Vec<int> and "_float" for Vec<float>. Every argument value is folded
// into the suffix (not just the arity, which is identical across a
// family by construction) and each is sanitized to a valid identifier
// fragment since argument values can themselves be decorated names
// (pointers, nested templates, qualified scopes).
func sanitizeArgValues(argValues []string) string {
	var b strings.Builder
	for _, v := range argValues {
		b.WriteByte('_')
		b.WriteString(sanitizeIdentifierFragment(v))
	}
	return b.String()
}

// sanitizeIdentifierFragment replaces every rune that can't appear in a
// C# identifier with an underscore, collapsing runs of the replacement.
func sanitizeIdentifierFragment(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
