package usertype

import (
	"fmt"
	"strings"

	"github.com/leculver/typegen/symbols"
)

// TemplateUserType is the primary generic wrapper for a template family,
// or one observed specialization of it (spec.md §4.5). The primary has
// Primary == true and owns the full SpecializedTypes slice; each
// specialization has an equal-arity argument vector (spec.md's Template
// arity invariant).
type TemplateUserType struct {
	base *Base

	Primary   bool
	FamilyKey string // "namespace::familyName", written into each specialization's descriptor comment

	// TemplateArguments holds the placeholder names (T1, T2, ...) shared
	// by every member of the family; length is the family's arity.
	TemplateArguments []string

	// SpecializedTypes records every observed specialization for
	// downstream selection by argument shape. Only populated on the
	// primary.
	SpecializedTypes []*TemplateUserType

	// ArgumentValues holds this specialization's concrete argument type
	// names, in the same order as the primary's TemplateArguments. Empty
	// on the primary itself.
	ArgumentValues []string

	FieldAccessors []FieldAccessor
	BaseAccessors  []BaseAccessor

	linkDiagnostics []string
}

// NewTemplatePrimary constructs the primary TemplateUserType owning a
// template family.
func NewTemplatePrimary(namespace, familyKey, ctorName string, arity int) *TemplateUserType {
	t := &TemplateUserType{base: NewBase(KindTemplate, nil, namespace, "System"), Primary: true, FamilyKey: familyKey}
	t.base.ConstructorName = ctorName
	t.base.FullClassName = ctorName
	t.TemplateArguments = make([]string, arity)
	for i := range t.TemplateArguments {
		t.TemplateArguments[i] = fmt.Sprintf("T%d", i+1)
	}
	return t
}

// NewTemplateSpecialization constructs one specialization belonging to
// primary, backed by sym.
func NewTemplateSpecialization(primary *TemplateUserType, sym *symbols.Symbol, ctorName string, argValues []string) *TemplateUserType {
	t := &TemplateUserType{
		base:              NewBase(KindTemplate, sym, primary.base.Namespace, "System"),
		FamilyKey:         primary.FamilyKey,
		TemplateArguments: primary.TemplateArguments,
		ArgumentValues:    argValues,
	}
	t.base.ConstructorName = ctorName + sanitizeArgValues(argValues)
	t.base.FullClassName = t.base.ConstructorName
	return t
}

// Base implements UserType.
func (t *TemplateUserType) Base() *Base { return t.base }

// AddDiagnostic records a non-fatal TemplateLinkError message produced
// while resolving this specialization's field/base types (spec.md §7).
func (t *TemplateUserType) AddDiagnostic(msg string) {
	t.linkDiagnostics = append(t.linkDiagnostics, msg)
}

// Diagnostics returns every recorded link diagnostic.
func (t *TemplateUserType) Diagnostics() []string { return t.linkDiagnostics }

// WriteCode implements UserType. The primary emits the generic wrapper
// declaration; specializations emit a lightweight descriptor comment
// plus their resolved accessors, matching spec.md §8 scenario 4's
// "single generic wrapper plus N specialization descriptors."
func (t *TemplateUserType) WriteCode(w Writer, f Factory, flags Flags) error {
	if t.Primary {
		return t.writePrimary(w, f, flags)
	}
	return t.writeSpecialization(w, f, flags)
}

func (t *TemplateUserType) writePrimary(w Writer, f Factory, flags Flags) error {
	params := strings.Join(t.TemplateArguments, ", ")
	w.WriteLine(fmt.Sprintf("public sealed class %s<%s>", t.base.ConstructorName, params))
	w.WriteLine("{")
	w.Indent()
	w.WriteLine("readonly ulong _address;")
	w.WriteLine(fmt.Sprintf("public %s(ulong address) { _address = address; }", t.base.ConstructorName))
	w.WriteLine(fmt.Sprintf("// %d known specialization(s)", len(t.SpecializedTypes)))
	w.Dedent()
	w.WriteLine("}")

	for _, spec := range t.SpecializedTypes {
		if err := spec.WriteCode(w, f, flags); err != nil {
			return err
		}
	}
	return nil
}

func (t *TemplateUserType) writeSpecialization(w Writer, f Factory, flags Flags) error {
	w.WriteLine(fmt.Sprintf("// specialization of %s: <%s>", t.FamilyKey, strings.Join(t.ArgumentValues, ", ")))
	for _, d := range t.linkDiagnostics {
		w.WriteLine("// link diagnostic: " + d)
	}

	w.WriteLine(fmt.Sprintf("public sealed class %s", t.base.ConstructorName))
	w.WriteLine("{")
	w.Indent()
	w.WriteLine("readonly ulong _address;")
	w.WriteLine(fmt.Sprintf("public %s(ulong address) { _address = address; }", t.base.ConstructorName))

	for _, ba := range t.BaseAccessors {
		typeName := ba.TypeName
		if ba.Resolved != nil {
			typeName = ba.Resolved.WriteType(f)
		}
		w.WriteLine(fmt.Sprintf("public %s %s => new %s(_address + %d);", typeName, ba.AccessorName, typeName, ba.Offset))
	}

	for _, fa := range t.FieldAccessors {
		typeName := f.Transform(fa.TypeName)
		if fa.Resolved != nil {
			typeName = fa.Resolved.WriteType(f)
		}
		w.WriteLine(fmt.Sprintf("public %s %s => Memory.Read<%s>(_address + %d);", typeName, fa.AccessorName, typeName, fa.Offset))
	}

	w.Dedent()
	w.WriteLine("}")
	return nil
}

// WriteType implements UserType.
func (t *TemplateUserType) WriteType(f Factory) string { return t.base.ConstructorName }
