package factory

import (
	"github.com/leculver/typegen/symbols"
	"github.com/leculver/typegen/usertype"
)

// aliasPairs lists type-name spellings that the linker must treat as
// interchangeable when matching a template specialization's argument
// value against a TemplateArgumentUserType's bound placeholder (spec.md
// §4.6's alias-symmetric lookup). Each pair is tried in both
// directions.
//
// "whcar_t" is carried alongside the correctly-spelled "wchar_t"
// because some debug-symbol producers emit the typo verbatim in
// decorated names; see DESIGN.md Open Question (a).
var aliasPairs = [][2]string{
	{"wchar_t", "unsigned short"},
	{"whcar_t", "unsigned short"},
	{"long long", "__int64"},
	{"unsigned long long", "unsigned __int64"},
}

// TemplateUserTypeFactory decorates a UserTypeFactory with resolution
// against a single template family's bound arguments: when asked to
// resolve a type name that matches one of the family's
// TemplateArguments placeholders (directly, or via an alias pair), it
// returns the corresponding TemplateArgumentUserType instead of
// deferring to the underlying factory.
type TemplateUserTypeFactory struct {
	*UserTypeFactory

	placeholders map[string]usertype.UserType
}

// NewTemplateUserTypeFactory builds a decorator scoped to one
// specialization's bound argument values, pairing each of primary's
// placeholders with spec's concrete argument value at the same index.
func NewTemplateUserTypeFactory(base *UserTypeFactory, primary *usertype.TemplateUserType, spec *usertype.TemplateUserType) *TemplateUserTypeFactory {
	placeholders := make(map[string]usertype.UserType, len(primary.TemplateArguments))

	for i, placeholder := range primary.TemplateArguments {
		if i >= len(spec.ArgumentValues) {
			break
		}
		arg := usertype.NewTemplateArgument(placeholder)
		argValue := spec.ArgumentValues[i]

		placeholders[argValue] = arg
		for _, alt := range aliasesOf(argValue) {
			placeholders[alt] = arg
		}
	}

	return &TemplateUserTypeFactory{UserTypeFactory: base, placeholders: placeholders}
}

// Resolve implements usertype.Factory: a bound placeholder takes
// priority over the base factory's lookup, so a field typed as one of
// the specialization's own arguments resolves to T1/T2/... rather than
// to some unrelated type of the same name.
func (t *TemplateUserTypeFactory) Resolve(mod *symbols.Module, typeName string) (usertype.UserType, bool) {
	if u, ok := t.placeholders[typeName]; ok {
		return u, true
	}
	return t.UserTypeFactory.Resolve(mod, typeName)
}

// aliasesOf returns every spelling that aliasPairs treats as equivalent
// to name, in either direction.
func aliasesOf(name string) []string {
	var out []string
	for _, pair := range aliasPairs {
		switch name {
		case pair[0]:
			out = append(out, pair[1])
		case pair[1]:
			out = append(out, pair[0])
		}
	}
	return out
}
