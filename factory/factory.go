// Package factory implements UserTypeFactory and its
// TemplateUserTypeFactory decorator (spec.md §4.6): construction of
// UserTypes from Symbols, application of configured transformations,
// and link-time resolution of field/base types against the GlobalCache.
package factory

import (
	"fmt"
	"strings"

	"github.com/leculver/typegen/cache"
	"github.com/leculver/typegen/symbolname"
	"github.com/leculver/typegen/symbols"
	"github.com/leculver/typegen/usertype"
)

// Transformation is one ordered textual rewrite applied to type names at
// emit time (spec.md §6's `transformations[]`).
type Transformation struct {
	Pattern     string
	Replacement string
}

// UserTypeFactory constructs UserTypes from Symbols and resolves
// referenced type names to other UserTypes during the pipeline's link
// phase.
type UserTypeFactory struct {
	cache           *cache.GlobalCache
	transformations []Transformation

	// byIdentity looks a UserType up by the Symbol it was built from.
	byIdentity map[*symbols.Symbol]usertype.UserType

	// byName looks a UserType up by its fully-qualified emitted name,
	// used by TryGetUserType to resolve a textual field/base type name
	// that has no Symbol of its own (e.g. because it was synthesized).
	byName map[string]usertype.UserType
}

// New constructs an empty UserTypeFactory backed by c.
func New(c *cache.GlobalCache, transformations []Transformation) *UserTypeFactory {
	return &UserTypeFactory{
		cache:           c,
		transformations: transformations,
		byIdentity:      make(map[*symbols.Symbol]usertype.UserType),
		byName:          make(map[string]usertype.UserType),
	}
}

// register records u under both lookup tables.
func (f *UserTypeFactory) register(sym *symbols.Symbol, u usertype.UserType) {
	if sym != nil {
		f.byIdentity[sym] = u
	}
	f.byName[u.Base().FullClassName] = u
}

// AddSymbol picks a variant by sym.Tag and constructs the corresponding
// UserType: Enum -> EnumUserType, UDT -> PhysicalUserType (template
// families take the AddSymbols path instead). Any other tag is an error;
// the module-globals wrapper is built by AddGlobal, not here.
func (f *UserTypeFactory) AddSymbol(sym *symbols.Symbol, namespace string, flags usertype.Flags) (usertype.UserType, error) {
	ctorName := constructorNameOf(sym.Name)

	switch sym.Tag {
	case symbols.TagEnum:
		values, err := sym.EnumValues()
		if err != nil {
			return nil, fmt.Errorf("reading enum values of %s: %w", sym.Name, err)
		}
		e := usertype.NewEnum(sym, namespace, ctorName, values)
		f.register(sym, e)
		return e, nil

	case symbols.TagUDT:
		p := usertype.NewPhysical(sym, namespace, ctorName)
		if err := f.populatePhysical(p); err != nil {
			return nil, err
		}
		f.register(sym, p)
		return p, nil

	default:
		return nil, fmt.Errorf("symbol %s has no corresponding UserType variant (tag %s)", sym.Name, sym.Tag)
	}
}

// AddSymbols constructs one primary TemplateUserType plus one
// specialization per member of a template family that shares the same
// (namespace, familyName) key, per spec.md §4.6.
func (f *UserTypeFactory) AddSymbols(familyNamespace, familyKey string, members []*symbols.Symbol, flags usertype.Flags) (*usertype.TemplateUserType, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("template family %s has no members", familyKey)
	}

	arity, err := templateArity(members[0].Name)
	if err != nil {
		return nil, err
	}

	ctorName := constructorNameOf(members[0].Name)
	primary := usertype.NewTemplatePrimary(familyNamespace, familyKey, ctorName, arity)
	f.register(nil, primary)

	for _, sym := range members {
		argValues, err := templateArgumentValues(sym.Name)
		if err != nil {
			return nil, err
		}
		if len(argValues) != arity {
			return nil, fmt.Errorf("specialization %s has %d arguments, family %s has arity %d", sym.Name, len(argValues), familyKey, arity)
		}

		spec := usertype.NewTemplateSpecialization(primary, sym, ctorName, argValues)
		if err := f.populateTemplateSpecialization(spec); err != nil {
			return nil, err
		}

		primary.SpecializedTypes = append(primary.SpecializedTypes, spec)
		f.register(sym, spec)
	}

	return primary, nil
}

// AddGlobal constructs the ModuleGlobals wrapper for mod.
func (f *UserTypeFactory) AddGlobal(mod *symbols.Module, namespace string) (*usertype.GlobalUserType, error) {
	g := usertype.NewGlobal(mod, namespace)

	if mod.GlobalScope != nil {
		fields, err := mod.GlobalScope.Fields()
		if err != nil {
			return nil, fmt.Errorf("reading globals of module %s: %w", mod.Name, err)
		}
		for _, field := range fields {
			g.FieldAccessors = append(g.FieldAccessors, usertype.FieldAccessor{
				AccessorName: field.Name,
				TypeName:     field.TypeName,
				Offset:       field.Offset,
			})
			g.Base().AddUsing(namespaceOf(field.TypeName))
		}
	}

	f.register(mod.GlobalScope, g)
	return g, nil
}

func (f *UserTypeFactory) populatePhysical(p *usertype.PhysicalUserType) error {
	fields, err := p.Base().Symbol.Fields()
	if err != nil {
		return fmt.Errorf("reading fields of %s: %w", p.Base().Symbol.Name, err)
	}
	for _, field := range fields {
		p.FieldAccessors = append(p.FieldAccessors, usertype.FieldAccessor{
			AccessorName: field.Name,
			TypeName:     field.TypeName,
			Offset:       field.Offset,
		})
		p.Base().AddUsing(namespaceOf(field.TypeName))

		nested, err := f.buildAnonymousNested(field)
		if err != nil {
			return err
		}
		if nested != nil {
			p.AnonymousNested = append(p.AnonymousNested, nested)
		}
	}

	bases, err := p.Base().Symbol.BaseClasses()
	if err != nil {
		return fmt.Errorf("reading base classes of %s: %w", p.Base().Symbol.Name, err)
	}
	for _, base := range bases {
		p.BaseAccessors = append(p.BaseAccessors, usertype.BaseAccessor{
			AccessorName: constructorNameOf(base.TypeName),
			TypeName:     base.TypeName,
			Offset:       base.Offset,
		})
		p.Base().AddUsing(namespaceOf(base.TypeName))
	}

	return nil
}

func (f *UserTypeFactory) populateTemplateSpecialization(t *usertype.TemplateUserType) error {
	fields, err := t.Base().Symbol.Fields()
	if err != nil {
		return fmt.Errorf("reading fields of %s: %w", t.Base().Symbol.Name, err)
	}
	for _, field := range fields {
		t.FieldAccessors = append(t.FieldAccessors, usertype.FieldAccessor{
			AccessorName: field.Name,
			TypeName:     field.TypeName,
			Offset:       field.Offset,
		})
	}

	bases, err := t.Base().Symbol.BaseClasses()
	if err != nil {
		return fmt.Errorf("reading base classes of %s: %w", t.Base().Symbol.Name, err)
	}
	for _, base := range bases {
		t.BaseAccessors = append(t.BaseAccessors, usertype.BaseAccessor{
			AccessorName: constructorNameOf(base.TypeName),
			TypeName:     base.TypeName,
			Offset:       base.Offset,
		})
	}

	return nil
}

// Resolve implements usertype.Factory: it looks typeName up first by
// fully-qualified name, then falls back to the GlobalCache by raw
// symbol name (spec.md §4.6's `getUserType`/`tryGetUserType`).
func (f *UserTypeFactory) Resolve(mod *symbols.Module, typeName string) (usertype.UserType, bool) {
	if u, ok := f.byName[typeName]; ok {
		return u, true
	}

	if sym, ok := f.cache.GetSymbol(typeName); ok {
		if u, ok := f.byIdentity[sym]; ok {
			return u, true
		}
	}

	return nil, false
}

// GetUserType looks a UserType up by the Symbol it was constructed from.
func (f *UserTypeFactory) GetUserType(sym *symbols.Symbol) (usertype.UserType, bool) {
	u, ok := f.byIdentity[sym]
	return u, ok
}

// Transform applies the first matching configured transformation to
// typeName; transformations are tried in configured order and the first
// match wins.
func (f *UserTypeFactory) Transform(typeName string) string {
	for _, t := range f.transformations {
		if strings.Contains(typeName, t.Pattern) {
			return strings.Replace(typeName, t.Pattern, t.Replacement, 1)
		}
	}
	return typeName
}

// LinkTemplateArguments resolves every field/base type of every
// specialization in family, binding each specialization's own argument
// values to the primary's placeholders before resolving (spec.md §4.7
// P7). Failure to resolve a given type is non-fatal: a diagnostic is
// recorded on the specialization and the raw name is left in place for
// emission.
func (f *UserTypeFactory) LinkTemplateArguments(family *usertype.TemplateUserType) {
	for _, spec := range family.SpecializedTypes {
		tuf := NewTemplateUserTypeFactory(f, family, spec)
		linkOne(spec, tuf)
	}
}

// LinkPhysical resolves every field/base type of p against f (spec.md
// §4.7 P7's non-template counterpart, also invoked from the generic
// Link step so that ordinary structs get the same field/base resolution
// as template specializations).
func (f *UserTypeFactory) LinkPhysical(p *usertype.PhysicalUserType) {
	for i := range p.FieldAccessors {
		fa := &p.FieldAccessors[i]
		if u, ok := f.Resolve(p.Base().Symbol.Mod, fa.TypeName); ok {
			fa.Resolved = u
		}
	}
	for i := range p.BaseAccessors {
		ba := &p.BaseAccessors[i]
		if u, ok := f.Resolve(p.Base().Symbol.Mod, ba.TypeName); ok {
			ba.Resolved = u
		}
	}
}

// LinkGlobal resolves every field type of g against f.
func (f *UserTypeFactory) LinkGlobal(g *usertype.GlobalUserType) {
	for i := range g.FieldAccessors {
		fa := &g.FieldAccessors[i]
		mod := (*symbols.Module)(nil)
		if g.Base().Symbol != nil {
			mod = g.Base().Symbol.Mod
		}
		if u, ok := f.Resolve(mod, fa.TypeName); ok {
			fa.Resolved = u
		}
	}
}

func linkOne(spec *usertype.TemplateUserType, tuf *TemplateUserTypeFactory) {
	mod := (*symbols.Module)(nil)
	if spec.Base().Symbol != nil {
		mod = spec.Base().Symbol.Mod
	}

	for i := range spec.FieldAccessors {
		fa := &spec.FieldAccessors[i]
		if u, ok := tuf.Resolve(mod, fa.TypeName); ok {
			fa.Resolved = u
		} else {
			spec.AddDiagnostic(fmt.Sprintf("unresolved field type %q for %s.%s", fa.TypeName, spec.Base().ConstructorName, fa.AccessorName))
		}
	}
	for i := range spec.BaseAccessors {
		ba := &spec.BaseAccessors[i]
		if u, ok := tuf.Resolve(mod, ba.TypeName); ok {
			ba.Resolved = u
		} else {
			spec.AddDiagnostic(fmt.Sprintf("unresolved base type %q for %s", ba.TypeName, spec.Base().ConstructorName))
		}
	}
}

// buildAnonymousNested constructs an inlined PhysicalUserType for field
// when its declared type is a compiler-synthesized anonymous UDT
// (spec.md §4.5, "Anonymous nested UDTs are inlined"). The anonymous
// symbol is looked up in the GlobalCache -- it was deduplicated and
// cached alongside every other enumerated symbol before P5's filter
// dropped it from becoming a standalone top-level UserType -- and its
// own fields/bases are populated recursively so it can be emitted as a
// nested class in its declaring type's body. Returns nil, nil when
// field's type isn't an anonymous UDT, or the anonymous symbol can't be
// found in the cache.
func (f *UserTypeFactory) buildAnonymousNested(field symbols.Field) (*usertype.PhysicalUserType, error) {
	if !isAnonymousUDTName(field.TypeName) {
		return nil, nil
	}

	sym, ok := f.cache.GetSymbol(field.TypeName)
	if !ok || sym.Tag != symbols.TagUDT {
		return nil, nil
	}

	ctorName := sanitizeIdentifier(field.Name) + "Type"
	nested := usertype.NewPhysical(sym, "", ctorName)
	if err := f.populatePhysical(nested); err != nil {
		return nil, fmt.Errorf("populating anonymous nested type for field %s: %w", field.Name, err)
	}
	return nested, nil
}

// isAnonymousUDTName reports whether name is a compiler-synthesized
// anonymous UDT name -- its last scope's bare name starts with "<" --
// the same convention pipeline.isFiltered uses to keep these symbols
// from becoming standalone top-level UserTypes.
// The scan is textual because symbolname.Parse rejects a scope that
// begins with "<".
func isAnonymousUDTName(name string) bool {
	last, depth := 0, 0
	for i := 0; i+1 < len(name); i++ {
		switch {
		case name[i] == '<':
			depth++
		case name[i] == '>':
			depth--
		case depth == 0 && name[i] == ':' && name[i+1] == ':':
			last = i + 2
		}
	}
	return strings.HasPrefix(name[last:], "<")
}

// constructorNameOf derives the emitted class identifier from a
// symbol's last scope (spec.md §4.5's ConstructorName computation).
func constructorNameOf(name string) string {
	pn, err := symbolname.Parse(name)
	if err != nil || len(pn.Scopes) == 0 {
		return sanitizeIdentifier(name)
	}
	return sanitizeIdentifier(pn.Scopes[len(pn.Scopes)-1].BareName)
}

// namespaceOf returns the enclosing-scope namespace of a type name, used
// to seed a UserType's Usings set.
func namespaceOf(typeName string) string {
	pn, err := symbolname.Parse(typeName)
	if err != nil {
		return ""
	}
	ns := pn.Namespaces()
	if len(ns) == 0 {
		return ""
	}
	return strings.Join(ns, "::")
}

func templateArity(name string) (int, error) {
	pn, err := symbolname.Parse(name)
	if err != nil {
		return 0, err
	}
	args := pn.TemplateArguments()
	if args == nil {
		return 0, fmt.Errorf("%s is not a template specialization", name)
	}
	return len(args), nil
}

func templateArgumentValues(name string) ([]string, error) {
	pn, err := symbolname.Parse(name)
	if err != nil {
		return nil, err
	}
	args := pn.TemplateArguments()
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.Render()
	}
	return out, nil
}

func sanitizeIdentifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
