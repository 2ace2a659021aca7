package usertype

// TemplateArgumentUserType is a sentinel used only inside a
// TemplateUserType body: its WriteType yields the bound placeholder
// name (T1, T2, ...) rather than a concrete type. It has no Symbol and
// is never emitted on its own.
type TemplateArgumentUserType struct {
	base        *Base
	Placeholder string
}

// NewTemplateArgument constructs a sentinel bound to placeholder.
func NewTemplateArgument(placeholder string) *TemplateArgumentUserType {
	t := &TemplateArgumentUserType{base: NewBase(KindTemplateArgument, nil, "")}
	t.base.ConstructorName = placeholder
	t.base.FullClassName = placeholder
	t.Placeholder = placeholder
	return t
}

// Base implements UserType.
func (t *TemplateArgumentUserType) Base() *Base { return t.base }

// WriteCode is a no-op: TemplateArgumentUserType is never emitted as a
// top-level declaration.
func (t *TemplateArgumentUserType) WriteCode(w Writer, f Factory, flags Flags) error {
	return nil
}

// WriteType implements UserType: it yields the placeholder name instead
// of a concrete type name.
func (t *TemplateArgumentUserType) WriteType(f Factory) string { return t.Placeholder }
