package usertype

// NamespaceUserType is a synthetic container holding nested UserTypes.
// It never has a Symbol and is only emitted when non-empty (spec.md
// §4.5).
type NamespaceUserType struct {
	base     *Base
	Children []UserType
}

// NewNamespace constructs an empty namespace container named name,
// nested under declaredIn (nil at the root).
func NewNamespace(name string, declaredIn UserType) *NamespaceUserType {
	n := &NamespaceUserType{base: NewBase(KindNamespace, nil, "")}
	n.base.ConstructorName = name
	n.base.DeclaredIn = declaredIn
	n.base.FullClassName = computeFullClassName(name, declaredIn)
	return n
}

// AddChild attaches child to this namespace and sets its DeclaredIn.
func (n *NamespaceUserType) AddChild(child UserType) {
	child.Base().DeclaredIn = n
	n.Children = append(n.Children, child)
}

// Base implements UserType.
func (n *NamespaceUserType) Base() *Base { return n.base }

// WriteType implements UserType.
func (n *NamespaceUserType) WriteType(f Factory) string { return n.base.ConstructorName }

// WriteCode implements UserType: namespaces with no children are
// skipped per spec.md §4.5.
func (n *NamespaceUserType) WriteCode(w Writer, f Factory, flags Flags) error {
	if len(n.Children) == 0 {
		return nil
	}

	w.WriteLine("namespace " + n.base.ConstructorName)
	w.WriteLine("{")
	w.Indent()
	for _, child := range n.Children {
		if err := child.WriteCode(w, f, flags); err != nil {
			return err
		}
	}
	w.Dedent()
	w.WriteLine("}")
	return nil
}
