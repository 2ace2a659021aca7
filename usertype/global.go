package usertype

import (
	"fmt"

	"github.com/leculver/typegen/symbols"
)

// GlobalUserType is "ModuleGlobals": one per module, aggregating its
// global-scope symbol's free functions and variables (spec.md §4.5).
type GlobalUserType struct {
	base *Base

	FieldAccessors []FieldAccessor
}

// NewGlobal constructs the ModuleGlobals wrapper for mod's global scope.
func NewGlobal(mod *symbols.Module, namespace string) *GlobalUserType {
	ctorName := mod.Name + "Globals"
	g := &GlobalUserType{base: NewBase(KindGlobal, mod.GlobalScope, namespace, "System")}
	g.base.ConstructorName = ctorName
	g.base.FullClassName = ctorName
	return g
}

// Base implements UserType.
func (g *GlobalUserType) Base() *Base { return g.base }

// WriteType implements UserType.
func (g *GlobalUserType) WriteType(f Factory) string { return g.base.ConstructorName }

// WriteCode implements UserType.
func (g *GlobalUserType) WriteCode(w Writer, f Factory, flags Flags) error {
	w.WriteLine(fmt.Sprintf("public static class %s", g.base.ConstructorName))
	w.WriteLine("{")
	w.Indent()
	for _, fa := range g.FieldAccessors {
		typeName := f.Transform(fa.TypeName)
		if fa.Resolved != nil {
			typeName = fa.Resolved.WriteType(f)
		}
		w.WriteLine(fmt.Sprintf("public static %s %s => Memory.Read<%s>(0x%X);", typeName, fa.AccessorName, typeName, fa.Offset))
	}
	w.Dedent()
	w.WriteLine("}")
	return nil
}
