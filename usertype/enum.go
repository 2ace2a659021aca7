package usertype

import (
	"fmt"

	"github.com/leculver/typegen/symbols"
)

// EnumUserType emits an enumerated type whose members are copied
// verbatim from the source symbol's enum values.
type EnumUserType struct {
	base   *Base
	Values []symbols.EnumValue
}

// NewEnum constructs an EnumUserType for sym.
func NewEnum(sym *symbols.Symbol, namespace, ctorName string, values []symbols.EnumValue) *EnumUserType {
	e := &EnumUserType{base: NewBase(KindEnum, sym, namespace), Values: values}
	e.base.ConstructorName = ctorName
	e.base.FullClassName = ctorName
	return e
}

// Base implements UserType.
func (e *EnumUserType) Base() *Base { return e.base }

// WriteType implements UserType.
func (e *EnumUserType) WriteType(f Factory) string { return e.base.ConstructorName }

// WriteCode implements UserType.
func (e *EnumUserType) WriteCode(w Writer, f Factory, flags Flags) error {
	w.WriteLine(fmt.Sprintf("public enum %s", e.base.ConstructorName))
	w.WriteLine("{")
	w.Indent()
	for _, v := range e.Values {
		w.WriteLine(fmt.Sprintf("%s = %d,", v.Name, v.Value))
	}
	w.Dedent()
	w.WriteLine("}")
	return nil
}
