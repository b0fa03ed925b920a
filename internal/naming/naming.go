// Package naming derives every public symbol of the generated API from the
// IDL name model.
//
// Two brand schemes are emitted side by side from one IDL: Primary (the
// public "Webnn" surface) and Alias (the legacy "Dawn" surface). Every
// function here panics with *ir.ContractViolation when handed a native name
// where a brand-decorated one is required.
package naming

import (
	"strings"

	"github.com/roach88/webnngen/internal/ir"
)

// EnumStyle selects how enum/bitmask value constants are spelled.
type EnumStyle int

const (
	// EnumCamel spells values as BrandType_Value.
	EnumCamel EnumStyle = iota
	// EnumScreaming spells values as BRAND_TYPE_VALUE.
	EnumScreaming
)

// Scheme is one set of brand tokens.
type Scheme struct {
	Name           string
	TypePrefix     string // prefix of type, proc and enum symbols ("Webnn")
	FunctionPrefix string // prefix of exported functions ("webnn")
	EnumStyle      EnumStyle
}

var (
	Primary = Scheme{Name: "primary", TypePrefix: "Webnn", FunctionPrefix: "webnn", EnumStyle: EnumCamel}
	Alias   = Scheme{Name: "alias", TypePrefix: "Dawn", FunctionPrefix: "dawn", EnumStyle: EnumScreaming}
)

// CType is the C spelling of a type name. Natives pass through verbatim.
func (s Scheme) CType(n ir.Name) string {
	if n.Native() {
		return n.ConcatCase()
	}
	return s.TypePrefix + n.UpperCamel()
}

// CTypeOf is CType for a type, with the Flags suffix bitmasks take when
// used as a member or argument.
func (s Scheme) CTypeOf(t ir.Type) string {
	if t.Category() == ir.CategoryBitmask {
		return s.CType(t.TypeName()) + "Flags"
	}
	return s.CType(t.TypeName())
}

// CEnum is the constant for one enum or bitmask value.
func (s Scheme) CEnum(typeName, valueName ir.Name) string {
	ir.MustNotBeNative("CEnum", typeName, valueName)
	if s.EnumStyle == EnumScreaming {
		return strings.ToUpper(s.TypePrefix) + "_" + typeName.ScreamingSnakeCase() + "_" + valueName.ScreamingSnakeCase()
	}
	return s.TypePrefix + typeName.UpperCamel() + "_" + valueName.UpperCamel()
}

// CMethod is the exported C function for a method.
func (s Scheme) CMethod(typeName, methodName ir.Name) string {
	ir.MustNotBeNative("CMethod", typeName, methodName)
	return s.FunctionPrefix + typeName.UpperCamel() + methodName.UpperCamel()
}

// CProc is the function-pointer typedef for a method.
func (s Scheme) CProc(typeName, methodName ir.Name) string {
	ir.MustNotBeNative("CProc", typeName, methodName)
	return s.TypePrefix + "Proc" + typeName.UpperCamel() + methodName.UpperCamel()
}

// MethodSuffix is the brand-free composed name of a method. It orders the
// flattened method listing, so both schemes share one order.
func MethodSuffix(typeName, methodName ir.Name) string {
	ir.MustNotBeNative("MethodSuffix", typeName, methodName)
	return typeName.UpperCamel() + methodName.UpperCamel()
}

// CppType is the wrapper-layer spelling of a type name.
func CppType(n ir.Name) string {
	if n.Native() {
		return n.ConcatCase()
	}
	return n.UpperCamel()
}

// CppEnum is the wrapper-layer enumerator for a value. A leading digit gets
// an 'e' prefix to stay a valid identifier.
func CppEnum(valueName ir.Name) string {
	ir.MustNotBeNative("CppEnum", valueName)
	if valueName.StartsWithDigit() {
		return "e" + valueName.UpperCamel()
	}
	return valueName.UpperCamel()
}

// FrontendType is the type the native implementation layer uses for t.
func FrontendType(s Scheme, t ir.Type) string {
	switch t.Category() {
	case ir.CategoryObject:
		return t.TypeName().UpperCamel() + "Base*"
	case ir.CategoryEnum, ir.CategoryBitmask:
		return "webnn::" + t.TypeName().UpperCamel()
	case ir.CategoryStructure:
		return CppType(t.TypeName())
	default:
		return s.CType(t.TypeName())
	}
}

// JSEnumValue is the JavaScript literal for an enum value.
func JSEnumValue(v ir.EnumValue) string {
	if v.JSRepr != "" {
		return v.JSRepr
	}
	return "'" + v.Name.JSEnumCase() + "'"
}
