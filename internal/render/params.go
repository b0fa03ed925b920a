package render

import (
	"fmt"

	"github.com/roach88/webnngen/internal/convert"
	"github.com/roach88/webnngen/internal/ir"
	"github.com/roach88/webnngen/internal/methods"
	"github.com/roach88/webnngen/internal/naming"
)

// BaseParams is the environment shared by every job. Its methods are the
// naming and conversion functions templates call; inside a range, reach
// them through $ (e.g. {{$.CType .Name}}).
type BaseParams struct {
	Registry      *ir.Registry
	Primary       naming.Scheme
	Alias         naming.Scheme
	SortedMethods []methods.Entry
}

// NewBaseParams binds the naming and conversion functions to reg.
func NewBaseParams(reg *ir.Registry) *BaseParams {
	return &BaseParams{
		Registry:      reg,
		Primary:       naming.Primary,
		Alias:         naming.Alias,
		SortedMethods: methods.SortedByName(reg),
	}
}

// EnumView lets enums and bitmasks share one template loop.
type EnumView struct {
	Type      ir.Type
	Name      ir.Name
	Values    []ir.EnumValue
	IsBitmask bool
}

func (p *BaseParams) Objects() []*ir.ObjectType       { return p.Registry.Objects() }
func (p *BaseParams) Enums() []*ir.EnumType           { return p.Registry.Enums() }
func (p *BaseParams) Bitmasks() []*ir.BitmaskType     { return p.Registry.Bitmasks() }
func (p *BaseParams) Structures() []*ir.StructureType { return p.Registry.Structures() }
func (p *BaseParams) Callbacks() []*ir.CallbackType   { return p.Registry.Callbacks() }

// EnumViews lists every enum.
func (p *BaseParams) EnumViews() []EnumView {
	var out []EnumView
	for _, e := range p.Registry.Enums() {
		out = append(out, EnumView{Type: e, Name: e.Name, Values: e.Values})
	}
	return out
}

// EnumsAndBitmasks lists every enum, then every bitmask.
func (p *BaseParams) EnumsAndBitmasks() []EnumView {
	out := p.EnumViews()
	for _, b := range p.Registry.Bitmasks() {
		out = append(out, EnumView{Type: b, Name: b.Name, Values: b.Values, IsBitmask: true})
	}
	return out
}

// ContiguousFromZero reports whether the values are exactly 0..n-1 in order.
func (v EnumView) ContiguousFromZero() bool {
	for i, val := range v.Values {
		if val.Value != uint32(i) {
			return false
		}
	}
	return true
}

// FullMask is the OR of every value.
func (v EnumView) FullMask() uint32 {
	var mask uint32
	for _, val := range v.Values {
		mask |= val.Value
	}
	return mask
}

// Name builds a name from an IDL identifier.
func (p *BaseParams) Name(s string) ir.Name { return ir.NewName(s) }

func (p *BaseParams) CType(n ir.Name) string      { return p.Primary.CType(n) }
func (p *BaseParams) CTypeAlias(n ir.Name) string { return p.Alias.CType(n) }
func (p *BaseParams) CppType(n ir.Name) string    { return naming.CppType(n) }

// AnnotatedCType declares r with its C type (bitmasks take the Flags type).
func (p *BaseParams) AnnotatedCType(r ir.Record) string {
	return convert.Annotated(p.Primary.CTypeOf(r.Type), r)
}

func (p *BaseParams) AnnotatedCTypeAlias(r ir.Record) string {
	return convert.Annotated(p.Alias.CTypeOf(r.Type), r)
}

// AnnotatedCppType declares r with its wrapper-layer type.
func (p *BaseParams) AnnotatedCppType(r ir.Record) string {
	return convert.Annotated(naming.CppType(r.Type.TypeName()), r)
}

func (p *BaseParams) CEnum(t, v ir.Name) string      { return p.Primary.CEnum(t, v) }
func (p *BaseParams) CEnumAlias(t, v ir.Name) string { return p.Alias.CEnum(t, v) }
func (p *BaseParams) CppEnum(v ir.Name) string       { return naming.CppEnum(v) }

func (p *BaseParams) CMethod(t, m ir.Name) string      { return p.Primary.CMethod(t, m) }
func (p *BaseParams) CMethodAlias(t, m ir.Name) string { return p.Alias.CMethod(t, m) }
func (p *BaseParams) MethodSuffix(t, m ir.Name) string { return naming.MethodSuffix(t, m) }
func (p *BaseParams) CProc(t, m ir.Name) string        { return p.Primary.CProc(t, m) }
func (p *BaseParams) CProcAlias(t, m ir.Name) string   { return p.Alias.CProc(t, m) }

func (p *BaseParams) JSEnumValue(v ir.EnumValue) string { return naming.JSEnumValue(v) }

// ConvertWireToRich renders the wire-to-rich conversion of arg.
func (p *BaseParams) ConvertWireToRich(t ir.Type, a ir.Annotation, arg string) string {
	return convert.WireToRich(t, a, arg).String()
}

// ConvertResult renders the conversion of a by-value method result.
func (p *BaseParams) ConvertResult(t ir.Type, arg string) string {
	return convert.WireToRich(t, ir.AnnotationValue, arg).String()
}

// RichToWire renders a wrapper-layer argument converted to its C type.
func (p *BaseParams) RichToWire(r ir.Record) string {
	return convert.RichToWire(r.Type, r.Annotation, ir.JoinVarName(r.Name), p.Primary.CTypeOf(r.Type))
}

// IsUserdata reports whether r is the opaque userdata pointer that travels
// with a callback.
func (p *BaseParams) IsUserdata(r ir.Record) bool {
	return r.Name.CanonicalCase() == "userdata"
}

func (p *BaseParams) VarName(first ir.Name, rest ...ir.Name) string {
	return ir.JoinVarName(first, rest...)
}

func (p *BaseParams) Decorate(name, typ string, a ir.Annotation) string {
	return convert.Decorate(name, typ, a)
}

// CMethods lists obj's methods including reference and release.
func (p *BaseParams) CMethods(obj *ir.ObjectType) []ir.Method {
	return methods.CMethods(p.Registry, obj)
}

// Hex8 formats v as eight upper-case hex digits.
func (p *BaseParams) Hex8(v uint32) string { return fmt.Sprintf("%08X", v) }

// IsPointer reports whether r is passed through any pointer form.
func (p *BaseParams) IsPointer(r ir.Record) bool { return r.Annotation.IsPointer() }

// IsCategory reports whether t belongs to one of the named categories.
func (p *BaseParams) IsCategory(t ir.Type, names ...string) bool {
	for _, n := range names {
		if t.Category().String() == n {
			return true
		}
	}
	return false
}

// CppDefault renders the " = value" initializer of a wrapper-layer member,
// or "" when the member has none. A default on a type that cannot take one
// is a contract violation.
func (p *BaseParams) CppDefault(r ir.Record) string {
	switch {
	case r.Annotation.IsPointer() && r.Optional:
		return " = nullptr"
	case r.Type.Category() == ir.CategoryObject && r.Optional:
		return " = nullptr"
	case (r.Type.Category() == ir.CategoryEnum || r.Type.Category() == ir.CategoryBitmask) && r.HasDefault:
		return " = webnn::" + naming.CppType(r.Type.TypeName()) + "::" + naming.CppEnum(ir.NewName(r.Default))
	case r.Type.Category() == ir.CategoryNative && r.HasDefault:
		return " = " + r.Default
	case r.HasDefault:
		ir.Violatef("CppDefault", r.Name.CanonicalCase(), "default %q on %s member", r.Default, r.Type.Category())
	}
	return ""
}

// MockParams extends BaseParams for the mock target.
type MockParams struct{}

// HasCallbackArguments reports whether any argument of m is a callback.
func (MockParams) HasCallbackArguments(m ir.Method) bool {
	return methods.HasCallbackArguments(m)
}

// FrontendParams extends BaseParams for the native-utility target.
type FrontendParams struct {
	Scheme naming.Scheme
}

// FrontendType is the implementation-layer type of t.
func (f FrontendParams) FrontendType(t ir.Type) string {
	return naming.FrontendType(f.Scheme, t)
}

// AnnotatedFrontendType declares r with its implementation-layer type.
func (f FrontendParams) AnnotatedFrontendType(r ir.Record) string {
	return convert.Annotated(naming.FrontendType(f.Scheme, r.Type), r)
}

// Env is the typed environment of one job: the shared base plus the
// target's optional extension. Templates of other targets see a nil
// extension and fail if they reach for it.
type Env struct {
	*BaseParams
	Mock     *MockParams
	Frontend *FrontendParams

	Template  string
	Output    string
	GoPackage string
}

// Extensions names the non-nil extensions, for summaries.
func (e *Env) Extensions() []string {
	var out []string
	if e.Mock != nil {
		out = append(out, "mock")
	}
	if e.Frontend != nil {
		out = append(out, "frontend")
	}
	return out
}
