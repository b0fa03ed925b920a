// Package convert maps IDL values from the wire (C ABI) representation to
// the rich (C++ wrapper) representation.
package convert

import (
	"strings"

	"github.com/roach88/webnngen/internal/ir"
	"github.com/roach88/webnngen/internal/naming"
)

// Kind is the conversion rule applied at one node.
type Kind int

const (
	KindIdentity    Kind = iota // native: wire text is the rich value
	KindAcquire                 // object: T::Acquire(arg)
	KindAggregate               // structure: T { member, ... }
	KindStaticCast              // enum, bitmask, callback: static_cast<T>(arg)
	KindReinterpret             // any pointer form: reinterpret_cast<T annotation>(arg)
)

var kindNames = [...]string{"identity", "acquire", "aggregate", "static_cast", "reinterpret_cast"}

func (k Kind) String() string { return kindNames[k] }

// Conversion is the expression tree converting one wire value. Only
// aggregates have members; every other kind is a leaf.
type Conversion struct {
	Kind       Kind
	RichType   string        // C++ type of the result; empty for identity
	Annotation ir.Annotation // pointer form, for KindReinterpret
	Source     string        // wire expression being converted
	Members    []Member
}

// Member is one converted field of an aggregate.
type Member struct {
	VarName    string
	Conversion Conversion
}

// WireToRich builds the conversion of arg, a wire value of type t passed
// with annotation a. Structures passed by value are converted member by
// member; pointer contents are never walked.
func WireToRich(t ir.Type, a ir.Annotation, arg string) Conversion {
	return wireToRich(t, a, arg, nil)
}

func wireToRich(t ir.Type, a ir.Annotation, arg string, path []string) Conversion {
	if t.Category() == ir.CategoryNative {
		return Conversion{Kind: KindIdentity, Source: arg}
	}
	if !a.Valid() {
		ir.Violatef("WireToRich", t.TypeName().CanonicalCase(), "unknown annotation %v", a)
	}

	rich := naming.CppType(t.TypeName())
	if a.IsPointer() {
		return Conversion{Kind: KindReinterpret, RichType: rich, Annotation: a, Source: arg}
	}

	switch typ := t.(type) {
	case *ir.ObjectType:
		return Conversion{Kind: KindAcquire, RichType: rich, Source: arg}
	case *ir.StructureType:
		canonical := typ.Name.CanonicalCase()
		for _, seen := range path {
			if seen == canonical {
				ir.Violatef("WireToRich", canonical, "structure contains itself by value via %s", strings.Join(path, " -> "))
			}
		}
		path = append(path, canonical)

		conv := Conversion{Kind: KindAggregate, RichType: rich, Source: arg}
		for _, m := range typ.Members {
			name := ir.JoinVarName(m.Name)
			conv.Members = append(conv.Members, Member{
				VarName:    name,
				Conversion: wireToRich(m.Type, m.Annotation, arg+"."+name, path),
			})
		}
		return conv
	default:
		return Conversion{Kind: KindStaticCast, RichType: rich, Source: arg}
	}
}

// String renders the C++ expression. Aggregate members go one per line,
// indented four spaces per nesting level.
func (c Conversion) String() string {
	switch c.Kind {
	case KindIdentity:
		return c.Source
	case KindAcquire:
		return c.RichType + "::Acquire(" + c.Source + ")"
	case KindStaticCast:
		return "static_cast<" + c.RichType + ">(" + c.Source + ")"
	case KindReinterpret:
		return "reinterpret_cast<" + c.RichType + " " + c.Annotation.String() + ">(" + c.Source + ")"
	}

	if len(c.Members) == 0 {
		return c.RichType + " {}"
	}
	lines := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		lines = append(lines, indent(m.Conversion.String()))
	}
	return c.RichType + " {\n" + strings.Join(lines, ",\n") + "\n}"
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}

// Leaf is one non-aggregate node of a conversion tree.
type Leaf struct {
	Path []string // member var names from the root aggregate
	Conversion
}

// Leaves flattens the tree in member order.
func (c Conversion) Leaves() []Leaf {
	var out []Leaf
	c.collect(nil, &out)
	return out
}

func (c Conversion) collect(path []string, out *[]Leaf) {
	if c.Kind != KindAggregate {
		*out = append(*out, Leaf{Path: append([]string(nil), path...), Conversion: c})
		return
	}
	for _, m := range c.Members {
		m.Conversion.collect(append(path, m.VarName), out)
	}
}

// RichToWire is the argument-passing inverse of WireToRich: it converts a
// wrapper-layer value arg back to the C ABI type cType. Objects pass their
// handle, structures by value are reinterpreted in place, and natives and
// callbacks pass through.
func RichToWire(t ir.Type, a ir.Annotation, arg, cType string) string {
	if !a.Valid() {
		ir.Violatef("RichToWire", t.TypeName().CanonicalCase(), "unknown annotation %v", a)
	}
	if a.IsPointer() {
		if t.Category() == ir.CategoryNative {
			return arg
		}
		return "reinterpret_cast<" + cType + " " + a.String() + ">(" + arg + ")"
	}
	switch t.Category() {
	case ir.CategoryObject:
		return arg + ".Get()"
	case ir.CategoryEnum, ir.CategoryBitmask:
		return "static_cast<" + cType + ">(" + arg + ")"
	case ir.CategoryStructure:
		return "*reinterpret_cast<" + cType + " const*>(&" + arg + ")"
	}
	return arg
}
