// Package methods enumerates object methods, including the implicit
// reference-counting pair every object carries.
package methods

import (
	"cmp"
	"slices"

	"github.com/roach88/webnngen/internal/ir"
	"github.com/roach88/webnngen/internal/naming"
)

var (
	referenceName = ir.NewName("reference")
	releaseName   = ir.NewName("release")
)

// CMethods returns the IDL methods of obj followed by the implicit
// reference and release methods. obj is not modified.
func CMethods(reg *ir.Registry, obj *ir.ObjectType) []ir.Method {
	void := reg.Void()
	out := make([]ir.Method, 0, len(obj.Methods)+2)
	out = append(out, obj.Methods...)
	return append(out,
		ir.Method{Name: referenceName, ReturnType: void},
		ir.Method{Name: releaseName, ReturnType: void},
	)
}

// Entry is one (object, method) pair of the flattened listing.
type Entry struct {
	Type   *ir.ObjectType
	Method ir.Method
	Suffix string // naming.MethodSuffix of the pair
}

// SortedByName flattens every object's CMethods and sorts by method suffix.
// Equal suffixes fall back to the type's then the method's canonical name,
// so the order is total and reproducible.
func SortedByName(reg *ir.Registry) []Entry {
	var entries []Entry
	for _, obj := range reg.Objects() {
		for _, m := range CMethods(reg, obj) {
			entries = append(entries, Entry{
				Type:   obj,
				Method: m,
				Suffix: naming.MethodSuffix(obj.Name, m.Name),
			})
		}
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(a.Suffix, b.Suffix); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Type.Name.CanonicalCase(), b.Type.Name.CanonicalCase()); c != 0 {
			return c
		}
		return cmp.Compare(a.Method.Name.CanonicalCase(), b.Method.Name.CanonicalCase())
	})
	return entries
}

// HasCallbackArguments reports whether any argument of m is a callback.
func HasCallbackArguments(m ir.Method) bool {
	for _, arg := range m.Arguments {
		if arg.Type.Category() == ir.CategoryCallback {
			return true
		}
	}
	return false
}
