package ir

import (
	"cmp"
	"slices"
)

// VoidKey is the registry key of the native "no value" type.
const VoidKey = "void"

// Registry maps IDL symbol names to types. It is built once by the parser and
// read-only afterwards; every accessor returns a fresh slice.
type Registry struct {
	types      map[string]Type
	keys       []string
	byCategory map[Category][]Type
}

// NewRegistry indexes types by key. Per-category listings are sorted by the
// type name's canonical case, with the registry key as tie-break, so listing
// order never depends on map iteration.
func NewRegistry(types map[string]Type) *Registry {
	r := &Registry{
		types:      make(map[string]Type, len(types)),
		byCategory: make(map[Category][]Type),
	}
	for key, t := range types {
		r.types[key] = t
		r.keys = append(r.keys, key)
	}
	slices.SortFunc(r.keys, func(a, b string) int {
		if c := cmp.Compare(r.types[a].TypeName().CanonicalCase(), r.types[b].TypeName().CanonicalCase()); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	for _, key := range r.keys {
		t := r.types[key]
		r.byCategory[t.Category()] = append(r.byCategory[t.Category()], t)
	}
	return r
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.types) }

// Keys returns every symbol name in listing order.
func (r *Registry) Keys() []string { return slices.Clone(r.keys) }

// Lookup returns the type registered under key.
func (r *Registry) Lookup(key string) (Type, bool) {
	t, ok := r.types[key]
	return t, ok
}

// Void returns the native "void" type. The parser guarantees it exists.
func (r *Registry) Void() Type {
	t, ok := r.types[VoidKey]
	if !ok || t.Category() != CategoryNative {
		Violatef("Registry.Void", VoidKey, "registry has no native %q type", VoidKey)
	}
	return t
}

// ByCategory returns every type of category c in listing order.
func (r *Registry) ByCategory(c Category) []Type {
	return slices.Clone(r.byCategory[c])
}

// Objects returns every object type in listing order.
func (r *Registry) Objects() []*ObjectType { return collect[*ObjectType](r, CategoryObject) }

// Enums returns every enum type in listing order.
func (r *Registry) Enums() []*EnumType { return collect[*EnumType](r, CategoryEnum) }

// Bitmasks returns every bitmask type in listing order.
func (r *Registry) Bitmasks() []*BitmaskType { return collect[*BitmaskType](r, CategoryBitmask) }

// Structures returns every structure type in listing order.
func (r *Registry) Structures() []*StructureType {
	return collect[*StructureType](r, CategoryStructure)
}

// Callbacks returns every callback type in listing order.
func (r *Registry) Callbacks() []*CallbackType { return collect[*CallbackType](r, CategoryCallback) }

// Natives returns every native type in listing order.
func (r *Registry) Natives() []*NativeType { return collect[*NativeType](r, CategoryNative) }

func collect[T Type](r *Registry, c Category) []T {
	src := r.byCategory[c]
	out := make([]T, 0, len(src))
	for _, t := range src {
		out = append(out, t.(T))
	}
	return out
}
