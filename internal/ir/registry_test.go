package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRegistry() *Registry {
	return NewRegistry(map[string]Type{
		"void":             &NativeType{Name: NewNativeName("void")},
		"uint32_t":         &NativeType{Name: NewNativeName("uint32_t")},
		"graph builder":    &ObjectType{Name: NewName("graph builder")},
		"graph":            &ObjectType{Name: NewName("graph")},
		"context":          &ObjectType{Name: NewName("context")},
		"power preference": &EnumType{Name: NewName("power preference")},
		"operand type":     &EnumType{Name: NewName("operand type")},
		"input":            &StructureType{Name: NewName("input")},
		"error callback":   &CallbackType{Name: NewName("error callback")},
	})
}

func TestRegistryListingOrder(t *testing.T) {
	reg := sampleRegistry()

	var names []string
	for _, o := range reg.Objects() {
		names = append(names, o.Name.CanonicalCase())
	}
	assert.Equal(t, []string{"context", "graph", "graph builder"}, names)

	names = nil
	for _, e := range reg.Enums() {
		names = append(names, e.Name.CanonicalCase())
	}
	assert.Equal(t, []string{"operand type", "power preference"}, names)

	assert.Len(t, reg.Structures(), 1)
	assert.Len(t, reg.Callbacks(), 1)
	assert.Len(t, reg.Natives(), 2)
	assert.Empty(t, reg.Bitmasks())
	assert.Equal(t, 9, reg.Len())
}

func TestRegistryOrderIsStableAcrossBuilds(t *testing.T) {
	first := sampleRegistry().Keys()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, sampleRegistry().Keys())
	}
}

func TestRegistryAccessorsReturnCopies(t *testing.T) {
	reg := sampleRegistry()

	keys := reg.Keys()
	keys[0] = "mutated"
	assert.NotEqual(t, "mutated", reg.Keys()[0])

	objs := reg.ByCategory(CategoryObject)
	objs[0] = nil
	assert.NotNil(t, reg.ByCategory(CategoryObject)[0])
}

func TestRegistryLookupAndVoid(t *testing.T) {
	reg := sampleRegistry()

	typ, ok := reg.Lookup("graph")
	require.True(t, ok)
	assert.Equal(t, CategoryObject, typ.Category())

	_, ok = reg.Lookup("tensor")
	assert.False(t, ok)

	assert.Equal(t, "void", reg.Void().TypeName().ConcatCase())
}

func TestRegistryVoidMissingIsContractViolation(t *testing.T) {
	reg := NewRegistry(map[string]Type{
		"graph": &ObjectType{Name: NewName("graph")},
	})

	cv := recoverViolation(t, func() { reg.Void() })
	assert.Equal(t, "Registry.Void", cv.Op)
	assert.Equal(t, VoidKey, cv.Symbol)
	assert.Contains(t, cv.Error(), `registry has no native "void" type`)
}
