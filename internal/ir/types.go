package ir

import "fmt"

// Category is the closed set of IDL type variants.
type Category int

const (
	CategoryNative Category = iota
	CategoryObject
	CategoryEnum
	CategoryBitmask
	CategoryStructure
	CategoryCallback
)

var categoryNames = [...]string{
	CategoryNative:    "native",
	CategoryObject:    "object",
	CategoryEnum:      "enum",
	CategoryBitmask:   "bitmask",
	CategoryStructure: "structure",
	CategoryCallback:  "callback",
}

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryNative,
	CategoryObject,
	CategoryEnum,
	CategoryBitmask,
	CategoryStructure,
	CategoryCallback,
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory maps the IDL spelling to a Category.
func ParseCategory(s string) (Category, bool) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), true
		}
	}
	return 0, false
}

// Annotation constrains how a record is passed: by value or through one of
// the pointer forms.
type Annotation int

const (
	AnnotationValue                    Annotation = iota // T name
	AnnotationPointer                                    // T * name
	AnnotationConstPointer                               // T const * name
	AnnotationConstPointerConstPointer                   // const T* const * name
)

var annotationNames = [...]string{
	AnnotationValue:                    "value",
	AnnotationPointer:                  "*",
	AnnotationConstPointer:             "const*",
	AnnotationConstPointerConstPointer: "const*const*",
}

// String returns the IDL spelling ("value", "*", "const*", "const*const*").
func (a Annotation) String() string {
	if a >= 0 && int(a) < len(annotationNames) {
		return annotationNames[a]
	}
	return fmt.Sprintf("Annotation(%d)", int(a))
}

// Valid reports whether a is one of the four known annotations.
func (a Annotation) Valid() bool {
	return a >= 0 && int(a) < len(annotationNames)
}

// IsPointer reports whether a is any of the pointer forms.
func (a Annotation) IsPointer() bool {
	return a.Valid() && a != AnnotationValue
}

// ParseAnnotation maps the IDL spelling to an Annotation.
// The empty string means "value".
func ParseAnnotation(s string) (Annotation, bool) {
	if s == "" {
		return AnnotationValue, true
	}
	for i, name := range annotationNames {
		if name == s {
			return Annotation(i), true
		}
	}
	return 0, false
}

// Type is a sealed sum type over the six IDL categories. Only the types in
// this file implement it; switch on the concrete type to dispatch.
type Type interface {
	TypeName() Name
	Category() Category
	sealed()
}

// NativeType is a foreign/primitive type such as "uint32_t" or "void".
type NativeType struct {
	Name Name
}

// ObjectType is a reference-counted handle with methods.
type ObjectType struct {
	Name    Name
	Methods []Method
}

// EnumType is a closed set of named values.
type EnumType struct {
	Name   Name
	Values []EnumValue
}

// BitmaskType is a set of combinable flag values.
type BitmaskType struct {
	Name   Name
	Values []EnumValue
}

// StructureType is a plain aggregate. Member order is declaration order.
type StructureType struct {
	Name       Name
	Members    []Record
	Extensible bool
	Chained    bool
}

// CallbackType is a function-pointer type.
type CallbackType struct {
	Name      Name
	Arguments []Record
}

func (t *NativeType) TypeName() Name    { return t.Name }
func (t *ObjectType) TypeName() Name    { return t.Name }
func (t *EnumType) TypeName() Name      { return t.Name }
func (t *BitmaskType) TypeName() Name   { return t.Name }
func (t *StructureType) TypeName() Name { return t.Name }
func (t *CallbackType) TypeName() Name  { return t.Name }

func (*NativeType) Category() Category    { return CategoryNative }
func (*ObjectType) Category() Category    { return CategoryObject }
func (*EnumType) Category() Category      { return CategoryEnum }
func (*BitmaskType) Category() Category   { return CategoryBitmask }
func (*StructureType) Category() Category { return CategoryStructure }
func (*CallbackType) Category() Category  { return CategoryCallback }

func (*NativeType) sealed()    {}
func (*ObjectType) sealed()    {}
func (*EnumType) sealed()      {}
func (*BitmaskType) sealed()   {}
func (*StructureType) sealed() {}
func (*CallbackType) sealed()  {}

// Record is a named, typed, annotated slot: a method or callback argument,
// or a structure member.
type Record struct {
	Name       Name
	Type       Type
	Annotation Annotation
	Optional   bool
	Default    string
	HasDefault bool
	Length     string // name of the sibling member holding the element count, if any
}

// Method belongs to exactly one ObjectType.
type Method struct {
	Name       Name
	ReturnType Type
	Arguments  []Record
}

// ReturnsVoid reports whether the method returns the native "void" type.
func (m Method) ReturnsVoid() bool {
	rt := m.ReturnType
	return rt == nil || (rt.Category() == CategoryNative && rt.TypeName().ConcatCase() == "void")
}

// EnumValue is one named value of an enum or bitmask.
type EnumValue struct {
	Name   Name
	Value  uint32
	JSRepr string // literal override for the JavaScript representation
}
