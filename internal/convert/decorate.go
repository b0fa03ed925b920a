package convert

import (
	"github.com/roach88/webnngen/internal/ir"
)

// Decorate composes a declaration from a base type, a name and an annotation:
//
//	value        -> T name
//	*            -> T * name
//	const*       -> T const * name
//	const*const* -> const T* const * name
//
// Any other annotation is a contract violation.
func Decorate(name, typ string, a ir.Annotation) string {
	switch a {
	case ir.AnnotationValue:
		return typ + " " + name
	case ir.AnnotationPointer:
		return typ + " * " + name
	case ir.AnnotationConstPointer:
		return typ + " const * " + name
	case ir.AnnotationConstPointerConstPointer:
		return "const " + typ + "* const * " + name
	}
	ir.Violatef("Decorate", name, "unknown annotation %v", a)
	return ""
}

// Annotated decorates typ with the record's variable name and annotation.
func Annotated(typ string, r ir.Record) string {
	return Decorate(ir.JoinVarName(r.Name), typ, r.Annotation)
}
