package render

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/webnngen/internal/ir"
)

// BuiltinGoProcs is the template id of the Go bindings emitter.
const BuiltinGoProcs = "go/procs.go"

// EmitGoProcs writes a Go file exposing the C proc names in proc-table
// order plus every enum and bitmask as a typed constant set.
func EmitGoProcs(env *Env) ([]byte, error) {
	f := jen.NewFile(env.GoPackage)
	f.HeaderComment("Code generated by webnngen. DO NOT EDIT.")

	f.Comment("ProcNames lists every exported C entry point in proc-table order.")
	f.Var().Id("ProcNames").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, e := range env.SortedMethods {
			g.Line().Lit(env.Primary.CMethod(e.Type.Name, e.Method.Name))
		}
		g.Line()
	})

	f.Comment("ProcIndex returns the position of name in ProcNames.")
	f.Func().Id("ProcIndex").Params(jen.Id("name").String()).Params(jen.Int(), jen.Bool()).Block(
		jen.For(jen.List(jen.Id("i"), jen.Id("n")).Op(":=").Range().Id("ProcNames")).Block(
			jen.If(jen.Id("n").Op("==").Id("name")).Block(
				jen.Return(jen.Id("i"), jen.True()),
			),
		),
		jen.Return(jen.Lit(-1), jen.False()),
	)

	for _, view := range env.EnumsAndBitmasks() {
		emitEnum(f, view)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering Go bindings: %w", err)
	}
	return buf.Bytes(), nil
}

func emitEnum(f *jen.File, view EnumView) {
	typeName := view.Name.UpperCamel()
	kind := "enum"
	if view.IsBitmask {
		kind = "bitmask"
	}

	f.Commentf("%s mirrors the %s %s.", typeName, ir.JoinVarName(view.Name), kind)
	f.Type().Id(typeName).Uint32()

	f.Const().DefsFunc(func(g *jen.Group) {
		for _, v := range view.Values {
			g.Id(typeName + v.Name.UpperCamel()).Id(typeName).Op("=").Lit(int(v.Value))
		}
	})

	if view.IsBitmask {
		f.Comment("Has reports whether every bit of flag is set in m.")
		f.Func().Params(jen.Id("m").Id(typeName)).Id("Has").Params(jen.Id("flag").Id(typeName)).Bool().Block(
			jen.Return(jen.Id("m").Op("&").Id("flag").Op("==").Id("flag")),
		)
	}
}
