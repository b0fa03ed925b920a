package idl

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/webnngen/internal/ir"
)

//go:embed schema.cue
var schemaSource string

// Format is the on-disk encoding of an IDL document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatCUE
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatCUE:
		return "cue"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	}
	return 0, &LoadError{
		Field:   "path",
		Message: fmt.Sprintf("unsupported IDL extension %q (want .json, .yaml, .yml or .cue)", filepath.Ext(path)),
	}
}

// LoadError is a user-facing problem with an IDL document.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile reads and parses the IDL document at path.
func LoadFile(path string) (*ir.Registry, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading IDL %s", path)
	}
	return Parse(path, format, data)
}

// Parse decodes data, checks it against the shape schema and builds the
// registry. filename is used for positions only.
func Parse(filename string, format Format, data []byte) (*ir.Registry, error) {
	ctx := cuecontext.New()

	v, err := decode(ctx, filename, format, data)
	if err != nil {
		return nil, err
	}

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, errors.Wrap(err, "compiling IDL schema")
	}
	unified := schema.LookupPath(cue.ParsePath("#IDL")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	raw, err := lower(v)
	if err != nil {
		return nil, err
	}
	return build(v, raw)
}

func decode(ctx *cue.Context, filename string, format Format, data []byte) (cue.Value, error) {
	var v cue.Value
	switch format {
	case FormatJSON:
		expr, err := cuejson.Extract(filename, data)
		if err != nil {
			return cue.Value{}, formatCUEError(err)
		}
		v = ctx.BuildExpr(expr, cue.Filename(filename))
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return cue.Value{}, &LoadError{Field: "yaml", Message: err.Error()}
		}
		if doc == nil {
			doc = map[string]any{}
		}
		v = ctx.Encode(doc)
	case FormatCUE:
		v = ctx.CompileBytes(data, cue.Filename(filename))
	default:
		return cue.Value{}, errors.AssertionFailedf("unknown IDL format %v", format)
	}
	if err := v.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return v, nil
}

// Wire shapes of the document, decoded after schema validation.
type (
	rawType struct {
		Category   string      `json:"category"`
		Methods    []rawMethod `json:"methods"`
		Values     []rawValue  `json:"values"`
		Members    []rawRecord `json:"members"`
		Args       []rawRecord `json:"args"`
		Extensible bool        `json:"extensible"`
		Chained    bool        `json:"chained"`
	}
	rawMethod struct {
		Name    string      `json:"name"`
		Returns string      `json:"returns"`
		Args    []rawRecord `json:"args"`
	}
	rawRecord struct {
		Name       string `json:"name"`
		Type       string `json:"type"`
		Annotation string `json:"annotation"`
		Optional   bool   `json:"optional"`
		Default    any    `json:"default"`
		Length     string `json:"length"`
	}
	rawValue struct {
		Name   string      `json:"name"`
		Value  json.Number `json:"value"`
		JSRepr string      `json:"jsrepr"`
	}
)

// lower turns the validated CUE value into wire shapes.
func lower(v cue.Value) (map[string]rawType, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, errors.Wrap(err, "lowering IDL document")
	}

	out := make(map[string]rawType, len(all))
	for key, msg := range all {
		if isComment(key) {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		var t rawType
		if err := dec.Decode(&t); err != nil {
			return nil, errors.Wrapf(err, "lowering IDL type %q", key)
		}
		out[key] = t
	}
	return out, nil
}

func isComment(key string) bool {
	return strings.HasPrefix(key, "_")
}

// builder resolves names to types in two passes: shells first, then bodies,
// so declarations may reference each other in any order.
type builder struct {
	doc   cue.Value
	types map[string]ir.Type
}

func build(doc cue.Value, raw map[string]rawType) (*ir.Registry, error) {
	b := &builder{doc: doc, types: make(map[string]ir.Type, len(raw)+1)}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		t, err := b.shell(key, raw[key].Category)
		if err != nil {
			return nil, err
		}
		b.types[key] = t
	}
	if _, ok := b.types[ir.VoidKey]; !ok {
		b.types[ir.VoidKey] = &ir.NativeType{Name: ir.NewNativeName(ir.VoidKey)}
	}

	for _, key := range keys {
		if err := b.fill(key, raw[key]); err != nil {
			return nil, err
		}
	}
	if err := b.checkValueCycles(); err != nil {
		return nil, err
	}
	return ir.NewRegistry(b.types), nil
}

func (b *builder) shell(key, category string) (ir.Type, error) {
	c, ok := ir.ParseCategory(category)
	if !ok {
		return nil, b.errorf(key, "category", "unknown category %q", category)
	}
	switch c {
	case ir.CategoryNative:
		return &ir.NativeType{Name: ir.NewNativeName(key)}, nil
	case ir.CategoryObject:
		return &ir.ObjectType{Name: ir.NewName(key)}, nil
	case ir.CategoryEnum:
		return &ir.EnumType{Name: ir.NewName(key)}, nil
	case ir.CategoryBitmask:
		return &ir.BitmaskType{Name: ir.NewName(key)}, nil
	case ir.CategoryStructure:
		return &ir.StructureType{Name: ir.NewName(key)}, nil
	case ir.CategoryCallback:
		return &ir.CallbackType{Name: ir.NewName(key)}, nil
	}
	return nil, errors.AssertionFailedf("unhandled category %v", c)
}

func (b *builder) fill(key string, rt rawType) error {
	var err error
	switch t := b.types[key].(type) {
	case *ir.NativeType:
	case *ir.ObjectType:
		t.Methods, err = b.methods(key, rt.Methods)
	case *ir.EnumType:
		t.Values, err = b.values(key, rt.Values)
	case *ir.BitmaskType:
		t.Values, err = b.values(key, rt.Values)
	case *ir.StructureType:
		t.Extensible = rt.Extensible
		t.Chained = rt.Chained
		t.Members, err = b.records(key, "members", rt.Members)
	case *ir.CallbackType:
		t.Arguments, err = b.records(key, "args", rt.Args)
	}
	return err
}

func (b *builder) methods(key string, raw []rawMethod) ([]ir.Method, error) {
	out := make([]ir.Method, 0, len(raw))
	for i, rm := range raw {
		ret := ir.VoidKey
		if rm.Returns != "" {
			ret = rm.Returns
		}
		rt, ok := b.types[ret]
		if !ok {
			return nil, b.errorf(key, fmt.Sprintf("methods[%d].returns", i), "unknown type %q", ret)
		}
		args, err := b.records(key, fmt.Sprintf("methods[%d].args", i), rm.Args)
		if err != nil {
			return nil, err
		}
		out = append(out, ir.Method{
			Name:       ir.NewName(rm.Name),
			ReturnType: rt,
			Arguments:  args,
		})
	}
	return out, nil
}

func (b *builder) records(key, field string, raw []rawRecord) ([]ir.Record, error) {
	out := make([]ir.Record, 0, len(raw))
	for i, rr := range raw {
		where := fmt.Sprintf("%s[%d]", field, i)
		t, ok := b.types[rr.Type]
		if !ok {
			return nil, b.errorf(key, where+".type", "unknown type %q", rr.Type)
		}
		a, ok := ir.ParseAnnotation(rr.Annotation)
		if !ok {
			return nil, b.errorf(key, where+".annotation", "unknown annotation %q", rr.Annotation)
		}
		rec := ir.Record{
			Name:       ir.NewName(rr.Name),
			Type:       t,
			Annotation: a,
			Optional:   rr.Optional,
			Length:     rr.Length,
		}
		if rr.Default != nil {
			rec.Default = formatDefault(rr.Default)
			rec.HasDefault = true
		}
		out = append(out, rec)
	}
	return out, nil
}

func (b *builder) values(key string, raw []rawValue) ([]ir.EnumValue, error) {
	out := make([]ir.EnumValue, 0, len(raw))
	for i, rv := range raw {
		n, err := rv.Value.Int64()
		if err != nil || n < 0 || n > 0xFFFFFFFF {
			return nil, b.errorf(key, fmt.Sprintf("values[%d].value", i), "value %q is not a uint32", rv.Value)
		}
		out = append(out, ir.EnumValue{
			Name:   ir.NewName(rv.Name),
			Value:  uint32(n),
			JSRepr: rv.JSRepr,
		})
	}
	return out, nil
}

func formatDefault(v any) string {
	switch d := v.(type) {
	case string:
		return d
	case json.Number:
		return d.String()
	case bool:
		if d {
			return "true"
		}
		return "false"
	}
	return fmt.Sprint(v)
}

// errorf builds a LoadError positioned at the type's declaration.
func (b *builder) errorf(key, field, format string, args ...any) error {
	return &LoadError{
		Field:   fmt.Sprintf("%s.%s", key, field),
		Message: fmt.Sprintf(format, args...),
		Pos:     b.doc.LookupPath(cue.MakePath(cue.Str(key))).Pos(),
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Field: "cue", Message: err.Error()}
	}

	first := errs[0]
	le := &LoadError{Field: "cue", Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
