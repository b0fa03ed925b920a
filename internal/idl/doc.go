// Package idl loads an IDL document and builds the typed registry.
//
// Documents may be JSON, YAML or CUE. Every format is lowered to a CUE value
// and checked against the embedded shape schema before any Go type is built,
// so shape errors carry file positions. Keys starting with '_' are comments.
package idl
