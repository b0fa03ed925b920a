// Package ir provides the typed in-memory model of an IDL document.
//
// This package contains the data model only. Every other internal package
// imports ir; ir imports nothing internal.
//
// Key design constraints:
//   - Name tokens are immutable; every casing projection is a pure function
//   - Type is a sealed sum type over {native, object, enum, bitmask,
//     structure, callback}; dispatch is an exhaustive type switch
//   - Registry listings are sorted explicitly, never by map iteration
//   - Misuse that only a malformed IDL can cause panics with
//     *ContractViolation instead of returning an error
//   - Canonical JSON (RFC 8785 style) is the only input to fingerprints
package ir
