package ir

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Name is a canonical multi-token identifier.
//
// Non-native names hold lower-case word tokens ("power", "preference"); every
// casing projection is a pure function of those tokens. Native names hold a
// single verbatim token (e.g. "uint32_t") that must pass through unmodified.
//
// The token slice is never exposed directly, so a Name is immutable once built.
type Name struct {
	chunks []string
	native bool
}

// NewName builds a non-native name from an IDL identifier.
//
// Tokens are split on spaces, '_' and '-', and at lower-to-upper camel humps,
// so "power preference", "power_preference" and "powerPreference" all produce
// the same Name. Tokens are NFC-normalized and lower-cased.
func NewName(s string) Name {
	var chunks []string
	for _, field := range strings.FieldsFunc(s, isSeparator) {
		for _, chunk := range splitHumps(field) {
			chunks = append(chunks, strings.ToLower(norm.NFC.String(chunk)))
		}
	}
	return Name{chunks: chunks}
}

// NewNativeName builds a native name. The identifier is kept as one token.
func NewNativeName(s string) Name {
	return Name{chunks: []string{norm.NFC.String(s)}, native: true}
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-'
}

// splitHumps splits "powerPreference" into "power", "Preference".
// A run of capitals is kept together ("HTTPServer" stays one token).
func splitHumps(s string) []string {
	var parts []string
	start := 0
	prev := rune(-1)
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			parts = append(parts, s[start:i])
			start = i
		}
		prev = r
	}
	return append(parts, s[start:])
}

// Native reports whether the name is a foreign/primitive symbol.
func (n Name) Native() bool { return n.native }

// Chunks returns a copy of the name's tokens.
func (n Name) Chunks() []string {
	out := make([]string, len(n.chunks))
	copy(out, n.chunks)
	return out
}

// IsEmpty reports whether the name has no tokens.
func (n Name) IsEmpty() bool { return len(n.chunks) == 0 }

// CanonicalCase joins tokens with a single space ("power preference").
func (n Name) CanonicalCase() string { return strings.Join(n.chunks, " ") }

// ConcatCase joins tokens with no separator and no case change.
func (n Name) ConcatCase() string { return strings.Join(n.chunks, "") }

// SnakeCase joins tokens with '_' ("power_preference").
func (n Name) SnakeCase() string { return strings.Join(n.chunks, "_") }

// ScreamingSnakeCase joins upper-cased tokens with '_' ("POWER_PREFERENCE").
func (n Name) ScreamingSnakeCase() string {
	upper := make([]string, len(n.chunks))
	for i, c := range n.chunks {
		upper[i] = strings.ToUpper(c)
	}
	return strings.Join(upper, "_")
}

// UpperCamel capitalizes every token ("PowerPreference").
func (n Name) UpperCamel() string {
	var b strings.Builder
	for _, c := range n.chunks {
		b.WriteString(capitalize(c))
	}
	return b.String()
}

// LowerCamel keeps the first token as is and capitalizes the rest ("powerPreference").
func (n Name) LowerCamel() string {
	if len(n.chunks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(n.chunks[0])
	for _, c := range n.chunks[1:] {
		b.WriteString(capitalize(c))
	}
	return b.String()
}

// JSEnumCase joins tokens with '-', except after a token ending in a digit
// ("high-performance", "float32", "2d-array").
func (n Name) JSEnumCase() string {
	if len(n.chunks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(n.chunks[0]))
	for _, c := range n.chunks[1:] {
		last, _ := utf8.DecodeLastRuneInString(b.String())
		if !unicode.IsDigit(last) {
			b.WriteByte('-')
		}
		b.WriteString(strings.ToLower(c))
	}
	return b.String()
}

// StartsWithDigit reports whether the first projected character is a digit.
func (n Name) StartsWithDigit() bool {
	r, _ := utf8.DecodeRuneInString(n.ConcatCase())
	return unicode.IsDigit(r)
}

// String returns the canonical case; handy in diagnostics.
func (n Name) String() string { return n.CanonicalCase() }

// Equal reports token-wise equality, including the native flag.
func (n Name) Equal(other Name) bool {
	if n.native != other.native || len(n.chunks) != len(other.chunks) {
		return false
	}
	for i := range n.chunks {
		if n.chunks[i] != other.chunks[i] {
			return false
		}
	}
	return true
}

// JoinVarName lower-camels the first name and upper-camels every following
// one: JoinVarName("graph builder", "build") == "graphBuilderBuild".
func JoinVarName(first Name, rest ...Name) string {
	var b strings.Builder
	b.WriteString(first.LowerCamel())
	for _, n := range rest {
		b.WriteString(n.UpperCamel())
	}
	return b.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
