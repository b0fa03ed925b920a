package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/webnngen/internal/ir"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// AssertGoldenJSON compares the canonical JSON form of v against
// testdata/golden/{name}.golden. v must be accepted by ir.MarshalCanonical.
//
// To regenerate golden files, run:
//
//	go test ./internal/... -update
func AssertGoldenJSON(t *testing.T, name string, v any) {
	t.Helper()

	data, err := ir.MarshalCanonical(v)
	if err != nil {
		t.Fatalf("canonical JSON for golden %s: %v", name, err)
	}
	newGoldie(t).Assert(t, name, data)
}

// AssertGoldenText compares raw bytes against testdata/golden/{name}.golden.
func AssertGoldenText(t *testing.T, name string, data []byte) {
	t.Helper()
	newGoldie(t).Assert(t, name, data)
}
