package harness

import (
	"fmt"
	"sort"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Output   string   // Output path the assertion targeted
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Outputs  []string // Every output that was rendered, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s on %s\n", e.Type, e.Output)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Outputs) > 0 {
		fmt.Fprintf(&buf, "\nRendered outputs:\n")
		for _, o := range e.Outputs {
			fmt.Fprintf(&buf, "  %s\n", o)
		}
	}

	return buf.String()
}

// CheckAssertions evaluates every assertion against outputs (output path ->
// rendered content) and returns one error per failed assertion.
func CheckAssertions(outputs map[string]string, assertions []Assertion) []error {
	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, a := range assertions {
		if err := checkAssertion(outputs, names, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func checkAssertion(outputs map[string]string, names []string, a Assertion) error {
	content, ok := outputs[a.Output]
	if !ok {
		return &AssertionError{
			Type:     a.Type,
			Output:   a.Output,
			Expected: "output to be rendered",
			Actual:   "output not rendered",
			Outputs:  names,
		}
	}

	switch a.Type {
	case AssertOutputExists:
		return nil
	case AssertOutputContains:
		if !strings.Contains(content, a.Text) {
			return &AssertionError{
				Type:     a.Type,
				Output:   a.Output,
				Expected: fmt.Sprintf("text %q", a.Text),
				Actual:   "not found",
			}
		}
	case AssertOutputAbsent:
		if strings.Contains(content, a.Text) {
			return &AssertionError{
				Type:     a.Type,
				Output:   a.Output,
				Expected: fmt.Sprintf("no text %q", a.Text),
				Actual:   fmt.Sprintf("found at offset %d", strings.Index(content, a.Text)),
			}
		}
	case AssertOutputCount:
		if n := strings.Count(content, a.Text); n != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Output:   a.Output,
				Expected: fmt.Sprintf("%d occurrences of %q", a.Count, a.Text),
				Actual:   fmt.Sprintf("%d occurrences", n),
			}
		}
	case AssertOutputOrder:
		return assertOutputOrder(content, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// assertOutputOrder checks that each text first appears after the previous
// one's first appearance. Texts need not be adjacent.
func assertOutputOrder(content string, a Assertion) error {
	prev := -1
	for i, text := range a.Texts {
		pos := strings.Index(content, text)
		if pos < 0 {
			return &AssertionError{
				Type:     a.Type,
				Output:   a.Output,
				Expected: fmt.Sprintf("all texts present: %q", a.Texts),
				Actual:   fmt.Sprintf("missing text: %q", text),
			}
		}
		if pos <= prev {
			return &AssertionError{
				Type:     a.Type,
				Output:   a.Output,
				Expected: fmt.Sprintf("texts in order: %q", a.Texts),
				Actual:   fmt.Sprintf("%q (offset %d) should be before %q (offset %d)", a.Texts[i-1], prev, text, pos),
			}
		}
		prev = pos
	}
	return nil
}
