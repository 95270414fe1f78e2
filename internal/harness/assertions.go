package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// evaluateAssertions checks every assertion against the final state and
// returns the messages of those that failed.
func evaluateAssertions(h *harness, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(h, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(h *harness, a Assertion) error {
	switch a.Type {
	case AssertLibraryContains:
		lib := h.engine.Library()
		var missing []string
		for _, name := range a.Names {
			if _, ok := lib.Lookup(name); !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return &AssertionError{
				Type:     a.Type,
				Expected: strings.Join(a.Names, ", "),
				Actual:   "missing " + strings.Join(missing, ", "),
			}
		}

	case AssertLibrarySize:
		return countError(a, h.engine.Library().Len())

	case AssertBoardSize:
		return countError(a, h.engine.Board().Len())

	case AssertCapabilityCalls:
		return countError(a, int(h.calls()))

	case AssertLogHead:
		log := h.engine.Log()
		if len(log) == 0 {
			return &AssertionError{Type: a.Type, Expected: a.Text, Actual: "empty log"}
		}
		head := log[0]
		if head.Text != a.Text || (a.Kind != "" && string(head.Kind) != a.Kind) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s %s", kindOrAny(a.Kind), a.Text),
				Actual:   fmt.Sprintf("%s %s", head.Kind, head.Text),
			}
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func countError(a Assertion, got int) error {
	if got == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d", a.Count),
		Actual:   fmt.Sprintf("%d", got),
	}
}

func kindOrAny(kind string) string {
	if kind == "" {
		return "*"
	}
	return kind
}
