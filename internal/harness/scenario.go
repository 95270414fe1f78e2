package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Recipes lists extra CUE recipe files loaded after the built-in
	// table. Paths are relative to the scenario file.
	Recipes []string `yaml:"recipes,omitempty"`

	// Capability scripts the generative collaborator. Absent means the
	// resolver runs static-only.
	Capability *Capability `yaml:"capability,omitempty"`

	// Steps run in order against one engine.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Capability is a scripted generative collaborator.
type Capability struct {
	Replies []Reply `yaml:"replies"`
}

// Reply answers one unordered pair. Exactly one of Response and Error is
// set: Response is the raw JSON the capability returns, Error makes the
// call fail as a transport error.
type Reply struct {
	Pair     [2]string `yaml:"pair"`
	Response string    `yaml:"response,omitempty"`
	Error    string    `yaml:"error,omitempty"`
}

// Step operations.
const (
	OpSpawn   = "spawn"
	OpCombine = "combine"
	OpMove    = "move"
	OpRemove  = "remove"
	OpClear   = "clear"
	OpReset   = "reset"
	OpResolve = "resolve"
)

// Step is one action.
type Step struct {
	Op string `yaml:"op"`

	// Name is the element to spawn.
	Name string `yaml:"name,omitempty"`
	// As names the instance a spawn or a successful combine places.
	As string `yaml:"as,omitempty"`

	// Source is the element dropped by combine.
	Source string `yaml:"source,omitempty"`
	// SourceInstance names the board instance being dragged, if any.
	SourceInstance string `yaml:"source_instance,omitempty"`
	// Target names the instance dropped on by combine.
	Target string `yaml:"target,omitempty"`

	// Instance names the instance for move and remove.
	Instance string `yaml:"instance,omitempty"`

	X float64 `yaml:"x,omitempty"`
	Y float64 `yaml:"y,omitempty"`

	// A and B are the resolve inputs.
	A string `yaml:"a,omitempty"`
	B string `yaml:"b,omitempty"`

	// Expect is the combine status or resolve outcome.
	Expect string `yaml:"expect,omitempty"`
	// Result is the expected result element name.
	Result string `yaml:"result,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Names are the element names library_contains looks for.
	Names []string `yaml:"names,omitempty"`

	// Count is the expected size or call count.
	Count int `yaml:"count,omitempty"`

	// Text is the expected newest log text (log_head).
	Text string `yaml:"text,omitempty"`
	// Kind is the expected newest log kind (log_head, optional).
	Kind string `yaml:"kind,omitempty"`
}

// Assertion type constants.
const (
	AssertLibraryContains = "library_contains"
	AssertLibrarySize     = "library_size"
	AssertBoardSize       = "board_size"
	AssertLogHead         = "log_head"
	AssertCapabilityCalls = "capability_calls"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Recipe paths are resolved relative to the file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, p := range scenario.Recipes {
		if !filepath.IsAbs(p) {
			scenario.Recipes[i] = filepath.Join(base, p)
		}
	}
	for _, p := range scenario.Recipes {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: recipe file not found: %s", p)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Capability != nil {
		for i, r := range s.Capability.Replies {
			if r.Pair[0] == "" || r.Pair[1] == "" {
				return fmt.Errorf("capability.replies[%d]: pair needs two names", i)
			}
			if (r.Response == "") == (r.Error == "") {
				return fmt.Errorf("capability.replies[%d]: exactly one of response and error is required", i)
			}
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st Step) error {
	switch st.Op {
	case OpSpawn:
		if st.Name == "" {
			return fmt.Errorf("steps[%d]: name is required for spawn", index)
		}
	case OpCombine:
		if st.Source == "" || st.Target == "" {
			return fmt.Errorf("steps[%d]: source and target are required for combine", index)
		}
	case OpMove, OpRemove:
		if st.Instance == "" {
			return fmt.Errorf("steps[%d]: instance is required for %s", index, st.Op)
		}
	case OpResolve:
		if st.A == "" || st.B == "" {
			return fmt.Errorf("steps[%d]: a and b are required for resolve", index)
		}
	case OpClear, OpReset:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertLibraryContains:
		if len(a.Names) == 0 {
			return fmt.Errorf("assertions[%d]: names list is required for library_contains", index)
		}
	case AssertLibrarySize, AssertBoardSize, AssertCapabilityCalls:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertLogHead:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for log_head", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
