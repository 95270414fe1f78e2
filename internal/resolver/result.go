package resolver

import (
	"fmt"

	"github.com/roach88/genesis/internal/element"
)

// Fixed flavor texts.
const (
	FlavorStaticSuccess  = "合成路径匹配成功。新物质已生成。"
	FlavorNoReaction     = "这两种物质无法产生反应。"
	FlavorSynthesisError = "合成过程中发生异常，反应未能完成。"
)

// Outcome tags a Result.
type Outcome int

const (
	// OutcomeSuccess means Element holds the produced definition.
	OutcomeSuccess Outcome = iota + 1
	// OutcomeNoReaction means the pair does not combine.
	OutcomeNoReaction
	// OutcomeSynthesisError means the generative capability could not give
	// an answer. Err holds the cause.
	OutcomeSynthesisError
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoReaction:
		return "no_reaction"
	case OutcomeSynthesisError:
		return "synthesis_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText renders the outcome name in JSON output.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Source records which path produced a Result.
type Source string

const (
	SourceStatic     Source = "static"
	SourceCache      Source = "cache"
	SourceGenerative Source = "generative"
	SourceNone       Source = "none"
)

// Result is the answer to one resolution.
type Result struct {
	Outcome    Outcome             `json:"outcome"`
	Element    *element.Definition `json:"element,omitempty"`
	FlavorText string              `json:"flavorText"`
	Source     Source              `json:"source"`
	Err        error               `json:"-"`
}

// Success reports whether the pair produced an element.
func (r Result) Success() bool {
	return r.Outcome == OutcomeSuccess && r.Element != nil
}

// clone copies the definition so cached results never alias caller data.
func (r Result) clone() Result {
	if r.Element != nil {
		def := *r.Element
		r.Element = &def
	}
	return r
}

func noReaction(source Source, flavor string) Result {
	if flavor == "" {
		flavor = FlavorNoReaction
	}
	return Result{Outcome: OutcomeNoReaction, FlavorText: flavor, Source: source}
}

func synthesisError(err error) Result {
	return Result{
		Outcome:    OutcomeSynthesisError,
		FlavorText: FlavorSynthesisError,
		Source:     SourceGenerative,
		Err:        err,
	}
}
