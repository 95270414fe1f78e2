package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/genesis/internal/element"
	"github.com/roach88/genesis/internal/recipe"
)

// Capability is an optional generative collaborator that invents
// combinations the static table does not know.
//
// Implementations return the raw JSON object they received. The resolver
// validates it with ParseResponse; a capability never needs to trust its
// own transport.
type Capability interface {
	Combine(ctx context.Context, req Request) (json.RawMessage, error)
}

// CapabilityFunc adapts a function to Capability.
type CapabilityFunc func(ctx context.Context, req Request) (json.RawMessage, error)

// Combine calls f.
func (f CapabilityFunc) Combine(ctx context.Context, req Request) (json.RawMessage, error) {
	return f(ctx, req)
}

// Ingredient is what the capability learns about one input.
type Ingredient struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Request is one generative call.
type Request struct {
	A, B Ingredient
	// Preamble is the fixed rule text; see Preamble().
	Preamble string
	// SchemaName and Schema describe the contractual response shape.
	SchemaName string
	Schema     map[string]any
}

// UserPrompt renders the two ingredients as the user turn.
func (r Request) UserPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "元素A：%s", r.A.Name)
	if r.A.Description != "" {
		fmt.Fprintf(&b, "（%s）", r.A.Description)
	}
	fmt.Fprintf(&b, "\n元素B：%s", r.B.Name)
	if r.B.Description != "" {
		fmt.Fprintf(&b, "（%s）", r.B.Description)
	}
	b.WriteString("\n这两种元素结合会发生什么？")
	return b.String()
}

// Verdict is a validated capability response.
type Verdict struct {
	Success    bool
	FlavorText string
	// Element is set iff Success.
	Element *Candidate
}

// Candidate is the element a capability proposes. It has no id; the
// resolver mints one.
type Candidate struct {
	Name        string
	Emoji       string
	Description string
	Type        element.Type
}

type wireResponse struct {
	Success    *bool          `json:"success"`
	FlavorText *string        `json:"flavorText"`
	NewElement *wireCandidate `json:"newElement"`
}

type wireCandidate struct {
	Name        *string `json:"name"`
	Emoji       *string `json:"emoji"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
}

// ParseResponse validates a raw capability payload. Unknown fields,
// missing required fields, trailing data, a success without an element,
// and element types outside the enumeration are all rejected with a
// KindMalformed error.
func ParseResponse(raw []byte) (Verdict, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var wire wireResponse
	if err := dec.Decode(&wire); err != nil {
		return Verdict{}, &Error{Kind: KindMalformed, Message: "decode response", Err: err}
	}
	if dec.More() {
		return Verdict{}, malformed("trailing data after response object")
	}

	if wire.Success == nil {
		return Verdict{}, malformed("success is required")
	}
	if wire.FlavorText == nil || strings.TrimSpace(*wire.FlavorText) == "" {
		return Verdict{}, malformed("flavorText is required")
	}

	v := Verdict{
		Success:    *wire.Success,
		FlavorText: strings.TrimSpace(*wire.FlavorText),
	}
	if !v.Success {
		return v, nil
	}

	c := wire.NewElement
	if c == nil {
		return Verdict{}, malformed("newElement is required when success is true")
	}
	if c.Name == nil || element.NormalizeName(*c.Name) == "" {
		return Verdict{}, malformed("newElement.name is required")
	}
	if strings.Contains(*c.Name, recipe.Separator) {
		return Verdict{}, malformed("newElement.name %q contains %q", *c.Name, recipe.Separator)
	}
	if c.Emoji == nil || strings.TrimSpace(*c.Emoji) == "" {
		return Verdict{}, malformed("newElement.emoji is required")
	}
	if c.Description == nil {
		return Verdict{}, malformed("newElement.description is required")
	}
	if c.Type == nil || !element.Type(*c.Type).Valid() {
		got := "<missing>"
		if c.Type != nil {
			got = *c.Type
		}
		return Verdict{}, malformed("newElement.type %q is not an element type", got)
	}

	v.Element = &Candidate{
		Name:        strings.TrimSpace(*c.Name),
		Emoji:       strings.TrimSpace(*c.Emoji),
		Description: strings.TrimSpace(*c.Description),
		Type:        element.Type(*c.Type),
	}
	return v, nil
}
