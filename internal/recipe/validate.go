package recipe

import (
	"fmt"
	"strings"

	"github.com/roach88/genesis/internal/element"
)

// Validation error codes (E200-E299)
const (
	ErrEmptyInputName  = "E201" // input name is empty after normalization
	ErrSeparatorInName = "E202" // a name contains the pair key separator
	ErrUnknownType     = "E203" // result type outside the enumeration
	ErrUnknownEra      = "E204" // result era set but not one of the ten eras
	ErrEmptyResult     = "E205" // result id or name missing
	ErrDuplicatePair   = "E206" // a later rule overrides an earlier one
)

// ValidationError describes one problem with an authored entry.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Index   int    `json:"index"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] recipes[%d].%s: %s", e.Code, e.Index, e.Field, e.Message)
}

// Validate checks entries and returns every problem found. Collisions are
// reported with ErrDuplicatePair; callers that accept intentional
// alternate paths should filter that code out.
func Validate(entries []Entry) []ValidationError {
	var errs []ValidationError

	for i, entry := range entries {
		for j, input := range entry.Inputs {
			field := fmt.Sprintf("inputs[%d]", j)
			if element.NormalizeName(input) == "" {
				errs = append(errs, ValidationError{
					Code:    ErrEmptyInputName,
					Field:   field,
					Message: "input name is required",
					Index:   i,
				})
			}
			if strings.Contains(input, Separator) {
				errs = append(errs, ValidationError{
					Code:    ErrSeparatorInName,
					Field:   field,
					Message: fmt.Sprintf("name %q contains %q", input, Separator),
					Index:   i,
				})
			}
		}

		res := entry.Result
		if strings.TrimSpace(res.ID) == "" || element.NormalizeName(res.Name) == "" {
			errs = append(errs, ValidationError{
				Code:    ErrEmptyResult,
				Field:   "result",
				Message: "result id and name are required",
				Index:   i,
			})
		}
		if strings.Contains(res.Name, Separator) {
			errs = append(errs, ValidationError{
				Code:    ErrSeparatorInName,
				Field:   "result.name",
				Message: fmt.Sprintf("name %q contains %q", res.Name, Separator),
				Index:   i,
			})
		}
		if !res.Type.Valid() {
			errs = append(errs, ValidationError{
				Code:    ErrUnknownType,
				Field:   "result.type",
				Message: fmt.Sprintf("unknown type %q", res.Type),
				Index:   i,
			})
		}
		if res.Era != "" && !res.Era.Valid() {
			errs = append(errs, ValidationError{
				Code:    ErrUnknownEra,
				Field:   "result.era",
				Message: fmt.Sprintf("unknown era %q", res.Era),
				Index:   i,
			})
		}
	}

	for _, c := range Collisions(entries) {
		msg := fmt.Sprintf("pair %s already defined by recipes[%d] (%s); %s wins",
			c.Key, c.Earlier, entries[c.Earlier].Result.Name, entries[c.Later].Result.Name)
		errs = append(errs, ValidationError{
			Code:    ErrDuplicatePair,
			Field:   "inputs",
			Message: msg,
			Index:   c.Later,
		})
	}

	return errs
}

// Collision records two entries that share an unordered pair.
type Collision struct {
	Key     string
	Earlier int
	Later   int
}

// Collisions lists every entry that overrides an earlier one, in authored
// order.
func Collisions(entries []Entry) []Collision {
	var out []Collision
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		key := PairKey(entry.Inputs[0], entry.Inputs[1])
		if prev, ok := seen[key]; ok {
			out = append(out, Collision{Key: key, Earlier: prev, Later: i})
		}
		seen[key] = i
	}
	return out
}
