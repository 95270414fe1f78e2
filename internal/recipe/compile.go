package recipe

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/genesis/internal/element"
)

//go:embed schema.cue
var schemaCUE string

//go:embed recipes.cue
var recipesCUE string

// Entry is one authored rule: an unordered pair of input names and the
// definition it yields.
type Entry struct {
	Inputs [2]string
	Result element.Definition
	// Flavor overrides the default success text when set.
	Flavor string
}

// rawRecipe mirrors #Recipe for cue.Value.Decode.
type rawRecipe struct {
	Inputs []string `json:"inputs"`
	Result struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Emoji       string `json:"emoji"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Era         string `json:"era"`
	} `json:"result"`
	Flavor string `json:"flavor"`
}

// Compile parses CUE source holding a `recipes: [...]` list and returns
// its entries in authored order.
//
// The source is checked against the embedded schema: identifiers such as
// eras.genesis resolve against it, and every element of recipes must
// satisfy #Recipe. The filename is used only for error positions.
func Compile(filename string, src []byte) ([]Entry, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", formatCUEError(err))
	}

	v := ctx.CompileBytes(src, cue.Filename(filename), cue.Scope(schema))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	list := v.LookupPath(cue.ParsePath("recipes"))
	if !list.Exists() {
		return nil, &CompileError{
			Field:   "recipes",
			Message: "recipes list is required",
		}
	}

	iter, err := list.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var entries []Entry
	for iter.Next() {
		var raw rawRecipe
		if err := iter.Value().Decode(&raw); err != nil {
			return nil, formatCUEError(err)
		}
		if len(raw.Inputs) != 2 {
			return nil, &CompileError{
				Field:   fmt.Sprintf("recipes[%d].inputs", len(entries)),
				Message: "exactly two inputs are required",
				Pos:     iter.Value().Pos(),
			}
		}
		entries = append(entries, Entry{
			Inputs: [2]string{raw.Inputs[0], raw.Inputs[1]},
			Result: element.Definition{
				ID:          raw.Result.ID,
				Name:        raw.Result.Name,
				Emoji:       raw.Result.Emoji,
				Description: raw.Result.Description,
				Type:        element.Type(raw.Result.Type),
				Era:         element.Era(raw.Result.Era),
			},
			Flavor: raw.Flavor,
		})
	}

	return entries, nil
}

// CompileError is a compilation failure with its CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
