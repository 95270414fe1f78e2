package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/genesis/internal/element"
	"github.com/roach88/genesis/internal/recipe"
)

// RecipeView is one effective rule of the recipe table.
type RecipeView struct {
	Key    string             `json:"key"`
	Inputs [2]string          `json:"inputs"`
	Result element.Definition `json:"result"`
	Flavor string             `json:"flavor,omitempty"`
}

// RecipeListView is the output of recipes list.
type RecipeListView struct {
	Recipes []RecipeView `json:"recipes"`
}

func (v RecipeListView) String() string {
	lines := make([]string, 0, len(v.Recipes)+1)
	for _, r := range v.Recipes {
		lines = append(lines, fmt.Sprintf("%s => %s (%s)", r.Key, label(r.Result), r.Result.Era))
	}
	lines = append(lines, fmt.Sprintf("%d recipes", len(v.Recipes)))
	return strings.Join(lines, "\n")
}

// RecipeValidationView is the output of recipes validate.
type RecipeValidationView struct {
	Valid    bool                     `json:"valid"`
	Entries  int                      `json:"entries"`
	Errors   []recipe.ValidationError `json:"errors,omitempty"`
	Warnings []recipe.ValidationError `json:"warnings,omitempty"`
}

func (v RecipeValidationView) String() string {
	var lines []string
	for _, e := range v.Errors {
		lines = append(lines, "error: "+e.Error())
	}
	for _, w := range v.Warnings {
		lines = append(lines, "warning: "+w.Error())
	}
	if v.Valid {
		lines = append(lines, fmt.Sprintf("✓ %d recipes valid", v.Entries))
	} else {
		lines = append(lines, fmt.Sprintf("✗ %d error(s) in %d recipes", len(v.Errors), v.Entries))
	}
	return strings.Join(lines, "\n")
}

// ReachView is the output of recipes reach.
type ReachView struct {
	From        []string             `json:"from"`
	Reachable   []element.Definition `json:"reachable"`
	Unreachable []element.Definition `json:"unreachable"`
}

func (v ReachView) String() string {
	lines := []string{fmt.Sprintf("%d reachable from %s", len(v.Reachable), strings.Join(v.From, ", "))}
	for _, d := range v.Reachable {
		lines = append(lines, fmt.Sprintf("  %s (%s)", label(d), d.Era))
	}
	if len(v.Unreachable) > 0 {
		lines = append(lines, fmt.Sprintf("%d unreachable", len(v.Unreachable)))
		for _, d := range v.Unreachable {
			lines = append(lines, fmt.Sprintf("  %s (%s)", label(d), d.Era))
		}
	}
	return strings.Join(lines, "\n")
}

// NewRecipesCommand creates the recipes command group.
func NewRecipesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Inspect and validate the recipe table",
		Long: `Inspect the recipe table: the built-in recipes plus the files named in
GENESIS_RECIPES, later rules overriding earlier ones for the same pair.`,
	}

	cmd.AddCommand(newRecipesListCommand(rootOpts))
	cmd.AddCommand(newRecipesValidateCommand(rootOpts))
	cmd.AddCommand(newRecipesReachCommand(rootOpts))

	return cmd
}

// loadRecipes loads the configured table plus extra files.
func loadRecipes(opts *RootOptions, f *OutputFormatter, extra ...string) (*recipe.Table, []recipe.Entry, error) {
	cfg, err := loadConfig(opts, f)
	if err != nil {
		return nil, nil, err
	}
	paths := append(append([]string{}, cfg.Recipes...), extra...)
	table, entries, err := recipe.Load(paths...)
	if err != nil {
		return nil, nil, fail(f, ExitCommandError, ErrCodeRecipes, "failed to load recipes", err.Error())
	}
	f.VerboseLog("Loaded %d entries (%d pairs) from %d extra file(s)", len(entries), table.Len(), len(paths))
	return table, entries, nil
}

func newRecipesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List every effective recipe in pair order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			table, _, err := loadRecipes(rootOpts, f)
			if err != nil {
				return err
			}
			view := RecipeListView{Recipes: make([]RecipeView, 0, table.Len())}
			for _, key := range table.Keys() {
				e, _ := table.LookupKey(key)
				view.Recipes = append(view.Recipes, RecipeView{
					Key:    key,
					Inputs: e.Inputs,
					Result: e.Result,
					Flavor: e.Flavor,
				})
			}
			return f.Success(view)
		},
	}
}

func newRecipesValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate the recipe table and extra recipe files",
		Long: `Validate the built-in recipes together with the configured and given
CUE files. Overridden pairs are reported as warnings.

Exit codes:
  0 - No errors (warnings allowed)
  1 - Validation errors found
  2 - Command error (file not found, CUE syntax error, etc.)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			_, entries, err := loadRecipes(rootOpts, f, args...)
			if err != nil {
				return err
			}

			view := RecipeValidationView{Entries: len(entries)}
			for _, e := range recipe.Validate(entries) {
				if e.Code == recipe.ErrDuplicatePair {
					view.Warnings = append(view.Warnings, e)
				} else {
					view.Errors = append(view.Errors, e)
				}
			}
			view.Valid = len(view.Errors) == 0

			if !view.Valid {
				_ = f.Failure(ErrCodeInvalidRecipes, fmt.Sprintf("%d recipe error(s)", len(view.Errors)), view)
				return NewExitError(ExitFailure, "recipe validation failed")
			}
			return f.Success(view)
		},
	}
}

func newRecipesReachCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reach [name...]",
		Short: "List what the static table can produce",
		Long: `List every element the recipe table can produce starting from the given
names (the seed elements by default), and the results it cannot reach
without the generative capability.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			table, _, err := loadRecipes(rootOpts, f)
			if err != nil {
				return err
			}

			from := args
			if len(from) == 0 {
				from = []string{element.Spark.Name, element.Void.Name}
			}
			reachable := table.Reachable(from...)

			have := make(map[string]bool, len(reachable)+len(from))
			for _, name := range from {
				have[element.NormalizeName(name)] = true
			}
			for _, d := range reachable {
				have[d.Key()] = true
			}
			view := ReachView{From: from, Reachable: reachable, Unreachable: []element.Definition{}}
			if view.Reachable == nil {
				view.Reachable = []element.Definition{}
			}
			for _, e := range table.Entries() {
				if !have[e.Result.Key()] {
					have[e.Result.Key()] = true
					view.Unreachable = append(view.Unreachable, e.Result)
				}
			}
			return f.Success(view)
		},
	}
}
