package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/genesis/internal/element"
	"github.com/roach88/genesis/internal/engine"
	"github.com/roach88/genesis/internal/resolver"
)

// ResolveView is the output of the resolve command.
type ResolveView struct {
	A string `json:"a"`
	B string `json:"b"`
	resolver.Result
}

func (v ResolveView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s + %s -> ", v.A, v.B)
	if v.Success() {
		fmt.Fprintf(&b, "%s (%s)", label(*v.Element), v.Source)
	} else {
		fmt.Fprintf(&b, "%s (%s)", v.Outcome, v.Source)
	}
	if v.FlavorText != "" {
		b.WriteString("\n" + v.FlavorText)
	}
	return b.String()
}

// CombineView is the output of the combine command.
type CombineView struct {
	Source string `json:"source"`
	Target string `json:"target"`
	engine.Outcome
}

func (v CombineView) String() string {
	var b strings.Builder
	switch v.Status {
	case engine.StatusApplied:
		fmt.Fprintf(&b, "%s: %s at %s %s (%s)", v.Status, label(v.Spawned.Definition), v.Spawned.InstanceID, position(*v.Spawned), v.Result.Source)
		if v.Discovered {
			b.WriteString(" new")
		}
		if v.UnlockedEra != "" {
			fmt.Fprintf(&b, "\nera unlocked: %s", v.UnlockedEra)
		}
	case engine.StatusIgnored:
		fmt.Fprintf(&b, "%s: an instance cannot combine with itself", v.Status)
		return b.String()
	default:
		fmt.Fprintf(&b, "%s: %s (%s)", v.Status, v.Result.Outcome, v.Result.Source)
	}
	if v.Result.FlavorText != "" {
		b.WriteString("\n" + v.Result.FlavorText)
	}
	return b.String()
}

// InstanceView is one board instance.
type InstanceView struct {
	element.Instance
}

func (v InstanceView) String() string {
	return fmt.Sprintf("%s %s %s", v.InstanceID, label(v.Definition), position(v.Instance))
}

// MessageView is a plain confirmation.
type MessageView struct {
	Message string `json:"message"`
}

func (v MessageView) String() string {
	return v.Message
}

func label(d element.Definition) string {
	if d.Emoji == "" {
		return d.Name
	}
	return d.Emoji + " " + d.Name
}

func position(inst element.Instance) string {
	return fmt.Sprintf("(%g,%g)", inst.X, inst.Y)
}

// resolutionError turns a failed resolver result into an action error.
func resolutionError(res resolver.Result) error {
	if res.Outcome == resolver.OutcomeSynthesisError {
		msg := "synthesis failed"
		if res.Err != nil {
			msg = fmt.Sprintf("synthesis failed: %v", res.Err)
		}
		return &resolutionFailed{code: ErrCodeSynthesis, message: msg}
	}
	return &resolutionFailed{code: ErrCodeNoReaction, message: "the pair does not combine"}
}

func unknownInstance(id string) error {
	return &engine.Error{
		Code:    engine.ErrCodeUnknownInstance,
		Message: fmt.Sprintf("no instance %q on the board", id),
	}
}

func parseCoord(f *OutputFormatter, name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fail(f, ExitCommandError, ErrCodeInvalidArgs, fmt.Sprintf("invalid %s coordinate %q", name, raw), nil)
	}
	return v, nil
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <a> <b>",
		Short: "Resolve a pair without touching the board",
		Long: `Resolve two elements through the recipe table, the result cache and the
generative capability, in that order. The library and board are not
changed. Any element the recipe table knows can be named.

Exit codes:
  0 - The pair produced an element
  1 - No reaction, or the generative capability failed
  2 - Command error (unknown element, etc.)`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) (interface{}, error) {
				a, err := s.definition(args[0])
				if err != nil {
					return nil, err
				}
				b, err := s.definition(args[1])
				if err != nil {
					return nil, err
				}
				res := s.resolver.Resolve(ctx, a, b)
				view := ResolveView{A: a.Name, B: b.Name, Result: res}
				if !res.Success() {
					return view, resolutionError(res)
				}
				return view, nil
			})
		},
	}
}

// CombineOptions holds flags for the combine command.
type CombineOptions struct {
	*RootOptions
	From string // instance the source was dragged from
}

// NewCombineCommand creates the combine command.
func NewCombineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CombineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "combine <source> <target-instance>",
		Short: "Drop a discovered element onto a board instance",
		Long: `Combine a discovered element with an instance on the board. On success
the result is placed below the target and added to the library.

Examples:
  genesis spawn 虚空
  genesis combine 火花 inst_0192...
  genesis combine 能量 inst_0192... --from inst_0193...`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(ctx context.Context, s *session) (interface{}, error) {
				return runCombine(ctx, s, opts, args[0], args[1])
			})
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "board instance the source was dragged from")

	return cmd
}

func runCombine(ctx context.Context, s *session, opts *CombineOptions, source, target string) (interface{}, error) {
	src, err := s.discovered(source)
	if err != nil {
		return nil, err
	}
	if opts.From != "" {
		from, err := s.engine.Instance(opts.From)
		if err != nil {
			return nil, err
		}
		src = from.Definition
	}
	if _, err := s.engine.Instance(target); err != nil {
		return nil, err
	}

	out := s.engine.Combine(ctx, engine.Attempt{
		Source:           src,
		SourceInstanceID: opts.From,
		TargetInstanceID: target,
	})
	view := CombineView{Source: src.Name, Target: target, Outcome: out}

	switch out.Status {
	case engine.StatusFailed:
		return view, resolutionError(out.Result)
	case engine.StatusStaleTarget:
		return nil, unknownInstance(target)
	}
	return view, nil
}

// SpawnOptions holds flags for the spawn command.
type SpawnOptions struct {
	*RootOptions
	X float64
	Y float64
}

// NewSpawnCommand creates the spawn command.
func NewSpawnCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SpawnOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "spawn <name>",
		Short:         "Place a discovered element on the board",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(ctx context.Context, s *session) (interface{}, error) {
				inst, err := s.engine.SpawnByName(ctx, args[0], opts.X, opts.Y)
				if err != nil {
					return nil, err
				}
				return InstanceView{Instance: inst}, nil
			})
		},
	}

	cmd.Flags().Float64Var(&opts.X, "x", 0, "board x position")
	cmd.Flags().Float64Var(&opts.Y, "y", 0, "board y position")

	return cmd
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "move <instance> <x> <y>",
		Short:         "Move a board instance",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			x, err := parseCoord(f, "x", args[1])
			if err != nil {
				return err
			}
			y, err := parseCoord(f, "y", args[2])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) (interface{}, error) {
				if !s.engine.Move(ctx, args[0], x, y) {
					return nil, unknownInstance(args[0])
				}
				inst, err := s.engine.Instance(args[0])
				if err != nil {
					return nil, err
				}
				return InstanceView{Instance: inst}, nil
			})
		},
	}
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <instance>",
		Short:         "Remove a board instance",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) (interface{}, error) {
				if !s.engine.Remove(ctx, args[0]) {
					return nil, unknownInstance(args[0])
				}
				return MessageView{Message: "removed " + args[0]}, nil
			})
		},
	}
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Remove every instance from the board",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) (interface{}, error) {
				s.engine.Clear(ctx)
				return MessageView{Message: engine.TextCleared}, nil
			})
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget every discovery and start over",
		Long: `Restore the seed library, empty the board and restart the activity log.
This cannot be undone, so it requires --yes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fail(newFormatter(rootOpts, cmd), ExitCommandError, ErrCodeInvalidArgs,
					"reset discards the library, board and log; pass --yes to confirm", nil)
			}
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) (interface{}, error) {
				s.engine.Reset(ctx)
				return MessageView{Message: engine.TextReset}, nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")

	return cmd
}
