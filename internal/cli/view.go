package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/genesis/internal/activity"
	"github.com/roach88/genesis/internal/element"
	"github.com/roach88/genesis/internal/engine"
)

// LibraryView is the output of the library command.
type LibraryView struct {
	Total  int               `json:"total"`
	Query  string            `json:"query,omitempty"`
	Groups []engine.EraGroup `json:"groups"`
}

func (v LibraryView) String() string {
	if len(v.Groups) == 0 {
		if v.Query != "" {
			return fmt.Sprintf("no discovered elements match %q", v.Query)
		}
		return "library is empty"
	}
	var lines []string
	for _, g := range v.Groups {
		lines = append(lines, fmt.Sprintf("%s (%d)", g.Era, len(g.Records)))
		for _, r := range g.Records {
			lines = append(lines, "  "+label(r.Definition))
		}
	}
	lines = append(lines, fmt.Sprintf("%d discovered", v.Total))
	return strings.Join(lines, "\n")
}

// BoardView is the output of the board command.
type BoardView struct {
	Instances []element.Instance `json:"instances"`
}

func (v BoardView) String() string {
	if len(v.Instances) == 0 {
		return "board is empty"
	}
	lines := make([]string, len(v.Instances))
	for i, inst := range v.Instances {
		lines[i] = InstanceView{Instance: inst}.String()
	}
	return strings.Join(lines, "\n")
}

// LogView is the output of the log command, newest entry first.
type LogView struct {
	Entries []activity.Entry `json:"entries"`
}

func (v LogView) String() string {
	lines := make([]string, len(v.Entries))
	for i, e := range v.Entries {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

// NewLibraryCommand creates the library command.
func NewLibraryCommand(rootOpts *RootOptions) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "library",
		Short: "List discovered elements by era",
		Long: `List discovered elements grouped by era in progression order.
--search keeps elements whose name contains the query, ignoring case.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) (interface{}, error) {
				lib := s.engine.Library()
				groups := lib.Group(search)
				if groups == nil {
					groups = []engine.EraGroup{}
				}
				return LibraryView{Total: lib.Len(), Query: search, Groups: groups}, nil
			})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by name")

	return cmd
}

// NewBoardCommand creates the board command.
func NewBoardCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "board",
		Short:         "List instances on the board",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) (interface{}, error) {
				instances := s.engine.Board().Instances()
				if instances == nil {
					instances = []element.Instance{}
				}
				return BoardView{Instances: instances}, nil
			})
		},
	}
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "log",
		Short:         "Show the activity log, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) (interface{}, error) {
				entries := s.engine.Log()
				if limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}
				return LogView{Entries: entries}, nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n entries (0 for all)")

	return cmd
}
