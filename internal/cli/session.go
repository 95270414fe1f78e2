package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/genesis/internal/config"
	"github.com/roach88/genesis/internal/element"
	"github.com/roach88/genesis/internal/engine"
	"github.com/roach88/genesis/internal/llm"
	"github.com/roach88/genesis/internal/logger"
	"github.com/roach88/genesis/internal/recipe"
	"github.com/roach88/genesis/internal/resolver"
	"github.com/roach88/genesis/internal/store"
)

// session is everything one command needs: the recipe table, the
// resolver and an engine over the configured store.
type session struct {
	log      *logger.Logger
	table    *recipe.Table
	resolver *resolver.Resolver
	engine   *engine.Engine
	closeFn  func() error
}

// action runs against an open session and returns the data to print.
type action func(ctx context.Context, s *session) (interface{}, error)

// resolutionFailed is returned by actions whose resolution ran but did
// not produce an element. The action's data is still printed.
type resolutionFailed struct {
	code    string
	message string
}

func (e *resolutionFailed) Error() string {
	return e.message
}

// loadConfig parses the environment and applies flag overrides.
func loadConfig(opts *RootOptions, f *OutputFormatter) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fail(f, ExitCommandError, ErrCodeConfig, "invalid configuration", err.Error())
	}
	if opts.DB != "" {
		cfg.DB = opts.DB
	}
	return cfg, nil
}

// newLogger returns the configured logger under --verbose and an
// errors-only logger otherwise, so command output stays readable.
func newLogger(opts *RootOptions, cfg config.Config, f *OutputFormatter) (*logger.Logger, error) {
	mode := "quiet"
	if opts.Verbose {
		mode = cfg.LogMode
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fail(f, ExitCommandError, ErrCodeGeneric, "failed to create logger", err.Error())
	}
	return log, nil
}

func openSession(ctx context.Context, opts *RootOptions, f *OutputFormatter) (*session, error) {
	cfg, err := loadConfig(opts, f)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(opts, cfg, f)
	if err != nil {
		return nil, err
	}

	table, _, err := recipe.Load(cfg.Recipes...)
	if err != nil {
		log.Sync()
		return nil, fail(f, ExitCommandError, ErrCodeRecipes, "failed to load recipes", err.Error())
	}

	ropts := []resolver.Option{
		resolver.WithLogger(log),
		resolver.WithLatency(cfg.SimulatedLatency),
	}
	if cfg.Generative.Enabled {
		client, err := llm.NewClient(llm.Options{
			BaseURL:    cfg.Generative.BaseURL,
			APIKey:     cfg.Generative.APIKey,
			Model:      cfg.Generative.Model,
			MaxRetries: cfg.Generative.MaxRetries,
			Logger:     log,
		})
		if err != nil {
			log.Sync()
			return nil, fail(f, ExitCommandError, ErrCodeConfig, "failed to create generative client", err.Error())
		}
		ropts = append(ropts,
			resolver.WithCapability(client),
			resolver.WithTimeout(cfg.Generative.Timeout),
		)
	}
	r := resolver.New(table, ropts...)

	var p engine.Persistence
	var closeFn func() error
	if opts.Memory {
		m := store.NewMemory()
		p, closeFn = m, m.Close
	} else {
		st, err := store.Open(cfg.DB)
		if err != nil {
			log.Sync()
			return nil, fail(f, ExitCommandError, ErrCodeStore, "failed to open database", err.Error())
		}
		p, closeFn = st, st.Close
	}
	f.VerboseLog("Loaded %d recipes; generative=%t; memory=%t", table.Len(), cfg.Generative.Enabled, opts.Memory)

	eng, err := engine.Open(ctx, p, r,
		engine.WithLogCap(cfg.LogCap),
		engine.WithLogger(log),
	)
	if err != nil {
		_ = closeFn()
		log.Sync()
		return nil, fail(f, ExitCommandError, ErrCodePersistence, "failed to load session state", err.Error())
	}

	return &session{
		log:      log,
		table:    table,
		resolver: r,
		engine:   eng,
		closeFn:  closeFn,
	}, nil
}

func (s *session) close() {
	if err := s.closeFn(); err != nil {
		s.log.Warn("close store failed", "error", err)
	}
	s.log.Sync()
}

// withSession opens a session, runs act and prints its result. Output is
// written once, after automatic saves have been checked.
func withSession(opts *RootOptions, cmd *cobra.Command, act action) error {
	f := newFormatter(opts, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(ctx, opts, f)
	if err != nil {
		return err
	}
	defer s.close()

	data, err := act(ctx, s)
	st := s.resolver.Stats()
	f.VerboseLog("Resolver: %d static, %d cached, %d capability calls, %d failures",
		st.StaticHits, st.CacheHits, st.CapabilityCalls, st.Failures)
	if err != nil {
		return report(f, err, data)
	}
	if err := s.engine.LastSaveError(); err != nil {
		return fail(f, ExitFailure, ErrCodePersistence, "session state was not saved", err.Error())
	}
	return f.Success(data)
}

// report maps an action error to output and an exit code.
func report(f *OutputFormatter, err error, data interface{}) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	var failed *resolutionFailed
	if errors.As(err, &failed) {
		_ = f.Failure(failed.code, failed.message, data)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", failed.code, failed.message))
	}

	var engErr *engine.Error
	if errors.As(err, &engErr) {
		switch engErr.Code {
		case engine.ErrCodeUndiscovered:
			var details interface{}
			if len(engErr.Suggestions) > 0 {
				details = map[string][]string{"suggestions": engErr.Suggestions}
			}
			return fail(f, ExitCommandError, ErrCodeUndiscovered, undiscoveredMessage(engErr), details)
		case engine.ErrCodeUnknownInstance:
			return fail(f, ExitCommandError, ErrCodeUnknownInstance, engErr.Message, nil)
		case engine.ErrCodePersistence:
			return fail(f, ExitFailure, ErrCodePersistence, engErr.Error(), nil)
		}
	}
	return fail(f, ExitFailure, ErrCodeGeneric, err.Error(), nil)
}

func undiscoveredMessage(e *engine.Error) string {
	msg := fmt.Sprintf("%s: %s", e.Message, e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", e.Suggestions[0])
	}
	return msg
}

// discovered returns the library record for name.
func (s *session) discovered(name string) (element.Definition, error) {
	lib := s.engine.Library()
	if rec, ok := lib.Lookup(name); ok {
		return rec.Definition, nil
	}
	return element.Definition{}, &engine.Error{
		Code:        engine.ErrCodeUndiscovered,
		Message:     "element has not been discovered",
		Name:        name,
		Suggestions: lib.Suggest(name),
	}
}

// definition returns name from the library, falling back to every
// element the recipe table knows.
func (s *session) definition(name string) (element.Definition, error) {
	def, err := s.discovered(name)
	if err == nil {
		return def, nil
	}
	if def, ok := s.table.DefinitionByName(name); ok {
		return def, nil
	}
	return element.Definition{}, err
}
