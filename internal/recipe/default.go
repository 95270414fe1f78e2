package recipe

import (
	"fmt"
	"os"
	"sync"
)

var (
	defaultOnce    sync.Once
	defaultEntries []Entry
	defaultErr     error
)

// DefaultEntries returns the embedded authored rules in authored order.
// The CUE source is compiled once per process.
func DefaultEntries() ([]Entry, error) {
	defaultOnce.Do(func() {
		defaultEntries, defaultErr = Compile("recipes.cue", []byte(recipesCUE))
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	out := make([]Entry, len(defaultEntries))
	copy(out, defaultEntries)
	return out, nil
}

// Default builds the table from the embedded rules.
func Default() (*Table, error) {
	entries, err := DefaultEntries()
	if err != nil {
		return nil, fmt.Errorf("default recipes: %w", err)
	}
	return Build(entries), nil
}

// Load builds the default table extended with the rules in the given CUE
// files. Later files override earlier rules for the same pair.
func Load(paths ...string) (*Table, []Entry, error) {
	entries, err := DefaultEntries()
	if err != nil {
		return nil, nil, fmt.Errorf("default recipes: %w", err)
	}
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read recipes %s: %w", path, err)
		}
		extra, err := Compile(path, src)
		if err != nil {
			return nil, nil, fmt.Errorf("compile recipes %s: %w", path, err)
		}
		entries = append(entries, extra...)
	}
	return Build(entries), entries, nil
}
