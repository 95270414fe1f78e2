package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/genesis/internal/element"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_DefaultHasOnlyKnownCollision(t *testing.T) {
	entries, err := DefaultEntries()
	require.NoError(t, err)

	errs := Validate(entries)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicatePair, errs[0].Code)
	assert.Contains(t, errs[0].Message, "纸张 wins")
}

func TestValidate_Codes(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{
			name:  "empty input",
			entry: Entry{Inputs: [2]string{" ", "b"}, Result: element.Definition{ID: "x", Name: "X", Type: element.TypeMatter}},
			want:  ErrEmptyInputName,
		},
		{
			name:  "separator",
			entry: Entry{Inputs: [2]string{"a+c", "b"}, Result: element.Definition{ID: "x", Name: "X", Type: element.TypeMatter}},
			want:  ErrSeparatorInName,
		},
		{
			name:  "unknown type",
			entry: Entry{Inputs: [2]string{"a", "b"}, Result: element.Definition{ID: "x", Name: "X", Type: "plasma"}},
			want:  ErrUnknownType,
		},
		{
			name:  "unknown era",
			entry: Entry{Inputs: [2]string{"a", "b"}, Result: element.Definition{ID: "x", Name: "X", Type: element.TypeMatter, Era: "later"}},
			want:  ErrUnknownEra,
		},
		{
			name:  "empty result",
			entry: Entry{Inputs: [2]string{"a", "b"}, Result: element.Definition{Type: element.TypeMatter}},
			want:  ErrEmptyResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate([]Entry{tt.entry})
			assert.Equal(t, []string{tt.want}, codes(errs))
			assert.Equal(t, 0, errs[0].Index)
		})
	}
}

func TestValidate_MissingEraIsAllowed(t *testing.T) {
	errs := Validate([]Entry{{
		Inputs: [2]string{"a", "b"},
		Result: element.Definition{ID: "x", Name: "X", Type: element.TypeMatter},
	}})
	assert.Empty(t, errs)
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Code: ErrUnknownType, Field: "result.type", Message: "unknown type", Index: 4}
	assert.Equal(t, `[E203] recipes[4].result.type: unknown type`, err.Error())
}
