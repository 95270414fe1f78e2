package engine

import (
	"context"

	"github.com/roach88/genesis/internal/activity"
	"github.com/roach88/genesis/internal/element"
)

// Persistence loads and saves session state. Each blob is independent;
// found=false means nothing was stored and defaults apply.
type Persistence interface {
	LoadLibrary(ctx context.Context) (records []element.Record, found bool, err error)
	SaveLibrary(ctx context.Context, records []element.Record) error
	LoadBoard(ctx context.Context) (instances []element.Instance, found bool, err error)
	SaveBoard(ctx context.Context, instances []element.Instance) error
	LoadLog(ctx context.Context) (entries []activity.Entry, found bool, err error)
	SaveLog(ctx context.Context, entries []activity.Entry) error
}

// blob selects which parts of the state a mutation touched.
type blob uint8

const (
	blobLibrary blob = 1 << iota
	blobBoard
	blobLog

	blobAll = blobLibrary | blobBoard | blobLog
)
