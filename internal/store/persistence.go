package store

import (
	"context"
	"fmt"

	"github.com/roach88/genesis/internal/activity"
	"github.com/roach88/genesis/internal/element"
)

// Blob keys.
const (
	KeyLibrary = "genesis_library"
	KeyBoard   = "genesis_board"
	KeyLog     = "genesis_log"
)

// blobs is raw key/value storage.
type blobs interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// persistence encodes session state onto a blob backend. Embedded by Store
// and Memory, it provides the methods the engine loads and saves through.
type persistence struct {
	blobs blobs
}

func (p persistence) LoadLibrary(ctx context.Context) ([]element.Record, bool, error) {
	var records []element.Record
	found, err := p.load(ctx, KeyLibrary, &records)
	return records, found, err
}

func (p persistence) SaveLibrary(ctx context.Context, records []element.Record) error {
	return p.save(ctx, KeyLibrary, nonNil(records))
}

func (p persistence) LoadBoard(ctx context.Context) ([]element.Instance, bool, error) {
	var instances []element.Instance
	found, err := p.load(ctx, KeyBoard, &instances)
	return instances, found, err
}

func (p persistence) SaveBoard(ctx context.Context, instances []element.Instance) error {
	return p.save(ctx, KeyBoard, nonNil(instances))
}

func (p persistence) LoadLog(ctx context.Context) ([]activity.Entry, bool, error) {
	var entries []activity.Entry
	found, err := p.load(ctx, KeyLog, &entries)
	return entries, found, err
}

func (p persistence) SaveLog(ctx context.Context, entries []activity.Entry) error {
	return p.save(ctx, KeyLog, nonNil(entries))
}

func (p persistence) load(ctx context.Context, key string, v any) (bool, error) {
	data, found, err := p.blobs.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := unmarshalBlob(data, v); err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	return true, nil
}

func (p persistence) save(ctx context.Context, key string, v any) error {
	data, err := marshalBlob(v)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return p.blobs.Put(ctx, key, data)
}

// nonNil stores empty collections as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
