package docsource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// File is one raw document pulled from a source.
type File struct {
	Name string
	Data []byte
}

// Source yields the documents an index rebuild should ingest.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]File, error)
}

type SourceFactory func(args interface{}) (Source, error)

var registry = map[string]SourceFactory{}

func Register(name string, factory SourceFactory) {
	registry[strings.ToLower(name)] = factory
}

func NewSource(name string, args interface{}) (Source, error) {
	factory, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("document source not found: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
