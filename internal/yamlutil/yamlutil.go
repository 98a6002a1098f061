// Package yamlutil is the one place YAML is decoded. Site configuration and
// post frontmatter share its size limit and its error wording.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps a single document.
var MaxInputSize = 1 << 20

var (
	ErrEmpty        = errors.New("yaml: empty document")
	ErrTooLarge     = errors.New("yaml: document too large")
	ErrNotMapping   = errors.New("yaml: document is not a mapping")
	ErrMultipleDocs = errors.New("yaml: more than one document")
	ErrNilTarget    = errors.New("yaml: nil decode target")
)

// Item is one key/value pair of a mapping, in document order. A nested
// mapping arrives as []Item.
type Item struct {
	Key   string
	Value any
}

func checkSize(data []byte) error {
	switch {
	case len(data) == 0:
		return ErrEmpty
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), MaxInputSize)
	}
	return nil
}

// UnmarshalStrict decodes data into v, failing on fields v does not declare.
func UnmarshalStrict(data []byte, v any) error {
	if v == nil {
		return ErrNilTarget
	}
	if err := checkSize(data); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yaml: %w", err)
	}
	return nil
}

// UnmarshalOrdered decodes a single mapping document and returns its pairs
// in the order written. Scalar values are whatever the decoder gives an
// untyped target: string, bool, numbers, time.Time, []any or nil.
// A comment-only document yields no items.
func UnmarshalOrdered(data []byte) ([]Item, error) {
	if err := checkSize(data); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.UseOrderedMap())
	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("yaml: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
		return nil, ErrMultipleDocs
	}

	switch m := doc.(type) {
	case nil:
		return []Item{}, nil
	case yaml.MapSlice:
		return items(m), nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotMapping, doc)
	}
}

func items(m yaml.MapSlice) []Item {
	out := make([]Item, 0, len(m))
	for _, kv := range m {
		out = append(out, Item{Key: fmt.Sprint(kv.Key), Value: ordered(kv.Value)})
	}
	return out
}

// ordered rewrites nested mappings, including those inside sequences.
func ordered(v any) any {
	switch x := v.(type) {
	case yaml.MapSlice:
		return items(x)
	case []any:
		for i := range x {
			x[i] = ordered(x[i])
		}
		return x
	}
	return v
}
