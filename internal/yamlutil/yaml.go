// Package yamlutil wraps goccy/go-yaml for config and document files.
// Every entry point enforces MaxInputSize and rejects empty input.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrNoDocuments    = errors.New("yamlutil: stream contains no documents")
)

func validateSize(data []byte) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	return nil
}

// UnmarshalStrict decodes a single document, rejecting unknown fields.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateSize(data); err != nil {
		return err
	}
	if v == nil {
		return ErrNilDestination
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalStrictAll decodes every document of a "---" separated stream,
// rejecting unknown fields. Empty documents are skipped.
func UnmarshalStrictAll[T any](data []byte) ([]T, error) {
	if err := validateSize(data); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	var docs []T
	for i := 0; ; i++ {
		var v *T
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("yamlutil: document %d: %w", i+1, err)
		}
		if v != nil {
			docs = append(docs, *v)
		}
	}

	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return docs, nil
}

// Marshal encodes v as a single YAML document.
func Marshal(v any) ([]byte, error) {
	result, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return result, nil
}

// Scalar is a string field that also accepts unquoted YAML numbers, so
// "quantity: 3" and "quantity: \"3\"" decode alike. The raw text is kept
// as written.
type Scalar string

// UnmarshalYAML implements yaml.BytesUnmarshaler. Plain scalars are
// kept verbatim; quoted ones are unquoted.
func (s *Scalar) UnmarshalYAML(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || (raw[0] != '"' && raw[0] != '\'') {
		*s = Scalar(raw)
		return nil
	}
	var str string
	if err := yaml.Unmarshal([]byte(raw), &str); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	*s = Scalar(str)
	return nil
}
