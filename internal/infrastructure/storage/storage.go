package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage - хранилище коллекций целиком: одна коллекция читается и
// перезаписывается за одну операцию.
type Storage interface {
	// Load decodes the collection saved under name into out. A collection
	// that was never saved leaves out untouched and is not an error.
	Load(ctx context.Context, name string, out any) error
	// Save replaces the collection saved under name with v.
	Save(ctx context.Context, name string, v any) error
	Close() error
}

// Format is the on-disk encoding of a collection.
type Format interface {
	Name() string
	Ext() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat returns the format registered under name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormatJSON:
		return JSON{}, nil
	case FormatYAML, "yml":
		return YAML{}, nil
	}
	return nil, fmt.Errorf("неизвестный формат хранения: %s", name)
}

// JSON writes indented UTF-8 JSON without escaping non-ASCII text.
type JSON struct{}

func (JSON) Name() string { return FormatJSON }
func (JSON) Ext() string  { return ".json" }

func (JSON) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// YAML writes a YAML document per collection.
type YAML struct{}

func (YAML) Name() string { return FormatYAML }
func (YAML) Ext() string  { return ".yaml" }

func (YAML) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (YAML) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// Decode unmarshals data with f, treating blank content as a missing collection.
func Decode(f Format, name string, data []byte, out any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := f.Unmarshal(data, out); err != nil {
		return &DecodeError{Collection: name, Format: f.Name(), Err: err}
	}
	return nil
}

// Encode marshals v with f.
func Encode(f Format, name string, v any) ([]byte, error) {
	data, err := f.Marshal(v)
	if err != nil {
		return nil, &WriteError{Collection: name, Err: fmt.Errorf("encode %s: %w", f.Name(), err)}
	}
	return data, nil
}
