// Package codec reads and writes collections of ordering.Record documents as
// JSON, YAML or MessagePack arrays.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/ordering"
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

var ErrUnknownFormat = errors.New("unknown format")

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mp", "mpk":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Decode parses data as an array of objects. A top-level value that is not an
// array fails with ordering.ErrInvalidArgument, a non-object element with
// ordering.ErrInvalidItem. JSON numbers are kept as json.Number.
func Decode(data []byte, format Format) ([]ordering.Record, error) {
	var doc any
	switch format {
	case FormatJSON:
		dec := gojson.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode msgpack: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return toRecords(doc)
}

func toRecords(doc any) ([]ordering.Record, error) {
	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: document must be an array, got %T", ordering.ErrInvalidArgument, doc)
	}
	records := make([]ordering.Record, len(list))
	for i, elem := range list {
		switch v := elem.(type) {
		case map[string]any:
			records[i] = ordering.Record(v)
		case nil:
			return nil, fmt.Errorf("%w: element %d is null", ordering.ErrInvalidItem, i)
		default:
			return nil, fmt.Errorf("%w: element %d must be an object, got %T", ordering.ErrInvalidItem, i, elem)
		}
	}
	return records, nil
}

// Encode writes records as an array in the given format.
func Encode(records []ordering.Record, format Format) ([]byte, error) {
	if records == nil {
		records = []ordering.Record{}
	}
	if format == FormatJSON {
		return EncodeValue(records, format)
	}
	return EncodeValue(plainRecords(records), format)
}

// EncodeValue writes any value in the given format. JSON output is indented
// and ends with a newline. MessagePack map keys are sorted.
func EncodeValue(v any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		out, err := gojson.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return out, nil
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode msgpack: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// plainRecords replaces json.Number values so that non-JSON encoders write
// numbers instead of strings.
func plainRecords(records []ordering.Record) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, r := range records {
		out[i] = plainValue(map[string]any(r)).(map[string]any)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plainValue(val)
		}
		return out
	case ordering.Record:
		return plainValue(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plainValue(val)
		}
		return out
	default:
		return v
	}
}
