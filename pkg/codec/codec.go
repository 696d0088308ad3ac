// Package codec reads and writes badge documents as JSON, YAML or CBOR.
// Decoded documents always use the encoding/json shapes: map[string]any
// objects, []any arrays and string timestamps. Objects whose values are all
// strings are jsonld.StringMap values that keep their key order, so language
// maps remember which tag came first.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/obkit/pkg/jsonld"
)

// ErrUnknownFormat is returned for a format name or file extension that is
// not supported.
var ErrUnknownFormat = errors.New("codec: unknown format")

// Format is a document serialisation.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, CBOR}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// ParseFormat resolves a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "jsonld", "json-ld":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "cbor":
		return CBOR, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

var (
	decMode cbor.DecMode
	encMode cbor.EncMode
)

func init() {
	var err error
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: cbor decode options: %v", err))
	}
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: cbor encode options: %v", err))
	}
}

// Decode parses data in format f.
func Decode(data []byte, f Format) (any, error) {
	var v any
	var err error
	switch f {
	case JSON:
		v, err = jsonld.Unmarshal(data)
	case YAML:
		v, err = decodeYAML(data)
	case CBOR:
		v, err = decodeCBOR(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("codec: failed to decode %s: %w", f, err)
	}
	return v, nil
}

// Encode serialises v in format f. JSON is indented with two spaces and ends
// with a newline; CBOR uses the core deterministic encoding.
func Encode(v any, f Format) ([]byte, error) {
	switch f {
	case JSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("codec: failed to encode json: %w", err)
		}
		return append(data, '\n'), nil
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("codec: failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("codec: failed to encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case CBOR:
		data, err := encMode.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("codec: failed to encode cbor: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// ReadFile decodes a file, choosing the format from its extension.
func ReadFile(path string) (any, Format, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("codec: failed to read %s: %w", path, err)
	}
	v, err := Decode(data, f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return v, f, nil
}

// WriteFile encodes v in format f and writes it to path, creating parent
// directories.
func WriteFile(path string, v any, f Format) error {
	data, err := Encode(v, f)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("codec: failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("codec: failed to write %s: %w", path, err)
	}
	return nil
}

// normalize converts YAML and CBOR specific shapes: maps with non-string
// keys get stringified keys, timestamps become RFC 3339 strings.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = normalize(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	}
	return v
}
