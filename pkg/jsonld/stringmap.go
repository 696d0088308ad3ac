package jsonld

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// StringMap is a JSON object whose values are all strings, with its keys in
// document order. The ordered decoders produce it for every such object, so
// that a language map keeps the order its tags were written in. Everything
// else that reads untyped values goes through AsObject, which accepts both
// shapes.
type StringMap struct {
	keys   []string
	values map[string]string
}

// NewStringMap builds a StringMap from key/value pairs. A repeated key keeps
// its first position and takes the last value.
func NewStringMap(pairs ...string) StringMap {
	sm := StringMap{values: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		sm.set(pairs[i], pairs[i+1])
	}
	return sm
}

func (sm *StringMap) set(k, v string) {
	if sm.values == nil {
		sm.values = make(map[string]string)
	}
	if _, dup := sm.values[k]; !dup {
		sm.keys = append(sm.keys, k)
	}
	sm.values[k] = v
}

// Keys returns the keys in document order.
func (sm StringMap) Keys() []string {
	return append([]string(nil), sm.keys...)
}

// Get returns the value for key.
func (sm StringMap) Get(key string) (string, bool) {
	v, ok := sm.values[key]
	return v, ok
}

// Len returns the number of keys.
func (sm StringMap) Len() int {
	return len(sm.keys)
}

// Map returns a plain object copy. The key order is lost.
func (sm StringMap) Map() map[string]any {
	m := make(map[string]any, len(sm.keys))
	for k, v := range sm.values {
		m[k] = v
	}
	return m
}

// MarshalJSON writes the object in key order.
func (sm StringMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range sm.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(sm.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the object as a mapping in key order.
func (sm StringMap) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range sm.keys {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: sm.values[k]},
		)
	}
	return n, nil
}

// MarshalCBOR writes a definite-length map in key order. Keys are not
// sorted, so a language map keeps its first tag in CBOR too.
func (sm StringMap) MarshalCBOR() ([]byte, error) {
	buf := appendHead(nil, 5, uint64(len(sm.keys)))
	for _, k := range sm.keys {
		kb, err := cbor.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := cbor.Marshal(sm.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, vb...)
	}
	return buf, nil
}

// appendHead appends a CBOR initial byte and argument.
func appendHead(buf []byte, major byte, n uint64) []byte {
	m := major << 5
	switch {
	case n < 24:
		return append(buf, m|byte(n))
	case n <= 0xff:
		return append(buf, m|24, byte(n))
	case n <= 0xffff:
		return binary.BigEndian.AppendUint16(append(buf, m|25), uint16(n))
	case n <= 0xffffffff:
		return binary.BigEndian.AppendUint32(append(buf, m|26), uint32(n))
	default:
		return binary.BigEndian.AppendUint64(append(buf, m|27), n)
	}
}

// Object returns the untyped form of a decoded object: a StringMap when it
// is non-empty and every value is a string, a map[string]any otherwise.
// keys gives the document order of values.
func Object(keys []string, values map[string]any) any {
	if len(keys) == 0 {
		return values
	}
	sm := StringMap{keys: make([]string, 0, len(keys)), values: make(map[string]string, len(keys))}
	for _, k := range keys {
		s, ok := values[k].(string)
		if !ok {
			return values
		}
		sm.set(k, s)
	}
	return sm
}

// Unmarshal decodes a JSON document into untyped values like encoding/json
// does, except that all-string objects become StringMap values in document
// order.
func Unmarshal(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := readJSON(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("jsonld: unexpected data after top-level value")
	}
	return v, nil
}

func readJSON(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '[':
		arr := []any{}
		for dec.More() {
			item, err := readJSON(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, item)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	case '{':
		var keys []string
		values := make(map[string]any)
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			k, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("jsonld: object key is %v", kt)
			}
			item, err := readJSON(dec)
			if err != nil {
				return nil, err
			}
			if _, dup := values[k]; !dup {
				keys = append(keys, k)
			}
			values[k] = item
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return Object(keys, values), nil
	}
	return nil, fmt.Errorf("jsonld: unexpected %v", d)
}
