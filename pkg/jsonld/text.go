package jsonld

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ory/go-convenience/stringslice"
)

// Text is a human-readable field that is either a plain string or a language
// map keyed by BCP-47 tag.
type Text struct {
	plain string
	tags  []string
	langs map[string]string
}

// NewText returns a plain-string Text.
func NewText(s string) Text {
	return Text{plain: s}
}

// NewLanguageMap returns a Text built from tag/value pairs. The order of the
// pairs is kept and decides which value First returns.
func NewLanguageMap(pairs ...string) Text {
	t := Text{langs: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		if _, dup := t.langs[pairs[i]]; !dup {
			t.tags = append(t.tags, pairs[i])
		}
		t.langs[pairs[i]] = pairs[i+1]
	}
	return t
}

// IsLanguageMap reports whether the text was given as a language map.
func (t Text) IsLanguageMap() bool {
	return t.langs != nil
}

// IsZero reports whether no text is present.
func (t Text) IsZero() bool {
	return t.plain == "" && len(t.langs) == 0
}

// First returns the display value: the plain string, or the value of the
// first language tag. It is a simple tie-break, not locale negotiation.
func (t Text) First() string {
	if t.langs == nil {
		return t.plain
	}
	for _, tag := range t.tags {
		if v := t.langs[tag]; v != "" {
			return v
		}
	}
	return ""
}

// Lang returns the value for one language tag.
func (t Text) Lang(tag string) (string, bool) {
	v, ok := t.langs[tag]
	return v, ok
}

// Tags returns the language tags in order.
func (t Text) Tags() []string {
	return append([]string(nil), t.tags...)
}

// Value returns the JSON-LD representation: a string, or a StringMap in tag
// order.
func (t Text) Value() any {
	if t.langs == nil {
		return t.plain
	}
	sm := StringMap{keys: t.Tags(), values: make(map[string]string, len(t.langs))}
	for k, v := range t.langs {
		sm.values[k] = v
	}
	return sm
}

// UnmarshalLD implements Unmarshaler. A StringMap keeps its tag order; a
// map[string]any carries none, so its tags are ordered lexically.
func (t *Text) UnmarshalLD(data any) error {
	switch v := data.(type) {
	case string:
		*t = NewText(v)
		return nil
	case StringMap:
		pairs := make([]string, 0, 2*len(v.keys))
		for _, k := range v.keys {
			pairs = append(pairs, k, v.values[k])
		}
		*t = NewLanguageMap(pairs...)
		return nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, 2*len(keys))
		for _, k := range keys {
			s, ok := v[k].(string)
			if !ok {
				return fmt.Errorf("jsonld: language map entry %q is %T, want string", k, v[k])
			}
			pairs = append(pairs, k, s)
		}
		*t = NewLanguageMap(pairs...)
		return nil
	default:
		return fmt.Errorf("jsonld: text field is %T, want string or language map", data)
	}
}

// UnmarshalJSON decodes a string or a language map, keeping the key order of
// the document so that First picks the first tag as written.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = NewText(s)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("jsonld: text field must be a string or language map")
	}
	var pairs []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("jsonld: language map entry %v: %w", keyTok, err)
		}
		pairs = append(pairs, keyTok.(string), value)
	}
	*t = NewLanguageMap(pairs...)
	return nil
}

// MarshalJSON writes the text back in its decoded shape and tag order.
func (t Text) MarshalJSON() ([]byte, error) {
	if t.langs == nil {
		return json.Marshal(t.plain)
	}
	return t.Value().(StringMap).MarshalJSON()
}

// MarshalYAML writes the text as a scalar or an ordered mapping.
func (t Text) MarshalYAML() (interface{}, error) {
	if t.langs == nil {
		return t.plain, nil
	}
	return t.Value().(StringMap).MarshalYAML()
}

// Strings is the JSON-LD "string or array of strings" idiom. A scalar is
// equivalent to a singleton array.
type Strings []string

// Has reports membership of s.
func (ss Strings) Has(s string) bool {
	return stringslice.Has(ss, s)
}

// Compact returns a scalar for a single entry and an array otherwise.
func (ss Strings) Compact() any {
	switch len(ss) {
	case 0:
		return nil
	case 1:
		return ss[0]
	default:
		return ss.Array()
	}
}

// Array returns the entries as an untyped array.
func (ss Strings) Array() []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// UnmarshalLD implements Unmarshaler.
func (ss *Strings) UnmarshalLD(data any) error {
	switch v := data.(type) {
	case string:
		*ss = Strings{v}
		return nil
	case []any:
		out := make(Strings, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("jsonld: entry %d is %T, want string", i, item)
			}
			out = append(out, s)
		}
		*ss = out
		return nil
	case []string:
		*ss = append(Strings(nil), v...)
		return nil
	default:
		return fmt.Errorf("jsonld: value is %T, want string or array of strings", data)
	}
}
