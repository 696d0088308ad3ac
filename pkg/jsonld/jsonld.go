// Package jsonld provides structural predicates over untyped JSON-LD values
// and the small set of shared value types (multi-language text, string-or-array
// fields) used by the Open Badges 2.0 and 3.0 document models.
//
// Untyped values are what encoding/json, yaml.v3 or cbor produce when decoding
// into an interface{}: objects are map[string]any and arrays are []any. The
// ordered decoders (Unmarshal here, and the codec package) additionally give
// all-string objects as StringMap so that language maps keep their tag order.
package jsonld

import (
	"sort"

	"github.com/ory/go-convenience/stringslice"
)

// Context IRIs recognised by the discriminators.
const (
	// OB2Context is the Open Badges 2.0 JSON-LD context.
	OB2Context = "https://w3id.org/openbadges/v2"

	// OB3Context is the Open Badges 3.0 JSON-LD context.
	OB3Context = "https://purl.imsglobal.org/spec/ob/v3p0/context.json"

	// VCContext is the W3C Verifiable Credentials Data Model 1.1 context.
	VCContext = "https://www.w3.org/2018/credentials/v1"

	// VCContextV2 is the W3C Verifiable Credentials Data Model 2.0 context.
	VCContextV2 = "https://www.w3.org/ns/credentials/v2"
)

// OB3Contexts lists every context string accepted as the Open Badges 3.0
// context, including the versioned releases.
var OB3Contexts = []string{
	OB3Context,
	"https://purl.imsglobal.org/spec/ob/v3p0/context-3.0.1.json",
	"https://purl.imsglobal.org/spec/ob/v3p0/context-3.0.2.json",
	"https://purl.imsglobal.org/spec/ob/v3p0/context-3.0.3.json",
}

// VCContexts lists the accepted verifiable credentials base contexts.
var VCContexts = []string{VCContext, VCContextV2}

const (
	keyContext = "@context"
	keyType    = "type"
)

// AsObject returns value as a JSON object when it is one. A StringMap is
// returned as a copy.
func AsObject(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		if v == nil {
			return nil, false
		}
		return v, true
	case StringMap:
		return v.Map(), true
	}
	return nil, false
}

// Has reports whether value is an object carrying key, whatever its value.
func Has(value any, key string) bool {
	m, ok := AsObject(value)
	if !ok {
		return false
	}
	_, ok = m[key]
	return ok
}

// HasAll reports whether value is an object carrying every key.
func HasAll(value any, keys ...string) bool {
	m, ok := AsObject(value)
	if !ok {
		return false
	}
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

// IsObject reports whether value is a JSON-LD object: a non-nil object with
// both an @context and a type key, regardless of their values.
func IsObject(value any) bool {
	return HasAll(value, keyContext, keyType)
}

// HasType reports whether value is a JSON-LD object whose type equals
// candidate or, when type is an array, contains it.
func HasType(value any, candidate string) bool {
	if !IsObject(value) {
		return false
	}
	return TypeIncludes(value, candidate)
}

// HasContext reports whether value is a JSON-LD object whose @context equals
// candidate or, when @context is an array, lists it as a top-level string
// entry. Embedded context objects are never expanded.
func HasContext(value any, candidate string) bool {
	if !IsObject(value) {
		return false
	}
	return stringslice.Has(Contexts(value), candidate)
}

// HasAnyContext reports whether HasContext holds for at least one candidate.
func HasAnyContext(value any, candidates []string) bool {
	for _, c := range candidates {
		if HasContext(value, c) {
			return true
		}
	}
	return false
}

// IsArray reports whether value is a JSON-LD "one or many" value: a scalar
// passing guard, or an array whose every element passes guard. A nil guard
// accepts anything. Nil is never a JSON-LD array.
func IsArray(value any, guard func(any) bool) bool {
	if value == nil {
		return false
	}
	if arr, ok := value.([]any); ok {
		if guard == nil {
			return true
		}
		for _, item := range arr {
			if !guard(item) {
				return false
			}
		}
		return true
	}
	if guard == nil {
		return true
	}
	return guard(value)
}

// Types returns the string members of the type key of an object. It does not
// require @context, so it serves embedded entities as well as roots.
func Types(value any) []string {
	m, ok := AsObject(value)
	if !ok {
		return nil
	}
	return stringMembers(m[keyType])
}

// TypeIncludes reports whether the object's type key, scalar or array,
// contains any of the candidates. Embedded entities need no @context.
func TypeIncludes(value any, candidates ...string) bool {
	types := Types(value)
	for _, c := range candidates {
		if stringslice.Has(types, c) {
			return true
		}
	}
	return false
}

// TypeIsStrings reports whether the type key, when present, is a string or an
// array made only of strings.
func TypeIsStrings(value any) bool {
	m, ok := AsObject(value)
	if !ok {
		return false
	}
	return isStringOrStrings(m[keyType])
}

// Contexts returns the top-level string entries of an object's @context.
func Contexts(value any) []string {
	m, ok := AsObject(value)
	if !ok {
		return nil
	}
	return stringMembers(m[keyContext])
}

// Items returns a one-or-many value as a slice: nil for nil, the array itself
// for arrays, and a singleton otherwise.
func Items(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

// First returns the first element of a one-or-many value.
func First(value any) (any, bool) {
	items := Items(value)
	if len(items) == 0 {
		return nil, false
	}
	return items[0], true
}

// String returns the value under key when it is a non-empty string.
func String(value any, key string) (string, bool) {
	m, ok := AsObject(value)
	if !ok {
		return "", false
	}
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// FirstText picks a single display string from a text field. A plain string
// is returned as is; for a language map the value of the first tag in
// document order is used. A map[string]any has no order, so its tags are
// taken lexically. Empty strings count as absent.
func FirstText(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case StringMap:
		if len(v.keys) == 0 {
			return "", false
		}
		s := v.values[v.keys[0]]
		return s, s != ""
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s, ok := v[k].(string)
			if !ok {
				continue
			}
			return s, s != ""
		}
	}
	return "", false
}

// IsText reports whether value is a string or a language map of strings.
func IsText(value any) bool {
	switch v := value.(type) {
	case string, StringMap:
		return true
	case map[string]any:
		for _, item := range v {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}

func stringMembers(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func isStringOrStrings(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return true
	case []any:
		for _, item := range v {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}
