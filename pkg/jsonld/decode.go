package jsonld

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Unmarshaler is implemented by field types that narrow a polymorphic JSON-LD
// value (IRI or object, one or many, string or language map) themselves.
type Unmarshaler interface {
	UnmarshalLD(data any) error
}

var unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()

// Decode decodes an untyped JSON-LD value into out, a pointer to a struct
// tagged with mapstructure tags. Fields whose type implements Unmarshaler are
// decoded by that implementation; unknown keys land in the struct's
// ",remain" field. StringMap values are seen as plain objects by every
// field except Unmarshalers and interface-typed ones.
func Decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: unmarshalerHook,
		Result:     out,
	})
	if err != nil {
		return fmt.Errorf("jsonld: failed to create decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("jsonld: %w", err)
	}
	return nil
}

func unmarshalerHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if !reflect.PointerTo(to).Implements(unmarshalerType) {
		if sm, ok := data.(StringMap); ok && to.Kind() != reflect.Interface {
			return sm.Map(), nil
		}
		return data, nil
	}
	v := reflect.New(to)
	if err := v.Interface().(Unmarshaler).UnmarshalLD(data); err != nil {
		return nil, err
	}
	return v.Elem().Interface(), nil
}

// Ref is a field that holds either an IRI reference or an embedded object.
// Referenced documents are never fetched.
type Ref[T any] struct {
	IRI    string
	Object *T
}

// RefIRI returns a reference by IRI.
func RefIRI[T any](iri string) Ref[T] {
	return Ref[T]{IRI: iri}
}

// Embed returns an embedded reference.
func Embed[T any](obj *T) Ref[T] {
	return Ref[T]{Object: obj}
}

// IsEmbedded reports whether the object is present inline.
func (r Ref[T]) IsEmbedded() bool {
	return r.Object != nil
}

// IsZero reports whether neither form is set.
func (r Ref[T]) IsZero() bool {
	return r.Object == nil && r.IRI == ""
}

// Value returns the JSON-LD representation, encoding an embedded object
// with encode.
func (r Ref[T]) Value(encode func(*T) map[string]any) any {
	if r.Object != nil {
		return encode(r.Object)
	}
	if r.IRI == "" {
		return nil
	}
	return r.IRI
}

// UnmarshalLD implements Unmarshaler.
func (r *Ref[T]) UnmarshalLD(data any) error {
	if s, ok := data.(string); ok {
		*r = Ref[T]{IRI: s}
		return nil
	}
	m, ok := AsObject(data)
	if !ok {
		return fmt.Errorf("jsonld: reference is %T, want IRI or object", data)
	}
	obj := new(T)
	if err := Decode(m, obj); err != nil {
		return err
	}
	*r = Ref[T]{Object: obj}
	return nil
}

// OneOrMany is a field that may hold a single value or an array. The shape
// of the input is remembered so it can be written back the same way.
type OneOrMany[T any] struct {
	Items    []T
	Multiple bool
}

// One returns a single-valued field.
func One[T any](v T) OneOrMany[T] {
	return OneOrMany[T]{Items: []T{v}}
}

// Many returns an array-valued field.
func Many[T any](vs ...T) OneOrMany[T] {
	return OneOrMany[T]{Items: vs, Multiple: true}
}

// Len returns the number of items.
func (o OneOrMany[T]) Len() int {
	return len(o.Items)
}

// First returns the first item.
func (o OneOrMany[T]) First() (T, bool) {
	if len(o.Items) == 0 {
		var zero T
		return zero, false
	}
	return o.Items[0], true
}

// Value returns the JSON-LD representation using encode for each item.
func (o OneOrMany[T]) Value(encode func(T) any) any {
	if len(o.Items) == 0 {
		return nil
	}
	if !o.Multiple && len(o.Items) == 1 {
		return encode(o.Items[0])
	}
	out := make([]any, len(o.Items))
	for i, item := range o.Items {
		out[i] = encode(item)
	}
	return out
}

// UnmarshalLD implements Unmarshaler.
func (o *OneOrMany[T]) UnmarshalLD(data any) error {
	_, multiple := data.([]any)
	items := Items(data)
	out := OneOrMany[T]{Items: make([]T, 0, len(items)), Multiple: multiple}
	for i, item := range items {
		var v T
		if err := Decode(item, &v); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		out.Items = append(out.Items, v)
	}
	*o = out
	return nil
}
