package jsonld

// NewMap starts an output object from a record's extension fields. The
// extras are copied so the record is never aliased by its output.
func NewMap(extra map[string]any) map[string]any {
	m := make(map[string]any, len(extra)+8)
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// Put sets key on m unless v is nil or an empty string. Typed fields call it
// with the output of their Value methods, which return nil when unset.
func Put(m map[string]any, key string, v any) {
	switch t := v.(type) {
	case nil:
		return
	case string:
		if t == "" {
			return
		}
	}
	m[key] = v
}
