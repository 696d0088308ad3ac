package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/obkit/pkg/jsonld"
)

const (
	maxDepth   = 10000
	maxAliases = 10000
)

var errTooDeep = errors.New("exceeded max nesting depth")

// decodeYAML walks the node tree so that mapping keys keep their order.
// Scalars are decoded by yaml.v3 itself.
func decodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	r := &yamlReader{}
	return r.value(&doc, 0)
}

type yamlReader struct {
	aliases int
}

func (r *yamlReader) value(n *yaml.Node, depth int) (any, error) {
	if depth > maxDepth {
		return nil, errTooDeep
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return r.value(n.Content[0], depth)
	case yaml.AliasNode:
		r.aliases++
		if r.aliases > maxAliases {
			return nil, errors.New("document contains too many aliases")
		}
		return r.value(n.Alias, depth+1)
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := r.value(item, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		return r.mapping(n, depth)
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return normalize(v), nil
	}
}

func (r *yamlReader) mapping(n *yaml.Node, depth int) (any, error) {
	var keys []string
	values := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		kn, vn := n.Content[i], n.Content[i+1]
		v, err := r.value(vn, depth+1)
		if err != nil {
			return nil, err
		}

		// Merged keys never override keys already present; keys written
		// later in the mapping override merged ones.
		if isMerge(kn) {
			for _, src := range jsonld.Items(v) {
				m, ok := jsonld.AsObject(src)
				if !ok {
					return nil, fmt.Errorf("line %d: merge value is not a mapping", vn.Line)
				}
				for _, k := range objectKeys(src, m) {
					if _, dup := values[k]; dup {
						continue
					}
					keys = append(keys, k)
					values[k] = m[k]
				}
			}
			continue
		}

		var k any
		if err := kn.Decode(&k); err != nil {
			return nil, err
		}
		key, ok := k.(string)
		if !ok {
			key = fmt.Sprint(normalize(k))
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = v
	}
	return jsonld.Object(keys, values), nil
}

func isMerge(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Value == "<<" && (n.Tag == "" || n.Tag == "!" || n.ShortTag() == "!!merge")
}

// objectKeys lists the keys of a decoded object, in order when it has one.
func objectKeys(src any, m map[string]any) []string {
	if sm, ok := src.(jsonld.StringMap); ok {
		return sm.Keys()
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// decodeCBOR reads definite-length arrays and maps itself so that map keys
// keep their order; every other item is decoded by decMode.
func decodeCBOR(data []byte) (any, error) {
	r := &cborReader{data: data}
	v, err := r.value(0)
	if err != nil {
		return nil, err
	}
	if len(r.data) > 0 {
		return nil, fmt.Errorf("%d bytes of extraneous data after the first item", len(r.data))
	}
	return v, nil
}

type cborReader struct {
	data []byte
}

const (
	cborArray = 4
	cborMap   = 5
)

func (r *cborReader) value(depth int) (any, error) {
	if depth > maxDepth {
		return nil, errTooDeep
	}
	if len(r.data) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	major, info := r.data[0]>>5, r.data[0]&0x1f
	if (major == cborArray || major == cborMap) && info < 28 {
		n, err := r.head()
		if err != nil {
			return nil, err
		}
		// Every item takes at least one byte.
		if n > uint64(len(r.data)) {
			return nil, io.ErrUnexpectedEOF
		}
		if major == cborArray {
			return r.array(int(n), depth)
		}
		return r.mapping(int(n), depth)
	}

	var v any
	rest, err := decMode.UnmarshalFirst(r.data, &v)
	if err != nil {
		return nil, err
	}
	r.data = rest
	return normalize(v), nil
}

// head consumes the initial byte and argument of an array or map.
func (r *cborReader) head() (uint64, error) {
	info := r.data[0] & 0x1f
	size := 0
	switch {
	case info < 24:
		r.data = r.data[1:]
		return uint64(info), nil
	case info == 24:
		size = 1
	case info == 25:
		size = 2
	case info == 26:
		size = 4
	default:
		size = 8
	}
	if len(r.data) < 1+size {
		return 0, io.ErrUnexpectedEOF
	}
	arg := r.data[1 : 1+size]
	r.data = r.data[1+size:]
	switch size {
	case 1:
		return uint64(arg[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(arg)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(arg)), nil
	}
	return binary.BigEndian.Uint64(arg), nil
}

func (r *cborReader) array(n, depth int) (any, error) {
	arr := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := r.value(depth + 1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	return arr, nil
}

func (r *cborReader) mapping(n, depth int) (any, error) {
	keys := make([]string, 0, n)
	values := make(map[string]any, n)
	for i := 0; i < n; i++ {
		k, err := r.value(depth + 1)
		if err != nil {
			return nil, err
		}
		key, ok := k.(string)
		if !ok {
			key = fmt.Sprint(k)
		}
		v, err := r.value(depth + 1)
		if err != nil {
			return nil, err
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = v
	}
	return jsonld.Object(keys, values), nil
}
