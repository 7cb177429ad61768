package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindUndefined marks a slot with no value from any allowed source.
	KindUndefined Kind = iota
	// KindString is a string leaf.
	KindString
	// KindNumber is a float64 leaf; integers are stored the same way.
	KindNumber
	// KindBool is a boolean leaf.
	KindBool
	// KindNode is a mapping of keys to child values.
	KindNode
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindNode:
		return "object"
	default:
		return "undefined"
	}
}

// Value is an immutable configuration tree: either a string, number or
// boolean leaf, a mapping of child values, or undefined.
//
// The zero Value is undefined. Values are safe to copy and share; nothing
// reachable from a Value can be mutated after construction.
type Value struct {
	kind Kind
	// hint keeps the declared leaf type of an undefined value so that
	// coercion still knows what the slot expects.
	hint     Kind
	str      string
	num      float64
	boolean  bool
	children map[string]Value
}

// StringValue returns a string leaf.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue returns a numeric leaf.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue returns a boolean leaf.
func BoolValue(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Undefined returns a value with no content.
func Undefined() Value { return Value{} }

func undefinedOf(kind Kind) Value { return Value{hint: kind} }

// NodeValue returns a mapping node holding a copy of children.
func NodeValue(children map[string]Value) Value {
	cp := make(map[string]Value, len(children))
	for k, v := range children {
		cp[k] = v
	}
	return Value{kind: KindNode, children: cp}
}

// ownedNode wraps children without copying; callers must not retain the map.
func ownedNode(children map[string]Value) Value {
	return Value{kind: KindNode, children: children}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// leafKind is the type a leaf slot expects, including for undefined slots.
func (v Value) leafKind() Kind {
	if v.kind == KindUndefined {
		return v.hint
	}
	return v.kind
}

// IsUndefined reports whether v carries no value.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsNode reports whether v is a mapping.
func (v Value) IsNode() bool { return v.kind == KindNode }

// IsLeaf reports whether v is a string, number or boolean.
func (v Value) IsLeaf() bool {
	return v.kind == KindString || v.kind == KindNumber || v.kind == KindBool
}

// Str returns the string content of a string leaf.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Number returns the content of a numeric leaf.
func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Bool returns the content of a boolean leaf.
func (v Value) Bool() (bool, bool) { return v.boolean, v.kind == KindBool }

// Len reports the number of children of a node.
func (v Value) Len() int { return len(v.children) }

// Keys returns the child keys of a node in sorted order.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.children))
	for k := range v.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the direct child stored under key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindNode {
		return Value{}, false
	}
	child, ok := v.children[key]
	return child, ok
}

// Lookup walks a dotted path such as "sparql.rateLimitMs".
func (v Value) Lookup(path string) (Value, bool) {
	cur := v
	for _, seg := range strings.Split(path, ".") {
		next, ok := cur.Get(seg)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Interface converts the tree into plain Go values: map[string]any, string,
// float64, bool, or nil for undefined.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.boolean
	case KindNode:
		out := make(map[string]any, len(v.children))
		for k, child := range v.children {
			out[k] = child.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether two trees have the same shape and leaf contents.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.boolean == other.boolean
	case KindNode:
		if len(v.children) != len(other.children) {
			return false
		}
		for k, child := range v.children {
			o, ok := other.children[k]
			if !ok || !child.Equal(o) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders leaves as text and nodes as compact JSON.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindNode:
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return "{}"
		}
		return string(data)
	default:
		return "undefined"
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

// FromAny converts decoded JSON, YAML or TOML data into a Value. Nested
// arrays are not part of the configuration model and are rejected.
func FromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Undefined(), nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case uint64:
		return NumberValue(float64(t)), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return NumberValue(n), nil
	case map[string]any:
		children := make(map[string]Value, len(t))
		for k, item := range t {
			child, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			children[k] = child
		}
		return ownedNode(children), nil
	default:
		return Value{}, fmt.Errorf("unsupported value of type %T", raw)
	}
}

// treeBuilder accumulates values at dotted paths before being frozen.
type treeBuilder map[string]any

// set stores leaf at path, replacing anything in the way.
func (b treeBuilder) set(path []string, leaf Value) {
	cur := b
	for i, seg := range path {
		if i == len(path)-1 {
			cur[seg] = leaf
			return
		}
		next, ok := cur[seg].(treeBuilder)
		if !ok {
			next = treeBuilder{}
			cur[seg] = next
		}
		cur = next
	}
}

func (b treeBuilder) freeze() Value {
	children := make(map[string]Value, len(b))
	for k, item := range b {
		switch t := item.(type) {
		case treeBuilder:
			children[k] = t.freeze()
		case Value:
			children[k] = t
		}
	}
	return ownedNode(children)
}
