// Package document gives uniform read access to decoded store documents.
//
// Joined fields come back either as a scalar or as an array depending on
// the join cardinality and whether the stage was unwound. Nested documents
// may be bson.M, bson.D or plain maps. Callers should not type-switch on
// that shape themselves: Lookup always returns a OneOrMany.
package document

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Doc is one decoded document (aggregation result row).
type Doc map[string]any

// OneOrMany normalizes a value that may be stored as a scalar or as an array.
type OneOrMany[T any] struct {
	items []T
}

// One wraps a single value.
func One[T any](v T) OneOrMany[T] { return OneOrMany[T]{items: []T{v}} }

// Many wraps a list of values.
func Many[T any](vs ...T) OneOrMany[T] { return OneOrMany[T]{items: vs} }

// First returns the first element; ok is false when empty.
func (o OneOrMany[T]) First() (T, bool) {
	if len(o.items) == 0 {
		var zero T
		return zero, false
	}
	return o.items[0], true
}

// All returns every element in stored order.
func (o OneOrMany[T]) All() []T { return o.items }

// Len returns the element count.
func (o OneOrMany[T]) Len() int { return len(o.items) }

// IsEmpty reports whether no value is present.
func (o OneOrMany[T]) IsEmpty() bool { return len(o.items) == 0 }

// Filter keeps the elements matching keep, preserving order.
func (o OneOrMany[T]) Filter(keep func(T) bool) OneOrMany[T] {
	out := make([]T, 0, len(o.items))
	for _, it := range o.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return OneOrMany[T]{items: out}
}

// Of normalizes a raw decoded value. Arrays become Many, nil becomes empty,
// anything else becomes One.
func Of(v any) OneOrMany[any] {
	switch x := v.(type) {
	case nil:
		return OneOrMany[any]{}
	case primitive.A:
		return Many([]any(x)...)
	case []any:
		return Many(x...)
	case []Doc:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return Many(out...)
	case []map[string]any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return Many(out...)
	case []string:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return Many(out...)
	default:
		return One(v)
	}
}

// AsDoc converts any nested document shape into a Doc.
func AsDoc(v any) (Doc, bool) {
	switch x := v.(type) {
	case Doc:
		return x, true
	case map[string]any:
		return Doc(x), true
	case primitive.M:
		return Doc(x), true
	case primitive.D:
		out := make(Doc, len(x))
		for _, e := range x {
			out[e.Key] = e.Value
		}
		return out, true
	default:
		return nil, false
	}
}

// FromBSON converts a decoded bson.M into a Doc.
func FromBSON(m bson.M) Doc { return Doc(m) }

// Lookup resolves a dotted path. Arrays met on the way are traversed
// element-wise (like a store path expression), so "tags.name" over
// [{name:a},{name:b}] yields Many(a, b) and over {name:a} yields One(a).
func Lookup(v any, path string) OneOrMany[any] {
	if path == "" {
		return Of(v)
	}
	head, rest, _ := strings.Cut(path, ".")

	var out []any
	for _, item := range Of(v).All() {
		d, ok := AsDoc(item)
		if !ok {
			continue
		}
		child, ok := d[head]
		if !ok || child == nil {
			continue
		}
		out = append(out, Lookup(child, rest).All()...)
	}
	return Many(out...)
}

// Get returns the normalized value at path.
func (d Doc) Get(path string) OneOrMany[any] { return Lookup(d, path) }

// Value returns the first value at path.
func (d Doc) Value(path string) (any, bool) { return d.Get(path).First() }

// String returns the first value at path rendered as a string, "" when absent.
func (d Doc) String(path string) string {
	v, ok := d.Value(path)
	if !ok {
		return ""
	}
	return ToString(v)
}

// Strings returns every value at path rendered as strings.
func (d Doc) Strings(path string) []string {
	all := d.Get(path).All()
	out := make([]string, 0, len(all))
	for _, v := range all {
		out = append(out, ToString(v))
	}
	return out
}

// Int64 returns the first value at path as an integer.
func (d Doc) Int64(path string) (int64, bool) {
	v, ok := d.Value(path)
	if !ok {
		return 0, false
	}
	return ToInt64(v)
}

// Bool returns the first value at path as a bool, false when absent.
func (d Doc) Bool(path string) bool {
	v, ok := d.Value(path)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Docs returns every nested document at path.
func (d Doc) Docs(path string) []Doc {
	all := d.Get(path).All()
	out := make([]Doc, 0, len(all))
	for _, v := range all {
		if sub, ok := AsDoc(v); ok {
			out = append(out, sub)
		}
	}
	return out
}

// ToString renders scalar store values for display.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case primitive.ObjectID:
		return x.Hex()
	case primitive.Decimal128:
		return x.String()
	case primitive.DateTime:
		return x.Time().UTC().Format("2006-01-02T15:04:05Z")
	case interface{ String() string }:
		return x.String()
	default:
		return ""
	}
}

// ToInt64 converts numeric store values (and numeric strings) to int64.
// Fractions are truncated.
func ToInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		return int64(x), true
	case primitive.DateTime:
		return int64(x) / 1000, true
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}
