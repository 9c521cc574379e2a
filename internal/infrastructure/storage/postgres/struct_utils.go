package postgres

import (
	"database/sql/driver"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
)

// ExtractDBColumns lists the "db" tags of T in field order. Embedded structs
// are flattened.
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := getOrCreateTypeMetadata(reflect.TypeOf(zero))
	cols := make([]string, len(meta.fields))
	for i, f := range meta.fields {
		cols[i] = f.column
	}
	return cols
}

// fieldInfo describes one mapped struct field.
type fieldInfo struct {
	index  []int    // field index path, through embedded structs
	column string   // "db" tag
	path   []string // document path; "doc" tag or the column
}

type typeMetadata struct {
	fields []fieldInfo
}

var typeCache sync.Map // map[reflect.Type]*typeMetadata

func getOrCreateTypeMetadata(t reflect.Type) *typeMetadata {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		collectFields(t, nil, meta)
	}
	typeCache.Store(t, meta)
	return meta
}

func collectFields(t reflect.Type, parent []int, meta *typeMetadata) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int{}, parent...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, index, meta)
			continue
		}

		column := field.Tag.Get("db")
		if column == "" || column == "-" {
			continue
		}
		path := column
		if doc := field.Tag.Get("doc"); doc != "" {
			path = doc
		}
		meta.fields = append(meta.fields, fieldInfo{
			index:  index,
			column: column,
			path:   strings.Split(path, "."),
		})
	}
}

// StructToDoc converts a scanned row into a document. NULL (nil pointer)
// columns are omitted and timestamps become epoch seconds, matching the
// shape of CRM documents. A dotted "doc" tag nests the value.
func StructToDoc(v any) document.Doc {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := getOrCreateTypeMetadata(rv.Type())
	doc := make(document.Doc, len(meta.fields))
	for _, f := range meta.fields {
		val, ok := docValue(rv.FieldByIndex(f.index))
		if !ok {
			continue
		}
		setPath(doc, f.path, val)
	}
	return doc
}

func docValue(fv reflect.Value) (any, bool) {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return nil, false
		}
		fv = fv.Elem()
	}
	switch x := fv.Interface().(type) {
	case driver.Valuer:
		val, err := x.Value()
		if err != nil || val == nil {
			return nil, false
		}
		return val, true
	case time.Time:
		if x.IsZero() {
			return nil, false
		}
		return x.Unix(), true
	default:
		return x, true
	}
}

func setPath(doc document.Doc, path []string, val any) {
	for _, key := range path[:len(path)-1] {
		next, ok := doc[key].(document.Doc)
		if !ok {
			next = document.Doc{}
			doc[key] = next
		}
		doc = next
	}
	doc[path[len(path)-1]] = val
}
