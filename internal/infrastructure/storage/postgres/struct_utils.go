package postgres

import (
	"reflect"
)

// ExtractDBColumns lists the column names from a struct's "db" tags,
// walking embedded structs (entity.Document and friends) recursively.
// Called once per repository at construction time.
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsOf(field.Type)...)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	return cols
}

// StructToMap flattens a struct into column -> value using "db" tags,
// recursing into embedded structs. Untagged fields are skipped.
func StructToMap(v any) map[string]any {
	out := make(map[string]any)
	valueToMap(reflect.ValueOf(v), out)
	return out
}

func valueToMap(rv reflect.Value, out map[string]any) {
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return
	}

	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			valueToMap(rv.Field(i), out)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		out[tag] = rv.Field(i).Interface()
	}
}
