package cmdutil

import (
	"reflect"
	"strings"
	"time"
	"unicode"
)

// StructToMapOptions configures StructToMap behavior.
type StructToMapOptions struct {
	OmitFields       map[string]bool
	KeyOverrides     map[string]string
	JoinStringSlices bool
}

var timeType = reflect.TypeOf(time.Time{})

// StructToMap flattens a struct into a row for a datastore. Keys come from the
// json tag when present, so rows and JSON exports share column names, and fall
// back to the snake_case field name. Fields tagged `json:"-"` are skipped.
func StructToMap[T any](value T, opts StructToMapOptions) map[string]any {
	result := make(map[string]any)
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return result
		}
		v = v.Elem()
	}
	collectFields(v, result, opts)
	return result
}

func collectFields(v reflect.Value, result map[string]any, opts StructToMapOptions) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() || opts.OmitFields[field.Name] {
			continue
		}

		fv := v.Field(i)
		if field.Anonymous && fv.Kind() == reflect.Struct && fv.Type() != timeType {
			collectFields(fv, result, opts)
			continue
		}

		key, skip := columnName(field)
		if skip {
			continue
		}
		if override, ok := opts.KeyOverrides[field.Name]; ok {
			key = override
		}
		result[key] = columnValue(fv, opts)
	}
}

func columnName(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return toSnakeCase(field.Name), false
	}
	name, _, _ := strings.Cut(tag, ",")
	switch name {
	case "-":
		return "", true
	case "":
		return toSnakeCase(field.Name), false
	default:
		return name, false
	}
}

func columnValue(v reflect.Value, opts StructToMapOptions) any {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch {
	case v.Type() == timeType:
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return nil
		}
		return t.UTC().Format(time.RFC3339)
	case opts.JoinStringSlices && v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.String:
		items := make([]string, v.Len())
		for i := range items {
			items[i] = v.Index(i).String()
		}
		return strings.Join(items, ",")
	}
	return v.Interface()
}

// toSnakeCase converts GoFieldNames to snake_case, keeping acronyms together:
// GutenbergID becomes gutenberg_id and HTTPStatus becomes http_status.
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + 4)

	for i, r := range runes {
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}
		if i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
