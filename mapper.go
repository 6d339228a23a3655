package d1q

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// ColumnFor converts a capitalized-word property name to its default
// column name: lower-case words separated by underscores, e.g.
// FirstName -> first_name. The mapping is deterministic and pure;
// callers override it per field with a `db` struct tag.
func ColumnFor(property string) string {
	var b strings.Builder
	runes := []rune(property)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			// Break before an upper-case letter that starts a new word:
			// either the previous rune is lower-case, or the next one is
			// (end of an acronym like "HTTPPort").
			if i > 0 {
				prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z' || runes[i-1] >= '0' && runes[i-1] <= '9'
				nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if prevLower || nextLower {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// columnForStructField resolves a struct field's column name: the `db`
// tag when present ("-" skips the field), the default mapping otherwise.
func columnForStructField(sf reflect.StructField) string {
	if tag, ok := sf.Tag.Lookup("db"); ok {
		if tag == "-" {
			return ""
		}
		return tag
	}
	return ColumnFor(sf.Name)
}

// Materialize maps a named-value result row into a struct of type T.
// Columns are matched by name through the same mapping the compiler
// aliases its projections with, so materialization is dialect-agnostic.
// NULL columns leave the destination field at its zero value (or a nil
// pointer), which is what a left join's absent inner side produces.
func Materialize[T any](row Row) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	if rv.Kind() != reflect.Struct {
		return out, fmt.Errorf("materialize: %T is not a struct", out)
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		col := columnForStructField(sf)
		if col == "" {
			continue
		}
		val, ok := row[col]
		if !ok || val == nil {
			continue
		}
		if err := assign(rv.Field(i), val); err != nil {
			return out, fmt.Errorf("materialize: column %q: %w", col, err)
		}
	}
	return out, nil
}

// assign sets a struct field from a driver value, converting between
// the narrow set of types SQLite drivers produce (int64, float64,
// string, []byte, bool, time.Time) and the field's declared type.
func assign(dst reflect.Value, val any) error {
	if dst.Kind() == reflect.Pointer {
		p := reflect.New(dst.Type().Elem())
		if err := assign(p.Elem(), val); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}

	sv := reflect.ValueOf(val)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}

	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v := val.(type) {
		case int64:
			dst.SetInt(v)
			return nil
		case float64:
			dst.SetInt(int64(v))
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v, ok := val.(int64); ok && v >= 0 {
			dst.SetUint(uint64(v))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		switch v := val.(type) {
		case float64:
			dst.SetFloat(v)
			return nil
		case int64:
			dst.SetFloat(float64(v))
			return nil
		}
	case reflect.String:
		switch v := val.(type) {
		case string:
			dst.SetString(v)
			return nil
		case []byte:
			dst.SetString(string(v))
			return nil
		}
	case reflect.Bool:
		switch v := val.(type) {
		case bool:
			dst.SetBool(v)
			return nil
		case int64:
			dst.SetBool(v != 0)
			return nil
		}
	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 {
			if v, ok := val.(string); ok {
				dst.SetBytes([]byte(v))
				return nil
			}
		}
	case reflect.Struct:
		if dst.Type() == reflect.TypeOf(time.Time{}) {
			if v, ok := val.(string); ok {
				t, err := parseTime(v)
				if err != nil {
					return err
				}
				dst.Set(reflect.ValueOf(t))
				return nil
			}
		}
	}

	if sv.Type().ConvertibleTo(dst.Type()) {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", val, dst.Type())
}

// parseTime accepts the timestamp layouts SQLite commonly stores.
func parseTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
