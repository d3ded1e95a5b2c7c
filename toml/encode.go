package toml

import (
	"bytes"
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

var textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

// Marshal encodes a struct as TOML: scalars first, then one [table] per nested struct or map
// Field order follows the struct; map keys are sorted. Durations encode as strings
func Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("toml: cannot marshal nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("toml: root must be a struct or map, got %s", rv.Kind())
	}

	var buf bytes.Buffer
	if err := writeTable(&buf, "", rv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type member struct {
	key string
	val reflect.Value
}

func members(rv reflect.Value) []member {
	var out []member
	switch rv.Kind() {
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := fieldKey(f)
			if name == "-" {
				continue
			}
			out = append(out, member{key: name, val: rv.Field(i)})
		}
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			out = append(out, member{key: k.String(), val: rv.MapIndex(k)})
		}
	}
	return out
}

func writeTable(buf *bytes.Buffer, prefix string, rv reflect.Value) error {
	var tables []member
	for _, m := range members(rv) {
		val := deref(m.val)
		if !val.IsValid() || (val.Kind() == reflect.Map && val.IsNil()) {
			continue
		}
		if isTable(val) {
			tables = append(tables, member{key: m.key, val: val})
			continue
		}
		buf.WriteString(quoteKey(m.key))
		buf.WriteString(" = ")
		if err := writeValue(buf, val); err != nil {
			return fmt.Errorf("toml: key %s: %w", join(prefix, m.key), err)
		}
		buf.WriteByte('\n')
	}

	for _, m := range tables {
		path := join(prefix, quoteKey(m.key))
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(buf, "[%s]\n", path)
		if err := writeTable(buf, path, m.val); err != nil {
			return err
		}
	}
	return nil
}

func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isTable(v reflect.Value) bool {
	if v.Type().Implements(textMarshalerType) {
		return false
	}
	return v.Kind() == reflect.Struct || v.Kind() == reflect.Map
}

func writeValue(buf *bytes.Buffer, v reflect.Value) error {
	if v.Type() == durationType {
		buf.WriteString(strconv.Quote(time.Duration(v.Int()).String()))
		return nil
	}
	if v.Type().Implements(textMarshalerType) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return err
		}
		buf.WriteString(strconv.Quote(string(text)))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		buf.WriteString(strconv.Quote(v.String()))
	case reflect.Bool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		buf.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		s := strconv.FormatFloat(v.Float(), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		buf.WriteString(s)
	case reflect.Slice, reflect.Array:
		buf.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				buf.WriteString(", ")
			}
			elem := deref(v.Index(i))
			if !elem.IsValid() || isTable(elem) {
				return fmt.Errorf("array element %d: only scalar arrays are supported", i)
			}
			if err := writeValue(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unsupported type %s", v.Type())
	}
	return nil
}

func quoteKey(k string) string {
	if k == "" {
		return `""`
	}
	for _, r := range k {
		if !isBareChar(r) {
			return strconv.Quote(k)
		}
	}
	return k
}
