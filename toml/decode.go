package toml

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"
)

var (
	durationType        = reflect.TypeOf(time.Duration(0))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// DecodeError names the dotted key whose value could not be stored
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("toml: key %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnknownKeysError lists keys that match no struct field
type UnknownKeysError struct {
	Keys []string
}

func (e *UnknownKeysError) Error() string {
	return "toml: unknown keys: " + strings.Join(e.Keys, ", ")
}

// Unmarshal parses data and stores it into the struct pointed to by v
// Fields absent from data keep their current values, so v may carry defaults
// Keys without a matching field are ignored
func Unmarshal(data []byte, v any) error {
	_, err := decode(data, v)
	return err
}

// UnmarshalStrict is Unmarshal that fails with *UnknownKeysError on unmatched keys
func UnmarshalStrict(data []byte, v any) error {
	unknown, err := decode(data, v)
	if err != nil {
		return err
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &UnknownKeysError{Keys: unknown}
	}
	return nil
}

// Keys returns the dotted paths of every leaf value in data, sorted
func Keys(data []byte) ([]string, error) {
	tree, err := NewParser(data).Parse()
	if err != nil {
		return nil, err
	}
	var keys []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			path := join(prefix, k)
			if child, ok := v.(map[string]any); ok {
				walk(path, child)
				continue
			}
			keys = append(keys, path)
		}
	}
	walk("", tree)
	sort.Strings(keys)
	return keys, nil
}

func decode(data []byte, v any) ([]string, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("toml: target must be a non-nil pointer, got %T", v)
	}
	tree, err := NewParser(data).Parse()
	if err != nil {
		return nil, err
	}
	d := &decoder{}
	if err := d.value("", tree, rv.Elem()); err != nil {
		return nil, err
	}
	return d.unknown, nil
}

type decoder struct {
	unknown []string
}

func (d *decoder) value(key string, data any, v reflect.Value) error {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return d.value(key, data, v.Elem())
	}

	if v.Type() == durationType {
		s, ok := data.(string)
		if !ok {
			return &DecodeError{Key: key, Err: fmt.Errorf("duration must be a string like \"10m\", got %s", typeName(data))}
		}
		dur, err := time.ParseDuration(s)
		if err != nil {
			return &DecodeError{Key: key, Err: err}
		}
		v.SetInt(int64(dur))
		return nil
	}

	if v.CanAddr() && v.Addr().Type().Implements(textUnmarshalerType) {
		s, ok := data.(string)
		if !ok {
			return &DecodeError{Key: key, Err: fmt.Errorf("expected string, got %s", typeName(data))}
		}
		if err := v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return &DecodeError{Key: key, Err: err}
		}
		return nil
	}

	switch v.Kind() {
	case reflect.Struct:
		m, ok := data.(map[string]any)
		if !ok {
			return &DecodeError{Key: key, Err: fmt.Errorf("expected table, got %s", typeName(data))}
		}
		return d.table(key, m, v)

	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return &DecodeError{Key: key, Err: fmt.Errorf("map key must be string")}
		}
		m, ok := data.(map[string]any)
		if !ok {
			return &DecodeError{Key: key, Err: fmt.Errorf("expected table, got %s", typeName(data))}
		}
		if v.IsNil() {
			v.Set(reflect.MakeMapWithSize(v.Type(), len(m)))
		}
		for k, item := range m {
			elem := reflect.New(v.Type().Elem()).Elem()
			if err := d.value(join(key, k), item, elem); err != nil {
				return err
			}
			v.SetMapIndex(reflect.ValueOf(k).Convert(v.Type().Key()), elem)
		}
		return nil

	case reflect.Slice:
		arr, ok := data.([]any)
		if !ok {
			return &DecodeError{Key: key, Err: fmt.Errorf("expected array, got %s", typeName(data))}
		}
		out := reflect.MakeSlice(v.Type(), len(arr), len(arr))
		for i, item := range arr {
			if err := d.value(fmt.Sprintf("%s[%d]", key, i), item, out.Index(i)); err != nil {
				return err
			}
		}
		v.Set(out)
		return nil

	case reflect.Interface:
		if v.NumMethod() != 0 {
			return &DecodeError{Key: key, Err: fmt.Errorf("cannot decode into %s", v.Type())}
		}
		v.Set(reflect.ValueOf(data))
		return nil

	case reflect.String:
		s, ok := data.(string)
		if !ok {
			return &DecodeError{Key: key, Err: fmt.Errorf("expected string, got %s", typeName(data))}
		}
		v.SetString(s)
		return nil

	case reflect.Bool:
		b, ok := data.(bool)
		if !ok {
			return &DecodeError{Key: key, Err: fmt.Errorf("expected boolean, got %s", typeName(data))}
		}
		v.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := data.(int64)
		if !ok {
			return &DecodeError{Key: key, Err: fmt.Errorf("expected integer, got %s", typeName(data))}
		}
		if v.OverflowInt(n) {
			return &DecodeError{Key: key, Err: fmt.Errorf("%d overflows %s", n, v.Type())}
		}
		v.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := data.(int64)
		if !ok || n < 0 {
			return &DecodeError{Key: key, Err: fmt.Errorf("expected non-negative integer, got %v", data)}
		}
		if v.OverflowUint(uint64(n)) {
			return &DecodeError{Key: key, Err: fmt.Errorf("%d overflows %s", n, v.Type())}
		}
		v.SetUint(uint64(n))
		return nil

	case reflect.Float32, reflect.Float64:
		var f float64
		switch n := data.(type) {
		case float64:
			f = n
		case int64:
			f = float64(n)
		default:
			return &DecodeError{Key: key, Err: fmt.Errorf("expected number, got %s", typeName(data))}
		}
		if v.Kind() == reflect.Float32 && math.Abs(f) > math.MaxFloat32 {
			return &DecodeError{Key: key, Err: fmt.Errorf("%v overflows float32", f)}
		}
		v.SetFloat(f)
		return nil
	}

	return &DecodeError{Key: key, Err: fmt.Errorf("unsupported field type %s", v.Type())}
}

// table fills struct fields by their toml tag, or the lowercased field name
func (d *decoder) table(prefix string, m map[string]any, v reflect.Value) error {
	t := v.Type()
	seen := make(map[string]bool, len(m))

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := fieldKey(f)
		if name == "-" {
			continue
		}
		item, ok := m[name]
		if !ok {
			continue
		}
		seen[name] = true
		if err := d.value(join(prefix, name), item, v.Field(i)); err != nil {
			return err
		}
	}

	for k := range m {
		if !seen[k] {
			d.unknown = append(d.unknown, join(prefix, k))
		}
	}
	return nil
}

func fieldKey(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("toml"); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" {
			return name
		}
	}
	return strings.ToLower(f.Name)
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func typeName(data any) string {
	switch data.(type) {
	case string:
		return "string"
	case int64:
		return "integer"
	case float64:
		return "float"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "table"
	}
	return fmt.Sprintf("%T", data)
}
