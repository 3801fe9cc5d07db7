package domain

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
)

// Leaf is one numeric scalar reachable in the Input Model
type Leaf struct {
	Path  string
	Value float64
	IsInt bool
}

// FieldRef describes the value found at a dotted path
type FieldRef struct {
	Path    string
	Present bool
	Numeric bool
	Number  float64
	Text    string
	Len     int
}

// Clone returns a deep copy that shares no pointers with in
func (in *Inputs) Clone() *Inputs {
	if in == nil {
		return nil
	}
	return cloneValue(reflect.ValueOf(in)).Interface().(*Inputs)
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		n := reflect.New(v.Type().Elem())
		n.Elem().Set(cloneValue(v.Elem()))
		return n
	case reflect.Struct:
		n := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if n.Field(i).CanSet() {
				n.Field(i).Set(cloneValue(v.Field(i)))
			}
		}
		return n
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		n := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			n.Index(i).Set(cloneValue(v.Index(i)))
		}
		return n
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		n := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			n.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return n
	default:
		return v
	}
}

// fieldName returns the yaml key of a struct field, or "" when it has none
func fieldName(f reflect.StructField) string {
	if f.PkgPath != "" {
		return ""
	}
	tag := f.Tag.Get("yaml")
	if tag == "-" {
		return ""
	}
	name := strings.Split(tag, ",")[0]
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

// ScalarLeaves enumerates every set numeric non-boolean leaf of root, sorted by path.
// Nil pointers, strings, booleans, slices and maps are not leaves.
func ScalarLeaves(root any) []Leaf {
	var leaves []Leaf
	walkLeaves(reflect.ValueOf(root), "", &leaves)
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].Path < leaves[j].Path })
	return leaves
}

func walkLeaves(v reflect.Value, prefix string, out *[]Leaf) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		*out = append(*out, Leaf{Path: prefix, Value: v.Float()})
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		*out = append(*out, Leaf{Path: prefix, Value: float64(v.Int()), IsInt: true})
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			name := fieldName(t.Field(i))
			if name == "" {
				continue
			}
			walkLeaves(v.Field(i), joinPath(prefix, name), out)
		}
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// resolve follows path through root. It returns the addressable field value and
// whether every pointer on the way was set.
func resolve(root reflect.Value, path string) (reflect.Value, bool, error) {
	v := root
	for _, seg := range strings.Split(path, ".") {
		for v.Kind() == reflect.Ptr {
			if v.IsNil() {
				// keep walking the type so unknown paths still error
				if _, err := fieldByYAML(v.Type().Elem(), seg); err != nil {
					return reflect.Value{}, false, fmt.Errorf("path %s: %w", path, err)
				}
				return reflect.Value{}, false, nil
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, false, fmt.Errorf("path %s: %q is not a group", path, seg)
		}
		idx, err := fieldByYAML(v.Type(), seg)
		if err != nil {
			return reflect.Value{}, false, fmt.Errorf("path %s: %w", path, err)
		}
		v = v.Field(idx)
	}
	return v, true, nil
}

func fieldByYAML(t reflect.Type, name string) (int, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return 0, fmt.Errorf("%q is not a group", name)
	}
	for i := 0; i < t.NumField(); i++ {
		if fieldName(t.Field(i)) == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}

// Lookup returns what is stored at path. An unknown path is an error; a path
// whose group or leaf pointer is nil is reported as not present.
func Lookup(root any, path string) (FieldRef, error) {
	ref := FieldRef{Path: path}
	v, ok, err := resolve(reflect.ValueOf(root), path)
	if err != nil || !ok {
		return ref, err
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ref, nil
		}
		v = v.Elem()
	}
	ref.Present = true
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		ref.Numeric = true
		ref.Number = v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		ref.Numeric = true
		ref.Number = float64(v.Int())
	case reflect.String:
		ref.Text = v.String()
		ref.Present = ref.Text != ""
	case reflect.Slice, reflect.Map:
		ref.Len = v.Len()
		ref.Present = ref.Len > 0
	}
	return ref, nil
}

// SetLeaf writes value at path. Integer leaves are rounded to the nearest whole
// number. The path must already be present.
func SetLeaf(root any, path string, value float64) error {
	rv := reflect.ValueOf(root)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("set %s: root must be a non-nil pointer", path)
	}
	v, ok, err := resolve(rv, path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("set %s: path is not present", path)
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("set %s: leaf is not set", path)
		}
		v = v.Elem()
	}
	if !v.CanSet() {
		return fmt.Errorf("set %s: leaf is not settable", path)
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		v.SetFloat(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(math.Round(value)))
	default:
		return fmt.Errorf("set %s: %s is not numeric", path, v.Kind())
	}
	return nil
}
