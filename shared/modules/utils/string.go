package utils

import (
	"reflect"
	"strings"
)

// TrimAllStringFields returns a copy of input with every reachable string
// (struct fields, slices, maps, pointers) trimmed of surrounding spaces.
// Named string types keep their type.
func TrimAllStringFields[T any](input T) T {
	value := reflect.ValueOf(input)
	if !value.IsValid() {
		return input
	}
	return trimValue(value).Interface().(T)
}

func trimValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		ptr := reflect.New(v.Elem().Type())
		ptr.Elem().Set(trimValue(v.Elem()))
		return ptr

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() || !out.Field(i).CanSet() {
				continue
			}
			out.Field(i).Set(trimValue(v.Field(i)))
		}
		return out

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(trimValue(v.Index(i)))
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(trimValue(iter.Key()), trimValue(iter.Value()))
		}
		return out

	case reflect.String:
		return reflect.ValueOf(strings.TrimSpace(v.String())).Convert(v.Type())
	}
	return v
}
