package util

import (
	"fmt"
	"reflect"
)

// IsStructInitialized returns an error naming the first nil pointer, interface,
// map, func, chan or slice field of the struct v points to.
func IsStructInitialized(v interface{}) error {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return fmt.Errorf("struct pointer is nil")
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("expected a struct, got %s", val.Kind())
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		structField := typ.Field(i)

		if !structField.IsExported() {
			continue
		}

		switch field.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice:
			if field.IsNil() {
				return fmt.Errorf("field %s of %s is not initialized", structField.Name, typ.Name())
			}
		default:
		}
	}

	return nil
}
