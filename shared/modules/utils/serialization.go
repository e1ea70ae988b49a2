package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNilModel  = errors.New("cannot serialize a nil model")
	ErrEmptyData = errors.New("cannot deserialize empty data")
)

// SerializeModel encodes a model as JSON for byte oriented stores such as
// Redis. Nil pointers are rejected instead of being stored as "null".
func SerializeModel[T any](model T) ([]byte, error) {
	if v := reflect.ValueOf(model); !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return nil, ErrNilModel
	}
	data, err := json.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", model, err)
	}
	return data, nil
}

// DeserializeModel decodes data produced by SerializeModel into target.
func DeserializeModel[T any](data []byte, target *T) error {
	switch {
	case len(data) == 0:
		return ErrEmptyData
	case target == nil:
		return fmt.Errorf("decode %T: nil target", target)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %T: %w", target, err)
	}
	return nil
}
