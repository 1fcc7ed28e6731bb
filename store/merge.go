package store

import (
	"errors"
	"reflect"
)

// Merger lets a record type supply an explicit field mapping instead of the
// reflective copy performed by Merge.
type Merger interface {
	MergeFrom(source interface{})
}

// Merge copies every exported, same-named, assignable field of source onto
// target. Fields present only on target are left untouched; no field is
// ever added or removed. The copy has no cross-field dependencies, so
// merging twice yields the same result as merging once.
//
// target must be a non-nil pointer to a struct. When target implements
// Merger, its explicit mapping is used instead of reflection.
func Merge(target interface{}, source interface{}) error {
	if target == nil {
		return errors.New("merge target must not be nil")
	}

	if merger, ok := target.(Merger); ok {
		merger.MergeFrom(source)
		return nil
	}

	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr || targetValue.IsNil() {
		return errors.New("merge target must be a non-nil pointer to a struct")
	}
	targetValue = targetValue.Elem()

	sourceValue := reflect.Indirect(reflect.ValueOf(source))
	if !sourceValue.IsValid() {
		return errors.New("merge source must not be nil")
	}

	if targetValue.Kind() != reflect.Struct || sourceValue.Kind() != reflect.Struct {
		return errors.New("merge expects struct records")
	}

	sourceType := sourceValue.Type()
	for i := 0; i < sourceType.NumField(); i++ {
		field := sourceType.Field(i)
		if field.PkgPath != "" {
			// unexported
			continue
		}

		targetField := targetValue.FieldByName(field.Name)
		if !targetField.IsValid() || !targetField.CanSet() {
			continue
		}

		sourceField := sourceValue.Field(i)
		if sourceField.Type().AssignableTo(targetField.Type()) {
			targetField.Set(sourceField)
		}
	}

	return nil
}
