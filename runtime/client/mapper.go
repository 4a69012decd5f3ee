package client

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/satishbabariya/fluent-query-go/internal/core/result"
)

// ScanAll reads every remaining row of cursor into a slice of structs.
// Columns map to fields by db tag, then by case-insensitive field name.
// Unmapped columns are skipped.
func ScanAll[T any](cursor *result.Cursor) ([]T, error) {
	var results []T
	err := cursor.Each(func(row result.Row) error {
		var dst T
		if err := scanInto(row, &dst); err != nil {
			return err
		}
		results = append(results, dst)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ScanOne reads the next row of cursor into a struct. It returns nil when
// the cursor is exhausted.
func ScanOne[T any](cursor *result.Cursor) (*T, error) {
	row, err := cursor.One()
	if err != nil || row == nil {
		return nil, err
	}

	var dst T
	if err := scanInto(row, &dst); err != nil {
		return nil, err
	}
	return &dst, nil
}

func scanInto(row result.Row, dst any) error {
	val := reflect.ValueOf(dst).Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("scan target must be a struct, got %s", val.Type())
	}
	typ := val.Type()

	for col, v := range row {
		field, ok := findFieldByName(typ, col)
		if !ok {
			continue
		}
		if err := assign(val.FieldByIndex(field.Index), v); err != nil {
			return fmt.Errorf("column %s: %w", col, err)
		}
	}
	return nil
}

// findFieldByName finds a struct field by column name (db tag or field name)
func findFieldByName(typ reflect.Type, colName string) (reflect.StructField, bool) {
	var folded reflect.StructField
	found := false

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(field.Tag.Get("db"), ","); tag != "" {
			if tag == "-" {
				continue
			}
			if tag == colName {
				return field, true
			}
			continue
		}
		if field.Name == colName {
			return field, true
		}
		if !found && strings.EqualFold(field.Name, colName) {
			folded, found = field, true
		}
	}
	return folded, found
}

// assign stores v into field. NULL leaves the zero value; pointer fields
// are allocated for non-NULL values.
func assign(field reflect.Value, v any) error {
	if v == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.Kind() == reflect.Pointer {
		ptr := reflect.New(field.Type().Elem())
		if err := assign(ptr.Elem(), v); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	src := reflect.ValueOf(v)
	switch {
	case src.Type().AssignableTo(field.Type()):
		field.Set(src)
	case field.Kind() == reflect.Bool && src.CanInt():
		// sqlite and mysql report booleans as integers
		field.SetBool(src.Int() != 0)
	case src.Kind() == reflect.String && field.Kind() == reflect.String:
		field.SetString(src.String())
	case src.Kind() != reflect.String && field.Kind() != reflect.String && src.Type().ConvertibleTo(field.Type()):
		field.Set(src.Convert(field.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", v, field.Type())
	}
	return nil
}
