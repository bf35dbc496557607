package bstable

import (
	"fmt"
	"reflect"
)

// RowFromStruct converts a struct or struct pointer to a Row
// using the passed naming.
func RowFromStruct(strct any, naming *StructFieldNaming) (Row, error) {
	v := reflect.ValueOf(strct)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct or struct pointer, got %T", strct)
	}
	return structRow(v, naming), nil
}

// RowsFromStructs converts a slice or array of structs
// or struct pointers to rows using the passed naming.
// nil struct pointers result in nil rows.
func RowsFromStructs(slice any, naming *StructFieldNaming) ([]Row, error) {
	v := reflect.ValueOf(slice)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected slice or array of structs, got %T", slice)
	}
	if derefType(v.Type().Elem()).Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected slice or array of structs, got %T", slice)
	}
	rows := make([]Row, v.Len())
	for i := range rows {
		elem := v.Index(i)
		if elem.Kind() == reflect.Pointer {
			if elem.IsNil() {
				continue
			}
			elem = elem.Elem()
		}
		rows[i] = structRow(elem, naming)
	}
	return rows, nil
}

// ColumnsFromStruct returns a new Column for every exported
// field of structType that is not ignored by the naming.
func ColumnsFromStruct(structType reflect.Type, naming *StructFieldNaming) ([]*Column, error) {
	if derefType(structType).Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct type, got %s", structType)
	}
	var columns []*Column
	for _, field := range StructFieldTypes(structType) {
		if naming.IsIgnored(field) {
			continue
		}
		columns = append(columns, NewColumn(naming.StructFieldKey(field), naming.StructFieldTitle(field)))
	}
	return columns, nil
}

func structRow(v reflect.Value, naming *StructFieldNaming) Row {
	var (
		fields = StructFieldTypes(v.Type())
		values = StructFieldValues(v)
		row    = make(Row, len(fields))
	)
	for i, field := range fields {
		if naming.IsIgnored(field) {
			continue
		}
		var val any
		if values[i].IsValid() && values[i].CanInterface() {
			val = values[i].Interface()
		}
		row[naming.StructFieldKey(field)] = val
	}
	return row
}
