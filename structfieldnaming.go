package bstable

import (
	"fmt"
	"reflect"
	"strings"
)

// DefaultStructFieldNaming uses the "json" struct field tag
// as row key, ignores "-" tagged fields, uses the struct field name
// for untagged fields and the "title" tag or the space separated
// field name as column title.
var DefaultStructFieldNaming = StructFieldNaming{
	Tag:      "json",
	Ignore:   "-",
	TitleTag: "title",
	Untitled: SpacePascalCase,
}

// StructFieldNaming defines how struct fields
// are mapped to row keys and column titles.
//
// nil is a valid value for *StructFieldNaming
// and is equal to the zero value
// which will use all exported struct fields
// with their field name as key and title.
type StructFieldNaming struct {
	// Tag is the struct field tag to be used as row key.
	// If Tag is empty, then every struct field will be treated as untagged.
	Tag string
	// Ignore is the key that excludes a field.
	Ignore string
	// Untagged will be called with the struct field name to
	// return a key in case the struct field has no tag named Tag.
	// If Untagged is nil, then the struct field name will be used.
	Untagged func(fieldName string) (key string)
	// TitleTag is the struct field tag to be used as column title.
	TitleTag string
	// Untitled will be called with the struct field name to
	// return a title in case the struct field has no tag named TitleTag.
	// If Untitled is nil, then the struct field name will be used.
	Untitled func(fieldName string) (title string)
}

// String implements the fmt.Stringer interface for StructFieldNaming.
func (n *StructFieldNaming) String() string {
	if n == nil {
		return `StructFieldNaming{Tag: "", Ignore: ""}`
	}
	return fmt.Sprintf("StructFieldNaming{Tag: %#v, Ignore: %#v}", n.Tag, n.Ignore)
}

// StructFieldKey returns the row key for a struct field.
func (n *StructFieldNaming) StructFieldKey(structField reflect.StructField) string {
	if n == nil {
		return structField.Name
	}
	if key, ok := lookupTagName(structField, n.Tag); ok {
		return key
	}
	if n.Untagged == nil {
		return structField.Name
	}
	return n.Untagged(structField.Name)
}

// StructFieldTitle returns the column title for a struct field.
func (n *StructFieldNaming) StructFieldTitle(structField reflect.StructField) string {
	if n == nil {
		return structField.Name
	}
	if title, ok := lookupTagName(structField, n.TitleTag); ok {
		return title
	}
	if n.Untitled == nil {
		return structField.Name
	}
	return n.Untitled(structField.Name)
}

// IsIgnored returns true if the key of structField
// equals the Ignore value of the naming.
func (n *StructFieldNaming) IsIgnored(structField reflect.StructField) bool {
	if n == nil || n.Ignore == "" {
		return false
	}
	return n.StructFieldKey(structField) == n.Ignore
}

// Keys returns the row keys of the exported fields
// of a struct type that are not ignored.
func (n *StructFieldNaming) Keys(structType reflect.Type) []string {
	keys := []string{}
	for _, field := range StructFieldTypes(structType) {
		if !n.IsIgnored(field) {
			keys = append(keys, n.StructFieldKey(field))
		}
	}
	return keys
}

func lookupTagName(structField reflect.StructField, tagName string) (string, bool) {
	if tagName == "" {
		return "", false
	}
	tag, ok := structField.Tag.Lookup(tagName)
	if !ok {
		return "", false
	}
	if i := strings.IndexByte(tag, ','); i != -1 {
		tag = tag[:i]
	}
	return tag, tag != ""
}
