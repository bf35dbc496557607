package bstable

import (
	"math"
	"testing"
)

func TestSpacePascalCase(t *testing.T) {
	tests := []struct {
		testName string
		name     string
		want     string
	}{
		{testName: "", name: "", want: ""},
		{testName: "HelloWorld", name: "HelloWorld", want: "Hello World"},
		{testName: "_Hello_World", name: "_Hello_World", want: "Hello World"},
		{testName: "helloWorld", name: "helloWorld", want: "hello World"},
		{testName: "helloWorld_", name: "helloWorld_", want: "hello World"},
		{testName: "ThisHasMoreSpacesForSure", name: "ThisHasMoreSpacesForSure", want: "This Has More Spaces For Sure"},
		{testName: "ThisHasMore_Spaces__ForSure", name: "ThisHasMore_Spaces__ForSure", want: "This Has More Spaces For Sure"},
		{testName: "first_name", name: "first_name", want: "first name"},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			if got := SpacePascalCase(tt.name); got != tt.want {
				t.Errorf("SpacePascalCase() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsFalsy(t *testing.T) {
	var (
		nilPtr  *int
		zero    = 0
		nonZero = 1
	)
	tests := []struct {
		name string
		val  any
		want bool
	}{
		{name: "nil", val: nil, want: true},
		{name: "false", val: false, want: true},
		{name: "true", val: true, want: false},
		{name: "empty string", val: "", want: true},
		{name: "string", val: "0", want: false},
		{name: "zero int", val: 0, want: true},
		{name: "int", val: -1, want: false},
		{name: "zero uint", val: uint8(0), want: true},
		{name: "zero float", val: 0.0, want: true},
		{name: "NaN", val: math.NaN(), want: true},
		{name: "float", val: 0.5, want: false},
		{name: "nil pointer", val: nilPtr, want: true},
		{name: "pointer to zero", val: &zero, want: true},
		{name: "pointer to non zero", val: &nonZero, want: false},
		{name: "empty slice", val: []int{}, want: false},
		{name: "nil slice", val: []int(nil), want: true},
		{name: "empty struct", val: struct{}{}, want: true},
		{name: "map", val: map[string]any{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFalsy(tt.val); got != tt.want {
				t.Errorf("IsFalsy(%#v) = %v, want %v", tt.val, got, tt.want)
			}
		})
	}
}
