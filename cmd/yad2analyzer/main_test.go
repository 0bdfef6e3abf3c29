package main

import (
	"reflect"
	"testing"
)

func TestSplitFileList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"listings.json", []string{"listings.json"}},
		{"a.json,b.json", []string{"a.json", "b.json"}},
		{"a.json, b.json", []string{"a.json", "b.json"}},
		{" a.json ,\tb.json ", []string{"a.json", "b.json"}},
		{"a.json,,b.json,", []string{"a.json", "b.json"}},
		{"", []string{}},
		{" , ", []string{}},
	}

	for _, tt := range tests {
		if got := splitFileList(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitFileList(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
