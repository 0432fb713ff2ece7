package writer

import (
	"testing"
)

type marsh struct{}

func (m marsh) MarshalDebug() ([]byte, error) {
	return []byte("marshaled"), nil
}

type point struct {
	X int
	Y int
}

func TestMarshalling(t *testing.T) {
	tests := []struct {
		v interface{}
		e string
	}{
		{1, "1"},
		{nil, "null"},
		{1.3, "1.3"},
		{true, "true"},
		{"hello, world", `"hello, world"`},
		{[]interface{}{1, true, "hello"}, `[1, true, "hello"]`},
		{marsh{}, "marshaled"},
		{point{X: 1, Y: 2}, "{X: 1, Y: 2}"},
		{map[string]int{"b": 2, "a": 1}, `{a: 1, b: 2}`},
	}

	for _, test := range tests {
		a, err := Marshal(test.v)
		if err != nil {
			t.Errorf("Failed to marshal %#v: %v", test.v, err)
		} else if string(a) != test.e {
			t.Errorf("Expected %#v but got %#v", test.e, string(a))
		}
	}
}
