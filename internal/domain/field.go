package domain

import "encoding/json"

// Field is an optional value that remembers whether it was supplied at all.
// A JSON null on a pointer field is a present value (an explicit clear),
// while a missing key leaves Set false.
type Field[T any] struct {
	Set   bool
	Value T
}

// Some returns a present field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

// Apply copies the value into dst when the field was supplied and reports whether it did.
func (f Field[T]) Apply(dst *T) bool {
	if !f.Set {
		return false
	}
	*dst = f.Value
	return true
}
