package object

import (
	"strconv"
)

// String is shared immutable text.
type String struct {
	value string
}

func (s *String) Type() Type {
	return STRING
}

func (s *String) Value() string {
	return s.value
}

func (s *String) Inspect() string {
	return strconv.Quote(s.value)
}

func (s *String) String() string {
	return s.value
}

func (s *String) Interface() interface{} {
	return s.value
}

// Equals compares strings by content. Use pointer comparison to test whether
// two holders share the same string.
func (s *String) Equals(other Object) bool {
	o, ok := other.(*String)
	if !ok {
		return false
	}
	return s.value == o.value
}

func NewString(s string) *String {
	return &String{value: s}
}
