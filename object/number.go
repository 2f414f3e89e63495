package object

import (
	"strconv"
)

// Number wraps float64. Numbers are immutable, so sharing a *Number is
// indistinguishable from copying it.
type Number struct {
	value float64
}

func (n *Number) Inspect() string {
	return strconv.FormatFloat(n.value, 'f', -1, 64)
}

func (n *Number) Type() Type {
	return NUMBER
}

func (n *Number) Value() float64 {
	return n.value
}

func (n *Number) Interface() interface{} {
	return n.value
}

func (n *Number) String() string {
	return n.Inspect()
}

// Equals compares numbers by value.
func (n *Number) Equals(other Object) bool {
	o, ok := other.(*Number)
	if !ok {
		return false
	}
	return n.value == o.value
}

func NewNumber(value float64) *Number {
	return &Number{value: value}
}
