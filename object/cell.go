package object

import (
	"fmt"
)

// Cell is a shared mutable slot holding exactly one object. The VM creates
// cells when a register is first captured by a closure; from then on the
// register, the closure, and any closure capturing it later read and write
// through the same cell.
//
// Cells are not synchronized. Closures sharing a cell must not be run on
// separate goroutines.
type Cell struct {
	value Object
}

func (c *Cell) Inspect() string {
	return c.String()
}

func (c *Cell) String() string {
	if c.value == nil {
		return "ref()"
	}
	return fmt.Sprintf("ref(%s)", c.value.Inspect())
}

// Value returns the object currently held by the cell.
func (c *Cell) Value() Object {
	return c.value
}

// Set replaces the object held by the cell. A nil value is stored as Nil.
func (c *Cell) Set(value Object) {
	if value == nil {
		value = Nil
	}
	c.value = value
}

func (c *Cell) Type() Type {
	return REFERENCE
}

func (c *Cell) Interface() interface{} {
	if c.value == nil {
		return nil
	}
	return c.value.Interface()
}

// Equals reports identity: two cells are equal only if they are the same cell.
func (c *Cell) Equals(other Object) bool {
	otherCell, ok := other.(*Cell)
	if !ok {
		return false
	}
	return c == otherCell
}

// NewCell returns a cell holding value. A nil value is stored as Nil.
func NewCell(value Object) *Cell {
	if value == nil {
		value = Nil
	}
	return &Cell{value: value}
}
