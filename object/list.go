package object

import (
	"strings"
)

// List is a shared immutable ordered sequence of objects.
type List struct {
	items []Object
}

func (ls *List) Type() Type {
	return LIST
}

// Value returns a copy of the list's items.
func (ls *List) Value() []Object {
	items := make([]Object, len(ls.items))
	copy(items, ls.items)
	return items
}

// Len returns the number of items in the list.
func (ls *List) Len() int {
	return len(ls.items)
}

// Item returns the item at the given index, or nil if it is out of range.
func (ls *List) Item(index int) Object {
	if index < 0 || index >= len(ls.items) {
		return nil
	}
	return ls.items[index]
}

func (ls *List) Inspect() string {
	var b strings.Builder
	b.WriteString("[")
	for i, item := range ls.items {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(item.Inspect())
	}
	b.WriteString("]")
	return b.String()
}

func (ls *List) String() string {
	return ls.Inspect()
}

func (ls *List) Interface() interface{} {
	items := make([]interface{}, 0, len(ls.items))
	for _, item := range ls.items {
		items = append(items, item.Interface())
	}
	return items
}

// Equals compares lists element-wise.
func (ls *List) Equals(other Object) bool {
	o, ok := other.(*List)
	if !ok {
		return false
	}
	if ls == o {
		return true
	}
	if len(ls.items) != len(o.items) {
		return false
	}
	for i, item := range ls.items {
		if !item.Equals(o.items[i]) {
			return false
		}
	}
	return true
}

// NewList returns a list holding a copy of the given items.
func NewList(items []Object) *List {
	owned := make([]Object, len(items))
	copy(owned, items)
	return &List{items: owned}
}
