// Package object provides the runtime value model of the Kut virtual machine.
//
// Every runtime value implements object.Object. Callers type switch on the
// concrete types to inspect a value:
//
//	switch obj := obj.(type) {
//	case *object.Number:
//		// do something with obj.Value()
//	case *object.String:
//		// do something with obj.Value()
//	case *object.Cell:
//		// a promoted, captured variable
//	}
//
// Values are shared, never deep-copied: copying a value copies the pointer,
// so every holder observes the same immutable String, List or Closure. The
// only mutable value is the Cell, which exists to make captured variables
// observably shared between a closure and its enclosing activation.
package object

// Type of an object as a string.
type Type string

// Type constants
const (
	NIL       Type = "nil"
	UNDEFINED Type = "undefined"
	NUMBER    Type = "number"
	STRING    Type = "string"
	LIST      Type = "list"
	FUNCTION  Type = "function"
	REFERENCE Type = "reference"
	EXTERNAL  Type = "external"
)

var (
	Nil       = &NilType{}
	Undefined = &UndefinedType{}
)

// Object is the interface that all runtime values implement.
type Object interface {
	// Type of the object.
	Type() Type

	// Inspect returns a string representation of the given object.
	Inspect() string

	// Interface converts the given object to a native Go value.
	Interface() interface{}

	// Returns true if the given object is equal to this object.
	Equals(other Object) bool
}

// Deref returns the value held by obj if it is a *Cell, and obj itself
// otherwise. Exactly one level is removed.
func Deref(obj Object) Object {
	if cell, ok := obj.(*Cell); ok {
		return cell.Value()
	}
	return obj
}

// TypeName returns the type name of obj, tolerating a nil interface.
func TypeName(obj Object) string {
	if obj == nil {
		return "<nil>"
	}
	return string(obj.Type())
}
