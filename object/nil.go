package object

type NilType struct{}

func (n *NilType) Type() Type {
	return NIL
}

func (n *NilType) Inspect() string {
	return "nil"
}

func (n *NilType) String() string {
	return "nil"
}

func (n *NilType) Interface() interface{} {
	return nil
}

func (n *NilType) Equals(other Object) bool {
	_, ok := other.(*NilType)
	return ok
}

// UndefinedType is the value of something that was never given one. It is
// distinct from nil.
type UndefinedType struct{}

func (u *UndefinedType) Type() Type {
	return UNDEFINED
}

func (u *UndefinedType) Inspect() string {
	return "undefined"
}

func (u *UndefinedType) String() string {
	return "undefined"
}

func (u *UndefinedType) Interface() interface{} {
	return nil
}

func (u *UndefinedType) Equals(other Object) bool {
	_, ok := other.(*UndefinedType)
	return ok
}
