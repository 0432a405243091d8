package runtime

import "fmt"

// Value is the single runtime representation shared by ints, booleans and
// references. Arithmetic wraps at 32 bits.
type Value int32

const (
	False Value = 0
	True  Value = 1
	// Null is the reference that points at no object. It shares its
	// representation with False.
	Null Value = 0
)

// Bool converts a Go bool into the runtime's 0/1 encoding.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Address identifies a heap object. Addresses are only produced by the
// heap's allocators; the zero Address is never issued.
type Address uint32

// Value converts the address into its runtime representation.
func (a Address) Value() Value { return Value(a) }

func (a Address) String() string { return fmt.Sprintf("@%d", uint32(a)) }

// ObjectKind identifies the kind of heap object.
type ObjectKind int

const (
	KindInstance ObjectKind = iota
	KindArray
)

func (k ObjectKind) String() string {
	switch k {
	case KindInstance:
		return "instance"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Object is a fixed-shape heap record: class instance fields or array
// elements. Type is the class name for instances and the element type for
// arrays.
type Object struct {
	Kind     ObjectKind
	Type     string
	Elements []Value
}

// Len returns the number of slots.
func (o *Object) Len() int { return len(o.Elements) }

// Get reads slot i.
func (o *Object) Get(i Value) (Value, error) {
	if i < 0 || int(i) >= len(o.Elements) {
		return 0, Faultf(IndexOutOfRange, "index %d out of range for %s of length %d", i, o.describe(), len(o.Elements))
	}
	return o.Elements[i], nil
}

// Set writes slot i.
func (o *Object) Set(i Value, v Value) error {
	if i < 0 || int(i) >= len(o.Elements) {
		return Faultf(IndexOutOfRange, "index %d out of range for %s of length %d", i, o.describe(), len(o.Elements))
	}
	o.Elements[i] = v
	return nil
}

func (o *Object) describe() string {
	if o.Kind == KindArray {
		return o.Type + "[]"
	}
	return o.Type
}
