package runtime

// Heap is an append-only arena of objects. Addresses are issued in strictly
// increasing order starting at 1 and are never reused; nothing is reclaimed.
type Heap struct {
	objects []*Object
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Len returns the number of objects allocated so far.
func (h *Heap) Len() int { return len(h.objects) }

func (h *Heap) allocate(kind ObjectKind, typ string, slots int) Address {
	h.objects = append(h.objects, &Object{Kind: kind, Type: typ, Elements: make([]Value, slots)})
	return Address(len(h.objects))
}

// AllocateObject creates a class instance with zeroed fields.
func (h *Heap) AllocateObject(fieldCount int, class string) Address {
	if fieldCount < 0 {
		fieldCount = 0
	}
	return h.allocate(KindInstance, class, fieldCount)
}

// AllocateArray creates an array with zeroed elements.
func (h *Heap) AllocateArray(length Value, elemType string) (Address, error) {
	if length < 0 {
		return 0, Faultf(NegativeArrayLength, "cannot create %s array of length %d", elemType, length)
	}
	return h.allocate(KindArray, elemType, int(length)), nil
}

// Deref resolves a reference value to its object.
func (h *Heap) Deref(ref Value) (*Object, error) {
	if ref == Null {
		return nil, Faultf(NullReference, "dereference of null")
	}
	if ref < 0 || int(ref) > len(h.objects) {
		return nil, Faultf(InvalidAddress, "address %d was never allocated", ref)
	}
	return h.objects[ref-1], nil
}
