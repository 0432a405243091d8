package runtime

import "fmt"

const (
	selfSlot   = -2
	firstParam = -3
	firstLocal = 1

	// DefaultMaxDepth bounds the call stack when no limit is configured.
	DefaultMaxDepth = 10000
)

// Frame is one activation record: the receiver, the arguments and the
// routine's precomputed number of local slots.
type Frame struct {
	Routine string
	self    Value
	params  []Value
	locals  []Value
}

// Self returns the receiver slot. For free routines it holds a placeholder
// that must not be dereferenced.
func (f *Frame) Self() Value { return f.self }

// Slots returns the number of local slots.
func (f *Frame) Slots() int { return len(f.locals) }

func (f *Frame) slot(offset int) (*Value, error) {
	switch {
	case offset == selfSlot:
		return &f.self, nil
	case offset <= firstParam:
		idx := firstParam - offset
		if idx < len(f.params) {
			return &f.params[idx], nil
		}
	case offset >= firstLocal:
		idx := offset - firstLocal
		if idx < len(f.locals) {
			return &f.locals[idx], nil
		}
	}
	return nil, Faultf(FrameOffset, "offset %d outside frame of %s (%d params, %d locals)", offset, f.describe(), len(f.params), len(f.locals))
}

// Read returns the value at a frame offset.
func (f *Frame) Read(offset int) (Value, error) {
	slot, err := f.slot(offset)
	if err != nil {
		return 0, err
	}
	return *slot, nil
}

// Write stores a value at a frame offset.
func (f *Frame) Write(offset int, v Value) error {
	slot, err := f.slot(offset)
	if err != nil {
		return err
	}
	*slot = v
	return nil
}

func (f *Frame) describe() string {
	if f.Routine == "" {
		return "<root>"
	}
	return f.Routine
}

// CallStack is the LIFO stack of activation records for one run. Every
// successful Push must be matched by exactly one Pop on the same call.
type CallStack struct {
	frames   []*Frame
	maxDepth int
}

// NewCallStack returns an empty stack. maxDepth <= 0 selects DefaultMaxDepth.
func NewCallStack(maxDepth int) *CallStack {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &CallStack{maxDepth: maxDepth}
}

// Depth returns the number of live frames.
func (s *CallStack) Depth() int { return len(s.frames) }

// Push creates a frame with self at -2, params at -3, -4, ... and slots
// zeroed locals at 1..slots, and makes it the top of the stack.
func (s *CallStack) Push(routine string, self Value, params []Value, slots int) (*Frame, error) {
	if len(s.frames) >= s.maxDepth {
		return nil, Faultf(StackOverflow, "call depth exceeded %d entering %s", s.maxDepth, routine)
	}
	if slots < 0 {
		slots = 0
	}
	frame := &Frame{
		Routine: routine,
		self:    self,
		params:  append([]Value(nil), params...),
		locals:  make([]Value, slots),
	}
	s.frames = append(s.frames, frame)
	return frame, nil
}

// Pop discards the top frame.
func (s *CallStack) Pop() {
	if len(s.frames) == 0 {
		panic("runtime: pop of empty call stack")
	}
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
}

// Top returns the current frame, or nil when the stack is empty.
func (s *CallStack) Top() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Read reads a slot of the current frame.
func (s *CallStack) Read(offset int) (Value, error) {
	top := s.Top()
	if top == nil {
		return 0, Faultf(FrameOffset, "read of offset %d with no active frame", offset)
	}
	return top.Read(offset)
}

// Write writes a slot of the current frame.
func (s *CallStack) Write(offset int, v Value) error {
	top := s.Top()
	if top == nil {
		return Faultf(FrameOffset, "write of offset %d with no active frame", offset)
	}
	return top.Write(offset, v)
}

// Trace renders the live frames, innermost first.
func (s *CallStack) Trace() []string {
	out := make([]string, 0, len(s.frames))
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		out = append(out, fmt.Sprintf("%s (self=%d)", f.describe(), f.self))
	}
	return out
}
