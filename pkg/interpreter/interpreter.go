package interpreter

import (
	"fmt"
	"io"
	"os"

	"moopl/interpreter-go/pkg/allocator"
	"moopl/interpreter-go/pkg/ast"
	"moopl/interpreter-go/pkg/runtime"
	"moopl/interpreter-go/pkg/symbols"
)

// selfOffset is the frame slot holding the receiver.
const selfOffset = allocator.SelfOffset

// Options configures an interpreter run.
type Options struct {
	// Stdout receives one line per output statement or eval command.
	// Defaults to os.Stdout.
	Stdout io.Writer
	// Trace, when set, receives the field contents of every constructed
	// object.
	Trace io.Writer
	// MaxDepth bounds the call stack; <= 0 selects runtime.DefaultMaxDepth.
	MaxDepth int
}

// Interpreter evaluates one Moopl program. It owns the heap and call stack
// for the lifetime of the run and is not safe for concurrent use.
type Interpreter struct {
	table  *symbols.Table
	heap   *runtime.Heap
	stack  *runtime.CallStack
	stdout io.Writer
	trace  io.Writer
}

// New returns an interpreter with an empty heap and call stack.
func New(opts Options) *Interpreter {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Interpreter{
		table:  nil,
		heap:   runtime.NewHeap(),
		stack:  runtime.NewCallStack(opts.MaxDepth),
		stdout: stdout,
		trace:  opts.Trace,
	}
}

// Heap exposes the interpreter's heap (useful for inspection in tests).
func (i *Interpreter) Heap() *runtime.Heap { return i.heap }

// Stack exposes the interpreter's call stack.
func (i *Interpreter) Stack() *runtime.CallStack { return i.stack }

// ProgramEvaluationOptions tunes EvaluateProgram.
type ProgramEvaluationOptions struct {
	// SkipAllocation assumes the program's variables are already resolved.
	SkipAllocation bool
}

// EvaluateProgram builds the symbol table, resolves variable storage and
// executes the program's commands in order. Structural diagnostics prevent
// execution and are returned without an error.
func (i *Interpreter) EvaluateProgram(program *ast.Program, opts ProgramEvaluationOptions) ([]symbols.Diagnostic, error) {
	if program == nil {
		return nil, fmt.Errorf("interpreter: program is nil")
	}
	table, diags := symbols.Build(program)
	if len(diags) > 0 {
		return diags, nil
	}
	if !opts.SkipAllocation {
		if err := allocator.Allocate(program, table); err != nil {
			return nil, err
		}
	}
	i.table = table
	return nil, i.RunCommands(program.Commands)
}

// Bind installs a symbol table for a program whose variables were already
// allocated against it.
func (i *Interpreter) Bind(table *symbols.Table) {
	i.table = table
}

// RunCommands executes top-level commands inside a root frame whose self
// slot holds a placeholder. The first fault aborts the sequence.
func (i *Interpreter) RunCommands(commands []ast.Command) error {
	if i.table == nil {
		return fmt.Errorf("interpreter: no symbol table bound")
	}
	if _, err := i.stack.Push("", runtime.Null, nil, 0); err != nil {
		return err
	}
	defer i.stack.Pop()
	for _, cmd := range commands {
		if err := i.executeCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) executeCommand(node ast.Command) error {
	switch n := node.(type) {
	case *ast.ICall:
		_, err := i.callTopLevel(n.Name, n.Args, false, n)
		return runtime.At(err, n)
	case *ast.IEval:
		v, err := i.evaluateExpression(n.Expr)
		if err != nil {
			return runtime.At(err, n)
		}
		return i.output(v)
	default:
		return fmt.Errorf("interpreter: unsupported command type: %s", n.NodeType())
	}
}

func (i *Interpreter) output(v runtime.Value) error {
	if _, err := fmt.Fprintln(i.stdout, int32(v)); err != nil {
		return fmt.Errorf("interpreter: write output: %w", err)
	}
	return nil
}

// traceObject writes Class[ e0 e1 ...  ] to the trace stream.
func (i *Interpreter) traceObject(class string, addr runtime.Address) {
	if i.trace == nil {
		return
	}
	obj, err := i.heap.Deref(addr.Value())
	if err != nil {
		return
	}
	fmt.Fprintf(i.trace, "%s[ ", class)
	for _, v := range obj.Elements {
		fmt.Fprintf(i.trace, "%d ", v)
	}
	fmt.Fprint(i.trace, " ]\n")
}
