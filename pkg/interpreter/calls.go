package interpreter

import (
	"moopl/interpreter-go/pkg/ast"
	"moopl/interpreter-go/pkg/runtime"
	"moopl/interpreter-go/pkg/symbols"
)

// callMethod evaluates the receiver (if any), then the arguments left to
// right, dispatches on the receiver's runtime class and executes the body.
// A nil receiver names a top-level routine.
func (i *Interpreter) callMethod(receiver ast.Expression, name string, args []ast.Expression, wantValue bool, site ast.Node) (runtime.Value, error) {
	if receiver == nil {
		return i.callTopLevel(name, args, wantValue, site)
	}
	ref, err := i.evaluateExpression(receiver)
	if err != nil {
		return 0, err
	}
	if ref == runtime.Null {
		return 0, runtime.At(runtime.Faultf(runtime.NullReference,
			"attempting to call method %s on an uninitialised object", name), site)
	}
	obj, err := i.heap.Deref(ref)
	if err != nil {
		return 0, err
	}
	params, err := i.evaluateArgs(args)
	if err != nil {
		return 0, err
	}
	sig, ok := i.table.Lookup(obj.Type, name)
	if !ok {
		return 0, runtime.Faultf(runtime.UnresolvedDispatch, "class %s has no method %s", obj.Type, name)
	}
	return i.invoke(sig, ref, params, wantValue)
}

func (i *Interpreter) callTopLevel(name string, args []ast.Expression, wantValue bool, site ast.Node) (runtime.Value, error) {
	sig, ok := i.table.TopLevel().Method(name)
	if !ok {
		return 0, runtime.At(runtime.Faultf(runtime.UnresolvedDispatch, "no top-level routine %s", name), site)
	}
	params, err := i.evaluateArgs(args)
	if err != nil {
		return 0, err
	}
	return i.invoke(sig, runtime.Null, params, wantValue)
}

func (i *Interpreter) evaluateArgs(args []ast.Expression) ([]runtime.Value, error) {
	if len(args) == 0 {
		return nil, nil
	}
	values := make([]runtime.Value, len(args))
	for idx, arg := range args {
		v, err := i.evaluateExpression(arg)
		if err != nil {
			return nil, err
		}
		values[idx] = v
	}
	return values, nil
}

// invoke runs one routine activation. The frame is popped on every exit
// path, so a fault leaves the stack as it was before the call.
func (i *Interpreter) invoke(sig *symbols.MethodSignature, self runtime.Value, params []runtime.Value, wantValue bool) (runtime.Value, error) {
	routine := sig.Decl
	qualified := sig.Name
	if sig.Owner != "" {
		qualified = sig.Owner + "." + sig.Name
	}
	if want := len(routine.Parameters()); want != len(params) {
		return 0, runtime.Faultf(runtime.UnresolvedDispatch, "%s expects %d arguments, got %d", qualified, want, len(params))
	}
	fun, isFun := routine.(*ast.FunDecl)
	if wantValue && !isFun {
		return 0, runtime.Faultf(runtime.UnresolvedDispatch, "procedure %s does not produce a value", qualified)
	}
	if _, err := i.stack.Push(qualified, self, params, routine.StackSlots()); err != nil {
		return 0, err
	}
	defer i.stack.Pop()

	if err := i.executeStatements(routine.Statements()); err != nil {
		return 0, runtime.WithStack(err, i.stack)
	}
	if !wantValue {
		return 0, nil
	}
	result, err := i.evaluateExpression(fun.Result)
	if err != nil {
		return 0, runtime.WithStack(err, i.stack)
	}
	return result, nil
}

// construct allocates a zeroed object sized for the whole field hierarchy,
// then runs the constructor (the method named after the class) with the
// new object as self. A class without a constructor may only be
// instantiated without arguments; the call is then skipped.
func (i *Interpreter) construct(expr *ast.ExpNewObject) (runtime.Value, error) {
	count, err := i.table.FieldCount(expr.Class)
	if err != nil {
		return 0, runtime.Faultf(runtime.UnresolvedDispatch, "%v", err)
	}
	addr := i.heap.AllocateObject(count, expr.Class)
	if sig, ok := i.table.Lookup(expr.Class, expr.Class); ok {
		params, err := i.evaluateArgs(expr.Args)
		if err != nil {
			return 0, err
		}
		if _, err := i.invoke(sig, addr.Value(), params, false); err != nil {
			return 0, err
		}
	} else if len(expr.Args) > 0 {
		return 0, runtime.Faultf(runtime.UnresolvedDispatch, "class %s has no constructor taking %d arguments", expr.Class, len(expr.Args))
	}
	i.traceObject(expr.Class, addr)
	return addr.Value(), nil
}
