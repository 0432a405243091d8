package interpreter

import (
	"fmt"

	"moopl/interpreter-go/pkg/ast"
	"moopl/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression) (runtime.Value, error) {
	v, err := i.evaluateExpressionNode(node)
	if err != nil {
		return 0, runtime.At(err, node)
	}
	return v, nil
}

func (i *Interpreter) evaluateExpressionNode(node ast.Expression) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.ExpInteger:
		return runtime.Value(n.Value), nil
	case *ast.ExpTrue:
		return runtime.True, nil
	case *ast.ExpFalse:
		return runtime.False, nil
	case *ast.ExpVar:
		return i.readVar(n.Var)
	case *ast.ExpSelf:
		return i.stack.Read(selfOffset)
	case *ast.ExpNot:
		v, err := i.evaluateExpression(n.Operand)
		if err != nil {
			return 0, err
		}
		return runtime.Bool(v == runtime.False), nil
	case *ast.ExpIsnull:
		v, err := i.evaluateExpression(n.Operand)
		if err != nil {
			return 0, err
		}
		return runtime.Bool(v == runtime.Null), nil
	case *ast.ExpOp:
		return i.evaluateBinaryExpression(n)
	case *ast.ExpArrayLookup:
		arr, err := i.derefExpression(n.Array)
		if err != nil {
			return 0, err
		}
		idx, err := i.evaluateExpression(n.Index)
		if err != nil {
			return 0, err
		}
		return arr.Get(idx)
	case *ast.ExpArrayLength:
		arr, err := i.derefExpression(n.Array)
		if err != nil {
			return 0, err
		}
		return runtime.Value(arr.Len()), nil
	case *ast.ExpNewArray:
		length, err := i.evaluateExpression(n.Length)
		if err != nil {
			return 0, err
		}
		elem := "?"
		if n.ElemType != nil {
			elem = n.ElemType.String()
		}
		addr, err := i.heap.AllocateArray(length, elem)
		if err != nil {
			return 0, err
		}
		return addr.Value(), nil
	case *ast.ExpNewObject:
		return i.construct(n)
	case *ast.ExpCall:
		return i.callMethod(n.Receiver, n.Name, n.Args, true, n)
	case nil:
		return 0, fmt.Errorf("interpreter: missing expression")
	default:
		return 0, fmt.Errorf("interpreter: unsupported expression type: %s", n.NodeType())
	}
}

// evaluateBinaryExpression evaluates the left operand, then the right, then
// applies the operator to the integer representation.
func (i *Interpreter) evaluateBinaryExpression(expr *ast.ExpOp) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left)
	if err != nil {
		return 0, err
	}
	right, err := i.evaluateExpression(expr.Right)
	if err != nil {
		return 0, err
	}
	switch expr.Op {
	case ast.OpAnd:
		// Operands are already 0 or 1.
		return left & right, nil
	case ast.OpDiv:
		if right == 0 {
			return 0, runtime.Faultf(runtime.DivisionByZero, "division by zero is undefined")
		}
		return left / right, nil
	case ast.OpEquals:
		return runtime.Bool(left == right), nil
	case ast.OpLessThan:
		return runtime.Bool(left < right), nil
	case ast.OpMinus:
		return left - right, nil
	case ast.OpPlus:
		return left + right, nil
	case ast.OpTimes:
		return left * right, nil
	default:
		return 0, runtime.Faultf(runtime.UnsupportedOperator, "handling for operator %q has not been implemented", expr.Op)
	}
}

func (i *Interpreter) derefExpression(expr ast.Expression) (*runtime.Object, error) {
	ref, err := i.evaluateExpression(expr)
	if err != nil {
		return nil, err
	}
	return i.heap.Deref(ref)
}

func (i *Interpreter) readVar(v *ast.Var) (runtime.Value, error) {
	switch v.Storage {
	case ast.StorageStack:
		return i.stack.Read(v.Offset)
	case ast.StorageHeap:
		self, err := i.selfObject()
		if err != nil {
			return 0, err
		}
		return self.Get(runtime.Value(v.Offset))
	default:
		return 0, runtime.Faultf(runtime.FrameOffset, "variable %s was never allocated", v.Name)
	}
}

func (i *Interpreter) writeVar(v *ast.Var, value runtime.Value) error {
	switch v.Storage {
	case ast.StorageStack:
		return i.stack.Write(v.Offset, value)
	case ast.StorageHeap:
		self, err := i.selfObject()
		if err != nil {
			return err
		}
		return self.Set(runtime.Value(v.Offset), value)
	default:
		return runtime.Faultf(runtime.FrameOffset, "variable %s was never allocated", v.Name)
	}
}

func (i *Interpreter) selfObject() (*runtime.Object, error) {
	self, err := i.stack.Read(selfOffset)
	if err != nil {
		return nil, err
	}
	return i.heap.Deref(self)
}
