package interpreter

import (
	"fmt"

	"moopl/interpreter-go/pkg/ast"
	"moopl/interpreter-go/pkg/runtime"
)

func (i *Interpreter) executeStatements(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := i.executeStatement(stmt); err != nil {
			return runtime.At(err, stmt)
		}
	}
	return nil
}

func (i *Interpreter) executeStatement(node ast.Statement) error {
	switch n := node.(type) {
	case *ast.StmBlock:
		return i.executeBlock(n)
	case *ast.StmVarDecl:
		// The slot was reserved statically and zeroed at frame push.
		return nil
	case *ast.StmIf:
		return i.executeIf(n)
	case *ast.StmWhile:
		return i.executeWhile(n)
	case *ast.StmOutput:
		v, err := i.evaluateExpression(n.Expr)
		if err != nil {
			return err
		}
		return i.output(v)
	case *ast.StmAssign:
		v, err := i.evaluateExpression(n.Value)
		if err != nil {
			return err
		}
		return i.writeVar(n.Var, v)
	case *ast.StmArrayAssign:
		return i.executeArrayAssign(n)
	case *ast.StmCall:
		_, err := i.callMethod(n.Receiver, n.Name, n.Args, false, n)
		return err
	case nil:
		return fmt.Errorf("interpreter: missing statement")
	default:
		return fmt.Errorf("interpreter: unsupported statement type: %s", n.NodeType())
	}
}

func (i *Interpreter) executeBlock(block *ast.StmBlock) error {
	if block == nil {
		return nil
	}
	return i.executeStatements(block.Body)
}

func (i *Interpreter) executeIf(stmt *ast.StmIf) error {
	cond, err := i.evaluateExpression(stmt.Cond)
	if err != nil {
		return err
	}
	if cond == runtime.True {
		return i.executeBlock(stmt.Then)
	}
	return i.executeBlock(stmt.Else)
}

func (i *Interpreter) executeWhile(loop *ast.StmWhile) error {
	for {
		cond, err := i.evaluateExpression(loop.Cond)
		if err != nil {
			return err
		}
		if cond != runtime.True {
			return nil
		}
		if err := i.executeBlock(loop.Body); err != nil {
			return err
		}
	}
}

func (i *Interpreter) executeArrayAssign(stmt *ast.StmArrayAssign) error {
	arr, err := i.derefExpression(stmt.Array)
	if err != nil {
		return err
	}
	idx, err := i.evaluateExpression(stmt.Index)
	if err != nil {
		return err
	}
	v, err := i.evaluateExpression(stmt.Value)
	if err != nil {
		return err
	}
	return arr.Set(idx, v)
}
