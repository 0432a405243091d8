package interpreter

import (
	"bytes"
	"testing"

	"moopl/interpreter-go/pkg/ast"
)

// runProgram evaluates program and returns what it printed. Diagnostics fail
// the test; runtime errors are returned to the caller.
func runProgram(t *testing.T, program *ast.Program, opts Options) (*Interpreter, string, error) {
	t.Helper()
	var stdout bytes.Buffer
	opts.Stdout = &stdout
	interp := New(opts)
	diags, err := interp.EvaluateProgram(program, ProgramEvaluationOptions{})
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return interp, stdout.String(), err
}

// mustRun is runProgram for programs expected to complete.
func mustRun(t *testing.T, program *ast.Program) string {
	t.Helper()
	interp, out, err := runProgram(t, program, Options{})
	if err != nil {
		t.Fatalf("evaluation failed: %v (output so far %q)", err, out)
	}
	if depth := interp.Stack().Depth(); depth != 0 {
		t.Fatalf("call stack not unwound, depth %d", depth)
	}
	return out
}

// mainProgram wraps body in a top-level procedure main and invokes it.
func mainProgram(classes []*ast.ClassDecl, body ...ast.Statement) *ast.Program {
	return ast.Prog(
		ast.Routines(ast.Proc("main", nil, body...)),
		classes,
		ast.Invoke("main"),
	)
}
