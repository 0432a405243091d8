package driver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moopl/interpreter-go/pkg/ast"
)

const counterProgramJSON = `{
  "type": "Program",
  "classes": [{
    "type": "ClassDecl",
    "name": "Counter",
    "fields": [{"type": "FieldDecl", "fieldType": "int", "name": "n"}],
    "methods": [
      {"type": "ProcDecl", "name": "bump", "params": [], "body": [
        {"type": "StmAssign", "var": "n", "value": {
          "type": "ExpOp", "op": "+",
          "left": {"type": "ExpVar", "var": {"type": "Var", "name": "n"}},
          "right": {"type": "ExpInteger", "value": 1}}}
      ]},
      {"type": "FunDecl", "returnType": {"type": "TypeInt"}, "name": "get", "params": [], "body": [],
       "result": {"type": "ExpVar", "var": "n", "span": {"line": 9, "column": 14}}}
    ]
  }],
  "routines": [{
    "type": "FunDecl", "returnType": "int[]", "name": "mk",
    "params": [{"type": "Formal", "paramType": "int", "name": "len"}],
    "body": [
      {"type": "StmIf", "cond": {"type": "ExpTrue"}, "then": [], "else": {"type": "StmBlock", "body": []}}
    ],
    "result": {"type": "ExpNewArray", "elemType": "int", "length": {"type": "ExpVar", "var": "len"}}
  }],
  "commands": [
    {"type": "IEval", "expr": {"type": "ExpCall",
      "receiver": {"type": "ExpNewObject", "class": "Counter", "args": []},
      "name": "get", "args": []}}
  ]
}`

func TestDecodeProgramFromJSON(t *testing.T) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(counterProgramJSON), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	program, err := DecodeProgram(raw)
	if err != nil {
		t.Fatalf("DecodeProgram: %v", err)
	}
	if len(program.Classes) != 1 || len(program.Routines) != 1 || len(program.Commands) != 1 {
		t.Fatalf("unexpected program shape: %#v", program)
	}
	counter := program.Classes[0]
	if counter.Name != "Counter" || len(counter.Fields) != 1 || len(counter.Methods) != 2 {
		t.Fatalf("unexpected class: %#v", counter)
	}
	if _, ok := counter.Fields[0].FieldType.(*ast.TypeInt); !ok {
		t.Fatalf("field type = %T, want *ast.TypeInt", counter.Fields[0].FieldType)
	}
	get, ok := counter.Methods[1].(*ast.FunDecl)
	if !ok {
		t.Fatalf("get decoded as %T", counter.Methods[1])
	}
	result, ok := get.Result.(*ast.ExpVar)
	if !ok || result.Var.Name != "n" {
		t.Fatalf("get result = %#v", get.Result)
	}
	if span := result.NodeSpan(); span.Line != 9 || span.Column != 14 {
		t.Fatalf("result span = %+v", span)
	}
	mk := program.Routines[0].(*ast.FunDecl)
	if got := mk.ReturnType.String(); got != "int[]" {
		t.Fatalf("return type = %q", got)
	}
	ifStmt, ok := mk.Body[0].(*ast.StmIf)
	if !ok || ifStmt.Then == nil || ifStmt.Else == nil {
		t.Fatalf("if statement = %#v", mk.Body[0])
	}
	eval, ok := program.Commands[0].(*ast.IEval)
	if !ok {
		t.Fatalf("command = %T", program.Commands[0])
	}
	call, ok := eval.Expr.(*ast.ExpCall)
	if !ok || call.Name != "get" {
		t.Fatalf("eval expr = %#v", eval.Expr)
	}
	if _, ok := call.Receiver.(*ast.ExpNewObject); !ok {
		t.Fatalf("receiver = %T", call.Receiver)
	}
}

func TestReadProgramYAMLMatchesJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.yml")
	src := `
type: Program
routines:
  - type: ProcDecl
    name: show
    params:
      - {type: Formal, paramType: boolean, name: flag}
    body:
      - type: StmOutput
        span: {line: 3, column: 5}
        expr:
          type: ExpNot
          operand: {type: ExpVar, var: flag}
commands:
  - {type: ICall, name: show, args: [{type: ExpFalse}]}
`
	if err := os.WriteFile(path, []byte(strings.TrimSpace(src)+"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	program, err := ReadProgram(path)
	if err != nil {
		t.Fatalf("ReadProgram: %v", err)
	}
	show := program.Routines[0].(*ast.ProcDecl)
	if show.Params[0].ParamType.String() != "boolean" {
		t.Fatalf("param type = %s", show.Params[0].ParamType)
	}
	out, ok := show.Body[0].(*ast.StmOutput)
	if !ok {
		t.Fatalf("body[0] = %T", show.Body[0])
	}
	if span := out.NodeSpan(); span.Line != 3 || span.Column != 5 {
		t.Fatalf("span = %+v", span)
	}
	call := program.Commands[0].(*ast.ICall)
	if call.Name != "show" || len(call.Args) != 1 {
		t.Fatalf("command = %#v", call)
	}
}

func TestDecodeProgramErrors(t *testing.T) {
	cases := map[string]string{
		`{"type": "Module"}`: `unsupported node type "Module"`,
		`{"type": "Program", "commands": [{"name": "x"}]}`:                             "node missing type",
		`{"type": "Program", "commands": [{"type": "IEval"}]}`:                         "missing expr",
		`{"type": "Program", "commands": [{"type": "IEval", "expr": {"type": "ExpInteger", "value": 1.5}}]}`: "expected integer",
		`{"type": "Program", "commands": [{"type": "IEval", "expr": {"type": "ExpInteger", "value": 3000000000}}]}`: "out of range",
		`{"type": "StmBlock", "body": []}`: "not a program",
	}
	for src, want := range cases {
		var raw map[string]any
		if err := json.Unmarshal([]byte(src), &raw); err != nil {
			t.Fatalf("unmarshal %s: %v", src, err)
		}
		_, err := DecodeProgram(raw)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("DecodeProgram(%s) error = %v, want %q", src, err, want)
		}
	}
}

func TestProgramJSONRoundTrip(t *testing.T) {
	program := ast.Prog(
		ast.Routines(ast.Proc("p", ast.Params(ast.Param(ast.IntT(), "x")),
			ast.Output(ast.Add(ast.V("x"), ast.Int(-7))),
		)),
		nil,
		ast.Invoke("p", ast.Int(2)),
	)
	data, err := json.Marshal(program)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	decoded, err := DecodeProgram(raw)
	if err != nil {
		t.Fatalf("DecodeProgram: %v\n%s", err, data)
	}
	p := decoded.Routines[0].(*ast.ProcDecl)
	out := p.Body[0].(*ast.StmOutput)
	op := out.Expr.(*ast.ExpOp)
	if op.Op != ast.OpPlus || op.Right.(*ast.ExpInteger).Value != -7 {
		t.Fatalf("decoded op = %#v", op)
	}
}
