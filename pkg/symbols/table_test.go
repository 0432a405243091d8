package symbols

import (
	"reflect"
	"strings"
	"testing"

	"moopl/interpreter-go/pkg/ast"
)

func shapesProgram() *ast.Program {
	base := ast.Class("Shape", "",
		ast.Fields(ast.Field(ast.IntT(), "id")),
		ast.Fun(ast.IntT(), "area", nil, nil, ast.Int(0)),
		ast.Proc("describe", nil),
	)
	square := ast.Class("Square", "Shape",
		ast.Fields(ast.Field(ast.IntT(), "side"), ast.Field(ast.BoolT(), "filled")),
		ast.Fun(ast.IntT(), "area", nil, nil, ast.Mul(ast.V("side"), ast.V("side"))),
	)
	return ast.Prog(
		ast.Routines(ast.Proc("main", nil)),
		[]*ast.ClassDecl{base, square},
	)
}

func TestBuildRecordsClassesAndTopLevel(t *testing.T) {
	table, diags := Build(shapesProgram())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if got := table.ClassNames(); !reflect.DeepEqual(got, []string{"Shape", "Square"}) {
		t.Fatalf("class order = %v", got)
	}
	if _, ok := table.TopLevel().Method("main"); !ok {
		t.Fatalf("expected top-level main")
	}
	top, ok := table.Class("")
	if !ok || !top.IsTopLevel() {
		t.Fatalf("empty class name should yield the top-level scope")
	}
	square, ok := table.Class("Square")
	if !ok {
		t.Fatalf("missing Square")
	}
	if square.Parent != "Shape" {
		t.Fatalf("Square parent = %q", square.Parent)
	}
	if got := square.FieldNames(); !reflect.DeepEqual(got, []string{"side", "filled"}) {
		t.Fatalf("Square fields = %v", got)
	}
}

func TestFieldHierarchyOwnFieldsFirst(t *testing.T) {
	table, _ := Build(shapesProgram())
	fields, err := table.FieldHierarchy("Square")
	if err != nil {
		t.Fatalf("FieldHierarchy: %v", err)
	}
	if want := []string{"side", "filled", "id"}; !reflect.DeepEqual(fields, want) {
		t.Fatalf("fields = %v, want %v", fields, want)
	}
	count, err := table.FieldCount("Square")
	if err != nil || count != 3 {
		t.Fatalf("FieldCount = %d, %v", count, err)
	}
}

func TestLookupWalksParentChain(t *testing.T) {
	table, _ := Build(shapesProgram())
	area, ok := table.Lookup("Square", "area")
	if !ok || area.Owner != "Square" {
		t.Fatalf("expected Square.area, got %#v", area)
	}
	describe, ok := table.Lookup("Square", "describe")
	if !ok || describe.Owner != "Shape" {
		t.Fatalf("expected inherited Shape.describe, got %#v", describe)
	}
	if _, ok := table.Lookup("Square", "missing"); ok {
		t.Fatalf("expected lookup failure for missing method")
	}
	if _, ok := table.Lookup("", "main"); !ok {
		t.Fatalf("expected top-level lookup")
	}
}

func TestBuildReportsStructuralDiagnostics(t *testing.T) {
	program := ast.Prog(
		ast.Routines(ast.Proc("p", nil), ast.Proc("p", nil)),
		[]*ast.ClassDecl{
			ast.Class("A", "B", nil),
			ast.Class("B", "A", nil),
			ast.Class("C", "Missing", nil),
			ast.Class("C", "", nil),
		},
	)
	_, diags := Build(program)
	var messages []string
	for _, d := range diags {
		messages = append(messages, d.String())
	}
	joined := strings.Join(messages, "\n")
	for _, want := range []string{
		"duplicate routine p in top level",
		"duplicate class C",
		"class C extends unknown class Missing",
		"class A has a cyclic inheritance chain",
		"class B has a cyclic inheritance chain",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected diagnostic %q, got:\n%s", want, joined)
		}
	}
}

func TestDiagnosticIncludesSpan(t *testing.T) {
	decl := ast.WithSpan(ast.Class("A", "Nope", nil), ast.Span{Line: 3, Column: 1})
	_, diags := Build(ast.Prog(nil, []*ast.ClassDecl{decl}))
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diags)
	}
	if got := diags[0].String(); got != "class A extends unknown class Nope (3:1)" {
		t.Fatalf("diagnostic = %q", got)
	}
}
