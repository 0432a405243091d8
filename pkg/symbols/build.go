package symbols

import (
	"fmt"

	"moopl/interpreter-go/pkg/ast"
)

// Diagnostic represents a structural problem in the declarations.
type Diagnostic struct {
	Message string
	Node    ast.Node
}

func (d Diagnostic) String() string {
	if d.Node != nil {
		if span := d.Node.NodeSpan(); !span.IsZero() {
			return fmt.Sprintf("%s (%d:%d)", d.Message, span.Line, span.Column)
		}
	}
	return d.Message
}

// Build collects class and routine signatures from a program. Diagnostics
// are returned for duplicate declarations, unknown parents and inheritance
// cycles; the table is still usable for the classes that resolved.
func Build(program *ast.Program) (*Table, []Diagnostic) {
	table := &Table{
		top:     newClassSignature("", "", nil),
		classes: make(map[string]*ClassSignature),
	}
	if program == nil {
		return table, nil
	}

	var diags []Diagnostic
	for _, routine := range program.Routines {
		if routine == nil {
			continue
		}
		if d, ok := addMethod(table.top, routine); !ok {
			diags = append(diags, d)
		}
	}

	for _, decl := range program.Classes {
		if decl == nil {
			continue
		}
		if _, exists := table.classes[decl.Name]; exists {
			diags = append(diags, Diagnostic{Message: fmt.Sprintf("duplicate class %s", decl.Name), Node: decl})
			continue
		}
		sig := newClassSignature(decl.Name, decl.Parent, decl)
		for _, field := range decl.Fields {
			sig.fields = append(sig.fields, field.Name)
		}
		for _, method := range decl.Methods {
			if method == nil {
				continue
			}
			if d, ok := addMethod(sig, method); !ok {
				diags = append(diags, d)
			}
		}
		table.classes[decl.Name] = sig
		table.order = append(table.order, decl.Name)
	}

	for _, name := range table.order {
		sig := table.classes[name]
		if sig.Parent == "" {
			continue
		}
		if _, ok := table.classes[sig.Parent]; !ok {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("class %s extends unknown class %s", name, sig.Parent),
				Node:    sig.Decl,
			})
			continue
		}
		if _, err := table.Chain(name); err != nil {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("class %s has a cyclic inheritance chain", name),
				Node:    sig.Decl,
			})
		}
	}
	return table, diags
}

func addMethod(sig *ClassSignature, routine ast.Routine) (Diagnostic, bool) {
	name := routine.RoutineName()
	if _, exists := sig.methods[name]; exists {
		scope := "top level"
		if !sig.IsTopLevel() {
			scope = "class " + sig.Name
		}
		return Diagnostic{Message: fmt.Sprintf("duplicate routine %s in %s", name, scope), Node: routine}, false
	}
	sig.methods[name] = &MethodSignature{Name: name, Owner: sig.Name, Decl: routine}
	sig.order = append(sig.order, name)
	return Diagnostic{}, true
}
