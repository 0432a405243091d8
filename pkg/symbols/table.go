package symbols

import (
	"fmt"

	"moopl/interpreter-go/pkg/ast"
)

// MethodSignature binds a routine name to its declaration.
type MethodSignature struct {
	Name  string
	Owner string
	Decl  ast.Routine
}

// ParamCount returns the number of declared parameters.
func (m *MethodSignature) ParamCount() int {
	return len(m.Decl.Parameters())
}

// ClassSignature describes one class: its immediate fields in declaration
// order, its parent (empty when none) and the methods it declares itself.
// The synthetic top-level scope is a ClassSignature named "".
type ClassSignature struct {
	Name    string
	Parent  string
	Decl    *ast.ClassDecl
	fields  []string
	methods map[string]*MethodSignature
	order   []string
}

func newClassSignature(name, parent string, decl *ast.ClassDecl) *ClassSignature {
	return &ClassSignature{
		Name:    name,
		Parent:  parent,
		Decl:    decl,
		methods: make(map[string]*MethodSignature),
	}
}

// FieldNames returns the immediately declared field names.
func (c *ClassSignature) FieldNames() []string {
	out := make([]string, len(c.fields))
	copy(out, c.fields)
	return out
}

// FieldCount returns the number of immediately declared fields.
func (c *ClassSignature) FieldCount() int {
	return len(c.fields)
}

// Method looks up a method declared directly on this class.
func (c *ClassSignature) Method(name string) (*MethodSignature, bool) {
	sig, ok := c.methods[name]
	return sig, ok
}

// Methods returns the declared methods in declaration order.
func (c *ClassSignature) Methods() []*MethodSignature {
	out := make([]*MethodSignature, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.methods[name])
	}
	return out
}

// IsTopLevel reports whether this is the synthetic top-level scope.
func (c *ClassSignature) IsTopLevel() bool {
	return c.Name == ""
}

// Table is the resolved class hierarchy for one program. It is immutable
// once Build returns.
type Table struct {
	top     *ClassSignature
	classes map[string]*ClassSignature
	order   []string
}

// TopLevel returns the synthetic scope holding free procedures and functions.
func (t *Table) TopLevel() *ClassSignature {
	return t.top
}

// Class returns the signature of the named class. The empty name yields the
// top-level scope.
func (t *Table) Class(name string) (*ClassSignature, bool) {
	if name == "" {
		return t.top, true
	}
	sig, ok := t.classes[name]
	return sig, ok
}

// ClassNames returns class names in declaration order.
func (t *Table) ClassNames() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Chain returns the class followed by its ancestors, most-derived first.
func (t *Table) Chain(name string) ([]*ClassSignature, error) {
	var chain []*ClassSignature
	seen := make(map[string]bool)
	for current := name; current != ""; {
		if seen[current] {
			return nil, fmt.Errorf("symbols: inheritance cycle through %s", current)
		}
		seen[current] = true
		sig, ok := t.classes[current]
		if !ok {
			return nil, fmt.Errorf("symbols: unknown class %s", current)
		}
		chain = append(chain, sig)
		current = sig.Parent
	}
	return chain, nil
}

// FieldHierarchy returns the full field list of a class: its own fields,
// then its parent's, then its grandparent's, and so on.
func (t *Table) FieldHierarchy(name string) ([]string, error) {
	if name == "" {
		return nil, nil
	}
	chain, err := t.Chain(name)
	if err != nil {
		return nil, err
	}
	var fields []string
	for _, sig := range chain {
		fields = append(fields, sig.fields...)
	}
	return fields, nil
}

// FieldCount sums the field counts of the class and every ancestor.
func (t *Table) FieldCount(name string) (int, error) {
	chain, err := t.Chain(name)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, sig := range chain {
		count += sig.FieldCount()
	}
	return count, nil
}

// Lookup resolves a method by walking from the named class up the parent
// chain. The empty class name searches the top-level scope only.
func (t *Table) Lookup(className, method string) (*MethodSignature, bool) {
	if className == "" {
		return t.top.Method(method)
	}
	chain, err := t.Chain(className)
	if err != nil {
		return nil, false
	}
	for _, sig := range chain {
		if m, ok := sig.Method(method); ok {
			return m, true
		}
	}
	return nil, false
}
