// Package allocator decides, for every variable reference in a program,
// whether it lives in the current activation record or in the self object,
// and assigns its offset.
//
// Frame layout: self at -2, parameters at -3, -4, ... in declaration order,
// locals at 1, 2, .... Field offsets count from the base class upward.
package allocator

import (
	"errors"
	"fmt"

	"moopl/interpreter-go/pkg/ast"
	"moopl/interpreter-go/pkg/symbols"
)

const (
	// SelfOffset is the frame slot holding the receiver.
	SelfOffset = -2
	firstParam = -3
	firstLocal = 1
)

// VarLayout records one resolved variable occurrence.
type VarLayout struct {
	Name    string
	Storage ast.Storage
	Offset  int
}

// RoutineLayout summarises the allocation of one routine.
type RoutineLayout struct {
	Owner string
	Name  string
	Slots int
	Vars  []VarLayout
}

// QualifiedName renders Owner.Name, or just Name for top-level routines.
func (r RoutineLayout) QualifiedName() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "." + r.Name
}

// Allocator walks a program once and annotates its variables in place.
type Allocator struct {
	table *symbols.Table

	className string
	params    []string
	locals    []string
	maxLocals int

	fields  map[string][]string
	layouts []RoutineLayout
	current *RoutineLayout
	errs    []error
}

// New returns an allocator resolving fields through table.
func New(table *symbols.Table) *Allocator {
	return &Allocator{table: table, fields: make(map[string][]string)}
}

// Allocate resolves every variable in program. Re-running it on an already
// resolved tree reproduces the same offsets.
func Allocate(program *ast.Program, table *symbols.Table) error {
	_, err := New(table).Program(program)
	return err
}

// Program resolves every routine in the program and returns their layouts
// in visiting order: top-level routines first, then each class's methods.
func (a *Allocator) Program(program *ast.Program) ([]RoutineLayout, error) {
	a.layouts = nil
	a.errs = nil
	if program == nil {
		return nil, nil
	}
	a.className = ""
	for _, routine := range program.Routines {
		a.routine(routine)
	}
	for _, class := range program.Classes {
		if class == nil {
			continue
		}
		if _, ok := a.table.Class(class.Name); !ok {
			a.errs = append(a.errs, fmt.Errorf("allocator: class %s is not in the symbol table", class.Name))
			continue
		}
		a.className = class.Name
		for _, method := range class.Methods {
			a.routine(method)
		}
	}
	a.className = ""
	return a.layouts, errors.Join(a.errs...)
}

func (a *Allocator) routine(routine ast.Routine) {
	if routine == nil {
		return
	}
	a.params = a.params[:0]
	a.locals = a.locals[:0]
	a.maxLocals = 0
	for _, formal := range routine.Parameters() {
		a.params = append(a.params, formal.Name)
	}
	a.layouts = append(a.layouts, RoutineLayout{Owner: a.className, Name: routine.RoutineName()})
	a.current = &a.layouts[len(a.layouts)-1]

	for _, stmt := range routine.Statements() {
		a.statement(stmt)
	}
	if fun, ok := routine.(*ast.FunDecl); ok && fun.Result != nil {
		a.expression(fun.Result)
	}
	routine.SetStackSlots(a.maxLocals)
	a.current.Slots = a.maxLocals
	a.current = nil
}

func (a *Allocator) statement(node ast.Statement) {
	switch n := node.(type) {
	case *ast.StmBlock:
		a.block(n)
	case *ast.StmVarDecl:
		a.locals = append(a.locals, n.Name)
		if len(a.locals) > a.maxLocals {
			a.maxLocals = len(a.locals)
		}
	case *ast.StmIf:
		a.expression(n.Cond)
		a.block(n.Then)
		a.block(n.Else)
	case *ast.StmWhile:
		a.expression(n.Cond)
		a.block(n.Body)
	case *ast.StmOutput:
		a.expression(n.Expr)
	case *ast.StmAssign:
		a.assignOffset(n.Var)
		a.expression(n.Value)
	case *ast.StmArrayAssign:
		a.expression(n.Array)
		a.expression(n.Index)
		a.expression(n.Value)
	case *ast.StmCall:
		a.expression(n.Receiver)
		for _, arg := range n.Args {
			a.expression(arg)
		}
	case nil:
	default:
		a.errs = append(a.errs, fmt.Errorf("allocator: unsupported statement %s", n.NodeType()))
	}
}

// block drops the locals declared directly inside it on exit so sibling
// blocks reuse their slots; the high-water mark is kept.
func (a *Allocator) block(block *ast.StmBlock) {
	if block == nil {
		return
	}
	mark := len(a.locals)
	for _, stmt := range block.Body {
		a.statement(stmt)
	}
	a.locals = a.locals[:mark]
}

func (a *Allocator) expression(node ast.Expression) {
	switch n := node.(type) {
	case nil:
	case *ast.ExpVar:
		a.assignOffset(n.Var)
	case *ast.ExpInteger, *ast.ExpTrue, *ast.ExpFalse, *ast.ExpSelf:
	case *ast.ExpNot:
		a.expression(n.Operand)
	case *ast.ExpIsnull:
		a.expression(n.Operand)
	case *ast.ExpOp:
		a.expression(n.Left)
		a.expression(n.Right)
	case *ast.ExpArrayLookup:
		a.expression(n.Array)
		a.expression(n.Index)
	case *ast.ExpArrayLength:
		a.expression(n.Array)
	case *ast.ExpNewArray:
		a.expression(n.Length)
	case *ast.ExpNewObject:
		for _, arg := range n.Args {
			a.expression(arg)
		}
	case *ast.ExpCall:
		a.expression(n.Receiver)
		for _, arg := range n.Args {
			a.expression(arg)
		}
	default:
		a.errs = append(a.errs, fmt.Errorf("allocator: unsupported expression %s", n.NodeType()))
	}
}

func (a *Allocator) assignOffset(v *ast.Var) {
	if v == nil {
		return
	}
	if idx := indexOf(a.params, v.Name); idx >= 0 {
		v.Storage = ast.StorageStack
		v.Offset = firstParam - idx
	} else if idx := lastIndexOf(a.locals, v.Name); idx >= 0 {
		v.Storage = ast.StorageStack
		v.Offset = firstLocal + idx
	} else {
		offset, err := a.fieldOffset(v.Name)
		if err != nil {
			a.errs = append(a.errs, err)
			return
		}
		v.Storage = ast.StorageHeap
		v.Offset = offset
	}
	if a.current != nil {
		a.current.Vars = append(a.current.Vars, VarLayout{Name: v.Name, Storage: v.Storage, Offset: v.Offset})
	}
}

// fieldOffset reverses the index into the full field list so base-class
// fields get the lowest offsets. With at most one field the forward index
// is used, which is the same slot.
func (a *Allocator) fieldOffset(name string) (int, error) {
	hierarchy, ok := a.fields[a.className]
	if !ok {
		var err error
		hierarchy, err = a.table.FieldHierarchy(a.className)
		if err != nil {
			return 0, fmt.Errorf("allocator: %w", err)
		}
		a.fields[a.className] = hierarchy
	}
	index := lastIndexOf(hierarchy, name)
	if index < 0 {
		scope := "top level"
		if a.className != "" {
			scope = "class " + a.className
		}
		return 0, fmt.Errorf("allocator: %s is not a parameter, local or field in %s", name, scope)
	}
	elements := len(hierarchy)
	if elements > 1 {
		return elements - 1 - index, nil
	}
	return index, nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func lastIndexOf(names []string, name string) int {
	for i := len(names) - 1; i >= 0; i-- {
		if names[i] == name {
			return i
		}
	}
	return -1
}
