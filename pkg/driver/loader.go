package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"moopl/interpreter-go/pkg/ast"
)

// LibraryFileNames are probed, in order, inside a dependency root.
var LibraryFileNames = []string{"lib.json", "lib.yml", "lib.yaml"}

// SearchPath names a dependency root directory.
type SearchPath struct {
	Name string
	Path string
}

// Module is one decoded program file.
type Module struct {
	Name    string
	File    string
	Program *ast.Program
}

// Program contains the entry module and the library modules it links
// against, in search-path order.
type Program struct {
	Entry     *Module
	Libraries []*Module
}

// Loader decodes an entry program and the library program of every
// dependency root.
type Loader struct {
	searchPaths []SearchPath
}

// NewLoader constructs a loader over the given dependency roots. Duplicate
// roots are dropped.
func NewLoader(searchPaths []SearchPath) (*Loader, error) {
	unique := make([]SearchPath, 0, len(searchPaths))
	seen := make(map[string]struct{}, len(searchPaths))
	for _, sp := range searchPaths {
		if sp.Path == "" {
			continue
		}
		abs, err := filepath.Abs(sp.Path)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve search path %q: %w", sp.Path, err)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		name := sp.Name
		if name == "" {
			name = sanitizeSegment(filepath.Base(abs))
		}
		unique = append(unique, SearchPath{Name: name, Path: abs})
	}
	return &Loader{searchPaths: unique}, nil
}

// Load decodes the entry file and every library.
func (l *Loader) Load(entry string) (*Program, error) {
	entryAbs, err := filepath.Abs(entry)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve entry %q: %w", entry, err)
	}
	entryProgram, err := ReadProgram(entryAbs)
	if err != nil {
		return nil, err
	}
	program := &Program{
		Entry: &Module{Name: "main", File: entryAbs, Program: entryProgram},
	}
	for _, sp := range l.searchPaths {
		file, err := FindLibrary(sp.Path)
		if err != nil {
			return nil, fmt.Errorf("loader: dependency %s: %w", sp.Name, err)
		}
		lib, err := ReadProgram(file)
		if err != nil {
			return nil, fmt.Errorf("loader: dependency %s: %w", sp.Name, err)
		}
		if len(lib.Commands) > 0 {
			return nil, fmt.Errorf("loader: dependency %s: library %s must not contain commands", sp.Name, file)
		}
		program.Libraries = append(program.Libraries, &Module{Name: sp.Name, File: file, Program: lib})
	}
	return program, nil
}

// FindLibrary locates the library program inside a dependency root.
func FindLibrary(dir string) (string, error) {
	for _, name := range LibraryFileNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no library program (%v) in %s", LibraryFileNames, dir)
}

// Link merges library routines and classes ahead of the entry's own
// declarations. Only the entry's commands are kept. Name clashes surface
// later as duplicate-declaration diagnostics.
func (p *Program) Link() *ast.Program {
	var routines []ast.Routine
	var classes []*ast.ClassDecl
	for _, lib := range p.Libraries {
		routines = append(routines, lib.Program.Routines...)
		classes = append(classes, lib.Program.Classes...)
	}
	routines = append(routines, p.Entry.Program.Routines...)
	classes = append(classes, p.Entry.Program.Classes...)
	linked := ast.NewProgram(routines, classes, p.Entry.Program.Commands)
	linked.SetSpan(p.Entry.Program.NodeSpan())
	return linked
}
