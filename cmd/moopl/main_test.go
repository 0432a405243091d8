package main

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"moopl/interpreter-go/pkg/driver"
)

const helloProgram = `{
  "type": "Program",
  "routines": [
    {
      "type": "ProcDecl",
      "name": "main",
      "params": [],
      "body": [
        {"type": "StmVarDecl", "varType": "int", "name": "a"},
        {"type": "StmVarDecl", "varType": "int", "name": "b"},
        {"type": "StmAssign", "var": "a", "value": {"type": "ExpInteger", "value": 20}},
        {"type": "StmAssign", "var": "b", "value": {"type": "ExpOp", "op": "+", "left": {"type": "ExpVar", "var": "a"}, "right": {"type": "ExpInteger", "value": 22}}},
        {"type": "StmOutput", "expr": {"type": "ExpVar", "var": "b"}}
      ]
    }
  ],
  "commands": [{"type": "ICall", "name": "main", "args": []}]
}`

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"moopl"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}

func TestResolveMooplHomeEnv(t *testing.T) {
	target := filepath.Join(t.TempDir(), "cache")
	t.Setenv("MOOPL_HOME", target)

	got, err := resolveMooplHome()
	if err != nil {
		t.Fatalf("resolveMooplHome error: %v", err)
	}
	if got != target {
		t.Fatalf("resolveMooplHome = %q, want %q", got, target)
	}
}

func TestResolveMooplHomeDefault(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("MOOPL_HOME", "")
	t.Setenv("HOME", tmp)

	got, err := resolveMooplHome()
	if err != nil {
		t.Fatalf("resolveMooplHome error: %v", err)
	}
	if want := filepath.Join(tmp, ".moopl"); got != want {
		t.Fatalf("resolveMooplHome = %q, want %q", got, want)
	}
}

func TestVersionCommand(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("version = %d %q", code, stdout)
	}
}

func TestUnknownCommandFails(t *testing.T) {
	code, _, stderr := runCLI(t, "frobnicate")
	if code != 1 || !strings.Contains(stderr, `unknown command "frobnicate"`) {
		t.Fatalf("unknown command = %d %q", code, stderr)
	}
}

func TestRunProgramFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "hello.json"), helloProgram)

	code, stdout, stderr := runCLI(t, "run", "hello.json")
	if code != 0 {
		t.Fatalf("run exit %d: %s", code, stderr)
	}
	if stdout != "42\n" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestRunReportsRuntimeFault(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "boom.yml"), `
type: Program
routines:
  - type: ProcDecl
    name: main
    params: []
    body:
      - type: StmOutput
        expr: {type: ExpOp, op: "/", left: {type: ExpInteger, value: 1}, right: {type: ExpInteger, value: 0}}
        span: {line: 3, column: 5}
commands:
  - {type: ICall, name: main}
`)

	code, stdout, stderr := runCLI(t, "run", "boom.yml")
	if code != 1 {
		t.Fatalf("run exit %d, want 1", code)
	}
	if stdout != "" {
		t.Fatalf("stdout = %q, want nothing", stdout)
	}
	if !strings.Contains(stderr, "runtime error: DivisionByZero: division by zero is undefined (3:5)") {
		t.Fatalf("stderr = %q", stderr)
	}
	if !strings.Contains(stderr, "    at main (self=0)") {
		t.Fatalf("stderr missing call stack: %q", stderr)
	}
}

func TestRunTraceFlagWritesConstructedObjects(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "point.json"), `{
  "type": "Program",
  "classes": [{"type": "ClassDecl", "name": "Point", "fields": [{"type": "FieldDecl", "fieldType": "int", "name": "x"}]}],
  "commands": [{"type": "IEval", "expr": {"type": "ExpIsnull", "operand": {"type": "ExpNewObject", "class": "Point"}}}]
}`)

	code, stdout, stderr := runCLI(t, "run", "--trace", "point.json")
	if code != 0 {
		t.Fatalf("run exit %d: %s", code, stderr)
	}
	if stdout != "0\n" || stderr != "Point[ 0  ]\n" {
		t.Fatalf("stdout = %q, stderr = %q", stdout, stderr)
	}

	code, _, stderr = runCLI(t, "run", "point.json")
	if code != 0 || stderr != "" {
		t.Fatalf("untraced run = %d %q", code, stderr)
	}
}

func TestCheckPrintsOffsets(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "hello.json"), helloProgram)

	code, stdout, stderr := runCLI(t, "check", "hello.json")
	if code != 0 || !strings.HasPrefix(stdout, "ok: 1 routines") {
		t.Fatalf("check = %d %q %q", code, stdout, stderr)
	}

	code, stdout, stderr = runCLI(t, "check", "--offsets", "hello.json")
	if code != 0 {
		t.Fatalf("check exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "main slots=2") {
		t.Fatalf("offsets = %q", stdout)
	}
	for _, fragment := range []string{"a            stack 1", "b            stack 2"} {
		if !strings.Contains(stdout, fragment) {
			t.Fatalf("offsets missing %q:\n%s", fragment, stdout)
		}
	}
}

func TestCheckReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "cycle.json"), `{
  "type": "Program",
  "classes": [
    {"type": "ClassDecl", "name": "A", "parent": "B"},
    {"type": "ClassDecl", "name": "B", "parent": "A"}
  ]
}`)

	code, _, stderr := runCLI(t, "check", "cycle.json")
	if code != 1 || !strings.Contains(stderr, "error: class A has a cyclic inheritance chain") {
		t.Fatalf("check = %d %q", code, stderr)
	}
}

func writeGeometryProject(t *testing.T, root string) {
	t.Helper()
	writeFile(t, filepath.Join(root, "moopl.yml"), `
name: demo
entry: main.json
dependencies:
  geometry: ./geometry
`)
	writeFile(t, filepath.Join(root, "geometry", "lib.json"), `{
  "type": "Program",
  "routines": [
    {
      "type": "FunDecl", "returnType": "int", "name": "twice",
      "params": [{"type": "Formal", "paramType": "int", "name": "n"}],
      "body": [],
      "result": {"type": "ExpOp", "op": "*", "left": {"type": "ExpVar", "var": "n"}, "right": {"type": "ExpInteger", "value": 2}}
    }
  ]
}`)
	writeFile(t, filepath.Join(root, "main.json"), `{
  "type": "Program",
  "commands": [{"type": "IEval", "expr": {"type": "ExpCall", "name": "twice", "args": [{"type": "ExpInteger", "value": 21}]}}]
}`)
}

func TestRunRequiresLockedDependencies(t *testing.T) {
	root := t.TempDir()
	writeGeometryProject(t, root)
	chdir(t, root)

	code, _, stderr := runCLI(t, "run")
	if code != 1 || !strings.Contains(stderr, "moopl deps install") {
		t.Fatalf("run without lockfile = %d %q", code, stderr)
	}
}

func TestDepsInstallPathDependency(t *testing.T) {
	root := t.TempDir()
	writeGeometryProject(t, root)
	chdir(t, root)
	t.Setenv("MOOPL_HOME", filepath.Join(t.TempDir(), "home"))

	code, stdout, stderr := runCLI(t, "deps", "install")
	if code != 0 {
		t.Fatalf("deps install exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Created moopl.lock") {
		t.Fatalf("stdout = %q", stdout)
	}

	lock, err := driver.LoadLockfile(filepath.Join(root, driver.LockfileFileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	pkg, ok := lock.Package("geometry")
	if !ok {
		t.Fatalf("geometry not locked: %#v", lock.Packages)
	}
	if !strings.HasPrefix(pkg.Source, "path:") || pkg.Checksum == "" || pkg.Version != "0.0.0-dev" {
		t.Fatalf("locked package = %#v", pkg)
	}

	code, stdout, _ = runCLI(t, "deps", "install")
	if code != 0 || !strings.Contains(stdout, "moopl.lock already up to date") {
		t.Fatalf("second install = %d %q", code, stdout)
	}

	code, stdout, stderr = runCLI(t, "run")
	if code != 0 {
		t.Fatalf("run exit %d: %s", code, stderr)
	}
	if stdout != "42\n" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestDepsInstallGitDependency(t *testing.T) {
	repoDir := t.TempDir()
	writeFile(t, filepath.Join(repoDir, "lib.yml"), `
type: Program
routines:
  - type: FunDecl
    returnType: int
    name: square
    params: [{type: Formal, paramType: int, name: n}]
    body: []
    result: {type: ExpOp, op: "*", left: {type: ExpVar, var: n}, right: {type: ExpVar, var: n}}
`)
	commit := initGitRepo(t, repoDir)

	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("MOOPL_HOME", home)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "moopl.yml"), `
name: squares
entry: main.yml
dependencies:
  mathlib:
    git: "`+repoDir+`"
    rev: "`+commit+`"
`)
	writeFile(t, filepath.Join(root, "main.yml"), `
type: Program
commands:
  - type: IEval
    expr: {type: ExpCall, name: square, args: [{type: ExpInteger, value: 9}]}
`)
	chdir(t, root)

	code, stdout, stderr := runCLI(t, "deps", "install")
	if code != 0 {
		t.Fatalf("deps install exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "fetched mathlib") {
		t.Fatalf("stdout = %q", stdout)
	}

	lock, err := driver.LoadLockfile(filepath.Join(root, driver.LockfileFileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	pkg, ok := lock.Package("mathlib")
	if !ok {
		t.Fatalf("mathlib not locked: %#v", lock.Packages)
	}
	wantDir := filepath.Join(home, "pkg", "src", "mathlib", commit)
	if pkg.Dir != wantDir {
		t.Fatalf("locked dir = %q, want %q", pkg.Dir, wantDir)
	}
	if pkg.Source != "git+"+repoDir+"@"+commit {
		t.Fatalf("locked source = %q", pkg.Source)
	}
	if _, err := os.Stat(filepath.Join(wantDir, "lib.yml")); err != nil {
		t.Fatalf("checkout missing library: %v", err)
	}

	code, stdout, stderr = runCLI(t, "run")
	if code != 0 {
		t.Fatalf("run exit %d: %s", code, stderr)
	}
	if stdout != "81\n" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestGitRevisionFromSpec(t *testing.T) {
	rev, descriptor, err := gitRevisionFromSpec(&driver.DependencySpec{Tag: "v1.2.0"})
	if err != nil {
		t.Fatalf("gitRevisionFromSpec: %v", err)
	}
	if rev != "refs/tags/v1.2.0" || descriptor != "v1.2.0" {
		t.Fatalf("revision = %q %q", rev, descriptor)
	}
	if _, _, err := gitRevisionFromSpec(&driver.DependencySpec{}); err == nil {
		t.Fatalf("expected error without a pin")
	}
	if got := gitPinnedVersion("main", "abc123"); got != "main@abc123" {
		t.Fatalf("gitPinnedVersion = %q", got)
	}
	if got := sanitizePathSegment("main@abc/123"); got != "main_abc_123" {
		t.Fatalf("sanitizePathSegment = %q", got)
	}
}

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if _, err := worktree.Add(rel); err != nil {
			return err
		}
		return nil
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Moopl CLI",
			Email: "moopl@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}
