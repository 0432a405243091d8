package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"

	"moopl/interpreter-go/pkg/allocator"
	"moopl/interpreter-go/pkg/ast"
	"moopl/interpreter-go/pkg/driver"
	"moopl/interpreter-go/pkg/interpreter"
	"moopl/interpreter-go/pkg/runtime"
	"moopl/interpreter-go/pkg/symbols"
)

const cliToolVersion = "moopl-cli 0.0.0-dev"

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// session carries the output streams and exit status of one CLI invocation.
type session struct {
	stdout io.Writer
	stderr io.Writer
	status int
}

// action adapts a status-returning handler to the cli action signature.
func (s *session) action(fn func(*cli.Context) int) func(*cli.Context) error {
	return func(c *cli.Context) error {
		s.status = fn(c)
		return nil
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	s := &session{stdout: stdout, stderr: stderr}
	app := newApp(s)
	if err := app.Run(args); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return s.status
}

func newApp(s *session) *cli.App {
	app := cli.NewApp()
	app.Name = "moopl"
	app.Usage = "run and inspect Moopl programs"
	app.Version = cliToolVersion
	app.HideVersion = true
	app.Writer = s.stdout
	app.ErrWriter = s.stderr
	// Keep the process alive for callers that embed run.
	app.ExitErrHandler = func(*cli.Context, error) {}

	traceFlag := cli.BoolFlag{
		Name:  "trace",
		Usage: "write the field contents of every constructed object to stderr",
	}
	offsetsFlag := cli.BoolFlag{
		Name:  "offsets",
		Usage: "print the storage and offset resolved for every variable",
	}

	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "Run a program file, or the manifest entry when no file is given",
			ArgsUsage: "[FILE]",
			Flags:     []cli.Flag{traceFlag},
			Action: s.action(func(c *cli.Context) int {
				return s.runEntry(c.Args().First(), c.Bool("trace"))
			}),
		},
		{
			Name:      "check",
			Usage:     "Resolve symbols and variable storage without executing",
			ArgsUsage: "FILE",
			Flags:     []cli.Flag{offsetsFlag},
			Action: s.action(func(c *cli.Context) int {
				return s.checkEntry(c.Args().First(), c.Bool("offsets"))
			}),
		},
		{
			Name:  "deps",
			Usage: "Manage manifest dependencies",
			Subcommands: []cli.Command{
				{
					Name:   "install",
					Usage:  "Resolve dependencies and write " + driver.LockfileFileName,
					Action: s.action(func(*cli.Context) int { return s.runDepsInstall() }),
				},
			},
		},
		{
			Name:  "version",
			Usage: "Print the tool version",
			Action: s.action(func(*cli.Context) int {
				fmt.Fprintln(s.stdout, cliToolVersion)
				return 0
			}),
		},
	}
	app.Action = s.action(func(c *cli.Context) int {
		if c.NArg() > 0 {
			fmt.Fprintf(s.stderr, "unknown command %q\n", c.Args().First())
		}
		cli.ShowAppHelp(c)
		return 1
	})
	return app
}

func (s *session) runEntry(file string, trace bool) int {
	manifest, err := s.manifestFor(file)
	if err != nil {
		fmt.Fprintf(s.stderr, "failed to load manifest: %v\n", err)
		return 1
	}
	entry := file
	if entry == "" {
		if manifest == nil {
			fmt.Fprintf(s.stderr, "moopl run requires a program file (%s not found)\n", driver.ManifestFileName)
			return 1
		}
		entry = manifest.EntryPath()
	}
	program, err := s.loadProgram(entry, manifest)
	if err != nil {
		fmt.Fprintf(s.stderr, "%v\n", err)
		return 1
	}

	opts := interpreter.Options{Stdout: s.stdout}
	if manifest != nil {
		trace = trace || manifest.Trace
		opts.MaxDepth = manifest.MaxDepth
	}
	if trace {
		opts.Trace = s.stderr
	}
	interp := interpreter.New(opts)
	diags, err := interp.EvaluateProgram(program, interpreter.ProgramEvaluationOptions{})
	if len(diags) > 0 {
		s.printDiagnostics(diags)
		return 1
	}
	if err != nil {
		s.printRuntimeError(err)
		return 1
	}
	return 0
}

func (s *session) checkEntry(file string, offsets bool) int {
	if file == "" {
		fmt.Fprintln(s.stderr, "moopl check requires a program file")
		return 1
	}
	manifest, err := s.manifestFor(file)
	if err != nil {
		fmt.Fprintf(s.stderr, "failed to load manifest: %v\n", err)
		return 1
	}
	program, err := s.loadProgram(file, manifest)
	if err != nil {
		fmt.Fprintf(s.stderr, "%v\n", err)
		return 1
	}
	table, diags := symbols.Build(program)
	if len(diags) > 0 {
		s.printDiagnostics(diags)
		return 1
	}
	layouts, err := allocator.New(table).Program(program)
	if err != nil {
		fmt.Fprintf(s.stderr, "allocation failed: %v\n", err)
		return 1
	}
	if !offsets {
		fmt.Fprintf(s.stdout, "ok: %d routines, %d classes\n", len(layouts), len(program.Classes))
		return 0
	}
	for _, layout := range layouts {
		fmt.Fprintf(s.stdout, "%s slots=%d\n", layout.QualifiedName(), layout.Slots)
		for _, v := range layout.Vars {
			fmt.Fprintf(s.stdout, "  %-12s %-5s %d\n", v.Name, v.Storage, v.Offset)
		}
	}
	return 0
}

// manifestFor finds the manifest governing file, or the working directory
// when file is empty. A missing manifest is not an error.
func (s *session) manifestFor(file string) (*driver.Manifest, error) {
	start := "."
	if file != "" {
		start = filepath.Dir(file)
	}
	path, err := driver.FindManifest(start)
	if err != nil {
		return nil, nil
	}
	return driver.LoadManifest(path)
}

// loadProgram decodes entry, links the locked dependencies of manifest into
// it and returns the combined program.
func (s *session) loadProgram(entry string, manifest *driver.Manifest) (*ast.Program, error) {
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		return nil, err
	}
	loader, err := driver.NewLoader(collectSearchPaths(lock))
	if err != nil {
		return nil, err
	}
	program, err := loader.Load(entry)
	if err != nil {
		return nil, err
	}
	return program.Link(), nil
}

func (s *session) printDiagnostics(diags []symbols.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(s.stderr, "error: %s\n", d.String())
	}
}

func (s *session) printRuntimeError(err error) {
	fmt.Fprintf(s.stderr, "runtime error: %v\n", err)
	var fault *runtime.Fault
	if errors.As(err, &fault) {
		for _, frame := range fault.Stack {
			fmt.Fprintf(s.stderr, "    at %s\n", frame)
		}
	}
}

func collectSearchPaths(lock *driver.Lockfile) []driver.SearchPath {
	if lock == nil {
		return nil
	}
	paths := make([]driver.SearchPath, 0, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg == nil || pkg.Dir == "" {
			continue
		}
		paths = append(paths, driver.SearchPath{Name: pkg.Name, Path: pkg.Dir})
	}
	return paths
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lockPath := driver.LockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(manifest.Dependencies) > 0 {
				return nil, fmt.Errorf("%s missing for %q; run `moopl deps install`", driver.LockfileFileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if lock.Root != sanitizeName(manifest.Name) {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	for _, name := range manifest.DependencyNames() {
		if _, ok := lock.Package(name); !ok {
			return nil, fmt.Errorf("dependency %q is not locked; run `moopl deps install`", name)
		}
	}
	return lock, nil
}

func resolveMooplHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("MOOPL_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve MOOPL_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".moopl"), nil
}

func (s *session) runDepsInstall() int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(s.stderr, "failed to determine working directory: %v\n", err)
		return 1
	}
	manifestPath, err := driver.FindManifest(cwd)
	if err != nil {
		fmt.Fprintf(s.stderr, "unable to locate %s: %v\n", driver.ManifestFileName, err)
		return 1
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(s.stderr, "failed to read manifest: %v\n", err)
		return 1
	}
	cacheDir, err := resolveMooplHome()
	if err != nil {
		fmt.Fprintf(s.stderr, "failed to resolve MOOPL_HOME: %v\n", err)
		return 1
	}

	fmt.Fprintf(s.stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(s.stdout, "Root package: %s\n", manifest.Name)
	fmt.Fprintf(s.stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(s.stdout, "Cache directory: %s\n", cacheDir)

	lockPath := driver.LockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != sanitizeName(manifest.Name) {
			fmt.Fprintf(s.stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(s.stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion

	installer := newDependencyInstaller(manifest, cacheDir)
	changed, logs, err := installer.Install(lock)
	if err != nil {
		fmt.Fprintf(s.stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(s.stdout, line)
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(s.stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(s.stdout, "%s %s: %s\n", action, driver.LockfileFileName, lock.Path)
	} else {
		fmt.Fprintf(s.stdout, "%s already up to date: %s\n", driver.LockfileFileName, lock.Path)
	}

	fmt.Fprintln(s.stdout, "Dependencies installed.")
	return 0
}
