package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"moopl/interpreter-go/pkg/driver"
)

type resolvedPackage struct {
	pkg      *driver.LockedPackage
	manifest *driver.Manifest
	root     string
}

type dependencyInstaller struct {
	manifest     *driver.Manifest
	manifestRoot string
	cacheDir     string
	logs         []string
	git          *gitFetcher
	resolved     map[string]*driver.LockedPackage
	resolving    map[string]bool
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	return &dependencyInstaller{
		manifest:     manifest,
		manifestRoot: manifest.Root(),
		cacheDir:     cacheDir,
		logs:         []string{},
		git:          newGitFetcher(cacheDir),
	}
}

// Install resolves every manifest dependency, and the dependencies those
// declare in their own moopl.yml, replacing lock.Packages. It reports
// whether the locked set changed.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	d.resolved = make(map[string]*driver.LockedPackage)
	d.resolving = make(map[string]bool)

	for _, name := range d.manifest.DependencyNames() {
		if err := d.installDependency(name, d.manifest.Dependencies[name], d.manifestRoot); err != nil {
			return false, d.logs, err
		}
	}

	desired := make([]*driver.LockedPackage, 0, len(d.resolved))
	for _, pkg := range d.resolved {
		desired = append(desired, pkg)
	}
	sort.SliceStable(desired, func(i, j int) bool {
		return desired[i].Name < desired[j].Name
	})

	existing := make(map[string]*driver.LockedPackage, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg == nil {
			continue
		}
		existing[pkg.Name] = pkg
	}
	changed := len(desired) != len(existing)
	for _, pkg := range desired {
		if current, ok := existing[pkg.Name]; !ok || !lockedPackageEqual(current, pkg) {
			changed = true
		}
	}

	lock.Packages = desired
	return changed, d.logs, nil
}

func (d *dependencyInstaller) installDependency(name string, spec *driver.DependencySpec, base string) error {
	if spec == nil {
		return fmt.Errorf("dependency %q has no descriptor", name)
	}
	key := sanitizeName(name)
	if _, done := d.resolved[key]; done {
		return nil
	}
	if d.resolving[key] {
		return fmt.Errorf("dependency cycle detected at %s", key)
	}
	d.resolving[key] = true
	defer delete(d.resolving, key)

	resolved, err := d.resolveDependency(name, spec, base)
	if err != nil {
		return err
	}
	if _, err := driver.FindLibrary(resolved.root); err != nil {
		return fmt.Errorf("dependency %q: %w", name, err)
	}

	if resolved.manifest != nil {
		for _, childName := range resolved.manifest.DependencyNames() {
			childSpec := resolved.manifest.Dependencies[childName]
			if err := d.installDependency(childName, childSpec, resolved.root); err != nil {
				return fmt.Errorf("dependency %s: %w", key, err)
			}
		}
	}

	d.resolved[key] = resolved.pkg
	return nil
}

func (d *dependencyInstaller) resolveDependency(name string, spec *driver.DependencySpec, base string) (*resolvedPackage, error) {
	switch {
	case spec.Path != "":
		return d.resolvePathDependency(name, spec, base)
	case spec.Git != "":
		return d.resolveGitDependency(name, spec)
	default:
		return nil, fmt.Errorf("dependency %q: unsupported descriptor", name)
	}
}

func (d *dependencyInstaller) resolvePathDependency(name string, spec *driver.DependencySpec, base string) (*resolvedPackage, error) {
	pathSpec := spec.Path
	if !filepath.IsAbs(pathSpec) {
		pathSpec = filepath.Join(base, pathSpec)
	}
	abs, err := filepath.Abs(pathSpec)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: resolve path %q: %w", name, spec.Path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: stat %s: %w", name, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dependency %q: expected directory at %s", name, abs)
	}

	depManifest, err := loadDependencyManifest(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	version := "0.0.0-dev"
	if depManifest != nil && strings.TrimSpace(depManifest.Version) != "" {
		version = strings.TrimSpace(depManifest.Version)
	}
	checksum, err := dirChecksum(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: checksum %s: %w", name, abs, err)
	}

	d.logs = append(d.logs, fmt.Sprintf("linked %s %s (%s)", sanitizeName(name), version, d.displayPath(abs)))
	return &resolvedPackage{
		pkg: &driver.LockedPackage{
			Name:     sanitizeName(name),
			Version:  version,
			Source:   fmt.Sprintf("path:%s", abs),
			Checksum: checksum,
			Dir:      abs,
		},
		manifest: depManifest,
		root:     abs,
	}, nil
}

func (d *dependencyInstaller) resolveGitDependency(name string, spec *driver.DependencySpec) (*resolvedPackage, error) {
	if d.git == nil {
		return nil, fmt.Errorf("dependency %q: git fetcher unavailable without a cache directory", name)
	}
	pkg, commit, err := d.git.Fetch(name, spec)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	depManifest, err := loadDependencyManifest(pkg.Dir)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	d.logs = append(d.logs, fmt.Sprintf("fetched %s %s (%s)", pkg.Name, pkg.Version, shortCommit(commit)))
	return &resolvedPackage{pkg: pkg, manifest: depManifest, root: pkg.Dir}, nil
}

// loadDependencyManifest reads the optional moopl.yml at a dependency root.
func loadDependencyManifest(root string) (*driver.Manifest, error) {
	path := filepath.Join(root, driver.ManifestFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return driver.LoadManifest(path)
}

func (d *dependencyInstaller) displayPath(path string) string {
	if d.manifestRoot == "" {
		return path
	}
	if rel, err := filepath.Rel(d.manifestRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func lockedPackageEqual(a, b *driver.LockedPackage) bool {
	return a.Name == b.Name &&
		a.Version == b.Version &&
		a.Source == b.Source &&
		a.Checksum == b.Checksum &&
		a.Dir == b.Dir
}

func shortCommit(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}

// sanitizeName mirrors the lockfile's package-name normalisation.
func sanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
