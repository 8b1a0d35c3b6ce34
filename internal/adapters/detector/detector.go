// Package detector maps project description files to build backends.
package detector

import (
	"os"
	"path/filepath"

	"go.trai.ch/assembly/internal/core/domain"
)

// table maps conventional project file names to their backend.
var table = map[string]domain.Backend{
	"Makefile":              domain.BackendMake,
	"CMakeLists.txt":        domain.BackendCMake,
	"Cargo.toml":            domain.BackendCargo,
	"compile_commands.json": domain.BackendCompileCommands,
	"build.ninja":           domain.BackendNinja,
	"WORKSPACE":             domain.BackendBazel,
	"WORKSPACE.bazel":       domain.BackendBazel,
	"MODULE.bazel":          domain.BackendBazel,
}

// Match returns the backend for a project file name.
func Match(name string) (domain.Backend, bool) {
	b, ok := table[name]
	return b, ok
}

// Detect resolves path to a project description.
//
// A file matches by base name. A directory matches its first immediate child,
// in name order, whose name is in the table. Anything else, including a path
// that does not exist, reports false.
func Detect(path string) (domain.Project, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.Project{}, false
	}

	info, err := os.Stat(abs)
	if err != nil {
		return domain.Project{}, false
	}

	if !info.IsDir() {
		return project(abs)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return domain.Project{}, false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if p, ok := project(filepath.Join(abs, e.Name())); ok {
			return p, true
		}
	}

	return domain.Project{}, false
}

func project(file string) (domain.Project, bool) {
	b, ok := Match(filepath.Base(file))
	if !ok {
		return domain.Project{}, false
	}
	return domain.Project{
		Backend: b,
		File:    file,
		Dir:     filepath.Dir(file),
	}, true
}
