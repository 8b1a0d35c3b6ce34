package toolchain

import (
	"os"
	"path/filepath"

	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/zerr"
)

// ResolveProject turns path into a project description for backend b.
// path may name the project file itself, under any name, or a directory
// containing one of names. The first name present wins.
func ResolveProject(b domain.Backend, path string, names ...string) (domain.Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.Project{}, zerr.With(zerr.Wrap(domain.ErrProjectFileNotFound, err.Error()), "path", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return domain.Project{}, zerr.With(zerr.Wrap(domain.ErrProjectFileNotFound, b.String()), "path", abs)
	}

	if !info.IsDir() {
		return domain.Project{Backend: b, File: abs, Dir: filepath.Dir(abs)}, nil
	}

	for _, name := range names {
		file := filepath.Join(abs, name)
		if fi, err := os.Stat(file); err == nil && !fi.IsDir() {
			return domain.Project{Backend: b, File: file, Dir: abs}, nil
		}
	}

	return domain.Project{}, zerr.With(zerr.Wrap(domain.ErrProjectFileNotFound, b.String()), "path", abs)
}
