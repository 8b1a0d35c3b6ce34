package cmake

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/engine/toolchain"
	"go.trai.ch/zerr"
)

const (
	// KindExecutable marks targets declared with add_executable.
	KindExecutable = "executable"
	// KindLibrary marks targets declared with add_library.
	KindLibrary = "library"
)

// maxSubdirDepth bounds add_subdirectory recursion.
const maxSubdirDepth = 8

var varRef = regexp.MustCompile(`\$\{([A-Za-z0-9_.+-]+)\}`)

// Scanner discovers targets from add_executable and add_library calls,
// following add_subdirectory. Only set() and project() are evaluated, to
// resolve target names written as ${VAR}. Conditionals are not evaluated, so
// a name declared in several branches of an if() keeps its first declaration.
type Scanner struct {
	BuildDir string
}

// Discover scans the project's CMakeLists.txt.
func (s Scanner) Discover(_ context.Context, project domain.Project) (toolchain.Discovery, error) {
	sc := &scan{
		root:     project.Dir,
		buildDir: s.BuildDir,
		vars:     map[string]string{},
	}
	if err := sc.file(project.File, "", 0); err != nil {
		return toolchain.Discovery{}, err
	}
	return toolchain.Discovery{
		Targets: lo.UniqBy(sc.targets, func(t *domain.Target) string { return t.Name }),
		Sources: sc.sources,
	}, nil
}

type scan struct {
	root     string
	buildDir string
	vars     map[string]string
	targets  []*domain.Target
	sources  []string
}

func (s *scan) file(path, rel string, depth int) error {
	data, err := os.ReadFile(path) //nolint:gosec // project file
	if err != nil {
		return zerr.With(zerr.Wrap(err, "read CMakeLists.txt"), "path", path)
	}
	s.sources = append(s.sources, path)

	cmds, err := Parse(string(data))
	if err != nil {
		return zerr.With(err, "path", path)
	}

	for _, c := range cmds {
		switch c.Name {
		case "project":
			if len(c.Args) > 0 {
				name := s.expand(c.Args[0].Value)
				s.vars["PROJECT_NAME"] = name
				if rel == "" {
					s.vars["CMAKE_PROJECT_NAME"] = name
				}
			}
		case "set":
			if len(c.Args) > 0 {
				s.set(c.Args)
			}
		case "add_executable", "add_library":
			if t := s.target(c, rel); t != nil {
				s.targets = append(s.targets, t)
			}
		case "add_subdirectory":
			if len(c.Args) == 0 || depth >= maxSubdirDepth {
				continue
			}
			sub := filepath.Clean(filepath.Join(rel, s.expand(c.Args[0].Value)))
			subFile := filepath.Join(s.root, sub, "CMakeLists.txt")
			if _, err := os.Stat(subFile); err != nil {
				continue
			}
			if err := s.file(subFile, sub, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *scan) set(args []Argument) {
	name := s.expand(args[0].Value)
	values := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		if !a.Quoted && (a.Value == "CACHE" || a.Value == "PARENT_SCOPE") {
			break
		}
		values = append(values, s.expand(a.Value))
	}
	s.vars[name] = strings.Join(values, ";")
}

func (s *scan) expand(v string) string {
	for range 8 {
		next := varRef.ReplaceAllStringFunc(v, func(m string) string {
			return s.vars[varRef.FindStringSubmatch(m)[1]]
		})
		if next == v {
			break
		}
		v = next
	}
	return v
}

func (s *scan) target(c Command, rel string) *domain.Target {
	if len(c.Args) == 0 {
		return nil
	}
	name := s.expand(c.Args[0].Value)
	if name == "" || strings.ContainsAny(name, "$<>;") {
		return nil
	}

	kind := KindExecutable
	file := name
	if c.Name == "add_library" {
		kind = KindLibrary
		file = "lib" + name + ".a"
		if len(c.Args) > 1 {
			switch c.Args[1].Value {
			case "IMPORTED", "ALIAS", "INTERFACE", "OBJECT":
				// Nothing to build or run under this name.
				return nil
			case "SHARED", "MODULE":
				file = "lib" + name + ".so"
			}
		}
	} else if len(c.Args) > 1 && (c.Args[1].Value == "IMPORTED" || c.Args[1].Value == "ALIAS") {
		return nil
	}

	t := domain.NewTarget(domain.BackendCMake, name, filepath.Join(s.buildDir, rel, file), []string{"--target", name})
	t.Kind = kind
	return t
}
