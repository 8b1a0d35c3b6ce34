// Package cmake adapts CMake projects to the Builder contract.
package cmake

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/assembly/internal/engine/toolchain"
	"go.trai.ch/zerr"
)

var _ ports.Builder = (*Builder)(nil)

// Name is the CMake project file name.
const Name = "CMakeLists.txt"

// Builder drives cmake for one source tree and one build tree.
type Builder struct {
	*toolchain.Base
	buildDir string
	// temporary is set when buildDir was created by New and is removed by Close.
	temporary bool
}

// New scans the CMakeLists.txt at path, or in the directory path, and then
// generates the build tree with `cmake -S <src> -B <build>`. Without
// WithBuildDir a fresh temporary directory is used and removed again by Close
// or a failed New; a relative build dir is taken relative to the source tree.
func New(ctx context.Context, path string, exec ports.Executor, log ports.Logger, opts ...toolchain.Option) (*Builder, error) {
	project, err := toolchain.ResolveProject(domain.BackendCMake, path, Name)
	if err != nil {
		return nil, err
	}

	o, err := toolchain.Apply(domain.BackendCMake, opts...)
	if err != nil {
		return nil, err
	}

	b := &Builder{Base: toolchain.NewBase(project, o, exec, log)}

	b.buildDir, err = resolveBuildDir(project.Dir, o.BuildDir)
	if err != nil {
		return nil, b.DiscoveryFailed(err)
	}
	b.temporary = o.BuildDir == ""

	if err := b.Populate(ctx, Scanner{BuildDir: b.buildDir}); err != nil {
		_ = b.Close()
		return nil, err
	}

	if _, err := b.Exec(ctx, domain.Command{
		Args: []string{b.Command(), "-S", project.Dir, "-B", b.buildDir},
		Dir:  project.Dir,
	}); err != nil {
		_ = b.Close()
		return nil, b.DiscoveryFailed(zerr.Wrap(err, "generate build tree"))
	}

	return b, nil
}

// Close removes the build tree when New created it as a temporary directory.
// A build tree given through WithBuildDir is kept.
func (b *Builder) Close() error {
	if !b.temporary {
		return nil
	}
	b.temporary = false
	if err := os.RemoveAll(b.buildDir); err != nil {
		return zerr.With(zerr.Wrap(err, "remove build tree"), "dir", b.buildDir)
	}
	return nil
}

func resolveBuildDir(srcDir, dir string) (string, error) {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "assembly-cmake-")
		if err != nil {
			return "", zerr.Wrap(err, "create build dir")
		}
		return tmp, nil
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(srcDir, dir)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", zerr.With(zerr.Wrap(err, "create build dir"), "dir", dir)
	}
	return dir, nil
}

// BuildDir returns the generated build tree.
func (b *Builder) BuildDir() string {
	return b.buildDir
}

// Build runs `cmake --build <build> --target <name>` with the flags injected
// through CFLAGS and CXXFLAGS.
func (b *Builder) Build(ctx context.Context, t *domain.Target, flags domain.Flags) (domain.Result, error) {
	if err := b.CheckOwned(t); err != nil {
		return domain.Result{}, err
	}

	args := []string{b.Command(), "--build", b.buildDir, "--target", t.Name}
	if n := b.Options().Threads; n > 1 {
		args = append(args, "--parallel", strconv.Itoa(n))
	}

	return b.ExecBuild(ctx, t, domain.Command{
		Args: args,
		Dir:  b.Project().Dir,
		Env:  toolchain.FlagEnv(toolchain.CompilerFlagVars, flags),
	})
}

// Run executes the built artifact from the build tree.
func (b *Builder) Run(ctx context.Context, t *domain.Target) (domain.Result, error) {
	if err := b.CheckOwned(t); err != nil {
		return domain.Result{}, err
	}
	b.MustBeBuilt(t)

	return b.ExecRun(ctx, t, domain.Command{
		Args: []string{t.OutputPath},
		Dir:  b.buildDir,
	})
}
