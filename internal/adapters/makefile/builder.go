// Package makefile adapts GNU make projects to the Builder contract.
package makefile

import (
	"context"
	"path/filepath"
	"strconv"

	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/assembly/internal/engine/toolchain"
)

var _ ports.Builder = (*Builder)(nil)

// Names are the file names make looks for, in its own lookup order.
var Names = []string{"GNUmakefile", "makefile", "Makefile"}

// Builder drives make for one Makefile.
type Builder struct {
	*toolchain.Base
}

// New parses the Makefile at path, or in the directory path, and returns a
// Builder exposing one target per rule with a recipe.
func New(ctx context.Context, path string, exec ports.Executor, log ports.Logger, opts ...toolchain.Option) (*Builder, error) {
	project, err := toolchain.ResolveProject(domain.BackendMake, path, Names...)
	if err != nil {
		return nil, err
	}

	o, err := toolchain.Apply(domain.BackendMake, opts...)
	if err != nil {
		return nil, err
	}

	b := &Builder{Base: toolchain.NewBase(project, o, exec, log)}
	if err := b.Populate(ctx, Scanner{}); err != nil {
		return nil, err
	}
	return b, nil
}

// Scanner discovers make targets from the Makefile text.
type Scanner struct{}

// Discover parses the project Makefile.
func (Scanner) Discover(_ context.Context, project domain.Project) (toolchain.Discovery, error) {
	mf, err := ParseFile(project.File)
	if err != nil {
		return toolchain.Discovery{}, err
	}

	names, recipes := mf.Recipes()
	targets := make([]*domain.Target, 0, len(names))
	for _, name := range names {
		t := domain.NewTarget(domain.BackendMake, name, filepath.Join(project.Dir, name), recipes[name])
		targets = append(targets, t)
	}

	return toolchain.Discovery{Targets: targets, Default: mf.DefaultGoal}, nil
}

// Build runs `make clean`, then `make <target> -j<threads> -f <file> -C <dir>`
// with the flags injected through CFLAGS and CXXFLAGS.
func (b *Builder) Build(ctx context.Context, t *domain.Target, flags domain.Flags) (domain.Result, error) {
	if err := b.CheckOwned(t); err != nil {
		return domain.Result{}, err
	}

	p := b.Project()
	b.Logger().Debug("make: cleaning " + p.Dir)
	if _, err := b.Exec(ctx, domain.Command{
		Args: []string{b.Command(), "-f", p.File, "-C", p.Dir, "clean"},
		Dir:  p.Dir,
	}); err != nil {
		b.Logger().Warn("make clean failed, continuing with the build")
	}

	return b.ExecBuild(ctx, t, domain.Command{
		Args: []string{
			b.Command(), t.Name,
			"-j" + strconv.Itoa(b.Options().Threads),
			"-f", p.File,
			"-C", p.Dir,
		},
		Dir: p.Dir,
		Env: toolchain.FlagEnv(toolchain.CompilerFlagVars, flags),
	})
}

// Run executes the artifact named after the target in the Makefile's directory.
func (b *Builder) Run(ctx context.Context, t *domain.Target) (domain.Result, error) {
	if err := b.CheckOwned(t); err != nil {
		return domain.Result{}, err
	}
	b.MustBeBuilt(t)

	return b.ExecRun(ctx, t, domain.Command{
		Args: []string{t.OutputPath},
		Dir:  b.Project().Dir,
	})
}
