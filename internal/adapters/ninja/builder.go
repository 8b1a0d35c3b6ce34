// Package ninja adapts ninja build files to the Builder contract.
package ninja

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/assembly/internal/engine/toolchain"
	"go.trai.ch/zerr"
)

var _ ports.Builder = (*Builder)(nil)

// Name is the ninja build file name.
const Name = "build.ninja"

// Builder drives ninja for one build file.
type Builder struct {
	*toolchain.Base
}

// New asks ninja for the targets of the build file at path, or in the
// directory path.
func New(ctx context.Context, path string, exec ports.Executor, log ports.Logger, opts ...toolchain.Option) (*Builder, error) {
	project, err := toolchain.ResolveProject(domain.BackendNinja, path, Name)
	if err != nil {
		return nil, err
	}

	o, err := toolchain.Apply(domain.BackendNinja, opts...)
	if err != nil {
		return nil, err
	}

	b := &Builder{Base: toolchain.NewBase(project, o, exec, log)}
	if err := b.Populate(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// fileArgs selects the build file when it does not carry the default name.
func fileArgs(project domain.Project) []string {
	if filepath.Base(project.File) == Name {
		return nil
	}
	return []string{"-f", project.File}
}

// Discover runs `ninja -C <dir> -t targets`.
func (b *Builder) Discover(ctx context.Context, project domain.Project) (toolchain.Discovery, error) {
	args := append([]string{b.Command(), "-C", project.Dir}, fileArgs(project)...)
	res, err := b.Exec(ctx, domain.Command{
		Args: append(args, "-t", "targets"),
		Dir:  project.Dir,
	})
	if err != nil {
		return toolchain.Discovery{}, zerr.Wrap(err, "query targets")
	}

	var targets []*domain.Target
	for _, e := range ParseTargets(res.Lines) {
		t := domain.NewTarget(domain.BackendNinja, e.Name, filepath.Join(project.Dir, e.Name), nil)
		t.Kind = e.Rule
		targets = append(targets, t)
	}
	return toolchain.Discovery{Targets: targets}, nil
}

// Entry is one line of `ninja -t targets` output.
type Entry struct {
	Name string
	Rule string
}

// ParseTargets reads `<name>: <rule>` lines. Ninja's own status lines and
// anything else are ignored, and the first occurrence of a name wins.
func ParseTargets(lines []string) []Entry {
	var entries []Entry
	for _, line := range lines {
		if strings.HasPrefix(line, "ninja: ") {
			continue
		}
		i := strings.LastIndex(line, ": ")
		if i <= 0 {
			continue
		}
		entries = append(entries, Entry{
			Name: strings.TrimSpace(line[:i]),
			Rule: strings.TrimSpace(line[i+2:]),
		})
	}
	return lo.UniqBy(entries, func(e Entry) string { return e.Name })
}

// Build runs `ninja -C <dir> <name>` with the flags injected through CFLAGS
// and CXXFLAGS.
func (b *Builder) Build(ctx context.Context, t *domain.Target, flags domain.Flags) (domain.Result, error) {
	if err := b.CheckOwned(t); err != nil {
		return domain.Result{}, err
	}

	p := b.Project()
	args := append([]string{b.Command(), "-C", p.Dir}, fileArgs(p)...)
	if n := b.Options().Threads; n > 1 {
		args = append(args, "-j", strconv.Itoa(n))
	}

	return b.ExecBuild(ctx, t, domain.Command{
		Args: append(args, t.Name),
		Dir:  p.Dir,
		Env:  toolchain.FlagEnv(toolchain.CompilerFlagVars, flags),
	})
}

// Run executes the artifact named after the target in the build file's directory.
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
