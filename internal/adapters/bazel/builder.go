// Package bazel adapts bazel workspaces to the Builder contract.
package bazel

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/assembly/internal/engine/toolchain"
	"go.trai.ch/zerr"
)

var _ ports.Builder = (*Builder)(nil)

// WorkspaceNames mark a workspace root, in lookup order.
var WorkspaceNames = []string{"MODULE.bazel", "WORKSPACE.bazel", "WORKSPACE"}

// outputExpr asks cquery for the first output file of a target.
const outputExpr = "--starlark:expr=target.files.to_list()[0].path"

// Builder drives bazel for one workspace.
type Builder struct {
	*toolchain.Base
}

// New scans the workspace at path, or the workspace marked by the file path,
// for cc and py rules. WithRuleFilter narrows the scanned rule kinds.
func New(ctx context.Context, path string, exec ports.Executor, log ports.Logger, opts ...toolchain.Option) (*Builder, error) {
	project, err := toolchain.ResolveProject(domain.BackendBazel, path, WorkspaceNames...)
	if err != nil {
		return nil, err
	}

	o, err := toolchain.Apply(domain.BackendBazel, opts...)
	if err != nil {
		return nil, err
	}

	b := &Builder{Base: toolchain.NewBase(project, o, exec, log)}
	if err := b.Populate(ctx, Scanner{Languages: o.Languages, Rules: o.Rules}); err != nil {
		return nil, err
	}
	return b, nil
}

// Build runs `bazel build <label>` passing each flag as a --copt. On success
// the artifact location is refreshed from cquery when bazel can report it.
func (b *Builder) Build(ctx context.Context, t *domain.Target, flags domain.Flags) (domain.Result, error) {
	if err := b.CheckOwned(t); err != nil {
		return domain.Result{}, err
	}

	copts, err := shellwords.Parse(flags.Effective())
	if err != nil {
		return domain.Result{}, errors.Join(domain.ErrBuildFailed,
			zerr.With(zerr.Wrap(err, "split flags"), "flags", flags.Effective()))
	}

	args := []string{b.Command(), "build", t.Label}
	if n := b.Options().Threads; n > 1 {
		args = append(args, "--jobs="+strconv.Itoa(n))
	}
	for _, c := range copts {
		args = append(args, "--copt="+c)
	}

	res, err := b.ExecBuild(ctx, t, domain.Command{Args: args, Dir: b.Project().Dir})
	if err != nil {
		return res, err
	}

	b.resolveOutput(ctx, t)
	return res, nil
}

func (b *Builder) resolveOutput(ctx context.Context, t *domain.Target) {
	res, err := b.Probe(ctx, domain.Command{
		Args: []string{b.Command(), "cquery", t.Label, "--output=starlark", outputExpr},
		Dir:  b.Project().Dir,
	})
	if err != nil {
		return
	}
	if path, ok := OutputPath(res.Lines); ok {
		if !filepath.IsAbs(path) {
			path = filepath.Join(b.Project().Dir, path)
		}
		t.OutputPath = path
	}
}

// OutputPath picks the artifact path out of cquery output, which may carry
// bazel's own status lines.
func OutputPath(lines []string) (string, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "bazel-out/") || filepath.IsAbs(line) {
			return line, true
		}
	}
	return "", false
}

// Run executes `bazel run <label>` from the workspace root.
func (b *Builder) Run(ctx context.Context, t *domain.Target) (domain.Result, error) {
	if err := b.CheckOwned(t); err != nil {
		return domain.Result{}, err
	}
	b.MustBeBuilt(t)

	return b.ExecRun(ctx, t, domain.Command{
		Args: []string{b.Command(), "run", t.Label},
		Dir:  b.Project().Dir,
	})
}
