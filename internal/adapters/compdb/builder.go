// Package compdb replays compile_commands.json entries behind the Builder contract.
package compdb

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/mattn/go-shellwords"
	"github.com/samber/lo"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/assembly/internal/engine/toolchain"
	"go.trai.ch/zerr"
)

var _ ports.Builder = (*Builder)(nil)

// Name is the compilation database file name.
const Name = "compile_commands.json"

// Entry is one record of a compilation database.
type Entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	Output    string   `json:"output,omitempty"`
}

// Argv returns the entry's argument vector. Arguments win over Command.
func (e Entry) Argv() ([]string, error) {
	if len(e.Arguments) > 0 {
		return e.Arguments, nil
	}
	if strings.TrimSpace(e.Command) == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrParseFailed, "entry has no command"), "file", e.File)
	}
	argv, err := shellwords.Parse(e.Command)
	if err != nil {
		return nil, errors.Join(domain.ErrParseFailed, zerr.With(zerr.Wrap(err, "split command"), "file", e.File))
	}
	return argv, nil
}

// TargetName is the base of Output, or the base of File without its extension.
func (e Entry) TargetName() string {
	if e.Output != "" {
		return filepath.Base(e.Output)
	}
	base := filepath.Base(e.File)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Builder replays the recorded compiler invocations. There is no tool to
// query and nothing to run.
type Builder struct {
	*toolchain.Base
}

// New reads the database at path, or in the directory path.
func New(ctx context.Context, path string, exec ports.Executor, log ports.Logger, opts ...toolchain.Option) (*Builder, error) {
	project, err := toolchain.ResolveProject(domain.BackendCompileCommands, path, Name)
	if err != nil {
		return nil, err
	}

	o, err := toolchain.Apply(domain.BackendCompileCommands, opts...)
	if err != nil {
		return nil, err
	}

	b := &Builder{Base: toolchain.NewBase(project, o, exec, log)}
	if err := b.Populate(ctx, Scanner{}); err != nil {
		return nil, err
	}
	return b, nil
}

// Scanner turns database entries into targets. Relative directories are
// taken relative to the database. When two entries share a name the first
// one wins.
type Scanner struct{}

// Discover decodes the project database.
func (Scanner) Discover(_ context.Context, project domain.Project) (toolchain.Discovery, error) {
	data, err := os.ReadFile(project.File)
	if err != nil {
		return toolchain.Discovery{}, zerr.Wrap(err, "read compilation database")
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return toolchain.Discovery{}, errors.Join(domain.ErrParseFailed, zerr.Wrap(err, "decode compilation database"))
	}
	entries = lo.UniqBy(entries, Entry.TargetName)

	targets := make([]*domain.Target, 0, len(entries))
	for _, e := range entries {
		argv, err := e.Argv()
		if err != nil {
			return toolchain.Discovery{}, err
		}

		dir := e.Directory
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(project.Dir, dir)
		}
		name := e.TargetName()
		out := filepath.Join(dir, name)
		if e.Output != "" {
			out = e.Output
			if !filepath.IsAbs(out) {
				out = filepath.Join(dir, out)
			}
		}

		t := domain.NewTarget(domain.BackendCompileCommands, name, out, argv)
		t.WorkDir = dir
		targets = append(targets, t)
	}
	return toolchain.Discovery{Targets: targets}, nil
}

// Available is always true: the database drives the compiler directly.
func (b *Builder) Available(context.Context) bool {
	return true
}

// Version always fails with ErrVersionUnavailable.
func (b *Builder) Version(context.Context) (*semver.Version, error) {
	return nil, zerr.Wrap(domain.ErrVersionUnavailable, b.Backend().String())
}

// Build executes the recorded command in the entry's directory. Flags cannot
// be injected into a recorded command and are ignored with a warning.
func (b *Builder) Build(ctx context.Context, t *domain.Target, flags domain.Flags) (domain.Result, error) {
	if err := b.CheckOwned(t); err != nil {
		return domain.Result{}, err
	}
	if !flags.IsZero() {
		b.Logger().Warn("compile_commands: flags are ignored for " + t.Name)
	}

	return b.ExecBuild(ctx, t, domain.Command{
		Args: t.BuildCommands,
		Dir:  t.WorkDir,
	})
}

// Run is not supported.
func (b *Builder) Run(_ context.Context, t *domain.Target) (domain.Result, error) {
	if err := b.CheckOwned(t); err != nil {
		return domain.Result{}, err
	}
	return domain.Result{}, zerr.With(zerr.Wrap(domain.ErrRunUnsupported, b.Backend().String()), "target", t.Name)
}
