package toolchain

import (
	"context"
	"errors"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/zerr"
)

// outputTail bounds how many output lines are attached to a logged failure.
const outputTail = 20

// Base implements the parts of ports.Builder that do not depend on the backend.
// Adapters embed it and add discovery, Build and Run.
type Base struct {
	project domain.Project
	opts    Options
	tool    *Tool
	catalog *Catalog
	exec    ports.Executor
	log     ports.Logger

	defaultTarget string
	sources       []string
}

// NewBase creates a Base for project.
func NewBase(project domain.Project, opts Options, exec ports.Executor, log ports.Logger) *Base {
	return &Base{
		project: project,
		opts:    opts,
		tool:    NewTool(opts.Command, exec),
		catalog: NewCatalog(),
		exec:    exec,
		log:     log,
	}
}

// Backend identifies the wrapped tool.
func (b *Base) Backend() domain.Backend { return b.project.Backend }

// Project describes the project file the builder was constructed from.
func (b *Base) Project() domain.Project { return b.project }

// Options returns the resolved construction options.
func (b *Base) Options() Options { return b.opts }

// Command returns the tool executable.
func (b *Base) Command() string { return b.tool.Command }

// Logger returns the builder's logger.
func (b *Base) Logger() ports.Logger { return b.log }

// Catalog returns the discovered targets.
func (b *Base) Catalog() *Catalog { return b.catalog }

// Available reports whether the tool's version check exits zero.
func (b *Base) Available(ctx context.Context) bool {
	return b.tool.Available(ctx)
}

// Version returns the version of the wrapped tool.
func (b *Base) Version(ctx context.Context) (*semver.Version, error) {
	return b.tool.Version(ctx)
}

// Targets returns the discovered targets in discovery order.
func (b *Base) Targets() []*domain.Target {
	return b.catalog.Targets()
}

// Target looks a target up by name.
func (b *Base) Target(name string) (*domain.Target, bool) {
	return b.catalog.Lookup(name)
}

// IsValidTarget reports whether name is a discovered target.
func (b *Base) IsValidTarget(name string) bool {
	_, ok := b.catalog.Lookup(name)
	return ok
}

// CheckOwned returns ErrForeignTarget unless t was discovered by this builder.
func (b *Base) CheckOwned(t *domain.Target) error {
	if b.catalog.Owns(t) {
		return nil
	}
	name := "<nil>"
	if t != nil {
		name = t.String()
	}
	return zerr.With(zerr.Wrap(domain.ErrForeignTarget, b.Backend().String()), "target", name)
}

// MustBeBuilt panics when t has not been built. Running an unbuilt target is
// a programming error, not a recoverable condition.
func (b *Base) MustBeBuilt(t *domain.Target) {
	if !t.Built() {
		panic("assembly: run called on unbuilt target " + t.String())
	}
}

// Exec runs cmd, streaming output to the vertex carried by ctx if any.
// Failures are logged with the tail of the captured output.
func (b *Base) Exec(ctx context.Context, cmd domain.Command) (domain.Result, error) {
	if cmd.Tee == nil {
		if v, ok := ports.VertexFromContext(ctx); ok {
			cmd.Tee = v.Stdout()
		}
	}

	res, err := b.exec.Run(ctx, cmd)
	if err != nil {
		b.log.Error(zerr.With(zerr.Wrap(err, strings.Join(cmd.Args, " ")), "output", tail(res.Lines)))
	}
	return res, err
}

// Probe runs a best-effort query. Failures are returned but not logged as
// errors and no output is streamed.
func (b *Base) Probe(ctx context.Context, cmd domain.Command) (domain.Result, error) {
	res, err := b.exec.Run(ctx, cmd)
	if err != nil {
		b.log.Debug("probe failed: " + strings.Join(cmd.Args, " "))
	}
	return res, err
}

// ExecBuild runs cmd as the build of t, marking t built on success.
func (b *Base) ExecBuild(ctx context.Context, t *domain.Target, cmd domain.Command) (domain.Result, error) {
	res, err := b.Exec(ctx, cmd)
	if err != nil {
		return res, errors.Join(domain.ErrBuildFailed, zerr.With(zerr.Wrap(err, "build"), "target", t.String()))
	}
	t.MarkBuilt()
	return res, nil
}

// ExecRun executes cmd as the run of t.
func (b *Base) ExecRun(ctx context.Context, t *domain.Target, cmd domain.Command) (domain.Result, error) {
	res, err := b.Exec(ctx, cmd)
	if err != nil {
		return res, errors.Join(domain.ErrRunFailed, zerr.With(zerr.Wrap(err, "run"), "target", t.String()))
	}
	return res, nil
}

// DiscoveryFailed wraps err as a discovery failure of the project.
func (b *Base) DiscoveryFailed(err error) error {
	return errors.Join(domain.ErrDiscoveryFailed, zerr.With(zerr.Wrap(err, b.Backend().String()), "project", b.project.File))
}

func tail(lines []string) string {
	if len(lines) > outputTail {
		lines = lines[len(lines)-outputTail:]
	}
	return strings.Join(lines, "\n")
}
