// Package app implements the application layer for assembly.
package app

import (
	"context"
	"errors"
	"io"
	"maps"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"
	"github.com/samber/lo"
	"go.trai.ch/assembly/internal/adapters/bazel"    //nolint:depguard // Wired in app layer
	"go.trai.ch/assembly/internal/adapters/cargo"    //nolint:depguard // Wired in app layer
	"go.trai.ch/assembly/internal/adapters/cmake"    //nolint:depguard // Wired in app layer
	"go.trai.ch/assembly/internal/adapters/compdb"   //nolint:depguard // Wired in app layer
	"go.trai.ch/assembly/internal/adapters/detector" //nolint:depguard // Wired in app layer
	"go.trai.ch/assembly/internal/adapters/makefile" //nolint:depguard // Wired in app layer
	"go.trai.ch/assembly/internal/adapters/ninja"    //nolint:depguard // Wired in app layer
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/assembly/internal/engine/toolchain"
	"go.trai.ch/zerr"
)

// Factory constructs the Builder for a project file.
type Factory func(ctx context.Context, path string, exec ports.Executor, log ports.Logger, opts ...toolchain.Option) (ports.Builder, error)

// adapt turns an adapter constructor into a Factory without leaking typed nils.
func adapt[B ports.Builder](fn func(context.Context, string, ports.Executor, ports.Logger, ...toolchain.Option) (B, error)) Factory {
	return func(ctx context.Context, path string, exec ports.Executor, log ports.Logger, opts ...toolchain.Option) (ports.Builder, error) {
		b, err := fn(ctx, path, exec, log, opts...)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// DefaultFactories maps every backend to its adapter.
func DefaultFactories() map[domain.Backend]Factory {
	return map[domain.Backend]Factory{
		domain.BackendMake:            adapt(makefile.New),
		domain.BackendCMake:           adapt(cmake.New),
		domain.BackendCargo:           adapt(cargo.New),
		domain.BackendNinja:           adapt(ninja.New),
		domain.BackendBazel:           adapt(bazel.New),
		domain.BackendCompileCommands: adapt(compdb.New),
	}
}

// Overrides are command line settings that win over the config file.
type Overrides struct {
	// Config names the config file or the directory holding it. Empty means
	// the project directory.
	Config   string
	Command  string
	Threads  int
	BuildDir string
}

func (o Overrides) apply(s domain.Settings, b domain.Backend) domain.Settings {
	if o.Command != "" {
		s.Commands = maps.Clone(s.Commands)
		if s.Commands == nil {
			s.Commands = make(map[domain.Backend]string, 1)
		}
		s.Commands[b] = o.Command
	}
	if o.Threads != 0 {
		s.Threads = o.Threads
	}
	if o.BuildDir != "" {
		s.BuildDir = o.BuildDir
	}
	return s
}

// App represents the main application logic.
type App struct {
	loader    ports.ConfigLoader
	exec      ports.Executor
	log       ports.Logger
	hasher    ports.Hasher
	telemetry ports.Telemetry
	factories map[domain.Backend]Factory
}

// New creates a new App instance using the default adapters.
func New(loader ports.ConfigLoader, exec ports.Executor, log ports.Logger, hasher ports.Hasher, telemetry ports.Telemetry) *App {
	return &App{
		loader:    loader,
		exec:      exec,
		log:       log,
		hasher:    hasher,
		telemetry: telemetry,
		factories: DefaultFactories(),
	}
}

// WithFactory replaces the adapter used for backend b.
func (a *App) WithFactory(b domain.Backend, f Factory) *App {
	a.factories[b] = f
	return a
}

// Telemetry returns the recorder builds and runs are reported to.
func (a *App) Telemetry() ports.Telemetry {
	return a.telemetry
}

// Session is a constructed Builder together with the fingerprint of the
// files it discovered its targets from.
type Session struct {
	Builder ports.Builder
	// Sources are the project files behind the targets, project file first.
	Sources     []string
	Fingerprint string

	hasher ports.Hasher
}

// Stale reports whether any source changed since discovery. Targets are
// never refreshed; open a new session instead.
func (s *Session) Stale() (bool, error) {
	current, err := s.hasher.HashFiles(s.Sources)
	if err != nil {
		return false, err
	}
	return current != s.Fingerprint, nil
}

// Close releases what the builder holds, such as a temporary build tree.
func (s *Session) Close() error {
	if c, ok := s.Builder.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (a *App) close(s *Session) {
	if err := s.Close(); err != nil {
		a.log.Warn("close " + s.Builder.Backend().String() + " session: " + err.Error())
	}
}

// warnIfChanged reports sources edited while the session was open, for
// instance by a build step that regenerates its own project file.
func (a *App) warnIfChanged(s *Session) {
	stale, err := s.Stale()
	if err != nil {
		a.log.Debug("fingerprint unavailable: " + err.Error())
		return
	}
	if stale {
		a.log.Warn("project changed since its targets were discovered: " + s.Sources[0])
	}
}

// Open detects the backend at path and constructs its Builder.
func (a *App) Open(ctx context.Context, path string, ov Overrides) (*Session, error) {
	project, ok := detector.Detect(path)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoBackend, "detect"), "path", path)
	}

	factory, ok := a.factories[project.Backend]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoBackend, "no adapter registered"), "backend", project.Backend.String())
	}

	cfg := ov.Config
	if cfg == "" {
		cfg = project.Dir
	}
	settings, err := a.loader.Load(cfg)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	settings = ov.apply(settings, project.Backend)
	if settings.JSONLogs {
		if j, ok := a.log.(interface{ SetJSON(bool) }); ok {
			j.SetJSON(true)
		}
	}

	a.log.Debug("opening " + project.Backend.String() + " project " + project.File)
	builder, err := factory(ctx, project.File, a.exec, a.log, toolchain.FromSettings(settings, project.Backend)...)
	if err != nil {
		return nil, err
	}

	sources := []string{project.File}
	if src, ok := builder.(interface{ Sources() []string }); ok {
		sources = src.Sources()
	}
	s := &Session{Builder: builder, Sources: sources, hasher: a.hasher}

	s.Fingerprint, err = a.hasher.HashFiles(sources)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// List returns the targets at path whose names match pattern. An empty
// pattern matches everything.
func (a *App) List(ctx context.Context, path, pattern string, ov Overrides) ([]*domain.Target, error) {
	s, err := a.Open(ctx, path, ov)
	if err != nil {
		return nil, err
	}
	defer a.close(s)

	targets := s.Builder.Targets()
	if pattern == "" {
		return targets, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid pattern"), "pattern", pattern)
	}
	return lo.Filter(targets, func(t *domain.Target, _ int) bool {
		return g.Match(t.Name)
	}), nil
}

// Build builds the named targets at path in order. Without names the tool's
// default target is built, or every target when there is none. A failing
// target does not stop the others; all failures are returned joined.
func (a *App) Build(ctx context.Context, path string, names []string, flags domain.Flags, ov Overrides) error {
	s, err := a.Open(ctx, path, ov)
	if err != nil {
		return err
	}
	defer a.close(s)

	targets, errs := selectTargets(s.Builder, names)
	for _, t := range targets {
		if err := a.build(ctx, s.Builder, t, flags); err != nil {
			errs = append(errs, err)
			continue
		}
		a.log.Info("built " + t.String())
	}
	if len(targets) > 0 {
		a.warnIfChanged(s)
	}
	return errors.Join(errs...)
}

func selectTargets(b ports.Builder, names []string) ([]*domain.Target, []error) {
	if len(names) == 0 {
		if d, ok := b.(interface {
			DefaultTarget() (*domain.Target, bool)
		}); ok {
			if t, ok := d.DefaultTarget(); ok {
				return []*domain.Target{t}, nil
			}
		}
		return b.Targets(), nil
	}

	var (
		targets []*domain.Target
		errs    []error
	)
	for _, name := range names {
		t, ok := b.Target(name)
		if !ok {
			errs = append(errs, zerr.With(zerr.Wrap(domain.ErrTargetNotFound, "lookup"), "target", name))
			continue
		}
		targets = append(targets, t)
	}
	return targets, errs
}

func (a *App) build(ctx context.Context, b ports.Builder, t *domain.Target, flags domain.Flags) error {
	vctx, vertex := a.telemetry.Record(ctx, "build "+t.String())
	_, err := b.Build(vctx, t, flags)
	vertex.Complete(err)
	return err
}

// Run builds the named target at path and then runs it.
func (a *App) Run(ctx context.Context, path, name string, flags domain.Flags, ov Overrides) (domain.Result, error) {
	s, err := a.Open(ctx, path, ov)
	if err != nil {
		return domain.Result{}, err
	}
	defer a.close(s)

	t, ok := s.Builder.Target(name)
	if !ok {
		return domain.Result{}, zerr.With(zerr.Wrap(domain.ErrTargetNotFound, "lookup"), "target", name)
	}

	if err := a.build(ctx, s.Builder, t, flags); err != nil {
		return domain.Result{}, err
	}
	a.warnIfChanged(s)

	vctx, vertex := a.telemetry.Record(ctx, "run "+t.String())
	res, err := s.Builder.Run(vctx, t)
	vertex.Complete(err)
	return res, err
}

// ToolInfo describes the tool behind a project.
type ToolInfo struct {
	Backend   domain.Backend
	Project   domain.Project
	Available bool
	// Version is nil when the tool does not report one.
	Version *semver.Version
	// Fingerprint digests the files the targets were discovered from.
	Fingerprint string
}

// Tool reports whether the tool behind the project at path is available and
// which version it is.
func (a *App) Tool(ctx context.Context, path string, ov Overrides) (ToolInfo, error) {
	s, err := a.Open(ctx, path, ov)
	if err != nil {
		return ToolInfo{}, err
	}
	defer a.close(s)

	info := ToolInfo{
		Backend:     s.Builder.Backend(),
		Project:     s.Builder.Project(),
		Available:   s.Builder.Available(ctx),
		Fingerprint: s.Fingerprint,
	}
	if v, err := s.Builder.Version(ctx); err == nil {
		info.Version = v
	} else {
		a.log.Debug("version unavailable: " + err.Error())
	}
	return info, nil
}
