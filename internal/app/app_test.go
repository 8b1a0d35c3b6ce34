package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/assembly/internal/adapters/telemetry"
	"go.trai.ch/assembly/internal/app"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/assembly/internal/core/ports/mocks"
	"go.trai.ch/assembly/internal/engine/toolchain"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	loader   *mocks.MockConfigLoader
	executor *mocks.MockExecutor
	logger   *mocks.MockLogger
	hasher   *mocks.MockHasher
	builder  *mocks.MockBuilder

	dir  string
	file string
	opts []toolchain.Option
}

// newFixture creates a project directory holding a Makefile and an App whose
// make adapter is replaced by a mock builder.
func newFixture(t *testing.T) (*fixture, *app.App) {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		loader:   mocks.NewMockConfigLoader(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		hasher:   mocks.NewMockHasher(ctrl),
		builder:  mocks.NewMockBuilder(ctrl),
		dir:      t.TempDir(),
	}
	f.file = filepath.Join(f.dir, "Makefile")
	require.NoError(t, os.WriteFile(f.file, []byte("all:\n\techo all\n"), 0o600))
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	a := app.New(f.loader, f.executor, f.logger, f.hasher, telemetry.NewNoOp()).
		WithFactory(domain.BackendMake, func(_ context.Context, path string, exec ports.Executor, _ ports.Logger, opts ...toolchain.Option) (ports.Builder, error) {
			assert.Equal(t, f.file, path)
			assert.Same(t, f.executor, exec)
			f.opts = opts
			return f.builder, nil
		})
	return f, a
}

func (f *fixture) expectOpen() {
	f.loader.EXPECT().Load(f.dir).Return(domain.Settings{Threads: 1}, nil)
	f.hasher.EXPECT().HashFiles([]string{f.file}).Return("0123456789abcdef", nil)
}

// expectUnchanged expects the fingerprint to be taken again after a build.
func (f *fixture) expectUnchanged() {
	f.hasher.EXPECT().HashFiles([]string{f.file}).Return("0123456789abcdef", nil)
}

// closingBuilder adds the optional Sources and Close methods to a mock.
type closingBuilder struct {
	*mocks.MockBuilder
	sources []string
	closed  int
}

func (b *closingBuilder) Sources() []string { return b.sources }

func (b *closingBuilder) Close() error {
	b.closed++
	return nil
}

func TestOpen_NoBackend(t *testing.T) {
	_, a := newFixture(t)

	_, err := a.Open(context.Background(), t.TempDir(), app.Overrides{})
	require.ErrorIs(t, err, domain.ErrNoBackend)
}

func TestOpen_AppliesOverrides(t *testing.T) {
	f, a := newFixture(t)
	f.loader.EXPECT().Load(f.dir).Return(domain.Settings{
		Threads:  2,
		Commands: map[domain.Backend]string{domain.BackendMake: "gmake"},
	}, nil)
	f.hasher.EXPECT().HashFiles([]string{f.file}).Return("aaaa", nil)

	s, err := a.Open(context.Background(), f.dir, app.Overrides{Command: "remake", BuildDir: "out"})
	require.NoError(t, err)
	assert.Equal(t, "aaaa", s.Fingerprint)

	opts, err := toolchain.Apply(domain.BackendMake, f.opts...)
	require.NoError(t, err)
	assert.Equal(t, "remake", opts.Command)
	assert.Equal(t, 2, opts.Threads)
	assert.Equal(t, "out", opts.BuildDir)
}

func TestOpen_ConfigPathAndErrors(t *testing.T) {
	t.Run("explicit config", func(t *testing.T) {
		f, a := newFixture(t)
		f.loader.EXPECT().Load("/etc/assembly.yaml").Return(domain.Settings{}, nil)
		f.hasher.EXPECT().HashFiles([]string{f.file}).Return("aaaa", nil)

		_, err := a.Open(context.Background(), f.file, app.Overrides{Config: "/etc/assembly.yaml", Threads: 3})
		require.NoError(t, err)

		opts, err := toolchain.Apply(domain.BackendMake, f.opts...)
		require.NoError(t, err)
		assert.Equal(t, 3, opts.Threads)
		assert.Equal(t, "make", opts.Command)
	})

	t.Run("config error", func(t *testing.T) {
		f, a := newFixture(t)
		f.loader.EXPECT().Load(f.dir).Return(domain.Settings{}, domain.ErrConfigParseFailed)

		_, err := a.Open(context.Background(), f.dir, app.Overrides{})
		require.ErrorIs(t, err, domain.ErrConfigParseFailed)
	})

	t.Run("factory error", func(t *testing.T) {
		f, a := newFixture(t)
		f.loader.EXPECT().Load(f.dir).Return(domain.Settings{}, nil)
		a.WithFactory(domain.BackendMake, func(context.Context, string, ports.Executor, ports.Logger, ...toolchain.Option) (ports.Builder, error) {
			return nil, domain.ErrDiscoveryFailed
		})

		_, err := a.Open(context.Background(), f.dir, app.Overrides{})
		require.ErrorIs(t, err, domain.ErrDiscoveryFailed)
	})
}

func TestSession_Stale(t *testing.T) {
	f, a := newFixture(t)
	f.expectOpen()

	s, err := a.Open(context.Background(), f.dir, app.Overrides{})
	require.NoError(t, err)

	f.hasher.EXPECT().HashFiles([]string{f.file}).Return("0123456789abcdef", nil)
	stale, err := s.Stale()
	require.NoError(t, err)
	assert.False(t, stale)

	f.hasher.EXPECT().HashFiles([]string{f.file}).Return("fedcba9876543210", nil)
	stale, err = s.Stale()
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestOpen_FingerprintsDiscoverySources(t *testing.T) {
	f, a := newFixture(t)
	rules := filepath.Join(f.dir, "rules.mk")
	b := &closingBuilder{MockBuilder: f.builder, sources: []string{f.file, rules}}
	a.WithFactory(domain.BackendMake, func(context.Context, string, ports.Executor, ports.Logger, ...toolchain.Option) (ports.Builder, error) {
		return b, nil
	})

	f.loader.EXPECT().Load(f.dir).Return(domain.Settings{}, nil)
	f.hasher.EXPECT().HashFiles([]string{f.file, rules}).Return("bbbb", nil)
	f.builder.EXPECT().Targets().Return(nil)

	_, err := a.List(context.Background(), f.dir, "", app.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 1, b.closed)
}

func TestOpen_FingerprintFailureCloses(t *testing.T) {
	f, a := newFixture(t)
	b := &closingBuilder{MockBuilder: f.builder, sources: []string{f.file}}
	a.WithFactory(domain.BackendMake, func(context.Context, string, ports.Executor, ports.Logger, ...toolchain.Option) (ports.Builder, error) {
		return b, nil
	})

	f.loader.EXPECT().Load(f.dir).Return(domain.Settings{}, nil)
	f.hasher.EXPECT().HashFiles([]string{f.file}).Return("", domain.ErrFingerprintFailed)

	_, err := a.Open(context.Background(), f.dir, app.Overrides{})
	require.ErrorIs(t, err, domain.ErrFingerprintFailed)
	assert.Equal(t, 1, b.closed)
}

func TestList(t *testing.T) {
	targets := []*domain.Target{
		domain.NewTarget(domain.BackendMake, "simple", "", nil),
		domain.NewTarget(domain.BackendMake, "hello", "", nil),
		domain.NewTarget(domain.BackendMake, "install", "", nil),
	}

	tests := []struct {
		pattern string
		want    []string
	}{
		{"", []string{"simple", "hello", "install"}},
		{"h*", []string{"hello"}},
		{"{simple,install}", []string{"simple", "install"}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			f, a := newFixture(t)
			f.expectOpen()
			f.builder.EXPECT().Targets().Return(targets)

			got, err := a.List(context.Background(), f.dir, tt.pattern, app.Overrides{})
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, target := range got {
				names = append(names, target.Name)
			}
			if tt.want == nil {
				assert.Empty(t, names)
				return
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestList_InvalidPattern(t *testing.T) {
	f, a := newFixture(t)
	f.expectOpen()
	f.builder.EXPECT().Targets().Return(nil)

	_, err := a.List(context.Background(), f.dir, "[", app.Overrides{})
	require.Error(t, err)
}

func TestBuild_ContinuesPastFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	f, a := newFixture(t)
	f.expectOpen()

	rec := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)
	a = app.New(f.loader, f.executor, f.logger, f.hasher, rec).
		WithFactory(domain.BackendMake, func(context.Context, string, ports.Executor, ports.Logger, ...toolchain.Option) (ports.Builder, error) {
			return f.builder, nil
		})

	first := domain.NewTarget(domain.BackendMake, "first", "", nil)
	second := domain.NewTarget(domain.BackendMake, "second", "", nil)
	f.builder.EXPECT().Target("first").Return(first, true)
	f.builder.EXPECT().Target("missing").Return(nil, false)
	f.builder.EXPECT().Target("second").Return(second, true)

	boom := errors.Join(domain.ErrBuildFailed, errors.New("exit 2"))
	gomock.InOrder(
		rec.EXPECT().Record(gomock.Any(), "build first").Return(context.Background(), vertex),
		f.builder.EXPECT().Build(gomock.Any(), first, domain.Flags{Add: "-g"}).Return(domain.Result{ExitCode: 2}, boom),
		vertex.EXPECT().Complete(boom),
		rec.EXPECT().Record(gomock.Any(), "build second").Return(context.Background(), vertex),
		f.builder.EXPECT().Build(gomock.Any(), second, domain.Flags{Add: "-g"}).Return(domain.Result{}, nil),
		vertex.EXPECT().Complete(nil),
		f.logger.EXPECT().Info("built second"),
	)
	f.expectUnchanged()

	err := a.Build(context.Background(), f.dir, []string{"first", "missing", "second"}, domain.Flags{Add: "-g"}, app.Overrides{})
	require.ErrorIs(t, err, domain.ErrBuildFailed)
	require.ErrorIs(t, err, domain.ErrTargetNotFound)
}

func TestApp_Telemetry(t *testing.T) {
	rec := telemetry.NewNoOp()
	a := app.New(nil, nil, nil, nil, rec)
	assert.Same(t, rec, a.Telemetry())
}

func TestBuild_DefaultTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	executor := mocks.NewMockExecutor(ctrl)
	log := mocks.NewMockLogger(ctrl)
	hasher := mocks.NewMockHasher(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	dir := t.TempDir()
	file := filepath.Join(dir, "Makefile")
	require.NoError(t, os.WriteFile(file, []byte("all: hello\n\techo all\n\nhello:\n\techo hello\n"), 0o600))

	loader.EXPECT().Load(dir).Return(domain.Settings{}, nil)
	hasher.EXPECT().HashFiles([]string{file}).Return("aaaa", nil).Times(2)

	var built [][]string
	executor.EXPECT().Run(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
		func(_ context.Context, cmd domain.Command) (domain.Result, error) {
			built = append(built, cmd.Args)
			return domain.Result{}, nil
		})
	log.EXPECT().Info("built all")

	a := app.New(loader, executor, log, hasher, telemetry.NewNoOp())
	require.NoError(t, a.Build(context.Background(), dir, nil, domain.Flags{}, app.Overrides{}))
	require.Len(t, built, 2)
	assert.Equal(t, "clean", built[0][len(built[0])-1])
	assert.Equal(t, "all", built[1][1])
}

func TestBuild_AllTargetsWithoutDefault(t *testing.T) {
	f, a := newFixture(t)
	f.expectOpen()

	only := domain.NewTarget(domain.BackendMake, "only", "", nil)
	f.builder.EXPECT().Targets().Return([]*domain.Target{only})
	f.builder.EXPECT().Build(gomock.Any(), only, domain.Flags{}).Return(domain.Result{}, nil)
	f.logger.EXPECT().Info("built only")
	f.expectUnchanged()

	require.NoError(t, a.Build(context.Background(), f.dir, nil, domain.Flags{}, app.Overrides{}))
}

func TestBuild_WarnsWhenProjectChanged(t *testing.T) {
	f, a := newFixture(t)
	f.expectOpen()

	only := domain.NewTarget(domain.BackendMake, "only", "", nil)
	f.builder.EXPECT().Target("only").Return(only, true)
	f.builder.EXPECT().Build(gomock.Any(), only, domain.Flags{}).Return(domain.Result{}, nil)
	f.logger.EXPECT().Info("built only")
	f.hasher.EXPECT().HashFiles([]string{f.file}).Return("fedcba9876543210", nil)
	f.logger.EXPECT().Warn("project changed since its targets were discovered: " + f.file)

	require.NoError(t, a.Build(context.Background(), f.dir, []string{"only"}, domain.Flags{}, app.Overrides{}))
}

func TestBuild_NothingBuiltSkipsFingerprint(t *testing.T) {
	f, a := newFixture(t)
	f.expectOpen()
	f.builder.EXPECT().Target("missing").Return(nil, false)

	err := a.Build(context.Background(), f.dir, []string{"missing"}, domain.Flags{}, app.Overrides{})
	require.ErrorIs(t, err, domain.ErrTargetNotFound)
}

func TestRun_BuildsThenRuns(t *testing.T) {
	f, a := newFixture(t)
	f.expectOpen()

	target := domain.NewTarget(domain.BackendMake, "simple", "", nil)
	f.builder.EXPECT().Target("simple").Return(target, true)
	gomock.InOrder(
		f.builder.EXPECT().Build(gomock.Any(), target, domain.Flags{Replace: "-O0"}).Return(domain.Result{}, nil),
		f.hasher.EXPECT().HashFiles([]string{f.file}).Return("0123456789abcdef", nil),
		f.builder.EXPECT().Run(gomock.Any(), target).Return(domain.Result{Lines: []string{"hello from simple"}}, nil),
	)

	res, err := a.Run(context.Background(), f.dir, "simple", domain.Flags{Replace: "-O0"}, app.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello from simple"}, res.Lines)
}

func TestRun_Failures(t *testing.T) {
	t.Run("unknown target", func(t *testing.T) {
		f, a := newFixture(t)
		f.expectOpen()
		f.builder.EXPECT().Target("nope").Return(nil, false)

		_, err := a.Run(context.Background(), f.dir, "nope", domain.Flags{}, app.Overrides{})
		require.ErrorIs(t, err, domain.ErrTargetNotFound)
	})

	t.Run("build failure skips run", func(t *testing.T) {
		f, a := newFixture(t)
		f.expectOpen()
		target := domain.NewTarget(domain.BackendMake, "simple", "", nil)
		f.builder.EXPECT().Target("simple").Return(target, true)
		f.builder.EXPECT().Build(gomock.Any(), target, domain.Flags{}).Return(domain.Result{}, domain.ErrBuildFailed)

		_, err := a.Run(context.Background(), f.dir, "simple", domain.Flags{}, app.Overrides{})
		require.ErrorIs(t, err, domain.ErrBuildFailed)
	})
}

func TestTool(t *testing.T) {
	f, a := newFixture(t)
	f.expectOpen()

	project := domain.Project{Backend: domain.BackendMake, File: f.file, Dir: f.dir}
	f.builder.EXPECT().Backend().Return(domain.BackendMake)
	f.builder.EXPECT().Project().Return(project)
	f.builder.EXPECT().Available(gomock.Any()).Return(true)
	f.builder.EXPECT().Version(gomock.Any()).Return(semver.MustParse("4.4.1"), nil)

	info, err := a.Tool(context.Background(), f.dir, app.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, domain.BackendMake, info.Backend)
	assert.Equal(t, project, info.Project)
	assert.True(t, info.Available)
	assert.Equal(t, "4.4.1", info.Version.String())
	assert.Equal(t, "0123456789abcdef", info.Fingerprint)
}

func TestTool_NoVersion(t *testing.T) {
	f, a := newFixture(t)
	f.expectOpen()

	f.builder.EXPECT().Backend().Return(domain.BackendMake)
	f.builder.EXPECT().Project().Return(domain.Project{})
	f.builder.EXPECT().Available(gomock.Any()).Return(false)
	f.builder.EXPECT().Version(gomock.Any()).Return(nil, domain.ErrToolUnavailable)

	info, err := a.Tool(context.Background(), f.dir, app.Overrides{})
	require.NoError(t, err)
	assert.False(t, info.Available)
	assert.Nil(t, info.Version)
}
