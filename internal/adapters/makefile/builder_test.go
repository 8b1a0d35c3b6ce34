package makefile_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/assembly/internal/adapters/logger"
	"go.trai.ch/assembly/internal/adapters/makefile"
	"go.trai.ch/assembly/internal/adapters/shell"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports/mocks"
	"go.trai.ch/assembly/internal/engine/toolchain"
	"go.uber.org/mock/gomock"
)

// copyFixture copies testdata/simple into a fresh directory so builds do not
// touch the source tree.
func copyFixture(t *testing.T) string {
	t.Helper()
	dst := t.TempDir()
	entries, err := os.ReadDir("testdata/simple")
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join("testdata/simple", e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dst, e.Name()), data, 0o600))
	}
	return dst
}

func TestNew_Targets(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := copyFixture(t)

	b, err := makefile.New(context.Background(), filepath.Join(dir, "Makefile"),
		mocks.NewMockExecutor(ctrl), mocks.NewMockLogger(ctrl))
	require.NoError(t, err)

	assert.Equal(t, domain.BackendMake, b.Backend())
	assert.Len(t, b.Targets(), 5)
	assert.True(t, b.IsValidTarget("simple"))
	assert.False(t, b.IsValidTarget("simple.o"))

	simple, ok := b.Target("simple")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "simple"), simple.OutputPath)
	assert.False(t, simple.Built())

	def, ok := b.DefaultTarget()
	require.True(t, ok)
	assert.Equal(t, "all", def.Name)
}

func TestNew_DirectoryEqualsFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := copyFixture(t)

	fromDir, err := makefile.New(context.Background(), dir, mocks.NewMockExecutor(ctrl), mocks.NewMockLogger(ctrl))
	require.NoError(t, err)
	fromFile, err := makefile.New(context.Background(), filepath.Join(dir, "Makefile"), mocks.NewMockExecutor(ctrl), mocks.NewMockLogger(ctrl))
	require.NoError(t, err)

	names := func(b *makefile.Builder) []string { return b.Catalog().Names() }
	assert.Equal(t, names(fromFile), names(fromDir))
}

func TestNew_MissingMakefile(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	exec.EXPECT().
		Run(gomock.Any(), domain.Command{Args: []string{"make", "--version"}}).
		Return(domain.Result{Lines: []string{"GNU Make 4.3"}}, nil)

	_, err := makefile.New(context.Background(), filepath.Join(t.TempDir(), "Makefile"), exec, mocks.NewMockLogger(ctrl))
	require.ErrorIs(t, err, domain.ErrProjectFileNotFound)

	// The tool itself is still usable on its own.
	assert.True(t, toolchain.NewTool("make", exec).Available(context.Background()))
}

func TestNew_InvalidThreads(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := makefile.New(context.Background(), copyFixture(t),
		mocks.NewMockExecutor(ctrl), mocks.NewMockLogger(ctrl), toolchain.WithThreads(-1))
	require.ErrorIs(t, err, domain.ErrInvalidThreads)
}

func TestBuild_Commands(t *testing.T) {
	t.Setenv("CFLAGS", "-O2")
	t.Setenv("CXXFLAGS", "-O2")

	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	dir := copyFixture(t)
	file := filepath.Join(dir, "Makefile")
	b, err := makefile.New(context.Background(), file, exec, log,
		toolchain.WithCommand("gmake"), toolchain.WithThreads(4))
	require.NoError(t, err)
	simple, _ := b.Target("simple")

	gomock.InOrder(
		exec.EXPECT().Run(gomock.Any(), domain.Command{
			Args: []string{"gmake", "-f", file, "-C", dir, "clean"},
			Dir:  dir,
		}).Return(domain.Result{ExitCode: 2}, domain.ErrCommandFailed),
		log.EXPECT().Error(gomock.Any()),
		log.EXPECT().Warn(gomock.Any()),
		exec.EXPECT().Run(gomock.Any(), domain.Command{
			Args: []string{"gmake", "simple", "-j4", "-f", file, "-C", dir},
			Dir:  dir,
			Env:  map[string]string{"CFLAGS": "-O2 -O3", "CXXFLAGS": "-O2 -O3"},
		}).Return(domain.Result{Lines: []string{"cc -O2 -O3 -o simple simple.c"}}, nil),
	)

	res, err := b.Build(context.Background(), simple, domain.Flags{Add: "-O3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cc -O2 -O3 -o simple simple.c"}, res.Lines)
	assert.True(t, simple.Built())

	exec.EXPECT().Run(gomock.Any(), domain.Command{
		Args: []string{filepath.Join(dir, "simple")},
		Dir:  dir,
	}).Return(domain.Result{Lines: []string{"hello from simple"}}, nil)

	res, err = b.Run(context.Background(), simple)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello from simple"}, res.Lines)
}

func TestBuild_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	b, err := makefile.New(context.Background(), copyFixture(t), exec, log)
	require.NoError(t, err)
	simple, _ := b.Target("simple")

	exec.EXPECT().Run(gomock.Any(), gomock.Any()).Return(domain.Result{}, nil)
	exec.EXPECT().Run(gomock.Any(), gomock.Any()).
		Return(domain.Result{Lines: []string{"simple.c:1: error"}, ExitCode: 2}, domain.ErrCommandFailed)

	res, err := b.Build(context.Background(), simple, domain.Flags{})
	require.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.Equal(t, 2, res.ExitCode)
	assert.False(t, simple.Built())
}

func TestRun_Preconditions(t *testing.T) {
	ctrl := gomock.NewController(t)
	b, err := makefile.New(context.Background(), copyFixture(t), mocks.NewMockExecutor(ctrl), mocks.NewMockLogger(ctrl))
	require.NoError(t, err)

	simple, _ := b.Target("simple")
	assert.Panics(t, func() { _, _ = b.Run(context.Background(), simple) })

	foreign := domain.NewTarget(domain.BackendMake, "simple", "/elsewhere/simple", nil)
	_, err = b.Run(context.Background(), foreign)
	require.ErrorIs(t, err, domain.ErrForeignTarget)
	_, err = b.Build(context.Background(), foreign, domain.Flags{})
	require.ErrorIs(t, err, domain.ErrForeignTarget)
}

func TestIntegration_BuildAndRun(t *testing.T) {
	for _, tool := range []string{"make", "cc"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not found in PATH", tool)
		}
	}

	log := logger.New()
	ctx := context.Background()
	b, err := makefile.New(ctx, copyFixture(t), shell.NewExecutor(log), log)
	require.NoError(t, err)

	require.True(t, b.Available(ctx))
	v, err := b.Version(ctx)
	require.NoError(t, err)
	assert.NotNil(t, v)

	simple, ok := b.Target("simple")
	require.True(t, ok)

	_, err = b.Build(ctx, simple, domain.Flags{})
	require.NoError(t, err)
	_, err = b.Build(ctx, simple, domain.Flags{Add: "-O3"})
	require.NoError(t, err)

	res, err := b.Run(ctx, simple)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello from simple"}, res.Lines)
}
