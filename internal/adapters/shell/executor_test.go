package shell_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/assembly/internal/adapters/shell"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newExecutor(t *testing.T) *shell.Executor {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return shell.NewExecutor(log)
}

func TestExecutor_Run_CapturesLines(t *testing.T) {
	executor := newExecutor(t)

	res, err := executor.Run(context.Background(), domain.Command{
		Args: []string{"sh", "-c", "echo line1; echo '   line2'"},
	})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, []string{"line1", "line2"}, res.Lines)
}

func TestExecutor_Run_CombinesStderr(t *testing.T) {
	executor := newExecutor(t)

	res, err := executor.Run(context.Background(), domain.Command{
		Args: []string{"sh", "-c", "echo out; echo err 1>&2"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"out", "err"}, res.Lines)
}

func TestExecutor_Run_FragmentedOutput(t *testing.T) {
	executor := newExecutor(t)

	res, err := executor.Run(context.Background(), domain.Command{
		Args: []string{"sh", "-c", "printf part1; sleep 0.1; printf part2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"part1part2"}, res.Lines)
}

func TestExecutor_Run_NonZeroExit(t *testing.T) {
	executor := newExecutor(t)

	res, err := executor.Run(context.Background(), domain.Command{
		Args: []string{"sh", "-c", "echo boom; exit 3"},
	})
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrCommandFailed)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, []string{"boom"}, res.Lines)
}

func TestExecutor_Run_MissingExecutable(t *testing.T) {
	executor := newExecutor(t)

	res, err := executor.Run(context.Background(), domain.Command{
		Args: []string{"assembly-definitely-not-a-tool"},
	})
	require.ErrorIs(t, err, domain.ErrCommandNotStarted)
	assert.Equal(t, -1, res.ExitCode)
}

func TestExecutor_Run_EmptyCommand(t *testing.T) {
	executor := newExecutor(t)

	_, err := executor.Run(context.Background(), domain.Command{})
	require.ErrorIs(t, err, domain.ErrEmptyCommand)
}

func TestExecutor_Run_EnvironmentOverlay(t *testing.T) {
	t.Setenv("ASSEMBLY_PARENT", "parent")
	executor := newExecutor(t)

	res, err := executor.Run(context.Background(), domain.Command{
		Args: []string{"sh", "-c", "echo $ASSEMBLY_PARENT-$ASSEMBLY_CHILD"},
		Env:  map[string]string{"ASSEMBLY_CHILD": "child"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"parent-child"}, res.Lines)

	_, set := os.LookupEnv("ASSEMBLY_CHILD")
	assert.False(t, set, "parent environment must not be mutated")
}

func TestExecutor_Run_WorkingDirAndTee(t *testing.T) {
	executor := newExecutor(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("hi\n"), 0o600))

	var tee bytes.Buffer
	res, err := executor.Run(context.Background(), domain.Command{
		Args: []string{"cat", "marker.txt"},
		Dir:  dir,
		Tee:  &tee,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hi"}, res.Lines)
	assert.Equal(t, "hi\n", tee.String())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"leading whitespace", "  \thello ", "hello "},
		{"carriage return", "progress\r", "progress"},
		{"ansi color", "\x1b[31mred\x1b[0m", "red"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shell.Normalize(tt.in))
		})
	}
}
