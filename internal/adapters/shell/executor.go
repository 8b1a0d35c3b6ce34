// Package shell provides the process-invocation helper used by every builder.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Run executes cmd and blocks until it exits.
//
// The child inherits the parent environment with cmd.Env layered on top; the
// parent environment itself is never modified. Stdout and stderr are captured
// together, one normalized entry per line.
func (e *Executor) Run(ctx context.Context, cmd domain.Command) (domain.Result, error) {
	if len(cmd.Args) == 0 {
		return domain.Result{ExitCode: -1}, domain.ErrEmptyCommand
	}

	name := cmd.Args[0]
	env := resolveEnvironment(os.Environ(), cmd.Env)

	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, cmd.Args[1:]...) //nolint:gosec // argv comes from project files
	c.Args[0] = name
	c.Dir = cmd.Dir
	c.Env = env

	out := &lineWriter{tee: cmd.Tee}
	c.Stdout = out
	c.Stderr = out

	e.logger.Debug("exec: " + strings.Join(cmd.Args, " "))

	runErr := c.Run()
	out.Flush()

	res := domain.Result{Lines: out.lines}
	if runErr == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		res.ExitCode = -1
		err := zerr.With(zerr.Wrap(runErr, "failed to start "+name), "dir", cmd.Dir)
		return res, errors.Join(domain.ErrCommandNotStarted, err)
	}

	res.ExitCode = exitErr.ExitCode()
	err := zerr.With(zerr.Wrap(runErr, "command failed"), "exit_code", res.ExitCode)
	err = zerr.With(err, "command", strings.Join(cmd.Args, " "))
	return res, errors.Join(domain.ErrCommandFailed, err)
}

// Normalize strips terminal escape sequences, carriage returns and leading
// whitespace from one line of tool output.
func Normalize(line string) string {
	line = ansi.Strip(line)
	line = strings.ReplaceAll(line, "\r", "")
	return strings.TrimLeft(line, " \t")
}

// lineWriter splits a byte stream into normalized lines.
// exec.Cmd serializes writes when Stdout and Stderr share a writer.
type lineWriter struct {
	tee   io.Writer
	buf   []byte
	lines []string
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

// Flush emits any trailing partial line.
func (w *lineWriter) Flush() {
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *lineWriter) emit(raw []byte) {
	line := Normalize(string(raw))
	w.lines = append(w.lines, line)
	if w.tee != nil {
		_, _ = io.WriteString(w.tee, line+"\n")
	}
}

// resolveEnvironment layers the command overrides on top of the system environment.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	order := make([]string, 0, len(sysEnv)+len(overrides))

	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}

	for k, v := range overrides {
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
