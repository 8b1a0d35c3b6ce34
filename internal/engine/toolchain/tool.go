// Package toolchain holds the behaviour shared by every builder: the wrapped
// tool executable, the target catalog, construction options and flag
// injection.
package toolchain

import (
	"context"
	"errors"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/zerr"
)

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// Tool is an external build tool invoked through an Executor.
type Tool struct {
	Command string
	exec    ports.Executor
}

// NewTool creates a Tool for the given executable.
func NewTool(command string, exec ports.Executor) *Tool {
	return &Tool{Command: command, exec: exec}
}

// Available reports whether `<command> --version` exits zero.
func (t *Tool) Available(ctx context.Context) bool {
	_, err := t.exec.Run(ctx, domain.Command{Args: []string{t.Command, "--version"}})
	return err == nil
}

// Version parses the first dotted number printed by `<command> --version`.
func (t *Tool) Version(ctx context.Context) (*semver.Version, error) {
	res, err := t.exec.Run(ctx, domain.Command{Args: []string{t.Command, "--version"}})
	if err != nil {
		return nil, errors.Join(domain.ErrToolUnavailable, zerr.With(zerr.Wrap(err, "version check"), "tool", t.Command))
	}
	return ParseVersion(res.Lines)
}

// ParseVersion extracts a version from the first line of output that carries one.
func ParseVersion(lines []string) (*semver.Version, error) {
	for _, line := range lines {
		raw := versionPattern.FindString(line)
		if raw == "" {
			continue
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, errors.Join(domain.ErrVersionUnavailable, zerr.With(zerr.Wrap(err, "parse version"), "raw", raw))
		}
		return v, nil
	}
	return nil, domain.ErrVersionUnavailable
}
