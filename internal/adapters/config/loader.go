// Package config provides the settings loader for assembly.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Filename is the conventional name of the settings file.
const Filename = "assembly.yaml"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Filename string
	logger   ports.Logger
}

// NewLoader creates a Loader looking for assembly.yaml.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{
		Filename: Filename,
		logger:   log,
	}
}

// Defaults returns the settings used when no file is present.
func Defaults() domain.Settings {
	return domain.Settings{
		Commands: map[domain.Backend]string{},
		Threads:  1,
	}
}

// Load reads the settings for path. A directory is searched for the settings
// file; a regular file is read directly. A missing file yields Defaults.
func (l *Loader) Load(path string) (domain.Settings, error) {
	file := path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		file = filepath.Join(path, l.Filename)
	}

	data, err := os.ReadFile(file) //nolint:gosec // path is provided by user
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("no " + l.Filename + " found, using defaults")
		return Defaults(), nil
	}
	if err != nil {
		return domain.Settings{}, errors.Join(domain.ErrConfigReadFailed, zerr.With(zerr.Wrap(err, "read"), "path", file))
	}

	return Parse(data)
}

// Parse decodes and validates settings from YAML.
func Parse(data []byte) (domain.Settings, error) {
	var f Assemblyfile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Settings{}, errors.Join(domain.ErrConfigParseFailed, zerr.Wrap(err, "yaml"))
	}

	s := Defaults()

	switch {
	case f.Threads < 0:
		return domain.Settings{}, zerr.With(zerr.Wrap(domain.ErrInvalidThreads, "invalid threads"), "threads", f.Threads)
	case f.Threads > 0:
		s.Threads = f.Threads
	}

	known := make(map[string]domain.Backend)
	for _, b := range domain.Backends() {
		known[b.String()] = b
	}
	for name, cmd := range f.Tools {
		b, ok := known[strings.ToLower(name)]
		if !ok {
			return domain.Settings{}, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "unknown tool"), "tool", name)
		}
		s.Commands[b] = cmd
	}

	s.BuildDir = f.BuildDir
	s.JSONLogs = f.JSONLogs
	s.BazelLanguages = f.Bazel.Languages
	s.BazelRules = f.Bazel.Rules

	return s, nil
}
