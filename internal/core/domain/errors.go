package domain

import "go.trai.ch/zerr"

var (
	// ErrNoBackend is returned when no known project description is found at a path.
	ErrNoBackend = zerr.New("no build backend found")

	// ErrProjectFileNotFound is returned when a backend's project description file does not exist.
	ErrProjectFileNotFound = zerr.New("project file not found")

	// ErrDiscoveryFailed is returned when target discovery fails during builder construction.
	ErrDiscoveryFailed = zerr.New("target discovery failed")

	// ErrParseFailed is returned when a project description cannot be parsed.
	ErrParseFailed = zerr.New("failed to parse project file")

	// ErrToolUnavailable is returned when the underlying tool executable cannot be invoked.
	ErrToolUnavailable = zerr.New("build tool not available")

	// ErrVersionUnavailable is returned when a tool version cannot be determined.
	ErrVersionUnavailable = zerr.New("tool version unavailable")

	// ErrBuildFailed is returned when the underlying tool fails to build a target.
	ErrBuildFailed = zerr.New("build failed")

	// ErrRunFailed is returned when a built target exits unsuccessfully.
	ErrRunFailed = zerr.New("run failed")

	// ErrRunUnsupported is returned by backends whose targets cannot be executed.
	ErrRunUnsupported = zerr.New("run is not supported by this backend")

	// ErrTargetNotFound is returned when a requested target name is unknown to a builder.
	ErrTargetNotFound = zerr.New("target not found")

	// ErrForeignTarget is returned when a target is passed to a builder that does not own it.
	ErrForeignTarget = zerr.New("target belongs to a different builder")

	// ErrDuplicateTarget is returned when two discovered targets share a name.
	ErrDuplicateTarget = zerr.New("duplicate target name")

	// ErrEmptyCommand is returned when a command with no arguments is executed.
	ErrEmptyCommand = zerr.New("empty command")

	// ErrCommandFailed is returned when a subprocess exits with a non-zero status.
	ErrCommandFailed = zerr.New("command failed")

	// ErrCommandNotStarted is returned when a subprocess cannot be started.
	ErrCommandNotStarted = zerr.New("command could not be started")

	// ErrInvalidThreads is returned when a non-positive thread count is configured.
	ErrInvalidThreads = zerr.New("thread count must be at least 1")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrFingerprintFailed is returned when a project file cannot be fingerprinted.
	ErrFingerprintFailed = zerr.New("failed to fingerprint project file")
)
