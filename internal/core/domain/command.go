package domain

import "io"

// Command is a subprocess invocation.
type Command struct {
	// Args is the argument vector; Args[0] is the executable.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env overlays the parent environment for the child only.
	Env map[string]string
	// Tee, if set, receives the normalized output lines as they are produced.
	Tee io.Writer
}

// Result is the outcome of a subprocess invocation.
type Result struct {
	// Lines is the combined stdout/stderr output, one entry per line.
	Lines []string
	// ExitCode is the process exit status, -1 if it never ran.
	ExitCode int
}

// OK reports whether the process exited with status zero.
func (r Result) OK() bool {
	return r.ExitCode == 0
}
