package toolchain

import (
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/zerr"
)

// Options configures builder construction.
type Options struct {
	Command   string
	Threads   int
	BuildDir  string
	Languages []string
	Rules     []string

	// Discoverer replaces the builder's own target discovery when set.
	Discoverer Discoverer
}

// Option mutates Options.
type Option func(*Options)

// WithCommand overrides the tool executable.
func WithCommand(cmd string) Option {
	return func(o *Options) {
		o.Command = cmd
	}
}

// WithThreads sets the parallelism passed to tools that accept it.
func WithThreads(n int) Option {
	return func(o *Options) {
		o.Threads = n
	}
}

// WithBuildDir sets the out-of-source build tree.
func WithBuildDir(dir string) Option {
	return func(o *Options) {
		o.BuildDir = dir
	}
}

// WithRuleFilter restricts which rule languages and kinds are scanned.
// Empty slices mean no restriction.
func WithRuleFilter(languages, rules []string) Option {
	return func(o *Options) {
		o.Languages = languages
		o.Rules = rules
	}
}

// WithDiscoverer replaces the builder's target discovery.
func WithDiscoverer(d Discoverer) Option {
	return func(o *Options) {
		o.Discoverer = d
	}
}

// FromSettings converts user settings into options for backend b.
func FromSettings(s domain.Settings, b domain.Backend) []Option {
	opts := []Option{WithCommand(s.Command(b))}
	if s.Threads != 0 {
		opts = append(opts, WithThreads(s.Threads))
	}
	if s.BuildDir != "" {
		opts = append(opts, WithBuildDir(s.BuildDir))
	}
	if len(s.BazelLanguages) > 0 || len(s.BazelRules) > 0 {
		opts = append(opts, WithRuleFilter(s.BazelLanguages, s.BazelRules))
	}
	return opts
}

// Apply resolves opts over the defaults for backend b.
func Apply(b domain.Backend, opts ...Option) (Options, error) {
	o := Options{
		Command: b.DefaultCommand(),
		Threads: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.Command == "" {
		o.Command = b.DefaultCommand()
	}
	if o.Threads < 1 {
		return o, zerr.With(zerr.Wrap(domain.ErrInvalidThreads, "options"), "threads", o.Threads)
	}
	return o, nil
}
