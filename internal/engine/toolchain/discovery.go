package toolchain

import (
	"context"
	"slices"

	"go.trai.ch/assembly/internal/core/domain"
)

// Discovery is the outcome of scanning a project description.
type Discovery struct {
	Targets []*domain.Target
	// Default names the target the tool builds when none is given, if known.
	Default string
	// Sources lists the files the targets were read from. Empty means the
	// project file alone.
	Sources []string
}

// Discoverer turns a project description into targets. Builders ship a
// lexical or query based default; a grammar based implementation can be
// swapped in through WithDiscoverer.
type Discoverer interface {
	Discover(ctx context.Context, project domain.Project) (Discovery, error)
}

// DiscoverFunc adapts a function to Discoverer.
type DiscoverFunc func(ctx context.Context, project domain.Project) (Discovery, error)

// Discover calls f.
func (f DiscoverFunc) Discover(ctx context.Context, project domain.Project) (Discovery, error) {
	return f(ctx, project)
}

// Populate runs d once and fills the catalog. Any failure is reported as a
// discovery failure of the project.
func (b *Base) Populate(ctx context.Context, d Discoverer) error {
	if b.opts.Discoverer != nil {
		d = b.opts.Discoverer
	}

	found, err := d.Discover(ctx, b.project)
	if err != nil {
		return b.DiscoveryFailed(err)
	}
	for _, t := range found.Targets {
		if err := b.catalog.Add(t); err != nil {
			return b.DiscoveryFailed(err)
		}
	}
	b.defaultTarget = found.Default
	b.sources = found.Sources
	if len(b.sources) == 0 {
		b.sources = []string{b.project.File}
	}
	return nil
}

// Sources returns the files the targets were discovered from.
func (b *Base) Sources() []string {
	return slices.Clone(b.sources)
}

// DefaultTarget returns the target the tool builds by default, if known.
func (b *Base) DefaultTarget() (*domain.Target, bool) {
	if b.defaultTarget == "" {
		return nil, false
	}
	return b.catalog.Lookup(b.defaultTarget)
}
