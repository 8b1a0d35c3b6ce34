package ports

import (
	"context"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/assembly/internal/core/domain"
)

// Builder is the capability every native build tool adapter provides.
//
// Targets are discovered once when the Builder is constructed. A constructed
// Builder never carries a discovery error; construction fails instead.
//
//go:generate mockgen -source=builder.go -destination=mocks/mock_builder.go -package=mocks
type Builder interface {
	// Backend identifies the wrapped tool.
	Backend() domain.Backend
	// Project describes the project file the Builder was constructed from.
	Project() domain.Project

	// Available reports whether the tool's version check exits zero.
	Available(ctx context.Context) bool
	// Version returns the version of the wrapped tool.
	Version(ctx context.Context) (*semver.Version, error)

	// Targets returns the discovered targets in discovery order.
	Targets() []*domain.Target
	// Target looks a target up by name.
	Target(name string) (*domain.Target, bool)
	// IsValidTarget reports whether name is a discovered target.
	IsValidTarget(name string) bool

	// Build builds t, injecting flags in the backend specific way. On success
	// t is marked built. The Result carries the tool's output either way.
	Build(ctx context.Context, t *domain.Target, flags domain.Flags) (domain.Result, error)
	// Run executes a built target. Calling Run on an unbuilt target panics.
	Run(ctx context.Context, t *domain.Target) (domain.Result, error)
}
