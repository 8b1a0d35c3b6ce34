// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/assembly/internal/core/domain"
)

// Executor defines the interface for invoking external commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Run spawns cmd, waits for it and captures its combined output.
	//
	// The returned Result always carries the captured lines. The error is
	// non-nil when the command could not be started or exited non-zero.
	Run(ctx context.Context, cmd domain.Command) (domain.Result, error)
}
