// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/assembly/internal/adapters/config"
	_ "go.trai.ch/assembly/internal/adapters/fs"
	_ "go.trai.ch/assembly/internal/adapters/logger"
	_ "go.trai.ch/assembly/internal/adapters/shell"
	_ "go.trai.ch/assembly/internal/adapters/telemetry/progrock"
	// Register app nodes.
	_ "go.trai.ch/assembly/internal/app"
)
