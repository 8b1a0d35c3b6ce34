package ports

import "go.trai.ch/assembly/internal/core/domain"

// ConfigLoader defines the interface for loading user settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads settings for the project rooted at dir.
	// A missing config file yields default settings, not an error.
	Load(dir string) (domain.Settings, error)
}
