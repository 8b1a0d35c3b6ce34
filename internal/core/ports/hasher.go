package ports

// Hasher defines the interface for fingerprinting files.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// HashFiles returns a stable hex digest over the paths and contents of
	// the files, in order.
	HashFiles(paths []string) (string, error)
}
