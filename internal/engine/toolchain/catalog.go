package toolchain

import (
	"slices"

	"github.com/samber/lo"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/zerr"
)

// Catalog is the ordered set of targets a builder discovered.
// Names are unique; insertion order is preserved.
type Catalog struct {
	targets []*domain.Target
	byName  map[string]*domain.Target
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]*domain.Target)}
}

// Add appends t, rejecting a name that is already present.
func (c *Catalog) Add(t *domain.Target) error {
	if _, exists := c.byName[t.Name]; exists {
		return zerr.With(zerr.Wrap(domain.ErrDuplicateTarget, "catalog"), "target", t.Name)
	}
	c.targets = append(c.targets, t)
	c.byName[t.Name] = t
	return nil
}

// Targets returns a copy of the targets in discovery order.
func (c *Catalog) Targets() []*domain.Target {
	return slices.Clone(c.targets)
}

// Lookup finds a target by name.
func (c *Catalog) Lookup(name string) (*domain.Target, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Owns reports whether t is one of this catalog's targets, by identity.
func (c *Catalog) Owns(t *domain.Target) bool {
	if t == nil {
		return false
	}
	return c.byName[t.Name] == t
}

// Names returns the target names in discovery order.
func (c *Catalog) Names() []string {
	return lo.Map(c.targets, func(t *domain.Target, _ int) string {
		return t.Name
	})
}

// Len returns the number of targets.
func (c *Catalog) Len() int {
	return len(c.targets)
}
