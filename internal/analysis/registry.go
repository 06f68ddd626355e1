package analysis

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"ca-fractal/internal/lattice"
)

// ErrUnknownStatistic is returned when no statistic is registered under a
// name.
var ErrUnknownStatistic = errors.New("analysis: unknown statistic")

// Factory constructs a Statistic for a grid.
type Factory func(g lattice.Grid, opts Options) Statistic

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a statistic factory under name, replacing any previous one.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownStatistic)
	}
	return f, nil
}

// Names returns the registered statistic names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
