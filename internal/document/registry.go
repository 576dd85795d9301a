package document

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrEngineNotRegistered is returned by Lookup for an unknown engine name.
var ErrEngineNotRegistered = errors.New("document engine not registered")

var (
	enginesMu sync.RWMutex
	engines   = make(map[string]Engine)
)

// Register makes an engine available under name.
// It panics if engine is nil or if name is already registered.
func Register(name string, engine Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()

	if engine == nil {
		panic("document: Register engine is nil")
	}
	if _, dup := engines[name]; dup {
		panic("document: Register called twice for engine " + name)
	}
	engines[name] = engine
}

// Lookup returns the engine registered under name.
func Lookup(name string) (Engine, error) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()

	engine, ok := engines[name]
	if !ok {
		if len(engines) == 0 {
			return nil, fmt.Errorf("%w: %q (no engine is linked into this binary)", ErrEngineNotRegistered, name)
		}
		return nil, fmt.Errorf("%w: %q", ErrEngineNotRegistered, name)
	}
	return engine, nil
}

// Engines returns the sorted names of the registered engines.
func Engines() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()

	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
