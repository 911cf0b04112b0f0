// ConfigStore is the listener-level hot-reload registry: it holds the
// tunables a running ws.Serve listener is allowed to pick up without a
// restart, and dispatches listener hooks whenever an operator pushes a
// new value.

package control

import (
	"sync"
)

// ListenerTunables are the values a ws.Serve listener can reload live.
type ListenerTunables struct {
	// CloseWaitMillis bounds how long a connection's Close waits for the
	// peer's close echo and the transport shutdown before forcing the
	// transport shut.
	CloseWaitMillis int
}

// ConfigStore holds the current ListenerTunables with atomic snapshot and
// reload-listener dispatch.
type ConfigStore struct {
	mu        sync.RWMutex
	tunables  ListenerTunables
	listeners []func(ListenerTunables)
}

// NewConfigStore initializes a config store at the zero ListenerTunables.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

// GetSnapshot returns the current tunables.
func (cs *ConfigStore) GetSnapshot() ListenerTunables {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.tunables
}

// SetCloseWaitMillis updates the close-wait bound and dispatches reload to
// every registered listener.
func (cs *ConfigStore) SetCloseWaitMillis(ms int) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.tunables.CloseWaitMillis = ms
	cs.dispatchReload()
}

// OnReload registers a hook invoked with the new tunables after every
// update, e.g. a listener syncing its live close-wait duration.
func (cs *ConfigStore) OnReload(fn func(ListenerTunables)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// dispatchReload invokes all listeners with the current tunables. Callers
// must hold cs.mu.
func (cs *ConfigStore) dispatchReload() {
	snap := cs.tunables
	for _, fn := range cs.listeners {
		go fn(snap)
	}
}
