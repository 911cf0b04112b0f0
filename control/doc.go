// Package control provides the runtime-tunable configuration store and
// per-connection metrics registry used by package ws's Serve/Dial layer.
//
// It supplies three independent primitives:
//   - ConfigStore, a thread-safe ListenerTunables holder with hot-reload
//     listener dispatch, letting operators push a new close-wait bound to
//     a running listener without restarting it.
//   - MetricsRegistry, a thread-safe named-counter store, backing
//     Connection.Stats() with byte and frame counters.
//   - RegisterReloadHook/TriggerHotReload, a process-wide reload trigger
//     for components (e.g. a SIGHUP handler) that don't hold their own
//     ConfigStore.
package control
