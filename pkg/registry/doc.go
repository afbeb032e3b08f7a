// Package registry provides loading, storage, and hot-reload of policy
// bundles.
//
// The registry is the authoritative in-memory store of validated
// bundles, keyed by policy id. Bundles enter the registry only through
// the loader, which parses and validates them; a bundle with any
// validation error is rejected whole and never partially registered.
//
// # Components
//
//   - BundleRegistry: thread-safe in-memory bundle storage with a
//     content-derived version string
//   - BundleLoader: file and directory loading with parse and
//     validation gating
//   - BundleWatcher: fsnotify-based watching with debounced reloads
//     and atomic registry swaps
//
// # Hot Reload
//
// The watcher triggers a full directory reload on file changes. Reloads
// are atomic: the new bundle set replaces the old one in a single swap,
// and a reload that fails leaves the previous set serving.
package registry
