package registry

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"backwork/atlas/pkg/schema"
)

// BundleRegistry is a thread-safe in-memory store for validated policy
// bundles, keyed by policy id. Replace swaps the whole set atomically
// for hot reload.
type BundleRegistry struct {
	mu       sync.RWMutex
	bundles  map[string]*schema.PolicyBundle
	version  string
	loadTime time.Time
}

// NewBundleRegistry creates a new empty bundle registry.
func NewBundleRegistry() *BundleRegistry {
	return &BundleRegistry{
		bundles:  make(map[string]*schema.PolicyBundle),
		loadTime: time.Now(),
	}
}

// Register adds a bundle to the registry.
// If a bundle with the same policy id already exists, it is replaced.
func (r *BundleRegistry) Register(bundle *schema.PolicyBundle) error {
	if bundle == nil {
		return &RegistryError{
			Operation: "register",
			Message:   "bundle cannot be nil",
		}
	}

	if bundle.ID == "" {
		return &RegistryError{
			Operation: "register",
			Message:   "bundle policy id cannot be empty",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.bundles[bundle.ID] = bundle
	r.updateVersion()

	return nil
}

// Unregister removes a bundle from the registry by policy id.
func (r *BundleRegistry) Unregister(policyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bundles[policyID]; !ok {
		return &RegistryError{
			PolicyID:  policyID,
			Operation: "unregister",
			Message:   "bundle not found",
		}
	}

	delete(r.bundles, policyID)
	r.updateVersion()

	return nil
}

// Get retrieves a bundle by policy id.
func (r *BundleRegistry) Get(policyID string) (*schema.PolicyBundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bundle, ok := r.bundles[policyID]
	return bundle, ok
}

// GetAll retrieves all bundles sorted by policy id.
// The returned slice is a copy and will not be modified by the registry.
func (r *BundleRegistry) GetAll() []*schema.PolicyBundle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.bundles))
	for id := range r.bundles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	bundles := make([]*schema.PolicyBundle, 0, len(r.bundles))
	for _, id := range ids {
		bundles = append(bundles, r.bundles[id])
	}

	return bundles
}

// PolicyIDs returns a sorted list of all registered policy ids.
func (r *BundleRegistry) PolicyIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.bundles))
	for id := range r.bundles {
		ids = append(ids, id)
	}

	sort.Strings(ids)
	return ids
}

// Has reports whether a bundle with the given policy id is registered.
func (r *BundleRegistry) Has(policyID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.bundles[policyID]
	return ok
}

// Count returns the number of registered bundles.
func (r *BundleRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bundles)
}

// Replace atomically replaces the entire bundle set with a new set.
// This is the hot-reload path: a failed reload never reaches Replace,
// so the previous set keeps serving.
func (r *BundleRegistry) Replace(bundles []*schema.PolicyBundle) error {
	if bundles == nil {
		return &RegistryError{
			Operation: "replace",
			Message:   "bundles cannot be nil",
		}
	}

	for _, bundle := range bundles {
		if bundle == nil {
			return &RegistryError{
				Operation: "replace",
				Message:   "bundle cannot be nil",
			}
		}
		if bundle.ID == "" {
			return &RegistryError{
				Operation: "replace",
				Message:   "bundle policy id cannot be empty",
			}
		}
	}

	newBundles := make(map[string]*schema.PolicyBundle, len(bundles))
	for _, bundle := range bundles {
		newBundles[bundle.ID] = bundle
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.bundles = newBundles
	r.loadTime = time.Now()
	r.updateVersion()

	return nil
}

// Version returns the current registry version. The version changes
// whenever bundles are added, removed, or replaced.
func (r *BundleRegistry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

// LoadTime returns when bundles were last loaded or updated.
func (r *BundleRegistry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadTime
}

// updateVersion derives the registry version from the registered bundle
// set. Must be called with the write lock held.
func (r *BundleRegistry) updateVersion() {
	h := sha256.New()

	ids := make([]string, 0, len(r.bundles))
	for id := range r.bundles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		bundle := r.bundles[id]
		h.Write([]byte(bundle.ID))
		h.Write([]byte(bundle.Version))
		h.Write([]byte(bundle.SourceFile))
	}

	r.version = fmt.Sprintf("%x", h.Sum(nil))[:16]
}
