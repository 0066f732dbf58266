package schema

import "sync/atomic"

// Holder provides lock-free reads of the active registry and an atomic swap
// for runtime schema reload. A validation that loaded the registry before a
// swap keeps using that registry to completion; readers never observe a mix
// of old and new catalogs.
type Holder struct {
	p atomic.Pointer[Registry]
}

// NewHolder creates a holder with an initial registry.
func NewHolder(reg *Registry) *Holder {
	h := &Holder{}
	h.p.Store(reg)
	return h
}

// Load returns the active registry.
func (h *Holder) Load() *Registry {
	return h.p.Load()
}

// Swap atomically replaces the active registry.
func (h *Holder) Swap(reg *Registry) {
	h.p.Store(reg)
}
