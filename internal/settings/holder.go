package settings

import "sync"

// Holder is the in-memory copy of the current settings shared between the
// UI, the file watcher and the result recorder.
type Holder struct {
	mu sync.RWMutex
	s  Settings
}

// NewHolder returns a Holder seeded with s.
func NewHolder(s Settings) *Holder {
	return &Holder{s: s.Normalize()}
}

// Get returns the current settings.
func (h *Holder) Get() Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.s
}

// Set replaces the current settings. Values are normalized.
func (h *Holder) Set(s Settings) {
	h.mu.Lock()
	h.s = s.Normalize()
	h.mu.Unlock()
}

// AutoExport reports whether finished sessions should be exported.
func (h *Holder) AutoExport() bool {
	return h.Get().AutoExport
}
