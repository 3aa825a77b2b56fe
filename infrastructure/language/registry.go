package language

import (
	"sync"

	"github.com/felixgeelhaar/suggest-go/domain/language"
)

// Registry maps language ids to capabilities. Dialects resolve to their
// base language when they have no capability of their own.
type Registry struct {
	mu       sync.RWMutex
	caps     map[string]language.Capability
	dialects map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		caps:     make(map[string]language.Capability),
		dialects: make(map[string]string),
	}
}

// NewDefaultRegistry creates a registry with the bundled languages and the
// JavaScript and TypeScript dialects of ECMAScript 6.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(IDJava, Java())
	r.Register(IDKotlin, Kotlin())
	r.Register(IDJavaScript, JavaScript())
	r.Register(IDPython, Python())
	r.RegisterDialect("JavaScript", IDJavaScript)
	r.RegisterDialect("TypeScript", IDJavaScript)
	return r
}

// Register binds id to c, replacing any previous binding.
func (r *Registry) Register(id string, c language.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[id] = c
}

// RegisterDialect makes id fall back to base when it has no capability.
func (r *Registry) RegisterDialect(id, base string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialects[id] = base
}

// Resolve implements language.Resolver.
func (r *Registry) Resolve(id string) (language.Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, c, ok := r.lookup(id)
	return c, ok
}

// Canonical implements language.Resolver.
func (r *Registry) Canonical(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	canon, _, ok := r.lookup(id)
	return canon, ok
}

// IDs returns the ids with a direct capability.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.caps))
	for id := range r.caps {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) lookup(id string) (string, language.Capability, bool) {
	if id == "" {
		return "", nil, false
	}
	if c, ok := r.caps[id]; ok {
		return id, c, true
	}
	if base, ok := r.dialects[id]; ok {
		if c, ok := r.caps[base]; ok {
			return base, c, true
		}
	}
	return "", nil, false
}

var _ language.Resolver = (*Registry)(nil)
