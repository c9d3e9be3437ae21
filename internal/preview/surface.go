package preview

import (
	"sort"
	"strings"
	"sync"
)

// MemorySurface is an in-process style surface: a flat key -> value map.
type MemorySurface struct {
	mu    sync.RWMutex
	props map[string]string
}

// NewMemorySurface returns an empty surface.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{props: make(map[string]string)}
}

func (s *MemorySurface) SetProperty(key, value string) {
	s.mu.Lock()
	s.props[key] = value
	s.mu.Unlock()
}

func (s *MemorySurface) Property(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.props[key]
	return v, ok
}

func (s *MemorySurface) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.props))
	for k, v := range s.props {
		out[k] = v
	}
	return out
}

// Restore replaces the whole surface with snapshot.
func (s *MemorySurface) Restore(snapshot map[string]string) {
	props := make(map[string]string, len(snapshot))
	for k, v := range snapshot {
		props[k] = v
	}

	s.mu.Lock()
	s.props = props
	s.mu.Unlock()
}

// Len is the number of properties on the surface.
func (s *MemorySurface) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.props)
}

// Render emits the surface as a :root custom-property block sorted by key.
func (s *MemorySurface) Render() string {
	return RenderProperties(s.Snapshot())
}

// RenderProperties formats props as a :root block.
func RenderProperties(props map[string]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, k := range keys {
		b.WriteString("  --")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(props[k])
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	return b.String()
}
