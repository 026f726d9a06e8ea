package provider

import "sort"

// Registry owns the full set of provider instances, exposed sorted by
// priority ascending (§4.3). Disabled configs are filtered out at
// construction and the registry never mutates afterward.
type Registry struct {
	ordered []Provider
}

// NewRegistry sorts providers by ascending priority, dropping any whose
// config is disabled. The input slice is not retained.
func NewRegistry(providers []Provider) *Registry {
	enabled := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p.Config().Enabled {
			enabled = append(enabled, p)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Config().Priority < enabled[j].Config().Priority
	})
	return &Registry{ordered: enabled}
}

// Ordered returns providers in ascending priority order, the order
// PhoneLookupWorkflow tries them in.
func (r *Registry) Ordered() []Provider {
	out := make([]Provider, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// ByName is an O(n) lookup; returns nil, false if absent or disabled.
func (r *Registry) ByName(name string) (Provider, bool) {
	for _, p := range r.ordered {
		if p.Config().Name == name {
			return p, true
		}
	}
	return nil, false
}

// Close tears down every owned provider's rate limiter. Call when the
// registry itself is being destroyed (§3 Lifecycles).
func (r *Registry) Close() {
	for _, p := range r.ordered {
		if closer, ok := p.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}
