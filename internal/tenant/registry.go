package tenant

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Registry holds the static company list. Pure lookup after startup,
// no I/O and no mutation.
type Registry struct {
	tenants []Tenant
	byID    map[int64]Tenant
}

// NewRegistry builds a registry from an already-validated company list.
func NewRegistry(tenants []Tenant) (*Registry, error) {
	if len(tenants) == 0 {
		return nil, errors.New("tenant: at least one tenant must be configured")
	}
	byID := make(map[int64]Tenant, len(tenants))
	for _, t := range tenants {
		if t.ID <= 0 {
			return nil, fmt.Errorf("tenant: invalid id %d for %q", t.ID, t.Name)
		}
		if t.DSN == "" {
			return nil, fmt.Errorf("tenant: missing dsn for %q", t.Name)
		}
		if _, exists := byID[t.ID]; exists {
			return nil, fmt.Errorf("tenant: duplicate id %d", t.ID)
		}
		byID[t.ID] = t
	}
	return &Registry{tenants: tenants, byID: byID}, nil
}

// LoadRegistry reads the company list from a JSON file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tenant: read tenants file: %w", err)
	}
	var tenants []Tenant
	if err := json.Unmarshal(data, &tenants); err != nil {
		return nil, fmt.Errorf("tenant: parse tenants file: %w", err)
	}
	return NewRegistry(tenants)
}

// Get returns the company registered under id.
func (r *Registry) Get(id int64) (Tenant, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Default returns the first configured company, used as the fallback
// when a request supplies no usable identifier.
func (r *Registry) Default() Tenant {
	return r.tenants[0]
}

// All returns every registered company in configuration order.
func (r *Registry) All() []Tenant {
	out := make([]Tenant, len(r.tenants))
	copy(out, r.tenants)
	return out
}

// Resolve maps a raw request identifier onto a company. An empty
// identifier falls back to the default company; an unparseable or
// unregistered one does too, tagged OutcomeUnknown so callers can log it.
func (r *Registry) Resolve(identifier string) Resolution {
	if identifier == "" {
		return Resolution{Tenant: r.Default(), Outcome: OutcomeFallback}
	}
	id, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil {
		return Resolution{Tenant: r.Default(), Outcome: OutcomeUnknown}
	}
	t, ok := r.byID[id]
	if !ok {
		return Resolution{Tenant: r.Default(), Outcome: OutcomeUnknown}
	}
	return Resolution{Tenant: t, Outcome: OutcomeResolved}
}
