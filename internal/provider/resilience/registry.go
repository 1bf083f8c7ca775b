package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ProviderHealth is a point-in-time view of one outbound provider, such as
// the scoring service or the places API, as reported by the ops status
// endpoint.
type ProviderHealth struct {
	Name string

	CircuitState gobreaker.State
	Counts       gobreaker.Counts

	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string

	// LastStateChangeAt is when the circuit last changed state.
	LastStateChangeAt *time.Time

	// Trips counts transitions into the open state since registration.
	Trips int
}

// IsHealthy reports a closed circuit.
func (h *ProviderHealth) IsHealthy() bool { return h.CircuitState == gobreaker.StateClosed }

// IsDegraded reports a half-open circuit probing for recovery.
func (h *ProviderHealth) IsDegraded() bool { return h.CircuitState == gobreaker.StateHalfOpen }

// IsUnhealthy reports an open circuit that rejects calls.
func (h *ProviderHealth) IsUnhealthy() bool { return h.CircuitState == gobreaker.StateOpen }

// Registry collects call outcomes and circuit transitions from every Client
// built with it.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	client *Client
	health ProviderHealth
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds client under name, replacing any earlier client and its
// history.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &entry{client: client, health: ProviderHealth{Name: name}}
}

// RecordSuccess stamps a successful call.
func (r *Registry) RecordSuccess(name string) {
	r.update(name, func(h *ProviderHealth, now time.Time) {
		h.LastSuccessAt = &now
	})
}

// RecordFailure stamps a failed call and keeps its error text.
func (r *Registry) RecordFailure(name string, err error) {
	r.update(name, func(h *ProviderHealth, now time.Time) {
		h.LastFailureAt = &now
		if err != nil {
			h.LastError = err.Error()
		}
	})
}

// RecordStateChange stamps a circuit transition. Clients built with a
// Registry call it from the breaker's state hook.
func (r *Registry) RecordStateChange(name string, _, to gobreaker.State) {
	r.update(name, func(h *ProviderHealth, now time.Time) {
		h.LastStateChangeAt = &now
		if to == gobreaker.StateOpen {
			h.Trips++
		}
	})
}

func (r *Registry) update(name string, fn func(h *ProviderHealth, now time.Time)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		fn(&e.health, time.Now())
	}
}

// Health returns the provider registered under name, or nil.
func (r *Registry) Health(name string) *ProviderHealth {
	r.mu.RLock()
	e, ok := r.entries[name]
	var h ProviderHealth
	var client *Client
	if ok {
		h, client = e.health, e.client
	}
	r.mu.RUnlock()

	if !ok {
		return nil
	}
	return withCircuit(h, client)
}

// All returns every registered provider sorted by name.
func (r *Registry) All() []*ProviderHealth {
	type pending struct {
		health ProviderHealth
		client *Client
	}

	r.mu.RLock()
	snap := make([]pending, 0, len(r.entries))
	for _, e := range r.entries {
		snap = append(snap, pending{e.health, e.client})
	}
	r.mu.RUnlock()

	out := make([]*ProviderHealth, 0, len(snap))
	for _, p := range snap {
		out = append(out, withCircuit(p.health, p.client))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// withCircuit reads the breaker outside the registry lock. The breaker calls
// RecordStateChange while holding its own lock.
func withCircuit(h ProviderHealth, client *Client) *ProviderHealth {
	if client != nil {
		h.CircuitState = client.CircuitBreakerState()
		h.Counts = client.CircuitBreakerCounts()
	}
	return &h
}
