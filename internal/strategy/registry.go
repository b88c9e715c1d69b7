package strategy

import (
	"fmt"

	"github.com/draftops/draft-engine/internal/models"
)

// ErrUnknownStrategy is returned when an operation names a strategy id that
// is not in the registry.
type ErrUnknownStrategy struct {
	ID string
}

func (e ErrUnknownStrategy) Error() string {
	return fmt.Sprintf("unknown strategy %q", e.ID)
}

// Registry owns the strategy templates for a single draft room. It is an
// explicit object, one instance per room, never shared across rooms. Exactly
// one strategy is active at a time.
type Registry struct {
	strategies map[string]*models.DraftStrategy
	order      []string // registration order, kept for stable iteration
	activeID   string
}

// NewRegistry builds a registry from the given strategies. The first strategy
// marked Active wins; when none is marked, the first registered becomes active.
func NewRegistry(strategies ...*models.DraftStrategy) *Registry {
	r := &Registry{
		strategies: make(map[string]*models.DraftStrategy, len(strategies)),
		order:      make([]string, 0, len(strategies)),
	}

	for _, s := range strategies {
		if _, exists := r.strategies[s.ID]; exists {
			continue
		}
		r.strategies[s.ID] = s
		r.order = append(r.order, s.ID)
		if s.Active && r.activeID == "" {
			r.activeID = s.ID
		}
	}

	if r.activeID == "" && len(r.order) > 0 {
		r.activeID = r.order[0]
	}

	// Enforce the exactly-one-active invariant against whatever flags came in.
	for id, s := range r.strategies {
		s.Active = id == r.activeID
	}

	return r
}

// Active returns the active strategy, or nil for an empty registry.
func (r *Registry) Active() *models.DraftStrategy {
	if r.activeID == "" {
		return nil
	}
	return r.strategies[r.activeID]
}

// Get returns a strategy by id.
func (r *Registry) Get(id string) (*models.DraftStrategy, error) {
	s, ok := r.strategies[id]
	if !ok {
		return nil, ErrUnknownStrategy{ID: id}
	}
	return s, nil
}

// All returns every registered strategy in registration order.
func (r *Registry) All() []*models.DraftStrategy {
	out := make([]*models.DraftStrategy, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.strategies[id])
	}
	return out
}

// Snapshots returns deep copies of every strategy, safe to hand to callers.
func (r *Registry) Snapshots() []models.DraftStrategy {
	out := make([]models.DraftStrategy, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.strategies[id].Clone())
	}
	return out
}

// Switch activates the named strategy and deactivates all others. An unknown
// id leaves the registry completely untouched.
func (r *Registry) Switch(id string) error {
	if _, ok := r.strategies[id]; !ok {
		return ErrUnknownStrategy{ID: id}
	}
	for sid, s := range r.strategies {
		s.Active = sid == id
	}
	r.activeID = id
	return nil
}
