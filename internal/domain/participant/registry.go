package participant

import (
	"fmt"
	"sort"
	"strings"

	"cattle-auction-service/internal/domain/lot"
	"cattle-auction-service/internal/domain/shared"
)

// Registry tracks the display names of connected participants. It is not
// safe for concurrent use; callers serialize access.
type Registry struct {
	active map[string]struct{}
}

// NewRegistry creates an empty participant registry
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]struct{})}
}

// Register claims name for a new session
func (r *Registry) Register(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: participant name is required", shared.ErrInvalidInput)
	}
	if name == lot.NoBidder {
		return fmt.Errorf("%w: participant name %q is reserved", shared.ErrInvalidInput, name)
	}
	if _, taken := r.active[name]; taken {
		return fmt.Errorf("%w: %q", shared.ErrNameTaken, name)
	}
	r.active[name] = struct{}{}
	return nil
}

// Unregister releases name. Unknown names are ignored.
func (r *Registry) Unregister(name string) {
	delete(r.active, name)
}

// IsActive reports whether name belongs to a connected participant
func (r *Registry) IsActive(name string) bool {
	_, ok := r.active[name]
	return ok
}

// Names returns the active names in lexical order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.active))
	for name := range r.active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of connected participants
func (r *Registry) Len() int {
	return len(r.active)
}
