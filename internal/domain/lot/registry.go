package lot

import (
	"fmt"
	"sort"
	"strings"

	"cattle-auction-service/internal/domain/shared"
)

// Registry owns every lot and the id counter. It is not safe for concurrent
// use; callers serialize access.
type Registry struct {
	lots   []*Lot
	lastID int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Create validates the raw inputs and appends a new open lot
func (r *Registry) Create(breed, quantity, startPrice string) (Lot, error) {
	breed = strings.TrimSpace(breed)
	if breed == "" {
		return Lot{}, fmt.Errorf("%w: breed is required", shared.ErrInvalidInput)
	}
	qty, err := ParseQuantity(quantity)
	if err != nil {
		return Lot{}, err
	}
	price, err := ParseStartPrice(startPrice)
	if err != nil {
		return Lot{}, err
	}

	r.lastID++
	created := &Lot{
		ID:               r.lastID,
		Breed:            breed,
		Quantity:         qty,
		CurrentBidAmount: price,
		CurrentBidder:    NoBidder,
		Status:           StatusOpen,
	}
	r.lots = append(r.lots, created)

	return *created, nil
}

// Find returns the live lot for mutation by the owner of the registry
func (r *Registry) Find(id int) (*Lot, error) {
	for _, candidate := range r.lots {
		if candidate.ID == id {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("%w: #%d", shared.ErrLotNotFound, id)
}

// List returns copies of all lots ordered by id
func (r *Registry) List() []Lot {
	lots := make([]Lot, 0, len(r.lots))
	for _, l := range r.lots {
		lots = append(lots, *l)
	}
	return lots
}

// Remove deletes a lot that never received a bid
func (r *Registry) Remove(id int) error {
	for i, candidate := range r.lots {
		if candidate.ID != id {
			continue
		}
		if candidate.HasBids() {
			return fmt.Errorf("%w: lot #%d has a bid from %s", shared.ErrHasBids, id, candidate.CurrentBidder)
		}
		r.lots = append(r.lots[:i], r.lots[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: #%d", shared.ErrLotNotFound, id)
}

// Restore replaces the registry content with lots loaded from a snapshot.
// The id counter resumes from the highest restored id.
func (r *Registry) Restore(lots []Lot) error {
	restored := make([]*Lot, 0, len(lots))
	seen := make(map[int]struct{}, len(lots))
	lastID := 0
	for i := range lots {
		l := lots[i]
		if err := l.Validate(); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrCorruptData, err)
		}
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("%w: duplicate lot id %d", shared.ErrCorruptData, l.ID)
		}
		seen[l.ID] = struct{}{}
		if l.ID > lastID {
			lastID = l.ID
		}
		restored = append(restored, &l)
	}
	sort.Slice(restored, func(i, j int) bool { return restored[i].ID < restored[j].ID })

	r.lots = restored
	r.lastID = lastID
	return nil
}

// Len returns the number of lots
func (r *Registry) Len() int {
	return len(r.lots)
}

// LastID returns the most recently assigned id
func (r *Registry) LastID() int {
	return r.lastID
}
