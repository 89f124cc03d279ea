package resolver

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidSnapshot is wrapped by every Import failure.
var ErrInvalidSnapshot = errors.New("invalid resolver snapshot")

// Snapshot is the exportable state of a Resolver.
type Snapshot struct {
	IdentityOf map[string]string   `json:"identity_of"`
	VariantsOf map[string][]string `json:"variants_of"`

	// Order is the canonical registration order. When empty on import the
	// canonical names are taken in sorted order.
	Order []string `json:"order,omitempty"`
}

// Export returns a deep copy of the resolver state.
func (r *Resolver) Export() Snapshot {
	identity := make(map[string]string, len(r.identityOf))
	for k, v := range r.identityOf {
		identity[k] = v
	}
	variants := make(map[string][]string, len(r.variantsOf))
	for k, set := range r.variantsOf {
		variants[k] = sortedSet(set)
	}
	return Snapshot{
		IdentityOf: identity,
		VariantsOf: variants,
		Order:      r.CanonicalNames(),
	}
}

// Import replaces the resolver state with snap.
//
// The snapshot must be internally consistent: every canonical name in
// IdentityOf has a variants entry, and every variants entry is the image of
// at least one identity mapping. On error the resolver is left unchanged.
func (r *Resolver) Import(snap Snapshot) error {
	image := make(map[string]bool, len(snap.VariantsOf))
	for raw, canonical := range snap.IdentityOf {
		if _, ok := snap.VariantsOf[canonical]; !ok {
			return fmt.Errorf("%w: %q maps to %q which has no variants entry", ErrInvalidSnapshot, raw, canonical)
		}
		image[canonical] = true
	}
	for canonical := range snap.VariantsOf {
		if !image[canonical] {
			return fmt.Errorf("%w: canonical %q has no identity mapping", ErrInvalidSnapshot, canonical)
		}
	}

	order, err := importOrder(snap)
	if err != nil {
		return err
	}

	identity := make(map[string]string, len(snap.IdentityOf))
	for k, v := range snap.IdentityOf {
		identity[k] = v
	}
	variants := make(map[string]map[string]struct{}, len(snap.VariantsOf))
	for canonical, list := range snap.VariantsOf {
		set := make(map[string]struct{}, len(list))
		for _, v := range list {
			set[v] = struct{}{}
		}
		variants[canonical] = set
	}

	r.identityOf = identity
	r.variantsOf = variants
	r.order = order
	return nil
}

func importOrder(snap Snapshot) ([]string, error) {
	if len(snap.Order) == 0 {
		order := make([]string, 0, len(snap.VariantsOf))
		for canonical := range snap.VariantsOf {
			order = append(order, canonical)
		}
		sort.Strings(order)
		return order, nil
	}

	if len(snap.Order) != len(snap.VariantsOf) {
		return nil, fmt.Errorf("%w: order lists %d names, variants has %d",
			ErrInvalidSnapshot, len(snap.Order), len(snap.VariantsOf))
	}
	seen := make(map[string]bool, len(snap.Order))
	for _, canonical := range snap.Order {
		if _, ok := snap.VariantsOf[canonical]; !ok || seen[canonical] {
			return nil, fmt.Errorf("%w: order entry %q is unknown or repeated", ErrInvalidSnapshot, canonical)
		}
		seen[canonical] = true
	}
	order := make([]string, len(snap.Order))
	copy(order, snap.Order)
	return order, nil
}
