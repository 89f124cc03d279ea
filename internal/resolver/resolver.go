package resolver

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/placer/internal/value"
)

// ErrEmptyName is returned when asked to resolve the empty field name.
var ErrEmptyName = errors.New("empty field name")

// Resolver maps raw field names to canonical names.
type Resolver struct {
	// identityOf maps a lowercased raw name to its canonical name.
	identityOf map[string]string

	// variantsOf maps a canonical name to every raw spelling bound to it.
	variantsOf map[string]map[string]struct{}

	// order lists canonical names in first-registration order.
	order []string

	extra        []SynonymGroup
	skipDefaults bool
	logger       *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSynonyms registers additional synonym groups after the default seeds.
func WithSynonyms(groups []SynonymGroup) Option {
	return func(r *Resolver) {
		r.extra = append(r.extra, groups...)
	}
}

// WithoutDefaultSynonyms seeds only the groups given through WithSynonyms.
func WithoutDefaultSynonyms() Option {
	return func(r *Resolver) {
		r.skipDefaults = true
	}
}

// WithLogger sets the logger used for learned mappings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Resolver seeded with DefaultSynonyms followed by any extra
// groups.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		identityOf: make(map[string]string),
		variantsOf: make(map[string]map[string]struct{}),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if !r.skipDefaults {
		for _, g := range DefaultSynonyms {
			r.seed(g)
		}
	}
	for _, g := range r.extra {
		r.seed(g)
	}
	return r
}

// seed binds every variant of g. Spellings that differ only in case share
// one binding but are all recorded as variants. A spelling already claimed
// by a different group keeps its first binding.
func (r *Resolver) seed(g SynonymGroup) {
	canonical := norm.NFC.String(g.Canonical)
	for _, v := range g.Variants {
		v = norm.NFC.String(v)
		if v == "" {
			continue
		}
		lower := strings.ToLower(v)
		if bound, ok := r.identityOf[lower]; ok && bound != canonical {
			continue
		}
		r.bind(lower, v, canonical)
	}
}

// Resolve returns the canonical name for raw, learning a new mapping if raw
// has not been seen before.
func (r *Resolver) Resolve(raw string) (string, error) {
	raw = norm.NFC.String(raw)
	if raw == "" {
		return "", ErrEmptyName
	}

	lower := strings.ToLower(raw)
	if canonical, ok := r.identityOf[lower]; ok {
		return canonical, nil
	}

	snake := ToSnake(raw)
	if _, ok := r.variantsOf[snake]; ok {
		r.bind(lower, raw, snake)
		r.logger.Debug("field name bound", "raw", raw, "canonical", snake, "via", "structural")
		return snake, nil
	}

	for _, canonical := range r.order {
		if similar(snake, canonical) {
			r.bind(lower, raw, canonical)
			r.logger.Debug("field name bound", "raw", raw, "canonical", canonical, "via", "fuzzy")
			return canonical, nil
		}
	}

	r.bind(lower, raw, snake)
	r.logger.Debug("new canonical field", "raw", raw, "canonical", snake)
	return snake, nil
}

func (r *Resolver) bind(lower, raw, canonical string) {
	r.identityOf[lower] = canonical
	variants, ok := r.variantsOf[canonical]
	if !ok {
		variants = make(map[string]struct{})
		r.variantsOf[canonical] = variants
		r.order = append(r.order, canonical)
	}
	variants[raw] = struct{}{}
}

// ResolveRecord renames every key of rec to its canonical name.
//
// Keys are resolved in sorted order so that learning is deterministic. When
// two raw keys collapse onto one canonical name, the value of the key that
// sorts last wins. The returned mapping records raw -> canonical for every key.
func (r *Resolver) ResolveRecord(rec value.Object) (value.Object, map[string]string, error) {
	out := make(value.Object, len(rec))
	mapping := make(map[string]string, len(rec))

	for _, key := range rec.SortedKeys() {
		canonical, err := r.Resolve(key)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve key %q: %w", key, err)
		}
		out[canonical] = rec[key]
		mapping[key] = canonical
	}
	return out, mapping, nil
}

// Variants returns the raw spellings bound to canonical, sorted.
// Unknown canonical names yield an empty slice.
func (r *Resolver) Variants(canonical string) []string {
	return sortedSet(r.variantsOf[canonical])
}

// CanonicalNames returns every canonical name in registration order.
func (r *Resolver) CanonicalNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Stats summarizes what the resolver has learned.
type Stats struct {
	// TotalVariations counts distinct lowercased raw names.
	TotalVariations int `json:"total_variations"`

	// CanonicalFields counts distinct canonical names.
	CanonicalFields int `json:"canonical_fields"`

	// VariationDetails lists the raw spellings per canonical name.
	VariationDetails map[string][]string `json:"variation_details"`
}

// Stats returns resolver statistics.
func (r *Resolver) Stats() Stats {
	details := make(map[string][]string, len(r.variantsOf))
	for canonical, variants := range r.variantsOf {
		details[canonical] = sortedSet(variants)
	}
	return Stats{
		TotalVariations:  len(r.identityOf),
		CanonicalFields:  len(r.variantsOf),
		VariationDetails: details,
	}
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
