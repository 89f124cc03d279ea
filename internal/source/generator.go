package source

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/roach88/placer/internal/value"
)

// spellings lists the raw field names the generator picks from per concept.
var spellings = map[string][]string{
	"ip":        {"ip", "IP", "IpAddress", "ip_address"},
	"username":  {"username", "userName", "user_name", "Username"},
	"age":       {"age", "Age", "user_age"},
	"email":     {"email", "Email", "email_address"},
	"timestamp": {"timestamp", "t_stamp", "time_stamp"},
	"country":   {"country", "Country", "location_country"},
	"status":    {"status", "Status", "user_status"},
}

var (
	countries = []string{"USA", "UK", "India", "Canada", "Germany", "France", "Japan", "Australia"}
	statuses  = []string{"active", "inactive", "pending", "suspended"}
	browsers  = []string{"Chrome", "Firefox", "Safari", "Edge"}
	systems   = []string{"Windows", "macOS", "Linux", "iOS", "Android"}
	devices   = []string{"mobile", "desktop", "tablet"}
	widths    = []int{1920, 1366, 1024, 768}
	heights   = []int{1080, 768, 768, 1024}
	tagPool   = []string{"premium", "verified", "new", "vip", "beta_tester"}
)

// DefaultGeneratorBase anchors generated timestamps so output depends only
// on the seed.
var DefaultGeneratorBase = time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

// Generator produces synthetic records with inconsistent field spellings,
// occasional type drift, nested metadata and sparse array fields. The same
// seed always yields the same records.
type Generator struct {
	rng   *rand.Rand
	base  time.Time
	limit int
	count int
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLimit stops the generator after n records. Zero means unbounded.
func WithLimit(n int) GeneratorOption {
	return func(g *Generator) {
		if n >= 0 {
			g.limit = n
		}
	}
}

// WithBaseTime sets the instant generated timestamps count back from.
func WithBaseTime(t time.Time) GeneratorOption {
	return func(g *Generator) {
		g.base = t
	}
}

// NewGenerator creates a seeded generator.
func NewGenerator(seed uint64, opts ...GeneratorOption) *Generator {
	g := &Generator{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		base: DefaultGeneratorBase,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next implements Source.
func (g *Generator) Next(ctx context.Context) (value.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.limit > 0 && g.count >= g.limit {
		return nil, io.EOF
	}
	return g.Record(), nil
}

// Close implements Source.
func (g *Generator) Close() error {
	return nil
}

// Record returns the next synthetic record.
func (g *Generator) Record() value.Object {
	g.count++
	kind := pick(g.rng, []string{"clean", "messy", "nested"})

	rec := value.Object{
		g.spell("username"):  value.String(fmt.Sprintf("user_%d", g.rng.IntN(50)+1)),
		g.spell("timestamp"): value.String(g.timestamp()),
	}

	if g.rng.Float64() > 0.1 {
		field := g.spell("ip")
		if g.rng.Float64() > 0.95 {
			rec[field] = value.String(fmt.Sprintf("%d.%d", g.rng.IntN(255)+1, g.rng.IntN(256)))
		} else {
			rec[field] = value.String(g.ip())
		}
	}

	if g.rng.Float64() > 0.2 {
		field := g.spell("age")
		age := int64(g.rng.IntN(58) + 18)
		if g.rng.Float64() > 0.85 {
			rec[field] = value.String(fmt.Sprintf("%d", age))
		} else {
			rec[field] = value.Int(age)
		}
	}

	if g.rng.Float64() > 0.3 {
		rec[g.spell("email")] = value.String(fmt.Sprintf("user_%d@example.com", g.rng.IntN(20)+1))
	}
	if g.rng.Float64() > 0.25 {
		rec[g.spell("country")] = value.String(pick(g.rng, countries))
	}
	if g.rng.Float64() > 0.4 {
		rec[g.spell("status")] = value.String(pick(g.rng, statuses))
	}

	if g.rng.Float64() > 0.05 {
		rec["session_id"] = value.String(fmt.Sprintf("sess_%d_%d", g.count, g.rng.IntN(9000)+1000))
	}

	if kind == "nested" {
		rec["metadata"] = value.Object{
			"browser": value.String(pick(g.rng, browsers)),
			"os":      value.String(pick(g.rng, systems)),
			"device": value.Object{
				"type":        value.String(pick(g.rng, devices)),
				"screen_size": value.String(fmt.Sprintf("%dx%d", pick(g.rng, widths), pick(g.rng, heights))),
			},
		}
	}

	if g.rng.Float64() > 0.8 {
		rec["tags"] = g.tags()
	}
	return rec
}

func (g *Generator) spell(concept string) string {
	return pick(g.rng, spellings[concept])
}

func (g *Generator) ip() string {
	return fmt.Sprintf("%d.%d.%d.%d", g.rng.IntN(255)+1, g.rng.IntN(256), g.rng.IntN(256), g.rng.IntN(255)+1)
}

func (g *Generator) timestamp() string {
	offset := time.Duration(g.rng.IntN(31))*24*time.Hour +
		time.Duration(g.rng.IntN(24))*time.Hour +
		time.Duration(g.rng.IntN(60))*time.Minute
	return g.base.Add(-offset).Format("2006-01-02T15:04:05")
}

func (g *Generator) tags() value.Array {
	pool := make([]string, len(tagPool))
	copy(pool, tagPool)
	g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	n := g.rng.IntN(3) + 1
	out := make(value.Array, n)
	for i := 0; i < n; i++ {
		out[i] = value.String(pool[i])
	}
	return out
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
