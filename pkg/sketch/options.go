package sketch

import (
	"github.com/Borislavv/go-count-sketch/pkg/hasher"
	"github.com/Borislavv/go-count-sketch/pkg/seed"
)

// DefaultMaxCounters caps the grid at 1 GiB of int64 counters.
const DefaultMaxCounters = 1 << 27

type options struct {
	source      seed.Source
	strong      hasher.StrongFunc
	domain      hasher.DomainFunc
	maxCounters int
}

type Option func(*options)

// WithSeedSource sets where row seeds are drawn from. Use seed.New or seed.NewFixed for reproducible sketches.
func WithSeedSource(src seed.Source) Option { return func(o *options) { o.source = src } }

// WithStrongHash sets the seeded row hash.
func WithStrongHash(fn hasher.StrongFunc) Option { return func(o *options) { o.strong = fn } }

// WithDomainHash sets the text key to integer mapper.
func WithDomainHash(fn hasher.DomainFunc) Option { return func(o *options) { o.domain = fn } }

// WithMaxCounters sets the largest depth*width New will allocate.
func WithMaxCounters(n int) Option { return func(o *options) { o.maxCounters = n } }

func defaultOptions() *options {
	return &options{
		source:      seed.Random(),
		strong:      hasher.Mix64,
		domain:      hasher.XXH3String,
		maxCounters: DefaultMaxCounters,
	}
}
