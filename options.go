package yoda

import "github.com/sharedcode/yoda/container"

// StoreOption configures a Store at construction time, the same
// functional-options shape the teacher uses for its database and
// transaction configuration structs — except family declarations need
// compile-time type parameters a plain struct field can't carry, so
// each one is a generic option func instead.
type StoreOption func(*storeConfig)

type storeConfig struct {
	mailboxCapacity  int
	subscriberBuffer int
	clock            Clock
	declare          []func(*Store)
}

func defaultStoreConfig() *storeConfig {
	return &storeConfig{
		mailboxCapacity:  256,
		subscriberBuffer: 64,
		clock:            systemClock{},
	}
}

// WithMailboxCapacity overrides the bounded capacity of the Store's
// command mailbox (default 256).
func WithMailboxCapacity(n int) StoreOption {
	return func(c *storeConfig) { c.mailboxCapacity = n }
}

// WithSubscriberBuffer overrides the bounded per-subscriber delivery
// buffer used by the Log this Store opens (default 64).
func WithSubscriberBuffer(n int) StoreOption {
	return func(c *storeConfig) { c.subscriberBuffer = n }
}

// WithClock overrides the Clock collaborator new entries can consult
// for timestamping (default: the system clock).
func WithClock(clock Clock) StoreOption {
	return func(c *storeConfig) { c.clock = clock }
}

// Dictionary declares a dictionary family bound to entry type E keyed
// by K, tagged tag, and writes the resulting handle into *out once the
// Store is constructed — the same "declare and bind a pointer" shape
// as flag.StringVar (spec.md §3, "a store instance is parameterized
// by a fixed list of families").
func Dictionary[K comparable, E KeyedEntry[K]](tag Tag, out **DictFamily[K, E]) StoreOption {
	return func(c *storeConfig) {
		c.declare = append(c.declare, func(s *Store) {
			dict := container.NewDictionary[K, E]()
			s.families[tag] = &dictBinding[K, E]{t: tag, dict: dict}
			*out = &DictFamily[K, E]{tag: tag}
		})
	}
}

// Matrix declares a matrix family bound to entry type E cell-keyed by
// (R, C), tagged tag, and writes the resulting handle into *out once
// the Store is constructed.
func Matrix[R comparable, C comparable, E CellEntry[R, C]](tag Tag, out **MatrixFamily[R, C, E]) StoreOption {
	return func(c *storeConfig) {
		c.declare = append(c.declare, func(s *Store) {
			mat := container.NewMatrix[R, C, E]()
			s.families[tag] = &matrixBinding[R, C, E]{t: tag, matrix: mat}
			*out = &MatrixFamily[R, C, E]{tag: tag}
		})
	}
}
