package diffsketch

// defaultHashNum is the number of buckets a key maps to unless overridden.
// Four hashes tolerate a smaller size-to-difference ratio than three at a
// negligible insert cost.
const defaultHashNum = 4

// Option is a functional option for configuring a Sketch at creation.
type Option func(*config)

type config struct {
	hashNum int
	hasher  Hasher
}

func defaultConfig() *config {
	return &config{
		hashNum: defaultHashNum,
		hasher:  XXHasher{},
	}
}

// WithHashCount sets how many buckets each key maps to. Must be between 1
// and the sketch size. Both reconciling sides must use the same value.
func WithHashCount(k int) Option {
	return func(c *config) {
		c.hashNum = k
	}
}

// WithHasher replaces the default checksum implementation. Both reconciling
// sides must use the same Hasher with the same key material. A fixed test
// hasher also makes bucket placement deterministic for unit tests.
func WithHasher(h Hasher) Option {
	return func(c *config) {
		c.hasher = h
	}
}
