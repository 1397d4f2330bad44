package allocator

type config struct {
	alignment int
	capacity  int
}

// Option configures an allocator.
type Option func(*config)

// WithAlignment sets the size alignment in bytes; must be a power of two.
func WithAlignment(n int) Option {
	return func(c *config) { c.alignment = n }
}

// WithCapacity bounds the region to n bytes. Zero means unbounded.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

func newConfig(opts []Option) config {
	c := config{alignment: DefaultAlignment}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
