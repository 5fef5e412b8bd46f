package shoprank

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	password string

	embedder   Embedder
	dimensions int
	cacheQuery bool

	windowDays        int
	minUserSimilarity float64
	maxSimilarUsers   int
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithEmbedder sets the text embedding provider. Without it a built-in
// deterministic vectorizer is used, which needs no external service.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithDimensions sets the embedding dimension for the built-in vectorizer.
// Defaults to 300.
func WithDimensions(dim int) Option {
	return func(c *clientConfig) {
		c.dimensions = dim
	}
}

// WithQueryCache caches query embeddings in the store.
func WithQueryCache() Option {
	return func(c *clientConfig) {
		c.cacheQuery = true
	}
}

// WithActivityWindow sets how many days of activity feed the collaborative
// signal. Default: 30.
func WithActivityWindow(days int) Option {
	return func(c *clientConfig) {
		c.windowDays = days
	}
}

// WithSimilarUsers tunes the collaborative neighborhood: at most max users,
// each with cosine similarity of at least min. Defaults: 5 and 0.2.
func WithSimilarUsers(max int, min float64) Option {
	return func(c *clientConfig) {
		c.maxSimilarUsers = max
		c.minUserSimilarity = min
	}
}
