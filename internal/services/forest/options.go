package forest

import "runtime"

// Config holds the forest hyperparameters.
type Config struct {
	NEstimators    int
	MinSamplesLeaf int
	// MaxFeatures is the number of candidate features per split; 0 means floor(sqrt(n_features)).
	MaxFeatures int
	Seed        int64
	// Jobs bounds the number of trees built concurrently; 0 uses every CPU.
	Jobs int
}

type Option func(*Config)

func WithEstimators(n int) Option {
	return func(c *Config) { c.NEstimators = n }
}

func WithMinSamplesLeaf(n int) Option {
	return func(c *Config) { c.MinSamplesLeaf = n }
}

func WithMaxFeatures(n int) Option {
	return func(c *Config) { c.MaxFeatures = n }
}

func WithSeed(seed int64) Option {
	return func(c *Config) { c.Seed = seed }
}

func WithJobs(n int) Option {
	return func(c *Config) { c.Jobs = n }
}

func defaultConfig() Config {
	return Config{
		NEstimators:    400,
		MinSamplesLeaf: 5,
		Seed:           42,
	}
}

func (c Config) workers() int {
	cpus := runtime.NumCPU()
	n := c.Jobs
	if n <= 0 || n > cpus {
		n = cpus
	}
	if n > c.NEstimators {
		n = c.NEstimators
	}
	if n < 1 {
		n = 1
	}
	return n
}
