package indexer

import (
	"log/slog"
	"math/rand/v2"

	"github.com/ic-timon/sparnn/distance"
)

const (
	// DefaultSearchBatchSize bounds the query rows scored per oracle call.
	DefaultSearchBatchSize = 1000
	// DefaultNumIndexes is the number of trees built by BuildEnsemble when 0 is given.
	DefaultNumIndexes = 2
	// minAutoBranchFactor is the floor of the automatic branch factor.
	minAutoBranchFactor = 100
)

// Config holds index parameters.
type Config struct {
	BranchFactor    int              // clusters per node; 0 picks max(floor(sqrt(n)), 100) at build time
	Metric          distance.Factory // distance oracle factory, default distance.Cosine
	Seed            uint64           // centroid sampling seed when Rand is nil; 0 draws a random seed
	Rand            *rand.Rand       // explicit random source, takes precedence over Seed
	SearchBatchSize int              // query rows per search batch, default 1000
	SearchWorkers   int              // when >1, search batches run concurrently on that many goroutines
	Logger          *slog.Logger     // nil discards logs
	Metrics         *Metrics         // nil disables metrics
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Metric:          distance.Cosine,
		SearchBatchSize: DefaultSearchBatchSize,
	}
}

// OrDefault returns DefaultConfig if c is nil, otherwise a normalized copy of c.
func (c *Config) OrDefault() *Config {
	if c == nil {
		c = DefaultConfig()
	}
	out := *c
	if out.Metric == nil {
		out.Metric = distance.Cosine
	}
	if out.SearchBatchSize <= 0 {
		out.SearchBatchSize = DefaultSearchBatchSize
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}
	return &out
}

// random returns the configured random source, creating one from Seed if needed.
func (c *Config) random() *rand.Rand {
	if c.Rand != nil {
		return c.Rand
	}
	seed := c.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
