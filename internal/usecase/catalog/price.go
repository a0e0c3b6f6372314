package catalog

import (
	"math/rand/v2"
	"time"
)

// Default synthetic price range, inclusive.
const (
	DefaultPriceMin = 200
	DefaultPriceMax = 1000
)

// PriceGenerator draws uniform integer prices from [min, max].
// Not safe for concurrent use; the catalog build draws sequentially.
type PriceGenerator struct {
	rng      *rand.Rand
	min, max int
}

// NewPriceGenerator creates a generator. seed == 0 seeds from the clock,
// any other seed makes the sequence reproducible.
func NewPriceGenerator(seed uint64, minPrice, maxPrice int) *PriceGenerator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // non-negative clock value
	}
	if maxPrice < minPrice {
		minPrice, maxPrice = maxPrice, minPrice
	}
	return &PriceGenerator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // synthetic display price
		min: minPrice,
		max: maxPrice,
	}
}

// Price returns the next price.
func (g *PriceGenerator) Price() int {
	return g.min + g.rng.IntN(g.max-g.min+1)
}
