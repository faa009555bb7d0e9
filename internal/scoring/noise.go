package scoring

import (
	"math/rand"
	"sync"

	"talentgate/internal/athlete"
)

// maxJitter bounds benchmark perturbation in either direction.
const maxJitter = 3

// Noise perturbs benchmark averages. Implementations must return values in
// [-3, 3]; the engine clamps anything outside.
type Noise interface {
	Jitter(testType athlete.TestType) int
}

// NoNoise leaves benchmark values at their base-table levels.
type NoNoise struct{}

func (NoNoise) Jitter(athlete.TestType) int { return 0 }

// SeededNoise draws uniform jitter from a seeded source, so a fixed seed
// reproduces the same sequence.
type SeededNoise struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSeededNoise(seed int64) *SeededNoise {
	return &SeededNoise{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // benchmark jitter, not security
}

func (n *SeededNoise) Jitter(athlete.TestType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rng.Intn(2*maxJitter+1) - maxJitter
}

func clampJitter(j int) int {
	return max(-maxJitter, min(maxJitter, j))
}
