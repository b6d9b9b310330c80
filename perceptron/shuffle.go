package perceptron

import (
	"math/rand"

	"github.com/seehuhn/mt19937"
)

// permuter produces a fresh uniform permutation of instance indices per epoch.
type permuter struct {
	rng *rand.Rand
}

func newPermuter(seed int64) *permuter {
	src := mt19937.New()
	src.Seed(seed)
	return &permuter{rng: rand.New(src)}
}

// shuffle overwrites perm with a random permutation of [0, len(perm)).
func (p *permuter) shuffle(perm []int) {
	for i := range perm {
		perm[i] = i
	}
	p.rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
}
