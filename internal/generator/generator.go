// Package generator shuffles word pools and builds quiz questions.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/wordmonster/internal/model"
)

// DefaultOptionCount is the number of options offered on choice questions.
const DefaultOptionCount = 4

// Rand is the random source used by the generator. *rand.Rand satisfies it.
type Rand interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

// Generator produces randomized pools, question types and option sets.
type Generator struct {
	rnd Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a Generator with a reproducible sequence.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// NewWithRand returns a Generator drawing from r.
func NewWithRand(r Rand) *Generator {
	return &Generator{rnd: r}
}

// Shuffle returns a uniformly random permutation of words. The input is not modified.
func (g *Generator) Shuffle(words []model.WordPair) []model.WordPair {
	out := make([]model.WordPair, len(words))
	copy(out, words)
	for i := len(out) - 1; i > 0; i-- {
		j := g.rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ChooseType picks a question type uniformly at random.
func (g *Generator) ChooseType() model.QuestionType {
	return model.QuestionTypes[g.rnd.Intn(len(model.QuestionTypes))]
}

// BuildOptions returns up to count options for a choice question: correct plus
// distractors whose English and Chinese both differ from correct, in random order.
// Fewer than count options are returned when the pool cannot supply enough distractors.
func (g *Generator) BuildOptions(correct model.WordPair, pool []model.WordPair, count int) []model.WordPair {
	if count < 1 {
		count = 1
	}
	candidates := make([]model.WordPair, 0, len(pool))
	for _, w := range pool {
		if w.EN != correct.EN && w.ZH != correct.ZH {
			candidates = append(candidates, w)
		}
	}
	candidates = g.Shuffle(candidates)
	if len(candidates) > count-1 {
		candidates = candidates[:count-1]
	}
	options := append(candidates, correct)
	return g.Shuffle(options)
}
