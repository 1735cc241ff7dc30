/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"math/rand/v2"
	"slices"
)

// lowWater is the pool size below which Prepare tops the pool up.
const lowWater = 5

// WordBag keeps one shuffled pool per category so words are not repeated
// until the pool runs low.
//
// Draw serves from a local copy of the active pool (the queue), while Consume
// removes served words from the stored pool. The two are kept separate so a
// refill of the stored pool never moves a word that has already been dealt.
type WordBag struct {
	rng   *rand.Rand
	pools map[string][]string

	activeID string
	queue    []string
}

// NewWordBag returns an empty bag. A nil rng seeds one from crypto/rand.
func NewWordBag(rng *rand.Rand) *WordBag {
	if rng == nil {
		rng = newRand()
	}

	return &WordBag{
		rng:   rng,
		pools: make(map[string][]string),
	}
}

func (b *WordBag) shuffled(words []string) []string {
	out := slices.Clone(words)
	b.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	return out
}

// Prepare makes sure a pool exists for the category, tops it up if it has
// fallen below the low-water mark, and makes it the active draw queue.
func (b *WordBag) Prepare(c Category) {
	pool, ok := b.pools[c.ID]
	if !ok {
		pool = b.shuffled(c.Words)
	}

	if len(pool) < lowWater {
		present := make(map[string]struct{}, len(pool))
		for _, w := range pool {
			present[w] = struct{}{}
		}

		for _, w := range b.shuffled(c.Words) {
			if _, dup := present[w]; dup {
				continue
			}
			present[w] = struct{}{}
			pool = append(pool, w)
		}
	}

	b.pools[c.ID] = pool
	b.activeID = c.ID
	b.queue = slices.Clone(pool)
}

// Draw removes and returns the next word of the active queue.
func (b *WordBag) Draw() (string, error) {
	if len(b.queue) == 0 {
		return "", ErrEmptyBag
	}

	w := b.queue[0]
	b.queue = b.queue[1:]

	return w, nil
}

// Consume removes word from the stored pool of the active category. When the
// word is not present, the pool's first entry is dropped instead.
func (b *WordBag) Consume(word string) {
	pool, ok := b.pools[b.activeID]
	if !ok || len(pool) == 0 {
		return
	}

	if i := slices.Index(pool, word); i >= 0 {
		pool = slices.Delete(pool, i, i+1)
	} else {
		pool = pool[1:]
	}

	b.pools[b.activeID] = pool
}

// Discard forgets the stored pool for a category, forcing a full reshuffle
// on the next Prepare.
func (b *WordBag) Discard(categoryID string) {
	delete(b.pools, categoryID)
	if b.activeID == categoryID {
		b.queue = nil
	}
}

// Remaining returns a copy of the stored pool for a category.
func (b *WordBag) Remaining(categoryID string) []string {
	return slices.Clone(b.pools[categoryID])
}

// Queued returns the number of words left in the active queue.
func (b *WordBag) Queued() int {
	return len(b.queue)
}
