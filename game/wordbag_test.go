package game

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestWordBagPrepareShufflesFullList(t *testing.T) {
	bag := NewWordBag(seeded())
	cat := Category{ID: "animals", Words: []string{"cat", "dog", "cow", "owl", "bee", "ant", "elk"}}

	bag.Prepare(cat)

	got := bag.Remaining("animals")
	slices.Sort(got)
	want := slices.Clone(cat.Words)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("expected pool to be a permutation of %v, got %v", want, got)
	}
	if bag.Queued() != len(cat.Words) {
		t.Fatalf("expected %d queued words, got %d", len(cat.Words), bag.Queued())
	}
}

func TestWordBagDrawConsumeUntilExhausted(t *testing.T) {
	bag := NewWordBag(seeded())
	cat := Category{ID: "c", Words: []string{"a", "b", "c"}}

	bag.Prepare(cat)

	seen := map[string]bool{}
	for range cat.Words {
		w, err := bag.Draw()
		if err != nil {
			t.Fatalf("unexpected draw error: %v", err)
		}
		if seen[w] {
			t.Fatalf("word %q served twice before exhaustion", w)
		}
		seen[w] = true
		bag.Consume(w)
	}

	if _, err := bag.Draw(); !errors.Is(err, ErrEmptyBag) {
		t.Fatalf("expected ErrEmptyBag, got %v", err)
	}
	if n := len(bag.Remaining("c")); n != 0 {
		t.Fatalf("expected stored pool drained, got %d", n)
	}

	bag.Discard("c")
	bag.Prepare(cat)
	if _, err := bag.Draw(); err != nil {
		t.Fatalf("expected rebuild to succeed, got %v", err)
	}
}

func TestWordBagRefillSkipsWordsAlreadyPresent(t *testing.T) {
	bag := NewWordBag(seeded())
	words := []string{"w1", "w2", "w3", "w4", "w5", "w6", "w7"}
	cat := Category{ID: "c", Words: words}

	bag.Prepare(cat)
	for range 4 {
		w, _ := bag.Draw()
		bag.Consume(w)
	}
	left := bag.Remaining("c")
	if len(left) != 3 {
		t.Fatalf("expected 3 left, got %d", len(left))
	}

	bag.Prepare(cat)

	pool := bag.Remaining("c")
	if len(pool) != len(words) {
		t.Fatalf("expected refill to full list without duplicates, got %v", pool)
	}
	if !slices.Equal(pool[:3], left) {
		t.Fatalf("expected remaining words to stay at the front, got %v want prefix %v", pool, left)
	}
	counts := map[string]int{}
	for _, w := range pool {
		counts[w]++
	}
	for w, n := range counts {
		if n != 1 {
			t.Fatalf("word %q appears %d times", w, n)
		}
	}
}

func TestWordBagLargePoolNotRefilled(t *testing.T) {
	bag := NewWordBag(seeded())
	cat := Category{ID: "c", Words: []string{"1", "2", "3", "4", "5", "6", "7", "8"}}

	bag.Prepare(cat)
	w, _ := bag.Draw()
	bag.Consume(w)

	bag.Prepare(cat)
	if n := len(bag.Remaining("c")); n != 7 {
		t.Fatalf("expected pool of 7 above low-water mark, got %d", n)
	}
	if slices.Contains(bag.Remaining("c"), w) {
		t.Fatalf("served word %q came back before the pool ran low", w)
	}
}

func TestWordBagConsumeUnknownDropsFirst(t *testing.T) {
	bag := NewWordBag(seeded())
	bag.Prepare(Category{ID: "c", Words: []string{"x", "y"}})
	first := bag.Remaining("c")[0]

	bag.Consume("not-there")

	pool := bag.Remaining("c")
	if len(pool) != 1 || pool[0] == first {
		t.Fatalf("expected first entry %q dropped, got %v", first, pool)
	}
}

func TestWordBagEmptyCategory(t *testing.T) {
	bag := NewWordBag(seeded())
	bag.Prepare(Category{ID: "empty"})

	if _, err := bag.Draw(); !errors.Is(err, ErrEmptyBag) {
		t.Fatalf("expected ErrEmptyBag, got %v", err)
	}
}

func TestWordBagTinyCategoryNeverStarves(t *testing.T) {
	bag := NewWordBag(seeded())
	cat := Category{ID: "one", Words: []string{"solo"}}

	for i := range 10 {
		bag.Prepare(cat)
		w, err := bag.Draw()
		if err != nil {
			t.Fatalf("draw %d: unexpected error %v", i, err)
		}
		if w != "solo" {
			t.Fatalf("draw %d: got %q", i, w)
		}
		bag.Consume(w)
	}
}
