/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Seednode/bilsene/game"
	"github.com/google/uuid"
)

const (
	customKey = "custom_categories"
	cachedKey = "cached_categories"
)

//go:embed categories.json
var bundled []byte

var (
	ErrTitleRequired = errors.New("category title is required")
	ErrNoWords       = errors.New("category needs at least one word")
)

// Bundled returns the default categories shipped with the binary.
func Bundled() []game.Category {
	var cats []game.Category
	if err := json.Unmarshal(bundled, &cats); err != nil {
		panic("bundled categories: " + err.Error())
	}

	return cats
}

// Categories is the category store: user-created categories plus the
// default list, which is either the last good remote payload or the
// bundled set.
type Categories struct {
	kv *Store

	mu sync.Mutex
}

func NewCategories(kv *Store) *Categories {
	return &Categories{kv: kv}
}

// Load returns custom categories (most recently added first) followed by
// the defaults.
func (c *Categories) Load(ctx context.Context) ([]game.Category, error) {
	custom, err := c.Custom(ctx)
	if err != nil {
		return nil, err
	}

	defaults, err := c.Defaults(ctx)
	if err != nil {
		return nil, err
	}

	return append(custom, defaults...), nil
}

// Find looks a category up by id.
func (c *Categories) Find(ctx context.Context, id string) (game.Category, bool, error) {
	all, err := c.Load(ctx)
	if err != nil {
		return game.Category{}, false, err
	}

	i := slices.IndexFunc(all, func(cat game.Category) bool { return cat.ID == id })
	if i < 0 {
		return game.Category{}, false, nil
	}

	return all[i], true, nil
}

// Custom returns the user-created categories. An undecodable value is
// treated as empty.
func (c *Categories) Custom(ctx context.Context) ([]game.Category, error) {
	raw, ok, err := c.kv.Get(ctx, customKey)
	if err != nil {
		return nil, err
	}

	var cats []game.Category
	if ok && json.Unmarshal(raw, &cats) == nil {
		return cats, nil
	}

	return []game.Category{}, nil
}

// Defaults returns the cached remote categories, falling back to the
// bundled set when nothing usable is cached.
func (c *Categories) Defaults(ctx context.Context) ([]game.Category, error) {
	raw, ok, err := c.kv.Get(ctx, cachedKey)
	if err != nil {
		return nil, err
	}

	if ok {
		if cats, err := Decode(raw); err == nil {
			return cats, nil
		}
	}

	return Bundled(), nil
}

// Decode parses a JSON category list, dropping unplayable entries.
func Decode(raw []byte) ([]game.Category, error) {
	var cats []game.Category
	if err := json.Unmarshal(raw, &cats); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	cats = slices.DeleteFunc(cats, func(cat game.Category) bool {
		return cat.ID == "" || !cat.Playable()
	})
	if len(cats) == 0 {
		return nil, errors.New("decode categories: no playable categories")
	}

	return cats, nil
}

// ReplaceDefaults caches a freshly fetched category payload.
func (c *Categories) ReplaceDefaults(ctx context.Context, raw []byte) error {
	if _, err := Decode(raw); err != nil {
		return err
	}

	return c.kv.Put(ctx, cachedKey, raw)
}

// Add creates a custom category and stores it ahead of the existing ones.
func (c *Categories) Add(ctx context.Context, title string, words []string) (game.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return game.Category{}, ErrTitleRequired
	}

	clean := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			clean = append(clean, w)
		}
	}
	if len(clean) == 0 {
		return game.Category{}, ErrNoWords
	}

	cat := game.Category{
		ID:     uuid.NewString(),
		Title:  title,
		Words:  clean,
		Custom: true,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	custom, err := c.Custom(ctx)
	if err != nil {
		return game.Category{}, err
	}

	if err := c.saveCustom(ctx, append([]game.Category{cat}, custom...)); err != nil {
		return game.Category{}, err
	}

	return cat, nil
}

// Remove deletes a custom category. Unknown ids are ignored.
func (c *Categories) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	custom, err := c.Custom(ctx)
	if err != nil {
		return err
	}

	i := slices.IndexFunc(custom, func(cat game.Category) bool { return cat.ID == id })
	if i < 0 {
		return nil
	}

	return c.saveCustom(ctx, slices.Delete(custom, i, i+1))
}

func (c *Categories) saveCustom(ctx context.Context, cats []game.Category) error {
	encoded, err := json.Marshal(cats)
	if err != nil {
		return fmt.Errorf("encode custom categories: %w", err)
	}

	return c.kv.Put(ctx, customKey, encoded)
}
