package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Seednode/bilsene/game"
)

func TestBundledCategoriesArePlayable(t *testing.T) {
	cats := Bundled()
	if len(cats) == 0 {
		t.Fatal("expected bundled categories")
	}
	for _, cat := range cats {
		if cat.ID == "" || cat.Title == "" || !cat.Playable() {
			t.Fatalf("bundled category not playable: %+v", cat)
		}
	}
}

func TestCategoriesLoadDefaultsWhenEmpty(t *testing.T) {
	ctx := context.Background()
	cats := NewCategories(openTestStore(t))

	all, err := cats.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(all) != len(Bundled()) {
		t.Fatalf("expected bundled defaults, got %d categories", len(all))
	}
}

func TestCategoriesAddOrdersMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	cats := NewCategories(openTestStore(t))

	first, err := cats.Add(ctx, "  Our Class ", []string{"Ada", "  ", "Ben "})
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	second, err := cats.Add(ctx, "Office", []string{"Stapler"})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}

	if first.Title != "Our Class" || len(first.Words) != 2 || first.Words[1] != "Ben" {
		t.Fatalf("expected trimmed category, got %+v", first)
	}
	if !first.Custom || first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct custom ids, got %q and %q", first.ID, second.ID)
	}

	all, err := cats.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("expected most recent first, got %q, %q", all[0].Title, all[1].Title)
	}
	if len(all) != 2+len(Bundled()) {
		t.Fatalf("expected customs plus defaults, got %d", len(all))
	}
}

func TestCategoriesAddValidation(t *testing.T) {
	ctx := context.Background()
	cats := NewCategories(openTestStore(t))

	if _, err := cats.Add(ctx, " ", []string{"x"}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if _, err := cats.Add(ctx, "Empty", []string{" ", ""}); !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
}

func TestCategoriesRemove(t *testing.T) {
	ctx := context.Background()
	cats := NewCategories(openTestStore(t))

	keep, _ := cats.Add(ctx, "Keep", []string{"a"})
	drop, _ := cats.Add(ctx, "Drop", []string{"b"})

	if err := cats.Remove(ctx, drop.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := cats.Remove(ctx, "unknown"); err != nil {
		t.Fatalf("remove unknown: %v", err)
	}

	custom, err := cats.Custom(ctx)
	if err != nil {
		t.Fatalf("custom: %v", err)
	}
	if len(custom) != 1 || custom[0].ID != keep.ID {
		t.Fatalf("expected only %q left, got %+v", keep.Title, custom)
	}

	if _, ok, _ := cats.Find(ctx, drop.ID); ok {
		t.Fatal("expected removed category to be gone")
	}
	if found, ok, _ := cats.Find(ctx, keep.ID); !ok || found.Title != "Keep" {
		t.Fatalf("expected to find kept category, got %+v ok=%v", found, ok)
	}
}

func TestCategoriesReplaceDefaults(t *testing.T) {
	ctx := context.Background()
	cats := NewCategories(openTestStore(t))

	payload := []byte(`[{"id":"remote","title":"Remote","words":["x","y"]},{"id":"hollow","title":"Hollow","words":[]}]`)
	if err := cats.ReplaceDefaults(ctx, payload); err != nil {
		t.Fatalf("replace defaults: %v", err)
	}

	defaults, err := cats.Defaults(ctx)
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if len(defaults) != 1 || defaults[0].ID != "remote" {
		t.Fatalf("expected cached remote category only, got %+v", defaults)
	}

	if err := cats.ReplaceDefaults(ctx, []byte(`[]`)); err == nil {
		t.Fatal("expected empty payload to be rejected")
	}
	if defaults, _ := cats.Defaults(ctx); defaults[0].ID != "remote" {
		t.Fatal("rejected payload replaced the cache")
	}
}

func TestCategoriesCorruptValuesFallBack(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	cats := NewCategories(store)

	_ = store.Put(ctx, cachedKey, []byte("{not json"))
	_ = store.Put(ctx, customKey, []byte("also not json"))

	all, err := cats.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(all) != len(Bundled()) || all[0].ID != Bundled()[0].ID {
		t.Fatalf("expected fallback to bundled defaults, got %d categories", len(all))
	}
}

func TestSettingsStore(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	fallback := game.Settings{RoundSeconds: 90, Sound: true}
	settings := NewSettingsStore(store, fallback)

	got, err := settings.Load(ctx)
	if err != nil || got != fallback {
		t.Fatalf("expected fallback, got %+v err=%v", got, err)
	}

	want := game.Settings{RoundSeconds: 30, Haptics: true}
	if err := settings.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, _ := settings.Load(ctx); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if err := settings.Save(ctx, game.Settings{RoundSeconds: 45}); err == nil {
		t.Fatal("expected invalid round length to be rejected")
	}

	_ = store.Put(ctx, settingsKey, []byte(`{"round_seconds":13}`))
	if got, _ := settings.Load(ctx); got != fallback {
		t.Fatalf("expected fallback for invalid stored settings, got %+v", got)
	}
}
