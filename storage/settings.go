/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Seednode/bilsene/game"
)

const settingsKey = "settings"

// SettingsStore persists player settings on top of a fallback.
type SettingsStore struct {
	kv       *Store
	fallback game.Settings
}

func NewSettingsStore(kv *Store, fallback game.Settings) *SettingsStore {
	return &SettingsStore{kv: kv, fallback: fallback}
}

// Load returns the stored settings, or the fallback if none are stored or
// the stored value is unusable.
func (s *SettingsStore) Load(ctx context.Context) (game.Settings, error) {
	raw, ok, err := s.kv.Get(ctx, settingsKey)
	if err != nil {
		return s.fallback, err
	}
	if !ok {
		return s.fallback, nil
	}

	var settings game.Settings
	if err := json.Unmarshal(raw, &settings); err != nil || settings.Validate() != nil {
		return s.fallback, nil
	}

	return settings, nil
}

func (s *SettingsStore) Save(ctx context.Context, settings game.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	encoded, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	return s.kv.Put(ctx, settingsKey, encoded)
}
