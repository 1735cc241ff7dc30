/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"fmt"
	"slices"
)

// RoundLengths lists the accepted round lengths in seconds.
var RoundLengths = []int{30, 60, 90, 120}

const DefaultRoundSeconds = 60

// Settings are the player preferences read at the start of every turn.
type Settings struct {
	RoundSeconds int  `json:"round_seconds"`
	Sound        bool `json:"sound"`
	Haptics      bool `json:"haptics"`
}

func DefaultSettings() Settings {
	return Settings{
		RoundSeconds: DefaultRoundSeconds,
		Sound:        true,
		Haptics:      true,
	}
}

func (s Settings) Validate() error {
	if !slices.Contains(RoundLengths, s.RoundSeconds) {
		return fmt.Errorf("invalid round length (must be one of %v): %d", RoundLengths, s.RoundSeconds)
	}
	return nil
}

// SettingsSource supplies the current settings.
type SettingsSource interface {
	Settings() Settings
}

// StaticSettings is a SettingsSource that never changes.
type StaticSettings Settings

func (s StaticSettings) Settings() Settings {
	return Settings(s)
}

// FeedbackKind names a feedback cue.
type FeedbackKind string

const (
	FeedbackCorrect FeedbackKind = "correct"
	FeedbackPass    FeedbackKind = "pass"
	FeedbackEnded   FeedbackKind = "ended"
)

// Cue is a fire-and-forget request for haptic and/or audible feedback.
type Cue struct {
	Kind    FeedbackKind `json:"kind"`
	Sound   bool         `json:"sound"`
	Haptics bool         `json:"haptics"`
}

// FeedbackSink receives cues. Notify must not block.
type FeedbackSink interface {
	Notify(cue Cue)
}

// Sensor is the tilt sample source. The engine starts it when a turn begins
// and stops it on every transition out of PhasePlaying.
type Sensor interface {
	Start()
	Stop()
}
