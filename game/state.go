/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"fmt"
	"slices"
)

// Phase is the screen the engine is currently on.
type Phase int

const (
	PhaseMenu Phase = iota
	PhasePlaying
	PhaseIntermission
	PhaseResults
)

var phaseNames = [...]string{"menu", "playing", "intermission", "results"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Mood is the transitional display state of the word card.
type Mood int

const (
	MoodNeutral Mood = iota
	MoodReady
	MoodCorrect
	MoodPass
)

var moodNames = [...]string{"neutral", "ready", "correct", "pass"}

func (m Mood) String() string {
	if m < 0 || int(m) >= len(moodNames) {
		return fmt.Sprintf("mood(%d)", int(m))
	}
	return moodNames[m]
}

func (m Mood) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Team identifies who is playing the current turn.
type Team string

const (
	TeamSolo Team = "solo"
	TeamA    Team = "A"
	TeamB    Team = "B"
)

// Outcome is the result of a finished team game.
type Outcome string

const (
	OutcomeNone  Outcome = ""
	OutcomeTeamA Outcome = "team_a"
	OutcomeTeamB Outcome = "team_b"
	OutcomeDraw  Outcome = "draw"
)

// Winner compares the two team scores.
func Winner(a, b int) Outcome {
	switch {
	case a > b:
		return OutcomeTeamA
	case b > a:
		return OutcomeTeamB
	default:
		return OutcomeDraw
	}
}

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	Phase         Phase         `json:"phase"`
	CategoryID    string        `json:"category_id,omitempty"`
	CategoryTitle string        `json:"category_title,omitempty"`
	Word          string        `json:"word,omitempty"`
	Mood          Mood          `json:"mood"`
	Remaining     int           `json:"remaining"`
	RoundSeconds  int           `json:"round_seconds"`
	Score         int           `json:"score"`
	TeamMode      bool          `json:"team_mode"`
	Team          Team          `json:"team"`
	TeamAScore    int           `json:"team_a_score"`
	TeamBScore    int           `json:"team_b_score"`
	History       []RoundResult `json:"history"`
}

// Outcome is only meaningful on the results screen of a team game.
func (s Snapshot) Outcome() Outcome {
	if s.Phase != PhaseResults || !s.TeamMode || s.Team != TeamB {
		return OutcomeNone
	}
	return Winner(s.TeamAScore, s.TeamBScore)
}

type state struct {
	phase        Phase
	category     *Category
	word         string
	mood         Mood
	remaining    int
	roundSeconds int
	score        int
	teamMode     bool
	team         Team
	teamAScore   int
	teamBScore   int
	history      []RoundResult
}

func (s *state) snapshot() Snapshot {
	snap := Snapshot{
		Phase:        s.phase,
		Word:         s.word,
		Mood:         s.mood,
		Remaining:    s.remaining,
		RoundSeconds: s.roundSeconds,
		Score:        s.score,
		TeamMode:     s.teamMode,
		Team:         s.team,
		TeamAScore:   s.teamAScore,
		TeamBScore:   s.teamBScore,
		History:      slices.Clone(s.history),
	}
	if snap.History == nil {
		snap.History = []RoundResult{}
	}
	if s.category != nil {
		snap.CategoryID = s.category.ID
		snap.CategoryTitle = s.category.Title
	}

	return snap
}
