/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "slices"

// Category is a titled list of words to guess.
type Category struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Words  []string `json:"words"`
	Color  string   `json:"color,omitempty"`
	Custom bool     `json:"isCustom,omitempty"`
}

// Playable reports whether the category has at least one word.
func (c Category) Playable() bool {
	return len(c.Words) > 0
}

// Clone returns a copy that shares no memory with c.
func (c Category) Clone() Category {
	c.Words = slices.Clone(c.Words)
	return c
}

// RoundResult records how a single word was resolved during a turn.
type RoundResult struct {
	Word    string `json:"word"`
	Correct bool   `json:"correct"`
}
