/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "errors"

var (
	// ErrUnplayableCategory is returned when a category has no words.
	ErrUnplayableCategory = errors.New("category has no words")

	// ErrEmptyBag is returned by WordBag.Draw when the active queue is empty.
	// The engine always recovers from it with a forced rebuild.
	ErrEmptyBag = errors.New("word bag is empty")

	ErrNoCategory     = errors.New("no category selected")
	ErrTurnInProgress = errors.New("a turn is already in progress")
	ErrInvalidPhase   = errors.New("operation not allowed in current phase")
)
