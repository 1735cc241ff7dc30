/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

// Signal is a discrete gesture recognised from the tilt stream.
type Signal int

const (
	SignalNone Signal = iota
	SignalCorrect
	SignalPass
)

func (s Signal) String() string {
	switch s {
	case SignalCorrect:
		return "correct"
	case SignalPass:
		return "pass"
	default:
		return "none"
	}
}

const (
	fireThreshold = 0.8
	neutralBand   = 0.2
)

// Classifier turns tilt samples in [-1, 1] into Correct/Pass signals. After
// firing it stays locked until a sample falls back inside the neutral band,
// so one physical gesture registers exactly once.
type Classifier struct {
	locked bool
}

// Classify consumes one sample and reports the signal it produced, if any.
func (c *Classifier) Classify(tilt float64) Signal {
	if c.locked {
		if tilt > -neutralBand && tilt < neutralBand {
			c.locked = false
		}

		return SignalNone
	}

	switch {
	case tilt > fireThreshold:
		c.locked = true
		return SignalCorrect
	case tilt < -fireThreshold:
		c.locked = true
		return SignalPass
	}

	return SignalNone
}

// Locked reports whether the classifier is waiting for a return to neutral.
func (c *Classifier) Locked() bool {
	return c.locked
}

// Reset re-arms the classifier.
func (c *Classifier) Reset() {
	c.locked = false
}
