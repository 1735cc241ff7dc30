/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"math/rand/v2"
	"time"
)

// SettleDelay is the pause after a correct/pass before the next word.
const SettleDelay = 800 * time.Millisecond

// Options configures an Engine. Scheduler is required; the rest may be nil.
type Options struct {
	Scheduler Scheduler
	Settings  SettingsSource
	Feedback  FeedbackSink
	Sensor    Sensor
	Rand      *rand.Rand
}

// Engine is the game state machine. It performs no locking: every method,
// and every callback delivered through the Scheduler, must run on a single
// goroutine.
type Engine struct {
	sched    Scheduler
	settings SettingsSource
	feedback FeedbackSink
	sensor   Sensor

	bag        *WordBag
	classifier Classifier
	timer      *RoundTimer

	st  state
	cue Settings

	settling   bool
	settleGen  uint64
	settleTask Task

	listeners map[int]func(Snapshot)
	nextID    int
}

func NewEngine(opts Options) *Engine {
	settings := opts.Settings
	if settings == nil {
		settings = StaticSettings(DefaultSettings())
	}

	e := &Engine{
		sched:     opts.Scheduler,
		settings:  settings,
		feedback:  opts.Feedback,
		sensor:    opts.Sensor,
		bag:       NewWordBag(opts.Rand),
		timer:     NewRoundTimer(opts.Scheduler),
		listeners: make(map[int]func(Snapshot)),
		st: state{
			phase: PhaseMenu,
			team:  TeamSolo,
		},
	}

	e.timer.OnTick = e.onTimerTick
	e.timer.OnExpire = e.onTimerExpired

	return e
}

// Subscribe registers fn to be called with a fresh snapshot after every
// state change. The returned function removes the subscription.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn

	return func() {
		delete(e.listeners, id)
	}
}

func (e *Engine) Snapshot() Snapshot {
	return e.st.snapshot()
}

func (e *Engine) Phase() Phase {
	return e.st.phase
}

// Outcome reports the winner once a team game has reached the results.
func (e *Engine) Outcome() Outcome {
	return e.Snapshot().Outcome()
}

// GestureLocked reports whether the classifier is waiting for a neutral sample.
func (e *Engine) GestureLocked() bool {
	return e.classifier.Locked()
}

func (e *Engine) changed() {
	if len(e.listeners) == 0 {
		return
	}

	snap := e.st.snapshot()
	for _, fn := range e.listeners {
		fn(snap)
	}
}

// SetTeamMode toggles two-team play. It may only change between games.
func (e *Engine) SetTeamMode(on bool) error {
	switch e.st.phase {
	case PhaseMenu, PhaseResults:
	default:
		return ErrInvalidPhase
	}

	if e.st.teamMode == on {
		return nil
	}

	e.st.teamMode = on
	e.changed()

	return nil
}

// StartGame begins a new game with category and serves the first turn.
func (e *Engine) StartGame(c Category) error {
	if !c.Playable() {
		return ErrUnplayableCategory
	}

	e.halt()

	c = c.Clone()
	e.st.category = &c
	if e.st.teamMode {
		e.st.team = TeamA
		e.st.teamAScore = 0
		e.st.teamBScore = 0
	} else {
		e.st.team = TeamSolo
	}

	e.startTurn()

	return nil
}

// StartTurn begins the next team's turn from the intermission screen.
func (e *Engine) StartTurn() error {
	switch {
	case e.st.phase == PhasePlaying:
		return ErrTurnInProgress
	case e.st.phase != PhaseIntermission:
		return ErrInvalidPhase
	case e.st.category == nil:
		return ErrNoCategory
	}

	e.startTurn()

	return nil
}

func (e *Engine) startTurn() {
	cat := *e.st.category

	settings := e.settings.Settings()
	if settings.Validate() != nil {
		settings.RoundSeconds = DefaultRoundSeconds
	}
	e.cue = settings

	e.bag.Prepare(cat)

	e.st.history = nil
	e.st.score = 0
	e.st.roundSeconds = settings.RoundSeconds
	e.st.remaining = settings.RoundSeconds
	e.st.phase = PhasePlaying
	e.classifier.Reset()

	if !e.nextWord() {
		return
	}

	if e.sensor != nil {
		e.sensor.Start()
	}
	e.timer.Start(settings.RoundSeconds)

	e.changed()
}

// nextWord serves the next word, rebuilding the bag when the queue is dry.
// It reports false when the category turned out to have nothing to serve,
// in which case the turn has been ended.
func (e *Engine) nextWord() bool {
	word, err := e.bag.Draw()
	if err != nil {
		cat := *e.st.category
		e.bag.Discard(cat.ID)
		e.bag.Prepare(cat)

		word, err = e.bag.Draw()
		if err != nil {
			e.endTurn()
			return false
		}
	}

	e.bag.Consume(word)
	e.st.word = word
	e.st.mood = MoodReady
	// The classifier is not re-armed here; only a neutral sample unlocks it.
	e.settling = false

	return true
}

// OnTilt feeds one sensor sample to the gesture classifier.
func (e *Engine) OnTilt(tilt float64) {
	if e.st.phase != PhasePlaying {
		return
	}

	wasLocked := e.classifier.Locked()
	sig := e.classifier.Classify(tilt)

	if e.settling {
		return
	}

	switch sig {
	case SignalCorrect:
		e.resolve(true)
	case SignalPass:
		e.resolve(false)
	default:
		if wasLocked && !e.classifier.Locked() && e.st.mood != MoodReady {
			e.st.mood = MoodReady
			e.changed()
		}
	}
}

func (e *Engine) resolve(correct bool) {
	e.st.history = append(e.st.history, RoundResult{Word: e.st.word, Correct: correct})

	kind := FeedbackPass
	e.st.mood = MoodPass
	if correct {
		kind = FeedbackCorrect
		e.st.mood = MoodCorrect
		e.st.score++
	}

	e.notify(kind)
	e.scheduleNextWord()
	e.changed()
}

func (e *Engine) scheduleNextWord() {
	e.cancelSettle()

	e.settling = true
	gen := e.settleGen
	e.settleTask = e.sched.AfterFunc(SettleDelay, func() {
		e.settled(gen)
	})
}

func (e *Engine) settled(gen uint64) {
	// A late firing after the turn closed must not resurrect it.
	if gen != e.settleGen || e.st.phase != PhasePlaying {
		return
	}

	e.settleTask = nil
	if e.nextWord() {
		e.changed()
	}
}

func (e *Engine) cancelSettle() {
	e.settleGen++
	e.settling = false
	if e.settleTask != nil {
		e.settleTask.Stop()
		e.settleTask = nil
	}
}

func (e *Engine) onTimerTick(remaining int) {
	if e.st.phase != PhasePlaying {
		return
	}

	e.st.remaining = remaining
	e.changed()
}

func (e *Engine) onTimerExpired() {
	e.EndTurn()
}

// EndTurn closes the current turn, either from the timer or a manual stop.
// Outside PhasePlaying it only makes sure the sensor and timer are stopped.
func (e *Engine) EndTurn() {
	e.endTurn()
}

func (e *Engine) endTurn() {
	if e.st.phase != PhasePlaying {
		e.halt()
		return
	}

	e.halt()
	e.notify(FeedbackEnded)

	e.st.phase = PhaseResults
	if e.st.teamMode {
		switch e.st.team {
		case TeamA:
			e.st.teamAScore = e.st.score
			e.st.team = TeamB
			e.st.phase = PhaseIntermission
		case TeamB:
			e.st.teamBScore = e.st.score
		}
	}

	e.changed()
}

// ReturnToMenu goes back to the menu from any phase. Scores and history are
// left for display until the next StartGame.
func (e *Engine) ReturnToMenu() {
	e.halt()

	if e.st.phase == PhaseMenu {
		return
	}

	e.st.phase = PhaseMenu
	e.st.mood = MoodNeutral
	e.changed()
}

// halt synchronously stops everything that can deliver input to a turn.
func (e *Engine) halt() {
	if e.sensor != nil && e.st.phase == PhasePlaying {
		e.sensor.Stop()
	}
	e.timer.Stop()
	e.cancelSettle()
}

func (e *Engine) notify(kind FeedbackKind) {
	if e.feedback == nil || (!e.cue.Sound && !e.cue.Haptics) {
		return
	}

	e.feedback.Notify(Cue{Kind: kind, Sound: e.cue.Sound, Haptics: e.cue.Haptics})
}
