// bilsene game sessions
//
// Each session lives at $path/:gameid and owns exactly one game engine. The
// phone held to a player's forehead streams tilt samples over the websocket;
// any other connected browser (a TV, a laptop) mirrors the same state.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - One hub goroutine per session serializes commands, tilt samples and timers
// - Solo and two-team play, with an intermission between team turns
// - Custom categories and settings are persisted and shared across sessions
// - Sessions auto-reaped after configurable idle timeout
// - In-browser QR button to hand the session over to a phone, backed by go-qrcode

package main

import (
	"context"
	"crypto/rand"
	_ "embed"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/bilsene/game"
	"github.com/Seednode/bilsene/storage"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type ClientMessage struct {
	Type         string   `json:"type"`                    // "start_game", "start_turn", "end_turn", "menu", "tilt", "team_mode", "add_category", "remove_category", "settings"
	CategoryID   string   `json:"category_id,omitempty"`   // start_game / remove_category
	TeamMode     *bool    `json:"team_mode,omitempty"`     // start_game / team_mode
	Value        float64  `json:"value,omitempty"`         // tilt
	Title        string   `json:"title,omitempty"`         // add_category
	Words        []string `json:"words,omitempty"`         // add_category
	RoundSeconds int      `json:"round_seconds,omitempty"` // settings
	Sound        *bool    `json:"sound,omitempty"`         // settings
	Haptics      *bool    `json:"haptics,omitempty"`       // settings
}

// StateMessage carries the engine snapshot after every change.
type StateMessage struct {
	Type string `json:"type"` // "state"
	game.Snapshot
	Winner game.Outcome `json:"outcome,omitempty"`
}

// CategoriesMessage lists every playable category, custom ones first.
type CategoriesMessage struct {
	Type       string          `json:"type"` // "categories"
	Categories []game.Category `json:"categories"`
}

// SettingsMessage reports the persisted settings.
type SettingsMessage struct {
	Type string `json:"type"` // "settings"
	game.Settings
}

// FeedbackMessage asks clients to play a sound and/or vibrate.
type FeedbackMessage struct {
	Type string `json:"type"` // "feedback"
	game.Cue
}

// SensorMessage tells clients whether tilt samples are wanted.
type SensorMessage struct {
	Type   string `json:"type"` // "sensor"
	Active bool   `json:"active"`
}

// SimpleMessage is for generic notifications ("error", etc.)
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
}

type request struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id  string
	cfg *Config

	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	requests chan request
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once

	mu sync.RWMutex

	createdAt  time.Time
	lastActive time.Time

	categories *storage.Categories
	settings   *storage.SettingsStore

	engine   *game.Engine
	sensorOn bool
}

func newHub(cfg *Config, gameID string, categories *storage.Categories, settings *storage.SettingsStore) *Hub {
	now := time.Now()
	h := &Hub{
		id:         gameID,
		cfg:        cfg,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		requests:   make(chan request, 32),
		tasks:      make(chan func(), 8),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
		categories: categories,
		settings:   settings,
	}

	h.engine = game.NewEngine(game.Options{
		Scheduler: h,
		Settings:  hubSettings{h},
		Feedback:  hubFeedback{h},
		Sensor:    hubSensor{h},
	})
	h.engine.Subscribe(h.broadcastStateLocked)

	return h
}

// AfterFunc schedules f to run on the hub goroutine.
func (h *Hub) AfterFunc(d time.Duration, f func()) game.Task {
	return time.AfterFunc(d, func() {
		select {
		case h.tasks <- f:
		case <-h.done:
		}
	})
}

// hubSettings reads the persisted settings when a turn starts.
type hubSettings struct{ h *Hub }

func (s hubSettings) Settings() game.Settings {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	settings, err := s.h.settings.Load(ctx)
	if err != nil {
		errorf("loading settings for %s: %v", s.h.id, err)
	}

	return settings
}

type hubFeedback struct{ h *Hub }

func (f hubFeedback) Notify(cue game.Cue) {
	f.h.broadcastLocked(FeedbackMessage{Type: "feedback", Cue: cue})
}

type hubSensor struct{ h *Hub }

func (s hubSensor) Start() { s.h.setSensorLocked(true) }

func (s hubSensor) Stop() { s.h.setSensorLocked(false) }

func (h *Hub) setSensorLocked(active bool) {
	if h.sensorOn == active {
		return
	}
	h.sensorOn = active
	h.broadcastLocked(SensorMessage{Type: "sensor", Active: active})
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			h.engine.ReturnToMenu()
			h.mu.Unlock()

			return

		case c := <-h.register:
			h.mu.Lock()
			h.lastActive = time.Now()
			h.clients[c] = true

			h.sendLocked(c, h.stateMessageLocked(h.engine.Snapshot()))
			h.sendLocked(c, SensorMessage{Type: "sensor", Active: h.sensorOn})
			h.sendCategoriesLocked(c)
			h.sendSettingsLocked(c)
			h.mu.Unlock()

		case c := <-h.unreg:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case req := <-h.requests:
			h.handleRequest(req)

		case task := <-h.tasks:
			h.mu.Lock()
			task()
			h.mu.Unlock()
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// handleRequest applies one client message to the engine or the stores.
func (h *Hub) handleRequest(req request) {
	c := req.client
	msg := req.msg

	h.mu.Lock()
	defer h.mu.Unlock()

	if msg.Type != "tilt" {
		h.lastActive = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var err error

	switch msg.Type {
	case "tilt":
		h.engine.OnTilt(clampTilt(msg.Value))

	case "start_game":
		err = h.startGameLocked(ctx, msg)

	case "start_turn":
		err = h.engine.StartTurn()
		if err == nil {
			logf(h.cfg, "GAMES: Team %s started their turn in %s", h.engine.Snapshot().Team, h.id)
		}

	case "end_turn":
		h.engine.EndTurn()

	case "menu":
		h.engine.ReturnToMenu()

	case "team_mode":
		if msg.TeamMode != nil {
			err = h.engine.SetTeamMode(*msg.TeamMode)
		}

	case "add_category":
		var cat game.Category
		cat, err = h.categories.Add(ctx, msg.Title, msg.Words)
		if err == nil {
			logf(h.cfg, "GAMES: Added category %q (%d words) from %s", cat.Title, len(cat.Words), h.id)
			h.broadcastCategoriesLocked(ctx)
		}

	case "remove_category":
		err = h.categories.Remove(ctx, msg.CategoryID)
		if err == nil {
			logf(h.cfg, "GAMES: Removed category %s from %s", msg.CategoryID, h.id)
			h.broadcastCategoriesLocked(ctx)
		}

	case "settings":
		err = h.saveSettingsLocked(ctx, msg)

	default:
		// ignore unknown types
	}

	if err != nil {
		h.sendLocked(c, SimpleMessage{Type: "error", Message: userMessage(err)})
	}
}

func (h *Hub) startGameLocked(ctx context.Context, msg ClientMessage) error {
	cat, ok, err := h.categories.Find(ctx, msg.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return errUnknownCategory
	}

	if msg.TeamMode != nil && *msg.TeamMode != h.engine.Snapshot().TeamMode {
		if err := h.engine.SetTeamMode(*msg.TeamMode); err != nil {
			return err
		}
	}

	if err := h.engine.StartGame(cat); err != nil {
		return err
	}

	logf(h.cfg, "GAMES: Started %q (team mode: %t) in %s", cat.Title, h.engine.Snapshot().TeamMode, h.id)

	return nil
}

func (h *Hub) saveSettingsLocked(ctx context.Context, msg ClientMessage) error {
	settings, err := h.settings.Load(ctx)
	if err != nil {
		return err
	}

	if msg.RoundSeconds != 0 {
		settings.RoundSeconds = msg.RoundSeconds
	}
	if msg.Sound != nil {
		settings.Sound = *msg.Sound
	}
	if msg.Haptics != nil {
		settings.Haptics = *msg.Haptics
	}

	if err := h.settings.Save(ctx, settings); err != nil {
		return err
	}

	h.broadcastLocked(SettingsMessage{Type: "settings", Settings: settings})

	return nil
}

var errUnknownCategory = errors.New("unknown category")

func userMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrUnplayableCategory):
		return "That category has no words to play."
	case errors.Is(err, errUnknownCategory):
		return "That category no longer exists."
	case errors.Is(err, game.ErrTurnInProgress):
		return "A turn is already running."
	case errors.Is(err, game.ErrInvalidPhase), errors.Is(err, game.ErrNoCategory):
		return "That can't be done right now."
	case errors.Is(err, storage.ErrTitleRequired):
		return "Please give the category a name."
	case errors.Is(err, storage.ErrNoWords):
		return "Please add at least one word."
	}
	return err.Error()
}

func clampTilt(v float64) float64 {
	return max(-1, min(1, v))
}

func (h *Hub) stateMessageLocked(snap game.Snapshot) StateMessage {
	return StateMessage{
		Type:     "state",
		Snapshot: snap,
		Winner:   snap.Outcome(),
	}
}

func (h *Hub) broadcastStateLocked(snap game.Snapshot) {
	h.broadcastLocked(h.stateMessageLocked(snap))
}

func (h *Hub) sendCategoriesLocked(c *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cats, err := h.categories.Load(ctx)
	if err != nil {
		errorf("loading categories for %s: %v", h.id, err)
		return
	}

	h.sendLocked(c, CategoriesMessage{Type: "categories", Categories: cats})
}

func (h *Hub) broadcastCategoriesLocked(ctx context.Context) {
	cats, err := h.categories.Load(ctx)
	if err != nil {
		errorf("loading categories for %s: %v", h.id, err)
		return
	}

	h.broadcastLocked(CategoriesMessage{Type: "categories", Categories: cats})
}

func (h *Hub) sendSettingsLocked(c *Client) {
	h.sendLocked(c, SettingsMessage{Type: "settings", Settings: hubSettings{h}.Settings()})
}

// sendLocked queues msg for one client, dropping the client if it can't keep up.
func (h *Hub) sendLocked(c *Client, msg any) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcastLocked(msg any) {
	for client := range h.clients {
		h.sendLocked(client, msg)
	}
}

// closeAll disconnects all clients of this hub (used by reaper).
func (h *Hub) closeAll() {
	h.stop()

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration

	categories *storage.Categories
	settings   *storage.SettingsStore
}

func newGameManager(idleTimeout time.Duration, categories *storage.Categories, settings *storage.SettingsStore) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: idleTimeout,
		categories:  categories,
		settings:    settings,
	}
	if idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(cfg, gameID, gm.categories, gm.settings)
	gm.hubs[gameID] = hub
	go hub.run()
	return hub
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	const limit = byte(255 - (256 % len(letters)))

	for {
		out := make([]byte, 0, 8)
		buf := make([]byte, 16)

		for len(out) < cap(out) {
			if _, err := rand.Read(buf); err != nil {
				panic("crypto/rand failure: " + err.Error())
			}
			for _, b := range buf {
				if b > limit || len(out) == cap(out) {
					continue
				}
				out = append(out, letters[int(b)%len(letters)])
			}
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	for range ticker.C {
		gm.reap(time.Now().Add(-gm.idleTimeout))
	}
}

func (gm *GameManager) reap(cutoff time.Time) int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	reaped := 0
	for id, hub := range gm.hubs {
		hub.mu.RLock()
		last := hub.lastActive
		hub.mu.RUnlock()

		if last.Before(cutoff) {
			delete(gm.hubs, id)
			go hub.closeAll()
			reaped++
		}
	}

	return reaped
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		hub := gm.getHub(cfg, gameID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "GAMES: Websocket upgrade for %s from %s failed: %v", gameID, realIP(r), err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 32),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		logf(cfg, "GAMES: %s connected to %s", realIP(r), gameID)

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		select {
		case h.requests <- request{client: c, msg: msg}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}

//go:embed assets/play/index.html
var indexHTML []byte

func getIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_, _ = w.Write(indexHTML)
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerPlay sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerPlay(cfg *Config, path string, mux *httprouter.Router, categories *storage.Categories, settings *storage.SettingsStore) *GameManager {
	gm := newGameManager(cfg.sessionTimeout, categories, settings)

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)

	return gm
}
