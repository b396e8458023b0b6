/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Chronomatch matching game, browser edition
//
// Every game id gets a hub goroutine that owns one matching.Session. All
// browsers on the same game id see and play the same board.
//
// Features:
// - WebSockets per game ID: /play/:gameid and /play/:gameid/ws
// - Commands from every client and every deferred game transition run on the hub goroutine
// - Text is translated per client from its Accept-Language header or ?lang=
// - Connector curves are computed per client from the layout it reports
// - Players identified by a UUID cookie
// - Games auto-reaped after configurable idle timeout
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - In-browser QR button to share the current game, backed by go-qrcode

package main

import (
	"bytes"
	"context"
	"crypto/rand"
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/chronomatch/games/content"
	"github.com/Seednode/chronomatch/games/matching"
	"github.com/Seednode/chronomatch/i18n"
)

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second

	// webFrameInterval keeps celebration traffic near 30 frames per second.
	webFrameInterval = 33 * time.Millisecond
)

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string

	// ctx carries the client's localizer.
	ctx    context.Context
	layout *Layout
}

type command struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id      string
	cfg     *Config
	catalog *content.Catalog
	metrics *gameMetrics

	clients  map[*Client]bool
	outbox   map[*Client]*outbound
	session  *matching.Session
	renderer *hubRenderer

	register chan *Client
	unreg    chan *Client
	commands chan command
	timers   chan func()
	done     chan struct{}
	stopOnce sync.Once

	mu         sync.RWMutex
	createdAt  time.Time
	lastActive time.Time

	completions int
}

func newHub(cfg *Config, gameID string, catalog *content.Catalog, m *gameMetrics) *Hub {
	now := time.Now()

	h := &Hub{
		id:         gameID,
		cfg:        cfg,
		catalog:    catalog,
		metrics:    m,
		clients:    make(map[*Client]bool),
		outbox:     make(map[*Client]*outbound),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commands:   make(chan command),
		timers:     make(chan func()),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
	}

	h.renderer = &hubRenderer{hub: h}

	var c matching.Content = emptyContent{}
	if catalog != nil {
		c = catalog
	}

	h.session = matching.New(c, h.renderer, matching.SchedulerFunc(h.after),
		matching.WithFrameInterval(webFrameInterval),
		matching.WithHideCorrect(cfg.hideCorrect),
	)

	return h
}

// emptyContent stands in for a catalog that failed to load.
type emptyContent struct{}

func (emptyContent) Period(string) (content.Period, bool) {
	return content.Period{}, false
}

// after delivers fn to the hub goroutine once d has passed, unless the hub
// has stopped by then.
func (h *Hub) after(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		select {
		case h.timers <- fn:
		case <-h.done:
		}
	})
}

func (h *Hub) run() {
	defer h.shutdown()

	for {
		select {
		case c := <-h.register:
			h.touch()
			h.addClient(c)
			h.flush()
		case c := <-h.unreg:
			h.touch()
			h.drop(c)
		case cmd := <-h.commands:
			h.touch()
			h.handle(cmd)
			h.flush()
		case fn := <-h.timers:
			fn()
			h.countCompletions()
			h.flush()
		case <-h.done:
			return
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

func (h *Hub) shutdown() {
	clear(h.outbox)

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
		h.metrics.playersConnected.Dec()
	}
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Hub) idleSince() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive
}

func (h *Hub) addClient(c *Client) {
	h.clients[c] = true
	h.metrics.playersConnected.Inc()

	logf(h.cfg, "GAMES: Player %s joined %s", c.playerID, h.id)

	if h.catalog == nil {
		h.sendTo(c, SimpleMessage{Type: "error", Message: i18n.T(c.ctx, "ContentError")})
		return
	}

	periods := make([]PeriodSummary, 0, h.catalog.Len())
	for _, p := range h.catalog.Periods() {
		periods = append(periods, summarize(p))
	}
	h.sendTo(c, PeriodsMessage{Type: "periods", Periods: periods})

	// Transient messages shown before the client joined are not replayed.
	h.renderer.only = c
	h.session.Refresh()
	h.renderer.only = nil
}

// outbound collects what one hub step produced for a client.
type outbound struct {
	msgs []any

	// droppable is set while every queued message is a confetti frame.
	droppable bool
}

// sendTo queues msg for c. If c cannot take the step's output it is dropped.
func (h *Hub) sendTo(c *Client, msg any) {
	h.queue(c, msg, false)
}

// trySend queues msg for c. Output made only of such messages is skipped
// when c's buffer is full.
func (h *Hub) trySend(c *Client, msg any) {
	h.queue(c, msg, true)
}

func (h *Hub) queue(c *Client, msg any, droppable bool) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	out, ok := h.outbox[c]
	if !ok {
		out = &outbound{droppable: true}
		h.outbox[c] = out
	}

	out.msgs = append(out.msgs, msg)
	out.droppable = out.droppable && droppable
}

// flush hands every client the output of the step that just ran as a single
// websocket message, however many events the step produced.
func (h *Hub) flush() {
	for c, out := range h.outbox {
		delete(h.outbox, c)

		if _, ok := h.clients[c]; !ok {
			continue
		}

		var msg any = BatchMessage{Type: "batch", Messages: out.msgs}
		if len(out.msgs) == 1 {
			msg = out.msgs[0]
		}

		select {
		case c.send <- msg:
		default:
			if !out.droppable {
				logf(h.cfg, "GAMES: Dropped slow player %s from %s", c.playerID, h.id)
				h.drop(c)
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	delete(h.outbox, c)
	close(c.send)
	h.metrics.playersConnected.Dec()

	if h.renderer.dragger == c {
		h.renderer.dragger = nil
	}
}

func (h *Hub) handle(cmd command) {
	c, msg := cmd.client, cmd.msg

	before := h.session.Matches()

	var err error
	switch msg.Type {
	case "period":
		if h.catalog == nil {
			err = ErrNoContent
			break
		}
		err = h.session.SelectPeriod(msg.Period)
		if err == nil {
			logf(h.cfg, "GAMES: Player %s started period %q in %s", c.playerID, msg.Period, h.id)
		}
	case "select":
		err = withItem(msg, h.session.Select)
	case "key":
		err = withItem(msg, func(ref matching.ItemRef) error {
			return h.session.Key(ref, msg.Key)
		})
	case "drag_start":
		h.renderer.dragger = c
		err = h.dragOnly(c, msg, func(ref matching.ItemRef) error {
			payload, err := h.session.DragStart(ref)
			if err != nil {
				return err
			}
			h.sendTo(c, DragPayloadMessage{Type: "drag_payload", Item: ref, Payload: string(payload)})
			return nil
		})
		if err != nil {
			h.renderer.dragger = nil
		}
	case "drag_enter":
		err = h.dragOnly(c, msg, func(ref matching.ItemRef) error {
			h.session.DragEnter(ref)
			return nil
		})
	case "drag_leave":
		err = h.dragOnly(c, msg, func(ref matching.ItemRef) error {
			h.session.DragLeave(ref)
			return nil
		})
	case "drag_end":
		err = h.dragOnly(c, msg, func(ref matching.ItemRef) error {
			h.session.DragEnd(ref)
			return nil
		})
		if h.renderer.dragger == c {
			h.renderer.dragger = nil
		}
	case "drop":
		err = withItem(msg, func(ref matching.ItemRef) error {
			return h.session.Drop([]byte(msg.Payload), ref)
		})
	case "submit":
		var res matching.Result
		res, err = h.session.Submit()
		if err == nil {
			h.metrics.submission(res.Outcome)
			logf(h.cfg, "GAMES: Submission in %s: %d correct, %d incorrect of %d (%s)",
				h.id, res.Correct, res.Incorrect, res.Total, res.Outcome)
		}
	case "retry":
		err = h.session.Retry()
	case "clear":
		h.session.ClearAll()
	case "hide_correct":
		h.session.SetHideCorrect(msg.HideCorrect != nil && *msg.HideCorrect)
	case "replay":
		err = h.session.Replay()
	case "change_period":
		h.session.ChangePeriod()
	case "layout":
		if msg.Layout == nil {
			break
		}
		c.layout = msg.Layout

		// The layout is this client's own; the shared board keeps its viewport.
		h.renderer.only = c
		h.session.RedrawConnectors()
		h.renderer.only = nil
	}

	if err != nil {
		h.reportError(c, msg.Type, err)
	}

	h.countMatches(before)
	h.countCompletions()
}

// dragOnly runs a drag step whose highlights only the dragging client sees.
func (h *Hub) dragOnly(c *Client, msg ClientMessage, fn func(matching.ItemRef) error) error {
	h.renderer.only = c
	defer func() { h.renderer.only = nil }()

	return withItem(msg, fn)
}

func withItem(msg ClientMessage, fn func(matching.ItemRef) error) error {
	ref, err := msg.item()
	if err != nil {
		return err
	}
	return fn(ref)
}

// reportError tells the client about errors it can act on. Everything else
// leaves the board unchanged and is only logged.
func (h *Hub) reportError(c *Client, action string, err error) {
	var key string
	switch {
	case errors.Is(err, ErrNoContent):
		key = "ContentError"
	case errors.Is(err, matching.ErrUnknownPeriod):
		key = "UnknownPeriod"
	}

	if key != "" {
		h.sendTo(c, SimpleMessage{Type: "error", Message: i18n.T(c.ctx, key)})
	}

	logf(h.cfg, "GAMES: Ignored %s from %s in %s: %v", action, c.playerID, h.id, err)
}

func (h *Hub) countMatches(before []matching.Pair) {
	seen := make(map[matching.Pair]bool, len(before))
	for _, p := range before {
		seen[p] = true
	}

	for _, p := range h.session.Matches() {
		if !seen[p] {
			h.metrics.matchesCreated.Inc()
		}
	}
}

func (h *Hub) countCompletions() {
	if n := h.session.Completions(); n > h.completions {
		h.metrics.completions.Add(float64(n - h.completions))
		h.completions = n

		logf(h.cfg, "GAMES: Game %s completed", h.id)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "chronomatch_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id, err := uuid.NewRandom()
	if err != nil {
		errorf("generate player id: %v", err)
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id.String()
}

type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration

	catalog *content.Catalog
	metrics *gameMetrics
}

func newGameManager(ctx context.Context, cfg *Config, catalog *content.Catalog, m *gameMetrics) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: cfg.sessionTimeout,
		catalog:     catalog,
		metrics:     m,
	}

	if gm.idleTimeout > 0 {
		go gm.reaperLoop(ctx, cfg)
	}

	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(cfg, gameID, gm.catalog, gm.metrics)
	gm.hubs[gameID] = hub
	gm.metrics.gamesActive.Inc()

	go hub.run()

	return hub
}

func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}

		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
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

// reap stops every hub idle since before cutoff and returns how many it stopped.
func (gm *GameManager) reap(cfg *Config, cutoff time.Time) int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	reaped := 0
	for id, hub := range gm.hubs {
		if hub.idleSince().Before(cutoff) {
			delete(gm.hubs, id)
			hub.stop()
			gm.metrics.gamesActive.Dec()
			reaped++

			logf(cfg, "GAMES: Reaped idle game %s after %s",
				id, time.Since(hub.createdAt).Round(time.Second))
		}
	}

	return reaped
}

func (gm *GameManager) stopAll() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		delete(gm.hubs, id)
		hub.stop()
		gm.metrics.gamesActive.Dec()
	}
}

func (gm *GameManager) reaperLoop(ctx context.Context, cfg *Config) {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gm.reap(cfg, time.Now().Add(-gm.idleTimeout))
		case <-ctx.Done():
			gm.stopAll()
			return
		}
	}
}

func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, ErrMissingGameID.Error(), http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		hub := gm.getHub(cfg, gameID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "GAMES: Websocket upgrade for %s failed: %v", gameID, err)
			return
		}

		loc := i18n.NewLocalizer(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))

		client := &Client{
			conn:     conn,
			send:     make(chan any, sendBuffer),
			playerID: playerID,
			ctx:      i18n.WithLocalizer(context.Background(), loc),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

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

	// Clear any deadline left over from the HTTP server.
	_ = c.conn.SetReadDeadline(time.Time{})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		h.metrics.socketMessages.WithLabelValues(messageLabel(msg.Type)).Inc()

		select {
		case h.commands <- command{client: c, msg: msg}:
		case <-h.done:
			return
		}
	}
}

var knownMessages = map[string]bool{
	"period": true, "select": true, "key": true,
	"drag_start": true, "drag_enter": true, "drag_leave": true, "drop": true, "drag_end": true,
	"submit": true, "retry": true, "clear": true, "hide_correct": true,
	"replay": true, "change_period": true, "layout": true,
}

// messageLabel keeps the metric's label set bounded.
func messageLabel(t string) string {
	if knownMessages[t] {
		return t
	}
	return "unknown"
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, ErrMissingGameID.Error(), http.StatusBadRequest)
			return
		}

		scheme := cfg.scheme()
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
		path := strings.TrimSuffix(r.URL.Path, "/qr")

		url := scheme + "://" + r.Host + path

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}

//go:embed assets/matching/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// indexPage is the data the game page template renders with.
type indexPage struct {
	ctx    context.Context
	Lang   string
	Prefix string
}

func (p indexPage) T(id string) string {
	return i18n.T(p.ctx, id)
}

func serveIndex(cfg *Config) httprouter.Handle {
	h := i18n.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer

		err := indexTemplate.Execute(&buf, indexPage{
			ctx:    r.Context(),
			Lang:   pageLang(r),
			Prefix: cfg.prefix,
		})
		if err != nil {
			errorf("render game page: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "private, no-cache")
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		_, _ = w.Write(buf.Bytes())
	}))

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeHTTP(w, r)
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)

		target := cfg.prefix + path + "/" + gameID
		if q := r.URL.RawQuery; q != "" {
			target += "?" + q
		}

		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	}
}

// registerMatchingGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerMatchingGame(cfg *Config, path string, mux *httprouter.Router, gm *GameManager) {
	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", serveIndex(cfg))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler(cfg))
}
