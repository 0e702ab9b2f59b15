// Package room implements the per-table game engine: seating, the betting
// and draw state machine, its timers, and showdown resolution.
package room

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/wilddraw/internal/protocol"
	"github.com/lox/wilddraw/internal/randutil"
	"github.com/lox/wilddraw/poker"
)

var (
	ErrRoomFull         = errors.New("Room is full")
	ErrNotYourTurn      = errors.New("Not your turn")
	ErrInvalidAction    = errors.New("Invalid action")
	ErrNotInDrawPhase   = errors.New("Not in draw phase")
	ErrInvalidSelection = errors.New("Invalid card selection")
)

// State is the lifecycle of a room.
type State int

const (
	StateWaiting State = iota
	StateCountdown
	StatePlaying
	StateFinished
)

// Phase is the stage within a hand.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseBlinds
	PhaseFirstBet
	PhaseDraw
	PhaseSecondBet
	PhaseShowdown
)

func (p Phase) String() string {
	switch p {
	case PhaseBlinds:
		return "blinds"
	case PhaseFirstBet:
		return "firstBet"
	case PhaseDraw:
		return "draw"
	case PhaseSecondBet:
		return "secondBet"
	case PhaseShowdown:
		return "showdown"
	default:
		return "idle"
	}
}

// Action is a betting decision.
type Action int

const (
	ActionFold Action = iota
	ActionCall
	ActionRaise
)

// ParseAction maps a wire action string to its typed form.
func ParseAction(s string) (Action, error) {
	switch s {
	case "fold":
		return ActionFold, nil
	case "call":
		return ActionCall, nil
	case "raise":
		return ActionRaise, nil
	default:
		return 0, ErrInvalidAction
	}
}

// Conn delivers an outbound event to one player. Send must not block; the
// room calls it while holding its own lock.
type Conn interface {
	Send(event any) error
}

// Recorder persists per-player results. The room treats it as
// fire-and-forget: calls are made from short-lived goroutines and failures
// never affect game state.
type Recorder interface {
	RecordHand(name string, won bool, potWon int)
	RecordMatch(name string, won bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordHand(string, bool, int) {}
func (nopRecorder) RecordMatch(string, bool) {}

// Config holds the table stakes and timing budgets.
type Config struct {
	StartingChips int
	SmallBlind    int
	BigBlind      int
	TurnTime      time.Duration
	SettleDelay   time.Duration
	CountdownFrom int
}

// DefaultConfig returns the standard heads-up table.
func DefaultConfig() Config {
	return Config{
		StartingChips: 1000,
		SmallBlind:    10,
		BigBlind:      20,
		TurnTime:      30 * time.Second,
		SettleDelay:   3 * time.Second,
		CountdownFrom: 3,
	}
}

// Player is one seat at the table. Owned exclusively by the room.
type Player struct {
	Name      string
	Conn      Conn
	Chips     int
	Hand      []poker.Card
	Bet       int
	Folded    bool
	HasActed  bool
	Connected bool
}

// Room owns one heads-up match: both players, the deck, the pot and every
// timer. All state is guarded by mu; timer callbacks re-acquire it and check
// their generation so a cancelled timer never fires into new state.
type Room struct {
	code     string
	cfg      Config
	logger   *log.Logger
	clock    quartz.Clock
	newDeck  func() *poker.Deck
	recorder Recorder
	onFinish func(code string)

	mu            sync.Mutex
	state         State
	phase         Phase
	players       [2]*Player
	deck          *poker.Deck
	pot           int
	currentBet    int
	dealerIndex   int
	currentPlayer int
	drawPicks     [2][]int
	drawSubmitted [2]bool

	timerGen int
	timer    *quartz.Timer
}

// Option configures a Room.
type Option func(*Room)

// WithClock injects the clock used for all timers.
func WithClock(clock quartz.Clock) Option {
	return func(r *Room) { r.clock = clock }
}

// WithLogger sets the room's logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Room) { r.logger = logger }
}

// WithRecorder sets the stats sink for hand and match results.
func WithRecorder(rec Recorder) Option {
	return func(r *Room) { r.recorder = rec }
}

// WithRNG seeds deck shuffling, for reproducible games.
func WithRNG(rng *rand.Rand) Option {
	return func(r *Room) { r.newDeck = func() *poker.Deck { return poker.NewDeck(rng) } }
}

// WithDeckFunc overrides deck creation entirely. Used by tests to stack
// known cards.
func WithDeckFunc(fn func() *poker.Deck) Option {
	return func(r *Room) { r.newDeck = fn }
}

// WithOnFinish registers a callback invoked (on its own goroutine) when the
// match ends, so the registry can drop the room.
func WithOnFinish(fn func(code string)) Option {
	return func(r *Room) { r.onFinish = fn }
}

// New creates an empty room identified by code.
func New(code string, cfg Config, opts ...Option) *Room {
	r := &Room{
		code:     code,
		cfg:      cfg,
		logger:   log.Default().WithPrefix("room"),
		clock:    quartz.NewReal(),
		recorder: nopRecorder{},
		state:    StateWaiting,
		phase:    PhaseIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.newDeck == nil {
		rng := randutil.New(time.Now().UnixNano())
		r.newDeck = func() *poker.Deck { return poker.NewDeck(rng) }
	}
	r.logger = r.logger.With("code", code)
	return r
}

// Code returns the room's join code.
func (r *Room) Code() string {
	return r.code
}

// State returns the current lifecycle state.
func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// PlayerCount returns the number of occupied seats.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.players {
		if p != nil {
			n++
		}
	}
	return n
}

// AddPlayer seats a player and returns their seat index. Seating the second
// player starts the pre-match countdown.
func (r *Room) AddPlayer(conn Conn, name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := -1
	for i, p := range r.players {
		if p == nil {
			seat = i
			break
		}
	}
	if seat == -1 {
		return 0, ErrRoomFull
	}

	r.players[seat] = &Player{
		Name:      name,
		Conn:      conn,
		Chips:     r.cfg.StartingChips,
		Connected: true,
	}
	r.logger.Info("player seated", "name", name, "seat", seat)

	if r.players[0] != nil && r.players[1] != nil {
		r.startCountdownLocked()
	}
	return seat, nil
}

// HandleDisconnect removes a player's presence. Mid-match it forfeits the
// game to the opponent; before the match it frees the seat.
func (r *Room) HandleDisconnect(seat int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.players[seat]
	if p == nil {
		return
	}
	p.Connected = false
	r.logger.Info("player disconnected", "name", p.Name, "seat", seat)

	switch r.state {
	case StatePlaying:
		r.endGameLocked(1-seat, "disconnect")
	case StateCountdown:
		r.cancelTimerLocked()
		r.players[seat] = nil
		r.state = StateWaiting
		r.broadcastLocked(protocol.NewQuickWaiting("Waiting for opponent..."))
	default:
		r.players[seat] = nil
	}
}

func (r *Room) startCountdownLocked() {
	r.state = StateCountdown
	count := r.cfg.CountdownFrom
	r.broadcastLocked(protocol.NewCountdown(count))
	r.tickCountdownLocked(count)
}

func (r *Room) tickCountdownLocked(count int) {
	r.scheduleAfterLocked(time.Second, func() {
		count--
		if count > 0 {
			r.broadcastLocked(protocol.NewCountdown(count))
			r.tickCountdownLocked(count)
			return
		}
		r.startGameLocked()
	})
}

func (r *Room) startGameLocked() {
	r.state = StatePlaying
	r.broadcastLocked(&protocol.GameStart{
		Event:       protocol.EventGameStart,
		Players:     r.playerInfoLocked(),
		DealerIndex: r.dealerIndex,
	})
	r.logger.Info("match started", "players", []string{r.players[0].Name, r.players[1].Name})
	r.startHandLocked()
}

func (r *Room) endGameLocked(winnerSeat int, reason string) {
	r.state = StateFinished
	r.cancelTimerLocked()

	winner := r.players[winnerSeat]
	r.broadcastLocked(&protocol.GameEnd{
		Event:       protocol.EventGameEnd,
		WinnerName:  winner.Name,
		WinnerChips: winner.Chips,
		Reason:      reason,
		Players:     r.playerInfoLocked(),
	})
	r.logger.Info("match ended", "winner", winner.Name, "reason", reason)

	for i, p := range r.players {
		if p == nil {
			continue
		}
		go r.recorder.RecordMatch(p.Name, i == winnerSeat)
	}
	if r.onFinish != nil {
		go r.onFinish(r.code)
	}
}

func (r *Room) playerInfoLocked() []protocol.PlayerInfo {
	info := make([]protocol.PlayerInfo, 0, 2)
	for _, p := range r.players {
		if p != nil {
			info = append(info, protocol.PlayerInfo{Name: p.Name, Chips: p.Chips})
		}
	}
	return info
}

func (r *Room) broadcastLocked(event any) {
	for _, p := range r.players {
		if p == nil || !p.Connected {
			continue
		}
		if err := p.Conn.Send(event); err != nil {
			r.logger.Warn("send failed", "player", p.Name, "err", err)
		}
	}
}

func (r *Room) sendToLocked(seat int, event any) {
	p := r.players[seat]
	if p == nil || !p.Connected {
		return
	}
	if err := p.Conn.Send(event); err != nil {
		r.logger.Warn("send failed", "player", p.Name, "err", err)
	}
}

// scheduleAfterLocked arms the room's single timer. Any previously armed
// timer is superseded: its generation token goes stale so an already-fired
// callback waiting on the lock becomes a no-op.
func (r *Room) scheduleAfterLocked(d time.Duration, fn func()) {
	r.timerGen++
	gen := r.timerGen
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = r.clock.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.timerGen != gen {
			return
		}
		fn()
	})
}

func (r *Room) cancelTimerLocked() {
	r.timerGen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
