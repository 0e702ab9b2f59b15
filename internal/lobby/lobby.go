// Package lobby pairs arriving players into rooms and owns the room
// registry.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/wilddraw/internal/randutil"
	"github.com/lox/wilddraw/internal/room"
)

var (
	ErrInvalidCode  = errors.New("Invalid room code")
	ErrRoomNotFound = errors.New("Room not found")
)

const defaultSweepInterval = time.Minute

// Lobby is the room registry. Rooms are keyed by their 4-digit join code;
// finished and abandoned rooms are swept out periodically.
type Lobby struct {
	logger        *log.Logger
	clock         quartz.Clock
	rng           *rand.Rand
	cfg           room.Config
	roomOpts      []room.Option
	sweepInterval time.Duration

	mu    sync.Mutex
	rooms map[string]*room.Room
}

// Option configures a Lobby.
type Option func(*Lobby)

// WithClock injects the clock used for the sweep ticker and all rooms.
func WithClock(clock quartz.Clock) Option {
	return func(l *Lobby) { l.clock = clock }
}

// WithLogger sets the lobby's logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Lobby) { l.logger = logger }
}

// WithRNG seeds room-code generation.
func WithRNG(rng *rand.Rand) Option {
	return func(l *Lobby) { l.rng = rng }
}

// WithRoomOptions appends options applied to every room the lobby creates.
func WithRoomOptions(opts ...room.Option) Option {
	return func(l *Lobby) { l.roomOpts = append(l.roomOpts, opts...) }
}

// WithSweepInterval overrides how often abandoned rooms are collected.
func WithSweepInterval(d time.Duration) Option {
	return func(l *Lobby) { l.sweepInterval = d }
}

// New creates an empty lobby creating rooms with the given table config.
func New(cfg room.Config, opts ...Option) *Lobby {
	l := &Lobby{
		logger:        log.Default().WithPrefix("lobby"),
		clock:         quartz.NewReal(),
		cfg:           cfg,
		sweepInterval: defaultSweepInterval,
		rooms:         make(map[string]*room.Room),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rng == nil {
		l.rng = randutil.New(time.Now().UnixNano())
	}
	return l
}

// QuickPlay seats the player in the first room with an open seat, creating a
// fresh room when none is waiting. It returns the room and the seat index.
func (l *Lobby) QuickPlay(conn room.Conn, name string) (*room.Room, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var target *room.Room
	for _, rm := range l.rooms {
		if rm.State() == room.StateWaiting && rm.PlayerCount() == 1 {
			target = rm
			break
		}
	}
	if target == nil {
		target = l.createRoomLocked()
	}

	seat, err := target.AddPlayer(conn, name)
	if err != nil {
		return nil, 0, err
	}
	return target, seat, nil
}

// CreateRoom opens a private room, seats its creator and returns the join
// code to share.
func (l *Lobby) CreateRoom(conn room.Conn, name string) (*room.Room, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rm := l.createRoomLocked()
	seat, err := rm.AddPlayer(conn, name)
	if err != nil {
		return nil, 0, err
	}
	return rm, seat, nil
}

// JoinRoom seats the player in the private room with the given code.
func (l *Lobby) JoinRoom(conn room.Conn, name, code string) (*room.Room, int, error) {
	if !validCode(code) {
		return nil, 0, ErrInvalidCode
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rm, ok := l.rooms[code]
	if !ok {
		return nil, 0, ErrRoomNotFound
	}
	seat, err := rm.AddPlayer(conn, name)
	if err != nil {
		return nil, 0, err
	}
	return rm, seat, nil
}

// Remove drops a room from the registry. Safe to call for unknown codes.
func (l *Lobby) Remove(code string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.rooms[code]; ok {
		delete(l.rooms, code)
		l.logger.Debug("room removed", "code", code)
	}
}

// RoomCount returns the number of registered rooms.
func (l *Lobby) RoomCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}

// Run sweeps abandoned rooms until ctx is cancelled.
func (l *Lobby) Run(ctx context.Context) error {
	waiter := l.clock.TickerFunc(ctx, l.sweepInterval, func() error {
		l.sweep()
		return nil
	})
	if err := waiter.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (l *Lobby) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for code, rm := range l.rooms {
		if rm.PlayerCount() == 0 || rm.State() == room.StateFinished {
			delete(l.rooms, code)
			l.logger.Debug("room swept", "code", code)
		}
	}
}

func (l *Lobby) createRoomLocked() *room.Room {
	var code string
	for {
		code = fmt.Sprintf("%04d", 1000+l.rng.IntN(9000))
		if _, taken := l.rooms[code]; !taken {
			break
		}
	}

	opts := append([]room.Option{
		room.WithClock(l.clock),
		room.WithLogger(l.logger.WithPrefix("room")),
		room.WithOnFinish(l.Remove),
	}, l.roomOpts...)

	rm := room.New(code, l.cfg, opts...)
	l.rooms[code] = rm
	l.logger.Debug("room created", "code", code)
	return rm
}

func validCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
