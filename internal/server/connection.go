package server

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/wilddraw/internal/lobby"
	"github.com/lox/wilddraw/internal/protocol"
	"github.com/lox/wilddraw/internal/room"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one WebSocket client. It implements room.Conn so the
// room engine can push events through the buffered send queue without
// blocking on slow clients.
type Connection struct {
	id        string
	conn      *websocket.Conn
	send      chan any
	logger    *log.Logger
	lobby     *lobby.Lobby
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu   sync.RWMutex
	room *room.Room
	seat int
	name string
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, l *lobby.Lobby) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	return &Connection{
		id:     id,
		conn:   conn,
		send:   make(chan any, 256),
		logger: logger.WithPrefix("conn").With("id", id[:8]),
		lobby:  l,
		ctx:    ctx,
		cancel: cancel,
		seat:   -1,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// Send queues an event for delivery to the client. It never blocks: a full
// buffer means the client has stopped draining and the connection is closed.
func (c *Connection) Send(event any) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown
			c.logger.Debug("send on closed connection", "recover", r)
		}
	}()

	select {
	case c.send <- event:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) setRoom(rm *room.Room, seat int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = rm
	c.seat = seat
}

func (c *Connection) currentRoom() (*room.Room, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room, c.seat
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		if rm, seat := c.currentRoom(); rm != nil {
			c.logger.Info("client left room", "name", c.playerTag(), "room", rm.Code())
			rm.HandleDisconnect(seat)
		}
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "err", err)
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			c.logger.Debug("rejected message", "err", err)
			c.sendError("Invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := protocol.Marshal(event)
			if err != nil {
				c.logger.Error("failed to marshal event", "err", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("failed to write message", "err", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg any) {
	switch m := msg.(type) {
	case *protocol.QuickPlay:
		c.handleQuickPlay(m)
	case *protocol.RoomCreate:
		c.handleRoomCreate(m)
	case *protocol.RoomJoin:
		c.handleRoomJoin(m)
	case *protocol.ActionBet:
		c.handleActionBet(m)
	case *protocol.DrawSelect:
		c.handleDrawSelect(m)
	default:
		c.sendError("Invalid message")
	}
}

func (c *Connection) handleQuickPlay(m *protocol.QuickPlay) {
	if rm, _ := c.currentRoom(); rm != nil {
		c.sendError("Already in a room")
		return
	}
	name := playerName(m.Name)
	c.logger.Info("quick play", "name", name)

	rm, seat, err := c.lobby.QuickPlay(c, name)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.setName(name)
	c.setRoom(rm, seat)

	if rm.State() == room.StateWaiting {
		_ = c.Send(protocol.NewQuickWaiting("Waiting for opponent..."))
	}
}

func (c *Connection) handleRoomCreate(m *protocol.RoomCreate) {
	if rm, _ := c.currentRoom(); rm != nil {
		c.sendError("Already in a room")
		return
	}
	name := playerName(m.Name)
	c.logger.Info("create room", "name", name)

	rm, seat, err := c.lobby.CreateRoom(c, name)
	if err != nil {
		_ = c.Send(protocol.NewRoomError(err.Error()))
		return
	}
	c.setName(name)
	c.setRoom(rm, seat)
	_ = c.Send(protocol.NewRoomCreated(rm.Code()))
}

func (c *Connection) handleRoomJoin(m *protocol.RoomJoin) {
	if rm, _ := c.currentRoom(); rm != nil {
		c.sendError("Already in a room")
		return
	}
	name := playerName(m.Name)
	c.logger.Info("join room", "name", name, "code", m.Code)

	rm, seat, err := c.lobby.JoinRoom(c, name, m.Code)
	if err != nil {
		_ = c.Send(protocol.NewRoomError(err.Error()))
		return
	}
	c.setName(name)
	c.setRoom(rm, seat)
	_ = c.Send(protocol.NewRoomJoined(rm.Code()))
}

func (c *Connection) handleActionBet(m *protocol.ActionBet) {
	rm, seat := c.currentRoom()
	if rm == nil {
		c.sendError("Not in a game")
		return
	}
	if err := rm.HandleAction(seat, m.Action, m.Amount); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Connection) handleDrawSelect(m *protocol.DrawSelect) {
	rm, seat := c.currentRoom()
	if rm == nil {
		c.sendError("Not in a game")
		return
	}
	if err := rm.HandleDraw(seat, m.CardIndices); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Connection) sendError(message string) {
	_ = c.Send(protocol.NewError(message))
}

func (c *Connection) setName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

func (c *Connection) playerTag() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func playerName(name string) string {
	if name == "" {
		return fmt.Sprintf("Player%d", rand.IntN(1000))
	}
	return name
}
