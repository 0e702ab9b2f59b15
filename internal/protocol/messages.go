package protocol

import (
	"github.com/lox/wilddraw/poker"
)

// Event identifies the type of a wire message. Every message is a single
// JSON object carrying an "event" discriminator plus event-specific fields.
type Event string

const (
	// Client -> Server
	EventQuickPlay  Event = "quick:play"
	EventRoomCreate Event = "room:create"
	EventRoomJoin   Event = "room:join"
	EventActionBet  Event = "action:bet"
	EventDrawSelect Event = "draw:select"

	// Server -> Client
	EventQuickWaiting  Event = "quick:waiting"
	EventRoomCreated   Event = "room:created"
	EventRoomJoined    Event = "room:joined"
	EventRoomError     Event = "room:error"
	EventCountdown     Event = "game:countdown"
	EventGameStart     Event = "game:start"
	EventHandDealt     Event = "hand:dealt"
	EventTurnStart     Event = "turn:start"
	EventTurnTick      Event = "turn:tick"
	EventActionMade    Event = "action:made"
	EventDrawPhase     Event = "draw:phase"
	EventDrawConfirmed Event = "draw:confirmed"
	EventOpponentDraw  Event = "opponent:draw"
	EventCardsDrawn    Event = "cards:drawn"
	EventShowdown      Event = "showdown"
	EventHandEnd       Event = "hand:end"
	EventGameEnd       Event = "game:end"
	EventError         Event = "error"
)

// Client -> Server Messages

// QuickPlay seats the player via anonymous matchmaking.
type QuickPlay struct {
	Event Event  `json:"event"`
	Name  string `json:"name"`
}

// RoomCreate opens a private room and reserves its code.
type RoomCreate struct {
	Event Event  `json:"event"`
	Name  string `json:"name"`
}

// RoomJoin seats the player in the private room with the given code.
type RoomJoin struct {
	Event Event  `json:"event"`
	Name  string `json:"name"`
	Code  string `json:"code"`
}

// ActionBet is a betting decision from the acting player.
type ActionBet struct {
	Event  Event  `json:"event"`
	Action string `json:"action"` // fold, call, raise
	Amount int    `json:"amount,omitempty"`
}

// DrawSelect submits the hand positions the player wants to discard.
type DrawSelect struct {
	Event       Event `json:"event"`
	CardIndices []int `json:"cardIndices"`
}

// Server -> Client Messages

// QuickWaiting is sent while the player waits for an opponent.
type QuickWaiting struct {
	Event   Event  `json:"event"`
	Message string `json:"message"`
}

// RoomCreated reports the code of a freshly created private room.
type RoomCreated struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
}

// RoomJoined confirms a private-room join.
type RoomJoined struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
}

// RoomError reports a failed private-room operation.
type RoomError struct {
	Event   Event  `json:"event"`
	Message string `json:"message"`
}

// Countdown is broadcast once per second before the match starts.
type Countdown struct {
	Event Event `json:"event"`
	Count int   `json:"count"`
}

// PlayerInfo is the public view of a seated player.
type PlayerInfo struct {
	Name  string `json:"name"`
	Chips int    `json:"chips"`
}

// GameStart is broadcast when the countdown completes.
type GameStart struct {
	Event       Event        `json:"event"`
	Players     []PlayerInfo `json:"players"`
	DealerIndex int          `json:"dealerIndex"`
}

// HandDealt carries a player's private view of a fresh hand.
type HandDealt struct {
	Event         Event        `json:"event"`
	Hand          []poker.Card `json:"hand"`
	Pot           int          `json:"pot"`
	PlayerChips   int          `json:"playerChips"`
	OpponentChips int          `json:"opponentChips"`
	PlayerBet     int          `json:"playerBet"`
	OpponentBet   int          `json:"opponentBet"`
	DealerIndex   int          `json:"dealerIndex"`
	IsDealer      bool         `json:"isDealer"`
}

// TurnStart announces whose turn it is and the bounds of their decision.
type TurnStart struct {
	Event       Event  `json:"event"`
	PlayerIndex int    `json:"playerIndex"`
	PlayerName  string `json:"playerName"`
	CallAmount  int    `json:"callAmount"`
	MinRaise    int    `json:"minRaise"`
	MaxBet      int    `json:"maxBet"`
	Pot         int    `json:"pot"`
	CurrentBet  int    `json:"currentBet"`
	Phase       string `json:"phase"`
	TimeLeft    int    `json:"timeLeft"`
}

// TurnTick is the per-second countdown broadcast during a timed wait.
type TurnTick struct {
	Event    Event `json:"event"`
	TimeLeft int   `json:"timeLeft"`
}

// ActionMade is broadcast after every accepted betting action.
type ActionMade struct {
	Event       Event  `json:"event"`
	PlayerIndex int    `json:"playerIndex"`
	Action      string `json:"action"` // fold, check, call, raise
	Amount      int    `json:"amount,omitempty"`
	Pot         int    `json:"pot"`
	PlayerChips int    `json:"playerChips,omitempty"`
	CurrentBet  int    `json:"currentBet,omitempty"`
}

// DrawPhase opens the simultaneous discard window.
type DrawPhase struct {
	Event    Event `json:"event"`
	Pot      int   `json:"pot"`
	TimeLeft int   `json:"timeLeft"`
}

// DrawConfirmed acknowledges a player's own discard selection.
type DrawConfirmed struct {
	Event        Event `json:"event"`
	DiscardCount int   `json:"discardCount"`
}

// OpponentDraw tells a player how many cards their opponent is replacing.
type OpponentDraw struct {
	Event        Event `json:"event"`
	DiscardCount int   `json:"discardCount"`
}

// CardsDrawn carries a player's hand after the draw is applied.
type CardsDrawn struct {
	Event    Event        `json:"event"`
	Hand     []poker.Card `json:"hand"`
	NewCards []poker.Card `json:"newCards"`
}

// ShowdownHand is one player's revealed hand and its evaluation.
type ShowdownHand struct {
	Cards       []poker.Card      `json:"cards"`
	Description poker.Description `json:"description"`
}

// Showdown reveals both hands and the pot resolution. WinnerIndex is -1 and
// WinnerName empty on an exact tie.
type Showdown struct {
	Event       Event          `json:"event"`
	Hands       []ShowdownHand `json:"hands"`
	WinnerIndex int            `json:"winnerIndex"`
	WinnerName  string         `json:"winnerName,omitempty"`
	Pot         int            `json:"pot"`
	IsTie       bool           `json:"isTie"`
	PlayerChips [2]int         `json:"playerChips"`
}

// HandEnd reports a hand resolved without showdown.
type HandEnd struct {
	Event       Event  `json:"event"`
	WinnerIndex int    `json:"winnerIndex"`
	WinnerName  string `json:"winnerName"`
	Pot         int    `json:"pot"`
	Reason      string `json:"reason"` // fold
	PlayerChips [2]int `json:"playerChips"`
}

// GameEnd reports the end of the match.
type GameEnd struct {
	Event       Event        `json:"event"`
	WinnerName  string       `json:"winnerName"`
	WinnerChips int          `json:"winnerChips"`
	Reason      string       `json:"reason"` // bust, disconnect
	Players     []PlayerInfo `json:"players"`
}

// Error reports a rejected input to the offending connection only.
type Error struct {
	Event   Event  `json:"event"`
	Message string `json:"message"`
}

func NewQuickWaiting(message string) *QuickWaiting {
	return &QuickWaiting{Event: EventQuickWaiting, Message: message}
}

func NewRoomCreated(code string) *RoomCreated {
	return &RoomCreated{Event: EventRoomCreated, Code: code}
}

func NewRoomJoined(code string) *RoomJoined {
	return &RoomJoined{Event: EventRoomJoined, Code: code}
}

func NewRoomError(message string) *RoomError {
	return &RoomError{Event: EventRoomError, Message: message}
}

func NewCountdown(count int) *Countdown {
	return &Countdown{Event: EventCountdown, Count: count}
}

func NewError(message string) *Error {
	return &Error{Event: EventError, Message: message}
}
