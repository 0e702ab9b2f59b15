package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrMalformed    = errors.New("malformed message")
)

// Marshal serializes a message to its JSON wire form.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode parses an inbound client message into its typed form. The returned
// value is one of *QuickPlay, *RoomCreate, *RoomJoin, *ActionBet or
// *DrawSelect; server-to-client events are not accepted inbound.
func Decode(data []byte) (any, error) {
	var env struct {
		Event Event `json:"event"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var msg any
	switch env.Event {
	case EventQuickPlay:
		msg = &QuickPlay{}
	case EventRoomCreate:
		msg = &RoomCreate{}
	case EventRoomJoin:
		msg = &RoomJoin{}
	case EventActionBet:
		msg = &ActionBet{}
	case EventDrawSelect:
		msg = &DrawSelect{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return msg, nil
}
