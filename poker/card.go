package poker

import (
	"encoding/json"
	"fmt"
)

// Suit represents a card suit. Jokers carry a red/black colour instead of a
// real suit.
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
	RedJoker
	BlackJoker
)

// Suits lists the four real suits in a fixed iteration order.
var Suits = [4]Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the wire representation of a suit.
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	case Spades:
		return "spades"
	case RedJoker:
		return "red"
	case BlackJoker:
		return "black"
	default:
		return "unknown"
	}
}

// ParseSuit parses the wire representation of a suit.
func ParseSuit(s string) (Suit, error) {
	switch s {
	case "hearts":
		return Hearts, nil
	case "diamonds":
		return Diamonds, nil
	case "clubs":
		return Clubs, nil
	case "spades":
		return Spades, nil
	case "red":
		return RedJoker, nil
	case "black":
		return BlackJoker, nil
	default:
		return 0, fmt.Errorf("invalid suit: %q", s)
	}
}

// MarshalJSON encodes the suit as its wire string.
func (s Suit) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a suit from its wire string.
func (s *Suit) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSuit(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Rank represents a card rank. Numeric ranks carry their face value, with
// Jack through Ace as 11-14 and Joker above everything.
type Rank int

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
	Joker Rank = 15
)

// Ranks lists the thirteen suited ranks in ascending order.
var Ranks = [13]Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// String returns the wire representation of a rank.
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	case r == Joker:
		return "JOKER"
	default:
		return "?"
	}
}

// ParseRank parses the wire representation of a rank.
func ParseRank(s string) (Rank, error) {
	switch s {
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	case "JOKER":
		return Joker, nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil && n >= 2 && n <= 10 {
		return Rank(n), nil
	}
	return 0, fmt.Errorf("invalid rank: %q", s)
}

// MarshalJSON encodes the rank as its wire string.
func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a rank from its wire string.
func (r *Rank) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseRank(str)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Card is an immutable card value. ID distinguishes the two copies of each
// suited card in the doubled deck. Wild is true exactly for twos and jokers.
type Card struct {
	Rank Rank   `json:"rank"`
	Suit Suit   `json:"suit"`
	Wild bool   `json:"isWild"`
	ID   string `json:"id"`
}

// NewCard creates a suited card. deckNum is 0 or 1 and selects which half of
// the double deck the card belongs to.
func NewCard(rank Rank, suit Suit, deckNum int) Card {
	return Card{
		Rank: rank,
		Suit: suit,
		Wild: rank == Two,
		ID:   fmt.Sprintf("%s_%s_%d", rank, suit, deckNum),
	}
}

// NewJoker creates joker n (0-3). The first two jokers are red, the rest black.
func NewJoker(n int) Card {
	suit := RedJoker
	if n >= 2 {
		suit = BlackJoker
	}
	return Card{
		Rank: Joker,
		Suit: suit,
		Wild: true,
		ID:   fmt.Sprintf("JOKER_%d", n),
	}
}

// String returns a short human-readable form, e.g. "K♦" or "JOKER".
func (c Card) String() string {
	if c.Rank == Joker {
		return "JOKER"
	}
	var glyph string
	switch c.Suit {
	case Hearts:
		glyph = "♥"
	case Diamonds:
		glyph = "♦"
	case Clubs:
		glyph = "♣"
	case Spades:
		glyph = "♠"
	}
	return c.Rank.String() + glyph
}
