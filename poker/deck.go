package poker

import (
	rand "math/rand/v2"
)

const (
	// DeckSize is the number of cards in the double deck: two 52-card decks
	// plus four jokers.
	DeckSize = 108

	// WildCount is the number of wild cards in a fresh deck: eight twos and
	// four jokers.
	WildCount = 12
)

// Deck is an ordered sequence of cards consumed by drawing from one end. A
// deck is built fresh for every hand and never reused.
type Deck struct {
	cards []Card
}

// NewDeck builds the full 108-card double deck and shuffles it with the
// provided random source.
func NewDeck(rng *rand.Rand) *Deck {
	cards := make([]Card, 0, DeckSize)
	for deckNum := 0; deckNum < 2; deckNum++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				cards = append(cards, NewCard(rank, suit, deckNum))
			}
		}
	}
	for i := 0; i < 4; i++ {
		cards = append(cards, NewJoker(i))
	}

	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	return &Deck{cards: cards}
}

// DeckFrom builds a deck with an explicit card ordering. Cards are drawn from
// the end of the slice, so the last card listed is dealt first.
func DeckFrom(cards ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Draw removes and returns the top card. The second return value is false if
// the deck is empty.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, true
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
