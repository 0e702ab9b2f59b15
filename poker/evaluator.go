package poker

import (
	"sort"
)

// Category is the hand classification, ordered from weakest to strongest.
// Wild cards push the top of the scale past the standard poker ladder: five
// of a kind beats a royal flush.
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
	FiveOfAKind
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	case FiveOfAKind:
		return "Five of a Kind"
	default:
		return "Unknown"
	}
}

// Evaluation is the total-ordered strength of a 5-card hand: the category,
// then a 5-value tiebreak key compared lexicographically, most significant
// first.
type Evaluation struct {
	Category Category
	Tiebreak [5]int
}

// Compare orders two evaluations: positive if e is stronger, negative if o is
// stronger, zero for an exact tie.
func (e Evaluation) Compare(o Evaluation) int {
	if e.Category != o.Category {
		return int(e.Category) - int(o.Category)
	}
	for i := range e.Tiebreak {
		if e.Tiebreak[i] != o.Tiebreak[i] {
			return e.Tiebreak[i] - o.Tiebreak[i]
		}
	}
	return 0
}

// Compare evaluates both hands and orders them: positive if a wins, negative
// if b wins, zero for an exact tie.
func Compare(a, b []Card) int {
	return Evaluate(a).Compare(Evaluate(b))
}

// Description is the showdown-facing summary of a hand's strength.
type Description struct {
	Name      string `json:"name"`
	Rank      int    `json:"rank"`
	HighCards [5]int `json:"highCards"`
}

// Describe evaluates a hand and returns its display description.
func Describe(hand []Card) Description {
	ev := Evaluate(hand)
	return Description{
		Name:      ev.Category.String(),
		Rank:      int(ev.Category),
		HighCards: ev.Tiebreak,
	}
}

// Evaluate classifies a 5-card hand, substituting wild cards as favourably as
// possible. It is a pure function: deterministic for identical inputs, no
// shared state.
//
// Candidates are tried strongest-first; the first achievable category wins.
// Wild substitutions always favour the higher natural rank, and slots that no
// natural card constrains are filled with aces.
func Evaluate(hand []Card) Evaluation {
	wilds := 0
	naturals := make([]Card, 0, len(hand))
	for _, c := range hand {
		if c.Wild {
			wilds++
		} else {
			naturals = append(naturals, c)
		}
	}

	// Five wilds is five aces.
	if wilds == len(hand) {
		return Evaluation{FiveOfAKind, [5]int{14, 14, 14, 14, 14}}
	}

	rankCounts := make(map[int]int, len(naturals))
	suitCounts := make(map[Suit]int, 4)
	for _, c := range naturals {
		rankCounts[int(c.Rank)]++
		suitCounts[c.Suit]++
	}

	// Natural ranks, highest first.
	ranks := make([]int, 0, len(rankCounts))
	for r := range rankCounts {
		ranks = append(ranks, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	maxOfAKind := 0
	pairCount := 0
	for _, n := range rankCounts {
		if n > maxOfAKind {
			maxOfAKind = n
		}
		if n >= 2 {
			pairCount++
		}
	}

	flushSuit, hasFlush := flushSuit(suitCounts, wilds)
	strHigh, hasStraight := straightHigh(rankCounts, wilds)
	sfHigh, hasSF := straightFlushHigh(naturals, wilds)

	// Five of a kind
	if maxOfAKind+wilds >= 5 {
		best := 14
		if len(ranks) > 0 {
			best = ranks[0]
		}
		return Evaluation{FiveOfAKind, [5]int{best, best, best, best, best}}
	}

	// Royal flush
	if hasSF && sfHigh == 14 {
		return Evaluation{RoyalFlush, [5]int{14, 13, 12, 11, 10}}
	}

	// Straight flush
	if hasSF {
		return Evaluation{StraightFlush, straightKey(sfHigh)}
	}

	// Four of a kind
	if maxOfAKind+wilds >= 4 {
		quad := 14
		for _, r := range ranks {
			if rankCounts[r]+wilds >= 4 {
				quad = r
				break
			}
		}
		kicker := quad
		for _, r := range ranks {
			if r != quad {
				kicker = r
				break
			}
		}
		return Evaluation{FourOfAKind, [5]int{quad, quad, quad, quad, kicker}}
	}

	// Full house: complete the two best natural groups to 3+2.
	if len(ranks) >= 2 {
		groups := rankGroups(rankCounts)
		first, second := groups[0], groups[1]
		needTrips := max(0, 3-first.count)
		needPair := max(0, 2-second.count)
		if needTrips+needPair <= wilds {
			return Evaluation{FullHouse, [5]int{first.rank, first.rank, first.rank, second.rank, second.rank}}
		}
	}

	// Flush
	if hasFlush {
		var key [5]int
		i := 0
		for _, c := range naturals {
			if c.Suit == flushSuit {
				key[i] = int(c.Rank)
				i++
			}
		}
		sort.Sort(sort.Reverse(sort.IntSlice(key[:i])))
		for ; i < 5; i++ {
			key[i] = 14 // wild slots play as aces
		}
		return Evaluation{Flush, key}
	}

	// Straight
	if hasStraight {
		return Evaluation{Straight, straightKey(strHigh)}
	}

	// Three of a kind
	if maxOfAKind+wilds >= 3 {
		trips := 14
		for _, r := range ranks {
			if rankCounts[r]+wilds >= 3 {
				trips = r
				break
			}
		}
		key := [5]int{trips, trips, trips, 14, 14}
		i := 3
		for _, r := range ranks {
			if r != trips && i < 5 {
				key[i] = r
				i++
			}
		}
		return Evaluation{ThreeOfAKind, key}
	}

	// Two pair: two natural pairs, or one natural pair plus a wild pairing
	// the best loose card.
	if pairCount >= 2 || (pairCount >= 1 && wilds >= 1) {
		pairs := make([]int, 0, 2)
		for _, r := range ranks {
			if rankCounts[r] >= 2 && len(pairs) < 2 {
				pairs = append(pairs, r)
			}
		}
		if len(pairs) < 2 {
			second := 14
			for _, r := range ranks {
				if rankCounts[r] == 1 {
					second = r
					break
				}
			}
			pairs = append(pairs, second)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(pairs)))
		kicker := 14
		for _, r := range ranks {
			if r != pairs[0] && r != pairs[1] {
				kicker = r
				break
			}
		}
		return Evaluation{TwoPair, [5]int{pairs[0], pairs[0], pairs[1], pairs[1], kicker}}
	}

	// One pair: a natural pair, or any wild pairing the highest natural.
	if maxOfAKind >= 2 || wilds >= 1 {
		pair := 14
		for _, r := range ranks {
			if rankCounts[r] >= 2 {
				pair = r
				break
			}
		}
		if pair == 14 && len(ranks) > 0 && rankCounts[14] == 0 {
			pair = ranks[0]
		}
		key := [5]int{pair, pair, 14, 14, 14}
		i := 2
		for _, r := range ranks {
			if r != pair && i < 5 {
				key[i] = r
				i++
			}
		}
		return Evaluation{OnePair, key}
	}

	// High card: all naturals distinct, no wilds.
	key := [5]int{14, 14, 14, 14, 14}
	copy(key[:], ranks)
	return Evaluation{HighCard, key}
}

type rankGroup struct {
	rank  int
	count int
}

// rankGroups orders natural rank groups by count descending, rank descending.
func rankGroups(rankCounts map[int]int) []rankGroup {
	groups := make([]rankGroup, 0, len(rankCounts))
	for r, n := range rankCounts {
		groups = append(groups, rankGroup{rank: r, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})
	return groups
}

// flushSuit returns the suit that can be completed to a 5-card flush with the
// available wilds, preferring the suit with the most natural cards.
func flushSuit(suitCounts map[Suit]int, wilds int) (Suit, bool) {
	best := Suit(-1)
	bestCount := 0
	for _, s := range Suits {
		n := suitCounts[s]
		if n+wilds >= 5 && n > bestCount {
			best = s
			bestCount = n
		}
	}
	return best, best >= 0
}

// straightHigh reports whether the natural ranks plus wilds can fill five
// consecutive ranks, returning the highest achievable top card.
//
// The wheel (A-2-3-4-5) is special: rank 2 is always wild and never appears
// as a natural card, so the wheel requires one wild dedicated to the 2 slot
// on top of any wilds filling other gaps.
func straightHigh(rankCounts map[int]int, wilds int) (int, bool) {
	for high := 14; high >= 5; high-- {
		missing := 0
		for i := 0; i < 5; i++ {
			r := high - i
			if i == 0 && high == 5 {
				r = 14 // ace plays low
			}
			if rankCounts[r] == 0 {
				missing++
			}
		}
		if missing <= wilds {
			return high, true
		}
	}

	if wilds >= 1 {
		missing := 0
		for _, r := range []int{14, 3, 4, 5} {
			if rankCounts[r] == 0 {
				missing++
			}
		}
		if missing <= wilds-1 {
			return 5, true
		}
	}

	return 0, false
}

// straightFlushHigh reports whether any single suit's natural cards plus
// wilds can form a straight flush.
func straightFlushHigh(naturals []Card, wilds int) (int, bool) {
	for _, suit := range Suits {
		suitRanks := make(map[int]int)
		for _, c := range naturals {
			if c.Suit == suit {
				suitRanks[int(c.Rank)]++
			}
		}
		if len(suitRanks)+wilds < 5 {
			continue
		}
		if high, ok := straightHigh(suitRanks, wilds); ok {
			return high, true
		}
	}
	return 0, false
}

// straightKey builds the tiebreak key for a straight topped by high. The
// 5-high wheel reads 5-4-3-2 with the ace low.
func straightKey(high int) [5]int {
	if high == 5 {
		return [5]int{5, 4, 3, 2, 14}
	}
	return [5]int{high, high - 1, high - 2, high - 3, high - 4}
}
