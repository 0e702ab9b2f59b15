package room

import (
	"sort"
	"time"

	"github.com/thoas/go-funk"

	"github.com/lox/wilddraw/internal/protocol"
	"github.com/lox/wilddraw/poker"
)

func (r *Room) startDrawPhaseLocked() {
	r.drawPicks = [2][]int{}
	r.drawSubmitted = [2]bool{}

	seconds := int(r.cfg.TurnTime / time.Second)
	r.broadcastLocked(&protocol.DrawPhase{
		Event:    protocol.EventDrawPhase,
		Pot:      r.pot,
		TimeLeft: seconds,
	})
	r.tickDrawLocked(seconds)
}

func (r *Room) tickDrawLocked(timeLeft int) {
	r.scheduleAfterLocked(time.Second, func() {
		timeLeft--
		r.broadcastLocked(&protocol.TurnTick{Event: protocol.EventTurnTick, TimeLeft: timeLeft})
		if timeLeft <= 0 {
			// Any player who never selected stands pat.
			r.processDrawsLocked()
			return
		}
		r.tickDrawLocked(timeLeft)
	})
}

// HandleDraw records a player's discard selection. Both players submit
// independently; the phase advances once both slots are filled. Resubmission
// before the barrier closes replaces the earlier selection.
func (r *Room) HandleDraw(seat int, cardIndices []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePlaying || r.phase != PhaseDraw {
		return ErrNotInDrawPhase
	}

	picks := funk.UniqInt(cardIndices)
	for _, idx := range picks {
		if idx < 0 || idx >= len(r.players[seat].Hand) {
			return ErrInvalidSelection
		}
	}

	r.drawPicks[seat] = picks
	r.drawSubmitted[seat] = true

	r.sendToLocked(seat, &protocol.DrawConfirmed{
		Event:        protocol.EventDrawConfirmed,
		DiscardCount: len(picks),
	})
	r.sendToLocked(1-seat, &protocol.OpponentDraw{
		Event:        protocol.EventOpponentDraw,
		DiscardCount: len(picks),
	})

	if r.drawSubmitted[0] && r.drawSubmitted[1] {
		r.cancelTimerLocked()
		r.processDrawsLocked()
	}
	return nil
}

func (r *Room) processDrawsLocked() {
	for i, p := range r.players {
		picks := append([]int(nil), r.drawPicks[i]...)

		// Remove highest index first so the remaining positions stay valid.
		sort.Sort(sort.Reverse(sort.IntSlice(picks)))
		for _, idx := range picks {
			p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
		}

		newCards := make([]poker.Card, 0, len(picks))
		for range picks {
			card, ok := r.deck.Draw()
			if !ok {
				r.logger.Error("deck exhausted during draw")
				break
			}
			p.Hand = append(p.Hand, card)
			newCards = append(newCards, card)
		}

		r.sendToLocked(i, &protocol.CardsDrawn{
			Event:    protocol.EventCardsDrawn,
			Hand:     p.Hand,
			NewCards: newCards,
		})
	}
	r.logger.Debug("draws processed",
		"discards0", len(r.drawPicks[0]), "discards1", len(r.drawPicks[1]))

	r.phase = PhaseSecondBet
	r.currentPlayer = 1 - r.dealerIndex
	r.startTurnLocked()
}

func (r *Room) showdownLocked() {
	p0, p1 := r.players[0], r.players[1]

	hands := []protocol.ShowdownHand{
		{Cards: p0.Hand, Description: poker.Describe(p0.Hand)},
		{Cards: p1.Hand, Description: poker.Describe(p1.Hand)},
	}

	cmp := poker.Compare(p0.Hand, p1.Hand)
	winnerIndex := -1
	isTie := cmp == 0
	if cmp > 0 {
		winnerIndex = 0
	} else if cmp < 0 {
		winnerIndex = 1
	}

	pot := r.pot
	winnerName := ""
	if isTie {
		// Floor to the dealer, remainder to the non-dealer.
		half := pot / 2
		r.players[r.dealerIndex].Chips += half
		r.players[1-r.dealerIndex].Chips += pot - half
	} else {
		r.players[winnerIndex].Chips += pot
		winnerName = r.players[winnerIndex].Name
	}

	r.broadcastLocked(&protocol.Showdown{
		Event:       protocol.EventShowdown,
		Hands:       hands,
		WinnerIndex: winnerIndex,
		WinnerName:  winnerName,
		Pot:         pot,
		IsTie:       isTie,
		PlayerChips: [2]int{p0.Chips, p1.Chips},
	})
	r.logger.Debug("showdown", "winner", winnerIndex, "tie", isTie, "pot", pot)

	for i, p := range r.players {
		won := i == winnerIndex
		potWon := 0
		if won {
			potWon = pot
		}
		go r.recorder.RecordHand(p.Name, won, potWon)
	}

	r.pot = 0
	r.checkGameEndLocked()
}
