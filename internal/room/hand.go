package room

import (
	"time"

	"github.com/lox/wilddraw/internal/protocol"
)

func (r *Room) startHandLocked() {
	r.deck = r.newDeck()
	r.pot = 0
	r.currentBet = 0
	r.phase = PhaseBlinds

	for _, p := range r.players {
		p.Hand = p.Hand[:0]
		p.Bet = 0
		p.Folded = false
		p.HasActed = false
	}

	for i := 0; i < 5; i++ {
		for _, p := range r.players {
			card, ok := r.deck.Draw()
			if !ok {
				r.logger.Error("deck exhausted during deal")
				return
			}
			p.Hand = append(p.Hand, card)
		}
	}

	// Dealer posts the small blind in heads-up.
	sb := r.dealerIndex
	bb := 1 - r.dealerIndex
	r.postBlindLocked(sb, r.cfg.SmallBlind)
	r.postBlindLocked(bb, r.cfg.BigBlind)

	for i, p := range r.players {
		opp := r.players[1-i]
		r.sendToLocked(i, &protocol.HandDealt{
			Event:         protocol.EventHandDealt,
			Hand:          p.Hand,
			Pot:           r.pot,
			PlayerChips:   p.Chips,
			OpponentChips: opp.Chips,
			PlayerBet:     p.Bet,
			OpponentBet:   opp.Bet,
			DealerIndex:   r.dealerIndex,
			IsDealer:      i == r.dealerIndex,
		})
	}
	r.logger.Debug("hand dealt", "dealer", r.dealerIndex, "pot", r.pot)

	r.phase = PhaseFirstBet
	r.currentBet = r.cfg.BigBlind
	r.currentPlayer = sb
	r.startTurnLocked()
}

// postBlindLocked moves up to amount from the player's stack into the pot. A
// short stack posts an all-in partial blind.
func (r *Room) postBlindLocked(seat, amount int) {
	p := r.players[seat]
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.Bet = amount
	r.pot += amount
}

func (r *Room) startTurnLocked() {
	p := r.players[r.currentPlayer]
	seconds := int(r.cfg.TurnTime / time.Second)

	r.broadcastLocked(&protocol.TurnStart{
		Event:       protocol.EventTurnStart,
		PlayerIndex: r.currentPlayer,
		PlayerName:  p.Name,
		CallAmount:  r.currentBet - p.Bet,
		MinRaise:    r.currentBet,
		MaxBet:      p.Chips,
		Pot:         r.pot,
		CurrentBet:  r.currentBet,
		Phase:       r.phase.String(),
		TimeLeft:    seconds,
	})
	r.tickTurnLocked(seconds)
}

func (r *Room) tickTurnLocked(timeLeft int) {
	r.scheduleAfterLocked(time.Second, func() {
		timeLeft--
		r.broadcastLocked(&protocol.TurnTick{Event: protocol.EventTurnTick, TimeLeft: timeLeft})
		if timeLeft <= 0 {
			seat := r.currentPlayer
			r.logger.Info("turn timed out", "player", r.players[seat].Name)
			if err := r.applyActionLocked(seat, ActionFold, 0); err != nil {
				r.logger.Error("timeout fold rejected", "err", err)
			}
			return
		}
		r.tickTurnLocked(timeLeft)
	})
}

// HandleAction applies a betting action from the given seat. Invalid actions
// are rejected without touching game state or the turn timer.
func (r *Room) HandleAction(seat int, action string, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, err := ParseAction(action)
	if err != nil {
		return err
	}
	return r.applyActionLocked(seat, a, amount)
}

// applyActionLocked is the single path for every state transition driven by
// a betting decision, including timeout auto-folds.
func (r *Room) applyActionLocked(seat int, action Action, amount int) error {
	if r.state != StatePlaying || (r.phase != PhaseFirstBet && r.phase != PhaseSecondBet) {
		return ErrNotYourTurn
	}
	if seat != r.currentPlayer {
		return ErrNotYourTurn
	}

	p := r.players[seat]
	opp := r.players[1-seat]

	// Validate before cancelling the timer so a rejected action leaves the
	// turn clock running.
	var raiseTotal int
	if action == ActionRaise {
		raiseTotal = amount
		if committed := p.Chips + p.Bet; raiseTotal > committed {
			raiseTotal = committed
		}
		if raiseTotal <= r.currentBet {
			return ErrInvalidAction
		}
	}

	r.cancelTimerLocked()

	switch action {
	case ActionFold:
		p.Folded = true
		r.broadcastLocked(&protocol.ActionMade{
			Event:       protocol.EventActionMade,
			PlayerIndex: seat,
			Action:      "fold",
			Pot:         r.pot,
		})
		r.endHandLocked(1-seat, "fold")
		return nil

	case ActionCall:
		callAmount := r.currentBet - p.Bet
		if callAmount > p.Chips {
			callAmount = p.Chips
		}
		p.Chips -= callAmount
		p.Bet += callAmount
		r.pot += callAmount
		p.HasActed = true

		name := "call"
		if callAmount == 0 {
			name = "check"
		}
		r.broadcastLocked(&protocol.ActionMade{
			Event:       protocol.EventActionMade,
			PlayerIndex: seat,
			Action:      name,
			Amount:      callAmount,
			Pot:         r.pot,
			PlayerChips: p.Chips,
		})

	case ActionRaise:
		raiseAmount := raiseTotal - p.Bet
		p.Chips -= raiseAmount
		p.Bet = raiseTotal
		r.pot += raiseAmount
		r.currentBet = raiseTotal
		p.HasActed = true
		opp.HasActed = false // opponent must respond

		r.broadcastLocked(&protocol.ActionMade{
			Event:       protocol.EventActionMade,
			PlayerIndex: seat,
			Action:      "raise",
			Amount:      raiseTotal,
			Pot:         r.pot,
			PlayerChips: p.Chips,
			CurrentBet:  r.currentBet,
		})
	}

	if r.bettingRoundCompleteLocked() {
		r.endBettingRoundLocked()
	} else {
		r.currentPlayer = 1 - r.currentPlayer
		r.startTurnLocked()
	}
	return nil
}

func (r *Room) bettingRoundCompleteLocked() bool {
	for _, p := range r.players {
		if !p.HasActed {
			return false
		}
		if p.Bet != r.currentBet && p.Chips != 0 {
			return false
		}
	}
	return true
}

func (r *Room) endBettingRoundLocked() {
	for _, p := range r.players {
		p.Bet = 0
		p.HasActed = false
	}
	r.currentBet = 0

	switch r.phase {
	case PhaseFirstBet:
		r.phase = PhaseDraw
		r.startDrawPhaseLocked()
	case PhaseSecondBet:
		r.phase = PhaseShowdown
		r.showdownLocked()
	}
}

// endHandLocked resolves a hand won without showdown.
func (r *Room) endHandLocked(winnerSeat int, reason string) {
	winner := r.players[winnerSeat]
	pot := r.pot
	winner.Chips += pot

	r.broadcastLocked(&protocol.HandEnd{
		Event:       protocol.EventHandEnd,
		WinnerIndex: winnerSeat,
		WinnerName:  winner.Name,
		Pot:         pot,
		Reason:      reason,
		PlayerChips: [2]int{r.players[0].Chips, r.players[1].Chips},
	})
	r.logger.Debug("hand ended", "winner", winner.Name, "reason", reason, "pot", pot)

	for i, p := range r.players {
		won := i == winnerSeat
		potWon := 0
		if won {
			potWon = pot
		}
		go r.recorder.RecordHand(p.Name, won, potWon)
	}

	r.pot = 0
	r.checkGameEndLocked()
}

func (r *Room) checkGameEndLocked() {
	// The hand is settled; no further betting actions are valid until the
	// next deal.
	r.phase = PhaseIdle

	for i, p := range r.players {
		if p.Chips <= 0 {
			r.endGameLocked(1-i, "bust")
			return
		}
	}

	r.scheduleAfterLocked(r.cfg.SettleDelay, func() {
		r.dealerIndex = 1 - r.dealerIndex
		r.startHandLocked()
	})
}
