// Package stats persists per-player results to a JSON file. The store is
// opportunistic: writes happen at hand and match boundaries, failures are
// logged and never surfaced to gameplay.
package stats

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/wilddraw/internal/fileutil"
)

// PlayerStats is one player's lifetime record.
type PlayerStats struct {
	GamesPlayed   int `json:"gamesPlayed"`
	GamesWon      int `json:"gamesWon"`
	HandsPlayed   int `json:"handsPlayed"`
	HandsWon      int `json:"handsWon"`
	BiggestPot    int `json:"biggestPot"`
	TotalWinnings int `json:"totalWinnings"`
}

type statsFile struct {
	Players map[string]*PlayerStats `json:"players"`
}

// Store reads and writes the stats file. Safe for concurrent use.
type Store struct {
	path   string
	logger *log.Logger

	mu      sync.Mutex
	players map[string]*PlayerStats
}

// NewStore loads the stats file at path, starting empty if it does not
// exist yet.
func NewStore(path string, logger *log.Logger) (*Store, error) {
	s := &Store{
		path:    path,
		logger:  logger,
		players: make(map[string]*PlayerStats),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var file statsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if file.Players != nil {
		s.players = file.Players
	}
	return s, nil
}

// Get returns a copy of the named player's record, zero-valued for unknown
// players.
func (s *Store) Get(name string) PlayerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[name]; ok {
		return *p
	}
	return PlayerStats{}
}

// All returns a snapshot of every player's record.
func (s *Store) All() map[string]PlayerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]PlayerStats, len(s.players))
	for name, p := range s.players {
		out[name] = *p
	}
	return out
}

// RecordHand updates the named player's record after a hand resolves.
func (s *Store) RecordHand(name string, won bool, potWon int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerLocked(name)
	p.HandsPlayed++
	if won {
		p.HandsWon++
		p.TotalWinnings += potWon
		if potWon > p.BiggestPot {
			p.BiggestPot = potWon
		}
	}
	s.saveLocked()
}

// RecordMatch updates the named player's record after a match ends.
func (s *Store) RecordMatch(name string, won bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerLocked(name)
	p.GamesPlayed++
	if won {
		p.GamesWon++
	}
	s.saveLocked()
}

func (s *Store) playerLocked(name string) *PlayerStats {
	p, ok := s.players[name]
	if !ok {
		p = &PlayerStats{}
		s.players[name] = p
	}
	return p
}

func (s *Store) saveLocked() {
	data, err := json.MarshalIndent(statsFile{Players: s.players}, "", "  ")
	if err != nil {
		s.logger.Error("marshal stats", "err", err)
		return
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0644); err != nil {
		s.logger.Error("write stats", "err", err)
	}
}
