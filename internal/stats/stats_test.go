package stats

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stats.json")
	s, err := NewStore(path, log.New(io.Discard))
	require.NoError(t, err)
	return s, path
}

func TestRecordHand(t *testing.T) {
	s, _ := newTestStore(t)

	s.RecordHand("alice", true, 40)
	s.RecordHand("alice", false, 0)
	s.RecordHand("alice", true, 120)

	got := s.Get("alice")
	assert.Equal(t, 3, got.HandsPlayed)
	assert.Equal(t, 2, got.HandsWon)
	assert.Equal(t, 120, got.BiggestPot)
	assert.Equal(t, 160, got.TotalWinnings)
}

func TestRecordMatch(t *testing.T) {
	s, _ := newTestStore(t)

	s.RecordMatch("alice", true)
	s.RecordMatch("bob", false)

	assert.Equal(t, PlayerStats{GamesPlayed: 1, GamesWon: 1}, s.Get("alice"))
	assert.Equal(t, PlayerStats{GamesPlayed: 1}, s.Get("bob"))
	assert.Equal(t, PlayerStats{}, s.Get("unknown"))
}

func TestStatsPersistAcrossReopen(t *testing.T) {
	s, path := newTestStore(t)
	s.RecordHand("alice", true, 60)
	s.RecordMatch("alice", true)

	reopened, err := NewStore(path, log.New(io.Discard))
	require.NoError(t, err)

	got := reopened.Get("alice")
	assert.Equal(t, 1, got.HandsPlayed)
	assert.Equal(t, 1, got.GamesWon)
	assert.Equal(t, 60, got.BiggestPot)
}

func TestStatsFileShape(t *testing.T) {
	s, path := newTestStore(t)
	s.RecordHand("alice", true, 40)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var file struct {
		Players map[string]map[string]int `json:"players"`
	}
	require.NoError(t, json.Unmarshal(data, &file))
	require.Contains(t, file.Players, "alice")
	assert.Equal(t, 1, file.Players["alice"]["handsPlayed"])
	assert.Equal(t, 40, file.Players["alice"]["totalWinnings"])
}

func TestAllReturnsSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	s.RecordMatch("alice", true)
	s.RecordMatch("bob", false)

	all := s.All()
	assert.Len(t, all, 2)

	all["alice"] = PlayerStats{GamesPlayed: 99}
	assert.Equal(t, 1, s.Get("alice").GamesPlayed, "mutating the snapshot does not touch the store")
}

func TestNewStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewStore(path, log.New(io.Discard))
	assert.Error(t, err)
}
