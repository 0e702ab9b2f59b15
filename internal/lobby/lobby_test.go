package lobby

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wilddraw/internal/room"
)

type nopConn struct{}

func (nopConn) Send(any) error { return nil }

func newTestLobby(t *testing.T, clock quartz.Clock) *Lobby {
	t.Helper()
	return New(room.DefaultConfig(),
		WithClock(clock),
		WithLogger(log.New(io.Discard)),
	)
}

func TestQuickPlayPairsPlayers(t *testing.T) {
	mock := quartz.NewMock(t)
	l := newTestLobby(t, mock)

	rm1, seat, err := l.QuickPlay(nopConn{}, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, seat)
	assert.Equal(t, 1, l.RoomCount())

	rm2, seat, err := l.QuickPlay(nopConn{}, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, seat)
	assert.Same(t, rm1, rm2, "second player joins the waiting room")
	assert.Equal(t, 1, l.RoomCount())
	assert.Equal(t, room.StateCountdown, rm1.State())

	// A full room is skipped; the third player opens a new one.
	rm3, seat, err := l.QuickPlay(nopConn{}, "carol")
	require.NoError(t, err)
	assert.Equal(t, 0, seat)
	assert.NotSame(t, rm1, rm3)
	assert.Equal(t, 2, l.RoomCount())
}

func TestCreateAndJoinPrivateRoom(t *testing.T) {
	mock := quartz.NewMock(t)
	l := newTestLobby(t, mock)

	rm, seat, err := l.CreateRoom(nopConn{}, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, seat)
	assert.Regexp(t, `^\d{4}$`, rm.Code())

	joined, seat, err := l.JoinRoom(nopConn{}, "bob", rm.Code())
	require.NoError(t, err)
	assert.Equal(t, 1, seat)
	assert.Same(t, rm, joined)

	_, _, err = l.JoinRoom(nopConn{}, "carol", rm.Code())
	assert.ErrorIs(t, err, room.ErrRoomFull)
}

func TestJoinRoomValidation(t *testing.T) {
	mock := quartz.NewMock(t)
	l := newTestLobby(t, mock)

	_, _, err := l.JoinRoom(nopConn{}, "bob", "12")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, _, err = l.JoinRoom(nopConn{}, "bob", "abcd")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, _, err = l.JoinRoom(nopConn{}, "bob", "9999")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomCodesAreUnique(t *testing.T) {
	mock := quartz.NewMock(t)
	l := newTestLobby(t, mock)

	codes := map[string]bool{}
	for i := 0; i < 50; i++ {
		rm, _, err := l.CreateRoom(nopConn{}, "host")
		require.NoError(t, err)
		assert.False(t, codes[rm.Code()], "duplicate code %s", rm.Code())
		codes[rm.Code()] = true
	}
}

func TestSweepDropsAbandonedRooms(t *testing.T) {
	mock := quartz.NewMock(t)
	l := newTestLobby(t, mock)

	// An emptied room.
	empty, _, err := l.CreateRoom(nopConn{}, "alice")
	require.NoError(t, err)
	empty.HandleDisconnect(0)

	// A finished room: both seated, match started, one side drops.
	done, _, err := l.CreateRoom(nopConn{}, "bob")
	require.NoError(t, err)
	_, _, err = l.JoinRoom(nopConn{}, "carol", done.Code())
	require.NoError(t, err)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		mock.Advance(time.Second).MustWait(ctx)
	}
	require.Equal(t, room.StatePlaying, done.State())
	done.HandleDisconnect(1)
	require.Equal(t, room.StateFinished, done.State())

	// A healthy waiting room survives the sweep.
	waiting, _, err := l.CreateRoom(nopConn{}, "dave")
	require.NoError(t, err)

	l.sweep()

	// The finished room is also dropped by its own onFinish callback, which
	// runs on a separate goroutine.
	require.Eventually(t, func() bool {
		return l.RoomCount() == 1
	}, time.Second, 10*time.Millisecond)
	_, _, err = l.JoinRoom(nopConn{}, "eve", waiting.Code())
	assert.NoError(t, err)
}

func TestRoomRemovedWhenMatchEnds(t *testing.T) {
	mock := quartz.NewMock(t)
	l := newTestLobby(t, mock)

	rm, _, err := l.CreateRoom(nopConn{}, "alice")
	require.NoError(t, err)
	_, _, err = l.JoinRoom(nopConn{}, "bob", rm.Code())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		mock.Advance(time.Second).MustWait(ctx)
	}
	rm.HandleDisconnect(0)

	require.Eventually(t, func() bool {
		return l.RoomCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestRunStopsOnCancel(t *testing.T) {
	mock := quartz.NewMock(t)
	l := newTestLobby(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
