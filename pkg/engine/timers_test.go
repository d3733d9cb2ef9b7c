package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHeartbeatRevivesDisconnectedPlayer(t *testing.T) {
	e := newTestEngine(t, 6)
	now := time.Now()
	e.Bridge.CreditFromCashOut("alice", 100)
	idx, err := e.BuyIn("alice", 40, now)
	require.NoError(t, err)

	e.Seats[idx].Occupant.Status = Disconnected
	require.NoError(t, e.Heartbeat("alice", now))
	require.Equal(t, Active, e.Seats[idx].Occupant.Status)
}

func TestCheckTimeoutsMarksDisconnectAfterThreshold(t *testing.T) {
	e := newTestEngine(t, 6)
	start := time.Now()
	e.Bridge.CreditFromCashOut("alice", 100)
	idx, err := e.BuyIn("alice", 40, start)
	require.NoError(t, err)
	_ = idx

	later := start.Add(disconnectThreshold + time.Second)
	e.CheckTimeouts(later)
	require.Equal(t, Disconnected, e.Seats[0].Occupant.Status)
}

func TestCheckTimeoutsAutoKicksAfterSitOutWindow(t *testing.T) {
	e := newTestEngine(t, 6)
	now := time.Now()
	e.Bridge.CreditFromCashOut("alice", 100)
	idx, err := e.BuyIn("alice", 40, now)
	require.NoError(t, err)

	sittingSince := now
	e.Seats[idx].Occupant.Status = SittingOut
	e.Seats[idx].Occupant.SittingOutSince = &sittingSince
	e.Phase = WaitingForPlayers

	later := now.Add(autoKickThreshold + time.Second)
	e.CheckTimeouts(later)
	require.Nil(t, e.Seats[idx].Occupant)
	require.Equal(t, uint64(100), e.Bridge.Balance("alice"))
}

func TestCheckTimeoutsReportsAutoDealReady(t *testing.T) {
	e := newTestEngine(t, 6)
	now := time.Now()
	for _, id := range []string{"alice", "bob"} {
		e.Bridge.CreditFromCashOut(id, 100)
		_, err := e.BuyIn(id, 40, now)
		require.NoError(t, err)
	}
	past := now.Add(-time.Second)
	e.AutoDealAt = &past

	signal := e.CheckTimeouts(now)
	require.Equal(t, AutoDealReady, signal)
}

func TestUseTimeBankExtendsDeadlineOnce(t *testing.T) {
	e := newTestEngine(t, 6)
	now := time.Now()
	e.Bridge.CreditFromCashOut("alice", 100)
	_, err := e.BuyIn("alice", 40, now)
	require.NoError(t, err)
	e.ActionOn = 0
	e.ActionTimer = &ActionTimer{Seat: 0, StartedAt: now, ExpiresAt: now.Add(time.Second)}

	require.NoError(t, e.UseTimeBank("alice", now))
	require.True(t, e.ActionTimer.UsingTimeBank)
	require.True(t, e.ActionTimer.ExpiresAt.After(now.Add(time.Second)))

	err = e.UseTimeBank("alice", now)
	require.Error(t, err)
}
