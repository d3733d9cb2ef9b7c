package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewEngineOwnerIsNotAutomaticallyController(t *testing.T) {
	e := newTestEngine(t, 6)
	require.False(t, e.IsController("nobody"))
}

func TestAddControllerRequiresExistingController(t *testing.T) {
	e := newTestEngine(t, 6)
	err := e.AddController("outsider", "alice")
	require.Error(t, err)

	e.Controllers["root"] = struct{}{}
	require.NoError(t, e.AddController("root", "alice"))
	require.True(t, e.IsController("alice"))
}

func TestRemoveController(t *testing.T) {
	e := newTestEngine(t, 6)
	e.Controllers["root"] = struct{}{}
	require.NoError(t, e.AddController("root", "alice"))
	require.NoError(t, e.RemoveController("root", "alice"))
	require.False(t, e.IsController("alice"))
}

func TestUpdateConfigRejectedMidHand(t *testing.T) {
	e := newTestEngine(t, 6)
	e.Controllers["root"] = struct{}{}
	e.Phase = PreFlop

	newCfg := e.Config
	newCfg.BigBlind = 4
	err := e.UpdateConfig("root", newCfg)
	require.Error(t, err)
}

func TestUpdateConfigAppliesBetweenHands(t *testing.T) {
	e := newTestEngine(t, 6)
	e.Controllers["root"] = struct{}{}

	newCfg := e.Config
	newCfg.BigBlind = 4
	newCfg.MinBuyIn = 40
	require.NoError(t, e.UpdateConfig("root", newCfg))
	require.Equal(t, uint64(4), e.Config.BigBlind)
}

func TestResetRefundsSeatedChipsAndClearsTable(t *testing.T) {
	e := newTestEngine(t, 6)
	e.Controllers["root"] = struct{}{}
	now := time.Now()
	e.Bridge.CreditFromCashOut("alice", 100)
	idx, err := e.BuyIn("alice", 40, now)
	require.NoError(t, err)
	require.NotNil(t, e.Seats[idx].Occupant)

	require.NoError(t, e.Reset("root"))
	require.Nil(t, e.Seats[idx].Occupant)
	require.Equal(t, uint64(100), e.Bridge.Balance("alice"))
	require.Equal(t, WaitingForPlayers, e.Phase)
}

func TestRestoreBalanceRequiresController(t *testing.T) {
	e := newTestEngine(t, 6)
	err := e.RestoreBalance("nobody", "alice", 50)
	require.Error(t, err)

	e.Controllers["root"] = struct{}{}
	require.NoError(t, e.RestoreBalance("root", "alice", 50))
	require.Equal(t, uint64(50), e.Bridge.Balance("alice"))
}

func TestGetRawStateRequiresController(t *testing.T) {
	e := newTestEngine(t, 6)
	now := time.Now()
	e.Bridge.CreditFromCashOut("alice", 100)
	_, err := e.BuyIn("alice", 40, now)
	require.NoError(t, err)

	_, err = e.GetRawState("nobody")
	require.Error(t, err)

	e.Controllers["root"] = struct{}{}
	state, err := e.GetRawState("root")
	require.NoError(t, err)
	require.Equal(t, e.Config, state.Config)
	require.NotNil(t, state.Seats[0])
	require.Equal(t, uint64(40), state.Seats[0].Chips)
}
