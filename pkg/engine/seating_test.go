package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/icpholdem/tableengine/pkg/apperr"
	"github.com/icpholdem/tableengine/pkg/ledger"
)

// nopLedgerClient is a bare test double for ledger.Client: seating
// tests drive the Bridge purely through DebitForBuyIn/CreditFromCashOut
// and never reach the wire, so every method just reports failure.
type nopLedgerClient struct{}

func (nopLedgerClient) QueryTransaction(ctx context.Context, blockIndex uint64) (ledger.Transaction, error) {
	return ledger.Transaction{}, apperr.NotFound("no transaction at block %d", blockIndex)
}

func (nopLedgerClient) PullTransfer(ctx context.Context, owner string, amount uint64) (ledger.TransferResult, error) {
	return ledger.TransferResult{}, apperr.Ledger("pull transfer not available in this test")
}

func (nopLedgerClient) Transfer(ctx context.Context, recipient string, amount uint64) (ledger.TransferResult, error) {
	return ledger.TransferResult{}, apperr.Ledger("transfer not available in this test")
}

func (nopLedgerClient) RecipientMatchesInstance(recipient string) bool {
	return false
}

func newTestEngine(t *testing.T, maxPlayers int) *Engine {
	t.Helper()
	bridge := ledger.NewBridge(ledger.ICP, "instance-account", nopLedgerClient{})
	cfg := Config{
		SmallBlind: 1, BigBlind: 2, MinBuyIn: 20, MaxBuyIn: 200,
		MaxPlayers: maxPlayers, ActionTimeoutSecs: 30, TimeBankSecs: 60,
		Currency: ledger.ICP,
	}
	e, err := NewEngine(cfg, bridge, nil, nil)
	require.NoError(t, err)
	return e
}

func TestJoinTableThenBuyIn(t *testing.T) {
	e := newTestEngine(t, 6)
	now := time.Now()

	idx, err := e.JoinTable("alice", now)
	require.NoError(t, err)
	require.GreaterOrEqual(t, idx, 0)

	_, err = e.JoinTable("alice", now)
	require.Error(t, err)

	e.Bridge.CreditFromCashOut("alice", 100)
	idx2, err := e.BuyIn("alice", 50, now)
	require.NoError(t, err)
	require.Equal(t, idx, idx2)
	require.Equal(t, uint64(50), e.Seats[idx].Occupant.Chips)
	require.Equal(t, uint64(50), e.Bridge.Balance("alice"))
}

func TestBuyInRejectsOutOfRangeAmount(t *testing.T) {
	e := newTestEngine(t, 6)
	e.Bridge.CreditFromCashOut("bob", 1000)
	_, err := e.BuyIn("bob", 5, time.Now())
	require.Error(t, err)
	_, err = e.BuyIn("bob", 500, time.Now())
	require.Error(t, err)
}

func TestCashOutReturnsChipsAndFreesSeat(t *testing.T) {
	e := newTestEngine(t, 6)
	now := time.Now()
	e.Bridge.CreditFromCashOut("carol", 100)
	idx, err := e.BuyIn("carol", 40, now)
	require.NoError(t, err)

	amount, err := e.CashOut("carol", now)
	require.NoError(t, err)
	require.Equal(t, uint64(40), amount)
	require.Equal(t, uint64(100), e.Bridge.Balance("carol"))
	require.Nil(t, e.Seats[idx].Occupant)
}

func TestReloadRejectedDuringActiveHand(t *testing.T) {
	e := newTestEngine(t, 6)
	now := time.Now()
	e.Bridge.CreditFromCashOut("dave", 100)
	_, err := e.BuyIn("dave", 40, now)
	require.NoError(t, err)

	e.Phase = PreFlop
	err = e.Reload("dave", 10, now)
	require.Error(t, err)
}

func TestSitOutAndSitIn(t *testing.T) {
	e := newTestEngine(t, 6)
	now := time.Now()
	e.Bridge.CreditFromCashOut("erin", 100)
	idx, err := e.BuyIn("erin", 40, now)
	require.NoError(t, err)

	require.NoError(t, e.SitOut("erin", now))
	require.Equal(t, SittingOut, e.Seats[idx].Occupant.Status)

	require.NoError(t, e.SitIn("erin"))
	require.Equal(t, Active, e.Seats[idx].Occupant.Status)
}

func TestShowCardsRequiresHoleCards(t *testing.T) {
	e := newTestEngine(t, 6)
	now := time.Now()
	e.Bridge.CreditFromCashOut("frank", 100)
	_, err := e.BuyIn("frank", 40, now)
	require.NoError(t, err)

	err = e.ShowCards("frank")
	require.Error(t, err)
}

func TestLeaveTableRefundsChiplessSeatFreely(t *testing.T) {
	e := newTestEngine(t, 6)
	now := time.Now()
	idx, err := e.JoinTable("gina", now)
	require.NoError(t, err)
	require.NotNil(t, e.Seats[idx].Occupant)

	require.NoError(t, e.LeaveTable("gina", now))
	require.Nil(t, e.Seats[idx].Occupant)
}
