package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/icpholdem/tableengine/pkg/apperr"
	"github.com/icpholdem/tableengine/pkg/ratelimit"
)

const withdrawalCooldown = 60 * time.Second

// Bridge is the Ledger Bridge of spec.md §4.A: a per-identity escrow
// ledger plus the reservation sets that make concurrent deposit
// verification and withdrawal safe against the double-credit and
// double-spend races a single-threaded-but-suspending runtime is prone
// to. Grounded directly on spec.md §4.A; the teacher has no equivalent
// (pkg/poker/player.go holds chips only, never off-table balance).
type Bridge struct {
	mu sync.Mutex

	currency    Currency
	depositAddr string
	client      Client

	balances           map[string]uint64
	verifiedDeposits   map[uint64]struct{}
	pendingDeposits    map[uint64]struct{}
	pendingWithdrawals map[string]struct{}

	withdrawCooldown *ratelimit.Cooldown
	depositRate      *ratelimit.Bucket
}

// NewBridge constructs a Bridge for the given currency, backed by
// client. depositAddr is this instance's own recipient representation
// (an ICP account identifier hex string, or a ckBTC owner principal),
// used only for log/display purposes; verification goes through
// client.RecipientMatchesInstance.
func NewBridge(currency Currency, depositAddr string, client Client) *Bridge {
	return &Bridge{
		currency:           currency,
		depositAddr:        depositAddr,
		client:             client,
		balances:           make(map[string]uint64),
		verifiedDeposits:   make(map[uint64]struct{}),
		pendingDeposits:    make(map[uint64]struct{}),
		pendingWithdrawals: make(map[string]struct{}),
		withdrawCooldown:   ratelimit.NewCooldown(withdrawalCooldown),
		depositRate:        ratelimit.NewBucket(5, time.Minute),
	}
}

// Balance returns identity's current escrow balance.
func (b *Bridge) Balance(identity string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[identity]
}

func addSaturating(a, delta uint64) uint64 {
	sum := a + delta
	if sum < a {
		return ^uint64(0)
	}
	return sum
}

// VerifyDeposit implements the pull-model deposit of spec.md §4.A:
// the caller already transferred funds to this instance's own account
// out of band and supplies the block index so we can confirm it.
func (b *Bridge) VerifyDeposit(ctx context.Context, identity string, blockIndex uint64, now time.Time) error {
	b.mu.Lock()
	if !b.depositRate.Allow(identity, now) {
		b.mu.Unlock()
		return apperr.RateLimit("deposit verification rate exceeded, try again later")
	}
	if _, ok := b.verifiedDeposits[blockIndex]; ok {
		b.mu.Unlock()
		return apperr.Reservation("block index %d already verified", blockIndex)
	}
	if _, ok := b.pendingDeposits[blockIndex]; ok {
		b.mu.Unlock()
		return apperr.Reservation("block index %d verification already in progress", blockIndex)
	}
	b.pendingDeposits[blockIndex] = struct{}{}
	b.mu.Unlock()

	// Suspension point: the engine is externally observable with this
	// block index marked pending for the duration of the query.
	tx, err := b.client.QueryTransaction(ctx, blockIndex)

	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pendingDeposits, blockIndex)

	if err != nil {
		return apperr.Ledger("%s", err.Error())
	}
	if tx.Amount == 0 {
		return apperr.Precondition("transaction at block %d has zero amount", blockIndex)
	}
	if !b.client.RecipientMatchesInstance(tx.Recipient) {
		return apperr.Precondition("transaction at block %d does not credit this instance", blockIndex)
	}

	b.verifiedDeposits[blockIndex] = struct{}{}
	b.balances[identity] = addSaturating(b.balances[identity], tx.Amount)
	return nil
}

// PushDeposit implements the push-model deposit of spec.md §4.A: the
// caller has pre-approved this instance to pull amount out of their
// wallet.
func (b *Bridge) PushDeposit(ctx context.Context, identity string, amount uint64) error {
	result, err := b.client.PullTransfer(ctx, identity, amount)
	if err != nil {
		return apperr.Ledger("%s", err.Error())
	}
	_ = result

	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[identity] = addSaturating(b.balances[identity], amount)
	return nil
}

// InHandChecker reports whether identity is currently seated,
// non-folded, in an active hand — used to enforce the "not a seated
// non-folded player in an active hand" withdrawal precondition without
// the ledger package importing the engine package.
type InHandChecker func(identity string) bool

// Withdraw implements spec.md §4.A's withdrawal flow including the
// refund-on-failure critical section.
func (b *Bridge) Withdraw(ctx context.Context, identity string, amount uint64, now time.Time, inHand InHandChecker) (TransferResult, error) {
	params := ParamsFor(b.currency)
	if amount < params.MinWithdraw {
		return TransferResult{}, apperr.Precondition("withdrawal below minimum of %d", params.MinWithdraw).WithAmounts(amount, b.Balance(identity))
	}
	if amount > params.MaxWithdraw {
		return TransferResult{}, apperr.Precondition("withdrawal above maximum of %d", params.MaxWithdraw).WithAmounts(amount, b.Balance(identity))
	}

	b.mu.Lock()
	if b.withdrawCooldown.Active(identity, now) {
		b.mu.Unlock()
		return TransferResult{}, apperr.RateLimit("withdrawal cooldown active")
	}
	if _, ok := b.pendingWithdrawals[identity]; ok {
		b.mu.Unlock()
		return TransferResult{}, apperr.Reservation("withdrawal already in progress")
	}
	if inHand != nil && inHand(identity) {
		b.mu.Unlock()
		return TransferResult{}, apperr.Precondition("cannot withdraw while seated in an active hand")
	}
	balance := b.balances[identity]
	if balance < amount {
		b.mu.Unlock()
		return TransferResult{}, apperr.Arithmetic("insufficient balance").WithAmounts(amount, balance)
	}

	b.balances[identity] = balance - amount
	b.pendingWithdrawals[identity] = struct{}{}
	b.mu.Unlock()

	params2 := ParamsFor(b.currency)
	// Suspension point: balance already debited and reservation held.
	result, err := b.client.Transfer(ctx, identity, amount-params2.Fee)

	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pendingWithdrawals, identity)

	if err != nil {
		b.balances[identity] = addSaturating(b.balances[identity], amount)
		return TransferResult{}, apperr.Ledger("%s", err.Error())
	}

	b.withdrawCooldown.Record(identity, now)
	return result, nil
}

// DebitForBuyIn atomically moves amount from identity's escrow balance
// into table chips, returning ArithmeticError if the balance is
// insufficient. Called by the engine's seating logic (spec.md §4.A
// buy-in/reload).
func (b *Bridge) DebitForBuyIn(identity string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	balance := b.balances[identity]
	if balance < amount {
		return apperr.Arithmetic("insufficient balance for buy-in").WithAmounts(amount, balance)
	}
	b.balances[identity] = balance - amount
	return nil
}

// CreditFromCashOut returns chips to identity's escrow balance on
// cash-out.
func (b *Bridge) CreditFromCashOut(identity string, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[identity] = addSaturating(b.balances[identity], amount)
}

// DepositAddress returns this instance's own deposit recipient
// representation, for get_deposit_address.
func (b *Bridge) DepositAddress() string {
	return b.depositAddr
}

// PersistedBridge is the serializable snapshot of the Bridge's
// custodial state, used by the engine's pre-upgrade persistence
// (spec.md §4.G). The pending-reservation sets are included
// deliberately: a mid-flight deposit/withdrawal reservation must
// survive an upgrade as a still-held reservation, not be silently
// dropped.
type PersistedBridge struct {
	Balances           map[string]uint64 `json:"balances"`
	VerifiedDeposits   []uint64          `json:"verified_deposits"`
	PendingDeposits    []uint64          `json:"pending_deposits"`
	PendingWithdrawals []string          `json:"pending_withdrawals"`
}

// Export snapshots the Bridge's custodial state for serialization.
func (b *Bridge) Export() PersistedBridge {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := PersistedBridge{Balances: make(map[string]uint64, len(b.balances))}
	for k, v := range b.balances {
		out.Balances[k] = v
	}
	for k := range b.verifiedDeposits {
		out.VerifiedDeposits = append(out.VerifiedDeposits, k)
	}
	for k := range b.pendingDeposits {
		out.PendingDeposits = append(out.PendingDeposits, k)
	}
	for k := range b.pendingWithdrawals {
		out.PendingWithdrawals = append(out.PendingWithdrawals, k)
	}
	return out
}

// Restore replaces the Bridge's custodial state with a previously
// exported snapshot. Used only by post-upgrade restore; failure to
// call this before serving traffic would silently reinitialize
// custodial funds, which spec.md §4.G/§7 forbid.
func (b *Bridge) Restore(s PersistedBridge) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.balances = make(map[string]uint64, len(s.Balances))
	for k, v := range s.Balances {
		b.balances[k] = v
	}
	b.verifiedDeposits = make(map[uint64]struct{}, len(s.VerifiedDeposits))
	for _, k := range s.VerifiedDeposits {
		b.verifiedDeposits[k] = struct{}{}
	}
	b.pendingDeposits = make(map[uint64]struct{}, len(s.PendingDeposits))
	for _, k := range s.PendingDeposits {
		b.pendingDeposits[k] = struct{}{}
	}
	b.pendingWithdrawals = make(map[string]struct{}, len(s.PendingWithdrawals))
	for _, k := range s.PendingWithdrawals {
		b.pendingWithdrawals[k] = struct{}{}
	}
}
