package ledger

import "context"

// Transaction is the subset of an on-ledger transfer record the bridge
// needs to verify a pull-model deposit: sender, recipient (in the
// ledger's own recipient representation, opaque to us), amount, and
// fee, all in the currency's smallest unit.
type Transaction struct {
	BlockIndex uint64
	Sender     string
	Recipient  string
	Amount     uint64
	Fee        uint64
}

// TransferResult is returned by a successful outbound transfer.
type TransferResult struct {
	BlockIndex uint64
}

// Client is the wire interface spec.md §6 requires the bridge to hold
// against the external ledger (ICP ledger, ckBTC ledger, or the
// Bitcoin-minter auxiliary service sits behind the same shape). Every
// method suspends the calling goroutine on an inter-canister-style
// round trip; callers must treat the engine's state as externally
// observable the instant one of these is invoked, per spec.md §5.
type Client interface {
	// QueryTransaction looks up a transaction by block index. Returns
	// NotFound (apperr) if the index does not exist on the ledger.
	QueryTransaction(ctx context.Context, blockIndex uint64) (Transaction, error)

	// PullTransfer debits amount from owner's wallet (via a prior
	// approval) and credits this instance's account, in owner's name.
	// Used by the push-model deposit flow (spec.md §4.A).
	PullTransfer(ctx context.Context, owner string, amount uint64) (TransferResult, error)

	// Transfer sends amount from this instance's account to
	// recipient. Used by the withdrawal flow; the caller is
	// responsible for having already subtracted the currency's fee
	// from amount.
	Transfer(ctx context.Context, recipient string, amount uint64) (TransferResult, error)

	// RecipientMatchesInstance reports whether a transaction's
	// recorded recipient denotes this instance's own account, using
	// the currency-appropriate representation (ICP account identifier
	// or ckBTC {owner, subaccount} record per spec.md §6).
	RecipientMatchesInstance(recipient string) bool
}
