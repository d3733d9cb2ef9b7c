package ledger

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	rpc "github.com/gorilla/rpc/v2/json2"
)

// HTTPClient is the default Client (spec.md §6 "Wire interface to the
// fungible-token ledger"), speaking JSON-RPC 2.0 to a configured
// ledger canister's HTTP gateway. Adapted from archive.HTTPClient,
// which is itself grounded on luxfi-evm's json2 client-side codec
// usage (see DESIGN.md) — both external collaborators the engine
// suspends on share the same request/response shape.
type HTTPClient struct {
	BaseURL      string
	HTTPClient   *http.Client
	ourRecipient string
}

// NewHTTPClient builds an HTTPClient against baseURL. ourRecipient is
// this instance's own recipient representation in the ledger's wire
// format (an ICP account-identifier hex string, or a ckBTC owner
// principal), used by RecipientMatchesInstance.
func NewHTTPClient(baseURL, ourRecipient string) *HTTPClient {
	return &HTTPClient{BaseURL: baseURL, HTTPClient: http.DefaultClient, ourRecipient: ourRecipient}
}

type queryTransactionArgs struct {
	BlockIndex uint64 `json:"block_index"`
}

type queryTransactionReply struct {
	Transaction Transaction `json:"transaction"`
}

func (c *HTTPClient) call(ctx context.Context, method string, args, reply interface{}) error {
	body, err := rpc.EncodeClientRequest(method, args)
	if err != nil {
		return fmt.Errorf("ledger: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ledger: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("ledger: send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ledger: received status code %d", resp.StatusCode)
	}
	return rpc.DecodeClientResponse(resp.Body, reply)
}

// QueryTransaction implements Client.
func (c *HTTPClient) QueryTransaction(ctx context.Context, blockIndex uint64) (Transaction, error) {
	var reply queryTransactionReply
	if err := c.call(ctx, "Ledger.QueryTransaction", &queryTransactionArgs{BlockIndex: blockIndex}, &reply); err != nil {
		return Transaction{}, err
	}
	return reply.Transaction, nil
}

type pullTransferArgs struct {
	Owner  string `json:"owner"`
	Amount uint64 `json:"amount"`
}

type transferReply struct {
	BlockIndex uint64 `json:"block_index"`
}

// PullTransfer implements Client.
func (c *HTTPClient) PullTransfer(ctx context.Context, owner string, amount uint64) (TransferResult, error) {
	var reply transferReply
	if err := c.call(ctx, "Ledger.PullTransfer", &pullTransferArgs{Owner: owner, Amount: amount}, &reply); err != nil {
		return TransferResult{}, err
	}
	return TransferResult{BlockIndex: reply.BlockIndex}, nil
}

type transferArgs struct {
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
}

// Transfer implements Client.
func (c *HTTPClient) Transfer(ctx context.Context, recipient string, amount uint64) (TransferResult, error) {
	var reply transferReply
	if err := c.call(ctx, "Ledger.Transfer", &transferArgs{Recipient: recipient, Amount: amount}, &reply); err != nil {
		return TransferResult{}, err
	}
	return TransferResult{BlockIndex: reply.BlockIndex}, nil
}

// RecipientMatchesInstance implements Client by a direct string
// comparison against ourRecipient: the caller (engine/Bridge) is
// responsible for ensuring both sides use the same currency-specific
// representation (spec.md §6 — CRC32/SHA224 account identifier for
// ICP, {owner, subaccount} record for ckBTC). ourRecipient is used
// exactly as passed to NewHTTPClient; this client does not derive it.
func (c *HTTPClient) RecipientMatchesInstance(recipient string) bool {
	return recipient == c.ourRecipient
}
