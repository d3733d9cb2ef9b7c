package archive

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	rpc "github.com/gorilla/rpc/v2/json2"
)

// Client publishes completed hand histories to a configured archive
// address. Adapted from luxfi-evm's utils/rpc/json.go SendJSONRequest,
// the gorilla/rpc v2/json2 client-side codec pair this repo settled on
// in place of a generated gRPC stub (see DESIGN.md).
type Client interface {
	// Publish fires a single one-way RecordHand call. Archive failures
	// are logged by the caller and otherwise ignored, per spec.md §6's
	// "Archive failures are logged and ignored."
	Publish(ctx context.Context, record HandHistoryRecord) error
}

// HTTPClient is the default Client, posting a JSON-RPC 2.0 request to a
// configured base URL.
type HTTPClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{BaseURL: baseURL, HTTPClient: http.DefaultClient}
}

// RecordHandArgs is the request envelope the archive service's
// RecordHand RPC method expects (see service.go).
type RecordHandArgs struct {
	Record HandHistoryRecord `json:"record"`
}

// RecordHandReply is intentionally empty; the caller does not act on
// the archive's response beyond a non-error status.
type RecordHandReply struct{}

func (c *HTTPClient) Publish(ctx context.Context, record HandHistoryRecord) error {
	body, err := rpc.EncodeClientRequest("Archive.RecordHand", &RecordHandArgs{Record: record})
	if err != nil {
		return fmt.Errorf("archive: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("archive: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("archive: send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("archive: received status code %d", resp.StatusCode)
	}

	var reply RecordHandReply
	return rpc.DecodeClientResponse(resp.Body, &reply)
}

// NoopClient discards every record; server.NewServer uses it when it
// is given no archive client. The set-archive-address admin op does
// not replace it.
type NoopClient struct{}

func (NoopClient) Publish(ctx context.Context, record HandHistoryRecord) error { return nil }
