package rpc

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
)

// Client calls a swapd JSON-RPC endpoint
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a client for url
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{url: url, http: &http.Client{Timeout: timeout}}
}

// Call invokes method with params and decodes the result object into out.
// A result with status "error" is returned as *rpc_types.RpcError.
func (c *Client) Call(ctx context.Context, method string, params interface{}, out interface{}) error {
	req := struct {
		Method string        `json:"method"`
		Params []interface{} `json:"params,omitempty"`
	}{Method: method}
	if params != nil {
		req.Params = []interface{}{params}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("call %s: http %d: %s", method, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	var status struct {
		Status string `json:"status"`
		rpc_types.RpcError
	}
	if err := json.Unmarshal(envelope.Result, &status); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	if status.Status == "error" {
		e := status.RpcError
		return &e
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(envelope.Result, out)
}

// SubmitResult is the decoded result of the submit method
type SubmitResult struct {
	EngineResult        string          `json:"engine_result"`
	EngineResultCode    int             `json:"engine_result_code"`
	EngineResultMessage string          `json:"engine_result_message"`
	Applied             bool            `json:"applied"`
	TxHash              string          `json:"tx_hash"`
	Events              json.RawMessage `json:"events,omitempty"`
	LedgerCurrentIndex  uint64          `json:"ledger_current_index"`
}

// Submit sends env with its transaction bytes hex encoded so that the
// signed bytes arrive unchanged.
func (c *Client) Submit(ctx context.Context, env *tx.Envelope) (*SubmitResult, error) {
	params := map[string]interface{}{
		"tx_blob":    hex.EncodeToString(env.Tx),
		"signatures": env.Signatures,
	}
	var out SubmitResult
	if err := c.Call(ctx, "submit", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
