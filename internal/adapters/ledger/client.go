// Package ledger provides the JSON-RPC client for the record registry chain.
//
// The client submits exactly one transaction per call and never retries;
// idempotency on the mint path belongs to the caller, keyed on the content
// identifier being anchored.
package ledger

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	perr "auditforge/internal/platform/errors"
	"auditforge/internal/platform/logger"
)

const (
	defaultTimeout = 20 * time.Second
	defaultUA      = "auditforge-ledger"
	maxRPCBody     = 1 << 20

	// transferEvent is the registry event carrying the issued record id
	transferEvent = "Transfer"
)

// Options configures the Client
type Options struct {
	RPCURL      string
	ExplorerURL string
	UserAgent   string
	Timeout     time.Duration
}

// Client is a minimal JSON-RPC 2.0 client over the registry methods
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	nextI atomic.Int64
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("ledger"),
	}
}

// EventLog is one emitted event in a transaction receipt
type EventLog struct {
	Event   string `json:"event"`
	TokenID string `json:"token_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// Receipt is the outcome of a submitted transaction
type Receipt struct {
	TxID   string     `json:"tx_id"`
	Status string     `json:"status"`
	Logs   []EventLog `json:"logs"`
}

// MintOutcome is the parsed result of a mint transaction
type MintOutcome struct {
	RecordID    string
	TxID        string
	ExplorerRef string
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
	ID      int64           `json:"id"`
}

type deployParams struct {
	Owner     string `json:"owner"`
	Signature string `json:"signature"`
}

type deployResult struct {
	ContractAddress string `json:"contract_address"`
}

type mintParams struct {
	Contract  string `json:"contract"`
	Recipient string `json:"recipient"`
	CID       string `json:"cid"`
	Signature string `json:"signature"`
}

type logsParams struct {
	Contract string `json:"contract"`
	Event    string `json:"event"`
}

// DeployRegistry deploys a record contract owned by signer's address
func (c *Client) DeployRegistry(ctx context.Context, signer Signer) (string, error) {
	payload := []byte("deploy:" + signer.Address())
	sig, err := signer.Sign(payload)
	if err != nil {
		return "", perr.External("deploy", err)
	}

	var out deployResult
	if err := c.call(ctx, "registry_deploy", deployParams{
		Owner:     signer.Address(),
		Signature: hex.EncodeToString(sig),
	}, &out); err != nil {
		return "", perr.External("deploy", err)
	}
	if out.ContractAddress == "" {
		return "", perr.Externalf("deploy", "ledger returned empty contract address")
	}

	c.log.Info().Str("owner", signer.Address()).Str("contract", out.ContractAddress).Msg("registry deployed")
	return out.ContractAddress, nil
}

// Mint submits one mint transaction anchoring cid to recipient.
// The issued record id is read from the receipt's transfer event, not
// inferred from call order, since concurrent mints interleave.
func (c *Client) Mint(ctx context.Context, contract, recipient, cid string, signer Signer) (MintOutcome, error) {
	var zero MintOutcome

	payload := []byte("mint:" + contract + ":" + recipient + ":" + cid)
	sig, err := signer.Sign(payload)
	if err != nil {
		return zero, perr.External("mint", err)
	}

	var rcpt Receipt
	if err := c.call(ctx, "registry_mint", mintParams{
		Contract:  contract,
		Recipient: recipient,
		CID:       cid,
		Signature: hex.EncodeToString(sig),
	}, &rcpt); err != nil {
		return zero, perr.External("mint", err)
	}
	if rcpt.Status != "success" {
		return zero, perr.Externalf("mint", "transaction %s status %q", rcpt.TxID, rcpt.Status)
	}

	recordID, ok := recordIDFromLogs(rcpt.Logs, recipient)
	if !ok {
		return zero, perr.Externalf("mint", "transaction %s has no transfer event for %s", rcpt.TxID, recipient)
	}

	return MintOutcome{
		RecordID:    recordID,
		TxID:        rcpt.TxID,
		ExplorerRef: c.explorerRef(rcpt.TxID),
	}, nil
}

// Logs fetches the transfer events for a contract, newest last
func (c *Client) Logs(ctx context.Context, contract string) ([]EventLog, error) {
	var out []EventLog
	if err := c.call(ctx, "registry_logs", logsParams{Contract: contract, Event: transferEvent}, &out); err != nil {
		return nil, perr.External("logs", err)
	}
	return out, nil
}

// recordIDFromLogs finds the transfer event addressed to recipient
func recordIDFromLogs(logs []EventLog, recipient string) (string, bool) {
	for _, l := range logs {
		if l.Event == transferEvent && l.To == recipient && l.TokenID != "" {
			return l.TokenID, true
		}
	}
	return "", false
}

func (c *Client) explorerRef(txID string) string {
	if c.opts.ExplorerURL == "" || txID == "" {
		return ""
	}
	return c.opts.ExplorerURL + "/tx/" + txID
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	if c.opts.RPCURL == "" {
		return perr.Newf(perr.ErrorCodeUnavailable, "ledger rpc not configured")
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextI.Add(1),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.RPCURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return perr.Newf(perr.ErrorCodeUnavailable, "ledger rpc status %d", resp.StatusCode)
	}

	var rr rpcResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRPCBody)).Decode(&rr); err != nil {
		return err
	}
	if rr.Error != nil {
		return perr.Newf(perr.ErrorCodeUnavailable, "ledger rpc %s: %s (%d)", method, rr.Error.Message, rr.Error.Code)
	}
	if result != nil && len(rr.Result) > 0 {
		if err := json.Unmarshal(rr.Result, result); err != nil {
			return err
		}
	}
	return nil
}
