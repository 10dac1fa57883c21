package blockchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sbtc-heritage.backend/pkg/clarity"
)

// Contract functions consumed by the engine.
const (
	FnCreateVault          = "create-vault"
	FnDepositSbtc          = "deposit-sbtc"
	FnWithdrawSbtc         = "withdraw-sbtc"
	FnAddBeneficiary       = "add-beneficiary"
	FnUpdateProofOfLife    = "update-proof-of-life"
	FnTriggerInheritance   = "trigger-inheritance"
	FnClaimInheritance     = "claim-inheritance"
	FnGetVault             = "get-vault"
	FnGetProofOfLife       = "get-proof-of-life"
	FnGetUserVaults        = "get-user-vaults"
	FnGetTotalVaults       = "get-total-vaults"
	FnGetVaultByIndex      = "get-vault-by-index"
	FnCalculateInheritance = "calculate-inheritance-amount"
)

// TxStatus is the node's view of a submitted transaction.
type TxStatus struct {
	Ref         string
	Confirmed   bool
	Failed      bool
	BlockHeight uint64
}

// StacksClient talks to one ledger node over HTTP. Submissions return on
// acknowledgment, not finality; cancelling the context stops local
// waiting only, an acked transaction proceeds on the ledger regardless.
type StacksClient struct {
	httpClient      *http.Client
	nodeURL         string
	contractAddress string
	contractName    string

	// Injectable hooks so usecases are unit-testable without sockets.
	testCallReadOnly func(ctx context.Context, fn string, args []clarity.Value) (clarity.Value, error)
	testSubmit       func(ctx context.Context, fn string, sender string, args []clarity.Value) (string, error)
	testBlockHeight  func(ctx context.Context) (uint64, error)
	testTxStatus     func(ctx context.Context, ref string) (*TxStatus, error)
}

// NewStacksClient creates a client for the given node and vault contract.
func NewStacksClient(nodeURL, contractAddress, contractName string) *StacksClient {
	return &StacksClient{
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		nodeURL:         nodeURL,
		contractAddress: contractAddress,
		contractName:    contractName,
	}
}

// NewStacksClientWithHooks creates a client that routes every call
// through the supplied functions. Intended for unit tests.
func NewStacksClientWithHooks(
	callReadOnly func(ctx context.Context, fn string, args []clarity.Value) (clarity.Value, error),
	submit func(ctx context.Context, fn string, sender string, args []clarity.Value) (string, error),
	blockHeight func(ctx context.Context) (uint64, error),
	txStatus func(ctx context.Context, ref string) (*TxStatus, error),
) *StacksClient {
	return &StacksClient{
		testCallReadOnly: callReadOnly,
		testSubmit:       submit,
		testBlockHeight:  blockHeight,
		testTxStatus:     txStatus,
	}
}

type readOnlyRequest struct {
	Sender    string          `json:"sender"`
	Arguments []clarity.Value `json:"arguments"`
}

type readOnlyResponse struct {
	Okay   bool            `json:"okay"`
	Result json.RawMessage `json:"result"`
	Cause  string          `json:"cause"`
}

// CallReadOnly executes a read-only contract function and returns its
// decoded wire value.
func (c *StacksClient) CallReadOnly(ctx context.Context, fn string, args []clarity.Value) (clarity.Value, error) {
	if c.testCallReadOnly != nil {
		return c.testCallReadOnly(ctx, fn, args)
	}

	url := fmt.Sprintf("%s/v2/contracts/call-read/%s/%s/%s", c.nodeURL, c.contractAddress, c.contractName, fn)
	body, err := json.Marshal(readOnlyRequest{Sender: c.contractAddress, Arguments: args})
	if err != nil {
		return clarity.Value{}, err
	}

	var resp readOnlyResponse
	if err := c.post(ctx, url, body, &resp); err != nil {
		return clarity.Value{}, err
	}
	if !resp.Okay {
		return clarity.Value{}, fmt.Errorf("read-only %s failed: %s", fn, resp.Cause)
	}

	var result clarity.Value
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return clarity.Value{}, err
	}
	return result, nil
}

type submitRequest struct {
	Sender    string          `json:"sender"`
	Contract  string          `json:"contract"`
	Function  string          `json:"function"`
	Arguments []clarity.Value `json:"arguments"`
}

type submitResponse struct {
	TxID  string `json:"txid"`
	Error string `json:"error"`
}

// SubmitCall submits a contract call on behalf of the sender principal
// and returns the transaction reference once the node acknowledges it.
func (c *StacksClient) SubmitCall(ctx context.Context, fn string, sender string, args []clarity.Value) (string, error) {
	if c.testSubmit != nil {
		return c.testSubmit(ctx, fn, sender, args)
	}

	url := c.nodeURL + "/v2/transactions"
	body, err := json.Marshal(submitRequest{
		Sender:    sender,
		Contract:  c.contractAddress + "." + c.contractName,
		Function:  fn,
		Arguments: args,
	})
	if err != nil {
		return "", err
	}

	var resp submitResponse
	if err := c.post(ctx, url, body, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("submit %s rejected: %s", fn, resp.Error)
	}
	return resp.TxID, nil
}

type nodeInfo struct {
	StacksTipHeight uint64 `json:"stacks_tip_height"`
}

// BlockHeight returns the chain tip height.
func (c *StacksClient) BlockHeight(ctx context.Context) (uint64, error) {
	if c.testBlockHeight != nil {
		return c.testBlockHeight(ctx)
	}

	var info nodeInfo
	if err := c.get(ctx, c.nodeURL+"/v2/info", &info); err != nil {
		return 0, err
	}
	return info.StacksTipHeight, nil
}

type txInfo struct {
	TxStatus    string `json:"tx_status"`
	BlockHeight uint64 `json:"block_height"`
}

// GetTxStatus reports confirmation state of a submitted transaction.
func (c *StacksClient) GetTxStatus(ctx context.Context, ref string) (*TxStatus, error) {
	if c.testTxStatus != nil {
		return c.testTxStatus(ctx, ref)
	}

	var info txInfo
	if err := c.get(ctx, c.nodeURL+"/extended/v1/tx/"+ref, &info); err != nil {
		return nil, err
	}
	st := &TxStatus{Ref: ref, BlockHeight: info.BlockHeight}
	switch info.TxStatus {
	case "success":
		st.Confirmed = true
	case "abort_by_response", "abort_by_post_condition", "dropped":
		st.Failed = true
	}
	return st, nil
}

func (c *StacksClient) post(ctx context.Context, url string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *StacksClient) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *StacksClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("node returned %d: %s", resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, out)
}
