package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// Client is an HTTP client with retry and timeout support for Solana JSON-RPC
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logrus.Logger
}

// ClientConfig holds configuration for the RPC client
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *logrus.Logger
}

// NewClient creates a new RPC client with retry support
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:      cfg.BaseURL,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       cfg.Logger,
	}
}

// Call makes a JSON-RPC call with retry logic
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
				"method":  method,
			}).Debug("retrying RPC call")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2 // exponential backoff
		}

		resp, err := c.doRequest(ctx, data)
		if err != nil {
			lastErr = err
			continue
		}

		if err := json.Unmarshal(resp, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limited (429)")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// LatestBlockhash fetches the most recent blockhash and its validity window.
// Transaction assembly calls this immediately before serialization so the
// anchor is never stale.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	var resp struct {
		Result struct {
			Value struct {
				Blockhash            string `json:"blockhash"`
				LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []interface{}{
		map[string]interface{}{"commitment": "confirmed"},
	}

	if err := c.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return solana.Hash{}, 0, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}
	if resp.Error != nil {
		return solana.Hash{}, 0, fmt.Errorf("getLatestBlockhash error: %s", resp.Error.Message)
	}

	hash, err := solana.HashFromBase58(resp.Result.Value.Blockhash)
	if err != nil {
		return solana.Hash{}, 0, fmt.Errorf("invalid blockhash format: %w", err)
	}

	return hash, resp.Result.Value.LastValidBlockHeight, nil
}

// AccountExists reports whether an account is present on chain. Used to
// decide whether a create-destination-token-account instruction is needed.
func (c *Client) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	var resp struct {
		Result struct {
			Value *struct {
				Owner    string `json:"owner"`
				Lamports uint64 `json:"lamports"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []interface{}{
		account.String(),
		map[string]interface{}{"encoding": "base64", "commitment": "confirmed"},
	}

	if err := c.Call(ctx, "getAccountInfo", params, &resp); err != nil {
		return false, fmt.Errorf("getAccountInfo failed: %w", err)
	}
	if resp.Error != nil {
		return false, fmt.Errorf("getAccountInfo error: %s", resp.Error.Message)
	}

	return resp.Result.Value != nil, nil
}

// TokenAccountBalance fetches the raw balance of an SPL token account.
func (c *Client) TokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	var resp struct {
		Result struct {
			Value struct {
				Amount   string `json:"amount"`
				Decimals uint8  `json:"decimals"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []interface{}{account.String()}

	if err := c.Call(ctx, "getTokenAccountBalance", params, &resp); err != nil {
		return 0, fmt.Errorf("getTokenAccountBalance failed: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getTokenAccountBalance error: %s", resp.Error.Message)
	}

	amount, err := strconv.ParseUint(resp.Result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount format: %w", err)
	}

	return amount, nil
}
