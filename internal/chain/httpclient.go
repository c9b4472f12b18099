package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient speaks to an external ledger gateway over JSON HTTP. The
// gateway holds signing authority; this client only names accounts and
// amounts. Used in live mode.
type HTTPClient struct {
	baseURL string
	inner   *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		inner:   &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) ResolveAccount(ctx context.Context, owner Address) (AccountHandle, error) {
	var out struct {
		Handle string `json:"handle"`
	}
	err := c.sendJSON(ctx, http.MethodPost, "/accounts/resolve", map[string]any{"owner": owner}, &out)
	if err != nil {
		return "", err
	}
	return AccountHandle(out.Handle), nil
}

func (c *HTTPClient) CreateAccount(ctx context.Context, owner Address, feePayer Address) (AccountHandle, error) {
	var out struct {
		Handle string `json:"handle"`
	}
	err := c.sendJSON(ctx, http.MethodPost, "/accounts", map[string]any{
		"owner":     owner,
		"fee_payer": feePayer,
	}, &out)
	if err != nil {
		return "", err
	}
	return AccountHandle(out.Handle), nil
}

func (c *HTTPClient) ReadAccountAmount(ctx context.Context, handle AccountHandle) (int64, error) {
	var out struct {
		Amount int64 `json:"amount"`
	}
	path := "/accounts/" + string(handle) + "/amount"
	if err := c.sendJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	return out.Amount, nil
}

func (c *HTTPClient) SubmitTransfer(ctx context.Context, from, to AccountHandle, amountMinor int64, authority, feePayer Address) (string, error) {
	var out struct {
		Reference string `json:"reference"`
	}
	// The gateway blocks until the transfer is confirmed on chain.
	err := c.sendJSON(ctx, http.MethodPost, "/transfers", map[string]any{
		"from":      from,
		"to":        to,
		"amount":    amountMinor,
		"authority": authority,
		"fee_payer": feePayer,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Reference, nil
}

func (c *HTTPClient) ReadNativeFeeBalance(ctx context.Context, owner Address) (int64, error) {
	var out struct {
		Amount int64 `json:"amount"`
	}
	path := "/fees/" + string(owner)
	if err := c.sendJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	return out.Amount, nil
}

func (c *HTTPClient) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.inner.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ErrConfirmTimeout
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrUnreachable
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		return json.Unmarshal(raw, out)
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusPaymentRequired:
		return ErrInsufficientFunds
	case resp.StatusCode == http.StatusGatewayTimeout:
		return ErrConfirmTimeout
	default:
		return fmt.Errorf("ledger gateway status %d: %s", resp.StatusCode, string(raw))
	}
}
