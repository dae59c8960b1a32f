package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Transaction is one inbound transfer as reported by the bank feed.
// Amount is in minor currency units.
type Transaction struct {
	Content   string    `json:"content"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Feed lists inbound transfers in [from, to] matching the exact amount.
type Feed interface {
	ListTransactions(ctx context.Context, from, to time.Time, amount int64) ([]Transaction, error)
}

type HTTPFeed struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPFeed(baseURL, apiKey string, timeout time.Duration) *HTTPFeed {
	return &HTTPFeed{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type feedResponse struct {
	Transactions []Transaction `json:"transactions"`
}

func (f *HTTPFeed) ListTransactions(ctx context.Context, from, to time.Time, amount int64) ([]Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/transactions", nil)
	if err != nil {
		return nil, fmt.Errorf("build bank feed request: %w", err)
	}

	q := req.URL.Query()
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))
	q.Set("amount", strconv.FormatInt(amount, 10))
	req.URL.RawQuery = q.Encode()

	if f.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call bank feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bank feed returned status %d", resp.StatusCode)
	}

	var out feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode bank feed response: %w", err)
	}
	return out.Transactions, nil
}
