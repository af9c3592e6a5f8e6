// Package gateway is the HTTP client for the remote cart API. The remote
// side is an opaque collaborator: every response arrives in a
// {success, data, error} envelope, and any transport failure or
// non-success envelope is reported as domain.ErrGateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"cartsync/internal/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func New(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// Fetch returns the server-side cart for a user. Line payloads from the
// remote API use legacy field names, so each item goes through
// domain.NormalizeLine before it reaches the reducer.
func (c *Client) Fetch(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/carrito/%d", userID), nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode cart: %v", domain.ErrGateway, err)
	}
	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		qty := itemQuantity(item)
		if qty <= 0 {
			continue
		}
		lines = append(lines, domain.NormalizeLine(item, qty))
	}
	return lines, nil
}

func (c *Client) AddLine(ctx context.Context, userID int64, productID string, quantity int) error {
	body := map[string]interface{}{"producto_id": productID, "cantidad": quantity}
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/carrito/%d/agregar", userID), body)
	return err
}

func (c *Client) SetQuantity(ctx context.Context, userID int64, productID string, quantity int) error {
	body := map[string]interface{}{"cantidad": quantity}
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/carrito/%d/%s", userID, productID), body)
	return err
}

func (c *Client) RemoveLine(ctx context.Context, userID int64, productID string) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/carrito/%d/%s", userID, productID), nil)
	return err
}

func (c *Client) Clear(ctx context.Context, userID int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/carrito/%d", userID), nil)
	return err
}

func (c *Client) Summary(ctx context.Context, userID int64) (domain.CartSummary, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/carrito/%d/resumen", userID), nil)
	if err != nil {
		return domain.CartSummary{}, err
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.CartSummary{}, fmt.Errorf("%w: decode summary: %v", domain.ErrGateway, err)
	}
	return summaryFromRaw(raw), nil
}

func (c *Client) Checkout(ctx context.Context, userID int64, payload map[string]interface{}) (domain.CheckoutResult, error) {
	data, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/carrito/%d/checkout", userID), payload)
	if err != nil {
		return nil, err
	}
	var result domain.CheckoutResult
	if len(data) > 0 {
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("%w: decode checkout result: %v", domain.ErrGateway, err)
		}
	}
	return result, nil
}

// do executes one request against the remote API and unwraps the
// response envelope. It returns the raw data payload on success.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: encode body: %v", domain.ErrGateway, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrGateway, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrGateway, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %s %s: status %d with unreadable body", domain.ErrGateway, method, path, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		c.logger.Printf("gateway %s %s failed: %s", method, path, msg)
		return nil, fmt.Errorf("%w: %s", domain.ErrGateway, msg)
	}
	return env.Data, nil
}

// decodeItems accepts both envelope shapes the remote API is known to
// produce: an object with an items array, or a bare array of items.
func decodeItems(data json.RawMessage) ([]map[string]interface{}, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var wrapper struct {
		Items []map[string]interface{} `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Items != nil {
		return wrapper.Items, nil
	}
	var items []map[string]interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func itemQuantity(item map[string]interface{}) int {
	for _, key := range []string{"quantity", "cantidad"} {
		switch v := item[key].(type) {
		case float64:
			return int(v)
		case int:
			return v
		}
	}
	return 0
}

func summaryFromRaw(raw map[string]interface{}) domain.CartSummary {
	var out domain.CartSummary
	if v, ok := raw["total"].(float64); ok {
		out.Total = v
	}
	for _, key := range []string{"itemCount", "cantidad_items", "cantidad"} {
		if v, ok := raw[key].(float64); ok {
			out.ItemCount = int(v)
			break
		}
	}
	return out
}
