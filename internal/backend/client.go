package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 15 * time.Second

	// GenericFailureMessage is shown when the backend gives no usable message.
	GenericFailureMessage = "Something went wrong. Please try again."
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// UserMessage is the text shown to the operator for a failed command.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericFailureMessage
}

type TokenSource interface {
	Token() (string, error)
}

type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Client struct {
	base    *url.URL
	http    *http.Client
	tokens  TokenSource
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:    u,
		http:    &http.Client{},
		tokens:  tokens,
		timeout: timeout,
		logger:  logger.With(zap.String("component", "backend")),
	}, nil
}

// FetchProfile returns the restaurant behind the session token.
func (c *Client) FetchProfile(ctx context.Context) (Profile, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/restaurant/profile", nil, &raw); err != nil {
		return Profile{}, err
	}
	return decodeProfile(raw)
}

func (c *Client) AcceptOrder(ctx context.Context, orderID string, prepMinutes int) error {
	body := struct {
		PrepTime int `json:"prepTime"`
	}{PrepTime: prepMinutes}
	return c.do(ctx, http.MethodPut, "/restaurant/orders/"+url.PathEscape(orderID)+"/accept", body, nil)
}

func (c *Client) RejectOrder(ctx context.Context, orderID string, reason model.RejectReason) error {
	body := struct {
		Reason string `json:"reason"`
	}{Reason: string(reason)}
	return c.do(ctx, http.MethodPut, "/restaurant/orders/"+url.PathEscape(orderID)+"/reject", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("read session token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
		c.logger.Debug("backend call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if m := strings.TrimSpace(payload.Message); m != "" {
			return m
		}
		if m := strings.TrimSpace(payload.Error); m != "" {
			return m
		}
	}
	return ""
}

// decodeProfile accepts the profile either bare or wrapped in "restaurant" or
// "data", with the id under "_id", "id" or "restaurantId".
func decodeProfile(raw json.RawMessage) (Profile, error) {
	var envelope struct {
		Restaurant json.RawMessage `json:"restaurant"`
		Data       json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	switch {
	case len(envelope.Restaurant) > 0 && string(envelope.Restaurant) != "null":
		raw = envelope.Restaurant
	case len(envelope.Data) > 0 && string(envelope.Data) != "null":
		raw = envelope.Data
	}

	var w struct {
		MongoID      string `json:"_id"`
		ID           string `json:"id"`
		RestaurantID string `json:"restaurantId"`
		Name         string `json:"name"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	p := Profile{Name: w.Name}
	for _, id := range []string{w.MongoID, w.ID, w.RestaurantID} {
		if id != "" {
			p.ID = id
			break
		}
	}
	return p, nil
}
