// Package telegram is a minimal Bot API client: outbound sendMessage for
// reminder delivery and replies, inbound getUpdates long polling.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultAPIURL = "https://api.telegram.org"

// APIError is a non-ok Bot API response, e.g. 403 when the user blocked the
// bot.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// Message is an inbound text message.
type Message struct {
	UpdateID int
	ChatID   int64
	Username string
	Text     string
}

// OwnerID is the chat id in the string form reminders are keyed by.
func (m Message) OwnerID() string { return strconv.FormatInt(m.ChatID, 10) }

// Handler receives inbound messages one at a time, in update order.
type Handler func(ctx context.Context, msg Message)

type update struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From *struct {
			Username string `json:"username"`
		} `json:"from"`
		Text string `json:"text"`
	} `json:"message"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Client talks to one bot.
type Client struct {
	token       string
	apiURL      string
	http        *http.Client
	pollTimeout time.Duration
	retryDelay  time.Duration
	logger      *slog.Logger
}

type Option func(*Client)

// WithAPIURL points the client at a different Bot API server.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.apiURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithPollTimeout sets the getUpdates long-poll timeout.
func WithPollTimeout(d time.Duration) Option { return func(c *Client) { c.pollTimeout = d } }

// WithRetryDelay sets the pause after a failed poll.
func WithRetryDelay(d time.Duration) Option { return func(c *Client) { c.retryDelay = d } }

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

func NewClient(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is required")
	}
	c := &Client{
		token:       token,
		apiURL:      DefaultAPIURL,
		pollTimeout: 30 * time.Second,
		retryDelay:  5 * time.Second,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.pollTimeout + 10*time.Second}
	}
	return c, nil
}

// Send delivers text to the chat identified by ownerID.
func (c *Client) Send(ctx context.Context, ownerID, text string) error {
	chatID, err := strconv.ParseInt(ownerID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat id %q: %w", ownerID, err)
	}
	body, err := json.Marshal(map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}
	_, err = c.call(ctx, "sendMessage", http.MethodPost, bytes.NewReader(body), nil)
	return err
}

// Poll long-polls getUpdates and hands text messages to h until ctx is
// cancelled. Transport errors are logged and retried after a delay.
func (c *Client) Poll(ctx context.Context, h Handler) error {
	offset := 0
	c.logger.InfoContext(ctx, "telegram polling started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		updates, err := c.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.ErrorContext(ctx, "telegram poll failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil || strings.TrimSpace(u.Message.Text) == "" {
				continue
			}
			msg := Message{UpdateID: u.UpdateID, ChatID: u.Message.Chat.ID, Text: u.Message.Text}
			if u.Message.From != nil {
				msg.Username = u.Message.From.Username
			}
			h(ctx, msg)
		}
	}
}

func (c *Client) getUpdates(ctx context.Context, offset int) ([]update, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("timeout", strconv.Itoa(int(c.pollTimeout.Seconds())))
	q.Set("allowed_updates", `["message"]`)

	var updates []update
	if _, err := c.call(ctx, "getUpdates?"+q.Encode(), http.MethodGet, nil, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// call performs one Bot API request and decodes result into out when set.
func (c *Client) call(ctx context.Context, method, httpMethod string, body io.Reader, out any) (*apiResponse, error) {
	name, _, _ := strings.Cut(method, "?")
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, httpMethod, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("telegram %s: %w", name, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The URL carries the token; keep it out of logs.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("telegram %s: %w", name, err)
	}
	defer resp.Body.Close()

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("telegram %s: status %d: decoding response: %w", name, resp.StatusCode, err)
	}
	if !ar.OK {
		return &ar, &APIError{Method: name, Code: ar.ErrorCode, Description: ar.Description}
	}
	if out != nil && len(ar.Result) > 0 {
		if err := json.Unmarshal(ar.Result, out); err != nil {
			return &ar, fmt.Errorf("telegram %s: decoding result: %w", name, err)
		}
	}
	return &ar, nil
}
