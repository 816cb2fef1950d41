package telegram

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

	"github.com/spiffcs/repowatch/config"
	"github.com/spiffcs/repowatch/internal/constants"
	"github.com/spiffcs/repowatch/internal/log"
)

const defaultBaseURL = "https://api.telegram.org"

// Client sends alert messages through the Telegram Bot API.
type Client struct {
	token      string
	chatID     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Bot API base URL. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a Telegram client. Missing credentials are a configuration
// error caught here, before any fetch or evaluation work happens.
func New(token, chatID string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: TELEGRAM_BOT_TOKEN is not set", config.ErrInvalid)
	}
	if chatID == "" {
		return nil, fmt.Errorf("%w: TELEGRAM_CHAT_ID is not set", config.ErrInvalid)
	}

	c := &Client{
		token:   token,
		chatID:  chatID,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: constants.NotifyTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromEnv creates a client from TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID.
func NewFromEnv(opts ...Option) (*Client, error) {
	return New(config.GetTelegramBotToken(), config.GetTelegramChatID(), opts...)
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send delivers a single Markdown message to the configured chat. One
// attempt only; the caller decides what a failed delivery means.
func (c *Client) Send(ctx context.Context, text string) error {
	payload := sendMessageRequest{
		ChatID:    c.chatID,
		Text:      text,
		ParseMode: "Markdown",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling sendMessage payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full request URL, and the URL carries
		// the bot token. Surface only the underlying cause.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("telegram sendMessage: %w", urlErr.Err)
		}
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			return fmt.Errorf("telegram sendMessage: unexpected status %d", resp.StatusCode)
		}
		return fmt.Errorf("telegram sendMessage: status %d: %s", resp.StatusCode, msg)
	}

	log.Debug("telegram message sent", "chars", len(text))
	return nil
}
