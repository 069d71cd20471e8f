package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultTelegramAPI is the public Bot API endpoint.
const DefaultTelegramAPI = "https://api.telegram.org"

// TelegramChannel posts messages to one chat through the Telegram Bot API.
type TelegramChannel struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

type telegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegramChannel constructs a channel. An empty baseURL uses DefaultTelegramAPI.
func NewTelegramChannel(baseURL, token, chatID string, timeout time.Duration) *TelegramChannel {
	if baseURL == "" {
		baseURL = DefaultTelegramAPI
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramChannel{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: timeout},
	}
}

// Send posts text to the configured chat.
func (c *TelegramChannel) Send(ctx context.Context, text string) error {
	if c == nil || c.token == "" || c.chatID == "" {
		return errors.New("telegram channel: missing token or chat id")
	}

	body, err := json.Marshal(telegramMessage{ChatID: c.chatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram channel: %w", err)
	}
	defer resp.Body.Close()

	var out telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("telegram channel: decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !out.OK {
		return fmt.Errorf("telegram channel: status %d: %s", resp.StatusCode, out.Description)
	}
	return nil
}
