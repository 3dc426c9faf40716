// Package telegram is the chat transport: a long-polling update loop that
// classifies raw updates into events, and the outbound messenger surface.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

const downloadTimeout = 60 * time.Second

// Client wraps the bot API with the messenger surface the flow engine uses.
// All outbound text is sent as Markdown.
type Client struct {
	api  *tgbotapi.BotAPI
	http *http.Client
}

// NewClient authenticates against the bot API.
func NewClient(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate bot: %w", err)
	}
	return &Client{
		api:  api,
		http: &http.Client{Timeout: downloadTimeout},
	}, nil
}

// Username returns the authenticated bot account name.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

func (c *Client) Send(ctx context.Context, chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, &models.UpstreamError{Service: "telegram", Err: err}
	}
	return sent.MessageID, nil
}

func (c *Client) SendKeyboard(ctx context.Context, chatID int64, text string, kb models.Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = inlineKeyboard(kb)
	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, &models.UpstreamError{Service: "telegram", Err: err}
	}
	return sent.MessageID, nil
}

func (c *Client) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := c.api.Send(edit); err != nil {
		return &models.UpstreamError{Service: "telegram", Err: err}
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, chatID int64, messageID int) error {
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return &models.UpstreamError{Service: "telegram", Err: err}
	}
	return nil
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return &models.UpstreamError{Service: "telegram", Err: err}
	}
	return nil
}

// DownloadPhoto fetches the bytes of an uploaded file by its file identifier.
func (c *Client) DownloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, &models.UpstreamError{Service: "telegram", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &models.UpstreamError{Service: "telegram", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &models.UpstreamError{Service: "telegram", Err: fmt.Errorf("file download returned status %d", resp.StatusCode)}
	}
	return io.ReadAll(resp.Body)
}

// GetUpdates performs one long poll against the update feed.
func (c *Client) GetUpdates(offset, timeout int) ([]tgbotapi.Update, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = timeout
	updates, err := c.api.GetUpdates(cfg)
	if err != nil {
		return nil, &models.UpstreamError{Service: "telegram", Err: err}
	}
	return updates, nil
}

func inlineKeyboard(kb models.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
