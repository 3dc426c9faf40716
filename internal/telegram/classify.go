package telegram

import (
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

// classifyUpdate turns one raw update into a typed event, or false for updates
// the bot does not handle. Callback tags are decoded here, exactly once; the
// rest of the program never sees raw tag strings.
func classifyUpdate(u tgbotapi.Update) (models.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if q.Message == nil {
			return models.Event{}, false
		}
		cb, err := models.DecodeCallback(q.ID, q.Message.MessageID, q.Data)
		if err != nil {
			slog.Warn("Telegram.classifyUpdate: dropping undecodable callback", "error", err, "chatID", q.Message.Chat.ID)
			return models.Event{}, false
		}
		return models.Event{
			ChatID:    q.Message.Chat.ID,
			UserID:    q.From.ID,
			MessageID: q.Message.MessageID,
			Kind:      models.EventCallback,
			Callback:  &cb,
		}, true

	case u.Message != nil:
		m := u.Message
		ev := models.Event{
			ChatID:    m.Chat.ID,
			UserID:    m.From.ID,
			MessageID: m.MessageID,
		}
		switch {
		case m.IsCommand():
			ev.Kind = models.EventCommand
			ev.Command = m.Command()
		case m.Location != nil:
			ev.Kind = models.EventLocation
			ev.Lat = m.Location.Latitude
			ev.Lng = m.Location.Longitude
		case len(m.Photo) > 0:
			// Telegram lists resolutions smallest first; take the largest.
			best := m.Photo[len(m.Photo)-1]
			ev.Kind = models.EventPhoto
			ev.Photo = &models.Photo{FileID: best.FileID}
		case m.Document != nil && strings.HasPrefix(m.Document.MimeType, "image/"):
			ev.Kind = models.EventPhoto
			ev.Photo = &models.Photo{
				FileID:   m.Document.FileID,
				FileName: m.Document.FileName,
				MIME:     m.Document.MimeType,
			}
		case m.Text != "":
			ev.Kind = models.EventText
			ev.Text = m.Text
		default:
			return models.Event{}, false
		}
		return ev, true
	}
	return models.Event{}, false
}
