package telegram

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

func baseMessage() *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 10,
		From:      &tgbotapi.User{ID: 55},
		Chat:      &tgbotapi.Chat{ID: 1000},
	}
}

func TestClassifyCommand(t *testing.T) {
	m := baseMessage()
	m.Text = "/registro"
	m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 9}}

	ev, ok := classifyUpdate(tgbotapi.Update{Message: m})
	if !ok {
		t.Fatalf("command update was dropped")
	}
	if ev.Kind != models.EventCommand || ev.Command != "registro" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.ChatID != 1000 || ev.UserID != 55 {
		t.Errorf("identity lost: %+v", ev)
	}
}

func TestClassifyLocation(t *testing.T) {
	m := baseMessage()
	m.Location = &tgbotapi.Location{Latitude: -12.04, Longitude: -77.04}

	ev, ok := classifyUpdate(tgbotapi.Update{Message: m})
	if !ok || ev.Kind != models.EventLocation {
		t.Fatalf("expected a location event, got %+v (%v)", ev, ok)
	}
	if ev.Lat != -12.04 || ev.Lng != -77.04 {
		t.Errorf("coordinates lost: %+v", ev)
	}
}

func TestClassifyPhotoTakesLargestSize(t *testing.T) {
	m := baseMessage()
	m.Photo = []tgbotapi.PhotoSize{
		{FileID: "small", Width: 90},
		{FileID: "large", Width: 1280},
	}

	ev, ok := classifyUpdate(tgbotapi.Update{Message: m})
	if !ok || ev.Kind != models.EventPhoto {
		t.Fatalf("expected a photo event, got %+v (%v)", ev, ok)
	}
	if ev.Photo.FileID != "large" {
		t.Errorf("expected the largest size, got %q", ev.Photo.FileID)
	}
}

func TestClassifyImageDocument(t *testing.T) {
	m := baseMessage()
	m.Document = &tgbotapi.Document{FileID: "doc-1", FileName: "caja.png", MimeType: "image/png"}

	ev, ok := classifyUpdate(tgbotapi.Update{Message: m})
	if !ok || ev.Kind != models.EventPhoto {
		t.Fatalf("image documents should classify as photos, got %+v (%v)", ev, ok)
	}
	if ev.Photo.FileName != "caja.png" {
		t.Errorf("filename lost: %+v", ev.Photo)
	}

	// Non-image documents are not photos.
	m.Document.MimeType = "application/pdf"
	if _, ok := classifyUpdate(tgbotapi.Update{Message: m}); ok {
		t.Errorf("pdf documents should be dropped")
	}
}

func TestClassifyCallback(t *testing.T) {
	u := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-9",
		From:    &tgbotapi.User{ID: 55},
		Data:    "CONFIRMAR_TICKET",
		Message: baseMessage(),
	}}

	ev, ok := classifyUpdate(u)
	if !ok || ev.Kind != models.EventCallback {
		t.Fatalf("expected a callback event, got %+v (%v)", ev, ok)
	}
	if ev.Callback.Action != models.ActionConfirm || ev.Callback.Step != models.StepTicket {
		t.Errorf("callback not decoded: %+v", ev.Callback)
	}
	if ev.Callback.ID != "cb-9" || ev.Callback.MessageID != 10 {
		t.Errorf("callback identity lost: %+v", ev.Callback)
	}
}

func TestClassifyDropsUnknownCallback(t *testing.T) {
	u := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-9",
		From:    &tgbotapi.User{ID: 55},
		Data:    "GARBAGE",
		Message: baseMessage(),
	}}
	if _, ok := classifyUpdate(u); ok {
		t.Errorf("undecodable callbacks should be dropped")
	}
}

func TestBackoffDelay(t *testing.T) {
	cases := map[int]time.Duration{
		1: 15 * time.Second,
		2: 30 * time.Second,
		3: 45 * time.Second,
		4: 60 * time.Second,
		9: 60 * time.Second,
	}
	for attempt, want := range cases {
		if got := backoffDelay(attempt); got != want {
			t.Errorf("backoffDelay(%d) = %s, want %s", attempt, got, want)
		}
	}
}
