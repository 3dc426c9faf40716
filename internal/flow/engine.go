// Package flow implements the interview state machine: capture, confirmation
// and correction, the observation sub-menu, and the summary/commit screen.
package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/christaic/bot-incidenciasPEXT/internal/catalog"
	"github.com/christaic/bot-incidenciasPEXT/internal/models"
	"github.com/christaic/bot-incidenciasPEXT/internal/store"
)

// Messenger is the chat surface the engine talks through.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) (int, error)
	SendKeyboard(ctx context.Context, chatID int64, text string, kb models.Keyboard) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	DownloadPhoto(ctx context.Context, fileID string) ([]byte, error)
}

// ImageStore uploads photo bytes to the shared image store and returns a
// shareable link.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

// Geocoder resolves coordinates into administrative regions.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (models.Placemark, error)
}

// Directory answers ticket and box-code lookups from the work-order snapshots.
type Directory interface {
	FindTicket(ticket string) (models.WorkOrder, bool)
	NodeFor(code string) string
}

// ReportSink is one spreadsheet backend. Sinks are written independently; a
// failure in one never blocks the others.
type ReportSink interface {
	Name() string
	EnsureHeaders(ctx context.Context, columns []string) error
	AppendRow(ctx context.Context, row []string) error
}

// ReportJournal is the optional local journal of committed reports.
type ReportJournal interface {
	SaveReport(r models.SavedReport) error
}

// Engine drives the conversation state machine for every chat.
type Engine struct {
	records     *store.RecordStore
	msg         Messenger
	images      ImageStore
	geo         Geocoder
	dir         Directory
	sinks       []ReportSink
	journal     ReportJournal
	supervision []int64
	now         func() time.Time
	loc         *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithImageStore sets the photo upload backend.
func WithImageStore(s ImageStore) Option {
	return func(e *Engine) { e.images = s }
}

// WithGeocoder sets the reverse geocoding client.
func WithGeocoder(g Geocoder) Option {
	return func(e *Engine) { e.geo = g }
}

// WithDirectory sets the work-order/node lookup directory.
func WithDirectory(d Directory) Option {
	return func(e *Engine) { e.dir = d }
}

// WithReportSinks sets the spreadsheet backends written on save.
func WithReportSinks(sinks ...ReportSink) Option {
	return func(e *Engine) { e.sinks = sinks }
}

// WithJournal sets the local report journal.
func WithJournal(j ReportJournal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithSupervisionChats sets the chats that receive completion summaries and in
// which commands are ignored.
func WithSupervisionChats(chats []int64) Option {
	return func(e *Engine) { e.supervision = chats }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the timezone used for report timestamps.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// DefaultTimezone is the timezone report dates and times are rendered in.
const DefaultTimezone = "America/Lima"

// NewEngine creates an engine. Collaborators left unset degrade: geocoding
// falls back to sentinels, lookups to empty results, photo upload and
// persistence report a configuration problem to the operator.
func NewEngine(records *store.RecordStore, msg Messenger, opts ...Option) *Engine {
	e := &Engine{
		records: records,
		msg:     msg,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.loc == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			slog.Warn("Engine.NewEngine: failed to load timezone, using UTC", "timezone", DefaultTimezone, "error", err)
			loc = time.UTC
		}
		e.loc = loc
	}
	return e
}

// HandleEvent processes one classified inbound event. Errors never escape: per
// the step-boundary policy every failure becomes a re-prompt or a logged,
// degraded result.
func (e *Engine) HandleEvent(ctx context.Context, ev models.Event) {
	switch ev.Kind {
	case models.EventCommand:
		e.handleCommand(ctx, ev)
	case models.EventCallback:
		e.handleCallback(ctx, ev)
	default:
		e.handleMessage(ctx, ev)
	}
}

func (e *Engine) handleCommand(ctx context.Context, ev models.Event) {
	if e.isSupervision(ev.ChatID) {
		slog.Debug("Engine.handleCommand: ignoring command from supervision chat", "chatID", ev.ChatID, "command", ev.Command)
		return
	}
	switch ev.Command {
	case "start":
		if rec, ok := e.records.Get(ev.ChatID); ok && rec.Active {
			e.send(ctx, ev.ChatID, inProgressNotice(rec.Step))
			return
		}
		e.send(ctx, ev.ChatID, msgWelcome)
	case "registro":
		rec, err := e.records.Create(ev.ChatID, ev.UserID, catalog.First())
		if err != nil {
			existing, _ := e.records.Get(ev.ChatID)
			e.send(ctx, ev.ChatID, inProgressNotice(existing.Step))
			return
		}
		info, _ := catalog.Describe(rec.Step)
		e.send(ctx, ev.ChatID, info.Prompt)
	case "cancel":
		e.records.Clear(ev.ChatID)
		e.send(ctx, ev.ChatID, msgCanceled)
	default:
		slog.Debug("Engine.handleCommand: unknown command", "chatID", ev.ChatID, "command", ev.Command)
	}
}

// handleMessage routes free-form input (text, location, photo) to the capturer.
func (e *Engine) handleMessage(ctx context.Context, ev models.Event) {
	if e.isSupervision(ev.ChatID) {
		return
	}
	rec, ok := e.records.Get(ev.ChatID)
	if !ok || !rec.Active {
		slog.Debug("Engine.handleMessage: no active record", "chatID", ev.ChatID)
		return
	}
	switch rec.Phase {
	case models.PhaseCapturing:
		e.capture(ctx, rec, ev)
	case models.PhaseConfirming:
		e.send(ctx, rec.ChatID, msgUseConfirmButtons)
	case models.PhaseObsType, models.PhaseObsValue:
		e.send(ctx, rec.ChatID, msgUseObsMenu)
	case models.PhaseSummary, models.PhaseEditPicker:
		e.send(ctx, rec.ChatID, msgUseSummaryButtons)
	default:
		slog.Error("Engine.handleMessage: record in unknown phase", "chatID", ev.ChatID, "phase", rec.Phase)
	}
}

func (e *Engine) handleCallback(ctx context.Context, ev models.Event) {
	cb := ev.Callback
	if cb == nil {
		slog.Error("Engine.handleCallback: callback event without payload", "chatID", ev.ChatID)
		return
	}
	if err := e.msg.AnswerCallback(ctx, cb.ID, ""); err != nil {
		slog.Debug("Engine.handleCallback: answer failed", "error", err, "chatID", ev.ChatID)
	}
	rec, ok := e.records.Get(ev.ChatID)
	if !ok || !rec.Active {
		slog.Debug("Engine.handleCallback: no active record for callback", "chatID", ev.ChatID, "action", cb.Action)
		return
	}
	switch cb.Action {
	case models.ActionConfirm:
		e.handleConfirm(ctx, rec, *cb)
	case models.ActionCorrect:
		e.handleCorrect(ctx, rec, *cb)
	case models.ActionEdit:
		e.handleEdit(ctx, rec, *cb)
	case models.ActionObsCategory:
		e.handleObsCategory(ctx, rec, *cb)
	case models.ActionObsPick:
		e.handleObsPick(ctx, rec, *cb)
	case models.ActionObsBack:
		e.handleObsBack(ctx, rec)
	case models.ActionSave, models.ActionSummaryEdit, models.ActionCancel:
		e.handleSummaryAction(ctx, rec, *cb)
	default:
		slog.Error("Engine.handleCallback: unknown action", "chatID", ev.ChatID, "action", cb.Action)
	}
}

func (e *Engine) isSupervision(chatID int64) bool {
	for _, id := range e.supervision {
		if id == chatID {
			return true
		}
	}
	return false
}

// send delivers a plain message, logging delivery failures. Chat delivery
// errors are upstream failures and never abort the conversation.
func (e *Engine) send(ctx context.Context, chatID int64, text string) {
	if _, err := e.msg.Send(ctx, chatID, text); err != nil {
		slog.Error("Engine.send: delivery failed", "error", err, "chatID", chatID)
	}
}

func (e *Engine) sendKeyboard(ctx context.Context, chatID int64, text string, kb models.Keyboard) int {
	id, err := e.msg.SendKeyboard(ctx, chatID, text, kb)
	if err != nil {
		slog.Error("Engine.sendKeyboard: delivery failed", "error", err, "chatID", chatID)
		return 0
	}
	return id
}

// deleteStale removes a previously sent auxiliary message, if any.
func (e *Engine) deleteStale(ctx context.Context, chatID int64, messageID *int) {
	if *messageID == 0 {
		return
	}
	if err := e.msg.Delete(ctx, chatID, *messageID); err != nil {
		slog.Debug("Engine.deleteStale: delete failed", "error", err, "chatID", chatID, "messageID", *messageID)
	}
	*messageID = 0
}

func (e *Engine) timestamp() (date, clock string) {
	now := e.now().In(e.loc)
	return now.Format("2006-01-02"), now.Format("15:04:05")
}
