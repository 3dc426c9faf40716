package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/christaic/bot-incidenciasPEXT/internal/catalog"
	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

// showSummary renders the full-record review screen with save, correct and
// cancel actions. Any previous summary message is removed first so the chat
// carries exactly one live summary.
func (e *Engine) showSummary(ctx context.Context, rec *models.Record) {
	e.deleteStale(ctx, rec.ChatID, &rec.LastMenuMsg)
	e.deleteStale(ctx, rec.ChatID, &rec.LastSummaryMsg)

	var b strings.Builder
	b.WriteString("📋 *RESUMEN DEL REGISTRO*\n\n")
	fmt.Fprintf(&b, "🎫 Ticket: %s\n", rec.Get(models.ColTicket))
	fmt.Fprintf(&b, "👤 Cliente: %s\n", rec.Get(models.ColClient))
	fmt.Fprintf(&b, "🪪 DNI: %s\n", rec.Get(models.ColDocument))
	fmt.Fprintf(&b, "👷 Cuadrilla: %s\n", rec.Get(models.ColCrew))
	fmt.Fprintf(&b, "🏢 Partner: %s\n", rec.Get(models.ColPartner))
	fmt.Fprintf(&b, "🏷 Código: %s\n", rec.Get(models.ColBoxCode))
	fmt.Fprintf(&b, "📡 Nodo: %s\n", rec.Get(models.ColNode))
	fmt.Fprintf(&b, "🧭 Lugar: %s, %s, %s\n",
		rec.Get(models.ColRegion), rec.Get(models.ColSubregion), rec.Get(models.ColLocality))
	if rec.HasLocation {
		fmt.Fprintf(&b, "📍 Ubicación: %s\n", mapsLink(rec.Lat, rec.Lng))
	} else {
		b.WriteString("📍 Ubicación: " + presenceMark(false) + "\n")
	}
	fmt.Fprintf(&b, "📸 Foto caja: %s\n", presenceMark(rec.Has(models.ColPhotoBox)))
	fmt.Fprintf(&b, "📸 Foto caja abierta: %s\n", presenceMark(rec.Has(models.ColPhotoBoxOpen)))
	fmt.Fprintf(&b, "📸 Foto medición: %s\n", presenceMark(rec.Has(models.ColPhotoMeasure)))
	fmt.Fprintf(&b, "📝 Observación: %s\n\n", rec.Get(models.ColObservation))
	b.WriteString("¿Deseas guardar el registro?")

	kb := models.Keyboard{
		{{Label: "💾 Guardar", Data: models.EncodeCallback(models.Callback{Action: models.ActionSave})}},
		{{Label: "✏️ Corregir", Data: models.EncodeCallback(models.Callback{Action: models.ActionSummaryEdit})}},
		{{Label: "❌ Cancelar", Data: models.EncodeCallback(models.Callback{Action: models.ActionCancel})}},
	}
	rec.Phase = models.PhaseSummary
	rec.LastSummaryMsg = e.sendKeyboard(ctx, rec.ChatID, b.String(), kb)
}

func (e *Engine) handleSummaryAction(ctx context.Context, rec *models.Record, cb models.Callback) {
	if rec.Phase != models.PhaseSummary && rec.Phase != models.PhaseEditPicker {
		slog.Debug("Engine.handleSummaryAction: ignoring action outside summary", "chatID", rec.ChatID, "phase", rec.Phase)
		return
	}
	switch cb.Action {
	case models.ActionSave:
		if rec.Phase != models.PhaseSummary {
			return
		}
		e.commit(ctx, rec)
	case models.ActionSummaryEdit:
		if rec.Phase != models.PhaseSummary {
			return
		}
		e.showEditPicker(ctx, rec)
	case models.ActionCancel:
		e.deleteStale(ctx, rec.ChatID, &rec.LastSummaryMsg)
		e.deleteStale(ctx, rec.ChatID, &rec.LastMenuMsg)
		e.records.Clear(rec.ChatID)
		e.send(ctx, rec.ChatID, msgCanceledByUser)
	}
}

// showEditPicker lists every interview field as a button; picking one routes
// through handleEdit with the summary as the return target.
func (e *Engine) showEditPicker(ctx context.Context, rec *models.Record) {
	e.deleteStale(ctx, rec.ChatID, &rec.LastSummaryMsg)

	kb := models.Keyboard{}
	for _, step := range catalog.Ordered() {
		kb = append(kb, []models.Button{{
			Label: catalog.Label(step),
			Data:  models.EncodeCallback(models.Callback{Action: models.ActionEdit, Step: step}),
		}})
	}
	rec.Phase = models.PhaseEditPicker
	rec.LastMenuMsg = e.sendKeyboard(ctx, rec.ChatID, msgEditPicker, kb)
}

// commit persists the finished record. Sinks are written independently and
// partial failure is reported as success to the operator; only total sink
// failure surfaces as an error. A panic anywhere in the commit path clears the
// record so the chat is never left wedged.
func (e *Engine) commit(ctx context.Context, rec *models.Record) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Engine.commit: panic during commit", "panic", r, "chatID", rec.ChatID)
			e.records.Clear(rec.ChatID)
			e.send(ctx, rec.ChatID, msgCommitFailed)
		}
	}()

	e.deleteStale(ctx, rec.ChatID, &rec.LastSummaryMsg)
	e.send(ctx, rec.ChatID, msgSaving)

	date, clock := e.timestamp()
	rec.Set(models.ColDate, date)
	rec.Set(models.ColTime, clock)
	rec.Set(models.ColUserID, strconv.FormatInt(rec.UserID, 10))
	for _, col := range []models.Column{models.ColRegion, models.ColSubregion, models.ColLocality} {
		if !rec.Has(col) {
			rec.Set(col, models.PlacemarkSentinel)
		}
	}

	row := models.BuildRow(rec.Fields)

	written := 0
	for _, sink := range e.sinks {
		if err := sink.EnsureHeaders(ctx, models.HeaderRow()); err != nil {
			slog.Error("Engine.commit: header check failed", "error", err, "sink", sink.Name(), "chatID", rec.ChatID)
			continue
		}
		if err := sink.AppendRow(ctx, row); err != nil {
			slog.Error("Engine.commit: append failed", "error", err, "sink", sink.Name(), "chatID", rec.ChatID)
			continue
		}
		slog.Info("Engine.commit: row written", "sink", sink.Name(), "chatID", rec.ChatID, "ticket", rec.Get(models.ColTicket))
		written++
	}
	if len(e.sinks) > 0 && written == 0 {
		// The summary keyboard was already removed; reissue it so the
		// operator can retry the save instead of being stranded.
		e.send(ctx, rec.ChatID, msgCommitFailed)
		e.showSummary(ctx, rec)
		return
	}

	if e.journal != nil {
		report := models.SavedReport{
			ID:        rec.ID,
			ChatID:    rec.ChatID,
			Ticket:    rec.Get(models.ColTicket),
			Row:       row,
			CreatedAt: e.now(),
		}
		if err := e.journal.SaveReport(report); err != nil {
			slog.Error("Engine.commit: journal write failed", "error", err, "chatID", rec.ChatID)
		}
	}

	ticket := rec.Get(models.ColTicket)
	e.records.Clear(rec.ChatID)
	e.send(ctx, rec.ChatID, fmt.Sprintf("✅ *Registro guardado correctamente.*\n🎫 Ticket: %s\n\nUsa /registro para iniciar uno nuevo.", ticket))
	e.broadcastSupervision(ctx, rec)
}

// broadcastSupervision notifies the supervision chats of a committed report.
// Delivery failures are logged per chat and never affect the operator.
func (e *Engine) broadcastSupervision(ctx context.Context, rec *models.Record) {
	if len(e.supervision) == 0 {
		return
	}
	text := fmt.Sprintf("📣 *Nuevo registro guardado*\n\n"+
		"🎫 Ticket: %s\n"+
		"👷 Cuadrilla: %s\n"+
		"🏷 Código: %s\n"+
		"📡 Nodo: %s\n"+
		"📝 Observación: %s\n"+
		"🧭 %s, %s, %s",
		rec.Get(models.ColTicket), rec.Get(models.ColCrew), rec.Get(models.ColBoxCode),
		rec.Get(models.ColNode), rec.Get(models.ColObservation),
		rec.Get(models.ColRegion), rec.Get(models.ColSubregion), rec.Get(models.ColLocality))
	if rec.HasLocation {
		text += "\n📍 " + mapsLink(rec.Lat, rec.Lng)
	}
	for _, chatID := range e.supervision {
		if _, err := e.msg.Send(ctx, chatID, text); err != nil {
			slog.Error("Engine.broadcastSupervision: delivery failed", "error", err, "chatID", chatID)
		}
	}
}
