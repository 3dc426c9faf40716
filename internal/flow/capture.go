package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/christaic/bot-incidenciasPEXT/internal/catalog"
	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

// errStay signals that the capturer already notified the operator and the step
// should simply be retried, without an extra re-prompt.
var errStay = errors.New("stay on current step")

// capture validates raw input against the current step's declared kind and, on
// success, writes the field and moves the record to awaiting-confirmation.
// Validation always runs against the step's kind, never against the type of
// whatever was last sent.
func (e *Engine) capture(ctx context.Context, rec *models.Record, ev models.Event) {
	info, ok := catalog.Describe(rec.Step)
	if !ok {
		slog.Error("Engine.capture: record at unknown step", "chatID", rec.ChatID, "step", rec.Step)
		return
	}

	var err error
	switch info.Kind {
	case models.KindText:
		err = e.captureText(ctx, rec, ev)
	case models.KindLocation:
		err = e.captureLocation(ctx, rec, ev)
	case models.KindPhoto:
		err = e.capturePhoto(ctx, rec, ev)
	case models.KindMenu:
		// The observation step has no free-form capture; reopen the menu.
		e.showObsTypeMenu(ctx, rec)
		return
	}
	if err == nil {
		return
	}
	if errors.Is(err, errStay) {
		return
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		slog.Debug("Engine.capture: validation failed", "chatID", rec.ChatID, "step", rec.Step, "reason", verr.Reason)
		e.send(ctx, rec.ChatID, verr.Reason)
		return
	}
	slog.Error("Engine.capture: capture failed", "error", err, "chatID", rec.ChatID, "step", rec.Step)
	e.send(ctx, rec.ChatID, retryPrompt(rec.Step))
}

func (e *Engine) captureText(ctx context.Context, rec *models.Record, ev models.Event) error {
	if ev.Kind != models.EventText || strings.TrimSpace(ev.Text) == "" {
		return &models.ValidationError{Step: rec.Step, Reason: "⚠️ Solo se acepta *texto* en este paso."}
	}
	// Both text steps capture identifiers; canonicalize to upper case.
	value := strings.ToUpper(strings.TrimSpace(ev.Text))

	switch rec.Step {
	case models.StepTicket:
		return e.captureTicket(ctx, rec, value)
	case models.StepBoxCode:
		return e.captureBoxCode(ctx, rec, value)
	}
	return fmt.Errorf("text input for non-text step %s", rec.Step)
}

func (e *Engine) captureTicket(ctx context.Context, rec *models.Record, ticket string) error {
	rec.Set(models.ColTicket, ticket)

	if e.dir == nil {
		slog.Warn("Engine.captureTicket: ticket lookup not configured, skipping backfill", "chatID", rec.ChatID)
		rec.Phase = models.PhaseConfirming
		text := fmt.Sprintf("🎫 *Ticket registrado:* %s\n\n¿Es correcto el *Ticket* ingresado?", ticket)
		e.sendKeyboard(ctx, rec.ChatID, text, models.ConfirmKeyboard(models.StepTicket))
		return nil
	}

	order, found := e.dir.FindTicket(ticket)
	if !found {
		slog.Info("Engine.captureTicket: ticket not found", "chatID", rec.ChatID, "ticket", ticket)
		return &models.ValidationError{
			Step:   models.StepTicket,
			Reason: "⚠️ Ticket no encontrado en las órdenes actuales.\nPor favor vuelve a ingresar un *Ticket válido*:",
		}
	}

	rec.Set(models.ColClient, order.Client)
	rec.Set(models.ColDocument, order.Document)
	rec.Set(models.ColCrew, order.Crew)
	rec.Set(models.ColPartner, order.Partner)
	rec.Phase = models.PhaseConfirming

	text := fmt.Sprintf("✅ Datos encontrados para Ticket %s:\n\n"+
		"👤 Cliente: %s\n"+
		"🪪 DNI: %s\n"+
		"👷 Cuadrilla: %s\n"+
		"🏢 Partner: %s\n\n"+
		"¿Es correcto el *Ticket* ingresado?",
		ticket, order.Client, order.Document, order.Crew, order.Partner)
	e.sendKeyboard(ctx, rec.ChatID, text, models.ConfirmKeyboard(models.StepTicket))
	return nil
}

func (e *Engine) captureBoxCode(ctx context.Context, rec *models.Record, code string) error {
	rec.Set(models.ColBoxCode, code)

	node := ""
	if e.dir != nil {
		node = e.dir.NodeFor(code)
	}
	if node == "" {
		node = "-"
	}
	rec.Set(models.ColNode, node)

	if category := catalog.DetectCategory(code); category != "" {
		rec.ObsCategory = category
		e.send(ctx, rec.ChatID, fmt.Sprintf("🧩 Tipo detectado automáticamente: *%s*", category))
	}
	rec.Phase = models.PhaseConfirming

	text := fmt.Sprintf("🏷 *Código CTO/NAP/FAT:* %s\n📡 *Nodo:* %s\n\n¿Deseas confirmar o corregir?", code, node)
	e.sendKeyboard(ctx, rec.ChatID, text, models.ConfirmKeyboard(models.StepBoxCode))
	return nil
}

func (e *Engine) captureLocation(ctx context.Context, rec *models.Record, ev models.Event) error {
	if ev.Kind != models.EventLocation {
		return &models.ValidationError{Step: rec.Step, Reason: "⚠️ Debe enviar una *ubicación GPS* válida."}
	}
	rec.Lat, rec.Lng = ev.Lat, ev.Lng
	rec.HasLocation = true
	rec.Set(models.ColLat, strconv.FormatFloat(ev.Lat, 'f', 6, 64))
	rec.Set(models.ColLng, strconv.FormatFloat(ev.Lng, 'f', 6, 64))

	place := e.reverseGeocode(ctx, ev.Lat, ev.Lng)
	rec.Set(models.ColRegion, place.Region)
	rec.Set(models.ColSubregion, place.Subregion)
	rec.Set(models.ColLocality, place.Locality)
	rec.Phase = models.PhaseConfirming

	text := fmt.Sprintf("✅ 📍 *Ubicación CTO/NAP/FAT:* (%.6f, %.6f)\n"+
		"🧭 *Lugar de Incidencia:* %s, %s, %s\n"+
		"🌍 %s\n\n¿Deseas confirmar o corregir?",
		ev.Lat, ev.Lng, place.Region, place.Subregion, place.Locality, mapsLink(ev.Lat, ev.Lng))
	e.sendKeyboard(ctx, rec.ChatID, text, models.ConfirmKeyboard(rec.Step))
	return nil
}

// reverseGeocode resolves administrative regions, degrading every field to the
// sentinel on any failure. Geocoding never blocks progression.
func (e *Engine) reverseGeocode(ctx context.Context, lat, lng float64) models.Placemark {
	if e.geo == nil {
		slog.Warn("Engine.reverseGeocode: geocoder not configured, using sentinels")
		return models.SentinelPlacemark()
	}
	place, err := e.geo.Reverse(ctx, lat, lng)
	if err != nil {
		slog.Error("Engine.reverseGeocode: lookup failed", "error", err, "lat", lat, "lng", lng)
		return models.SentinelPlacemark()
	}
	if place.Region == "" {
		place.Region = models.PlacemarkSentinel
	}
	if place.Subregion == "" {
		place.Subregion = models.PlacemarkSentinel
	}
	if place.Locality == "" {
		place.Locality = models.PlacemarkSentinel
	}
	return place
}

func (e *Engine) capturePhoto(ctx context.Context, rec *models.Record, ev models.Event) error {
	if ev.Kind != models.EventPhoto || ev.Photo == nil {
		return &models.ValidationError{Step: rec.Step, Reason: "⚠️ Debe enviar una *foto* (imagen o archivo de imagen)."}
	}
	if e.images == nil {
		slog.Error("Engine.capturePhoto: image store not configured", "chatID", rec.ChatID, "step", rec.Step)
		e.send(ctx, rec.ChatID, msgPhotoRetry)
		return errStay
	}

	filename := ev.Photo.FileName
	if filename == "" {
		filename = fmt.Sprintf("%s_%s.jpg", rec.Step, rec.ID)
	}

	data, err := e.msg.DownloadPhoto(ctx, ev.Photo.FileID)
	if err != nil {
		slog.Error("Engine.capturePhoto: download failed", "error", err, "chatID", rec.ChatID, "step", rec.Step)
		e.send(ctx, rec.ChatID, msgPhotoRetry)
		return errStay
	}

	link, err := e.images.Upload(ctx, data, filename)
	if err != nil {
		slog.Error("Engine.capturePhoto: upload failed", "error", err, "chatID", rec.ChatID, "step", rec.Step)
		e.send(ctx, rec.ChatID, msgPhotoRetry)
		return errStay
	}

	rec.Set(models.Column(rec.Step), link)
	rec.Phase = models.PhaseConfirming
	slog.Info("Engine.capturePhoto: photo stored", "chatID", rec.ChatID, "step", rec.Step, "filename", filename)

	e.sendKeyboard(ctx, rec.ChatID,
		"📸 Foto recibida. ¿Deseas *confirmarla* o *volver a tomarla*?",
		models.ConfirmKeyboard(rec.Step))
	return nil
}
