package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/christaic/bot-incidenciasPEXT/internal/catalog"
	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

// showObsTypeMenu opens the observation sub-menu at its category screen. When
// the box code already named a category, that screen is skipped.
func (e *Engine) showObsTypeMenu(ctx context.Context, rec *models.Record) {
	e.deleteStale(ctx, rec.ChatID, &rec.LastMenuMsg)

	if rec.ObsCategory != "" {
		e.showObsValueMenu(ctx, rec, rec.ObsCategory)
		return
	}

	kb := models.Keyboard{}
	for _, cat := range catalog.Categories() {
		kb = append(kb, []models.Button{{
			Label: fmt.Sprintf("🔧 %s", cat),
			Data:  models.EncodeCallback(models.Callback{Action: models.ActionObsCategory, Category: cat}),
		}})
	}
	rec.Phase = models.PhaseObsType
	rec.LastMenuMsg = e.sendKeyboard(ctx, rec.ChatID, msgObsTypeMenu, kb)
}

func (e *Engine) handleObsCategory(ctx context.Context, rec *models.Record, cb models.Callback) {
	if rec.Phase != models.PhaseObsType {
		slog.Debug("Engine.handleObsCategory: ignoring pick outside category menu", "chatID", rec.ChatID, "phase", rec.Phase)
		return
	}
	e.showObsValueMenu(ctx, rec, cb.Category)
}

// showObsValueMenu renders the observation list for a category. An unknown or
// empty category is a deployment problem, not an operator mistake: it is
// logged, reported, and the category screen reopens.
func (e *Engine) showObsValueMenu(ctx context.Context, rec *models.Record, category string) {
	list := catalog.Observations(category)
	if len(list) == 0 {
		slog.Error("Engine.showObsValueMenu: no observations for category", "chatID", rec.ChatID, "category", category)
		e.send(ctx, rec.ChatID, noObservationsNotice(category))
		rec.ObsCategory = ""
		rec.Phase = models.PhaseObsType
		e.showObsTypeMenu(ctx, rec)
		return
	}

	e.deleteStale(ctx, rec.ChatID, &rec.LastMenuMsg)
	rec.ObsCategory = category

	kb := models.Keyboard{}
	for i, obs := range list {
		kb = append(kb, []models.Button{{
			Label: obs,
			Data:  models.EncodeCallback(models.Callback{Action: models.ActionObsPick, Index: i}),
		}})
	}
	kb = append(kb, []models.Button{{
		Label: "⬅️ Volver",
		Data:  models.EncodeCallback(models.Callback{Action: models.ActionObsBack}),
	}})

	rec.Phase = models.PhaseObsValue
	rec.LastMenuMsg = e.sendKeyboard(ctx, rec.ChatID, obsValueMenuText(category), kb)
}

// handleObsPick resolves a picked observation by its index in the category's
// list. The pick lands on the step confirmation like any other captured value.
func (e *Engine) handleObsPick(ctx context.Context, rec *models.Record, cb models.Callback) {
	if rec.Phase != models.PhaseObsValue {
		slog.Debug("Engine.handleObsPick: ignoring pick outside value menu", "chatID", rec.ChatID, "phase", rec.Phase)
		return
	}
	obs, ok := catalog.Observation(rec.ObsCategory, cb.Index)
	if !ok {
		serr := &models.SelectionError{Category: rec.ObsCategory, Index: cb.Index}
		slog.Error("Engine.handleObsPick: selection out of range", "error", serr, "chatID", rec.ChatID)
		e.send(ctx, rec.ChatID, msgObsPickFailed)
		e.showObsValueMenu(ctx, rec, rec.ObsCategory)
		return
	}

	e.deleteStale(ctx, rec.ChatID, &rec.LastMenuMsg)
	rec.Set(models.ColObservation, obs)
	rec.Step = models.StepObservation
	rec.Phase = models.PhaseConfirming

	text := fmt.Sprintf("📝 *Observación:* %s\n\n¿Deseas confirmar o corregir?", obs)
	e.sendKeyboard(ctx, rec.ChatID, text, models.ConfirmKeyboard(models.StepObservation))
}

// handleObsBack returns from the observation list to the category screen,
// dropping any auto-detected category so the operator can pick freely.
func (e *Engine) handleObsBack(ctx context.Context, rec *models.Record) {
	if rec.Phase != models.PhaseObsValue {
		slog.Debug("Engine.handleObsBack: ignoring back outside value menu", "chatID", rec.ChatID, "phase", rec.Phase)
		return
	}
	rec.ObsCategory = ""
	rec.Phase = models.PhaseObsType
	e.showObsTypeMenu(ctx, rec)
}
