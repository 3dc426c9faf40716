package flow

import (
	"context"
	"log/slog"

	"github.com/christaic/bot-incidenciasPEXT/internal/catalog"
	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

// handleConfirm advances the interview after a ✅ on the step named in the
// callback. A pending return target always wins over linear order, and the
// observation step always lands on the summary regardless of target.
func (e *Engine) handleConfirm(ctx context.Context, rec *models.Record, cb models.Callback) {
	if rec.Phase != models.PhaseConfirming {
		slog.Debug("Engine.handleConfirm: ignoring stale confirm", "chatID", rec.ChatID, "phase", rec.Phase)
		return
	}
	if cb.Step != rec.Step {
		slog.Debug("Engine.handleConfirm: callback step mismatch", "chatID", rec.ChatID, "got", cb.Step, "want", rec.Step)
		return
	}

	if rec.Step == models.StepObservation {
		rec.ReturnTarget = models.ReturnNone
		e.showSummary(ctx, rec)
		return
	}

	if rec.ReturnTarget == models.ReturnSummary {
		rec.ReturnTarget = models.ReturnNone
		e.send(ctx, rec.ChatID, msgFieldCorrected)
		e.showSummary(ctx, rec)
		return
	}

	next, ok := catalog.Next(rec.Step)
	if !ok {
		e.showSummary(ctx, rec)
		return
	}
	rec.Step = next
	rec.Phase = models.PhaseCapturing
	if next == models.StepObservation {
		e.showObsTypeMenu(ctx, rec)
		return
	}
	e.promptStep(ctx, rec)
}

// handleCorrect clears the step's captured value and reopens capture for it.
// The return target is preserved so a correction begun from the summary still
// rejoins the summary after re-confirmation.
func (e *Engine) handleCorrect(ctx context.Context, rec *models.Record, cb models.Callback) {
	if rec.Phase != models.PhaseConfirming {
		slog.Debug("Engine.handleCorrect: ignoring stale correct", "chatID", rec.ChatID, "phase", rec.Phase)
		return
	}
	step := cb.Step
	if step == "" {
		step = rec.Step
	}
	e.resetStep(rec, step)
	rec.Step = step
	rec.Phase = models.PhaseCapturing
	if step == models.StepObservation {
		e.showObsTypeMenu(ctx, rec)
		return
	}
	e.promptStep(ctx, rec)
}

// handleEdit services a field pick from the summary's edit picker. The record
// is marked to return to the summary once the field is re-confirmed.
func (e *Engine) handleEdit(ctx context.Context, rec *models.Record, cb models.Callback) {
	if rec.Phase != models.PhaseEditPicker {
		slog.Debug("Engine.handleEdit: ignoring edit outside picker", "chatID", rec.ChatID, "phase", rec.Phase)
		return
	}
	if _, ok := catalog.Describe(cb.Step); !ok {
		slog.Warn("Engine.handleEdit: unknown step in callback", "chatID", rec.ChatID, "step", cb.Step)
		return
	}
	e.deleteStale(ctx, rec.ChatID, &rec.LastMenuMsg)
	e.resetStep(rec, cb.Step)
	rec.Step = cb.Step
	rec.Phase = models.PhaseCapturing
	rec.ReturnTarget = models.ReturnSummary
	if cb.Step == models.StepObservation {
		e.showObsTypeMenu(ctx, rec)
		return
	}
	e.promptStep(ctx, rec)
}

// promptStep issues the canonical prompt for the record's current step.
func (e *Engine) promptStep(ctx context.Context, rec *models.Record) {
	info, ok := catalog.Describe(rec.Step)
	if !ok {
		slog.Error("Engine.promptStep: unknown step", "chatID", rec.ChatID, "step", rec.Step)
		return
	}
	e.send(ctx, rec.ChatID, info.Prompt)
}

// resetStep drops the captured value for a step along with anything that was
// derived from it, so a correction re-derives from fresh input.
func (e *Engine) resetStep(rec *models.Record, step models.Step) {
	switch step {
	case models.StepTicket:
		rec.Unset(models.ColTicket)
		rec.Unset(models.ColClient)
		rec.Unset(models.ColDocument)
		rec.Unset(models.ColCrew)
		rec.Unset(models.ColPartner)
	case models.StepBoxCode:
		rec.Unset(models.ColBoxCode)
		rec.Unset(models.ColNode)
		rec.ObsCategory = ""
	case models.StepLocation:
		rec.Unset(models.ColLat)
		rec.Unset(models.ColLng)
		rec.Unset(models.ColRegion)
		rec.Unset(models.ColSubregion)
		rec.Unset(models.ColLocality)
		rec.HasLocation = false
		rec.Lat, rec.Lng = 0, 0
	case models.StepObservation:
		rec.Unset(models.ColObservation)
	default:
		rec.Unset(models.Column(step))
	}
}
