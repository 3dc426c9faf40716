package flow

import (
	"fmt"

	"github.com/christaic/bot-incidenciasPEXT/internal/catalog"
	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

// User-facing message texts. Operators work in Spanish.
const (
	msgWelcome = "👋 *Bienvenido al Bot de Incidencias*\n\n" +
		"• Usa /registro para iniciar un nuevo registro.\n" +
		"• Usa /cancel para cancelar un registro en curso.\n\n" +
		"‼️ Si ya tienes un registro activo, no podrás iniciar otro."
	msgCanceled          = "❌ Registro cancelado."
	msgCanceledByUser    = "❌ Registro cancelado por el usuario."
	msgUseConfirmButtons = "👉 Usa los botones *Confirmar* o *Corregir* para continuar."
	msgUseObsMenu        = "📋 Usa el menú para elegir el tipo de observación."
	msgUseSummaryButtons = "👉 Usa los botones del resumen para guardar, corregir o cancelar."
	msgPhotoRetry        = "⚠️ No se pudo procesar la foto, por favor vuelve a enviarla."
	msgCommitFailed      = "⚠️ Ocurrió un error al guardar. Contacta a soporte."
	msgFieldCorrected    = "✅ *Campo corregido correctamente.*"
	msgObsPickFailed     = "⚠️ No se pudo identificar la observación seleccionada. Intenta nuevamente."
	msgObsTypeMenu       = "🧩 *Selecciona el tipo de elemento* para registrar la observación:"
	msgEditPicker        = "✏️ *Selecciona el campo que deseas corregir:*"
	msgSaving            = "💾 Guardando registro..."
)

func inProgressNotice(step models.Step) string {
	return fmt.Sprintf("⚠️ Ya tienes un registro en curso.\n\n"+
		"📌 Estás en el paso: *%s*.\n\n"+
		"👉 Responde lo solicitado o usa /cancel para anular.", catalog.Label(step))
}

// retryPrompt is the re-entry instruction sent when a step is corrected.
func retryPrompt(step models.Step) string {
	switch catalog.Kind(step) {
	case models.KindPhoto:
		return fmt.Sprintf("📸 Envía nuevamente la *%s*:", catalog.Label(step))
	case models.KindLocation:
		return "📍 Envía nuevamente la *ubicación GPS* de la CTO/NAP/FAT:"
	default:
		return fmt.Sprintf("✏️ Ingresa nuevamente el *%s*:", catalog.Label(step))
	}
}

func noObservationsNotice(category string) string {
	return fmt.Sprintf("⚠️ No hay observaciones definidas para *%s*.", category)
}

func obsValueMenuText(category string) string {
	return fmt.Sprintf("📝 *Selecciona la observación correspondiente a %s:*", category)
}

func mapsLink(lat, lng float64) string {
	return fmt.Sprintf("https://maps.google.com/?q=%.6f,%.6f", lat, lng)
}

func presenceMark(set bool) string {
	if set {
		return "✅"
	}
	return "❌"
}
