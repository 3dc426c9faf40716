// Package catalog holds the immutable interview definition: the ordered step
// sequence and the observation menu. Loaded once, never mutated.
package catalog

import "github.com/christaic/bot-incidenciasPEXT/internal/models"

// StepInfo describes one step of the interview.
type StepInfo struct {
	Step   models.Step
	Kind   models.InputKind
	Prompt string
	Next   models.Step // zero value means the step has no sequential successor
}

var steps = map[models.Step]StepInfo{
	models.StepTicket: {
		Step:   models.StepTicket,
		Kind:   models.KindText,
		Prompt: "🎫 Ingrese el número de *TICKET* a registrar:",
		Next:   models.StepBoxCode,
	},
	models.StepBoxCode: {
		Step:   models.StepBoxCode,
		Kind:   models.KindText,
		Prompt: "🏷 Ingresa el *Código de la CTO/NAP/FAT*:",
		Next:   models.StepLocation,
	},
	models.StepLocation: {
		Step:   models.StepLocation,
		Kind:   models.KindLocation,
		Prompt: "📍 Envíe la ubicación de la CTO/NAP/FAT:",
		Next:   models.StepPhotoBox,
	},
	models.StepPhotoBox: {
		Step:   models.StepPhotoBox,
		Kind:   models.KindPhoto,
		Prompt: "📸 Envía *foto de la CTO/NAP/FAT con rotulo visible*:",
		Next:   models.StepPhotoBoxOpen,
	},
	models.StepPhotoBoxOpen: {
		Step:   models.StepPhotoBoxOpen,
		Kind:   models.KindPhoto,
		Prompt: "📸 Envía *foto de la CTO/NAP/FAT abierta* mostrando puertos visibles:",
		Next:   models.StepPhotoMeasure,
	},
	models.StepPhotoMeasure: {
		Step:   models.StepPhotoMeasure,
		Kind:   models.KindPhoto,
		Prompt: "📸 Envía *foto de la potencia óptica en dBm. & λ 1490 nm.* del puerto asignado:",
		Next:   models.StepObservation,
	},
	models.StepObservation: {
		Step:   models.StepObservation,
		Kind:   models.KindMenu,
		Prompt: "🧭 Selecciona el tipo de observación en CTO / NAP / FAT:",
	},
}

// order is the capture sequence; the observation step is always last.
var order = []models.Step{
	models.StepTicket,
	models.StepBoxCode,
	models.StepLocation,
	models.StepPhotoBox,
	models.StepPhotoBoxOpen,
	models.StepPhotoMeasure,
	models.StepObservation,
}

// labels are the user-facing field names used in summaries and pickers.
var labels = map[models.Step]string{
	models.StepTicket:       "🎫 Ticket",
	models.StepBoxCode:      "🏷 Código CTO/NAP/FAT",
	models.StepLocation:     "📍 Ubicación CTO/NAP/FAT",
	models.StepPhotoBox:     "📸 Foto CTO/NAP/FAT (Exterior)",
	models.StepPhotoBoxOpen: "📦 Foto CTO/NAP/FAT (Interior)",
	models.StepPhotoMeasure: "📏 Foto de medición óptica (dBm)",
	models.StepObservation:  "📝 Observaciones",
}

// First returns the entry step of the interview.
func First() models.Step { return order[0] }

// Ordered returns the capture sequence.
func Ordered() []models.Step {
	out := make([]models.Step, len(order))
	copy(out, order)
	return out
}

// Describe returns the step definition. A missing step is a caller bug, not a
// runtime fault; ok is false so tests can assert on it.
func Describe(s models.Step) (StepInfo, bool) {
	info, ok := steps[s]
	return info, ok
}

// Next returns the successor of a step, or false when the step is last or
// unknown.
func Next(s models.Step) (models.Step, bool) {
	info, ok := steps[s]
	if !ok || info.Next == "" {
		return "", false
	}
	return info.Next, true
}

// Kind returns the declared input kind for a step, defaulting to text for
// unknown steps.
func Kind(s models.Step) models.InputKind {
	if info, ok := steps[s]; ok {
		return info.Kind
	}
	return models.KindText
}

// Label returns the user-facing name of a step.
func Label(s models.Step) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}
