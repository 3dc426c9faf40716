package models

import (
	"fmt"
	"strconv"
	"strings"
)

// EventKind classifies an inbound chat event.
type EventKind string

const (
	EventCommand  EventKind = "command"
	EventText     EventKind = "text"
	EventLocation EventKind = "location"
	EventPhoto    EventKind = "photo"
	EventCallback EventKind = "callback"
)

// Photo describes an inbound image, either a photo message or an image-typed
// document attachment.
type Photo struct {
	FileID   string
	FileName string
	MIME     string
}

// Event is one classified inbound chat event, produced once at the transport
// boundary.
type Event struct {
	ChatID    int64
	UserID    int64
	MessageID int
	Kind      EventKind
	Command   string
	Text      string
	Lat, Lng  float64
	Photo     *Photo
	Callback  *Callback
}

// CallbackAction is the decoded action of a button press.
type CallbackAction string

const (
	ActionConfirm     CallbackAction = "confirm"
	ActionCorrect     CallbackAction = "correct"
	ActionEdit        CallbackAction = "edit" // field chosen in the summary's edit picker
	ActionObsCategory CallbackAction = "obs-category"
	ActionObsPick     CallbackAction = "obs-pick"
	ActionObsBack     CallbackAction = "obs-back"
	ActionSave        CallbackAction = "save"
	ActionSummaryEdit CallbackAction = "summary-edit"
	ActionCancel      CallbackAction = "cancel"
)

// Callback is a decoded button press. The wire tag is parsed exactly once by
// DecodeCallback; handlers never see raw tag strings.
type Callback struct {
	ID        string // callback query identifier, used to acknowledge the press
	MessageID int    // message carrying the pressed keyboard
	Action    CallbackAction
	Step      Step   // for confirm / correct / edit
	Category  string // for obs-category
	Index     int    // for obs-pick
}

// Wire tag prefixes. These match the tags the deployed keyboards carry, so a
// running conversation survives a redeploy.
const (
	tagConfirm     = "CONFIRMAR_"
	tagCorrect     = "CORREGIR_"
	tagEdit        = "EDITAR_"
	tagObsCategory = "OBS_TIPO_"
	tagObsPick     = "OBS_SET_"
	tagObsBack     = "OBS_BACK"
	tagSave        = "FINAL_GUARDAR"
	tagSummaryEdit = "FINAL_CORREGIR"
	tagCancel      = "FINAL_CANCELAR"
)

// EncodeCallback renders the wire tag for a callback.
func EncodeCallback(c Callback) string {
	switch c.Action {
	case ActionConfirm:
		return tagConfirm + string(c.Step)
	case ActionCorrect:
		return tagCorrect + string(c.Step)
	case ActionEdit:
		return tagEdit + string(c.Step)
	case ActionObsCategory:
		return tagObsCategory + c.Category
	case ActionObsPick:
		return tagObsPick + strconv.Itoa(c.Index)
	case ActionObsBack:
		return tagObsBack
	case ActionSave:
		return tagSave
	case ActionSummaryEdit:
		return tagSummaryEdit
	case ActionCancel:
		return tagCancel
	}
	return ""
}

// DecodeCallback parses a wire tag into a Callback. Unknown tags are an error;
// the transport drops them after acknowledging the press.
func DecodeCallback(id string, messageID int, data string) (Callback, error) {
	c := Callback{ID: id, MessageID: messageID}
	switch {
	case data == tagSave:
		c.Action = ActionSave
	case data == tagSummaryEdit:
		c.Action = ActionSummaryEdit
	case data == tagCancel:
		c.Action = ActionCancel
	case data == tagObsBack:
		c.Action = ActionObsBack
	case strings.HasPrefix(data, tagObsCategory):
		c.Action = ActionObsCategory
		c.Category = strings.TrimPrefix(data, tagObsCategory)
	case strings.HasPrefix(data, tagObsPick):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, tagObsPick))
		if err != nil {
			return c, fmt.Errorf("bad observation index in callback %q: %w", data, err)
		}
		c.Action = ActionObsPick
		c.Index = idx
	case strings.HasPrefix(data, tagConfirm):
		c.Action = ActionConfirm
		c.Step = Step(strings.TrimPrefix(data, tagConfirm))
	case strings.HasPrefix(data, tagCorrect):
		c.Action = ActionCorrect
		c.Step = Step(strings.TrimPrefix(data, tagCorrect))
	case strings.HasPrefix(data, tagEdit):
		c.Action = ActionEdit
		c.Step = Step(strings.TrimPrefix(data, tagEdit))
	default:
		return c, fmt.Errorf("unknown callback tag %q", data)
	}
	return c, nil
}

// Button is one inline keyboard button.
type Button struct {
	Label string
	Data  string
}

// Keyboard is an inline keyboard: rows of buttons.
type Keyboard [][]Button

// ConfirmKeyboard builds the standard confirm/correct row for a step.
func ConfirmKeyboard(step Step) Keyboard {
	return Keyboard{{
		{Label: "✅ Confirmar", Data: EncodeCallback(Callback{Action: ActionConfirm, Step: step})},
		{Label: "✏️ Corregir", Data: EncodeCallback(Callback{Action: ActionCorrect, Step: step})},
	}}
}
