// Package models defines the shared data types for the incident report bot.
package models

import (
	"time"

	"github.com/google/uuid"
)

// InputKind identifies what kind of input a step accepts.
type InputKind string

const (
	KindText     InputKind = "text"
	KindLocation InputKind = "location"
	KindPhoto    InputKind = "photo"
	KindMenu     InputKind = "menu"
)

// Step names one stage of the interview. Step names double as the field keys
// written by that step, matching the persisted column names.
type Step string

const (
	StepTicket       Step = "TICKET"
	StepBoxCode      Step = "CODIGO_CAJA"
	StepLocation     Step = "UBICACION_CTO"
	StepPhotoBox     Step = "FOTO_CAJA"
	StepPhotoBoxOpen Step = "FOTO_CAJA_ABIERTA"
	StepPhotoMeasure Step = "FOTO_MEDICION"
	StepObservation  Step = "OBS"
)

// Phase is the control state of a conversation.
type Phase string

const (
	PhaseCapturing  Phase = "capturing"
	PhaseConfirming Phase = "awaiting-confirmation"
	PhaseObsType    Phase = "selecting-observation-type"
	PhaseObsValue   Phase = "selecting-observation-value"
	PhaseEditPicker Phase = "choosing-field"
	PhaseSummary    Phase = "summary"
)

// ReturnTarget records where a confirm should route after a correction.
// It is set exactly when a correction is entered from the summary's edit
// picker and cleared exactly when consumed by the next confirm.
type ReturnTarget string

const (
	ReturnNone    ReturnTarget = ""
	ReturnSummary ReturnTarget = "summary"
)

// RecordIDLength is the number of UUID characters kept for a record ID.
const RecordIDLength = 8

// Record is the in-progress draft of one incident report tied to one chat.
type Record struct {
	ID           string
	ChatID       int64
	UserID       int64
	Active       bool
	Phase        Phase
	Step         Step // step being captured or confirmed
	ReturnTarget ReturnTarget
	Fields       map[Column]string
	Lat, Lng     float64
	HasLocation  bool
	ObsCategory  string
	CreatedAt    time.Time

	// Transient UI bookkeeping: identifiers of the most recently sent menu
	// and summary messages, used only to delete stale prompts. Never persisted.
	LastMenuMsg    int
	LastSummaryMsg int
}

// NewRecord creates an active record positioned at the first capture step.
func NewRecord(chatID, userID int64, first Step) *Record {
	return &Record{
		ID:        uuid.NewString()[:RecordIDLength],
		ChatID:    chatID,
		UserID:    userID,
		Active:    true,
		Phase:     PhaseCapturing,
		Step:      first,
		Fields:    make(map[Column]string),
		CreatedAt: time.Now(),
	}
}

// Set stores a field value on the record.
func (r *Record) Set(col Column, value string) {
	if r.Fields == nil {
		r.Fields = make(map[Column]string)
	}
	r.Fields[col] = value
}

// Get returns a field value, or "" when unset.
func (r *Record) Get(col Column) string {
	return r.Fields[col]
}

// Unset removes a field value from the record.
func (r *Record) Unset(col Column) {
	delete(r.Fields, col)
}

// Has reports whether a field has a non-empty value.
func (r *Record) Has(col Column) bool {
	return r.Fields[col] != ""
}

// Placemark is the administrative-region result of a reverse geocode.
// Unresolvable fields carry the sentinel value.
type Placemark struct {
	Region    string // administrative_area_level_1
	Subregion string // administrative_area_level_2
	Locality  string
}

// PlacemarkSentinel is the value used for administrative-region fields that
// could not be resolved.
const PlacemarkSentinel = "-"

// SentinelPlacemark returns a placemark with every field set to the sentinel.
func SentinelPlacemark() Placemark {
	return Placemark{Region: PlacemarkSentinel, Subregion: PlacemarkSentinel, Locality: PlacemarkSentinel}
}

// WorkOrder holds the data a ticket lookup backfills into a record.
type WorkOrder struct {
	Ticket   string
	Client   string
	Document string
	Crew     string
	Partner  string
}

// SavedReport is one committed report row as kept in the local journal.
type SavedReport struct {
	ID        string
	ChatID    int64
	Ticket    string
	Row       []string
	CreatedAt time.Time
}
