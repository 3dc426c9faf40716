package store

import (
	"errors"
	"testing"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

func TestRecordStoreSingleActiveRecord(t *testing.T) {
	s := NewRecordStore()

	rec, err := s.Create(100, 7, models.StepTicket)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.ChatID != 100 || rec.UserID != 7 || rec.Step != models.StepTicket {
		t.Errorf("unexpected record %+v", rec)
	}
	if !rec.Active || rec.Phase != models.PhaseCapturing {
		t.Errorf("new record should be active and capturing, got %+v", rec)
	}

	if _, err := s.Create(100, 7, models.StepTicket); !errors.Is(err, ErrActiveRecord) {
		t.Errorf("expected ErrActiveRecord for second create, got %v", err)
	}

	// A different chat is unaffected.
	if _, err := s.Create(200, 7, models.StepTicket); err != nil {
		t.Errorf("create in different chat failed: %v", err)
	}

	s.Clear(100)
	if s.Active(100) {
		t.Errorf("record should be gone after Clear")
	}
	if _, err := s.Create(100, 7, models.StepTicket); err != nil {
		t.Errorf("create after Clear failed: %v", err)
	}
}

func TestRecordStoreGetReturnsLiveRecord(t *testing.T) {
	s := NewRecordStore()
	rec, err := s.Create(1, 2, models.StepTicket)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rec.Set(models.ColTicket, "T-1")

	got, ok := s.Get(1)
	if !ok {
		t.Fatalf("Get missed existing record")
	}
	if got.Get(models.ColTicket) != "T-1" {
		t.Errorf("Get should return the live record, got %+v", got)
	}
}
