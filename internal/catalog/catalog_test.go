package catalog

import (
	"testing"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

func TestStepSequence(t *testing.T) {
	if First() != models.StepTicket {
		t.Fatalf("expected interview to start at TICKET, got %s", First())
	}

	// Following Next from the first step must visit every step exactly once
	// and end at the observation step.
	visited := []models.Step{First()}
	step := First()
	for {
		next, ok := Next(step)
		if !ok {
			break
		}
		visited = append(visited, next)
		step = next
	}
	if step != models.StepObservation {
		t.Errorf("expected sequence to end at OBS, got %s", step)
	}
	ordered := Ordered()
	if len(visited) != len(ordered) {
		t.Fatalf("sequence visited %d steps, ordered list has %d", len(visited), len(ordered))
	}
	for i := range ordered {
		if visited[i] != ordered[i] {
			t.Errorf("position %d: sequence has %s, ordered list has %s", i, visited[i], ordered[i])
		}
	}
}

func TestStepKinds(t *testing.T) {
	cases := map[models.Step]models.InputKind{
		models.StepTicket:       models.KindText,
		models.StepBoxCode:      models.KindText,
		models.StepLocation:     models.KindLocation,
		models.StepPhotoBox:     models.KindPhoto,
		models.StepPhotoBoxOpen: models.KindPhoto,
		models.StepPhotoMeasure: models.KindPhoto,
		models.StepObservation:  models.KindMenu,
	}
	for step, want := range cases {
		if got := Kind(step); got != want {
			t.Errorf("Kind(%s) = %s, want %s", step, got, want)
		}
	}
}

func TestObservationBounds(t *testing.T) {
	for _, cat := range Categories() {
		list := Observations(cat)
		if len(list) == 0 {
			t.Fatalf("category %s has no observations", cat)
		}
		if got, ok := Observation(cat, 0); !ok || got != list[0] {
			t.Errorf("Observation(%s, 0) = %q, %v", cat, got, ok)
		}
		if _, ok := Observation(cat, len(list)); ok {
			t.Errorf("Observation(%s, %d) should be out of range", cat, len(list))
		}
		if _, ok := Observation(cat, -1); ok {
			t.Errorf("Observation(%s, -1) should be out of range", cat)
		}
	}
	if Observations("PLC") != nil {
		t.Errorf("unknown category should have no observations")
	}
}

func TestDetectCategory(t *testing.T) {
	cases := map[string]string{
		"CTO-LIM-0042": "CTO",
		"nap_077":      "NAP",
		"FATX-9":       "FAT",
		"MX-1234":      "",
	}
	for code, want := range cases {
		if got := DetectCategory(code); got != want {
			t.Errorf("DetectCategory(%q) = %q, want %q", code, got, want)
		}
	}
}
