package models

import "testing"

func TestDecodeCallback(t *testing.T) {
	cases := []struct {
		data string
		want Callback
	}{
		{"CONFIRMAR_TICKET", Callback{Action: ActionConfirm, Step: StepTicket}},
		{"CORREGIR_FOTO_CAJA", Callback{Action: ActionCorrect, Step: StepPhotoBox}},
		{"EDITAR_UBICACION_CTO", Callback{Action: ActionEdit, Step: StepLocation}},
		{"OBS_TIPO_NAP", Callback{Action: ActionObsCategory, Category: "NAP"}},
		{"OBS_SET_3", Callback{Action: ActionObsPick, Index: 3}},
		{"OBS_BACK", Callback{Action: ActionObsBack}},
		{"FINAL_GUARDAR", Callback{Action: ActionSave}},
		{"FINAL_CORREGIR", Callback{Action: ActionSummaryEdit}},
		{"FINAL_CANCELAR", Callback{Action: ActionCancel}},
	}
	for _, tc := range cases {
		got, err := DecodeCallback("cb1", 7, tc.data)
		if err != nil {
			t.Fatalf("DecodeCallback(%q) failed: %v", tc.data, err)
		}
		if got.ID != "cb1" || got.MessageID != 7 {
			t.Errorf("DecodeCallback(%q) lost identity: %+v", tc.data, got)
		}
		if got.Action != tc.want.Action || got.Step != tc.want.Step ||
			got.Category != tc.want.Category || got.Index != tc.want.Index {
			t.Errorf("DecodeCallback(%q) = %+v, want %+v", tc.data, got, tc.want)
		}
	}
}

func TestDecodeCallbackRejectsUnknownTags(t *testing.T) {
	for _, data := range []string{"", "NOPE", "OBS_SET_x"} {
		if _, err := DecodeCallback("cb", 1, data); err == nil {
			t.Errorf("expected error for tag %q", data)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Callback{
		{Action: ActionConfirm, Step: StepObservation},
		{Action: ActionObsCategory, Category: "FAT"},
		{Action: ActionObsPick, Index: 11},
		{Action: ActionSave},
	}
	for _, c := range cases {
		got, err := DecodeCallback("", 0, EncodeCallback(c))
		if err != nil {
			t.Fatalf("round trip of %+v failed: %v", c, err)
		}
		if got.Action != c.Action || got.Step != c.Step || got.Category != c.Category || got.Index != c.Index {
			t.Errorf("round trip of %+v = %+v", c, got)
		}
	}
}

func TestConfirmKeyboardTags(t *testing.T) {
	kb := ConfirmKeyboard(StepBoxCode)
	if len(kb) != 1 || len(kb[0]) != 2 {
		t.Fatalf("expected one row of two buttons, got %v", kb)
	}
	if kb[0][0].Data != "CONFIRMAR_CODIGO_CAJA" {
		t.Errorf("unexpected confirm tag %q", kb[0][0].Data)
	}
	if kb[0][1].Data != "CORREGIR_CODIGO_CAJA" {
		t.Errorf("unexpected correct tag %q", kb[0][1].Data)
	}
}
