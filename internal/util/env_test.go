package util

import (
	"testing"
	"time"
)

func TestParseBoolEnv(t *testing.T) {
	cases := map[string]bool{
		"true": true, "1": true, "YES": true, "on": true,
		"false": false, "0": false, "No": false, "off": false,
		"maybe": false, // invalid falls back to default
	}
	for val, want := range cases {
		t.Setenv("TEST_BOOL", val)
		if got := ParseBoolEnv("TEST_BOOL", false); got != want {
			t.Errorf("ParseBoolEnv(%q) = %v, want %v", val, got, want)
		}
	}
	if !ParseBoolEnv("TEST_BOOL_UNSET", true) {
		t.Errorf("unset variable should use the default")
	}
}

func TestParseInt64ListEnv(t *testing.T) {
	t.Setenv("TEST_IDS", "-100123, 456,, garbage ,789")
	got := ParseInt64ListEnv("TEST_IDS")
	want := []int64{-100123, 456, 789}
	if len(got) != len(want) {
		t.Fatalf("ParseInt64ListEnv = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %d, want %d", i, got[i], want[i])
		}
	}
	if ParseInt64ListEnv("TEST_IDS_UNSET") != nil {
		t.Errorf("unset variable should yield nil")
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("TEST_DUR", "90s")
	if got := ParseDurationEnv("TEST_DUR", time.Minute); got != 90*time.Second {
		t.Errorf("ParseDurationEnv = %s, want 90s", got)
	}
	t.Setenv("TEST_DUR", "soon")
	if got := ParseDurationEnv("TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("invalid duration should use the default, got %s", got)
	}
}
