package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/oauth2"
)

func TestTokenFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "token.json")

	tok := &oauth2.Token{AccessToken: "at-1", RefreshToken: "rt-1", TokenType: "Bearer"}
	if err := writeToken(file, tok); err != nil {
		t.Fatalf("writeToken failed: %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("token file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file should be private, got %v", info.Mode().Perm())
	}

	got, err := readToken(file)
	if err != nil {
		t.Fatalf("readToken failed: %v", err)
	}
	if got.AccessToken != "at-1" || got.RefreshToken != "rt-1" {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestReadTokenRejectsMissingRefreshToken(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "token.json")
	if err := os.WriteFile(file, []byte(`{"access_token": "at-only"}`), 0600); err != nil {
		t.Fatalf("failed to seed token file: %v", err)
	}
	if _, err := readToken(file); err == nil {
		t.Errorf("a token without refresh token should be rejected")
	}
}

func TestNewTokenSourceRequiresTokenFile(t *testing.T) {
	_, err := NewTokenSource(context.Background(), TokenConfig{
		TenantID:  "tenant",
		ClientID:  "client",
		TokenFile: filepath.Join(t.TempDir(), "absent.json"),
	})
	if err == nil {
		t.Errorf("a missing token file must fail startup")
	}
}

func TestColumnName(t *testing.T) {
	cases := map[int]string{1: "A", 19: "S", 26: "Z", 27: "AA", 52: "AZ"}
	for n, want := range cases {
		if got := columnName(n); got != want {
			t.Errorf("columnName(%d) = %q, want %q", n, got, want)
		}
	}
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test"})
	return NewClient(context.Background(), ts, WithBaseURL(srv.URL))
}

func TestWorkbookEnsureHeadersSkipsExisting(t *testing.T) {
	var patched bool
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `{"values": [["USER_ID", "FECHA"]]}`)
		case http.MethodPatch:
			patched = true
			fmt.Fprint(w, `{}`)
		}
	}))

	b := &WorkbookBackend{client: client, path: "reports.xlsx", sheetName: "Hoja1", itemID: "item-1"}
	if err := b.EnsureHeaders(context.Background(), []string{"USER_ID", "FECHA"}); err != nil {
		t.Fatalf("EnsureHeaders failed: %v", err)
	}
	if patched {
		t.Errorf("an existing header row must not be rewritten")
	}
}

func TestWorkbookAppendRowSkipsDuplicate(t *testing.T) {
	var patched bool
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			body := map[string]interface{}{
				"rowCount": 2,
				"values": [][]interface{}{
					{"USER_ID", "FECHA"},
					{"55", "2026-03-15"},
				},
			}
			json.NewEncoder(w).Encode(body)
		case http.MethodPatch:
			patched = true
			fmt.Fprint(w, `{}`)
		}
	}))

	b := &WorkbookBackend{client: client, path: "reports.xlsx", sheetName: "Hoja1", itemID: "item-1"}
	if err := b.AppendRow(context.Background(), []string{"55", "2026-03-15"}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}
	if patched {
		t.Errorf("a repeat of the last row must be suppressed")
	}

	if err := b.AppendRow(context.Background(), []string{"56", "2026-03-16"}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}
	if !patched {
		t.Errorf("a new row should be written")
	}
}
