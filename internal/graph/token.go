// Package graph talks to the Microsoft Graph drive and workbook APIs on
// behalf of a single delegated account.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/oauth2"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

const defaultScope = "offline_access Files.ReadWrite"

// TokenConfig describes the delegated-account credentials.
type TokenConfig struct {
	TenantID  string
	ClientID  string
	TokenFile string // JSON-serialized oauth2.Token, must already exist
	Scope     string
}

// NewTokenSource loads the persisted token and returns a source that refreshes
// it as needed, writing refreshed tokens back to the file. A missing token
// file is a startup failure: the refresh token can only be minted by the
// interactive consent flow, which this service does not run.
func NewTokenSource(ctx context.Context, cfg TokenConfig) (oauth2.TokenSource, error) {
	if cfg.TenantID == "" || cfg.ClientID == "" {
		return nil, &models.ConfigurationError{Component: "graph", Reason: "tenant id and client id are required"}
	}
	tok, err := readToken(cfg.TokenFile)
	if err != nil {
		return nil, &models.ConfigurationError{
			Component: "graph",
			Reason:    fmt.Sprintf("cannot load token file %s: %v", cfg.TokenFile, err),
		}
	}

	scope := cfg.Scope
	if scope == "" {
		scope = defaultScope
	}
	conf := &oauth2.Config{
		ClientID: cfg.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/authorize", cfg.TenantID),
			TokenURL: fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
		},
		Scopes: []string{scope},
	}

	return &persistingSource{
		inner: oauth2.ReuseTokenSource(tok, conf.TokenSource(ctx, tok)),
		file:  cfg.TokenFile,
		last:  tok.AccessToken,
	}, nil
}

// persistingSource writes refreshed tokens back to disk so the refresh token
// rotation survives restarts.
type persistingSource struct {
	inner oauth2.TokenSource
	file  string

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.inner.Token()
	if err != nil {
		return nil, &models.UpstreamError{Service: "graph", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := writeToken(s.file, tok); err != nil {
			slog.Error("Graph.Token: failed to persist refreshed token", "error", err, "file", s.file)
		}
	}
	return tok, nil
}

func readToken(file string) (*oauth2.Token, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("malformed token file: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("token file has no refresh token")
	}
	return &tok, nil
}

func writeToken(file string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0600)
}
