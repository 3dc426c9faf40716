// Package drive stores report photos in a shared Google Drive folder and
// hands back public view links.
package drive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

const folderMIME = "application/vnd.google-apps.folder"

// Store uploads photos into one Drive folder.
type Store struct {
	svc      *driveapi.Service
	folderID string
}

// NewStore builds a store authenticated with a service-account key file. The
// folder argument may be a folder identifier or a folder name; a named folder
// that does not exist yet is created.
func NewStore(ctx context.Context, credentialsFile, folder string) (*Store, error) {
	if folder == "" {
		return nil, &models.ConfigurationError{Component: "drive", Reason: "images folder is required"}
	}
	svc, err := driveapi.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	s := &Store{svc: svc}
	s.folderID, err = s.ensureFolder(ctx, folder)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ensureFolder resolves the target folder: first as an identifier, then by
// name, creating it when neither matches.
func (s *Store) ensureFolder(ctx context.Context, folder string) (string, error) {
	if f, err := s.svc.Files.Get(folder).Fields("id", "mimeType").Context(ctx).Do(); err == nil && f.MimeType == folderMIME {
		return f.Id, nil
	}

	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", folder, folderMIME)
	list, err := s.svc.Files.List().Q(query).Fields("files(id)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", &models.UpstreamError{Service: "drive", Err: err}
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	created, err := s.svc.Files.Create(&driveapi.File{Name: folder, MimeType: folderMIME}).
		Fields("id").Context(ctx).Do()
	if err != nil {
		return "", &models.UpstreamError{Service: "drive", Err: err}
	}
	slog.Info("Drive.ensureFolder: created images folder", "name", folder, "id", created.Id)
	return created.Id, nil
}

// Upload stores one photo in the folder, makes it readable by anyone with the
// link, and returns the view link.
func (s *Store) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	meta := &driveapi.File{Name: filename, Parents: []string{s.folderID}}
	created, err := s.svc.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id", "webViewLink").
		Context(ctx).Do()
	if err != nil {
		return "", &models.UpstreamError{Service: "drive", Err: err}
	}

	perm := &driveapi.Permission{Type: "anyone", Role: "reader"}
	if _, err := s.svc.Permissions.Create(created.Id, perm).Context(ctx).Do(); err != nil {
		// The file is stored; a private link is better than losing the photo.
		slog.Error("Drive.Upload: failed to set public permission", "error", err, "fileID", created.Id)
	}
	if created.WebViewLink != "" {
		return created.WebViewLink, nil
	}
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id), nil
}
