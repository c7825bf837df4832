package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/swayamn72/aegis-sub001/export"
	"github.com/swayamn72/aegis-sub001/standings"
	"github.com/swayamn72/aegis-sub001/storage"
)

type ExportFile struct {
	FileName    string
	ContentType string
	Revision    int64
	Content     []byte
}

type PublishedExport struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Format   string `json:"format"`
	Revision int64  `json:"revision"`
}

type ExportService interface {
	Render(ctx context.Context, tournamentID int, scope standings.Scope, format export.Format) (*ExportFile, error)
	// Publish renders the table and uploads it to object storage, replacing the previous upload of the same scope.
	Publish(ctx context.Context, tournamentID int, scope standings.Scope, format export.Format) (*PublishedExport, error)
}

type publishedKey struct {
	tournamentID int
	scope        standings.Scope
	format       export.Format
}

type exportService struct {
	standings StandingsService
	uploader  storage.FileUploader
	logger    *slog.Logger

	mu        sync.Mutex
	published map[publishedKey]string
}

// NewExportService создаёт сервис экспорта. uploader может быть nil, тогда Publish недоступен.
func NewExportService(standingsService StandingsService, uploader storage.FileUploader, logger *slog.Logger) ExportService {
	return &exportService{
		standings: standingsService,
		uploader:  uploader,
		logger:    logger,
		published: make(map[publishedKey]string),
	}
}

func (s *exportService) Render(ctx context.Context, tournamentID int, scope standings.Scope, format export.Format) (*ExportFile, error) {
	view, err := s.standings.GetStandings(ctx, tournamentID, scope)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case export.FormatCSV:
		err = export.WriteCSV(&buf, view.Label, view.Rows)
	case export.FormatPNG:
		err = export.RenderPNG(&buf, view.Label, view.Rows)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExportFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	return &ExportFile{
		FileName:    storage.Slug(view.Label) + format.Extension(),
		ContentType: format.ContentType(),
		Revision:    view.Revision,
		Content:     buf.Bytes(),
	}, nil
}

func (s *exportService) Publish(ctx context.Context, tournamentID int, scope standings.Scope, format export.Format) (*PublishedExport, error) {
	if s.uploader == nil {
		return nil, ErrExportStorageDisabled
	}
	file, err := s.Render(ctx, tournamentID, scope, format)
	if err != nil {
		return nil, err
	}

	key := storage.StandingsExportKey(tournamentID, scope.Label(), file.Revision, format.Extension())
	uploaded, err := s.uploader.Upload(ctx, key, file.ContentType, bytes.NewReader(file.Content), storage.UploadOptions{
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", file.FileName),
		CacheControl:       "public, max-age=31536000, immutable",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	s.replacePrevious(ctx, publishedKey{tournamentID: tournamentID, scope: scope, format: format}, uploaded.Key)

	s.logger.InfoContext(ctx, "Standings export published",
		slog.Int("tournament_id", tournamentID),
		slog.String("scope", scope.String()),
		slog.String("key", uploaded.Key))
	return &PublishedExport{
		URL:      uploaded.Location,
		Key:      uploaded.Key,
		Format:   string(format),
		Revision: file.Revision,
	}, nil
}

// replacePrevious remembers the new key and deletes the object of an older revision.
func (s *exportService) replacePrevious(ctx context.Context, pk publishedKey, newKey string) {
	s.mu.Lock()
	old := s.published[pk]
	s.published[pk] = newKey
	s.mu.Unlock()

	if old == "" || old == newKey {
		return
	}
	if err := s.uploader.Delete(ctx, old); err != nil {
		s.logger.WarnContext(ctx, "Failed to delete stale export", slog.String("key", old), slog.Any("error", err))
	}
}
