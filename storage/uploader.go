package storage

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// UploadOptions - необязательные заголовки объекта.
type UploadOptions struct {
	ContentDisposition string
	CacheControl       string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader, opts UploadOptions) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a display label into a key-safe fragment.
func Slug(label string) string {
	s := slugUnsafe.ReplaceAllString(strings.ToLower(label), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "standings"
	}
	return s
}

// StandingsExportKey is the object key of an exported table. The revision keeps
// exports of different data versions apart.
func StandingsExportKey(tournamentID int, label string, revision int64, ext string) string {
	return fmt.Sprintf("exports/tournaments/%d/%s-r%d%s", tournamentID, Slug(label), revision, ext)
}
