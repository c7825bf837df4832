package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swayamn72/aegis-sub001/export"
	"github.com/swayamn72/aegis-sub001/standings"
	"github.com/swayamn72/aegis-sub001/storage"
)

type mockUploader struct {
	objects     map[string][]byte
	options     map[string]storage.UploadOptions
	deleted     []string
	UploadError error
}

func newMockUploader() *mockUploader {
	return &mockUploader{objects: map[string][]byte{}, options: map[string]storage.UploadOptions{}}
}

func (u *mockUploader) Upload(_ context.Context, key, _ string, r io.Reader, opts storage.UploadOptions) (*storage.UploadResult, error) {
	if u.UploadError != nil {
		return nil, u.UploadError
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.objects[key] = data
	u.options[key] = opts
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *mockUploader) Delete(_ context.Context, key string) error {
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *mockUploader) GetPublicURL(key string) string {
	return storage.PublicURL("https://cdn.example.com", key)
}

func TestExportRender_CSV(t *testing.T) {
	set := newServiceSet()
	svc := NewExportService(set.standings, nil, discardLogger())

	file, err := svc.Render(context.Background(), cupID, standings.PhaseScope("Groups", standings.Named("Group A")), export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "groups-group-a.csv", file.FileName)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	r := csv.NewReader(bytes.NewReader(file.Content))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "Groups - Group A", records[0][0])
	assert.Equal(t, []string{"1", "Team A", "1", "1", "10", "6", "16"}, records[2])
}

func TestExportRender_PNG(t *testing.T) {
	set := newServiceSet()
	svc := NewExportService(set.standings, nil, discardLogger())

	file, err := svc.Render(context.Background(), cupID, standings.TournamentWide(), export.FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, "overall-standings.png", file.FileName)
	_, err = png.Decode(bytes.NewReader(file.Content))
	assert.NoError(t, err)

	_, err = svc.Render(context.Background(), cupID, standings.TournamentWide(), export.Format("xlsx"))
	assert.ErrorIs(t, err, ErrUnsupportedExportFormat)
}

func TestExportPublish(t *testing.T) {
	set := newServiceSet()
	uploader := newMockUploader()
	svc := NewExportService(set.standings, uploader, discardLogger())
	ctx := context.Background()
	scope := standings.PhaseScope("Groups", standings.Overall())

	first, err := svc.Publish(ctx, cupID, scope, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "exports/tournaments/5/groups-r1.csv", first.Key)
	assert.Equal(t, "https://cdn.example.com/exports/tournaments/5/groups-r1.csv", first.URL)
	assert.Contains(t, uploader.options[first.Key].ContentDisposition, "groups.csv")

	set.store.state.Tournaments[cupID].ResultsRevision = 7
	second, err := svc.Publish(ctx, cupID, scope, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, int64(7), second.Revision)
	assert.Equal(t, []string{first.Key}, uploader.deleted)
	assert.Len(t, uploader.objects, 1)
}

func TestExportPublish_Errors(t *testing.T) {
	set := newServiceSet()
	_, err := NewExportService(set.standings, nil, discardLogger()).Publish(context.Background(), cupID, standings.TournamentWide(), export.FormatCSV)
	assert.ErrorIs(t, err, ErrExportStorageDisabled)

	uploader := newMockUploader()
	uploader.UploadError = errors.New("bucket gone")
	_, err = NewExportService(set.standings, uploader, discardLogger()).Publish(context.Background(), cupID, standings.TournamentWide(), export.FormatCSV)
	assert.ErrorIs(t, err, uploader.UploadError)

	_, err = NewExportService(set.standings, newMockUploader(), discardLogger()).Publish(context.Background(), 404, standings.TournamentWide(), export.FormatCSV)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
