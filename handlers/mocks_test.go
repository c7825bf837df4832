package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/swayamn72/aegis-sub001/export"
	"github.com/swayamn72/aegis-sub001/models"
	"github.com/swayamn72/aegis-sub001/services"
	"github.com/swayamn72/aegis-sub001/standings"
)

type mockStandingsService struct {
	GetFn      func(ctx context.Context, tournamentID int, scope standings.Scope) (*services.StandingsView, error)
	SnapshotFn func(ctx context.Context, tournamentID int, phaseName string) (*services.SnapshotResult, error)
	FinalizeFn func(ctx context.Context, tournamentID int) (*services.FinalizeResult, error)
}

func (m *mockStandingsService) GetStandings(ctx context.Context, tournamentID int, scope standings.Scope) (*services.StandingsView, error) {
	return m.GetFn(ctx, tournamentID, scope)
}

func (m *mockStandingsService) SnapshotGroupStandings(ctx context.Context, tournamentID int, phaseName string) (*services.SnapshotResult, error) {
	return m.SnapshotFn(ctx, tournamentID, phaseName)
}

func (m *mockStandingsService) FinalizeTournament(ctx context.Context, tournamentID int) (*services.FinalizeResult, error) {
	return m.FinalizeFn(ctx, tournamentID)
}

func (m *mockStandingsService) Invalidate(int) {}

type mockAdvancementService struct {
	PreviewFn func(ctx context.Context, tournamentID int, phaseName string) (*standings.Preview, error)
	AdvanceFn func(ctx context.Context, tournamentID int, phaseName string) (*services.AdvancementResult, error)
}

func (m *mockAdvancementService) PreviewAdvancement(ctx context.Context, tournamentID int, phaseName string) (*standings.Preview, error) {
	return m.PreviewFn(ctx, tournamentID, phaseName)
}

func (m *mockAdvancementService) AdvancePhase(ctx context.Context, tournamentID int, phaseName string) (*services.AdvancementResult, error) {
	return m.AdvanceFn(ctx, tournamentID, phaseName)
}

type mockMatchService struct {
	ListFn   func(ctx context.Context, tournamentID int, phaseName string) ([]models.Match, error)
	RecordFn func(ctx context.Context, matchID int, edits services.ResultEdits) (*models.Match, error)
}

func (m *mockMatchService) ListMatches(ctx context.Context, tournamentID int, phaseName string) ([]models.Match, error) {
	return m.ListFn(ctx, tournamentID, phaseName)
}

func (m *mockMatchService) RecordResults(ctx context.Context, matchID int, edits services.ResultEdits) (*models.Match, error) {
	return m.RecordFn(ctx, matchID, edits)
}

type mockExportService struct {
	RenderFn  func(ctx context.Context, tournamentID int, scope standings.Scope, format export.Format) (*services.ExportFile, error)
	PublishFn func(ctx context.Context, tournamentID int, scope standings.Scope, format export.Format) (*services.PublishedExport, error)
}

func (m *mockExportService) Render(ctx context.Context, tournamentID int, scope standings.Scope, format export.Format) (*services.ExportFile, error) {
	return m.RenderFn(ctx, tournamentID, scope, format)
}

func (m *mockExportService) Publish(ctx context.Context, tournamentID int, scope standings.Scope, format export.Format) (*services.PublishedExport, error) {
	return m.PublishFn(ctx, tournamentID, scope, format)
}

// serve routes a single request through chi so URL params resolve like in production.
func serve(method, pattern, target string, h http.HandlerFunc, body io.Reader) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Method(method, pattern, h)
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
