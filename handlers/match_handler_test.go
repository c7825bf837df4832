package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swayamn72/aegis-sub001/models"
	"github.com/swayamn72/aegis-sub001/services"
)

const resultsPattern = "/matches/{matchID}/results"

func intPtr(v int) *int { return &v }

func TestListMatches(t *testing.T) {
	var gotPhase string
	svc := &mockMatchService{ListFn: func(_ context.Context, id int, phase string) ([]models.Match, error) {
		gotPhase = phase
		return []models.Match{{ID: 900, TournamentID: id, TournamentPhase: "Groups", Status: models.MatchStatusCompleted}}, nil
	}}

	rec := serve(http.MethodGet, "/tournaments/{tournamentID}/matches", "/tournaments/5/matches?phase=Groups", NewMatchHandler(svc).ListMatches, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Groups", gotPhase)
	var matches []models.Match
	require.NoError(t, json.Unmarshal(decodeBody(t, rec.Body.Bytes())["matches"], &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, 900, matches[0].ID)
}

func TestRecordResults_BuildsEdits(t *testing.T) {
	var got services.ResultEdits
	svc := &mockMatchService{RecordFn: func(_ context.Context, id int, edits services.ResultEdits) (*models.Match, error) {
		got = edits
		return &models.Match{ID: id, Status: models.MatchStatusInProgress}, nil
	}}
	body := `{"results":[
		{"team_id": 1, "final_position": 2, "kills": 4},
		{"team_id": 2, "clear_position": true},
		{"team_id": 3, "kills": 0}
	]}`

	rec := serve(http.MethodPatch, resultsPattern, "/matches/901/results", NewMatchHandler(svc).RecordResults, strings.NewReader(body))

	require.Equal(t, http.StatusOK, rec.Code)
	want := services.ResultEdits{}
	want.SetPosition(901, 1, intPtr(2))
	want.SetKills(901, 1, 4)
	want.SetPosition(901, 2, nil)
	want.SetKills(901, 3, 0)
	assert.Equal(t, want, got)

	var match models.Match
	require.NoError(t, json.Unmarshal(decodeBody(t, rec.Body.Bytes())["match"], &match))
	assert.Equal(t, models.MatchStatusInProgress, match.Status)
}

func TestRecordResults_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"malformed", `{"results": [`},
		{"unknown key", `{"results": [], "extra": 1}`},
		{"no results", `{"results": []}`},
		{"missing team", `{"results": [{"kills": 2}]}`},
		{"nothing to change", `{"results": [{"team_id": 1}]}`},
		{"position and clear", `{"results": [{"team_id": 1, "final_position": 1, "clear_position": true}]}`},
		{"wrong type", `{"results": [{"team_id": "one", "kills": 1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockMatchService{RecordFn: func(context.Context, int, services.ResultEdits) (*models.Match, error) {
				t.Fatal("service must not be called")
				return nil, nil
			}}
			rec := serve(http.MethodPatch, resultsPattern, "/matches/901/results", NewMatchHandler(svc).RecordResults, strings.NewReader(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRecordResults_ServiceErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrMatchNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: kills must not be negative", services.ErrInvalidResultEdit), http.StatusBadRequest},
		{fmt.Errorf("%w: position 1", services.ErrDuplicatePosition), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: team 42", services.ErrTeamNotInMatch), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: phase Groups", services.ErrPhaseResultsLocked), http.StatusConflict},
		{services.ErrMatchCancelled, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := &mockMatchService{RecordFn: func(context.Context, int, services.ResultEdits) (*models.Match, error) {
				return nil, tt.err
			}}
			rec := serve(http.MethodPatch, resultsPattern, "/matches/901/results", NewMatchHandler(svc).RecordResults,
				strings.NewReader(`{"results": [{"team_id": 1, "kills": 1}]}`))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
