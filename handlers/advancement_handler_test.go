package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swayamn72/aegis-sub001/models"
	"github.com/swayamn72/aegis-sub001/services"
	"github.com/swayamn72/aegis-sub001/standings"
)

const advancePattern = "/tournaments/{tournamentID}/phases/{phaseName}/advance"

func TestPreviewAdvancement(t *testing.T) {
	var gotPhase string
	svc := &mockAdvancementService{PreviewFn: func(_ context.Context, _ int, phase string) (*standings.Preview, error) {
		gotPhase = phase
		return &standings.Preview{
			Phase:          phase,
			TeamsToAdvance: []models.StandingsRow{{TeamID: 1}, {TeamID: 2}},
			Assignments:    []standings.Assignment{{TeamID: 1, NextPhaseID: 51, NextPhaseName: "Finals"}},
		}, nil
	}}
	h := NewAdvancementHandler(svc)

	rec := serve(http.MethodGet, "/tournaments/{tournamentID}/phases/{phaseName}/advancement",
		"/tournaments/5/phases/Group%20Stage/advancement", h.PreviewAdvancement, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Group Stage", gotPhase)
	var preview standings.Preview
	require.NoError(t, json.Unmarshal(decodeBody(t, rec.Body.Bytes())["preview"], &preview))
	assert.Len(t, preview.TeamsToAdvance, 2)
	assert.Equal(t, "Finals", preview.Assignments[0].NextPhaseName)
}

func TestPreviewAdvancement_CompletedPhase(t *testing.T) {
	svc := &mockAdvancementService{PreviewFn: func(context.Context, int, string) (*standings.Preview, error) {
		return nil, &services.AdvancementError{Reason: services.ReasonPhaseCompleted, Message: "phase \"Groups\" is already completed"}
	}}

	rec := serve(http.MethodGet, "/tournaments/{tournamentID}/phases/{phaseName}/advancement",
		"/tournaments/5/phases/Groups/advancement", NewAdvancementHandler(svc).PreviewAdvancement, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), string(services.ReasonPhaseCompleted))
}

func TestAdvancePhase_Success(t *testing.T) {
	svc := &mockAdvancementService{AdvanceFn: func(_ context.Context, _ int, phase string) (*services.AdvancementResult, error) {
		return &services.AdvancementResult{TeamsAdvanced: 3, Revision: 2, Preview: standings.Preview{Phase: phase}}, nil
	}}

	rec := serve(http.MethodPost, advancePattern, "/tournaments/5/phases/Groups/advance", NewAdvancementHandler(svc).AdvancePhase, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var res services.AdvancementResult
	require.NoError(t, json.Unmarshal(decodeBody(t, rec.Body.Bytes())["advancement"], &res))
	assert.Equal(t, 3, res.TeamsAdvanced)
	assert.Equal(t, "Groups", res.Preview.Phase)
}

func TestAdvancePhase_StructuredFailures(t *testing.T) {
	tests := []struct {
		reason services.AdvancementReason
		status int
	}{
		{services.ReasonNoQualificationRules, http.StatusUnprocessableEntity},
		{services.ReasonNextPhaseNotFound, http.StatusUnprocessableEntity},
		{services.ReasonInvalidRule, http.StatusUnprocessableEntity},
		{services.ReasonNextPhaseClosed, http.StatusConflict},
		{services.ReasonNoTeamsToAdvance, http.StatusUnprocessableEntity},
		{services.ReasonPhaseCompleted, http.StatusConflict},
		{services.ReasonPhaseCancelled, http.StatusConflict},
		{services.ReasonPhaseNotFound, http.StatusNotFound},
		{services.ReasonTournamentNotFound, http.StatusNotFound},
		{services.ReasonInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			svc := &mockAdvancementService{AdvanceFn: func(context.Context, int, string) (*services.AdvancementResult, error) {
				// обернутая ошибка тоже должна распознаваться
				return nil, fmt.Errorf("advance: %w", &services.AdvancementError{Reason: tt.reason, Message: "phase Groups: " + string(tt.reason)})
			}}

			rec := serve(http.MethodPost, advancePattern, "/tournaments/5/phases/Groups/advance", NewAdvancementHandler(svc).AdvancePhase, nil)

			assert.Equal(t, tt.status, rec.Code)
			var body struct {
				Error struct {
					Reason  string `json:"reason"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(tt.reason), body.Error.Reason)
			assert.Contains(t, body.Error.Message, "phase Groups")
		})
	}
}

func TestAdvancePhase_BadPath(t *testing.T) {
	svc := &mockAdvancementService{AdvanceFn: func(context.Context, int, string) (*services.AdvancementResult, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	h := NewAdvancementHandler(svc)

	rec := serve(http.MethodPost, advancePattern, "/tournaments/x/phases/Groups/advance", h.AdvancePhase, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(http.MethodPost, advancePattern, "/tournaments/5/phases/%20/advance", h.AdvancePhase, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
