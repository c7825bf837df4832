package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/swayamn72/aegis-sub001/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// resultEditInput - одна правка результата команды. clear_position сбрасывает место в "не определено".
type resultEditInput struct {
	TeamID        int  `json:"team_id"`
	FinalPosition *int `json:"final_position,omitempty"`
	ClearPosition bool `json:"clear_position,omitempty"`
	Kills         *int `json:"kills,omitempty"`
}

type recordResultsInput struct {
	Results []resultEditInput `json:"results"`
}

func (in recordResultsInput) toEdits(matchID int) (services.ResultEdits, error) {
	if len(in.Results) == 0 {
		return nil, errors.New("results must not be empty")
	}
	edits := make(services.ResultEdits)
	for i, res := range in.Results {
		if res.TeamID <= 0 {
			return nil, fmt.Errorf("results[%d]: team_id must be positive", i)
		}
		if res.FinalPosition != nil && res.ClearPosition {
			return nil, fmt.Errorf("results[%d]: final_position and clear_position are mutually exclusive", i)
		}
		if res.FinalPosition == nil && !res.ClearPosition && res.Kills == nil {
			return nil, fmt.Errorf("results[%d]: nothing to change for team %d", i, res.TeamID)
		}
		switch {
		case res.FinalPosition != nil:
			edits.SetPosition(matchID, res.TeamID, res.FinalPosition)
		case res.ClearPosition:
			edits.SetPosition(matchID, res.TeamID, nil)
		}
		if res.Kills != nil {
			edits.SetKills(matchID, res.TeamID, *res.Kills)
		}
	}
	return edits, nil
}

// ListMatches godoc
// @Summary Матчи турнира
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param phase query string false "Имя фазы"
// @Success 200 {array} models.Match
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/matches [get]
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	phase := strings.TrimSpace(r.URL.Query().Get("phase"))

	matches, err := h.matchService.ListMatches(r.Context(), tournamentID, phase)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResults godoc
// @Summary Ввести результаты матча
// @Tags matches
// @Description Частичное обновление мест и киллов. Очки пересчитываются, таблицы инвалидируются.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body recordResultsInput true "Правки результатов"
// @Success 200 {object} models.Match
// @Failure 400 {object} map[string]string "Некорректные правки"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Фаза завершена или матч отменен"
// @Failure 422 {object} map[string]string "Команда не в матче / дубль места"
// @Security BearerAuth
// @Router /matches/{matchID}/results [patch]
func (h *MatchHandler) RecordResults(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input recordResultsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	edits, err := input.toEdits(matchID)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.RecordResults(r.Context(), matchID, edits)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
