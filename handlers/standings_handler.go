package handlers

import (
	"net/http"

	"github.com/swayamn72/aegis-sub001/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(ss services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: ss}
}

// GetStandings godoc
// @Summary Турнирная таблица
// @Tags standings
// @Description Итоговая таблица турнира, таблица фазы или группы. Источник: final, cache или live.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param phase query string false "Имя фазы"
// @Param group query string false "Имя группы или overall"
// @Success 200 {object} services.StandingsView
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/standings [get]
func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	scope, err := scopeFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.standingsService.GetStandings(r.Context(), tournamentID, scope)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SnapshotGroupStandings godoc
// @Summary Сохранить снимок таблиц групп фазы
// @Tags standings
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param phaseName path string true "Имя фазы"
// @Success 200 {object} services.SnapshotResult
// @Failure 404 {object} map[string]string "Турнир или фаза не найдены"
// @Failure 409 {object} map[string]string "Фаза отменена или уже завершена"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/phases/{phaseName}/standings/snapshot [post]
func (h *StandingsHandler) SnapshotGroupStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	phaseName, err := getNameFromURL(r, "phaseName")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.standingsService.SnapshotGroupStandings(r.Context(), tournamentID, phaseName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"snapshot": res}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeTournament godoc
// @Summary Зафиксировать итоговую таблицу турнира
// @Tags standings
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.FinalizeResult
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 422 {object} map[string]string "Нечего фиксировать"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/finalize [post]
func (h *StandingsHandler) FinalizeTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.standingsService.FinalizeTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"final": res}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
