package handlers

import (
	"net/http"

	"github.com/swayamn72/aegis-sub001/services"
)

type AdvancementHandler struct {
	advancementService services.AdvancementService
}

func NewAdvancementHandler(as services.AdvancementService) *AdvancementHandler {
	return &AdvancementHandler{advancementService: as}
}

// PreviewAdvancement godoc
// @Summary Предпросмотр продвижения команд
// @Tags advancement
// @Description Какие команды прошли бы в следующие фазы по текущей таблице. Ничего не меняет.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param phaseName path string true "Имя фазы"
// @Success 200 {object} standings.Preview
// @Failure 404 {object} map[string]string "Турнир или фаза не найдены"
// @Failure 409 {object} map[string]interface{} "reason: phase_already_completed"
// @Router /tournaments/{tournamentID}/phases/{phaseName}/advancement [get]
func (h *AdvancementHandler) PreviewAdvancement(w http.ResponseWriter, r *http.Request) {
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

	preview, err := h.advancementService.PreviewAdvancement(r.Context(), tournamentID, phaseName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"preview": preview}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvancePhase godoc
// @Summary Завершить фазу и продвинуть команды
// @Tags advancement
// @Description Атомарно: команды добавляются в следующие фазы, фаза помечается completed.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param phaseName path string true "Имя фазы"
// @Success 200 {object} services.AdvancementResult
// @Failure 404 {object} map[string]interface{} "reason: tournament_not_found / phase_not_found"
// @Failure 409 {object} map[string]interface{} "reason: phase_already_completed / phase_cancelled / next_phase_closed"
// @Failure 422 {object} map[string]interface{} "reason: no_qualification_rules / invalid_qualification_rule / next_phase_not_found / no_teams_to_advance"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/phases/{phaseName}/advance [post]
func (h *AdvancementHandler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.advancementService.AdvancePhase(r.Context(), tournamentID, phaseName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"advancement": res}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
