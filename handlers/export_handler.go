package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/swayamn72/aegis-sub001/export"
	"github.com/swayamn72/aegis-sub001/services"
)

type ExportHandler struct {
	exportService services.ExportService
}

func NewExportHandler(es services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: es}
}

func formatFromQuery(r *http.Request) (export.Format, error) {
	raw := r.URL.Query().Get("format")
	format, ok := export.ParseFormat(raw)
	if !ok {
		return "", fmt.Errorf("unsupported format %q, expected csv or png", raw)
	}
	return format, nil
}

// DownloadStandings godoc
// @Summary Скачать таблицу (CSV или PNG)
// @Tags export
// @Produce text/csv
// @Produce image/png
// @Param tournamentID path int true "Tournament ID"
// @Param phase query string false "Имя фазы"
// @Param group query string false "Имя группы или overall"
// @Param format query string false "csv (по умолчанию) или png"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 429 {object} map[string]string "Слишком много запросов"
// @Router /tournaments/{tournamentID}/standings/export [get]
func (h *ExportHandler) DownloadStandings(w http.ResponseWriter, r *http.Request) {
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
	format, err := formatFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, err := h.exportService.Render(r.Context(), tournamentID, scope, format)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.Header().Set("X-Results-Revision", strconv.FormatInt(file.Revision, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}

// PublishStandings godoc
// @Summary Опубликовать таблицу в хранилище
// @Tags export
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param phase query string false "Имя фазы"
// @Param group query string false "Имя группы или overall"
// @Param format query string false "csv (по умолчанию) или png"
// @Success 201 {object} services.PublishedExport
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 503 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/standings/export [post]
func (h *ExportHandler) PublishStandings(w http.ResponseWriter, r *http.Request) {
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
	format, err := formatFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	published, err := h.exportService.Publish(r.Context(), tournamentID, scope, format)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"export": published}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
