package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/swayamn72/aegis-sub001/services"
	"github.com/swayamn72/aegis-sub001/standings"
)

type jsonResponse map[string]interface{}

const maxBodyBytes = 1_048_576 // 1MB

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBodyBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "Error writing error JSON response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unprocessableResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, message)
}

func serviceUnavailableResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusServiceUnavailable, message)
}

// advancementStatus - HTTP-статус для каждой причины отказа продвижения.
var advancementStatus = map[services.AdvancementReason]int{
	services.ReasonTournamentNotFound:   http.StatusNotFound,
	services.ReasonPhaseNotFound:        http.StatusNotFound,
	services.ReasonPhaseCompleted:       http.StatusConflict,
	services.ReasonPhaseCancelled:       http.StatusConflict,
	services.ReasonNextPhaseClosed:      http.StatusConflict,
	services.ReasonNoQualificationRules: http.StatusUnprocessableEntity,
	services.ReasonNextPhaseNotFound:    http.StatusUnprocessableEntity,
	services.ReasonInvalidRule:          http.StatusUnprocessableEntity,
	services.ReasonNoTeamsToAdvance:     http.StatusUnprocessableEntity,
}

func advancementErrorResponse(w http.ResponseWriter, r *http.Request, advErr *services.AdvancementError) {
	status, ok := advancementStatus[advErr.Reason]
	if !ok {
		status = http.StatusInternalServerError
		slog.ErrorContext(r.Context(), "Advancement failed", slog.String("path", r.URL.Path), slog.Any("error", advErr))
	}
	errorResponse(w, r, status, jsonResponse{"reason": advErr.Reason, "message": advErr.Message})
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var advErr *services.AdvancementError
	if errors.As(err, &advErr) {
		advancementErrorResponse(w, r, advErr)
		return
	}

	switch {
	case errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrPhaseNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrNotFound):
		notFoundResponse(w, r, err.Error())

	// Невалидный ввод
	case errors.Is(err, services.ErrNoResultEdits),
		errors.Is(err, services.ErrInvalidResultEdit),
		errors.Is(err, services.ErrUnsupportedExportFormat):
		badRequestResponse(w, r, err)

	// Нарушение бизнес-правил
	case errors.Is(err, services.ErrTeamNotInMatch),
		errors.Is(err, services.ErrDuplicatePosition),
		errors.Is(err, services.ErrResultTeamInvalid),
		errors.Is(err, services.ErrNothingToFinalize):
		unprocessableResponse(w, r, err.Error())

	case errors.Is(err, services.ErrPhaseResultsLocked),
		errors.Is(err, services.ErrMatchCancelled),
		errors.Is(err, services.ErrSnapshotPhaseClosed),
		errors.Is(err, services.ErrSnapshotPhaseCompleted):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrExportStorageDisabled):
		serviceUnavailableResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}
	return id, nil
}

// getNameFromURL returns a decoded path segment, phase names may contain spaces.
func getNameFromURL(r *http.Request, paramName string) (string, error) {
	raw := chi.URLParam(r, paramName)
	name, err := url.PathUnescape(raw)
	if err != nil {
		name = raw
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("missing %s in URL path", paramName)
	}
	return name, nil
}

// scopeFromQuery читает ?phase=&group=. Без фазы - таблица всего турнира, группа без фазы - ошибка.
func scopeFromQuery(r *http.Request) (standings.Scope, error) {
	q := r.URL.Query()
	phase := strings.TrimSpace(q.Get("phase"))
	group := strings.TrimSpace(q.Get("group"))

	if phase == "" {
		if group != "" {
			return standings.Scope{}, errors.New("group filter requires a phase")
		}
		return standings.TournamentWide(), nil
	}
	return standings.PhaseScope(phase, standings.ParseGroupScope(group)), nil
}
