package services

import (
	"errors"
	"fmt"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrPhaseNotFound      = errors.New("phase not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Ошибки ввода результатов
	ErrNoResultEdits       = errors.New("no result edits provided")
	ErrInvalidResultEdit   = errors.New("invalid result edit")
	ErrTeamNotInMatch      = errors.New("team does not participate in this match")
	ErrDuplicatePosition   = errors.New("two teams cannot share a finishing position")
	ErrPhaseResultsLocked  = errors.New("results of a completed phase cannot be changed")
	ErrMatchCancelled      = errors.New("results of a cancelled match cannot be changed")
	ErrResultTeamInvalid   = errors.New("result references an unknown team")
	ErrNothingToFinalize   = errors.New("tournament has no standings to finalize")
	ErrSnapshotPhaseClosed = errors.New("cannot snapshot standings of a cancelled phase")

	// итоги завершённой фазы - история, пересчитывать их нельзя
	ErrSnapshotPhaseCompleted = errors.New("cannot snapshot standings of a completed phase")

	// Экспорт
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
	ErrExportStorageDisabled   = errors.New("export storage is not configured")
)

// AdvancementReason - стабильный код причины отказа, его видит клиент.
type AdvancementReason string

const (
	ReasonNoQualificationRules AdvancementReason = "no_qualification_rules"
	ReasonNextPhaseNotFound    AdvancementReason = "next_phase_not_found"
	ReasonInvalidRule          AdvancementReason = "invalid_qualification_rule"
	ReasonNextPhaseClosed      AdvancementReason = "next_phase_closed"
	ReasonPhaseNotFound        AdvancementReason = "phase_not_found"
	ReasonPhaseCompleted       AdvancementReason = "phase_already_completed"
	ReasonPhaseCancelled       AdvancementReason = "phase_cancelled"
	ReasonNoTeamsToAdvance     AdvancementReason = "no_teams_to_advance"
	ReasonTournamentNotFound   AdvancementReason = "tournament_not_found"
	ReasonInternal             AdvancementReason = "internal"
)

var (
	ErrNoQualificationRules  = errors.New("no qualification rules configured")
	ErrNextPhaseNotFound     = errors.New("next phase not found")
	ErrInvalidRule           = errors.New("invalid qualification rule")
	ErrNextPhaseClosed       = errors.New("next phase is completed or cancelled")
	ErrPhaseAlreadyCompleted = errors.New("phase is already completed")
	ErrPhaseCancelled        = errors.New("phase is cancelled")
	ErrNoTeamsToAdvance      = errors.New("no teams to advance")
	ErrAdvancementFailed     = errors.New("phase advancement failed")
)

var reasonSentinels = map[AdvancementReason]error{
	ReasonNoQualificationRules: ErrNoQualificationRules,
	ReasonNextPhaseNotFound:    ErrNextPhaseNotFound,
	ReasonInvalidRule:          ErrInvalidRule,
	ReasonNextPhaseClosed:      ErrNextPhaseClosed,
	ReasonPhaseNotFound:        ErrPhaseNotFound,
	ReasonPhaseCompleted:       ErrPhaseAlreadyCompleted,
	ReasonPhaseCancelled:       ErrPhaseCancelled,
	ReasonNoTeamsToAdvance:     ErrNoTeamsToAdvance,
	ReasonTournamentNotFound:   ErrTournamentNotFound,
	ReasonInternal:             ErrAdvancementFailed,
}

// AdvancementError is the single structured failure of an advancement attempt.
// Nothing was applied when it is returned.
type AdvancementError struct {
	Reason  AdvancementReason `json:"reason"`
	Message string            `json:"message"`
	cause   error
}

func newAdvancementError(reason AdvancementReason, cause error, format string, args ...interface{}) *AdvancementError {
	return &AdvancementError{Reason: reason, Message: fmt.Sprintf(format, args...), cause: cause}
}

func (e *AdvancementError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Unwrap exposes both the reason sentinel and the underlying cause to errors.Is.
func (e *AdvancementError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel, ok := reasonSentinels[e.Reason]; ok {
		errs = append(errs, sentinel)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}
