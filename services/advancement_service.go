package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/swayamn72/aegis-sub001/models"
	"github.com/swayamn72/aegis-sub001/repositories"
	"github.com/swayamn72/aegis-sub001/standings"
)

// Продвижение нельзя отменить после старта, поэтому у него свой таймаут, не зависящий от запроса.
const advancementTimeout = 30 * time.Second

type AdvancementResult struct {
	TeamsAdvanced int                `json:"teams_advanced"`
	Revision      int64              `json:"revision"`
	Preview       standings.Preview  `json:"preview"`
	Tournament    *models.Tournament `json:"tournament,omitempty"`
	Standings     *standings.Result  `json:"standings,omitempty"`
}

type AdvancementService interface {
	PreviewAdvancement(ctx context.Context, tournamentID int, phaseName string) (*standings.Preview, error)
	AdvancePhase(ctx context.Context, tournamentID int, phaseName string) (*AdvancementResult, error)
}

type phaseKey struct {
	tournamentID int
	phase        string
}

type advancementService struct {
	tx          repositories.Transactor
	tournaments repositories.TournamentRepository
	phases      repositories.PhaseRepository
	loader      snapshotLoader
	standings   StandingsService
	locks       *keyedMutex[phaseKey]
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewAdvancementService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	phaseRepo repositories.PhaseRepository,
	matchRepo repositories.MatchRepository,
	standingsService StandingsService,
	broadcaster Broadcaster,
	logger *slog.Logger,
) AdvancementService {
	return &advancementService{
		tx:          tx,
		tournaments: tournamentRepo,
		phases:      phaseRepo,
		loader:      snapshotLoader{tournaments: tournamentRepo, phases: phaseRepo, matches: matchRepo},
		standings:   standingsService,
		locks:       newKeyedMutex[phaseKey](),
		broadcaster: broadcasterOrNoop(broadcaster),
		logger:      logger,
	}
}

func (s *advancementService) PreviewAdvancement(ctx context.Context, tournamentID int, phaseName string) (*standings.Preview, error) {
	snap, err := s.loader.load(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	phase, ok := snap.Tournament.PhaseByName(phaseName)
	if !ok {
		return nil, ErrPhaseNotFound
	}
	// отбор завершённой фазы уже применён, повторно его не считаем
	if phase.IsCompleted() {
		return nil, newAdvancementError(ReasonPhaseCompleted, nil, "phase %q is already completed", phaseName)
	}
	table := standings.Compute(standings.PhaseScope(phaseName, standings.Overall()), snap).Rows
	preview := standings.PreviewAdvancement(snap.Tournament, phase, table)
	return &preview, nil
}

// AdvancePhase enrolls the qualified teams into their next phases and completes the phase in one
// transaction. Calls for the same phase run one at a time.
func (s *advancementService) AdvancePhase(ctx context.Context, tournamentID int, phaseName string) (*AdvancementResult, error) {
	unlock := s.locks.Lock(phaseKey{tournamentID: tournamentID, phase: phaseName})
	defer unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), advancementTimeout)
	defer cancel()

	result := &AdvancementResult{}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.tournaments.GetRevision(ctx, exec, tournamentID); err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return newAdvancementError(ReasonTournamentNotFound, err, "tournament %d not found", tournamentID)
			}
			return err
		}

		locked, err := s.phases.LockByName(ctx, exec, tournamentID, phaseName)
		if err != nil {
			if errors.Is(err, repositories.ErrPhaseNotFound) {
				return newAdvancementError(ReasonPhaseNotFound, err, "phase %q not found", phaseName)
			}
			return err
		}
		switch locked.Status {
		case models.PhaseStatusCompleted:
			return newAdvancementError(ReasonPhaseCompleted, nil, "phase %q is already completed", phaseName)
		case models.PhaseStatusCancelled:
			return newAdvancementError(ReasonPhaseCancelled, nil, "phase %q is cancelled", phaseName)
		}

		snap, err := s.loader.load(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		phase, ok := snap.Tournament.PhaseByID(locked.ID)
		if !ok {
			return newAdvancementError(ReasonPhaseNotFound, nil, "phase %q not found", phaseName)
		}
		if len(phase.QualificationRules) == 0 {
			return newAdvancementError(ReasonNoQualificationRules, nil, "phase %q has no qualification rules configured", phaseName)
		}
		if err := validateRules(phase.QualificationRules); err != nil {
			return newAdvancementError(ReasonInvalidRule, err, "phase %q has invalid qualification rules: %v", phaseName, err)
		}

		table := standings.Compute(standings.PhaseScope(phaseName, standings.Overall()), snap).Rows
		preview := standings.PreviewAdvancement(snap.Tournament, phase, table)
		if unresolved := preview.Unresolved(); len(unresolved) > 0 {
			return newAdvancementError(ReasonNextPhaseNotFound, nil, "next phase not found for %s", describeRules(unresolved))
		}
		if len(preview.TeamsToAdvance) == 0 {
			return newAdvancementError(ReasonNoTeamsToAdvance, nil, "no teams qualify from phase %q", phaseName)
		}

		destinations := groupAssignments(preview.Assignments)
		for _, dest := range destinations {
			if dest.phaseID == phase.ID {
				return newAdvancementError(ReasonNextPhaseNotFound, nil, "phase %q cannot advance teams into itself", phaseName)
			}
			next, ok := snap.Tournament.PhaseByID(dest.phaseID)
			if !ok {
				return newAdvancementError(ReasonNextPhaseNotFound, nil, "next phase %q not found", dest.phaseName)
			}
			if next.Status == models.PhaseStatusCompleted || next.Status == models.PhaseStatusCancelled {
				return newAdvancementError(ReasonNextPhaseClosed, nil, "next phase %q is %s", next.Name, next.Status)
			}
		}
		for _, dest := range destinations {
			if _, err := s.phases.AddTeams(ctx, exec, dest.phaseID, dest.teamIDs); err != nil {
				return fmt.Errorf("failed to enroll %d teams into phase %q: %w", len(dest.teamIDs), dest.phaseName, err)
			}
		}
		if err := s.phases.UpdateStatus(ctx, exec, phase.ID, models.PhaseStatusCompleted); err != nil {
			return fmt.Errorf("failed to complete phase %q: %w", phaseName, err)
		}
		revision, err := s.tournaments.BumpRevision(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to bump results revision: %w", err)
		}

		result.TeamsAdvanced = len(preview.TeamsToAdvance)
		result.Revision = revision
		result.Preview = preview
		return nil
	})
	if err != nil {
		var advErr *AdvancementError
		if errors.As(err, &advErr) {
			s.logger.WarnContext(ctx, "Phase advancement rejected",
				slog.Int("tournament_id", tournamentID),
				slog.String("phase", phaseName),
				slog.String("reason", string(advErr.Reason)))
			return nil, advErr
		}
		s.logger.ErrorContext(ctx, "Phase advancement failed",
			slog.Int("tournament_id", tournamentID),
			slog.String("phase", phaseName),
			slog.Any("error", err))
		return nil, newAdvancementError(ReasonInternal, err, "advancement of phase %q failed, nothing was applied", phaseName)
	}

	s.logger.InfoContext(ctx, "Phase advanced",
		slog.Int("tournament_id", tournamentID),
		slog.String("phase", phaseName),
		slog.Int("teams_advanced", result.TeamsAdvanced))

	// собственная таблица после продвижения недействительна, считаем заново
	if s.standings != nil {
		s.standings.Invalidate(tournamentID)
	}
	if snap, err := s.loader.load(ctx, nil, tournamentID); err != nil {
		s.logger.WarnContext(ctx, "Failed to reload tournament after advancement",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	} else {
		res := standings.Compute(standings.PhaseScope(phaseName, standings.Overall()), snap)
		result.Tournament = snap.Tournament
		result.Standings = &res
	}

	s.broadcaster.Publish(tournamentID, standings.MessagePhaseAdvanced, StandingsEvent{
		TournamentID:  tournamentID,
		Phase:         phaseName,
		Revision:      result.Revision,
		TeamsAdvanced: result.TeamsAdvanced,
	})
	return result, nil
}

type destination struct {
	phaseID   int
	phaseName string
	teamIDs   []int
}

// groupAssignments groups team ids by destination phase, keeping first-seen order.
func groupAssignments(assignments []standings.Assignment) []destination {
	var out []destination
	index := make(map[int]int)
	for _, a := range assignments {
		i, ok := index[a.NextPhaseID]
		if !ok {
			i = len(out)
			index[a.NextPhaseID] = i
			out = append(out, destination{phaseID: a.NextPhaseID, phaseName: a.NextPhaseName})
		}
		out[i].teamIDs = append(out[i].teamIDs, a.TeamID)
	}
	return out
}

func validateRules(rules []models.QualificationRule) error {
	var errs []error
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("rule #%d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

func describeRules(selections []standings.RuleSelection) string {
	parts := make([]string, 0, len(selections))
	for _, sel := range selections {
		target := sel.Rule.NextPhase.Name
		if target == "" {
			target = fmt.Sprintf("#%d", sel.Rule.NextPhase.ID)
		}
		parts = append(parts, fmt.Sprintf("rule %s top %d -> %q", sel.Rule.Source, sel.Rule.NumberOfTeams, target))
	}
	return strings.Join(parts, ", ")
}
