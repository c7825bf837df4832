package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swayamn72/aegis-sub001/models"
	"github.com/swayamn72/aegis-sub001/repositories"
	"github.com/swayamn72/aegis-sub001/standings"
)

type ResultField string

const (
	FieldPosition ResultField = "position"
	FieldKills    ResultField = "kills"
)

func (f ResultField) IsValid() bool {
	return f == FieldPosition || f == FieldKills
}

// ResultKey addresses one editable value of one team in one match.
type ResultKey struct {
	MatchID int
	TeamID  int
	Field   ResultField
}

// ResultEdits - отложенные правки результатов. nil для позиции означает "место не определено".
type ResultEdits map[ResultKey]*int

func (e ResultEdits) SetPosition(matchID, teamID int, position *int) {
	e[ResultKey{MatchID: matchID, TeamID: teamID, Field: FieldPosition}] = copyInt(position)
}

func (e ResultEdits) SetKills(matchID, teamID, kills int) {
	e[ResultKey{MatchID: matchID, TeamID: teamID, Field: FieldKills}] = &kills
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

type MatchService interface {
	ListMatches(ctx context.Context, tournamentID int, phaseName string) ([]models.Match, error)
	RecordResults(ctx context.Context, matchID int, edits ResultEdits) (*models.Match, error)
}

type matchService struct {
	tx          repositories.Transactor
	tournaments repositories.TournamentRepository
	phases      repositories.PhaseRepository
	matches     repositories.MatchRepository
	standings   StandingsService
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewMatchService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	phaseRepo repositories.PhaseRepository,
	matchRepo repositories.MatchRepository,
	standingsService StandingsService,
	broadcaster Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:          tx,
		tournaments: tournamentRepo,
		phases:      phaseRepo,
		matches:     matchRepo,
		standings:   standingsService,
		broadcaster: broadcasterOrNoop(broadcaster),
		logger:      logger,
	}
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID int, phaseName string) ([]models.Match, error) {
	if _, err := s.tournaments.GetRevision(ctx, nil, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	var phaseFilter *string
	if phaseName != "" {
		phaseFilter = &phaseName
	}
	matches, err := s.matches.ListByTournament(ctx, nil, tournamentID, phaseFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func validateEdits(matchID int, edits ResultEdits) error {
	if len(edits) == 0 {
		return ErrNoResultEdits
	}
	for key, value := range edits {
		if key.MatchID != matchID {
			return fmt.Errorf("%w: edit for match %d sent to match %d", ErrInvalidResultEdit, key.MatchID, matchID)
		}
		if !key.Field.IsValid() {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidResultEdit, key.Field)
		}
		switch key.Field {
		case FieldKills:
			if value == nil || *value < 0 {
				return fmt.Errorf("%w: kills of team %d must be zero or more", ErrInvalidResultEdit, key.TeamID)
			}
		case FieldPosition:
			if value != nil && *value < 1 {
				return fmt.Errorf("%w: position of team %d must be 1 or greater", ErrInvalidResultEdit, key.TeamID)
			}
		}
	}
	return nil
}

// applyEdits returns the edited results in match order. The match itself is updated in place.
func applyEdits(match *models.Match, edits ResultEdits) ([]models.MatchTeamResult, error) {
	touched := make(map[int]bool)
	for key := range edits {
		if _, ok := match.ResultFor(key.TeamID); !ok {
			return nil, fmt.Errorf("%w: team %d, match %d", ErrTeamNotInMatch, key.TeamID, match.ID)
		}
		touched[key.TeamID] = true
	}

	changed := make([]models.MatchTeamResult, 0, len(touched))
	taken := make(map[int]int)
	for i := range match.ParticipatingTeams {
		res := &match.ParticipatingTeams[i]
		if touched[res.TeamID] {
			if v, ok := edits[ResultKey{MatchID: match.ID, TeamID: res.TeamID, Field: FieldPosition}]; ok {
				res.FinalPosition = copyInt(v)
			}
			if v, ok := edits[ResultKey{MatchID: match.ID, TeamID: res.TeamID, Field: FieldKills}]; ok {
				res.Kills.Total = *v
			}
			*res = standings.ScoreResult(*res)
			if err := res.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidResultEdit, err)
			}
			changed = append(changed, *res)
		}
		if res.FinalPosition != nil {
			if other, dup := taken[*res.FinalPosition]; dup {
				return nil, fmt.Errorf("%w: teams %d and %d both at %d", ErrDuplicatePosition, other, res.TeamID, *res.FinalPosition)
			}
			taken[*res.FinalPosition] = res.TeamID
		}
	}
	return changed, nil
}

func nextMatchStatus(match *models.Match) models.MatchStatus {
	if match.AllPlaced() {
		return models.MatchStatusCompleted
	}
	for _, r := range match.ParticipatingTeams {
		if r.IsScored() {
			if match.Status == models.MatchStatusScheduled {
				return models.MatchStatusInProgress
			}
			return match.Status
		}
	}
	return match.Status
}

// RecordResults applies edits to one match in a single transaction and invalidates cached standings
// of its phase. The phase row lock orders this against a concurrent advancement of the same phase.
func (s *matchService) RecordResults(ctx context.Context, matchID int, edits ResultEdits) (*models.Match, error) {
	if err := validateEdits(matchID, edits); err != nil {
		return nil, err
	}

	var (
		updated  *models.Match
		revision int64
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matches.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if match.Status == models.MatchStatusCancelled {
			return ErrMatchCancelled
		}
		phase, err := s.phases.LockByName(ctx, exec, match.TournamentID, match.TournamentPhase)
		if err != nil {
			return handleRepositoryError(err)
		}
		if phase.IsCompleted() {
			return fmt.Errorf("%w: phase %q", ErrPhaseResultsLocked, phase.Name)
		}

		changed, err := applyEdits(match, edits)
		if err != nil {
			return err
		}
		if err := s.matches.UpsertResults(ctx, exec, match.ID, changed); err != nil {
			return handleRepositoryError(err)
		}
		if status := nextMatchStatus(match); status != match.Status {
			if err := s.matches.UpdateStatus(ctx, exec, match.ID, status); err != nil {
				return handleRepositoryError(err)
			}
			match.Status = status
		}
		if err := s.phases.ClearGroupStandings(ctx, exec, match.TournamentID, match.TournamentPhase); err != nil {
			return fmt.Errorf("failed to clear cached standings: %w", err)
		}
		if revision, err = s.tournaments.BumpRevision(ctx, exec, match.TournamentID); err != nil {
			return handleRepositoryError(err)
		}
		updated = match
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.standings != nil {
		s.standings.Invalidate(updated.TournamentID)
	}
	s.broadcaster.Publish(updated.TournamentID, standings.MessageStandingsUpdated, StandingsEvent{
		TournamentID: updated.TournamentID,
		Phase:        updated.TournamentPhase,
		MatchID:      updated.ID,
		Revision:     revision,
	})
	s.logger.InfoContext(ctx, "Match results recorded",
		slog.Int("match_id", updated.ID),
		slog.Int("tournament_id", updated.TournamentID),
		slog.Int("edits", len(edits)),
		slog.String("status", string(updated.Status)))
	return updated, nil
}
