package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/swayamn72/aegis-sub001/models"
	"github.com/swayamn72/aegis-sub001/repositories"
	"github.com/swayamn72/aegis-sub001/standings"
)

// StandingsView - таблица вместе с тем, для какого скоупа и ревизии она посчитана.
type StandingsView struct {
	TournamentID int                   `json:"tournament_id"`
	Phase        string                `json:"phase,omitempty"`
	Group        string                `json:"group,omitempty"`
	Label        string                `json:"label"`
	Revision     int64                 `json:"revision"`
	Source       standings.Source      `json:"source"`
	Rows         []models.StandingsRow `json:"rows"`
}

type GroupSnapshot struct {
	Group string `json:"group"`
	Teams int    `json:"teams"`
}

type SnapshotResult struct {
	TournamentID int             `json:"tournament_id"`
	Phase        string          `json:"phase"`
	Revision     int64           `json:"revision"`
	Groups       []GroupSnapshot `json:"groups"`
}

type FinalizeResult struct {
	TournamentID int                    `json:"tournament_id"`
	Revision     int64                  `json:"revision"`
	Standings    []models.FinalStanding `json:"final_standings"`
}

type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID int, scope standings.Scope) (*StandingsView, error)
	// SnapshotGroupStandings stores live standings of every group of the phase, "overall" included, in the group cache.
	SnapshotGroupStandings(ctx context.Context, tournamentID int, phaseName string) (*SnapshotResult, error)
	// FinalizeTournament stores the tournament-wide live standings as final standings.
	FinalizeTournament(ctx context.Context, tournamentID int) (*FinalizeResult, error)
	Invalidate(tournamentID int)
}

type standingsService struct {
	tx          repositories.Transactor
	tournaments repositories.TournamentRepository
	phases      repositories.PhaseRepository
	loader      snapshotLoader
	memo        *standings.Memo
	flight      singleflight.Group
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewStandingsService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	phaseRepo repositories.PhaseRepository,
	matchRepo repositories.MatchRepository,
	memo *standings.Memo,
	broadcaster Broadcaster,
	logger *slog.Logger,
) StandingsService {
	if memo == nil {
		memo = standings.NewMemo()
	}
	return &standingsService{
		tx:          tx,
		tournaments: tournamentRepo,
		phases:      phaseRepo,
		loader:      snapshotLoader{tournaments: tournamentRepo, phases: phaseRepo, matches: matchRepo},
		memo:        memo,
		broadcaster: broadcasterOrNoop(broadcaster),
		logger:      logger,
	}
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID int, scope standings.Scope) (*StandingsView, error) {
	revision, err := s.tournaments.GetRevision(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	key := standings.MemoKey{TournamentID: tournamentID, Scope: scope, Revision: revision}
	if res, ok := s.memo.Get(key); ok {
		return newStandingsView(tournamentID, scope, revision, res), nil
	}

	flightKey := fmt.Sprintf("%d|%d|%s", tournamentID, revision, scope)
	// результат делят все ожидающие, отмена запроса первого из них не должна его обрывать
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.flight.Do(flightKey, func() (interface{}, error) {
		snap, err := s.loader.load(flightCtx, nil, tournamentID)
		if err != nil {
			return nil, err
		}
		res := standings.Compute(scope, snap)
		// снимок может быть новее ревизии, прочитанной выше
		s.memo.Put(standings.MemoKey{TournamentID: tournamentID, Scope: scope, Revision: snap.Tournament.ResultsRevision}, res)
		return newStandingsView(tournamentID, scope, snap.Tournament.ResultsRevision, res), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute standings for tournament %d: %w", tournamentID, err)
	}
	view := v.(*StandingsView)
	if shared {
		copied := *view
		copied.Rows = append([]models.StandingsRow(nil), view.Rows...)
		view = &copied
	}
	s.logger.DebugContext(ctx, "Standings computed",
		slog.Int("tournament_id", tournamentID),
		slog.String("scope", scope.String()),
		slog.String("source", string(view.Source)),
		slog.Bool("shared", shared))
	return view, nil
}

func newStandingsView(tournamentID int, scope standings.Scope, revision int64, res standings.Result) *StandingsView {
	rows := res.Rows
	if rows == nil {
		rows = []models.StandingsRow{}
	}
	return &StandingsView{
		TournamentID: tournamentID,
		Phase:        scope.Phase,
		Group:        scope.Group.Name(),
		Label:        scope.Label(),
		Revision:     revision,
		Source:       res.Source,
		Rows:         rows,
	}
}

func (s *standingsService) SnapshotGroupStandings(ctx context.Context, tournamentID int, phaseName string) (*SnapshotResult, error) {
	result := &SnapshotResult{TournamentID: tournamentID, Phase: phaseName, Groups: make([]GroupSnapshot, 0)}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.phases.LockByName(ctx, exec, tournamentID, phaseName)
		if err != nil {
			return handleRepositoryError(err)
		}
		switch locked.Status {
		case models.PhaseStatusCancelled:
			return ErrSnapshotPhaseClosed
		case models.PhaseStatusCompleted:
			return ErrSnapshotPhaseCompleted
		}

		snap, err := s.loader.load(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		phase, ok := snap.Tournament.PhaseByName(phaseName)
		if !ok {
			return ErrPhaseNotFound
		}
		// старый кэш не должен попасть в новый снимок
		for i := range phase.Groups {
			phase.Groups[i].Standings = nil
		}

		type target struct {
			name  string
			id    int
			scope standings.Scope
		}
		targets := make([]target, 0, len(phase.Groups)+1)
		for _, g := range phase.GenuineGroups() {
			targets = append(targets, target{name: g.Name, id: g.ID, scope: standings.PhaseScope(phaseName, standings.Named(g.Name))})
		}
		overallID := 0
		if g, found := phase.OverallGroup(); found {
			overallID = g.ID
		} else if overallID, err = s.phases.EnsureGroup(ctx, exec, phase.ID, models.OverallGroupName); err != nil {
			return fmt.Errorf("failed to create overall group for phase %q: %w", phaseName, handleRepositoryError(err))
		}
		targets = append(targets, target{name: models.OverallGroupName, id: overallID, scope: standings.PhaseScope(phaseName, standings.Overall())})

		for _, tg := range targets {
			rows := standings.Compute(tg.scope, snap).Rows
			if err := s.phases.ReplaceGroupStandings(ctx, exec, tg.id, rows); err != nil {
				return fmt.Errorf("failed to store standings of group %q: %w", tg.name, handleRepositoryError(err))
			}
			result.Groups = append(result.Groups, GroupSnapshot{Group: tg.name, Teams: len(rows)})
		}

		result.Revision, err = s.tournaments.BumpRevision(ctx, exec, tournamentID)
		return handleRepositoryError(err)
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(tournamentID)
	s.broadcaster.Publish(tournamentID, standings.MessageStandingsUpdated, StandingsEvent{
		TournamentID: tournamentID, Phase: phaseName, Revision: result.Revision,
	})
	s.logger.InfoContext(ctx, "Group standings snapshot stored",
		slog.Int("tournament_id", tournamentID),
		slog.String("phase", phaseName),
		slog.Int("groups", len(result.Groups)))
	return result, nil
}

func (s *standingsService) FinalizeTournament(ctx context.Context, tournamentID int) (*FinalizeResult, error) {
	result := &FinalizeResult{TournamentID: tournamentID}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		snap, err := s.loader.load(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		// пересчитываем вживую, прежняя итоговая таблица не источник
		snap.Tournament.FinalStandings = nil

		rows := standings.Compute(standings.TournamentWide(), snap).Rows
		if len(rows) == 0 {
			return ErrNothingToFinalize
		}
		final := make([]models.FinalStanding, 0, len(rows))
		for _, row := range rows {
			final = append(final, models.FinalStanding{
				TeamID:                  row.TeamID,
				Position:                row.Position,
				TournamentPointsAwarded: row.TotalPoints,
			})
		}
		if err := s.tournaments.ReplaceFinalStandings(ctx, exec, tournamentID, final); err != nil {
			return fmt.Errorf("failed to store final standings: %w", handleRepositoryError(err))
		}
		result.Standings = final
		result.Revision, err = s.tournaments.BumpRevision(ctx, exec, tournamentID)
		return handleRepositoryError(err)
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(tournamentID)
	s.broadcaster.Publish(tournamentID, standings.MessageStandingsUpdated, StandingsEvent{
		TournamentID: tournamentID, Revision: result.Revision,
	})
	s.logger.InfoContext(ctx, "Tournament finalized",
		slog.Int("tournament_id", tournamentID),
		slog.Int("teams", len(result.Standings)))
	return result, nil
}

func (s *standingsService) Invalidate(tournamentID int) {
	s.memo.Invalidate(tournamentID)
}
