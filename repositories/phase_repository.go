package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/swayamn72/aegis-sub001/models"
)

var (
	ErrPhaseNotFound     = errors.New("phase not found")
	ErrGroupNotFound     = errors.New("group not found")
	ErrPhaseTeamInvalid  = errors.New("phase team references an unknown phase or team")
	ErrStandingsRowTeams = errors.New("standings row references an unknown team")
	ErrInvalidPhaseState = errors.New("unknown phase status")
)

type PhaseRepository interface {
	// ListByTournament loads phases in order with their teams, groups, cached group standings and rules.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Phase, error)
	// LockByName takes a row lock on the phase until the surrounding transaction ends.
	LockByName(ctx context.Context, exec SQLExecutor, tournamentID int, name string) (*models.Phase, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, phaseID int, status models.PhaseStatus) error
	// AddTeams enrolls teams into a phase, skipping teams already enrolled. Returns the number inserted.
	AddTeams(ctx context.Context, exec SQLExecutor, phaseID int, teamIDs []int) (int64, error)
	EnsureGroup(ctx context.Context, exec SQLExecutor, phaseID int, name string) (int, error)
	ReplaceGroupStandings(ctx context.Context, exec SQLExecutor, groupID int, rows []models.StandingsRow) error
	ClearGroupStandings(ctx context.Context, exec SQLExecutor, tournamentID int, phaseName string) error
}

type postgresPhaseRepository struct {
	db *sql.DB
}

func NewPostgresPhaseRepository(db *sql.DB) PhaseRepository {
	return &postgresPhaseRepository{db: db}
}

func (r *postgresPhaseRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Phase, error) {
	ex := executor(r.db, exec)

	rows, err := ex.QueryContext(ctx, `
		SELECT id, tournament_id, name, status
		FROM phases
		WHERE tournament_id = $1
		ORDER BY sort_order ASC, id ASC`, tournamentID)
	if err != nil {
		return nil, err
	}
	phases := make([]models.Phase, 0)
	index := make(map[int]int)
	for rows.Next() {
		var p models.Phase
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.Name, &p.Status); err != nil {
			rows.Close()
			return nil, err
		}
		p.Groups = make([]models.Group, 0)
		p.QualificationRules = make([]models.QualificationRule, 0)
		p.Teams = make([]models.TeamRef, 0)
		index[p.ID] = len(phases)
		phases = append(phases, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(phases) == 0 {
		return phases, nil
	}

	if err := r.loadPhaseTeams(ctx, ex, tournamentID, phases, index); err != nil {
		return nil, fmt.Errorf("load phase teams: %w", err)
	}
	if err := r.loadGroups(ctx, ex, tournamentID, phases, index); err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	if err := r.loadRules(ctx, ex, tournamentID, phases, index); err != nil {
		return nil, fmt.Errorf("load qualification rules: %w", err)
	}
	return phases, nil
}

func (r *postgresPhaseRepository) loadPhaseTeams(ctx context.Context, ex SQLExecutor, tournamentID int, phases []models.Phase, index map[int]int) error {
	rows, err := ex.QueryContext(ctx, `
		SELECT pt.phase_id, t.id, t.name, COALESCE(t.logo_url, '')
		FROM phase_teams pt
		JOIN phases p ON p.id = pt.phase_id
		JOIN teams t ON t.id = pt.team_id
		WHERE p.tournament_id = $1
		ORDER BY pt.phase_id, pt.created_at, t.id`, tournamentID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var phaseID int
		var ref models.TeamRef
		if err := rows.Scan(&phaseID, &ref.TeamID, &ref.Name, &ref.Logo); err != nil {
			return err
		}
		if i, ok := index[phaseID]; ok {
			phases[i].Teams = append(phases[i].Teams, ref)
		}
	}
	return rows.Err()
}

type groupPos struct{ phase, group int }

func (r *postgresPhaseRepository) loadGroups(ctx context.Context, ex SQLExecutor, tournamentID int, phases []models.Phase, index map[int]int) error {
	rows, err := ex.QueryContext(ctx, `
		SELECT g.id, g.phase_id, g.name
		FROM phase_groups g
		JOIN phases p ON p.id = g.phase_id
		WHERE p.tournament_id = $1
		ORDER BY g.phase_id, g.sort_order, g.id`, tournamentID)
	if err != nil {
		return err
	}
	groups := make(map[int]groupPos)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.PhaseID, &g.Name); err != nil {
			rows.Close()
			return err
		}
		i, ok := index[g.PhaseID]
		if !ok {
			continue
		}
		g.Teams = make([]models.TeamRef, 0)
		groups[g.ID] = groupPos{phase: i, group: len(phases[i].Groups)}
		phases[i].Groups = append(phases[i].Groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}

	memberRows, err := ex.QueryContext(ctx, `
		SELECT gt.group_id, t.id, t.name, COALESCE(t.logo_url, '')
		FROM group_teams gt
		JOIN phase_groups g ON g.id = gt.group_id
		JOIN phases p ON p.id = g.phase_id
		JOIN teams t ON t.id = gt.team_id
		WHERE p.tournament_id = $1
		ORDER BY gt.group_id, gt.sort_order, t.id`, tournamentID)
	if err != nil {
		return err
	}
	for memberRows.Next() {
		var groupID int
		var ref models.TeamRef
		if err := memberRows.Scan(&groupID, &ref.TeamID, &ref.Name, &ref.Logo); err != nil {
			memberRows.Close()
			return err
		}
		if at, ok := groups[groupID]; ok {
			g := &phases[at.phase].Groups[at.group]
			g.Teams = append(g.Teams, ref)
		}
	}
	memberRows.Close()
	if err := memberRows.Err(); err != nil {
		return err
	}

	standingRows, err := ex.QueryContext(ctx, `
		SELECT gs.group_id, gs.team_id, gs.team_name, gs.team_logo, gs.position, gs.matches_played, gs.kills,
		       gs.chicken_dinners, gs.total_position_points, gs.total_kill_points, gs.total_points, gs.average_placement
		FROM group_standings gs
		JOIN phase_groups g ON g.id = gs.group_id
		JOIN phases p ON p.id = g.phase_id
		WHERE p.tournament_id = $1
		ORDER BY gs.group_id, gs.position`, tournamentID)
	if err != nil {
		return err
	}
	defer standingRows.Close()
	for standingRows.Next() {
		var groupID int
		var row models.StandingsRow
		if err := standingRows.Scan(&groupID, &row.TeamID, &row.TeamName, &row.TeamLogo, &row.Position,
			&row.MatchesPlayed, &row.Kills, &row.ChickenDinners, &row.TotalPositionPoints,
			&row.TotalKillPoints, &row.TotalPoints, &row.AveragePlacement); err != nil {
			return err
		}
		if at, ok := groups[groupID]; ok {
			g := &phases[at.phase].Groups[at.group]
			g.Standings = append(g.Standings, row)
		}
	}
	return standingRows.Err()
}

func (r *postgresPhaseRepository) loadRules(ctx context.Context, ex SQLExecutor, tournamentID int, phases []models.Phase, index map[int]int) error {
	rows, err := ex.QueryContext(ctx, `
		SELECT q.id, q.phase_id, q.number_of_teams, q.source, COALESCE(q.next_phase_id, 0), COALESCE(q.next_phase_name, '')
		FROM qualification_rules q
		JOIN phases p ON p.id = q.phase_id
		WHERE p.tournament_id = $1
		ORDER BY q.phase_id, q.sort_order, q.id`, tournamentID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var q models.QualificationRule
		if err := rows.Scan(&q.ID, &q.PhaseID, &q.NumberOfTeams, &q.Source, &q.NextPhase.ID, &q.NextPhase.Name); err != nil {
			return err
		}
		if i, ok := index[q.PhaseID]; ok {
			phases[i].QualificationRules = append(phases[i].QualificationRules, q)
		}
	}
	return rows.Err()
}

func (r *postgresPhaseRepository) LockByName(ctx context.Context, exec SQLExecutor, tournamentID int, name string) (*models.Phase, error) {
	query := `
		SELECT id, tournament_id, name, status
		FROM phases
		WHERE tournament_id = $1 AND name = $2
		FOR UPDATE`

	p := &models.Phase{}
	err := executor(r.db, exec).QueryRowContext(ctx, query, tournamentID, name).Scan(&p.ID, &p.TournamentID, &p.Name, &p.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPhaseRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, phaseID int, status models.PhaseStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPhaseState, status)
	}
	result, err := executor(r.db, exec).ExecContext(ctx, `UPDATE phases SET status = $1 WHERE id = $2`, status, phaseID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPhaseNotFound)
}

func (r *postgresPhaseRepository) AddTeams(ctx context.Context, exec SQLExecutor, phaseID int, teamIDs []int) (int64, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}
	query := `
		INSERT INTO phase_teams (phase_id, team_id)
		SELECT $1, unnest($2::int[])
		ON CONFLICT (phase_id, team_id) DO NOTHING`

	ids := make([]int64, len(teamIDs))
	for i, id := range teamIDs {
		ids[i] = int64(id)
	}
	result, err := executor(r.db, exec).ExecContext(ctx, query, phaseID, pq.Array(ids))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, ErrPhaseTeamInvalid
		}
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresPhaseRepository) EnsureGroup(ctx context.Context, exec SQLExecutor, phaseID int, name string) (int, error) {
	query := `
		INSERT INTO phase_groups (phase_id, name, sort_order)
		VALUES ($1, $2, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM phase_groups WHERE phase_id = $1))
		ON CONFLICT (phase_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	var id int
	err := executor(r.db, exec).QueryRowContext(ctx, query, phaseID, name).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, ErrPhaseNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *postgresPhaseRepository) ReplaceGroupStandings(ctx context.Context, exec SQLExecutor, groupID int, rows []models.StandingsRow) error {
	ex := executor(r.db, exec)
	if _, err := ex.ExecContext(ctx, `DELETE FROM group_standings WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("clear group standings: %w", err)
	}
	query := `
		INSERT INTO group_standings
			(group_id, team_id, team_name, team_logo, position, matches_played, kills, chicken_dinners,
			 total_position_points, total_kill_points, total_points, average_placement)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, row := range rows {
		_, err := ex.ExecContext(ctx, query, groupID, row.TeamID, row.TeamName, row.TeamLogo, row.Position,
			row.MatchesPlayed, row.Kills, row.ChickenDinners, row.TotalPositionPoints,
			row.TotalKillPoints, row.TotalPoints, row.AveragePlacement)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				if pqErr.Constraint == "group_standings_group_id_fkey" {
					return ErrGroupNotFound
				}
				return ErrStandingsRowTeams
			}
			return err
		}
	}
	return nil
}

func (r *postgresPhaseRepository) ClearGroupStandings(ctx context.Context, exec SQLExecutor, tournamentID int, phaseName string) error {
	query := `
		DELETE FROM group_standings gs
		USING phase_groups g, phases p
		WHERE gs.group_id = g.id AND g.phase_id = p.id
		  AND p.tournament_id = $1 AND p.name = $2`
	_, err := executor(r.db, exec).ExecContext(ctx, query, tournamentID, phaseName)
	return err
}
