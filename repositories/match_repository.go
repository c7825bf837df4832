package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/swayamn72/aegis-sub001/models"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchResultInvalid = errors.New("match result references an unknown team")
	ErrInvalidMatchState  = errors.New("unknown match status")
)

type MatchRepository interface {
	// ListByTournament returns matches with their team results. phaseName nil means every phase.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, phaseName *string) ([]models.Match, error)
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	// GetByIDForUpdate locks the match row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	UpsertResults(ctx context.Context, exec SQLExecutor, matchID int, results []models.MatchTeamResult) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, phase_name, participating_groups, status, COALESCE(map, ''), match_number, scheduled_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(s rowScanner) (models.Match, error) {
	var m models.Match
	var groups []string
	err := s.Scan(&m.ID, &m.TournamentID, &m.TournamentPhase, pq.Array(&groups), &m.Status, &m.Map, &m.MatchNumber, &m.ScheduledAt)
	if groups == nil {
		groups = []string{}
	}
	m.ParticipatingGroups = groups
	m.ParticipatingTeams = make([]models.MatchTeamResult, 0)
	return m, err
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, phaseName *string) ([]models.Match, error) {
	ex := executor(r.db, exec)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)
	args := []interface{}{tournamentID}
	placeholderIndex := 2
	if phaseName != nil {
		queryBuilder.WriteString(" AND phase_name = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *phaseName)
	}
	queryBuilder.WriteString(" ORDER BY match_number ASC, id ASC")

	rows, err := ex.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	matches := make([]models.Match, 0)
	index := make(map[int]int)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		index[m.ID] = len(matches)
		matches = append(matches, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return matches, nil
	}

	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, int64(m.ID))
	}
	results, err := r.listResults(ctx, ex, ids)
	if err != nil {
		return nil, err
	}
	for matchID, res := range results {
		if i, ok := index[matchID]; ok {
			matches[i].ParticipatingTeams = res
		}
	}
	return matches, nil
}

func (r *postgresMatchRepository) listResults(ctx context.Context, ex SQLExecutor, matchIDs []int64) (map[int][]models.MatchTeamResult, error) {
	query := `
		SELECT match_id, team_id, final_position, kills, chicken_dinner, points
		FROM match_team_results
		WHERE match_id = ANY($1)
		ORDER BY match_id, slot, team_id`

	rows, err := ex.QueryContext(ctx, query, pq.Array(matchIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make(map[int][]models.MatchTeamResult)
	for rows.Next() {
		var matchID int
		var res models.MatchTeamResult
		var position sql.NullInt64
		if err := rows.Scan(&matchID, &res.TeamID, &position, &res.Kills.Total, &res.ChickenDinner, &res.Points); err != nil {
			return nil, err
		}
		if position.Valid {
			p := int(position.Int64)
			res.FinalPosition = &p
		}
		results[matchID] = append(results[matchID], res)
	}
	return results, rows.Err()
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	return r.getByID(ctx, exec, id, false)
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	return r.getByID(ctx, exec, id, true)
}

func (r *postgresMatchRepository) getByID(ctx context.Context, exec SQLExecutor, id int, forUpdate bool) (*models.Match, error) {
	ex := executor(r.db, exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	m, err := scanMatch(ex.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	results, err := r.listResults(ctx, ex, []int64{int64(id)})
	if err != nil {
		return nil, err
	}
	if res, ok := results[id]; ok {
		m.ParticipatingTeams = res
	}
	return &m, nil
}

func (r *postgresMatchRepository) UpsertResults(ctx context.Context, exec SQLExecutor, matchID int, results []models.MatchTeamResult) error {
	ex := executor(r.db, exec)
	query := `
		INSERT INTO match_team_results (match_id, team_id, final_position, kills, chicken_dinner, points)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (match_id, team_id) DO UPDATE
		SET final_position = EXCLUDED.final_position,
		    kills = EXCLUDED.kills,
		    chicken_dinner = EXCLUDED.chicken_dinner,
		    points = EXCLUDED.points`

	for _, res := range results {
		var position interface{}
		if res.FinalPosition != nil {
			position = *res.FinalPosition
		}
		_, err := ex.ExecContext(ctx, query, matchID, res.TeamID, position, res.Kills.Total, res.ChickenDinner, res.Points)
		if err != nil {
			return r.handleMatchError(err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMatchState, status)
	}
	result, err := executor(r.db, exec).ExecContext(ctx, `UPDATE matches SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
		switch pqErr.Constraint {
		case "match_team_results_match_id_fkey":
			return ErrMatchNotFound
		case "match_team_results_team_id_fkey":
			return ErrMatchResultInvalid
		}
	}
	return err
}
