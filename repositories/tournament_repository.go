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
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrFinalStandingInvalid   = errors.New("final standing references an unknown team")
	ErrFinalStandingDuplicate = errors.New("final standing position or team is duplicated")
)

type TournamentRepository interface {
	// GetByID loads the tournament row, its roster and final standings. Phases are loaded by PhaseRepository.
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	GetRevision(ctx context.Context, exec SQLExecutor, id int) (int64, error)
	BumpRevision(ctx context.Context, exec SQLExecutor, id int) (int64, error)
	ReplaceFinalStandings(ctx context.Context, exec SQLExecutor, id int, standings []models.FinalStanding) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	ex := executor(r.db, exec)
	query := `
		SELECT id, name, status, results_revision, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := ex.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Status, &t.ResultsRevision, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if t.ParticipatingTeams, err = r.listRoster(ctx, ex, id); err != nil {
		return nil, fmt.Errorf("list roster of tournament %d: %w", id, err)
	}
	if t.FinalStandings, err = r.listFinalStandings(ctx, ex, id); err != nil {
		return nil, fmt.Errorf("list final standings of tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) listRoster(ctx context.Context, ex SQLExecutor, tournamentID int) ([]models.ParticipatingTeam, error) {
	query := `
		SELECT t.id, t.name, COALESCE(t.logo_url, '')
		FROM tournament_teams tt
		JOIN teams t ON t.id = tt.team_id
		WHERE tt.tournament_id = $1
		ORDER BY tt.sort_order ASC, t.id ASC`

	rows, err := ex.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := make([]models.ParticipatingTeam, 0)
	for rows.Next() {
		var team models.ParticipatingTeam
		if err := rows.Scan(&team.TeamID, &team.Name, &team.LogoURL); err != nil {
			return nil, err
		}
		roster = append(roster, team)
	}
	return roster, rows.Err()
}

func (r *postgresTournamentRepository) listFinalStandings(ctx context.Context, ex SQLExecutor, tournamentID int) ([]models.FinalStanding, error) {
	query := `
		SELECT team_id, position, tournament_points_awarded
		FROM final_standings
		WHERE tournament_id = $1
		ORDER BY position ASC`

	rows, err := ex.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []models.FinalStanding
	for rows.Next() {
		var fs models.FinalStanding
		if err := rows.Scan(&fs.TeamID, &fs.Position, &fs.TournamentPointsAwarded); err != nil {
			return nil, err
		}
		standings = append(standings, fs)
	}
	return standings, rows.Err()
}

func (r *postgresTournamentRepository) GetRevision(ctx context.Context, exec SQLExecutor, id int) (int64, error) {
	var revision int64
	err := executor(r.db, exec).QueryRowContext(ctx, `SELECT results_revision FROM tournaments WHERE id = $1`, id).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrTournamentNotFound
	}
	return revision, err
}

func (r *postgresTournamentRepository) BumpRevision(ctx context.Context, exec SQLExecutor, id int) (int64, error) {
	query := `
		UPDATE tournaments
		SET results_revision = results_revision + 1
		WHERE id = $1
		RETURNING results_revision`

	var revision int64
	err := executor(r.db, exec).QueryRowContext(ctx, query, id).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrTournamentNotFound
	}
	return revision, err
}

func (r *postgresTournamentRepository) ReplaceFinalStandings(ctx context.Context, exec SQLExecutor, id int, standings []models.FinalStanding) error {
	ex := executor(r.db, exec)
	if _, err := ex.ExecContext(ctx, `DELETE FROM final_standings WHERE tournament_id = $1`, id); err != nil {
		return fmt.Errorf("clear final standings: %w", err)
	}
	query := `
		INSERT INTO final_standings (tournament_id, team_id, position, tournament_points_awarded)
		VALUES ($1, $2, $3, $4)`
	for _, fs := range standings {
		if _, err := ex.ExecContext(ctx, query, id, fs.TeamID, fs.Position, fs.TournamentPointsAwarded); err != nil {
			return handleFinalStandingError(err)
		}
	}
	return nil
}

func handleFinalStandingError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			return ErrFinalStandingInvalid
		case "23505": // unique_violation
			return ErrFinalStandingDuplicate
		}
	}
	return err
}
