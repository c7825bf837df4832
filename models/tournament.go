package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
	StatusCancelled TournamentStatus = "cancelled"
)

// ParticipatingTeam - запись глобального ростера турнира.
type ParticipatingTeam struct {
	TeamID  int    `json:"team_id" db:"team_id"`
	Name    string `json:"name" db:"name"`
	LogoURL string `json:"logo_url,omitempty" db:"logo_url"`
}

// FinalStanding заполняется только после полного завершения турнира.
type FinalStanding struct {
	TeamID                  int `json:"team_id" db:"team_id"`
	Position                int `json:"position" db:"position"`
	TournamentPointsAwarded int `json:"tournament_points_awarded" db:"tournament_points_awarded"`
}

// Tournament - корневой агрегат: фазы, ростер и итоговая таблица.
type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Status          TournamentStatus `json:"status" db:"status"`
	ResultsRevision int64            `json:"results_revision" db:"results_revision"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`

	Phases             []Phase             `json:"phases" db:"-"`
	ParticipatingTeams []ParticipatingTeam `json:"participating_teams" db:"-"`
	FinalStandings     []FinalStanding     `json:"final_standings,omitempty" db:"-"`
}

// PhaseByName returns a pointer into t.Phases, so callers must treat it as read-only.
func (t *Tournament) PhaseByName(name string) (*Phase, bool) {
	if t == nil {
		return nil, false
	}
	for i := range t.Phases {
		if t.Phases[i].Name == name {
			return &t.Phases[i], true
		}
	}
	return nil, false
}

func (t *Tournament) PhaseByID(id int) (*Phase, bool) {
	if t == nil || id <= 0 {
		return nil, false
	}
	for i := range t.Phases {
		if t.Phases[i].ID == id {
			return &t.Phases[i], true
		}
	}
	return nil, false
}

// ResolvePhase finds the phase a qualification rule points at. The id wins over the name.
func (t *Tournament) ResolvePhase(ref PhaseRef) (*Phase, bool) {
	if p, ok := t.PhaseByID(ref.ID); ok {
		return p, true
	}
	if ref.Name == "" {
		return nil, false
	}
	return t.PhaseByName(ref.Name)
}
