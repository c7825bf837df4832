package models

import (
	"errors"
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCancelled  MatchStatus = "cancelled"
)

func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusInProgress, MatchStatusCompleted, MatchStatusCancelled:
		return true
	}
	return false
}

var (
	ErrResultNegativeKills   = errors.New("kills cannot be negative")
	ErrResultInvalidPosition = errors.New("final position must be 1 or greater")
)

type Kills struct {
	Total int `json:"total" db:"kills"`
}

type MatchTeamResult struct {
	TeamID        int   `json:"team_id" db:"team_id"`
	FinalPosition *int  `json:"final_position" db:"final_position"` // nil пока место не определено
	Kills         Kills `json:"kills"`
	ChickenDinner bool  `json:"chicken_dinner" db:"chicken_dinner"`
	Points        int   `json:"points" db:"points"`
}

// IsScored reports whether the result carries a finishing position or at least one kill.
// Unscored results belong to matches that have not been played yet.
func (r MatchTeamResult) IsScored() bool {
	return r.FinalPosition != nil || r.Kills.Total > 0
}

func (r MatchTeamResult) Validate() error {
	if r.Kills.Total < 0 {
		return fmt.Errorf("%w: team %d has %d", ErrResultNegativeKills, r.TeamID, r.Kills.Total)
	}
	if r.FinalPosition != nil && *r.FinalPosition < 1 {
		return fmt.Errorf("%w: team %d has %d", ErrResultInvalidPosition, r.TeamID, *r.FinalPosition)
	}
	return nil
}

type Match struct {
	ID                  int               `json:"id" db:"id"`
	TournamentID        int               `json:"tournament_id" db:"tournament_id"`
	TournamentPhase     string            `json:"tournament_phase" db:"phase_name"`
	ParticipatingGroups []string          `json:"participating_groups" db:"participating_groups"`
	Status              MatchStatus       `json:"status" db:"status"`
	Map                 string            `json:"map" db:"map"`
	MatchNumber         int               `json:"match_number" db:"match_number"`
	ScheduledAt         *time.Time        `json:"scheduled_at,omitempty" db:"scheduled_at"`
	ParticipatingTeams  []MatchTeamResult `json:"participating_teams" db:"-"`
}

func (m *Match) ResultFor(teamID int) (*MatchTeamResult, bool) {
	for i := range m.ParticipatingTeams {
		if m.ParticipatingTeams[i].TeamID == teamID {
			return &m.ParticipatingTeams[i], true
		}
	}
	return nil, false
}

// AllPlaced is true when every participating team has a finishing position.
func (m *Match) AllPlaced() bool {
	if len(m.ParticipatingTeams) == 0 {
		return false
	}
	for _, r := range m.ParticipatingTeams {
		if r.FinalPosition == nil {
			return false
		}
	}
	return true
}
