package models

import (
	"errors"
	"fmt"
)

type PhaseStatus string

const (
	PhaseStatusUpcoming   PhaseStatus = "upcoming"
	PhaseStatusInProgress PhaseStatus = "in_progress"
	PhaseStatusCompleted  PhaseStatus = "completed"
	PhaseStatusCancelled  PhaseStatus = "cancelled"
)

func (s PhaseStatus) IsValid() bool {
	switch s {
	case PhaseStatusUpcoming, PhaseStatusInProgress, PhaseStatusCompleted, PhaseStatusCancelled:
		return true
	}
	return false
}

// OverallGroupName - зарезервированное имя группы: "все команды фазы без разбиения".
const OverallGroupName = "overall"

type QualificationSource string

const (
	SourceOverall       QualificationSource = "overall"
	SourceFromEachGroup QualificationSource = "from_each_group"
)

var (
	ErrRuleTeamCountInvalid = errors.New("qualification rule number_of_teams must be positive")
	ErrRuleSourceInvalid    = errors.New("qualification rule source must be overall or from_each_group")
)

// TeamRef - ссылка на команду из группы или фазы. Name и Logo заполняются репозиторием, если известны.
type TeamRef struct {
	TeamID int    `json:"team_id" db:"team_id"`
	Name   string `json:"name,omitempty" db:"name"`
	Logo   string `json:"logo,omitempty" db:"logo_url"`
}

// PhaseRef points at another phase by id or by name.
type PhaseRef struct {
	ID   int    `json:"id,omitempty" db:"next_phase_id"`
	Name string `json:"name,omitempty" db:"next_phase_name"`
}

type QualificationRule struct {
	ID            int                 `json:"id" db:"id"`
	PhaseID       int                 `json:"phase_id" db:"phase_id"`
	NumberOfTeams int                 `json:"number_of_teams" db:"number_of_teams"`
	Source        QualificationSource `json:"source" db:"source"`
	NextPhase     PhaseRef            `json:"next_phase" db:"-"`
}

func (r QualificationRule) Validate() error {
	if r.NumberOfTeams <= 0 {
		return fmt.Errorf("%w: got %d", ErrRuleTeamCountInvalid, r.NumberOfTeams)
	}
	switch r.Source {
	case SourceOverall, SourceFromEachGroup:
		return nil
	default:
		return fmt.Errorf("%w: got %q", ErrRuleSourceInvalid, r.Source)
	}
}

type Group struct {
	ID        int            `json:"id" db:"id"`
	PhaseID   int            `json:"phase_id" db:"phase_id"`
	Name      string         `json:"name" db:"name"`
	Teams     []TeamRef      `json:"teams" db:"-"`
	Standings []StandingsRow `json:"standings,omitempty" db:"-"` // серверный снимок, может быть устаревшим
}

// IsOverall is the single place that compares a group name with the reserved "overall" name.
func (g Group) IsOverall() bool {
	return g.Name == OverallGroupName
}

func (g Group) HasTeam(teamID int) bool {
	for _, ref := range g.Teams {
		if ref.TeamID == teamID {
			return true
		}
	}
	return false
}

type Phase struct {
	ID                 int                 `json:"id" db:"id"`
	TournamentID       int                 `json:"tournament_id" db:"tournament_id"`
	Name               string              `json:"name" db:"name"`
	Status             PhaseStatus         `json:"status" db:"status"`
	Groups             []Group             `json:"groups" db:"-"`
	QualificationRules []QualificationRule `json:"qualification_rules" db:"-"`
	Teams              []TeamRef           `json:"teams" db:"-"`
}

// GenuineGroups returns the sub-groups of the phase, skipping the reserved "overall" group.
func (p *Phase) GenuineGroups() []Group {
	groups := make([]Group, 0, len(p.Groups))
	for _, g := range p.Groups {
		if g.IsOverall() {
			continue
		}
		groups = append(groups, g)
	}
	return groups
}

func (p *Phase) OverallGroup() (*Group, bool) {
	for i := range p.Groups {
		if p.Groups[i].IsOverall() {
			return &p.Groups[i], true
		}
	}
	return nil, false
}

// GroupByName looks up a genuine group. The "overall" group is reachable only through OverallGroup.
func (p *Phase) GroupByName(name string) (*Group, bool) {
	for i := range p.Groups {
		g := &p.Groups[i]
		if !g.IsOverall() && g.Name == name {
			return g, true
		}
	}
	return nil, false
}

func (p *Phase) IsCompleted() bool {
	return p.Status == PhaseStatusCompleted
}
