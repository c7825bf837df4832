package standings

import "github.com/swayamn72/aegis-sub001/models"

// UnknownPhaseName labels rule selections whose next phase does not exist.
const UnknownPhaseName = "Unknown Phase"

type RuleSelection struct {
	Rule          models.QualificationRule `json:"rule"`
	NextPhaseID   int                      `json:"next_phase_id,omitempty"`
	NextPhaseName string                   `json:"next_phase_name"`
	Resolved      bool                     `json:"resolved"`
	Invalid       string                   `json:"invalid,omitempty"` // почему правило не может отобрать команды
	Teams         []models.StandingsRow    `json:"teams"`
}

// Assignment - куда именно переходит команда после дедупликации.
type Assignment struct {
	TeamID        int    `json:"team_id"`
	NextPhaseID   int    `json:"next_phase_id"`
	NextPhaseName string `json:"next_phase_name"`
}

type Preview struct {
	Phase          string                `json:"phase"`
	Rules          []RuleSelection       `json:"rules"`
	TeamsToAdvance []models.StandingsRow `json:"teams_to_advance"`
	Assignments    []Assignment          `json:"assignments"`
}

// Unresolved returns the selections whose next phase could not be found.
func (p Preview) Unresolved() []RuleSelection {
	var out []RuleSelection
	for _, sel := range p.Rules {
		if !sel.Resolved {
			out = append(out, sel)
		}
	}
	return out
}

// InvalidRules returns the selections whose rule failed validation. Such rules select nobody.
func (p Preview) InvalidRules() []RuleSelection {
	var out []RuleSelection
	for _, sel := range p.Rules {
		if sel.Invalid != "" {
			out = append(out, sel)
		}
	}
	return out
}

// PreviewAdvancement evaluates the phase's qualification rules in declaration order against
// an already ranked table. A team picked by several rules advances once, through the first rule
// that picked it. Unresolvable next phases and invalid rules are labelled, never fatal.
func PreviewAdvancement(t *models.Tournament, phase *models.Phase, table []models.StandingsRow) Preview {
	preview := Preview{
		Rules:          make([]RuleSelection, 0),
		TeamsToAdvance: make([]models.StandingsRow, 0),
		Assignments:    make([]Assignment, 0),
	}
	if phase == nil {
		return preview
	}
	preview.Phase = phase.Name

	seen := make(map[int]struct{})
	for _, rule := range phase.QualificationRules {
		sel := RuleSelection{Rule: rule, NextPhaseName: UnknownPhaseName}
		if next, ok := t.ResolvePhase(rule.NextPhase); ok {
			sel.NextPhaseID = next.ID
			sel.NextPhaseName = next.Name
			sel.Resolved = true
		}
		if err := rule.Validate(); err != nil {
			sel.Invalid = err.Error()
		}
		sel.Teams = selectTeams(rule, phase, table)
		preview.Rules = append(preview.Rules, sel)

		for _, row := range sel.Teams {
			if _, dup := seen[row.TeamID]; dup {
				continue
			}
			seen[row.TeamID] = struct{}{}
			preview.TeamsToAdvance = append(preview.TeamsToAdvance, row)
			preview.Assignments = append(preview.Assignments, Assignment{
				TeamID:        row.TeamID,
				NextPhaseID:   sel.NextPhaseID,
				NextPhaseName: sel.NextPhaseName,
			})
		}
	}
	return preview
}

func selectTeams(rule models.QualificationRule, phase *models.Phase, table []models.StandingsRow) []models.StandingsRow {
	if rule.NumberOfTeams <= 0 {
		return []models.StandingsRow{}
	}
	switch rule.Source {
	case models.SourceOverall:
		return takeFirst(table, rule.NumberOfTeams)
	case models.SourceFromEachGroup:
		picked := make([]models.StandingsRow, 0)
		for _, g := range phase.GenuineGroups() {
			members := make([]models.StandingsRow, 0, len(g.Teams))
			for _, row := range table {
				if g.HasTeam(row.TeamID) {
					members = append(members, row)
				}
			}
			picked = append(picked, takeFirst(members, rule.NumberOfTeams)...)
		}
		return picked
	default:
		return []models.StandingsRow{}
	}
}

func takeFirst(rows []models.StandingsRow, n int) []models.StandingsRow {
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]models.StandingsRow, n)
	copy(out, rows[:n])
	return out
}
