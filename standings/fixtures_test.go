package standings

import "github.com/swayamn72/aegis-sub001/models"

func pos(p int) *int { return &p }

func scored(teamID, position, kills int) models.MatchTeamResult {
	return ScoreResult(models.MatchTeamResult{TeamID: teamID, FinalPosition: pos(position), Kills: models.Kills{Total: kills}})
}

func unscored(teamID int) models.MatchTeamResult {
	return models.MatchTeamResult{TeamID: teamID}
}

func match(id int, phase string, groups []string, results ...models.MatchTeamResult) models.Match {
	return models.Match{
		ID:                  id,
		TournamentPhase:     phase,
		ParticipatingGroups: groups,
		Status:              models.MatchStatusCompleted,
		ParticipatingTeams:  results,
	}
}

func refs(ids ...int) []models.TeamRef {
	out := make([]models.TeamRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.TeamRef{TeamID: id})
	}
	return out
}

// groupsTournament: фаза "Groups" с группами A (1,2,3) и B (4,5,6) и пустой фазой "Finals".
func groupsTournament() *models.Tournament {
	t := &models.Tournament{ID: 7, Name: "Spring Cup"}
	for id := 1; id <= 6; id++ {
		t.ParticipatingTeams = append(t.ParticipatingTeams, models.ParticipatingTeam{
			TeamID: id, Name: string(rune('A'+id-1)) + " Team", LogoURL: "logo.png",
		})
	}
	t.Phases = []models.Phase{
		{
			ID:     10,
			Name:   "Groups",
			Status: models.PhaseStatusInProgress,
			Groups: []models.Group{
				{ID: 100, Name: "Group A", Teams: refs(1, 2, 3)},
				{ID: 101, Name: "Group B", Teams: refs(4, 5, 6)},
			},
		},
		{ID: 11, Name: "Finals", Status: models.PhaseStatusUpcoming},
	}
	return t
}

func twoTeamTournament() *models.Tournament {
	return &models.Tournament{
		ID: 1,
		ParticipatingTeams: []models.ParticipatingTeam{
			{TeamID: 1, Name: "Team A"},
			{TeamID: 2, Name: "Team B"},
		},
		Phases: []models.Phase{{ID: 1, Name: "Qualifiers", Teams: refs(1, 2)}},
	}
}
