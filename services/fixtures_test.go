package services

import (
	"github.com/swayamn72/aegis-sub001/models"
	"github.com/swayamn72/aegis-sub001/standings"
)

func intPtr(v int) *int { return &v }

func result(teamID, position, kills int) models.MatchTeamResult {
	return standings.ScoreResult(models.MatchTeamResult{TeamID: teamID, FinalPosition: intPtr(position), Kills: models.Kills{Total: kills}})
}

func teamRefs(ids ...int) []models.TeamRef {
	out := make([]models.TeamRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.TeamRef{TeamID: id})
	}
	return out
}

const cupID = 5

// seedCup: фаза Groups (A: 1-3, B: 4-6) с правилами top-2 overall и top-1 из группы в Finals.
func seedCup(store *MockStore) {
	roster := make([]models.ParticipatingTeam, 0, 6)
	for id := 1; id <= 6; id++ {
		roster = append(roster, models.ParticipatingTeam{TeamID: id, Name: "Team " + string(rune('A'+id-1))})
	}
	store.AddTournament(&models.Tournament{
		ID:                 cupID,
		Name:               "Cup",
		Status:             models.StatusActive,
		ResultsRevision:    1,
		ParticipatingTeams: roster,
		Phases: []models.Phase{
			{
				ID:     50,
				Name:   "Groups",
				Status: models.PhaseStatusInProgress,
				Groups: []models.Group{
					{ID: 500, PhaseID: 50, Name: "Group A", Teams: teamRefs(1, 2, 3)},
					{ID: 501, PhaseID: 50, Name: "Group B", Teams: teamRefs(4, 5, 6)},
				},
				QualificationRules: []models.QualificationRule{
					{ID: 1, PhaseID: 50, NumberOfTeams: 2, Source: models.SourceOverall, NextPhase: models.PhaseRef{Name: "Finals"}},
					{ID: 2, PhaseID: 50, NumberOfTeams: 1, Source: models.SourceFromEachGroup, NextPhase: models.PhaseRef{ID: 51}},
				},
			},
			{ID: 51, Name: "Finals", Status: models.PhaseStatusUpcoming},
		},
	})
	store.AddMatches(
		models.Match{
			ID: 900, TournamentID: cupID, TournamentPhase: "Groups", Status: models.MatchStatusCompleted,
			ParticipatingTeams: []models.MatchTeamResult{
				result(1, 1, 6), result(2, 2, 5), result(4, 3, 1), result(3, 4, 0), result(5, 5, 0), result(6, 6, 0),
			},
		},
		models.Match{
			ID: 901, TournamentID: cupID, TournamentPhase: "Groups", Status: models.MatchStatusScheduled,
			ParticipatingTeams: []models.MatchTeamResult{
				{TeamID: 1}, {TeamID: 2}, {TeamID: 3}, {TeamID: 4}, {TeamID: 5}, {TeamID: 6},
			},
		},
	)
}

type serviceSet struct {
	store       *MockStore
	broadcaster *mockBroadcaster
	standings   StandingsService
	advancement AdvancementService
	matches     MatchService
}

func newServiceSet() *serviceSet {
	store := NewMockStore()
	seedCup(store)
	b := &mockBroadcaster{}
	logger := discardLogger()
	st := NewStandingsService(store, store.Tournaments(), store.Phases(), store.Matches(), standings.NewMemo(), b, logger)
	return &serviceSet{
		store:       store,
		broadcaster: b,
		standings:   st,
		advancement: NewAdvancementService(store, store.Tournaments(), store.Phases(), store.Matches(), st, b, logger),
		matches:     NewMatchService(store, store.Tournaments(), store.Phases(), store.Matches(), st, b, logger),
	}
}
