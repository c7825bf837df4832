package standings

import (
	"sort"

	"github.com/swayamn72/aegis-sub001/models"
)

// UnknownTeamName is used for results of teams missing from the tournament roster.
const UnknownTeamName = "Unknown Team"

// Source tells which of the three data sources produced a table.
type Source string

const (
	SourceFinal Source = "final"
	SourceCache Source = "cache"
	SourceLive  Source = "live"
)

// Snapshot - неизменяемый срез данных, на котором считается таблица.
type Snapshot struct {
	Tournament *models.Tournament
	Matches    []models.Match
}

type Result struct {
	Source Source                `json:"source"`
	Rows   []models.StandingsRow `json:"rows"`
}

// Compute resolves the standings of scope: final standings first, then the group cache,
// then a live recomputation from match results. It never mutates the snapshot.
func Compute(scope Scope, snap Snapshot) Result {
	t := snap.Tournament
	if t == nil {
		t = &models.Tournament{}
	}
	meta := newTeamDirectory(t)

	if scope.IsTournamentWide() {
		if len(t.FinalStandings) > 0 {
			return Result{Source: SourceFinal, Rows: fromFinalStandings(t.FinalStandings, meta)}
		}
		return Result{Source: SourceLive, Rows: computeLive(scope, t, snap.Matches, meta)}
	}

	if phase, ok := t.PhaseByName(scope.Phase); ok {
		if cached := cachedRows(phase, scope.Group); len(cached) > 0 {
			return Result{Source: SourceCache, Rows: fromCache(cached, meta)}
		}
	}
	return Result{Source: SourceLive, Rows: computeLive(scope, t, snap.Matches, meta)}
}

func cachedRows(phase *models.Phase, group GroupScope) []models.StandingsRow {
	if group.IsOverall() {
		if g, ok := phase.OverallGroup(); ok {
			return g.Standings
		}
		return nil
	}
	if g, ok := phase.GroupByName(group.Name()); ok {
		return g.Standings
	}
	return nil
}

func fromFinalStandings(final []models.FinalStanding, meta teamDirectory) []models.StandingsRow {
	ordered := make([]models.FinalStanding, len(final))
	copy(ordered, final)
	sort.SliceStable(ordered, func(i, j int) bool {
		return positionLess(ordered[i].Position, ordered[j].Position)
	})

	rows := make([]models.StandingsRow, 0, len(ordered))
	for i, fs := range ordered {
		name, logo := meta.lookup(fs.TeamID)
		rows = append(rows, models.StandingsRow{
			TeamID:      fs.TeamID,
			TeamName:    name,
			TeamLogo:    logo,
			Position:    i + 1,
			TotalPoints: fs.TournamentPointsAwarded,
		})
	}
	return rows
}

func fromCache(cached []models.StandingsRow, meta teamDirectory) []models.StandingsRow {
	rows := make([]models.StandingsRow, len(cached))
	copy(rows, cached)
	sort.SliceStable(rows, func(i, j int) bool {
		return positionLess(rows[i].Position, rows[j].Position)
	})
	for i := range rows {
		rows[i].Position = i + 1
		if rows[i].TeamName == "" {
			rows[i].TeamName, rows[i].TeamLogo = meta.lookup(rows[i].TeamID)
		}
	}
	return rows
}

// positionLess orders stored positions ascending, rows without a position go last.
func positionLess(a, b int) bool {
	if a <= 0 {
		return false
	}
	if b <= 0 {
		return true
	}
	return a < b
}

type accumulator struct {
	row        models.StandingsRow
	placements int
	placeSum   int
}

func computeLive(scope Scope, t *models.Tournament, matches []models.Match, meta teamDirectory) []models.StandingsRow {
	relevant, groupScoped := relevantTeams(scope, t)

	accs := make(map[int]*accumulator, len(relevant))
	order := make([]int, 0, len(relevant))
	add := func(teamID int) *accumulator {
		if acc, ok := accs[teamID]; ok {
			return acc
		}
		name, logo := meta.lookup(teamID)
		acc := &accumulator{row: models.StandingsRow{TeamID: teamID, TeamName: name, TeamLogo: logo}}
		accs[teamID] = acc
		order = append(order, teamID)
		return acc
	}
	for _, id := range relevant {
		add(id)
	}

	for i := range matches {
		m := &matches[i]
		if !matchInScope(m, scope) {
			continue
		}
		for _, res := range m.ParticipatingTeams {
			if !res.IsScored() {
				continue
			}
			acc, ok := accs[res.TeamID]
			if !ok {
				if groupScoped {
					continue
				}
				acc = add(res.TeamID)
			}
			acc.apply(res)
		}
	}

	rows := make([]models.StandingsRow, 0, len(order))
	for _, id := range order {
		acc := accs[id]
		if acc.placements > 0 {
			acc.row.AveragePlacement = float64(acc.placeSum) / float64(acc.placements)
		}
		rows = append(rows, acc.row)
	}
	rank(rows)
	return rows
}

func (a *accumulator) apply(res models.MatchTeamResult) {
	positionPts := PlacementPoints(res.FinalPosition)
	killPts := KillPoints(res.Kills.Total)

	a.row.MatchesPlayed++
	a.row.Kills += res.Kills.Total
	a.row.TotalPositionPoints += positionPts
	a.row.TotalKillPoints += killPts
	a.row.TotalPoints += positionPts + killPts
	if res.ChickenDinner {
		a.row.ChickenDinners++
	}
	if res.FinalPosition != nil {
		a.placements++
		a.placeSum += *res.FinalPosition
	}
}

// rank sorts rows by points, kills, chicken dinners and matches played, then assigns positions.
// Full ties keep their input order.
func rank(rows []models.StandingsRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.Kills != b.Kills {
			return a.Kills > b.Kills
		}
		if a.ChickenDinners != b.ChickenDinners {
			return a.ChickenDinners > b.ChickenDinners
		}
		return a.MatchesPlayed > b.MatchesPlayed
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
}

// relevantTeams returns the teams that get a row even without results, in display order.
// groupScoped is true when only those teams may appear.
func relevantTeams(scope Scope, t *models.Tournament) (ids []int, groupScoped bool) {
	seen := make(map[int]struct{})
	push := func(id int) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if scope.IsTournamentWide() {
		for _, team := range t.ParticipatingTeams {
			push(team.TeamID)
		}
		return ids, false
	}

	phase, ok := t.PhaseByName(scope.Phase)
	if !scope.Group.IsOverall() {
		if ok {
			if g, found := phase.GroupByName(scope.Group.Name()); found {
				for _, ref := range g.Teams {
					push(ref.TeamID)
				}
			}
		}
		return ids, true
	}
	if !ok {
		return ids, false
	}
	for _, ref := range phase.Teams {
		push(ref.TeamID)
	}
	for _, g := range phase.Groups {
		for _, ref := range g.Teams {
			push(ref.TeamID)
		}
	}
	return ids, false
}

func matchInScope(m *models.Match, scope Scope) bool {
	if scope.IsTournamentWide() {
		return true
	}
	if m.TournamentPhase != scope.Phase {
		return false
	}
	if scope.Group.IsOverall() || len(m.ParticipatingGroups) == 0 {
		return true
	}
	for _, g := range m.ParticipatingGroups {
		if g == scope.Group.Name() {
			return true
		}
	}
	return false
}

type teamInfo struct {
	name string
	logo string
}

// teamDirectory resolves team metadata: the roster first, then names carried by phase and group refs.
type teamDirectory map[int]teamInfo

func newTeamDirectory(t *models.Tournament) teamDirectory {
	dir := make(teamDirectory, len(t.ParticipatingTeams))
	remember := func(ref models.TeamRef) {
		if ref.Name == "" {
			return
		}
		if _, ok := dir[ref.TeamID]; !ok {
			dir[ref.TeamID] = teamInfo{name: ref.Name, logo: ref.Logo}
		}
	}
	for _, team := range t.ParticipatingTeams {
		dir[team.TeamID] = teamInfo{name: team.Name, logo: team.LogoURL}
	}
	for _, p := range t.Phases {
		for _, ref := range p.Teams {
			remember(ref)
		}
		for _, g := range p.Groups {
			for _, ref := range g.Teams {
				remember(ref)
			}
		}
	}
	return dir
}

func (d teamDirectory) lookup(teamID int) (name, logo string) {
	if info, ok := d[teamID]; ok && info.name != "" {
		return info.name, info.logo
	}
	return UnknownTeamName, ""
}
