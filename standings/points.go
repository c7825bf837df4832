package standings

import "github.com/swayamn72/aegis-sub001/models"

// placementCurve - очки за место в матче, индекс = место. Всё, что за пределами, даёт 0.
// Кривая общая для всех турниров и используется и таблицей, и вводом результатов.
var placementCurve = [...]int{0, 10, 6, 5, 4, 3, 2, 1, 1}

// PlacementPoints returns the placement points for a finishing position. nil means undecided.
func PlacementPoints(position *int) int {
	if position == nil {
		return 0
	}
	p := *position
	if p < 1 || p >= len(placementCurve) {
		return 0
	}
	return placementCurve[p]
}

// KillPoints is one point per kill.
func KillPoints(kills int) int {
	if kills < 0 {
		return 0
	}
	return kills
}

// ResultPoints is the derived points value stored on a MatchTeamResult.
func ResultPoints(r models.MatchTeamResult) int {
	return PlacementPoints(r.FinalPosition) + KillPoints(r.Kills.Total)
}

// ScoreResult fills the derived fields of a result from its position and kills.
func ScoreResult(r models.MatchTeamResult) models.MatchTeamResult {
	r.ChickenDinner = r.FinalPosition != nil && *r.FinalPosition == 1
	r.Points = ResultPoints(r)
	return r
}
