package models

// StandingsRow - вычисляемая строка таблицы. Движок её не сохраняет, кроме снимка в кэше группы.
type StandingsRow struct {
	TeamID              int     `json:"team_id" db:"team_id"`
	TeamName            string  `json:"team_name" db:"team_name"`
	TeamLogo            string  `json:"team_logo" db:"team_logo"`
	Position            int     `json:"position" db:"position"`
	MatchesPlayed       int     `json:"matches_played" db:"matches_played"`
	Kills               int     `json:"kills" db:"kills"`
	ChickenDinners      int     `json:"chicken_dinners" db:"chicken_dinners"`
	TotalPositionPoints int     `json:"total_position_points" db:"total_position_points"`
	TotalKillPoints     int     `json:"total_kill_points" db:"total_kill_points"`
	TotalPoints         int     `json:"total_points" db:"total_points"`
	AveragePlacement    float64 `json:"average_placement" db:"average_placement"`
}
