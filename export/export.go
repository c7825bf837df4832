// Package export renders a final, already ranked standings table for download.
package export

import (
	"strconv"

	"github.com/swayamn72/aegis-sub001/models"
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatPNG Format = "png"
)

func ParseFormat(raw string) (Format, bool) {
	switch Format(raw) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatPNG:
		return FormatPNG, true
	}
	return "", false
}

func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Columns - порядок колонок одинаков для CSV и картинки.
var Columns = []string{"Position", "Team", "Matches Played", "Chicken Dinners", "Position Points", "Kill Points", "Total Points"}

func cells(row models.StandingsRow) []string {
	return []string{
		strconv.Itoa(row.Position),
		row.TeamName,
		strconv.Itoa(row.MatchesPlayed),
		strconv.Itoa(row.ChickenDinners),
		strconv.Itoa(row.TotalPositionPoints),
		strconv.Itoa(row.TotalKillPoints),
		strconv.Itoa(row.TotalPoints),
	}
}
