package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/swayamn72/aegis-sub001/models"
)

// WriteCSV writes the label line, the column header and one record per row, in the given order.
func WriteCSV(w io.Writer, label string, rows []models.StandingsRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{label}); err != nil {
		return fmt.Errorf("write label: %w", err)
	}
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(cells(row)); err != nil {
			return fmt.Errorf("write row for team %d: %w", row.TeamID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
