package views

import (
	"encoding/csv"
	"io"
	"strconv"

	"emd/internal/models"
)

var exportHeader = []string{"post_id", "timestamp", "unique", "likes", "views", "interaction_rate"}

// WriteCSV streams one row per (post, snapshot) pair in post order.
// Absent metrics render as empty cells; the interaction rate is
// formatted to four decimal places or left empty when undefined.
func WriteCSV(w io.Writer, posts []*models.Post) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, p := range posts {
		for _, s := range p.Snapshots {
			row := []string{
				p.ID,
				strconv.FormatInt(s.T, 10),
				formatMetric(s.UV),
				formatMetric(s.Likes),
				formatMetric(s.Views),
				"",
			}
			if rate, ok := InteractionRate(s); ok {
				row[5] = strconv.FormatFloat(rate, 'f', 4, 64)
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatMetric(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
