package views

import "emd/internal/models"

// PostSummary is the dashboard list row for one post.
type PostSummary struct {
	ID              string   `json:"id"`
	URL             string   `json:"url,omitempty"`
	Thumb           string   `json:"thumb,omitempty"`
	Label           string   `json:"label"`
	PostTime        int64    `json:"post_time,omitempty"`
	LastSeen        int64    `json:"lastSeen"`
	Snapshots       int      `json:"snapshots"`
	UV              *float64 `json:"uv"`
	Likes           *float64 `json:"likes"`
	Views           *float64 `json:"views"`
	Comments        *float64 `json:"comments"`
	RemixCount      *float64 `json:"remix_count"`
	InteractionRate *float64 `json:"interactionRate"`
}

// Summarize projects ordered posts into list rows carrying each post's
// latest snapshot values and its current interaction rate.
func Summarize(posts []*models.Post) []PostSummary {
	out := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		row := PostSummary{
			ID:        p.ID,
			URL:       p.URL,
			Thumb:     p.Thumb,
			Label:     seriesLabel(p),
			PostTime:  p.PostTime,
			LastSeen:  p.LastSeen,
			Snapshots: len(p.Snapshots),
		}
		if last := p.LastSnapshot(); last != nil {
			row.UV = last.UV
			row.Likes = last.Likes
			row.Views = last.Views
			row.Comments = last.Comments
			row.RemixCount = last.RemixCount
			if rate, ok := InteractionRate(last); ok {
				row.InteractionRate = &rate
			}
		}
		out = append(out, row)
	}
	return out
}
