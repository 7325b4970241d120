package views

import "emd/internal/models"

// Totals aggregates the latest snapshot of each post in a subset.
// Interactions counts likes and replies only; remixes, shares and
// downloads stay out of the interaction figure.
type Totals struct {
	Views        float64 `json:"views"`
	Likes        float64 `json:"likes"`
	Replies      float64 `json:"replies"`
	Remixes      float64 `json:"remixes"`
	Interactions float64 `json:"interactions"`
}

// Aggregate sums each post's latest snapshot values. The remix figure
// takes the newest non-null remix count found scanning snapshots from
// newest to oldest, since many feed shapes omit it intermittently.
func Aggregate(posts []*models.Post) Totals {
	var t Totals
	for _, p := range posts {
		last := p.LastSnapshot()
		if last == nil {
			continue
		}
		if last.Views != nil {
			t.Views += *last.Views
		}
		if last.Likes != nil {
			t.Likes += *last.Likes
		}
		if last.Comments != nil {
			t.Replies += *last.Comments
		}
		for i := len(p.Snapshots) - 1; i >= 0; i-- {
			if r := p.Snapshots[i].RemixCount; r != nil {
				t.Remixes += *r
				break
			}
		}
	}
	t.Interactions = t.Likes + t.Replies
	return t
}

// InteractionRate computes (likes+comments)/uv × 100 for one snapshot.
// Undefined (ok=false) when uv is absent or not strictly positive.
func InteractionRate(s *models.Snapshot) (float64, bool) {
	if s == nil || s.UV == nil || *s.UV <= 0 {
		return 0, false
	}
	var likes, comments float64
	if s.Likes != nil {
		likes = *s.Likes
	}
	if s.Comments != nil {
		comments = *s.Comments
	}
	return (likes + comments) / *s.UV * 100, true
}
