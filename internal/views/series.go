package views

import (
	"sort"

	"emd/internal/models"
)

// Point is one chart point. X/Y carry the plotted values, T the source
// snapshot timestamp for hover labels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	T int64   `json:"t"`
}

// Series is one chart series keyed to a post (or to the aggregate).
type Series struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	URL    string  `json:"url,omitempty"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// AllPostsID identifies the merged cumulative-views series.
const AllPostsID = "all"

var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

func colorFor(i int) string {
	return palette[i%len(palette)]
}

func seriesLabel(p *models.Post) string {
	if p.Caption != "" {
		return p.Caption
	}
	return p.ID
}

// ScatterSeries plots each visible post as unique viewers against
// interaction rate, one point per snapshot. Snapshots with an undefined
// rate are skipped.
func ScatterSeries(posts []*models.Post) []Series {
	out := make([]Series, 0, len(posts))
	for i, p := range posts {
		s := Series{ID: p.ID, Label: seriesLabel(p), URL: p.URL, Color: colorFor(i)}
		for _, snap := range p.Snapshots {
			rate, ok := InteractionRate(snap)
			if !ok {
				continue
			}
			s.Points = append(s.Points, Point{X: *snap.UV, Y: rate, T: snap.T})
		}
		out = append(out, s)
	}
	return out
}

// ViewSeries plots each visible post's raw view count over time.
func ViewSeries(posts []*models.Post) []Series {
	out := make([]Series, 0, len(posts))
	for i, p := range posts {
		s := Series{ID: p.ID, Label: seriesLabel(p), URL: p.URL, Color: colorFor(i)}
		for _, snap := range sortedByTime(p.Snapshots) {
			if snap.Views == nil {
				continue
			}
			s.Points = append(s.Points, Point{X: float64(snap.T), Y: *snap.Views, T: snap.T})
		}
		out = append(out, s)
	}
	return out
}

// CumulativeViews merges every post's view snapshots in timestamp order
// into one running total. Each post's last-seen count is tracked and
// only the delta on change is accumulated, so the curve is invariant to
// when individual posts happen to update. A decreasing reading still
// contributes its (negative) delta; the dip is deliberate.
func CumulativeViews(posts []*models.Post) Series {
	type reading struct {
		t     int64
		post  string
		views float64
	}
	var readings []reading
	for _, p := range posts {
		for _, snap := range p.Snapshots {
			if snap.Views == nil {
				continue
			}
			readings = append(readings, reading{t: snap.T, post: p.ID, views: *snap.Views})
		}
	}
	sort.SliceStable(readings, func(i, j int) bool { return readings[i].t < readings[j].t })

	s := Series{ID: AllPostsID, Label: "All posts", Color: palette[0]}
	last := make(map[string]float64, len(posts))
	total := 0.0
	for _, r := range readings {
		prev, seen := last[r.post]
		if seen && prev == r.views {
			continue
		}
		total += r.views - prev
		last[r.post] = r.views
		s.Points = append(s.Points, Point{X: float64(r.t), Y: total, T: r.t})
	}
	return s
}

// FollowerSeries plots the user's raw follower history.
func FollowerSeries(u *models.User) Series {
	s := Series{ID: "followers", Label: "Followers", Color: palette[4]}
	if u == nil {
		return s
	}
	for _, f := range u.Followers {
		s.Points = append(s.Points, Point{X: float64(f.T), Y: f.Count, T: f.T})
	}
	return s
}

func sortedByTime(snaps []*models.Snapshot) []*models.Snapshot {
	out := make([]*models.Snapshot, len(snaps))
	copy(out, snaps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].T < out[j].T })
	return out
}
