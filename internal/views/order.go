// Package views derives dashboard projections from a loaded metrics
// store copy. Everything here is pure: no function mutates its input and
// identical input yields identical output.
package views

import (
	"sort"

	"emd/internal/models"
)

// DefaultVisibleCount is how many of the newest posts are charted when a
// user has no stored visibility selection.
const DefaultVisibleCount = 20

// OrderPosts returns a user's posts newest-first: posts with a known
// creation time sorted descending by it, followed by undated posts
// sorted descending by the numeric fallback derived from the post id.
// Snapshots are never used to infer creation time.
func OrderPosts(u *models.User) []*models.Post {
	dated, undated := partitionByDate(u)
	return append(dated, undated...)
}

// DefaultVisibleSet picks the post ids charted when no prior selection
// exists: the newest DefaultVisibleCount posts, drawn from the dated
// group when any post is dated, otherwise from the fallback ordering.
func DefaultVisibleSet(u *models.User) []string {
	dated, undated := partitionByDate(u)
	group := dated
	if len(group) == 0 {
		group = undated
	}
	if len(group) > DefaultVisibleCount {
		group = group[:DefaultVisibleCount]
	}
	ids := make([]string, len(group))
	for i, p := range group {
		ids[i] = p.ID
	}
	return ids
}

func partitionByDate(u *models.User) (dated, undated []*models.Post) {
	if u == nil {
		return nil, nil
	}
	for _, p := range u.Posts {
		if p.PostTime > 0 {
			dated = append(dated, p)
		} else {
			undated = append(undated, p)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		if dated[i].PostTime != dated[j].PostTime {
			return dated[i].PostTime > dated[j].PostTime
		}
		return dated[i].ID < dated[j].ID
	})
	sort.SliceStable(undated, func(i, j int) bool {
		ni, nj := postIDNumber(undated[i].ID), postIDNumber(undated[j].ID)
		if ni != nj {
			return ni > nj
		}
		return undated[i].ID < undated[j].ID
	})
	return dated, undated
}

// postIDNumber derives a stable numeric fallback from a post identifier
// by concatenating its decimal digits. Ids without digits order last.
func postIDNumber(id string) uint64 {
	var n uint64
	digits := 0
	for _, c := range id {
		if c < '0' || c > '9' {
			continue
		}
		if digits >= 18 {
			break
		}
		n = n*10 + uint64(c-'0')
		digits++
	}
	return n
}

// SelectPosts resolves a set of post ids against a user, preserving the
// OrderPosts ordering and skipping ids that no longer exist.
func SelectPosts(u *models.User, ids []string) []*models.Post {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []*models.Post
	for _, p := range OrderPosts(u) {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}
