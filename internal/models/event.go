package models

import (
	"time"

	"github.com/spf13/cast"
)

// UnknownUserKey is the bucket of last resort for events whose author
// could not be resolved at capture time.
const UnknownUserKey = "unknown"

// SnapshotEvent is one raw candidate snapshot delivered by the capture
// layer. Every field is optional; identity fields come in page-level and
// post-level variants and loosely typed fields accept whatever shape the
// intercepted feed happened to use.
type SnapshotEvent struct {
	UserKey        string `json:"userKey"`
	PageUserKey    string `json:"pageUserKey"`
	UserHandle     string `json:"userHandle"`
	PageUserHandle string `json:"pageUserHandle"`
	UserID         any    `json:"userId"`
	PostID         string `json:"postId"`
	URL            string `json:"url"`
	Thumb          string `json:"thumb"`
	Caption        string `json:"caption"`
	CreatedAt      any    `json:"created_at"`
	ParentPostID   string `json:"parent_post_id"`
	RootPostID     string `json:"root_post_id"`

	Followers *float64 `json:"followers"`
	Ts        int64    `json:"ts"`
	UV        *float64 `json:"uv"`
	Likes     *float64 `json:"likes"`
	Views     *float64 `json:"views"`
	Comments  *float64 `json:"comments"`
	// remix_count and remixes are the same metric under two feed shapes;
	// remix_count wins when both are present.
	RemixCount *float64 `json:"remix_count"`
	Remixes    *float64 `json:"remixes"`
}

// ResolvedUserID coerces the loosely typed userId field to a string.
func (e *SnapshotEvent) ResolvedUserID() string {
	if e.UserID == nil {
		return ""
	}
	return cast.ToString(e.UserID)
}

// ResolvedHandle returns the author handle, falling back to the
// page-level handle.
func (e *SnapshotEvent) ResolvedHandle() string {
	if e.UserHandle != "" {
		return e.UserHandle
	}
	return e.PageUserHandle
}

// ResolveUserKey derives the bucket key for this event: an explicit key
// wins, then a handle-derived key, then an id-derived key, then the
// unknown bucket.
func (e *SnapshotEvent) ResolveUserKey() string {
	if e.UserKey != "" {
		return e.UserKey
	}
	if e.PageUserKey != "" {
		return e.PageUserKey
	}
	if h := e.ResolvedHandle(); h != "" {
		return "h:" + h
	}
	if id := e.ResolvedUserID(); id != "" {
		return "id:" + id
	}
	return UnknownUserKey
}

// Timestamp returns the capture time in epoch milliseconds, defaulting
// to now when the event carries none.
func (e *SnapshotEvent) Timestamp() int64 {
	if e.Ts > 0 {
		return e.Ts
	}
	return time.Now().UnixMilli()
}

// CreationTime coerces created_at to epoch milliseconds, 0 when absent
// or unparseable.
func (e *SnapshotEvent) CreationTime() int64 {
	if e.CreatedAt == nil {
		return 0
	}
	v := cast.ToFloat64(e.CreatedAt)
	if v <= 0 {
		return 0
	}
	return int64(v)
}

// RemixMetric returns remix_count when present, otherwise remixes.
func (e *SnapshotEvent) RemixMetric() *float64 {
	if e.RemixCount != nil {
		return e.RemixCount
	}
	return e.Remixes
}

// Usable reports whether the event carries anything the store can merge:
// either a post reference or a follower reading attributable to a
// resolvable user.
func (e *SnapshotEvent) Usable() bool {
	if e.PostID != "" {
		return true
	}
	return e.Followers != nil && e.ResolveUserKey() != UnknownUserKey
}
