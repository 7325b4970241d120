package models

// Post is one piece of content filed under exactly one user bucket at a
// time. Ownership may change after the fact via reconciliation.
//
// Field write semantics differ on purpose: url and the owner/lineage
// fields are first-write-wins, caption and thumb follow the feed
// (overwrite on change), lastSeen always tracks the newest event.
type Post struct {
	ID           string      `json:"id"`
	URL          string      `json:"url,omitempty"`
	Thumb        string      `json:"thumb,omitempty"`
	Caption      string      `json:"caption,omitempty"`
	OwnerKey     string      `json:"ownerKey,omitempty"`
	OwnerHandle  string      `json:"ownerHandle,omitempty"`
	OwnerID      string      `json:"ownerId,omitempty"`
	PostTime     int64       `json:"post_time,omitempty"`
	ParentPostID string      `json:"parent_post_id,omitempty"`
	RootPostID   string      `json:"root_post_id,omitempty"`
	Snapshots    []*Snapshot `json:"snapshots"`
	LastSeen     int64       `json:"lastSeen"`
}

// applyMeta folds an event's display and identity metadata into the
// post. Returns true when anything changed.
func (p *Post) applyMeta(e *SnapshotEvent) bool {
	changed := false
	if p.URL == "" && e.URL != "" {
		p.URL = e.URL
		changed = true
	}
	if e.Thumb != "" && e.Thumb != p.Thumb {
		p.Thumb = e.Thumb
		changed = true
	}
	if e.Caption != "" && e.Caption != p.Caption {
		p.Caption = e.Caption
		changed = true
	}
	if p.OwnerKey == "" {
		if key := e.ResolveUserKey(); key != UnknownUserKey {
			p.OwnerKey = key
			changed = true
		}
	}
	if p.OwnerHandle == "" {
		if h := e.ResolvedHandle(); h != "" {
			p.OwnerHandle = h
			changed = true
		}
	}
	if p.OwnerID == "" {
		if id := e.ResolvedUserID(); id != "" {
			p.OwnerID = id
			changed = true
		}
	}
	if p.PostTime == 0 {
		if ct := e.CreationTime(); ct > 0 {
			p.PostTime = ct
			changed = true
		}
	}
	if p.ParentPostID == "" && e.ParentPostID != "" {
		p.ParentPostID = e.ParentPostID
		changed = true
	}
	if p.RootPostID == "" && e.RootPostID != "" {
		p.RootPostID = e.RootPostID
		changed = true
	}
	return changed
}

// appendSnapshot appends s unless it repeats the last stored snapshot's
// metric values. Returns true when appended.
func (p *Post) appendSnapshot(s *Snapshot) bool {
	if n := len(p.Snapshots); n > 0 && s.SameMetrics(p.Snapshots[n-1]) {
		return false
	}
	p.Snapshots = append(p.Snapshots, s)
	return true
}

// LastSnapshot returns the most recently appended snapshot, nil when the
// post has none.
func (p *Post) LastSnapshot() *Snapshot {
	if len(p.Snapshots) == 0 {
		return nil
	}
	return p.Snapshots[len(p.Snapshots)-1]
}

// Dead reports whether the post carries no usable observation: no
// snapshots at all, or only snapshots with every metric absent.
func (p *Post) Dead() bool {
	for _, s := range p.Snapshots {
		if !s.Empty() {
			return false
		}
	}
	return true
}

func (p *Post) clone() *Post {
	c := *p
	c.Snapshots = make([]*Snapshot, len(p.Snapshots))
	for i, s := range p.Snapshots {
		c.Snapshots[i] = s.clone()
	}
	return &c
}
