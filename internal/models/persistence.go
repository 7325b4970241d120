package models

// DurationOverride is the user-selected replacement for the duration
// parameter on outgoing creation requests. At most one is active.
type DurationOverride struct {
	Seconds float64 `json:"seconds"`
	Frames  int     `json:"frames"`
	SetAt   int64   `json:"setAt"`
}

// ZoomRange is one chart axis zoom window.
type ZoomRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// State is the V2 persistence envelope: the whole metrics graph plus the
// small dashboard preference keys, written and read as one object.
// V1 files (bare {"users": ...} with no version field) unmarshal into
// this struct with zero-value preferences, enabling seamless migration.
type State struct {
	Version          int                             `json:"version"`
	Users            map[string]*User                `json:"users"`
	LastUserKey      string                          `json:"lastUserKey,omitempty"`
	VisibilityByUser map[string][]string             `json:"visibilityByUser,omitempty"`
	ZoomStates       map[string]map[string]ZoomRange `json:"zoomStates,omitempty"`
	Override         *DurationOverride               `json:"durationOverride,omitempty"`
}

// StateVersion is the current envelope version.
const StateVersion = 2
