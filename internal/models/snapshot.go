package models

import "math"

// Snapshot is one observation of a post's metric values at a point in time.
// Metric fields are nil when the capture source did not broadcast them;
// zero is a valid observed value, distinct from absent.
type Snapshot struct {
	T          int64    `json:"t"`
	UV         *float64 `json:"uv"`
	Likes      *float64 `json:"likes"`
	Views      *float64 `json:"views"`
	Comments   *float64 `json:"comments"`
	RemixCount *float64 `json:"remix_count"`
}

// FollowerSample is one observation of a user's follower count.
type FollowerSample struct {
	T     int64   `json:"t"`
	Count float64 `json:"count"`
}

// SameMetrics reports whether every metric field matches o exactly,
// with nil comparing equal only to nil. Timestamps are ignored.
func (s *Snapshot) SameMetrics(o *Snapshot) bool {
	if o == nil {
		return false
	}
	return metricEq(s.UV, o.UV) &&
		metricEq(s.Likes, o.Likes) &&
		metricEq(s.Views, o.Views) &&
		metricEq(s.Comments, o.Comments) &&
		metricEq(s.RemixCount, o.RemixCount)
}

// Empty reports whether all five metric fields are absent.
func (s *Snapshot) Empty() bool {
	return s.UV == nil && s.Likes == nil && s.Views == nil &&
		s.Comments == nil && s.RemixCount == nil
}

func metricEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// finiteMetric drops NaN and infinite readings.
func finiteMetric(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

func copyMetric(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (s *Snapshot) clone() *Snapshot {
	return &Snapshot{
		T:          s.T,
		UV:         copyMetric(s.UV),
		Likes:      copyMetric(s.Likes),
		Views:      copyMetric(s.Views),
		Comments:   copyMetric(s.Comments),
		RemixCount: copyMetric(s.RemixCount),
	}
}
