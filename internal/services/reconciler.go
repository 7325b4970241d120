package services

import "emd/internal/models"

// ReconcileReport summarizes one reconciliation pass over a user bucket.
type ReconcileReport struct {
	UserKey   string             `json:"userKey"`
	Moved     []models.MovedPost `json:"moved,omitempty"`
	Reclaimed int                `json:"reclaimed"`
	Pruned    int                `json:"pruned"`
}

func (r ReconcileReport) Changed() bool {
	return len(r.Moved) > 0 || r.Reclaimed > 0 || r.Pruned > 0
}

// Reconcile repairs one user bucket in place: posts filed under the
// wrong owner move out, matching posts in the unknown bucket move in,
// and posts with no usable data are pruned. The whole pass runs under
// the ops mutex so it cannot interleave with a flush. Idempotent: a
// second pass over a reconciled bucket reports no changes.
func (s *MetricsService) Reconcile(userKey string) ReconcileReport {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	rep := ReconcileReport{UserKey: userKey}
	rep.Moved = s.store.ReconcileMismatched(userKey)
	rep.Reclaimed = s.store.ReclaimFromUnknown(userKey)
	rep.Pruned = s.store.PruneEmpty(userKey)

	s.postsMoved.Add(int64(len(rep.Moved)))
	s.postsReclaimed.Add(int64(rep.Reclaimed))
	s.postsPruned.Add(int64(rep.Pruned))
	return rep
}
