package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emd/internal/models"
)

func TestReconcile_MovesReclaimsAndPrunes(t *testing.T) {
	s := NewMetricsService(serviceConfig(1000, 0))
	defer s.Dispose()

	s.AddEvents([]*models.SnapshotEvent{
		// Filed under s_a but explicitly owned by someone else.
		{UserKey: "s_a", PostID: "stray", UserHandle: "alice", UserID: "1", Ts: 1000, UV: metric(10)},
		// Post with data under the unknown bucket, owned by s_a's user.
		{UserID: "1", PostID: "lost", Ts: 1000, UV: metric(5)},
		// Post under s_a with nothing observed.
		{UserKey: "s_a", PostID: "hollow", Ts: 1000},
	})
	s.Flush()

	// The stray's owner fields resolved to s_a itself, so repoint them
	// manually through a restored state to simulate a capture mixup.
	st := s.GetState()
	st.Users["s_a"].Posts["stray"].OwnerKey = "s_b"
	st.Users["s_a"].Posts["stray"].OwnerHandle = ""
	st.Users["s_a"].Posts["stray"].OwnerID = ""
	st.Users["id:1"].Handle = "alice"
	lost := st.Users["id:1"].Posts["lost"]
	lost.OwnerKey = ""
	lost.OwnerHandle = ""
	lost.OwnerID = "9"
	st.Users[models.UnknownUserKey] = &models.User{Posts: map[string]*models.Post{"lost": lost}}
	delete(st.Users["id:1"].Posts, "lost")
	st.Users["id:1"].ID = "9"
	s.PutState(st)

	rep := s.Reconcile("id:1")
	assert.Equal(t, "id:1", rep.UserKey)
	assert.Equal(t, 1, rep.Reclaimed)
	assert.True(t, rep.Changed())

	rep = s.Reconcile("s_a")
	require.Len(t, rep.Moved, 1)
	assert.Equal(t, "s_b", rep.Moved[0].To)
	assert.Equal(t, 1, rep.Pruned)

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.PostsMoved)
	assert.Equal(t, int64(1), stats.PostsReclaimed)
	assert.Equal(t, int64(1), stats.PostsPruned)
}

func TestReconcile_NoChanges(t *testing.T) {
	s := NewMetricsService(serviceConfig(1000, 0))
	defer s.Dispose()

	s.AddEvent(&models.SnapshotEvent{UserKey: "s_a", UserHandle: "alice", PostID: "p1", Ts: 1000, UV: metric(10)})
	s.Flush()

	first := s.Reconcile("s_a")
	second := s.Reconcile("s_a")
	assert.False(t, second.Changed())
	_ = first
}

func TestReconcile_MissingUser(t *testing.T) {
	s := NewMetricsService(serviceConfig(1000, 0))
	defer s.Dispose()

	rep := s.Reconcile("nobody")
	assert.False(t, rep.Changed())
}
