package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metric(v float64) *float64 { return &v }

func TestMergeEvent_CreatesUserAndPost(t *testing.T) {
	s := NewStore()

	res, err := s.MergeEvent(&SnapshotEvent{
		UserKey: "s_abc",
		PostID:  "p1",
		Ts:      1000,
		UV:      metric(10),
		Likes:   metric(2),
	})
	require.NoError(t, err)
	assert.True(t, res.UserCreated)
	assert.True(t, res.PostCreated)
	assert.True(t, res.SnapshotAppended)

	u, ok := s.UserCopy("s_abc")
	require.True(t, ok)
	require.Contains(t, u.Posts, "p1")
	require.Len(t, u.Posts["p1"].Snapshots, 1)
	assert.Equal(t, int64(1000), u.Posts["p1"].Snapshots[0].T)
	assert.Equal(t, 10.0, *u.Posts["p1"].Snapshots[0].UV)
}

func TestMergeEvent_Idempotent(t *testing.T) {
	s := NewStore()
	e := &SnapshotEvent{
		UserKey:   "s_abc",
		PostID:    "p1",
		Ts:        1000,
		UV:        metric(10),
		Likes:     metric(2),
		Followers: metric(500),
	}

	first, err := s.MergeEvent(e)
	require.NoError(t, err)
	assert.True(t, first.Changed())

	second, err := s.MergeEvent(e)
	require.NoError(t, err)
	assert.False(t, second.Changed())

	u, _ := s.UserCopy("s_abc")
	assert.Len(t, u.Posts["p1"].Snapshots, 1)
	assert.Len(t, u.Followers, 1)
}

func TestMergeEvent_SnapshotDedupAgainstLastOnly(t *testing.T) {
	s := NewStore()

	_, err := s.MergeEvent(&SnapshotEvent{UserKey: "u", PostID: "p1", Ts: 1000, UV: metric(10)})
	require.NoError(t, err)
	_, err = s.MergeEvent(&SnapshotEvent{UserKey: "u", PostID: "p1", Ts: 2000, UV: metric(20)})
	require.NoError(t, err)

	// Same values as the first snapshot, but not as the last: appended.
	res, err := s.MergeEvent(&SnapshotEvent{UserKey: "u", PostID: "p1", Ts: 3000, UV: metric(10)})
	require.NoError(t, err)
	assert.True(t, res.SnapshotAppended)

	u, _ := s.UserCopy("u")
	assert.Len(t, u.Posts["p1"].Snapshots, 3)
}

func TestMergeEvent_NilMetricDistinctFromZero(t *testing.T) {
	s := NewStore()

	_, err := s.MergeEvent(&SnapshotEvent{UserKey: "u", PostID: "p1", Ts: 1000, Likes: metric(0)})
	require.NoError(t, err)
	res, err := s.MergeEvent(&SnapshotEvent{UserKey: "u", PostID: "p1", Ts: 2000})
	require.NoError(t, err)
	assert.True(t, res.SnapshotAppended)

	u, _ := s.UserCopy("u")
	require.Len(t, u.Posts["p1"].Snapshots, 2)
	assert.Equal(t, 0.0, *u.Posts["p1"].Snapshots[0].Likes)
	assert.Nil(t, u.Posts["p1"].Snapshots[1].Likes)
}

func TestMergeEvent_LastSeenAlwaysAdvances(t *testing.T) {
	s := NewStore()

	_, err := s.MergeEvent(&SnapshotEvent{UserKey: "u", PostID: "p1", Ts: 1000, UV: metric(10)})
	require.NoError(t, err)
	// Duplicate metrics: no snapshot, but the post was still seen.
	_, err = s.MergeEvent(&SnapshotEvent{UserKey: "u", PostID: "p1", Ts: 3000, UV: metric(10)})
	require.NoError(t, err)

	u, _ := s.UserCopy("u")
	require.Len(t, u.Posts["p1"].Snapshots, 1)
	assert.Equal(t, int64(3000), u.Posts["p1"].LastSeen)
}

func TestMergeEvent_FollowerDedup(t *testing.T) {
	s := NewStore()

	for i, count := range []float64{500, 500, 510, 510, 500} {
		_, err := s.MergeEvent(&SnapshotEvent{
			UserKey:   "u",
			Ts:        int64(1000 * (i + 1)),
			Followers: metric(count),
		})
		require.NoError(t, err)
	}

	u, _ := s.UserCopy("u")
	require.Len(t, u.Followers, 3)
	assert.Equal(t, 500.0, u.Followers[0].Count)
	assert.Equal(t, 510.0, u.Followers[1].Count)
	assert.Equal(t, 500.0, u.Followers[2].Count)
}

func TestMergeEvent_NonFiniteMetricsDropped(t *testing.T) {
	s := NewStore()
	nan := 0.0
	nan /= nan

	_, err := s.MergeEvent(&SnapshotEvent{UserKey: "u", PostID: "p1", Ts: 1000, UV: &nan, Likes: metric(3)})
	require.NoError(t, err)

	u, _ := s.UserCopy("u")
	snap := u.Posts["p1"].Snapshots[0]
	assert.Nil(t, snap.UV)
	assert.Equal(t, 3.0, *snap.Likes)
}

func TestMergeEvent_UnusableEvent(t *testing.T) {
	s := NewStore()

	_, err := s.MergeEvent(&SnapshotEvent{Ts: 1000, UV: metric(10)})
	assert.ErrorIs(t, err, ErrUnusableEvent)

	_, err = s.MergeEvent(nil)
	assert.ErrorIs(t, err, ErrUnusableEvent)

	assert.Equal(t, 0, s.UserCount())
}

func TestMergeEvent_FollowerOnlyEventNeedsResolvableUser(t *testing.T) {
	s := NewStore()

	// Attributable follower reading without a post is usable.
	res, err := s.MergeEvent(&SnapshotEvent{UserHandle: "alice", Ts: 1000, Followers: metric(42)})
	require.NoError(t, err)
	assert.True(t, res.FollowerAppended)

	u, ok := s.UserCopy("h:alice")
	require.True(t, ok)
	assert.Equal(t, "alice", u.Handle)

	// Unattributable one is not.
	_, err = s.MergeEvent(&SnapshotEvent{Ts: 2000, Followers: metric(42)})
	assert.ErrorIs(t, err, ErrUnusableEvent)
}

func TestMergeEvent_RemixesFallback(t *testing.T) {
	s := NewStore()

	_, err := s.MergeEvent(&SnapshotEvent{UserKey: "u", PostID: "p1", Ts: 1000, Remixes: metric(7)})
	require.NoError(t, err)
	_, err = s.MergeEvent(&SnapshotEvent{UserKey: "u", PostID: "p2", Ts: 1000, Remixes: metric(7), RemixCount: metric(9)})
	require.NoError(t, err)

	u, _ := s.UserCopy("u")
	assert.Equal(t, 7.0, *u.Posts["p1"].Snapshots[0].RemixCount)
	assert.Equal(t, 9.0, *u.Posts["p2"].Snapshots[0].RemixCount)
}

func TestMergeEvent_EndToEndScenario(t *testing.T) {
	s := NewStore()

	events := []*SnapshotEvent{
		{UserKey: "s_abc", UserHandle: "abc", PostID: "p1", URL: "https://example.com/p1", Ts: 1000, UV: metric(100), Likes: metric(5), Followers: metric(500)},
		{UserKey: "s_abc", PostID: "p1", Ts: 2000, UV: metric(120), Likes: metric(5), Followers: metric(500)},
		{UserKey: "s_abc", PostID: "p1", Ts: 3000, UV: metric(120), Likes: metric(5), Followers: metric(500)},
	}
	for _, e := range events {
		_, err := s.MergeEvent(e)
		require.NoError(t, err)
	}

	u, ok := s.UserCopy("s_abc")
	require.True(t, ok)
	assert.Equal(t, "abc", u.Handle)
	require.Contains(t, u.Posts, "p1")

	p := u.Posts["p1"]
	require.Len(t, p.Snapshots, 2)
	assert.Equal(t, int64(1000), p.Snapshots[0].T)
	assert.Equal(t, int64(2000), p.Snapshots[1].T)
	assert.Equal(t, 120.0, *p.Snapshots[1].UV)
	assert.Equal(t, int64(3000), p.LastSeen)
	assert.Equal(t, "https://example.com/p1", p.URL)

	require.Len(t, u.Followers, 1)
	assert.Equal(t, 500.0, u.Followers[0].Count)
}

func TestMergeEvent_MetaFirstWriteAndOverwrite(t *testing.T) {
	s := NewStore()

	_, err := s.MergeEvent(&SnapshotEvent{
		UserKey: "u", PostID: "p1", Ts: 1000,
		URL: "https://a", Caption: "first", Thumb: "t1", CreatedAt: 123456.0,
	})
	require.NoError(t, err)

	_, err = s.MergeEvent(&SnapshotEvent{
		UserKey: "u", PostID: "p1", Ts: 2000,
		URL: "https://b", Caption: "second", Thumb: "t2", CreatedAt: 999999.0,
	})
	require.NoError(t, err)

	u, _ := s.UserCopy("u")
	p := u.Posts["p1"]
	assert.Equal(t, "https://a", p.URL)
	assert.Equal(t, int64(123456), p.PostTime)
	assert.Equal(t, "second", p.Caption)
	assert.Equal(t, "t2", p.Thumb)
}

func TestUserCopy_IsDeep(t *testing.T) {
	s := NewStore()
	_, err := s.MergeEvent(&SnapshotEvent{UserKey: "u", PostID: "p1", Ts: 1000, UV: metric(10)})
	require.NoError(t, err)

	u, _ := s.UserCopy("u")
	*u.Posts["p1"].Snapshots[0].UV = 999
	u.Posts["p1"].Caption = "mutated"

	fresh, _ := s.UserCopy("u")
	assert.Equal(t, 10.0, *fresh.Posts["p1"].Snapshots[0].UV)
	assert.Empty(t, fresh.Posts["p1"].Caption)
}

func TestPutUsers_RepairsShapes(t *testing.T) {
	s := NewStore()
	s.PutUsers(map[string]*User{
		"u": {Posts: map[string]*Post{"p1": {}}},
		"v": {},
	})

	u, ok := s.UserCopy("u")
	require.True(t, ok)
	assert.Equal(t, "p1", u.Posts["p1"].ID)

	v, ok := s.UserCopy("v")
	require.True(t, ok)
	assert.NotNil(t, v.Posts)
}

func TestStoreCounts(t *testing.T) {
	s := NewStore()
	_, _ = s.MergeEvent(&SnapshotEvent{UserKey: "a", PostID: "p1", Ts: 1})
	_, _ = s.MergeEvent(&SnapshotEvent{UserKey: "a", PostID: "p2", Ts: 2})
	_, _ = s.MergeEvent(&SnapshotEvent{UserKey: "b", PostID: "p3", Ts: 3})

	assert.Equal(t, 2, s.UserCount())
	assert.Equal(t, 3, s.PostCount())
	assert.ElementsMatch(t, []string{"a", "b"}, s.UserKeys())
}
