package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emd/internal/models"
)

func TestScatterSeries_SkipsUndefinedRates(t *testing.T) {
	posts := []*models.Post{
		{ID: "a", Caption: "hello", Snapshots: []*models.Snapshot{
			{T: 1000, UV: metric(100), Likes: metric(5), Comments: metric(3)},
			{T: 2000, Likes: metric(5)},
			{T: 3000, UV: metric(0), Likes: metric(5)},
		}},
	}

	series := ScatterSeries(posts)
	require.Len(t, series, 1)
	assert.Equal(t, "a", series[0].ID)
	assert.Equal(t, "hello", series[0].Label)
	require.Len(t, series[0].Points, 1)
	assert.Equal(t, Point{X: 100, Y: 8, T: 1000}, series[0].Points[0])
}

func TestScatterSeries_LabelFallsBackToID(t *testing.T) {
	series := ScatterSeries([]*models.Post{{ID: "p1"}})
	require.Len(t, series, 1)
	assert.Equal(t, "p1", series[0].Label)
	assert.NotEmpty(t, series[0].Color)
}

func TestViewSeries_SortedByTime(t *testing.T) {
	posts := []*models.Post{
		{ID: "a", Snapshots: []*models.Snapshot{
			{T: 3000, Views: metric(30)},
			{T: 1000, Views: metric(10)},
			{T: 2000},
		}},
	}

	series := ViewSeries(posts)
	require.Len(t, series, 1)
	require.Len(t, series[0].Points, 2)
	assert.Equal(t, int64(1000), series[0].Points[0].T)
	assert.Equal(t, int64(3000), series[0].Points[1].T)
	assert.Equal(t, 10.0, series[0].Points[0].Y)
}

func TestCumulativeViews_MergesDeltas(t *testing.T) {
	posts := []*models.Post{
		{ID: "a", Snapshots: []*models.Snapshot{
			{T: 1000, Views: metric(10)},
			{T: 3000, Views: metric(30)},
		}},
		{ID: "b", Snapshots: []*models.Snapshot{
			{T: 2000, Views: metric(5)},
			{T: 4000, Views: metric(8)},
		}},
	}

	s := CumulativeViews(posts)
	assert.Equal(t, AllPostsID, s.ID)
	require.Len(t, s.Points, 4)
	assert.Equal(t, 10.0, s.Points[0].Y)
	assert.Equal(t, 15.0, s.Points[1].Y)
	assert.Equal(t, 35.0, s.Points[2].Y)
	assert.Equal(t, 38.0, s.Points[3].Y)
}

func TestCumulativeViews_UnchangedReadingsSkipped(t *testing.T) {
	posts := []*models.Post{
		{ID: "a", Snapshots: []*models.Snapshot{
			{T: 1000, Views: metric(10)},
			{T: 2000, Views: metric(10)},
			{T: 3000, Views: metric(12)},
		}},
	}

	s := CumulativeViews(posts)
	require.Len(t, s.Points, 2)
	assert.Equal(t, 10.0, s.Points[0].Y)
	assert.Equal(t, 12.0, s.Points[1].Y)
}

func TestCumulativeViews_NegativeDeltaPreserved(t *testing.T) {
	posts := []*models.Post{
		{ID: "a", Snapshots: []*models.Snapshot{
			{T: 1000, Views: metric(100)},
			{T: 2000, Views: metric(90)},
		}},
	}

	s := CumulativeViews(posts)
	require.Len(t, s.Points, 2)
	assert.Equal(t, 100.0, s.Points[0].Y)
	assert.Equal(t, 90.0, s.Points[1].Y)
}

func TestFollowerSeries(t *testing.T) {
	u := models.NewUser()
	u.Followers = []*models.FollowerSample{
		{T: 1000, Count: 500},
		{T: 2000, Count: 510},
	}

	s := FollowerSeries(u)
	require.Len(t, s.Points, 2)
	assert.Equal(t, 500.0, s.Points[0].Y)
	assert.Equal(t, 510.0, s.Points[1].Y)

	assert.Empty(t, FollowerSeries(nil).Points)
}

func TestSummarize(t *testing.T) {
	posts := []*models.Post{
		{ID: "a", Caption: "cap", PostTime: 123, LastSeen: 456, Snapshots: []*models.Snapshot{
			{T: 1000, UV: metric(100), Likes: metric(5), Comments: metric(3), Views: metric(50)},
		}},
		{ID: "b"},
	}

	rows := Summarize(posts)
	require.Len(t, rows, 2)

	assert.Equal(t, "cap", rows[0].Label)
	assert.Equal(t, int64(123), rows[0].PostTime)
	assert.Equal(t, 1, rows[0].Snapshots)
	require.NotNil(t, rows[0].InteractionRate)
	assert.Equal(t, 8.0, *rows[0].InteractionRate)

	assert.Equal(t, "b", rows[1].Label)
	assert.Nil(t, rows[1].Views)
	assert.Nil(t, rows[1].InteractionRate)
}
