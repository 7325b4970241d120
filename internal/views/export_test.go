package views

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emd/internal/models"
)

func TestWriteCSV(t *testing.T) {
	posts := []*models.Post{
		{ID: "p1", Snapshots: []*models.Snapshot{
			{T: 1000, UV: metric(100), Likes: metric(5), Views: metric(50), Comments: metric(3)},
			{T: 2000, Likes: metric(6)},
		}},
		{ID: "p2", Snapshots: []*models.Snapshot{
			{T: 3000, UV: metric(3), Likes: metric(1), Views: metric(10)},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, posts))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"post_id", "timestamp", "unique", "likes", "views", "interaction_rate"}, rows[0])
	assert.Equal(t, []string{"p1", "1000", "100", "5", "50", "8.0000"}, rows[1])
	// Absent metrics and an undefined rate render as empty cells.
	assert.Equal(t, []string{"p1", "2000", "", "6", "", ""}, rows[2])
	assert.Equal(t, []string{"p2", "3000", "3", "1", "10", "33.3333"}, rows[3])
}

func TestWriteCSV_NoPosts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
