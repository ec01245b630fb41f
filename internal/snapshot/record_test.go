package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/resampler/internal/reddit"
)

func testSubmission() *reddit.Submission {
	return &reddit.Submission{
		ID:                   "abc123",
		Name:                 "t3_abc123",
		Author:               "alice",
		Score:                42,
		Title:                "A title, with a comma",
		Selftext:             "line one\nline two",
		CreatedUTC:           1700000000,
		NumComments:          7,
		NumCrossposts:        1,
		Over18:               false,
		Permalink:            "/r/pics/comments/abc123/a_title/",
		URL:                  "https://i.example.com/abc.jpg",
		Subreddit:            "pics",
		SubredditID:          "t5_2qh0u",
		SubredditSubscribers: 30000000,
		Stickied:             false,
		Gilded:               2,
		IsSelf:               false,
	}
}

func TestFromSubmission_FirstSeen(t *testing.T) {
	retrieved := time.Date(2023, 11, 14, 22, 13, 30, 0, time.UTC)

	rec := FromSubmission(testSubmission(), &reddit.Karma{CommentKarma: 10, LinkKarma: 20}, retrieved, 0)

	require.Len(t, rec.Row(), len(Header))
	assert.Equal(t, []string{
		"10", "20", "1700000010", "0",
		"abc123", "alice", "42", "A title, with a comma", "line one\nline two", "{}",
		"1700000000", "7", "1", "false",
		"/r/pics/comments/abc123/a_title/", "https://i.example.com/abc.jpg",
		"pics", "t5_2qh0u", "30000000", "false", "2", "false",
	}, rec.Row())
}

func TestFromSubmission_ResampleHasNoKarma(t *testing.T) {
	rec := FromSubmission(testSubmission(), nil, time.Unix(1700000300, 0), 5)

	row := rec.Row()
	assert.Equal(t, "", row[0])
	assert.Equal(t, "", row[1])
	assert.Equal(t, "5", row[3])
	assert.Nil(t, rec.CommentKarma)
}

func TestFileName(t *testing.T) {
	started := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)

	assert.Equal(t, "stream_pics+aww_2024-03-09_070501.csv", FileName(FirstSeen, "pics+aww", started))
	assert.Equal(t, "score_pics+aww_2024-03-09_070501.csv", FileName(Resample, "pics+aww", started))
}
