//nolint:tagliatelle // reddit API field names.
package reddit

import (
	"context"
	"math"
	"time"
)

// MaxInfoBatch is the largest number of fullnames /api/info accepts at once.
const MaxInfoBatch = 100

// Submission is a link or self post as returned by listing endpoints.
type Submission struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"` // Fullname, e.g. t3_abc123
	Author               string  `json:"author"`
	Score                int     `json:"score"`
	Title                string  `json:"title"`
	Selftext             string  `json:"selftext"`
	CreatedUTC           float64 `json:"created_utc"`
	NumComments          int     `json:"num_comments"`
	NumCrossposts        int     `json:"num_crossposts"`
	Over18               bool    `json:"over_18"`
	Permalink            string  `json:"permalink"`
	URL                  string  `json:"url"`
	Subreddit            string  `json:"subreddit"`
	SubredditID          string  `json:"subreddit_id"`
	SubredditSubscribers int     `json:"subreddit_subscribers"`
	Stickied             bool    `json:"stickied"`
	Gilded               int     `json:"gilded"`
	IsSelf               bool    `json:"is_self"`
}

// Created returns the creation time in UTC.
func (s *Submission) Created() time.Time {
	sec, frac := math.Modf(s.CreatedUTC)

	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}

// Fullname returns the thing fullname, deriving it from the id if the API
// omitted it.
func (s *Submission) Fullname() string {
	if s.Name != "" {
		return s.Name
	}

	return "t3_" + s.ID
}

// Karma holds an author's reputation fields.
type Karma struct {
	CommentKarma int `json:"comment_karma"`
	LinkKarma    int `json:"link_karma"`
}

// Stream yields newly created submissions of a feed-group.
type Stream interface {
	Next(ctx context.Context) (*Submission, error)
}

// Authors resolves author reputation.
type Authors interface {
	Karma(ctx context.Context, name string) (*Karma, error)
}

// Lookup resolves fullnames to their current attributes in one request. The
// result is aligned with refs; a nil element means the remote returned nothing
// for that fullname.
type Lookup interface {
	Info(ctx context.Context, refs []string) ([]*Submission, error)
}

type thing[T any] struct {
	Kind string `json:"kind"`
	Data T      `json:"data"`
}

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []thing[Submission] `json:"children"`
		After    string              `json:"after"`
		Before   string              `json:"before"`
	} `json:"data"`
}

type account struct {
	Name         string `json:"name"`
	IsSuspended  bool   `json:"is_suspended"`
	CommentKarma *int   `json:"comment_karma"`
	LinkKarma    *int   `json:"link_karma"`
}
