// Package snapshot turns observed submissions into sample records and appends
// them to durable logs.
package snapshot

import (
	"strconv"
	"time"

	"github.com/ethpandaops/resampler/internal/reddit"
)

// Header is the column layout of both logs.
var Header = []string{
	"comment_karma",
	"link_karma",
	"time_retrieved_utc",
	"minutes",
	"id",
	"author",
	"score",
	"title",
	"selftext",
	"_comments_by_id",
	"created_utc",
	"num_comments",
	"num_crossposts",
	"over_18",
	"permalink",
	"url",
	"subreddit",
	"subreddit_id",
	"subreddit_subscribers",
	"stickied",
	"gilded",
	"is_self",
}

// Record is one observation of a submission. Records are never modified once
// appended.
type Record struct {
	CommentKarma *int // Only set on first-seen records
	LinkKarma    *int // Only set on first-seen records

	TimeRetrieved time.Time
	Minutes       int // Offset that triggered the sample, 0 when first seen

	ID                   string
	Author               string
	Score                int
	Title                string
	Body                 string
	CommentsByID         string
	CreatedUTC           float64
	NumComments          int
	NumCrossposts        int
	Over18               bool
	Permalink            string
	URL                  string
	Subreddit            string
	SubredditID          string
	SubredditSubscribers int
	Stickied             bool
	Gilded               int
	IsSelf               bool
}

// FromSubmission maps a submission field by field. karma may be nil.
func FromSubmission(sub *reddit.Submission, karma *reddit.Karma, retrieved time.Time, minutes int) Record {
	rec := Record{
		TimeRetrieved:        retrieved,
		Minutes:              minutes,
		ID:                   sub.ID,
		Author:               sub.Author,
		Score:                sub.Score,
		Title:                sub.Title,
		Body:                 sub.Selftext,
		CommentsByID:         "{}",
		CreatedUTC:           sub.CreatedUTC,
		NumComments:          sub.NumComments,
		NumCrossposts:        sub.NumCrossposts,
		Over18:               sub.Over18,
		Permalink:            sub.Permalink,
		URL:                  sub.URL,
		Subreddit:            sub.Subreddit,
		SubredditID:          sub.SubredditID,
		SubredditSubscribers: sub.SubredditSubscribers,
		Stickied:             sub.Stickied,
		Gilded:               sub.Gilded,
		IsSelf:               sub.IsSelf,
	}

	if karma != nil {
		comment, link := karma.CommentKarma, karma.LinkKarma
		rec.CommentKarma = &comment
		rec.LinkKarma = &link
	}

	return rec
}

// Row renders the record in Header order.
func (r Record) Row() []string {
	return []string{
		optionalInt(r.CommentKarma),
		optionalInt(r.LinkKarma),
		strconv.FormatInt(r.TimeRetrieved.Unix(), 10),
		strconv.Itoa(r.Minutes),
		r.ID,
		r.Author,
		strconv.Itoa(r.Score),
		r.Title,
		r.Body,
		r.CommentsByID,
		strconv.FormatFloat(r.CreatedUTC, 'f', -1, 64),
		strconv.Itoa(r.NumComments),
		strconv.Itoa(r.NumCrossposts),
		strconv.FormatBool(r.Over18),
		r.Permalink,
		r.URL,
		r.Subreddit,
		r.SubredditID,
		strconv.Itoa(r.SubredditSubscribers),
		strconv.FormatBool(r.Stickied),
		strconv.Itoa(r.Gilded),
		strconv.FormatBool(r.IsSelf),
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}

	return strconv.Itoa(*v)
}
