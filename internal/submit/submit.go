// Package submit defines the submission workflow the form endpoint hands
// parsed submissions to.
package submit

import (
	"time"

	"github.com/rs/zerolog"
)

// Submitter submits one entry per half-day for every day from start to end
// inclusive. It reports whether every call succeeded. Calls may block for
// as long as the workflow needs.
type Submitter interface {
	SubmitWithin(memberID, pin string, start, end time.Time) bool
}

// Func adapts an ordinary function to Submitter.
type Func func(memberID, pin string, start, end time.Time) bool

func (f Func) SubmitWithin(memberID, pin string, start, end time.Time) bool {
	return f(memberID, pin, start, end)
}

// Days lists the calendar days from start to end inclusive. It is empty
// when end is before start.
func Days(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DryRun walks the range like a real workflow would but only logs the
// entries it would have sent. It always succeeds.
type DryRun struct {
	Log zerolog.Logger
}

func (d DryRun) SubmitWithin(memberID, pin string, start, end time.Time) bool {
	for _, day := range Days(start, end) {
		for _, meridies := range []string{"AM", "PM"} {
			d.Log.Info().
				Str("member", memberID).
				Str("date", day.Format("2006-01-02")).
				Str("meridies", meridies).
				Msg("dry-run submission")
		}
	}
	return true
}
