// Package logquery turns a user's stored activities into the bounded,
// ordered view returned by the log endpoint.
//
// A query runs three independent stages: a date-range filter, a stable sort
// by date (newest first), and truncation to a limit. Each absent parameter is
// an identity value rather than a special case: no lower bound is MinTime, no
// upper bound is MaxTime, and no limit is a limit of 0. Every stage therefore
// always runs and none of them needs to know which parameters were supplied.
package logquery

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/exercise-tracker/internal/model"
)

// The earliest and latest instants a log date may take, ±8.64e15 ms around
// the Unix epoch. They stand in for "beginning of time" and "end of time".
var (
	MinTime = time.UnixMilli(-8_640_000_000_000_000).UTC()
	MaxTime = time.UnixMilli(8_640_000_000_000_000).UTC()
)

// Query is a fully resolved log query. Both bounds are inclusive. A Limit of
// zero or less keeps every matching activity.
type Query struct {
	From  time.Time
	To    time.Time
	Limit int
}

// Unbounded returns the query that selects the whole log.
func Unbounded() Query {
	return Query{From: MinTime, To: MaxTime}
}

// Params are the raw query-string values of a log request.
type Params struct {
	From  string
	To    string
	Limit string
}

// Query resolves raw parameters. Parsing is permissive: a from/to value that
// is missing or not a date leaves that side of the range open, and a limit
// that is missing, not an integer, zero or negative disables truncation.
func (p Params) Query() Query {
	q := Unbounded()
	if from, ok := model.ParseDate(p.From); ok {
		q.From = from
	}
	if to, ok := model.ParseDate(p.To); ok {
		q.To = to
	}
	q.Limit = ParseLimit(p.Limit)
	return q
}

// ParseLimit returns the positive integer in raw, or 0.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Apply runs filter, sort and truncate over activities. The input slice is
// never modified.
func (q Query) Apply(activities []model.Activity) []model.Activity {
	selected := Filter(activities, q.From, q.To)
	SortByDateDesc(selected)
	return Truncate(selected, q.Limit)
}

// Run applies q to the user's log and builds the counted view.
func Run(user *model.User, q Query) *model.LogView {
	log := q.Apply(user.Activities)
	return &model.LogView{
		ID:       user.ID,
		Username: user.Username,
		Count:    len(log),
		Log:      log,
	}
}

// Filter returns a new slice holding the activities dated within
// [from, to], in their original order.
func Filter(activities []model.Activity, from, to time.Time) []model.Activity {
	selected := make([]model.Activity, 0, len(activities))
	for _, a := range activities {
		if a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		selected = append(selected, a)
	}
	return selected
}

// SortByDateDesc orders activities newest first in place. Activities with
// equal dates keep their relative order.
func SortByDateDesc(activities []model.Activity) {
	slices.SortStableFunc(activities, func(a, b model.Activity) int {
		return b.Date.Compare(a.Date)
	})
}

// Truncate keeps the first limit activities. A limit of zero or less, or one
// at least as long as the slice, returns activities unchanged.
func Truncate(activities []model.Activity, limit int) []model.Activity {
	if limit <= 0 || limit >= len(activities) {
		return activities
	}
	return activities[:limit:limit]
}
