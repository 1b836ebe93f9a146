package feed

import (
	"sort"
	"time"

	"github.com/oakline/banklink/internal/domain"
)

// Fixed bucket titles, displayed in this order ahead of month-year buckets.
const (
	TitleToday     = "Today"
	TitleYesterday = "Yesterday"
	TitleThisWeek  = "This Week"
	TitleThisMonth = "This Month"
)

// Entry is one transaction annotated with its direction relative to the
// feed's account, ready for rendering.
type Entry struct {
	domain.TransactionRecord
	Classification
}

// Bucket is a titled group of transactions sharing a date-relative
// category, newest first.
type Bucket struct {
	Title string  `json:"title"`
	Items []Entry `json:"items"`
}

// fixedOrder ranks the recency buckets ahead of calendar months. Recency
// labels stay first even though their ranges overlap the current month.
var fixedOrder = map[string]int{
	TitleToday:     0,
	TitleYesterday: 1,
	TitleThisWeek:  2,
	TitleThisMonth: 3,
}

// Group buckets entries by date relative to the current time.
func Group(entries []Entry) []Bucket {
	return GroupAt(entries, time.Now())
}

// GroupAt buckets entries by date relative to now. The reference time is
// captured once for the whole call so a render straddling midnight cannot
// split a bucket against itself. Entries with a zero date are excluded.
func GroupAt(entries []Entry, now time.Time) []Bucket {
	today := startOfDay(now)
	yesterday := today.AddDate(0, 0, -1)
	week := startOfWeek(now)

	type accum struct {
		bucket Bucket
		month  time.Time // zero for fixed-title buckets
	}
	groups := make(map[string]*accum)
	var order []string

	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		d := e.Date.In(now.Location())

		var title string
		var month time.Time
		switch {
		case sameDay(d, today):
			title = TitleToday
		case sameDay(d, yesterday):
			title = TitleYesterday
		case !startOfDay(d).Before(week) && startOfDay(d).Before(week.AddDate(0, 0, 7)):
			title = TitleThisWeek
		case d.Year() == now.Year() && d.Month() == now.Month():
			title = TitleThisMonth
		default:
			title = d.Format("January 2006")
			month = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, now.Location())
		}

		g, ok := groups[title]
		if !ok {
			g = &accum{bucket: Bucket{Title: title}, month: month}
			groups[title] = g
			order = append(order, title)
		}
		g.bucket.Items = append(g.bucket.Items, e)
	}

	// Newest first within each bucket; stable so equal timestamps keep
	// their input order.
	for _, g := range groups {
		items := g.bucket.Items
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Date.After(items[j].Date)
		})
	}

	sort.SliceStable(order, func(i, j int) bool {
		gi, gj := groups[order[i]], groups[order[j]]
		fi, iFixed := fixedOrder[order[i]]
		fj, jFixed := fixedOrder[order[j]]
		switch {
		case iFixed && jFixed:
			return fi < fj
		case iFixed:
			return true
		case jFixed:
			return false
		default:
			return gi.month.After(gj.month)
		}
	})

	out := make([]Bucket, 0, len(order))
	for _, title := range order {
		out = append(out, groups[title].bucket)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns midnight Monday of the week containing t.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
