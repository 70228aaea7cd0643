package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
	"github.com/puravparab/PaperTrail/gateway"
)

// Columns the dashboard can be sorted by. They are the json names of the
// paper fields.
const (
	ColumnID        = "id"
	ColumnTitle     = "title"
	ColumnAuthors   = "authors"
	ColumnSummary   = "summary"
	ColumnPublished = "published"
	ColumnDateAdded = "dateAdded"
)

var Columns = []string{
	ColumnID,
	ColumnTitle,
	ColumnAuthors,
	ColumnSummary,
	ColumnPublished,
	ColumnDateAdded,
}

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// dateLayouts are tried in order when comparing date columns.
var dateLayouts = []string{
	time.RFC3339Nano,
	papertrail.DateAddedLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-1-2T15:04:05Z07:00",
	"2006-1-2",
}

// Dashboard holds the papers loaded from the gateway along with the current
// filter and sort. It is not safe for concurrent use.
type Dashboard struct {
	papers []papertrail.Paper

	query     string
	column    string
	direction Direction
}

// Load requests the saved papers once.
func Load(ctx context.Context, s gateway.Sender) (*Dashboard, error) {
	papers, err := gateway.SavedPapers(ctx, s)
	if err != nil {
		return nil, errors.New("error retrieving saved papers", errors.WithCause(err))
	}
	return New(papers), nil
}

func New(papers []papertrail.Paper) *Dashboard {
	return &Dashboard{papers: papers}
}

// Papers returns the full, unfiltered and unsorted, set.
func (d *Dashboard) Papers() []papertrail.Paper {
	return append([]papertrail.Paper{}, d.papers...)
}

// Filter keeps the papers whose id, title, summary or one of the authors
// contains q, ignoring case. An empty q keeps everything.
func (d *Dashboard) Filter(q string) {
	d.query = strings.TrimSpace(q)
}

// SortBy sorts on column, ascending. Sorting again on the same column flips
// the direction.
func (d *Dashboard) SortBy(column string) error {
	if !isColumn(column) {
		return errors.New(fmt.Sprintf("unknown column %q", column), errors.BadRequest())
	}

	if d.column == column {
		if d.direction == Ascending {
			d.direction = Descending
		} else {
			d.direction = Ascending
		}
		return nil
	}

	d.column = column
	d.direction = Ascending
	return nil
}

// Sort returns the current sort column, empty if unsorted, and direction.
func (d *Dashboard) Sort() (string, Direction) {
	return d.column, d.direction
}

// Rows returns the filtered papers in the current order.
func (d *Dashboard) Rows() []papertrail.Paper {
	rows := make([]papertrail.Paper, 0, len(d.papers))
	for _, paper := range d.papers {
		if matches(paper, d.query) {
			rows = append(rows, paper)
		}
	}

	if d.column == "" {
		return rows
	}

	if d.column == ColumnPublished || d.column == ColumnDateAdded {
		sortByDate(rows, d.column, d.direction)
	} else {
		sortByString(rows, d.column, d.direction)
	}
	return rows
}

func matches(paper papertrail.Paper, q string) bool {
	if q == "" {
		return true
	}

	fold := cases.Fold()
	q = fold.String(q)
	contains := func(s string) bool {
		return strings.Contains(fold.String(s), q)
	}

	if contains(paper.ID) || contains(paper.Title) || contains(paper.Summary) {
		return true
	}
	for _, author := range paper.Authors {
		if contains(author) {
			return true
		}
	}
	return false
}

func sortByString(rows []papertrail.Paper, column string, dir Direction) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := value(rows[i], column), value(rows[j], column)
		if dir == Descending {
			return a > b
		}
		return a < b
	})
}

// sortByDate compares parsed timestamps. Values that cannot be parsed go
// last whatever the direction.
func sortByDate(rows []papertrail.Paper, column string, dir Direction) {
	type keyed struct {
		paper papertrail.Paper
		t     time.Time
		ok    bool
	}

	keys := make([]keyed, len(rows))
	for i, paper := range rows {
		t, ok := ParseDate(value(paper, column))
		keys[i] = keyed{paper: paper, t: t, ok: ok}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		switch {
		case !a.ok || !b.ok:
			return a.ok && !b.ok
		case dir == Descending:
			return a.t.After(b.t)
		default:
			return a.t.Before(b.t)
		}
	})

	for i, k := range keys {
		rows[i] = k.paper
	}
}

// ParseDate parses the dates found in papers, from full ISO 8601 timestamps
// down to dates with unpadded month and day such as 2024-2-1.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func value(paper papertrail.Paper, column string) string {
	switch column {
	case ColumnID:
		return paper.ID
	case ColumnTitle:
		return paper.Title
	case ColumnAuthors:
		return strings.Join(paper.Authors, ", ")
	case ColumnSummary:
		return paper.Summary
	case ColumnPublished:
		return paper.Published
	case ColumnDateAdded:
		return paper.DateAdded
	}
	return ""
}

func isColumn(column string) bool {
	for _, c := range Columns {
		if c == column {
			return true
		}
	}
	return false
}
