package papertrail

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DateAddedLayout is the layout of Paper.DateAdded: an ISO 8601 timestamp
// in UTC with millisecond precision.
const DateAddedLayout = "2006-01-02T15:04:05.000Z"

// Paper is the only persisted entity. It is keyed by ID.
type Paper struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Summary   string   `json:"summary"`
	Published string   `json:"published"`
	DateAdded string   `json:"dateAdded"`
}

// Validate checks that every field is populated. A paper that does not
// validate is never written to the store.
func (p Paper) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Authors, validation.Required, validation.Each(validation.Required)),
		validation.Field(&p.Summary, validation.Required),
		validation.Field(&p.Published, validation.Required),
		validation.Field(&p.DateAdded, validation.Required),
	)
}

// Stamp returns a copy of p with DateAdded set to t.
func (p Paper) Stamp(t time.Time) Paper {
	p.DateAdded = t.UTC().Format(DateAddedLayout)
	return p
}

// Lookup fields, i.e. the secondary lookup paths of the store.
const (
	FieldTitle     = "title"
	FieldAuthors   = "authors"
	FieldSummary   = "summary"
	FieldPublished = "published"
	FieldDateAdded = "dateAdded"
)

// LookupFields lists the fields that can be used in a Lookup.
var LookupFields = []string{
	FieldTitle,
	FieldAuthors,
	FieldSummary,
	FieldPublished,
	FieldDateAdded,
}

// Lookup is a query on one secondary lookup path. Text fields (title and
// summary) match on a phrase, the others on the exact value.
type Lookup struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Validate checks that the field is a lookup field and the value is set.
func (l Lookup) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Field, validation.Required, validation.In(FieldTitle, FieldAuthors, FieldSummary, FieldPublished, FieldDateAdded)),
		validation.Field(&l.Value, validation.Required),
	)
}

// RecordStore is the single-table store of papers.
type RecordStore interface {
	GetAll(ctx context.Context) ([]Paper, error)
	Get(ctx context.Context, id string) (Paper, error)
	Put(ctx context.Context, paper Paper) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, lookup Lookup) ([]Paper, error)
}

// MetadataFetcher retrieves the metadata of a paper from a remote source.
// The returned paper has every field set except DateAdded.
type MetadataFetcher interface {
	Fetch(ctx context.Context, id string) (Paper, error)
}
