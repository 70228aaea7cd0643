package bleve

import (
	"fmt"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/analysis/lang/en"
	"github.com/blevesearch/bleve/mapping"
	"github.com/blevesearch/bleve/search/query"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
)

// PaperIndex holds the secondary lookup paths of the papers: title and
// summary as english text, authors, published and dateAdded as keywords.
type PaperIndex struct {
	index bleve.Index
}

// NewMapping returns the index mapping of a paper document.
func NewMapping() *mapping.IndexMappingImpl {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = en.AnalyzerName

	kw := bleve.NewTextFieldMapping()
	kw.Analyzer = keyword.Name

	dm := bleve.NewDocumentMapping()
	dm.Dynamic = false
	dm.AddFieldMappingsAt(papertrail.FieldTitle, text)
	dm.AddFieldMappingsAt(papertrail.FieldSummary, text)
	dm.AddFieldMappingsAt(papertrail.FieldAuthors, kw)
	dm.AddFieldMappingsAt(papertrail.FieldPublished, kw)
	dm.AddFieldMappingsAt(papertrail.FieldDateAdded, kw)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = dm
	return m
}

// Open opens the index stored at path, creating it on first use.
func (s *PaperIndex) Open(path string) error {
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, NewMapping())
	}
	if err != nil {
		return err
	}

	s.index = index
	return nil
}

// OpenMemory creates an index that lives in memory only.
func (s *PaperIndex) OpenMemory() error {
	index, err := bleve.NewMemOnly(NewMapping())
	if err != nil {
		return err
	}

	s.index = index
	return nil
}

func (s *PaperIndex) Close() error {
	if s.index == nil {
		return nil
	}

	err := s.index.Close()
	s.index = nil
	return err
}

func (s *PaperIndex) Index(paper papertrail.Paper) error {
	data := map[string]interface{}{
		papertrail.FieldTitle:     paper.Title,
		papertrail.FieldAuthors:   paper.Authors,
		papertrail.FieldSummary:   paper.Summary,
		papertrail.FieldPublished: paper.Published,
		papertrail.FieldDateAdded: paper.DateAdded,
	}

	return s.index.Index(paper.ID, data)
}

func (s *PaperIndex) Delete(id string) error {
	return s.index.Delete(id)
}

// Search returns the ids of the papers matching the lookup, ordered by id.
func (s *PaperIndex) Search(lookup papertrail.Lookup) ([]string, error) {
	q, err := lookupQuery(lookup)
	if err != nil {
		return nil, err
	}

	count, err := s.index.DocCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []string{}, nil
	}

	searchRequest := bleve.NewSearchRequestOptions(q, int(count), 0, false)
	searchRequest.SortBy([]string{"_id"})

	searchResults, err := s.index.Search(searchRequest)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(searchResults.Hits))
	for i, hit := range searchResults.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

func lookupQuery(lookup papertrail.Lookup) (query.Query, error) {
	switch lookup.Field {
	case papertrail.FieldTitle, papertrail.FieldSummary:
		q := bleve.NewMatchPhraseQuery(lookup.Value)
		q.SetField(lookup.Field)
		return q, nil
	case papertrail.FieldAuthors, papertrail.FieldPublished, papertrail.FieldDateAdded:
		q := bleve.NewTermQuery(lookup.Value)
		q.SetField(lookup.Field)
		return q, nil
	}

	return nil, errors.New(fmt.Sprintf("unknown lookup field %q", lookup.Field), errors.BadRequest())
}
