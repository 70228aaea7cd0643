package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
)

var errClosed = errors.New("store closed")

// Store is a record store kept in memory. It is used in tests and when the
// server runs without a database file.
type Store struct {
	mu     sync.RWMutex
	papers map[string]papertrail.Paper
	closed bool
}

func New(papers ...papertrail.Paper) *Store {
	s := &Store{papers: make(map[string]papertrail.Paper)}
	for _, paper := range papers {
		s.papers[paper.ID] = copyPaper(paper)
	}
	return s
}

func (s *Store) GetAll(ctx context.Context) ([]papertrail.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, papertrail.ErrStoreRead(err)
	}

	papers := make([]papertrail.Paper, 0, len(s.papers))
	for _, paper := range s.papers {
		papers = append(papers, copyPaper(paper))
	}
	sortByID(papers)
	return papers, nil
}

func (s *Store) Get(ctx context.Context, id string) (papertrail.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return papertrail.Paper{}, papertrail.ErrStoreRead(err)
	}

	paper, ok := s.papers[id]
	if !ok {
		return papertrail.Paper{}, papertrail.ErrPaperNotFound(id)
	}
	return copyPaper(paper), nil
}

func (s *Store) Put(ctx context.Context, paper papertrail.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return papertrail.ErrStoreWrite(err)
	}

	s.papers[paper.ID] = copyPaper(paper)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return papertrail.ErrStoreWrite(err)
	}

	delete(s.papers, id)
	return nil
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return false, papertrail.ErrStoreRead(err)
	}

	_, ok := s.papers[id]
	return ok, nil
}

// Search mimics the index: text fields match a case insensitive substring,
// the others the exact value.
func (s *Store) Search(ctx context.Context, lookup papertrail.Lookup) ([]papertrail.Paper, error) {
	if err := lookup.Validate(); err != nil {
		return nil, papertrail.ErrInvalidLookup(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, papertrail.ErrStoreRead(err)
	}

	papers := make([]papertrail.Paper, 0)
	for _, paper := range s.papers {
		if matches(paper, lookup) {
			papers = append(papers, copyPaper(paper))
		}
	}
	sortByID(papers)
	return papers, nil
}

// Close marks the store closed: every later call fails.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *Store) check(ctx context.Context) error {
	if s.closed {
		return errClosed
	}
	return ctx.Err()
}

func matches(paper papertrail.Paper, lookup papertrail.Lookup) bool {
	switch lookup.Field {
	case papertrail.FieldTitle:
		return containsFold(paper.Title, lookup.Value)
	case papertrail.FieldSummary:
		return containsFold(paper.Summary, lookup.Value)
	case papertrail.FieldAuthors:
		for _, author := range paper.Authors {
			if author == lookup.Value {
				return true
			}
		}
	case papertrail.FieldPublished:
		return paper.Published == lookup.Value
	case papertrail.FieldDateAdded:
		return paper.DateAdded == lookup.Value
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func copyPaper(paper papertrail.Paper) papertrail.Paper {
	if paper.Authors != nil {
		paper.Authors = append([]string(nil), paper.Authors...)
	}
	return paper
}

func sortByID(papers []papertrail.Paper) {
	sort.Slice(papers, func(i, j int) bool { return papers[i].ID < papers[j].ID })
}
