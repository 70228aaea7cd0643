package store

import (
	"context"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/bleve"
	"github.com/puravparab/PaperTrail/bolt"
)

type Configuration struct {
	Bolt struct {
		Store string `toml:"store"`
	} `toml:"bolt"`
	Bleve struct {
		Store string `toml:"store"`
	} `toml:"bleve"`
}

// paperIndex is the part of bleve.PaperIndex the store relies on.
type paperIndex interface {
	Index(paper papertrail.Paper) error
	Delete(id string) error
	Search(lookup papertrail.Lookup) ([]string, error)
	Close() error
}

// Store is the record store: the papers live in bolt, the secondary lookup
// paths in bleve.
type Store struct {
	driver     *bolt.Driver
	repository *bolt.PaperRepository
	index      paperIndex
}

// Open opens, creating them on first use, the bolt database and the bleve
// index defined in conf. An empty bleve store keeps the index in memory; it
// is rebuilt from bolt on open.
func Open(conf Configuration) (*Store, error) {
	driver := &bolt.Driver{}
	if err := driver.Open(conf.Bolt.Store); err != nil {
		return nil, papertrail.ErrStoreUnavailable(err)
	}

	index := &bleve.PaperIndex{}
	var err error
	if conf.Bleve.Store == "" {
		err = index.OpenMemory()
	} else {
		err = index.Open(conf.Bleve.Store)
	}
	if err != nil {
		driver.Close()
		return nil, papertrail.ErrStoreUnavailable(err)
	}

	s := &Store{
		driver:     driver,
		repository: &bolt.PaperRepository{Driver: driver},
		index:      index,
	}

	if conf.Bleve.Store == "" {
		if err := s.Reindex(); err != nil {
			s.Close()
			return nil, papertrail.ErrStoreUnavailable(err)
		}
	}

	return s, nil
}

// Close closes both the database and the index.
func (s *Store) Close() error {
	indexErr := s.index.Close()
	if err := s.driver.Close(); err != nil {
		return err
	}
	return indexErr
}

// Reindex indexes every paper of the database.
func (s *Store) Reindex() error {
	papers, err := s.repository.List()
	if err != nil {
		return err
	}

	for _, paper := range papers {
		if err := s.index.Index(paper); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetAll(ctx context.Context) ([]papertrail.Paper, error) {
	if err := ctx.Err(); err != nil {
		return nil, papertrail.ErrStoreRead(err)
	}

	papers, err := s.repository.List()
	if err != nil {
		return nil, papertrail.ErrStoreRead(err)
	}
	return papers, nil
}

func (s *Store) Get(ctx context.Context, id string) (papertrail.Paper, error) {
	if err := ctx.Err(); err != nil {
		return papertrail.Paper{}, papertrail.ErrStoreRead(err)
	}

	paper, found, err := s.repository.Get(id)
	if err != nil {
		return papertrail.Paper{}, papertrail.ErrStoreRead(err)
	} else if !found {
		return papertrail.Paper{}, papertrail.ErrPaperNotFound(id)
	}
	return paper, nil
}

// Put upserts paper. When the index cannot be updated the previous record,
// if any, is restored so that the database and the index stay in step.
func (s *Store) Put(ctx context.Context, paper papertrail.Paper) error {
	if err := ctx.Err(); err != nil {
		return papertrail.ErrStoreWrite(err)
	}

	previous, found, err := s.repository.Get(paper.ID)
	if err != nil {
		return papertrail.ErrStoreWrite(err)
	}

	if err := s.repository.Upsert(paper); err != nil {
		return papertrail.ErrStoreWrite(err)
	}

	if err := s.index.Index(paper); err != nil {
		if found {
			s.repository.Upsert(previous)
		} else {
			s.repository.Delete(paper.ID)
		}
		return papertrail.ErrStoreWrite(err)
	}
	return nil
}

// Delete removes the paper from both the database and the index. The record
// is put back when the index cannot be updated.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return papertrail.ErrStoreWrite(err)
	}

	previous, found, err := s.repository.Get(id)
	if err != nil {
		return papertrail.ErrStoreWrite(err)
	}

	if err := s.repository.Delete(id); err != nil {
		return papertrail.ErrStoreWrite(err)
	}

	if err := s.index.Delete(id); err != nil {
		if found {
			s.repository.Upsert(previous)
		}
		return papertrail.ErrStoreWrite(err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, papertrail.ErrStoreRead(err)
	}

	exists, err := s.repository.Exists(id)
	if err != nil {
		return false, papertrail.ErrStoreRead(err)
	}
	return exists, nil
}

// Search resolves the lookup on the index and loads the matching papers.
// Papers deleted between the two steps are skipped.
func (s *Store) Search(ctx context.Context, lookup papertrail.Lookup) ([]papertrail.Paper, error) {
	if err := ctx.Err(); err != nil {
		return nil, papertrail.ErrStoreRead(err)
	}
	if err := lookup.Validate(); err != nil {
		return nil, papertrail.ErrInvalidLookup(err)
	}

	ids, err := s.index.Search(lookup)
	if err != nil {
		return nil, papertrail.ErrStoreRead(err)
	}

	papers := make([]papertrail.Paper, 0, len(ids))
	for _, id := range ids {
		paper, found, err := s.repository.Get(id)
		if err != nil {
			return nil, papertrail.ErrStoreRead(err)
		} else if !found {
			continue
		}
		papers = append(papers, paper)
	}
	return papers, nil
}
