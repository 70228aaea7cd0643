package store

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
)

func setUp(t *testing.T, withIndexDir bool) (*Store, Configuration, func()) {
	dir, err := ioutil.TempDir("", "papertrail")
	require.NoError(t, err, "tmp dir")

	var conf Configuration
	conf.Bolt.Store = filepath.Join(dir, "papertrail.db")
	if withIndexDir {
		conf.Bleve.Store = filepath.Join(dir, "papertrail.bleve")
	}

	s, err := Open(conf)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal("could not open store:", err)
	}

	return s, conf, func() {
		s.Close()
		os.RemoveAll(dir)
	}
}

// brokenIndex fails every write.
type brokenIndex struct {
	paperIndex
}

func (brokenIndex) Index(papertrail.Paper) error { return errors.New("index is read only") }
func (brokenIndex) Delete(string) error          { return errors.New("index is read only") }

func samplePaper() papertrail.Paper {
	return papertrail.Paper{
		ID:        "2301.00001",
		Title:     "A Study",
		Authors:   []string{"A. One", "B. Two"},
		Summary:   "We study things.",
		Published: "2023-01-01T00:00:00Z",
		DateAdded: "2024-05-01T10:00:00.000Z",
	}
}

func TestStore_Put_Upsert(t *testing.T) {
	s, _, tearDown := setUp(t, false)
	defer tearDown()
	ctx := context.Background()

	first := samplePaper()
	require.NoError(t, s.Put(ctx, first))

	second := samplePaper()
	second.Title = "A Revised Study"
	second.Authors = []string{"C. Three"}
	require.NoError(t, s.Put(ctx, second))

	papers, err := s.GetAll(ctx)
	require.NoError(t, err)
	if assert.Len(t, papers, 1) {
		assert.Equal(t, second, papers[0])
	}

	// The index follows the upsert
	found, err := s.Search(ctx, papertrail.Lookup{Field: papertrail.FieldAuthors, Value: "A. One"})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = s.Search(ctx, papertrail.Lookup{Field: papertrail.FieldAuthors, Value: "C. Three"})
	require.NoError(t, err)
	assert.Equal(t, []papertrail.Paper{second}, found)
}

func TestStore_Delete_Idempotent(t *testing.T) {
	s, _, tearDown := setUp(t, false)
	defer tearDown()
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "missing"), "deleting a missing paper")

	require.NoError(t, s.Put(ctx, samplePaper()))
	require.NoError(t, s.Delete(ctx, "2301.00001"))
	afterFirst, err := s.GetAll(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "2301.00001"))
	afterSecond, err := s.GetAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, afterFirst, afterSecond)
	assert.Empty(t, afterSecond)
}

func TestStore_IndexFailureRollsBack(t *testing.T) {
	revised := samplePaper()
	revised.Title = "A Revised Study"

	var testCases = map[string]struct {
		Saved []papertrail.Paper
		Write func(s *Store) error
		Want  []papertrail.Paper
	}{
		"put of a new paper": {
			Write: func(s *Store) error { return s.Put(context.Background(), samplePaper()) },
			Want:  []papertrail.Paper{},
		},
		"put over an existing paper": {
			Saved: []papertrail.Paper{samplePaper()},
			Write: func(s *Store) error { return s.Put(context.Background(), revised) },
			Want:  []papertrail.Paper{samplePaper()},
		},
		"delete": {
			Saved: []papertrail.Paper{samplePaper()},
			Write: func(s *Store) error { return s.Delete(context.Background(), samplePaper().ID) },
			Want:  []papertrail.Paper{samplePaper()},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			s, _, tearDown := setUp(t, false)
			defer tearDown()
			ctx := context.Background()

			for _, paper := range tc.Saved {
				require.NoError(t, s.Put(ctx, paper))
			}

			s.index = brokenIndex{s.index}
			err := tc.Write(s)
			if assert.Error(t, err) {
				errors.AssertKind(t, err, papertrail.StoreWriteError)
			}

			papers, err := s.GetAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.Want, papers)
		})
	}
}

func TestStore_Exists(t *testing.T) {
	s, _, tearDown := setUp(t, false)
	defer tearDown()
	ctx := context.Background()

	exists, err := s.Exists(ctx, "2301.00001")
	require.NoError(t, err)
	assert.False(t, exists, "before put")

	require.NoError(t, s.Put(ctx, samplePaper()))
	exists, err = s.Exists(ctx, "2301.00001")
	require.NoError(t, err)
	assert.True(t, exists, "after put")

	require.NoError(t, s.Delete(ctx, "2301.00001"))
	exists, err = s.Exists(ctx, "2301.00001")
	require.NoError(t, err)
	assert.False(t, exists, "after delete")
}

func TestStore_Get(t *testing.T) {
	s, _, tearDown := setUp(t, false)
	defer tearDown()
	ctx := context.Background()

	_, err := s.Get(ctx, "2301.00001")
	if assert.Error(t, err) {
		errors.AssertCode(t, err, 404)
	}

	require.NoError(t, s.Put(ctx, samplePaper()))
	paper, err := s.Get(ctx, "2301.00001")
	require.NoError(t, err)
	assert.Equal(t, samplePaper(), paper)
}

func TestStore_Search_InvalidLookup(t *testing.T) {
	s, _, tearDown := setUp(t, false)
	defer tearDown()

	_, err := s.Search(context.Background(), papertrail.Lookup{Field: "id", Value: "x"})
	if assert.Error(t, err) {
		errors.AssertCode(t, err, 400)
	}
}

func TestStore_CancelledContext(t *testing.T) {
	s, _, tearDown := setUp(t, false)
	defer tearDown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetAll(ctx)
	errors.AssertKind(t, err, papertrail.StoreReadError)

	err = s.Put(ctx, samplePaper())
	errors.AssertKind(t, err, papertrail.StoreWriteError)

	err = s.Delete(ctx, "2301.00001")
	errors.AssertKind(t, err, papertrail.StoreWriteError)
}

func TestStore_Reopen(t *testing.T) {
	tts := map[string]bool{
		"memory index rebuilt from bolt": false,
		"index on disk":                  true,
	}

	for name, withIndexDir := range tts {
		s, conf, tearDown := setUp(t, withIndexDir)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, samplePaper()), name)
		require.NoError(t, s.Close(), name)

		reopened, err := Open(conf)
		require.NoError(t, err, name)

		papers, err := reopened.GetAll(ctx)
		require.NoError(t, err, name)
		assert.Equal(t, []papertrail.Paper{samplePaper()}, papers, name)

		found, err := reopened.Search(ctx, papertrail.Lookup{Field: papertrail.FieldTitle, Value: "study"})
		require.NoError(t, err, name)
		assert.Len(t, found, 1, name)

		reopened.Close()
		tearDown()
	}
}

func TestOpen_Unavailable(t *testing.T) {
	// A regular file cannot hold the database directory.
	file, err := os.CreateTemp("", "papertrail")
	require.NoError(t, err)
	file.Close()
	defer os.Remove(file.Name())

	var conf Configuration
	conf.Bolt.Store = filepath.Join(file.Name(), "papertrail.db")

	_, err = Open(conf)
	if assert.Error(t, err) {
		errors.AssertKind(t, err, papertrail.StoreUnavailable)
		errors.AssertCode(t, err, 503)
	}
}
