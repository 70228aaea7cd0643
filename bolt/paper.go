package bolt

import (
	"encoding/json"

	"github.com/boltdb/bolt"

	"github.com/puravparab/PaperTrail"
)

var paperBucket = []byte("papers")

// PaperRepository stores papers in a bolt bucket, keyed by paper id.
type PaperRepository struct {
	Driver *Driver
}

// Get retrieves the paper defined by id. The boolean is false if there is
// no such paper.
func (r *PaperRepository) Get(id string) (papertrail.Paper, bool, error) {
	var paper papertrail.Paper
	found := false
	err := r.Driver.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(paperBucket)

		data := bucket.Get([]byte(id))
		if data == nil {
			return nil
		}

		found = true
		return json.Unmarshal(data, &paper)
	})
	if err != nil {
		return papertrail.Paper{}, false, err
	}

	return paper, found, nil
}

// List returns all the papers, ordered by id.
func (r *PaperRepository) List() ([]papertrail.Paper, error) {
	papers := make([]papertrail.Paper, 0)

	err := r.Driver.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(paperBucket)

		c := bucket.Cursor()
		for id, data := c.First(); id != nil; id, data = c.Next() {
			var paper papertrail.Paper
			if err := json.Unmarshal(data, &paper); err != nil {
				return err
			}
			papers = append(papers, paper)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return papers, nil
}

// Upsert inserts the paper, replacing any paper with the same id.
func (r *PaperRepository) Upsert(paper papertrail.Paper) error {
	return r.Driver.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(paperBucket)

		data, err := json.Marshal(paper)
		if err != nil {
			return err
		}

		return bucket.Put([]byte(paper.ID), data)
	})
}

// Delete removes the paper. Deleting a missing paper is not an error.
func (r *PaperRepository) Delete(id string) error {
	return r.Driver.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(paperBucket)
		return bucket.Delete([]byte(id))
	})
}

// Exists reports whether a paper is stored under id.
func (r *PaperRepository) Exists(id string) (bool, error) {
	exists := false
	err := r.Driver.store.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(paperBucket).Get([]byte(id)) != nil
		return nil
	})
	return exists, err
}
