package bolt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/boltdb/bolt"
)

// Name and version of the store. Version 1 is the only schema: the papers
// bucket keyed by paper id.
const (
	StoreName     = "PaperTrailDB"
	SchemaVersion = 1
)

var (
	metaBucket = []byte("meta")

	nameKey    = []byte("name")
	versionKey = []byte("version")
)

type Driver struct {
	store *bolt.DB
}

// Open opens the connection to the bolt database defined by path, creating
// the file on first use and upgrading it in place to SchemaVersion.
func (d *Driver) Open(path string) error {
	if d.store != nil {
		return errors.New("store already open")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	store, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return err
	}

	err = store.Update(upgrade)
	if err != nil {
		store.Close()
		return err
	}

	d.store = store
	return nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	if d.store != nil {
		err := d.store.Close()
		d.store = nil
		return err
	}
	return nil
}

// Version returns the schema version stored in the meta bucket.
func (d *Driver) Version() (int, error) {
	if d.store == nil {
		return 0, errors.New("store not open")
	}

	var version int
	err := d.store.View(func(tx *bolt.Tx) error {
		var err error
		version, err = readVersion(tx.Bucket(metaBucket))
		return err
	})
	return version, err
}

func upgrade(tx *bolt.Tx) error {
	meta, err := tx.CreateBucketIfNotExists(metaBucket)
	if err != nil {
		return fmt.Errorf("create bucket %s: %v", metaBucket, err)
	}

	version, err := readVersion(meta)
	if err != nil {
		return err
	}
	if version >= SchemaVersion {
		return nil
	}

	if _, err := tx.CreateBucketIfNotExists(paperBucket); err != nil {
		return fmt.Errorf("create bucket %s: %v", paperBucket, err)
	}

	if err := meta.Put(nameKey, []byte(StoreName)); err != nil {
		return err
	}
	return meta.Put(versionKey, []byte(strconv.Itoa(SchemaVersion)))
}

func readVersion(meta *bolt.Bucket) (int, error) {
	if meta == nil {
		return 0, nil
	}

	data := meta.Get(versionKey)
	if data == nil {
		return 0, nil
	}

	version, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("invalid schema version %q: %v", data, err)
	}
	return version, nil
}
