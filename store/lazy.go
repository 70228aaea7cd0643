package store

import (
	"context"
	"sync"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
)

// Handle is a record store the process owns and must release.
type Handle interface {
	papertrail.RecordStore
	Close() error
}

// OpenFunc opens a new handle on the record store.
type OpenFunc func() (Handle, error)

// Lazy owns the process-wide handle on the record store. The handle is
// opened on first use and reused afterwards. Once closed, the next call to
// Store opens it again.
type Lazy struct {
	open OpenFunc

	mu     sync.Mutex
	handle Handle
	opens  int
}

func NewLazy(open OpenFunc) *Lazy {
	return &Lazy{open: open}
}

// Store returns the open handle, opening it if needed. Open failures are
// not cached: the next call tries again.
func (l *Lazy) Store(ctx context.Context) (papertrail.RecordStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, papertrail.ErrStoreUnavailable(err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle != nil {
		return l.handle, nil
	}

	handle, err := l.open()
	if err != nil {
		if errors.KindOf(err) == papertrail.StoreUnavailable {
			return nil, err
		}
		return nil, papertrail.ErrStoreUnavailable(err)
	}

	l.handle = handle
	l.opens++
	return handle, nil
}

// Opens returns how many times the handle has been opened.
func (l *Lazy) Opens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opens
}

// Close releases the handle, if any.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle == nil {
		return nil
	}

	err := l.handle.Close()
	l.handle = nil
	return err
}

// Opener returns an OpenFunc opening the bolt and bleve store of conf.
func Opener(conf Configuration) OpenFunc {
	return func() (Handle, error) {
		s, err := Open(conf)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
