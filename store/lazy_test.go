package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
	"github.com/puravparab/PaperTrail/inmem"
)

type countingOpener struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (o *countingOpener) open() (Handle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls++
	if o.fail {
		return nil, fmt.Errorf("quota exceeded")
	}
	return inmem.New(), nil
}

func TestLazy_OpensOnce(t *testing.T) {
	opener := &countingOpener{}
	lazy := NewLazy(opener.open)
	assert.Equal(t, 0, opener.calls, "nothing is opened before the first use")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := lazy.Store(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, opener.calls)
	assert.Equal(t, 1, lazy.Opens())
}

func TestLazy_ReopensAfterClose(t *testing.T) {
	opener := &countingOpener{}
	lazy := NewLazy(opener.open)
	ctx := context.Background()

	s, err := lazy.Store(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, papertrail.Paper{ID: "2301.00001"}))

	require.NoError(t, lazy.Close())
	require.NoError(t, lazy.Close(), "closing twice")

	// The closed handle is not handed out anymore
	_, err = s.GetAll(ctx)
	assert.Error(t, err)

	s, err = lazy.Store(ctx)
	require.NoError(t, err)
	_, err = s.GetAll(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, opener.calls)
}

func TestLazy_OpenFailure(t *testing.T) {
	opener := &countingOpener{fail: true}
	lazy := NewLazy(opener.open)
	ctx := context.Background()

	_, err := lazy.Store(ctx)
	if assert.Error(t, err) {
		errors.AssertKind(t, err, papertrail.StoreUnavailable)
	}

	// Failures are not cached
	opener.fail = false
	_, err = lazy.Store(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, opener.calls)
}
