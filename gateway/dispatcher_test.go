package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
	"github.com/puravparab/PaperTrail/inmem"
	"github.com/puravparab/PaperTrail/log"
)

type staticProvider struct {
	store papertrail.RecordStore
	err   error
}

func (p staticProvider) Store(context.Context) (papertrail.RecordStore, error) {
	return p.store, p.err
}

// blockingProvider holds every request until release is closed.
type blockingProvider struct {
	store   papertrail.RecordStore
	release chan struct{}
}

func (p blockingProvider) Store(context.Context) (papertrail.RecordStore, error) {
	<-p.release
	return p.store, nil
}

func samplePaper(id string) papertrail.Paper {
	return papertrail.Paper{
		ID:        id,
		Title:     "Paper " + id,
		Authors:   []string{"A. One"},
		Summary:   "Summary of " + id,
		Published: "2023-01-01T00:00:00Z",
		DateAdded: "2024-05-01T10:00:00.000Z",
	}
}

func send(t *testing.T, d *Dispatcher, req Request) Response {
	res, err := NewBridge(d).Send(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestDispatcher_Actions(t *testing.T) {
	s := inmem.New(samplePaper("2301.00002"))
	d := NewDispatcher(staticProvider{store: s}, log.Discard())

	res := send(t, d, Request{Action: ActionCheckPaperExists, PaperID: "2301.00001"})
	require.NotNil(t, res.Exists)
	assert.False(t, *res.Exists)

	paper := samplePaper("2301.00001")
	res = send(t, d, Request{Action: ActionSavePaper, Paper: &paper})
	assert.True(t, res.Succeeded())
	assert.Empty(t, res.Error)

	res = send(t, d, Request{Action: ActionCheckPaperExists, PaperID: "2301.00001"})
	require.NotNil(t, res.Exists)
	assert.True(t, *res.Exists)

	res = send(t, d, Request{Action: ActionGetSavedPapers})
	require.Len(t, res.Papers, 2)
	assert.Equal(t, "2301.00001", res.Papers[0].ID)

	res = send(t, d, Request{Action: ActionGetPaper, PaperID: "2301.00002"})
	require.NotNil(t, res.Paper)
	assert.Equal(t, "Paper 2301.00002", res.Paper.Title)

	res = send(t, d, Request{Action: ActionSearchPapers, Field: papertrail.FieldSummary, Value: "of 2301.00001"})
	require.Len(t, res.Papers, 1)
	assert.Equal(t, "2301.00001", res.Papers[0].ID)

	res = send(t, d, Request{Action: ActionRemovePaper, PaperID: "2301.00001"})
	assert.True(t, res.Succeeded())

	// Removing twice is not an error
	res = send(t, d, Request{Action: ActionRemovePaper, PaperID: "2301.00001"})
	assert.True(t, res.Succeeded())

	res = send(t, d, Request{Action: ActionCheckPaperExists, PaperID: "2301.00001"})
	require.NotNil(t, res.Exists)
	assert.False(t, *res.Exists)
}

func TestDispatcher_Failures(t *testing.T) {
	invalid := samplePaper("2301.00001")
	invalid.Title = ""

	var testCases = map[string]struct {
		Provider StoreProvider
		Request  Request

		Success *bool
		Exists  *bool
		Error   string
	}{
		"save without paper": {
			Provider: staticProvider{store: inmem.New()},
			Request:  Request{Action: ActionSavePaper},
			Success:  boolPtr(false),
			Error:    "missing paper",
		},
		"save invalid paper": {
			Provider: staticProvider{store: inmem.New()},
			Request:  Request{Action: ActionSavePaper, Paper: &invalid},
			Success:  boolPtr(false),
			Error:    "invalid paper",
		},
		"remove without id": {
			Provider: staticProvider{store: inmem.New()},
			Request:  Request{Action: ActionRemovePaper},
			Success:  boolPtr(false),
			Error:    "missing paper id",
		},
		"exists on unavailable store": {
			Provider: staticProvider{err: papertrail.ErrStoreUnavailable(errors.New("disk gone"))},
			Request:  Request{Action: ActionCheckPaperExists, PaperID: "2301.00001"},
			Exists:   boolPtr(false),
			Error:    "store unavailable",
		},
		"save on unavailable store": {
			Provider: staticProvider{err: papertrail.ErrStoreUnavailable(errors.New("disk gone"))},
			Request:  Request{Action: ActionSavePaper, Paper: papertrailPaper("2301.00001")},
			Success:  boolPtr(false),
			Error:    "store unavailable",
		},
		"list on unavailable store": {
			Provider: staticProvider{err: papertrail.ErrStoreUnavailable(errors.New("disk gone"))},
			Request:  Request{Action: ActionGetSavedPapers},
			Error:    "store unavailable",
		},
		"get missing paper": {
			Provider: staticProvider{store: inmem.New()},
			Request:  Request{Action: ActionGetPaper, PaperID: "2301.00001"},
			Error:    "paper 2301.00001 not found",
		},
		"search unknown field": {
			Provider: staticProvider{store: inmem.New()},
			Request:  Request{Action: ActionSearchPapers, Field: "id", Value: "2301.00001"},
			Error:    "invalid lookup",
		},
	}

	for name, tc := range testCases {
		d := NewDispatcher(tc.Provider, log.Discard())
		res := send(t, d, tc.Request)

		assert.Equal(t, tc.Success, res.Success, "%s - invalid success", name)
		assert.Equal(t, tc.Exists, res.Exists, "%s - invalid exists", name)
		assert.Contains(t, res.Error, tc.Error, "%s - invalid error", name)
		assert.Nil(t, res.Papers, "%s - unexpected papers", name)
	}
}

func TestDispatcher_UnknownAction(t *testing.T) {
	d := NewDispatcher(staticProvider{store: inmem.New()}, log.Discard())

	var replies []Response
	pending := d.Dispatch(context.Background(), Request{Action: "exportPapers"}, func(res Response) {
		replies = append(replies, res)
	})

	assert.False(t, pending)
	require.Len(t, replies, 1)
	assert.Equal(t, "unknown action: exportPapers", replies[0].Error)
}

func TestDispatcher_ReplyIsAsynchronous(t *testing.T) {
	release := make(chan struct{})
	d := NewDispatcher(blockingProvider{store: inmem.New(), release: release}, log.Discard())

	replies := make(chan Response, 1)
	pending := d.Dispatch(context.Background(), Request{Action: ActionGetSavedPapers}, func(res Response) {
		replies <- res
	})
	assert.True(t, pending)

	select {
	case <-replies:
		t.Fatal("reply sent before the store answered")
	default:
	}

	close(release)
	select {
	case res := <-replies:
		assert.NotNil(t, res.Papers)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply")
	}
}

func TestBridge_DropsOrphanedReply(t *testing.T) {
	release := make(chan struct{})
	s := inmem.New()
	d := NewDispatcher(blockingProvider{store: s, release: release}, log.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paper := samplePaper("2301.00001")
	_, err := NewBridge(d).Send(ctx, Request{Action: ActionSavePaper, Paper: &paper})
	assert.Equal(t, context.Canceled, err)

	// The write still goes through once the store answers
	close(release)
	d.Wait()

	exists, err := s.Exists(context.Background(), "2301.00001")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestResponse_MarshalJSON(t *testing.T) {
	var testCases = map[string]struct {
		Response Response
		JSON     string
	}{
		"empty list": {
			Response: papersResponse(nil),
			JSON:     `{"papers":[]}`,
		},
		"not found": {
			Response: existsResponse(false, nil),
			JSON:     `{"exists":false}`,
		},
		"failed write": {
			Response: failureResponse(errors.New("boom")),
			JSON:     `{"success":false,"error":"boom"}`,
		},
		"success": {
			Response: successResponse(),
			JSON:     `{"success":true}`,
		},
	}

	for name, tc := range testCases {
		data, err := json.Marshal(tc.Response)
		require.NoError(t, err, name)
		assert.JSONEq(t, tc.JSON, string(data), name)
	}
}

func TestTypedCalls(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(staticProvider{store: inmem.New()}, log.Discard())
	b := NewBridge(d)

	papers, err := SavedPapers(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.NotNil(t, papers)

	require.NoError(t, SavePaper(ctx, b, samplePaper("2301.00001")))

	exists, err := CheckPaperExists(ctx, b, "2301.00001")
	require.NoError(t, err)
	assert.True(t, exists)

	paper, err := GetPaper(ctx, b, "2301.00001")
	require.NoError(t, err)
	assert.Equal(t, "Paper 2301.00001", paper.Title)

	found, err := SearchPapers(ctx, b, papertrail.Lookup{Field: papertrail.FieldAuthors, Value: "A. One"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, RemovePaper(ctx, b, "2301.00001"))

	_, err = GetPaper(ctx, b, "2301.00001")
	assert.Error(t, err)

	err = SavePaper(ctx, b, papertrail.Paper{ID: "2301.00003"})
	assert.Error(t, err)
}

func boolPtr(b bool) *bool { return &b }

func papertrailPaper(id string) *papertrail.Paper {
	paper := samplePaper(id)
	return &paper
}
