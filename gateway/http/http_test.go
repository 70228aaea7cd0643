package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/gateway"
	"github.com/puravparab/PaperTrail/inmem"
	"github.com/puravparab/PaperTrail/log"
	"github.com/puravparab/PaperTrail/server"
	"github.com/puravparab/PaperTrail/store"
)

func setUp(papers ...papertrail.Paper) http.Handler {
	lazy := store.NewLazy(func() (store.Handle, error) {
		return inmem.New(papers...), nil
	})

	srv := server.New("test", log.Discard())
	dispatcher := gateway.NewDispatcher(lazy, log.Discard())
	RegisterHTTP(srv, gateway.NewBridge(dispatcher))
	return srv
}

func TestRegisterHTTP(t *testing.T) {
	handler := setUp(papertrail.Paper{
		ID:        "1706.03762",
		Title:     "Attention Is All You Need",
		Authors:   []string{"Ashish Vaswani"},
		Summary:   "Transformers.",
		Published: "2017-06-12T17:57:34Z",
		DateAdded: "2024-05-01T10:00:00.000Z",
	})

	paperJSON := `{"id":"1706.03762","title":"Attention Is All You Need","authors":["Ashish Vaswani"],"summary":"Transformers.","published":"2017-06-12T17:57:34Z","dateAdded":"2024-05-01T10:00:00.000Z"}`

	var testCases = map[string]struct {
		Method string
		Path   string
		Body   string

		Code     int
		Response string
	}{
		"check existing paper": {
			Method:   "POST",
			Path:     "/papertrail/v1/messages",
			Body:     `{"action":"checkPaperExists","paperId":"1706.03762"}`,
			Code:     http.StatusOK,
			Response: `{"exists":true}`,
		},
		"check missing paper": {
			Method:   "POST",
			Path:     "/papertrail/v1/messages",
			Body:     `{"action":"checkPaperExists","paperId":"1810.04805"}`,
			Code:     http.StatusOK,
			Response: `{"exists":false}`,
		},
		"unknown action": {
			Method:   "POST",
			Path:     "/papertrail/v1/messages",
			Body:     `{"action":"exportPapers"}`,
			Code:     http.StatusOK,
			Response: `{"error":"unknown action: exportPapers"}`,
		},
		"malformed message": {
			Method: "POST",
			Path:   "/papertrail/v1/messages",
			Body:   `{"action":`,
			Code:   http.StatusBadRequest,
		},
		"list papers": {
			Method:   "GET",
			Path:     "/papertrail/v1/papers",
			Code:     http.StatusOK,
			Response: `{"papers":[` + paperJSON + `]}`,
		},
		"search papers": {
			Method:   "GET",
			Path:     "/papertrail/v1/papers?field=authors&value=Noam+Shazeer",
			Code:     http.StatusOK,
			Response: `{"papers":[]}`,
		},
		"get paper": {
			Method:   "GET",
			Path:     "/papertrail/v1/papers/1706.03762",
			Code:     http.StatusOK,
			Response: `{"paper":` + paperJSON + `}`,
		},
	}

	for name, tc := range testCases {
		req := httptest.NewRequest(tc.Method, tc.Path, strings.NewReader(tc.Body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, tc.Code, rec.Code, "%s - invalid code", name)
		if tc.Response != "" {
			assert.JSONEq(t, tc.Response, rec.Body.String(), "%s - invalid response", name)
		}
	}
}

func TestRegisterHTTP_SaveThenList(t *testing.T) {
	handler := setUp()

	body := `{"action":"savePaper","paper":{"id":"1810.04805","title":"BERT","authors":["Jacob Devlin"],"summary":"Pre-training.","published":"2018-10-11T00:00:00Z","dateAdded":"2024-05-02T08:00:00.000Z"}}`
	req := httptest.NewRequest("POST", "/papertrail/v1/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	req = httptest.NewRequest("POST", "/papertrail/v1/messages", strings.NewReader(`{"action":"savePaper","paper":{"id":"1810.04806"}}`))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	req = httptest.NewRequest("GET", "/papertrail/v1/papers", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), `"id":"1810.04805"`)
	assert.NotContains(t, rec.Body.String(), `"id":"1810.04806"`)
}
