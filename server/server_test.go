package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puravparab/PaperTrail/log"
)

func TestServer(t *testing.T) {
	srv := New("test", log.Discard())
	srv.RegisterHandler("/papertrail/v1/papers/:id", "GET", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Params(r.Context()))
	}))

	var testCases = map[string]struct {
		Method string
		Path   string

		Code int
		Body string
	}{
		"ping": {
			Method: "GET",
			Path:   "/papertrail/ping",
			Code:   http.StatusOK,
			Body:   `{"data":"ok"}`,
		},
		"route params": {
			Method: "GET",
			Path:   "/papertrail/v1/papers/1706.03762",
			Code:   http.StatusOK,
			Body:   `{"id":"1706.03762"}`,
		},
		"unknown route": {
			Method: "GET",
			Path:   "/papertrail/v1/tags",
			Code:   http.StatusNotFound,
			Body:   `{"error":"page not found"}`,
		},
	}

	for name, tc := range testCases {
		req := httptest.NewRequest(tc.Method, tc.Path, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, tc.Code, rec.Code, "%s - invalid code", name)
		assert.JSONEq(t, tc.Body, rec.Body.String(), "%s - invalid body", name)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), "%s - missing CORS header", name)
	}
}

func TestServer_Preflight(t *testing.T) {
	srv := New("test", log.Discard())

	req := httptest.NewRequest("OPTIONS", "/papertrail/v1/messages", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestParams_Missing(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, Params(req.Context()))
}
