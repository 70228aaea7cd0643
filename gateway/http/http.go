package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/google/uuid"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
	"github.com/puravparab/PaperTrail/gateway"
	"github.com/puravparab/PaperTrail/server"
)

var (
	errInvalidRequest = errors.New("invalid request", errors.WithKind(papertrail.MessageProtocolError), errors.BadRequest())
)

// Server defines the interface to register the http handlers.
type Server interface {
	RegisterHandler(path, method string, f http.Handler)
}

// RegisterHTTP exposes the gateway over http:
//   - POST /papertrail/v1/messages takes a request envelope and returns the
//     response envelope,
//   - GET /papertrail/v1/papers lists the saved papers, or searches them when
//     the field and value query parameters are set,
//   - GET /papertrail/v1/papers/:id returns one paper.
func RegisterHTTP(srv Server, sender gateway.Sender) {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(encodeError),
	}

	ep := makeSendEndpoint(sender)

	messageHandler := kithttp.NewServer(
		ep,
		decodeMessageRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	listHandler := kithttp.NewServer(
		ep,
		decodeListRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	getHandler := kithttp.NewServer(
		ep,
		decodeGetRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	srv.RegisterHandler("/papertrail/v1/messages", "POST", messageHandler)
	srv.RegisterHandler("/papertrail/v1/papers", "GET", listHandler)
	srv.RegisterHandler("/papertrail/v1/papers/:id", "GET", getHandler)
}

func makeSendEndpoint(s gateway.Sender) endpoint.Endpoint {
	return func(ctx context.Context, r interface{}) (interface{}, error) {
		req, ok := r.(gateway.Request)
		if !ok {
			return nil, errInvalidRequest
		}

		res, err := s.Send(ctx, req)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
}

func decodeMessageRequest(_ context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	var req gateway.Request
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		return nil, errors.New("malformed message", errors.WithKind(papertrail.MessageProtocolError), errors.BadRequest(), errors.WithCause(err))
	}

	req.ID = uuid.New().String()
	return req, nil
}

func decodeListRequest(_ context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	req := gateway.Request{
		ID:     uuid.New().String(),
		Action: gateway.ActionGetSavedPapers,
	}

	q := r.URL.Query()
	if q.Get("field") != "" || q.Get("value") != "" {
		req.Action = gateway.ActionSearchPapers
		req.Field = q.Get("field")
		req.Value = q.Get("value")
	}
	return req, nil
}

func decodeGetRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	params := server.Params(ctx)
	return gateway.Request{
		ID:      uuid.New().String(),
		Action:  gateway.ActionGetPaper,
		PaperID: params["id"],
	}, nil
}

func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	statusCode := http.StatusInternalServerError
	if err, ok := err.(errors.Error); ok {
		statusCode = err.Code()
	} else if err == context.Canceled || err == context.DeadlineExceeded {
		statusCode = http.StatusGatewayTimeout
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
