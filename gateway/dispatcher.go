package gateway

import (
	"context"
	"sync"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
	"github.com/puravparab/PaperTrail/log"
)

var (
	errMissingPaper   = errors.New("missing paper", errors.WithKind(papertrail.MessageProtocolError), errors.BadRequest())
	errMissingPaperID = errors.New("missing paper id", errors.WithKind(papertrail.MessageProtocolError), errors.BadRequest())
)

// StoreProvider hands out the record store. It is typically a *store.Lazy.
type StoreProvider interface {
	Store(ctx context.Context) (papertrail.RecordStore, error)
}

type handlerFunc func(ctx context.Context, logger log.Logger, req Request) Response

// Dispatcher routes requests to the record store. It is the only component
// holding the store.
type Dispatcher struct {
	stores StoreProvider
	logger log.Logger

	handlers map[string]handlerFunc
	inflight sync.WaitGroup
}

func NewDispatcher(stores StoreProvider, logger log.Logger) *Dispatcher {
	d := &Dispatcher{
		stores: stores,
		logger: logger,
	}

	d.handlers = map[string]handlerFunc{
		ActionGetSavedPapers:   d.getSavedPapers,
		ActionSavePaper:        d.savePaper,
		ActionRemovePaper:      d.removePaper,
		ActionCheckPaperExists: d.checkPaperExists,
		ActionGetPaper:         d.getPaper,
		ActionSearchPapers:     d.searchPapers,
	}
	return d
}

// Dispatch handles req and calls reply exactly once with the response.
//
// For a known action, Dispatch returns true right away and reply is called
// from another goroutine once the store operation settles. For an unknown
// action, reply is called with an error response before Dispatch returns
// false.
//
// The store operation is not cancelled when ctx is: a caller giving up only
// drops the reply.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, reply func(Response)) bool {
	if reply == nil {
		reply = func(Response) {}
	}
	logger := d.logger.WithField("request", req.ID).WithField("action", req.Action)

	handler, ok := d.handlers[req.Action]
	if !ok {
		err := papertrail.ErrUnknownAction(req.Action)
		logger.Error(err)
		reply(errorResponse(err))
		return false
	}

	ctx = context.WithoutCancel(ctx)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		reply(handler(ctx, logger, req))
	}()
	return true
}

// Wait blocks until every dispatched request has been replied to.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

func (d *Dispatcher) getSavedPapers(ctx context.Context, logger log.Logger, req Request) Response {
	s, err := d.stores.Store(ctx)
	if err != nil {
		logger.Error("error retrieving saved papers:", err)
		return errorResponse(err)
	}

	papers, err := s.GetAll(ctx)
	if err != nil {
		logger.Error("error retrieving saved papers:", err)
		return errorResponse(err)
	}

	logger.Debugf("%d papers returned", len(papers))
	return papersResponse(papers)
}

func (d *Dispatcher) savePaper(ctx context.Context, logger log.Logger, req Request) Response {
	if req.Paper == nil {
		logger.Error(errMissingPaper)
		return failureResponse(errMissingPaper)
	}
	paper := *req.Paper

	if err := paper.Validate(); err != nil {
		err = papertrail.ErrInvalidPaper(err)
		logger.Error("error saving paper:", err)
		return failureResponse(err)
	}

	s, err := d.stores.Store(ctx)
	if err != nil {
		logger.Error("error saving paper:", err)
		return failureResponse(err)
	}

	if err := s.Put(ctx, paper); err != nil {
		logger.Error("error saving paper:", err)
		return failureResponse(err)
	}

	logger.Printf("paper #%s - %s added", paper.ID, paper.Title)
	return successResponse()
}

func (d *Dispatcher) removePaper(ctx context.Context, logger log.Logger, req Request) Response {
	if req.PaperID == "" {
		logger.Error(errMissingPaperID)
		return failureResponse(errMissingPaperID)
	}

	s, err := d.stores.Store(ctx)
	if err != nil {
		logger.Error("error removing paper:", err)
		return failureResponse(err)
	}

	if err := s.Delete(ctx, req.PaperID); err != nil {
		logger.Error("error removing paper:", err)
		return failureResponse(err)
	}

	logger.Printf("paper #%s removed", req.PaperID)
	return successResponse()
}

func (d *Dispatcher) checkPaperExists(ctx context.Context, logger log.Logger, req Request) Response {
	if req.PaperID == "" {
		logger.Error(errMissingPaperID)
		return existsResponse(false, errMissingPaperID)
	}

	s, err := d.stores.Store(ctx)
	if err != nil {
		logger.Error("error checking paper existence:", err)
		return existsResponse(false, err)
	}

	exists, err := s.Exists(ctx, req.PaperID)
	if err != nil {
		logger.Error("error checking paper existence:", err)
		return existsResponse(false, err)
	}
	return existsResponse(exists, nil)
}

func (d *Dispatcher) getPaper(ctx context.Context, logger log.Logger, req Request) Response {
	if req.PaperID == "" {
		logger.Error(errMissingPaperID)
		return errorResponse(errMissingPaperID)
	}

	s, err := d.stores.Store(ctx)
	if err != nil {
		logger.Error("error retrieving paper:", err)
		return errorResponse(err)
	}

	paper, err := s.Get(ctx, req.PaperID)
	if err != nil {
		logger.Error("error retrieving paper:", err)
		return errorResponse(err)
	}
	return paperResponse(paper)
}

func (d *Dispatcher) searchPapers(ctx context.Context, logger log.Logger, req Request) Response {
	s, err := d.stores.Store(ctx)
	if err != nil {
		logger.Error("error searching papers:", err)
		return errorResponse(err)
	}

	papers, err := s.Search(ctx, papertrail.Lookup{Field: req.Field, Value: req.Value})
	if err != nil {
		logger.Error("error searching papers:", err)
		return errorResponse(err)
	}
	return papersResponse(papers)
}
