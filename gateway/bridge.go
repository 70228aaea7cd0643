package gateway

import (
	"context"

	"github.com/google/uuid"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
)

// Sender sends a request to the gateway and waits for its response.
type Sender interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// Bridge sends requests to a Dispatcher running in the same process.
type Bridge struct {
	dispatcher *Dispatcher
}

func NewBridge(d *Dispatcher) *Bridge {
	return &Bridge{dispatcher: d}
}

// Send dispatches req and waits for the reply or for ctx to be done,
// whichever comes first. A reply arriving after ctx is done is dropped.
func (b *Bridge) Send(ctx context.Context, req Request) (Response, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	// Buffered so that an orphaned reply never blocks the handler.
	replies := make(chan Response, 1)
	b.dispatcher.Dispatch(ctx, req, func(res Response) {
		replies <- res
	})

	select {
	case res := <-replies:
		return res, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// The functions below wrap the actions with typed arguments and results.
// A response carrying an error is turned into an error.

func responseError(res Response) error {
	if res.Error == "" {
		return nil
	}
	return errors.New(res.Error)
}

func SavedPapers(ctx context.Context, s Sender) ([]papertrail.Paper, error) {
	res, err := s.Send(ctx, Request{Action: ActionGetSavedPapers})
	if err != nil {
		return nil, err
	}
	if err := responseError(res); err != nil {
		return nil, err
	}
	if res.Papers == nil {
		return []papertrail.Paper{}, nil
	}
	return res.Papers, nil
}

func SavePaper(ctx context.Context, s Sender, paper papertrail.Paper) error {
	res, err := s.Send(ctx, Request{Action: ActionSavePaper, Paper: &paper})
	if err != nil {
		return err
	}
	if !res.Succeeded() {
		if err := responseError(res); err != nil {
			return err
		}
		return errors.New("paper not saved")
	}
	return nil
}

func RemovePaper(ctx context.Context, s Sender, id string) error {
	res, err := s.Send(ctx, Request{Action: ActionRemovePaper, PaperID: id})
	if err != nil {
		return err
	}
	if !res.Succeeded() {
		if err := responseError(res); err != nil {
			return err
		}
		return errors.New("paper not removed")
	}
	return nil
}

// CheckPaperExists returns false along with the error when the check
// failed.
func CheckPaperExists(ctx context.Context, s Sender, id string) (bool, error) {
	res, err := s.Send(ctx, Request{Action: ActionCheckPaperExists, PaperID: id})
	if err != nil {
		return false, err
	}
	if err := responseError(res); err != nil {
		return false, err
	}
	return res.Exists != nil && *res.Exists, nil
}

func GetPaper(ctx context.Context, s Sender, id string) (papertrail.Paper, error) {
	res, err := s.Send(ctx, Request{Action: ActionGetPaper, PaperID: id})
	if err != nil {
		return papertrail.Paper{}, err
	}
	if err := responseError(res); err != nil {
		return papertrail.Paper{}, err
	}
	if res.Paper == nil {
		return papertrail.Paper{}, errors.New("missing paper in response")
	}
	return *res.Paper, nil
}

func SearchPapers(ctx context.Context, s Sender, lookup papertrail.Lookup) ([]papertrail.Paper, error) {
	res, err := s.Send(ctx, Request{Action: ActionSearchPapers, Field: lookup.Field, Value: lookup.Value})
	if err != nil {
		return nil, err
	}
	if err := responseError(res); err != nil {
		return nil, err
	}
	if res.Papers == nil {
		return []papertrail.Paper{}, nil
	}
	return res.Papers, nil
}
