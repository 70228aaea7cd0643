package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/gateway"
	"github.com/puravparab/PaperTrail/log"
)

// State is the saved state of a toggle as shown to the user.
type State int

const (
	Unsaved State = iota
	Saved
)

func (s State) String() string {
	if s == Saved {
		return "saved"
	}
	return "unsaved"
}

// View is what a toggle looks like in a given state.
type View struct {
	Label       string
	ButtonColor string
	// TitleColor is empty when the title keeps its own color.
	TitleColor string
}

func viewOf(s State) View {
	if s == Saved {
		return View{Label: "Remove", ButtonColor: "red", TitleColor: "green"}
	}
	return View{Label: "Save", ButtonColor: "green"}
}

// Toggle is the save/remove control attached to one occurrence of a paper
// on a page. Two occurrences of the same paper get two toggles that do not
// see each other's clicks.
type Toggle struct {
	ID string

	sender  gateway.Sender
	fetcher papertrail.MetadataFetcher
	logger  log.Logger
	now     func() time.Time

	// clicks serializes Click.
	clicks sync.Mutex

	mu    sync.Mutex
	state State
	// overridden is set by the first click and never reset. Once set,
	// existence checks are ignored.
	overridden bool
}

func (t *Toggle) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Toggle) View() View {
	return viewOf(t.State())
}

// Check asks the store whether the paper is saved. A positive answer moves
// the toggle to Saved unless the user clicked in the meantime.
func (t *Toggle) Check(ctx context.Context) error {
	exists, err := gateway.CheckPaperExists(ctx, t.sender, t.ID)
	if err != nil {
		t.logger.Errorf("error checking paper %s: %v", t.ID, err)
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if exists && !t.overridden {
		t.state = Saved
	}
	return nil
}

// Click flips the toggle. Saving fetches the metadata of the paper first.
// On any failure the state is left untouched.
func (t *Toggle) Click(ctx context.Context) error {
	t.clicks.Lock()
	defer t.clicks.Unlock()

	t.mu.Lock()
	t.overridden = true
	state := t.state
	t.mu.Unlock()

	switch state {
	case Unsaved:
		paper, err := t.fetcher.Fetch(ctx, t.ID)
		if err != nil {
			t.logger.Errorf("error fetching metadata of %s: %v", t.ID, err)
			return err
		}
		paper = paper.Stamp(t.now())

		if err := gateway.SavePaper(ctx, t.sender, paper); err != nil {
			t.logger.Errorf("error saving paper %s: %v", t.ID, err)
			return err
		}
		t.set(Saved)
	case Saved:
		if err := gateway.RemovePaper(ctx, t.sender, t.ID); err != nil {
			t.logger.Errorf("error removing paper %s: %v", t.ID, err)
			return err
		}
		t.set(Unsaved)
	}
	return nil
}

func (t *Toggle) set(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}
