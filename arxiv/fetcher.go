package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
)

var (
	apiURLStr = "https://export.arxiv.org/api/query"

	textPipe = CleaningPipe(
		strings.TrimSpace,
		OneLine,
	)

	// ErrNoEntry is returned when the feed has no usable entry for the id.
	ErrNoEntry = errors.New("no entry found", errors.NotFound())
)

type Configuration struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

type responseAuthor struct {
	Name string `xml:"name"`
}

type responseEntry struct {
	ID        string           `xml:"id"`
	Title     string           `xml:"title"`
	Summary   string           `xml:"summary"`
	Authors   []responseAuthor `xml:"author"`
	Published string           `xml:"published"`
}

type response struct {
	Entries []responseEntry `xml:"entry"`
}

// Fetcher retrieves paper metadata from the arXiv API. It implements
// papertrail.MetadataFetcher.
type Fetcher struct {
	client *http.Client
	apiURL string
}

// NewFetcher creates a fetcher from conf. The API URL defaults to the
// public arXiv export API and the timeout to 20s.
func NewFetcher(conf Configuration) (*Fetcher, error) {
	apiURL := conf.URL
	if apiURL == "" {
		apiURL = apiURLStr
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, errors.New("invalid arxiv url", errors.WithCause(err))
	}

	timeout := 20 * time.Second
	if conf.Timeout != "" {
		d, err := time.ParseDuration(conf.Timeout)
		if err != nil {
			return nil, errors.New("invalid arxiv timeout", errors.WithCause(err))
		}
		timeout = d
	}

	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		apiURL: apiURL,
	}, nil
}

// Fetch returns the paper with the given arXiv id. Only the first entry of
// the feed is used. DateAdded is left empty.
func (f *Fetcher) Fetch(ctx context.Context, id string) (papertrail.Paper, error) {
	u, err := f.craftRefURL(id)
	if err != nil {
		return papertrail.Paper{}, papertrail.ErrMetadataFetch(id, err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return papertrail.Paper{}, papertrail.ErrMetadataFetch(id, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return papertrail.Paper{}, papertrail.ErrMetadataFetch(id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return papertrail.Paper{}, papertrail.ErrMetadataFetch(id, err)
	}

	if resp.StatusCode != http.StatusOK {
		err := errors.New(fmt.Sprintf("arxiv answered %d", resp.StatusCode), errors.WithCode(resp.StatusCode))
		return papertrail.Paper{}, papertrail.ErrMetadataFetch(id, err)
	}

	var r response
	err = xml.Unmarshal(data, &r)
	if err != nil {
		return papertrail.Paper{}, papertrail.ErrMetadataFetch(id, err)
	}

	if len(r.Entries) == 0 || isErrorEntry(r.Entries[0]) {
		return papertrail.Paper{}, papertrail.ErrMetadataFetch(id, ErrNoEntry)
	}

	return parsePaper(id, r.Entries[0]), nil
}

func (f *Fetcher) craftRefURL(ref string) (*url.URL, error) {
	u, err := url.Parse(f.apiURL)
	if err != nil {
		return nil, err
	}
	query := u.Query()

	query.Add("id_list", ref)

	u.RawQuery = query.Encode()
	return u, nil
}

func parsePaper(id string, entry responseEntry) papertrail.Paper {
	authors := make([]string, 0, len(entry.Authors))
	for _, author := range entry.Authors {
		name := textPipe(author.Name)
		if name != "" {
			authors = append(authors, name)
		}
	}

	return papertrail.Paper{
		ID:        id,
		Title:     textPipe(entry.Title),
		Authors:   authors,
		Summary:   textPipe(entry.Summary),
		Published: strings.TrimSpace(entry.Published),
	}
}

var referencePrefixes = []string{"abs/", "pdf/"}

// isErrorEntry detects the entry the API sends back in place of a paper
// when the id is malformed.
func isErrorEntry(entry responseEntry) bool {
	return strings.Contains(entry.ID, "arxiv.org/api/errors")
}

// ExtractReference returns the arXiv id of an abstract or pdf url, absolute
// or relative to arxiv.org. Bare ids are returned as is. Old style ids keep
// their archive (hep-th/9901001) and the version, if any, is kept.
func ExtractReference(ref string) string {
	ref = strings.TrimSpace(ref)
	if u, err := url.Parse(ref); err == nil && u.Host != "" {
		ref = u.Path
	}

	ref = strings.TrimPrefix(ref, "/")
	ref = strings.TrimPrefix(ref, "arxiv.org/")
	for _, prefix := range referencePrefixes {
		if strings.HasPrefix(ref, prefix) {
			ref = strings.TrimPrefix(ref, prefix)
			ref = strings.TrimSuffix(ref, ".pdf")
			break
		}
	}
	return ref
}
