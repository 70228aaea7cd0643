package scanner

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
	"github.com/puravparab/PaperTrail/gateway"
	"github.com/puravparab/PaperTrail/log"
)

const (
	htmlViewURL = "https://ar5iv.labs.arxiv.org/html/%s"
	pdfViewURL  = "https://arxiv.org/pdf/%s.pdf"

	// maxChecks bounds the existence checks running at once.
	maxChecks = 8

	buttonStyle = "padding: 4px 10px; font-size: 17px; color: white; border: none; border-radius: 4px; cursor: pointer; text-decoration: none;"
)

// Scanner augments arXiv pages with a save toggle per paper.
type Scanner struct {
	sender       gateway.Sender
	fetcher      papertrail.MetadataFetcher
	logger       log.Logger
	dashboardURL string

	// Now stamps the date a paper is added. Defaults to time.Now.
	Now func() time.Time
}

func New(sender gateway.Sender, fetcher papertrail.MetadataFetcher, logger log.Logger, dashboardURL string) *Scanner {
	return &Scanner{
		sender:       sender,
		fetcher:      fetcher,
		logger:       logger,
		dashboardURL: dashboardURL,
		Now:          time.Now,
	}
}

// Scan parses the page served at pageURL and checks, for every paper found,
// whether it is already saved. A failed check only leaves its toggle
// Unsaved.
func (s *Scanner) Scan(ctx context.Context, pageURL string, r io.Reader) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, errors.New("invalid page url", errors.BadRequest(), errors.WithCause(err))
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.New("could not parse page", errors.BadRequest(), errors.WithCause(err))
	}

	page := &Page{
		URL:    u,
		Layout: DetectLayout(u.Path),
		doc:    doc,
	}

	for _, candidate := range Extract(u.Path, doc) {
		toggle := &Toggle{
			ID:      candidate.ID,
			sender:  s.sender,
			fetcher: s.fetcher,
			logger:  s.logger.WithField("paper", candidate.ID),
			now:     s.Now,
		}
		page.Toggles = append(page.Toggles, toggle)
		page.widgets = append(page.widgets, newWidget(toggle, candidate.Title))
	}
	page.addDashboardLink(s.dashboardURL)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxChecks)
	for _, toggle := range page.Toggles {
		g.Go(func() error {
			toggle.Check(gctx)
			return nil
		})
	}
	g.Wait()

	s.logger.Debugf("%d papers found on %s (%s)", len(page.Toggles), u.Path, page.Layout)
	return page, nil
}

// Page is a scanned page. Toggles are in document order.
type Page struct {
	URL     *url.URL
	Layout  Layout
	Toggles []*Toggle

	mu      sync.Mutex
	doc     *goquery.Document
	widgets []*widget
}

// ToggleFor returns the first toggle of the paper id, nil if the paper is
// not on the page.
func (p *Page) ToggleFor(id string) *Toggle {
	for _, toggle := range p.Toggles {
		if toggle.ID == id {
			return toggle
		}
	}
	return nil
}

// Render writes the augmented page, reflecting the current state of every
// toggle.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, wg := range p.widgets {
		wg.refresh()
	}

	for _, n := range p.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

func (p *Page) addDashboardLink(dashboardURL string) {
	if dashboardURL == "" {
		return
	}

	div := element(atom.Div, "position: fixed; top: 0px; left: 250px; background-color: #f2f0e8; color: #b31a1b; font-size: 20px; font-weight: 600; padding: 10px; border-radius: 1px; z-index: 9999; cursor: pointer;")
	div.AppendChild(text("PaperTrail"))

	link := element(atom.A, "")
	link.Attr = append(link.Attr,
		html.Attribute{Key: "class", Val: "papertrail-dashboard"},
		html.Attribute{Key: "href", Val: dashboardURL},
		html.Attribute{Key: "target", Val: "_blank"},
	)
	link.AppendChild(div)

	p.doc.Find("body").First().AppendNodes(link)
}

// widget binds a toggle to the nodes showing it.
type widget struct {
	toggle     *Toggle
	title      *goquery.Selection
	titleStyle string
	button     *html.Node
}

func newWidget(toggle *Toggle, title *goquery.Selection) *widget {
	titleStyle, _ := title.Attr("style")

	button := element(atom.Button, "")
	button.Attr = append(button.Attr,
		html.Attribute{Key: "class", Val: "papertrail-save"},
		html.Attribute{Key: "data-paper-id", Val: toggle.ID},
	)

	container := element(atom.Div, "display: inline-flex; align-items: center; margin-left: 10px;")
	container.Attr = append(container.Attr, html.Attribute{Key: "class", Val: "papertrail-buttons"})
	container.AppendChild(button)
	container.AppendChild(linkButton("papertrail-html", "HTML", fmt.Sprintf(htmlViewURL, toggle.ID)))
	container.AppendChild(linkButton("papertrail-pdf", "PDF", fmt.Sprintf(pdfViewURL, toggle.ID)))

	title.AppendNodes(container)

	wg := &widget{
		toggle:     toggle,
		title:      title,
		titleStyle: titleStyle,
		button:     button,
	}
	wg.refresh()
	return wg
}

func (wg *widget) refresh() {
	view := wg.toggle.View()

	for c := wg.button.FirstChild; c != nil; c = wg.button.FirstChild {
		wg.button.RemoveChild(c)
	}
	wg.button.AppendChild(text(view.Label))
	setAttr(wg.button, "style", fmt.Sprintf("margin-right: 10px; background-color: %s; %s", view.ButtonColor, buttonStyle))

	style := wg.titleStyle
	if view.TitleColor != "" {
		style = joinStyle(style, "color: "+view.TitleColor)
	}
	if style == "" {
		wg.title.RemoveAttr("style")
	} else {
		wg.title.SetAttr("style", style)
	}
}

func joinStyle(style, decl string) string {
	style = strings.TrimSuffix(strings.TrimSpace(style), ";")
	if style == "" {
		return decl + ";"
	}
	return style + "; " + decl + ";"
}

func linkButton(class, label, href string) *html.Node {
	a := element(atom.A, "margin-right: 10px; background-color: #1976d2; "+buttonStyle)
	a.Attr = append(a.Attr,
		html.Attribute{Key: "class", Val: class},
		html.Attribute{Key: "href", Val: href},
		html.Attribute{Key: "target", Val: "_blank"},
	)
	a.AppendChild(text(label))
	return a
}

func element(a atom.Atom, style string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
	}
	if style != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: style})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
