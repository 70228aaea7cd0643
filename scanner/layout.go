package scanner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/puravparab/PaperTrail/arxiv"
)

// Layout is the kind of arXiv page being scanned.
type Layout int

const (
	LayoutNone Layout = iota
	LayoutAbstract
	LayoutSearch
	LayoutList
)

func (l Layout) String() string {
	switch l {
	case LayoutAbstract:
		return "abstract"
	case LayoutSearch:
		return "search"
	case LayoutList:
		return "list"
	}
	return "none"
}

// DetectLayout returns the layout of the page served at path.
func DetectLayout(path string) Layout {
	switch {
	case strings.HasPrefix(path, "/abs/"):
		return LayoutAbstract
	case strings.HasPrefix(path, "/search/"):
		return LayoutSearch
	case strings.HasPrefix(path, "/list/"):
		return LayoutList
	}
	return LayoutNone
}

// Candidate is a paper occurrence on a page: its id and the element holding
// its title.
type Candidate struct {
	ID    string
	Title *goquery.Selection
}

// Extract returns the papers found in doc, in document order. The same id
// can appear more than once.
func Extract(path string, doc *goquery.Document) []Candidate {
	switch DetectLayout(path) {
	case LayoutAbstract:
		return extractAbstract(path, doc)
	case LayoutSearch:
		return extractSearch(doc)
	case LayoutList:
		return extractList(doc)
	}
	return nil
}

func extractAbstract(path string, doc *goquery.Document) []Candidate {
	id := arxiv.ExtractReference(path)
	title := doc.Find(".title.mathjax").First()
	if id == "" || title.Length() == 0 {
		return nil
	}
	return []Candidate{{ID: id, Title: title}}
}

func extractSearch(doc *goquery.Document) []Candidate {
	var candidates []Candidate
	doc.Find("li.arxiv-result").Each(func(_ int, result *goquery.Selection) {
		idElement := result.Find("p.list-title.is-inline-block").First()
		title := result.Find("p.title.is-5.mathjax").First()
		if idElement.Length() == 0 || title.Length() == 0 {
			return
		}

		href, ok := idElement.Find("a").First().Attr("href")
		if !ok {
			return
		}
		candidates = append(candidates, Candidate{ID: arxiv.ExtractReference(href), Title: title})
	})
	return candidates
}

// extractList pairs the dt (id) and dd (title) of each dl. A dl whose counts
// do not match is skipped.
func extractList(doc *goquery.Document) []Candidate {
	var candidates []Candidate
	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		dts := dl.Find("dt")
		dds := dl.Find("dd")
		if dts.Length() != dds.Length() {
			return
		}

		for i := 0; i < dts.Length(); i++ {
			a := dts.Eq(i).Find(`a[title="Abstract"]`).First()
			title := dds.Eq(i).Find(".list-title.mathjax").First()
			if a.Length() == 0 || title.Length() == 0 {
				continue
			}

			href, ok := a.Attr("href")
			if !ok {
				continue
			}
			candidates = append(candidates, Candidate{ID: arxiv.ExtractReference(href), Title: title})
		}
	})
	return candidates
}
