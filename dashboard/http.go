package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
	"github.com/puravparab/PaperTrail/gateway"
)

// Server defines the interface to register the http handlers.
type Server interface {
	RegisterHandler(path, method string, f http.Handler)
}

var contentTypes = map[Format]string{
	FormatCSV:  "text/csv; charset=utf-8",
	FormatJSON: "application/json; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type viewRequest struct {
	Query      string
	Column     string
	Descending bool
	Selected   string
	Format     Format
}

type viewResponse struct {
	request   viewRequest
	dashboard *Dashboard
}

// RegisterHTTP serves the dashboard page on /papertrail/dashboard and the
// exports on /papertrail/v1/export.
func RegisterHTTP(srv Server, sender gateway.Sender) {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(encodeError),
	}

	ep := makeViewEndpoint(sender)

	pageHandler := kithttp.NewServer(
		ep,
		decodeViewRequest,
		encodePage,
		opts...,
	)

	exportHandler := kithttp.NewServer(
		ep,
		decodeExportRequest,
		encodeExport,
		opts...,
	)

	srv.RegisterHandler("/papertrail/dashboard", "GET", pageHandler)
	srv.RegisterHandler("/papertrail/v1/export", "GET", exportHandler)
}

func makeViewEndpoint(s gateway.Sender) endpoint.Endpoint {
	return func(ctx context.Context, r interface{}) (interface{}, error) {
		req := r.(viewRequest)

		d, err := Load(ctx, s)
		if err != nil {
			return nil, err
		}

		d.Filter(req.Query)
		if req.Column != "" {
			if err := d.SortBy(req.Column); err != nil {
				return nil, err
			}
			if req.Descending {
				d.SortBy(req.Column)
			}
		}

		return viewResponse{request: req, dashboard: d}, nil
	}
}

func decodeViewRequest(_ context.Context, r *http.Request) (interface{}, error) {
	q := r.URL.Query()
	return viewRequest{
		Query:      q.Get("q"),
		Column:     q.Get("sort"),
		Descending: q.Get("dir") == Descending.String(),
		Selected:   q.Get("paper"),
	}, nil
}

func decodeExportRequest(_ context.Context, r *http.Request) (interface{}, error) {
	format := Format(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatCSV
	}
	if _, ok := contentTypes[format]; !ok {
		return nil, errors.New(fmt.Sprintf("unknown export format %q", format), errors.BadRequest())
	}

	return viewRequest{Format: format}, nil
}

func encodeExport(_ context.Context, w http.ResponseWriter, response interface{}) error {
	res := response.(viewResponse)
	format := res.request.Format

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="papertrail.%s"`, format))
	return res.dashboard.Export(w, format)
}

func encodePage(_ context.Context, w http.ResponseWriter, response interface{}) error {
	res := response.(viewResponse)
	column, direction := res.dashboard.Sort()

	headers := make([]pageHeader, 0, len(pageColumns))
	for _, c := range pageColumns {
		dir := Ascending
		if c.Column == column && direction == Ascending {
			dir = Descending
		}

		v := url.Values{}
		v.Set("sort", c.Column)
		v.Set("dir", dir.String())
		if res.request.Query != "" {
			v.Set("q", res.request.Query)
		}
		headers = append(headers, pageHeader{Label: c.Label, Href: "?" + v.Encode()})
	}

	// Row links keep the current filter and sort.
	view := url.Values{}
	if res.request.Query != "" {
		view.Set("q", res.request.Query)
	}
	if column != "" {
		view.Set("sort", column)
		view.Set("dir", direction.String())
	}

	rows := res.dashboard.Rows()
	data := pageData{
		Query:    res.request.Query,
		Headers:  headers,
		Rows:     make([]pageRow, len(rows)),
		Total:    len(res.dashboard.papers),
		Selected: res.request.Selected,
	}
	for i, paper := range rows {
		data.Rows[i] = newPageRow(paper, view)
	}

	if res.request.Selected != "" {
		for _, paper := range res.dashboard.papers {
			if paper.ID == res.request.Selected {
				data.Detail = newPageDetail(paper)
				break
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return pageTemplate.Execute(w, data)
}

func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	statusCode := http.StatusInternalServerError
	if err, ok := err.(errors.Error); ok {
		statusCode = err.Code()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}

var pageColumns = []struct {
	Column string
	Label  string
}{
	{ColumnID, "ID"},
	{ColumnTitle, "Title"},
	{ColumnAuthors, "Authors"},
	{ColumnSummary, "Summary"},
	{ColumnPublished, "Published"},
	{ColumnDateAdded, "Date Added"},
}

type pageHeader struct {
	Label string
	Href  string
}

type pageRow struct {
	ID        string
	DetailURL string
	URL       string
	Title     string
	FullTitle string
	Authors   string
	Summary   string
	Published string
	DateAdded string
}

// pageDetail is the untruncated view of the selected paper.
type pageDetail struct {
	ID        string
	Title     string
	Authors   []string
	Summary   string
	Published string
	DateAdded string
	URL       string
	HTMLURL   string
	PDFURL    string
}

type pageData struct {
	Query    string
	Headers  []pageHeader
	Rows     []pageRow
	Total    int
	Selected string
	Detail   *pageDetail
}

func newPageRow(paper papertrail.Paper, view url.Values) pageRow {
	v := url.Values{}
	for k, vs := range view {
		v[k] = vs
	}
	v.Set("paper", paper.ID)

	authors := value(paper, ColumnAuthors)
	return pageRow{
		ID:        paper.ID,
		DetailURL: "?" + v.Encode(),
		URL:       fmt.Sprintf("https://arxiv.org/abs/%s", paper.ID),
		Title:     truncate(paper.Title, 50),
		FullTitle: paper.Title,
		Authors:   truncate(authors, 50),
		Summary:   truncate(paper.Summary, 100),
		Published: paper.Published,
		DateAdded: paper.DateAdded,
	}
}

func newPageDetail(paper papertrail.Paper) *pageDetail {
	return &pageDetail{
		ID:        paper.ID,
		Title:     paper.Title,
		Authors:   paper.Authors,
		Summary:   paper.Summary,
		Published: paper.Published,
		DateAdded: paper.DateAdded,
		URL:       fmt.Sprintf("https://arxiv.org/abs/%s", paper.ID),
		HTMLURL:   fmt.Sprintf("https://ar5iv.labs.arxiv.org/html/%s", paper.ID),
		PDFURL:    fmt.Sprintf("https://arxiv.org/pdf/%s.pdf", paper.ID),
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>PaperTrail</title>
</head>
<body>
<h1 style="color: #b31a1b">PaperTrail</h1>
<form method="get"><input type="search" name="q" value="{{.Query}}" placeholder="Search papers"></form>
<p><a href="/papertrail/v1/export?format=csv">Export CSV</a> <a href="/papertrail/v1/export?format=json">Export JSON</a> <a href="/papertrail/v1/export?format=xlsx">Export XLSX</a></p>
{{if eq .Total 0}}<p>No saved papers found.</p>{{else}}
<table class="paper-table">
<tr>{{range .Headers}}<th><a href="{{.Href}}">{{.Label}}</a></th>{{end}}</tr>
{{range .Rows}}<tr>
<td><a href="{{.DetailURL}}" class="paper-detail-link">{{.ID}}</a></td>
<td><a href="{{.URL}}" target="_blank" rel="noopener noreferrer" title="{{.FullTitle}}">{{.Title}}</a></td>
<td>{{.Authors}}</td>
<td>{{.Summary}}</td>
<td>{{.Published}}</td>
<td>{{.DateAdded}}</td>
</tr>{{end}}
</table>{{end}}
{{with .Detail}}<div class="paper-detail" id="paper-{{.ID}}">
<h2>{{.Title}}</h2>
<p class="paper-authors">{{range $i, $a := .Authors}}{{if $i}}, {{end}}{{$a}}{{end}}</p>
<p>Published {{.Published}}, added {{.DateAdded}}</p>
<p class="paper-summary">{{.Summary}}</p>
<p><a href="{{.URL}}" target="_blank" rel="noopener noreferrer">Abstract</a> <a href="{{.HTMLURL}}" target="_blank" rel="noopener noreferrer">HTML</a> <a href="{{.PDFURL}}" target="_blank" rel="noopener noreferrer">PDF</a></p>
</div>{{else}}{{if .Selected}}<p class="paper-detail">Paper {{.Selected}} is not saved.</p>{{end}}{{end}}
</body>
</html>
`))
