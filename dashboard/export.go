package dashboard

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/errors"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

const xlsxSheet = "Papers"

var exportHeader = []string{"arxiv_id", "title", "authors", "date_published", "date_added"}

// Export writes the full set of papers, ignoring the filter and the sort.
func (d *Dashboard) Export(w io.Writer, format Format) error {
	return Export(w, format, d.papers)
}

func Export(w io.Writer, format Format, papers []papertrail.Paper) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, papers)
	case FormatJSON:
		return WriteJSON(w, papers)
	case FormatXLSX:
		return WriteXLSX(w, papers)
	}
	return errors.New(fmt.Sprintf("unknown export format %q", format), errors.BadRequest())
}

// WriteCSV writes one row per paper, authors joined by ";". Fields holding
// commas, quotes or new lines are quoted.
func WriteCSV(w io.Writer, papers []papertrail.Paper) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, paper := range papers {
		if err := cw.Write(exportRow(paper)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the papers as a JSON array indented with 2 spaces.
func WriteJSON(w io.Writer, papers []papertrail.Paper) error {
	if papers == nil {
		papers = []papertrail.Paper{}
	}

	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteXLSX writes a workbook with a single sheet laid out like the CSV
// export.
func WriteXLSX(w io.Writer, papers []papertrail.Paper) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err := f.SetCellStyle(xlsxSheet, "A1", lastCol, headerStyle); err != nil {
		return err
	}

	for i, paper := range papers {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		row := exportRow(paper)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(xlsxSheet, "B", "C", 50); err != nil {
		return err
	}
	return f.Write(w)
}

func exportRow(paper papertrail.Paper) []string {
	return []string{
		paper.ID,
		paper.Title,
		strings.Join(paper.Authors, ";"),
		paper.Published,
		paper.DateAdded,
	}
}
