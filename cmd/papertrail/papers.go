package main

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/puravparab/PaperTrail"
	"github.com/puravparab/PaperTrail/arxiv"
	"github.com/puravparab/PaperTrail/dashboard"
	"github.com/puravparab/PaperTrail/gateway"
)

var (
	listFilter     string
	listSort       string
	listDescending bool

	exportFormat string
	exportOutput string
)

func init() {
	ListPapersCommand.Flags().StringVarP(&listFilter, "filter", "f", "", "only show papers matching this text")
	ListPapersCommand.Flags().StringVarP(&listSort, "sort", "s", "", "sort column: "+strings.Join(dashboard.Columns, ", "))
	ListPapersCommand.Flags().BoolVar(&listDescending, "desc", false, "sort in descending order")

	ExportPapersCommand.Flags().StringVar(&exportFormat, "format", string(dashboard.FormatCSV), "csv, json or xlsx")
	ExportPapersCommand.Flags().StringVarP(&exportOutput, "out", "o", "", "output file, stdout if empty")

	PapersCommand.AddCommand(&ListPapersCommand)
	PapersCommand.AddCommand(&GetPaperCommand)
	PapersCommand.AddCommand(&SearchPapersCommand)
	PapersCommand.AddCommand(&SavePaperCommand)
	PapersCommand.AddCommand(&RemovePaperCommand)
	PapersCommand.AddCommand(&ExportPapersCommand)

	RootCmd.AddCommand(&PapersCommand)
}

var PapersCommand = cobra.Command{
	Use:   "papers",
	Short: "Manage the saved papers",
	Long:  "List, save, remove and export the saved papers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var ListPapersCommand = cobra.Command{
	Use:   "list",
	Short: "List the saved papers",
	Long:  "List the saved papers, optionally filtered and sorted",
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, release := newSender()
		defer release()

		d, err := dashboard.Load(context.Background(), sender)
		if err != nil {
			return err
		}

		d.Filter(listFilter)
		if listSort != "" {
			if err := d.SortBy(listSort); err != nil {
				return err
			}
			if listDescending {
				d.SortBy(listSort)
			}
		}

		rows := d.Rows()
		for _, paper := range rows {
			printPaper(cmd, paper)
		}
		cmd.Printf("%d/%d papers\n", len(rows), len(d.Papers()))
		return nil
	},
}

var GetPaperCommand = cobra.Command{
	Use:   "get <id>",
	Short: "Show a saved paper",
	Long:  "Show a saved paper with its summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, release := newSender()
		defer release()

		paper, err := gateway.GetPaper(context.Background(), sender, arxiv.ExtractReference(args[0]))
		if err != nil {
			return err
		}

		printPaper(cmd, paper)
		cmd.Println(paper.Summary)
		return nil
	},
}

var SearchPapersCommand = cobra.Command{
	Use:   "search <field> <value>",
	Short: "Search the saved papers",
	Long:  "Search the saved papers on one field: " + strings.Join(papertrail.LookupFields, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, release := newSender()
		defer release()

		papers, err := gateway.SearchPapers(context.Background(), sender, papertrail.Lookup{Field: args[0], Value: args[1]})
		if err != nil {
			return err
		}

		for _, paper := range papers {
			printPaper(cmd, paper)
		}
		return nil
	},
}

var SavePaperCommand = cobra.Command{
	Use:   "save <id or url>...",
	Short: "Save papers",
	Long:  "Fetch the metadata of the papers from arXiv and save them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		sender, release := newSender()
		defer release()

		fetcher, err := arxiv.NewFetcher(config.Arxiv)
		if err != nil {
			return err
		}

		for _, arg := range args {
			id := arxiv.ExtractReference(arg)

			paper, err := fetcher.Fetch(ctx, id)
			if err != nil {
				return err
			}
			paper = paper.Stamp(time.Now())

			if err := gateway.SavePaper(ctx, sender, paper); err != nil {
				return err
			}
			logger.Printf("paper #%s - %s saved", paper.ID, paper.Title)
		}
		return nil
	},
}

var RemovePaperCommand = cobra.Command{
	Use:   "remove <id>...",
	Short: "Remove papers",
	Long:  "Remove papers from the store. Removing a paper that is not saved is not an error",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, release := newSender()
		defer release()

		for _, arg := range args {
			id := arxiv.ExtractReference(arg)
			if err := gateway.RemovePaper(context.Background(), sender, id); err != nil {
				return err
			}
			logger.Printf("paper #%s removed", id)
		}
		return nil
	},
}

var ExportPapersCommand = cobra.Command{
	Use:   "export",
	Short: "Export the saved papers",
	Long:  "Export every saved paper as csv, json or xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, release := newSender()
		defer release()

		d, err := dashboard.Load(context.Background(), sender)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		return d.Export(w, dashboard.Format(exportFormat))
	},
}

func printPaper(cmd *cobra.Command, paper papertrail.Paper) {
	added := paper.DateAdded
	if t, ok := dashboard.ParseDate(paper.DateAdded); ok {
		added = humanize.Time(t)
	}
	cmd.Printf("%-16s %s\n", paper.ID, paper.Title)
	cmd.Printf("%-16s %s, added %s\n", "", strings.Join(paper.Authors, ", "), added)
}
