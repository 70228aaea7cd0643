package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/puravparab/PaperTrail/arxiv"
	"github.com/puravparab/PaperTrail/errors"
	"github.com/puravparab/PaperTrail/scanner"
)

var (
	scanOutput string
	scanClicks []string
)

func init() {
	ScanCommand.Flags().StringVarP(&scanOutput, "out", "o", "", "write the augmented page to this file")
	ScanCommand.Flags().StringSliceVar(&scanClicks, "click", nil, "ids of the papers to toggle after the scan")

	RootCmd.AddCommand(&ScanCommand)
}

var ScanCommand = cobra.Command{
	Use:   "scan <url>",
	Short: "Scan an arXiv page",
	Long:  "Scan an arXiv abstract, search or listing page and show which papers are saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		pageURL := args[0]

		sender, release := newSender()
		defer release()

		fetcher, err := arxiv.NewFetcher(config.Arxiv)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
		if err != nil {
			return errors.New("invalid page url", errors.WithCause(err))
		}
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			return errors.New("could not load page", errors.WithCause(err))
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return errors.New(fmt.Sprintf("could not load page: status %d", res.StatusCode), errors.WithCode(res.StatusCode))
		}

		page, err := scanner.New(sender, fetcher, logger, config.Dashboard.URL).Scan(ctx, pageURL, res.Body)
		if err != nil {
			return err
		}

		for _, id := range scanClicks {
			toggle := page.ToggleFor(id)
			if toggle == nil {
				logger.Errorf("paper %s is not on the page", id)
				continue
			}
			// Errors are logged by the toggle
			toggle.Click(ctx)
		}

		cmd.Printf("%d papers found (%s layout)\n", len(page.Toggles), page.Layout)
		for _, toggle := range page.Toggles {
			view := toggle.View()
			cmd.Printf("  %-16s %-8s [%s]\n", toggle.ID, toggle.State(), view.Label)
		}

		if scanOutput == "" {
			return nil
		}

		f, err := os.Create(scanOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		return page.Render(f)
	},
}
