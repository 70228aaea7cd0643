package main

import (
	"fmt"
	"net/http"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/puravparab/PaperTrail/arxiv"
	gatewayclient "github.com/puravparab/PaperTrail/clients/gateway"
	"github.com/puravparab/PaperTrail/errors"
	"github.com/puravparab/PaperTrail/gateway"
	"github.com/puravparab/PaperTrail/log"
	"github.com/puravparab/PaperTrail/store"
)

type Configuration struct {
	store.Configuration

	HTTP struct {
		Addr string `toml:"addr"`
	} `toml:"http"`
	Arxiv   arxiv.Configuration `toml:"arxiv"`
	Gateway struct {
		URL string `toml:"url"`
	} `toml:"gateway"`
	Dashboard struct {
		URL string `toml:"url"`
	} `toml:"dashboard"`
}

var (
	// flags
	env        string
	configFile string

	// logger
	logger log.Logger

	config Configuration
)

func init() {
	RootCmd.PersistentFlags().StringVar(&env, "env", "dev", "environment")
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file")
}

var RootCmd = cobra.Command{
	Use:          "papertrail",
	Short:        "Bookmark arXiv papers while browsing",
	Long:         "Bookmark arXiv papers while browsing and keep track of them in a dashboard",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = log.New(env)

		if configFile == "" {
			configFile = path.Join("configuration", fmt.Sprintf("config.%s.toml", env))
		}

		if _, err := toml.DecodeFile(configFile, &config); err != nil {
			return errors.New("error reading configuration", errors.WithCause(err))
		}
		return nil
	},
}

// newSender returns the gateway sender the client commands go through: the
// http gateway when one is configured, the store itself otherwise. The
// returned function releases the sender.
func newSender() (gateway.Sender, func()) {
	if config.Gateway.URL != "" {
		return gatewayclient.NewClient(http.DefaultClient, config.Gateway.URL), func() {}
	}

	lazy := store.NewLazy(store.Opener(config.Configuration))
	dispatcher := gateway.NewDispatcher(lazy, logger.WithField("component", "gateway"))
	return gateway.NewBridge(dispatcher), func() {
		dispatcher.Wait()
		lazy.Close()
	}
}
