package cmd

import (
	"github.com/puravparab/PaperTrail/gateway"
	gatewayhttp "github.com/puravparab/PaperTrail/gateway/http"
	"github.com/puravparab/PaperTrail/log"
	"github.com/puravparab/PaperTrail/store"
)

// Start wires the gateway on top of a lazily opened store and registers its
// http routes on srv. The returned bridge sends requests in process, the
// returned function waits for in-flight requests and releases the store.
func Start(srv gatewayhttp.Server, open store.OpenFunc, logger log.Logger) (*gateway.Bridge, func()) {
	lazy := store.NewLazy(open)

	dispatcher := gateway.NewDispatcher(lazy, logger.WithField("component", "gateway"))
	bridge := gateway.NewBridge(dispatcher)
	gatewayhttp.RegisterHTTP(srv, bridge)

	return bridge, func() {
		dispatcher.Wait()
		if err := lazy.Close(); err != nil {
			logger.Error("error closing store:", err)
		}
	}
}
