package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/puravparab/PaperTrail/clients/internal"
	"github.com/puravparab/PaperTrail/gateway"
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client sends gateway requests to a papertrail server. It implements
// gateway.Sender.
type Client struct {
	baseURL string
	client  HTTPClient
}

func NewClient(c HTTPClient, baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  c,
	}
}

func (c *Client) Send(ctx context.Context, r gateway.Request) (gateway.Response, error) {
	body := &bytes.Buffer{}
	if err := json.NewEncoder(body).Encode(r); err != nil {
		return gateway.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/papertrail/v1/messages", c.baseURL), body)
	if err != nil {
		return gateway.Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return gateway.Response{}, err
	}

	var resp gateway.Response
	if err := internal.DecodeResponse(res, &resp); err != nil {
		return gateway.Response{}, err
	}
	return resp, nil
}
