// Package myair talks HTTP JSON to the Advantage Air wall controller on its
// tablet port. State is read with /getSystemData and changes are sent as a
// JSON document in the query string of /setAircon.
package myair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"advantageair2mqtt/aa"

	"github.com/cenkalti/backoff/v4"
)

const DefaultPort = 2025

type Config struct {
	Host    string
	Port    int           // defaults to DefaultPort
	Timeout time.Duration // per-request timeout
	Retries uint64        // transport retries per operation
}

// Client is an HTTP client for one wall controller
type Client struct {
	config  Config
	baseURL string
	http    *http.Client
}

var ErrNotAcknowledged = errors.New("controller did not acknowledge the request")

// New returns a client for the controller at config.Host
func New(config *Config) *Client {
	port := config.Port
	if port == 0 {
		port = DefaultPort
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		config:  *config,
		baseURL: fmt.Sprintf("http://%s:%d", config.Host, port),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetSystemData fetches the full state document
func (c *Client) GetSystemData(ctx context.Context) (*aa.SystemData, error) {
	var data aa.SystemData
	err := c.try(ctx, func() error {
		body, err := c.get(ctx, "/getSystemData")
		if err != nil {
			return err
		}
		return json.Unmarshal(body, &data)
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// SetAircon sends a change request. The controller answers with an ack
// envelope; a false ack carries the rejection reason.
func (c *Client) SetAircon(ctx context.Context, req aa.Request) error {
	change, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return c.try(ctx, func() error {
		body, err := c.get(ctx, "/setAircon?json="+url.QueryEscape(string(change)))
		if err != nil {
			return err
		}
		var ack struct {
			Ack    bool   `json:"ack"`
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal(body, &ack); err != nil {
			return err
		}
		if !ack.Ack {
			// the controller understood and refused, retrying won't help
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrNotAcknowledged, ack.Reason))
		}
		return nil
	})
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status " + strconv.Itoa(resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}

// try runs f with bounded exponential backoff. The tablet controller
// drops requests while its UI is busy, a short retry rides that out.
func (c *Client) try(ctx context.Context, f func() error) error {
	retries := c.config.Retries
	if retries == 0 {
		retries = 3
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	return backoff.Retry(f, backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx))
}
