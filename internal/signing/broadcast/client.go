package broadcast

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RPCClient wraps JSON-RPC connections to several endpoints of one chain and
// fails over between them
type RPCClient struct {
	urls    []string
	clients []*rpc.Client
	mu      sync.Mutex
	current int
}

// NewRPCClient creates a client for urls. Endpoints are dialed on first use.
func NewRPCClient(urls []string) (*RPCClient, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one RPC URL is required")
	}

	return &RPCClient{
		urls:    urls,
		clients: make([]*rpc.Client, len(urls)),
	}, nil
}

// Close closes all open connections
func (c *RPCClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, client := range c.clients {
		if client != nil {
			client.Close()
			c.clients[i] = nil
		}
	}
}

// Do runs call against the current endpoint and moves on to the next one on
// transport failures. Errors reported by the node itself are returned as is.
func (c *RPCClient) Do(ctx context.Context, call func(client *rpc.Client) error) error {
	var lastErr error

	for attempt := 0; attempt < len(c.urls); attempt++ {
		idx, client, err := c.client(ctx)
		if err == nil {
			err = call(client)
			if err == nil {
				return nil
			}

			var rpcErr rpc.Error
			if errors.As(err, &rpcErr) || ctx.Err() != nil {
				return err
			}
		}

		log.Warn().
			Str("url", c.urls[idx]).
			Err(err).
			Msg("RPC endpoint failed, trying next")

		lastErr = err
		c.advance(idx)
	}

	return errors.Wrap(lastErr, "all RPC endpoints are unavailable")
}

func (c *RPCClient) client(ctx context.Context) (int, *rpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.current
	if c.clients[idx] != nil {
		return idx, c.clients[idx], nil
	}

	client, err := rpc.DialContext(ctx, c.urls[idx])
	if err != nil {
		return idx, nil, errors.Wrapf(err, "failed to dial %s", c.urls[idx])
	}
	c.clients[idx] = client

	return idx, client, nil
}

// advance drops the failed connection and points at the next endpoint
func (c *RPCClient) advance(failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clients[failed] != nil {
		c.clients[failed].Close()
		c.clients[failed] = nil
	}

	if c.current == failed {
		c.current = (failed + 1) % len(c.urls)
	}
}
