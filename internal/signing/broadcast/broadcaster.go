package broadcast

import (
	"context"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-signer/internal/config"
	"github/chapool/go-signer/internal/signing/request"
)

// ChainBroadcaster submits signed transactions to one chain
type ChainBroadcaster interface {
	Broadcast(ctx context.Context, signed []byte) (string, error)
}

// EVM submits signed transactions through eth_sendRawTransaction
type EVM struct {
	client *RPCClient
}

func NewEVM(client *RPCClient) *EVM {
	return &EVM{client: client}
}

func (e *EVM) Broadcast(ctx context.Context, signed []byte) (string, error) {
	var tx types.Transaction
	if err := tx.UnmarshalBinary(signed); err != nil {
		return "", errors.Wrap(err, "failed to decode signed transaction")
	}

	err := e.client.Do(ctx, func(client *rpc.Client) error {
		return ethclient.NewClient(client).SendTransaction(ctx, &tx)
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to send transaction")
	}

	return tx.Hash().Hex(), nil
}

// Substrate submits signed extrinsics through author_submitExtrinsic
type Substrate struct {
	client *RPCClient
}

func NewSubstrate(client *RPCClient) *Substrate {
	return &Substrate{client: client}
}

func (s *Substrate) Broadcast(ctx context.Context, signed []byte) (string, error) {
	var hash string
	err := s.client.Do(ctx, func(client *rpc.Client) error {
		return client.CallContext(ctx, &hash, "author_submitExtrinsic", hexutil.Encode(signed))
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to submit extrinsic")
	}

	return hash, nil
}

// Router picks the broadcaster of a request's chain
type Router struct {
	mu     sync.RWMutex
	chains map[string]ChainBroadcaster
	closer []func()
}

func NewRouter() *Router {
	return &Router{
		chains: make(map[string]ChainBroadcaster),
	}
}

// FromConfig builds a router for every configured chain with an RPC URL.
// Several URLs may be given separated by commas.
func FromConfig(chains []config.Chain) (*Router, error) {
	router := NewRouter()

	for _, chain := range chains {
		if chain.RPCURL == "" {
			continue
		}

		client, err := NewRPCClient(strings.Split(chain.RPCURL, ","))
		if err != nil {
			return nil, errors.Wrapf(err, "chain %s", chain.Name)
		}

		switch request.ChainType(chain.Type) {
		case request.ChainTypeEthereum:
			router.Register(chain.Name, NewEVM(client))
		case request.ChainTypeSubstrate:
			router.Register(chain.Name, NewSubstrate(client))
		default:
			return nil, errors.Errorf("chain %s has unknown type %q", chain.Name, chain.Type)
		}
		router.closer = append(router.closer, client.Close)
	}

	return router, nil
}

func (r *Router) Register(chain string, b ChainBroadcaster) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.chains[chain] = b
}

// Broadcast submits signed for req.Chain and returns the hash reported by
// the node. Chains without a broadcaster are skipped with an empty hash.
func (r *Router) Broadcast(ctx context.Context, req *request.TransactionRequest, signed []byte) (string, error) {
	r.mu.RLock()
	b, ok := r.chains[req.Chain]
	r.mu.RUnlock()

	if !ok {
		log.Debug().Str("chain", req.Chain).Str("request_id", req.ID).Msg("No broadcaster for chain, skipping")
		return "", nil
	}

	return b.Broadcast(ctx, signed)
}

func (r *Router) Close() {
	for _, closeFn := range r.closer {
		closeFn()
	}
}
