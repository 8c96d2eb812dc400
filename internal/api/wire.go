//go:build wireinject

package api

import (
	"testing"

	"github.com/google/wire"
	"github/chapool/go-signer/internal/config"
	"github/chapool/go-signer/internal/metrics"
	"github/chapool/go-signer/internal/signing"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	metrics.New,
	NewI18N,
	NewKeystore,
	NewKeyring,
	NewRegistries,
	NewLedgerManager,
	NewBroadcaster,
	signing.NewInbox,
	NewSigningService,
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet, NewClock, NoTest)
	return new(Server), nil
}

// InitNewServerWithClock returns a new Server instance using the given test's mock clock.
// All the other components are initialized via go wire according to the configuration.
func InitNewServerWithClock(
	_ config.Server,
	t ...*testing.T,
) (*Server, error) {
	wire.Build(serviceSet, NewClock)
	return new(Server), nil
}
