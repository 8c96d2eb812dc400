package keyring

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/util"
	"github/chapool/go-signer/internal/wallet/keystore"
)

// Keyring holds the locally managed key pairs, backed by a keystore.
// Pairs start locked; Unlock decrypts the keystore entry into memory.
type Keyring struct {
	mu         sync.RWMutex
	pairs      map[string]*Pair
	keystore   keystore.Service
	ss58Prefix uint16
}

// New creates an empty keyring. ed25519 addresses are rendered with ss58Prefix.
func New(ks keystore.Service, ss58Prefix uint16) *Keyring {
	return &Keyring{
		pairs:      make(map[string]*Pair),
		keystore:   ks,
		ss58Prefix: ss58Prefix,
	}
}

// canonical maps an address to its lookup key: lower case hex for
// Ethereum addresses, the hex public key for SS58 addresses
func canonical(address string) string {
	if strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X") {
		return strings.ToLower(address)
	}

	pub, err := codec.SubstratePublicKey(address)
	if err != nil {
		return address
	}

	return "ss58:" + hex.EncodeToString(pub)
}

// Load registers a locked pair for every keystore entry
func (k *Keyring) Load(ctx context.Context) error {
	entries, err := k.keystore.List(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list keystores")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	for _, entry := range entries {
		key := canonical(entry.Address)
		if _, ok := k.pairs[key]; ok {
			continue
		}

		pair := &Pair{address: entry.Address, keyType: entry.KeyType}
		if entry.KeyType == keystore.KeyTypeEd25519 {
			if pub, err := codec.SubstratePublicKey(entry.Address); err == nil {
				pair.public = pub
			}
		}
		k.pairs[key] = pair
	}

	util.LogFromContext(ctx).Info().Int("pairs", len(k.pairs)).Msg("Loaded keyring")

	return nil
}

// Add encrypts secret into the keystore and registers its pair locked
func (k *Keyring) Add(ctx context.Context, keyType keystore.KeyType, secret []byte, password string) (*Pair, error) {
	public, address, err := publicIdentity(keyType, secret, k.ss58Prefix)
	if err != nil {
		return nil, err
	}

	if _, err := k.keystore.Store(ctx, address, keyType, secret, password); err != nil {
		return nil, errors.Wrap(err, "failed to store key")
	}

	pair := &Pair{address: address, keyType: keyType, public: public}

	k.mu.Lock()
	k.pairs[canonical(address)] = pair
	k.mu.Unlock()

	return pair, nil
}

// Generate creates a fresh random key of keyType
func (k *Keyring) Generate(ctx context.Context, keyType keystore.KeyType, password string) (*Pair, error) {
	var secret []byte

	switch keyType {
	case keystore.KeyTypeSecp256k1:
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate secp256k1 key")
		}
		secret = crypto.FromECDSA(key)
	case keystore.KeyTypeEd25519:
		secret = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(secret); err != nil {
			return nil, errors.Wrap(err, "failed to generate ed25519 seed")
		}
	default:
		return nil, errors.Wrapf(ErrWrongKeyType, "%s", keyType)
	}
	defer wipe(secret)

	return k.Add(ctx, keyType, secret, password)
}

// DeriveFromSeed adds the secp256k1 pair found at path below seed
func (k *Keyring) DeriveFromSeed(ctx context.Context, seed []byte, path string, password string) (*Pair, error) {
	secret, err := DerivePrivateKey(seed, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive private key")
	}
	defer wipe(secret)

	return k.Add(ctx, keystore.KeyTypeSecp256k1, secret, password)
}

// Pair returns the pair of address, locked or not
func (k *Keyring) Pair(address string) (*Pair, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	pair, ok := k.pairs[canonical(address)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAccount, "address %s", address)
	}

	return pair, nil
}

// Unlock decrypts the keystore entry of address into its pair
func (k *Keyring) Unlock(ctx context.Context, address string, password string) error {
	pair, err := k.Pair(address)
	if err != nil {
		return err
	}

	entry, err := k.keystore.Get(ctx, pair.Address())
	if err != nil {
		return errors.Wrap(err, "failed to load keystore")
	}

	secret, err := k.keystore.Decrypt(ctx, entry, password)
	if err != nil {
		return err
	}

	public, derived, err := publicIdentity(pair.KeyType(), secret, k.ss58Prefix)
	if err != nil {
		wipe(secret)
		return err
	}
	if canonical(derived) != canonical(pair.Address()) {
		wipe(secret)
		return errors.Errorf("keystore secret belongs to %s, not %s", derived, pair.Address())
	}

	pair.unlock(secret, public)
	util.LogFromContext(ctx).Info().Str("address", pair.Address()).Msg("Unlocked key pair")

	return nil
}

// Lock wipes the secret of address from memory
func (k *Keyring) Lock(address string) error {
	pair, err := k.Pair(address)
	if err != nil {
		return err
	}

	pair.lock()
	return nil
}

// LockAll wipes every secret from memory
func (k *Keyring) LockAll() {
	k.mu.RLock()
	defer k.mu.RUnlock()

	for _, pair := range k.pairs {
		pair.lock()
	}
}

// Addresses lists the addresses held by the keyring
func (k *Keyring) Addresses() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	addresses := make([]string, 0, len(k.pairs))
	for _, pair := range k.pairs {
		addresses = append(addresses, pair.Address())
	}
	sort.Strings(addresses)

	return addresses
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
