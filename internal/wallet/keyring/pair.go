package keyring

import (
	"crypto/ed25519"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-signer/internal/wallet/keystore"
)

var (
	ErrLocked         = errors.New("key pair is locked")
	ErrUnknownAccount = errors.New("account is not in the keyring")
	ErrWrongKeyType   = errors.New("unsupported key type")
)

// Pair is a key pair that holds its secret only while unlocked
type Pair struct {
	mu      sync.RWMutex
	address string
	keyType keystore.KeyType
	public  []byte
	secret  []byte
}

func (p *Pair) Address() string {
	return p.address
}

func (p *Pair) KeyType() keystore.KeyType {
	return p.keyType
}

// PublicKey is the 32 byte ed25519 key, or the 65 byte uncompressed
// secp256k1 key once the pair was unlocked
func (p *Pair) PublicKey() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return append([]byte(nil), p.public...)
}

func (p *Pair) IsLocked() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.secret == nil
}

// Sign signs message with the unlocked secret.
// secp256k1 expects a 32 byte digest and returns r || s || v (v in {0,1}).
// ed25519 signs message as is and returns the raw 64 byte signature.
func (p *Pair) Sign(message []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.secret == nil {
		return nil, errors.Wrapf(ErrLocked, "address %s", p.address)
	}

	switch p.keyType {
	case keystore.KeyTypeSecp256k1:
		key, err := crypto.ToECDSA(p.secret)
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert secret to ECDSA")
		}

		return crypto.Sign(message, key)
	case keystore.KeyTypeEd25519:
		return ed25519.Sign(ed25519.NewKeyFromSeed(p.secret), message), nil
	default:
		return nil, errors.Wrapf(ErrWrongKeyType, "%s", p.keyType)
	}
}

func (p *Pair) unlock(secret []byte, public []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.wipe()
	p.secret = secret
	p.public = public
}

func (p *Pair) lock() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.wipe()
}

func (p *Pair) wipe() {
	for i := range p.secret {
		p.secret[i] = 0
	}
	p.secret = nil
}
