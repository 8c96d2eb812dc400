package keyring

import (
	"crypto/ed25519"
	"crypto/sha512"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/wallet/keystore"
	"golang.org/x/crypto/pbkdf2"
)

// DefaultEthereumPath is the first account of the BIP44 Ethereum tree
const DefaultEthereumPath = "m/44'/60'/0'/0/0"

// SeedFromMnemonic converts a mnemonic into a BIP39 seed:
// PBKDF2(mnemonic, "mnemonic" + passphrase, 2048, 64, SHA512)
func SeedFromMnemonic(mnemonic string, passphrase string) []byte {
	const (
		pbkdf2Iterations = 2048
		pbkdf2KeyLength  = 64
	)

	return pbkdf2.Key(
		[]byte(strings.Join(strings.Fields(mnemonic), " ")),
		[]byte("mnemonic"+passphrase),
		pbkdf2Iterations,
		pbkdf2KeyLength,
		sha512.New,
	)
}

// DerivePrivateKey derives a secp256k1 secret from seed on a BIP44 path.
// The caller must wipe the returned key.
func DerivePrivateKey(seed []byte, path string) ([]byte, error) {
	indices, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	for _, index := range indices {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
	}

	return key.Key, nil
}

// ParsePath parses "m/44'/60'/0'/0/0" into child indices with the hardened bit set
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) < 2 || parts[0] != "m" {
		return nil, errors.Errorf("invalid BIP44 path: %s", path)
	}

	indices := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		var offset uint32
		if strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h") {
			offset = bip32.FirstHardenedChild
			part = part[:len(part)-1]
		}

		index, err := strconv.ParseUint(part, 10, 31)
		if err != nil {
			return nil, errors.Errorf("invalid path segment: %s", part)
		}

		indices = append(indices, uint32(index)+offset)
	}

	return indices, nil
}

// publicIdentity returns the public key and address of a secret.
// ss58Prefix is only used for ed25519.
func publicIdentity(keyType keystore.KeyType, secret []byte, ss58Prefix uint16) ([]byte, string, error) {
	switch keyType {
	case keystore.KeyTypeSecp256k1:
		key, err := crypto.ToECDSA(secret)
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to convert to ECDSA private key")
		}

		return crypto.FromECDSAPub(&key.PublicKey), crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
	case keystore.KeyTypeEd25519:
		if len(secret) != ed25519.SeedSize {
			return nil, "", errors.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(secret))
		}

		pub, ok := ed25519.NewKeyFromSeed(secret).Public().(ed25519.PublicKey)
		if !ok {
			return nil, "", errors.New("failed to cast public key to ed25519")
		}

		address, err := codec.EncodeSS58(pub, ss58Prefix)
		if err != nil {
			return nil, "", err
		}

		return []byte(pub), address, nil
	default:
		return nil, "", errors.Wrapf(ErrWrongKeyType, "%s", keyType)
	}
}
