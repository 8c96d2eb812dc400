package codec

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/vedhavyas/go-subkey/v2"
)

const (
	PublicKeyLength = 32
	ss58FullMax     = 16383
)

// EncodeSS58 renders a 32 byte public key as an SS58 address for the network prefix
func EncodeSS58(pub []byte, prefix uint16) (string, error) {
	if len(pub) != PublicKeyLength {
		return "", errors.Errorf("public key must be %d bytes, got %d", PublicKeyLength, len(pub))
	}
	if prefix > ss58FullMax {
		return "", errors.Errorf("ss58 prefix %d out of range", prefix)
	}

	return subkey.SS58Encode(pub, prefix), nil
}

// DecodeSS58 returns the public key and network prefix of an SS58 address
func DecodeSS58(address string) ([]byte, uint16, error) {
	prefix, pub, err := subkey.SS58Decode(address)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "invalid ss58 address %q", address)
	}

	if len(pub) != PublicKeyLength {
		return nil, 0, errors.Errorf("unexpected ss58 public key length %d", len(pub))
	}

	return pub, prefix, nil
}

// SubstratePublicKey accepts an SS58 address or a hex encoded public key
func SubstratePublicKey(address string) ([]byte, error) {
	if has0xPrefix(address) {
		pub, err := hexutil.Decode(address)
		if err != nil {
			return nil, errors.Wrap(err, "invalid hex public key")
		}
		if len(pub) != PublicKeyLength {
			return nil, errors.Errorf("public key must be %d bytes, got %d", PublicKeyLength, len(pub))
		}
		return pub, nil
	}

	pub, _, err := DecodeSS58(address)
	return pub, err
}

// SameSubstrateAccount compares two addresses by public key, ignoring the network prefix
func SameSubstrateAccount(a, b string) bool {
	pa, err := SubstratePublicKey(a)
	if err != nil {
		return false
	}

	pb, err := SubstratePublicKey(b)
	if err != nil {
		return false
	}

	return bytes.Equal(pa, pb)
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
