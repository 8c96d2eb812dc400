package codec

import (
	"encoding/json"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	scalecodec "github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"github/chapool/go-signer/internal/signing/signerrors"
	"golang.org/x/crypto/blake2b"
)

const (
	ExtrinsicVersion     = 4
	signedExtrinsicFlag  = 0b1000_0000
	hashLength           = 32
	MaxUnhashedPayload   = 256
	multiSigEd25519      = 0x00
	multiSigSr25519      = 0x01
	multiSigEcdsa        = 0x02
	rawSignatureLength   = 64
	ecdsaSignatureLength = 65
)

// Signed extension identifiers understood by the payload encoder
const (
	ExtCheckNonZeroSender       = "CheckNonZeroSender"
	ExtCheckSpecVersion         = "CheckSpecVersion"
	ExtCheckTxVersion           = "CheckTxVersion"
	ExtCheckGenesis             = "CheckGenesis"
	ExtCheckMortality           = "CheckMortality"
	ExtCheckEra                 = "CheckEra"
	ExtCheckNonce               = "CheckNonce"
	ExtCheckWeight              = "CheckWeight"
	ExtChargeTransactionPayment = "ChargeTransactionPayment"
	ExtChargeAssetTxPayment     = "ChargeAssetTxPayment"
	ExtCheckMetadataHash        = "CheckMetadataHash"
	ExtPrevalidateAttests       = "PrevalidateAttests"
)

// DefaultSignedExtensions is the extension order of a stock substrate runtime
var DefaultSignedExtensions = []string{
	ExtCheckNonZeroSender,
	ExtCheckSpecVersion,
	ExtCheckTxVersion,
	ExtCheckGenesis,
	ExtCheckMortality,
	ExtCheckNonce,
	ExtCheckWeight,
	ExtChargeTransactionPayment,
}

// ChainRegistry carries the per-chain metadata needed to encode payloads
type ChainRegistry struct {
	Name             string
	SS58Prefix       uint16
	SignedExtensions []string
}

// SignerPayloadJSON is the raw substrate payload handed to signers
type SignerPayloadJSON struct {
	Address            string                `json:"address"`
	AssetID            hexutil.Bytes         `json:"assetId,omitempty"`
	BlockHash          hexutil.Bytes         `json:"blockHash"`
	BlockNumber        math.HexOrDecimal64   `json:"blockNumber"`
	Era                hexutil.Bytes         `json:"era"`
	GenesisHash        hexutil.Bytes         `json:"genesisHash"`
	MetadataHash       hexutil.Bytes         `json:"metadataHash,omitempty"`
	Method             hexutil.Bytes         `json:"method"`
	Mode               *math.HexOrDecimal64  `json:"mode,omitempty"`
	Nonce              math.HexOrDecimal64   `json:"nonce"`
	SignedExtensions   []string              `json:"signedExtensions"`
	SpecVersion        math.HexOrDecimal64   `json:"specVersion"`
	Tip                *math.HexOrDecimal256 `json:"tip,omitempty"`
	TransactionVersion math.HexOrDecimal64   `json:"transactionVersion"`
	Version            uint8                 `json:"version"`
}

// ExtrinsicPayload is the signable wrapper around an unsigned call
type ExtrinsicPayload struct {
	Address            string
	Method             []byte
	Era                []byte
	Nonce              uint64
	Tip                *big.Int
	SpecVersion        uint32
	TransactionVersion uint32
	GenesisHash        []byte
	BlockHash          []byte
	AssetID            []byte
	Mode               byte
	MetadataHash       []byte
	Version            uint8
	SignedExtensions   []string
}

// ParseSignerPayload decodes a substrate payload and builds its extrinsic payload
func ParseSignerPayload(raw json.RawMessage, reg *ChainRegistry) (*ExtrinsicPayload, error) {
	var p SignerPayloadJSON
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, signerrors.NewSerialization(err, "failed to decode substrate payload")
	}

	return NewExtrinsicPayload(&p, reg)
}

// NewExtrinsicPayload validates p against the chain registry
func NewExtrinsicPayload(p *SignerPayloadJSON, reg *ChainRegistry) (*ExtrinsicPayload, error) {
	version := p.Version
	if version == 0 {
		version = ExtrinsicVersion
	}
	if version != ExtrinsicVersion {
		return nil, signerrors.NewSerialization(nil, "unsupported extrinsic version %d", version)
	}

	if len(p.Method) == 0 {
		return nil, signerrors.NewSerialization(nil, "substrate payload is missing method")
	}
	if len(p.GenesisHash) != hashLength || len(p.BlockHash) != hashLength {
		return nil, signerrors.NewSerialization(nil, "genesisHash and blockHash must be %d bytes", hashLength)
	}
	if len(p.MetadataHash) != 0 && len(p.MetadataHash) != hashLength {
		return nil, signerrors.NewSerialization(nil, "metadataHash must be %d bytes", hashLength)
	}
	if _, err := SubstratePublicKey(p.Address); err != nil {
		return nil, signerrors.NewSerialization(err, "invalid payload address %q", p.Address)
	}

	era := []byte(p.Era)
	if len(era) == 0 {
		era = []byte{0x00}
	}

	extensions := p.SignedExtensions
	if len(extensions) == 0 && reg != nil {
		extensions = reg.SignedExtensions
	}
	if len(extensions) == 0 {
		extensions = DefaultSignedExtensions
	}

	payload := &ExtrinsicPayload{
		Address:            p.Address,
		Method:             p.Method,
		Era:                era,
		Nonce:              uint64(p.Nonce),
		Tip:                bigOrZero(p.Tip),
		SpecVersion:        uint32(p.SpecVersion),
		TransactionVersion: uint32(p.TransactionVersion),
		GenesisHash:        p.GenesisHash,
		BlockHash:          p.BlockHash,
		AssetID:            p.AssetID,
		MetadataHash:       p.MetadataHash,
		Version:            version,
		SignedExtensions:   append([]string(nil), extensions...),
	}

	if p.Mode != nil {
		payload.Mode = byte(*p.Mode)
	}

	if _, _, err := payload.extensions(); err != nil {
		return nil, err
	}

	return payload, nil
}

// extensions returns the extra (in-extrinsic) and additional (signed-only)
// bytes in the order of p.SignedExtensions
func (p *ExtrinsicPayload) extensions() ([]byte, []byte, error) {
	var extra, additional scaleBuffer

	for _, ext := range p.SignedExtensions {
		switch ext {
		case ExtCheckSpecVersion:
			additional.encode(types.NewU32(p.SpecVersion))
		case ExtCheckTxVersion:
			additional.encode(types.NewU32(p.TransactionVersion))
		case ExtCheckGenesis:
			additional.encode(types.NewHash(p.GenesisHash))
		case ExtCheckMortality, ExtCheckEra:
			extra.encode(types.Data(p.Era))
			additional.encode(types.NewHash(p.BlockHash))
		case ExtCheckNonce:
			extra.encode(types.NewUCompactFromUInt(p.Nonce))
		case ExtChargeTransactionPayment:
			extra.encode(types.NewUCompact(p.tip()))
		case ExtChargeAssetTxPayment:
			extra.encode(types.NewUCompact(p.tip()))
			extra.option(len(p.AssetID) > 0, types.Data(p.AssetID))
		case ExtCheckMetadataHash:
			extra.encode(types.NewU8(p.Mode))
			additional.option(len(p.MetadataHash) > 0, types.NewHash(p.MetadataHash))
		case ExtCheckNonZeroSender, ExtCheckWeight, ExtPrevalidateAttests:
		default:
			return nil, nil, signerrors.NewSerialization(nil, "unsupported signed extension %s", ext)
		}
	}

	extraBytes, err := extra.Bytes()
	if err != nil {
		return nil, nil, signerrors.NewSerialization(err, "failed to encode signed extensions")
	}

	additionalBytes, err := additional.Bytes()
	if err != nil {
		return nil, nil, signerrors.NewSerialization(err, "failed to encode signed extensions")
	}

	return extraBytes, additionalBytes, nil
}

func (p *ExtrinsicPayload) tip() *big.Int {
	if p.Tip == nil {
		return new(big.Int)
	}

	return p.Tip
}

// Encode returns the SCALE encoded signing payload: method ++ extra ++ additional
func (p *ExtrinsicPayload) Encode() ([]byte, error) {
	extra, additional, err := p.extensions()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(p.Method)+len(extra)+len(additional))
	out = append(out, p.Method...)
	out = append(out, extra...)
	out = append(out, additional...)

	return out, nil
}

// Signable returns the bytes a key signs, hashing payloads above 256 bytes
func (p *ExtrinsicPayload) Signable() ([]byte, error) {
	enc, err := p.Encode()
	if err != nil {
		return nil, err
	}

	signable, _ := HashIfLong(enc)
	return signable, nil
}

// HashIfLong returns blake2b-256(b) when b is longer than 256 bytes
func HashIfLong(b []byte) ([]byte, bool) {
	if len(b) > MaxUnhashedPayload {
		h := blake2b.Sum256(b)
		return h[:], true
	}

	return b, false
}

// ParseMultiSignature decodes a type-prefixed signature. A bare 64 byte
// signature is read as ed25519.
func ParseMultiSignature(sig []byte) (types.MultiSignature, error) {
	if len(sig) == rawSignatureLength {
		return types.MultiSignature{IsEd25519: true, AsEd25519: types.NewSignature(sig)}, nil
	}

	if len(sig) == 0 {
		return types.MultiSignature{}, signerrors.NewSerialization(nil, "empty substrate signature")
	}

	switch sig[0] {
	case multiSigEd25519, multiSigSr25519:
		if len(sig) != rawSignatureLength+1 {
			return types.MultiSignature{}, signerrors.NewSerialization(nil, "invalid signature length %d", len(sig))
		}
	case multiSigEcdsa:
		if len(sig) != ecdsaSignatureLength+1 {
			return types.MultiSignature{}, signerrors.NewSerialization(nil, "invalid ecdsa signature length %d", len(sig))
		}
	default:
		return types.MultiSignature{}, signerrors.NewSerialization(nil, "unknown signature type 0x%02x", sig[0])
	}

	var res types.MultiSignature
	if err := scalecodec.Decode(sig, &res); err != nil {
		return types.MultiSignature{}, signerrors.NewSerialization(err, "failed to decode multi signature")
	}

	return res, nil
}

// Ed25519MultiSignature wraps a raw ed25519 signature
func Ed25519MultiSignature(raw []byte) ([]byte, error) {
	if len(raw) != rawSignatureLength {
		return nil, errors.Errorf("ed25519 signature must be %d bytes, got %d", rawSignatureLength, len(raw))
	}

	return scalecodec.Encode(types.MultiSignature{IsEd25519: true, AsEd25519: types.NewSignature(raw)})
}

// SignedExtrinsic encodes the v4 signed extrinsic for the signer's public key
func (p *ExtrinsicPayload) SignedExtrinsic(pub []byte, sig []byte) ([]byte, error) {
	if len(pub) != PublicKeyLength {
		return nil, errors.Errorf("public key must be %d bytes, got %d", PublicKeyLength, len(pub))
	}

	signature, err := ParseMultiSignature(sig)
	if err != nil {
		return nil, err
	}

	extra, _, err := p.extensions()
	if err != nil {
		return nil, err
	}

	signer, err := types.NewMultiAddressFromAccountID(pub)
	if err != nil {
		return nil, errors.Wrap(err, "invalid signer public key")
	}

	var body scaleBuffer
	body.encode(
		types.NewU8(signedExtrinsicFlag|ExtrinsicVersion),
		signer,
		signature,
		types.Data(extra),
		types.Data(p.Method),
	)

	raw, err := body.Bytes()
	if err != nil {
		return nil, err
	}

	return scalecodec.Encode(types.NewBytes(raw))
}

// ExtrinsicHash returns the blake2b-256 hash of an encoded extrinsic
func ExtrinsicHash(extrinsic []byte) string {
	h := blake2b.Sum256(extrinsic)
	return hexutil.Encode(h[:])
}

// Registries maps chain names to their registry metadata
type Registries map[string]*ChainRegistry

// Lookup returns the registry for chain, or nil when the chain is unknown
func (r Registries) Lookup(chain string) *ChainRegistry {
	if r == nil {
		return nil
	}

	return r[chain]
}
