package ledger

import (
	"context"
	"encoding/binary"

	"github.com/pkg/errors"
)

const hardened uint32 = 0x80000000

// Ethereum app
const (
	ethCLA             = 0xe0
	ethInsSignTx       = 0x04
	ethInsSignPersonal = 0x08
	ethP1First         = 0x00
	ethP1More          = 0x80
	ethSignatureLength = 65
)

// Substrate generic app
const (
	substrateCLA        = 0xf9
	substrateInsSign    = 0x02
	substrateInsSignRaw = 0x03
	substrateP1Init     = 0x00
	substrateP1Add      = 0x01
	substrateP1Last     = 0x02
	substrateP2Ed25519  = 0x00
	substrateChunkSize  = 250
)

// EthereumPath is m/44'/60'/account'/0/index
func EthereumPath(account uint32, index uint32) []uint32 {
	//nolint:mnd // BIP44 purpose and coin type
	return []uint32{hardened | 44, hardened | 60, hardened | account, 0, index}
}

// SubstratePath is m/44'/354'/account'/0'/index'
func SubstratePath(account uint32, index uint32) []uint32 {
	//nolint:mnd // BIP44 purpose and coin type
	return []uint32{hardened | 44, hardened | 354, hardened | account, hardened, hardened | index}
}

// Ethereum drives the Ethereum device application
type Ethereum struct {
	Transport Transport
}

// SignTransaction signs an unsigned RLP (or typed) transaction payload and
// returns r || s || v
func (e Ethereum) SignTransaction(ctx context.Context, path []uint32, payload []byte) ([]byte, error) {
	data := append(encodeEthPath(path), payload...)

	reply, err := e.stream(ctx, ethInsSignTx, data)
	if err != nil {
		return nil, err
	}

	return reorderVRS(reply)
}

// SignPersonalMessage signs message with the personal_sign prefix and
// returns r || s || v
func (e Ethereum) SignPersonalMessage(ctx context.Context, path []uint32, message []byte) ([]byte, error) {
	data := encodeEthPath(path)
	data = binary.BigEndian.AppendUint32(data, uint32(len(message)))
	data = append(data, message...)

	reply, err := e.stream(ctx, ethInsSignPersonal, data)
	if err != nil {
		return nil, err
	}

	return reorderVRS(reply)
}

func (e Ethereum) stream(ctx context.Context, ins byte, data []byte) ([]byte, error) {
	var reply []byte
	for i, chunk := range Chunks(data, MaxChunkSize) {
		p1 := byte(ethP1More)
		if i == 0 {
			p1 = ethP1First
		}

		var err error
		reply, err = e.Transport.Exchange(ctx, Command{CLA: ethCLA, INS: ins, P1: p1, P2: 0x00, Data: chunk})
		if err != nil {
			return nil, err
		}
	}

	return reply, nil
}

func encodeEthPath(path []uint32) []byte {
	//nolint:mnd // 4 bytes per path element
	buf := make([]byte, 1, 1+4*len(path))
	buf[0] = byte(len(path))
	for _, component := range path {
		buf = binary.BigEndian.AppendUint32(buf, component)
	}

	return buf
}

// reorderVRS turns the device's v || r || s into r || s || v
func reorderVRS(reply []byte) ([]byte, error) {
	if len(reply) != ethSignatureLength {
		return nil, errors.Errorf("ledger: unexpected signature length %d", len(reply))
	}

	sig := make([]byte, 0, ethSignatureLength)
	sig = append(sig, reply[1:]...)
	sig = append(sig, reply[0])

	return sig, nil
}

// Substrate drives the generic Substrate device application with ed25519 keys
type Substrate struct {
	Transport Transport
}

// Sign signs an encoded extrinsic payload. The reply is a type prefixed
// MultiSignature.
func (s Substrate) Sign(ctx context.Context, path []uint32, payload []byte) ([]byte, error) {
	return s.sign(ctx, substrateInsSign, path, payload)
}

// SignRaw signs arbitrary bytes
func (s Substrate) SignRaw(ctx context.Context, path []uint32, message []byte) ([]byte, error) {
	return s.sign(ctx, substrateInsSignRaw, path, message)
}

func (s Substrate) sign(ctx context.Context, ins byte, path []uint32, payload []byte) ([]byte, error) {
	if _, err := s.Transport.Exchange(ctx, Command{
		CLA:  substrateCLA,
		INS:  ins,
		P1:   substrateP1Init,
		P2:   substrateP2Ed25519,
		Data: encodeSubstratePath(path),
	}); err != nil {
		return nil, err
	}

	chunks := Chunks(payload, substrateChunkSize)
	var reply []byte
	for i, chunk := range chunks {
		p1 := byte(substrateP1Add)
		if i == len(chunks)-1 {
			p1 = substrateP1Last
		}

		var err error
		reply, err = s.Transport.Exchange(ctx, Command{CLA: substrateCLA, INS: ins, P1: p1, P2: substrateP2Ed25519, Data: chunk})
		if err != nil {
			return nil, err
		}
	}

	return reply, nil
}

func encodeSubstratePath(path []uint32) []byte {
	//nolint:mnd // 4 bytes per path element
	buf := make([]byte, 0, 4*len(path))
	for _, component := range path {
		buf = binary.LittleEndian.AppendUint32(buf, component)
	}

	return buf
}
