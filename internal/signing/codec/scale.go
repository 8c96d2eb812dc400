package codec

import (
	"bytes"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	scalecodec "github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/pkg/errors"
)

// EncodeCompact returns the SCALE compact encoding of v
func EncodeCompact(v *big.Int) ([]byte, error) {
	if v == nil || v.Sign() < 0 {
		v = new(big.Int)
	}

	return scalecodec.Encode(types.NewUCompact(v))
}

// DecodeCompact decodes a compact integer and returns it with the number of bytes read
func DecodeCompact(buf []byte) (*big.Int, int, error) {
	r := bytes.NewReader(buf)

	v, err := scale.NewDecoder(r).DecodeUintCompact()
	if err != nil {
		return nil, 0, errors.Wrap(err, "invalid compact integer")
	}

	return v, len(buf) - r.Len(), nil
}

// scaleBuffer appends SCALE encoded values and keeps the first error
type scaleBuffer struct {
	buf bytes.Buffer
	err error
}

func (b *scaleBuffer) encode(values ...interface{}) {
	enc := scale.NewEncoder(&b.buf)
	for _, v := range values {
		if b.err != nil {
			return
		}
		b.err = enc.Encode(v)
	}
}

func (b *scaleBuffer) option(hasValue bool, v interface{}) {
	if b.err != nil {
		return
	}
	b.err = scale.NewEncoder(&b.buf).EncodeOption(hasValue, v)
}

func (b *scaleBuffer) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, errors.Wrap(b.err, "failed to scale encode")
	}

	return b.buf.Bytes(), nil
}
