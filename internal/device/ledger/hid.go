package ledger

import (
	"context"
	"encoding/binary"
	"io"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	packetSize   = 64
	headerSize   = 5
	channelHi    = 0x01
	channelLo    = 0x01
	tagAPDU      = 0x05
	lengthPrefix = 2
)

var ErrInvalidReplyHeader = errors.New("ledger: invalid reply header")

// Transport exchanges commands with a device application
type Transport interface {
	Exchange(ctx context.Context, cmd Command) ([]byte, error)
	Close() error
}

// HID speaks the Ledger HID framing over a raw device handle.
//
// Every packet is 64 bytes: channel (0x0101), tag (0x05), a big endian
// sequence number and the payload. The payload of the first packet starts
// with the big endian length of the whole APDU.
type HID struct {
	mu     sync.Mutex
	device io.ReadWriteCloser
	logger zerolog.Logger
}

func NewHID(device io.ReadWriteCloser) *HID {
	return &HID{
		device: device,
		logger: log.With().Str("component", "ledger_hid").Logger(),
	}
}

// Exchange sends cmd and returns the reply data without its status word.
// Cancelling ctx closes the device, which aborts a pending confirmation.
func (h *HID) Exchange(ctx context.Context, cmd Command) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	apdu, err := cmd.Bytes()
	if err != nil {
		return nil, err
	}

	type exchangeResult struct {
		reply []byte
		err   error
	}
	resultCh := make(chan exchangeResult, 1)

	go func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		reply, err := h.exchange(apdu)
		resultCh <- exchangeResult{reply: reply, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return nil, res.err
		}
		return splitStatus(res.reply)
	case <-ctx.Done():
		h.logger.Debug().Msg("Exchange cancelled, closing device")
		_ = h.device.Close()
		return nil, ctx.Err()
	}
}

func (h *HID) exchange(apdu []byte) ([]byte, error) {
	for _, packet := range wrapAPDU(apdu) {
		h.logger.Trace().Str("packet", hexutil.Encode(packet)).Msg("Data chunk sent to the Ledger")
		if _, err := h.device.Write(packet); err != nil {
			return nil, errors.Wrap(err, "ledger: failed to write packet")
		}
	}

	return unwrapReply(func(packet []byte) error {
		if _, err := io.ReadFull(h.device, packet); err != nil {
			return errors.Wrap(err, "ledger: failed to read packet")
		}
		h.logger.Trace().Str("packet", hexutil.Encode(packet)).Msg("Data chunk received from the Ledger")
		return nil
	})
}

func (h *HID) Close() error {
	return h.device.Close()
}

// wrapAPDU frames an APDU into zero padded HID packets
func wrapAPDU(apdu []byte) [][]byte {
	payload := make([]byte, lengthPrefix, lengthPrefix+len(apdu))
	binary.BigEndian.PutUint16(payload, uint16(len(apdu)))
	payload = append(payload, apdu...)

	space := packetSize - headerSize
	packets := make([][]byte, 0, (len(payload)+space-1)/space)

	for seq := 0; len(payload) > 0; seq++ {
		packet := make([]byte, packetSize)
		packet[0], packet[1], packet[2] = channelHi, channelLo, tagAPDU
		binary.BigEndian.PutUint16(packet[3:], uint16(seq))

		n := copy(packet[headerSize:], payload)
		payload = payload[n:]
		packets = append(packets, packet)
	}

	return packets
}

// unwrapReply reads packets through read until the announced length is filled
func unwrapReply(read func(packet []byte) error) ([]byte, error) {
	var reply []byte
	var expected int
	packet := make([]byte, packetSize)

	for seq := 0; ; seq++ {
		if err := read(packet); err != nil {
			return nil, err
		}

		if packet[0] != channelHi || packet[1] != channelLo || packet[2] != tagAPDU {
			return nil, ErrInvalidReplyHeader
		}
		if int(binary.BigEndian.Uint16(packet[3:5])) != seq {
			return nil, errors.Errorf("ledger: unexpected packet sequence %d", binary.BigEndian.Uint16(packet[3:5]))
		}

		payload := packet[headerSize:]
		if seq == 0 {
			expected = int(binary.BigEndian.Uint16(payload[:lengthPrefix]))
			reply = make([]byte, 0, expected)
			payload = payload[lengthPrefix:]
		}

		if left := expected - len(reply); left > len(payload) {
			reply = append(reply, payload...)
		} else {
			reply = append(reply, payload[:left]...)
			return reply, nil
		}
	}
}
