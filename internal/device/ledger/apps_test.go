package ledger_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/device/ledger"
)

type recordingTransport struct {
	commands []ledger.Command
	reply    []byte
	err      error
}

func (r *recordingTransport) Exchange(_ context.Context, cmd ledger.Command) ([]byte, error) {
	r.commands = append(r.commands, cmd)
	if r.err != nil {
		return nil, r.err
	}

	return r.reply, nil
}

func (r *recordingTransport) Close() error { return nil }

func vrsReply() []byte {
	reply := []byte{0x26}
	reply = append(reply, bytes.Repeat([]byte{0x01}, 32)...)
	reply = append(reply, bytes.Repeat([]byte{0x02}, 32)...)
	return reply
}

func TestEthereumSignTransactionReordersSignature(t *testing.T) {
	transport := &recordingTransport{reply: vrsReply()}
	payload := bytes.Repeat([]byte{0xcc}, 300)

	sig, err := ledger.Ethereum{Transport: transport}.SignTransaction(context.Background(), ledger.EthereumPath(0, 3), payload)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Equal(t, bytes.Repeat([]byte{0x01}, 32), sig[:32])
	assert.Equal(t, bytes.Repeat([]byte{0x02}, 32), sig[32:64])
	assert.Equal(t, byte(0x26), sig[64])

	// 21 path bytes + 300 payload bytes
	require.Len(t, transport.commands, 2)
	first, second := transport.commands[0], transport.commands[1]
	assert.Equal(t, byte(0xe0), first.CLA)
	assert.Equal(t, byte(0x04), first.INS)
	assert.Equal(t, byte(0x00), first.P1)
	assert.Equal(t, byte(0x80), second.P1)
	assert.Len(t, first.Data, 255)
	assert.Len(t, second.Data, 66)

	assert.Equal(t, byte(5), first.Data[0])
	assert.Equal(t, uint32(0x8000002c), binary.BigEndian.Uint32(first.Data[1:5]))
	assert.Equal(t, uint32(3), binary.BigEndian.Uint32(first.Data[17:21]))
}

func TestEthereumRejectsShortSignature(t *testing.T) {
	transport := &recordingTransport{reply: []byte{0x01, 0x02}}

	_, err := ledger.Ethereum{Transport: transport}.SignPersonalMessage(context.Background(), ledger.EthereumPath(0, 0), []byte("hi"))
	assert.Error(t, err)
}

func TestSubstrateSignChunks(t *testing.T) {
	sig := append([]byte{0x00}, bytes.Repeat([]byte{0x07}, 64)...)
	transport := &recordingTransport{reply: sig}
	payload := bytes.Repeat([]byte{0xdd}, 600)

	got, err := ledger.Substrate{Transport: transport}.Sign(context.Background(), ledger.SubstratePath(1, 2), payload)
	require.NoError(t, err)
	assert.Equal(t, sig, got)

	require.Len(t, transport.commands, 4)
	assert.Equal(t, byte(0xf9), transport.commands[0].CLA)
	assert.Equal(t, byte(0x02), transport.commands[0].INS)
	assert.Equal(t, []byte{0x00, 0x01, 0x01, 0x02}, []byte{
		transport.commands[0].P1, transport.commands[1].P1, transport.commands[2].P1, transport.commands[3].P1,
	})

	path := transport.commands[0].Data
	require.Len(t, path, 20)
	assert.Equal(t, uint32(0x80000000|354), binary.LittleEndian.Uint32(path[4:8]))
	assert.Equal(t, uint32(0x80000001), binary.LittleEndian.Uint32(path[8:12]))
	assert.Equal(t, uint32(0x80000002), binary.LittleEndian.Uint32(path[16:20]))

	assert.Len(t, transport.commands[1].Data, 250)
	assert.Len(t, transport.commands[3].Data, 100)
}

func TestSubstrateSignRawUsesRawInstruction(t *testing.T) {
	transport := &recordingTransport{reply: []byte{0x00}}

	_, err := ledger.Substrate{Transport: transport}.SignRaw(context.Background(), ledger.SubstratePath(0, 0), []byte("msg"))
	require.NoError(t, err)
	require.Len(t, transport.commands, 2)
	assert.Equal(t, byte(0x03), transport.commands[1].INS)
	assert.Equal(t, byte(0x02), transport.commands[1].P1)
}
