package ledger

import (
	"github.com/pkg/errors"
)

// MaxChunkSize is the largest data field a single command can carry
const MaxChunkSize = 255

// Command is a single APDU sent to a device application
type Command struct {
	CLA  byte
	INS  byte
	P1   byte
	P2   byte
	Data []byte
}

// Bytes encodes the command as CLA INS P1 P2 Lc Data
func (c Command) Bytes() ([]byte, error) {
	if len(c.Data) > MaxChunkSize {
		return nil, errors.Errorf("apdu data too long: %d bytes", len(c.Data))
	}

	//nolint:mnd // header is CLA INS P1 P2 Lc
	apdu := make([]byte, 0, 5+len(c.Data))
	apdu = append(apdu, c.CLA, c.INS, c.P1, c.P2, byte(len(c.Data)))
	apdu = append(apdu, c.Data...)

	return apdu, nil
}

// Chunks splits data into pieces of at most size bytes. An empty input
// still yields one empty chunk.
func Chunks(data []byte, size int) [][]byte {
	if len(data) == 0 {
		return [][]byte{{}}
	}

	chunks := make([][]byte, 0, (len(data)+size-1)/size)
	for len(data) > 0 {
		n := size
		if len(data) < n {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}

	return chunks
}
