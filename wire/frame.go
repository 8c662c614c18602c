package wire

import (
	"bufio"
	"io"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
)

// MaxFrameSize bounds a single frame's payload so a corrupt or malicious
// length prefix cannot force an unbounded allocation.
const MaxFrameSize = 64 << 20 // 64 MiB

// WriteFrame writes a varint length prefix followed by payload to w, per
// spec.md §6 ("a varint-encoded length prefix followed by that many bytes
// of protobuf-encoded message").
func WriteFrame(w io.Writer, payload []byte) error {
	prefix := protowire.AppendVarint(nil, uint64(len(payload)))
	if _, err := w.Write(prefix); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame from r. r must be a
// *bufio.Reader (or equivalent ByteReader) since varint decoding needs to
// read one byte at a time without overreading into the payload.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	n, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	if n > MaxFrameSize {
		return nil, rpcerr.New(rpcerr.InvalidArgument, "frame of %d bytes exceeds maximum %d", n, MaxFrameSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readVarint decodes a protobuf varint one byte at a time from a
// io.ByteReader, since protowire.ConsumeVarint needs the whole buffer
// up front and frames arrive over a stream of unknown length.
func readVarint(r io.ByteReader) (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; i < 10; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, rpcerr.New(rpcerr.InvalidArgument, "varint length prefix too long")
}
