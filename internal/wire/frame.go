// Package wire implements the on-wire framing described by the protocol:
// MD5-tagged, zlib-compressed data frames in the sender-to-receiver
// direction, and small fixed-size ack frames in the reverse direction.
package wire

import (
	"bytes"
	"compress/zlib"
	"crypto/md5"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/arqnet/rudp/internal/config"
)

// ErrOversizeFrame is returned by EncodeDataFrame when the compressed,
// tagged frame would exceed the maximum on-wire datagram size. The caller
// treats this as a configuration error per the protocol's error taxonomy.
var ErrOversizeFrame = errors.New("wire: encoded frame exceeds maximum datagram size")

// EncodeDataFrame builds the on-wire representation of a single data
// segment: an MD5 prefix over the compressed body, followed by the
// compressed body itself. The body, before compression, is
// nonce || seq || payload, all big-endian.
func EncodeDataFrame(nonce, seq uint16, payload []byte) ([]byte, error) {
	var plain bytes.Buffer
	plain.Grow(4 + len(payload))
	_ = binary.Write(&plain, binary.BigEndian, nonce)
	_ = binary.Write(&plain, binary.BigEndian, seq)
	plain.Write(payload)

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(plain.Bytes()); err != nil {
		return nil, errors.Wrap(err, "wire: compress data frame")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "wire: flush compressor")
	}

	tag := md5.Sum(compressed.Bytes())

	frame := make([]byte, 0, config.IntegrityTagSize+compressed.Len())
	frame = append(frame, tag[:config.IntegrityTagSize]...)
	frame = append(frame, compressed.Bytes()...)

	if len(frame) > config.MaxDatagramSize {
		return nil, ErrOversizeFrame
	}
	return frame, nil
}

// DecodeDataFrame validates and decompresses a received datagram,
// returning the carried sequence number, nonce and payload. ok is false
// for any malformed, corrupted or undersized frame; per the protocol's
// error taxonomy these are silently discarded by the caller, never
// surfaced as an error.
func DecodeDataFrame(frame []byte) (nonce, seq uint16, payload []byte, ok bool) {
	if len(frame) <= config.IntegrityTagSize {
		return 0, 0, nil, false
	}
	tag, body := frame[:config.IntegrityTagSize], frame[config.IntegrityTagSize:]

	sum := md5.Sum(body)
	if !bytes.Equal(tag, sum[:config.IntegrityTagSize]) {
		return 0, 0, nil, false
	}

	zr, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return 0, 0, nil, false
	}
	plain, err := io.ReadAll(zr)
	_ = zr.Close()
	if err != nil {
		return 0, 0, nil, false
	}
	if len(plain) < 4 {
		return 0, 0, nil, false
	}

	nonce = binary.BigEndian.Uint16(plain[0:2])
	seq = binary.BigEndian.Uint16(plain[2:4])
	payload = plain[4:]
	return nonce, seq, payload, true
}
