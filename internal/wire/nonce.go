package wire

// FrameEncoder stamps outgoing data frames with a monotonically
// increasing per-endpoint nonce, mirroring the sender's tx_nonce field.
type FrameEncoder struct {
	nonce uint16
}

// Encode assigns the next nonce, encodes the frame, and advances the
// counter. The nonce wraps at 2^16 like any other fixed-width counter;
// the protocol only requires it be unseen by the peer within the run.
func (e *FrameEncoder) Encode(seq uint16, payload []byte) ([]byte, error) {
	frame, err := EncodeDataFrame(e.nonce, seq, payload)
	if err != nil {
		return nil, err
	}
	e.nonce++
	return frame, nil
}

// FrameDecoder validates and decompresses received data frames, silently
// discarding anything malformed, corrupted or already-seen. It owns the
// rx_nonces_seen set: nonce dedup is inseparable from decoding a frame,
// per the protocol's decode procedure.
type FrameDecoder struct {
	seen map[uint16]struct{}
}

// NewFrameDecoder returns a FrameDecoder with an empty dedup set.
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{seen: make(map[uint16]struct{})}
}

// Decode returns ok=false for a malformed, corrupted, or duplicate frame.
// On success the frame's nonce is recorded so a later duplicate of the
// same datagram is discarded.
func (d *FrameDecoder) Decode(frame []byte) (seq uint16, payload []byte, ok bool) {
	nonce, seq, payload, ok := DecodeDataFrame(frame)
	if !ok {
		return 0, nil, false
	}
	if _, dup := d.seen[nonce]; dup {
		return 0, nil, false
	}
	d.seen[nonce] = struct{}{}
	return seq, payload, true
}

// AckEncoder stamps outgoing ack frames with a monotonically increasing
// per-endpoint nonce, mirroring the receiver's tx_nonce field.
type AckEncoder struct {
	nonce uint16
}

// Encode assigns the next nonce, encodes the cumulative ack, and advances
// the counter.
func (e *AckEncoder) Encode(h uint16) []byte {
	frame := EncodeAck(e.nonce, h)
	e.nonce++
	return frame
}

// AckDecoder validates received ack frames and owns the sender's
// ack_nonces_seen set, keyed by the decoded uint16 nonce value rather
// than the raw wire bytes, for symmetry with FrameDecoder.
type AckDecoder struct {
	seen map[uint16]struct{}
}

// NewAckDecoder returns an AckDecoder with an empty dedup set.
func NewAckDecoder() *AckDecoder {
	return &AckDecoder{seen: make(map[uint16]struct{})}
}

// Decode returns ok=false for a malformed or duplicate ack frame.
func (d *AckDecoder) Decode(frame []byte) (seqLow byte, ok bool) {
	nonce, seqLow, ok := DecodeAck(frame)
	if !ok {
		return 0, false
	}
	if _, dup := d.seen[nonce]; dup {
		return 0, false
	}
	d.seen[nonce] = struct{}{}
	return seqLow, true
}
