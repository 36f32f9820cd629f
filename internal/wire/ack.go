package wire

import "github.com/arqnet/rudp/internal/config"

// EncodeAck builds the four-byte ack frame for a cumulative high-water
// sequence value h: nonce_hi, nonce_lo, (h+1) mod 256, h mod 256. The low
// byte of h is all the wire carries; reconstructing the full value is the
// sender's job (see sendwin.ReconstructAck).
func EncodeAck(nonce uint16, h uint16) []byte {
	lo := byte(h)
	return []byte{
		byte(nonce >> 8),
		byte(nonce),
		lo + 1,
		lo,
	}
}

// DecodeAck validates a received ack frame. ok is false for anything
// malformed: wrong length, or a checksum byte that doesn't match
// (seqLow+1) mod 256. On success it returns the nonce and the low 8 bits
// of the acked cumulative sequence.
func DecodeAck(frame []byte) (nonce uint16, seqLow byte, ok bool) {
	if len(frame) != config.AckFrameSize {
		return 0, 0, false
	}
	nonce = uint16(frame[0])<<8 | uint16(frame[1])
	checksum, seqLow := frame[2], frame[3]
	if checksum != seqLow+1 {
		return 0, 0, false
	}
	return nonce, seqLow, true
}
