package wire

import "testing"

func TestFrameDecoderRejectsDuplicateNonce(t *testing.T) {
	enc := &FrameEncoder{}
	dec := NewFrameDecoder()

	frame, err := enc.Encode(1, []byte("payload"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	seq, payload, ok := dec.Decode(frame)
	if !ok || seq != 1 || string(payload) != "payload" {
		t.Fatalf("first Decode: seq=%d payload=%q ok=%v", seq, payload, ok)
	}

	if _, _, ok := dec.Decode(frame); ok {
		t.Fatalf("Decode accepted a replayed frame")
	}
}

func TestFrameEncoderAdvancesNonce(t *testing.T) {
	enc := &FrameEncoder{}
	dec := NewFrameDecoder()

	for i := uint16(1); i <= 3; i++ {
		frame, err := enc.Encode(i, nil)
		if err != nil {
			t.Fatalf("Encode(%d): %v", i, err)
		}
		if seq, _, ok := dec.Decode(frame); !ok || seq != i {
			t.Fatalf("Decode(%d): seq=%d ok=%v", i, seq, ok)
		}
	}
}

func TestAckDecoderRejectsDuplicateNonce(t *testing.T) {
	enc := &AckEncoder{}
	dec := NewAckDecoder()

	frame := enc.Encode(5)
	if _, ok := dec.Decode(frame); !ok {
		t.Fatalf("first Decode rejected a well-formed ack")
	}
	if _, ok := dec.Decode(frame); ok {
		t.Fatalf("Decode accepted a replayed ack")
	}
}
