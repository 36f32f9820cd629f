package sendwin

import (
	"testing"
	"time"
)

func TestAssignAdvancesNextSeqAndRecordsWindow(t *testing.T) {
	tr := New()
	now := time.Unix(1000, 0)

	seq := tr.Assign([]byte("a"), now)
	if seq != 1 {
		t.Fatalf("seq = %d, want 1", seq)
	}
	if tr.NextSeq() != 2 {
		t.Fatalf("NextSeq = %d, want 2", tr.NextSeq())
	}
	if p, ok := tr.Payload(1); !ok || string(p) != "a" {
		t.Fatalf("Payload(1) = %q, %v", p, ok)
	}
}

func TestHasCapacityRespectsEffectiveWindow(t *testing.T) {
	tr := New()
	now := time.Unix(1000, 0)
	for i := 0; i < 3; i++ {
		tr.Assign([]byte("x"), now)
	}
	if tr.HasCapacity(3) {
		t.Fatalf("HasCapacity(3) = true with 3 outstanding, want false")
	}
	if !tr.HasCapacity(4) {
		t.Fatalf("HasCapacity(4) = false with 3 outstanding, want true")
	}
}

func TestApplyAckAdvancingRetiresWindowAndReportsSample(t *testing.T) {
	tr := New()
	t0 := time.Unix(1000, 0)
	tr.Assign([]byte("a"), t0)
	tr.Assign([]byte("b"), t0.Add(time.Millisecond))

	t1 := t0.Add(100 * time.Millisecond)
	res := tr.ApplyAck(1, t1)
	if !res.Advancing {
		t.Fatalf("ApplyAck(1) not advancing")
	}
	if !res.HasSample || res.Sample != 100*time.Millisecond {
		t.Fatalf("ApplyAck(1) sample = %v, hasSample = %v", res.Sample, res.HasSample)
	}
	if tr.Base() != 2 {
		t.Fatalf("Base = %d, want 2", tr.Base())
	}
	if _, ok := tr.Payload(1); ok {
		t.Fatalf("Payload(1) still present after retirement")
	}
	if _, ok := tr.Payload(2); !ok {
		t.Fatalf("Payload(2) should still be outstanding")
	}
}

func TestApplyAckNonAdvancingIncrementsDupCount(t *testing.T) {
	tr := New()
	now := time.Unix(1000, 0)
	tr.Assign([]byte("a"), now)

	// base is 1; an ack for 0 never advances it.
	res := tr.ApplyAck(0, now)
	if res.Advancing {
		t.Fatalf("ApplyAck(0) advancing, want non-advancing")
	}
	if tr.DupCount() != 1 {
		t.Fatalf("DupCount = %d, want 1", tr.DupCount())
	}
}

func TestApplyAckExcludesRetransmittedSampleViaClearSentTime(t *testing.T) {
	tr := New()
	t0 := time.Unix(1000, 0)
	tr.Assign([]byte("a"), t0)
	tr.ClearSentTime(1) // simulate a retransmit clearing the sample

	res := tr.ApplyAck(1, t0.Add(time.Second))
	if !res.Advancing {
		t.Fatalf("ApplyAck(1) not advancing")
	}
	if res.HasSample {
		t.Fatalf("ApplyAck(1) reported a sample after ClearSentTime")
	}
}

func TestPendingListsOutstandingInOrder(t *testing.T) {
	tr := New()
	now := time.Unix(1000, 0)
	tr.Assign([]byte("a"), now)
	tr.Assign([]byte("b"), now)
	tr.Assign([]byte("c"), now)
	tr.ApplyAck(1, now)

	want := []uint16{2, 3}
	got := tr.Pending()
	if len(got) != len(want) {
		t.Fatalf("Pending() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Pending() = %v, want %v", got, want)
		}
	}
}

func TestReconstructAckPicksNearestCandidate(t *testing.T) {
	cases := []struct {
		name   string
		ackLow byte
		base   uint16
		want   uint16
	}{
		{"exact match, same block", 5, 300, 0x0105}, // blockBase(300)=0x0100
		{"small forward progress", 10, 250, 266},     // 250's block is 0, +256 block gives 266, distance 16 < |10-250|
		{"no progress, same value", 0, 256, 256},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ReconstructAck(tc.ackLow, tc.base); got != tc.want {
				t.Errorf("ReconstructAck(%d, %d) = %d, want %d", tc.ackLow, tc.base, got, tc.want)
			}
		})
	}
}
