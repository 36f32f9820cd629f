package congestion

import (
	"testing"
	"time"
)

func TestNewHasFixedInitialValues(t *testing.T) {
	c := New()
	if c.Cwnd != 1 {
		t.Errorf("Cwnd = %d, want 1", c.Cwnd)
	}
	if c.Ssthresh != 100 {
		t.Errorf("Ssthresh = %d, want 100", c.Ssthresh)
	}
	if c.RTO() != time.Second {
		t.Errorf("RTO = %v, want 1s", c.RTO())
	}
}

func TestGrowSlowStartIsLinear(t *testing.T) {
	c := New()
	for i := 0; i < 5; i++ {
		c.Grow()
	}
	if c.Cwnd != 6 {
		t.Errorf("Cwnd = %d, want 6 after 5 slow-start acks", c.Cwnd)
	}
}

func TestGrowCongestionAvoidanceIsSublinear(t *testing.T) {
	c := New()
	c.Cwnd = 10
	c.Ssthresh = 10 // Cwnd >= Ssthresh: already in congestion avoidance

	for i := 0; i < 9; i++ {
		c.Grow()
	}
	if c.Cwnd != 10 {
		t.Fatalf("Cwnd = %d, want 10 (not yet a full cwnd's worth of acks)", c.Cwnd)
	}
	c.Grow()
	if c.Cwnd != 11 {
		t.Fatalf("Cwnd = %d, want 11 after cwnd acks in congestion avoidance", c.Cwnd)
	}
}

func TestFastRetransmitHalvesSsthreshAndSetsCwnd(t *testing.T) {
	c := New()
	c.Cwnd = 20
	c.FastRetransmit()

	if c.Ssthresh != 10 {
		t.Errorf("Ssthresh = %d, want 10", c.Ssthresh)
	}
	if c.Cwnd != 13 {
		t.Errorf("Cwnd = %d, want ssthresh+3 = 13", c.Cwnd)
	}
}

func TestFastRetransmitFloorsSsthreshAtOne(t *testing.T) {
	c := New()
	c.Cwnd = 1
	c.FastRetransmit()
	if c.Ssthresh != 1 {
		t.Errorf("Ssthresh = %d, want floor of 1", c.Ssthresh)
	}
}

func TestTimeoutResetsToSlowStart(t *testing.T) {
	c := New()
	c.Cwnd = 40
	c.Ssthresh = 40
	c.Timeout()

	if c.Cwnd != 1 {
		t.Errorf("Cwnd = %d, want 1", c.Cwnd)
	}
	if c.Ssthresh != 20 {
		t.Errorf("Ssthresh = %d, want 20", c.Ssthresh)
	}
}

func TestEffectiveWindowCapsAtStaticMax(t *testing.T) {
	c := New()
	c.Cwnd = 10000
	if got := c.EffectiveWindow(); got != 500 {
		t.Errorf("EffectiveWindow = %d, want 500", got)
	}
	c.Cwnd = 3
	if got := c.EffectiveWindow(); got != 3 {
		t.Errorf("EffectiveWindow = %d, want 3", got)
	}
}

func TestUpdateRTTSampleAppliesEWMA(t *testing.T) {
	c := New()
	c.rto = 1 * time.Second
	c.UpdateRTTSample(500 * time.Millisecond)
	// 0.8*1s + 0.2*0.5s = 0.9s
	want := 900 * time.Millisecond
	if c.RTO() != want {
		t.Errorf("RTO = %v, want %v", c.RTO(), want)
	}
}

func TestEffectiveTimeoutAppliesMultiplier(t *testing.T) {
	c := New()
	c.rto = time.Second
	want := 1200 * time.Millisecond
	if got := c.EffectiveTimeout(); got != want {
		t.Errorf("EffectiveTimeout = %v, want %v", got, want)
	}
}
