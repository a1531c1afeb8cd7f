package cross_test

import (
	"math/rand"
	"testing"

	"github.com/cdckit/cdcsim"
	"github.com/cdckit/cdcsim/cross"
)

type chanHarness struct {
	sim *cdcsim.Sim
	ch  *cross.Channel[uint32]

	send     []uint32
	sent     int
	inFlight bool

	got []uint32
}

// newChanHarness wires a producer feeding items and a consumer with
// randomized ready back-off around one channel.
func newChanHarness(t *testing.T, srcP, dstP uint64, items []uint32, stall float64, seed int64) *chanHarness {
	t.Helper()

	h := &chanHarness{sim: cdcsim.New(), send: items}
	src, err := h.sim.Domain("src", srcP, 0)
	if err != nil {
		t.Fatal(err)
	}
	dst, err := h.sim.Domain("dst", dstP, 1)
	if err != nil {
		t.Fatal(err)
	}
	h.ch, err = cross.NewChannel[uint32](src, dst, 2)
	if err != nil {
		t.Fatal(err)
	}

	src.OnTick(func() {
		if h.ch.In.Xfer() {
			h.inFlight = false
			h.ch.In.SetValid(false)
		}
		if !h.inFlight && h.sent < len(h.send) {
			h.ch.In.SetData(h.send[h.sent])
			h.ch.In.SetValid(true)
			h.inFlight = true
			h.sent++
		}
	})

	rng := rand.New(rand.NewSource(seed))
	dst.OnTick(func() {
		if h.ch.Out.Xfer() {
			h.got = append(h.got, h.ch.Out.Data())
		}
		h.ch.Out.SetReady(rng.Float64() >= stall)
	})

	return h
}

func TestChannelDelivery(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, r := range ratios {
		items := make([]uint32, 100)
		for i := range items {
			items[i] = rng.Uint32()
		}
		h := newChanHarness(t, r[0], r[1], items, 0.3, 7)

		err := h.sim.RunUntil(1000000, func() bool { return len(h.got) == len(items) })
		if err != nil {
			t.Fatalf("ratio %d:%d: %v (delivered %d of %d)", r[0], r[1], err, len(h.got), len(items))
		}
		for i := range items {
			if h.got[i] != items[i] {
				t.Fatalf("ratio %d:%d: item %d = %#x, want %#x", r[0], r[1], i, h.got[i], items[i])
			}
		}
		// nothing may trail out of the channel
		h.sim.Run(1000)
		if len(h.got) != len(items) {
			t.Fatalf("ratio %d:%d: %d extra items delivered", r[0], r[1], len(h.got)-len(items))
		}
	}
}

// In.Ready must stay low for the whole round trip: with a producer that is
// always valid, accepts on the source side may never outnumber deliveries
// on the destination side by more than the single item in flight.
func TestChannelOneInFlight(t *testing.T) {
	s := cdcsim.New()
	src, err := s.Domain("src", 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	dst, err := s.Domain("dst", 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	ch, err := cross.NewChannel[uint32](src, dst, 2)
	if err != nil {
		t.Fatal(err)
	}

	var accepted, delivered int
	var next uint32
	src.OnTick(func() {
		if ch.In.Xfer() {
			accepted++
			next++
		}
		ch.In.SetData(next)
		ch.In.SetValid(true)
		if accepted-delivered > 1 {
			t.Errorf("%d items in flight", accepted-delivered)
		}
	})
	dst.OnTick(func() {
		if ch.Out.Xfer() {
			delivered++
		}
		ch.Out.SetReady(true)
	})

	if err := s.RunUntil(100000, func() bool { return delivered >= 200 }); err != nil {
		t.Fatal(err)
	}
	if accepted-delivered > 1 {
		t.Fatalf("accepted %d, delivered %d", accepted, delivered)
	}
}

func TestChannelBackpressure(t *testing.T) {
	s := cdcsim.New()
	src, err := s.Domain("src", 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	dst, err := s.Domain("dst", 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	ch, err := cross.NewChannel[uint32](src, dst, 2)
	if err != nil {
		t.Fatal(err)
	}

	release := false
	accepted, delivered := 0, 0
	src.OnTick(func() {
		if ch.In.Xfer() {
			accepted++
		}
		ch.In.SetData(0x5a5a5a5a)
		ch.In.SetValid(true)
	})
	dst.OnTick(func() {
		if ch.Out.Xfer() {
			delivered++
		}
		ch.Out.SetReady(release)
	})

	// destination withholds ready: exactly one item may be accepted and
	// none delivered, however long we run.
	s.Run(5000)
	if accepted != 1 {
		t.Fatalf("accepted %d items against a stalled consumer, want 1", accepted)
	}
	if delivered != 0 {
		t.Fatalf("delivered %d items against a stalled consumer", delivered)
	}
	if !ch.Busy() {
		t.Fatal("channel idle while holding a stalled item")
	}

	// releasing the stall lets the item through and the source move again
	release = true
	if err := s.RunUntil(1000, func() bool { return delivered >= 2 }); err != nil {
		t.Fatal(err)
	}
}

// A channel that completed a handshake must behave exactly like a fresh one:
// the round-trip latency of every transfer after the first must be identical.
func TestChannelRestartLatency(t *testing.T) {
	items := make([]uint32, 10)
	for i := range items {
		items[i] = uint32(i)
	}
	// equal periods with a fixed phase offset: the whole system is strictly
	// periodic, so per-transfer latency must be too.
	h := newChanHarness(t, 2, 2, items, 0, 1)

	var at []uint64
	prev := 0
	for len(h.got) < len(items) {
		h.sim.Step()
		if len(h.got) > prev {
			at = append(at, h.sim.Now())
			prev = len(h.got)
		}
		if h.sim.Now() > 100000 {
			t.Fatal("watchdog")
		}
	}

	gap := at[2] - at[1]
	for i := 3; i < len(at); i++ {
		if at[i]-at[i-1] != gap {
			t.Fatalf("transfer %d took %d time units, transfers before took %d",
				i, at[i]-at[i-1], gap)
		}
	}
}
