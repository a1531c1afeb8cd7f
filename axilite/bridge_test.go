package axilite_test

import (
	"testing"

	"github.com/cdckit/cdcsim"
	"github.com/cdckit/cdcsim/axilite"
)

func newBridge(t *testing.T, mp, sp uint64) (*cdcsim.Sim, *cdcsim.Domain, *cdcsim.Domain, *axilite.Bridge) {
	t.Helper()
	s := cdcsim.New()
	m, err := s.Domain("master", mp, 0)
	if err != nil {
		t.Fatal(err)
	}
	sl, err := s.Domain("slave", sp, 1)
	if err != nil {
		t.Fatal(err)
	}
	br, err := axilite.NewBridge(m, sl, 2)
	if err != nil {
		t.Fatal(err)
	}
	return s, m, sl, br
}

// AW, W and AR must emerge on the slave side; B and R must travel back.
func TestBridgeDirections(t *testing.T) {
	s, m, sl, br := newBridge(t, 3, 5)

	var gotAW axilite.AW
	var gotB axilite.B
	awSent, bSent := false, false
	sawAW, sawB := false, false

	m.OnTick(func() {
		if !awSent {
			br.AW.In.SetData(axilite.AW{Addr: 0x40})
			br.AW.In.SetValid(true)
			awSent = true
		}
		if br.AW.In.Xfer() {
			br.AW.In.SetValid(false)
		}
		if br.B.Out.Xfer() {
			gotB = br.B.Out.Data()
			sawB = true
		}
		br.B.Out.SetReady(true)
	})
	sl.OnTick(func() {
		if br.AW.Out.Xfer() {
			gotAW = br.AW.Out.Data()
			sawAW = true
		}
		br.AW.Out.SetReady(true)
		if sawAW && !bSent {
			br.B.In.SetData(axilite.B{Resp: axilite.RespSlvErr})
			br.B.In.SetValid(true)
			bSent = true
		}
		if br.B.In.Xfer() {
			br.B.In.SetValid(false)
		}
	})

	if err := s.RunUntil(10000, func() bool { return sawB }); err != nil {
		t.Fatal(err)
	}
	if gotAW.Addr != 0x40 {
		t.Errorf("slave saw AW addr %#x, want 0x40", gotAW.Addr)
	}
	if gotB.Resp != axilite.RespSlvErr {
		t.Errorf("master saw B resp %v, want SLVERR", gotB.Resp)
	}
}

// Stalling one sub-channel must not hold up the others: with the W channel's
// consumer never ready, reads must keep completing.
func TestBridgeChannelIndependence(t *testing.T) {
	const reads = 20
	s, m, sl, br := newBridge(t, 4, 6)

	wAccepted := 0
	arSent, rGot := 0, 0
	m.OnTick(func() {
		// W producer: always pushing
		if br.W.In.Xfer() {
			wAccepted++
		}
		br.W.In.SetData(axilite.W{Data: 0x1, Strb: axilite.StrbAll})
		br.W.In.SetValid(true)

		// AR producer: one outstanding at a time
		if br.AR.In.Xfer() {
			br.AR.In.SetValid(false)
		} else if !br.AR.In.Valid() && arSent < reads {
			br.AR.In.SetData(axilite.AR{Addr: uint32(arSent) << 2})
			br.AR.In.SetValid(true)
			arSent++
		}

		if br.R.Out.Xfer() {
			rGot++
		}
		br.R.Out.SetReady(true)
	})
	sl.OnTick(func() {
		// W consumer: never ready
		br.W.Out.SetReady(false)

		// AR consumer echoes the address back as read data
		if br.AR.Out.Xfer() {
			br.R.In.SetData(axilite.R{Data: br.AR.Out.Data().Addr, Resp: axilite.RespOkay})
			br.R.In.SetValid(true)
		}
		br.AR.Out.SetReady(!br.R.In.Valid())
		if br.R.In.Xfer() {
			br.R.In.SetValid(false)
		}
	})

	if err := s.RunUntil(100000, func() bool { return rGot == reads }); err != nil {
		t.Fatalf("reads stalled behind a blocked W channel: %v (%d of %d)", err, rGot, reads)
	}
	if wAccepted > 1 {
		t.Errorf("W channel accepted %d beats against a stalled consumer", wAccepted)
	}
	if !br.W.Busy() {
		t.Error("W channel should still be holding its beat")
	}
}
