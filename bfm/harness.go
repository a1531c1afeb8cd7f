// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package bfm

import (
	"math/rand"
	"testing"

	"github.com/cdckit/cdcsim"
	"github.com/cdckit/cdcsim/axilite"
	"github.com/pkg/errors"
)

// Config describes one traffic run: a bridge between two clock domains with
// the given periods, a number of randomized writes, and a readback of every
// written word.
type Config struct {
	// MasterPeriod and SlavePeriod are the two clock periods. Any ratio is
	// legal, including master faster than slave and the reverse.
	MasterPeriod, SlavePeriod uint64
	// Depth is the synchronizer depth used by the bridge (default 2).
	Depth int
	// Transfers is the number of randomized writes (default 256). The
	// readback phase issues one read per distinct written address.
	Transfers int
	// Window is the byte size of the address window written to (default 16KiB).
	Window uint32
	// Stall is the stall/gap probability applied on every port of both
	// models (default 0.25).
	Stall float64
	// Seed seeds all randomness of the run (default 1).
	Seed int64
	// Watchdog caps the number of scheduler steps per phase; 0 derives a
	// generous bound from Transfers.
	Watchdog int
}

func (cfg Config) withDefaults() Config {
	if cfg.Depth == 0 {
		cfg.Depth = 2
	}
	if cfg.Transfers == 0 {
		cfg.Transfers = 256
	}
	if cfg.Window < 4 {
		cfg.Window = 1 << 14
	}
	if cfg.Stall == 0 {
		cfg.Stall = 0.25
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	if cfg.Watchdog == 0 {
		cfg.Watchdog = 4000 * (cfg.Transfers + 16)
	}
	return cfg
}

// Stats summarizes a completed traffic run.
type Stats struct {
	Writes, Reads           int
	MasterTicks, SlaveTicks uint64
	Time                    uint64
}

// Run drives cfg.Transfers randomized strobed writes through a bridge, then
// reads every written address back in shuffled order and checks each value
// against a shadow model. It returns an error on any response error, data
// mismatch or watchdog timeout.
func Run(cfg Config) (Stats, error) {
	cfg = cfg.withDefaults()
	var stats Stats

	sim := cdcsim.New()
	mDom, err := sim.Domain("master", cfg.MasterPeriod, 0)
	if err != nil {
		return stats, err
	}
	sDom, err := sim.Domain("slave", cfg.SlavePeriod, 1)
	if err != nil {
		return stats, err
	}
	br, err := axilite.NewBridge(mDom, sDom, cfg.Depth)
	if err != nil {
		return stats, err
	}
	master, err := NewMaster(mDom, br, MasterConfig{Gap: cfg.Stall, Seed: cfg.Seed})
	if err != nil {
		return stats, err
	}
	_, err = NewSlave(sDom, br, NewMemory(), SlaveConfig{Stall: cfg.Stall, Seed: cfg.Seed + 1})
	if err != nil {
		return stats, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed + 2))
	shadow := NewMemory()

	// write phase: random addresses, data and strobes; the shadow applies
	// the same beats in the same order.
	words := cfg.Window >> 2
	var addrs []uint32
	seen := make(map[uint32]bool)
	for i := 0; i < cfg.Transfers; i++ {
		addr := (rng.Uint32() % words) << 2
		w := axilite.W{Data: rng.Uint32(), Strb: uint8(1 + rng.Intn(15))}
		master.Queue(Cmd{Addr: addr, Data: w.Data, Strb: w.Strb})
		shadow.Write(addr, w)
		if !seen[addr] {
			seen[addr] = true
			addrs = append(addrs, addr)
		}
	}
	if err := sim.RunUntil(cfg.Watchdog, master.Done); err != nil {
		return stats, errors.Wrap(err, "write phase")
	}
	for i, b := range master.B {
		if b.Resp != axilite.RespOkay {
			return stats, errors.Errorf("write %d: response %v", i, b.Resp)
		}
	}
	stats.Writes = len(master.B)

	// readback phase: every written address once, in shuffled order.
	rng.Shuffle(len(addrs), func(i, j int) { addrs[i], addrs[j] = addrs[j], addrs[i] })
	for _, addr := range addrs {
		master.Queue(Cmd{Read: true, Addr: addr})
	}
	if err := sim.RunUntil(cfg.Watchdog, master.Done); err != nil {
		return stats, errors.Wrap(err, "readback phase")
	}
	for i, r := range master.R {
		if r.Resp != axilite.RespOkay {
			return stats, errors.Errorf("read %d (addr %#x): response %v", i, addrs[i], r.Resp)
		}
		if want := shadow.Read(addrs[i]); r.Data != want {
			return stats, errors.Errorf("read %d (addr %#x): data %#x, want %#x",
				i, addrs[i], r.Data, want)
		}
	}
	stats.Reads = len(master.R)
	stats.MasterTicks = mDom.Ticks()
	stats.SlaveTicks = sDom.Ticks()
	stats.Time = sim.Now()
	return stats, nil
}

// RunTraffic runs Run under a test, failing it on any error and logging a
// short throughput summary.
func RunTraffic(t *testing.T, cfg Config) Stats {
	t.Helper()
	stats, err := Run(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("%d writes + %d reads in %d time units (%d master ticks, %d slave ticks)",
		stats.Writes, stats.Reads, stats.Time, stats.MasterTicks, stats.SlaveTicks)
	return stats
}
