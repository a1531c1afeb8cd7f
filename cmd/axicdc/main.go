// Copyright 2024 the cdcsim authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Command axicdc runs randomized write-then-readback traffic through an
// AXI-Lite clock-domain-crossing bridge and reports the outcome.
package main

import (
	"flag"
	"log"

	"github.com/cdckit/cdcsim/bfm"
)

func main() {
	var (
		mp    = flag.Uint64("mperiod", 3, "master clock period")
		sp    = flag.Uint64("speriod", 7, "slave clock period")
		n     = flag.Int("n", 1024, "number of randomized writes")
		depth = flag.Int("depth", 2, "synchronizer depth")
		stall = flag.Float64("stall", 0.25, "per-tick stall probability on every port")
		seed  = flag.Int64("seed", 1, "random seed")
	)
	flag.Parse()

	cfg := bfm.Config{
		MasterPeriod: *mp,
		SlavePeriod:  *sp,
		Transfers:    *n,
		Depth:        *depth,
		Stall:        *stall,
		Seed:         *seed,
	}
	stats, err := bfm.Run(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("periods %d:%d, depth %d: %d writes + %d reads ok in %d time units (%d master ticks, %d slave ticks)",
		*mp, *sp, *depth, stats.Writes, stats.Reads, stats.Time, stats.MasterTicks, stats.SlaveTicks)
}
