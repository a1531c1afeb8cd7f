package axilite_test

import (
	"testing"

	"github.com/cdckit/cdcsim/axilite"
)

func TestWApply(t *testing.T) {
	tests := []struct {
		w    axilite.W
		old  uint32
		want uint32
	}{
		{axilite.W{Data: 0x11223344, Strb: axilite.StrbAll}, 0xaabbccdd, 0x11223344},
		{axilite.W{Data: 0x11223344, Strb: 0x0}, 0xaabbccdd, 0xaabbccdd},
		{axilite.W{Data: 0x11223344, Strb: 0x1}, 0xaabbccdd, 0xaabbcc44},
		{axilite.W{Data: 0x11223344, Strb: 0x8}, 0xaabbccdd, 0x11bbccdd},
		{axilite.W{Data: 0x11223344, Strb: 0x6}, 0xaabbccdd, 0xaa2233dd},
	}
	for _, tt := range tests {
		if got := tt.w.Apply(tt.old); got != tt.want {
			t.Errorf("W{%#x,%#x}.Apply(%#x) = %#x, want %#x",
				tt.w.Data, tt.w.Strb, tt.old, got, tt.want)
		}
	}
}

func TestRespString(t *testing.T) {
	if s := axilite.RespOkay.String(); s != "OKAY" {
		t.Errorf("RespOkay = %q", s)
	}
	if s := axilite.RespDecErr.String(); s != "DECERR" {
		t.Errorf("RespDecErr = %q", s)
	}
	if s := axilite.Resp(1).String(); s != "Resp(1)" {
		t.Errorf("Resp(1) = %q", s)
	}
}
