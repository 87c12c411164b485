package timeseries

import (
	"testing"
	"time"
)

func at(min int) time.Time {
	return time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC).Add(time.Duration(min) * time.Minute)
}

func TestAlignCarry(t *testing.T) {
	times := []time.Time{at(0), at(10), at(25)}

	tests := []struct {
		name    string
		anchor  time.Time
		wantIdx int
	}{
		{"before first record", at(-5), -1},
		{"exactly on a record", at(10), 1},
		{"between records carries backward", at(24), 1},
		{"after last record carries last", at(120), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Align(times, []time.Time{tt.anchor}, Carry)
			if got[0] != tt.wantIdx {
				t.Errorf("Align() = %d, want %d", got[0], tt.wantIdx)
			}
		})
	}
}

func TestAlignClosest(t *testing.T) {
	times := []time.Time{at(0), at(10), at(30)}

	tests := []struct {
		name    string
		anchor  time.Time
		wantIdx int
	}{
		{"before first picks first", at(-20), 0},
		{"after last picks last", at(60), 2},
		{"nearer predecessor", at(13), 1},
		{"nearer successor", at(27), 2},
		{"tie favors later record", at(20), 2}, // 10m to both neighbors
		{"exact hit", at(10), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Align(times, []time.Time{tt.anchor}, Closest)
			if got[0] != tt.wantIdx {
				t.Errorf("Align() = %d, want %d", got[0], tt.wantIdx)
			}
		})
	}
}

func TestAlignUnsortedInput(t *testing.T) {
	// Indices must refer to the original positions.
	times := []time.Time{at(25), at(0), at(10)}
	got := Align(times, []time.Time{at(24), at(26)}, Carry)
	if got[0] != 2 {
		t.Errorf("anchor 09:24 aligned to %d, want 2 (09:10)", got[0])
	}
	if got[1] != 0 {
		t.Errorf("anchor 09:26 aligned to %d, want 0 (09:25)", got[1])
	}
	// Input order preserved.
	if !times[0].Equal(at(25)) {
		t.Error("Align() mutated its input")
	}
}

func TestAlignEmptyRecords(t *testing.T) {
	got := Align(nil, []time.Time{at(0), at(5)}, Closest)
	for i, idx := range got {
		if idx != -1 {
			t.Errorf("anchor %d aligned to %d, want -1", i, idx)
		}
	}
}

func TestAlignRecords(t *testing.T) {
	type rec struct {
		ts time.Time
		v  float64
	}
	records := []rec{{at(0), 1.0}, {at(10), 2.0}}
	out := AlignRecords(records, func(r rec) time.Time { return r.ts }, []time.Time{at(-1), at(11)}, Carry)
	if out[0] != nil {
		t.Errorf("anchor before data = %+v, want nil", out[0])
	}
	if out[1] == nil || out[1].v != 2.0 {
		t.Errorf("anchor after data = %+v, want value 2.0", out[1])
	}
}

func TestAnchorRange(t *testing.T) {
	anchors := AnchorRange(at(0), at(60), 15*time.Minute)
	if len(anchors) != 5 {
		t.Fatalf("len = %d, want 5 (end inclusive)", len(anchors))
	}
	for i := 1; i < len(anchors); i++ {
		if anchors[i].Sub(anchors[i-1]) != 15*time.Minute {
			t.Fatalf("non-uniform step at %d", i)
		}
	}
	if !anchors[4].Equal(at(60)) {
		t.Errorf("last anchor = %v, want %v", anchors[4], at(60))
	}

	if got := AnchorRange(at(60), at(0), 15*time.Minute); got != nil {
		t.Error("reversed range should be nil")
	}
	if got := AnchorRange(at(0), at(60), 0); got != nil {
		t.Error("zero step should be nil")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("carry"); err != nil || m != Carry {
		t.Errorf("ParseMode(carry) = %v, %v", m, err)
	}
	if m, err := ParseMode("closest"); err != nil || m != Closest {
		t.Errorf("ParseMode(closest) = %v, %v", m, err)
	}
	if _, err := ParseMode("nearest"); err == nil {
		t.Error("ParseMode(nearest) should fail")
	}
}
