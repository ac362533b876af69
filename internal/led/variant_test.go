package led

import (
	"errors"
	"testing"
)

func TestVariantIdentity(t *testing.T) {
	if Ring.ID() != "ring" {
		t.Errorf("Ring.ID: got %q, want ring", Ring.ID())
	}
	if Power.ID() != "power" {
		t.Errorf("Power.ID: got %q, want power", Power.ID())
	}
}

func TestVariantColours(t *testing.T) {
	tests := []struct {
		v    Variant
		want []string
	}{
		{Ring, []string{"off", "cyan", "pink", "yellow", "blue", "red", "green", "white"}},
		{Power, []string{"off", "blue", "amber"}},
	}

	for _, tt := range tests {
		t.Run(tt.v.ID(), func(t *testing.T) {
			got := tt.v.ValidColours()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("colour %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestVariantColoursAreCopies(t *testing.T) {
	c := Ring.ValidColours()
	c[0] = "magenta"
	if Ring.ValidColours()[0] != "off" {
		t.Error("ValidColours exposed the shared table")
	}
}

func TestOwnLinesOffsets(t *testing.T) {
	all := []string{"p0", "p1", "p2", "", "r0", "r1", "r2", "", ""}

	power, err := Power.OwnLines(all)
	if err != nil {
		t.Fatalf("power: %v", err)
	}
	if len(power) != 3 || power[0] != "p0" || power[2] != "p2" {
		t.Errorf("power: got %q", power)
	}

	ring, err := Ring.OwnLines(all)
	if err != nil {
		t.Fatalf("ring: %v", err)
	}
	if len(ring) != 3 || ring[0] != "r0" || ring[2] != "r2" {
		t.Errorf("ring: got %q", ring)
	}
}

func TestOwnLinesRingDropsLastTwo(t *testing.T) {
	all := []string{"p0", "p1", "p2", "", "r0", "r1", "r2", "r3", "footer", ""}

	ring, err := Ring.OwnLines(all)
	if err != nil {
		t.Fatalf("ring: %v", err)
	}
	if len(ring) != 4 || ring[3] != "r3" {
		t.Errorf("ring: got %q, want r0..r3", ring)
	}
}

func TestOwnLinesShortText(t *testing.T) {
	if _, err := Power.OwnLines([]string{"a", "b"}); !errors.Is(err, ErrMalformedState) {
		t.Errorf("power: expected ErrMalformedState, got %v", err)
	}
	if _, err := Ring.OwnLines([]string{"a", "b", "c", "", "d", "e"}); !errors.Is(err, ErrMalformedState) {
		t.Errorf("ring: expected ErrMalformedState, got %v", err)
	}
}

func TestVariantByID(t *testing.T) {
	if v, ok := VariantByID("ring"); !ok || v != Ring {
		t.Errorf("ring: got %v, %v", v, ok)
	}
	if v, ok := VariantByID("power"); !ok || v != Power {
		t.Errorf("power: got %v, %v", v, ok)
	}
	if _, ok := VariantByID("disk"); ok {
		t.Error("disk: expected not found")
	}
}

func TestStylesOrder(t *testing.T) {
	want := []string{"none", "blink_fast", "blink_medium", "blink_slow", "fade_fast", "fade_medium", "fade_slow"}
	got := Styles()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("style %d: got %q, want %q", i, got[i], want[i])
		}
	}

	got[0] = "strobe"
	if Styles()[0] != "none" {
		t.Error("Styles exposed the shared table")
	}
}
