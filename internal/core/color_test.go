package core

import "testing"

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#8c2074", RGB(140, 32, 116), false},
		{"84843C", RGB(132, 132, 60), false},
		{" #000000 ", Black, false},
		{"#fff", Color{}, true},
		{"#gg0000", Color{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseHex(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParseHex(%q) expected error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHex(%q) failed: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseHex(%q) = %v, expected %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestColorHexRoundTrip(t *testing.T) {
	c := RGB(172, 80, 48)
	if c.Hex() != "#ac5030" {
		t.Errorf("Hex() = %q", c.Hex())
	}
	if got, err := ParseHex(c.Hex()); err != nil || got != c {
		t.Error("Hex output should parse back to the same color")
	}
}
