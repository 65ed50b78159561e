package utils

import "testing"

func TestFormatStrike(t *testing.T) {
	tests := map[float64]string{
		112:   "112.0",
		112.5: "112.5",
		1050:  "1050.0",
		2.375: "2.375",
		0.5:   "0.5",
	}
	for in, want := range tests {
		if got := FormatStrike(in); got != want {
			t.Errorf("FormatStrike(%v): expected %s; got %s", in, want, got)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(1.3); got != "1.30" {
		t.Errorf("expected 1.30; got %s", got)
	}
	if got := FormatPercent(1.30); got != "1.3" {
		t.Errorf("expected 1.3; got %s", got)
	}
}
