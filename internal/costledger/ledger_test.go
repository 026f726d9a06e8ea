package costledger

import "testing"

func TestCentsFromDollars(t *testing.T) {
	cases := []struct {
		dollars float64
		want    int64
	}{
		{0.02, 2},
		{0.01, 1},
		{0.015, 2}, // rounds to nearest cent
		{0, 0},
	}
	for _, tc := range cases {
		if got := CentsFromDollars(tc.dollars); got != tc.want {
			t.Errorf("CentsFromDollars(%v) = %d, want %d", tc.dollars, got, tc.want)
		}
	}
}
