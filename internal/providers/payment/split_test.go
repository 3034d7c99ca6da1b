package payment

import "testing"

func TestSplitSharesSumToGross(t *testing.T) {
	prices := []int64{0, 1, 5, 99, 100, 101, 2500, 9999, 123456789}
	for _, price := range prices {
		platform, owner := Split(price, 0.10)
		if price <= 0 {
			if platform != 0 || owner != 0 {
				t.Fatalf("price %d: expected zero shares, got %d/%d", price, platform, owner)
			}
			continue
		}
		if platform+owner != price {
			t.Fatalf("price %d: shares %d + %d do not sum to gross", price, platform, owner)
		}
		if platform < 0 || owner < 0 {
			t.Fatalf("price %d: negative share %d/%d", price, platform, owner)
		}
	}
}

func TestSplitRoundsCommissionHalfUp(t *testing.T) {
	cases := []struct {
		amount   int64
		rate     float64
		platform int64
	}{
		{1000, 0.10, 100},
		{105, 0.10, 11},  // 10.5 rounds up
		{104, 0.10, 10},  // 10.4 rounds down
		{1, 0.10, 0},
		{5, 0.10, 1},     // 0.5 rounds up
		{1000, 0, 0},
		{1000, 1, 1000},
	}
	for _, tc := range cases {
		platform, owner := Split(tc.amount, tc.rate)
		if platform != tc.platform {
			t.Fatalf("amount %d rate %v: expected commission %d, got %d", tc.amount, tc.rate, tc.platform, platform)
		}
		if platform+owner != tc.amount {
			t.Fatalf("amount %d: shares do not sum to gross", tc.amount)
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	a1, b1 := Split(3333, 0.10)
	a2, b2 := Split(3333, 0.10)
	if a1 != a2 || b1 != b2 {
		t.Fatalf("split not deterministic: %d/%d vs %d/%d", a1, b1, a2, b2)
	}
}
