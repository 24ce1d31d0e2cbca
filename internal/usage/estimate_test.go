package usage

import "testing"

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		name string
		text string
		min  int
		max  int
	}{
		{name: "empty", text: "", min: 0, max: 0},
		{name: "blank", text: "   \n", min: 0, max: 0},
		{name: "short_sentence", text: "Hello world", min: 2, max: 4},
		{name: "numbers", text: "order 12345 shipped", min: 3, max: 6},
		{name: "cjk", text: "你好世界", min: 3, max: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EstimateTokens(tc.text)
			if got < tc.min || got > tc.max {
				t.Fatalf("EstimateTokens(%q) = %d, want in [%d,%d]", tc.text, got, tc.min, tc.max)
			}
		})
	}
}

func TestEstimateTokens_Monotonicish(t *testing.T) {
	short := EstimateTokens("one two three")
	long := EstimateTokens("one two three four five six seven eight nine ten")
	if long <= short {
		t.Fatalf("longer text should estimate more tokens: %d <= %d", long, short)
	}
}
