package shared

import "testing"

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		name       string
		durationMS int
		want       string
	}{
		{"zero", 0, "00:00"},
		{"sub second truncates", 999, "00:00"},
		{"seconds only", 42000, "00:42"},
		{"typical track", 213000, "03:33"},
		{"exactly one hour", 3600000, "01:00:00"},
		{"long mix", 5025000, "01:23:45"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatDuration(tc.durationMS); got != tc.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tc.durationMS, got, tc.want)
			}
		})
	}
}
