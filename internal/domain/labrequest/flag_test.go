package labrequest

import "testing"

func TestComputeFlag(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		rrange string
		want   string
	}{
		{"within band", "15.1", "13.5 - 17.5", FlagNormal},
		{"above band", "18.0", "13.5 - 17.5", FlagHigh},
		{"below band", "10.0", "13.5 - 17.5", FlagLow},
		{"band lower bound inclusive", "13.5", "13.5 - 17.5", FlagNormal},
		{"band upper bound inclusive", "17.5", "13.5 - 17.5", FlagNormal},
		{"under max ok", "4", "< 5", FlagNormal},
		{"over max", "6", "< 5", FlagHigh},
		{"at max", "5", "< 5", FlagHigh},
		{"over min ok", "50", "> 40", FlagNormal},
		{"under min", "30", "> 40", FlagLow},
		{"at min", "40", "> 40", FlagLow},
		{"textual range", "Negative", "Negative", FlagNormal},
		{"textual value numeric range", "Trace", "4.5 - 8.0", FlagNormal},
		{"empty range", "12", "", FlagNormal},
		{"empty value", "", "13.5 - 17.5", FlagNormal},
		{"non-numeric range halves", "12", "low - high", FlagNormal},
		{"whitespace value", "  18.0 ", "13.5 - 17.5", FlagHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeFlag(tt.value, tt.rrange); got != tt.want {
				t.Errorf("ComputeFlag(%q, %q) = %q, want %q", tt.value, tt.rrange, got, tt.want)
			}
		})
	}
}
