package labrequest

import (
	"strconv"
	"strings"
)

// Result flags.
const (
	FlagHigh   = "H"
	FlagLow    = "L"
	FlagNormal = "N"
)

// ComputeFlag classifies a result value against a reference range string.
// Supported range shapes: "low - high", "< max", "> min". Non-numeric
// values or unparseable ranges yield Normal. The flag is computed once at
// entry time and stored with the result.
func ComputeFlag(value, referenceRange string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return FlagNormal
	}

	r := strings.TrimSpace(referenceRange)
	switch {
	case strings.HasPrefix(r, "<"):
		max, err := strconv.ParseFloat(strings.TrimSpace(r[1:]), 64)
		if err != nil {
			return FlagNormal
		}
		if v >= max {
			return FlagHigh
		}
		return FlagNormal

	case strings.HasPrefix(r, ">"):
		min, err := strconv.ParseFloat(strings.TrimSpace(r[1:]), 64)
		if err != nil {
			return FlagNormal
		}
		if v <= min {
			return FlagLow
		}
		return FlagNormal

	case strings.Contains(r, "-"):
		parts := strings.SplitN(r, "-", 2)
		low, errLow := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		high, errHigh := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLow != nil || errHigh != nil {
			return FlagNormal
		}
		if v < low {
			return FlagLow
		}
		if v > high {
			return FlagHigh
		}
		return FlagNormal
	}
	return FlagNormal
}
