package util

// ClampFloat constrains a float64 value between min and max
func ClampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampInt64 constrains an int64 value between min and max
func ClampInt64(value, min, max int64) int64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// AbsInt64 returns the absolute value of an int64
func AbsInt64(value int64) int64 {
	if value < 0 {
		return -value
	}
	return value
}
