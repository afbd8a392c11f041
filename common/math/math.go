package math

func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func Max(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// SafeSub returns a-b, or zero when b exceeds a.
func SafeSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
