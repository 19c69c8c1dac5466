package schedule

import "math"

// MaxScheduledItems caps occurrences × windows for a single session.
const MaxScheduledItems = 100_000

// addInt returns a+b for non-negative operands, or false on overflow.
func addInt(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// mulInt returns a*b for non-negative operands, or false on overflow.
func mulInt(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}
