package engine

// Score maps a weak-point count to a compliance percentage. Zero weak points
// is full compliance; each weak point costs 15 points down to a floor of 10.
// Pure, total, monotonic non-increasing in count.
func Score(weakPointCount int) int {
	if weakPointCount <= 0 {
		return 100
	}
	score := 100 - 15*weakPointCount
	if score < 10 {
		return 10
	}
	return score
}
