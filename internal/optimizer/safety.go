package optimizer

// EnforceSafety rejects quadratic algorithms for datasets larger than large and
// substitutes quick sort. The second result reports whether a substitution happened.
func EnforceSafety(predicted Algorithm, size, large int) (Algorithm, bool) {
	if size > large && predicted.Quadratic() {
		return Quick, true
	}
	return predicted, false
}
