package viewport

// DiffKeys compares the previously materialized key set with the next one.
// entered holds keys present only in next, left holds keys present only in
// prev; both keep the order of their source slice.
func DiffKeys(prev, next []string) (entered, left []string) {
	prevSet := make(map[string]struct{}, len(prev))
	for _, key := range prev {
		prevSet[key] = struct{}{}
	}
	nextSet := make(map[string]struct{}, len(next))
	for _, key := range next {
		nextSet[key] = struct{}{}
		if _, ok := prevSet[key]; !ok {
			entered = append(entered, key)
		}
	}
	for _, key := range prev {
		if _, ok := nextSet[key]; !ok {
			left = append(left, key)
		}
	}
	return entered, left
}
