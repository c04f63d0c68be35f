package utils

import "golang.org/x/exp/rand"

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// Choice returns a uniformly random element of slice, false if it is empty.
func Choice[T any](rng *rand.Rand, slice []T) (T, bool) {
	var zero T
	if len(slice) == 0 {
		return zero, false
	}
	return slice[rng.Intn(len(slice))], true
}
