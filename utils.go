package seizureplot

import (
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Float | constraints.Integer
}

func Filter[T any](slice []T, predicate func(T) bool) []T {
	filtered := make([]T, 0, len(slice))
	for _, elem := range slice {
		if predicate(elem) {
			filtered = append(filtered, elem)
		}
	}
	return filtered
}

// Ticks returns n evenly spaced positions start, start+step, ... as float64,
// which is what the plot axis wants regardless of the input type.
func Ticks[T Number](start T, step T, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}

	ticks := make([]float64, n)
	for i := range ticks {
		ticks[i] = float64(start) + float64(i)*float64(step)
	}
	return ticks
}
