package utils

import (
	"golang.org/x/exp/constraints"
)

// Clamp bounds value to the [lowest, highest] range
func Clamp[T constraints.Ordered](value, lowest, highest T) (clamped T) {
	switch {
	case value < lowest:
		return lowest
	case value > highest:
		return highest
	default:
		return value
	}
}
