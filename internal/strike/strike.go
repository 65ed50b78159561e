package strike

import (
	"errors"
	"math"
)

// StrikeOffsetRatio is the distance of the target strikes from the price
const StrikeOffsetRatio = 0.10

// EmptySetError is returned when there are no strikes to choose from
type EmptySetError struct{}

func (EmptySetError) Error() string {
	return "no strikes to select from"
}

// ErrEmptySet is the error returned by SelectNearest for an empty set
var ErrEmptySet error = EmptySetError{}

// IsEmptySet reports whether err is an empty strike set
func IsEmptySet(err error) bool {
	return errors.Is(err, ErrEmptySet)
}

// CallTarget returns the call target, StrikeOffsetRatio above price
func CallTarget(price float64) float64 {
	return price + price*StrikeOffsetRatio
}

// PutTarget returns the put target, StrikeOffsetRatio below price
func PutTarget(price float64) float64 {
	return price - price*StrikeOffsetRatio
}

// SelectNearest returns the strike closest to target. Ties go to the
// strike that appears first.
func SelectNearest(strikes []float64, target float64) (float64, error) {
	if len(strikes) == 0 {
		return 0, ErrEmptySet
	}

	best := strikes[0]
	bestDist := math.Abs(best - target)
	for _, s := range strikes[1:] {
		if d := math.Abs(s - target); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, nil
}
