package neural

import "fmt"

// DimensionError reports a vector whose length does not match the population
// size a component was built for. It is the only fatal condition in the
// engine: the caller violated a precondition, so the operation fails
// immediately and is never retried or recovered.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: want %d values, got %d", e.Want, e.Got)
}
