package element

import "errors"

// Construction sentinels. NewBar wraps these with the offending values;
// callers match with errors.Is.
var (
	// ErrDegenerate marks a bar whose endpoints coincide within GeomTol.
	ErrDegenerate = errors.New("element: degenerate bar")

	// ErrNonPositiveArea marks a zero, negative or NaN cross-sectional area.
	ErrNonPositiveArea = errors.New("element: area must be positive")

	// ErrNonPositiveModulus marks a zero, negative or NaN Young's modulus.
	ErrNonPositiveModulus = errors.New("element: modulus must be positive")

	// ErrNegativeDensity marks a negative or NaN density.
	ErrNegativeDensity = errors.New("element: density must be non-negative")
)
