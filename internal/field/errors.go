package field

import "errors"

var (
	// ErrInvalidSecret is returned when the secret is negative or not below the prime.
	ErrInvalidSecret = errors.New("secret must be in the range [0, prime)")

	// ErrInvalidDegree is returned when the polynomial degree is negative.
	ErrInvalidDegree = errors.New("polynomial degree must be non-negative")

	// ErrThresholdInvalid is returned when the threshold is less than 2.
	ErrThresholdInvalid = errors.New("threshold must be at least 2")

	// ErrNoShareIDs is returned when Split is given no evaluation points.
	ErrNoShareIDs = errors.New("no share IDs provided")

	// ErrInvalidShareID is returned when a share ID is not a positive integer.
	ErrInvalidShareID = errors.New("share IDs must be positive")

	// ErrInsufficientShares is returned when fewer than two points are given
	// to Reconstruct.
	ErrInsufficientShares = errors.New("insufficient shares for reconstruction")

	// ErrDuplicateXCoordinate is returned when two shares carry the same ID.
	ErrDuplicateXCoordinate = errors.New("duplicate x-coordinate in shares")
)
