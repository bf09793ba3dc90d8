package allowance

import "errors"

var (
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrInvalidRate        = errors.New("rate per km must be positive")
	ErrInvalidDaysPerWeek = errors.New("days per week must be between 1 and 7")
	ErrNotFound           = errors.New("not found")
	ErrAddressNotGeocoded = errors.New("address not geocoded")
)
