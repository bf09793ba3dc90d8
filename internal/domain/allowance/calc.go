package allowance

import "math"

// Commutes are reimbursed as round trips.
const roundTripFactor = 2.0

// ComputeAllowance derives the daily and weekly amounts from a one-way
// distance, a per-kilometre rate and the number of commuting days per week.
// Amounts are rounded to currency cents.
func ComputeAllowance(distanceKm, ratePerKm float64, daysPerWeek int) (daily, weekly float64, err error) {
	if ratePerKm <= 0 {
		return 0, 0, ErrInvalidRate
	}
	if daysPerWeek < 1 || daysPerWeek > 7 {
		return 0, 0, ErrInvalidDaysPerWeek
	}

	daily = roundCents(distanceKm * ratePerKm * roundTripFactor)
	weekly = roundCents(daily * float64(daysPerWeek))
	return daily, weekly, nil
}

// EffectiveRate resolves the applicable per-kilometre rate: the subproject
// override when set and positive, otherwise the project default.
func EffectiveRate(subprojectRate *float64, projectDefault float64) (float64, error) {
	if subprojectRate != nil && *subprojectRate > 0 {
		return *subprojectRate, nil
	}
	if projectDefault <= 0 {
		return 0, ErrInvalidRate
	}
	return projectDefault, nil
}

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}
