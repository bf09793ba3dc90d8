package allowance

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Request struct {
	SubprojectID string `json:"subprojectId"`
	EmployeeID   string `json:"employeeId"`
	DaysPerWeek  int    `json:"daysPerWeek"`
}

// Result is immutable once computed for a given input tuple; identical
// requests always produce value-identical results.
type Result struct {
	DistanceKm         float64 `json:"distanceKm"`
	DailyAllowance     float64 `json:"dailyAllowance"`
	WeeklyAllowance    float64 `json:"weeklyAllowance"`
	EffectiveRatePerKm float64 `json:"effectiveRatePerKm"`
}

type SubprojectInfo struct {
	ID        string
	ProjectID string
	CostPerKm *float64
	Location  *GeoPoint
}

type ProjectInfo struct {
	ID               string
	DefaultCostPerKm float64
}

type EmployeeInfo struct {
	ID   string
	Home *GeoPoint
}
