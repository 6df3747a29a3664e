package domain

// Reason identifies a failed eligibility rule.
type Reason string

const (
	ReasonAge         Reason = "age"
	ReasonVehicleYear Reason = "vehicle_year"
	ReasonMileage     Reason = "mileage"
)

// Verdict is the result of evaluating the three facts.
type Verdict struct {
	Eligible bool
	// Reasons lists failed rules in the fixed order age, vehicle_year, mileage.
	Reasons []Reason
	// Facts is the snapshot the verdict was computed from.
	Facts map[FactName]int
}

// Failed reports whether the verdict includes r.
func (v Verdict) Failed(r Reason) bool {
	for _, got := range v.Reasons {
		if got == r {
			return true
		}
	}
	return false
}
