// Package eligibility evaluates the fixed eligibility rules over collected facts.
package eligibility

import (
	"fmt"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
)

const (
	MinAge         = 18
	MinVehicleYear = 2015
	// MaxMileage is exclusive: a vehicle must have strictly less mileage.
	MaxMileage = 100000
)

// Rule is a single eligibility check over one fact.
type Rule struct {
	Reason    domain.Reason
	Fact      domain.FactName
	Threshold int
	Pass      func(value int) bool
}

// Rules lists the checks in the order their reasons are reported.
var Rules = []Rule{
	{
		Reason:    domain.ReasonAge,
		Fact:      domain.FactAge,
		Threshold: MinAge,
		Pass:      func(v int) bool { return v >= MinAge },
	},
	{
		Reason:    domain.ReasonVehicleYear,
		Fact:      domain.FactVehicleYear,
		Threshold: MinVehicleYear,
		Pass:      func(v int) bool { return v >= MinVehicleYear },
	},
	{
		Reason:    domain.ReasonMileage,
		Fact:      domain.FactMileage,
		Threshold: MaxMileage,
		Pass:      func(v int) bool { return v < MaxMileage },
	},
}

// Evaluate applies every rule to the given values.
func Evaluate(age, vehicleYear, mileage int) domain.Verdict {
	values := map[domain.FactName]int{
		domain.FactAge:         age,
		domain.FactVehicleYear: vehicleYear,
		domain.FactMileage:     mileage,
	}

	reasons := make([]domain.Reason, 0, len(Rules))
	for _, r := range Rules {
		if !r.Pass(values[r.Fact]) {
			reasons = append(reasons, r.Reason)
		}
	}

	return domain.Verdict{
		Eligible: len(reasons) == 0,
		Reasons:  reasons,
		Facts:    values,
	}
}

// EvaluateFacts evaluates a complete fact set.
func EvaluateFacts(f domain.Facts) (domain.Verdict, error) {
	if !f.Complete() {
		missing, _ := f.NextMissing()
		return domain.Verdict{}, fmt.Errorf("%w: missing %s", domain.ErrIncompleteFacts, missing)
	}
	age, _ := f.Get(domain.FactAge)
	year, _ := f.Get(domain.FactVehicleYear)
	mileage, _ := f.Get(domain.FactMileage)
	return Evaluate(age, year, mileage), nil
}

// RuleFor returns the rule that reports reason.
func RuleFor(reason domain.Reason) (Rule, bool) {
	for _, r := range Rules {
		if r.Reason == reason {
			return r, true
		}
	}
	return Rule{}, false
}
