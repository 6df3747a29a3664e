package eligibility_test

import (
	"testing"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/eligibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		age      int
		year     int
		mileage  int
		eligible bool
		reasons  []domain.Reason
	}{
		{"all pass", 25, 2020, 45000, true, []domain.Reason{}},
		{"age 18 passes", 18, 2020, 45000, true, []domain.Reason{}},
		{"age 17 fails", 17, 2020, 45000, false, []domain.Reason{domain.ReasonAge}},
		{"year 2015 passes", 30, 2015, 45000, true, []domain.Reason{}},
		{"year 2014 fails", 30, 2014, 45000, false, []domain.Reason{domain.ReasonVehicleYear}},
		{"mileage 99999 passes", 30, 2020, 99999, true, []domain.Reason{}},
		{"mileage 100000 fails", 30, 2020, 100000, false, []domain.Reason{domain.ReasonMileage}},
		{"all fail in fixed order", 16, 2010, 250000, false,
			[]domain.Reason{domain.ReasonAge, domain.ReasonVehicleYear, domain.ReasonMileage}},
		{"year and mileage", 40, 2000, 100001, false,
			[]domain.Reason{domain.ReasonVehicleYear, domain.ReasonMileage}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := eligibility.Evaluate(tt.age, tt.year, tt.mileage)
			assert.Equal(t, tt.eligible, v.Eligible)
			assert.Equal(t, tt.reasons, v.Reasons)
			assert.Equal(t, tt.age, v.Facts[domain.FactAge])
		})
	}
}

func TestEvaluate_IsPure(t *testing.T) {
	first := eligibility.Evaluate(16, 2012, 120000)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, eligibility.Evaluate(16, 2012, 120000))
	}
}

func TestEvaluateFacts_OrderIndependentOfDiscovery(t *testing.T) {
	// Insertion order of the map is irrelevant; reasons always follow the rule table.
	f, err := domain.NewFacts(map[domain.FactName]int{
		domain.FactMileage:     150000,
		domain.FactVehicleYear: 2001,
		domain.FactAge:         12,
	})
	require.NoError(t, err)

	v, err := eligibility.EvaluateFacts(f)
	require.NoError(t, err)
	assert.Equal(t, []domain.Reason{domain.ReasonAge, domain.ReasonVehicleYear, domain.ReasonMileage}, v.Reasons)
}

func TestEvaluateFacts_Incomplete(t *testing.T) {
	f, err := domain.NewFacts(map[domain.FactName]int{domain.FactAge: 30})
	require.NoError(t, err)

	_, err = eligibility.EvaluateFacts(f)
	assert.ErrorIs(t, err, domain.ErrIncompleteFacts)
}

func TestRuleFor(t *testing.T) {
	r, ok := eligibility.RuleFor(domain.ReasonMileage)
	require.True(t, ok)
	assert.Equal(t, eligibility.MaxMileage, r.Threshold)

	_, ok = eligibility.RuleFor("color")
	assert.False(t, ok)
}
