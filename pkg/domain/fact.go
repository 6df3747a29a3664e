package domain

import "fmt"

// FactName identifies one of the facts the conversation collects.
type FactName string

const (
	FactAge         FactName = "age"
	FactVehicleYear FactName = "vehicle_year"
	FactMileage     FactName = "mileage"
)

// FactOrder is the order in which facts are asked for.
var FactOrder = []FactName{FactAge, FactVehicleYear, FactMileage}

// Valid reports whether n is a known fact name.
func (n FactName) Valid() bool {
	switch n {
	case FactAge, FactVehicleYear, FactMileage:
		return true
	}
	return false
}

// Facts holds the values collected so far. The zero value is empty and ready to use.
type Facts struct {
	values map[FactName]int
}

// Get returns the value for name and whether it has been collected.
func (f Facts) Get(name FactName) (int, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Has reports whether name has been collected.
func (f Facts) Has(name FactName) bool {
	_, ok := f.values[name]
	return ok
}

// Complete reports whether all facts in FactOrder are present.
func (f Facts) Complete() bool {
	for _, name := range FactOrder {
		if !f.Has(name) {
			return false
		}
	}
	return true
}

// Len returns how many facts are collected.
func (f Facts) Len() int {
	return len(f.values)
}

// NextMissing returns the first fact in FactOrder that has not been collected.
func (f Facts) NextMissing() (FactName, bool) {
	for _, name := range FactOrder {
		if !f.Has(name) {
			return name, true
		}
	}
	return "", false
}

// Snapshot returns a copy of the collected values keyed by fact name.
func (f Facts) Snapshot() map[FactName]int {
	out := make(map[FactName]int, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// set stores a fact. A fact that is already present is never overwritten.
func (f *Facts) set(name FactName, value int) error {
	if !name.Valid() {
		return fmt.Errorf("unknown fact %q", name)
	}
	if f.Has(name) {
		return fmt.Errorf("%w: %s", ErrFactAlreadySet, name)
	}
	if f.values == nil {
		f.values = make(map[FactName]int, len(FactOrder))
	}
	f.values[name] = value
	return nil
}

// NewFacts builds a Facts value from a map. Unknown names are rejected.
func NewFacts(values map[FactName]int) (Facts, error) {
	var f Facts
	for _, name := range FactOrder {
		if v, ok := values[name]; ok {
			if err := f.set(name, v); err != nil {
				return Facts{}, err
			}
		}
	}
	if f.Len() != len(values) {
		return Facts{}, fmt.Errorf("unknown fact in %v", values)
	}
	return f, nil
}
