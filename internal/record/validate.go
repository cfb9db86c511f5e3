package record

import (
	"fmt"
	"time"
)

// Reasonable clinical bounds. Values outside them are almost always typos.
const (
	minTemperature = 30.0
	maxTemperature = 45.0
	maxHydrationML = 5000
)

var reservedFields = map[string]bool{
	fieldID:                true,
	fieldResidentID:        true,
	fieldDate:              true,
	fieldCreatedAt:         true,
	fieldUpdatedAt:         true,
	string(KindVitals):     true,
	string(KindExcretions): true,
	string(KindMeals):      true,
	string(KindHydrations): true,
}

func validateVital(v Vital) error {
	if !validTimeOfDay(v.Time) {
		return invalid("vital time %q must be HH:mm", v.Time)
	}
	if v.Temperature == nil && v.BloodPressureHigh == nil && v.BloodPressureLow == nil &&
		v.Pulse == nil && v.SpO2 == nil {
		return invalid("vital needs at least one measurement")
	}
	if t := v.Temperature; t != nil && (*t < minTemperature || *t > maxTemperature) {
		return invalid("temperature %.1f out of range", *t)
	}
	if err := checkRange("bloodPressureHigh", v.BloodPressureHigh, 40, 300); err != nil {
		return err
	}
	if err := checkRange("bloodPressureLow", v.BloodPressureLow, 20, 200); err != nil {
		return err
	}
	if v.BloodPressureHigh != nil && v.BloodPressureLow != nil && *v.BloodPressureLow >= *v.BloodPressureHigh {
		return invalid("diastolic pressure must be below systolic")
	}
	if err := checkRange("pulse", v.Pulse, 20, 250); err != nil {
		return err
	}
	return checkRange("spO2", v.SpO2, 50, 100)
}

func validateExcretion(e Excretion) error {
	if !validTimeOfDay(e.Time) {
		return invalid("excretion time %q must be HH:mm", e.Time)
	}
	switch e.Type {
	case ExcretionUrine, ExcretionFeces, ExcretionBoth:
	default:
		return invalid("excretion type %q", e.Type)
	}
	if e.UrineAmount != "" {
		if e.Type == ExcretionFeces {
			return invalid("urine amount given for a feces-only entry")
		}
		if !validAmount(e.UrineAmount) {
			return invalid("urine amount %q", e.UrineAmount)
		}
	}
	if e.FecesAmount != "" || e.FecesCondition != "" {
		if e.Type == ExcretionUrine {
			return invalid("feces details given for a urine-only entry")
		}
	}
	if e.FecesAmount != "" && !validAmount(e.FecesAmount) {
		return invalid("feces amount %q", e.FecesAmount)
	}
	switch e.FecesCondition {
	case "", FecesHard, FecesNormal, FecesSoft, FecesWatery:
	default:
		return invalid("feces condition %q", e.FecesCondition)
	}
	return nil
}

func validateMeal(m Meal) error {
	switch m.MealType {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
	default:
		return invalid("meal type %q", m.MealType)
	}
	if err := checkPercent("mainDishAmount", m.MainDishAmount); err != nil {
		return err
	}
	if err := checkPercent("sideDishAmount", m.SideDishAmount); err != nil {
		return err
	}
	if m.SoupAmount != nil {
		return checkPercent("soupAmount", *m.SoupAmount)
	}
	return nil
}

func validateHydration(h Hydration) error {
	if !validTimeOfDay(h.Time) {
		return invalid("hydration time %q must be HH:mm", h.Time)
	}
	if h.Amount <= 0 || h.Amount > maxHydrationML {
		return invalid("hydration amount %d ml out of range", h.Amount)
	}
	return nil
}

// validatePatch checks every entry of every supplied list and the scalar
// overrides.
func validatePatch(p Patch) error {
	if p.Empty() {
		return ErrEmptyPatch
	}
	for k, v := range p.Fields {
		if reservedFields[k] {
			return fmt.Errorf("%w: %s", ErrReservedField, k)
		}
		switch v.(type) {
		case nil, string, bool, float64, int, int64:
		default:
			return invalid("field %s must be a scalar", k)
		}
	}
	if p.Vitals != nil {
		for _, v := range *p.Vitals {
			if err := validateVital(v); err != nil {
				return err
			}
		}
	}
	if p.Excretions != nil {
		for _, e := range *p.Excretions {
			if err := validateExcretion(e); err != nil {
				return err
			}
		}
	}
	if p.Meals != nil {
		for _, m := range *p.Meals {
			if err := validateMeal(m); err != nil {
				return err
			}
		}
	}
	if p.Hydrations != nil {
		for _, h := range *p.Hydrations {
			if err := validateHydration(h); err != nil {
				return err
			}
		}
	}
	return nil
}

func validAmount(a Amount) bool {
	return a == AmountSmall || a == AmountMedium || a == AmountLarge
}

func checkRange(name string, v *int, lo, hi int) error {
	if v != nil && (*v < lo || *v > hi) {
		return invalid("%s %d out of range %d-%d", name, *v, lo, hi)
	}
	return nil
}

func checkPercent(name string, v int) error {
	if v < 0 || v > 100 {
		return invalid("%s %d must be 0-100", name, v)
	}
	return nil
}

// stamp fills the server-owned entry fields.
func stamp(id *string, recordedBy *string, recordedAt *time.Time, actor string, now time.Time, newID func() string) {
	if *id == "" {
		*id = newID()
	}
	if *recordedBy == "" {
		*recordedBy = actor
	}
	if recordedAt.IsZero() {
		*recordedAt = now.UTC()
	}
}
